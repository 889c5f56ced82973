package sdk

import (
	"context"
	"errors"

	"github.com/gagliardetto/solana-go"
)

var (
	// ErrRecordNotFound is returned when no record exists at the requested address.
	ErrRecordNotFound = errors.New("record not found")

	// ErrRecordExists is returned when creating a record at an address that is already in use.
	ErrRecordExists = errors.New("record already exists")
)

// Store is the persistent record store. Records are addressed by a derived public key.
//
// Update must give exclusive write access for the duration of fn: two Update calls are never
// interleaved. When fn returns an error, none of its writes may be persisted.
type Store interface {
	View(ctx context.Context, fn func(tx Tx) error) error
	Update(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is a view of the store inside a View or Update call. Writes on a read-only Tx fail.
type Tx interface {
	// Get returns a copy of the record at addr or ErrRecordNotFound.
	Get(addr solana.PublicKey) ([]byte, error)
	// Create writes a new record and fails with ErrRecordExists if addr is taken.
	Create(addr solana.PublicKey, data []byte) error
	// Put overwrites an existing record and fails with ErrRecordNotFound if there is none.
	Put(addr solana.PublicKey, data []byte) error
}
