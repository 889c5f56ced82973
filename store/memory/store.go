// Package memory implements an in-process record store.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/gagliardetto/solana-go"

	"github.com/smartcontractkit/timelock/sdk"
)

var _ sdk.Store = (*Store)(nil)

var errReadOnly = errors.New("write in read-only transaction")

// Store keeps records in memory. Update calls are serialized and their writes are staged until
// the callback succeeds.
type Store struct {
	mu      sync.RWMutex
	records map[solana.PublicKey][]byte
}

func NewStore() *Store {
	return &Store{records: make(map[solana.PublicKey][]byte)}
}

func (s *Store) View(ctx context.Context, fn func(tx sdk.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	return fn(&tx{store: s})
}

func (s *Store) Update(ctx context.Context, fn func(tx sdk.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	t := &tx{store: s, writable: true, staged: make(map[solana.PublicKey][]byte)}
	if err := fn(t); err != nil {
		return err
	}
	for addr, data := range t.staged {
		s.records[addr] = data
	}

	return nil
}

type tx struct {
	store    *Store
	writable bool
	staged   map[solana.PublicKey][]byte
}

func (t *tx) lookup(addr solana.PublicKey) ([]byte, bool) {
	if data, ok := t.staged[addr]; ok {
		return data, true
	}
	data, ok := t.store.records[addr]

	return data, ok
}

func (t *tx) Get(addr solana.PublicKey) ([]byte, error) {
	data, ok := t.lookup(addr)
	if !ok {
		return nil, sdk.ErrRecordNotFound
	}

	return append([]byte(nil), data...), nil
}

func (t *tx) Create(addr solana.PublicKey, data []byte) error {
	if !t.writable {
		return errReadOnly
	}
	if _, ok := t.lookup(addr); ok {
		return sdk.ErrRecordExists
	}
	t.staged[addr] = append([]byte(nil), data...)

	return nil
}

func (t *tx) Put(addr solana.PublicKey, data []byte) error {
	if !t.writable {
		return errReadOnly
	}
	if _, ok := t.lookup(addr); !ok {
		return sdk.ErrRecordNotFound
	}
	t.staged[addr] = append([]byte(nil), data...)

	return nil
}
