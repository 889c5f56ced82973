// Package boltdb implements the record store on top of BoltDB. Bolt allows a single writable
// transaction at a time, which gives the per-record exclusive write guarantee.
package boltdb

import (
	"context"
	"fmt"
	"time"

	"github.com/boltdb/bolt"
	"github.com/gagliardetto/solana-go"

	"github.com/smartcontractkit/timelock/sdk"
)

var _ sdk.Store = (*Store)(nil)

var recordsBucket = []byte("Records")

type Store struct {
	db *bolt.DB
}

// Open opens (or creates) the database file at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("unable to open bolt database %s: %w", path, err)
	}

	err = db.Update(func(btx *bolt.Tx) error {
		_, err := btx.CreateBucketIfNotExists(recordsBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("unable to create records bucket: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) View(ctx context.Context, fn func(tx sdk.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.View(func(btx *bolt.Tx) error {
		return fn(&tx{bucket: btx.Bucket(recordsBucket)})
	})
}

func (s *Store) Update(ctx context.Context, fn func(tx sdk.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(btx *bolt.Tx) error {
		return fn(&tx{bucket: btx.Bucket(recordsBucket)})
	})
}

type tx struct {
	bucket *bolt.Bucket
}

func (t *tx) Get(addr solana.PublicKey) ([]byte, error) {
	data := t.bucket.Get(addr[:])
	if data == nil {
		return nil, sdk.ErrRecordNotFound
	}

	// bolt values are only valid for the life of the transaction
	return append([]byte(nil), data...), nil
}

func (t *tx) Create(addr solana.PublicKey, data []byte) error {
	if t.bucket.Get(addr[:]) != nil {
		return sdk.ErrRecordExists
	}

	return t.bucket.Put(addr[:], data)
}

func (t *tx) Put(addr solana.PublicKey, data []byte) error {
	if t.bucket.Get(addr[:]) == nil {
		return sdk.ErrRecordNotFound
	}

	return t.bucket.Put(addr[:], data)
}
