// Package storetest holds the behaviour every sdk.Store implementation must have.
package storetest

import (
	"context"
	"encoding/binary"
	"errors"
	"sync"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcontractkit/timelock/sdk"
)

// Run exercises newStore against the store contract. newStore must return an empty store.
func Run(t *testing.T, newStore func(t *testing.T) sdk.Store) {
	t.Helper()

	ctx := context.Background()

	t.Run("create then get", func(t *testing.T) {
		store := newStore(t)
		addr := solana.NewWallet().PublicKey()

		require.NoError(t, store.Update(ctx, func(tx sdk.Tx) error {
			return tx.Create(addr, []byte("v1"))
		}))

		require.NoError(t, store.View(ctx, func(tx sdk.Tx) error {
			got, err := tx.Get(addr)
			require.NoError(t, err)
			assert.Equal(t, []byte("v1"), got)

			return nil
		}))
	})

	t.Run("create is rejected when the record exists", func(t *testing.T) {
		store := newStore(t)
		addr := solana.NewWallet().PublicKey()

		require.NoError(t, store.Update(ctx, func(tx sdk.Tx) error {
			return tx.Create(addr, []byte("v1"))
		}))
		err := store.Update(ctx, func(tx sdk.Tx) error {
			return tx.Create(addr, []byte("v2"))
		})
		require.ErrorIs(t, err, sdk.ErrRecordExists)

		assertRecord(t, store, addr, []byte("v1"))
	})

	t.Run("get and put on a missing record", func(t *testing.T) {
		store := newStore(t)
		addr := solana.NewWallet().PublicKey()

		err := store.Update(ctx, func(tx sdk.Tx) error {
			_, err := tx.Get(addr)
			require.ErrorIs(t, err, sdk.ErrRecordNotFound)

			return tx.Put(addr, []byte("v1"))
		})
		require.ErrorIs(t, err, sdk.ErrRecordNotFound)
	})

	t.Run("failed update leaves no trace", func(t *testing.T) {
		store := newStore(t)
		existing := solana.NewWallet().PublicKey()
		fresh := solana.NewWallet().PublicKey()
		errAbort := errors.New("abort")

		require.NoError(t, store.Update(ctx, func(tx sdk.Tx) error {
			return tx.Create(existing, []byte("v1"))
		}))

		err := store.Update(ctx, func(tx sdk.Tx) error {
			require.NoError(t, tx.Put(existing, []byte("v2")))
			require.NoError(t, tx.Create(fresh, []byte("new")))

			got, err := tx.Get(existing)
			require.NoError(t, err)
			assert.Equal(t, []byte("v2"), got, "writes are visible inside the transaction")

			return errAbort
		})
		require.ErrorIs(t, err, errAbort)

		assertRecord(t, store, existing, []byte("v1"))
		require.NoError(t, store.View(ctx, func(tx sdk.Tx) error {
			_, err := tx.Get(fresh)
			assert.ErrorIs(t, err, sdk.ErrRecordNotFound)

			return nil
		}))
	})

	t.Run("view cannot write", func(t *testing.T) {
		store := newStore(t)
		addr := solana.NewWallet().PublicKey()

		err := store.View(ctx, func(tx sdk.Tx) error {
			return tx.Create(addr, []byte("v1"))
		})
		require.Error(t, err)
	})

	t.Run("concurrent updates are serialized", func(t *testing.T) {
		store := newStore(t)
		addr := solana.NewWallet().PublicKey()
		require.NoError(t, store.Update(ctx, func(tx sdk.Tx) error {
			return tx.Create(addr, encodeCounter(0))
		}))

		const workers = 20
		var wg sync.WaitGroup
		for range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := store.Update(ctx, func(tx sdk.Tx) error {
					data, err := tx.Get(addr)
					if err != nil {
						return err
					}

					return tx.Put(addr, encodeCounter(binary.LittleEndian.Uint64(data)+1))
				})
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		assertRecord(t, store, addr, encodeCounter(workers))
	})

	t.Run("cancelled context", func(t *testing.T) {
		store := newStore(t)
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		err := store.Update(cancelled, func(tx sdk.Tx) error { return nil })
		require.ErrorIs(t, err, context.Canceled)
	})
}

func assertRecord(t *testing.T, store sdk.Store, addr solana.PublicKey, want []byte) {
	t.Helper()

	require.NoError(t, store.View(context.Background(), func(tx sdk.Tx) error {
		got, err := tx.Get(addr)
		require.NoError(t, err)
		assert.Equal(t, want, got)

		return nil
	}))
}

func encodeCounter(n uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, n)

	return b
}
