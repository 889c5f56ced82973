// Package sqlite implements the record store on a SQLite database using the pure Go
// modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"

	_ "modernc.org/sqlite"

	"github.com/smartcontractkit/timelock/sdk"
)

var _ sdk.Store = (*Store)(nil)

// Store keeps records in a single table. The pool is limited to one connection, so every
// transaction has exclusive access to the database.
type Store struct {
	db *sql.DB
}

// Open opens the database at dsn, e.g. "file:timelock.db" or ":memory:".
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	s, err := NewStore(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

// NewStore wraps an existing database handle and creates the records table if needed.
func NewStore(db *sql.DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("unable to migrate sqlite store: %w", err)
	}

	return s, nil
}

func (s *Store) migrate() error {
	query := `
    CREATE TABLE IF NOT EXISTS records (
        address BLOB PRIMARY KEY,
        data BLOB NOT NULL
    );`
	_, err := s.db.ExecContext(context.Background(), query)

	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) View(ctx context.Context, fn func(tx sdk.Tx) error) error {
	return s.run(ctx, true, fn)
}

func (s *Store) Update(ctx context.Context, fn func(tx sdk.Tx) error) error {
	return s.run(ctx, false, fn)
}

func (s *Store) run(ctx context.Context, readOnly bool, fn func(tx sdk.Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("unable to begin transaction: %w", err)
	}

	if err := fn(&tx{ctx: ctx, tx: sqlTx, readOnly: readOnly}); err != nil {
		_ = sqlTx.Rollback()
		return err
	}
	if readOnly {
		return sqlTx.Rollback()
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("unable to commit transaction: %w", err)
	}

	return nil
}

var errReadOnly = errors.New("write in read-only transaction")

type tx struct {
	ctx      context.Context //nolint:containedctx
	tx       *sql.Tx
	readOnly bool
}

func (t *tx) Get(addr solana.PublicKey) ([]byte, error) {
	var data []byte
	err := t.tx.QueryRowContext(t.ctx, `SELECT data FROM records WHERE address = ?`, addr[:]).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sdk.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("unable to read record %s: %w", addr, err)
	}

	return data, nil
}

func (t *tx) Create(addr solana.PublicKey, data []byte) error {
	if t.readOnly {
		return errReadOnly
	}
	res, err := t.tx.ExecContext(t.ctx,
		`INSERT INTO records (address, data) VALUES (?, ?) ON CONFLICT(address) DO NOTHING`, addr[:], data)
	if err != nil {
		return fmt.Errorf("unable to create record %s: %w", addr, err)
	}

	return expectOneRow(res, sdk.ErrRecordExists)
}

func (t *tx) Put(addr solana.PublicKey, data []byte) error {
	if t.readOnly {
		return errReadOnly
	}
	res, err := t.tx.ExecContext(t.ctx, `UPDATE records SET data = ? WHERE address = ?`, data, addr[:])
	if err != nil {
		return fmt.Errorf("unable to write record %s: %w", addr, err)
	}

	return expectOneRow(res, sdk.ErrRecordNotFound)
}

func expectOneRow(res sql.Result, errNone error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errNone
	}

	return nil
}
