package timelock

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/smartcontractkit/timelock/sdk"
	solanasdk "github.com/smartcontractkit/timelock/sdk/solana"
	"github.com/smartcontractkit/timelock/types"
)

// Engine runs the timelock lifecycle: configurations, batches and the delegated execution of
// their operations.
//
// Every operation other than ExecuteNext is a single store Update. A failing operation returns
// before its Update commits, so no partial state is ever persisted. Authorization is checked
// against the stored identities on every call.
type Engine struct {
	store      sdk.Store
	clock      sdk.Clock
	invoker    sdk.Invoker
	programID  solana.PublicKey
	executions *executionGuards
}

type Option func(*Engine)

// WithProgramID sets the program id that configuration and signer addresses derive from.
func WithProgramID(programID solana.PublicKey) Option {
	return func(e *Engine) {
		e.programID = programID
	}
}

// NewEngine creates an Engine.
func NewEngine(store sdk.Store, clock sdk.Clock, invoker sdk.Invoker, opts ...Option) *Engine {
	e := &Engine{
		store:      store,
		clock:      clock,
		invoker:    invoker,
		programID:  solanasdk.DefaultProgramID,
		executions: newExecutionGuards(),
	}
	for _, opt := range opts {
		opt(e)
	}

	return e
}

// ProgramID returns the program id the engine derives addresses from.
func (e *Engine) ProgramID() solana.PublicKey {
	return e.programID
}

// ConfigAddress returns the address of the configuration record for timelockID.
func (e *Engine) ConfigAddress(timelockID uint64) (solana.PublicKey, error) {
	addr, _, err := solanasdk.FindTimelockConfigPDA(e.programID, timelockID)

	return addr, err
}

// SignerAuthority returns the derived identity the engine signs delegated calls with for
// timelockID, together with the proof that backs it.
func (e *Engine) SignerAuthority(timelockID uint64) (solana.PublicKey, types.SignerProof, error) {
	_, bump, err := solanasdk.FindTimelockSignerPDA(e.programID, timelockID)
	if err != nil {
		return solana.PublicKey{}, types.SignerProof{}, err
	}

	proof, err := solanasdk.NewSignerProof(e.programID, timelockID, bump)
	if err != nil {
		return solana.PublicKey{}, types.SignerProof{}, err
	}

	return proof.Authority, proof, nil
}

func (e *Engine) now(ctx context.Context) (uint64, error) {
	tick, err := e.clock.CurrentTick(ctx)
	if err != nil {
		return 0, fmt.Errorf("unable to read clock: %w", err)
	}

	return tick, nil
}

func getConfig(tx sdk.Tx, addr solana.PublicKey) (types.Config, error) {
	data, err := tx.Get(addr)
	if errors.Is(err, sdk.ErrRecordNotFound) {
		return types.Config{}, fmt.Errorf("%w: %s", ErrConfigNotFound, addr)
	}
	if err != nil {
		return types.Config{}, fmt.Errorf("unable to read timelock config %s: %w", addr, err)
	}

	cfg, err := types.UnmarshalConfig(data)
	if err != nil {
		return types.Config{}, fmt.Errorf("unable to decode timelock config %s: %w", addr, err)
	}

	return cfg, nil
}

func putConfig(tx sdk.Tx, addr solana.PublicKey, cfg types.Config) error {
	data, err := types.MarshalConfig(cfg)
	if err != nil {
		return fmt.Errorf("unable to encode timelock config %s: %w", addr, err)
	}

	return tx.Put(addr, data)
}

func getBatch(tx sdk.Tx, addr solana.PublicKey) (types.Batch, error) {
	data, err := tx.Get(addr)
	if errors.Is(err, sdk.ErrRecordNotFound) {
		return types.Batch{}, fmt.Errorf("%w: %s", ErrBatchNotFound, addr)
	}
	if err != nil {
		return types.Batch{}, fmt.Errorf("unable to read transaction batch %s: %w", addr, err)
	}

	batch, err := types.UnmarshalBatch(data)
	if err != nil {
		return types.Batch{}, fmt.Errorf("unable to decode transaction batch %s: %w", addr, err)
	}

	return batch, nil
}

func putBatch(tx sdk.Tx, addr solana.PublicKey, batch types.Batch) error {
	data, err := types.MarshalBatch(batch)
	if err != nil {
		return fmt.Errorf("unable to encode transaction batch %s: %w", addr, err)
	}

	return tx.Put(addr, data)
}

func requireIdentity(role Role, expected, caller solana.PublicKey) error {
	if !expected.Equals(caller) {
		return NewUnauthorizedError(role, expected, caller)
	}

	return nil
}

// elapsedSince returns the ticks elapsed since the batch was enqueued.
func elapsedSince(batch solana.PublicKey, now, enqueuedAt uint64) (uint64, error) {
	if now < enqueuedAt {
		return 0, fmt.Errorf("%w: batch %s enqueued at %d, now %d", ErrClockRegressed, batch, enqueuedAt, now)
	}

	return now - enqueuedAt, nil
}
