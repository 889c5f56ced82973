package timelock

import (
	"context"

	"github.com/gagliardetto/solana-go"

	"github.com/smartcontractkit/timelock/sdk"
	"github.com/smartcontractkit/timelock/types"
)

var _ sdk.TimelockInspector = (*Inspector)(nil)

// Inspector is a read-only view over timelock configurations and batches.
type Inspector struct {
	store sdk.Store
	clock sdk.Clock
}

func NewInspector(store sdk.Store, clock sdk.Clock) *Inspector {
	return &Inspector{store: store, clock: clock}
}

func (i *Inspector) GetConfig(ctx context.Context, timelock solana.PublicKey) (types.Config, error) {
	var cfg types.Config
	err := i.store.View(ctx, func(tx sdk.Tx) error {
		var err error
		cfg, err = getConfig(tx, timelock)

		return err
	})

	return cfg, err
}

func (i *Inspector) GetBatch(ctx context.Context, batch solana.PublicKey) (types.Batch, error) {
	var b types.Batch
	err := i.store.View(ctx, func(tx sdk.Tx) error {
		var err error
		b, err = getBatch(tx, batch)

		return err
	})

	return b, err
}

func (i *Inspector) GetAdministrator(ctx context.Context, timelock solana.PublicKey) (solana.PublicKey, error) {
	cfg, err := i.GetConfig(ctx, timelock)
	if err != nil {
		return solana.PublicKey{}, err
	}

	return cfg.Administrator, nil
}

func (i *Inspector) GetProposers(ctx context.Context, timelock solana.PublicKey) ([]solana.PublicKey, error) {
	cfg, err := i.GetConfig(ctx, timelock)
	if err != nil {
		return nil, err
	}

	return cfg.Proposers, nil
}

func (i *Inspector) GetDelay(ctx context.Context, timelock solana.PublicKey) (uint64, error) {
	cfg, err := i.GetConfig(ctx, timelock)
	if err != nil {
		return 0, err
	}

	return cfg.DelayTicks, nil
}

// IsBatchPending reports whether the batch is enqueued and still waiting for its delay to pass.
func (i *Inspector) IsBatchPending(ctx context.Context, batch solana.PublicKey) (bool, error) {
	b, elapsed, delay, err := i.enqueuedWindow(ctx, batch)
	if err != nil || b.Status != types.BatchStatusEnqueued {
		return false, err
	}

	return elapsed <= delay, nil
}

// IsBatchReady reports whether ExecuteNext would currently be accepted for the batch.
func (i *Inspector) IsBatchReady(ctx context.Context, batch solana.PublicKey) (bool, error) {
	b, elapsed, delay, err := i.enqueuedWindow(ctx, batch)
	if err != nil || b.Status != types.BatchStatusEnqueued {
		return false, err
	}

	return elapsed > delay, nil
}

func (i *Inspector) IsBatchDone(ctx context.Context, batch solana.PublicKey) (bool, error) {
	b, err := i.GetBatch(ctx, batch)
	if err != nil {
		return false, err
	}

	return b.Status == types.BatchStatusExecuted, nil
}

// PendingOperation returns the next operation ExecuteNext would run and its index.
func (i *Inspector) PendingOperation(ctx context.Context, batch solana.PublicKey) (types.Operation, int, bool, error) {
	b, err := i.GetBatch(ctx, batch)
	if err != nil {
		return types.Operation{}, -1, false, err
	}

	index, ok := b.NextPending()
	if !ok {
		return types.Operation{}, -1, false, nil
	}

	return b.Operations[index], index, true, nil
}

func (i *Inspector) enqueuedWindow(
	ctx context.Context, batch solana.PublicKey,
) (b types.Batch, elapsed uint64, delay uint64, err error) {
	err = i.store.View(ctx, func(tx sdk.Tx) error {
		var err error
		b, err = getBatch(tx, batch)
		if err != nil || b.Status != types.BatchStatusEnqueued {
			return err
		}

		cfg, err := getConfig(tx, b.Timelock)
		if err != nil {
			return err
		}
		delay = cfg.DelayTicks

		return nil
	})
	if err != nil || b.Status != types.BatchStatusEnqueued {
		return b, 0, 0, err
	}

	now, err := i.clock.CurrentTick(ctx)
	if err != nil {
		return b, 0, 0, err
	}
	elapsed, err = elapsedSince(batch, now, b.EnqueuedAtTick)

	return b, elapsed, delay, err
}
