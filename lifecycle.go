package timelock

import (
	"context"

	"github.com/gagliardetto/solana-go"

	"github.com/smartcontractkit/timelock/sdk"
	"github.com/smartcontractkit/timelock/types"
)

// Approve enqueues a sealed batch and starts its delay. Only the administrator of the owning
// timelock may approve.
func (e *Engine) Approve(ctx context.Context, caller, batch solana.PublicKey) error {
	lggr := sdk.LoggerFrom(ctx)

	now, err := e.now(ctx)
	if err != nil {
		return err
	}

	var delay uint64
	err = e.store.Update(ctx, func(tx sdk.Tx) error {
		b, err := getBatch(tx, batch)
		if err != nil {
			return err
		}
		switch b.Status {
		case types.BatchStatusSealed:
		case types.BatchStatusCreated:
			return NewBatchStatusError(batch, b.Status, ErrNotSealed)
		default:
			return NewBatchStatusError(batch, b.Status, ErrNotEnqueueable)
		}

		cfg, err := getConfig(tx, b.Timelock)
		if err != nil {
			return err
		}
		if err := requireIdentity(RoleAdministrator, cfg.Administrator, caller); err != nil {
			return err
		}

		b.Status = types.BatchStatusEnqueued
		b.EnqueuedAtTick = now
		delay = cfg.DelayTicks

		return putBatch(tx, batch, b)
	})
	if err != nil {
		lggr.Debugf("approve of batch %s rejected: %v", batch, err)
		return err
	}

	lggr.Infof("batch %s enqueued at tick %d, executable after tick %d", batch, now, now+delay)

	return nil
}

// Veto cancels an enqueued batch while its delay is still running. Only the administrator of
// the owning timelock may veto.
func (e *Engine) Veto(ctx context.Context, caller, batch solana.PublicKey) error {
	lggr := sdk.LoggerFrom(ctx)

	now, err := e.now(ctx)
	if err != nil {
		return err
	}

	err = e.store.Update(ctx, func(tx sdk.Tx) error {
		b, err := getBatch(tx, batch)
		if err != nil {
			return err
		}
		if b.Status != types.BatchStatusEnqueued {
			return NewBatchStatusError(batch, b.Status, ErrNotCancelable)
		}

		cfg, err := getConfig(tx, b.Timelock)
		if err != nil {
			return err
		}
		if err := requireIdentity(RoleAdministrator, cfg.Administrator, caller); err != nil {
			return err
		}

		elapsed, err := elapsedSince(batch, now, b.EnqueuedAtTick)
		if err != nil {
			return err
		}
		if elapsed >= cfg.DelayTicks {
			return NewWindowError(batch, elapsed, cfg.DelayTicks, ErrOutsideCancelWindow)
		}

		b.Status = types.BatchStatusCancelled

		return putBatch(tx, batch, b)
	})
	if err != nil {
		lggr.Debugf("veto of batch %s rejected: %v", batch, err)
		return err
	}

	lggr.Infof("batch %s cancelled at tick %d", batch, now)

	return nil
}
