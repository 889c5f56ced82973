package timelock

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/smartcontractkit/timelock/sdk"
	"github.com/smartcontractkit/timelock/types"
)

// CreateBatch creates an empty batch at the given address under an existing timelock. The
// authority is the only identity allowed to add operations to the batch and seal it.
func (e *Engine) CreateBatch(ctx context.Context, batch, timelock, authority solana.PublicKey) error {
	err := e.store.Update(ctx, func(tx sdk.Tx) error {
		if _, err := getConfig(tx, timelock); err != nil {
			return err
		}

		data, err := types.MarshalBatch(types.NewBatch(timelock, authority))
		if err != nil {
			return fmt.Errorf("unable to encode transaction batch: %w", err)
		}

		if err := tx.Create(batch, data); err != nil {
			if errors.Is(err, sdk.ErrRecordExists) {
				return fmt.Errorf("%w: %s", ErrBatchExists, batch)
			}

			return fmt.Errorf("unable to create transaction batch: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	sdk.LoggerFrom(ctx).Infof("batch %s created under timelock %s with authority %s", batch, timelock, authority)

	return nil
}

// AddOperation appends an operation to a batch that is still being assembled.
func (e *Engine) AddOperation(
	ctx context.Context, caller, batch solana.PublicKey, params types.OperationParams,
) error {
	op := types.NewOperation(params)

	var index int
	err := e.updateCreatedBatch(ctx, caller, batch, func(b *types.Batch) {
		index = len(b.Operations)
		b.Operations = append(b.Operations, op)
	})
	if err != nil {
		return err
	}

	sdk.LoggerFrom(ctx).Infof("operation %d (%s) added to batch %s: target %s, %d accounts, %d bytes",
		index, op.ID().Hex(), batch, op.Target, len(op.Parameters), len(op.Payload))

	return nil
}

// Seal freezes the operation list of a batch so it can be approved.
func (e *Engine) Seal(ctx context.Context, caller, batch solana.PublicKey) error {
	var count int
	err := e.updateCreatedBatch(ctx, caller, batch, func(b *types.Batch) {
		b.Status = types.BatchStatusSealed
		count = len(b.Operations)
	})
	if err != nil {
		return err
	}

	sdk.LoggerFrom(ctx).Infof("batch %s sealed with %d operations", batch, count)

	return nil
}

// updateCreatedBatch applies mutate to a batch in the Created status on behalf of its authority.
func (e *Engine) updateCreatedBatch(
	ctx context.Context, caller, addr solana.PublicKey, mutate func(b *types.Batch),
) error {
	err := e.store.Update(ctx, func(tx sdk.Tx) error {
		batch, err := getBatch(tx, addr)
		if err != nil {
			return err
		}
		if batch.Status != types.BatchStatusCreated {
			return NewBatchStatusError(addr, batch.Status, ErrNotModifiable)
		}
		if err := requireIdentity(RoleBatchAuthority, batch.Authority, caller); err != nil {
			return err
		}

		mutate(&batch)

		return putBatch(tx, addr, batch)
	})
	if err != nil {
		sdk.LoggerFrom(ctx).Debugf("batch %s update rejected: %v", addr, err)
	}

	return err
}
