package timelock

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/smartcontractkit/timelock/sdk"
	solanasdk "github.com/smartcontractkit/timelock/sdk/solana"
	"github.com/smartcontractkit/timelock/types"
)

// ExecuteNext runs the first pending operation of an enqueued batch once its delay has fully
// elapsed. Anyone may call it.
//
// The operation is invoked with the timelock's derived signer authority standing in for any
// account that names it. A failed invocation leaves the operation pending and the batch
// unchanged, so the call can be retried. Calling ExecuteNext on a batch that already finished
// is a no-op and reports Executed false.
//
// The delegated call runs outside any store transaction, so it may call back into the engine,
// for example to administer its own timelock. Executions of one batch are serialized, and a
// delegated call that tries to execute a batch it is itself part of fails with
// ErrReentrantExecution. If the call succeeds but its result cannot be recorded, an
// UnrecordedExecutionError is returned.
func (e *Engine) ExecuteNext(ctx context.Context, batch solana.PublicKey) (types.ExecutionResult, error) {
	lggr := sdk.LoggerFrom(ctx)

	if inExecutionScope(ctx, batch) {
		return types.ExecutionResult{}, fmt.Errorf("%w: %s", ErrReentrantExecution, batch)
	}
	release, err := e.executions.acquire(ctx, batch)
	if err != nil {
		return types.ExecutionResult{}, err
	}
	defer release()

	now, err := e.now(ctx)
	if err != nil {
		return types.ExecutionResult{}, err
	}

	result := types.ExecutionResult{Batch: batch}
	var (
		op      types.Operation
		index   int
		pending bool
		cfg     types.Config
	)
	err = e.store.Update(ctx, func(tx sdk.Tx) error {
		b, err := getBatch(tx, batch)
		if err != nil {
			return err
		}

		result.Status = b.Status
		if b.Status == types.BatchStatusExecuted && b.AllExecuted() {
			return nil
		}
		if b.Status != types.BatchStatusEnqueued {
			return NewBatchStatusError(batch, b.Status, ErrNotEnqueued)
		}

		cfg, err = getConfig(tx, b.Timelock)
		if err != nil {
			return err
		}

		elapsed, err := elapsedSince(batch, now, b.EnqueuedAtTick)
		if err != nil {
			return err
		}
		if elapsed <= cfg.DelayTicks {
			return NewWindowError(batch, elapsed, cfg.DelayTicks, ErrTooEarly)
		}

		index, pending = b.NextPending()
		if pending {
			op = b.Operations[index]
			return nil
		}

		b.Status = types.BatchStatusExecuted
		result.Status = b.Status

		return putBatch(tx, batch, b)
	})
	if err != nil {
		lggr.Debugf("execute of batch %s rejected: %v", batch, err)
		return types.ExecutionResult{}, err
	}
	if !pending {
		lggr.Infof("batch %s has no pending operations", batch)
		return result, nil
	}

	authority, proof, err := e.signerAuthority(cfg)
	if err != nil {
		return types.ExecutionResult{}, err
	}

	ix := solanasdk.NewInstruction(op, authority)
	lggr.Debugf("invoking operation %d of batch %s: target %s as %s", index, batch, op.Target, authority)

	invocation, err := e.invoker.Invoke(withExecutionScope(ctx, batch), ix, proof)
	if err != nil {
		lggr.Warnf("operation %d of batch %s failed: %v", index, batch, err)
		return types.ExecutionResult{}, NewInvocationError(batch, index, op.Target, err)
	}

	err = e.store.Update(ctx, func(tx sdk.Tx) error {
		b, err := getBatch(tx, batch)
		if err != nil {
			return err
		}
		if b.Status != types.BatchStatusEnqueued {
			return NewBatchStatusError(batch, b.Status, ErrNotEnqueued)
		}
		if index >= len(b.Operations) || b.Operations[index].Executed {
			return fmt.Errorf("operation %d of batch %s is no longer pending", index, batch)
		}

		b.Operations[index].Executed = true
		if b.AllExecuted() {
			b.Status = types.BatchStatusExecuted
		}
		result.Status = b.Status

		return putBatch(tx, batch, b)
	})
	if err != nil {
		lggr.Warnf("operation %d of batch %s ran (%s) but was not recorded: %v", index, batch, invocation.Hash, err)
		return types.ExecutionResult{}, NewUnrecordedExecutionError(batch, index, invocation, err)
	}

	result.Executed = true
	result.OperationIndex = index
	result.OperationID = op.ID()
	result.Invocation = invocation
	lggr.Infof("operation %d (%s) of batch %s executed at tick %d, batch is %s",
		index, result.OperationID.Hex(), batch, now, result.Status)

	return result, nil
}

func (e *Engine) signerAuthority(cfg types.Config) (solana.PublicKey, types.SignerProof, error) {
	proof, err := solanasdk.NewSignerProof(e.programID, cfg.ID, cfg.SignerBump)
	if err != nil {
		return solana.PublicKey{}, types.SignerProof{}, err
	}

	return proof.Authority, proof, nil
}
