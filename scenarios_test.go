package timelock

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcontractkit/timelock/types"
)

func TestScenario_VetoInsideWindow(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 100, nil)
	batch := f.enqueuedBatch(t, 1000, f.operation(1), f.operation(2))
	assert.Equal(t, uint64(1000), f.batch(t, batch).EnqueuedAtTick)

	f.clock.Set(1050)
	require.NoError(t, f.engine.Veto(f.ctx, f.admin, batch))
	assert.Equal(t, types.BatchStatusCancelled, f.batch(t, batch).Status)

	_, err := f.engine.ExecuteNext(f.ctx, batch)
	var statusErr *BatchStatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, types.BatchStatusCancelled, statusErr.Status)
	assert.Empty(t, f.program.calls)
}

func TestScenario_IncrementalExecution(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 100, nil)
	batch := f.enqueuedBatch(t, 1000, f.operation(1), f.operation(2))

	f.clock.Set(1100)
	_, err := f.engine.ExecuteNext(f.ctx, batch)
	require.ErrorIs(t, err, ErrTooEarly)
	require.ErrorIs(t, f.engine.Veto(f.ctx, f.admin, batch), ErrOutsideCancelWindow)

	f.clock.Set(1101)
	res, err := f.engine.ExecuteNext(f.ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, 0, res.OperationIndex)
	assert.Equal(t, types.BatchStatusEnqueued, res.Status)
	assert.Equal(t, [][]byte{{1}}, f.program.calls)

	f.clock.Set(1102)
	res, err = f.engine.ExecuteNext(f.ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, 1, res.OperationIndex)
	assert.Equal(t, types.BatchStatusExecuted, res.Status)
	assert.Equal(t, [][]byte{{1}, {2}}, f.program.calls)

	before := f.batch(t, batch)
	res, err = f.engine.ExecuteNext(f.ctx, batch)
	require.NoError(t, err)
	assert.False(t, res.Executed)
	assert.Equal(t, before, f.batch(t, batch))
	assert.Len(t, f.program.calls, 2)
}

func TestScenario_AddAfterSeal(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 100, nil)
	batch := f.sealedBatch(t, f.operation(1))

	for _, caller := range []solana.PublicKey{f.authority, f.admin, solana.NewWallet().PublicKey()} {
		require.ErrorIs(t, f.engine.AddOperation(f.ctx, caller, batch, f.operation(2)), ErrNotModifiable)
	}
}

func TestScenario_VetoByNonAdministrator(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 100, nil)
	batch := f.enqueuedBatch(t, 1000, f.operation(1))
	f.clock.Set(1050)

	require.ErrorIs(t, f.engine.Veto(f.ctx, solana.NewWallet().PublicKey(), batch), ErrUnauthorized)
	assert.Equal(t, types.BatchStatusEnqueued, f.batch(t, batch).Status)
}
