package timelock

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/smartcontractkit/timelock/sdk"
	sdkerrors "github.com/smartcontractkit/timelock/sdk/errors"
	"github.com/smartcontractkit/timelock/sdk/mocks"
	solanasdk "github.com/smartcontractkit/timelock/sdk/solana"
	"github.com/smartcontractkit/timelock/store/boltdb"
	"github.com/smartcontractkit/timelock/store/memory"
	"github.com/smartcontractkit/timelock/store/sqlite"
	"github.com/smartcontractkit/timelock/types"
)

func TestEngine_ExecuteNext_Window(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		giveTick uint64
		wantErr  error
	}{
		{name: "failure: at enqueue tick", giveTick: 100, wantErr: ErrTooEarly},
		{name: "failure: inside delay", giveTick: 105, wantErr: ErrTooEarly},
		{name: "failure: delay boundary", giveTick: 110, wantErr: ErrTooEarly},
		{name: "success: first tick after delay", giveTick: 111},
		{name: "success: long after delay", giveTick: 10_000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t, 10, nil)
			batch := f.enqueuedBatch(t, 100, f.operation(1))
			f.clock.Set(tt.giveTick)

			res, err := f.engine.ExecuteNext(f.ctx, batch)
			if tt.wantErr != nil {
				var windowErr *WindowError
				require.ErrorAs(t, err, &windowErr)
				require.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.giveTick-100, windowErr.Elapsed)
				assert.Empty(t, f.program.calls)
				assert.Equal(t, 0, f.batch(t, batch).ExecutedCount())

				return
			}
			require.NoError(t, err)
			assert.True(t, res.Executed)
			assert.Equal(t, types.BatchStatusExecuted, res.Status)
			assert.Equal(t, [][]byte{{1}}, f.program.calls)
		})
	}
}

func TestEngine_ExecuteNext_InOrder(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 10, nil)
	ops := []types.OperationParams{f.operation(1), f.operation(2), f.operation(3)}
	batch := f.enqueuedBatch(t, 100, ops...)
	f.clock.Set(111)

	for i, op := range ops {
		res, err := f.engine.ExecuteNext(f.ctx, batch)
		require.NoError(t, err)

		assert.Equal(t, batch, res.Batch)
		assert.True(t, res.Executed)
		assert.Equal(t, i, res.OperationIndex)
		assert.Equal(t, types.NewOperation(op).ID(), res.OperationID)
		assert.Equal(t, res.OperationID.Hex(), res.Invocation.Hash)

		wantStatus := types.BatchStatusEnqueued
		if i == len(ops)-1 {
			wantStatus = types.BatchStatusExecuted
		}
		assert.Equal(t, wantStatus, res.Status)
		assert.Equal(t, wantStatus, f.batch(t, batch).Status)
		assert.Equal(t, i+1, f.batch(t, batch).ExecutedCount())
	}
	assert.Equal(t, [][]byte{{1}, {2}, {3}}, f.program.calls)

	// nothing is left to run
	res, err := f.engine.ExecuteNext(f.ctx, batch)
	require.NoError(t, err)
	assert.False(t, res.Executed)
	assert.Equal(t, types.BatchStatusExecuted, res.Status)
	assert.Len(t, f.program.calls, 3)

	require.ErrorIs(t, f.engine.Veto(f.ctx, f.admin, batch), ErrNotCancelable)
}

func TestEngine_ExecuteNext_RetryAfterFailure(t *testing.T) {
	t.Parallel()

	invoker := mocks.NewInvoker(t)
	f := newFixture(t, 10, invoker)
	batch := f.enqueuedBatch(t, 100, f.operation(1), f.operation(2))
	f.clock.Set(111)

	var payloads [][]byte
	record := func(_ context.Context, ix solana.Instruction, _ types.SignerProof) {
		data, err := ix.Data()
		require.NoError(t, err)
		payloads = append(payloads, data)
	}
	invoker.EXPECT().Invoke(mock.Anything, mock.Anything, mock.Anything).
		Run(record).Return(types.InvocationResult{}, errors.New("insufficient funds")).Once()
	invoker.EXPECT().Invoke(mock.Anything, mock.Anything, mock.Anything).
		Run(record).Return(types.InvocationResult{Hash: "ok"}, nil).Twice()

	_, err := f.engine.ExecuteNext(f.ctx, batch)
	var invErr *InvocationError
	require.ErrorAs(t, err, &invErr)
	require.ErrorIs(t, err, ErrInvocationFailed)
	assert.Equal(t, 0, invErr.Index)
	assert.Equal(t, f.target, invErr.Target)
	assert.EqualError(t, invErr.Err, "insufficient funds")

	got := f.batch(t, batch)
	assert.Equal(t, types.BatchStatusEnqueued, got.Status)
	assert.Equal(t, 0, got.ExecutedCount())

	res, err := f.engine.ExecuteNext(f.ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, 0, res.OperationIndex)
	assert.Equal(t, "ok", res.Invocation.Hash)

	res, err = f.engine.ExecuteNext(f.ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, 1, res.OperationIndex)
	assert.Equal(t, types.BatchStatusExecuted, res.Status)

	assert.Equal(t, [][]byte{{1}, {1}, {2}}, payloads)
}

func TestEngine_ExecuteNext_SignerSubstitution(t *testing.T) {
	t.Parallel()

	invoker := mocks.NewInvoker(t)
	f := newFixture(t, 0, invoker)
	signer, wantProof, err := f.engine.SignerAuthority(testTimelockID)
	require.NoError(t, err)

	other := solana.NewWallet().PublicKey()
	cosigner := solana.NewWallet().PublicKey()
	batch := f.enqueuedBatch(t, 100, types.OperationParams{
		Target: f.target,
		Parameters: []types.AccountParameter{
			{Identity: signer, IsMutable: true},
			{Identity: other},
			{Identity: cosigner, IsAuthorizer: true},
		},
		Payload: []byte{0xAA},
	})
	f.clock.Advance(1)

	invoker.EXPECT().Invoke(mock.Anything, mock.Anything, wantProof).
		RunAndReturn(func(_ context.Context, ix solana.Instruction, proof types.SignerProof) (types.InvocationResult, error) {
			assert.Equal(t, f.target, ix.ProgramID())
			accounts := ix.Accounts()
			require.Len(t, accounts, 3)

			assert.Equal(t, signer, accounts[0].PublicKey)
			assert.True(t, accounts[0].IsSigner)
			assert.True(t, accounts[0].IsWritable)
			assert.False(t, accounts[1].IsSigner)
			assert.False(t, accounts[1].IsWritable)
			assert.True(t, accounts[2].IsSigner)

			assert.Equal(t, signer, proof.Authority)
			require.NoError(t, solanasdk.VerifySignerProof(proof))

			return types.InvocationResult{}, nil
		}).Once()

	_, err = f.engine.ExecuteNext(f.ctx, batch)
	require.NoError(t, err)
}

func TestEngine_ExecuteNext_RouterRejectsUnsignedAuthorizer(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 0, nil)
	batch := f.enqueuedBatch(t, 100, types.OperationParams{
		Target:     f.target,
		Parameters: []types.AccountParameter{{Identity: solana.NewWallet().PublicKey(), IsAuthorizer: true}},
	})
	f.clock.Advance(1)

	_, err := f.engine.ExecuteNext(f.ctx, batch)
	require.ErrorIs(t, err, ErrInvocationFailed)
	var sigErr *sdkerrors.MissingSignatureError
	require.ErrorAs(t, err, &sigErr)
	assert.Equal(t, types.BatchStatusEnqueued, f.batch(t, batch).Status)
}

func TestEngine_ExecuteNext_Status(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 0, nil)
	created := solana.NewWallet().PublicKey()
	require.NoError(t, f.engine.CreateBatch(f.ctx, created, f.timelock, f.authority))
	sealed := f.sealedBatch(t, f.operation(1))
	cancelled := f.enqueuedBatch(t, 100, f.operation(2))
	require.NoError(t, f.engine.SetDelay(f.ctx, f.admin, f.timelock, 10))
	require.NoError(t, f.engine.Veto(f.ctx, f.admin, cancelled))
	f.clock.Advance(50)

	for _, batch := range []solana.PublicKey{created, sealed, cancelled} {
		var statusErr *BatchStatusError
		_, err := f.engine.ExecuteNext(f.ctx, batch)
		require.ErrorAs(t, err, &statusErr)
		require.ErrorIs(t, err, ErrNotEnqueued)
	}
	assert.Empty(t, f.program.calls)

	_, err := f.engine.ExecuteNext(f.ctx, solana.NewWallet().PublicKey())
	require.ErrorIs(t, err, ErrBatchNotFound)
}

func TestEngine_ExecuteNext_SelfAdministered(t *testing.T) {
	t.Parallel()

	// the timelock program itself: sets the delay of the timelock to the payload byte
	selfProgram := solana.NewWallet().PublicKey()
	var f *fixture
	program := solanasdk.ProgramFunc(func(ctx context.Context, accounts []*solana.AccountMeta, data []byte) error {
		return f.engine.SetDelay(ctx, accounts[0].PublicKey, f.timelock, uint64(data[0]))
	})
	f = newFixture(t, 10, solanasdk.NewRouter(solanasdk.DefaultProgramID, solanasdk.WithProgram(selfProgram, program)))

	signer, _, err := f.engine.SignerAuthority(testTimelockID)
	require.NoError(t, err)

	batch := f.enqueuedBatch(t, 100, types.OperationParams{
		Target:     selfProgram,
		Parameters: []types.AccountParameter{{Identity: signer}},
		Payload:    []byte{3},
	})
	require.NoError(t, f.engine.SetAdministrator(f.ctx, f.admin, f.timelock, signer))
	f.clock.Set(111)

	res, err := f.engine.ExecuteNext(f.ctx, batch)
	require.NoError(t, err)
	assert.True(t, res.Executed)
	assert.Equal(t, types.BatchStatusExecuted, res.Status)

	delay, err := f.inspector.GetDelay(f.ctx, f.timelock)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), delay)
	assert.Equal(t, types.BatchStatusExecuted, f.batch(t, batch).Status)

	require.ErrorIs(t, f.engine.SetDelay(f.ctx, f.admin, f.timelock, 0), ErrUnauthorized)
}

func TestEngine_ExecuteNext_Reentrant(t *testing.T) {
	t.Parallel()

	selfProgram := solana.NewWallet().PublicKey()
	var (
		f     *fixture
		batch solana.PublicKey
	)
	program := solanasdk.ProgramFunc(func(ctx context.Context, _ []*solana.AccountMeta, _ []byte) error {
		_, err := f.engine.ExecuteNext(ctx, batch)
		return err
	})
	f = newFixture(t, 10, solanasdk.NewRouter(solanasdk.DefaultProgramID, solanasdk.WithProgram(selfProgram, program)))

	batch = f.enqueuedBatch(t, 100, types.OperationParams{Target: selfProgram})
	f.clock.Set(111)

	_, err := f.engine.ExecuteNext(f.ctx, batch)
	require.ErrorIs(t, err, ErrInvocationFailed)
	require.ErrorIs(t, err, ErrReentrantExecution)

	got := f.batch(t, batch)
	assert.Equal(t, types.BatchStatusEnqueued, got.Status)
	assert.Equal(t, 0, got.ExecutedCount())
}

// flakyStore fails every Update after the first passUpdates calls once armed.
type flakyStore struct {
	sdk.Store
	armed       bool
	passUpdates int
}

func (s *flakyStore) Update(ctx context.Context, fn func(tx sdk.Tx) error) error {
	if s.armed {
		if s.passUpdates == 0 {
			return errors.New("disk I/O error")
		}
		s.passUpdates--
	}

	return s.Store.Update(ctx, fn)
}

func TestEngine_ExecuteNext_NotRecorded(t *testing.T) {
	t.Parallel()

	store := &flakyStore{Store: memory.NewStore()}
	f := newFixtureWithStore(t, store, 10, nil)
	op := f.operation(1)
	batch := f.enqueuedBatch(t, 100, op, f.operation(2))
	f.clock.Set(111)
	store.armed, store.passUpdates = true, 1

	_, err := f.engine.ExecuteNext(f.ctx, batch)
	require.ErrorIs(t, err, ErrNotRecorded)
	require.NotErrorIs(t, err, ErrInvocationFailed)

	var recordErr *UnrecordedExecutionError
	require.ErrorAs(t, err, &recordErr)
	assert.Equal(t, 0, recordErr.Index)
	assert.Equal(t, types.NewOperation(op).ID().Hex(), recordErr.Invocation.Hash)
	assert.EqualError(t, recordErr.Err, "disk I/O error")
	assert.Equal(t, [][]byte{{1}}, f.program.calls)
	assert.Equal(t, 0, f.batch(t, batch).ExecutedCount())
}

func TestEngine_ExecuteNext_Concurrent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		giveStore func(t *testing.T) sdk.Store
	}{
		{
			name: "memory",
			giveStore: func(t *testing.T) sdk.Store {
				t.Helper()
				return memory.NewStore()
			},
		},
		{
			name: "bolt",
			giveStore: func(t *testing.T) sdk.Store {
				t.Helper()
				store, err := boltdb.Open(filepath.Join(t.TempDir(), "timelock.db"))
				require.NoError(t, err)
				t.Cleanup(func() { _ = store.Close() })

				return store
			},
		},
		{
			name: "sqlite",
			giveStore: func(t *testing.T) sdk.Store {
				t.Helper()
				store, err := sqlite.Open("file:" + filepath.Join(t.TempDir(), "timelock.db"))
				require.NoError(t, err)
				t.Cleanup(func() { _ = store.Close() })

				return store
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixtureWithStore(t, tt.giveStore(t), 10, nil)
			batch := f.enqueuedBatch(t, 100, f.operation(1), f.operation(2), f.operation(3))
			f.clock.Set(111)

			const executors = 16
			results := make([]types.ExecutionResult, executors)
			var g errgroup.Group
			for i := range executors {
				g.Go(func() error {
					res, err := f.engine.ExecuteNext(f.ctx, batch)
					results[i] = res

					return err
				})
			}
			require.NoError(t, g.Wait())

			var executed []int
			for _, res := range results {
				if res.Executed {
					executed = append(executed, res.OperationIndex)
				}
			}
			assert.ElementsMatch(t, []int{0, 1, 2}, executed)
			assert.Equal(t, [][]byte{{1}, {2}, {3}}, f.program.calls)

			got := f.batch(t, batch)
			assert.Equal(t, types.BatchStatusExecuted, got.Status)
			assert.Equal(t, 3, got.ExecutedCount())
		})
	}
}
