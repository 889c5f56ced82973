package types

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
)

func TestNewBatch(t *testing.T) {
	t.Parallel()

	timelock := solana.NewWallet().PublicKey()
	authority := solana.NewWallet().PublicKey()

	batch := NewBatch(timelock, authority)

	assert.Equal(t, BatchStatusCreated, batch.Status)
	assert.False(t, batch.IsHardCommitment)
	assert.Empty(t, batch.Operations)
	assert.Equal(t, uint64(0), batch.EnqueuedAtTick)
	assert.Equal(t, timelock, batch.Timelock)
	assert.Equal(t, authority, batch.Authority)
}

func TestBatch_NextPending(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		giveExecuted  []bool
		wantIndex     int
		wantPending   bool
		wantAll       bool
		wantCompleted int
	}{
		{name: "empty batch", giveExecuted: nil, wantIndex: -1, wantPending: false, wantAll: true},
		{name: "nothing executed", giveExecuted: []bool{false, false}, wantIndex: 0, wantPending: true},
		{name: "first executed", giveExecuted: []bool{true, false}, wantIndex: 1, wantPending: true, wantCompleted: 1},
		{name: "gap is filled first", giveExecuted: []bool{true, false, true}, wantIndex: 1, wantPending: true, wantCompleted: 2},
		{name: "all executed", giveExecuted: []bool{true, true}, wantIndex: -1, wantPending: false, wantAll: true, wantCompleted: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			batch := NewBatch(solana.PublicKey{}, solana.PublicKey{})
			for _, executed := range tt.giveExecuted {
				batch.Operations = append(batch.Operations, Operation{Executed: executed})
			}

			idx, pending := batch.NextPending()
			assert.Equal(t, tt.wantIndex, idx)
			assert.Equal(t, tt.wantPending, pending)
			assert.Equal(t, tt.wantAll, batch.AllExecuted())
			assert.Equal(t, tt.wantCompleted, batch.ExecutedCount())
		})
	}
}
