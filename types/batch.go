package types

import (
	"github.com/gagliardetto/solana-go"
)

// Batch is an ordered list of delegated operations governed by the batch status state machine.
type Batch struct {
	Status BatchStatus `json:"status"`
	// IsHardCommitment is reserved for stronger commitment semantics. No transition branches on it.
	IsHardCommitment bool        `json:"isHardCommitment"`
	Operations       []Operation `json:"operations"`
	// Timelock is the address of the owning configuration.
	Timelock       solana.PublicKey `json:"timelock"`
	EnqueuedAtTick uint64           `json:"enqueuedAtTick"`
	// Authority may add operations to and seal the batch.
	Authority solana.PublicKey `json:"authority"`
}

// NewBatch returns an empty batch in the Created status.
func NewBatch(timelock, authority solana.PublicKey) Batch {
	return Batch{
		Status:     BatchStatusCreated,
		Operations: []Operation{},
		Timelock:   timelock,
		Authority:  authority,
	}
}

// NextPending returns the index of the first operation, in insertion order, that has not been
// executed yet.
func (b Batch) NextPending() (int, bool) {
	for i, op := range b.Operations {
		if !op.Executed {
			return i, true
		}
	}

	return -1, false
}

// AllExecuted reports whether every operation in the batch has been executed. It is vacuously
// true for an empty batch.
func (b Batch) AllExecuted() bool {
	_, pending := b.NextPending()

	return !pending
}

// ExecutedCount returns the number of executed operations.
func (b Batch) ExecutedCount() int {
	n := 0
	for _, op := range b.Operations {
		if op.Executed {
			n++
		}
	}

	return n
}
