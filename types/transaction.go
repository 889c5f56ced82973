package types

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/gagliardetto/solana-go"
)

// InvocationResult is returned by an invoker after a delegated call completed.
// Users of this struct should cast RawData to the type produced by their invoker.
type InvocationResult struct {
	Hash    string `json:"hash"`
	RawData any    `json:"rawData"`
}

// ExecutionResult describes the outcome of a single execute call against a batch.
type ExecutionResult struct {
	Batch solana.PublicKey `json:"batch"`
	// Executed is false when the batch had nothing left to run.
	Executed       bool             `json:"executed"`
	OperationIndex int              `json:"operationIndex"`
	OperationID    common.Hash      `json:"operationId"`
	Status         BatchStatus      `json:"status"`
	Invocation     InvocationResult `json:"invocation"`
}

// SignerProof is the structural evidence that a derived identity belongs to the timelock
// program. It carries no secret: anyone can recompute Authority from ProgramID, Seeds and Bump.
type SignerProof struct {
	ProgramID solana.PublicKey `json:"programId"`
	Seeds     [][]byte         `json:"seeds"`
	Bump      uint8            `json:"bump"`
	Authority solana.PublicKey `json:"authority"`
}
