package sdk

import (
	"context"

	"github.com/gagliardetto/solana-go"

	"github.com/smartcontractkit/timelock/types"
)

// Invoker runs a delegated call on behalf of the timelock.
//
// The proof allows the invoker to accept proof.Authority as a signer of ix without any key
// material. Any other account flagged as a signer must be authorized by the invoker itself.
type Invoker interface {
	Invoke(ctx context.Context, ix solana.Instruction, proof types.SignerProof) (types.InvocationResult, error)
}
