package solana

import (
	"context"
	"errors"

	"github.com/gagliardetto/solana-go"

	"github.com/smartcontractkit/timelock/sdk"
	sdkerrors "github.com/smartcontractkit/timelock/sdk/errors"
	"github.com/smartcontractkit/timelock/types"
)

var _ sdk.Invoker = (*Router)(nil)

// ErrUntrustedProgram is returned when a signer proof was issued for a program other than the
// timelock the router serves.
var ErrUntrustedProgram = errors.New("signer proof is not issued by the trusted timelock program")

// Program processes an instruction routed to it.
type Program interface {
	Process(ctx context.Context, accounts []*solana.AccountMeta, data []byte) error
}

// ProgramFunc adapts a function to the Program interface.
type ProgramFunc func(ctx context.Context, accounts []*solana.AccountMeta, data []byte) error

func (f ProgramFunc) Process(ctx context.Context, accounts []*solana.AccountMeta, data []byte) error {
	return f(ctx, accounts, data)
}

// Router is an in-process Invoker. It dispatches instructions to registered programs after
// checking that every signer flag is backed either by a valid signer proof or by an identity
// the router was told has signed.
type Router struct {
	timelockProgramID solana.PublicKey
	programs          map[solana.PublicKey]Program
	signers           map[solana.PublicKey]struct{}
	fallback          Program
}

type RouterOption func(*Router)

// WithProgram registers a program for the given id.
func WithProgram(programID solana.PublicKey, program Program) RouterOption {
	return func(r *Router) {
		r.programs[programID] = program
	}
}

// WithSigners marks identities as having signed every routed instruction.
func WithSigners(signers ...solana.PublicKey) RouterOption {
	return func(r *Router) {
		for _, s := range signers {
			r.signers[s] = struct{}{}
		}
	}
}

// WithFallbackProgram sets the program used for targets without a registered program.
func WithFallbackProgram(program Program) RouterOption {
	return func(r *Router) {
		r.fallback = program
	}
}

// NewRouter creates a Router that accepts signer proofs issued by timelockProgramID.
func NewRouter(timelockProgramID solana.PublicKey, opts ...RouterOption) *Router {
	r := &Router{
		timelockProgramID: timelockProgramID,
		programs:          make(map[solana.PublicKey]Program),
		signers:           make(map[solana.PublicKey]struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Invoke verifies the proof and the signer flags of ix, then runs the target program.
func (r *Router) Invoke(ctx context.Context, ix solana.Instruction, proof types.SignerProof) (types.InvocationResult, error) {
	if !proof.ProgramID.Equals(r.timelockProgramID) {
		return types.InvocationResult{}, ErrUntrustedProgram
	}
	if err := VerifySignerProof(proof); err != nil {
		return types.InvocationResult{}, err
	}

	accounts := ix.Accounts()
	for _, acc := range accounts {
		if !acc.IsSigner || acc.PublicKey.Equals(proof.Authority) {
			continue
		}
		if _, ok := r.signers[acc.PublicKey]; !ok {
			return types.InvocationResult{}, sdkerrors.NewMissingSignatureError(acc.PublicKey)
		}
	}

	program, ok := r.programs[ix.ProgramID()]
	if !ok {
		if r.fallback == nil {
			return types.InvocationResult{}, sdkerrors.NewProgramNotFoundError(ix.ProgramID())
		}
		program = r.fallback
	}

	params, err := OperationParamsFromInstruction(ix)
	if err != nil {
		return types.InvocationResult{}, err
	}

	if err := program.Process(ctx, accounts, params.Payload); err != nil {
		return types.InvocationResult{}, sdkerrors.NewProgramFailedError(ix.ProgramID(), err)
	}

	hash := types.HashOperation(params.Target, params.Parameters, params.Payload)

	return types.InvocationResult{
		Hash:    hash.Hex(),
		RawData: ix,
	}, nil
}
