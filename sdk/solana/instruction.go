package solana

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/smartcontractkit/timelock/types"
)

// NewInstruction converts a stored operation into an instruction. Every account equal to
// authority is flagged as a signer; no other account has its flags changed.
func NewInstruction(op types.Operation, authority solana.PublicKey) *solana.GenericInstruction {
	accounts := make(solana.AccountMetaSlice, len(op.Parameters))
	for i, p := range op.Parameters {
		accounts[i] = AccountMetaFromParameter(p)
		if p.Identity.Equals(authority) {
			accounts[i].IsSigner = true
		}
	}

	data := make([]byte, len(op.Payload))
	copy(data, op.Payload)

	return solana.NewInstruction(op.Target, accounts, data)
}

// OperationParamsFromInstruction converts an instruction into params for a batch operation.
func OperationParamsFromInstruction(ix solana.Instruction) (types.OperationParams, error) {
	data, err := ix.Data()
	if err != nil {
		return types.OperationParams{}, fmt.Errorf("unable to get instruction data: %w", err)
	}

	accounts := ix.Accounts()
	parameters := make([]types.AccountParameter, len(accounts))
	for i, acc := range accounts {
		parameters[i] = ParameterFromAccountMeta(acc)
	}

	return types.OperationParams{
		Target:     ix.ProgramID(),
		Parameters: parameters,
		Payload:    data,
	}, nil
}

func AccountMetaFromParameter(p types.AccountParameter) *solana.AccountMeta {
	return solana.NewAccountMeta(p.Identity, p.IsMutable, p.IsAuthorizer)
}

func ParameterFromAccountMeta(meta *solana.AccountMeta) types.AccountParameter {
	return types.AccountParameter{
		Identity:     meta.PublicKey,
		IsAuthorizer: meta.IsSigner,
		IsMutable:    meta.IsWritable,
	}
}
