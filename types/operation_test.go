package types

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
)

func TestNewOperation_CopiesInputs(t *testing.T) {
	t.Parallel()

	params := OperationParams{
		Target: solana.NewWallet().PublicKey(),
		Parameters: []AccountParameter{
			{Identity: solana.NewWallet().PublicKey(), IsMutable: true},
		},
		Payload: []byte{1, 2, 3},
	}

	op := NewOperation(params)
	params.Payload[0] = 9
	params.Parameters[0].IsAuthorizer = true

	assert.Equal(t, []byte{1, 2, 3}, op.Payload)
	assert.False(t, op.Parameters[0].IsAuthorizer)
	assert.False(t, op.Executed)
}

func TestOperation_ID(t *testing.T) {
	t.Parallel()

	target := solana.NewWallet().PublicKey()
	account := solana.NewWallet().PublicKey()
	op := Operation{
		Target:     target,
		Parameters: []AccountParameter{{Identity: account, IsMutable: true}},
		Payload:    []byte("payload"),
	}

	executed := op
	executed.Executed = true
	assert.Equal(t, op.ID(), executed.ID(), "executed flag must not change the id")

	signer := op
	signer.Parameters = []AccountParameter{{Identity: account, IsAuthorizer: true, IsMutable: true}}
	assert.NotEqual(t, op.ID(), signer.ID())

	otherPayload := op
	otherPayload.Payload = []byte("payload2")
	assert.NotEqual(t, op.ID(), otherPayload.ID())

	assert.Equal(t, op.ID(), HashOperation(target, op.Parameters, op.Payload))
}
