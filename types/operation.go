package types

import (
	"bytes"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gagliardetto/solana-go"
)

// AccountParameter describes one account passed to a delegated call and the capabilities the
// call expects for it.
type AccountParameter struct {
	Identity     solana.PublicKey `json:"identity"`
	IsAuthorizer bool             `json:"isAuthorizer"`
	IsMutable    bool             `json:"isMutable"`
}

// Operation is an opaque delegated call held by a batch. The payload is never interpreted.
type Operation struct {
	Target     solana.PublicKey   `json:"target"`
	Parameters []AccountParameter `json:"parameters"`
	Payload    []byte             `json:"payload"`
	Executed   bool               `json:"executed"`
}

// OperationParams are the inputs to append an operation to a batch.
type OperationParams struct {
	Target     solana.PublicKey   `json:"target"`
	Parameters []AccountParameter `json:"parameters"`
	Payload    []byte             `json:"payload"`
}

// NewOperation creates a pending operation from the given params. Slices are copied so the
// caller may reuse its buffers.
func NewOperation(params OperationParams) Operation {
	parameters := make([]AccountParameter, len(params.Parameters))
	copy(parameters, params.Parameters)
	payload := make([]byte, len(params.Payload))
	copy(payload, params.Payload)

	return Operation{
		Target:     params.Target,
		Parameters: parameters,
		Payload:    payload,
		Executed:   false,
	}
}

// ID returns the deterministic identifier of the operation. The executed flag is not part of it.
func (o Operation) ID() common.Hash {
	return HashOperation(o.Target, o.Parameters, o.Payload)
}

// HashOperation hashes the target, the account parameters and the payload of a delegated call.
func HashOperation(target solana.PublicKey, parameters []AccountParameter, payload []byte) common.Hash {
	var encodedData bytes.Buffer

	encodedData.Write(target[:])
	for _, p := range parameters {
		encodedData.Write(p.Identity[:])
		if p.IsAuthorizer {
			encodedData.WriteByte(1)
		} else {
			encodedData.WriteByte(0)
		}
		if p.IsMutable {
			encodedData.WriteByte(1)
		} else {
			encodedData.WriteByte(0)
		}
	}
	encodedData.Write(payload)

	return crypto.Keccak256Hash(encodedData.Bytes())
}
