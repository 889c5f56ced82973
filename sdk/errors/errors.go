package sdkerrors

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

type MissingSignatureError struct {
	Account solana.PublicKey
}

func (e *MissingSignatureError) Error() string {
	return fmt.Sprintf("missing signature for account %s", e.Account)
}

func NewMissingSignatureError(account solana.PublicKey) *MissingSignatureError {
	return &MissingSignatureError{Account: account}
}

type ProgramNotFoundError struct {
	ProgramID solana.PublicKey
}

func (e *ProgramNotFoundError) Error() string {
	return fmt.Sprintf("program %s is not registered", e.ProgramID)
}

func NewProgramNotFoundError(programID solana.PublicKey) *ProgramNotFoundError {
	return &ProgramNotFoundError{ProgramID: programID}
}

// Error for a program that rejected a routed instruction.
type ProgramFailedError struct {
	ProgramID solana.PublicKey
	Err       error
}

// Error returns the error message.
func (e *ProgramFailedError) Error() string {
	return fmt.Sprintf("program %s failed: %v", e.ProgramID, e.Err)
}

func (e *ProgramFailedError) Unwrap() error {
	return e.Err
}

func NewProgramFailedError(programID solana.PublicKey, err error) *ProgramFailedError {
	return &ProgramFailedError{ProgramID: programID, Err: err}
}
