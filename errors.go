package timelock

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/smartcontractkit/timelock/types"
)

var (
	ErrInvalidCapacity     = errors.New("proposer list exceeds capacity")
	ErrUnauthorized        = errors.New("caller is not authorized")
	ErrNotModifiable       = errors.New("transaction batch is not modifiable")
	ErrNotSealed           = errors.New("transaction batch is not sealed")
	ErrNotEnqueueable      = errors.New("transaction batch cannot be enqueued")
	ErrNotCancelable       = errors.New("transaction batch cannot be cancelled")
	ErrOutsideCancelWindow = errors.New("transaction batch can only be cancelled during the timelock period")
	ErrNotEnqueued         = errors.New("transaction batch is not enqueued")
	ErrTooEarly            = errors.New("transaction batch is not yet ready to be executed")
	ErrInvocationFailed    = errors.New("delegated call failed")
	ErrClockRegressed      = errors.New("clock is behind the enqueued tick")
	ErrReentrantExecution  = errors.New("transaction batch is already executing in this call chain")
	ErrNotRecorded         = errors.New("delegated call succeeded but was not recorded")

	ErrConfigNotFound = errors.New("timelock config not found")
	ErrConfigExists   = errors.New("timelock config already exists")
	ErrBatchNotFound  = errors.New("transaction batch not found")
	ErrBatchExists    = errors.New("transaction batch already exists")
)

// InvalidCapacityError is returned when a config is created with more proposers than it can hold.
type InvalidCapacityError struct {
	Proposers    int
	MaxProposers uint16
}

func (e *InvalidCapacityError) Error() string {
	return fmt.Sprintf("%s: %d proposers, max is %d", ErrInvalidCapacity, e.Proposers, e.MaxProposers)
}

func (e *InvalidCapacityError) Unwrap() error {
	return ErrInvalidCapacity
}

func NewInvalidCapacityError(proposers int, maxProposers uint16) *InvalidCapacityError {
	return &InvalidCapacityError{Proposers: proposers, MaxProposers: maxProposers}
}

// Role names the identity an operation is checked against.
type Role string

const (
	RoleAdministrator  Role = "administrator"
	RoleBatchAuthority Role = "batch authority"
)

// UnauthorizedError is returned when the caller does not match the identity required by an
// operation.
type UnauthorizedError struct {
	Role     Role
	Expected solana.PublicKey
	Caller   solana.PublicKey
}

func (e *UnauthorizedError) Error() string {
	return fmt.Sprintf("%s: %s is not the %s (%s)", ErrUnauthorized, e.Caller, e.Role, e.Expected)
}

func (e *UnauthorizedError) Unwrap() error {
	return ErrUnauthorized
}

func NewUnauthorizedError(role Role, expected, caller solana.PublicKey) *UnauthorizedError {
	return &UnauthorizedError{Role: role, Expected: expected, Caller: caller}
}

// BatchStatusError is returned when a batch is not in the status a transition requires.
type BatchStatusError struct {
	Batch  solana.PublicKey
	Status types.BatchStatus
	err    error
}

func (e *BatchStatusError) Error() string {
	return fmt.Sprintf("%s: batch %s is %s", e.err, e.Batch, e.Status)
}

func (e *BatchStatusError) Unwrap() error {
	return e.err
}

func NewBatchStatusError(batch solana.PublicKey, status types.BatchStatus, err error) *BatchStatusError {
	return &BatchStatusError{Batch: batch, Status: status, err: err}
}

// WindowError is returned when a cancel or execute call falls outside its window.
type WindowError struct {
	Batch   solana.PublicKey
	Elapsed uint64
	Delay   uint64
	err     error
}

func (e *WindowError) Error() string {
	return fmt.Sprintf("%s: batch %s, %d of %d ticks elapsed", e.err, e.Batch, e.Elapsed, e.Delay)
}

func (e *WindowError) Unwrap() error {
	return e.err
}

func NewWindowError(batch solana.PublicKey, elapsed, delay uint64, err error) *WindowError {
	return &WindowError{Batch: batch, Elapsed: elapsed, Delay: delay, err: err}
}

// InvocationError is returned when the delegated call of an operation fails. The operation stays
// pending and can be retried.
type InvocationError struct {
	Batch  solana.PublicKey
	Index  int
	Target solana.PublicKey
	Err    error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("%s: operation %d of batch %s (target %s): %v", ErrInvocationFailed, e.Index, e.Batch, e.Target, e.Err)
}

func (e *InvocationError) Unwrap() []error {
	return []error{ErrInvocationFailed, e.Err}
}

func NewInvocationError(batch solana.PublicKey, index int, target solana.PublicKey, err error) *InvocationError {
	return &InvocationError{Batch: batch, Index: index, Target: target, Err: err}
}

// UnrecordedExecutionError is returned when the delegated call of an operation succeeded but
// marking it executed failed. The operation must not be retried blindly: the batch still lists
// it as pending.
type UnrecordedExecutionError struct {
	Batch      solana.PublicKey
	Index      int
	Invocation types.InvocationResult
	Err        error
}

func (e *UnrecordedExecutionError) Error() string {
	return fmt.Sprintf("%s: operation %d of batch %s (invocation %s): %v", ErrNotRecorded, e.Index, e.Batch, e.Invocation.Hash, e.Err)
}

func (e *UnrecordedExecutionError) Unwrap() []error {
	return []error{ErrNotRecorded, e.Err}
}

func NewUnrecordedExecutionError(batch solana.PublicKey, index int, invocation types.InvocationResult, err error) *UnrecordedExecutionError {
	return &UnrecordedExecutionError{Batch: batch, Index: index, Invocation: invocation, Err: err}
}
