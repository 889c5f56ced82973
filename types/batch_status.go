package types //nolint:revive

import "fmt"

// BatchStatus is the lifecycle state of a transaction batch.
//
// Statuses only move forward: Created -> Sealed -> Enqueued -> {Cancelled | Executed}.
type BatchStatus uint8

const (
	BatchStatusCreated BatchStatus = iota
	BatchStatusSealed
	BatchStatusEnqueued
	BatchStatusCancelled
	BatchStatusExecuted
)

var batchStatusNames = map[BatchStatus]string{
	BatchStatusCreated:   "Created",
	BatchStatusSealed:    "Sealed",
	BatchStatusEnqueued:  "Enqueued",
	BatchStatusCancelled: "Cancelled",
	BatchStatusExecuted:  "Executed",
}

// StringToBatchStatus converts a string to a BatchStatus.
var StringToBatchStatus = map[string]BatchStatus{
	"Created":   BatchStatusCreated,
	"Sealed":    BatchStatusSealed,
	"Enqueued":  BatchStatusEnqueued,
	"Cancelled": BatchStatusCancelled,
	"Executed":  BatchStatusExecuted,
}

func (s BatchStatus) String() string {
	if name, ok := batchStatusNames[s]; ok {
		return name
	}

	return fmt.Sprintf("BatchStatus(%d)", uint8(s))
}

// IsTerminal reports whether no further transition can leave this status.
func (s BatchStatus) IsTerminal() bool {
	return s == BatchStatusCancelled || s == BatchStatusExecuted
}

// MarshalText implements encoding.TextMarshaler.
func (s BatchStatus) MarshalText() ([]byte, error) {
	name, ok := batchStatusNames[s]
	if !ok {
		return nil, fmt.Errorf("unknown batch status: %d", uint8(s))
	}

	return []byte(name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *BatchStatus) UnmarshalText(b []byte) error {
	status, ok := StringToBatchStatus[string(b)]
	if !ok {
		return fmt.Errorf("unknown batch status: %q", string(b))
	}
	*s = status

	return nil
}
