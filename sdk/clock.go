package sdk

import "context"

// Clock is the monotonic tick source used for every window check.
type Clock interface {
	CurrentTick(ctx context.Context) (uint64, error)
}
