// Package clock provides tick sources that are not backed by a cluster.
package clock

import (
	"context"
	"sync/atomic"

	"github.com/smartcontractkit/timelock/sdk"
)

var _ sdk.Clock = (*Manual)(nil)

// Manual is a clock whose tick only moves when told to.
type Manual struct {
	tick atomic.Uint64
}

func NewManual(tick uint64) *Manual {
	c := &Manual{}
	c.tick.Store(tick)

	return c
}

func (c *Manual) CurrentTick(ctx context.Context) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	return c.tick.Load(), nil
}

// Set moves the clock to tick. Ticks never go backwards; a smaller value is ignored.
func (c *Manual) Set(tick uint64) {
	for {
		current := c.tick.Load()
		if tick <= current || c.tick.CompareAndSwap(current, tick) {
			return
		}
	}
}

// Advance moves the clock forward by n ticks and returns the new tick.
func (c *Manual) Advance(n uint64) uint64 {
	return c.tick.Add(n)
}
