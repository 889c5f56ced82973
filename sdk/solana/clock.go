package solana

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go/rpc"

	"github.com/smartcontractkit/timelock/sdk"
)

var _ sdk.Clock = (*SlotClock)(nil)

// SlotClock reads ticks from the slot of a solana cluster.
type SlotClock struct {
	client     *rpc.Client
	commitment rpc.CommitmentType
}

// NewSlotClock creates a clock backed by the getSlot RPC at the given commitment. Use a
// finalized commitment to keep ticks monotonic.
func NewSlotClock(client *rpc.Client, commitment rpc.CommitmentType) *SlotClock {
	return &SlotClock{client: client, commitment: commitment}
}

func (c *SlotClock) CurrentTick(ctx context.Context) (uint64, error) {
	slot, err := c.client.GetSlot(ctx, c.commitment)
	if err != nil {
		return 0, fmt.Errorf("unable to get slot: %w", err)
	}

	return slot, nil
}
