package sdk

import (
	"context"

	"github.com/gagliardetto/solana-go"
)

type TimelockInspector interface {
	GetAdministrator(ctx context.Context, timelock solana.PublicKey) (solana.PublicKey, error)
	GetProposers(ctx context.Context, timelock solana.PublicKey) ([]solana.PublicKey, error)
	GetDelay(ctx context.Context, timelock solana.PublicKey) (uint64, error)
	IsBatchPending(ctx context.Context, batch solana.PublicKey) (bool, error)
	IsBatchReady(ctx context.Context, batch solana.PublicKey) (bool, error)
	IsBatchDone(ctx context.Context, batch solana.PublicKey) (bool, error)
}
