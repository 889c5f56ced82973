package timelock

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/smartcontractkit/timelock/sdk"
	solanasdk "github.com/smartcontractkit/timelock/sdk/solana"
	"github.com/smartcontractkit/timelock/types"
)

// CreateConfig creates the timelock configuration for params.ID and returns its address. Any
// payer may create a configuration; the record is created at most once per id.
func (e *Engine) CreateConfig(
	ctx context.Context, payer solana.PublicKey, params types.CreateConfigParams,
) (solana.PublicKey, error) {
	lggr := sdk.LoggerFrom(ctx)

	if len(params.Proposers) > int(params.MaxProposers) {
		return solana.PublicKey{}, NewInvalidCapacityError(len(params.Proposers), params.MaxProposers)
	}

	addr, bump, err := solanasdk.FindTimelockConfigPDA(e.programID, params.ID)
	if err != nil {
		return solana.PublicKey{}, err
	}
	_, signerBump, err := solanasdk.FindTimelockSignerPDA(e.programID, params.ID)
	if err != nil {
		return solana.PublicKey{}, err
	}

	proposers := make([]solana.PublicKey, len(params.Proposers))
	copy(proposers, params.Proposers)

	data, err := types.MarshalConfig(types.Config{
		ID:            params.ID,
		Bump:          bump,
		SignerBump:    signerBump,
		Proposers:     proposers,
		MaxProposers:  params.MaxProposers,
		Administrator: params.Administrator,
		DelayTicks:    params.DelayTicks,
	})
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("unable to encode timelock config: %w", err)
	}

	err = e.store.Update(ctx, func(tx sdk.Tx) error {
		if err := tx.Create(addr, data); err != nil {
			if errors.Is(err, sdk.ErrRecordExists) {
				return fmt.Errorf("%w: id %d at %s", ErrConfigExists, params.ID, addr)
			}

			return fmt.Errorf("unable to create timelock config: %w", err)
		}

		return nil
	})
	if err != nil {
		return solana.PublicKey{}, err
	}

	lggr.Infof("timelock %d created at %s by %s: admin %s, delay %d ticks, %d/%d proposers",
		params.ID, addr, payer, params.Administrator, params.DelayTicks, len(proposers), params.MaxProposers)

	return addr, nil
}

// SetDelay replaces the delay of the timelock. Only the administrator may call it. Any value is
// accepted, including zero.
func (e *Engine) SetDelay(ctx context.Context, caller, timelock solana.PublicKey, delayTicks uint64) error {
	err := e.updateConfig(ctx, caller, timelock, func(cfg *types.Config) {
		cfg.DelayTicks = delayTicks
	})
	if err != nil {
		return err
	}

	sdk.LoggerFrom(ctx).Infof("timelock %s delay set to %d ticks", timelock, delayTicks)

	return nil
}

// SetAdministrator hands administration of the timelock to a new identity. It takes effect
// immediately, including for batches already in flight.
func (e *Engine) SetAdministrator(ctx context.Context, caller, timelock, administrator solana.PublicKey) error {
	err := e.updateConfig(ctx, caller, timelock, func(cfg *types.Config) {
		cfg.Administrator = administrator
	})
	if err != nil {
		return err
	}

	sdk.LoggerFrom(ctx).Infof("timelock %s administrator set to %s", timelock, administrator)

	return nil
}

func (e *Engine) updateConfig(
	ctx context.Context, caller, timelock solana.PublicKey, mutate func(cfg *types.Config),
) error {
	err := e.store.Update(ctx, func(tx sdk.Tx) error {
		cfg, err := getConfig(tx, timelock)
		if err != nil {
			return err
		}
		if err := requireIdentity(RoleAdministrator, cfg.Administrator, caller); err != nil {
			return err
		}

		mutate(&cfg)

		return putConfig(tx, timelock, cfg)
	})
	if err != nil {
		sdk.LoggerFrom(ctx).Debugf("timelock %s update rejected: %v", timelock, err)
	}

	return err
}
