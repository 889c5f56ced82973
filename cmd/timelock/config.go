package timelock

import (
	"encoding/json"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/smartcontractkit/timelock/internal/utils/safecast"
	solanasdk "github.com/smartcontractkit/timelock/sdk/solana"
	"github.com/smartcontractkit/timelock/types"
)

func buildConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create and administer timelock configurations",
	}

	cmd.AddCommand(buildConfigCreateCmd())
	cmd.AddCommand(buildConfigSetDelayCmd())
	cmd.AddCommand(buildConfigSetAdminCmd())
	cmd.AddCommand(buildConfigShowCmd())

	return cmd
}

func buildConfigCreateCmd() *cobra.Command {
	var (
		id           uint64
		delay        uint64
		admin        string
		maxProposers uint64
		proposers    []string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a timelock configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnvironment(cmd, func(env *environment) error {
				params := types.CreateConfigParams{
					ID:            id,
					DelayTicks:    delay,
					Administrator: env.caller,
					Proposers:     make([]solana.PublicKey, 0, len(proposers)),
				}

				if admin != "" {
					key, err := parsePublicKey("admin", admin)
					if err != nil {
						return err
					}
					params.Administrator = key
				}

				for _, p := range proposers {
					key, err := parsePublicKey("proposer", p)
					if err != nil {
						return err
					}
					params.Proposers = append(params.Proposers, key)
				}

				var err error
				if cmd.Flags().Changed("max-proposers") {
					params.MaxProposers, err = safecast.Uint64ToUint16(maxProposers)
				} else {
					params.MaxProposers, err = safecast.IntToUint16(len(params.Proposers))
				}
				if err != nil {
					return fmt.Errorf("invalid proposer capacity: %w", err)
				}

				addr, err := env.engine.CreateConfig(env.ctx, env.caller, params)
				if err != nil {
					return err
				}

				signer, _, err := env.engine.SignerAuthority(id)
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Timelock %s created at %s\n",
					solanasdk.ContractAddress(env.engine.ProgramID(), id), addr)
				fmt.Fprintf(cmd.OutOrStdout(), "Signer authority: %s\n", signer)

				return nil
			})
		},
	}

	cmd.Flags().Uint64Var(&id, "id", 0, "Timelock id")
	cmd.Flags().Uint64Var(&delay, "delay", 0, "Delay in ticks between approval and execution")
	cmd.Flags().StringVar(&admin, "admin", "", "Administrator, defaults to the caller")
	cmd.Flags().Uint64Var(&maxProposers, "max-proposers", 0, "Proposer capacity, defaults to the number of proposers")
	cmd.Flags().StringSliceVar(&proposers, "proposer", nil, "Proposer identity, may be repeated")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}

func buildConfigSetDelayCmd() *cobra.Command {
	var (
		id    uint64
		delay uint64
	)

	cmd := &cobra.Command{
		Use:   "set-delay",
		Short: "Change the delay of a timelock",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnvironment(cmd, func(env *environment) error {
				addr, err := env.engine.ConfigAddress(id)
				if err != nil {
					return err
				}
				if err := env.engine.SetDelay(env.ctx, env.caller, addr, delay); err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Delay of timelock %d set to %d ticks\n", id, delay)

				return nil
			})
		},
	}

	cmd.Flags().Uint64Var(&id, "id", 0, "Timelock id")
	cmd.Flags().Uint64Var(&delay, "delay", 0, "New delay in ticks")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("delay")

	return cmd
}

func buildConfigSetAdminCmd() *cobra.Command {
	var (
		id    uint64
		admin string
	)

	cmd := &cobra.Command{
		Use:   "set-admin",
		Short: "Hand administration of a timelock to another identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			newAdmin, err := parsePublicKey("admin", admin)
			if err != nil {
				return err
			}

			return withEnvironment(cmd, func(env *environment) error {
				addr, err := env.engine.ConfigAddress(id)
				if err != nil {
					return err
				}
				if err := env.engine.SetAdministrator(env.ctx, env.caller, addr, newAdmin); err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Administrator of timelock %d set to %s\n", id, newAdmin)

				return nil
			})
		},
	}

	cmd.Flags().Uint64Var(&id, "id", 0, "Timelock id")
	cmd.Flags().StringVar(&admin, "admin", "", "New administrator")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("admin")

	return cmd
}

func buildConfigShowCmd() *cobra.Command {
	var id uint64

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print a timelock configuration as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnvironment(cmd, func(env *environment) error {
				addr, err := env.engine.ConfigAddress(id)
				if err != nil {
					return err
				}
				cfg, err := env.inspector.GetConfig(env.ctx, addr)
				if err != nil {
					return err
				}

				return printJSON(cmd, cfg)
			})
		},
	}

	cmd.Flags().Uint64Var(&id, "id", 0, "Timelock id")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}

func printJSON(cmd *cobra.Command, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("unable to marshal output: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))

	return nil
}
