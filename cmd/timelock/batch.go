package timelock

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/smartcontractkit/timelock/types"
)

func buildBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Assemble, approve and execute transaction batches",
	}

	cmd.AddCommand(buildBatchCreateCmd())
	cmd.AddCommand(buildBatchAddCmd())
	cmd.AddCommand(buildBatchTransitionCmd("seal", "Seal a batch so it can be approved",
		func(env *environment, batch solana.PublicKey) error {
			return env.engine.Seal(env.ctx, env.caller, batch)
		}))
	cmd.AddCommand(buildBatchTransitionCmd("approve", "Approve a sealed batch and start its delay",
		func(env *environment, batch solana.PublicKey) error {
			return env.engine.Approve(env.ctx, env.caller, batch)
		}))
	cmd.AddCommand(buildBatchTransitionCmd("veto", "Cancel an enqueued batch during its delay",
		func(env *environment, batch solana.PublicKey) error {
			return env.engine.Veto(env.ctx, env.caller, batch)
		}))
	cmd.AddCommand(buildBatchExecuteCmd())
	cmd.AddCommand(buildBatchShowCmd())

	return cmd
}

func buildBatchCreateCmd() *cobra.Command {
	var (
		id        uint64
		authority string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an empty batch and print its address",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnvironment(cmd, func(env *environment) error {
				owner := env.caller
				if authority != "" {
					key, err := parsePublicKey("authority", authority)
					if err != nil {
						return err
					}
					owner = key
				}

				timelock, err := env.engine.ConfigAddress(id)
				if err != nil {
					return err
				}

				batch := solana.NewWallet().PublicKey()
				if err := env.engine.CreateBatch(env.ctx, batch, timelock, owner); err != nil {
					return err
				}

				fmt.Fprintln(cmd.OutOrStdout(), batch.String())

				return nil
			})
		},
	}

	cmd.Flags().Uint64Var(&id, "id", 0, "Timelock id")
	cmd.Flags().StringVar(&authority, "authority", "", "Batch authority, defaults to the caller")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}

func buildBatchAddCmd() *cobra.Command {
	var (
		batch    string
		target   string
		accounts []string
		data     string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Append an operation to a batch",
		Long: `Append an operation to a batch.

Accounts are given as <pubkey>[:s][:w], where s marks the account as an authorizer and w as
mutable. Data is 0x-prefixed hex.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			batchAddr, err := parsePublicKey("batch", batch)
			if err != nil {
				return err
			}
			params := types.OperationParams{
				Parameters: make([]types.AccountParameter, 0, len(accounts)),
			}
			params.Target, err = parsePublicKey("target", target)
			if err != nil {
				return err
			}
			for _, a := range accounts {
				p, err := parseAccount(a)
				if err != nil {
					return err
				}
				params.Parameters = append(params.Parameters, p)
			}
			if data != "" {
				params.Payload, err = hexutil.Decode(data)
				if err != nil {
					return fmt.Errorf("invalid data %q: %w", data, err)
				}
			}

			return withEnvironment(cmd, func(env *environment) error {
				if err := env.engine.AddOperation(env.ctx, env.caller, batchAddr, params); err != nil {
					return err
				}

				id := types.HashOperation(params.Target, params.Parameters, params.Payload)
				fmt.Fprintf(cmd.OutOrStdout(), "Operation %s added to batch %s\n", id.Hex(), batchAddr)

				return nil
			})
		},
	}

	cmd.Flags().StringVar(&batch, "batch", "", "Batch address")
	cmd.Flags().StringVar(&target, "target", "", "Program the operation calls")
	cmd.Flags().StringArrayVar(&accounts, "account", nil, "Account passed to the call, may be repeated")
	cmd.Flags().StringVar(&data, "data", "", "Call data")
	_ = cmd.MarkFlagRequired("batch")
	_ = cmd.MarkFlagRequired("target")

	return cmd
}

func buildBatchTransitionCmd(
	use, short string, transition func(env *environment, batch solana.PublicKey) error,
) *cobra.Command {
	var batch string

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			batchAddr, err := parsePublicKey("batch", batch)
			if err != nil {
				return err
			}

			return withEnvironment(cmd, func(env *environment) error {
				if err := transition(env, batchAddr); err != nil {
					return err
				}

				b, err := env.inspector.GetBatch(env.ctx, batchAddr)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Batch %s is %s\n", batchAddr, b.Status)

				return nil
			})
		},
	}

	cmd.Flags().StringVar(&batch, "batch", "", "Batch address")
	_ = cmd.MarkFlagRequired("batch")

	return cmd
}

func buildBatchExecuteCmd() *cobra.Command {
	var (
		batch string
		all   bool
	)

	cmd := &cobra.Command{
		Use:   "execute",
		Short: "Execute the next pending operation of a ready batch",
		RunE: func(cmd *cobra.Command, args []string) error {
			batchAddr, err := parsePublicKey("batch", batch)
			if err != nil {
				return err
			}

			return withEnvironment(cmd, func(env *environment) error {
				for {
					res, err := env.engine.ExecuteNext(env.ctx, batchAddr)
					if err != nil {
						return err
					}
					if !res.Executed {
						fmt.Fprintf(cmd.OutOrStdout(), "Batch %s has no pending operations\n", batchAddr)
						return nil
					}

					fmt.Fprintf(cmd.OutOrStdout(), "Operation %d (%s) executed, batch is %s\n",
						res.OperationIndex, res.OperationID.Hex(), res.Status)
					if !all || res.Status == types.BatchStatusExecuted {
						return nil
					}
				}
			})
		},
	}

	cmd.Flags().StringVar(&batch, "batch", "", "Batch address")
	cmd.Flags().BoolVar(&all, "all", false, "Execute every pending operation")
	_ = cmd.MarkFlagRequired("batch")

	return cmd
}

func buildBatchShowCmd() *cobra.Command {
	var batch string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print a batch as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			batchAddr, err := parsePublicKey("batch", batch)
			if err != nil {
				return err
			}

			return withEnvironment(cmd, func(env *environment) error {
				b, err := env.inspector.GetBatch(env.ctx, batchAddr)
				if err != nil {
					return err
				}

				return printJSON(cmd, b)
			})
		},
	}

	cmd.Flags().StringVar(&batch, "batch", "", "Batch address")
	_ = cmd.MarkFlagRequired("batch")

	return cmd
}
