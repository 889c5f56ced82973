package timelock

import (
	"github.com/spf13/cobra"
)

func BuildTimelockCmd() *cobra.Command {
	cmd := cobra.Command{
		Use:   "timelock",
		Short: "Manage timelocks and their transaction batches",
		Long: `Manage timelocks and their transaction batches.

Settings are read from the environment or a .env file: PRIVATE_KEY (base58, the caller),
TIMELOCK_STORE (bolt or sqlite), TIMELOCK_STORE_PATH, TIMELOCK_PROGRAM_ID, RPC_URL and
TIMELOCK_TICK. Flags take precedence over the environment.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("store", storeBolt, "Record store backend (bolt or sqlite)")
	cmd.PersistentFlags().String("store-path", "", "Path of the record store")
	cmd.PersistentFlags().String("program-id", "", "Timelock program id, defaults to the deployed program")
	cmd.PersistentFlags().String("rpc-url", "", "Solana RPC endpoint used as the clock")
	cmd.PersistentFlags().Uint64("tick", 0, "Current tick when no RPC endpoint is configured")
	cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")

	cmd.AddCommand(buildConfigCmd())
	cmd.AddCommand(buildBatchCmd())

	return &cmd
}
