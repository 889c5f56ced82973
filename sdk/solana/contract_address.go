package solana

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gagliardetto/solana-go"
)

// ContractAddress returns a string representation of a timelock instance
// which is a combination of the program id and the timelock id <PROGRAM_ID>.<TIMELOCK_ID>
func ContractAddress(programID solana.PublicKey, timelockID uint64) string {
	return fmt.Sprintf("%s.%d", programID.String(), timelockID)
}

func ParseContractAddress(address string) (solana.PublicKey, uint64, error) {
	const numParts = 2
	parts := strings.SplitN(address, ".", numParts)
	if len(parts) != numParts {
		return solana.PublicKey{}, 0, fmt.Errorf("invalid solana contract address format: %q", address)
	}

	programID, err := solana.PublicKeyFromBase58(parts[0])
	if err != nil {
		return solana.PublicKey{}, 0, fmt.Errorf("unable to parse solana program id: %w", err)
	}

	timelockID, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return solana.PublicKey{}, 0, fmt.Errorf("unable to parse timelock id: %w", err)
	}

	return programID, timelockID, nil
}
