package solana

import (
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

var (
	timelockConfigSeed = []byte("timelock")
	timelockSignerSeed = []byte("timelock_signer")
)

// DefaultProgramID is the program id the timelock derives its addresses from.
var DefaultProgramID = solana.MustPublicKeyFromBase58("tiME1hz9F5C5ZecbvE5z6Msjy8PKfTqo1UuRYXfndKF")

// TimelockIDSeed encodes a timelock id as a little-endian u64 seed.
func TimelockIDSeed(timelockID uint64) []byte {
	seed := make([]byte, 8)
	binary.LittleEndian.PutUint64(seed, timelockID)

	return seed
}

// FindTimelockConfigPDA returns the address of the configuration record for timelockID.
func FindTimelockConfigPDA(programID solana.PublicKey, timelockID uint64) (solana.PublicKey, uint8, error) {
	pda, bump, err := solana.FindProgramAddress([][]byte{timelockConfigSeed, TimelockIDSeed(timelockID)}, programID)
	if err != nil {
		return solana.PublicKey{}, 0, fmt.Errorf("unable to find timelock config pda: %w", err)
	}

	return pda, bump, nil
}

// FindTimelockSignerPDA returns the derived signer authority for timelockID.
func FindTimelockSignerPDA(programID solana.PublicKey, timelockID uint64) (solana.PublicKey, uint8, error) {
	pda, bump, err := solana.FindProgramAddress(signerSeeds(timelockID), programID)
	if err != nil {
		return solana.PublicKey{}, 0, fmt.Errorf("unable to find timelock signer pda: %w", err)
	}

	return pda, bump, nil
}

func signerSeeds(timelockID uint64) [][]byte {
	return [][]byte{timelockSignerSeed, TimelockIDSeed(timelockID)}
}
