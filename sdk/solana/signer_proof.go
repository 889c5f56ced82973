package solana

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/smartcontractkit/timelock/types"
)

// ErrInvalidSignerProof is returned when a proof does not derive its claimed authority.
var ErrInvalidSignerProof = errors.New("invalid signer proof")

// NewSignerProof builds the proof that the signer authority of timelockID is derived from
// programID with the given bump.
func NewSignerProof(programID solana.PublicKey, timelockID uint64, bump uint8) (types.SignerProof, error) {
	seeds := signerSeeds(timelockID)
	authority, err := solana.CreateProgramAddress(append(seeds, []byte{bump}), programID)
	if err != nil {
		return types.SignerProof{}, fmt.Errorf("unable to create signer address: %w", err)
	}

	return types.SignerProof{
		ProgramID: programID,
		Seeds:     seeds,
		Bump:      bump,
		Authority: authority,
	}, nil
}

// VerifySignerProof recomputes the authority from the proof's seeds and bump.
func VerifySignerProof(proof types.SignerProof) error {
	seeds := make([][]byte, 0, len(proof.Seeds)+1)
	seeds = append(seeds, proof.Seeds...)
	seeds = append(seeds, []byte{proof.Bump})

	derived, err := solana.CreateProgramAddress(seeds, proof.ProgramID)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSignerProof, err)
	}
	if !derived.Equals(proof.Authority) {
		return fmt.Errorf("%w: derived %s, claimed %s", ErrInvalidSignerProof, derived, proof.Authority)
	}

	return nil
}
