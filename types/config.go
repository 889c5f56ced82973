package types

import (
	"github.com/gagliardetto/solana-go"
)

// Config is the timelock configuration record. It is the root of trust for every batch that
// references it.
type Config struct {
	ID   uint64 `json:"id"`
	Bump uint8  `json:"bump"`
	// SignerBump is the bump of the derived signer authority for this timelock.
	SignerBump uint8 `json:"signerBump"`
	// Proposers are semi-privileged identities reserved for batch approval and veto. They are
	// recorded but not consulted by any transition.
	Proposers     []solana.PublicKey `json:"proposers"`
	MaxProposers  uint16             `json:"maxProposers"`
	Administrator solana.PublicKey   `json:"administrator"`
	DelayTicks    uint64             `json:"delayTicks"`
}

// CreateConfigParams are the inputs to create a new timelock configuration.
type CreateConfigParams struct {
	ID            uint64             `json:"id"`
	DelayTicks    uint64             `json:"delayTicks"`
	Administrator solana.PublicKey   `json:"administrator"`
	MaxProposers  uint16             `json:"maxProposers"`
	Proposers     []solana.PublicKey `json:"proposers"`
}

// IsProposer reports whether the identity is listed as a proposer.
func (c Config) IsProposer(identity solana.PublicKey) bool {
	for _, p := range c.Proposers {
		if p.Equals(identity) {
			return true
		}
	}

	return false
}
