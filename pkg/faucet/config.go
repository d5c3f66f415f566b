package faucet

import (
	"fmt"
	"strings"

	"github.com/hashgraph-online/token-faucet-go/pkg/authority"
	"github.com/hashgraph-online/token-faucet-go/pkg/policy"
)

const (
	OperationAirdrop = "airdrop"
	OperationClaim   = "claim"

	// DefaultFixedAirdropAmount is issued when an airdrop omits its amount.
	DefaultFixedAirdropAmount uint64 = 100_000_000
)

// Config is fixed for the lifetime of a Faucet.
type Config struct {
	AuthorityLabel     string
	Policy             policy.Policy
	FixedAirdropAmount uint64

	// OneTimeClaim writes a claim marker on every claim. Without it claims behave
	// like a plain vault withdrawal.
	OneTimeClaim bool
}

// DefaultConfig returns the configuration the faucet program ships with.
func DefaultConfig() Config {
	return Config{
		AuthorityLabel:     authority.DefaultLabel,
		Policy:             policy.Default(),
		FixedAirdropAmount: DefaultFixedAirdropAmount,
		OneTimeClaim:       true,
	}
}

func (config Config) Validate() error {
	if strings.TrimSpace(config.AuthorityLabel) == "" {
		return fmt.Errorf("authority label is required")
	}
	if len(config.AuthorityLabel) > authority.MaxSeedLength {
		return fmt.Errorf("authority label must be at most %d bytes", authority.MaxSeedLength)
	}
	if err := config.Policy.Validate(); err != nil {
		return fmt.Errorf("invalid policy: %w", err)
	}
	return nil
}
