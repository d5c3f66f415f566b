package policy

import (
	"fmt"
	"math"
	"math/bits"
	"strings"
)

// DecimalsSource selects where the divisibility exponent comes from.
type DecimalsSource string

const (
	// DecimalsFromAsset reads the exponent from the asset descriptor.
	DecimalsFromAsset DecimalsSource = "asset"
	// DecimalsFixed uses Policy.FixedDecimals regardless of the asset.
	DecimalsFixed DecimalsSource = "fixed"
)

const (
	DefaultMaxWholeTokens = 1000
	DefaultFixedDecimals  = 9
)

// Policy is the amount guard. The zero value rejects everything above zero; use
// Default for the usual faucet limits.
type Policy struct {
	MaxWholeTokens uint64
	DecimalsSource DecimalsSource
	FixedDecimals  uint8
	AllowZero      bool
}

// Default returns a 1000-whole-token ceiling using the asset's own decimals.
func Default() Policy {
	return Policy{
		MaxWholeTokens: DefaultMaxWholeTokens,
		DecimalsSource: DecimalsFromAsset,
		FixedDecimals:  DefaultFixedDecimals,
		AllowZero:      true,
	}
}

// ParseDecimalsSource accepts "asset" or "fixed" (case-insensitive, empty means asset).
func ParseDecimalsSource(value string) (DecimalsSource, error) {
	switch normalized := DecimalsSource(strings.ToLower(strings.TrimSpace(value))); normalized {
	case "", DecimalsFromAsset:
		return DecimalsFromAsset, nil
	case DecimalsFixed:
		return DecimalsFixed, nil
	default:
		return "", fmt.Errorf("unsupported decimals source %q", value)
	}
}

// Validate checks that the policy is usable.
func (policy Policy) Validate() error {
	if _, err := ParseDecimalsSource(string(policy.DecimalsSource)); err != nil {
		return err
	}
	if policy.MaxWholeTokens == 0 && !policy.AllowZero {
		return fmt.Errorf("policy admits no amount: max whole tokens is 0 and zero amounts are disallowed")
	}
	return nil
}

// Decimals returns the exponent the ceiling is computed with.
func (policy Policy) Decimals(assetDecimals uint8) uint8 {
	if policy.DecimalsSource == DecimalsFixed {
		return policy.FixedDecimals
	}
	return assetDecimals
}

// NeedsAssetDecimals reports whether Check depends on the asset descriptor.
func (policy Policy) NeedsAssetDecimals() bool {
	return policy.DecimalsSource != DecimalsFixed
}

// CeilingFor returns the inclusive ceiling for an asset with assetDecimals.
func (policy Policy) CeilingFor(assetDecimals uint8) uint64 {
	return Ceiling(policy.Decimals(assetDecimals), policy.MaxWholeTokens)
}

// Check succeeds iff requested is within the ceiling and, when zero is
// disallowed, non-zero. It never touches state.
func (policy Policy) Check(requested uint64, assetDecimals uint8) error {
	if requested == 0 && !policy.AllowZero {
		return ErrZeroAmount
	}

	decimals := policy.Decimals(assetDecimals)
	ceiling := Ceiling(decimals, policy.MaxWholeTokens)
	if requested > ceiling {
		return &ExceedsError{
			Requested: requested,
			Ceiling:   ceiling,
			Decimals:  decimals,
		}
	}
	return nil
}

// Ceiling returns 10^decimals * wholeTokens, saturating at math.MaxUint64.
func Ceiling(decimals uint8, wholeTokens uint64) uint64 {
	if wholeTokens == 0 {
		return 0
	}

	scale, ok := pow10(decimals)
	if !ok {
		return math.MaxUint64
	}

	hi, lo := bits.Mul64(scale, wholeTokens)
	if hi != 0 {
		return math.MaxUint64
	}
	return lo
}

func pow10(exponent uint8) (uint64, bool) {
	result := uint64(1)
	for index := uint8(0); index < exponent; index++ {
		hi, lo := bits.Mul64(result, 10)
		if hi != 0 {
			return 0, false
		}
		result = lo
	}
	return result, true
}
