package policy

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// DisplayPrecision is the number of fractional digits kept from a display amount
// before it is scaled to base units.
const DisplayPrecision = 4

// ToBaseUnits converts a display amount such as 12.5 into base units for an
// asset with the given decimals. Digits beyond DisplayPrecision are truncated,
// then anything finer than one base unit is dropped.
func ToBaseUnits(amount decimal.Decimal, decimals uint8) (uint64, error) {
	if amount.IsNegative() {
		return 0, fmt.Errorf("amount must not be negative: %s", amount.String())
	}

	scaled := amount.Truncate(DisplayPrecision).Shift(int32(decimals)).Truncate(0)
	value := scaled.BigInt()
	if !value.IsUint64() {
		return 0, fmt.Errorf("amount %s overflows base units at %d decimals", amount.String(), decimals)
	}
	return value.Uint64(), nil
}

// ParseDisplayAmount parses a decimal string and converts it with ToBaseUnits.
func ParseDisplayAmount(value string, decimals uint8) (uint64, error) {
	amount, err := decimal.NewFromString(value)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", value, err)
	}
	return ToBaseUnits(amount, decimals)
}

// FromBaseUnits renders base units as a display amount.
func FromBaseUnits(amount uint64, decimals uint8) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(amount), -int32(decimals))
}
