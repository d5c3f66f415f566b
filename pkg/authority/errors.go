package authority

import (
	"errors"
	"fmt"
)

var (
	// ErrOnCurve reports that a candidate digest is a valid ed25519 point.
	ErrOnCurve = errors.New("derived address lies on the ed25519 curve")

	// ErrNoViableBump reports that no bump in [0, 255] yields an off-curve address.
	ErrNoViableBump = errors.New("no viable bump seed for program address")

	// ErrTooManySeeds reports more than MaxSeeds seeds.
	ErrTooManySeeds = fmt.Errorf("more than %d seeds", MaxSeeds)

	// ErrMaxSeedLength reports a seed longer than MaxSeedLength.
	ErrMaxSeedLength = fmt.Errorf("seed longer than %d bytes", MaxSeedLength)

	// ErrIdentityMismatch reports an identity whose address or bump does not match
	// a fresh derivation.
	ErrIdentityMismatch = errors.New("identity does not match derivation")
)

type InvalidAddressError struct {
	Value string
}

func NewInvalidAddressError(value string) error {
	return InvalidAddressError{Value: value}
}

func (errorValue InvalidAddressError) Error() string {
	return fmt.Sprintf("invalid address: %q", errorValue.Value)
}
