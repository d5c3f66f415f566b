package authority

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"filippo.io/edwards25519"
)

// CreateProgramAddress hashes seeds with programID and fails with ErrOnCurve when
// the digest is a curve point. The last seed is usually the bump.
func CreateProgramAddress(seeds [][]byte, programID Address) (Address, error) {
	if len(seeds) > MaxSeeds {
		return Address{}, ErrTooManySeeds
	}

	hasher := sha256.New()
	for _, seed := range seeds {
		if len(seed) > MaxSeedLength {
			return Address{}, ErrMaxSeedLength
		}
		hasher.Write(seed)
	}
	hasher.Write(programID[:])
	hasher.Write([]byte(programAddressMarker))

	var address Address
	copy(address[:], hasher.Sum(nil))

	if isOnCurve(address) {
		return Address{}, ErrOnCurve
	}
	return address, nil
}

// FindProgramAddress searches bumps from 255 down to 0 and returns the first
// off-curve address together with the bump that produced it.
func FindProgramAddress(seeds [][]byte, programID Address) (Address, uint8, error) {
	if len(seeds) >= MaxSeeds {
		return Address{}, 0, ErrTooManySeeds
	}

	candidate := make([][]byte, len(seeds)+1)
	copy(candidate, seeds)
	for bump := 255; bump >= 0; bump-- {
		candidate[len(seeds)] = []byte{byte(bump)}
		address, err := CreateProgramAddress(candidate, programID)
		if err == nil {
			return address, uint8(bump), nil
		}
		if err != ErrOnCurve {
			return Address{}, 0, err
		}
	}

	return Address{}, 0, ErrNoViableBump
}

func isOnCurve(address Address) bool {
	_, err := new(edwards25519.Point).SetBytes(address[:])
	return err == nil
}

// Deriver derives identities owned by a single program.
type Deriver struct {
	programID Address
}

// NewDeriver returns a deriver bound to programID.
func NewDeriver(programID Address) *Deriver {
	return &Deriver{programID: programID}
}

// ProgramID returns the owning program.
func (deriver *Deriver) ProgramID() Address {
	return deriver.programID
}

// Derive returns the identity for a fixed label.
func (deriver *Deriver) Derive(label string) (Identity, error) {
	if strings.TrimSpace(label) == "" {
		return Identity{}, fmt.Errorf("authority label is required")
	}

	identity, err := deriver.DeriveSeeds([][]byte{[]byte(label)})
	if err != nil {
		return Identity{}, fmt.Errorf("failed to derive authority %q: %w", label, err)
	}
	identity.Label = label
	return identity, nil
}

// DeriveSeeds returns the identity for an arbitrary seed path.
func (deriver *Deriver) DeriveSeeds(seeds [][]byte) (Identity, error) {
	address, bump, err := FindProgramAddress(seeds, deriver.programID)
	if err != nil {
		return Identity{}, err
	}

	copied := make([][]byte, len(seeds))
	for index, seed := range seeds {
		copied[index] = append([]byte{}, seed...)
	}

	return Identity{
		Seeds:   copied,
		Address: address,
		Bump:    bump,
	}, nil
}

// Verify re-derives identity and checks that both the address and the bump are
// canonical for this program.
func (deriver *Deriver) Verify(identity Identity) error {
	expected, err := deriver.DeriveSeeds(identity.Seeds)
	if err != nil {
		return err
	}
	if expected.Address != identity.Address || expected.Bump != identity.Bump {
		return ErrIdentityMismatch
	}
	return nil
}
