package authority

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/base58"
)

const (
	// AddressLength is the size of every address in bytes.
	AddressLength = 32

	// MaxSeeds is the maximum number of seeds, bump included, accepted by CreateProgramAddress.
	MaxSeeds = 16

	// MaxSeedLength is the maximum length of a single seed.
	MaxSeedLength = 32

	// DefaultLabel is the label of the faucet's mint and vault authority.
	DefaultLabel = "Faucet Authority"

	programAddressMarker = "ProgramDerivedAddress"
)

// Address identifies a program, account, holding or record.
type Address [AddressLength]byte

// ZeroAddress is the unset address.
var ZeroAddress Address

// ParseAddress decodes a base58 address.
func ParseAddress(value string) (Address, error) {
	var address Address
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return address, NewInvalidAddressError(value)
	}
	decoded := base58.Decode(trimmed)
	if len(decoded) != AddressLength {
		return address, NewInvalidAddressError(value)
	}
	copy(address[:], decoded)
	return address, nil
}

// MustParseAddress is ParseAddress for constants; it panics on malformed input.
func MustParseAddress(value string) Address {
	address, err := ParseAddress(value)
	if err != nil {
		panic(err)
	}
	return address
}

// AddressFromBytes copies a 32-byte slice into an Address.
func AddressFromBytes(raw []byte) (Address, error) {
	var address Address
	if len(raw) != AddressLength {
		return address, fmt.Errorf("address must be %d bytes, got %d", AddressLength, len(raw))
	}
	copy(address[:], raw)
	return address, nil
}

// String returns the base58 form.
func (address Address) String() string {
	return base58.Encode(address[:])
}

// IsZero reports whether the address is unset.
func (address Address) IsZero() bool {
	return address == ZeroAddress
}

// Compare orders addresses bytewise.
func (address Address) Compare(other Address) int {
	return bytes.Compare(address[:], other[:])
}

// MarshalText implements encoding.TextMarshaler.
func (address Address) MarshalText() ([]byte, error) {
	return []byte(address.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (address *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*address = parsed
	return nil
}

// Identity is a derived authority: the label it was derived from, the resulting
// address and the bump proving the derivation.
type Identity struct {
	Label   string
	Seeds   [][]byte
	Address Address
	Bump    uint8
}

// Signer returns the seeds and bump the host needs to authorize an operation as
// this identity.
func (identity Identity) Signer() Signer {
	seeds := make([][]byte, len(identity.Seeds))
	for index, seed := range identity.Seeds {
		seeds[index] = append([]byte{}, seed...)
	}
	return Signer{Seeds: seeds, Bump: identity.Bump}
}

// Signer is the proof a program presents to the host when acting as a derived
// identity. The host re-derives the address with the executing program's ID.
type Signer struct {
	Seeds [][]byte
	Bump  uint8
}

// Resolve returns the address this signer authorizes under programID.
func (signer Signer) Resolve(programID Address) (Address, error) {
	seeds := make([][]byte, 0, len(signer.Seeds)+1)
	seeds = append(seeds, signer.Seeds...)
	seeds = append(seeds, []byte{signer.Bump})
	return CreateProgramAddress(seeds, programID)
}
