package claims

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/hashgraph-online/token-faucet-go/pkg/authority"
)

const (
	// SeedPrefix namespaces marker addresses away from authority labels.
	SeedPrefix = "claim"

	discriminatorLength = 8

	// MarkerSize is the encoded size of a marker record.
	MarkerSize = discriminatorLength + 2*authority.AddressLength
)

var (
	ErrAlreadyClaimed = errors.New("already claimed")
	ErrInvalidMarker  = errors.New("invalid claim marker")
)

var markerDiscriminator = func() [discriminatorLength]byte {
	digest := sha256.Sum256([]byte("account:ClaimMarker"))
	var discriminator [discriminatorLength]byte
	copy(discriminator[:], digest[:discriminatorLength])
	return discriminator
}()

// Marker is the one-time claim record for a requester and asset.
type Marker struct {
	Address   authority.Address `json:"address"`
	Requester authority.Address `json:"requester"`
	Asset     authority.Address `json:"asset"`
}

// EncodeMarker serializes the requester and asset behind a fixed discriminator.
func EncodeMarker(marker Marker) []byte {
	encoded := make([]byte, 0, MarkerSize)
	encoded = append(encoded, markerDiscriminator[:]...)
	encoded = append(encoded, marker.Requester[:]...)
	encoded = append(encoded, marker.Asset[:]...)
	return encoded
}

// DecodeMarker parses a marker record stored at address.
func DecodeMarker(address authority.Address, data []byte) (Marker, error) {
	if len(data) != MarkerSize {
		return Marker{}, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidMarker, MarkerSize, len(data))
	}
	if [discriminatorLength]byte(data[:discriminatorLength]) != markerDiscriminator {
		return Marker{}, fmt.Errorf("%w: unknown discriminator", ErrInvalidMarker)
	}

	marker := Marker{Address: address}
	offset := discriminatorLength
	copy(marker.Requester[:], data[offset:offset+authority.AddressLength])
	offset += authority.AddressLength
	copy(marker.Asset[:], data[offset:])
	return marker, nil
}
