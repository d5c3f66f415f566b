package claims

import (
	"errors"
	"fmt"

	"github.com/hashgraph-online/token-faucet-go/pkg/authority"
	"github.com/hashgraph-online/token-faucet-go/pkg/ledger"
)

// Ledger derives and manages claim markers for one program.
type Ledger struct {
	deriver *authority.Deriver
}

func New(deriver *authority.Deriver) *Ledger {
	return &Ledger{deriver: deriver}
}

// Address returns the marker identity for requester and asset.
func (claimLedger *Ledger) Address(requester authority.Address, asset authority.Address) (authority.Identity, error) {
	identity, err := claimLedger.deriver.DeriveSeeds([][]byte{
		[]byte(SeedPrefix),
		requester[:],
		asset[:],
	})
	if err != nil {
		return authority.Identity{}, fmt.Errorf("failed to derive claim marker: %w", err)
	}
	return identity, nil
}

// Create writes the marker inside tx. The marker address must be declared
// writable. A second claim fails with ErrAlreadyClaimed.
func (claimLedger *Ledger) Create(tx ledger.Tx, requester authority.Address, asset authority.Address) (Marker, error) {
	identity, err := claimLedger.Address(requester, asset)
	if err != nil {
		return Marker{}, err
	}

	marker := Marker{Address: identity.Address, Requester: requester, Asset: asset}
	if err := tx.CreateRecord(identity.Address, EncodeMarker(marker), identity.Signer()); err != nil {
		if errors.Is(err, ledger.ErrAccountExists) {
			return Marker{}, fmt.Errorf("%w: requester %s, asset %s: %w", ErrAlreadyClaimed, requester, asset, err)
		}
		return Marker{}, fmt.Errorf("failed to create claim marker: %w", err)
	}
	return marker, nil
}

// Lookup reads the marker inside tx. The marker address must be declared.
func (claimLedger *Ledger) Lookup(tx ledger.Tx, requester authority.Address, asset authority.Address) (Marker, bool, error) {
	identity, err := claimLedger.Address(requester, asset)
	if err != nil {
		return Marker{}, false, err
	}

	record, err := tx.Record(identity.Address)
	if errors.Is(err, ledger.ErrAccountNotFound) {
		return Marker{}, false, nil
	}
	if err != nil {
		return Marker{}, false, fmt.Errorf("failed to read claim marker: %w", err)
	}
	if record.Owner != claimLedger.deriver.ProgramID() {
		return Marker{}, false, fmt.Errorf("%w: owned by %s", ErrInvalidMarker, record.Owner)
	}

	marker, err := DecodeMarker(identity.Address, record.Data)
	if err != nil {
		return Marker{}, false, err
	}
	if marker.Requester != requester || marker.Asset != asset {
		return Marker{}, false, fmt.Errorf("%w: contents do not match address", ErrInvalidMarker)
	}
	return marker, true, nil
}

// Markers decodes every marker record, skipping records of other shapes.
func Markers(records []ledger.RecordState) []Marker {
	markers := make([]Marker, 0, len(records))
	for _, record := range records {
		marker, err := DecodeMarker(record.Address, record.Data)
		if err != nil {
			continue
		}
		markers = append(markers, marker)
	}
	return markers
}
