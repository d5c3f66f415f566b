package ledger

import (
	"github.com/hashgraph-online/token-faucet-go/pkg/authority"
)

// AssociatedHoldingProgramID namespaces associated holding addresses.
var AssociatedHoldingProgramID = authority.Address{
	'a', 's', 's', 'o', 'c', 'i', 'a', 't', 'e', 'd', '-', 'h', 'o', 'l', 'd', 'i', 'n', 'g',
}

// AssociatedHoldingAddress returns the canonical holding address for owner and
// mint. Owners may themselves be derived addresses.
func AssociatedHoldingAddress(owner authority.Address, mint authority.Address) (authority.Address, error) {
	address, _, err := authority.FindProgramAddress(
		[][]byte{owner[:], mint[:]},
		AssociatedHoldingProgramID,
	)
	return address, err
}

// CheckedAdd adds two balances and fails with ErrOverflow instead of wrapping.
func CheckedAdd(left uint64, right uint64) (uint64, error) {
	sum := left + right
	if sum < left {
		return 0, ErrOverflow
	}
	return sum, nil
}
