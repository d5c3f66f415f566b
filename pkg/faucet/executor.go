package faucet

import (
	"errors"

	"github.com/hashgraph-online/token-faucet-go/pkg/authority"
	"github.com/hashgraph-online/token-faucet-go/pkg/ledger"
)

// Flavor selects how value reaches the destination.
type Flavor string

const (
	// FlavorMint creates new supply.
	FlavorMint Flavor = "mint"
	// FlavorTransfer moves existing supply out of the reserve.
	FlavorTransfer Flavor = "transfer"
)

// issuance is one authorized movement of value inside a unit of work.
type issuance struct {
	flavor      Flavor
	asset       authority.Address
	reserve     authority.Address
	destination authority.Address
	amount      uint64
	signer      authority.Signer
}

func (issue issuance) apply(tx ledger.Tx) error {
	switch issue.flavor {
	case FlavorMint:
		return tx.MintTo(issue.asset, issue.destination, issue.amount, issue.signer)
	case FlavorTransfer:
		return tx.Transfer(issue.reserve, issue.destination, issue.amount, issue.signer)
	default:
		return errors.New("unknown issuance flavor " + string(issue.flavor))
	}
}
