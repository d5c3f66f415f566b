package router

import (
	"regexp"

	"github.com/hashgraph-online/token-faucet-go/pkg/faucet"
)

const (
	OperationAirdrop = faucet.OperationAirdrop
	OperationClaim   = faucet.OperationClaim

	MaxNumberLength = 20
)

var numberRegex = regexp.MustCompile(`^\d+$`)

// Instruction is the wire form of a faucet request.
type Instruction struct {
	Operation string `json:"op"`
	Asset     string `json:"asset"`
	To        string `json:"to,omitempty"`
	Requester string `json:"requester,omitempty"`
	Amount    string `json:"amt,omitempty"`
	// Expires is a unix time in seconds after which a signed instruction is void.
	Expires   string `json:"exp,omitempty"`
	Signature string `json:"sig,omitempty"`
}
