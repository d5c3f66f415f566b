package mirror

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Key is a mirror node key descriptor.
type Key struct {
	Type string `json:"_type"`
	Key  string `json:"key"`
}

// TokenInfo is the descriptor returned by /api/v1/tokens/{id}. Numeric fields
// arrive as strings.
type TokenInfo struct {
	TokenID           string `json:"token_id"`
	Name              string `json:"name"`
	Symbol            string `json:"symbol"`
	Type              string `json:"type"`
	Decimals          string `json:"decimals"`
	TotalSupply       string `json:"total_supply"`
	MaxSupply         string `json:"max_supply"`
	SupplyType        string `json:"supply_type"`
	TreasuryAccountID string `json:"treasury_account_id"`
	SupplyKey         *Key   `json:"supply_key"`
	Deleted           bool   `json:"deleted"`
}

// DecimalsValue parses Decimals.
func (token TokenInfo) DecimalsValue() (uint8, error) {
	value, err := strconv.ParseUint(strings.TrimSpace(token.Decimals), 10, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid decimals %q for token %s: %w", token.Decimals, token.TokenID, err)
	}
	return uint8(value), nil
}

// TotalSupplyValue parses TotalSupply.
func (token TokenInfo) TotalSupplyValue() (uint64, error) {
	value, err := strconv.ParseUint(strings.TrimSpace(token.TotalSupply), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid total supply %q for token %s: %w", token.TotalSupply, token.TokenID, err)
	}
	return value, nil
}

// IsFungible reports whether the token is a fungible common token.
func (token TokenInfo) IsFungible() bool {
	return token.Type == "" || token.Type == "FUNGIBLE_COMMON"
}

// AccountToken is one token relationship of an account.
type AccountToken struct {
	TokenID              string `json:"token_id"`
	Balance              int64  `json:"balance"`
	AutomaticAssociation bool   `json:"automatic_association"`
	FreezeStatus         string `json:"freeze_status"`
	KycStatus            string `json:"kyc_status"`
}

type accountTokensResponse struct {
	Tokens []AccountToken `json:"tokens"`
	Links  struct {
		Next string `json:"next"`
	} `json:"links"`
}

// TokenBalance is one holder of a token.
type TokenBalance struct {
	Account  string `json:"account"`
	Balance  int64  `json:"balance"`
	Decimals int64  `json:"decimals"`
}

type tokenBalancesResponse struct {
	Timestamp string         `json:"timestamp"`
	Balances  []TokenBalance `json:"balances"`
	Links     struct {
		Next string `json:"next"`
	} `json:"links"`
}

type Transaction struct {
	ChargedTxFee       int64           `json:"charged_tx_fee"`
	ConsensusTimestamp string          `json:"consensus_timestamp"`
	EntityID           *string         `json:"entity_id"`
	Name               string          `json:"name"`
	Result             string          `json:"result"`
	TransactionID      string          `json:"transaction_id"`
	TokenTransfers     []TokenTransfer `json:"token_transfers"`
}

type TokenTransfer struct {
	TokenID    string `json:"token_id"`
	Account    string `json:"account"`
	Amount     int64  `json:"amount"`
	IsApproval bool   `json:"is_approval"`
}

type transactionsResponse struct {
	Transactions []Transaction `json:"transactions"`
}

// NetTokenChange sums the transfers of tokenID to account in transaction.
func (transaction Transaction) NetTokenChange(tokenID string, account string) int64 {
	var total int64
	for _, transfer := range transaction.TokenTransfers {
		if transfer.TokenID != tokenID || transfer.Account != account {
			continue
		}
		if transfer.Amount > 0 && total > math.MaxInt64-transfer.Amount {
			return math.MaxInt64
		}
		total += transfer.Amount
	}
	return total
}
