package hts

import (
	"fmt"
	"math"
	"strings"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"
)

type MintTxParams struct {
	TokenID         string
	Amount          uint64
	TransactionMemo string
}

type TransferTxParams struct {
	TokenID         string
	From            string
	To              string
	Amount          uint64
	TransactionMemo string
}

// BuildMintTx builds a fungible mint into the token treasury.
func BuildMintTx(params MintTxParams) (*hedera.TokenMintTransaction, error) {
	tokenID, err := parseTokenID(params.TokenID)
	if err != nil {
		return nil, err
	}

	transaction := hedera.NewTokenMintTransaction().
		SetTokenID(tokenID).
		SetAmount(params.Amount)

	if memo := strings.TrimSpace(params.TransactionMemo); memo != "" {
		transaction.SetTransactionMemo(memo)
	}
	return transaction, nil
}

// BuildTransferTx builds a two-leg token transfer.
func BuildTransferTx(params TransferTxParams) (*hedera.TransferTransaction, error) {
	tokenID, err := parseTokenID(params.TokenID)
	if err != nil {
		return nil, err
	}
	from, err := parseAccountID("from", params.From)
	if err != nil {
		return nil, err
	}
	to, err := parseAccountID("to", params.To)
	if err != nil {
		return nil, err
	}
	if from.String() == to.String() {
		return nil, fmt.Errorf("from and to must differ")
	}
	if params.Amount > math.MaxInt64 {
		return nil, fmt.Errorf("amount %d exceeds the HTS transfer range", params.Amount)
	}

	amount := int64(params.Amount)
	transaction := hedera.NewTransferTransaction().
		AddTokenTransfer(tokenID, from, -amount).
		AddTokenTransfer(tokenID, to, amount)

	if memo := strings.TrimSpace(params.TransactionMemo); memo != "" {
		transaction.SetTransactionMemo(memo)
	}
	return transaction, nil
}

func parseTokenID(value string) (hedera.TokenID, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return hedera.TokenID{}, fmt.Errorf("token ID is required")
	}
	tokenID, err := hedera.TokenIDFromString(trimmed)
	if err != nil {
		return hedera.TokenID{}, fmt.Errorf("invalid token ID: %w", err)
	}
	return tokenID, nil
}

func parseAccountID(field string, value string) (hedera.AccountID, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return hedera.AccountID{}, fmt.Errorf("%s account ID is required", field)
	}
	accountID, err := hedera.AccountIDFromString(trimmed)
	if err != nil {
		return hedera.AccountID{}, fmt.Errorf("invalid %s account ID: %w", field, err)
	}
	return accountID, nil
}
