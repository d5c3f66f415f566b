package pgledger

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/hashgraph-online/token-faucet-go/pkg/authority"
	"github.com/hashgraph-online/token-faucet-go/pkg/ledger"
	"github.com/jackc/pgx/v5"
)

const (
	kindMint    = "mint"
	kindHolding = "holding"
	kindRecord  = "record"
)

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type accountRow struct {
	kind          string
	mint          []byte
	owner         []byte
	decimals      *int16
	supply        *int64
	mintAuthority []byte
	amount        *int64
	data          []byte
}

func loadAccount(ctx context.Context, source querier, address authority.Address, forUpdate bool) (accountRow, bool, error) {
	query := `SELECT kind, mint, owner, decimals, supply, mint_authority, amount, data
		FROM faucet_accounts WHERE address = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var row accountRow
	err := source.QueryRow(ctx, query, address[:]).Scan(
		&row.kind,
		&row.mint,
		&row.owner,
		&row.decimals,
		&row.supply,
		&row.mintAuthority,
		&row.amount,
		&row.data,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return accountRow{}, false, nil
	}
	if err != nil {
		return accountRow{}, false, fmt.Errorf("failed to load account %s: %w", address, err)
	}
	return row, true, nil
}

func (row accountRow) mintState(address authority.Address) (ledger.MintState, error) {
	if row.kind != kindMint {
		return ledger.MintState{}, fmt.Errorf("mint %s: %w", address, ledger.ErrWrongAccountKind)
	}
	if row.decimals == nil || row.supply == nil || *row.decimals < 0 || *row.decimals > math.MaxUint8 {
		return ledger.MintState{}, fmt.Errorf("mint %s: %w", address, ledger.ErrInvalidAccount)
	}

	state := ledger.MintState{
		Address:  address,
		Decimals: uint8(*row.decimals),
		Supply:   uint64(*row.supply),
	}
	if len(row.mintAuthority) > 0 {
		mintAuthority, err := authority.AddressFromBytes(row.mintAuthority)
		if err != nil {
			return ledger.MintState{}, fmt.Errorf("mint %s: %w: %v", address, ledger.ErrInvalidAccount, err)
		}
		state.MintAuthority = &mintAuthority
	}
	return state, nil
}

func (row accountRow) holdingState(address authority.Address) (ledger.HoldingState, error) {
	if row.kind != kindHolding {
		return ledger.HoldingState{}, fmt.Errorf("holding %s: %w", address, ledger.ErrWrongAccountKind)
	}
	if row.amount == nil {
		return ledger.HoldingState{}, fmt.Errorf("holding %s: %w", address, ledger.ErrInvalidAccount)
	}
	mint, err := authority.AddressFromBytes(row.mint)
	if err != nil {
		return ledger.HoldingState{}, fmt.Errorf("holding %s: %w: %v", address, ledger.ErrInvalidAccount, err)
	}
	owner, err := authority.AddressFromBytes(row.owner)
	if err != nil {
		return ledger.HoldingState{}, fmt.Errorf("holding %s: %w: %v", address, ledger.ErrInvalidAccount, err)
	}
	return ledger.HoldingState{
		Address: address,
		Mint:    mint,
		Owner:   owner,
		Amount:  uint64(*row.amount),
	}, nil
}

func (row accountRow) recordState(address authority.Address) (ledger.RecordState, error) {
	if row.kind != kindRecord {
		return ledger.RecordState{}, fmt.Errorf("record %s: %w", address, ledger.ErrWrongAccountKind)
	}
	owner, err := authority.AddressFromBytes(row.owner)
	if err != nil {
		return ledger.RecordState{}, fmt.Errorf("record %s: %w: %v", address, ledger.ErrInvalidAccount, err)
	}
	return ledger.RecordState{Address: address, Owner: owner, Data: row.data}, nil
}

// toBigint narrows an amount to the BIGINT column range.
func toBigint(value uint64) (int64, error) {
	if value > math.MaxInt64 {
		return 0, fmt.Errorf("%d exceeds BIGINT: %w", value, ledger.ErrOverflow)
	}
	return int64(value), nil
}

func updateSupply(ctx context.Context, tx pgx.Tx, mint authority.Address, supply int64) error {
	_, err := tx.Exec(
		ctx,
		`UPDATE faucet_accounts SET supply = $2, updated_at = now() WHERE address = $1`,
		mint[:], supply,
	)
	if err != nil {
		return fmt.Errorf("failed to update supply: %w", err)
	}
	return nil
}

func updateAmount(ctx context.Context, tx pgx.Tx, holding authority.Address, amount int64) error {
	_, err := tx.Exec(
		ctx,
		`UPDATE faucet_accounts SET amount = $2, updated_at = now() WHERE address = $1`,
		holding[:], amount,
	)
	if err != nil {
		return fmt.Errorf("failed to update balance: %w", err)
	}
	return nil
}
