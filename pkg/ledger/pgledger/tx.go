package pgledger

import (
	"context"
	"fmt"

	"github.com/hashgraph-online/token-faucet-go/pkg/authority"
	"github.com/hashgraph-online/token-faucet-go/pkg/ledger"
	"github.com/jackc/pgx/v5"
)

// unitOfWork reads writable rows FOR UPDATE. A row another transaction created
// after the lock pass is locked on first read.
type unitOfWork struct {
	ctx       context.Context
	tx        pgx.Tx
	programID authority.Address
	declared  map[authority.Address]bool
}

func (work *unitOfWork) ProgramID() authority.Address {
	return work.programID
}

func (work *unitOfWork) Mint(address authority.Address) (ledger.MintState, error) {
	if err := work.requireDeclared(address); err != nil {
		return ledger.MintState{}, err
	}
	return work.mint(address)
}

func (work *unitOfWork) Holding(address authority.Address) (ledger.HoldingState, error) {
	if err := work.requireDeclared(address); err != nil {
		return ledger.HoldingState{}, err
	}
	return work.holding(address)
}

func (work *unitOfWork) Record(address authority.Address) (ledger.RecordState, error) {
	if err := work.requireDeclared(address); err != nil {
		return ledger.RecordState{}, err
	}
	row, found, err := loadAccount(work.ctx, work.tx, address, false)
	if err != nil {
		return ledger.RecordState{}, err
	}
	if !found {
		return ledger.RecordState{}, fmt.Errorf("record %s: %w", address, ledger.ErrAccountNotFound)
	}
	return row.recordState(address)
}

func (work *unitOfWork) CreateRecord(address authority.Address, data []byte, signer authority.Signer) error {
	if err := work.requireWritable(address); err != nil {
		return err
	}
	resolved, err := signer.Resolve(work.programID)
	if err != nil || resolved != address {
		return fmt.Errorf("record %s: %w", address, ledger.ErrAuthorityMismatch)
	}

	tag, err := work.tx.Exec(
		work.ctx,
		`INSERT INTO faucet_accounts (address, kind, owner, data)
		VALUES ($1, 'record', $2, $3) ON CONFLICT (address) DO NOTHING`,
		address[:], work.programID[:], append([]byte{}, data...),
	)
	if err != nil {
		return fmt.Errorf("failed to create record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("record %s: %w", address, ledger.ErrAccountExists)
	}
	return nil
}

func (work *unitOfWork) CreateHolding(address authority.Address, mint authority.Address, owner authority.Address) error {
	if err := work.requireWritable(address); err != nil {
		return err
	}
	if _, err := work.Mint(mint); err != nil {
		return err
	}

	tag, err := work.tx.Exec(
		work.ctx,
		`INSERT INTO faucet_accounts (address, kind, mint, owner, amount)
		VALUES ($1, 'holding', $2, $3, 0) ON CONFLICT (address) DO NOTHING`,
		address[:], mint[:], owner[:],
	)
	if err != nil {
		return fmt.Errorf("failed to create holding: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("holding %s: %w", address, ledger.ErrAccountExists)
	}
	return nil
}

func (work *unitOfWork) MintTo(
	mint authority.Address,
	destination authority.Address,
	amount uint64,
	signer authority.Signer,
) error {
	if err := work.requireWritable(mint); err != nil {
		return err
	}
	if err := work.requireWritable(destination); err != nil {
		return err
	}

	mintState, err := work.mint(mint)
	if err != nil {
		return err
	}
	if mintState.MintAuthority == nil {
		return fmt.Errorf("mint %s has a fixed supply: %w", mint, ledger.ErrAuthorityMismatch)
	}
	resolved, err := signer.Resolve(work.programID)
	if err != nil || resolved != *mintState.MintAuthority {
		return fmt.Errorf("mint %s: %w", mint, ledger.ErrAuthorityMismatch)
	}

	destinationState, err := work.holding(destination)
	if err != nil {
		return err
	}
	if destinationState.Mint != mint {
		return fmt.Errorf("holding %s: %w", destination, ledger.ErrMintMismatch)
	}

	supply, err := ledger.CheckedAdd(mintState.Supply, amount)
	if err != nil {
		return fmt.Errorf("mint %s supply: %w", mint, err)
	}
	balance, err := ledger.CheckedAdd(destinationState.Amount, amount)
	if err != nil {
		return fmt.Errorf("holding %s balance: %w", destination, err)
	}
	supplyValue, err := toBigint(supply)
	if err != nil {
		return err
	}
	balanceValue, err := toBigint(balance)
	if err != nil {
		return err
	}

	if err := updateSupply(work.ctx, work.tx, mint, supplyValue); err != nil {
		return err
	}
	return updateAmount(work.ctx, work.tx, destination, balanceValue)
}

func (work *unitOfWork) Transfer(
	source authority.Address,
	destination authority.Address,
	amount uint64,
	signer authority.Signer,
) error {
	if err := work.requireWritable(source); err != nil {
		return err
	}
	if err := work.requireWritable(destination); err != nil {
		return err
	}

	sourceState, err := work.holding(source)
	if err != nil {
		return err
	}
	destinationState, err := work.holding(destination)
	if err != nil {
		return err
	}
	if sourceState.Mint != destinationState.Mint {
		return fmt.Errorf("holding %s: %w", destination, ledger.ErrMintMismatch)
	}
	resolved, err := signer.Resolve(work.programID)
	if err != nil || resolved != sourceState.Owner {
		return fmt.Errorf("holding %s: %w", source, ledger.ErrAuthorityMismatch)
	}
	if sourceState.Amount < amount {
		return fmt.Errorf(
			"holding %s has %d, needs %d: %w",
			source,
			sourceState.Amount,
			amount,
			ledger.ErrInsufficientFunds,
		)
	}
	if source == destination {
		return nil
	}

	balance, err := ledger.CheckedAdd(destinationState.Amount, amount)
	if err != nil {
		return fmt.Errorf("holding %s balance: %w", destination, err)
	}
	balanceValue, err := toBigint(balance)
	if err != nil {
		return err
	}

	if err := updateAmount(work.ctx, work.tx, source, int64(sourceState.Amount-amount)); err != nil {
		return err
	}
	return updateAmount(work.ctx, work.tx, destination, balanceValue)
}

func (work *unitOfWork) mint(address authority.Address) (ledger.MintState, error) {
	row, found, err := loadAccount(work.ctx, work.tx, address, work.declared[address])
	if err != nil {
		return ledger.MintState{}, err
	}
	if !found {
		return ledger.MintState{}, fmt.Errorf("mint %s: %w", address, ledger.ErrAccountNotFound)
	}
	return row.mintState(address)
}

func (work *unitOfWork) holding(address authority.Address) (ledger.HoldingState, error) {
	row, found, err := loadAccount(work.ctx, work.tx, address, work.declared[address])
	if err != nil {
		return ledger.HoldingState{}, err
	}
	if !found {
		return ledger.HoldingState{}, fmt.Errorf("holding %s: %w", address, ledger.ErrAccountNotFound)
	}
	return row.holdingState(address)
}

func (work *unitOfWork) requireDeclared(address authority.Address) error {
	if _, declared := work.declared[address]; !declared {
		return fmt.Errorf("%s: %w", address, ledger.ErrAccountNotDeclared)
	}
	return nil
}

func (work *unitOfWork) requireWritable(address authority.Address) error {
	writable, declared := work.declared[address]
	if !declared {
		return fmt.Errorf("%s: %w", address, ledger.ErrAccountNotDeclared)
	}
	if !writable {
		return fmt.Errorf("%s: %w", address, ledger.ErrAccountReadOnly)
	}
	return nil
}
