package memledger

import (
	"fmt"

	"github.com/hashgraph-online/token-faucet-go/pkg/authority"
	"github.com/hashgraph-online/token-faucet-go/pkg/ledger"
)

// unitOfWork overlays staged writes on the committed ledger state.
type unitOfWork struct {
	base      *Ledger
	programID authority.Address
	declared  map[authority.Address]bool

	mints    map[authority.Address]ledger.MintState
	holdings map[authority.Address]ledger.HoldingState
	records  map[authority.Address]ledger.RecordState
}

func newUnitOfWork(base *Ledger, programID authority.Address, metas []ledger.AccountMeta) *unitOfWork {
	declared := make(map[authority.Address]bool, len(metas))
	for _, meta := range metas {
		declared[meta.Address] = meta.Writable
	}
	return &unitOfWork{
		base:      base,
		programID: programID,
		declared:  declared,
		mints:     map[authority.Address]ledger.MintState{},
		holdings:  map[authority.Address]ledger.HoldingState{},
		records:   map[authority.Address]ledger.RecordState{},
	}
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
	if state, exists := work.records[address]; exists {
		state.Data = append([]byte{}, state.Data...)
		return state, nil
	}

	work.base.mutex.RLock()
	state, exists := work.base.records[address]
	wrongKind := !exists && work.base.existsLocked(address)
	work.base.mutex.RUnlock()

	if wrongKind || work.stagedOther(address) {
		return ledger.RecordState{}, fmt.Errorf("record %s: %w", address, ledger.ErrWrongAccountKind)
	}
	if !exists {
		return ledger.RecordState{}, fmt.Errorf("record %s: %w", address, ledger.ErrAccountNotFound)
	}
	state.Data = append([]byte{}, state.Data...)
	return state, nil
}

func (work *unitOfWork) CreateRecord(address authority.Address, data []byte, signer authority.Signer) error {
	if err := work.requireWritable(address); err != nil {
		return err
	}
	resolved, err := signer.Resolve(work.programID)
	if err != nil || resolved != address {
		return fmt.Errorf("record %s: %w", address, ledger.ErrAuthorityMismatch)
	}
	if work.exists(address) {
		return fmt.Errorf("record %s: %w", address, ledger.ErrAccountExists)
	}

	work.records[address] = ledger.RecordState{
		Address: address,
		Owner:   work.programID,
		Data:    append([]byte{}, data...),
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
	if work.exists(address) {
		return fmt.Errorf("holding %s: %w", address, ledger.ErrAccountExists)
	}

	work.holdings[address] = ledger.HoldingState{Address: address, Mint: mint, Owner: owner}
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

	mintState.Supply = supply
	destinationState.Amount = balance
	work.mints[mint] = mintState
	work.holdings[destination] = destinationState
	return nil
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

	sourceState.Amount -= amount
	destinationState.Amount = balance
	work.holdings[source] = sourceState
	work.holdings[destination] = destinationState
	return nil
}

func (work *unitOfWork) mint(address authority.Address) (ledger.MintState, error) {
	if state, exists := work.mints[address]; exists {
		return state, nil
	}

	work.base.mutex.RLock()
	state, exists := work.base.mints[address]
	wrongKind := !exists && work.base.existsLocked(address)
	work.base.mutex.RUnlock()

	if wrongKind || work.stagedOther(address) {
		return ledger.MintState{}, fmt.Errorf("mint %s: %w", address, ledger.ErrWrongAccountKind)
	}
	if !exists {
		return ledger.MintState{}, fmt.Errorf("mint %s: %w", address, ledger.ErrAccountNotFound)
	}
	return state, nil
}

func (work *unitOfWork) holding(address authority.Address) (ledger.HoldingState, error) {
	if state, exists := work.holdings[address]; exists {
		return state, nil
	}

	work.base.mutex.RLock()
	state, exists := work.base.holdings[address]
	wrongKind := !exists && work.base.existsLocked(address)
	work.base.mutex.RUnlock()

	if wrongKind || work.stagedOther(address) {
		return ledger.HoldingState{}, fmt.Errorf("holding %s: %w", address, ledger.ErrWrongAccountKind)
	}
	if !exists {
		return ledger.HoldingState{}, fmt.Errorf("holding %s: %w", address, ledger.ErrAccountNotFound)
	}
	return state, nil
}

// stagedOther reports whether address was created in this unit of work with a
// kind the caller did not look up first.
func (work *unitOfWork) stagedOther(address authority.Address) bool {
	_, isMint := work.mints[address]
	_, isHolding := work.holdings[address]
	_, isRecord := work.records[address]
	return isMint || isHolding || isRecord
}

func (work *unitOfWork) exists(address authority.Address) bool {
	if work.stagedOther(address) {
		return true
	}
	work.base.mutex.RLock()
	defer work.base.mutex.RUnlock()
	return work.base.existsLocked(address)
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
