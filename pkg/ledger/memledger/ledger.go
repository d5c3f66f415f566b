// Package memledger is an in-process ledger.Executor. Each address has its own
// read/write lock, so units of work over disjoint accounts never contend, and
// every mutation is staged until the unit of work returns without error.
package memledger

import (
	"context"
	"fmt"
	"sort"

	"github.com/hashgraph-online/token-faucet-go/pkg/authority"
	"github.com/hashgraph-online/token-faucet-go/pkg/ledger"
	"github.com/sasha-s/go-deadlock"
)

type Ledger struct {
	mutex    deadlock.RWMutex
	mints    map[authority.Address]ledger.MintState
	holdings map[authority.Address]ledger.HoldingState
	records  map[authority.Address]ledger.RecordState
	programs map[authority.Address]struct{}

	locksMutex deadlock.Mutex
	locks      map[authority.Address]*deadlock.RWMutex
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{
		mints:    map[authority.Address]ledger.MintState{},
		holdings: map[authority.Address]ledger.HoldingState{},
		records:  map[authority.Address]ledger.RecordState{},
		programs: map[authority.Address]struct{}{},
		locks:    map[authority.Address]*deadlock.RWMutex{},
	}
}

// Deploy registers programID and returns the only handle able to execute as it.
func (memoryLedger *Ledger) Deploy(programID authority.Address) (*Program, error) {
	if programID.IsZero() {
		return nil, fmt.Errorf("program ID is required")
	}

	memoryLedger.mutex.Lock()
	defer memoryLedger.mutex.Unlock()

	if _, exists := memoryLedger.programs[programID]; exists {
		return nil, fmt.Errorf("program %s: %w", programID, ledger.ErrProgramExists)
	}
	memoryLedger.programs[programID] = struct{}{}

	return &Program{ledger: memoryLedger, programID: programID}, nil
}

// CreateMint registers an asset. It is host setup, not part of any program.
func (memoryLedger *Ledger) CreateMint(
	address authority.Address,
	decimals uint8,
	mintAuthority *authority.Address,
) error {
	unlock := memoryLedger.lockExclusive(address)
	defer unlock()

	memoryLedger.mutex.Lock()
	defer memoryLedger.mutex.Unlock()

	if memoryLedger.existsLocked(address) {
		return fmt.Errorf("mint %s: %w", address, ledger.ErrAccountExists)
	}

	state := ledger.MintState{Address: address, Decimals: decimals}
	if mintAuthority != nil {
		authorityCopy := *mintAuthority
		state.MintAuthority = &authorityCopy
	}
	memoryLedger.mints[address] = state
	return nil
}

// CreateHolding opens a funded holding. The amount is added to the mint's supply.
func (memoryLedger *Ledger) CreateHolding(
	address authority.Address,
	mint authority.Address,
	owner authority.Address,
	amount uint64,
) error {
	release := memoryLedger.acquire(ledger.NormalizeMetas([]ledger.AccountMeta{
		ledger.Writable(address),
		ledger.Writable(mint),
	}))
	defer release()

	memoryLedger.mutex.Lock()
	defer memoryLedger.mutex.Unlock()

	if memoryLedger.existsLocked(address) {
		return fmt.Errorf("holding %s: %w", address, ledger.ErrAccountExists)
	}
	mintState, exists := memoryLedger.mints[mint]
	if !exists {
		return fmt.Errorf("mint %s: %w", mint, ledger.ErrAccountNotFound)
	}
	supply, err := ledger.CheckedAdd(mintState.Supply, amount)
	if err != nil {
		return err
	}

	mintState.Supply = supply
	memoryLedger.mints[mint] = mintState
	memoryLedger.holdings[address] = ledger.HoldingState{
		Address: address,
		Mint:    mint,
		Owner:   owner,
		Amount:  amount,
	}
	return nil
}

// Mint returns the committed state of a mint.
func (memoryLedger *Ledger) Mint(address authority.Address) (ledger.MintState, bool) {
	memoryLedger.mutex.RLock()
	defer memoryLedger.mutex.RUnlock()
	state, exists := memoryLedger.mints[address]
	return state, exists
}

// Holding returns the committed state of a holding.
func (memoryLedger *Ledger) Holding(address authority.Address) (ledger.HoldingState, bool) {
	memoryLedger.mutex.RLock()
	defer memoryLedger.mutex.RUnlock()
	state, exists := memoryLedger.holdings[address]
	return state, exists
}

// Balance returns the committed balance of a holding, zero if it does not exist.
func (memoryLedger *Ledger) Balance(address authority.Address) uint64 {
	state, _ := memoryLedger.Holding(address)
	return state.Amount
}

// Supply returns the committed supply of a mint, zero if it does not exist.
func (memoryLedger *Ledger) Supply(address authority.Address) uint64 {
	state, _ := memoryLedger.Mint(address)
	return state.Supply
}

// Record returns a committed record.
func (memoryLedger *Ledger) Record(address authority.Address) (ledger.RecordState, bool) {
	memoryLedger.mutex.RLock()
	defer memoryLedger.mutex.RUnlock()
	state, exists := memoryLedger.records[address]
	if exists {
		state.Data = append([]byte{}, state.Data...)
	}
	return state, exists
}

// Records returns every committed record owned by owner, ordered by address.
func (memoryLedger *Ledger) Records(owner authority.Address) []ledger.RecordState {
	memoryLedger.mutex.RLock()
	defer memoryLedger.mutex.RUnlock()

	result := make([]ledger.RecordState, 0)
	for _, record := range memoryLedger.records {
		if record.Owner != owner {
			continue
		}
		record.Data = append([]byte{}, record.Data...)
		result = append(result, record)
	}
	sort.Slice(result, func(left, right int) bool {
		return result[left].Address.Compare(result[right].Address) < 0
	})
	return result
}

func (memoryLedger *Ledger) existsLocked(address authority.Address) bool {
	if _, exists := memoryLedger.mints[address]; exists {
		return true
	}
	if _, exists := memoryLedger.holdings[address]; exists {
		return true
	}
	_, exists := memoryLedger.records[address]
	return exists
}

func (memoryLedger *Ledger) lockFor(address authority.Address) *deadlock.RWMutex {
	memoryLedger.locksMutex.Lock()
	defer memoryLedger.locksMutex.Unlock()

	lock, exists := memoryLedger.locks[address]
	if !exists {
		lock = &deadlock.RWMutex{}
		memoryLedger.locks[address] = lock
	}
	return lock
}

func (memoryLedger *Ledger) lockExclusive(address authority.Address) func() {
	lock := memoryLedger.lockFor(address)
	lock.Lock()
	return lock.Unlock
}

// acquire takes locks in the order of metas, which NormalizeMetas sorts.
func (memoryLedger *Ledger) acquire(metas []ledger.AccountMeta) func() {
	release := make([]func(), 0, len(metas))
	for _, meta := range metas {
		lock := memoryLedger.lockFor(meta.Address)
		if meta.Writable {
			lock.Lock()
			release = append(release, lock.Unlock)
			continue
		}
		lock.RLock()
		release = append(release, lock.RUnlock)
	}

	return func() {
		for index := len(release) - 1; index >= 0; index-- {
			release[index]()
		}
	}
}

func (memoryLedger *Ledger) commit(staged *unitOfWork) {
	memoryLedger.mutex.Lock()
	defer memoryLedger.mutex.Unlock()

	for address, state := range staged.mints {
		memoryLedger.mints[address] = state
	}
	for address, state := range staged.holdings {
		memoryLedger.holdings[address] = state
	}
	for address, state := range staged.records {
		memoryLedger.records[address] = state
	}
}

// Program executes units of work as one deployed program.
type Program struct {
	ledger    *Ledger
	programID authority.Address
}

var _ ledger.Executor = (*Program)(nil)

// ProgramID returns the deployed program's ID.
func (program *Program) ProgramID() authority.Address {
	return program.programID
}

// Execute locks the declared accounts, runs fn and commits its staged writes
// only if fn returns nil.
func (program *Program) Execute(
	ctx context.Context,
	metas []ledger.AccountMeta,
	fn func(ledger.Tx) error,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	normalized := ledger.NormalizeMetas(metas)
	release := program.ledger.acquire(normalized)
	defer release()

	if err := ctx.Err(); err != nil {
		return err
	}

	staged := newUnitOfWork(program.ledger, program.programID, normalized)
	if err := fn(staged); err != nil {
		return err
	}

	program.ledger.commit(staged)
	return nil
}
