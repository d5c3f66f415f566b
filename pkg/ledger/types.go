package ledger

import (
	"context"
	"sort"

	"github.com/hashgraph-online/token-faucet-go/pkg/authority"
)

// MintState describes a fungible asset. A nil MintAuthority means the supply is fixed.
type MintState struct {
	Address       authority.Address  `json:"address"`
	Decimals      uint8              `json:"decimals"`
	Supply        uint64             `json:"supply"`
	MintAuthority *authority.Address `json:"mintAuthority,omitempty"`
}

// HoldingState is a balance of one mint controlled by Owner.
type HoldingState struct {
	Address authority.Address `json:"address"`
	Mint    authority.Address `json:"mint"`
	Owner   authority.Address `json:"owner"`
	Amount  uint64            `json:"amount"`
}

// RecordState is an opaque program-owned record.
type RecordState struct {
	Address authority.Address `json:"address"`
	Owner   authority.Address `json:"owner"`
	Data    []byte            `json:"data"`
}

// AccountMeta declares an account touched by a unit of work.
type AccountMeta struct {
	Address  authority.Address
	Writable bool
}

// Writable declares an account the unit of work may mutate or create.
func Writable(address authority.Address) AccountMeta {
	return AccountMeta{Address: address, Writable: true}
}

// ReadOnly declares an account the unit of work only reads.
func ReadOnly(address authority.Address) AccountMeta {
	return AccountMeta{Address: address}
}

// NormalizeMetas merges duplicate declarations (writable wins) and sorts by
// address so locks are always taken in the same order.
func NormalizeMetas(metas []AccountMeta) []AccountMeta {
	merged := make(map[authority.Address]bool, len(metas))
	for _, meta := range metas {
		merged[meta.Address] = merged[meta.Address] || meta.Writable
	}

	normalized := make([]AccountMeta, 0, len(merged))
	for address, writable := range merged {
		normalized = append(normalized, AccountMeta{Address: address, Writable: writable})
	}
	sort.Slice(normalized, func(left, right int) bool {
		return normalized[left].Address.Compare(normalized[right].Address) < 0
	})
	return normalized
}

// Tx is the view a program gets inside a unit of work. Every method fails with
// ErrAccountNotDeclared for addresses missing from the declaration, and mutating
// methods fail with ErrAccountReadOnly for read-only ones.
type Tx interface {
	// ProgramID is the program executing the unit of work. Signers are resolved
	// against it.
	ProgramID() authority.Address

	Mint(address authority.Address) (MintState, error)
	Holding(address authority.Address) (HoldingState, error)
	Record(address authority.Address) (RecordState, error)

	// CreateRecord creates a program-owned record at the address the signer
	// resolves to. It fails with ErrAccountExists if anything already lives there.
	CreateRecord(address authority.Address, data []byte, signer authority.Signer) error

	// CreateHolding opens an empty holding. It fails with ErrAccountExists if
	// anything already lives at address.
	CreateHolding(address authority.Address, mint authority.Address, owner authority.Address) error

	// MintTo raises the mint's supply and the destination balance by amount. The
	// signer must resolve to the mint authority.
	MintTo(mint authority.Address, destination authority.Address, amount uint64, signer authority.Signer) error

	// Transfer moves amount from source to destination. The signer must resolve
	// to the source owner.
	Transfer(source authority.Address, destination authority.Address, amount uint64, signer authority.Signer) error
}

// Executor runs units of work for one program.
type Executor interface {
	ProgramID() authority.Address
	Execute(ctx context.Context, metas []AccountMeta, fn func(Tx) error) error
}
