// Package pgledger implements ledger.Executor on PostgreSQL. A unit of work is
// one database transaction: declared rows are locked in address order with
// FOR UPDATE or FOR SHARE, creations rely on the primary key, and any error
// rolls the transaction back.
package pgledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hashgraph-online/token-faucet-go/pkg/authority"
	"github.com/hashgraph-online/token-faucet-go/pkg/ledger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS faucet_programs (
		program_id BYTEA PRIMARY KEY,
		deployed_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS faucet_accounts (
		address BYTEA PRIMARY KEY,
		kind TEXT NOT NULL CHECK (kind IN ('mint', 'holding', 'record')),
		mint BYTEA,
		owner BYTEA,
		decimals SMALLINT,
		supply BIGINT CHECK (supply >= 0),
		mint_authority BYTEA,
		amount BIGINT CHECK (amount >= 0),
		data BYTEA,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS faucet_accounts_record_owner_idx
		ON faucet_accounts (owner) WHERE kind = 'record'`,
}

type Ledger struct {
	pool *pgxpool.Pool
}

// New wraps an existing pool.
func New(pool *pgxpool.Pool) *Ledger {
	return &Ledger{pool: pool}
}

// Connect opens a pool for databaseURL.
func Connect(ctx context.Context, databaseURL string) (*Ledger, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("database URL is required")
	}
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}
	config.MaxConns = 10
	config.MinConns = 1
	config.MaxConnLifetime = 30 * time.Minute
	config.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return New(pool), nil
}

// Close releases the pool.
func (store *Ledger) Close() {
	store.pool.Close()
}

// EnsureSchema creates the tables if they are missing.
func (store *Ledger) EnsureSchema(ctx context.Context) error {
	for _, statement := range schemaStatements {
		if _, err := store.pool.Exec(ctx, statement); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

// Deploy registers programID. It fails with ledger.ErrProgramExists if the
// program was deployed before.
func (store *Ledger) Deploy(ctx context.Context, programID authority.Address) (*Program, error) {
	if programID.IsZero() {
		return nil, fmt.Errorf("program ID is required")
	}
	tag, err := store.pool.Exec(
		ctx,
		`INSERT INTO faucet_programs (program_id) VALUES ($1) ON CONFLICT (program_id) DO NOTHING`,
		programID[:],
	)
	if err != nil {
		return nil, fmt.Errorf("failed to deploy program: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("program %s: %w", programID, ledger.ErrProgramExists)
	}
	return &Program{store: store, programID: programID}, nil
}

// Attach returns a handle for a program deployed by an earlier process.
func (store *Ledger) Attach(ctx context.Context, programID authority.Address) (*Program, error) {
	var deployed bool
	err := store.pool.QueryRow(
		ctx,
		`SELECT EXISTS (SELECT 1 FROM faucet_programs WHERE program_id = $1)`,
		programID[:],
	).Scan(&deployed)
	if err != nil {
		return nil, fmt.Errorf("failed to look up program: %w", err)
	}
	if !deployed {
		return nil, fmt.Errorf("program %s: %w", programID, ledger.ErrAccountNotFound)
	}
	return &Program{store: store, programID: programID}, nil
}

// CreateMint registers an asset outside of any program.
func (store *Ledger) CreateMint(
	ctx context.Context,
	address authority.Address,
	decimals uint8,
	mintAuthority *authority.Address,
) error {
	var authorityBytes []byte
	if mintAuthority != nil {
		authorityBytes = append([]byte{}, mintAuthority[:]...)
	}
	tag, err := store.pool.Exec(
		ctx,
		`INSERT INTO faucet_accounts (address, kind, decimals, supply, mint_authority)
		VALUES ($1, 'mint', $2, 0, $3) ON CONFLICT (address) DO NOTHING`,
		address[:], int16(decimals), authorityBytes,
	)
	if err != nil {
		return fmt.Errorf("failed to create mint: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("mint %s: %w", address, ledger.ErrAccountExists)
	}
	return nil
}

// CreateHolding opens a funded holding and adds amount to the mint's supply.
func (store *Ledger) CreateHolding(
	ctx context.Context,
	address authority.Address,
	mint authority.Address,
	owner authority.Address,
	amount uint64,
) error {
	return pgx.BeginFunc(ctx, store.pool, func(tx pgx.Tx) error {
		row, found, err := loadAccount(ctx, tx, mint, true)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("mint %s: %w", mint, ledger.ErrAccountNotFound)
		}
		mintState, err := row.mintState(mint)
		if err != nil {
			return err
		}
		supply, err := ledger.CheckedAdd(mintState.Supply, amount)
		if err != nil {
			return err
		}
		supplyValue, err := toBigint(supply)
		if err != nil {
			return err
		}
		amountValue, err := toBigint(amount)
		if err != nil {
			return err
		}

		tag, err := tx.Exec(
			ctx,
			`INSERT INTO faucet_accounts (address, kind, mint, owner, amount)
			VALUES ($1, 'holding', $2, $3, $4) ON CONFLICT (address) DO NOTHING`,
			address[:], mint[:], owner[:], amountValue,
		)
		if err != nil {
			return fmt.Errorf("failed to create holding: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("holding %s: %w", address, ledger.ErrAccountExists)
		}
		return updateSupply(ctx, tx, mint, supplyValue)
	})
}

// Balance returns the committed balance of a holding, zero if it does not exist.
func (store *Ledger) Balance(ctx context.Context, address authority.Address) (uint64, error) {
	row, found, err := loadAccount(ctx, store.pool, address, false)
	if err != nil || !found {
		return 0, err
	}
	state, err := row.holdingState(address)
	if err != nil {
		return 0, err
	}
	return state.Amount, nil
}

// Supply returns the committed supply of a mint, zero if it does not exist.
func (store *Ledger) Supply(ctx context.Context, address authority.Address) (uint64, error) {
	row, found, err := loadAccount(ctx, store.pool, address, false)
	if err != nil || !found {
		return 0, err
	}
	state, err := row.mintState(address)
	if err != nil {
		return 0, err
	}
	return state.Supply, nil
}

// Record returns a committed record.
func (store *Ledger) Record(ctx context.Context, address authority.Address) (ledger.RecordState, bool, error) {
	row, found, err := loadAccount(ctx, store.pool, address, false)
	if err != nil || !found {
		return ledger.RecordState{}, false, err
	}
	state, err := row.recordState(address)
	if err != nil {
		return ledger.RecordState{}, false, err
	}
	return state, true, nil
}

// Records returns every record owned by owner, ordered by address.
func (store *Ledger) Records(ctx context.Context, owner authority.Address) ([]ledger.RecordState, error) {
	rows, err := store.pool.Query(
		ctx,
		`SELECT address, owner, data FROM faucet_accounts
		WHERE kind = 'record' AND owner = $1 ORDER BY address ASC`,
		owner[:],
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	result := make([]ledger.RecordState, 0)
	for rows.Next() {
		var addressBytes, ownerBytes, data []byte
		if err := rows.Scan(&addressBytes, &ownerBytes, &data); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		address, err := authority.AddressFromBytes(addressBytes)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ledger.ErrInvalidAccount, err)
		}
		recordOwner, err := authority.AddressFromBytes(ownerBytes)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ledger.ErrInvalidAccount, err)
		}
		result = append(result, ledger.RecordState{Address: address, Owner: recordOwner, Data: data})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	return result, nil
}

// Program executes units of work as one deployed program.
type Program struct {
	store     *Ledger
	programID authority.Address
}

var _ ledger.Executor = (*Program)(nil)

func (program *Program) ProgramID() authority.Address {
	return program.programID
}

// Execute runs fn inside one database transaction and commits only if fn
// returns nil.
func (program *Program) Execute(
	ctx context.Context,
	metas []ledger.AccountMeta,
	fn func(ledger.Tx) error,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tx, err := program.store.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin unit of work: %w", err)
	}
	defer tx.Rollback(ctx)

	normalized := ledger.NormalizeMetas(metas)
	for _, meta := range normalized {
		if err := lockAccount(ctx, tx, meta); err != nil {
			return err
		}
	}

	work := &unitOfWork{
		ctx:       ctx,
		tx:        tx,
		programID: program.programID,
		declared:  make(map[authority.Address]bool, len(normalized)),
	}
	for _, meta := range normalized {
		work.declared[meta.Address] = meta.Writable
	}

	if err := fn(work); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit unit of work: %w", err)
	}
	return nil
}

// lockAccount locks an existing row. Rows that do not exist yet are protected
// by the primary key when they are created.
func lockAccount(ctx context.Context, tx pgx.Tx, meta ledger.AccountMeta) error {
	query := `SELECT 1 FROM faucet_accounts WHERE address = $1 FOR SHARE`
	if meta.Writable {
		query = `SELECT 1 FROM faucet_accounts WHERE address = $1 FOR UPDATE`
	}
	var one int
	err := tx.QueryRow(ctx, query, meta.Address[:]).Scan(&one)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("failed to lock %s: %w", meta.Address, err)
	}
	return nil
}
