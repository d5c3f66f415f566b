package faucet

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashgraph-online/token-faucet-go/pkg/authority"
	"github.com/hashgraph-online/token-faucet-go/pkg/claims"
	"github.com/hashgraph-online/token-faucet-go/pkg/ledger"
	"github.com/rs/zerolog"
)

// AirdropRequest mints Amount to Destination. A nil Amount issues the fixed
// airdrop amount. A zero Destination is replaced by Owner's associated holding,
// which is created when missing.
type AirdropRequest struct {
	Asset       authority.Address
	Destination authority.Address
	Owner       authority.Address
	Amount      *uint64
}

// ClaimRequest transfers Amount from the reserve to a holding owned by
// Requester. A zero Destination is replaced by the requester's associated
// holding.
type ClaimRequest struct {
	Asset       authority.Address
	Destination authority.Address
	Requester   authority.Address
	Amount      *uint64
}

// Receipt describes a committed operation.
type Receipt struct {
	Operation        string            `json:"operation"`
	Asset            authority.Address `json:"asset"`
	Destination      authority.Address `json:"destination"`
	Amount           uint64            `json:"amount"`
	Marker           *claims.Marker    `json:"marker,omitempty"`
	SupplyAfter      uint64            `json:"supplyAfter"`
	ReserveAfter     uint64            `json:"reserveAfter,omitempty"`
	DestinationAfter uint64            `json:"destinationAfter"`
}

// Faucet issues tokens of one program under a derived authority. Its methods
// are safe for concurrent use; each operation runs as one unit of work.
type Faucet struct {
	executor ledger.Executor
	config   Config
	identity authority.Identity
	claims   *claims.Ledger
	logger   zerolog.Logger
}

// Option configures a Faucet built by New.
type Option func(*Faucet)

// WithLogger sets the logger used for per-operation events.
func WithLogger(logger zerolog.Logger) Option {
	return func(faucetValue *Faucet) {
		faucetValue.logger = logger
	}
}

// New derives the faucet authority for the executor's program.
func New(executor ledger.Executor, config Config, options ...Option) (*Faucet, error) {
	if executor == nil {
		return nil, fmt.Errorf("executor is required")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	deriver := authority.NewDeriver(executor.ProgramID())
	identity, err := deriver.Derive(config.AuthorityLabel)
	if err != nil {
		return nil, err
	}

	faucetValue := &Faucet{
		executor: executor,
		config:   config,
		identity: identity,
		claims:   claims.New(deriver),
		logger:   zerolog.Nop(),
	}
	for _, option := range options {
		option(faucetValue)
	}
	return faucetValue, nil
}

// Authority returns the derived identity that signs every issuance.
func (faucetValue *Faucet) Authority() authority.Identity {
	return faucetValue.identity
}

// Config returns the configuration the faucet was built with.
func (faucetValue *Faucet) Config() Config {
	return faucetValue.config
}

// ReserveAddress returns the authority's associated holding for asset.
func (faucetValue *Faucet) ReserveAddress(asset authority.Address) (authority.Address, error) {
	return ledger.AssociatedHoldingAddress(faucetValue.identity.Address, asset)
}

// MarkerAddress returns where the claim marker for requester and asset lives.
func (faucetValue *Faucet) MarkerAddress(requester authority.Address, asset authority.Address) (authority.Address, error) {
	identity, err := faucetValue.claims.Address(requester, asset)
	if err != nil {
		return authority.Address{}, err
	}
	return identity.Address, nil
}

// HasClaimed reports whether requester already claimed asset.
func (faucetValue *Faucet) HasClaimed(ctx context.Context, requester authority.Address, asset authority.Address) (bool, error) {
	marker, err := faucetValue.MarkerAddress(requester, asset)
	if err != nil {
		return false, classify(err)
	}

	found := false
	err = faucetValue.executor.Execute(ctx, []ledger.AccountMeta{ledger.ReadOnly(marker)}, func(tx ledger.Tx) error {
		var lookupErr error
		_, found, lookupErr = faucetValue.claims.Lookup(tx, requester, asset)
		return lookupErr
	})
	if err != nil {
		return false, classify(err)
	}
	return found, nil
}

// Airdrop mints tokens to the destination under the amount policy.
func (faucetValue *Faucet) Airdrop(ctx context.Context, request AirdropRequest) (Receipt, error) {
	amount := faucetValue.config.FixedAirdropAmount
	if request.Amount != nil {
		amount = *request.Amount
	}
	receipt := Receipt{Operation: OperationAirdrop, Asset: request.Asset, Amount: amount}

	destination, err := faucetValue.resolveDestination(request.Asset, request.Destination, request.Owner)
	if err != nil {
		return faucetValue.reject(receipt, err)
	}
	receipt.Destination = destination

	metas := []ledger.AccountMeta{
		ledger.Writable(request.Asset),
		ledger.Writable(destination),
	}
	err = faucetValue.executor.Execute(ctx, metas, func(tx ledger.Tx) error {
		mintState, err := tx.Mint(request.Asset)
		if err != nil {
			return err
		}
		if err := faucetValue.config.Policy.Check(amount, mintState.Decimals); err != nil {
			return err
		}
		if err := faucetValue.ensureDestination(tx, request.Asset, destination, request.Owner); err != nil {
			return err
		}

		issue := issuance{
			flavor:      FlavorMint,
			asset:       request.Asset,
			destination: destination,
			amount:      amount,
			signer:      faucetValue.identity.Signer(),
		}
		if err := issue.apply(tx); err != nil {
			return err
		}
		return faucetValue.fillBalances(tx, &receipt, authority.Address{})
	})
	if err != nil {
		return faucetValue.reject(receipt, err)
	}
	return faucetValue.accept(receipt), nil
}

// Claim transfers tokens from the reserve to the requester and, when one-time
// claims are enabled, records the claim in the same unit of work.
func (faucetValue *Faucet) Claim(ctx context.Context, request ClaimRequest) (Receipt, error) {
	amount := faucetValue.config.FixedAirdropAmount
	if request.Amount != nil {
		amount = *request.Amount
	}
	receipt := Receipt{Operation: OperationClaim, Asset: request.Asset, Amount: amount}

	if request.Requester.IsZero() {
		return faucetValue.reject(receipt, newError(KindInvalidRequest, "requester is required", nil))
	}
	destination, err := faucetValue.resolveDestination(request.Asset, request.Destination, request.Requester)
	if err != nil {
		return faucetValue.reject(receipt, err)
	}
	receipt.Destination = destination

	reserve, err := faucetValue.ReserveAddress(request.Asset)
	if err != nil {
		return faucetValue.reject(receipt, err)
	}
	metas := []ledger.AccountMeta{
		ledger.ReadOnly(request.Asset),
		ledger.Writable(reserve),
		ledger.Writable(destination),
	}
	if faucetValue.config.OneTimeClaim {
		marker, err := faucetValue.MarkerAddress(request.Requester, request.Asset)
		if err != nil {
			return faucetValue.reject(receipt, err)
		}
		metas = append(metas, ledger.Writable(marker))
	}

	err = faucetValue.executor.Execute(ctx, metas, func(tx ledger.Tx) error {
		// The marker goes first so a repeat claim is AlreadyClaimed whatever
		// its amount or destination. A later failure rolls it back.
		if faucetValue.config.OneTimeClaim {
			marker, err := faucetValue.claims.Create(tx, request.Requester, request.Asset)
			if err != nil {
				return err
			}
			receipt.Marker = &marker
		}

		mintState, err := tx.Mint(request.Asset)
		if err != nil {
			return err
		}
		if err := faucetValue.config.Policy.Check(amount, mintState.Decimals); err != nil {
			return err
		}
		if _, err := tx.Holding(reserve); err != nil {
			if errors.Is(err, ledger.ErrAccountNotFound) {
				return newError(KindInsufficientFunds, "reserve holding does not exist", err)
			}
			return err
		}

		if err := faucetValue.ensureDestination(tx, request.Asset, destination, request.Requester); err != nil {
			return err
		}

		issue := issuance{
			flavor:      FlavorTransfer,
			asset:       request.Asset,
			reserve:     reserve,
			destination: destination,
			amount:      amount,
			signer:      faucetValue.identity.Signer(),
		}
		if err := issue.apply(tx); err != nil {
			return err
		}
		return faucetValue.fillBalances(tx, &receipt, reserve)
	})
	if err != nil {
		receipt.Marker = nil
		return faucetValue.reject(receipt, err)
	}
	return faucetValue.accept(receipt), nil
}

func (faucetValue *Faucet) resolveDestination(
	asset authority.Address,
	destination authority.Address,
	owner authority.Address,
) (authority.Address, error) {
	if asset.IsZero() {
		return authority.Address{}, newError(KindInvalidRequest, "asset is required", nil)
	}
	if !destination.IsZero() {
		return destination, nil
	}
	if owner.IsZero() {
		return authority.Address{}, newError(KindInvalidRequest, "destination or owner is required", nil)
	}
	associated, err := ledger.AssociatedHoldingAddress(owner, asset)
	if err != nil {
		return authority.Address{}, fmt.Errorf("failed to derive destination holding: %w", err)
	}
	return associated, nil
}

// ensureDestination opens owner's associated holding when it is the
// destination and does not exist yet, and checks ownership otherwise.
func (faucetValue *Faucet) ensureDestination(
	tx ledger.Tx,
	asset authority.Address,
	destination authority.Address,
	owner authority.Address,
) error {
	holding, err := tx.Holding(destination)
	if errors.Is(err, ledger.ErrAccountNotFound) && !owner.IsZero() {
		associated, deriveErr := ledger.AssociatedHoldingAddress(owner, asset)
		if deriveErr != nil {
			return deriveErr
		}
		if associated != destination {
			return err
		}
		createErr := tx.CreateHolding(destination, asset, owner)
		if !errors.Is(createErr, ledger.ErrAccountExists) {
			return createErr
		}
		// A concurrent unit of work opened it first.
		holding, err = tx.Holding(destination)
	}
	if err != nil {
		return err
	}
	if !owner.IsZero() && holding.Owner != owner {
		return newError(KindInvalidRequest, fmt.Sprintf("destination %s is not owned by %s", destination, owner), nil)
	}
	return nil
}

func (faucetValue *Faucet) fillBalances(tx ledger.Tx, receipt *Receipt, reserve authority.Address) error {
	mintState, err := tx.Mint(receipt.Asset)
	if err != nil {
		return err
	}
	receipt.SupplyAfter = mintState.Supply

	destinationState, err := tx.Holding(receipt.Destination)
	if err != nil {
		return err
	}
	receipt.DestinationAfter = destinationState.Amount

	if !reserve.IsZero() {
		reserveState, err := tx.Holding(reserve)
		if err != nil {
			return err
		}
		receipt.ReserveAfter = reserveState.Amount
	}
	return nil
}

func (faucetValue *Faucet) accept(receipt Receipt) Receipt {
	faucetValue.logger.Info().
		Str("op", receipt.Operation).
		Str("asset", receipt.Asset.String()).
		Str("destination", receipt.Destination.String()).
		Uint64("amount", receipt.Amount).
		Msg("tokens issued")
	return receipt
}

func (faucetValue *Faucet) reject(receipt Receipt, err error) (Receipt, error) {
	classified := classify(err)
	faucetValue.logger.Warn().
		Str("op", receipt.Operation).
		Str("asset", receipt.Asset.String()).
		Str("destination", receipt.Destination.String()).
		Uint64("amount", receipt.Amount).
		Str("kind", string(classified.Kind)).
		Err(err).
		Msg("request rejected")
	return Receipt{}, classified
}
