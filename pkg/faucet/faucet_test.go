package faucet

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/hashgraph-online/token-faucet-go/pkg/authority"
	"github.com/hashgraph-online/token-faucet-go/pkg/ledger"
	"github.com/hashgraph-online/token-faucet-go/pkg/ledger/memledger"
	"github.com/hashgraph-online/token-faucet-go/pkg/policy"
	"github.com/rs/zerolog"
)

var (
	testProgramID = authority.Address{0xfa, 0x0c, 0xe7}
	testMint      = authority.Address{0x11}
	testUser      = authority.Address{0x22}
	otherUser     = authority.Address{0x33}
)

type fixture struct {
	ledger  *memledger.Ledger
	faucet  *Faucet
	reserve authority.Address
}

func amountOf(value uint64) *uint64 {
	return &value
}

func newFixture(t *testing.T, config Config, decimals uint8, reserveAmount uint64, options ...Option) fixture {
	t.Helper()

	memoryLedger := memledger.New()
	program, err := memoryLedger.Deploy(testProgramID)
	if err != nil {
		t.Fatalf("unexpected deploy error: %v", err)
	}
	tokenFaucet, err := New(program, config, options...)
	if err != nil {
		t.Fatalf("unexpected new faucet error: %v", err)
	}

	mintAuthority := tokenFaucet.Authority().Address
	if err := memoryLedger.CreateMint(testMint, decimals, &mintAuthority); err != nil {
		t.Fatalf("unexpected create mint error: %v", err)
	}
	reserve, err := tokenFaucet.ReserveAddress(testMint)
	if err != nil {
		t.Fatalf("unexpected reserve address error: %v", err)
	}
	if err := memoryLedger.CreateHolding(reserve, testMint, mintAuthority, reserveAmount); err != nil {
		t.Fatalf("unexpected create reserve error: %v", err)
	}

	return fixture{ledger: memoryLedger, faucet: tokenFaucet, reserve: reserve}
}

func associated(t *testing.T, owner authority.Address) authority.Address {
	t.Helper()
	address, err := ledger.AssociatedHoldingAddress(owner, testMint)
	if err != nil {
		t.Fatalf("unexpected associated address error: %v", err)
	}
	return address
}

func TestClaimScenarioSixDecimals(t *testing.T) {
	state := newFixture(t, DefaultConfig(), 6, 1_000_000_000)

	receipt, err := state.faucet.Claim(context.Background(), ClaimRequest{
		Asset:     testMint,
		Requester: testUser,
		Amount:    amountOf(10_000_000),
	})
	if err != nil {
		t.Fatalf("unexpected claim error: %v", err)
	}

	destination := associated(t, testUser)
	if receipt.Destination != destination {
		t.Fatalf("expected destination %s, got %s", destination, receipt.Destination)
	}
	if receipt.ReserveAfter != 990_000_000 || receipt.DestinationAfter != 10_000_000 {
		t.Fatalf("unexpected receipt balances: %+v", receipt)
	}
	if receipt.SupplyAfter != 1_000_000_000 {
		t.Fatalf("expected supply unchanged, got %d", receipt.SupplyAfter)
	}
	if receipt.Marker == nil || receipt.Marker.Requester != testUser || receipt.Marker.Asset != testMint {
		t.Fatalf("unexpected marker: %+v", receipt.Marker)
	}
	if got := state.ledger.Balance(state.reserve) + state.ledger.Balance(destination); got != 1_000_000_000 {
		t.Fatalf("expected conserved total, got %d", got)
	}

	claimed, err := state.faucet.HasClaimed(context.Background(), testUser, testMint)
	if err != nil {
		t.Fatalf("unexpected has claimed error: %v", err)
	}
	if !claimed {
		t.Fatalf("expected requester to be marked as claimed")
	}
}

func TestClaimTwiceFailsWithAlreadyClaimed(t *testing.T) {
	state := newFixture(t, DefaultConfig(), 6, 1_000_000_000)
	request := ClaimRequest{Asset: testMint, Requester: testUser, Amount: amountOf(5)}

	if _, err := state.faucet.Claim(context.Background(), request); err != nil {
		t.Fatalf("unexpected claim error: %v", err)
	}
	_, err := state.faucet.Claim(context.Background(), request)
	if !errors.Is(err, ErrAlreadyClaimed) {
		t.Fatalf("expected ErrAlreadyClaimed, got %v", err)
	}
	if KindOf(err) != KindAlreadyClaimed {
		t.Fatalf("expected kind %s, got %s", KindAlreadyClaimed, KindOf(err))
	}
	if got := state.ledger.Balance(associated(t, testUser)); got != 5 {
		t.Fatalf("expected a single transfer, got balance %d", got)
	}

	if _, err := state.faucet.Claim(context.Background(), ClaimRequest{Asset: testMint, Requester: otherUser, Amount: amountOf(5)}); err != nil {
		t.Fatalf("unexpected claim error for another requester: %v", err)
	}
}

func TestClaimHalfOfReserveThenRepeat(t *testing.T) {
	state := newFixture(t, DefaultConfig(), 6, 10_000_000)
	destination := associated(t, testUser)

	receipt, err := state.faucet.Claim(context.Background(), ClaimRequest{
		Asset:     testMint,
		Requester: testUser,
		Amount:    amountOf(5_000_000),
	})
	if err != nil {
		t.Fatalf("unexpected claim error: %v", err)
	}
	if receipt.ReserveAfter != 5_000_000 || receipt.DestinationAfter != 5_000_000 {
		t.Fatalf("unexpected receipt balances: %+v", receipt)
	}
	if got := state.ledger.Balance(state.reserve); got != 5_000_000 {
		t.Fatalf("expected reserve 5000000, got %d", got)
	}
	if got := state.ledger.Balance(destination); got != 5_000_000 {
		t.Fatalf("expected destination 5000000, got %d", got)
	}
	marker, err := state.faucet.MarkerAddress(testUser, testMint)
	if err != nil {
		t.Fatalf("unexpected marker address error: %v", err)
	}
	if _, exists := state.ledger.Record(marker); !exists {
		t.Fatalf("expected marker at %s", marker)
	}

	if _, err := state.faucet.Claim(context.Background(), ClaimRequest{
		Asset:     testMint,
		Requester: testUser,
		Amount:    amountOf(1),
	}); !errors.Is(err, ErrAlreadyClaimed) {
		t.Fatalf("expected ErrAlreadyClaimed, got %v", err)
	}
	if got := state.ledger.Balance(state.reserve); got != 5_000_000 {
		t.Fatalf("expected reserve unchanged after repeat, got %d", got)
	}
}

func TestRepeatClaimIsAlreadyClaimedRegardlessOfRequest(t *testing.T) {
	config := DefaultConfig()
	config.Policy.AllowZero = false
	state := newFixture(t, config, 6, 10_000_000)

	if _, err := state.faucet.Claim(context.Background(), ClaimRequest{
		Asset:     testMint,
		Requester: testUser,
		Amount:    amountOf(5_000_000),
	}); err != nil {
		t.Fatalf("unexpected claim error: %v", err)
	}

	otherDestination := authority.Address{0x44}
	if err := state.ledger.CreateHolding(otherDestination, testMint, testUser, 0); err != nil {
		t.Fatalf("unexpected create holding error: %v", err)
	}
	foreignDestination := associated(t, otherUser)
	if err := state.ledger.CreateHolding(foreignDestination, testMint, otherUser, 0); err != nil {
		t.Fatalf("unexpected create holding error: %v", err)
	}

	tests := []struct {
		name    string
		request ClaimRequest
	}{
		{"same amount", ClaimRequest{Asset: testMint, Requester: testUser, Amount: amountOf(5_000_000)}},
		{"smaller amount", ClaimRequest{Asset: testMint, Requester: testUser, Amount: amountOf(1)}},
		{"above ceiling", ClaimRequest{Asset: testMint, Requester: testUser, Amount: amountOf(1_000_000_001)}},
		{"above reserve", ClaimRequest{Asset: testMint, Requester: testUser, Amount: amountOf(9_000_000)}},
		{"zero amount", ClaimRequest{Asset: testMint, Requester: testUser, Amount: amountOf(0)}},
		{"omitted amount", ClaimRequest{Asset: testMint, Requester: testUser}},
		{"other own holding", ClaimRequest{Asset: testMint, Destination: otherDestination, Requester: testUser, Amount: amountOf(1)}},
		{"foreign holding", ClaimRequest{Asset: testMint, Destination: foreignDestination, Requester: testUser, Amount: amountOf(1)}},
		{"missing holding", ClaimRequest{Asset: testMint, Destination: authority.Address{0x55}, Requester: testUser, Amount: amountOf(1)}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := state.faucet.Claim(context.Background(), test.request)
			if !errors.Is(err, ErrAlreadyClaimed) {
				t.Fatalf("expected ErrAlreadyClaimed, got %v", err)
			}
		})
	}

	if got := state.ledger.Balance(state.reserve); got != 5_000_000 {
		t.Fatalf("expected reserve unchanged by repeats, got %d", got)
	}
	if got := state.ledger.Balance(otherDestination); got != 0 {
		t.Fatalf("expected other holding untouched, got %d", got)
	}
}

func TestClaimWithMintSortedBeforeReserve(t *testing.T) {
	lowMint := authority.Address{0x00, 0x00, 0x01}
	memoryLedger := memledger.New()
	program, err := memoryLedger.Deploy(testProgramID)
	if err != nil {
		t.Fatalf("unexpected deploy error: %v", err)
	}
	tokenFaucet, err := New(program, DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected new faucet error: %v", err)
	}
	mintAuthority := tokenFaucet.Authority().Address
	if err := memoryLedger.CreateMint(lowMint, 6, &mintAuthority); err != nil {
		t.Fatalf("unexpected create mint error: %v", err)
	}
	reserve, err := tokenFaucet.ReserveAddress(lowMint)
	if err != nil {
		t.Fatalf("unexpected reserve address error: %v", err)
	}
	if lowMint.Compare(reserve) >= 0 {
		t.Fatalf("expected reserve %s to sort after mint", reserve)
	}
	if err := memoryLedger.CreateHolding(reserve, lowMint, mintAuthority, 100); err != nil {
		t.Fatalf("unexpected create reserve error: %v", err)
	}

	receipt, err := tokenFaucet.Claim(context.Background(), ClaimRequest{Asset: lowMint, Requester: testUser, Amount: amountOf(40)})
	if err != nil {
		t.Fatalf("unexpected claim error: %v", err)
	}
	if receipt.ReserveAfter != 60 || receipt.DestinationAfter != 40 {
		t.Fatalf("unexpected receipt balances: %+v", receipt)
	}
}

func TestUnderfundedClaimLeavesNoMarker(t *testing.T) {
	state := newFixture(t, DefaultConfig(), 6, 9)

	_, err := state.faucet.Claim(context.Background(), ClaimRequest{
		Asset:     testMint,
		Requester: testUser,
		Amount:    amountOf(10),
	})
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	if !errors.Is(err, ledger.ErrInsufficientFunds) {
		t.Fatalf("expected host cause to be kept, got %v", err)
	}

	claimed, err := state.faucet.HasClaimed(context.Background(), testUser, testMint)
	if err != nil {
		t.Fatalf("unexpected has claimed error: %v", err)
	}
	if claimed {
		t.Fatalf("expected no marker after a failed claim")
	}
	if _, exists := state.ledger.Holding(associated(t, testUser)); exists {
		t.Fatalf("expected destination creation to be rolled back")
	}
	if got := state.ledger.Balance(state.reserve); got != 9 {
		t.Fatalf("expected reserve unchanged, got %d", got)
	}

	if _, err := state.faucet.Claim(context.Background(), ClaimRequest{Asset: testMint, Requester: testUser, Amount: amountOf(9)}); err != nil {
		t.Fatalf("expected retry within funds to succeed, got %v", err)
	}
}

func TestClaimPolicyBoundary(t *testing.T) {
	tests := []struct {
		name    string
		amount  uint64
		wantErr error
	}{
		{name: "at ceiling", amount: 1_000_000_000},
		{name: "one above ceiling", amount: 1_000_000_001, wantErr: ErrAmountExceedsPolicy},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			state := newFixture(t, DefaultConfig(), 6, 2_000_000_000)
			_, err := state.faucet.Claim(context.Background(), ClaimRequest{
				Asset:     testMint,
				Requester: testUser,
				Amount:    amountOf(test.amount),
			})
			if test.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected claim error: %v", err)
				}
				return
			}
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("expected %v, got %v", test.wantErr, err)
			}
			if !errors.Is(err, policy.ErrAmountExceedsPolicy) {
				t.Fatalf("expected policy cause, got %v", err)
			}
			claimed, lookupErr := state.faucet.HasClaimed(context.Background(), testUser, testMint)
			if lookupErr != nil {
				t.Fatalf("unexpected has claimed error: %v", lookupErr)
			}
			if claimed {
				t.Fatalf("expected no marker after a rejected amount")
			}
		})
	}
}

func TestClaimWithForeignReserveOwner(t *testing.T) {
	memoryLedger := memledger.New()
	program, err := memoryLedger.Deploy(testProgramID)
	if err != nil {
		t.Fatalf("unexpected deploy error: %v", err)
	}
	tokenFaucet, err := New(program, DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected new faucet error: %v", err)
	}
	if err := memoryLedger.CreateMint(testMint, 6, nil); err != nil {
		t.Fatalf("unexpected create mint error: %v", err)
	}
	reserve, err := tokenFaucet.ReserveAddress(testMint)
	if err != nil {
		t.Fatalf("unexpected reserve address error: %v", err)
	}
	if err := memoryLedger.CreateHolding(reserve, testMint, otherUser, 100); err != nil {
		t.Fatalf("unexpected create holding error: %v", err)
	}

	_, err = tokenFaucet.Claim(context.Background(), ClaimRequest{Asset: testMint, Requester: testUser, Amount: amountOf(1)})
	if !errors.Is(err, ErrInsufficientAuthority) {
		t.Fatalf("expected ErrInsufficientAuthority, got %v", err)
	}
	if got := memoryLedger.Balance(reserve); got != 100 {
		t.Fatalf("expected reserve unchanged, got %d", got)
	}
	if records := memoryLedger.Records(testProgramID); len(records) != 0 {
		t.Fatalf("expected no marker, got %+v", records)
	}
}

func TestClaimMissingReserve(t *testing.T) {
	memoryLedger := memledger.New()
	program, err := memoryLedger.Deploy(testProgramID)
	if err != nil {
		t.Fatalf("unexpected deploy error: %v", err)
	}
	tokenFaucet, err := New(program, DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected new faucet error: %v", err)
	}
	if err := memoryLedger.CreateMint(testMint, 6, nil); err != nil {
		t.Fatalf("unexpected create mint error: %v", err)
	}

	_, err = tokenFaucet.Claim(context.Background(), ClaimRequest{Asset: testMint, Requester: testUser, Amount: amountOf(1)})
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
}

func TestClaimWithoutOneTimeMarker(t *testing.T) {
	config := DefaultConfig()
	config.OneTimeClaim = false
	state := newFixture(t, config, 6, 100)
	request := ClaimRequest{Asset: testMint, Requester: testUser, Amount: amountOf(10)}

	for attempt := 0; attempt < 3; attempt++ {
		receipt, err := state.faucet.Claim(context.Background(), request)
		if err != nil {
			t.Fatalf("unexpected claim error on attempt %d: %v", attempt, err)
		}
		if receipt.Marker != nil {
			t.Fatalf("expected no marker, got %+v", receipt.Marker)
		}
	}
	if got := state.ledger.Balance(associated(t, testUser)); got != 30 {
		t.Fatalf("expected 30 after three claims, got %d", got)
	}
	if records := state.ledger.Records(testProgramID); len(records) != 0 {
		t.Fatalf("expected no records, got %+v", records)
	}
}

func TestClaimRejectsDestinationOwnedBySomeoneElse(t *testing.T) {
	state := newFixture(t, DefaultConfig(), 6, 100)
	foreignDestination := associated(t, otherUser)
	if err := state.ledger.CreateHolding(foreignDestination, testMint, otherUser, 0); err != nil {
		t.Fatalf("unexpected create holding error: %v", err)
	}

	_, err := state.faucet.Claim(context.Background(), ClaimRequest{
		Asset:       testMint,
		Destination: foreignDestination,
		Requester:   testUser,
		Amount:      amountOf(1),
	})
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestConcurrentClaimsBySameRequester(t *testing.T) {
	const attempts = 16
	state := newFixture(t, DefaultConfig(), 6, 1_000)

	var waitGroup sync.WaitGroup
	results := make(chan error, attempts)
	for range attempts {
		waitGroup.Add(1)
		go func() {
			defer waitGroup.Done()
			_, err := state.faucet.Claim(context.Background(), ClaimRequest{
				Asset:     testMint,
				Requester: testUser,
				Amount:    amountOf(10),
			})
			results <- err
		}()
	}
	waitGroup.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrAlreadyClaimed):
		default:
			t.Fatalf("unexpected claim error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("expected exactly one successful claim, got %d", succeeded)
	}
	if got := state.ledger.Balance(state.reserve); got != 990 {
		t.Fatalf("expected reserve 990, got %d", got)
	}
}

func TestAirdropMintsAndConservesSupply(t *testing.T) {
	state := newFixture(t, DefaultConfig(), 6, 0)

	receipt, err := state.faucet.Airdrop(context.Background(), AirdropRequest{
		Asset:  testMint,
		Owner:  testUser,
		Amount: amountOf(10_000_000),
	})
	if err != nil {
		t.Fatalf("unexpected airdrop error: %v", err)
	}
	if receipt.SupplyAfter != 10_000_000 || receipt.DestinationAfter != 10_000_000 {
		t.Fatalf("unexpected receipt: %+v", receipt)
	}
	if receipt.Marker != nil {
		t.Fatalf("expected airdrop to write no marker")
	}
	if got := state.ledger.Supply(testMint); got != 10_000_000 {
		t.Fatalf("expected supply 10000000, got %d", got)
	}
}

// racingExecutor opens the holding inside CreateHolding and still reports
// ErrAccountExists, as a host does when another unit of work wins the insert.
type racingExecutor struct {
	ledger.Executor
}

type racingTx struct {
	ledger.Tx
}

func (executor racingExecutor) Execute(ctx context.Context, metas []ledger.AccountMeta, fn func(ledger.Tx) error) error {
	return executor.Executor.Execute(ctx, metas, func(tx ledger.Tx) error {
		return fn(racingTx{Tx: tx})
	})
}

func (tx racingTx) CreateHolding(address authority.Address, mint authority.Address, owner authority.Address) error {
	if err := tx.Tx.CreateHolding(address, mint, owner); err != nil {
		return err
	}
	return fmt.Errorf("holding %s: %w", address, ledger.ErrAccountExists)
}

func TestIssuanceToHoldingOpenedConcurrently(t *testing.T) {
	memoryLedger := memledger.New()
	program, err := memoryLedger.Deploy(testProgramID)
	if err != nil {
		t.Fatalf("unexpected deploy error: %v", err)
	}
	tokenFaucet, err := New(racingExecutor{Executor: program}, DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected new faucet error: %v", err)
	}
	mintAuthority := tokenFaucet.Authority().Address
	if err := memoryLedger.CreateMint(testMint, 6, &mintAuthority); err != nil {
		t.Fatalf("unexpected create mint error: %v", err)
	}
	reserve, err := tokenFaucet.ReserveAddress(testMint)
	if err != nil {
		t.Fatalf("unexpected reserve address error: %v", err)
	}
	if err := memoryLedger.CreateHolding(reserve, testMint, mintAuthority, 100); err != nil {
		t.Fatalf("unexpected create reserve error: %v", err)
	}

	receipt, err := tokenFaucet.Airdrop(context.Background(), AirdropRequest{Asset: testMint, Owner: testUser, Amount: amountOf(7)})
	if err != nil {
		t.Fatalf("unexpected airdrop error: %v", err)
	}
	if receipt.DestinationAfter != 7 {
		t.Fatalf("unexpected airdrop receipt: %+v", receipt)
	}

	receipt, err = tokenFaucet.Claim(context.Background(), ClaimRequest{Asset: testMint, Requester: otherUser, Amount: amountOf(3)})
	if err != nil {
		t.Fatalf("unexpected claim error: %v", err)
	}
	if receipt.DestinationAfter != 3 || receipt.ReserveAfter != 97 {
		t.Fatalf("unexpected claim receipt: %+v", receipt)
	}
}

func TestAirdropFixedAmount(t *testing.T) {
	state := newFixture(t, DefaultConfig(), 6, 0)

	receipt, err := state.faucet.Airdrop(context.Background(), AirdropRequest{Asset: testMint, Owner: testUser})
	if err != nil {
		t.Fatalf("unexpected airdrop error: %v", err)
	}
	if receipt.Amount != DefaultFixedAirdropAmount || receipt.DestinationAfter != DefaultFixedAirdropAmount {
		t.Fatalf("expected fixed amount %d, got %+v", DefaultFixedAirdropAmount, receipt)
	}
}

func TestAirdropFixedAmountIsPolicyChecked(t *testing.T) {
	state := newFixture(t, DefaultConfig(), 0, 0)

	_, err := state.faucet.Airdrop(context.Background(), AirdropRequest{Asset: testMint, Owner: testUser})
	if !errors.Is(err, ErrAmountExceedsPolicy) {
		t.Fatalf("expected ErrAmountExceedsPolicy, got %v", err)
	}
	if got := state.ledger.Supply(testMint); got != 0 {
		t.Fatalf("expected supply unchanged, got %d", got)
	}
}

func TestAirdropBoundary(t *testing.T) {
	state := newFixture(t, DefaultConfig(), 2, 0)

	if _, err := state.faucet.Airdrop(context.Background(), AirdropRequest{Asset: testMint, Owner: testUser, Amount: amountOf(100_000)}); err != nil {
		t.Fatalf("unexpected airdrop error at ceiling: %v", err)
	}
	_, err := state.faucet.Airdrop(context.Background(), AirdropRequest{Asset: testMint, Owner: testUser, Amount: amountOf(100_001)})
	if !errors.Is(err, ErrAmountExceedsPolicy) {
		t.Fatalf("expected ErrAmountExceedsPolicy, got %v", err)
	}
	if got := state.ledger.Supply(testMint); got != 100_000 {
		t.Fatalf("expected supply 100000, got %d", got)
	}
}

func TestAirdropWithForeignMintAuthority(t *testing.T) {
	memoryLedger := memledger.New()
	program, err := memoryLedger.Deploy(testProgramID)
	if err != nil {
		t.Fatalf("unexpected deploy error: %v", err)
	}
	tokenFaucet, err := New(program, DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected new faucet error: %v", err)
	}
	foreignAuthority := authority.Address{0x44}
	if err := memoryLedger.CreateMint(testMint, 6, &foreignAuthority); err != nil {
		t.Fatalf("unexpected create mint error: %v", err)
	}

	_, err = tokenFaucet.Airdrop(context.Background(), AirdropRequest{Asset: testMint, Owner: testUser, Amount: amountOf(1)})
	if !errors.Is(err, ErrInsufficientAuthority) {
		t.Fatalf("expected ErrInsufficientAuthority, got %v", err)
	}
	if _, exists := memoryLedger.Holding(associated(t, testUser)); exists {
		t.Fatalf("expected destination creation to be rolled back")
	}
}

func TestAirdropFixedDecimalsSource(t *testing.T) {
	config := DefaultConfig()
	config.Policy.DecimalsSource = policy.DecimalsFixed
	config.Policy.FixedDecimals = 9
	state := newFixture(t, config, 6, 0)

	if _, err := state.faucet.Airdrop(context.Background(), AirdropRequest{Asset: testMint, Owner: testUser, Amount: amountOf(1_000_000_000_000)}); err != nil {
		t.Fatalf("unexpected airdrop error under fixed decimals: %v", err)
	}
}

func TestZeroAmountRules(t *testing.T) {
	state := newFixture(t, DefaultConfig(), 6, 10)
	if _, err := state.faucet.Airdrop(context.Background(), AirdropRequest{Asset: testMint, Owner: testUser, Amount: amountOf(0)}); err != nil {
		t.Fatalf("expected zero amount to be allowed by default, got %v", err)
	}

	config := DefaultConfig()
	config.Policy.AllowZero = false
	strict := newFixture(t, config, 6, 10)
	_, err := strict.faucet.Airdrop(context.Background(), AirdropRequest{Asset: testMint, Owner: testUser, Amount: amountOf(0)})
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestRequestValidation(t *testing.T) {
	state := newFixture(t, DefaultConfig(), 6, 10)

	if _, err := state.faucet.Claim(context.Background(), ClaimRequest{Asset: testMint}); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for missing requester, got %v", err)
	}
	if _, err := state.faucet.Airdrop(context.Background(), AirdropRequest{Owner: testUser}); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for missing asset, got %v", err)
	}
	if _, err := state.faucet.Airdrop(context.Background(), AirdropRequest{Asset: testMint}); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for missing destination, got %v", err)
	}
	if _, err := state.faucet.Airdrop(context.Background(), AirdropRequest{Asset: authority.Address{0x99}, Owner: testUser, Amount: amountOf(1)}); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for unknown asset, got %v", err)
	}
}

func TestNewValidatesConfig(t *testing.T) {
	memoryLedger := memledger.New()
	program, err := memoryLedger.Deploy(testProgramID)
	if err != nil {
		t.Fatalf("unexpected deploy error: %v", err)
	}

	config := DefaultConfig()
	config.AuthorityLabel = " "
	if _, err := New(program, config); err == nil {
		t.Fatalf("expected blank label to be rejected")
	}
	if _, err := New(nil, DefaultConfig()); err == nil {
		t.Fatalf("expected nil executor to be rejected")
	}
}

func TestAuthorityIsStablePerProgram(t *testing.T) {
	state := newFixture(t, DefaultConfig(), 6, 0)
	expected, err := authority.NewDeriver(testProgramID).Derive(authority.DefaultLabel)
	if err != nil {
		t.Fatalf("unexpected derive error: %v", err)
	}
	if state.faucet.Authority().Address != expected.Address {
		t.Fatalf("expected authority %s, got %s", expected.Address, state.faucet.Authority().Address)
	}
}

func TestOperationsAreLogged(t *testing.T) {
	var buffer bytes.Buffer
	state := newFixture(t, DefaultConfig(), 6, 100, WithLogger(zerolog.New(&buffer)))

	request := ClaimRequest{Asset: testMint, Requester: testUser, Amount: amountOf(1)}
	if _, err := state.faucet.Claim(context.Background(), request); err != nil {
		t.Fatalf("unexpected claim error: %v", err)
	}
	if _, err := state.faucet.Claim(context.Background(), request); err == nil {
		t.Fatalf("expected second claim to fail")
	}

	lines := strings.Split(strings.TrimSpace(buffer.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected two log events, got %d: %s", len(lines), buffer.String())
	}
	if !strings.Contains(lines[0], `"op":"claim"`) || !strings.Contains(lines[0], `"amount":1`) {
		t.Fatalf("unexpected accepted event: %s", lines[0])
	}
	if !strings.Contains(lines[1], `"kind":"AlreadyClaimed"`) {
		t.Fatalf("unexpected rejected event: %s", lines[1])
	}
}

func TestErrorIsMatchesKindOnly(t *testing.T) {
	err := newError(KindInsufficientFunds, "reserve empty", ledger.ErrInsufficientFunds)
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected kind sentinel to match")
	}
	if errors.Is(err, ErrAlreadyClaimed) {
		t.Fatalf("expected other kinds not to match")
	}
	if !errors.Is(err, ledger.ErrInsufficientFunds) {
		t.Fatalf("expected cause to unwrap")
	}
	if !strings.Contains(err.Error(), "InsufficientFunds: reserve empty") {
		t.Fatalf("unexpected message: %s", err.Error())
	}
}
