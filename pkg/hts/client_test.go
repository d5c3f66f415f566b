package hts

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hashgraph-online/token-faucet-go/pkg/faucet"
	"github.com/hashgraph-online/token-faucet-go/pkg/mirror"
	"github.com/hashgraph-online/token-faucet-go/pkg/policy"
	hedera "github.com/hashgraph/hedera-sdk-go/v2"
	"github.com/rs/zerolog"
)

const (
	testTokenID    = "0.0.5005"
	testOperatorID = "0.0.1001"
	testRecipient  = "0.0.2002"
)

type mirrorFixture struct {
	decimals        string
	tokenType       string
	treasury        string
	supplyKey       string
	operatorBalance int64
	associated      bool
}

func newMirrorServer(t *testing.T, fixture mirrorFixture) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/v1/tokens/" + testTokenID:
			supplyKey := "null"
			if fixture.supplyKey != "" {
				supplyKey = fmt.Sprintf(`{"_type":"ED25519","key":%q}`, fixture.supplyKey)
			}
			tokenType := fixture.tokenType
			if tokenType == "" {
				tokenType = "FUNGIBLE_COMMON"
			}
			fmt.Fprintf(w, `{"token_id":%q,"type":%q,"decimals":%q,"total_supply":"0","treasury_account_id":%q,"supply_key":%s,"deleted":false}`,
				testTokenID, tokenType, fixture.decimals, fixture.treasury, supplyKey)
		case "/api/v1/accounts/" + testOperatorID + "/tokens":
			if r.URL.Query().Get("token.id") != testTokenID {
				t.Fatalf("unexpected token filter: %s", r.URL.RawQuery)
			}
			if !fixture.associated {
				w.Write([]byte(`{"tokens":[],"links":{"next":null}}`))
				return
			}
			fmt.Fprintf(w, `{"tokens":[{"token_id":%q,"balance":%d}],"links":{"next":null}}`, testTokenID, fixture.operatorBalance)
		default:
			http.NotFound(w, r)
		}
	}))
}

func newTestClient(t *testing.T, server *httptest.Server, supplyKey *hedera.PrivateKey, logger *zerolog.Logger) (*Client, hedera.PrivateKey) {
	t.Helper()
	operatorKey, err := hedera.PrivateKeyGenerateEd25519()
	if err != nil {
		t.Fatalf("unexpected key error: %v", err)
	}
	operatorID, err := hedera.AccountIDFromString(testOperatorID)
	if err != nil {
		t.Fatalf("unexpected account error: %v", err)
	}
	mirrorClient, err := mirror.NewClient(mirror.Config{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("unexpected mirror error: %v", err)
	}
	client, err := newClient(nil, mirrorClient, operatorID, operatorKey, supplyKey, ClientConfig{Logger: logger})
	if err != nil {
		t.Fatalf("unexpected client error: %v", err)
	}
	return client, operatorKey
}

func uint64Pointer(value uint64) *uint64 {
	return &value
}

func TestPlanClaimWithinPolicy(t *testing.T) {
	server := newMirrorServer(t, mirrorFixture{decimals: "6", treasury: testOperatorID, operatorBalance: 50_000_000, associated: true})
	defer server.Close()
	client, _ := newTestClient(t, server, nil, nil)

	plan, err := client.PlanClaim(context.Background(), IssueOptions{
		TokenID: testTokenID,
		To:      testRecipient,
		Amount:  uint64Pointer(10_000_000),
	})
	if err != nil {
		t.Fatalf("unexpected plan error: %v", err)
	}
	if plan.Amount != 10_000_000 || plan.Decimals != 6 || plan.To != testRecipient {
		t.Fatalf("unexpected plan: %+v", plan)
	}
}

func TestPlanClaimRejectsAmountAboveCeiling(t *testing.T) {
	server := newMirrorServer(t, mirrorFixture{decimals: "6", treasury: testOperatorID, operatorBalance: 5_000_000_000, associated: true})
	defer server.Close()
	client, _ := newTestClient(t, server, nil, nil)

	_, err := client.PlanClaim(context.Background(), IssueOptions{
		TokenID: testTokenID,
		To:      testRecipient,
		Amount:  uint64Pointer(1_000_000_001),
	})
	if !errors.Is(err, faucet.ErrAmountExceedsPolicy) {
		t.Fatalf("expected AmountExceedsPolicy, got %v", err)
	}
	if !errors.Is(err, policy.ErrAmountExceedsPolicy) {
		t.Fatalf("expected wrapped policy error, got %v", err)
	}
}

func TestPlanClaimInsufficientFunds(t *testing.T) {
	server := newMirrorServer(t, mirrorFixture{decimals: "6", treasury: testOperatorID, operatorBalance: 9_999_999, associated: true})
	defer server.Close()
	client, _ := newTestClient(t, server, nil, nil)

	_, err := client.PlanClaim(context.Background(), IssueOptions{
		TokenID: testTokenID,
		To:      testRecipient,
		Amount:  uint64Pointer(10_000_000),
	})
	if !errors.Is(err, faucet.ErrInsufficientFunds) {
		t.Fatalf("expected InsufficientFunds, got %v", err)
	}
}

func TestPlanClaimUnassociatedOperator(t *testing.T) {
	server := newMirrorServer(t, mirrorFixture{decimals: "6", treasury: testOperatorID})
	defer server.Close()
	client, _ := newTestClient(t, server, nil, nil)

	_, err := client.PlanClaim(context.Background(), IssueOptions{TokenID: testTokenID, To: testRecipient, Amount: uint64Pointer(1)})
	if !errors.Is(err, faucet.ErrInsufficientFunds) {
		t.Fatalf("expected InsufficientFunds, got %v", err)
	}
}

func TestPlanClaimDefaultsToFixedAmount(t *testing.T) {
	server := newMirrorServer(t, mirrorFixture{decimals: "9", treasury: testOperatorID, operatorBalance: 1_000_000_000, associated: true})
	defer server.Close()
	client, _ := newTestClient(t, server, nil, nil)

	plan, err := client.PlanClaim(context.Background(), IssueOptions{TokenID: testTokenID, To: testRecipient})
	if err != nil {
		t.Fatalf("unexpected plan error: %v", err)
	}
	if plan.Amount != faucet.DefaultFixedAirdropAmount {
		t.Fatalf("expected fixed amount, got %d", plan.Amount)
	}
}

func TestPlanAirdropRequiresSupplyKey(t *testing.T) {
	server := newMirrorServer(t, mirrorFixture{decimals: "6", treasury: testOperatorID})
	defer server.Close()
	client, _ := newTestClient(t, server, nil, nil)

	_, err := client.PlanAirdrop(context.Background(), IssueOptions{TokenID: testTokenID, To: testRecipient, Amount: uint64Pointer(1)})
	if !errors.Is(err, faucet.ErrInsufficientAuthority) {
		t.Fatalf("expected InsufficientAuthority, got %v", err)
	}
}

func TestPlanAirdropForeignSupplyKey(t *testing.T) {
	foreignKey, err := hedera.PrivateKeyGenerateEd25519()
	if err != nil {
		t.Fatalf("unexpected key error: %v", err)
	}
	server := newMirrorServer(t, mirrorFixture{
		decimals:  "6",
		treasury:  testOperatorID,
		supplyKey: foreignKey.PublicKey().StringRaw(),
	})
	defer server.Close()
	client, _ := newTestClient(t, server, nil, nil)

	_, err = client.PlanAirdrop(context.Background(), IssueOptions{TokenID: testTokenID, To: testRecipient, Amount: uint64Pointer(1)})
	if !errors.Is(err, faucet.ErrInsufficientAuthority) {
		t.Fatalf("expected InsufficientAuthority, got %v", err)
	}
}

func TestPlanAirdropWithSupplyKey(t *testing.T) {
	supplyKey, err := hedera.PrivateKeyGenerateEd25519()
	if err != nil {
		t.Fatalf("unexpected key error: %v", err)
	}
	server := newMirrorServer(t, mirrorFixture{
		decimals:  "6",
		treasury:  testOperatorID,
		supplyKey: strings.ToUpper(supplyKey.PublicKey().StringRaw()),
	})
	defer server.Close()
	client, _ := newTestClient(t, server, &supplyKey, nil)

	plan, err := client.PlanAirdrop(context.Background(), IssueOptions{TokenID: testTokenID, To: testRecipient, Amount: uint64Pointer(1_000_000_000)})
	if err != nil {
		t.Fatalf("unexpected plan error: %v", err)
	}
	if plan.Operation != faucet.OperationAirdrop || plan.Treasury != testOperatorID {
		t.Fatalf("unexpected plan: %+v", plan)
	}
}

func TestPlanAirdropForeignTreasury(t *testing.T) {
	supplyKey, err := hedera.PrivateKeyGenerateEd25519()
	if err != nil {
		t.Fatalf("unexpected key error: %v", err)
	}
	server := newMirrorServer(t, mirrorFixture{
		decimals:  "6",
		treasury:  "0.0.3003",
		supplyKey: supplyKey.PublicKey().StringRaw(),
	})
	defer server.Close()
	client, _ := newTestClient(t, server, &supplyKey, nil)

	_, err = client.PlanAirdrop(context.Background(), IssueOptions{TokenID: testTokenID, To: testRecipient, Amount: uint64Pointer(1)})
	if !errors.Is(err, faucet.ErrInsufficientAuthority) {
		t.Fatalf("expected InsufficientAuthority, got %v", err)
	}
}

func TestPlanRejectsInvalidRequests(t *testing.T) {
	server := newMirrorServer(t, mirrorFixture{decimals: "6", tokenType: "NON_FUNGIBLE_UNIQUE", treasury: testOperatorID})
	defer server.Close()
	client, _ := newTestClient(t, server, nil, nil)

	cases := []IssueOptions{
		{TokenID: "", To: testRecipient},
		{TokenID: testTokenID, To: "bogus"},
		{TokenID: "0.0.9999", To: testRecipient},
		{TokenID: testTokenID, To: testRecipient},
	}
	for _, options := range cases {
		_, err := client.PlanClaim(context.Background(), options)
		if !errors.Is(err, faucet.ErrInvalidRequest) {
			t.Fatalf("expected InvalidRequest for %+v, got %v", options, err)
		}
	}
}

func TestClaimRejectionIsLogged(t *testing.T) {
	server := newMirrorServer(t, mirrorFixture{decimals: "6", treasury: testOperatorID, associated: true})
	defer server.Close()

	var buffer bytes.Buffer
	logger := zerolog.New(&buffer)
	client, _ := newTestClient(t, server, nil, &logger)

	_, err := client.Claim(context.Background(), IssueOptions{TokenID: testTokenID, To: testRecipient, Amount: uint64Pointer(5)})
	if faucet.KindOf(err) != faucet.KindInsufficientFunds {
		t.Fatalf("expected InsufficientFunds, got %v", err)
	}
	if !strings.Contains(buffer.String(), `"kind":"InsufficientFunds"`) {
		t.Fatalf("expected rejection log, got %s", buffer.String())
	}
}

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient(ClientConfig{Network: "badnet"}); err == nil {
		t.Fatal("expected unsupported network error")
	}
	if _, err := NewClient(ClientConfig{Network: "testnet", OperatorPrivateKey: "x"}); err == nil {
		t.Fatal("expected missing operator account error")
	}
	if _, err := NewClient(ClientConfig{Network: "testnet", OperatorAccountID: testOperatorID}); err == nil {
		t.Fatal("expected missing operator key error")
	}
}
