package hts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hashgraph-online/token-faucet-go/pkg/config"
	"github.com/hashgraph-online/token-faucet-go/pkg/faucet"
	"github.com/hashgraph-online/token-faucet-go/pkg/mirror"
	"github.com/hashgraph-online/token-faucet-go/pkg/policy"
	hedera "github.com/hashgraph/hedera-sdk-go/v2"
	"github.com/rs/zerolog"
)

type ClientConfig struct {
	Network            string
	OperatorAccountID  string
	OperatorPrivateKey string

	// SupplyPrivateKey signs mints when the token's supply key is not the
	// operator key.
	SupplyPrivateKey string

	MirrorBaseURL string
	MirrorAPIKey  string

	Faucet faucet.Config
	Logger *zerolog.Logger
}

// IssueOptions selects the token, the recipient account and an optional amount
// in base units. A nil Amount issues the configured fixed amount.
type IssueOptions struct {
	TokenID string
	To      string
	Amount  *uint64
	Memo    string
}

type Result struct {
	Operation             string `json:"operation"`
	TokenID               string `json:"tokenId"`
	To                    string `json:"to"`
	Amount                uint64 `json:"amount"`
	MintTransactionID     string `json:"mintTransactionId,omitempty"`
	TransferTransactionID string `json:"transferTransactionId"`
}

// Plan is the preflight outcome of an issuance: the resolved amount and the
// accounts and keys involved.
type Plan struct {
	Operation string
	TokenID   string
	To        string
	Amount    uint64
	Decimals  uint8
	Treasury  string
}

type Client struct {
	hederaClient *hedera.Client
	mirrorClient *mirror.Client
	operatorID   hedera.AccountID
	operatorKey  hedera.PrivateKey
	supplyKey    *hedera.PrivateKey
	faucetConfig faucet.Config
	logger       zerolog.Logger
}

// NewClient creates a client that pays and signs with the operator account.
func NewClient(clientConfig ClientConfig) (*Client, error) {
	network, err := config.NormalizeNetwork(clientConfig.Network)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(clientConfig.OperatorAccountID) == "" {
		return nil, fmt.Errorf("operator account ID is required")
	}
	if strings.TrimSpace(clientConfig.OperatorPrivateKey) == "" {
		return nil, fmt.Errorf("operator private key is required")
	}

	hederaClient, operatorKey, err := config.NewOperatorClient(config.OperatorConfig{
		AccountID:  strings.TrimSpace(clientConfig.OperatorAccountID),
		PrivateKey: clientConfig.OperatorPrivateKey,
		Network:    network,
	})
	if err != nil {
		return nil, err
	}
	operatorID, err := parseAccountID("operator", clientConfig.OperatorAccountID)
	if err != nil {
		return nil, err
	}

	var supplyKey *hedera.PrivateKey
	if strings.TrimSpace(clientConfig.SupplyPrivateKey) != "" {
		parsed, err := config.ParsePrivateKey(clientConfig.SupplyPrivateKey)
		if err != nil {
			return nil, fmt.Errorf("invalid supply key: %w", err)
		}
		supplyKey = &parsed
	}

	mirrorClient, err := mirror.NewClient(mirror.Config{
		Network: network,
		BaseURL: clientConfig.MirrorBaseURL,
		APIKey:  clientConfig.MirrorAPIKey,
	})
	if err != nil {
		return nil, err
	}

	return newClient(hederaClient, mirrorClient, operatorID, operatorKey, supplyKey, clientConfig)
}

func newClient(
	hederaClient *hedera.Client,
	mirrorClient *mirror.Client,
	operatorID hedera.AccountID,
	operatorKey hedera.PrivateKey,
	supplyKey *hedera.PrivateKey,
	clientConfig ClientConfig,
) (*Client, error) {
	faucetConfig := clientConfig.Faucet
	if faucetConfig == (faucet.Config{}) {
		faucetConfig = faucet.DefaultConfig()
	}
	if err := faucetConfig.Validate(); err != nil {
		return nil, err
	}

	logger := zerolog.Nop()
	if clientConfig.Logger != nil {
		logger = *clientConfig.Logger
	}

	return &Client{
		hederaClient: hederaClient,
		mirrorClient: mirrorClient,
		operatorID:   operatorID,
		operatorKey:  operatorKey,
		supplyKey:    supplyKey,
		faucetConfig: faucetConfig,
		logger:       logger,
	}, nil
}

// MirrorClient returns the configured mirror client.
func (client *Client) MirrorClient() *mirror.Client {
	return client.mirrorClient
}

// PlanAirdrop checks an airdrop against the amount policy and the token's supply key.
func (client *Client) PlanAirdrop(ctx context.Context, options IssueOptions) (Plan, error) {
	plan, token, err := client.plan(ctx, faucet.OperationAirdrop, options)
	if err != nil {
		return Plan{}, err
	}

	if token.SupplyKey == nil || strings.TrimSpace(token.SupplyKey.Key) == "" {
		return Plan{}, issueError(faucet.KindInsufficientAuthority, fmt.Sprintf("token %s has no supply key", plan.TokenID), nil)
	}
	if !strings.EqualFold(token.SupplyKey.Key, client.mintingKey().PublicKey().StringRaw()) {
		return Plan{}, issueError(faucet.KindInsufficientAuthority, fmt.Sprintf("token %s supply key is not held by this faucet", plan.TokenID), nil)
	}
	if plan.Treasury != client.operatorID.String() {
		return Plan{}, issueError(faucet.KindInsufficientAuthority, fmt.Sprintf("token %s treasury %s is not the operator", plan.TokenID, plan.Treasury), nil)
	}
	return plan, nil
}

// PlanClaim checks a claim against the amount policy and the operator balance.
func (client *Client) PlanClaim(ctx context.Context, options IssueOptions) (Plan, error) {
	plan, _, err := client.plan(ctx, faucet.OperationClaim, options)
	if err != nil {
		return Plan{}, err
	}

	balance, associated, err := client.mirrorClient.GetAccountTokenBalance(ctx, client.operatorID.String(), plan.TokenID)
	if err != nil {
		return Plan{}, issueError(faucet.KindInternal, "failed to read operator balance", err)
	}
	if !associated || balance < plan.Amount {
		return Plan{}, issueError(
			faucet.KindInsufficientFunds,
			fmt.Sprintf("operator holds %d of %s, needs %d", balance, plan.TokenID, plan.Amount),
			nil,
		)
	}
	return plan, nil
}

// Airdrop mints the amount into the treasury and transfers it to the recipient.
// The two steps are separate Hedera transactions; if the transfer fails the
// minted amount stays in the treasury.
func (client *Client) Airdrop(ctx context.Context, options IssueOptions) (Result, error) {
	plan, err := client.PlanAirdrop(ctx, options)
	if err != nil {
		return Result{}, client.reject(faucet.OperationAirdrop, options, err)
	}

	mintTx, err := BuildMintTx(MintTxParams{TokenID: plan.TokenID, Amount: plan.Amount, TransactionMemo: options.Memo})
	if err != nil {
		return Result{}, client.reject(plan.Operation, options, err)
	}
	if client.supplyKey != nil {
		frozen, err := mintTx.FreezeWith(client.hederaClient)
		if err != nil {
			return Result{}, client.reject(plan.Operation, options, fmt.Errorf("failed to freeze mint transaction: %w", err))
		}
		mintTx = frozen.Sign(*client.supplyKey)
	}
	mintResponse, err := mintTx.Execute(client.hederaClient)
	if err != nil {
		return Result{}, client.reject(plan.Operation, options, fmt.Errorf("failed to execute mint transaction: %w", err))
	}
	if _, err := mintResponse.GetReceipt(client.hederaClient); err != nil {
		return Result{}, client.reject(plan.Operation, options, fmt.Errorf("failed to get mint receipt: %w", err))
	}

	transferID, err := client.transfer(plan, options.Memo)
	if err != nil {
		return Result{}, client.reject(plan.Operation, options, err)
	}

	return client.accept(Result{
		Operation:             plan.Operation,
		TokenID:               plan.TokenID,
		To:                    plan.To,
		Amount:                plan.Amount,
		MintTransactionID:     mintResponse.TransactionID.String(),
		TransferTransactionID: transferID,
	}), nil
}

// Claim transfers the amount from the operator account to the recipient.
func (client *Client) Claim(ctx context.Context, options IssueOptions) (Result, error) {
	plan, err := client.PlanClaim(ctx, options)
	if err != nil {
		return Result{}, client.reject(faucet.OperationClaim, options, err)
	}

	transferID, err := client.transfer(plan, options.Memo)
	if err != nil {
		return Result{}, client.reject(plan.Operation, options, err)
	}
	return client.accept(Result{
		Operation:             plan.Operation,
		TokenID:               plan.TokenID,
		To:                    plan.To,
		Amount:                plan.Amount,
		TransferTransactionID: transferID,
	}), nil
}

func (client *Client) plan(ctx context.Context, operation string, options IssueOptions) (Plan, mirror.TokenInfo, error) {
	tokenID, err := parseTokenID(options.TokenID)
	if err != nil {
		return Plan{}, mirror.TokenInfo{}, issueError(faucet.KindInvalidRequest, "", err)
	}
	to, err := parseAccountID("to", options.To)
	if err != nil {
		return Plan{}, mirror.TokenInfo{}, issueError(faucet.KindInvalidRequest, "", err)
	}

	token, err := client.mirrorClient.GetToken(ctx, tokenID.String())
	if err != nil {
		return Plan{}, mirror.TokenInfo{}, issueError(faucet.KindInvalidRequest, "failed to load token", err)
	}
	if !token.IsFungible() || token.Deleted {
		return Plan{}, mirror.TokenInfo{}, issueError(faucet.KindInvalidRequest, fmt.Sprintf("token %s is not an active fungible token", tokenID), nil)
	}
	decimals, err := token.DecimalsValue()
	if err != nil {
		return Plan{}, mirror.TokenInfo{}, issueError(faucet.KindInternal, "", err)
	}

	amount := client.faucetConfig.FixedAirdropAmount
	if options.Amount != nil {
		amount = *options.Amount
	}
	if err := client.faucetConfig.Policy.Check(amount, decimals); err != nil {
		kind := faucet.KindAmountExceedsPolicy
		if errors.Is(err, policy.ErrZeroAmount) {
			kind = faucet.KindInvalidRequest
		}
		return Plan{}, mirror.TokenInfo{}, issueError(kind, "", err)
	}

	return Plan{
		Operation: operation,
		TokenID:   tokenID.String(),
		To:        to.String(),
		Amount:    amount,
		Decimals:  decimals,
		Treasury:  token.TreasuryAccountID,
	}, token, nil
}

func (client *Client) transfer(plan Plan, memo string) (string, error) {
	transferTx, err := BuildTransferTx(TransferTxParams{
		TokenID:         plan.TokenID,
		From:            client.operatorID.String(),
		To:              plan.To,
		Amount:          plan.Amount,
		TransactionMemo: memo,
	})
	if err != nil {
		return "", err
	}
	response, err := transferTx.Execute(client.hederaClient)
	if err != nil {
		return "", fmt.Errorf("failed to execute transfer transaction: %w", err)
	}
	if _, err := response.GetReceipt(client.hederaClient); err != nil {
		return "", fmt.Errorf("failed to get transfer receipt: %w", err)
	}
	return response.TransactionID.String(), nil
}

func (client *Client) mintingKey() hedera.PrivateKey {
	if client.supplyKey != nil {
		return *client.supplyKey
	}
	return client.operatorKey
}

func (client *Client) accept(result Result) Result {
	client.logger.Info().
		Str("op", result.Operation).
		Str("asset", result.TokenID).
		Str("destination", result.To).
		Uint64("amount", result.Amount).
		Str("transaction", result.TransferTransactionID).
		Msg("tokens issued")
	return result
}

func (client *Client) reject(operation string, options IssueOptions, err error) error {
	classified := asFaucetError(err)
	client.logger.Warn().
		Str("op", operation).
		Str("asset", options.TokenID).
		Str("destination", options.To).
		Str("kind", string(classified.Kind)).
		Err(err).
		Msg("request rejected")
	return classified
}

func issueError(kind faucet.Kind, message string, cause error) *faucet.Error {
	return &faucet.Error{Kind: kind, Message: message, Err: cause}
}

func asFaucetError(err error) *faucet.Error {
	var faucetError *faucet.Error
	if errors.As(err, &faucetError) {
		return faucetError
	}
	return issueError(faucet.KindInternal, "", err)
}
