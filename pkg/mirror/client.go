package mirror

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashgraph-online/token-faucet-go/pkg/config"
)

// ErrNotFound is returned when the mirror node answers 404.
var ErrNotFound = errors.New("mirror node resource not found")

type Config struct {
	Network    string
	BaseURL    string
	HTTPClient *http.Client
	APIKey     string
	Headers    map[string]string
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	apiKey     string
	headers    map[string]string
}

// NewClient returns a client for the configured network, or BaseURL when set.
func NewClient(clientConfig Config) (*Client, error) {
	network, err := config.NormalizeNetwork(clientConfig.Network)
	if err != nil {
		return nil, err
	}

	baseURL := strings.TrimRight(clientConfig.BaseURL, "/")
	if baseURL == "" {
		if network == config.NetworkMainnet {
			baseURL = "https://mainnet-public.mirrornode.hedera.com"
		} else {
			baseURL = "https://testnet.mirrornode.hedera.com"
		}
	}
	parsedBaseURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid mirror base URL: %w", err)
	}
	if parsedBaseURL.Scheme != "http" && parsedBaseURL.Scheme != "https" {
		return nil, fmt.Errorf("invalid mirror base URL: scheme must be http or https")
	}
	if strings.TrimSpace(parsedBaseURL.Host) == "" {
		return nil, fmt.Errorf("invalid mirror base URL: host is required")
	}
	baseURL = strings.TrimRight(parsedBaseURL.String(), "/")

	httpClient := clientConfig.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	headers := map[string]string{}
	for key, value := range clientConfig.Headers {
		headers[key] = value
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		apiKey:     strings.TrimSpace(clientConfig.APIKey),
		headers:    headers,
	}, nil
}

// BaseURL returns the normalized mirror node URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// GetToken returns the token descriptor for tokenID.
func (c *Client) GetToken(ctx context.Context, tokenID string) (TokenInfo, error) {
	var token TokenInfo
	normalized := strings.TrimSpace(tokenID)
	if normalized == "" {
		return token, fmt.Errorf("token ID is required")
	}

	if err := c.getJSON(ctx, "/api/v1/tokens/"+url.PathEscape(normalized), &token); err != nil {
		return token, err
	}
	return token, nil
}

// GetAccountTokenBalance returns accountID's balance of tokenID. The boolean is
// false when the account is not associated with the token.
func (c *Client) GetAccountTokenBalance(ctx context.Context, accountID string, tokenID string) (uint64, bool, error) {
	normalizedAccountID := strings.TrimSpace(accountID)
	normalizedTokenID := strings.TrimSpace(tokenID)
	if normalizedAccountID == "" {
		return 0, false, fmt.Errorf("account ID is required")
	}
	if normalizedTokenID == "" {
		return 0, false, fmt.Errorf("token ID is required")
	}

	values := url.Values{}
	values.Set("token.id", normalizedTokenID)
	path := fmt.Sprintf("/api/v1/accounts/%s/tokens?%s", url.PathEscape(normalizedAccountID), values.Encode())

	var response accountTokensResponse
	if err := c.getJSON(ctx, path, &response); err != nil {
		return 0, false, err
	}
	for _, token := range response.Tokens {
		if token.TokenID != normalizedTokenID {
			continue
		}
		if token.Balance < 0 {
			return 0, false, fmt.Errorf("mirror node reported negative balance %d", token.Balance)
		}
		return uint64(token.Balance), true, nil
	}
	return 0, false, nil
}

type BalanceQueryOptions struct {
	AccountID string
	Limit     int
	MaxPages  int
}

// GetTokenBalances returns holders of tokenID, following pagination links up
// to options.MaxPages pages.
func (c *Client) GetTokenBalances(ctx context.Context, tokenID string, options BalanceQueryOptions) ([]TokenBalance, error) {
	normalized := strings.TrimSpace(tokenID)
	if normalized == "" {
		return nil, fmt.Errorf("token ID is required")
	}

	values := url.Values{}
	if options.AccountID != "" {
		values.Set("account.id", options.AccountID)
	}
	if options.Limit > 0 {
		values.Set("limit", fmt.Sprintf("%d", options.Limit))
	}
	maxPages := options.MaxPages
	if maxPages <= 0 {
		maxPages = 10
	}

	path := "/api/v1/tokens/" + url.PathEscape(normalized) + "/balances"
	if encoded := values.Encode(); encoded != "" {
		path += "?" + encoded
	}

	balances := make([]TokenBalance, 0)
	for page := 0; page < maxPages && path != ""; page++ {
		var response tokenBalancesResponse
		if err := c.getJSON(ctx, path, &response); err != nil {
			return nil, err
		}
		balances = append(balances, response.Balances...)
		path = response.Links.Next
	}
	return balances, nil
}

// GetTransaction returns the first transaction with transactionID, or nil if
// the mirror node has not seen it yet.
func (c *Client) GetTransaction(ctx context.Context, transactionID string) (*Transaction, error) {
	normalized := strings.TrimSpace(transactionID)
	if normalized == "" {
		return nil, fmt.Errorf("transaction ID is required")
	}

	var response transactionsResponse
	if err := c.getJSON(ctx, "/api/v1/transactions/"+normalized, &response); err != nil {
		return nil, err
	}
	if len(response.Transactions) == 0 {
		return nil, nil
	}
	return &response.Transactions[0], nil
}

func (c *Client) getJSON(ctx context.Context, pathOrURL string, target any) error {
	requestURL := c.resolveURL(pathOrURL)
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	request.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		request.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	}
	for key, value := range c.headers {
		request.Header.Set(key, value)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("mirror node request failed: %w", err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return fmt.Errorf("failed to read mirror node response: %w", err)
	}

	if response.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrNotFound, requestURL)
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return fmt.Errorf(
			"mirror node request failed with status %d: %s",
			response.StatusCode,
			strings.TrimSpace(string(body)),
		)
	}

	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("failed to decode mirror node response: %w", err)
	}

	return nil
}

func (c *Client) resolveURL(pathOrURL string) string {
	if strings.HasPrefix(pathOrURL, "http://") || strings.HasPrefix(pathOrURL, "https://") {
		return pathOrURL
	}

	path := pathOrURL
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return c.baseURL + path
}
