package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"
	"github.com/spf13/viper"
)

const (
	NetworkMainnet = "mainnet"
	NetworkTestnet = "testnet"
)

// OperatorConfig identifies the Hedera account that pays for and signs HTS
// transactions on behalf of the faucet treasury.
type OperatorConfig struct {
	AccountID  string
	PrivateKey string
	Network    string
}

var (
	accountIDKeys  = []string{"HEDERA_ACCOUNT_ID", "HEDERA_OPERATOR_ID", "ACCOUNT_ID", "OPERATOR_ID"}
	privateKeyKeys = []string{"HEDERA_PRIVATE_KEY", "HEDERA_OPERATOR_KEY", "PRIVATE_KEY", "OPERATOR_KEY"}
)

// OperatorConfigFromEnv reads operator credentials from the environment, falling
// back to the nearest .env file above the working directory. Network-scoped
// variables such as TESTNET_HEDERA_ACCOUNT_ID win over the generic ones.
func OperatorConfigFromEnv() (OperatorConfig, error) {
	workingDirectory, err := os.Getwd()
	if err != nil {
		return OperatorConfig{}, fmt.Errorf("failed to resolve working directory: %w", err)
	}
	return OperatorConfigFromSources(findDotEnv(workingDirectory))
}

// OperatorConfigFromSources is OperatorConfigFromEnv with an explicit .env path.
// An empty path reads the process environment only.
func OperatorConfigFromSources(dotEnvPath string) (OperatorConfig, error) {
	fallback := viper.New()
	if dotEnvPath != "" {
		fallback.SetConfigFile(dotEnvPath)
		fallback.SetConfigType("env")
		if err := fallback.ReadInConfig(); err != nil {
			return OperatorConfig{}, fmt.Errorf("failed to read %s: %w", dotEnvPath, err)
		}
	}
	lookup := func(keys ...string) string {
		for _, key := range keys {
			if value := strings.TrimSpace(os.Getenv(key)); value != "" {
				return value
			}
		}
		for _, key := range keys {
			if value := strings.TrimSpace(fallback.GetString(key)); value != "" {
				return value
			}
		}
		return ""
	}

	network, err := NormalizeNetwork(lookup("HEDERA_NETWORK", "NETWORK"))
	if err != nil {
		return OperatorConfig{}, err
	}

	scope := strings.ToUpper(network) + "_"
	accountID := lookup(scope+"HEDERA_ACCOUNT_ID", scope+"HEDERA_OPERATOR_ID", scope+"OPERATOR_ID")
	if accountID == "" {
		accountID = lookup(accountIDKeys...)
	}
	privateKey := lookup(scope+"HEDERA_PRIVATE_KEY", scope+"HEDERA_OPERATOR_KEY", scope+"OPERATOR_KEY")
	if privateKey == "" {
		privateKey = lookup(privateKeyKeys...)
	}

	if accountID == "" {
		return OperatorConfig{}, fmt.Errorf("HEDERA_ACCOUNT_ID is required")
	}
	if privateKey == "" {
		return OperatorConfig{}, fmt.Errorf("HEDERA_PRIVATE_KEY is required")
	}

	return OperatorConfig{
		AccountID:  accountID,
		PrivateKey: privateKey,
		Network:    network,
	}, nil
}

// findDotEnv returns the closest .env at or above start, or "".
func findDotEnv(start string) string {
	current := start
	for {
		candidate := filepath.Join(current, ".env")
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
		parent := filepath.Dir(current)
		if parent == current {
			return ""
		}
		current = parent
	}
}

// NormalizeNetwork lowercases network and defaults it to testnet.
func NormalizeNetwork(network string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(network))
	switch normalized {
	case "":
		return NetworkTestnet, nil
	case NetworkMainnet, NetworkTestnet:
		return normalized, nil
	default:
		return "", fmt.Errorf("unsupported network %q", network)
	}
}

// NewHederaClient returns an unauthenticated client for network.
func NewHederaClient(network string) (*hedera.Client, error) {
	normalized, err := NormalizeNetwork(network)
	if err != nil {
		return nil, err
	}
	if normalized == NetworkMainnet {
		return hedera.ClientForMainnet(), nil
	}
	return hedera.ClientForTestnet(), nil
}

// NewOperatorClient returns a client for operator.Network that pays with the
// operator account.
func NewOperatorClient(operator OperatorConfig) (*hedera.Client, hedera.PrivateKey, error) {
	client, err := NewHederaClient(operator.Network)
	if err != nil {
		return nil, hedera.PrivateKey{}, err
	}
	accountID, err := hedera.AccountIDFromString(operator.AccountID)
	if err != nil {
		return nil, hedera.PrivateKey{}, fmt.Errorf("invalid operator account ID: %w", err)
	}
	privateKey, err := ParsePrivateKey(operator.PrivateKey)
	if err != nil {
		return nil, hedera.PrivateKey{}, err
	}
	client.SetOperator(accountID, privateKey)
	return client, privateKey, nil
}

// ParsePrivateKey accepts ED25519, ECDSA or DER-encoded Hedera keys.
func ParsePrivateKey(raw string) (hedera.PrivateKey, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return hedera.PrivateKey{}, fmt.Errorf("private key cannot be empty")
	}

	ed25519Key, edErr := hedera.PrivateKeyFromStringEd25519(candidate)
	if edErr == nil {
		return ed25519Key, nil
	}
	ecdsaKey, ecdsaErr := hedera.PrivateKeyFromStringECDSA(candidate)
	if ecdsaErr == nil {
		return ecdsaKey, nil
	}
	genericKey, genericErr := hedera.PrivateKeyFromString(candidate)
	if genericErr == nil {
		return genericKey, nil
	}

	return hedera.PrivateKey{}, fmt.Errorf(
		"failed to parse private key as ED25519 (%v), ECDSA (%v), or generic (%v)",
		edErr,
		ecdsaErr,
		genericErr,
	)
}
