package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hashgraph-online/token-faucet-go/pkg/authority"
	"github.com/hashgraph-online/token-faucet-go/pkg/faucet"
	"github.com/hashgraph-online/token-faucet-go/pkg/policy"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const (
	EnvPrefix = "FAUCET"

	BackendMemory   = "memory"
	BackendPostgres = "postgres"

	KeyAuthorityLabel     = "authority_label"
	KeyMaxWholeTokens     = "max_whole_tokens"
	KeyDecimalsSource     = "decimals_source"
	KeyFixedDecimals      = "fixed_decimals"
	KeyFixedAirdropAmount = "fixed_airdrop_amount"
	KeyOneTimeClaim       = "one_time_claim"
	KeyAllowZeroAmount    = "allow_zero_amount"
	KeyBackend            = "backend"
	KeyDatabaseURL        = "database_url"
	KeyNetwork            = "network"
	KeyMirrorBaseURL      = "mirror_base_url"
	KeyLogLevel           = "log_level"
	KeyProgramID          = "program_id"
)

// Settings is everything a faucet process needs at startup.
type Settings struct {
	Faucet        faucet.Config
	Backend       string
	DatabaseURL   string
	Network       string
	MirrorBaseURL string
	LogLevel      string

	// ProgramID is the faucet program on a persistent backend. Zero when unset.
	ProgramID authority.Address
}

// SetDefaults registers the shipped defaults on v.
func SetDefaults(v *viper.Viper) {
	defaults := faucet.DefaultConfig()
	v.SetDefault(KeyAuthorityLabel, defaults.AuthorityLabel)
	v.SetDefault(KeyMaxWholeTokens, defaults.Policy.MaxWholeTokens)
	v.SetDefault(KeyDecimalsSource, string(defaults.Policy.DecimalsSource))
	v.SetDefault(KeyFixedDecimals, defaults.Policy.FixedDecimals)
	v.SetDefault(KeyFixedAirdropAmount, defaults.FixedAirdropAmount)
	v.SetDefault(KeyOneTimeClaim, defaults.OneTimeClaim)
	v.SetDefault(KeyAllowZeroAmount, defaults.Policy.AllowZero)
	v.SetDefault(KeyBackend, BackendMemory)
	v.SetDefault(KeyDatabaseURL, "")
	v.SetDefault(KeyNetwork, NetworkTestnet)
	v.SetDefault(KeyMirrorBaseURL, "")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyProgramID, "")
}

// New returns a viper instance wired for FAUCET_* overrides and defaults.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

// Load reads path when it is non-empty and returns the resulting settings.
func Load(path string) (Settings, error) {
	v := New()
	if strings.TrimSpace(path) != "" {
		v.SetConfigFile(path)
		if strings.HasSuffix(path, ".yml") || strings.HasSuffix(path, ".yaml") {
			v.SetConfigType("yaml")
		}
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}
	return FromViper(v)
}

// FromViper decodes and validates settings held by v.
func FromViper(v *viper.Viper) (Settings, error) {
	decimalsSource, err := policy.ParseDecimalsSource(v.GetString(KeyDecimalsSource))
	if err != nil {
		return Settings{}, err
	}
	fixedDecimals := v.GetUint(KeyFixedDecimals)
	if fixedDecimals > 255 {
		return Settings{}, fmt.Errorf("%s must be at most 255, got %d", KeyFixedDecimals, fixedDecimals)
	}

	faucetConfig := faucet.Config{
		AuthorityLabel: v.GetString(KeyAuthorityLabel),
		Policy: policy.Policy{
			MaxWholeTokens: v.GetUint64(KeyMaxWholeTokens),
			DecimalsSource: decimalsSource,
			FixedDecimals:  uint8(fixedDecimals),
			AllowZero:      v.GetBool(KeyAllowZeroAmount),
		},
		FixedAirdropAmount: v.GetUint64(KeyFixedAirdropAmount),
		OneTimeClaim:       v.GetBool(KeyOneTimeClaim),
	}
	if err := faucetConfig.Validate(); err != nil {
		return Settings{}, err
	}

	network, err := NormalizeNetwork(v.GetString(KeyNetwork))
	if err != nil {
		return Settings{}, err
	}

	settings := Settings{
		Faucet:        faucetConfig,
		Backend:       strings.ToLower(strings.TrimSpace(v.GetString(KeyBackend))),
		DatabaseURL:   strings.TrimSpace(v.GetString(KeyDatabaseURL)),
		Network:       network,
		MirrorBaseURL: strings.TrimSpace(v.GetString(KeyMirrorBaseURL)),
		LogLevel:      strings.TrimSpace(v.GetString(KeyLogLevel)),
	}
	if programID := strings.TrimSpace(v.GetString(KeyProgramID)); programID != "" {
		settings.ProgramID, err = authority.ParseAddress(programID)
		if err != nil {
			return Settings{}, fmt.Errorf("invalid %s: %w", KeyProgramID, err)
		}
	}

	switch settings.Backend {
	case BackendMemory:
	case BackendPostgres:
		if settings.DatabaseURL == "" {
			return Settings{}, fmt.Errorf("%s is required for the postgres backend", KeyDatabaseURL)
		}
		if settings.ProgramID.IsZero() {
			return Settings{}, fmt.Errorf("%s is required for the postgres backend", KeyProgramID)
		}
	default:
		return Settings{}, fmt.Errorf("unsupported backend %q", settings.Backend)
	}
	return settings, nil
}

// NewLogger returns a zerolog logger at level writing to writer, or stderr when
// writer is nil.
func NewLogger(level string, writer io.Writer) (zerolog.Logger, error) {
	if writer == nil {
		writer = os.Stderr
	}
	parsed := zerolog.InfoLevel
	if strings.TrimSpace(level) != "" {
		var err error
		parsed, err = zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", level, err)
		}
	}
	return zerolog.New(writer).Level(parsed).With().Timestamp().Logger(), nil
}
