// Package config loads faucet settings and Hedera operator credentials.
//
// Settings come from an optional yaml file overlaid with FAUCET_* environment
// variables:
//
//	settings, err := config.Load("faucet.yaml")
//	tokenFaucet, err := faucet.New(program, settings.Faucet)
//
// Operator credentials follow the usual Hedera variable names and are read from
// the environment or the nearest .env file.
package config
