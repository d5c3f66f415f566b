// Package mirror reads Hedera token state from a mirror node.
//
// The faucet's HTS adapter uses it to learn an asset's decimals, supply key and
// treasury before building a mint or transfer, and to read balances for
// receipts:
//
//	client, err := mirror.NewClient(mirror.Config{Network: "testnet"})
//	token, err := client.GetToken(ctx, "0.0.5005")
//	decimals, err := token.DecimalsValue()
//
// All requests are read-only GETs against the mirror node REST API.
package mirror
