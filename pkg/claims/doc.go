// Package claims records which requesters have already claimed an asset.
//
// Each (requester, asset) pair maps to one deterministic marker address owned
// by the faucet program. The marker is created with create-if-absent inside the
// same unit of work that moves the tokens, so a claim either leaves both the
// marker and the transfer behind or neither.
//
// # Lookup
//
//	claimLedger := claims.New(authority.NewDeriver(programID))
//	identity, err := claimLedger.Address(requester, asset)
//
// # Audit
//
// Export and Import stream markers as brotli-compressed JSON lines.
package claims
