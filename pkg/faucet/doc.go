// Package faucet issues bounded amounts of a token on behalf of a derived
// authority.
//
// The faucet holds no private key. Its authority is a program-derived identity
// and every issuance presents that identity's seeds and bump to the host
// ledger, which re-derives the address under the executing program.
//
// # Operations
//
// Airdrop mints new supply to a destination holding. Claim transfers from the
// authority's reserve holding and, unless disabled, writes a one-time claim
// marker for the (requester, asset) pair in the same unit of work:
//
//	memoryLedger := memledger.New()
//	program, _ := memoryLedger.Deploy(programID)
//	tokenFaucet, _ := faucet.New(program, faucet.DefaultConfig())
//	amount := uint64(10_000_000)
//	receipt, err := tokenFaucet.Claim(ctx, faucet.ClaimRequest{
//		Asset:     mint,
//		Requester: user,
//		Amount:    &amount,
//	})
//
// # Errors
//
// Every failure is an *Error whose Kind is one of AmountExceedsPolicy,
// InsufficientAuthority, InsufficientFunds, AlreadyClaimed, InvalidRequest or
// Internal. Use errors.Is with the Err* sentinels or KindOf. A failed operation
// leaves no partial state behind.
package faucet
