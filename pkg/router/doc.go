// Package router decodes faucet instructions and dispatches them to the
// matching faucet operation.
//
// Instructions are JSON objects:
//
//	{"op":"claim","asset":"<base58>","requester":"<base58>","amt":"10000000"}
//
// "to" overrides the destination holding, an empty "amt" selects the fixed
// airdrop amount, and "sig" carries an optional requester signature checked by
// a Verifier.
//
// # Signatures
//
// Without a Verifier the router trusts its caller to have authenticated the
// requester. SchnorrVerifier treats the requester address as a BIP-340 x-only
// public key and checks "sig" over SigningHash:
//
//	instruction.Expires = strconv.FormatInt(time.Now().Add(5*time.Minute).Unix(), 10)
//	signed, err := router.SignInstruction(privateKey, instruction)
//	receipt, err := instructionRouter.Dispatch(ctx, signed)
//
// "exp" is part of the signed payload. Signed airdrops must set it, and the
// verifier rejects expired instructions or ones that expire further ahead than
// its MaxLifetime. Nothing records a used airdrop signature, so a signed airdrop
// can be replayed until it expires.
package router
