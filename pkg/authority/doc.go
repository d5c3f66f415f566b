// Package authority derives key-less signing identities for faucet programs.
//
// An identity is a program-derived address: the SHA-256 digest of a set of seeds,
// a one-byte bump, the program ID and a fixed domain marker, chosen so that the
// digest does not decode to an ed25519 curve point. Because no point exists, no
// private key can sign for the address; only the owning program can present the
// seeds and bump to the host, which re-derives the address with the program's own
// ID before accepting the signature.
//
// # Deriving the faucet authority
//
//	deriver := authority.NewDeriver(programID)
//	identity, err := deriver.Derive(authority.DefaultLabel)
//	if err != nil {
//		return err
//	}
//	signer := identity.Signer()
//
// Any party that knows the program ID and the label can recompute identity.Address
// with FindProgramAddress; the bump in the identity is the proof that it was
// derived canonically.
package authority
