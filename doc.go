// Token Faucet for Go dispenses bounded amounts of a fungible token from an
// authority that holds no private key. The authority is a program-derived
// address computed from a fixed label, and it signs mints and reserve
// transfers by proof of derivation. Claims can be limited to one per
// requester and asset through a marker written in the same unit of work as
// the transfer.
//
// # Packages
//
//   - authority: program-derived addresses, bump search and signer seeds
//   - policy: the amount ceiling 10^decimals * max whole tokens
//   - ledger, ledger/memledger, ledger/pgledger: account model and the
//     in-memory and Postgres units of work
//   - claims: claim marker addresses, creation, lookup and audit export
//   - faucet: Airdrop and Claim, with the faucet error taxonomy
//   - router: JSON instruction parsing, validation and dispatch
//   - config: viper settings, zerolog logger and Hedera operator credentials
//   - mirror, hts: the same policy applied to Hedera Token Service tokens
//
// # Installation
//
//	go get github.com/hashgraph-online/token-faucet-go@latest
package token_faucet_go
