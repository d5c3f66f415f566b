// Package ledger defines the host substrate a faucet program runs on: account
// states, the unit-of-work contract and the errors every implementation returns.
//
// A unit of work declares up front which accounts it reads and writes. The
// substrate locks each declared address (shared for read-only, exclusive for
// writable) and runs the program's function against a transaction view. If the
// function returns an error, nothing it did is kept.
//
// Implementations live in memledger (in-process) and pgledger (PostgreSQL).
package ledger
