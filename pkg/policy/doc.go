// Package policy bounds the amount a faucet may issue in a single request.
//
// The ceiling is 10^d * K base units, where d is the asset's divisibility
// exponent and K the configured number of whole tokens. Depending on the
// configured DecimalsSource, d is read from the live asset descriptor or fixed
// in configuration. The bound is inclusive and the computation saturates instead
// of wrapping when 10^d * K does not fit in 64 bits.
package policy
