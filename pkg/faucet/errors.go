package faucet

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashgraph-online/token-faucet-go/pkg/claims"
	"github.com/hashgraph-online/token-faucet-go/pkg/ledger"
	"github.com/hashgraph-online/token-faucet-go/pkg/policy"
)

// Kind classifies why an operation was rejected.
type Kind string

const (
	KindAmountExceedsPolicy   Kind = "AmountExceedsPolicy"
	KindInsufficientAuthority Kind = "InsufficientAuthority"
	KindInsufficientFunds     Kind = "InsufficientFunds"
	KindAlreadyClaimed        Kind = "AlreadyClaimed"
	KindInvalidRequest        Kind = "InvalidRequest"
	KindInternal              Kind = "Internal"
)

// Error is returned by every faucet operation. Err keeps the host cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Sentinels for errors.Is. They match any *Error of the same Kind.
var (
	ErrAmountExceedsPolicy   = &Error{Kind: KindAmountExceedsPolicy}
	ErrInsufficientAuthority = &Error{Kind: KindInsufficientAuthority}
	ErrInsufficientFunds     = &Error{Kind: KindInsufficientFunds}
	ErrAlreadyClaimed        = &Error{Kind: KindAlreadyClaimed}
	ErrInvalidRequest        = &Error{Kind: KindInvalidRequest}
	ErrInternal              = &Error{Kind: KindInternal}
)

func newError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

func (errorValue *Error) Error() string {
	message := string(errorValue.Kind)
	if errorValue.Message != "" {
		message = fmt.Sprintf("%s: %s", message, errorValue.Message)
	}
	if errorValue.Err != nil {
		message = fmt.Sprintf("%s: %v", message, errorValue.Err)
	}
	return message
}

func (errorValue *Error) Unwrap() error {
	return errorValue.Err
}

func (errorValue *Error) Is(target error) bool {
	targetError, ok := target.(*Error)
	if !ok {
		return false
	}
	return targetError.Kind == errorValue.Kind && targetError.Message == "" && targetError.Err == nil
}

// KindOf returns the Kind of err, or an empty Kind when err is not a faucet error.
func KindOf(err error) Kind {
	var faucetError *Error
	if errors.As(err, &faucetError) {
		return faucetError.Kind
	}
	return ""
}

// classify maps host and policy errors onto the faucet taxonomy.
func classify(err error) *Error {
	var faucetError *Error
	if errors.As(err, &faucetError) {
		return faucetError
	}

	switch {
	case errors.Is(err, claims.ErrAlreadyClaimed):
		return newError(KindAlreadyClaimed, "requester already claimed this asset", err)
	case errors.Is(err, policy.ErrAmountExceedsPolicy):
		return newError(KindAmountExceedsPolicy, "", err)
	case errors.Is(err, ledger.ErrAuthorityMismatch):
		return newError(KindInsufficientAuthority, "faucet authority cannot sign for this account", err)
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return newError(KindInsufficientFunds, "reserve cannot cover the amount", err)
	case errors.Is(err, policy.ErrZeroAmount),
		errors.Is(err, ledger.ErrAccountNotFound),
		errors.Is(err, ledger.ErrWrongAccountKind),
		errors.Is(err, ledger.ErrMintMismatch),
		errors.Is(err, ledger.ErrOverflow):
		return newError(KindInvalidRequest, "", err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return newError(KindInternal, "operation canceled", err)
	default:
		return newError(KindInternal, "", err)
	}
}
