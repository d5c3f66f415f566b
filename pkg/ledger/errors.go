package ledger

import "errors"

var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrAccountExists      = errors.New("account already exists")
	ErrAccountNotDeclared = errors.New("account not declared in unit of work")
	ErrAccountReadOnly    = errors.New("account declared read-only")
	ErrWrongAccountKind   = errors.New("account has a different kind")
	ErrAuthorityMismatch  = errors.New("signer does not match the account authority")
	ErrMintMismatch       = errors.New("holding belongs to a different mint")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrOverflow           = errors.New("amount overflow")
	ErrProgramExists      = errors.New("program already deployed")
	ErrInvalidAccount     = errors.New("invalid account")
)
