package policy

import (
	"errors"
	"fmt"
)

var (
	// ErrAmountExceedsPolicy matches every ExceedsError.
	ErrAmountExceedsPolicy = errors.New("amount exceeds policy")

	// ErrZeroAmount reports a zero-value request when the policy forbids it.
	ErrZeroAmount = errors.New("amount must be greater than zero")
)

// ExceedsError carries the rejected amount and the ceiling it was checked against.
type ExceedsError struct {
	Requested uint64
	Ceiling   uint64
	Decimals  uint8
}

func (errorValue *ExceedsError) Error() string {
	return fmt.Sprintf(
		"requested amount %d exceeds ceiling %d (decimals %d)",
		errorValue.Requested,
		errorValue.Ceiling,
		errorValue.Decimals,
	)
}

// Is makes errors.Is(err, ErrAmountExceedsPolicy) hold.
func (errorValue *ExceedsError) Is(target error) bool {
	return target == ErrAmountExceedsPolicy
}
