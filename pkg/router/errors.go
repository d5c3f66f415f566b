package router

import "fmt"

type RouterError struct {
	Message string
}

func (errorValue RouterError) Error() string {
	return errorValue.Message
}

type InvalidInstructionError struct {
	RouterError
	Field string
}

func NewInvalidInstructionError(field string, message string) error {
	return InvalidInstructionError{
		RouterError: RouterError{Message: fmt.Sprintf("invalid %s: %s", field, message)},
		Field:       field,
	}
}

type InvalidSignatureError struct {
	RouterError
}

func NewInvalidSignatureError(message string) error {
	return InvalidSignatureError{RouterError: RouterError{Message: "invalid signature: " + message}}
}
