package router

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/hashgraph-online/token-faucet-go/pkg/authority"
)

// NormalizeAddress trims and re-encodes a base58 address.
func NormalizeAddress(field string, value string) (string, error) {
	address, err := authority.ParseAddress(value)
	if err != nil {
		return "", NewInvalidInstructionError(field, fmt.Sprintf("%q is not a base58 address", value))
	}
	return address.String(), nil
}

// ValidateNumberString checks a base-unit amount.
func ValidateNumberString(field string, value string) error {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" || len(trimmed) > MaxNumberLength || !numberRegex.MatchString(trimmed) {
		return NewInvalidInstructionError(field, fmt.Sprintf("%q is not a base-unit amount", value))
	}
	if _, err := strconv.ParseUint(trimmed, 10, 64); err != nil {
		return NewInvalidInstructionError(field, fmt.Sprintf("%q does not fit in 64 bits", value))
	}
	return nil
}

// NormalizeInstruction trims every field, lowercases the operation and
// re-encodes addresses so equal requests serialize identically.
func NormalizeInstruction(instruction Instruction) (Instruction, error) {
	normalized := instruction
	normalized.Operation = strings.ToLower(strings.TrimSpace(instruction.Operation))
	normalized.Amount = strings.TrimSpace(instruction.Amount)
	normalized.Expires = strings.TrimSpace(instruction.Expires)
	normalized.Signature = strings.ToLower(strings.TrimSpace(instruction.Signature))

	fields := []struct {
		name  string
		value *string
	}{
		{name: "asset", value: &normalized.Asset},
		{name: "to", value: &normalized.To},
		{name: "requester", value: &normalized.Requester},
	}
	for _, field := range fields {
		trimmed := strings.TrimSpace(*field.value)
		if trimmed == "" {
			*field.value = ""
			continue
		}
		address, err := NormalizeAddress(field.name, trimmed)
		if err != nil {
			return normalized, err
		}
		*field.value = address
	}

	return normalized, nil
}

// ValidateInstruction validates a faucet instruction.
func ValidateInstruction(instruction Instruction) error {
	normalized, err := NormalizeInstruction(instruction)
	if err != nil {
		return err
	}

	if normalized.Asset == "" {
		return NewInvalidInstructionError("asset", "is required")
	}
	if normalized.Amount != "" {
		if err := ValidateNumberString("amt", normalized.Amount); err != nil {
			return err
		}
	}
	if normalized.Expires != "" {
		if err := ValidateNumberString("exp", normalized.Expires); err != nil {
			return err
		}
	}

	switch normalized.Operation {
	case OperationAirdrop:
		if normalized.To == "" && normalized.Requester == "" {
			return NewInvalidInstructionError("to", "to or requester is required for airdrop")
		}
		return nil
	case OperationClaim:
		if normalized.Requester == "" {
			return NewInvalidInstructionError("requester", "is required for claim")
		}
		return nil
	default:
		return NewInvalidInstructionError("op", "must be one of airdrop|claim")
	}
}

// ParseInstructionBytes decodes, validates and normalizes a JSON instruction.
func ParseInstructionBytes(data []byte) (Instruction, error) {
	var instruction Instruction
	if err := json.Unmarshal(data, &instruction); err != nil {
		return Instruction{}, NewInvalidInstructionError("instruction", err.Error())
	}
	if err := ValidateInstruction(instruction); err != nil {
		return Instruction{}, err
	}
	return NormalizeInstruction(instruction)
}

type decodedInstruction struct {
	asset     authority.Address
	to        authority.Address
	requester authority.Address
	amount    *uint64
}

// decode expects a normalized, validated instruction.
func decode(instruction Instruction) (decodedInstruction, error) {
	var decoded decodedInstruction
	var err error

	if decoded.asset, err = authority.ParseAddress(instruction.Asset); err != nil {
		return decodedInstruction{}, err
	}
	if instruction.To != "" {
		if decoded.to, err = authority.ParseAddress(instruction.To); err != nil {
			return decodedInstruction{}, err
		}
	}
	if instruction.Requester != "" {
		if decoded.requester, err = authority.ParseAddress(instruction.Requester); err != nil {
			return decodedInstruction{}, err
		}
	}
	if instruction.Amount != "" {
		amount, err := strconv.ParseUint(instruction.Amount, 10, 64)
		if err != nil {
			return decodedInstruction{}, err
		}
		decoded.amount = &amount
	}
	return decoded, nil
}
