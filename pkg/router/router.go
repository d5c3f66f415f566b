package router

import (
	"context"
	"fmt"

	"github.com/hashgraph-online/token-faucet-go/pkg/faucet"
	"github.com/rs/zerolog"
)

// Service is the faucet surface the router dispatches to.
type Service interface {
	Airdrop(ctx context.Context, request faucet.AirdropRequest) (faucet.Receipt, error)
	Claim(ctx context.Context, request faucet.ClaimRequest) (faucet.Receipt, error)
}

// Router validates instructions and dispatches them to a Service, checking
// each one with its Verifier first when one is set.
type Router struct {
	service  Service
	verifier Verifier
	logger   zerolog.Logger
}

// Option configures a Router built by New.
type Option func(*Router)

// WithVerifier requires every instruction to pass verifier before dispatch.
func WithVerifier(verifier Verifier) Option {
	return func(router *Router) {
		router.verifier = verifier
	}
}

// WithLogger sets the logger used for dispatch events.
func WithLogger(logger zerolog.Logger) Option {
	return func(router *Router) {
		router.logger = logger
	}
}

// New returns a router over service. Without WithVerifier it dispatches
// unsigned instructions.
func New(service Service, options ...Option) (*Router, error) {
	if service == nil {
		return nil, fmt.Errorf("faucet service is required")
	}
	router := &Router{service: service, logger: zerolog.Nop()}
	for _, option := range options {
		option(router)
	}
	return router, nil
}

// Dispatch validates instruction and runs the matching faucet operation.
// Malformed or unverified instructions fail with faucet.ErrInvalidRequest.
func (router *Router) Dispatch(ctx context.Context, instruction Instruction) (faucet.Receipt, error) {
	if err := ValidateInstruction(instruction); err != nil {
		return router.invalid(instruction, err)
	}
	normalized, err := NormalizeInstruction(instruction)
	if err != nil {
		return router.invalid(instruction, err)
	}
	if router.verifier != nil {
		if err := router.verifier.Verify(normalized); err != nil {
			return router.invalid(normalized, err)
		}
	}

	decoded, err := decode(normalized)
	if err != nil {
		return router.invalid(normalized, err)
	}

	router.logger.Debug().
		Str("op", normalized.Operation).
		Str("asset", normalized.Asset).
		Str("requester", normalized.Requester).
		Msg("dispatching instruction")

	switch normalized.Operation {
	case OperationAirdrop:
		return router.service.Airdrop(ctx, faucet.AirdropRequest{
			Asset:       decoded.asset,
			Destination: decoded.to,
			Owner:       decoded.requester,
			Amount:      decoded.amount,
		})
	case OperationClaim:
		return router.service.Claim(ctx, faucet.ClaimRequest{
			Asset:       decoded.asset,
			Destination: decoded.to,
			Requester:   decoded.requester,
			Amount:      decoded.amount,
		})
	default:
		return router.invalid(normalized, NewInvalidInstructionError("op", "must be one of airdrop|claim"))
	}
}

// DispatchBytes parses a JSON instruction and dispatches it.
func (router *Router) DispatchBytes(ctx context.Context, data []byte) (faucet.Receipt, error) {
	instruction, err := ParseInstructionBytes(data)
	if err != nil {
		return router.invalid(Instruction{}, err)
	}
	return router.Dispatch(ctx, instruction)
}

func (router *Router) invalid(instruction Instruction, err error) (faucet.Receipt, error) {
	router.logger.Warn().
		Str("op", instruction.Operation).
		Str("asset", instruction.Asset).
		Str("kind", string(faucet.KindInvalidRequest)).
		Err(err).
		Msg("instruction rejected")
	return faucet.Receipt{}, &faucet.Error{
		Kind:    faucet.KindInvalidRequest,
		Message: "malformed instruction",
		Err:     err,
	}
}
