package builder

import (
	"context"
	"fmt"

	hb "github.com/cordialsys/hopbridge"
	"github.com/cordialsys/hopbridge/errors"
	"github.com/sirupsen/logrus"
)

// EdgeBuilder builds the unsigned payload for one protocol.
type EdgeBuilder interface {
	Build(ctx context.Context, edge hb.Edge, args TransferArgs, quote hb.FeeQuote) (hb.UnsignedTransfer, error)
}

// Validator is implemented by protocols that expose a pre-submission check.
type Validator interface {
	Validate(ctx context.Context, edge hb.Edge, args TransferArgs, unsigned hb.UnsignedTransfer) (ValidationResult, error)
}

type ValidationResult struct {
	Success bool
	Logs    []string
}

func (r *ValidationResult) Fail(format string, args ...interface{}) {
	r.Success = false
	r.Logs = append(r.Logs, fmt.Sprintf(format, args...))
}

func NewValidationResult() ValidationResult {
	return ValidationResult{Success: true}
}

// Builder dispatches to the edge builder of each protocol.
type Builder struct {
	builders map[hb.Protocol]EdgeBuilder
}

func NewBuilder() *Builder {
	return &Builder{builders: map[hb.Protocol]EdgeBuilder{}}
}

func (b *Builder) Register(protocol hb.Protocol, builder EdgeBuilder) *Builder {
	b.builders[protocol] = builder
	return b
}

// Build returns the unsigned payload for the edge. When the protocol can
// validate, validation must pass before the payload is returned.
func (b *Builder) Build(ctx context.Context, edge hb.Edge, args TransferArgs, quote hb.FeeQuote) (hb.UnsignedTransfer, error) {
	edgeBuilder, ok := b.builders[edge.Protocol]
	if !ok {
		return nil, fmt.Errorf("no builder registered for protocol '%s'", edge.Protocol)
	}
	if quote.Protocol != "" && quote.Protocol != edge.Protocol {
		return nil, fmt.Errorf("fee quote is for '%s', edge uses '%s'", quote.Protocol, edge.Protocol)
	}
	unsigned, err := edgeBuilder.Build(ctx, edge, args, quote)
	if err != nil {
		return nil, err
	}
	if unsigned.Sender() != args.GetFrom() {
		return nil, fmt.Errorf("built payload is bound to %s, expected sender %s", unsigned.Sender(), args.GetFrom())
	}

	validator, ok := edgeBuilder.(Validator)
	if !ok {
		return unsigned, nil
	}
	result, err := validator.Validate(ctx, edge, args, unsigned)
	if err != nil {
		return nil, errors.Wrap(errors.ValidationFailed, err, "could not validate %s", edge)
	}
	if !result.Success {
		logrus.WithFields(logrus.Fields{
			"edge": edge.String(),
			"logs": result.Logs,
		}).Warn("transfer failed validation")
		return nil, errors.ValidationFailedf(result.Logs, "%s rejected transfer of %s %s", edge.Protocol, args.amount.String(), args.token.Symbol)
	}
	return unsigned, nil
}
