package testutil

import (
	"context"

	hb "github.com/cordialsys/hopbridge"
	"github.com/cordialsys/hopbridge/builder"
	"github.com/cordialsys/hopbridge/fee"
	"github.com/stretchr/testify/mock"
)

// MockedOracle returns a new mock for fee.Oracle
type MockedOracle struct {
	mock.Mock
}

var _ fee.Oracle = &MockedOracle{}

func (m *MockedOracle) DeliveryFee(ctx context.Context, edge hb.Edge, token hb.TokenInfo) (hb.FeeQuote, error) {
	args := m.Called(ctx, edge, token)
	return args.Get(0).(hb.FeeQuote), args.Error(1)
}

// MockedEdgeBuilder returns a new mock for builder.EdgeBuilder
type MockedEdgeBuilder struct {
	mock.Mock
}

var _ builder.EdgeBuilder = &MockedEdgeBuilder{}

func (m *MockedEdgeBuilder) Build(ctx context.Context, edge hb.Edge, args builder.TransferArgs, quote hb.FeeQuote) (hb.UnsignedTransfer, error) {
	res := m.Called(ctx, edge, args, quote)
	unsigned, _ := res.Get(0).(hb.UnsignedTransfer)
	return unsigned, res.Error(1)
}

// MockedValidatingBuilder is a MockedEdgeBuilder that also validates.
type MockedValidatingBuilder struct {
	MockedEdgeBuilder
}

var _ builder.Validator = &MockedValidatingBuilder{}

func (m *MockedValidatingBuilder) Validate(ctx context.Context, edge hb.Edge, args builder.TransferArgs, unsigned hb.UnsignedTransfer) (builder.ValidationResult, error) {
	res := m.Called(ctx, edge, args, unsigned)
	return res.Get(0).(builder.ValidationResult), res.Error(1)
}
