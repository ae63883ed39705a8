package builder_test

import (
	"context"
	"fmt"
	"testing"

	hb "github.com/cordialsys/hopbridge"
	"github.com/cordialsys/hopbridge/builder"
	"github.com/cordialsys/hopbridge/errors"
	"github.com/stretchr/testify/suite"
)

type fakeBuilder struct {
	sender      hb.Address
	validation  *builder.ValidationResult
	validateErr error
	validated   int
}

func (f *fakeBuilder) Build(ctx context.Context, edge hb.Edge, args builder.TransferArgs, quote hb.FeeQuote) (hb.UnsignedTransfer, error) {
	from := args.GetFrom()
	if f.sender != "" {
		from = f.sender
	}
	return &hb.EvmCall{From: from, To: "0x0000000000000000000000000000000000000001", Value: quote.Amount}, nil
}

func (f *fakeBuilder) Validate(ctx context.Context, edge hb.Edge, args builder.TransferArgs, unsigned hb.UnsignedTransfer) (builder.ValidationResult, error) {
	f.validated++
	if f.validateErr != nil {
		return builder.ValidationResult{}, f.validateErr
	}
	return *f.validation, nil
}

// a builder without validation support
type plainBuilder struct{}

func (plainBuilder) Build(ctx context.Context, edge hb.Edge, args builder.TransferArgs, quote hb.FeeQuote) (hb.UnsignedTransfer, error) {
	return &hb.SubstrateCall{From: args.GetFrom(), Method: "PolkadotXcm.transfer_assets"}, nil
}

type BuilderTestSuite struct {
	suite.Suite
	edge hb.Edge
	args builder.TransferArgs
}

func (s *BuilderTestSuite) SetupTest() {
	evm := hb.NewEvmNode(hb.EnvPaseoSepolia, 11155111, "Sepolia")
	hub := hb.NewParachainNode(hb.EnvPaseoSepolia, 1000, "AssetHub")
	s.edge = hb.Edge{Protocol: hb.ProtocolGateway, From: evm, To: hub}
	token := hb.TokenInfo{Symbol: "WETH", Address: "0xfff9976782d46cc05630d1f6ebab18b2324d6b14", Decimals: 18, Origin: hb.OriginEvm}
	args, err := builder.NewTransferArgs(
		"0x00000000000000000000000000000000000000aa",
		"5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY",
		token,
		hb.NewAmountBlockchainFromUint64(1000),
		builder.OptionTip(5),
		builder.OptionDestinationFee(hb.NewAmountBlockchainFromUint64(7)),
	)
	s.Require().NoError(err)
	s.args = args
}

func TestBuilder(t *testing.T) {
	suite.Run(t, new(BuilderTestSuite))
}

func (s *BuilderTestSuite) TestArgs() {
	require := s.Require()
	tip, ok := s.args.GetTip()
	require.True(ok)
	require.EqualValues(5, tip)
	fee, ok := s.args.GetDestinationFee()
	require.True(ok)
	require.EqualValues(7, fee.Uint64())
	require.False(s.args.EnsureAllowanceEnabled())

	_, err := builder.NewTransferArgs("a", "b", s.args.GetToken(), hb.NewAmountBlockchainFromUint64(0))
	require.Error(err)
}

func (s *BuilderTestSuite) TestValidationPasses() {
	require := s.Require()
	ok := builder.NewValidationResult()
	fake := &fakeBuilder{validation: &ok}
	b := builder.NewBuilder().Register(hb.ProtocolGateway, fake)

	quote := hb.FeeQuote{Protocol: hb.ProtocolGateway, Amount: hb.NewAmountBlockchainFromUint64(99)}
	unsigned, err := b.Build(context.Background(), s.edge, s.args, quote)
	require.NoError(err)
	require.Equal(1, fake.validated)
	call, isEvm := unsigned.(*hb.EvmCall)
	require.True(isEvm)
	require.EqualValues(99, call.Value.Uint64())
}

func (s *BuilderTestSuite) TestValidationFailureSurfacesLogs() {
	require := s.Require()
	result := builder.NewValidationResult()
	result.Fail("token %s not registered", "WETH")
	result.Fail("insufficient allowance")
	fake := &fakeBuilder{validation: &result}
	b := builder.NewBuilder().Register(hb.ProtocolGateway, fake)

	unsigned, err := b.Build(context.Background(), s.edge, s.args, hb.FeeQuote{})
	require.Nil(unsigned)
	require.Equal(errors.ValidationFailed, errors.StatusOf(err))
	require.Equal([]string{"token WETH not registered", "insufficient allowance"}, errors.LogsOf(err))
}

func (s *BuilderTestSuite) TestValidationCallError() {
	require := s.Require()
	fake := &fakeBuilder{validateErr: fmt.Errorf("rpc unavailable")}
	b := builder.NewBuilder().Register(hb.ProtocolGateway, fake)

	_, err := b.Build(context.Background(), s.edge, s.args, hb.FeeQuote{})
	require.Equal(errors.ValidationFailed, errors.StatusOf(err))
	require.ErrorContains(err, "rpc unavailable")
}

func (s *BuilderTestSuite) TestNoValidator() {
	require := s.Require()
	b := builder.NewBuilder().Register(hb.ProtocolXcm, plainBuilder{})
	edge := hb.Edge{Protocol: hb.ProtocolXcm, From: s.edge.To, To: hb.NewParachainNode(hb.EnvPaseoSepolia, 2043, "")}
	unsigned, err := b.Build(context.Background(), edge, s.args, hb.FeeQuote{})
	require.NoError(err)
	require.Equal(hb.UnsignedSubstrate, unsigned.Kind())
}

func (s *BuilderTestSuite) TestMismatches() {
	require := s.Require()
	ok := builder.NewValidationResult()
	b := builder.NewBuilder().Register(hb.ProtocolGateway, &fakeBuilder{validation: &ok})

	_, err := b.Build(context.Background(), s.edge, s.args, hb.FeeQuote{Protocol: hb.ProtocolXcm})
	require.ErrorContains(err, "fee quote")

	wrongSender := builder.NewBuilder().Register(hb.ProtocolGateway, &fakeBuilder{validation: &ok, sender: "0x00000000000000000000000000000000000000bb"})
	_, err = wrongSender.Build(context.Background(), s.edge, s.args, hb.FeeQuote{})
	require.ErrorContains(err, "expected sender")

	edge := s.edge
	edge.Protocol = hb.ProtocolXcm
	_, err = b.Build(context.Background(), edge, s.args, hb.FeeQuote{})
	require.ErrorContains(err, "no builder")
}
