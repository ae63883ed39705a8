package fee_test

import (
	"context"
	"fmt"
	"testing"

	hb "github.com/cordialsys/hopbridge"
	"github.com/cordialsys/hopbridge/errors"
	"github.com/cordialsys/hopbridge/fee"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

var (
	evm   = hb.NewEvmNode(hb.EnvPaseoSepolia, 11155111, "Sepolia")
	hub   = hb.NewParachainNode(hb.EnvPaseoSepolia, 1000, "AssetHub (1000)")
	other = hb.NewParachainNode(hb.EnvPaseoSepolia, 2043, "Neuro (2043)")

	gatewayEdge = hb.Edge{Protocol: hb.ProtocolGateway, From: evm, To: hub}
	xcmEdge     = hb.Edge{Protocol: hb.ProtocolXcm, From: hub, To: other}

	weth = hb.TokenInfo{Symbol: "WETH", Address: "0xfff9976782d46cc05630d1f6ebab18b2324d6b14", Decimals: 18, Origin: hb.OriginEvm}
	usdc = hb.TokenInfo{Symbol: "USDC", Address: "0x1c7d4b196cb0c7b01d743fbc6116a902379c7238", Decimals: 6, Origin: hb.OriginEvm}
	trac = hb.TokenInfo{Symbol: "TRAC", Address: "0xef32abea56beff54f61da319a7311098d6fbcea9", Decimals: 18, Origin: hb.OriginEvm}
)

// supports a fixed set of symbols per protocol
func allowList(calls *int, symbols ...string) fee.OracleFunc {
	return func(ctx context.Context, edge hb.Edge, token hb.TokenInfo) (hb.FeeQuote, error) {
		*calls++
		for _, s := range symbols {
			if s == token.Symbol {
				return hb.FeeQuote{Amount: hb.NewAmountBlockchainFromUint64(42), Detail: s}, nil
			}
		}
		return hb.FeeQuote{}, fmt.Errorf("token %s not registered", token.Symbol)
	}
}

func TestQuote(t *testing.T) {
	require := require.New(t)
	calls := 0
	quoter := fee.NewQuoter(fee.WithOracle(hb.ProtocolGateway, allowList(&calls, "WETH")))

	quote, err := quoter.Quote(context.Background(), gatewayEdge, weth)
	require.NoError(err)
	require.Equal(hb.ProtocolGateway, quote.Protocol)
	require.EqualValues(42, quote.Amount.Uint64())
	require.Equal("WETH", quote.Detail)

	_, err = quoter.Quote(context.Background(), gatewayEdge, usdc)
	require.Equal(errors.FeeUnavailable, errors.StatusOf(err))
	require.ErrorContains(err, "not registered")

	// no oracle for xcm
	_, err = quoter.Quote(context.Background(), xcmEdge, weth)
	require.Equal(errors.FeeUnavailable, errors.StatusOf(err))
}

func TestSupportsTokenMatchesQuote(t *testing.T) {
	require := require.New(t)
	calls := 0
	quoter := fee.NewQuoter(
		fee.WithOracle(hb.ProtocolGateway, allowList(&calls, "WETH", "TRAC")),
		fee.WithOracle(hb.ProtocolXcm, allowList(&calls, "WETH")),
	)
	for _, edge := range []hb.Edge{gatewayEdge, xcmEdge} {
		for _, token := range []hb.TokenInfo{weth, usdc, trac} {
			_, err := quoter.Quote(context.Background(), edge, token)
			require.Equal(err == nil, quoter.SupportsToken(context.Background(), edge, token), "%s %s", edge, token.Symbol)
		}
	}
}

func TestSupportIsNotCached(t *testing.T) {
	require := require.New(t)
	supported := false
	calls := 0
	quoter := fee.NewQuoter(fee.WithOracle(hb.ProtocolGateway, fee.OracleFunc(
		func(ctx context.Context, edge hb.Edge, token hb.TokenInfo) (hb.FeeQuote, error) {
			calls++
			if !supported {
				return hb.FeeQuote{}, fmt.Errorf("not yet")
			}
			return hb.FeeQuote{}, nil
		},
	)))
	require.False(quoter.SupportsToken(context.Background(), gatewayEdge, weth))
	supported = true
	require.True(quoter.SupportsToken(context.Background(), gatewayEdge, weth))
	require.Equal(2, calls)
}

func TestFilterSupported(t *testing.T) {
	require := require.New(t)
	calls := 0
	quoter := fee.NewQuoter(
		fee.WithOracle(hb.ProtocolGateway, allowList(&calls, "WETH", "TRAC")),
		fee.WithOracle(hb.ProtocolXcm, allowList(&calls, "TRAC", "USDC")),
		fee.WithQuoteRate(rate.Inf, 1),
	)
	route := hb.NewRoute(gatewayEdge, xcmEdge)
	tokens, err := quoter.FilterSupported(context.Background(), route, []hb.TokenInfo{weth, usdc, trac})
	require.NoError(err)
	// WETH quotes on the gateway edge but not on the xcm edge after it
	require.Equal([]hb.TokenInfo{trac}, tokens)
	// WETH and TRAC quote both edges, USDC stops at the first
	require.Equal(5, calls)

	calls = 0
	direct := hb.NewRoute(gatewayEdge)
	tokens, err = quoter.FilterSupported(context.Background(), direct, []hb.TokenInfo{weth, usdc, trac})
	require.NoError(err)
	require.Equal([]hb.TokenInfo{weth, trac}, tokens)
	require.Equal(3, calls)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = quoter.FilterSupported(ctx, direct, []hb.TokenInfo{weth})
	require.ErrorIs(err, context.Canceled)
}
