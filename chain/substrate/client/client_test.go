package client_test

import (
	"bytes"
	"context"
	"encoding/hex"
	"testing"

	"github.com/centrifuge/go-substrate-rpc-client/v4/registry"
	"github.com/centrifuge/go-substrate-rpc-client/v4/registry/parser"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types/codec"
	hb "github.com/cordialsys/hopbridge"
	"github.com/cordialsys/hopbridge/builder"
	"github.com/cordialsys/hopbridge/chain/substrate/client"
	"github.com/cordialsys/hopbridge/chain/substrate/tx_input"
	"github.com/cordialsys/hopbridge/chain/substrate/xcm"
	"github.com/cordialsys/hopbridge/gateway"
	"github.com/cordialsys/hopbridge/testutil"
	"github.com/stretchr/testify/require"
)

const alice = "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY"
const bob = "5FHneW46xGXgs5mUiveU4sbTyGBzmstUspZC92UhjJM694ty"
const bobPubkey = "8eaf04151687736326c9fea17e25fc5287613693c912909cb226aa4794f26a48"

var hub = hb.NewParachainNode(hb.EnvPaseoSepolia, 1000, "AssetHub")
var neuro = hb.NewParachainNode(hb.EnvPaseoSepolia, 2043, "Neuro")
var sepolia = hb.NewEvmNode(hb.EnvPaseoSepolia, 11155111, "Sepolia")
var xcmEdge = hb.Edge{Protocol: hb.ProtocolXcm, From: hub, To: neuro}

var weth = hb.TokenInfo{
	Symbol:   "WETH",
	Address:  "0xfff9976782d46cc05630d1f6ebab18b2324d6b14",
	Decimals: 18,
	Origin:   hb.OriginEvm,
	ChainID:  11155111,
}

var relayToken = hb.TokenInfo{
	Symbol:   "PAS",
	Decimals: 10,
	Origin:   hb.OriginParachain,
}

func hubMeta() tx_input.Metadata {
	return tx_input.Metadata{
		Calls: []*tx_input.CallMeta{
			{Name: tx_input.CallTransferAssets, SectionIndex: 31, MethodIndex: 11},
		},
	}
}

func offlineClient(options ...client.ClientOption) *client.Client {
	return client.NewClientFromAPI(nil, append([]client.ClientOption{client.WithMetadata(hubMeta())}, options...)...)
}

func transferArgs(t *testing.T, token hb.TokenInfo, amount string, options ...builder.BuilderOption) builder.TransferArgs {
	args, err := builder.NewTransferArgs(alice, bob, token, testutil.HumanToBlockchain(amount, token.Decimals), options...)
	require.NoError(t, err)
	return args
}

func TestNewClient(t *testing.T) {
	require := require.New(t)
	_, err := client.NewClient("")
	require.ErrorContains(err, "url is not set")
}

func TestAssetLocation(t *testing.T) {
	type testcase struct {
		name     string
		token    hb.TokenInfo
		expected xcm.Location
		native   bool
		err      string
	}
	vectors := []testcase{
		{
			name:     "erc20",
			token:    weth,
			expected: xcm.EthereumToken(11155111, [20]byte(testutil.FromHex("fff9976782d46cc05630d1f6ebab18b2324d6b14"))),
		},
		{
			name:     "relay native",
			token:    relayToken,
			expected: xcm.RelayNative(),
			native:   true,
		},
		{
			name:     "sibling native",
			token:    hb.TokenInfo{Symbol: "NEURO", Origin: hb.OriginParachain, ParachainID: 2043},
			expected: xcm.SiblingParachain(2043),
		},
		{
			// listed on a sibling by its contract, so not the sibling's currency
			name: "bridged erc20 on a sibling",
			token: hb.TokenInfo{
				Symbol:      "TRAC",
				Address:     "0xef32abea56beff54f61da319a7311098d6fbcea9",
				Origin:      hb.OriginParachain,
				ChainID:     11155111,
				ParachainID: 2043,
			},
			expected: xcm.EthereumToken(11155111, [20]byte(testutil.FromHex("ef32abea56beff54f61da319a7311098d6fbcea9"))),
		},
		{
			name:  "sibling contract without chain id",
			token: hb.TokenInfo{Symbol: "TRAC", Address: "0xef32abea56beff54f61da319a7311098d6fbcea9", Origin: hb.OriginParachain, ParachainID: 2043},
			err:   "no ethereum chain id",
		},
		{
			name:  "bad contract",
			token: hb.TokenInfo{Symbol: "BAD", Origin: hb.OriginEvm, Address: "0x01"},
			err:   "invalid evm address",
		},
		{
			name:  "unknown origin",
			token: hb.TokenInfo{Symbol: "X", Origin: "cosmos"},
			err:   "unknown origin",
		},
	}
	for _, v := range vectors {
		t.Run(v.name, func(t *testing.T) {
			require := require.New(t)
			location, err := client.AssetLocation(v.token)
			if v.err != "" {
				require.ErrorContains(err, v.err)
				return
			}
			require.NoError(err)
			require.Equal(v.expected, location)
			require.Equal(v.native, client.IsNative(location))
		})
	}
}

func TestDeliveryFee(t *testing.T) {
	require := require.New(t)
	c := offlineClient()

	// the relay token needs no registry lookup; without a node the tip is zero
	quote, err := c.DeliveryFee(context.Background(), xcmEdge, relayToken)
	require.NoError(err)
	require.Equal(hb.ProtocolXcm, quote.Protocol)
	require.True(quote.Amount.IsZero())
	require.Equal(client.XcmQuote{Location: xcm.RelayNative()}, quote.Detail)

	_, err = c.DeliveryFee(context.Background(), xcmEdge, weth)
	require.ErrorContains(err, "not connected")

	_, err = c.DeliveryFee(context.Background(), hb.Edge{Protocol: hb.ProtocolGateway, From: sepolia, To: hub}, weth)
	require.ErrorContains(err, "not an xcm edge")
	_, err = c.DeliveryFee(context.Background(), hb.Edge{Protocol: hb.ProtocolXcm, From: sepolia, To: hub}, weth)
	require.ErrorContains(err, "must connect two parachains")
}

func TestBuild(t *testing.T) {
	require := require.New(t)
	c := offlineClient()
	location, err := client.AssetLocation(weth)
	require.NoError(err)
	quote := hb.FeeQuote{Protocol: hb.ProtocolXcm, Detail: client.XcmQuote{Location: location, Tip: 5}}

	unsigned, err := c.Build(context.Background(), xcmEdge, transferArgs(t, weth, "1"), quote)
	require.NoError(err)
	call, ok := unsigned.(*hb.SubstrateCall)
	require.True(ok)
	require.Equal(hb.Address(alice), call.From)
	require.Equal(tx_input.CallTransferAssets, call.Method)
	require.Equal(types.CallIndex{SectionIndex: 31, MethodIndex: 11}, call.Call.CallIndex)
	require.Equal(
		"04010100ed1f"+
			"0400010100"+bobPubkey+
			"0404020209079edaa8020300fff9976782d46cc05630d1f6ebab18b2324d6b140013000064a7b3b6e00d"+
			"00000000"+
			"00",
		hex.EncodeToString(call.Call.Args),
	)
	require.NotNil(call.Tip)
	require.EqualValues(5, *call.Tip)

	// an explicit tip wins over the quoted one
	unsigned, err = c.Build(context.Background(), xcmEdge, transferArgs(t, weth, "1", builder.OptionTip(9)), quote)
	require.NoError(err)
	require.EqualValues(9, *unsigned.(*hb.SubstrateCall).Tip)
}

func TestBuildWithoutQuoteDetail(t *testing.T) {
	require := require.New(t)
	unsigned, err := offlineClient().Build(context.Background(), xcmEdge, transferArgs(t, relayToken, "1"), hb.FeeQuote{Protocol: hb.ProtocolXcm})
	require.NoError(err)
	call := unsigned.(*hb.SubstrateCall)
	require.Nil(call.Tip)
	// V4, 1 asset, {1, Here}, fungible 1e10
	require.Contains(hex.EncodeToString(call.Call.Args), "04040100000700e40b5402")
}

func TestBuildErrors(t *testing.T) {
	require := require.New(t)
	c := offlineClient()
	quote := hb.FeeQuote{Protocol: hb.ProtocolXcm}

	args, err := builder.NewTransferArgs(alice, "0x00000000000000000000000000000000000000aa", relayToken, hb.NewAmountBlockchainFromUint64(1))
	require.NoError(err)
	_, err = c.Build(context.Background(), xcmEdge, args, quote)
	require.ErrorContains(err, "recipient")

	args, err = builder.NewTransferArgs("0x00000000000000000000000000000000000000aa", bob, relayToken, hb.NewAmountBlockchainFromUint64(1))
	require.NoError(err)
	_, err = c.Build(context.Background(), xcmEdge, args, quote)
	require.ErrorContains(err, "sender")

	_, err = client.NewClientFromAPI(nil).Build(context.Background(), xcmEdge, transferArgs(t, relayToken, "1"), quote)
	require.ErrorContains(err, "not connected")

	noXcm := client.NewClientFromAPI(nil, client.WithMetadata(tx_input.Metadata{}))
	_, err = noXcm.Build(context.Background(), xcmEdge, transferArgs(t, relayToken, "1"), quote)
	require.ErrorContains(err, "runtime offers none")
}

func TestValidateRejectsEvmPayload(t *testing.T) {
	require := require.New(t)
	_, err := offlineClient().Validate(context.Background(), xcmEdge, transferArgs(t, weth, "1"), &hb.EvmCall{From: "0x00000000000000000000000000000000000000aa"})
	require.ErrorContains(err, "expects a substrate call")

	_, err = offlineClient().Validate(context.Background(), xcmEdge, transferArgs(t, weth, "1"), &hb.SubstrateCall{From: alice})
	require.ErrorContains(err, "not connected")
}

func TestStatusUpdate(t *testing.T) {
	blockHash := types.NewHash(bytes.Repeat([]byte{1}, 32))
	blockHex := codec.HexEncodeToString(blockHash[:])

	type testcase struct {
		status   types.ExtrinsicStatus
		expected gateway.ExtrinsicUpdate
	}
	vectors := []testcase{
		{types.ExtrinsicStatus{IsFuture: true}, gateway.ExtrinsicUpdate{Status: gateway.StatusFuture}},
		{types.ExtrinsicStatus{IsReady: true}, gateway.ExtrinsicUpdate{Status: gateway.StatusReady}},
		{types.ExtrinsicStatus{IsBroadcast: true}, gateway.ExtrinsicUpdate{Status: gateway.StatusBroadcast}},
		{types.ExtrinsicStatus{IsInBlock: true, AsInBlock: blockHash}, gateway.ExtrinsicUpdate{Status: gateway.StatusInBlock, BlockHash: blockHex}},
		{types.ExtrinsicStatus{IsRetracted: true, AsRetracted: blockHash}, gateway.ExtrinsicUpdate{Status: gateway.StatusRetracted, BlockHash: blockHex}},
		{types.ExtrinsicStatus{IsFinalityTimeout: true, AsFinalityTimeout: blockHash}, gateway.ExtrinsicUpdate{Status: gateway.StatusFinalityTimeout, BlockHash: blockHex}},
		{types.ExtrinsicStatus{IsFinalized: true, AsFinalized: blockHash}, gateway.ExtrinsicUpdate{Status: gateway.StatusFinalized, BlockHash: blockHex}},
		{types.ExtrinsicStatus{IsUsurped: true, AsUsurped: blockHash}, gateway.ExtrinsicUpdate{Status: gateway.StatusUsurped, BlockHash: blockHex}},
		{types.ExtrinsicStatus{IsDropped: true}, gateway.ExtrinsicUpdate{Status: gateway.StatusDropped}},
		{types.ExtrinsicStatus{IsInvalid: true}, gateway.ExtrinsicUpdate{Status: gateway.StatusInvalid}},
	}
	for _, v := range vectors {
		t.Run(string(v.expected.Status), func(t *testing.T) {
			require.Equal(t, v.expected, client.StatusUpdate(v.status))
		})
	}
}

func applyExtrinsic(index uint32) *types.Phase {
	return &types.Phase{IsApplyExtrinsic: true, AsApplyExtrinsic: index}
}

func TestDispatchError(t *testing.T) {
	require := require.New(t)
	events := []*parser.Event{
		{Name: "Balances.Withdraw", Phase: applyExtrinsic(2)},
		{
			Name:  "System.ExtrinsicFailed",
			Phase: applyExtrinsic(2),
			Fields: registry.DecodedFields{
				{
					Name: "dispatch_error",
					Value: registry.DecodedFields{
						{Name: "index", Value: types.U8(31)},
						{Name: "error", Value: []any{types.U8(20), types.U8(0), types.U8(0), types.U8(0)}},
					},
				},
				{Name: "dispatch_info", Value: registry.DecodedFields{}},
			},
		},
		{Name: "System.ExtrinsicSuccess", Phase: applyExtrinsic(3)},
	}

	failure, failed := client.DispatchError(events, 2)
	require.True(failed)
	require.Equal("System.ExtrinsicFailed: dispatch_error: {index: 31, error: 0x14000000}", failure)

	_, failed = client.DispatchError(events, 3)
	require.False(failed)

	failure, failed = client.DispatchError([]*parser.Event{{Name: "System.ExtrinsicFailed", Phase: applyExtrinsic(0)}}, 0)
	require.True(failed)
	require.Equal(client.EventExtrinsicFailed, failure)
}

type nodeError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e nodeError) Error() string { return e.Message }

func TestAsRpcErrorMaybe(t *testing.T) {
	require := require.New(t)
	err := client.AsRpcErrorMaybe(nodeError{Code: 1010, Message: "Invalid Transaction", Data: "Inability to pay some fees"})
	require.EqualError(err, "Invalid Transaction: Inability to pay some fees (1010)")

	err = client.AsRpcErrorMaybe(nodeError{Code: 1012, Message: "Transaction is temporarily banned"})
	require.EqualError(err, "Transaction is temporarily banned (1012)")

	plain := context.DeadlineExceeded
	require.Equal(plain, client.AsRpcErrorMaybe(plain))
}
