package client_test

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"testing"

	hb "github.com/cordialsys/hopbridge"
	"github.com/cordialsys/hopbridge/builder"
	"github.com/cordialsys/hopbridge/chain/evm/abi/erc20"
	gatewayabi "github.com/cordialsys/hopbridge/chain/evm/abi/gateway"
	"github.com/cordialsys/hopbridge/chain/evm/client"
	"github.com/cordialsys/hopbridge/chain/evm/tx"
	"github.com/cordialsys/hopbridge/chain/evm/tx_input"
	"github.com/cordialsys/hopbridge/errors"
	"github.com/cordialsys/hopbridge/testutil"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/require"
)

const gatewayAddress = "0x5b4909ce6ca82d2ce23bd46738953c7959e710cd"
const tokenAddress = "0xfff9976782d46cc05630d1f6ebab18b2324d6b14"
const sender = "0x7e5f4552091a69125d5dfcb7b8c2659029395bdf"
const alice = "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY"

var wethToken = hb.TokenInfo{Symbol: "WETH", Address: tokenAddress, Decimals: 18, Origin: hb.OriginEvm, ChainID: 11155111}

var gatewayEdge = hb.Edge{
	Protocol: hb.ProtocolGateway,
	From:     hb.NewEvmNode(hb.EnvPaseoSepolia, 11155111, "Sepolia"),
	To:       hb.NewParachainNode(hb.EnvPaseoSepolia, 1000, "AssetHub"),
}

func word(v uint64) string {
	return hexutil.Encode(common.LeftPadBytes(new(big.Int).SetUint64(v).Bytes(), 32))
}

// fakeChain answers the RPC methods the client uses.
type fakeChain struct {
	registered   bool
	quote        uint64
	// added to the quote per unit of destination fee
	feeRate      uint64
	tokenBalance uint64
	allowance    uint64
	native       uint64
	simulateErr  string
	sendErr      string
	receipt      any
}

func newFakeChain() *fakeChain {
	return &fakeChain{
		registered:   true,
		quote:        1_500_000,
		tokenBalance: 5_000,
		allowance:    5_000,
		native:       10_000_000,
	}
}

type callArgs struct {
	From  string        `json:"from"`
	To    string        `json:"to"`
	Input hexutil.Bytes `json:"input"`
	Data  hexutil.Bytes `json:"data"`
}

func (f *fakeChain) handle(req testutil.JSONRPCRequest) (any, error) {
	switch req.Method {
	case "eth_call":
		var args callArgs
		if err := req.Param(0, &args); err != nil {
			return nil, err
		}
		data := args.Input
		if len(data) == 0 {
			data = args.Data
		}
		if method, ok := gatewayabi.MethodOf(data); ok {
			switch method {
			case gatewayabi.MethodIsTokenRegistered:
				if f.registered {
					return word(1), nil
				}
				return word(0), nil
			case gatewayabi.MethodQuoteSendTokenFee:
				destinationFee := new(big.Int).SetBytes(data[4+2*32 : 4+3*32]).Uint64()
				return word(f.quote + f.feeRate*destinationFee), nil
			case gatewayabi.MethodSendToken:
				if f.simulateErr != "" {
					return nil, fmt.Errorf("%s", f.simulateErr)
				}
				return "0x", nil
			}
		}
		if method, ok := erc20.MethodOf(data); ok {
			switch method {
			case "balanceOf":
				return word(f.tokenBalance), nil
			case "allowance":
				return word(f.allowance), nil
			case "decimals":
				return word(18), nil
			}
		}
		return nil, fmt.Errorf("unexpected call data %x", data)
	case "eth_getBalance":
		return hexutil.EncodeUint64(f.native), nil
	case "eth_getTransactionCount":
		return "0x7", nil
	case "eth_chainId":
		return "0xaa36a7", nil
	case "eth_maxPriorityFeePerGas":
		return hexutil.EncodeUint64(2_000_000_000), nil
	case "eth_estimateGas":
		return hexutil.EncodeUint64(180_000), nil
	case "eth_getBlockByNumber":
		return header(10_000_000_000), nil
	case "eth_sendRawTransaction":
		if f.sendErr != "" {
			return nil, fmt.Errorf("%s", f.sendErr)
		}
		return common.Hash{1}.Hex(), nil
	case "eth_getTransactionReceipt":
		return f.receipt, nil
	}
	return nil, fmt.Errorf("method %s not mocked", req.Method)
}

func header(baseFee uint64) json.RawMessage {
	zeroHash := common.Hash{}.Hex()
	bloom := hexutil.Encode(make([]byte, 256))
	return json.RawMessage(fmt.Sprintf(`{
		"parentHash": "%[1]s",
		"sha3Uncles": "%[1]s",
		"miner": "0x0000000000000000000000000000000000000000",
		"stateRoot": "%[1]s",
		"transactionsRoot": "%[1]s",
		"receiptsRoot": "%[1]s",
		"logsBloom": "%[2]s",
		"difficulty": "0x0",
		"number": "0x10",
		"gasLimit": "0x1c9c380",
		"gasUsed": "0x0",
		"timestamp": "0x6553f100",
		"extraData": "0x",
		"mixHash": "%[1]s",
		"nonce": "0x0000000000000000",
		"baseFeePerGas": "%[3]s",
		"hash": "%[1]s"
	}`, zeroHash, bloom, hexutil.EncodeUint64(baseFee)))
}

func receipt(status uint64) json.RawMessage {
	bloom := hexutil.Encode(make([]byte, 256))
	return json.RawMessage(fmt.Sprintf(`{
		"type": "0x2",
		"status": "%s",
		"cumulativeGasUsed": "0x5208",
		"logsBloom": "%s",
		"logs": [],
		"transactionHash": "%s",
		"gasUsed": "0x5208",
		"blockHash": "%s",
		"blockNumber": "0x2a",
		"transactionIndex": "0x0"
	}`, hexutil.EncodeUint64(status), bloom, common.Hash{1}.Hex(), common.Hash{2}.Hex()))
}

func newClient(t *testing.T, chain *fakeChain, options ...client.ClientOption) (*client.Client, *testutil.MockJSONRPC) {
	server := testutil.NewMockJSONRPC(t, chain.handle)
	c, err := client.NewClient(server.URL, gatewayAddress, options...)
	require.NoError(t, err)
	return c, server
}

func transferArgs(t *testing.T, amount uint64, options ...builder.BuilderOption) builder.TransferArgs {
	args, err := builder.NewTransferArgs(sender, alice, wethToken, hb.NewAmountBlockchainFromUint64(amount), options...)
	require.NoError(t, err)
	return args
}

func TestNewClient(t *testing.T) {
	require := require.New(t)
	_, err := client.NewClient("http://localhost:8545", "not-an-address")
	require.ErrorContains(err, "gateway contract")

	c, err := client.NewClient("http://localhost:8545", "0x5B4909cE6Ca82d2CE23BD46738953c7959E710cd")
	require.NoError(err)
	require.Equal(hb.ContractAddress(gatewayAddress), c.Gateway())
}

func TestDeliveryFee(t *testing.T) {
	require := require.New(t)
	chain := newFakeChain()
	c, _ := newClient(t, chain, client.WithDestinationFee(hb.NewAmountBlockchainFromUint64(42)))

	quote, err := c.DeliveryFee(context.Background(), gatewayEdge, wethToken)
	require.NoError(err)
	require.Equal(hb.ProtocolGateway, quote.Protocol)
	require.EqualValues(1_500_000, quote.Amount.Uint64())
	detail, ok := quote.Detail.(client.GatewayQuote)
	require.True(ok)
	require.EqualValues(1000, detail.ParaID)
	require.EqualValues(42, detail.DestinationFee.Uint64())

	// the built call pays for the destination fee it carries
	unsigned, err := c.Build(context.Background(), gatewayEdge, transferArgs(t, 1000), quote)
	require.NoError(err)
	call := unsigned.(*hb.EvmCall)
	require.Equal(word(42), hexutil.Encode(call.Data[4+3*32:4+4*32]))
	require.EqualValues(1_500_000, call.Value.Uint64())

	chain.registered = false
	_, err = c.DeliveryFee(context.Background(), gatewayEdge, wethToken)
	require.ErrorContains(err, "not registered")

	xcmEdge := gatewayEdge
	xcmEdge.Protocol = hb.ProtocolXcm
	_, err = c.DeliveryFee(context.Background(), xcmEdge, wethToken)
	require.ErrorContains(err, "not a gateway edge")
}

func TestBuild(t *testing.T) {
	require := require.New(t)
	chain := newFakeChain()
	chain.feeRate = 1000
	c, server := newClient(t, chain)
	quote := hb.FeeQuote{
		Protocol: hb.ProtocolGateway,
		Amount:   hb.NewAmountBlockchainFromUint64(1_500_000),
		Detail:   client.GatewayQuote{ParaID: 1000, DestinationFee: hb.NewAmountBlockchainFromUint64(9)},
	}

	unsigned, err := c.Build(context.Background(), gatewayEdge, transferArgs(t, 1000), quote)
	require.NoError(err)
	call, ok := unsigned.(*hb.EvmCall)
	require.True(ok)
	require.Equal(hb.Address(sender), call.From)
	require.Equal(hb.ContractAddress(gatewayAddress), call.To)
	require.EqualValues(1_500_000, call.Value.Uint64())
	require.NotNil(call.Allowance)
	require.Equal(hb.ContractAddress(tokenAddress), call.Allowance.Token)
	require.EqualValues(1000, call.Allowance.Amount.Uint64())

	method, ok := gatewayabi.MethodOf(call.Data)
	require.True(ok)
	require.Equal(gatewayabi.MethodSendToken, method)
	// destination fee and amount are the last two words of the head
	require.Equal(word(9), hexutil.Encode(call.Data[4+3*32:4+4*32]))
	require.Equal(word(1000), hexutil.Encode(call.Data[4+4*32:4+5*32]))

	require.Empty(server.Calls("eth_call"))

	// the same destination fee as quoted needs no new quote
	_, err = c.Build(context.Background(), gatewayEdge, transferArgs(t, 1000, builder.OptionDestinationFee(hb.NewAmountBlockchainFromUint64(9))), quote)
	require.NoError(err)
	require.Empty(server.Calls("eth_call"))

	// another destination fee is paid for with a matching quote
	unsigned, err = c.Build(context.Background(), gatewayEdge, transferArgs(t, 1000, builder.OptionDestinationFee(hb.NewAmountBlockchainFromUint64(77))), quote)
	require.NoError(err)
	call = unsigned.(*hb.EvmCall)
	require.Equal(word(77), hexutil.Encode(call.Data[4+3*32:4+4*32]))
	require.EqualValues(1_500_000+77*1000, call.Value.Uint64())
	require.Len(server.Calls("eth_call"), 1)

	args, err := builder.NewTransferArgs(sender, "0x00000000000000000000000000000000000000aa", wethToken, hb.NewAmountBlockchainFromUint64(1))
	require.NoError(err)
	_, err = c.Build(context.Background(), gatewayEdge, args, quote)
	require.ErrorContains(err, "recipient")
}

func TestValidate(t *testing.T) {
	type testcase struct {
		name            string
		mutate          func(chain *fakeChain)
		ensureAllowance bool
		logs            []string
	}
	vectors := []testcase{
		{
			name:   "ok",
			mutate: func(chain *fakeChain) {},
		},
		{
			name:   "unregistered",
			mutate: func(chain *fakeChain) { chain.registered = false },
			logs:   []string{"token WETH is not registered with the gateway"},
		},
		{
			name:   "balance and allowance",
			mutate: func(chain *fakeChain) { chain.tokenBalance = 10; chain.allowance = 0 },
			logs: []string{
				"insufficient WETH balance: have 0.00000000000000001, need 0.000000000000001",
				"gateway allowance for WETH is 0, need 0.000000000000001",
			},
		},
		{
			name:            "allowance raised by signer",
			mutate:          func(chain *fakeChain) { chain.allowance = 0 },
			ensureAllowance: true,
		},
		{
			name:   "no eth for fee",
			mutate: func(chain *fakeChain) { chain.native = 1 },
			logs:   []string{"insufficient ETH for the bridge fee: have 1, need 1500000 wei"},
		},
		{
			name:   "simulation reverts",
			mutate: func(chain *fakeChain) { chain.simulateErr = "execution reverted: InvalidDestination" },
			logs:   []string{"simulation failed: execution reverted: InvalidDestination"},
		},
	}
	for _, v := range vectors {
		t.Run(v.name, func(t *testing.T) {
			require := require.New(t)
			chain := newFakeChain()
			v.mutate(chain)
			c, _ := newClient(t, chain)
			args := transferArgs(t, 1000, builder.OptionEnsureAllowance(v.ensureAllowance))
			quote := hb.FeeQuote{Protocol: hb.ProtocolGateway, Amount: hb.NewAmountBlockchainFromUint64(1_500_000)}
			unsigned, err := c.Build(context.Background(), gatewayEdge, args, quote)
			require.NoError(err)

			result, err := c.Validate(context.Background(), gatewayEdge, args, unsigned)
			require.NoError(err)
			require.Equal(len(v.logs) == 0, result.Success)
			require.Equal(v.logs, result.Logs)
		})
	}
}

func TestValidateRejectsSubstratePayload(t *testing.T) {
	require := require.New(t)
	c, _ := newClient(t, newFakeChain())
	_, err := c.Validate(context.Background(), gatewayEdge, transferArgs(t, 1), &hb.SubstrateCall{From: alice})
	require.ErrorContains(err, "expects an evm call")
}

func TestFetchTxInput(t *testing.T) {
	require := require.New(t)
	c, server := newClient(t, newFakeChain(), client.WithTipMultiplier(1.5))
	call := &hb.EvmCall{From: sender, To: gatewayAddress, Data: []byte{1, 2, 3, 4}, Value: hb.NewAmountBlockchainFromUint64(1)}

	input, err := c.FetchTxInput(context.Background(), call)
	require.NoError(err)
	require.EqualValues(7, input.Nonce)
	require.EqualValues(11155111, input.ChainId.Uint64())
	require.EqualValues(3_000_000_000, input.GasTipCap.Uint64())
	// 2 * base fee + tip
	require.EqualValues(23_000_000_000, input.GasFeeCap.Uint64())
	require.EqualValues(181_000, input.GasLimit)
	require.Len(server.Calls("eth_estimateGas"), 1)
}

func TestSubmitTx(t *testing.T) {
	require := require.New(t)
	chain := newFakeChain()
	c, server := newClient(t, chain)
	input := tx_input.NewTxInput()
	input.ChainId = hb.NewAmountBlockchainFromUint64(11155111)
	input.GasLimit = 21_000
	input.GasFeeCap = hb.NewAmountBlockchainFromUint64(10)
	input.GasTipCap = hb.NewAmountBlockchainFromUint64(1)
	trans := tx.NewTx(&hb.EvmCall{From: sender, To: gatewayAddress, Value: hb.NewAmountBlockchainFromUint64(0)}, input)
	require.NoError(trans.SetSignature(make([]byte, 65)))

	require.NoError(c.SubmitTx(context.Background(), trans))
	require.Len(server.Calls("eth_sendRawTransaction"), 1)

	chain.sendErr = "already known"
	require.NoError(c.SubmitTx(context.Background(), trans))

	chain.sendErr = "insufficient funds for gas * price + value"
	err := c.SubmitTx(context.Background(), trans)
	require.Equal(errors.SubmissionFailed, errors.StatusOf(err))
}

func TestFetchReceipt(t *testing.T) {
	require := require.New(t)
	chain := newFakeChain()
	c, _ := newClient(t, chain)

	r, err := c.FetchReceipt(context.Background(), hb.TxHash(common.Hash{1}.Hex()))
	require.NoError(err)
	require.Nil(r)

	chain.receipt = receipt(1)
	r, err = c.FetchReceipt(context.Background(), hb.TxHash(common.Hash{1}.Hex()))
	require.NoError(err)
	require.EqualValues(1, r.Status)
	require.EqualValues(42, r.BlockNumber.Uint64())
}

func TestCheckError(t *testing.T) {
	require := require.New(t)
	require.Equal(client.NoBalanceForGas, client.CheckError(fmt.Errorf("insufficient funds for gas * price + value")))
	require.Equal(client.NonceConflict, client.CheckError(fmt.Errorf("nonce too low")))
	require.Equal(client.NonceConflict, client.CheckError(fmt.Errorf("replacement transaction underpriced")))
	require.Equal(client.TransactionExists, client.CheckError(fmt.Errorf("already known")))
	require.Equal(client.Unknown, client.CheckError(fmt.Errorf("boom")))
}
