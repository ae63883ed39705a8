package client

import (
	"context"
	"fmt"
	"math/big"
	"net/http"

	hb "github.com/cordialsys/hopbridge"
	"github.com/cordialsys/hopbridge/chain/evm/abi/erc20"
	"github.com/cordialsys/hopbridge/chain/evm/address"
	"github.com/cordialsys/hopbridge/chain/evm/tx"
	"github.com/cordialsys/hopbridge/errors"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/sirupsen/logrus"
)

const DEFAULT_GAS_TIP = 3_000_000_000

// Client for the EVM side of the bridge: gateway quotes, sendToken payloads and
// their validation, balances and submission.
type Client struct {
	EthClient *ethclient.Client
	gateway   common.Address
	// forwarded to the gateway for execution beyond the hub
	destinationFee hb.AmountBlockchain
	// applied to the suggested priority fee
	tipMultiplier float64
}

type ClientOption func(c *Client)

func WithDestinationFee(fee hb.AmountBlockchain) ClientOption {
	return func(c *Client) {
		c.destinationFee = fee
	}
}

func WithTipMultiplier(multiplier float64) ClientOption {
	return func(c *Client) {
		c.tipMultiplier = multiplier
	}
}

// NewClient returns a new EVM Client
func NewClient(url string, gateway hb.ContractAddress, options ...ClientOption) (*Client, error) {
	gatewayAddr, err := address.FromHex(gateway)
	if err != nil {
		return nil, fmt.Errorf("gateway contract: %v", err)
	}
	httpClient := &http.Client{}
	c, err := rpc.DialHTTPWithClient(url, httpClient)
	if err != nil {
		return nil, fmt.Errorf("dialing url: %v", url)
	}
	client := &Client{
		EthClient:      ethclient.NewClient(c),
		gateway:        gatewayAddr,
		destinationFee: hb.NewAmountBlockchainFromUint64(0),
		tipMultiplier:  1,
	}
	for _, opt := range options {
		opt(client)
	}
	return client, nil
}

func (client *Client) Gateway() hb.ContractAddress {
	return hb.ContractAddress(hb.Address(client.gateway.Hex()).Normalize())
}

func (client *Client) call(ctx context.Context, from *common.Address, to common.Address, data []byte, value *big.Int) ([]byte, error) {
	msg := ethereum.CallMsg{
		To:    &to,
		Data:  data,
		Value: value,
	}
	if from != nil {
		msg.From = *from
	}
	return client.EthClient.CallContract(ctx, msg, nil)
}

// FetchNativeBalance returns the ETH balance of an address
func (client *Client) FetchNativeBalance(ctx context.Context, addr hb.Address) (hb.AmountBlockchain, error) {
	zero := hb.NewAmountBlockchainFromUint64(0)
	targetAddr, err := address.FromHex(addr)
	if err != nil {
		return zero, fmt.Errorf("bad address '%v': %v", addr, err)
	}
	balance, err := client.EthClient.BalanceAt(ctx, targetAddr, nil)
	if err != nil {
		return zero, fmt.Errorf("failed to get balance for '%v': %v", addr, err)
	}
	return hb.NewAmountBlockchainFromBig(balance), nil
}

// FetchTokenBalance returns the ERC-20 balance of an address
func (client *Client) FetchTokenBalance(ctx context.Context, token hb.ContractAddress, addr hb.Address) (hb.AmountBlockchain, error) {
	zero := hb.NewAmountBlockchainFromUint64(0)
	tokenAddr, err := address.FromHex(token)
	if err != nil {
		return zero, err
	}
	owner, err := address.FromHex(addr)
	if err != nil {
		return zero, err
	}
	data, err := erc20.BalanceOf(owner)
	if err != nil {
		return zero, err
	}
	output, err := client.call(ctx, nil, tokenAddr, data, nil)
	if err != nil {
		return zero, fmt.Errorf("failed to get %s balance for '%v': %v", token, addr, err)
	}
	return erc20.ParseAmount("balanceOf", output)
}

// Allowance returns how much of token the spender may move on behalf of owner
func (client *Client) Allowance(ctx context.Context, token hb.ContractAddress, owner hb.Address, spender hb.ContractAddress) (hb.AmountBlockchain, error) {
	zero := hb.NewAmountBlockchainFromUint64(0)
	tokenAddr, err := address.FromHex(token)
	if err != nil {
		return zero, err
	}
	ownerAddr, err := address.FromHex(owner)
	if err != nil {
		return zero, err
	}
	spenderAddr, err := address.FromHex(spender)
	if err != nil {
		return zero, err
	}
	data, err := erc20.Allowance(ownerAddr, spenderAddr)
	if err != nil {
		return zero, err
	}
	output, err := client.call(ctx, nil, tokenAddr, data, nil)
	if err != nil {
		return zero, fmt.Errorf("failed to get allowance of %s: %v", token, err)
	}
	return erc20.ParseAmount("allowance", output)
}

// FetchDecimals reads the ERC-20 decimals of a token
func (client *Client) FetchDecimals(ctx context.Context, token hb.ContractAddress) (int, error) {
	tokenAddr, err := address.FromHex(token)
	if err != nil {
		return 0, err
	}
	data, err := erc20.Decimals()
	if err != nil {
		return 0, err
	}
	output, err := client.call(ctx, nil, tokenAddr, data, nil)
	if err != nil {
		return 0, err
	}
	return erc20.ParseDecimals(output)
}

// ApproveCall builds the ERC-20 approve call granting spender amount of token.
func (client *Client) ApproveCall(from hb.Address, token hb.ContractAddress, spender hb.ContractAddress, amount hb.AmountBlockchain) (*hb.EvmCall, error) {
	spenderAddr, err := address.FromHex(spender)
	if err != nil {
		return nil, err
	}
	data, err := erc20.Approve(spenderAddr, amount)
	if err != nil {
		return nil, err
	}
	return &hb.EvmCall{
		From:  from,
		To:    token,
		Data:  data,
		Value: hb.NewAmountBlockchainFromUint64(0),
	}, nil
}

// SimulateCall runs the call against the latest state with eth_call.
func (client *Client) SimulateCall(ctx context.Context, call *hb.EvmCall) error {
	from, err := address.FromHex(call.From)
	if err != nil {
		return err
	}
	to, err := address.FromHex(call.To)
	if err != nil {
		return err
	}
	_, err = client.call(ctx, &from, to, call.Data, call.Value.Int())
	return err
}

// SubmitTx submits a signed transaction
func (client *Client) SubmitTx(ctx context.Context, trans *tx.Tx) error {
	ethTx, err := trans.BuildEthTx()
	if err != nil {
		return err
	}
	err = client.EthClient.SendTransaction(ctx, ethTx)
	if err != nil {
		switch CheckError(err) {
		case TransactionExists:
			logrus.WithField("hash", trans.Hash()).Debug("transaction already in mempool")
			return nil
		default:
			return errors.Wrap(errors.SubmissionFailed, err, "sending transaction '%v'", trans.Hash())
		}
	}
	return nil
}

// FetchReceipt returns the receipt of an included transaction, or nil while it is pending.
func (client *Client) FetchReceipt(ctx context.Context, hash hb.TxHash) (*types.Receipt, error) {
	txHash := common.HexToHash(address.TrimPrefixes(string(hash)))
	receipt, err := client.EthClient.TransactionReceipt(ctx, txHash)
	if err == ethereum.NotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetching receipt for tx %v : %v", hash, err)
	}
	return receipt, nil
}
