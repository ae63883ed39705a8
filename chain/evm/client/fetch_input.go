package client

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	hb "github.com/cordialsys/hopbridge"
	"github.com/cordialsys/hopbridge/chain/evm/address"
	"github.com/cordialsys/hopbridge/chain/evm/tx_input"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

func (client *Client) DefaultGasLimit(call *hb.EvmCall) uint64 {
	// Set absolute gas limits for safety
	if len(call.Data) > 0 {
		// gateway sendToken is a few hundred thousand gas
		return 500_000
	}
	return 90_000
}

// Simulate a call to get the estimated gas limit
func (client *Client) SimulateGasWithLimit(ctx context.Context, call *hb.EvmCall) (uint64, error) {
	zero := big.NewInt(0)
	fromAddr, err := address.FromHex(call.From)
	if err != nil {
		return 0, err
	}
	toAddr, err := address.FromHex(call.To)
	if err != nil {
		return 0, err
	}
	msg := ethereum.CallMsg{
		From: fromAddr,
		To:   &toAddr,
		// use a high limit just for the estimation
		Gas:        8_000_000,
		GasPrice:   zero,
		GasFeeCap:  zero,
		GasTipCap:  zero,
		Value:      call.Value.Int(),
		Data:       call.Data,
		AccessList: types.AccessList{},
	}
	gasLimit, err := client.EthClient.EstimateGas(ctx, msg)
	if err != nil {
		logrus.WithError(err).Debug("could not estimate gas fully")
	}
	if err != nil && strings.Contains(err.Error(), "insufficient funds") {
		// try getting gas estimate without sending funds
		msg.Value = zero
		gasLimit, err = client.EthClient.EstimateGas(ctx, msg)
	} else if err != nil && strings.Contains(err.Error(), "less than the block's baseFeePerGas") {
		// this estimate does not work with hardhat -> use defaults
		return client.DefaultGasLimit(call), nil
	}
	if err != nil {
		return 0, fmt.Errorf("could not simulate tx: %v", err)
	}

	// contract calls sometimes spend more than simulated
	if len(msg.Data) > 0 {
		gasLimit += 1_000
	}
	if gasLimit == 0 {
		gasLimit = client.DefaultGasLimit(call)
	}
	return gasLimit, nil
}

func (client *Client) GetNonce(ctx context.Context, from hb.Address) (uint64, error) {
	fromAddr, err := address.FromHex(from)
	if err != nil {
		return 0, fmt.Errorf("bad from address '%v': %v", from, err)
	}
	nonce, err := client.EthClient.PendingNonceAt(ctx, fromAddr)
	if err != nil {
		return 0, err
	}
	return nonce, nil
}

// FetchTxInput returns everything needed to sign the call as an EIP-1559 transaction.
func (client *Client) FetchTxInput(ctx context.Context, call *hb.EvmCall) (*tx_input.TxInput, error) {
	input, err := client.FetchUnsimulatedInput(ctx, call.From)
	if err != nil {
		return input, err
	}
	input.GasLimit, err = client.SimulateGasWithLimit(ctx, call)
	if err != nil {
		return nil, err
	}
	return input, nil
}

// FetchUnsimulatedInput returns the nonce, chain id and fee caps for a sender.
func (client *Client) FetchUnsimulatedInput(ctx context.Context, from hb.Address) (*tx_input.TxInput, error) {
	result := tx_input.NewTxInput()

	// Gas tip (priority fee) calculation
	result.GasTipCap = hb.NewAmountBlockchainFromUint64(DEFAULT_GAS_TIP)
	result.GasFeeCap = hb.NewAmountBlockchainFromUint64(0)

	// Nonce
	nonce, err := client.GetNonce(ctx, from)
	if err != nil {
		return result, err
	}
	result.Nonce = nonce

	// chain ID
	chainId, err := client.EthClient.ChainID(ctx)
	if err != nil {
		return result, fmt.Errorf("could not lookup chain_id: %v", err)
	}
	result.ChainId = hb.NewAmountBlockchainFromBig(chainId)

	// Gas
	latestHeader, err := client.EthClient.HeaderByNumber(ctx, nil)
	if err != nil {
		return result, err
	}
	gasTipCap, err := client.EthClient.SuggestGasTipCap(ctx)
	if err != nil {
		return result, err
	}
	if latestHeader.BaseFee != nil {
		// leave room for the base fee to double before inclusion
		result.GasFeeCap = hb.NewAmountBlockchainFromBig(new(big.Int).Mul(latestHeader.BaseFee, big.NewInt(2)))
	}
	result.GasTipCap = hb.NewAmountBlockchainFromBig(gasTipCap)
	result.ApplyTipMultiplier(decimal.NewFromFloat(client.tipMultiplier))

	tip := result.GasTipCap
	result.GasFeeCap = result.GasFeeCap.Add(&tip)
	return result, nil
}
