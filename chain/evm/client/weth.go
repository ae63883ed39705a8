package client

import (
	"context"

	hb "github.com/cordialsys/hopbridge"
	"github.com/cordialsys/hopbridge/chain/evm/abi/weth"
	"github.com/cordialsys/hopbridge/errors"
	"github.com/sirupsen/logrus"
)

// WrapCall builds a WETH deposit converting amount of ETH held by from.
func (client *Client) WrapCall(ctx context.Context, from hb.Address, wethAddress hb.ContractAddress, amount hb.AmountBlockchain) (*hb.EvmCall, error) {
	if amount.Sign() <= 0 {
		return nil, errors.InvalidAmountf("amount to wrap must be positive")
	}
	balance, err := client.FetchNativeBalance(ctx, from)
	if err != nil {
		return nil, err
	}
	if balance.Cmp(&amount) < 0 {
		return nil, errors.ValidationFailedf(nil, "insufficient ETH to wrap: have %s, need %s",
			balance.ToHuman(18).String(), amount.ToHuman(18).String())
	}
	data, err := weth.Deposit()
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"weth":   wethAddress,
		"amount": amount.String(),
	}).Debug("built wrap call")
	return &hb.EvmCall{
		From:  from,
		To:    wethAddress,
		Data:  data,
		Value: amount,
	}, nil
}

// UnwrapCall builds a WETH withdraw returning amount of WETH held by from to ETH.
func (client *Client) UnwrapCall(ctx context.Context, from hb.Address, wethAddress hb.ContractAddress, amount hb.AmountBlockchain) (*hb.EvmCall, error) {
	if amount.Sign() <= 0 {
		return nil, errors.InvalidAmountf("amount to unwrap must be positive")
	}
	balance, err := client.FetchTokenBalance(ctx, wethAddress, from)
	if err != nil {
		return nil, err
	}
	if balance.Cmp(&amount) < 0 {
		return nil, errors.ValidationFailedf(nil, "insufficient WETH to unwrap: have %s, need %s",
			balance.ToHuman(18).String(), amount.ToHuman(18).String())
	}
	data, err := weth.Withdraw(amount)
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"weth":   wethAddress,
		"amount": amount.String(),
	}).Debug("built unwrap call")
	return &hb.EvmCall{
		From:  from,
		To:    wethAddress,
		Data:  data,
		Value: hb.NewAmountBlockchainFromUint64(0),
	}, nil
}
