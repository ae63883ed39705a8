package client

import (
	"context"
	"fmt"

	hb "github.com/cordialsys/hopbridge"
	gatewayabi "github.com/cordialsys/hopbridge/chain/evm/abi/gateway"
	"github.com/cordialsys/hopbridge/chain/evm/address"
	dotaddress "github.com/cordialsys/hopbridge/chain/substrate/address"
	"github.com/cordialsys/hopbridge/builder"
	"github.com/cordialsys/hopbridge/errors"
	"github.com/cordialsys/hopbridge/fee"
	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
)

// GatewayQuote is the Detail of a gateway FeeQuote.
type GatewayQuote struct {
	ParaID         uint32
	DestinationFee hb.AmountBlockchain
}

var _ fee.Oracle = &Client{}
var _ builder.EdgeBuilder = &Client{}
var _ builder.Validator = &Client{}

func checkGatewayEdge(edge hb.Edge) error {
	if edge.Protocol != hb.ProtocolGateway {
		return fmt.Errorf("edge %s is not a gateway edge", edge)
	}
	if !edge.From.IsEvm() || !edge.To.IsParachain() {
		return fmt.Errorf("gateway edge must go from an evm chain to a parachain: %s", edge)
	}
	return nil
}

// IsTokenRegistered asks the gateway whether token can be bridged.
func (client *Client) IsTokenRegistered(ctx context.Context, token hb.ContractAddress) (bool, error) {
	tokenAddr, err := address.FromHex(token)
	if err != nil {
		return false, err
	}
	data, err := gatewayabi.IsTokenRegistered(tokenAddr)
	if err != nil {
		return false, err
	}
	output, err := client.call(ctx, nil, client.gateway, data, nil)
	if err != nil {
		return false, fmt.Errorf("could not query gateway registration of %s: %v", token, err)
	}
	return gatewayabi.ParseIsTokenRegistered(output)
}

// DeliveryFee quotes the ETH the gateway charges for sendToken.
func (client *Client) DeliveryFee(ctx context.Context, edge hb.Edge, token hb.TokenInfo) (hb.FeeQuote, error) {
	if err := checkGatewayEdge(edge); err != nil {
		return hb.FeeQuote{}, err
	}
	registered, err := client.IsTokenRegistered(ctx, token.Address)
	if err != nil {
		return hb.FeeQuote{}, err
	}
	if !registered {
		return hb.FeeQuote{}, fmt.Errorf("token %s is not registered with the gateway", token)
	}
	tokenAddr, _ := address.FromHex(token.Address)
	amount, err := client.QuoteSendTokenFee(ctx, tokenAddr, edge.To.ParachainID, client.destinationFee)
	if err != nil {
		return hb.FeeQuote{}, err
	}
	return hb.FeeQuote{
		Protocol: hb.ProtocolGateway,
		Amount:   amount,
		Detail: GatewayQuote{
			ParaID:         edge.To.ParachainID,
			DestinationFee: client.destinationFee,
		},
	}, nil
}

// QuoteSendTokenFee asks the gateway for the ETH sendToken costs with the given
// destination fee.
func (client *Client) QuoteSendTokenFee(ctx context.Context, token common.Address, paraID uint32, destinationFee hb.AmountBlockchain) (hb.AmountBlockchain, error) {
	data, err := gatewayabi.QuoteSendTokenFee(token, paraID, destinationFee)
	if err != nil {
		return hb.AmountBlockchain{}, err
	}
	output, err := client.call(ctx, nil, client.gateway, data, nil)
	if err != nil {
		return hb.AmountBlockchain{}, fmt.Errorf("quoteSendTokenFee: %v", err)
	}
	return gatewayabi.ParseQuoteSendTokenFee(output)
}

// Build returns the sendToken call paying quote.Amount as the bridge fee. A
// destination fee other than the quoted one is quoted again, so the value
// always matches the destination fee in the call.
func (client *Client) Build(ctx context.Context, edge hb.Edge, args builder.TransferArgs, quote hb.FeeQuote) (hb.UnsignedTransfer, error) {
	if err := checkGatewayEdge(edge); err != nil {
		return nil, err
	}
	token := args.GetToken()
	tokenAddr, err := address.FromHex(token.Address)
	if err != nil {
		return nil, err
	}
	if _, err := address.FromHex(args.GetFrom()); err != nil {
		return nil, fmt.Errorf("sender: %v", err)
	}
	recipient, err := dotaddress.Decode(args.GetTo())
	if err != nil {
		return nil, fmt.Errorf("recipient: %v", err)
	}
	destinationFee := client.destinationFee
	if detail, ok := quote.Detail.(GatewayQuote); ok {
		destinationFee = detail.DestinationFee
	}
	value := quote.Amount
	if override, ok := args.GetDestinationFee(); ok && override.Cmp(&destinationFee) != 0 {
		logrus.WithFields(logrus.Fields{
			"quoted_for":      destinationFee.String(),
			"destination_fee": override.String(),
		}).Debug("quoting bridge fee again")
		value, err = client.QuoteSendTokenFee(ctx, tokenAddr, edge.To.ParachainID, override)
		if err != nil {
			return nil, errors.Wrap(errors.FeeUnavailable, err, "could not quote destination fee %s", override.String())
		}
		destinationFee = override
	}
	data, err := gatewayabi.SendToken(
		tokenAddr,
		edge.To.ParachainID,
		gatewayabi.Address32(*recipient),
		destinationFee,
		args.GetAmount(),
	)
	if err != nil {
		return nil, err
	}
	return &hb.EvmCall{
		From:  args.GetFrom(),
		To:    client.Gateway(),
		Data:  data,
		Value: value,
		Allowance: &hb.Allowance{
			Token:  token.Address.Normalize(),
			Amount: args.GetAmount(),
		},
	}, nil
}

// Validate checks registration, balances and allowance, then simulates the call.
func (client *Client) Validate(ctx context.Context, edge hb.Edge, args builder.TransferArgs, unsigned hb.UnsignedTransfer) (builder.ValidationResult, error) {
	result := builder.NewValidationResult()
	call, ok := unsigned.(*hb.EvmCall)
	if !ok {
		return result, fmt.Errorf("gateway validation expects an evm call, got %T", unsigned)
	}
	token := args.GetToken()
	amount := args.GetAmount()
	decimals := int32(token.Decimals)

	registered, err := client.IsTokenRegistered(ctx, token.Address)
	if err != nil {
		return result, err
	}
	if !registered {
		result.Fail("token %s is not registered with the gateway", token.Symbol)
	}

	balance, err := client.FetchTokenBalance(ctx, token.Address, call.From)
	if err != nil {
		return result, err
	}
	if balance.Cmp(&amount) < 0 {
		result.Fail("insufficient %s balance: have %s, need %s", token.Symbol, balance.ToHuman(decimals).String(), amount.ToHuman(decimals).String())
	}

	allowanceOk := true
	allowance, err := client.Allowance(ctx, token.Address, call.From, call.To)
	if err != nil {
		return result, err
	}
	if allowance.Cmp(&amount) < 0 {
		allowanceOk = false
		if args.EnsureAllowanceEnabled() {
			logrus.WithFields(logrus.Fields{
				"token":     token.Symbol,
				"allowance": allowance.String(),
				"amount":    amount.String(),
			}).Info("allowance will be raised before sending")
		} else {
			result.Fail("gateway allowance for %s is %s, need %s", token.Symbol, allowance.ToHuman(decimals).String(), amount.ToHuman(decimals).String())
		}
	}

	native, err := client.FetchNativeBalance(ctx, call.From)
	if err != nil {
		return result, err
	}
	if native.Cmp(&call.Value) < 0 {
		result.Fail("insufficient ETH for the bridge fee: have %s, need %s wei", native.String(), call.Value.String())
	}

	// a sendToken without allowance always reverts, so only simulate when it could succeed
	if result.Success && allowanceOk {
		if err := client.SimulateCall(ctx, call); err != nil {
			result.Fail("simulation failed: %v", err)
		}
	}
	return result, nil
}
