package client

import (
	"context"
	"fmt"

	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	hb "github.com/cordialsys/hopbridge"
	"github.com/cordialsys/hopbridge/builder"
	"github.com/cordialsys/hopbridge/chain/substrate/address"
	"github.com/cordialsys/hopbridge/chain/substrate/tx_input"
	"github.com/cordialsys/hopbridge/chain/substrate/xcm"
	"github.com/cordialsys/hopbridge/fee"
	"github.com/sirupsen/logrus"
)

// XcmQuote is the Detail of an xcm FeeQuote.
type XcmQuote struct {
	Location xcm.Location
	Tip      uint64
}

var _ fee.Oracle = &Client{}
var _ builder.EdgeBuilder = &Client{}
var _ builder.Validator = &Client{}

func checkXcmEdge(edge hb.Edge) error {
	if edge.Protocol != hb.ProtocolXcm {
		return fmt.Errorf("edge %s is not an xcm edge", edge)
	}
	if !edge.From.IsParachain() || !edge.To.IsParachain() {
		return fmt.Errorf("xcm edge must connect two parachains: %s", edge)
	}
	return nil
}

// DeliveryFee resolves where the hub keeps token and quotes the tip for the
// transfer extrinsic. Foreign assets the hub has not registered are unsupported.
func (client *Client) DeliveryFee(ctx context.Context, edge hb.Edge, token hb.TokenInfo) (hb.FeeQuote, error) {
	if err := checkXcmEdge(edge); err != nil {
		return hb.FeeQuote{}, err
	}
	location, err := AssetLocation(token)
	if err != nil {
		return hb.FeeQuote{}, err
	}
	if !IsNative(location) {
		exists, err := client.AssetExists(ctx, location)
		if err != nil {
			return hb.FeeQuote{}, fmt.Errorf("could not look up %s on the hub: %v", token.Symbol, err)
		}
		if !exists {
			return hb.FeeQuote{}, fmt.Errorf("token %s is not registered as a foreign asset on the hub", token)
		}
	}
	tip, err := client.EstimateTip(ctx)
	if err != nil {
		logrus.WithError(err).Warn("could not estimate tip")
	}
	tip = client.adjustTip(tip)
	return hb.FeeQuote{
		Protocol: hb.ProtocolXcm,
		Amount:   hb.NewAmountBlockchainFromUint64(tip),
		Detail: XcmQuote{
			Location: location,
			Tip:      tip,
		},
	}, nil
}

// TransferArgs are the arguments of transfer_assets, in order.
func TransferArgs(destParaID uint32, beneficiary [32]byte, asset xcm.Location, amount hb.AmountBlockchain) []interface{} {
	return []interface{}{
		xcm.VersionedLocation{Location: xcm.SiblingParachain(destParaID)},
		xcm.VersionedLocation{Location: xcm.LocalAccount(beneficiary)},
		xcm.VersionedAssets{Assets: []xcm.Asset{{ID: asset, Amount: amount.Int()}}},
		// fee_asset_item
		types.NewU32(0),
		xcm.Unlimited(),
	}
}

// Build returns the transfer_assets call sending args.Amount of the token to
// the recipient on edge.To.
func (client *Client) Build(ctx context.Context, edge hb.Edge, args builder.TransferArgs, quote hb.FeeQuote) (hb.UnsignedTransfer, error) {
	if err := checkXcmEdge(edge); err != nil {
		return nil, err
	}
	detail, hasDetail := quote.Detail.(XcmQuote)
	location := detail.Location
	if !hasDetail {
		var err error
		location, err = AssetLocation(args.GetToken())
		if err != nil {
			return nil, err
		}
	}
	if _, err := address.Decode(args.GetFrom()); err != nil {
		return nil, fmt.Errorf("sender: %v", err)
	}
	recipient, err := address.Decode(args.GetTo())
	if err != nil {
		return nil, fmt.Errorf("recipient: %v", err)
	}
	meta, err := client.CallMetadata(ctx)
	if err != nil {
		return nil, err
	}
	method, err := meta.TransferCall()
	if err != nil {
		return nil, err
	}
	call, err := tx_input.NewCall(meta, method, TransferArgs(edge.To.ParachainID, [32]byte(*recipient), location, args.GetAmount())...)
	if err != nil {
		return nil, err
	}
	unsigned := &hb.SubstrateCall{
		From:   args.GetFrom(),
		Method: method,
		Call:   call,
	}
	if tip, ok := args.GetTip(); ok {
		unsigned.Tip = &tip
	} else if hasDetail {
		tip := detail.Tip
		unsigned.Tip = &tip
	}
	return unsigned, nil
}

// Validate checks the sender holds the amount on the hub.
func (client *Client) Validate(ctx context.Context, edge hb.Edge, args builder.TransferArgs, unsigned hb.UnsignedTransfer) (builder.ValidationResult, error) {
	result := builder.NewValidationResult()
	call, ok := unsigned.(*hb.SubstrateCall)
	if !ok {
		return result, fmt.Errorf("xcm validation expects a substrate call, got %T", unsigned)
	}
	token := args.GetToken()
	amount := args.GetAmount()
	decimals := int32(token.Decimals)

	location, err := AssetLocation(token)
	if err != nil {
		return result, err
	}
	balance, err := client.FetchBalance(ctx, token, call.From)
	if err != nil {
		return result, err
	}
	if balance.Cmp(&amount) < 0 {
		if balance.IsZero() && !IsNative(location) {
			result.Fail("%s is not yet visible on the hub for %s; the bridged asset may still be in transit", token.Symbol, call.From)
		} else {
			result.Fail("insufficient %s balance on the hub: have %s, need %s", token.Symbol, balance.ToHuman(decimals).String(), amount.ToHuman(decimals).String())
		}
	}
	return result, nil
}
