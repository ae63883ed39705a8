package client

import (
	"context"
	"fmt"

	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	hb "github.com/cordialsys/hopbridge"
	"github.com/cordialsys/hopbridge/chain/evm/address"
	dotaddress "github.com/cordialsys/hopbridge/chain/substrate/address"
	"github.com/cordialsys/hopbridge/chain/substrate/xcm"
)

// AccountInfo contains a subset of what a parachain may return in order to maximize decoding iteroperability.
// To see other fields, see types.AccountInfo
type AccountInfoMinimal struct {
	Nonce       types.U32
	Consumers   types.U32
	Providers   types.U32
	Sufficients types.U32
	Data        struct {
		Free types.U128
		// skip fields after this point as we don't need them
	}
}

// AssetAccountMinimal is the leading field of a pallet-assets account entry.
type AssetAccountMinimal struct {
	Balance types.U128
	// status, reason and extra are not needed
}

// AssetLocation is where the hub finds token.
//
// Parachain tokens listed by an ERC-20 contract are bridged Ethereum tokens
// that parachain accepts, and the hub keys them by their Ethereum location.
// A parachain token without a contract is that parachain's native currency:
// the relay's at para id 0, otherwise a sibling's at {parents: 1, Parachain(id)}.
// Currencies a sibling keys below its root (pallet instance, general key) are
// not described by the registry and cannot be located.
func AssetLocation(token hb.TokenInfo) (xcm.Location, error) {
	switch token.Origin {
	case hb.OriginEvm:
		return ethereumLocation(token)
	case hb.OriginParachain:
		if token.Address != "" {
			if token.ChainID == 0 {
				return xcm.Location{}, fmt.Errorf("token %s on parachain %d has a contract but no ethereum chain id", token.Symbol, token.ParachainID)
			}
			return ethereumLocation(token)
		}
		if token.ParachainID == 0 {
			return xcm.RelayNative(), nil
		}
		return xcm.SiblingParachain(token.ParachainID), nil
	default:
		return xcm.Location{}, fmt.Errorf("token %s has unknown origin '%s'", token.Symbol, token.Origin)
	}
}

func ethereumLocation(token hb.TokenInfo) (xcm.Location, error) {
	key, err := address.FromHex(token.Address)
	if err != nil {
		return xcm.Location{}, fmt.Errorf("token %s: %v", token.Symbol, err)
	}
	return xcm.EthereumToken(token.ChainID, [20]byte(key)), nil
}

// IsNative reports whether location is the hub's own balance currency.
func IsNative(location xcm.Location) bool {
	return location.Parents == 1 && len(location.Interior) == 0
}

// FetchNativeBalance fetches the free balance of addr
func (client *Client) FetchNativeBalance(ctx context.Context, addr hb.Address) (hb.AmountBlockchain, error) {
	zero := hb.NewAmountBlockchainFromUint64(0)
	if err := client.connected(); err != nil {
		return zero, err
	}
	meta, err := client.DotClient.RPC.State.GetMetadataLatest()
	if err != nil {
		return zero, err
	}

	addrBz, err := dotaddress.Decode(addr)
	if err != nil {
		return zero, err
	}

	key, err := types.CreateStorageKey(meta, "System", "Account", addrBz.ToBytes())
	if err != nil {
		return zero, err
	}

	var acctInfo AccountInfoMinimal
	ok, err := client.DotClient.RPC.State.GetStorageLatest(key, &acctInfo)
	if err != nil {
		return zero, err
	}
	if !ok {
		return zero, nil
	}
	return freeBalance(acctInfo), nil
}

func freeBalance(info AccountInfoMinimal) hb.AmountBlockchain {
	if info.Data.Free.Int == nil {
		return hb.NewAmountBlockchainFromUint64(0)
	}
	return hb.NewAmountBlockchainFromBig(info.Data.Free.Int)
}

// FetchAssetBalance fetches the ForeignAssets balance of addr for location.
// An account with no entry holds zero.
func (client *Client) FetchAssetBalance(ctx context.Context, location xcm.Location, addr hb.Address) (hb.AmountBlockchain, error) {
	zero := hb.NewAmountBlockchainFromUint64(0)
	if err := client.connected(); err != nil {
		return zero, err
	}
	meta, err := client.DotClient.RPC.State.GetMetadataLatest()
	if err != nil {
		return zero, err
	}
	locationBz, err := location.Bytes()
	if err != nil {
		return zero, err
	}
	addrBz, err := dotaddress.Decode(addr)
	if err != nil {
		return zero, err
	}
	key, err := types.CreateStorageKey(meta, "ForeignAssets", "Account", locationBz, addrBz.ToBytes())
	if err != nil {
		return zero, err
	}
	var account AssetAccountMinimal
	ok, err := client.DotClient.RPC.State.GetStorageLatest(key, &account)
	if err != nil {
		return zero, err
	}
	if !ok || account.Balance.Int == nil {
		return zero, nil
	}
	return hb.NewAmountBlockchainFromBig(account.Balance.Int), nil
}

// AssetExists reports whether the hub has a ForeignAssets entry for location.
func (client *Client) AssetExists(ctx context.Context, location xcm.Location) (bool, error) {
	if err := client.connected(); err != nil {
		return false, err
	}
	meta, err := client.DotClient.RPC.State.GetMetadataLatest()
	if err != nil {
		return false, err
	}
	locationBz, err := location.Bytes()
	if err != nil {
		return false, err
	}
	key, err := types.CreateStorageKey(meta, "ForeignAssets", "Asset", locationBz)
	if err != nil {
		return false, err
	}
	raw, err := client.DotClient.RPC.State.GetStorageRawLatest(key)
	if err != nil {
		return false, err
	}
	return raw != nil && len(*raw) > 0, nil
}

// FetchBalance fetches the hub balance of token for addr.
func (client *Client) FetchBalance(ctx context.Context, token hb.TokenInfo, addr hb.Address) (hb.AmountBlockchain, error) {
	location, err := AssetLocation(token)
	if err != nil {
		return hb.AmountBlockchain{}, err
	}
	if IsNative(location) {
		return client.FetchNativeBalance(ctx, addr)
	}
	return client.FetchAssetBalance(ctx, location, addr)
}
