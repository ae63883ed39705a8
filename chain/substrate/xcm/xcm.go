// Package xcm encodes the XCM V4 types used by the transfer extrinsics.
package xcm

import (
	"fmt"
	"math/big"

	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types/codec"
)

// Versioned enum index of V4 for VersionedLocation and VersionedAssets
const V4 byte = 4

const maxJunctions = 8

type NetworkKind byte

const (
	NetworkByGenesis NetworkKind = 0
	NetworkPolkadot  NetworkKind = 2
	NetworkKusama    NetworkKind = 3
	NetworkWestend   NetworkKind = 4
	NetworkRococo    NetworkKind = 5
	NetworkEthereum  NetworkKind = 7
)

type NetworkID struct {
	Kind NetworkKind
	// Set for NetworkEthereum
	ChainID uint64
	// Set for NetworkByGenesis
	Genesis [32]byte
}

func Ethereum(chainID uint64) NetworkID {
	return NetworkID{Kind: NetworkEthereum, ChainID: chainID}
}

func (n NetworkID) Encode(encoder scale.Encoder) error {
	if err := encoder.PushByte(byte(n.Kind)); err != nil {
		return err
	}
	switch n.Kind {
	case NetworkEthereum:
		return encoder.EncodeUintCompact(*new(big.Int).SetUint64(n.ChainID))
	case NetworkByGenesis:
		return encoder.Write(n.Genesis[:])
	case NetworkPolkadot, NetworkKusama, NetworkWestend, NetworkRococo:
		return nil
	default:
		return fmt.Errorf("unsupported network kind %d", n.Kind)
	}
}

type JunctionKind byte

const (
	JunctionParachain       JunctionKind = 0
	JunctionAccountID32     JunctionKind = 1
	JunctionAccountKey20    JunctionKind = 3
	JunctionPalletInstance  JunctionKind = 4
	JunctionGeneralIndex    JunctionKind = 5
	JunctionGlobalConsensus JunctionKind = 9
)

type Junction struct {
	Kind JunctionKind

	ParaID uint32
	// Optional network of an account junction
	Network        *NetworkID
	AccountID      [32]byte
	Key            [20]byte
	PalletInstance uint8
	Index          *big.Int
	// Network of a GlobalConsensus junction
	Consensus NetworkID
}

func Parachain(id uint32) Junction {
	return Junction{Kind: JunctionParachain, ParaID: id}
}

func AccountID32(id [32]byte) Junction {
	return Junction{Kind: JunctionAccountID32, AccountID: id}
}

func AccountKey20(key [20]byte) Junction {
	return Junction{Kind: JunctionAccountKey20, Key: key}
}

func PalletInstance(index uint8) Junction {
	return Junction{Kind: JunctionPalletInstance, PalletInstance: index}
}

func GeneralIndex(index *big.Int) Junction {
	return Junction{Kind: JunctionGeneralIndex, Index: index}
}

func GlobalConsensus(network NetworkID) Junction {
	return Junction{Kind: JunctionGlobalConsensus, Consensus: network}
}

func encodeOptionalNetwork(encoder scale.Encoder, network *NetworkID) error {
	if network == nil {
		return encoder.PushByte(0)
	}
	if err := encoder.PushByte(1); err != nil {
		return err
	}
	return network.Encode(encoder)
}

func (j Junction) Encode(encoder scale.Encoder) error {
	if err := encoder.PushByte(byte(j.Kind)); err != nil {
		return err
	}
	switch j.Kind {
	case JunctionParachain:
		return encoder.EncodeUintCompact(*new(big.Int).SetUint64(uint64(j.ParaID)))
	case JunctionAccountID32:
		if err := encodeOptionalNetwork(encoder, j.Network); err != nil {
			return err
		}
		return encoder.Write(j.AccountID[:])
	case JunctionAccountKey20:
		if err := encodeOptionalNetwork(encoder, j.Network); err != nil {
			return err
		}
		return encoder.Write(j.Key[:])
	case JunctionPalletInstance:
		return encoder.PushByte(j.PalletInstance)
	case JunctionGeneralIndex:
		if j.Index == nil || j.Index.Sign() < 0 {
			return fmt.Errorf("general index must be set and non-negative")
		}
		return encoder.EncodeUintCompact(*j.Index)
	case JunctionGlobalConsensus:
		return j.Consensus.Encode(encoder)
	default:
		return fmt.Errorf("unsupported junction kind %d", j.Kind)
	}
}

// Location is a relative XCM location. Interior holds at most 8 junctions;
// an empty interior is "Here".
type Location struct {
	Parents  uint8
	Interior []Junction
}

func NewLocation(parents uint8, interior ...Junction) Location {
	return Location{Parents: parents, Interior: interior}
}

func (l Location) Encode(encoder scale.Encoder) error {
	if len(l.Interior) > maxJunctions {
		return fmt.Errorf("location has %d junctions, at most %d allowed", len(l.Interior), maxJunctions)
	}
	if err := encoder.PushByte(l.Parents); err != nil {
		return err
	}
	// Here = 0, X1..X8 = 1..8
	if err := encoder.PushByte(byte(len(l.Interior))); err != nil {
		return err
	}
	for _, junction := range l.Interior {
		if err := junction.Encode(encoder); err != nil {
			return err
		}
	}
	return nil
}

// Bytes returns the SCALE encoding, as used for storage keys.
func (l Location) Bytes() ([]byte, error) {
	return codec.Encode(l)
}

// Asset is a fungible amount of the asset identified by ID.
type Asset struct {
	ID     Location
	Amount *big.Int
}

func (a Asset) Encode(encoder scale.Encoder) error {
	if a.Amount == nil || a.Amount.Sign() < 0 {
		return fmt.Errorf("asset amount must be set and non-negative")
	}
	if err := a.ID.Encode(encoder); err != nil {
		return err
	}
	// Fungibility::Fungible
	if err := encoder.PushByte(0); err != nil {
		return err
	}
	return encoder.EncodeUintCompact(*a.Amount)
}

// VersionedLocation wraps a location as XCM V4.
type VersionedLocation struct {
	Location Location
}

func (v VersionedLocation) Encode(encoder scale.Encoder) error {
	if err := encoder.PushByte(V4); err != nil {
		return err
	}
	return v.Location.Encode(encoder)
}

// VersionedAssets wraps assets as XCM V4.
type VersionedAssets struct {
	Assets []Asset
}

func (v VersionedAssets) Encode(encoder scale.Encoder) error {
	if err := encoder.PushByte(V4); err != nil {
		return err
	}
	if err := encoder.EncodeUintCompact(*big.NewInt(int64(len(v.Assets)))); err != nil {
		return err
	}
	for _, asset := range v.Assets {
		if err := asset.Encode(encoder); err != nil {
			return err
		}
	}
	return nil
}

type WeightLimit struct {
	Unlimited bool
	RefTime   uint64
	ProofSize uint64
}

func Unlimited() WeightLimit {
	return WeightLimit{Unlimited: true}
}

func (w WeightLimit) Encode(encoder scale.Encoder) error {
	if w.Unlimited {
		return encoder.PushByte(0)
	}
	if err := encoder.PushByte(1); err != nil {
		return err
	}
	if err := encoder.EncodeUintCompact(*new(big.Int).SetUint64(w.RefTime)); err != nil {
		return err
	}
	return encoder.EncodeUintCompact(*new(big.Int).SetUint64(w.ProofSize))
}

// SiblingParachain is the location of another parachain as seen from a parachain.
// As an asset it names that parachain's native currency.
func SiblingParachain(paraID uint32) Location {
	return NewLocation(1, Parachain(paraID))
}

// LocalAccount is an account on the destination chain.
func LocalAccount(accountID [32]byte) Location {
	return NewLocation(0, AccountID32(accountID))
}

// RelayNative is the relay chain's native token as seen from a parachain.
func RelayNative() Location {
	return NewLocation(1)
}

// EthereumToken is a bridged ERC-20 as seen from a parachain.
func EthereumToken(chainID uint64, token [20]byte) Location {
	return NewLocation(2, GlobalConsensus(Ethereum(chainID)), AccountKey20(token))
}
