package address

import (
	"bytes"
	"fmt"

	"github.com/btcsuite/btcutil/base58"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	hb "github.com/cordialsys/hopbridge"
	"github.com/vedhavyas/go-subkey/v2"
)

// Generic substrate prefix, the format most wallets show on test networks
const GenericPrefix uint16 = 42

// AddressBuilder for SS58 addresses
type AddressBuilder struct {
	chainPrefix uint16
}

var _ hb.AddressBuilder = AddressBuilder{}

func NewAddressBuilder(chainPrefix uint16) AddressBuilder {
	return AddressBuilder{chainPrefix: chainPrefix}
}

// GetAddressFromPublicKey returns an Address given a public key
func (ab AddressBuilder) GetAddressFromPublicKey(publicKeyBytes []byte) (hb.Address, error) {
	if len(publicKeyBytes) == 33 {
		// drop address identifier?
		publicKeyBytes = publicKeyBytes[1:]
	}
	if len(publicKeyBytes) != 32 {
		return hb.Address(""), fmt.Errorf("invalid sr25519 public key, expecting %d bytes but got %d", 32, len(publicKeyBytes))
	}
	addr := subkey.SS58Encode(publicKeyBytes, ab.chainPrefix)
	return hb.Address(addr), nil
}

func DecodeMulti(addr hb.Address) (types.MultiAddress, error) {
	decodedVal := base58.Decode(string(addr))
	if len(decodedVal) < 34 {
		return types.MultiAddress{}, fmt.Errorf("address %s is too short", addr)
	}
	newAddr, err := types.NewMultiAddressFromAccountID(last32DropChecksum(decodedVal))
	if err != nil {
		return types.MultiAddress{}, fmt.Errorf("invalid address %s: %v", addr, err)
	}
	return newAddr, nil
}

// Decoding address without checking the checksum
func last32DropChecksum(decoded []byte) []byte {
	// drop the 2 checksum bytes
	decoded = decoded[:len(decoded)-2]
	// take the last 32 bytes (ignores the 1-2 byte prefix)
	return decoded[len(decoded)-32:]
}

func Decode(addr hb.Address) (*types.AccountID, error) {
	decodedVal := base58.Decode(string(addr))
	if len(decodedVal) < 34 {
		return &types.AccountID{}, fmt.Errorf("address %s is too short", addr)
	}
	newAddr, err := types.NewAccountID(last32DropChecksum(decodedVal))
	if err != nil {
		return &types.AccountID{}, fmt.Errorf("invalid address %s: %v", addr, err)
	}
	return newAddr, nil
}

// SameAccount reports whether two SS58 addresses, possibly with different
// prefixes, refer to the same account id.
func SameAccount(a hb.Address, b hb.Address) bool {
	idA, err := Decode(a)
	if err != nil {
		return false
	}
	idB, err := Decode(b)
	if err != nil {
		return false
	}
	return bytes.Equal(idA.ToBytes(), idB.ToBytes())
}

// Reencode returns the address under another SS58 prefix.
func Reencode(addr hb.Address, prefix uint16) (hb.Address, error) {
	id, err := Decode(addr)
	if err != nil {
		return "", err
	}
	return NewAddressBuilder(prefix).GetAddressFromPublicKey(id.ToBytes())
}
