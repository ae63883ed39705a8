package address

import (
	"crypto/ecdsa"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	hb "github.com/cordialsys/hopbridge"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// AddressBuilder for EVM
type AddressBuilder struct {
}

var _ hb.AddressBuilder = AddressBuilder{}

func NewAddressBuilder() AddressBuilder {
	return AddressBuilder{}
}

// GetAddressFromPublicKey returns an Address given a compressed or uncompressed secp256k1 public key
func (ab AddressBuilder) GetAddressFromPublicKey(publicKeyBytes []byte) (hb.Address, error) {
	var publicKey *ecdsa.PublicKey
	var err error
	if len(publicKeyBytes) == 33 {
		publicKey, err = crypto.DecompressPubkey(publicKeyBytes)
		if err != nil {
			return hb.Address(""), errors.New("invalid k256 public key")
		}
	} else {
		publicKey, err = crypto.UnmarshalPubkey(publicKeyBytes)
		if err != nil {
			return hb.Address(""), err
		}
	}

	address := crypto.PubkeyToAddress(*publicKey).Hex()
	// Lowercase the address is our normalized format
	return hb.Address(strings.ToLower(address)), nil
}

// FromHex decodes a 0x-prefixed 20 byte address.
func FromHex[T ~string](address T) (common.Address, error) {
	if !hb.IsHexAddress(address) {
		return common.Address{}, fmt.Errorf("invalid evm address '%s'", address)
	}
	return common.HexToAddress(TrimPrefixes(string(address))), nil
}

func TrimPrefixes(addressOrTxHash string) string {
	return strings.TrimPrefix(addressOrTxHash, "0x")
}

func DecodeHex(hexS string) ([]byte, error) {
	return hex.DecodeString(TrimPrefixes(hexS))
}

func Ensure0x(val string) string {
	if !strings.HasPrefix(val, "0x") {
		return "0x" + val
	}
	return val
}
