package hopbridge

import (
	"regexp"
	"strings"
)

// Address is an address on the blockchain, either sender or recipient
type Address string

// ContractAddress is a smart contract address
type ContractAddress Address

// TxHash is the hash of a submitted transaction or extrinsic
type TxHash string

// AddressBuilder is the interface for building addresses
type AddressBuilder interface {
	GetAddressFromPublicKey(publicKeyBytes []byte) (Address, error)
}

var hexAddressPattern = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)

// IsHexAddress reports whether the address is a 20 byte 0x-prefixed hex address.
func IsHexAddress[T ~string](addr T) bool {
	return hexAddressPattern.MatchString(string(addr))
}

// IsSS58 is a shallow shape check for SS58 addresses. Full checksum
// validation happens when the substrate driver decodes the address.
func IsSS58(addr Address) bool {
	s := strings.TrimSpace(string(addr))
	if len(s) < 5 || strings.HasPrefix(s, "0x") {
		return false
	}
	for _, c := range s {
		// base58 alphabet excludes 0, O, I, l
		if !strings.ContainsRune("123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz", c) {
			return false
		}
	}
	return true
}

// Normalize lowercases hex addresses; SS58 is case sensitive and left alone.
func (addr Address) Normalize() Address {
	if IsHexAddress(addr) {
		return Address(strings.ToLower(string(addr)))
	}
	return Address(strings.TrimSpace(string(addr)))
}

func (addr ContractAddress) Normalize() ContractAddress {
	return ContractAddress(Address(addr).Normalize())
}
