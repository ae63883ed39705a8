package gateway

import (
	_ "embed"
	"fmt"
	"math/big"
	"strings"

	hb "github.com/cordialsys/hopbridge"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

//go:embed abi.json
var abiJson string
var gatewayAbi abi.ABI

const MethodSendToken = "sendToken"
const MethodQuoteSendTokenFee = "quoteSendTokenFee"
const MethodIsTokenRegistered = "isTokenRegistered"

// MultiAddress kinds understood by the gateway
const (
	KindIndex     uint8 = 0
	KindAddress32 uint8 = 1
	KindAddress20 uint8 = 2
)

func NewAbi() abi.ABI {
	a, err := abi.JSON(strings.NewReader(abiJson))
	if err != nil {
		panic(err)
	}
	return a
}
func init() {
	gatewayAbi = NewAbi()
}

// MultiAddress is the recipient encoding of sendToken.
type MultiAddress struct {
	Kind uint8
	Data []byte
}

func Address32(accountID [32]byte) MultiAddress {
	return MultiAddress{Kind: KindAddress32, Data: accountID[:]}
}

// ToUint128 fails when the amount is negative or does not fit in 128 bits.
func ToUint128(amount hb.AmountBlockchain) (*big.Int, error) {
	if amount.Sign() < 0 {
		return nil, fmt.Errorf("amount %s is negative", amount.String())
	}
	v, overflow := uint256.FromBig(amount.Int())
	if overflow || v.BitLen() > 128 {
		return nil, fmt.Errorf("amount %s exceeds uint128", amount.String())
	}
	return v.ToBig(), nil
}

func SendToken(token common.Address, paraID uint32, recipient MultiAddress, destinationFee hb.AmountBlockchain, amount hb.AmountBlockchain) ([]byte, error) {
	fee, err := ToUint128(destinationFee)
	if err != nil {
		return nil, fmt.Errorf("destination fee: %v", err)
	}
	amt, err := ToUint128(amount)
	if err != nil {
		return nil, err
	}
	return gatewayAbi.Pack(MethodSendToken, token, paraID, recipient, fee, amt)
}

func QuoteSendTokenFee(token common.Address, paraID uint32, destinationFee hb.AmountBlockchain) ([]byte, error) {
	fee, err := ToUint128(destinationFee)
	if err != nil {
		return nil, fmt.Errorf("destination fee: %v", err)
	}
	return gatewayAbi.Pack(MethodQuoteSendTokenFee, token, paraID, fee)
}

func ParseQuoteSendTokenFee(output []byte) (hb.AmountBlockchain, error) {
	values, err := gatewayAbi.Unpack(MethodQuoteSendTokenFee, output)
	if err != nil {
		return hb.AmountBlockchain{}, err
	}
	fee, ok := values[0].(*big.Int)
	if !ok {
		return hb.AmountBlockchain{}, fmt.Errorf("unexpected %s output %T", MethodQuoteSendTokenFee, values[0])
	}
	return hb.NewAmountBlockchainFromBig(fee), nil
}

func IsTokenRegistered(token common.Address) ([]byte, error) {
	return gatewayAbi.Pack(MethodIsTokenRegistered, token)
}

func ParseIsTokenRegistered(output []byte) (bool, error) {
	values, err := gatewayAbi.Unpack(MethodIsTokenRegistered, output)
	if err != nil {
		return false, err
	}
	registered, ok := values[0].(bool)
	if !ok {
		return false, fmt.Errorf("unexpected %s output %T", MethodIsTokenRegistered, values[0])
	}
	return registered, nil
}

// MethodOf returns the gateway method a calldata payload invokes.
func MethodOf(data []byte) (string, bool) {
	if len(data) < 4 {
		return "", false
	}
	method, err := gatewayAbi.MethodById(data[:4])
	if err != nil {
		return "", false
	}
	return method.RawName, true
}
