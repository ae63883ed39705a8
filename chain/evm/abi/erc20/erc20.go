package erc20

import (
	_ "embed"
	"fmt"
	"math/big"
	"strings"

	hb "github.com/cordialsys/hopbridge"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

//go:embed abi.json
var abiJson string
var erc20Abi abi.ABI

func NewAbi() abi.ABI {
	a, err := abi.JSON(strings.NewReader(abiJson))
	if err != nil {
		panic(err)
	}
	return a
}
func init() {
	erc20Abi = NewAbi()
}

func BalanceOf(owner common.Address) ([]byte, error) {
	return erc20Abi.Pack("balanceOf", owner)
}

func Allowance(owner common.Address, spender common.Address) ([]byte, error) {
	return erc20Abi.Pack("allowance", owner, spender)
}

func Approve(spender common.Address, amount hb.AmountBlockchain) ([]byte, error) {
	return erc20Abi.Pack("approve", spender, amount.Int())
}

func Decimals() ([]byte, error) {
	return erc20Abi.Pack("decimals")
}

func Symbol() ([]byte, error) {
	return erc20Abi.Pack("symbol")
}

// ParseAmount decodes the uint256 output of balanceOf or allowance.
func ParseAmount(method string, output []byte) (hb.AmountBlockchain, error) {
	values, err := erc20Abi.Unpack(method, output)
	if err != nil {
		return hb.AmountBlockchain{}, err
	}
	amount, ok := values[0].(*big.Int)
	if !ok {
		return hb.AmountBlockchain{}, fmt.Errorf("unexpected %s output %T", method, values[0])
	}
	return hb.NewAmountBlockchainFromBig(amount), nil
}

func ParseDecimals(output []byte) (int, error) {
	values, err := erc20Abi.Unpack("decimals", output)
	if err != nil {
		return 0, err
	}
	decimals, ok := values[0].(uint8)
	if !ok {
		return 0, fmt.Errorf("unexpected decimals output %T", values[0])
	}
	return int(decimals), nil
}

func ParseSymbol(output []byte) (string, error) {
	values, err := erc20Abi.Unpack("symbol", output)
	if err != nil {
		return "", err
	}
	symbol, ok := values[0].(string)
	if !ok {
		return "", fmt.Errorf("unexpected symbol output %T", values[0])
	}
	return symbol, nil
}

// MethodOf returns the erc20 method a calldata payload invokes.
func MethodOf(data []byte) (string, bool) {
	if len(data) < 4 {
		return "", false
	}
	method, err := erc20Abi.MethodById(data[:4])
	if err != nil {
		return "", false
	}
	return method.RawName, true
}

// UnpackApprove returns the spender and amount of an approve call.
func UnpackApprove(data []byte) (common.Address, hb.AmountBlockchain, error) {
	if name, ok := MethodOf(data); !ok || name != "approve" {
		return common.Address{}, hb.AmountBlockchain{}, fmt.Errorf("not an approve call")
	}
	values, err := erc20Abi.Methods["approve"].Inputs.Unpack(data[4:])
	if err != nil {
		return common.Address{}, hb.AmountBlockchain{}, err
	}
	return values[0].(common.Address), hb.NewAmountBlockchainFromBig(values[1].(*big.Int)), nil
}
