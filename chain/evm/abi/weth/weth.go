package weth

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
var wethAbi abi.ABI

func NewAbi() abi.ABI {
	a, err := abi.JSON(strings.NewReader(abiJson))
	if err != nil {
		panic(err)
	}
	return a
}
func init() {
	wethAbi = NewAbi()
}

// Deposit wraps the attached msg.value into WETH.
func Deposit() ([]byte, error) {
	return wethAbi.Pack("deposit")
}

// Withdraw unwraps amount of WETH back to ETH.
func Withdraw(amount hb.AmountBlockchain) ([]byte, error) {
	return wethAbi.Pack("withdraw", amount.Int())
}

func BalanceOf(owner common.Address) ([]byte, error) {
	return wethAbi.Pack("balanceOf", owner)
}

// MethodOf returns the WETH method a calldata payload invokes.
func MethodOf(data []byte) (string, bool) {
	if len(data) < 4 {
		return "", false
	}
	method, err := wethAbi.MethodById(data[:4])
	if err != nil {
		return "", false
	}
	return method.RawName, true
}

// UnpackWithdraw returns the amount of a withdraw call.
func UnpackWithdraw(data []byte) (hb.AmountBlockchain, error) {
	if name, ok := MethodOf(data); !ok || name != "withdraw" {
		return hb.AmountBlockchain{}, fmt.Errorf("not a withdraw call")
	}
	values, err := wethAbi.Methods["withdraw"].Inputs.Unpack(data[4:])
	if err != nil {
		return hb.AmountBlockchain{}, err
	}
	return hb.NewAmountBlockchainFromBig(values[0].(*big.Int)), nil
}
