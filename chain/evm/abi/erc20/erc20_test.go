package erc20_test

import (
	"math/big"
	"testing"

	hb "github.com/cordialsys/hopbridge"
	"github.com/cordialsys/hopbridge/chain/evm/abi/erc20"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

func TestSelectors(t *testing.T) {
	require := require.New(t)
	owner := common.HexToAddress("0x00000000000000000000000000000000000000aa")
	spender := common.HexToAddress("0x5b4909ce6ca82d2ce23bd46738953c7959e710cd")

	data, err := erc20.BalanceOf(owner)
	require.NoError(err)
	require.Equal(crypto.Keccak256([]byte("balanceOf(address)"))[:4], data[:4])

	data, err = erc20.Allowance(owner, spender)
	require.NoError(err)
	require.Equal(crypto.Keccak256([]byte("allowance(address,address)"))[:4], data[:4])

	data, err = erc20.Approve(spender, hb.NewAmountBlockchainFromUint64(500))
	require.NoError(err)
	require.Equal(crypto.Keccak256([]byte("approve(address,uint256)"))[:4], data[:4])

	gotSpender, amount, err := erc20.UnpackApprove(data)
	require.NoError(err)
	require.Equal(spender, gotSpender)
	require.EqualValues(500, amount.Uint64())

	_, _, err = erc20.UnpackApprove(append([]byte{}, crypto.Keccak256([]byte("balanceOf(address)"))[:4]...))
	require.Error(err)
}

func TestParse(t *testing.T) {
	require := require.New(t)
	amount, err := erc20.ParseAmount("balanceOf", common.LeftPadBytes(big.NewInt(42).Bytes(), 32))
	require.NoError(err)
	require.EqualValues(42, amount.Uint64())

	decimals, err := erc20.ParseDecimals(common.LeftPadBytes([]byte{18}, 32))
	require.NoError(err)
	require.Equal(18, decimals)

	_, err = erc20.ParseAmount("allowance", []byte{1})
	require.Error(err)
}
