package tx_input

import (
	hb "github.com/cordialsys/hopbridge"
	"github.com/shopspring/decimal"
)

// TxInput is the chain state needed to sign an EIP-1559 transaction.
type TxInput struct {
	Nonce    uint64 `json:"nonce,omitempty"`
	GasLimit uint64 `json:"gas_limit,omitempty"`
	// DynamicFeeTx
	GasTipCap hb.AmountBlockchain `json:"gas_tip_cap,omitempty"` // maxPriorityFeePerGas
	GasFeeCap hb.AmountBlockchain `json:"gas_fee_cap,omitempty"` // maxFeePerGas

	ChainId hb.AmountBlockchain `json:"chain_id,omitempty"`
}

func NewTxInput() *TxInput {
	return &TxInput{}
}

// ApplyTipMultiplier scales the priority fee, raising the fee cap if it no longer covers the tip.
func (input *TxInput) ApplyTipMultiplier(multiplier decimal.Decimal) {
	multipliedTipCap := multiplier.Mul(decimal.NewFromBigInt(input.GasTipCap.Int(), 0)).BigInt()
	input.GasTipCap = hb.NewAmountBlockchainFromBig(multipliedTipCap)

	if input.GasFeeCap.Cmp(&input.GasTipCap) < 0 {
		// increase max fee cap to accomodate tip if needed
		input.GasFeeCap = input.GasTipCap
	}
}

// GetFeeLimit is the most the transaction can spend on gas.
func (input *TxInput) GetFeeLimit() hb.AmountBlockchain {
	gasLimit := hb.NewAmountBlockchainFromUint64(input.GasLimit)
	return input.GasFeeCap.Mul(&gasLimit)
}
