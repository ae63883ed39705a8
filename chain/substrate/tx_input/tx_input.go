package tx_input

import (
	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	hb "github.com/cordialsys/hopbridge"
	"github.com/shopspring/decimal"
)

// TxInput for an extrinsic on the hub
type TxInput struct {
	Meta          Metadata             `json:"meta,omitempty"`
	GenesisHash   types.Hash           `json:"genesis_hash,omitempty"`
	CurHash       types.Hash           `json:"current_hash,omitempty"`
	Rv            types.RuntimeVersion `json:"runtime_version,omitempty"`
	CurrentHeight uint64               `json:"current_height,omitempty"`
	Tip           uint64               `json:"tip,omitempty"`
	Nonce         uint64               `json:"account_nonce,omitempty"`
}

func NewTxInput() *TxInput {
	return &TxInput{}
}

func (input *TxInput) ApplyTipMultiplier(multiplier decimal.Decimal) {
	multipliedTip := multiplier.Mul(decimal.NewFromInt(int64(input.Tip)))
	input.Tip = multipliedTip.BigInt().Uint64()
}

// CapTip limits the tip to max.
func (input *TxInput) CapTip(max uint64) {
	if input.Tip > max {
		input.Tip = max
	}
}

func (input *TxInput) GetMaxFee() hb.AmountBlockchain {
	// very simple, just tip!
	return hb.NewAmountBlockchainFromUint64(input.Tip)
}
