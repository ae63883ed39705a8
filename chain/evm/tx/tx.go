package tx

import (
	"fmt"

	hb "github.com/cordialsys/hopbridge"
	evmaddress "github.com/cordialsys/hopbridge/chain/evm/address"
	"github.com/cordialsys/hopbridge/chain/evm/tx_input"
	"github.com/ethereum/go-ethereum/core/types"
)

// Tx is an EIP-1559 transaction carrying one unsigned call.
type Tx struct {
	call  *hb.EvmCall
	input *tx_input.TxInput

	signature []byte
}

func NewTx(call *hb.EvmCall, input *tx_input.TxInput) *Tx {
	return &Tx{
		call:  call,
		input: input,
	}
}

func (tx *Tx) signer() types.Signer {
	return types.LatestSignerForChainID(tx.input.ChainId.Int())
}

func (tx *Tx) BuildEthTx() (*types.Transaction, error) {
	if tx.call == nil || tx.input == nil {
		return nil, fmt.Errorf("transaction not initialized")
	}
	destination, err := evmaddress.FromHex(tx.call.To)
	if err != nil {
		return nil, err
	}
	ethTx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   tx.input.ChainId.Int(),
		Nonce:     tx.input.Nonce,
		GasTipCap: tx.input.GasTipCap.Int(),
		GasFeeCap: tx.input.GasFeeCap.Int(),
		Gas:       tx.input.GasLimit,
		To:        &destination,
		Value:     tx.call.Value.Int(),
		Data:      tx.call.Data,
	})
	if len(tx.signature) > 0 {
		ethTx, err = ethTx.WithSignature(tx.signer(), tx.signature)
		if err != nil {
			return nil, err
		}
	}
	return ethTx, nil
}

// Sighash returns the payload to sign
func (tx *Tx) Sighash() ([]byte, error) {
	ethTx, err := tx.BuildEthTx()
	if err != nil {
		return nil, err
	}
	return tx.signer().Hash(ethTx).Bytes(), nil
}

// SetSignature adds a 65 byte [R || S || V] signature
func (tx *Tx) SetSignature(signature []byte) error {
	if len(signature) != 65 {
		return fmt.Errorf("expected 65 byte signature, got %d", len(signature))
	}
	tx.signature = signature
	return nil
}

// Hash returns the tx hash
func (tx *Tx) Hash() hb.TxHash {
	ethTx, err := tx.BuildEthTx()
	if err != nil {
		return hb.TxHash("")
	}
	return hb.TxHash(ethTx.Hash().Hex())
}

func (tx *Tx) Serialize() ([]byte, error) {
	ethTx, err := tx.BuildEthTx()
	if err != nil {
		return nil, err
	}
	return ethTx.MarshalBinary()
}
