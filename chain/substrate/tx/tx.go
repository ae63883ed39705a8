package tx

import (
	"fmt"

	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types/codec"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types/extrinsic"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types/extrinsic/extensions"
	hb "github.com/cordialsys/hopbridge"
	"github.com/cordialsys/hopbridge/chain/substrate/tx_input"
	"golang.org/x/crypto/blake2b"
)

// Tx is a signed-or-unsigned extrinsic carrying one call.
type Tx struct {
	extrinsic            extrinsic.DynamicExtrinsic
	meta                 tx_input.Metadata
	sender               types.MultiAddress
	genesisHash, curHash types.Hash
	rv                   types.RuntimeVersion
	tip, nonce           uint64
	signature            []byte
	payload              *extrinsic.Payload
}

func NewTx(call types.Call, sender types.MultiAddress, txInput *tx_input.TxInput) (*Tx, error) {
	tx := &Tx{
		meta:        txInput.Meta,
		extrinsic:   extrinsic.NewDynamicExtrinsic(&call),
		sender:      sender,
		nonce:       txInput.Nonce,
		genesisHash: txInput.GenesisHash,
		curHash:     txInput.CurHash,
		rv:          txInput.Rv,
		tip:         txInput.Tip,
	}
	err := tx.build()
	return tx, err
}

func (tx *Tx) build() error {
	if tx.extrinsic.Type() != types.ExtrinsicVersion4 {
		return fmt.Errorf("unsupported extrinsic version: %v (isSigned: %v, type: %v)", tx.extrinsic.Version, tx.extrinsic.IsSigned(), tx.extrinsic.Type())
	}
	encodedMethod, err := codec.Encode(tx.extrinsic.Method)
	if err != nil {
		return fmt.Errorf("encode method: %w", err)
	}
	fieldValues := extrinsic.SignedFieldValues{}

	opts := []extrinsic.SigningOption{
		extrinsic.WithEra(types.ExtrinsicEra{IsImmortalEra: true}, tx.genesisHash),
		extrinsic.WithNonce(types.NewUCompactFromUInt(tx.nonce)),
		extrinsic.WithTip(types.NewUCompactFromUInt(tx.tip)),
		extrinsic.WithSpecVersion(tx.rv.SpecVersion),
		extrinsic.WithTransactionVersion(tx.rv.TransactionVersion),
		extrinsic.WithGenesisHash(tx.genesisHash),
		extrinsic.WithMetadataMode(extensions.CheckMetadataModeDisabled, extensions.CheckMetadataHash{Hash: types.NewEmptyOption[types.H256]()}),
	}
	for _, opt := range opts {
		opt(fieldValues)
	}

	payload, err := tx_input.CreatePayload(&tx.meta, encodedMethod)
	if err != nil {
		return fmt.Errorf("creating payload: %w", err)
	}
	err = payload.MutateSignedFields(fieldValues)
	if err != nil {
		return fmt.Errorf("mutate signed fields: %w", err)
	}
	tx.payload = payload
	return nil
}

func HashSerialized(serialized []byte) []byte {
	hash := blake2b.Sum256(serialized)
	return hash[:]
}

// Hash returns the extrinsic hash
func (tx Tx) Hash() hb.TxHash {
	ser, err := tx.Serialize()
	if err != nil {
		return hb.TxHash("")
	}
	hash := HashSerialized(ser)
	return hb.TxHash(codec.HexEncodeToString(hash[:]))
}

// Sighash returns the payload to sign
func (tx Tx) Sighash() ([]byte, error) {
	b, err := codec.Encode(tx.payload)
	if err != nil {
		return nil, err
	}
	// if data is longer than 256 bytes, must hash it first
	if len(b) > 256 {
		h := blake2b.Sum256(b)
		b = h[:]
	}
	return b, nil
}

// SetSignature attaches a 64 byte sr25519 signature
func (tx *Tx) SetSignature(signature []byte) error {
	if len(signature) != 64 {
		return fmt.Errorf("expected 64 byte sr25519 signature, got %d", len(signature))
	}
	tx.extrinsic.Signature = &extrinsic.Signature{
		Signer: tx.sender,
		Signature: types.MultiSignature{
			IsSr25519: true,
			AsSr25519: types.NewSignature(signature),
		},
		SignedFields: tx.payload.SignedFields,
	}
	tx.extrinsic.Version |= types.ExtrinsicBitSigned
	tx.signature = signature
	return nil
}

func (tx Tx) Signature() []byte {
	return tx.signature
}

func (tx Tx) Signed() bool {
	return len(tx.signature) > 0
}

// Serialize returns the serialized tx
func (tx Tx) Serialize() ([]byte, error) {
	return codec.Encode(tx.extrinsic)
}
