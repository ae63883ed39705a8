package hopbridge

import (
	"fmt"

	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types/codec"
)

type UnsignedKind string

const (
	UnsignedEvm       UnsignedKind = "evm"
	UnsignedSubstrate UnsignedKind = "substrate"
)

// UnsignedTransfer is the payload handed to a signing gateway. The set of
// variants is closed: *EvmCall and *SubstrateCall.
type UnsignedTransfer interface {
	Kind() UnsignedKind
	// Sender the payload must be signed by
	Sender() Address
	unsigned()
}

// EvmCall is an unsigned contract call.
type EvmCall struct {
	From  Address          `json:"from"`
	To    ContractAddress  `json:"to"`
	Data  []byte           `json:"data"`
	Value AmountBlockchain `json:"value"`

	// Token allowance the sender must grant `To` before this call can succeed
	Allowance *Allowance `json:"allowance,omitempty"`
}

type Allowance struct {
	Token  ContractAddress  `json:"token"`
	Amount AmountBlockchain `json:"amount"`
}

// SubstrateCall is an unsigned extrinsic call.
type SubstrateCall struct {
	From Address `json:"from"`

	// "<Pallet>.<call>", e.g. "PolkadotXcm.transfer_assets"
	Method string     `json:"method"`
	Call   types.Call `json:"-"`
	// Overrides the estimated tip when set
	Tip *uint64 `json:"tip,omitempty"`
}

var _ UnsignedTransfer = &EvmCall{}
var _ UnsignedTransfer = &SubstrateCall{}

func (*EvmCall) Kind() UnsignedKind { return UnsignedEvm }

func (c *EvmCall) Sender() Address { return c.From }

func (*EvmCall) unsigned() {}

func (*SubstrateCall) Kind() UnsignedKind { return UnsignedSubstrate }

func (c *SubstrateCall) Sender() Address { return c.From }

func (*SubstrateCall) unsigned() {}

// EncodedCall returns the SCALE encoding of the call (index followed by args).
func (c *SubstrateCall) EncodedCall() ([]byte, error) {
	return codec.Encode(c.Call)
}

func (c *SubstrateCall) String() string {
	bz, err := c.EncodedCall()
	if err != nil {
		return fmt.Sprintf("%s(<invalid: %v>)", c.Method, err)
	}
	return fmt.Sprintf("%s(%s)", c.Method, codec.HexEncodeToString(bz))
}
