package builder

import (
	"fmt"

	hb "github.com/cordialsys/hopbridge"
)

// TransferArgs are the inputs for building one edge of a transfer.
type TransferArgs struct {
	options builderOptions
	from    hb.Address
	to      hb.Address
	token   hb.TokenInfo
	amount  hb.AmountBlockchain
}

// Transfer relevant arguments
func (args *TransferArgs) GetFrom() hb.Address            { return args.from }
func (args *TransferArgs) GetTo() hb.Address              { return args.to }
func (args *TransferArgs) GetToken() hb.TokenInfo         { return args.token }
func (args *TransferArgs) GetAmount() hb.AmountBlockchain { return args.amount }

// Exposed options
func (args *TransferArgs) GetDestinationFee() (hb.AmountBlockchain, bool) {
	return args.options.GetDestinationFee()
}
func (args *TransferArgs) GetTip() (uint64, bool)       { return args.options.GetTip() }
func (args *TransferArgs) EnsureAllowanceEnabled() bool { return args.options.EnsureAllowanceEnabled() }

func NewTransferArgs(from hb.Address, to hb.Address, token hb.TokenInfo, amount hb.AmountBlockchain, options ...BuilderOption) (TransferArgs, error) {
	args := TransferArgs{
		newBuilderOptions(),
		from,
		to,
		token,
		amount,
	}
	if amount.Sign() <= 0 {
		return args, fmt.Errorf("transfer amount must be positive, got %s", amount.String())
	}
	for _, opt := range options {
		err := opt(&args.options)
		if err != nil {
			return args, err
		}
	}

	return args, nil
}
