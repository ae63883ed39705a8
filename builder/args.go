package builder

import (
	hb "github.com/cordialsys/hopbridge"
)

// All possible builder arguments go in here, privately available.
// Then the public TransferArgs can select which arguments are needed.
type builderOptions struct {
	// gateway: fee reserved for execution on the destination parachain
	destinationFee *hb.AmountBlockchain
	// substrate: tip added to the extrinsic
	tip *uint64
	// evm: approve the gateway first when the allowance is short
	ensureAllowance bool
}

func newBuilderOptions() builderOptions {
	return builderOptions{}
}

func get[T any](arg *T) (T, bool) {
	if arg == nil {
		var zero T
		return zero, false
	}
	return *arg, true
}

func (opts *builderOptions) GetDestinationFee() (hb.AmountBlockchain, bool) {
	return get(opts.destinationFee)
}
func (opts *builderOptions) GetTip() (uint64, bool)       { return get(opts.tip) }
func (opts *builderOptions) EnsureAllowanceEnabled() bool { return opts.ensureAllowance }

type BuilderOption func(opts *builderOptions) error

func OptionDestinationFee(fee hb.AmountBlockchain) BuilderOption {
	return func(opts *builderOptions) error {
		opts.destinationFee = &fee
		return nil
	}
}

func OptionTip(tip uint64) BuilderOption {
	return func(opts *builderOptions) error {
		opts.tip = &tip
		return nil
	}
}

func OptionEnsureAllowance(enabled bool) BuilderOption {
	return func(opts *builderOptions) error {
		opts.ensureAllowance = enabled
		return nil
	}
}
