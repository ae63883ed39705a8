package commands

import (
	"fmt"

	hb "github.com/cordialsys/hopbridge"
	"github.com/cordialsys/hopbridge/cmd/hop/setup"
	"github.com/cordialsys/hopbridge/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type wrapOutput struct {
	Action      string              `json:"action" yaml:"action"`
	Address     hb.Address          `json:"address" yaml:"address"`
	Weth        hb.ContractAddress  `json:"weth" yaml:"weth"`
	Amount      hb.AmountBlockchain `json:"amount" yaml:"amount"`
	TxHash      hb.TxHash           `json:"tx_hash,omitempty" yaml:"tx_hash,omitempty"`
	BlockNumber uint64              `json:"block_number,omitempty" yaml:"block_number,omitempty"`
	Success     bool                `json:"success" yaml:"success"`
}

func CmdWrap() *cobra.Command {
	return cmdWeth("wrap", "Convert ETH into WETH so it can be bridged.")
}

func CmdUnwrap() *cobra.Command {
	return cmdWeth("unwrap", "Convert WETH back into ETH.")
}

func cmdWeth(action string, short string) *cobra.Command {
	var sender string
	var dryRun bool
	format := ""
	cmd := &cobra.Command{
		Use:   action + " <amount>",
		Short: short,
		Long: `The amount is a decimal amount of ETH. The WETH contract is the "weth" setting
of the network.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session := setup.UnwrapSession(cmd.Context())
			ctx := cmd.Context()
			amount, err := hb.ToBaseUnits(args[0], 18)
			if err != nil {
				return err
			}
			if amount.Sign() <= 0 {
				return errors.InvalidAmountf("amount to %s must be positive", action)
			}
			wethAddress := session.Network.Weth
			if wethAddress == "" {
				return fmt.Errorf("no weth contract configured for %s", session.Env)
			}
			from := hb.Address(sender)
			if from == "" {
				signer, err := session.EvmSigner(false)
				if err != nil {
					return fmt.Errorf("must provide --sender: %v", err)
				}
				from = signer.Address()
			}
			client, err := session.EvmClient()
			if err != nil {
				return err
			}
			var call *hb.EvmCall
			if action == "wrap" {
				call, err = client.WrapCall(ctx, from, wethAddress, amount)
			} else {
				call, err = client.UnwrapCall(ctx, from, wethAddress, amount)
			}
			if err != nil {
				return err
			}
			output := wrapOutput{
				Action:  action,
				Address: from,
				Weth:    wethAddress,
				Amount:  amount,
			}
			if dryRun {
				return printData(cmd, format, output)
			}

			signer, err := session.EvmSigner(false)
			if err != nil {
				return err
			}
			hash, err := signer.SignAndSubmitEvm(ctx, call)
			if err != nil {
				return err
			}
			log := logrus.WithFields(logrus.Fields{
				"action": action,
				"hash":   hash,
			})
			log.Info("submitted, waiting for receipt")
			receipt, err := signer.AwaitEvmConfirmation(ctx, hash)
			if err != nil {
				return err
			}
			output.TxHash = receipt.TxHash
			output.BlockNumber = receipt.BlockNumber
			output.Success = receipt.Success
			if !receipt.Success {
				_ = printData(cmd, format, output)
				return errors.SubmissionFailedf("%s %s reverted", action, hash)
			}
			log.WithField("block", receipt.BlockNumber).Info("confirmed")
			return printData(cmd, format, output)
		},
	}
	cmd.Flags().StringVar(&sender, "sender", "", "Address holding the funds. Defaults to the address of the configured key.")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Check the balance and build the call without signing it.")
	addFormatFlag(cmd, &format)
	return cmd
}
