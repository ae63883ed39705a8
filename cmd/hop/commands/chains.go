package commands

import (
	hb "github.com/cordialsys/hopbridge"
	"github.com/cordialsys/hopbridge/cmd/hop/setup"
	"github.com/spf13/cobra"
)

type chainsOutput struct {
	Env        hb.Env    `json:"env" yaml:"env"`
	Hub        hb.Node   `json:"hub" yaml:"hub"`
	EvmChains  []hb.Node `json:"evm_chains" yaml:"evm_chains"`
	Parachains []hb.Node `json:"parachains" yaml:"parachains"`
}

func CmdChains() *cobra.Command {
	format := ""
	cmd := &cobra.Command{
		Use:   "chains",
		Short: "List the EVM chains and parachains of the environment.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			session := setup.UnwrapSession(cmd.Context())
			snapshot, err := session.Snapshot(cmd.Context())
			if err != nil {
				return err
			}
			chains, err := snapshot.ListChains(session.Env)
			if err != nil {
				return err
			}
			paras, err := snapshot.ListParachains(session.Env)
			if err != nil {
				return err
			}
			return printData(cmd, format, chainsOutput{
				Env:        session.Env,
				Hub:        snapshot.Hub(),
				EvmChains:  chains,
				Parachains: paras,
			})
		},
	}
	addFormatFlag(cmd, &format)
	return cmd
}
