package commands

import (
	hb "github.com/cordialsys/hopbridge"
	"github.com/cordialsys/hopbridge/cmd/hop/setup"
	"github.com/spf13/cobra"
)

func CmdRoute() *cobra.Command {
	format := ""
	cmd := &cobra.Command{
		Use:   "route <from> [to]",
		Short: "Resolve the route between two chains, or list every route from a chain.",
		Long: `Chains are given as "evm", "evm:<chain-id>", "hub" or a parachain id.
Without [to], every destination reachable from <from> is listed.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			session := setup.UnwrapSession(cmd.Context())
			snapshot, err := session.Snapshot(cmd.Context())
			if err != nil {
				return err
			}
			resolver, err := session.Resolver(cmd.Context())
			if err != nil {
				return err
			}
			source, err := snapshot.ResolveNode(args[0])
			if err != nil {
				return err
			}
			if len(args) == 1 {
				routes, err := resolver.Candidates(source)
				if err != nil {
					return err
				}
				return printData(cmd, format, routes)
			}
			dest, err := snapshot.ResolveNode(args[1])
			if err != nil {
				return err
			}
			route, err := resolver.Resolve(source, dest)
			if err != nil {
				return err
			}
			return printData(cmd, format, []hb.Route{route})
		},
	}
	addFormatFlag(cmd, &format)
	return cmd
}
