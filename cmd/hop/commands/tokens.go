package commands

import (
	"github.com/cordialsys/hopbridge/cmd/hop/setup"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func CmdTokens() *cobra.Command {
	format := ""
	cmd := &cobra.Command{
		Use:   "tokens [from] [to]",
		Short: "List the registered tokens, or only those that can be moved from one chain to another.",
		Long: `Without arguments every token in the registry is listed.
Given a route, each token is checked by quoting every edge of the route, so this
makes network calls.`,
		Args: cobra.MatchAll(cobra.MaximumNArgs(2), func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return cobra.ExactArgs(2)(cmd, args)
			}
			return nil
		}),
		RunE: func(cmd *cobra.Command, args []string) error {
			session := setup.UnwrapSession(cmd.Context())
			snapshot, err := session.Snapshot(cmd.Context())
			if err != nil {
				return err
			}
			tokens, err := snapshot.ListTokens(session.Env)
			if err != nil {
				return err
			}
			if len(args) == 0 {
				return printData(cmd, format, tokens)
			}

			source, err := snapshot.ResolveNode(args[0])
			if err != nil {
				return err
			}
			dest, err := snapshot.ResolveNode(args[1])
			if err != nil {
				return err
			}
			resolver, err := session.Resolver(cmd.Context())
			if err != nil {
				return err
			}
			route, err := resolver.Resolve(source, dest)
			if err != nil {
				return err
			}
			quoter, err := session.Quoter()
			if err != nil {
				return err
			}
			supported, err := quoter.FilterSupported(cmd.Context(), route, tokens)
			if err != nil {
				return err
			}
			logrus.WithFields(logrus.Fields{
				"registered": len(tokens),
				"supported":  len(supported),
				"route":      route.Label,
			}).Info("filtered tokens")
			return printData(cmd, format, supported)
		},
	}
	addFormatFlag(cmd, &format)
	return cmd
}
