package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/cordialsys/hopbridge/cmd/hop/commands"
	"github.com/cordialsys/hopbridge/cmd/hop/setup"
	"github.com/spf13/cobra"
)

func CmdHop() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "hop",
		Short:        "Move tokens from an EVM chain to Polkadot parachains over the bridge",
		Args:         cobra.ExactArgs(0),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			args, err := setup.ArgsFromCmd(cmd)
			if err != nil {
				return err
			}
			setup.ConfigureLogger(args)

			session, err := setup.NewSession(args)
			if err != nil {
				return err
			}
			cmd.SetContext(setup.WrapSession(cmd.Context(), session))
			return nil
		},
	}
	setup.AddArgs(cmd)

	cmd.AddCommand(commands.CmdChains())
	cmd.AddCommand(commands.CmdTokens())
	cmd.AddCommand(commands.CmdRoute())
	cmd.AddCommand(commands.CmdQuote())
	cmd.AddCommand(commands.CmdTransfer())
	cmd.AddCommand(commands.CmdBalance())
	cmd.AddCommand(commands.CmdWrap())
	cmd.AddCommand(commands.CmdUnwrap())

	return cmd
}

func main() {
	// an interrupt stops a transfer before its next phase
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	rootCmd := CmdHop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
