package setup

import (
	"fmt"
	"os"

	hb "github.com/cordialsys/hopbridge"
	"github.com/cordialsys/hopbridge/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type Args struct {
	Env            hb.Env
	EvmRpc         string
	HubWs          string
	Registry       string
	OverridesPath  string
	VerbosityCount int
}

func AddArgs(cmd *cobra.Command) {
	cmd.PersistentFlags().String("env", os.Getenv("HOP_ENV"), fmt.Sprintf("Environment to use (may set HOP_ENV env var), one of %v. Defaults to the configured env.", hb.EnvList))
	cmd.PersistentFlags().String("evm-rpc", "", "EVM RPC url to use. Optional.")
	cmd.PersistentFlags().String("hub-ws", "", "Hub websocket url to use. Optional.")
	cmd.PersistentFlags().String("registry", "", "Path to the asset registry json. Optional.")
	cmd.PersistentFlags().String("overrides", os.Getenv("HOP_OVERRIDES"), "Path to a toml file of per-network overrides (may set HOP_OVERRIDES env var).")
	cmd.PersistentFlags().CountP("verbose", "v", "Set verbosity.")
}

func ArgsFromCmd(cmd *cobra.Command) (*Args, error) {
	envArg, _ := cmd.Flags().GetString("env")
	evmRpc, _ := cmd.Flags().GetString("evm-rpc")
	hubWs, _ := cmd.Flags().GetString("hub-ws")
	registry, _ := cmd.Flags().GetString("registry")
	overrides, _ := cmd.Flags().GetString("overrides")
	count, _ := cmd.Flags().GetCount("verbose")

	var env hb.Env
	if envArg != "" {
		var err error
		env, err = hb.ParseEnv(envArg)
		if err != nil {
			return nil, err
		}
	}
	return &Args{
		Env:            env,
		EvmRpc:         evmRpc,
		HubWs:          hubWs,
		Registry:       registry,
		OverridesPath:  overrides,
		VerbosityCount: count,
	}, nil
}

// ConfigureLogger honors HOP_LOG_LEVEL unless -v is given, and is quiet otherwise.
func ConfigureLogger(args *Args) {
	level := ""
	if args.VerbosityCount > 0 || os.Getenv(config.LogLevelEnv) == "" {
		level = config.VerbosityLevel(args.VerbosityCount)
	}
	config.ConfigureLogger(level)
	logrus.WithField("level", logrus.GetLevel().String()).Debug("configured logger")
}
