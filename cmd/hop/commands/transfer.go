package commands

import (
	"context"
	"fmt"

	hb "github.com/cordialsys/hopbridge"
	"github.com/cordialsys/hopbridge/builder"
	"github.com/cordialsys/hopbridge/cmd/hop/setup"
	"github.com/cordialsys/hopbridge/errors"
	"github.com/cordialsys/hopbridge/executor"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type previewEdge struct {
	Edge    string     `json:"edge" yaml:"edge"`
	Fee     string     `json:"fee,omitempty" yaml:"fee,omitempty"`
	Sender  hb.Address `json:"sender,omitempty" yaml:"sender,omitempty"`
	Kind    string     `json:"kind,omitempty" yaml:"kind,omitempty"`
	Target  string     `json:"target,omitempty" yaml:"target,omitempty"`
	DataLen int        `json:"data_len,omitempty" yaml:"data_len,omitempty"`
	Value   string     `json:"value,omitempty" yaml:"value,omitempty"`
	Error   string     `json:"error,omitempty" yaml:"error,omitempty"`
	Logs    []string   `json:"logs,omitempty" yaml:"logs,omitempty"`
}

type failureOutput struct {
	TransferID     string           `json:"transfer_id" yaml:"transfer_id"`
	FailedPhase    int              `json:"failed_phase" yaml:"failed_phase"`
	Status         errors.Status    `json:"status" yaml:"status"`
	Error          string           `json:"error" yaml:"error"`
	Logs           []string         `json:"logs,omitempty" yaml:"logs,omitempty"`
	InFlightTxHash hb.TxHash        `json:"in_flight_tx_hash,omitempty" yaml:"in_flight_tx_hash,omitempty"`
	PhaseResults   []hb.PhaseResult `json:"phase_results" yaml:"phase_results"`
}

func CmdTransfer() *cobra.Command {
	var recipient string
	var sender string
	var hubAddress string
	var tip uint64
	var ensureAllowance bool
	var dryRun bool
	var resume string
	format := ""

	cmd := &cobra.Command{
		Use:     "transfer <from> <to> <token> <amount>",
		Aliases: []string{"tf"},
		Short:   "Move a token across the bridge. The amount is a decimal amount.",
		Long: `Runs every phase of the route, signing with the configured keys.
Every run is a new transfer with its own id. A transfer that fails after its
first phase keeps the confirmed phases; running the same command with
--resume <id> continues from the first unconfirmed phase.`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			session := setup.UnwrapSession(cmd.Context())
			ctx := cmd.Context()
			route, token, err := resolveTransfer(cmd, session, args[0], args[1], args[2])
			if err != nil {
				return err
			}
			if recipient == "" {
				return fmt.Errorf("--recipient is required")
			}
			from := hb.Address(sender)
			if from == "" {
				from, err = signerAddress(session, route.From)
				if err != nil {
					return err
				}
			}
			options := []hb.PreparedOption{}
			if hubAddress != "" {
				options = append(options, hb.OptionHubAddress(hb.Address(hubAddress)))
			}
			if resume != "" {
				options = append(options, hb.OptionResume(resume))
			}
			prepared, err := hb.NewPreparedTransfer(session.Env, route.From, route.To, from, hb.Address(recipient), token, args[3], options...)
			if err != nil {
				return err
			}
			builderOptions := []builder.BuilderOption{}
			if cmd.Flags().Changed("tip") {
				builderOptions = append(builderOptions, builder.OptionTip(tip))
			}
			if ensureAllowance {
				builderOptions = append(builderOptions, builder.OptionEnsureAllowance(true))
			}

			logrus.WithFields(logrus.Fields{
				"transfer": prepared.ID(),
				"route":    route.Label,
				"token":    token.String(),
				"amount":   prepared.AmountBase().String(),
			}).Info("prepared transfer")

			if dryRun {
				preview, err := previewTransfer(ctx, session, route, prepared, builderOptions)
				if err != nil {
					return err
				}
				return printData(cmd, format, preview)
			}

			exec, err := session.Executor(route, ensureAllowance, executor.WithBuilderOptions(builderOptions...))
			if err != nil {
				return err
			}
			progress := executor.ObserverFunc(func(event executor.Event) {
				fmt.Fprintln(cmd.ErrOrStderr(), event.String())
			})
			result, err := exec.Execute(ctx, route, prepared, progress, executor.LogObserver{Logger: logrus.WithField("transfer", prepared.ID())})
			if err != nil {
				if failure, ok := err.(*hb.PhaseFailure); ok {
					_ = printData(cmd, format, failureOutput{
						TransferID:     prepared.ID(),
						FailedPhase:    failure.FailedEdgeIndex + 1,
						Status:         errors.StatusOf(err),
						Error:          failure.Cause.Error(),
						Logs:           errors.LogsOf(err),
						InFlightTxHash: failure.InFlightTxHash,
						PhaseResults:   failure.PhaseResults,
					})
				}
				return err
			}
			return printData(cmd, format, result)
		},
	}
	cmd.Flags().StringVar(&recipient, "recipient", "", "Address receiving the funds on the destination chain. Required.")
	cmd.Flags().StringVar(&sender, "sender", "", "Address sending the funds. Defaults to the address of the configured key.")
	cmd.Flags().StringVar(&hubAddress, "hub-address", "", "Hub account that relays a two phase transfer. Defaults to the recipient.")
	cmd.Flags().Uint64Var(&tip, "tip", 0, "Tip of hub extrinsics, in planck. Defaults to the estimate.")
	cmd.Flags().BoolVar(&ensureAllowance, "ensure-allowance", false, "Approve the gateway to spend the token first when needed.")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Quote and build each phase without signing anything.")
	cmd.Flags().StringVar(&resume, "resume", "", "Id of a failed transfer to continue. The other arguments must match it.")
	addFormatFlag(cmd, &format)
	return cmd
}

// previewTransfer quotes and builds every edge without signing. A later edge
// may fail validation because its funds only arrive once earlier edges run.
func previewTransfer(ctx context.Context, session *setup.Session, route hb.Route, prepared *hb.PreparedTransfer, options []builder.BuilderOption) ([]previewEdge, error) {
	quoter, err := session.Quoter()
	if err != nil {
		return nil, err
	}
	b, err := session.Builder()
	if err != nil {
		return nil, err
	}
	preview := []previewEdge{}
	for _, edge := range route.Steps {
		entry := previewEdge{Edge: edge.String()}
		quote, err := quoter.Quote(ctx, edge, prepared.Token())
		if err != nil {
			entry.Error = err.Error()
			preview = append(preview, entry)
			continue
		}
		entry.Fee = quote.Amount.String()
		args, err := builder.NewTransferArgs(prepared.HolderOf(edge.From), prepared.HolderOf(edge.To), prepared.Token(), prepared.AmountBase(), options...)
		if err != nil {
			return nil, err
		}
		unsigned, err := b.Build(ctx, edge, args, quote)
		if err != nil {
			entry.Error = err.Error()
			entry.Logs = errors.LogsOf(err)
			preview = append(preview, entry)
			continue
		}
		entry.Sender = unsigned.Sender()
		switch call := unsigned.(type) {
		case *hb.EvmCall:
			entry.Kind = "evm"
			entry.Target = string(call.To)
			entry.DataLen = len(call.Data)
			entry.Value = call.Value.String()
		case *hb.SubstrateCall:
			entry.Kind = "extrinsic"
			entry.Target = call.Method
		}
		preview = append(preview, entry)
	}
	return preview, nil
}
