package commands

import (
	hb "github.com/cordialsys/hopbridge"
	"github.com/cordialsys/hopbridge/cmd/hop/setup"
	"github.com/spf13/cobra"
)

type edgeQuote struct {
	Edge     string                 `json:"edge" yaml:"edge"`
	Protocol hb.Protocol            `json:"protocol" yaml:"protocol"`
	Fee      hb.AmountBlockchain    `json:"fee" yaml:"fee"`
	FeeHuman hb.AmountHumanReadable `json:"fee_human" yaml:"fee_human"`
	FeeAsset hb.ContractAddress     `json:"fee_asset,omitempty" yaml:"fee_asset,omitempty"`
}

// native fee assets of each side
const evmNativeDecimals = 18
const hubNativeDecimals = 10

func feeDecimals(edge hb.Edge) int32 {
	if edge.From.IsEvm() {
		return evmNativeDecimals
	}
	return hubNativeDecimals
}

func CmdQuote() *cobra.Command {
	format := ""
	cmd := &cobra.Command{
		Use:   "quote <from> <to> <token>",
		Short: "Quote the delivery fee of every edge of a transfer.",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			session := setup.UnwrapSession(cmd.Context())
			route, token, err := resolveTransfer(cmd, session, args[0], args[1], args[2])
			if err != nil {
				return err
			}
			quoter, err := session.Quoter()
			if err != nil {
				return err
			}
			quotes := []edgeQuote{}
			for _, edge := range route.Steps {
				quote, err := quoter.Quote(cmd.Context(), edge, token)
				if err != nil {
					return err
				}
				quotes = append(quotes, edgeQuote{
					Edge:     edge.String(),
					Protocol: quote.Protocol,
					Fee:      quote.Amount,
					FeeHuman: quote.Amount.ToHuman(feeDecimals(edge)),
					FeeAsset: quote.FeeAsset,
				})
			}
			return printData(cmd, format, quotes)
		},
	}
	addFormatFlag(cmd, &format)
	return cmd
}

func resolveTransfer(cmd *cobra.Command, session *setup.Session, from string, to string, tokenRef string) (hb.Route, hb.TokenInfo, error) {
	snapshot, err := session.Snapshot(cmd.Context())
	if err != nil {
		return hb.Route{}, hb.TokenInfo{}, err
	}
	source, err := snapshot.ResolveNode(from)
	if err != nil {
		return hb.Route{}, hb.TokenInfo{}, err
	}
	dest, err := snapshot.ResolveNode(to)
	if err != nil {
		return hb.Route{}, hb.TokenInfo{}, err
	}
	token, err := snapshot.ResolveToken(tokenRef)
	if err != nil {
		return hb.Route{}, hb.TokenInfo{}, err
	}
	resolver, err := session.Resolver(cmd.Context())
	if err != nil {
		return hb.Route{}, hb.TokenInfo{}, err
	}
	route, err := resolver.Resolve(source, dest)
	if err != nil {
		return hb.Route{}, hb.TokenInfo{}, err
	}
	return route, token, nil
}
