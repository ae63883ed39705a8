package commands

import (
	"fmt"

	hb "github.com/cordialsys/hopbridge"
	"github.com/cordialsys/hopbridge/cmd/hop/setup"
	"github.com/spf13/cobra"
)

type balanceOutput struct {
	Chain   string                 `json:"chain" yaml:"chain"`
	Address hb.Address             `json:"address" yaml:"address"`
	Token   string                 `json:"token" yaml:"token"`
	Balance hb.AmountBlockchain    `json:"balance" yaml:"balance"`
	Human   hb.AmountHumanReadable `json:"human" yaml:"human"`
}

func CmdBalance() *cobra.Command {
	format := ""
	cmd := &cobra.Command{
		Use:   "balance <chain> <token> [address]",
		Short: "Check the balance of a token on the EVM chain or the hub.",
		Long: `When [address] is omitted, the address of the configured key for that chain
is used.`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			session := setup.UnwrapSession(cmd.Context())
			snapshot, err := session.Snapshot(cmd.Context())
			if err != nil {
				return err
			}
			node, err := snapshot.ResolveNode(args[0])
			if err != nil {
				return err
			}
			token, err := snapshot.ResolveToken(args[1])
			if err != nil {
				return err
			}
			var addr hb.Address
			if len(args) > 2 {
				addr = hb.Address(args[2])
			} else {
				addr, err = signerAddress(session, node)
				if err != nil {
					return err
				}
			}

			var balance hb.AmountBlockchain
			switch {
			case node.IsEvm():
				client, err := session.EvmClient()
				if err != nil {
					return err
				}
				balance, err = client.FetchTokenBalance(cmd.Context(), token.Address, addr)
				if err != nil {
					return fmt.Errorf("could not fetch balance for address %s: %v", addr, err)
				}
			case snapshot.IsHub(node):
				client, err := session.HubClient()
				if err != nil {
					return err
				}
				balance, err = client.FetchBalance(cmd.Context(), token, addr)
				if err != nil {
					return fmt.Errorf("could not fetch balance for address %s: %v", addr, err)
				}
			default:
				return fmt.Errorf("balances can only be read on the EVM chain or the hub, not %s", node)
			}
			return printData(cmd, format, balanceOutput{
				Chain:   node.String(),
				Address: addr,
				Token:   token.Symbol,
				Balance: balance,
				Human:   balance.ToHuman(int32(token.Decimals)),
			})
		},
	}
	addFormatFlag(cmd, &format)
	return cmd
}

// signerAddress is the address of the configured key for node.
func signerAddress(session *setup.Session, node hb.Node) (hb.Address, error) {
	if node.IsEvm() {
		signer, err := session.EvmSigner(false)
		if err != nil {
			return "", fmt.Errorf("must provide an address: %v", err)
		}
		return signer.Address(), nil
	}
	signer, err := session.SubstrateSigner()
	if err != nil {
		return "", fmt.Errorf("must provide an address: %v", err)
	}
	return signer.Address(), nil
}
