package setup

import (
	"context"
	"fmt"
	"sync"

	hb "github.com/cordialsys/hopbridge"
	"github.com/cordialsys/hopbridge/builder"
	"github.com/cordialsys/hopbridge/catalog"
	evmclient "github.com/cordialsys/hopbridge/chain/evm/client"
	evmsigner "github.com/cordialsys/hopbridge/chain/evm/signer"
	dotclient "github.com/cordialsys/hopbridge/chain/substrate/client"
	dotsigner "github.com/cordialsys/hopbridge/chain/substrate/signer"
	"github.com/cordialsys/hopbridge/config"
	"github.com/cordialsys/hopbridge/executor"
	"github.com/cordialsys/hopbridge/fee"
	"github.com/cordialsys/hopbridge/gateway"
	"github.com/cordialsys/hopbridge/route"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Quotes made while listing tokens, per second
const ListQuoteRate = 5

// Session wires the components of one environment. Clients are connected on
// first use.
type Session struct {
	Config  *config.Config
	Env     hb.Env
	Network *config.Network
	Store   *catalog.Store

	lock      sync.Mutex
	evmClient *evmclient.Client
	hubClient *dotclient.Client
}

func NewSession(args *Args) (*Session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	overrides, err := LoadOverrides(args.OverridesPath)
	if err != nil {
		return nil, err
	}
	if err := ApplyOverrides(cfg, overrides); err != nil {
		return nil, err
	}
	env := args.Env
	if env == "" {
		env = cfg.Env
	}
	network, err := cfg.Network(env)
	if err != nil {
		return nil, err
	}
	if args.EvmRpc != "" {
		network.EvmRpc = args.EvmRpc
	}
	if args.HubWs != "" {
		network.HubWs = args.HubWs
	}
	if args.Registry != "" {
		network.Registry = args.Registry
	}
	if err := network.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %v", env, err)
	}
	logrus.WithFields(logrus.Fields{
		"env":      env,
		"evm_rpc":  network.EvmRpc,
		"hub_ws":   network.HubWs,
		"registry": network.Registry,
	}).Info("network")

	loader := catalog.FileLoader(network.HubParaID, map[hb.Env]string{env: network.Registry})
	return &Session{
		Config:  cfg,
		Env:     env,
		Network: network,
		Store:   catalog.NewStore(loader),
	}, nil
}

func (s *Session) Snapshot(ctx context.Context) (*catalog.Snapshot, error) {
	return s.Store.Select(ctx, s.Env)
}

func (s *Session) Resolver(ctx context.Context) (*route.Resolver, error) {
	snapshot, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return route.NewResolver(snapshot), nil
}

func (s *Session) EvmClient() (*evmclient.Client, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.evmClient != nil {
		return s.evmClient, nil
	}
	destinationFee, err := s.Network.DestinationFeeAmount()
	if err != nil {
		return nil, err
	}
	client, err := evmclient.NewClient(s.Network.EvmRpc, s.Network.Gateway, evmclient.WithDestinationFee(destinationFee))
	if err != nil {
		return nil, err
	}
	s.evmClient = client
	return client, nil
}

func (s *Session) HubClient() (*dotclient.Client, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.hubClient != nil {
		return s.hubClient, nil
	}
	client, err := dotclient.NewClient(s.Network.HubWs,
		dotclient.WithSS58Prefix(s.Network.SS58Prefix),
		dotclient.WithMaxTip(s.Network.MaxTip),
	)
	if err != nil {
		return nil, err
	}
	s.hubClient = client
	return client, nil
}

func (s *Session) Quoter() (*fee.Quoter, error) {
	evm, err := s.EvmClient()
	if err != nil {
		return nil, err
	}
	hub, err := s.HubClient()
	if err != nil {
		return nil, err
	}
	return fee.NewQuoter(
		fee.WithOracle(hb.ProtocolGateway, evm),
		fee.WithOracle(hb.ProtocolXcm, hub),
		fee.WithQuoteRate(rate.Limit(ListQuoteRate), 1),
	), nil
}

func (s *Session) Builder() (*builder.Builder, error) {
	evm, err := s.EvmClient()
	if err != nil {
		return nil, err
	}
	hub, err := s.HubClient()
	if err != nil {
		return nil, err
	}
	return builder.NewBuilder().
		Register(hb.ProtocolGateway, evm).
		Register(hb.ProtocolXcm, hub), nil
}

// EvmSigner loads the EVM key of the network.
func (s *Session) EvmSigner(ensureAllowance bool) (*evmsigner.Signer, error) {
	key, err := s.Network.EvmKey.Load()
	if err != nil {
		return nil, fmt.Errorf("could not load evm key: %v", err)
	}
	if key == "" {
		return nil, fmt.Errorf("no evm key, set %s or evm_key in the config", evmsigner.EnvPrivateKey)
	}
	client, err := s.EvmClient()
	if err != nil {
		return nil, err
	}
	options := []evmsigner.SignerOption{evmsigner.WithEnsureAllowance(ensureAllowance)}
	if s.Network.PollInterval > 0 {
		options = append(options, evmsigner.WithPollInterval(s.Network.PollInterval))
	}
	return evmsigner.NewSigner(client, key, options...)
}

// SubstrateSigner loads the hub key of the network.
func (s *Session) SubstrateSigner() (*dotsigner.Signer, error) {
	uri, err := s.Network.SubstrateKey.Load()
	if err != nil {
		return nil, fmt.Errorf("could not load substrate key: %v", err)
	}
	if uri == "" {
		return nil, fmt.Errorf("no substrate key, set %s or substrate_key in the config", dotsigner.EnvSecretURI)
	}
	client, err := s.HubClient()
	if err != nil {
		return nil, err
	}
	return dotsigner.NewSigner(client, uri)
}

// Dispatcher signs with whichever keys the route needs.
func (s *Session) Dispatcher(route hb.Route, ensureAllowance bool) (*gateway.Dispatcher, error) {
	var evm gateway.EvmGateway
	var substrate gateway.SubstrateGateway
	for _, edge := range route.Steps {
		switch {
		case edge.From.IsEvm() && evm == nil:
			signer, err := s.EvmSigner(ensureAllowance)
			if err != nil {
				return nil, err
			}
			evm = signer
		case edge.From.IsParachain() && substrate == nil:
			signer, err := s.SubstrateSigner()
			if err != nil {
				return nil, err
			}
			substrate = signer
		}
	}
	return gateway.NewDispatcher(evm, substrate), nil
}

func (s *Session) Executor(route hb.Route, ensureAllowance bool, options ...executor.Option) (*executor.Executor, error) {
	quoter, err := s.Quoter()
	if err != nil {
		return nil, err
	}
	b, err := s.Builder()
	if err != nil {
		return nil, err
	}
	dispatcher, err := s.Dispatcher(route, ensureAllowance)
	if err != nil {
		return nil, err
	}
	snapshot, err := s.Snapshot(context.Background())
	if err != nil {
		return nil, err
	}
	options = append([]executor.Option{
		executor.WithJournal(executor.NewFileJournal(s.Config.Journal)),
		executor.WithHub(snapshot.Hub()),
	}, options...)
	return executor.New(quoter, b, dispatcher, options...), nil
}
