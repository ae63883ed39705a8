package config

import (
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"time"

	hb "github.com/cordialsys/hopbridge"
	"github.com/cordialsys/hopbridge/config/constants"
)

// Section of hop.yaml holding the Config.
const Section = "hop"

// Network holds the endpoints and contracts of one environment.
type Network struct {
	// JSON-RPC of the EVM chain
	EvmRpc     string `yaml:"evm_rpc,omitempty"`
	EvmChainID uint64 `yaml:"evm_chain_id,omitempty"`
	// Bridge gateway contract on the EVM chain
	Gateway hb.ContractAddress `yaml:"gateway,omitempty"`
	// WETH contract used by wrap and unwrap
	Weth hb.ContractAddress `yaml:"weth,omitempty"`
	// Websocket RPC of the hub parachain
	HubWs      string `yaml:"hub_ws,omitempty"`
	HubParaID  uint32 `yaml:"hub_para_id,omitempty"`
	SS58Prefix uint16 `yaml:"ss58_prefix,omitempty"`
	// Asset registry snapshot
	Registry string `yaml:"registry,omitempty"`
	// How often EVM receipts are polled
	PollInterval time.Duration `yaml:"poll_interval,omitempty"`
	// Execution fee forwarded past the hub, in wei
	DestinationFee string `yaml:"destination_fee,omitempty"`
	// Caps the extrinsic tip, 0 for no cap
	MaxTip uint64 `yaml:"max_tip,omitempty"`

	EvmKey       Secret `yaml:"evm_key,omitempty"`
	SubstrateKey Secret `yaml:"substrate_key,omitempty"`
}

type Config struct {
	// The environment used when none is given
	Env hb.Env `yaml:"env,omitempty"`
	// File recording confirmed phases so transfers can be resumed
	Journal  string              `yaml:"journal,omitempty"`
	Networks map[hb.Env]*Network `yaml:"networks,omitempty"`
}

func defaultNetworks() map[hb.Env]*Network {
	evmKey := Secret("env:HOP_EVM_PRIVATE_KEY")
	substrateKey := Secret("env:HOP_SUBSTRATE_SURI")
	sepoliaWeth := hb.ContractAddress("0xfff9976782d46cc05630d1f6ebab18b2324d6b14")
	return map[hb.Env]*Network{
		hb.EnvLocal: {
			EvmRpc:       "http://127.0.0.1:8545",
			EvmChainID:   11155111,
			Gateway:      "0x87d1f7fdfee7f651fabc8bfcb6e086c278b77a7d",
			Weth:         sepoliaWeth,
			HubWs:        "ws://127.0.0.1:12144",
			HubParaID:    hb.DefaultHubParaID,
			SS58Prefix:   42,
			PollInterval: time.Second,
			EvmKey:       evmKey,
			SubstrateKey: substrateKey,
		},
		hb.EnvPaseoSepolia: {
			EvmRpc:       "https://ethereum-sepolia-rpc.publicnode.com",
			EvmChainID:   11155111,
			Gateway:      "0x1607c1368bc943130258318c91bbd8cff3d063e6",
			Weth:         sepoliaWeth,
			HubWs:        "wss://asset-hub-paseo-rpc.n.dwellir.com",
			HubParaID:    hb.DefaultHubParaID,
			SS58Prefix:   0,
			PollInterval: 4 * time.Second,
			EvmKey:       evmKey,
			SubstrateKey: substrateKey,
		},
		hb.EnvWestendSepolia: {
			EvmRpc:       "https://ethereum-sepolia-rpc.publicnode.com",
			EvmChainID:   11155111,
			Gateway:      "0x9ed8b47bc3417e3bd0507adc06e56e2fa360a4e9",
			Weth:         sepoliaWeth,
			HubWs:        "wss://westend-asset-hub-rpc.polkadot.io",
			HubParaID:    hb.DefaultHubParaID,
			SS58Prefix:   42,
			PollInterval: 4 * time.Second,
			EvmKey:       evmKey,
			SubstrateKey: substrateKey,
		},
		hb.EnvPolkadotMainnet: {
			EvmRpc:       "https://ethereum-rpc.publicnode.com",
			EvmChainID:   1,
			Gateway:      "0x27ca963c279c93801941e1eb8799c23f407d68e7",
			Weth:         "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2",
			HubWs:        "wss://polkadot-asset-hub-rpc.polkadot.io",
			HubParaID:    hb.DefaultHubParaID,
			SS58Prefix:   0,
			PollInterval: 12 * time.Second,
			EvmKey:       evmKey,
			SubstrateKey: substrateKey,
		},
	}
}

func DefaultConfig() *Config {
	return &Config{
		Env:      hb.EnvPaseoSepolia,
		Journal:  filepath.Join(constants.DefaultHome, "journal.yaml"),
		Networks: defaultNetworks(),
	}
}

// Load reads the "hop" section of hop.yaml over the defaults.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := RequireConfig(Section, cfg, DefaultConfig()); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Network returns the settings of env. A registry path that is not set
// defaults to <home>/<env>.registry.json.
func (cfg *Config) Network(env hb.Env) (*Network, error) {
	if !env.Valid() {
		return nil, fmt.Errorf("invalid environment '%s', options: %v", env, hb.EnvList)
	}
	network, ok := cfg.Networks[env]
	if !ok || network == nil {
		return nil, fmt.Errorf("no network configured for '%s'", env)
	}
	copied := *network
	if copied.HubParaID == 0 {
		copied.HubParaID = hb.DefaultHubParaID
	}
	if copied.Registry == "" {
		copied.Registry = filepath.Join(constants.DefaultHome, fmt.Sprintf("%s.registry.json", env))
	}
	if strings.HasPrefix(copied.Registry, "~/") {
		copied.Registry = filepath.Join(os.Getenv("HOME"), copied.Registry[2:])
	}
	return &copied, nil
}

// Validate checks the settings needed to reach both sides of the bridge.
func (n *Network) Validate() error {
	if n.EvmRpc == "" {
		return fmt.Errorf("evm_rpc is not set")
	}
	if n.HubWs == "" {
		return fmt.Errorf("hub_ws is not set")
	}
	if !hb.IsHexAddress(hb.Address(n.Gateway)) {
		return fmt.Errorf("gateway '%s' is not an EVM address", n.Gateway)
	}
	if n.Weth != "" && !hb.IsHexAddress(hb.Address(n.Weth)) {
		return fmt.Errorf("weth '%s' is not an EVM address", n.Weth)
	}
	if _, err := n.DestinationFeeAmount(); err != nil {
		return err
	}
	return nil
}

// DestinationFeeAmount parses DestinationFee, which may be decimal or 0x hex.
func (n *Network) DestinationFeeAmount() (hb.AmountBlockchain, error) {
	if n.DestinationFee == "" {
		return hb.NewAmountBlockchainFromUint64(0), nil
	}
	fee, ok := new(big.Int).SetString(n.DestinationFee, 0)
	if !ok || fee.Sign() < 0 {
		return hb.AmountBlockchain{}, fmt.Errorf("destination_fee '%s' is not a non-negative integer", n.DestinationFee)
	}
	return hb.NewAmountBlockchainFromBig(fee), nil
}
