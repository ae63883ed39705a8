package setup

import (
	"fmt"
	"os"
	"strings"

	hb "github.com/cordialsys/hopbridge"
	"github.com/cordialsys/hopbridge/config"
	"github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"
)

// NetworkOverride replaces individual settings of one environment, e.g.
//
//	[paseo_sepolia]
//	evm_rpc = "https://sepolia.example.com"
//	evm_key = "file:~/.hop/sepolia.key"
type NetworkOverride struct {
	EvmRpc         string `json:"evm_rpc,omitempty" toml:"evm_rpc,omitempty"`
	HubWs          string `json:"hub_ws,omitempty" toml:"hub_ws,omitempty"`
	Gateway        string `json:"gateway,omitempty" toml:"gateway,omitempty"`
	Registry       string `json:"registry,omitempty" toml:"registry,omitempty"`
	DestinationFee string `json:"destination_fee,omitempty" toml:"destination_fee,omitempty"`
	// Secret references
	EvmKey       string `json:"evm_key,omitempty" toml:"evm_key,omitempty"`
	SubstrateKey string `json:"substrate_key,omitempty" toml:"substrate_key,omitempty"`

	Applied bool `json:"-" toml:"-"`
}

func ParseOverrides(data []byte) (map[string]*NetworkOverride, error) {
	overrides := map[string]*NetworkOverride{}
	if err := toml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("invalid overrides: %v", err)
	}
	return overrides, nil
}

func LoadOverrides(path string) (map[string]*NetworkOverride, error) {
	if path == "" {
		return map[string]*NetworkOverride{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseOverrides(data)
}

func secretRef(value string) (config.Secret, error) {
	if !config.HasTypePrefix(value) {
		return "", fmt.Errorf("keys must be given as a secret reference such as env:NAME or file:PATH")
	}
	return config.Secret(value), nil
}

// ApplyOverrides writes every override onto the matching network of cfg.
func ApplyOverrides(cfg *config.Config, overrides map[string]*NetworkOverride) error {
	for _, env := range hb.EnvList {
		override, ok := overrides[strings.ToLower(string(env))]
		if !ok {
			continue
		}
		network, ok := cfg.Networks[env]
		if !ok || network == nil {
			network = &config.Network{}
			cfg.Networks[env] = network
		}
		override.Applied = true
		log := logrus.WithField("env", env)
		if override.EvmRpc != "" {
			log.Info("overriding evm rpc")
			network.EvmRpc = override.EvmRpc
		}
		if override.HubWs != "" {
			log.Info("overriding hub ws")
			network.HubWs = override.HubWs
		}
		if override.Gateway != "" {
			network.Gateway = hb.ContractAddress(override.Gateway)
		}
		if override.Registry != "" {
			network.Registry = override.Registry
		}
		if override.DestinationFee != "" {
			network.DestinationFee = override.DestinationFee
		}
		if override.EvmKey != "" {
			ref, err := secretRef(override.EvmKey)
			if err != nil {
				return fmt.Errorf("%s evm_key: %v", env, err)
			}
			network.EvmKey = ref
		}
		if override.SubstrateKey != "" {
			ref, err := secretRef(override.SubstrateKey)
			if err != nil {
				return fmt.Errorf("%s substrate_key: %v", env, err)
			}
			network.SubstrateKey = ref
		}
	}
	for env, override := range overrides {
		if !override.Applied {
			logrus.WithField("env", env).Warn("could not find environment to apply override to")
		}
	}
	return nil
}
