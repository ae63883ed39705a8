package hopbridge

import (
	"fmt"
	"strings"
)

// Env selects one paired EVM + relay network deployment.
type Env string

const (
	EnvLocal           Env = "local_e2e"
	EnvPaseoSepolia    Env = "paseo_sepolia"
	EnvWestendSepolia  Env = "westend_sepolia"
	EnvPolkadotMainnet Env = "polkadot_mainnet"
)

var EnvList = []Env{
	EnvLocal,
	EnvPaseoSepolia,
	EnvWestendSepolia,
	EnvPolkadotMainnet,
}

// The asset hub parachain id, used as the hub on every environment.
const DefaultHubParaID uint32 = 1000

func (env Env) Valid() bool {
	for _, e := range EnvList {
		if e == env {
			return true
		}
	}
	return false
}

func ParseEnv(s string) (Env, error) {
	env := Env(strings.ToLower(strings.TrimSpace(s)))
	if !env.Valid() {
		return "", fmt.Errorf("invalid environment '%s', options: %v", s, EnvList)
	}
	return env, nil
}

type EnvLabels struct {
	Evm string
	Dot string
}

// Labels returns the display names for the EVM and relay sides of the environment.
func (env Env) Labels() EnvLabels {
	switch env {
	case EnvLocal:
		return EnvLabels{Evm: "Local EVM", Dot: "Local Polkadot"}
	case EnvPaseoSepolia:
		return EnvLabels{Evm: "Sepolia", Dot: "Paseo"}
	case EnvWestendSepolia:
		return EnvLabels{Evm: "Sepolia", Dot: "Westend"}
	case EnvPolkadotMainnet:
		return EnvLabels{Evm: "Ethereum", Dot: "Polkadot"}
	default:
		return EnvLabels{Evm: "EVM", Dot: "Polkadot"}
	}
}

// HubName is the fallback display name of the hub parachain.
func (env Env) HubName() string {
	switch env {
	case EnvLocal:
		return "AssetHub (local)"
	case EnvPaseoSepolia:
		return "AssetHub (Paseo)"
	case EnvWestendSepolia:
		return "AssetHub (Westend)"
	default:
		return "AssetHub"
	}
}
