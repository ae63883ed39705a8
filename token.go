package hopbridge

import (
	"fmt"
	"strings"
)

type TokenOrigin string

const (
	OriginEvm       TokenOrigin = "evm"
	OriginParachain TokenOrigin = "parachain"
)

type TokenInfo struct {
	Symbol   string          `json:"symbol" yaml:"symbol"`
	Name     string          `json:"name,omitempty" yaml:"name,omitempty"`
	Address  ContractAddress `json:"address" yaml:"address"`
	Decimals int             `json:"decimals" yaml:"decimals"`
	Origin   TokenOrigin     `json:"origin" yaml:"origin"`
	ChainID  uint64          `json:"chain_id" yaml:"chain_id"`
	// Set for tokens native to a parachain
	ParachainID uint32 `json:"parachain_id,omitempty" yaml:"parachain_id,omitempty"`
}

func (t TokenInfo) Validate() error {
	if t.Decimals < MinDecimals || t.Decimals > MaxDecimals {
		return fmt.Errorf("token %s: decimals %d out of range [%d, %d]", t.Symbol, t.Decimals, MinDecimals, MaxDecimals)
	}
	if strings.TrimSpace(t.Symbol) == "" {
		return fmt.Errorf("token %s: empty symbol", t.Address)
	}
	if t.Origin == OriginEvm && !IsHexAddress(t.Address) {
		return fmt.Errorf("token %s: invalid contract address '%s'", t.Symbol, t.Address)
	}
	return nil
}

func (t TokenInfo) String() string {
	return fmt.Sprintf("%s (%s)", t.Symbol, t.Address)
}
