package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	hb "github.com/cordialsys/hopbridge"
	"github.com/sirupsen/logrus"
)

// Bridge registry json, as published per environment (<env>.registry.json).
type registryJson struct {
	EthChainID     uint64                     `json:"ethChainId"`
	EthereumChains map[string]*ethChainJson   `json:"ethereumChains"`
	Parachains     map[string]json.RawMessage `json:"parachains"`
}

type ethChainJson struct {
	ChainID uint64                `json:"chainId"`
	Assets  map[string]*assetJson `json:"assets"`
}

type assetJson struct {
	Token    string `json:"token"`
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals *int   `json:"decimals"`
}

type parachainJson struct {
	ParachainID uint32                `json:"parachainId"`
	Assets      map[string]*assetJson `json:"assets"`
}

// Fields that have carried a parachain's display name across registry versions, in priority order.
var paraNamePaths = [][]string{
	{"name"},
	{"display"},
	{"chainName"},
	{"parachainName"},
	{"metadata", "name"},
	{"info", "name"},
	{"id"},
}

func extractParaName(meta map[string]any) string {
	for _, path := range paraNamePaths {
		var cur any = meta
		for _, key := range path {
			obj, ok := cur.(map[string]any)
			if !ok {
				cur = nil
				break
			}
			cur = obj[key]
		}
		if name, ok := cur.(string); ok && strings.TrimSpace(name) != "" {
			return strings.TrimSpace(name)
		}
	}
	return ""
}

// ParachainLabel renders "<name> (<id>)", falling back to known hub names.
func ParachainLabel(env hb.Env, paraID uint32, hubParaID uint32, name string) string {
	if name == "" && paraID == hubParaID {
		name = env.HubName()
	}
	if name == "" {
		name = "Parachain"
	}
	return fmt.Sprintf("%s (%d)", name, paraID)
}

// ParseRegistry builds a snapshot from registry json.
func ParseRegistry(env hb.Env, hubParaID uint32, data []byte) (*Snapshot, error) {
	var reg registryJson
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("invalid registry json for %s: %w", env, err)
	}
	snap := newSnapshot(env)
	labels := env.Labels()

	for key, chain := range reg.EthereumChains {
		if chain == nil {
			continue
		}
		chainID := chain.ChainID
		if chainID == 0 {
			parsed, err := strconv.ParseUint(key, 10, 64)
			if err != nil {
				logrus.WithField("key", key).Debug("skipping ethereum chain without chain id")
				continue
			}
			chainID = parsed
		}
		label := labels.Evm
		if reg.EthChainID != 0 && chainID != reg.EthChainID {
			label = fmt.Sprintf("%s (%d)", labels.Evm, chainID)
		}
		snap.evmChains.Set(chainID, hb.NewEvmNode(env, chainID, label))

		for addr, asset := range chain.Assets {
			token, ok := tokenFromAsset(addr, asset, hb.OriginEvm, chainID, 0)
			if !ok {
				continue
			}
			key := strings.ToLower(string(token.Address))
			if _, exists := snap.tokens.Get(key); !exists {
				snap.tokens.Set(key, token)
			}
		}
	}

	for key, raw := range reg.Parachains {
		var para parachainJson
		if err := json.Unmarshal(raw, &para); err != nil {
			return nil, fmt.Errorf("invalid parachain entry '%s': %w", key, err)
		}
		var meta map[string]any
		if err := json.Unmarshal(raw, &meta); err != nil {
			logrus.WithField("key", key).WithError(err).Debug("parachain entry has no readable name")
		}

		paraID := para.ParachainID
		if paraID == 0 {
			parsed, err := strconv.ParseUint(key, 10, 32)
			if err != nil {
				logrus.WithField("key", key).Debug("skipping parachain without id")
				continue
			}
			paraID = uint32(parsed)
		}
		label := ParachainLabel(env, paraID, hubParaID, extractParaName(meta))
		snap.parachains.Set(paraID, hb.NewParachainNode(env, paraID, label))

		for addr, asset := range para.Assets {
			token, ok := tokenFromAsset(addr, asset, hb.OriginParachain, reg.EthChainID, paraID)
			if !ok {
				continue
			}
			key := strings.ToLower(string(token.Address))
			if _, exists := snap.tokens.Get(key); !exists {
				snap.tokens.Set(key, token)
			}
			snap.paraAssets[paraID] = append(snap.paraAssets[paraID], key)
		}
	}
	return finish(snap, hubParaID)
}

func tokenFromAsset(addr string, asset *assetJson, origin hb.TokenOrigin, chainID uint64, paraID uint32) (hb.TokenInfo, bool) {
	if asset == nil {
		return hb.TokenInfo{}, false
	}
	if !hb.IsHexAddress(addr) && hb.IsHexAddress(asset.Token) {
		addr = asset.Token
	}
	if !hb.IsHexAddress(addr) {
		return hb.TokenInfo{}, false
	}
	symbol := strings.ToUpper(strings.TrimSpace(asset.Symbol))
	if symbol == "" || asset.Decimals == nil {
		logrus.WithField("token", addr).Debug("skipping registry asset without symbol or decimals")
		return hb.TokenInfo{}, false
	}
	token := hb.TokenInfo{
		Symbol:      symbol,
		Name:        asset.Name,
		Address:     hb.ContractAddress(strings.ToLower(addr)),
		Decimals:    *asset.Decimals,
		Origin:      origin,
		ChainID:     chainID,
		ParachainID: paraID,
	}
	if err := token.Validate(); err != nil {
		logrus.WithError(err).Debug("skipping invalid registry asset")
		return hb.TokenInfo{}, false
	}
	return token, true
}

// sorts the per-parachain asset lists and makes sure the hub is present.
func finish(snap *Snapshot, hubParaID uint32) (*Snapshot, error) {
	hub, ok := snap.parachains.Get(hubParaID)
	if !ok {
		hub = hb.NewParachainNode(snap.env, hubParaID, ParachainLabel(snap.env, hubParaID, hubParaID, ""))
		snap.parachains.Set(hubParaID, hub)
	}
	snap.hub = hub
	for paraID, addrs := range snap.paraAssets {
		snap.paraAssets[paraID] = sortedUnique(addrs)
	}
	if snap.evmChains.Len() == 0 {
		return nil, fmt.Errorf("catalog for %s has no ethereum chain", snap.env)
	}
	return snap, nil
}

// LoadRegistryFile reads a registry json file from disk.
func LoadRegistryFile(env hb.Env, hubParaID uint32, path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read registry for %s: %w", env, err)
	}
	return ParseRegistry(env, hubParaID, data)
}

// NewSnapshot builds a snapshot from explicit lists. Tokens with a parachain
// id are registered on that parachain.
func NewSnapshot(env hb.Env, hubParaID uint32, chains []hb.Node, parachains []hb.Node, tokens []hb.TokenInfo) (*Snapshot, error) {
	snap := newSnapshot(env)
	for _, chain := range chains {
		if !chain.IsEvm() || chain.Env != env {
			return nil, fmt.Errorf("%s is not an evm chain on %s", chain, env)
		}
		snap.evmChains.Set(chain.ChainID, chain)
	}
	for _, para := range parachains {
		if !para.IsParachain() || para.Env != env {
			return nil, fmt.Errorf("%s is not a parachain on %s", para, env)
		}
		snap.parachains.Set(para.ParachainID, para)
	}
	for _, token := range tokens {
		if err := token.Validate(); err != nil {
			return nil, err
		}
		token.Address = token.Address.Normalize()
		key := strings.ToLower(string(token.Address))
		snap.tokens.Set(key, token)
		if token.ParachainID != 0 {
			snap.paraAssets[token.ParachainID] = append(snap.paraAssets[token.ParachainID], key)
		}
	}
	return finish(snap, hubParaID)
}

func sortedUnique(values []string) []string {
	slices.Sort(values)
	return slices.Compact(values)
}
