package catalog

import (
	"fmt"
	"strings"

	hb "github.com/cordialsys/hopbridge"
	"github.com/tidwall/btree"
)

// Catalog is the read-only view of chains and tokens the engine consumes.
type Catalog interface {
	ListChains(env hb.Env) ([]hb.Node, error)
	ListTokens(env hb.Env) ([]hb.TokenInfo, error)
	ListParachains(env hb.Env) ([]hb.Node, error)
}

// Snapshot is one complete catalog for one environment. It is never mutated
// after construction; a refresh produces a new Snapshot.
type Snapshot struct {
	env        hb.Env
	hub        hb.Node
	evmChains  *btree.Map[uint64, hb.Node]
	parachains *btree.Map[uint32, hb.Node]
	// lowercase address -> token
	tokens *btree.Map[string, hb.TokenInfo]
	// parachain id -> lowercase addresses of the assets registered there
	paraAssets map[uint32][]string
}

var _ Catalog = &Snapshot{}

func newSnapshot(env hb.Env) *Snapshot {
	return &Snapshot{
		env:        env,
		evmChains:  btree.NewMap[uint64, hb.Node](0),
		parachains: btree.NewMap[uint32, hb.Node](0),
		tokens:     btree.NewMap[string, hb.TokenInfo](0),
		paraAssets: map[uint32][]string{},
	}
}

func (s *Snapshot) Env() hb.Env {
	return s.env
}

func (s *Snapshot) Hub() hb.Node {
	return s.hub
}

func (s *Snapshot) IsHub(node hb.Node) bool {
	return node.Same(s.hub)
}

// Contains reports whether the node is part of this snapshot.
func (s *Snapshot) Contains(node hb.Node) bool {
	if node.Env != s.env {
		return false
	}
	switch node.Kind {
	case hb.NodeEvm:
		_, ok := s.evmChains.Get(node.ChainID)
		return ok
	case hb.NodeParachain:
		_, ok := s.parachains.Get(node.ParachainID)
		return ok
	}
	return false
}

func (s *Snapshot) EvmChain(chainID uint64) (hb.Node, bool) {
	return s.evmChains.Get(chainID)
}

func (s *Snapshot) Parachain(paraID uint32) (hb.Node, bool) {
	return s.parachains.Get(paraID)
}

// DefaultEvmChain returns the lowest chain id, which is the only one on every known environment.
func (s *Snapshot) DefaultEvmChain() (hb.Node, bool) {
	var node hb.Node
	var found bool
	s.evmChains.Scan(func(_ uint64, value hb.Node) bool {
		node, found = value, true
		return false
	})
	return node, found
}

func (s *Snapshot) Token(address hb.ContractAddress) (hb.TokenInfo, bool) {
	return s.tokens.Get(strings.ToLower(string(address)))
}

// TokenBySymbol does a case insensitive symbol lookup. Symbols are not unique,
// the token with the lowest address wins.
func (s *Snapshot) TokenBySymbol(symbol string) (hb.TokenInfo, bool) {
	var token hb.TokenInfo
	var found bool
	s.tokens.Scan(func(_ string, value hb.TokenInfo) bool {
		if strings.EqualFold(value.Symbol, symbol) {
			token, found = value, true
			return false
		}
		return true
	})
	return token, found
}

// ResolveToken accepts either a contract address or a symbol.
func (s *Snapshot) ResolveToken(addressOrSymbol string) (hb.TokenInfo, error) {
	if hb.IsHexAddress(addressOrSymbol) {
		if token, ok := s.Token(hb.ContractAddress(addressOrSymbol)); ok {
			return token, nil
		}
	} else if token, ok := s.TokenBySymbol(addressOrSymbol); ok {
		return token, nil
	}
	return hb.TokenInfo{}, fmt.Errorf("token '%s' is not registered on %s", addressOrSymbol, s.env)
}

// ResolveNode parses "evm", "evm:<chain-id>", "hub" or a parachain id.
func (s *Snapshot) ResolveNode(ref string) (hb.Node, error) {
	ref = strings.ToLower(strings.TrimSpace(ref))
	switch {
	case ref == "evm" || ref == "eth" || ref == "ethereum":
		if node, ok := s.DefaultEvmChain(); ok {
			return node, nil
		}
	case strings.HasPrefix(ref, "evm:"):
		var chainID uint64
		if _, err := fmt.Sscanf(ref, "evm:%d", &chainID); err == nil {
			if node, ok := s.EvmChain(chainID); ok {
				return node, nil
			}
		}
	case ref == "hub" || ref == "assethub":
		return s.hub, nil
	default:
		var paraID uint32
		if _, err := fmt.Sscanf(ref, "%d", &paraID); err == nil {
			if node, ok := s.Parachain(paraID); ok {
				return node, nil
			}
		}
	}
	return hb.Node{}, fmt.Errorf("unknown chain '%s' on %s", ref, s.env)
}

func (s *Snapshot) checkEnv(env hb.Env) error {
	if env != s.env {
		return fmt.Errorf("catalog snapshot is for %s, not %s", s.env, env)
	}
	return nil
}

func (s *Snapshot) ListChains(env hb.Env) ([]hb.Node, error) {
	if err := s.checkEnv(env); err != nil {
		return nil, err
	}
	nodes := make([]hb.Node, 0, s.evmChains.Len())
	s.evmChains.Scan(func(_ uint64, node hb.Node) bool {
		nodes = append(nodes, node)
		return true
	})
	return nodes, nil
}

func (s *Snapshot) ListParachains(env hb.Env) ([]hb.Node, error) {
	if err := s.checkEnv(env); err != nil {
		return nil, err
	}
	nodes := make([]hb.Node, 0, s.parachains.Len())
	s.parachains.Scan(func(_ uint32, node hb.Node) bool {
		nodes = append(nodes, node)
		return true
	})
	return nodes, nil
}

func (s *Snapshot) ListTokens(env hb.Env) ([]hb.TokenInfo, error) {
	if err := s.checkEnv(env); err != nil {
		return nil, err
	}
	tokens := make([]hb.TokenInfo, 0, s.tokens.Len())
	s.tokens.Scan(func(_ string, token hb.TokenInfo) bool {
		tokens = append(tokens, token)
		return true
	})
	return tokens, nil
}

// TokensOn lists the tokens registered on a parachain, in address order.
func (s *Snapshot) TokensOn(paraID uint32) []hb.TokenInfo {
	tokens := []hb.TokenInfo{}
	for _, addr := range s.paraAssets[paraID] {
		if token, ok := s.tokens.Get(addr); ok {
			tokens = append(tokens, token)
		}
	}
	return tokens
}
