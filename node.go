package hopbridge

import (
	"fmt"
)

type NodeKind string

const (
	NodeEvm       NodeKind = "evm"
	NodeParachain NodeKind = "parachain"
)

// Node identifies one chain endpoint within one environment.
type Node struct {
	Kind  NodeKind `json:"kind" yaml:"kind"`
	Env   Env      `json:"env" yaml:"env"`
	Label string   `json:"label" yaml:"label"`
	// Set for evm nodes
	ChainID uint64 `json:"chain_id,omitempty" yaml:"chain_id,omitempty"`
	// Set for parachain nodes
	ParachainID uint32 `json:"parachain_id,omitempty" yaml:"parachain_id,omitempty"`
}

func NewEvmNode(env Env, chainID uint64, label string) Node {
	return Node{Kind: NodeEvm, Env: env, Label: label, ChainID: chainID}
}

func NewParachainNode(env Env, paraID uint32, label string) Node {
	return Node{Kind: NodeParachain, Env: env, Label: label, ParachainID: paraID}
}

func (n Node) IsEvm() bool {
	return n.Kind == NodeEvm
}

func (n Node) IsParachain() bool {
	return n.Kind == NodeParachain
}

// Key is the identity of the node; the label is presentation only.
func (n Node) Key() string {
	switch n.Kind {
	case NodeEvm:
		return fmt.Sprintf("%s/evm/%d", n.Env, n.ChainID)
	case NodeParachain:
		return fmt.Sprintf("%s/para/%d", n.Env, n.ParachainID)
	default:
		return fmt.Sprintf("%s/%s", n.Env, n.Kind)
	}
}

func (n Node) Same(other Node) bool {
	return n.Key() == other.Key()
}

func (n Node) String() string {
	if n.Label != "" {
		return n.Label
	}
	return n.Key()
}
