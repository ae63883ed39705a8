package hopbridge

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

// PreparedTransfer is the immutable input to one executor run. The base
// amount is always the converter's output for the human amount and token decimals.
// Every constructed transfer gets a new id unless it resumes an earlier one.
type PreparedTransfer struct {
	id            string
	resumed       bool
	env           Env
	source        Node
	dest          Node
	sourceAddress Address
	destAddress   Address
	hubAddress    Address
	token         TokenInfo
	amountHuman   string
	amountBase    AmountBlockchain
}

type PreparedOption func(*PreparedTransfer) error

// OptionResume continues the transfer with the given id instead of starting a
// new one. Only phases recorded under this id and the same parameters are skipped.
func OptionResume(id string) PreparedOption {
	return func(p *PreparedTransfer) error {
		parsed, err := uuid.Parse(strings.TrimSpace(id))
		if err != nil {
			return fmt.Errorf("invalid transfer id '%s': %v", id, err)
		}
		p.id = parsed.String()
		p.resumed = true
		return nil
	}
}

// OptionHubAddress sets the account that receives the first hop and signs the
// second hop of a two edge route. Defaults to the destination address, which
// is the same account id on every parachain.
func OptionHubAddress(addr Address) PreparedOption {
	return func(p *PreparedTransfer) error {
		if !IsSS58(addr) {
			return fmt.Errorf("invalid hub address '%s'", addr)
		}
		p.hubAddress = addr
		return nil
	}
}

func NewPreparedTransfer(env Env, source Node, dest Node, sourceAddress Address, destAddress Address, token TokenInfo, amountHuman string, options ...PreparedOption) (*PreparedTransfer, error) {
	if err := token.Validate(); err != nil {
		return nil, err
	}
	amountBase, err := ToBaseUnits(amountHuman, token.Decimals)
	if err != nil {
		return nil, err
	}
	if amountBase.IsZero() {
		return nil, fmt.Errorf("amount must be greater than zero")
	}
	if err := checkAddress(source, sourceAddress); err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}
	if err := checkAddress(dest, destAddress); err != nil {
		return nil, fmt.Errorf("destination: %w", err)
	}
	p := &PreparedTransfer{
		id:            uuid.NewString(),
		env:           env,
		source:        source,
		dest:          dest,
		sourceAddress: sourceAddress.Normalize(),
		destAddress:   destAddress.Normalize(),
		token:         token,
		amountHuman:   strings.TrimSpace(amountHuman),
		amountBase:    amountBase,
	}
	for _, opt := range options {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func checkAddress(node Node, addr Address) error {
	switch node.Kind {
	case NodeEvm:
		if !IsHexAddress(addr) {
			return fmt.Errorf("'%s' is not an EVM address", addr)
		}
	case NodeParachain:
		if !IsSS58(addr) {
			return fmt.Errorf("'%s' is not an SS58 address", addr)
		}
	default:
		return fmt.Errorf("unknown node kind '%s'", node.Kind)
	}
	return nil
}

func (p *PreparedTransfer) Env() Env                     { return p.env }
func (p *PreparedTransfer) Source() Node                 { return p.source }
func (p *PreparedTransfer) Dest() Node                   { return p.dest }
func (p *PreparedTransfer) SourceAddress() Address       { return p.sourceAddress }
func (p *PreparedTransfer) DestAddress() Address         { return p.destAddress }
func (p *PreparedTransfer) Token() TokenInfo             { return p.token }
func (p *PreparedTransfer) AmountHuman() string          { return p.amountHuman }
func (p *PreparedTransfer) AmountBase() AmountBlockchain { return p.amountBase }

func (p *PreparedTransfer) HubAddress() Address {
	if p.hubAddress != "" {
		return p.hubAddress
	}
	return p.destAddress
}

// HolderOf returns the account that controls the transfer's funds on a node.
func (p *PreparedTransfer) HolderOf(node Node) Address {
	switch {
	case node.Same(p.source):
		return p.sourceAddress
	case node.Same(p.dest):
		return p.destAddress
	default:
		return p.HubAddress()
	}
}

// ID identifies this submit. Two transfers with the same parameters have
// different ids.
func (p *PreparedTransfer) ID() string {
	return p.id
}

// Resumed reports whether the transfer continues an earlier one.
func (p *PreparedTransfer) Resumed() bool {
	return p.resumed
}

// Digest is a deterministic digest of the transfer parameters.
func (p *PreparedTransfer) Digest() string {
	canonical := strings.Join([]string{
		string(p.env),
		p.source.Key(),
		p.dest.Key(),
		string(p.sourceAddress),
		string(p.destAddress),
		string(p.HubAddress()),
		string(p.token.Address.Normalize()),
		p.amountBase.String(),
	}, "|")
	sum := blake2b.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:16])
}

// PhaseResult records one confirmed edge.
type PhaseResult struct {
	EdgeIndex   int       `json:"edge_index" yaml:"edge_index"`
	TxHash      TxHash    `json:"tx_hash" yaml:"tx_hash"`
	BlockNumber uint64    `json:"block_number,omitempty" yaml:"block_number,omitempty"`
	BlockHash   string    `json:"block_hash,omitempty" yaml:"block_hash,omitempty"`
	ConfirmedAt time.Time `json:"confirmed_at" yaml:"confirmed_at"`
}

// PhaseFailure is returned when an edge fails. PhaseResults holds every edge
// that had already confirmed; those are never retracted.
type PhaseFailure struct {
	FailedEdgeIndex int
	PhaseResults    []PhaseResult
	// Set when the failed edge had already been submitted
	InFlightTxHash TxHash
	Cause          error
}

var _ error = &PhaseFailure{}

func (f *PhaseFailure) Error() string {
	return fmt.Sprintf("phase %d failed (%d phase(s) confirmed): %v", f.FailedEdgeIndex+1, len(f.PhaseResults), f.Cause)
}

func (f *PhaseFailure) Unwrap() error {
	return f.Cause
}
