package gateway

import (
	"context"

	hb "github.com/cordialsys/hopbridge"
)

// EvmReceipt is the inclusion receipt of an EVM transaction.
type EvmReceipt struct {
	TxHash      hb.TxHash
	BlockNumber uint64
	BlockHash   string
	// false when the transaction was included but reverted
	Success bool
}

// EvmGateway signs and submits EVM calls on behalf of call.From.
type EvmGateway interface {
	SignAndSubmitEvm(ctx context.Context, call *hb.EvmCall) (hb.TxHash, error)
	// Blocks until the transaction is included.
	AwaitEvmConfirmation(ctx context.Context, hash hb.TxHash) (EvmReceipt, error)
}

type ExtrinsicStatus string

const (
	StatusFuture          ExtrinsicStatus = "future"
	StatusReady           ExtrinsicStatus = "ready"
	StatusBroadcast       ExtrinsicStatus = "broadcast"
	StatusInBlock         ExtrinsicStatus = "in_block"
	StatusRetracted       ExtrinsicStatus = "retracted"
	StatusFinalityTimeout ExtrinsicStatus = "finality_timeout"
	StatusFinalized       ExtrinsicStatus = "finalized"
	StatusUsurped         ExtrinsicStatus = "usurped"
	StatusDropped         ExtrinsicStatus = "dropped"
	StatusInvalid         ExtrinsicStatus = "invalid"
)

// Terminal reports whether no further update follows this status.
func (s ExtrinsicStatus) Terminal() bool {
	switch s {
	case StatusFinalized, StatusFinalityTimeout, StatusUsurped, StatusDropped, StatusInvalid:
		return true
	}
	return false
}

// ExtrinsicUpdate is one status change of a watched extrinsic.
type ExtrinsicUpdate struct {
	Status    ExtrinsicStatus
	BlockHash string
	// Known for in-block and finalized updates
	BlockNumber uint64
	// Set when the extrinsic was finalized but failed to dispatch
	DispatchError string
}

// Subscription follows one submitted extrinsic until a terminal status.
type Subscription interface {
	TxHash() hb.TxHash
	Updates() <-chan ExtrinsicUpdate
	Err() <-chan error
	Unsubscribe()
}

// SubstrateGateway signs call as call.From and submits it, watching its status.
type SubstrateGateway interface {
	SignAndSubmitSubstrate(ctx context.Context, call *hb.SubstrateCall) (Subscription, error)
}
