package gateway

import (
	"context"
	"fmt"

	hb "github.com/cordialsys/hopbridge"
	"github.com/cordialsys/hopbridge/errors"
	"github.com/sirupsen/logrus"
)

// Confirmation is the final, successful outcome of one submitted payload.
type Confirmation struct {
	TxHash      hb.TxHash
	BlockNumber uint64
	BlockHash   string
}

// Pending is a payload that has been signed and handed to the network.
type Pending interface {
	TxHash() hb.TxHash
	// Wait blocks until the payload is confirmed or has definitely failed.
	Wait(ctx context.Context) (Confirmation, error)
}

// Dispatcher routes an unsigned payload to the gateway for its variant.
type Dispatcher struct {
	evm       EvmGateway
	substrate SubstrateGateway
}

func NewDispatcher(evm EvmGateway, substrate SubstrateGateway) *Dispatcher {
	return &Dispatcher{evm: evm, substrate: substrate}
}

// Submit signs and submits the payload. Once it returns a Pending, the payload
// is in flight and can no longer be withdrawn.
func (d *Dispatcher) Submit(ctx context.Context, unsigned hb.UnsignedTransfer) (Pending, error) {
	switch call := unsigned.(type) {
	case *hb.EvmCall:
		if d.evm == nil {
			return nil, fmt.Errorf("no evm signing gateway configured")
		}
		hash, err := d.evm.SignAndSubmitEvm(ctx, call)
		if err != nil {
			return nil, tagSubmission(err)
		}
		return &evmPending{gateway: d.evm, hash: hash}, nil
	case *hb.SubstrateCall:
		if d.substrate == nil {
			return nil, fmt.Errorf("no substrate signing gateway configured")
		}
		sub, err := d.substrate.SignAndSubmitSubstrate(ctx, call)
		if err != nil {
			return nil, tagSubmission(err)
		}
		return &substratePending{sub: sub}, nil
	default:
		return nil, fmt.Errorf("unsupported payload %T", unsigned)
	}
}

// untagged gateway errors are treated as a rejected submission
func tagSubmission(err error) error {
	if errors.StatusOf(err) != errors.UnknownError {
		return err
	}
	return errors.Wrap(errors.SubmissionFailed, err, "could not submit")
}

type evmPending struct {
	gateway EvmGateway
	hash    hb.TxHash
}

func (p *evmPending) TxHash() hb.TxHash {
	return p.hash
}

func (p *evmPending) Wait(ctx context.Context) (Confirmation, error) {
	receipt, err := p.gateway.AwaitEvmConfirmation(ctx, p.hash)
	if err != nil {
		return Confirmation{}, err
	}
	if !receipt.Success {
		return Confirmation{}, errors.DispatchFailedf("transaction %s reverted in block %d", p.hash, receipt.BlockNumber)
	}
	return Confirmation{
		TxHash:      p.hash,
		BlockNumber: receipt.BlockNumber,
		BlockHash:   receipt.BlockHash,
	}, nil
}

type substratePending struct {
	sub Subscription
}

func (p *substratePending) TxHash() hb.TxHash {
	return p.sub.TxHash()
}

// Wait follows the subscription until the extrinsic is finalized. A dispatch
// error on the finalized extrinsic is a failure.
func (p *substratePending) Wait(ctx context.Context) (Confirmation, error) {
	defer p.sub.Unsubscribe()
	hash := p.sub.TxHash()
	log := logrus.WithField("extrinsic", hash)
	errCh := p.sub.Err()
	for {
		select {
		case <-ctx.Done():
			return Confirmation{}, ctx.Err()
		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			return Confirmation{}, fmt.Errorf("watching extrinsic %s: %w", hash, err)
		case update, ok := <-p.sub.Updates():
			if !ok {
				return Confirmation{}, fmt.Errorf("subscription for extrinsic %s closed before finalization", hash)
			}
			log.WithFields(logrus.Fields{
				"status": update.Status,
				"block":  update.BlockHash,
			}).Debug("extrinsic update")
			switch update.Status {
			case StatusFinalized:
				if update.DispatchError != "" {
					return Confirmation{}, errors.DispatchFailedf("extrinsic %s failed in block %s: %s", hash, update.BlockHash, update.DispatchError)
				}
				return Confirmation{TxHash: hash, BlockNumber: update.BlockNumber, BlockHash: update.BlockHash}, nil
			case StatusFinalityTimeout:
				return Confirmation{}, errors.ConfirmationTimeoutf("extrinsic %s was not finalized in block %s", hash, update.BlockHash)
			case StatusDropped, StatusInvalid, StatusUsurped:
				return Confirmation{}, errors.SubmissionFailedf("extrinsic %s was %s", hash, update.Status)
			}
		}
	}
}
