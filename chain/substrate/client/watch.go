package client

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types/codec"
	hb "github.com/cordialsys/hopbridge"
	"github.com/cordialsys/hopbridge/chain/substrate/tx"
	"github.com/cordialsys/hopbridge/gateway"
	"github.com/sirupsen/logrus"
)

// StatusUpdate maps a node status notification onto an ExtrinsicUpdate.
func StatusUpdate(status types.ExtrinsicStatus) gateway.ExtrinsicUpdate {
	switch {
	case status.IsFuture:
		return gateway.ExtrinsicUpdate{Status: gateway.StatusFuture}
	case status.IsReady:
		return gateway.ExtrinsicUpdate{Status: gateway.StatusReady}
	case status.IsBroadcast:
		return gateway.ExtrinsicUpdate{Status: gateway.StatusBroadcast}
	case status.IsInBlock:
		return gateway.ExtrinsicUpdate{Status: gateway.StatusInBlock, BlockHash: status.AsInBlock.Hex()}
	case status.IsRetracted:
		return gateway.ExtrinsicUpdate{Status: gateway.StatusRetracted, BlockHash: status.AsRetracted.Hex()}
	case status.IsFinalityTimeout:
		return gateway.ExtrinsicUpdate{Status: gateway.StatusFinalityTimeout, BlockHash: status.AsFinalityTimeout.Hex()}
	case status.IsFinalized:
		return gateway.ExtrinsicUpdate{Status: gateway.StatusFinalized, BlockHash: status.AsFinalized.Hex()}
	case status.IsUsurped:
		return gateway.ExtrinsicUpdate{Status: gateway.StatusUsurped, BlockHash: status.AsUsurped.Hex()}
	case status.IsDropped:
		return gateway.ExtrinsicUpdate{Status: gateway.StatusDropped}
	default:
		return gateway.ExtrinsicUpdate{Status: gateway.StatusInvalid}
	}
}

type rpcSubscription interface {
	Err() <-chan error
	Unsubscribe()
}

type extrinsicSubscription struct {
	hash    hb.TxHash
	updates chan gateway.ExtrinsicUpdate
	errs    chan error
	quit    chan struct{}
	once    sync.Once
	rpcSub  rpcSubscription
}

var _ gateway.Subscription = &extrinsicSubscription{}

func (s *extrinsicSubscription) TxHash() hb.TxHash {
	return s.hash
}

func (s *extrinsicSubscription) Updates() <-chan gateway.ExtrinsicUpdate {
	return s.updates
}

func (s *extrinsicSubscription) Err() <-chan error {
	return s.errs
}

func (s *extrinsicSubscription) Unsubscribe() {
	s.once.Do(func() {
		close(s.quit)
		s.rpcSub.Unsubscribe()
	})
}

func (s *extrinsicSubscription) send(update gateway.ExtrinsicUpdate) bool {
	select {
	case s.updates <- update:
		return true
	case <-s.quit:
		return false
	}
}

func (s *extrinsicSubscription) fail(err error) {
	select {
	case s.errs <- err:
	case <-s.quit:
	}
}

// SubmitAndWatch submits a signed extrinsic and follows it until a terminal
// status. Finalized updates carry the block number and any dispatch error.
func (client *Client) SubmitAndWatch(ctx context.Context, signed *tx.Tx) (gateway.Subscription, error) {
	if err := client.connected(); err != nil {
		return nil, err
	}
	data, err := signed.Serialize()
	if err != nil {
		return nil, err
	}
	encoded := codec.HexEncodeToString(data)
	extrinsicHash := tx.HashSerialized(data)
	hash := signed.Hash()
	log := logrus.WithField("extrinsic", hash)
	log.WithField("tx", encoded).Debug("submitting and watching tx")

	statuses := make(chan types.ExtrinsicStatus)
	rpcSub, err := client.DotClient.Client.Subscribe(ctx, "author", "submitAndWatchExtrinsic", "unwatchExtrinsic", "extrinsicUpdate", statuses, encoded)
	if err != nil {
		return nil, classifySubmitError(err)
	}
	sub := &extrinsicSubscription{
		hash:    hash,
		updates: make(chan gateway.ExtrinsicUpdate),
		errs:    make(chan error, 1),
		quit:    make(chan struct{}),
		rpcSub:  rpcSub,
	}
	go func() {
		for {
			select {
			case <-sub.quit:
				return
			case err, ok := <-rpcSub.Err():
				if ok && err != nil {
					sub.fail(AsRpcErrorMaybe(err))
				}
				return
			case status := <-statuses:
				update := StatusUpdate(status)
				if update.Status == gateway.StatusInBlock || update.Status == gateway.StatusFinalized {
					if err := client.describeInclusion(&update, extrinsicHash); err != nil {
						if update.Status == gateway.StatusFinalized {
							sub.fail(fmt.Errorf("reading finalized block %s: %v", update.BlockHash, err))
							return
						}
						log.WithError(err).Warn("could not read inclusion block")
					}
				}
				log.WithFields(logrus.Fields{
					"status": update.Status,
					"block":  update.BlockHash,
				}).Debug("extrinsic status")
				if !sub.send(update) || update.Status.Terminal() {
					return
				}
			}
		}
	}()
	return sub, nil
}

// describeInclusion fills the block number of the update and, for a finalized
// extrinsic, its dispatch error.
func (client *Client) describeInclusion(update *gateway.ExtrinsicUpdate, extrinsicHash []byte) error {
	blockHash, err := types.NewHashFromHexString(update.BlockHash)
	if err != nil {
		return err
	}
	block, err := client.DotClient.RPC.Chain.GetBlock(blockHash)
	if err != nil {
		return err
	}
	update.BlockNumber = uint64(block.Block.Header.Number)
	if update.Status != gateway.StatusFinalized {
		return nil
	}
	index, ok := findExtrinsic(block.Block.Extrinsics, extrinsicHash)
	if !ok {
		return fmt.Errorf("extrinsic %x not found in block", extrinsicHash)
	}
	events, err := client.GetEvents(blockHash)
	if err != nil {
		return err
	}
	if failure, failed := DispatchError(events, index); failed {
		update.DispatchError = failure
	}
	return nil
}

func findExtrinsic(extrinsics []types.Extrinsic, extrinsicHash []byte) (uint32, bool) {
	for i := range extrinsics {
		bz, err := codec.Encode(extrinsics[i])
		if err != nil {
			continue
		}
		if bytes.Equal(tx.HashSerialized(bz), extrinsicHash) {
			return uint32(i), true
		}
	}
	return 0, false
}
