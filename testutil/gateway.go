package testutil

import (
	"context"
	"sync"

	hb "github.com/cordialsys/hopbridge"
	"github.com/cordialsys/hopbridge/gateway"
	"github.com/stretchr/testify/mock"
)

// MockedEvmGateway returns a new mock for gateway.EvmGateway
type MockedEvmGateway struct {
	mock.Mock
}

var _ gateway.EvmGateway = &MockedEvmGateway{}

func (m *MockedEvmGateway) SignAndSubmitEvm(ctx context.Context, call *hb.EvmCall) (hb.TxHash, error) {
	args := m.Called(ctx, call)
	return args.Get(0).(hb.TxHash), args.Error(1)
}

func (m *MockedEvmGateway) AwaitEvmConfirmation(ctx context.Context, hash hb.TxHash) (gateway.EvmReceipt, error) {
	args := m.Called(ctx, hash)
	return args.Get(0).(gateway.EvmReceipt), args.Error(1)
}

// MockedSubstrateGateway returns a new mock for gateway.SubstrateGateway
type MockedSubstrateGateway struct {
	mock.Mock
}

var _ gateway.SubstrateGateway = &MockedSubstrateGateway{}

func (m *MockedSubstrateGateway) SignAndSubmitSubstrate(ctx context.Context, call *hb.SubstrateCall) (gateway.Subscription, error) {
	args := m.Called(ctx, call)
	sub, _ := args.Get(0).(gateway.Subscription)
	return sub, args.Error(1)
}

// MockSubscription replays a fixed list of updates, then closes.
type MockSubscription struct {
	hash    hb.TxHash
	updates chan gateway.ExtrinsicUpdate
	errs    chan error
	once    sync.Once
	mu      sync.Mutex
	closed  bool
}

var _ gateway.Subscription = &MockSubscription{}

func NewMockSubscription(hash hb.TxHash, updates ...gateway.ExtrinsicUpdate) *MockSubscription {
	sub := &MockSubscription{
		hash:    hash,
		updates: make(chan gateway.ExtrinsicUpdate, len(updates)),
		errs:    make(chan error, 1),
	}
	for _, u := range updates {
		sub.updates <- u
	}
	close(sub.updates)
	return sub
}

// NewFailingSubscription reports err before any update.
func NewFailingSubscription(hash hb.TxHash, err error) *MockSubscription {
	sub := &MockSubscription{
		hash:    hash,
		updates: make(chan gateway.ExtrinsicUpdate),
		errs:    make(chan error, 1),
	}
	sub.errs <- err
	return sub
}

// FinalizedUpdates is the usual happy path of an extrinsic.
func FinalizedUpdates(blockHash string, blockNumber uint64) []gateway.ExtrinsicUpdate {
	return []gateway.ExtrinsicUpdate{
		{Status: gateway.StatusReady},
		{Status: gateway.StatusInBlock, BlockHash: blockHash, BlockNumber: blockNumber},
		{Status: gateway.StatusFinalized, BlockHash: blockHash, BlockNumber: blockNumber},
	}
}

func (s *MockSubscription) TxHash() hb.TxHash {
	return s.hash
}

func (s *MockSubscription) Updates() <-chan gateway.ExtrinsicUpdate {
	return s.updates
}

func (s *MockSubscription) Err() <-chan error {
	return s.errs
}

func (s *MockSubscription) Unsubscribe() {
	s.once.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.closed = true
	})
}

func (s *MockSubscription) Unsubscribed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
