package executor

import (
	"fmt"

	hb "github.com/cordialsys/hopbridge"
	"github.com/sirupsen/logrus"
)

type State string

const (
	StateIdle              State = "Idle"
	StateBuilding          State = "Building"
	StateAwaitingSignature State = "AwaitingSignature"
	StateSubmitted         State = "Submitted"
	StateConfirmed         State = "Confirmed"
	StateCompleted         State = "Completed"
	StateFailed            State = "Failed"
)

// PhaseScoped states belong to one edge and are rendered with its phase number.
func (s State) PhaseScoped() bool {
	switch s {
	case StateBuilding, StateAwaitingSignature, StateSubmitted, StateConfirmed:
		return true
	}
	return false
}

// Event is emitted at every state transition. Message is for display only.
type Event struct {
	State State
	// 1-based; 0 before the first and after the last phase
	Phase     int
	EdgeIndex int
	Edge      hb.Edge
	Message   string
	TxHash    hb.TxHash
	// Set on Failed
	Err error
}

// Name renders the state with its phase, e.g. "Phase2Submitted".
func (e Event) Name() string {
	if e.State.PhaseScoped() && e.Phase > 0 {
		return fmt.Sprintf("Phase%d%s", e.Phase, e.State)
	}
	return string(e.State)
}

func (e Event) String() string {
	return fmt.Sprintf("[%s] %s", e.Name(), e.Message)
}

type Observer interface {
	OnEvent(event Event)
}

type ObserverFunc func(event Event)

func (f ObserverFunc) OnEvent(event Event) {
	f(event)
}

// ChannelObserver forwards events to a channel. Sends block, so the channel
// must be buffered or drained.
type ChannelObserver chan Event

func (c ChannelObserver) OnEvent(event Event) {
	c <- event
}

// LogObserver writes every event to the logger.
type LogObserver struct {
	Logger *logrus.Entry
}

func (o LogObserver) OnEvent(event Event) {
	log := o.Logger
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	log = log.WithFields(logrus.Fields{
		"state": event.Name(),
		"edge":  event.EdgeIndex,
	})
	if event.TxHash != "" {
		log = log.WithField("tx_hash", event.TxHash)
	}
	if event.Err != nil {
		log.WithError(event.Err).Error(event.Message)
		return
	}
	log.Info(event.Message)
}
