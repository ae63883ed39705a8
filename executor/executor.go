package executor

import (
	"context"
	"fmt"
	"time"

	hb "github.com/cordialsys/hopbridge"
	"github.com/cordialsys/hopbridge/builder"
	"github.com/cordialsys/hopbridge/errors"
	"github.com/cordialsys/hopbridge/fee"
	"github.com/cordialsys/hopbridge/gateway"
	"github.com/sirupsen/logrus"
)

type FeeQuoter interface {
	Quote(ctx context.Context, edge hb.Edge, token hb.TokenInfo) (hb.FeeQuote, error)
}

type TransferBuilder interface {
	Build(ctx context.Context, edge hb.Edge, args builder.TransferArgs, quote hb.FeeQuote) (hb.UnsignedTransfer, error)
}

type Submitter interface {
	Submit(ctx context.Context, unsigned hb.UnsignedTransfer) (gateway.Pending, error)
}

var _ FeeQuoter = &fee.Quoter{}
var _ TransferBuilder = &builder.Builder{}
var _ Submitter = &gateway.Dispatcher{}

// Result is the outcome of a completed transfer, one PhaseResult per edge.
type Result struct {
	TransferID   string           `json:"transfer_id" yaml:"transfer_id"`
	Route        hb.Route         `json:"route" yaml:"route"`
	PhaseResults []hb.PhaseResult `json:"phase_results" yaml:"phase_results"`
}

// Executor carries a prepared transfer across every edge of its route, one
// edge at a time.
type Executor struct {
	quoter    FeeQuoter
	builder   TransferBuilder
	submitter Submitter
	journal   Journal
	buildOpts []builder.BuilderOption
	observers []Observer
	hub       *hb.Node
	now       func() time.Time
}

type Option func(e *Executor)

func WithJournal(journal Journal) Option {
	return func(e *Executor) {
		e.journal = journal
	}
}

// WithBuilderOptions are passed to the builder for every edge.
func WithBuilderOptions(options ...builder.BuilderOption) Option {
	return func(e *Executor) {
		e.buildOpts = append(e.buildOpts, options...)
	}
}

// WithObserver receives the events of every transfer.
func WithObserver(observer Observer) Option {
	return func(e *Executor) {
		e.observers = append(e.observers, observer)
	}
}

// WithHub requires two edge routes to pass through hub.
func WithHub(hub hb.Node) Option {
	return func(e *Executor) {
		e.hub = &hub
	}
}

func WithClock(now func() time.Time) Option {
	return func(e *Executor) {
		e.now = now
	}
}

func New(quoter FeeQuoter, builder TransferBuilder, submitter Submitter, options ...Option) *Executor {
	e := &Executor{
		quoter:    quoter,
		builder:   builder,
		submitter: submitter,
		journal:   NewMemoryJournal(),
		now:       time.Now,
	}
	for _, opt := range options {
		opt(e)
	}
	return e
}

type run struct {
	observers []Observer
	route     hb.Route
}

func (r *run) emit(event Event) {
	if event.State.PhaseScoped() || event.State == StateFailed {
		if event.EdgeIndex >= 0 && event.EdgeIndex < len(r.route.Steps) {
			event.Phase = event.EdgeIndex + 1
			event.Edge = r.route.Steps[event.EdgeIndex]
		}
	}
	for _, observer := range r.observers {
		observer.OnEvent(event)
	}
}

func (e *Executor) checkRoute(route hb.Route, prepared *hb.PreparedTransfer) error {
	if len(route.Steps) == 0 {
		return errors.UnsupportedRoutef("route %s has no steps", route.ID)
	}
	hub := route.Steps[0].To
	if e.hub != nil {
		hub = *e.hub
	}
	if err := route.Validate(hub); err != nil {
		return errors.Wrap(errors.UnsupportedRoute, err, "invalid route")
	}
	if !route.From.Same(prepared.Source()) || !route.To.Same(prepared.Dest()) {
		return errors.UnsupportedRoutef("route %s does not connect %s to %s", route.ID, prepared.Source(), prepared.Dest())
	}
	return nil
}

func cancelled(ctx context.Context, edge hb.Edge) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(errors.Cancelled, err, "transfer cancelled before %s", edge)
	}
	return nil
}

// Execute runs every unconfirmed edge of route in order. A resumed transfer
// skips the edges the journal holds for it; a new transfer runs every edge. When an edge fails, the
// returned error is a *hb.PhaseFailure carrying the confirmed phases.
func (e *Executor) Execute(ctx context.Context, route hb.Route, prepared *hb.PreparedTransfer, observers ...Observer) (*Result, error) {
	if err := e.checkRoute(route, prepared); err != nil {
		return nil, err
	}
	r := &run{
		observers: append(append([]Observer{}, e.observers...), observers...),
		route:     route,
	}
	key := JournalKey(route, prepared)
	log := logrus.WithFields(logrus.Fields{
		"transfer": prepared.ID(),
		"route":    route.ID,
	})

	recorded := []hb.PhaseResult{}
	if prepared.Resumed() {
		var err error
		recorded, err = e.journal.Load(key)
		if err != nil {
			return nil, fmt.Errorf("could not load journal: %v", err)
		}
		if len(recorded) == 0 {
			return nil, errors.Errorf(errors.UnknownTransfer, "no confirmed phases recorded for transfer %s with these parameters, start a new transfer instead", prepared.ID())
		}
	}
	confirmed := map[int]hb.PhaseResult{}
	for _, result := range recorded {
		if result.EdgeIndex >= 0 && result.EdgeIndex < len(route.Steps) {
			confirmed[result.EdgeIndex] = result
		}
	}
	results := []hb.PhaseResult{}

	r.emit(Event{
		State:     StateIdle,
		EdgeIndex: -1,
		Message:   fmt.Sprintf("transferring %s %s over %s", prepared.AmountHuman(), prepared.Token().Symbol, route.Label),
	})

	for i, edge := range route.Steps {
		if result, ok := confirmed[i]; ok {
			log.WithField("edge", i).WithField("tx_hash", result.TxHash).Info("phase already confirmed, skipping")
			results = append(results, result)
			r.emit(Event{
				State:     StateConfirmed,
				EdgeIndex: i,
				TxHash:    result.TxHash,
				Message:   fmt.Sprintf("%s already confirmed in %s", edge, result.TxHash),
			})
			continue
		}
		result, inFlight, err := e.executeEdge(ctx, r, i, edge, prepared)
		if err != nil {
			log.WithField("edge", i).WithError(err).Error("phase failed")
			failure := &hb.PhaseFailure{
				FailedEdgeIndex: i,
				PhaseResults:    append([]hb.PhaseResult{}, results...),
				InFlightTxHash:  inFlight,
				Cause:           err,
			}
			r.emit(Event{
				State:     StateFailed,
				EdgeIndex: i,
				TxHash:    inFlight,
				Message:   failure.Error(),
				Err:       err,
			})
			return nil, failure
		}
		if err := e.journal.Record(key, result); err != nil {
			log.WithError(err).Warn("could not record confirmed phase")
		}
		results = append(results, result)
	}

	// a finished transfer cannot be resumed
	if err := e.journal.Clear(key); err != nil {
		log.WithError(err).Warn("could not clear journal")
	}
	r.emit(Event{
		State:     StateCompleted,
		EdgeIndex: len(route.Steps) - 1,
		Message:   fmt.Sprintf("delivered %s %s to %s", prepared.AmountHuman(), prepared.Token().Symbol, prepared.DestAddress()),
	})
	return &Result{
		TransferID:   prepared.ID(),
		Route:        route,
		PhaseResults: results,
	}, nil
}

// executeEdge returns the hash of the submitted payload along with any error
// raised after submission.
func (e *Executor) executeEdge(ctx context.Context, r *run, index int, edge hb.Edge, prepared *hb.PreparedTransfer) (hb.PhaseResult, hb.TxHash, error) {
	token := prepared.Token()
	log := logrus.WithFields(logrus.Fields{
		"edge":     index,
		"protocol": edge.Protocol,
	})

	if err := cancelled(ctx, edge); err != nil {
		return hb.PhaseResult{}, "", err
	}
	r.emit(Event{State: StateBuilding, EdgeIndex: index, Message: fmt.Sprintf("building %s", edge)})
	quote, err := e.quoter.Quote(ctx, edge, token)
	if err != nil {
		return hb.PhaseResult{}, "", err
	}
	log.WithField("fee", quote.Amount.String()).Debug("quoted edge")

	if err := cancelled(ctx, edge); err != nil {
		return hb.PhaseResult{}, "", err
	}
	args, err := builder.NewTransferArgs(prepared.HolderOf(edge.From), prepared.HolderOf(edge.To), token, prepared.AmountBase(), e.buildOpts...)
	if err != nil {
		return hb.PhaseResult{}, "", errors.Wrap(errors.InvalidAmount, err, "invalid transfer")
	}
	log.WithFields(logrus.Fields{
		"from": args.GetFrom(),
		"to":   args.GetTo(),
	}).Debug("building edge")
	unsigned, err := e.builder.Build(ctx, edge, args, quote)
	if err != nil {
		return hb.PhaseResult{}, "", err
	}

	if err := cancelled(ctx, edge); err != nil {
		return hb.PhaseResult{}, "", err
	}
	r.emit(Event{State: StateAwaitingSignature, EdgeIndex: index, Message: fmt.Sprintf("waiting for %s to sign", unsigned.Sender())})
	pending, err := e.submitter.Submit(ctx, unsigned)
	if err != nil {
		return hb.PhaseResult{}, "", err
	}
	hash := pending.TxHash()
	log = log.WithField("tx_hash", hash)
	log.Info("submitted")
	r.emit(Event{State: StateSubmitted, EdgeIndex: index, TxHash: hash, Message: fmt.Sprintf("submitted %s", hash)})

	// the payload is on chain now, so it is followed to the end
	confirmation, err := pending.Wait(context.WithoutCancel(ctx))
	if err != nil {
		return hb.PhaseResult{}, hash, err
	}
	result := hb.PhaseResult{
		EdgeIndex:   index,
		TxHash:      confirmation.TxHash,
		BlockNumber: confirmation.BlockNumber,
		BlockHash:   confirmation.BlockHash,
		ConfirmedAt: e.now().UTC(),
	}
	if result.TxHash == "" {
		result.TxHash = hash
	}
	log.WithField("block", result.BlockNumber).Info("confirmed")
	r.emit(Event{
		State:     StateConfirmed,
		EdgeIndex: index,
		TxHash:    result.TxHash,
		Message:   fmt.Sprintf("%s confirmed in block %d", result.TxHash, result.BlockNumber),
	})
	return result, "", nil
}
