package fee

import (
	"context"

	hb "github.com/cordialsys/hopbridge"
	"github.com/cordialsys/hopbridge/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Oracle quotes the delivery fee of one bridge protocol.
type Oracle interface {
	DeliveryFee(ctx context.Context, edge hb.Edge, token hb.TokenInfo) (hb.FeeQuote, error)
}

type OracleFunc func(ctx context.Context, edge hb.Edge, token hb.TokenInfo) (hb.FeeQuote, error)

func (f OracleFunc) DeliveryFee(ctx context.Context, edge hb.Edge, token hb.TokenInfo) (hb.FeeQuote, error) {
	return f(ctx, edge, token)
}

// Quoter dispatches quotes to the oracle of each edge's protocol. It keeps no
// results: support for a token is checked live on every call.
type Quoter struct {
	oracles map[hb.Protocol]Oracle
	limiter *rate.Limiter
}

type QuoterOption func(q *Quoter)

func WithOracle(protocol hb.Protocol, oracle Oracle) QuoterOption {
	return func(q *Quoter) {
		q.oracles[protocol] = oracle
	}
}

// WithQuoteRate paces the quote calls FilterSupported makes.
func WithQuoteRate(limit rate.Limit, burst int) QuoterOption {
	return func(q *Quoter) {
		q.limiter = rate.NewLimiter(limit, burst)
	}
}

func NewQuoter(options ...QuoterOption) *Quoter {
	q := &Quoter{
		oracles: map[hb.Protocol]Oracle{},
		limiter: rate.NewLimiter(rate.Inf, 1),
	}
	for _, opt := range options {
		opt(q)
	}
	return q
}

// Quote returns the delivery fee for moving token across edge, or a FeeUnavailable error.
func (q *Quoter) Quote(ctx context.Context, edge hb.Edge, token hb.TokenInfo) (hb.FeeQuote, error) {
	oracle, ok := q.oracles[edge.Protocol]
	if !ok {
		return hb.FeeQuote{}, errors.FeeUnavailablef("no fee oracle for protocol '%s'", edge.Protocol)
	}
	quote, err := oracle.DeliveryFee(ctx, edge, token)
	if err != nil {
		return hb.FeeQuote{}, errors.Wrap(errors.FeeUnavailable, err, "%s cannot be moved %s", token.Symbol, edge)
	}
	if quote.Protocol == "" {
		quote.Protocol = edge.Protocol
	}
	return quote, nil
}

// SupportsToken is true exactly when Quote succeeds.
func (q *Quoter) SupportsToken(ctx context.Context, edge hb.Edge, token hb.TokenInfo) bool {
	_, err := q.Quote(ctx, edge, token)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"edge":  edge.String(),
			"token": token.Symbol,
		}).WithError(err).Debug("token not supported")
		return false
	}
	return true
}

// FilterSupported keeps the tokens every edge of the route can quote, in input
// order. A token is dropped at its first edge that fails to quote.
func (q *Quoter) FilterSupported(ctx context.Context, route hb.Route, tokens []hb.TokenInfo) ([]hb.TokenInfo, error) {
	supported := []hb.TokenInfo{}
	for _, token := range tokens {
		ok := true
		for _, edge := range route.Steps {
			if err := q.limiter.Wait(ctx); err != nil {
				return supported, err
			}
			if !q.SupportsToken(ctx, edge, token) {
				ok = false
				break
			}
		}
		if ok {
			supported = append(supported, token)
		}
	}
	return supported, nil
}
