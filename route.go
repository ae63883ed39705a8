package hopbridge

import (
	"fmt"
	"strings"
)

type Protocol string

const (
	// EVM <-> hub parachain, through the bridge gateway contract
	ProtocolGateway Protocol = "gateway"
	// parachain <-> parachain, through an XCM transfer extrinsic
	ProtocolXcm Protocol = "xcm"
)

// Edge is one bridging hop.
type Edge struct {
	Protocol Protocol `json:"protocol" yaml:"protocol"`
	From     Node     `json:"from" yaml:"from"`
	To       Node     `json:"to" yaml:"to"`
}

func (e Edge) String() string {
	return fmt.Sprintf("%s -> %s (%s)", e.From, e.To, e.Protocol)
}

type Route struct {
	ID    string `json:"id" yaml:"id"`
	From  Node   `json:"from" yaml:"from"`
	To    Node   `json:"to" yaml:"to"`
	Steps []Edge `json:"steps" yaml:"steps"`
	Label string `json:"label" yaml:"label"`
}

func NewRoute(steps ...Edge) Route {
	route := Route{Steps: steps}
	if len(steps) == 0 {
		return route
	}
	route.From = steps[0].From
	route.To = steps[len(steps)-1].To
	labels := []string{route.From.String()}
	for _, step := range steps {
		labels = append(labels, step.To.String())
	}
	route.Label = strings.Join(labels, " → ")
	route.ID = fmt.Sprintf("%s->%s/%d", route.From.Key(), route.To.Key(), len(steps))
	return route
}

// Validate checks the route shape: one or two steps, and a two step route
// must be joined at the hub.
func (r Route) Validate(hub Node) error {
	switch len(r.Steps) {
	case 1:
	case 2:
		if !r.Steps[0].To.Same(r.Steps[1].From) {
			return fmt.Errorf("route %s: steps are not contiguous", r.ID)
		}
		if !r.Steps[0].To.Same(hub) {
			return fmt.Errorf("route %s: intermediate node %s is not the hub", r.ID, r.Steps[0].To)
		}
	default:
		return fmt.Errorf("route %s: expected 1 or 2 steps, got %d", r.ID, len(r.Steps))
	}
	if !r.Steps[0].From.Same(r.From) || !r.Steps[len(r.Steps)-1].To.Same(r.To) {
		return fmt.Errorf("route %s: endpoints do not match steps", r.ID)
	}
	return nil
}
