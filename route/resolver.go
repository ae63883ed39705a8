package route

import (
	hb "github.com/cordialsys/hopbridge"
	"github.com/cordialsys/hopbridge/catalog"
	"github.com/cordialsys/hopbridge/errors"
)

// Resolver derives routes from one catalog snapshot. It holds no other state,
// so identical inputs always resolve to structurally equal routes.
type Resolver struct {
	snapshot *catalog.Snapshot
}

func NewResolver(snapshot *catalog.Snapshot) *Resolver {
	return &Resolver{snapshot: snapshot}
}

func (r *Resolver) Hub() hb.Node {
	return r.snapshot.Hub()
}

// Resolve returns the route with the fewest edges from source to dest.
//
//	evm -> hub            [gateway]
//	evm -> other para     [gateway, xcm] through the hub
//	hub -> other para     [xcm]
//
// Everything else is unsupported.
func (r *Resolver) Resolve(source hb.Node, dest hb.Node) (hb.Route, error) {
	if !r.snapshot.Contains(source) {
		return hb.Route{}, errors.NoRoutef("source %s is not available on %s", source, r.snapshot.Env())
	}
	if !r.snapshot.Contains(dest) {
		return hb.Route{}, errors.NoRoutef("destination %s is not available on %s", dest, r.snapshot.Env())
	}
	// use the catalog's copy so labels are consistent
	source = r.canonical(source)
	dest = r.canonical(dest)
	hub := r.snapshot.Hub()

	var route hb.Route
	switch {
	case source.Same(dest):
		return hb.Route{}, errors.UnsupportedRoutef("source and destination are both %s", source)
	case dest.IsEvm():
		return hb.Route{}, errors.UnsupportedRoutef("transfers into %s are not supported", dest)
	case source.IsEvm() && dest.Same(hub):
		route = hb.NewRoute(
			hb.Edge{Protocol: hb.ProtocolGateway, From: source, To: hub},
		)
	case source.IsEvm():
		route = hb.NewRoute(
			hb.Edge{Protocol: hb.ProtocolGateway, From: source, To: hub},
			hb.Edge{Protocol: hb.ProtocolXcm, From: hub, To: dest},
		)
	case source.Same(hub):
		route = hb.NewRoute(
			hb.Edge{Protocol: hb.ProtocolXcm, From: hub, To: dest},
		)
	default:
		return hb.Route{}, errors.UnsupportedRoutef("transfers from %s are not supported, only from %s or the hub", source, r.snapshot.Env().Labels().Evm)
	}
	if err := route.Validate(hub); err != nil {
		return hb.Route{}, errors.UnsupportedRoutef("%v", err)
	}
	return route, nil
}

func (r *Resolver) canonical(node hb.Node) hb.Node {
	switch node.Kind {
	case hb.NodeEvm:
		if n, ok := r.snapshot.EvmChain(node.ChainID); ok {
			return n
		}
	case hb.NodeParachain:
		if n, ok := r.snapshot.Parachain(node.ParachainID); ok {
			return n
		}
	}
	return node
}

// Candidates lists every route reachable from source, ordered by parachain id.
func (r *Resolver) Candidates(source hb.Node) ([]hb.Route, error) {
	paras, err := r.snapshot.ListParachains(r.snapshot.Env())
	if err != nil {
		return nil, err
	}
	routes := []hb.Route{}
	for _, para := range paras {
		route, err := r.Resolve(source, para)
		if err != nil {
			if errors.StatusOf(err) == errors.UnsupportedRoute {
				continue
			}
			return nil, err
		}
		routes = append(routes, route)
	}
	return routes, nil
}
