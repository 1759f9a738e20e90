package pathfinder

import (
	"context"

	"searoute/internal/port"
	"searoute/pkg/apperror"
)

// FindRoutes computes the primary path and up to opts.MaxAlternativeRoutes
// distinct alternatives from origin to destination over graph, honoring
// the vessel feasibility filter and intermediate-node cap (spec §4.6).
//
// Returns apperror CodeNoRouteFound if the feasible subgraph disconnects
// origin from destination.
func FindRoutes(ctx context.Context, graph *port.Graph, origin, destination string, opts Options) (*Result, error) {
	opts = opts.normalized()

	destPort, ok := graph.Nodes[destination]
	if !ok {
		return nil, apperror.NewWithField(apperror.CodePortNotFound, "destination port not in graph", "destination")
	}
	if _, ok := graph.Nodes[origin]; !ok {
		return nil, apperror.NewWithField(apperror.CodePortNotFound, "origin port not in graph", "origin")
	}

	sc := &searchContext{
		ctx:           ctx,
		graph:         graph,
		vessel:        &opts.Vessel,
		criterion:     opts.Criterion,
		dest:          destination,
		maxHopEdges:   opts.MaxConnectingPorts + 1,
		checkInterval: opts.CheckInterval,
		excl:          newExclusion(),
		tables:        opts.Tables,
	}
	if useAStar(opts.Criterion) {
		sc.heuristic = balancedHeuristic(graph, destPort, &opts.Vessel)
	}

	primary, found, err := search(sc, origin)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperror.ErrNoRouteFound
	}

	evaluated := 1
	alternatives := yenAlternatives(sc, primary, opts.MaxAlternativeRoutes)
	evaluated += len(alternatives)

	return &Result{
		Primary:             primary,
		Alternatives:        alternatives,
		CandidatesEvaluated: evaluated,
	}, nil
}
