// Package pathfinder computes the top-k simple paths between two ports over
// a feasible subgraph (spec §4.6): a single-source Dijkstra/A* primary
// search plus Yen's algorithm for loopless, distinct alternatives.
package pathfinder

import (
	"context"

	"searoute/internal/costmodel"
	"searoute/internal/port"
)

// defaultCheckInterval is how many node expansions pass between
// cancellation checks (spec §4.6: "checks a cancellation signal every 4096
// node expansions").
const defaultCheckInterval = 4096

type notFoundError struct{ msg string }

func (e *notFoundError) Error() string { return e.msg }

// ErrCanceled indicates the search context was canceled mid-expansion.
var ErrCanceled = &notFoundError{"pathfinder: canceled"}

// Options tunes a single FindRoutes call.
type Options struct {
	Vessel               port.VesselConstraints
	Criterion            port.Criterion
	MaxConnectingPorts   int // default 2, hard cap 8
	MaxAlternativeRoutes int // default 3, hard cap 10
	CheckInterval        int // default 4096
	Tables               *costmodel.Tables
}

// normalized returns a copy of o with defaults and caps applied per spec
// §4.6.
func (o Options) normalized() Options {
	if o.MaxConnectingPorts <= 0 {
		o.MaxConnectingPorts = 2
	}
	if o.MaxConnectingPorts > 8 {
		o.MaxConnectingPorts = 8
	}
	if o.MaxAlternativeRoutes <= 0 {
		o.MaxAlternativeRoutes = 3
	}
	if o.MaxAlternativeRoutes > 10 {
		o.MaxAlternativeRoutes = 10
	}
	if o.CheckInterval <= 0 {
		o.CheckInterval = defaultCheckInterval
	}
	if o.Tables == nil {
		o.Tables = costmodel.DefaultTables()
	}
	return o
}

// Path is a single candidate route: an ordered sequence of UN/LOCODEs and
// its total scalar cost under the requesting Options.Criterion.
type Path struct {
	Ports []string
	Cost  float64
}

// Result is the outcome of FindRoutes: a primary path plus up to
// MaxAlternativeRoutes distinct, loopless alternatives, and the count of
// candidate paths the search examined (for the coordinator's diagnostics).
type Result struct {
	Primary             Path
	Alternatives        []Path
	CandidatesEvaluated int
}

// exclusion restricts a search: excludedNodes may not appear on the path
// (besides source/destination), excludedEdges may not be traversed.
type exclusion struct {
	nodes map[string]bool
	edges map[[2]string]bool
}

func newExclusion() exclusion {
	return exclusion{nodes: make(map[string]bool), edges: make(map[[2]string]bool)}
}

// searchContext bundles the fixed inputs to a single-source search so the
// Dijkstra and A* entry points stay small.
type searchContext struct {
	ctx           context.Context
	graph         *port.Graph
	vessel        *port.VesselConstraints
	criterion     port.Criterion
	dest          string
	maxHopEdges   int
	checkInterval int
	heuristic     func(code string) float64 // nil for plain Dijkstra
	excl          exclusion
	tables        *costmodel.Tables
}

// edgeScalarCost evaluates an edge's scalar cost for the search's
// criterion, folding in the destination port's congestion-weighted call
// fee as an estimated allocated cost so most_economical comparisons steer
// away from routes through congested, expensive ports — the assembler
// applies the precise, final fee accounting once a path is chosen (spec
// §4.5/§4.7).
func edgeScalarCost(tables *costmodel.Tables, e *port.Edge, v *port.VesselConstraints, toPort *port.Port, criterion port.Criterion) float64 {
	b := tables.Evaluate(e, v)
	congestion := 1.0
	if toPort != nil && toPort.CongestionFactor > 0 {
		congestion = toPort.CongestionFactor
	}
	allocatedFees := congestion * costmodel.BasePortFee(v.DeadweightOrDefault())
	return costmodel.ScalarCost(b, allocatedFees, criterion)
}
