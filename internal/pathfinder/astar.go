package pathfinder

import (
	"searoute/internal/port"
	"searoute/pkg/geo"
)

// balancedHeuristic returns an admissible lower bound on the remaining
// balanced-criterion cost from code to dest (spec §4.6: "a cheap admissible
// lower bound ... great-circle distance × minimum per-nm cost"). It
// considers only the time component at the vessel's best possible speed,
// scaled by the lowest congestion factor a port may carry (0.5) and with no
// weather penalty, and ignores fuel/risk entirely — both can only add cost
// on the real path, so the bound never overestimates.
func balancedHeuristic(graph *port.Graph, dest *port.Port, vessel *port.VesselConstraints) func(string) float64 {
	maxSpeed := vessel.MaxSpeedKn
	if maxSpeed <= 0 {
		maxSpeed = vessel.CruiseSpeedKn
	}
	if maxSpeed <= 0 {
		maxSpeed = 1
	}

	return func(code string) float64 {
		if code == dest.Code {
			return 0
		}
		p, ok := graph.Nodes[code]
		if !ok {
			return 0
		}
		const minCongestion = 0.5
		bestCaseHours := geo.DistanceNM(p.Location, dest.Location) / maxSpeed * minCongestion
		return 0.4 * (bestCaseHours / 24)
	}
}

// useAStar reports whether criterion should search with the balanced
// heuristic (A*) rather than plain Dijkstra (spec §4.6: "For balanced ...
// use A* with that heuristic").
func useAStar(criterion port.Criterion) bool {
	return criterion == port.CriterionBalanced
}
