// Package assembler expands a graph path produced by the pathfinder into a
// fully detailed route: per-segment waypoints, fees, and cumulative scores
// (spec §4.7).
package assembler

import (
	"fmt"
	"math"

	"searoute/internal/costmodel"
	"searoute/internal/port"
	"searoute/pkg/geo"
)

// maxWaypointsPerSegment bounds the great-circle interpolation per edge —
// these exist only to draw a route on a map, never for cost accounting.
const maxWaypointsPerSegment = 32

// referenceFuelTonsPerNM is the fuel efficiency a route scoring 0 on the
// environmental dimension would exhibit; more efficient routes score higher.
const referenceFuelTonsPerNM = 1.0

// Assemble expands ports (an ordered sequence of UN/LOCODEs as returned by
// the pathfinder) into a DetailedRoute over graph, applying vessel-specific
// fees and the criterion's scalar cost at each edge. tables carries the
// fuel/canal-fee/speed-cap tables to evaluate against; a nil tables falls
// back to costmodel.DefaultTables().
func Assemble(graph *port.Graph, ports []string, vessel *port.VesselConstraints, criterion port.Criterion, tables *costmodel.Tables) (*port.DetailedRoute, error) {
	if len(ports) < 2 {
		return nil, fmt.Errorf("assembler: path must have at least two ports, got %d", len(ports))
	}
	if tables == nil {
		tables = costmodel.DefaultTables()
	}

	route := &port.DetailedRoute{Ports: ports}
	var totalCost, weightedRisk float64

	for i := 0; i+1 < len(ports); i++ {
		fromCode, toCode := ports[i], ports[i+1]
		fromPort, toPort := graph.Nodes[fromCode], graph.Nodes[toCode]
		if fromPort == nil || toPort == nil {
			return nil, fmt.Errorf("assembler: port %q not in graph", pickMissing(fromCode, fromPort, toCode, toPort))
		}
		edge := findEdge(graph, fromCode, toCode)
		if edge == nil {
			return nil, fmt.Errorf("assembler: no edge %s -> %s in graph", fromCode, toCode)
		}

		b := tables.Evaluate(edge, vessel)
		congestion := toPort.CongestionFactor
		if congestion <= 0 {
			congestion = 1.0
		}
		portFee := congestion * costmodel.BasePortFee(vessel.DeadweightOrDefault())

		seg := port.Segment{
			From:             fromCode,
			To:               toCode,
			Kind:             edge.Kind,
			Waypoints:        interpolateWaypoints(fromPort.Location, toPort.Location),
			DistanceNM:       edge.DistanceNM,
			TransitTimeHours: b.TimeHours + toPort.AvgStayHours,
			FuelTons:         b.FuelTons,
			FuelCost:         b.FuelCost,
			PortFees:         portFee,
			CanalFees:        b.CanalFees,
			WeatherRisk:      (edge.WeatherFactor - 1.0) * 100,
			PiracyRisk:       edge.PiracyRisk,
			PoliticalRisk:    edge.PoliticalRisk,
		}
		route.Segments = append(route.Segments, seg)

		route.TotalDistanceNM += seg.DistanceNM
		route.TotalTimeHours += seg.TransitTimeHours
		route.TotalFuelTons += seg.FuelTons
		route.TotalFuelCost += seg.FuelCost
		route.TotalPortFees += seg.PortFees
		route.TotalCanalFees += seg.CanalFees
		weightedRisk += b.Risk * edge.DistanceNM

		totalCost += costmodel.ScalarCost(b, portFee, criterion)
	}

	route.TotalCost = totalCost
	if route.TotalDistanceNM > 0 {
		weightedRisk /= route.TotalDistanceNM
	}

	origin, dest := graph.Nodes[ports[0]], graph.Nodes[ports[len(ports)-1]]
	directDistance := geo.DistanceNM(origin.Location, dest.Location)

	fuelTonsPerNM := safeDiv(route.TotalFuelTons, route.TotalDistanceNM)

	route.EfficiencyScore = clampScore(100 * safeDiv(directDistance, route.TotalDistanceNM))
	route.OverallRiskScore = clampScore(weightedRisk)
	route.ReliabilityScore = clampScore(100 - weightedRisk)
	route.EnvironmentalScore = clampScore(100 - 100*safeDiv(fuelTonsPerNM, referenceFuelTonsPerNM))
	route.OptimizationScore = optimizationScore(route, len(route.Segments), criterion)

	return route, nil
}

// findEdge looks up the edge from -> to in graph's adjacency list.
func findEdge(graph *port.Graph, from, to string) *port.Edge {
	for _, e := range graph.Neighbors(from) {
		if e.To == to {
			return e
		}
	}
	return nil
}

// interpolateWaypoints returns the bounded great-circle waypoints for a
// segment as port.WaypointCoord values.
func interpolateWaypoints(a, b geo.Point) []port.WaypointCoord {
	pts := geo.Interpolate(a, b, maxWaypointsPerSegment-1)
	out := make([]port.WaypointCoord, len(pts))
	for i, p := range pts {
		out[i] = port.WaypointCoord{Lat: p.Lat, Lon: p.Lon}
	}
	return out
}

// optimizationScore normalizes the route's criterion-specific total cost
// into [0,100] using the same fixed per-edge scales the cost model uses to
// normalize the balanced criterion (spec §4.5), scaled by hop count so
// multi-leg routes are compared on a per-leg basis.
func optimizationScore(route *port.DetailedRoute, hops int, criterion port.Criterion) float64 {
	if hops == 0 {
		return 0
	}
	var scale float64
	switch criterion {
	case port.CriterionFastest:
		scale = 24.0
	case port.CriterionEconomical:
		scale = 100000.0
	case port.CriterionReliable:
		scale = 24.0
	default:
		scale = 1.0
	}
	perLeg := route.TotalCost / float64(hops)
	return clampScore(100 / (1 + perLeg/scale))
}

func clampScore(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

func pickMissing(fromCode string, fromPort *port.Port, toCode string, toPort *port.Port) string {
	if fromPort == nil {
		return fromCode
	}
	return toCode
}
