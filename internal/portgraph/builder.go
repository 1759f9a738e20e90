// Package portgraph builds the materialized PortGraph (spec §4.4) from a
// flat port catalog: nearest-neighbor edges, curated canal edges, and hub
// edges, each carrying the static weather/piracy/political metrics the cost
// model consumes. It also owns the atomic snapshot and single-flighted
// rebuild used whenever the catalog version bumps (§4.4, §5).
package portgraph

import (
	"fmt"
	"sort"

	"searoute/internal/port"
	"searoute/internal/spatialindex"
	"searoute/pkg/apperror"
	"searoute/pkg/geo"
)

// Config tunes graph construction. Mirrors pkg/config.GraphConfig so callers
// can pass that struct straight through without this package importing
// pkg/config.
type Config struct {
	KNearest         int
	KNearestRadiusNM float64
	HubCount         int
	HubRadiusNM      float64
	RiskTables       RiskTables
}

// edgeKey identifies a directed edge for deduplication while building: the
// same port pair can surface from more than one construction step (k-NN and
// hub selection both reaching the same neighbor, for instance).
type edgeKey struct {
	from, to string
}

// Build constructs a PortGraph from the given catalog, following spec
// §4.4's five steps. Only operable ports (active or restricted) become
// nodes; inactive and maintenance ports are dropped before construction.
//
// Returns apperror CodeGraphBuildFailed if the resulting graph is
// disconnected — per spec, this is fatal and must not be retried.
func Build(ports []port.Port, cfg Config) (*port.Graph, error) {
	operable := make([]port.Port, 0, len(ports))
	for _, p := range ports {
		if p.Status.Operable() {
			operable = append(operable, p)
		}
	}
	if len(operable) == 0 {
		return nil, apperror.New(apperror.CodeGraphBuildFailed, "port graph build: no operable ports in catalog")
	}

	riskTables := cfg.RiskTables
	if len(riskTables.WeatherBands) == 0 {
		riskTables = DefaultRiskTables()
	}

	idx := spatialindex.Build(operable)
	g := port.NewGraph()
	for _, p := range idx.All() {
		pp := p
		g.AddNode(pp)
	}

	seen := make(map[edgeKey]bool)
	addBidirectional := func(a, b *port.Port, dist float64, canal port.Canal) {
		for _, pair := range [2][2]*port.Port{{a, b}, {b, a}} {
			from, to := pair[0], pair[1]
			if from.Code == to.Code {
				continue
			}
			key := edgeKey{from.Code, to.Code}
			if seen[key] {
				continue
			}
			seen[key] = true
			g.AddEdge(buildEdge(from, to, dist, canal, riskTables))
		}
	}

	// Step 3 (run first): curated canal edges — every pair of ports sharing
	// a canal flag is connected via that canal, representing the shortcut
	// transit. Built before the k-NN pass so a port pair that is both
	// canal-linked and geographically close keeps its CanalRequired
	// marker rather than being silently deduplicated into a plain leg.
	for _, canal := range []port.Canal{port.CanalSuez, port.CanalPanama, port.CanalKiel, port.CanalBosphorus} {
		members := make([]*port.Port, 0)
		for _, p := range idx.All() {
			if p.HasCanal(canal) {
				members = append(members, p)
			}
		}
		for i := 0; i < len(members); i++ {
			for j := i + 1; j < len(members); j++ {
				dist := geo.DistanceNM(members[i].Location, members[j].Location)
				addBidirectional(members[i], members[j], dist, canal)
			}
		}
	}

	// Step 2: k-NN edges.
	knn := cfg.KNearest
	if knn <= 0 {
		knn = 8
	}
	knnRadius := cfg.KNearestRadiusNM
	if knnRadius <= 0 {
		knnRadius = 1500
	}
	for _, p := range idx.All() {
		neighbors := idx.KNearest(p, knn, knnRadius)
		for _, n := range neighbors {
			addBidirectional(p, n.Port, n.DistanceNM, "")
		}
	}

	// Step 4: hub edges from the top-N hubs by descending berth count
	// among multipurpose/container-terminal types, to every node within
	// HubRadiusNM.
	hubCount := cfg.HubCount
	if hubCount <= 0 {
		hubCount = 40
	}
	hubRadius := cfg.HubRadiusNM
	if hubRadius <= 0 {
		hubRadius = 6000
	}
	hubs := selectHubs(idx.All(), hubCount)
	for _, hub := range hubs {
		reach := idx.Nearby(hub.Location.Lat, hub.Location.Lon, hubRadius, idx.Len())
		for _, n := range reach {
			addBidirectional(hub, n.Port, n.DistanceNM, "")
		}
	}

	// Step 5: connectivity check.
	start := idx.All()[0].Code
	if ok, unreachable := g.Connected(start); !ok {
		return nil, apperror.New(apperror.CodeGraphBuildFailed,
			fmt.Sprintf("port graph build: %d port(s) unreachable from %s", len(unreachable), start)).
			WithDetails("unreachable", unreachable)
	}

	return g, nil
}

// buildEdge constructs the Edge for a leg between from and to, filling in
// the weather/risk metrics spec §4.4 calls for against rt.
func buildEdge(from, to *port.Port, distanceNM float64, canal port.Canal, rt RiskTables) *port.Edge {
	weather := weatherFactor(from.Location, to.Location, rt.WeatherBands)
	piracy, political := edgeRisk(from.Country, to.Country, rt)

	kind := legKind(distanceNM)
	if canal != "" {
		kind = canalKind(canal)
	}

	return &port.Edge{
		From:           from.Code,
		To:             to.Code,
		DistanceNM:     distanceNM,
		Kind:           kind,
		BaseCongestion: to.CongestionFactor,
		WeatherFactor:  weather,
		PiracyRisk:     piracy,
		PoliticalRisk:  political,
		CanalRequired:  canal,
	}
}

// selectHubs returns up to n hub-candidate ports (spec's multipurpose or
// container-terminal types), ordered by descending berth count then
// ascending UN/LOCODE for determinism.
func selectHubs(ports []*port.Port, n int) []*port.Port {
	candidates := make([]*port.Port, 0, len(ports))
	for _, p := range ports {
		if p.IsHubCandidate() {
			candidates = append(candidates, p)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].BerthCount != candidates[j].BerthCount {
			return candidates[i].BerthCount > candidates[j].BerthCount
		}
		return candidates[i].Code < candidates[j].Code
	})
	if len(candidates) > n {
		candidates = candidates[:n]
	}
	return candidates
}
