// Package spatialindex provides an in-memory, immutable spatial index over
// port coordinates — a bulk-loaded (STR) R-tree backed by
// github.com/dhconnelly/rtreego, plus a hash table for UN/LOCODE lookup.
//
// An Index is built once from a catalog snapshot and never mutated; a
// catalog change produces a new Index that is atomically swapped in by the
// caller (spec §4.3: "The index is immutable; updates produce a new index
// atomically swapped in.").
package spatialindex

import (
	"math"
	"sort"

	"github.com/dhconnelly/rtreego"

	"searoute/internal/port"
	"searoute/pkg/geo"
)

// pointEpsilon gives point features (zero-area) a small non-zero bounding
// box, since rtreego rectangles require positive side lengths. ~11 m at the
// equator, matching the convention used by real-world ENC R-tree indices.
const pointEpsilon = 0.0001

// indexedPort adapts a port.Port to rtreego.Spatial.
type indexedPort struct {
	p *port.Port
}

func (ip *indexedPort) Bounds() rtreego.Rect {
	lon, lat := ip.p.Location.Lon, ip.p.Location.Lat
	rect, err := rtreego.NewRect(rtreego.Point{lon, lat}, []float64{pointEpsilon, pointEpsilon})
	if err != nil {
		// Only returned for non-positive side lengths, which pointEpsilon
		// never produces.
		panic(err)
	}
	return rect
}

// Index is an immutable snapshot of the port catalog's spatial structure.
type Index struct {
	tree   *rtreego.Rtree
	byCode map[string]*port.Port
	ports  []*port.Port
}

// Build bulk-loads an Index from a catalog snapshot using the R-tree's
// Sort-Tile-Recursive constructor, per spec §4.4 step 1.
func Build(ports []port.Port) *Index {
	idx := &Index{
		byCode: make(map[string]*port.Port, len(ports)),
		ports:  make([]*port.Port, 0, len(ports)),
	}

	objs := make([]rtreego.Spatial, 0, len(ports))
	for i := range ports {
		p := &ports[i]
		idx.byCode[p.Code] = p
		idx.ports = append(idx.ports, p)
		objs = append(objs, &indexedPort{p: p})
	}

	// min=25, max=50 children per node are the defaults rtreego's own
	// documentation recommends for STR bulk loading of this size range.
	idx.tree = rtreego.NewTree(2, 25, 50, objs...)
	return idx
}

// Get returns the port with the given UN/LOCODE, or nil.
func (idx *Index) Get(code string) *port.Port {
	return idx.byCode[code]
}

// Len returns the number of ports in the index.
func (idx *Index) Len() int { return len(idx.ports) }

// All returns every port in the index, in UN/LOCODE order.
func (idx *Index) All() []*port.Port {
	out := make([]*port.Port, len(idx.ports))
	copy(out, idx.ports)
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// degreesPerNM approximates how many degrees of latitude correspond to one
// nautical mile, used to size the R-tree query rectangle before refining
// with an exact haversine distance.
const degreesPerNM = 1.0 / 60.0

// Nearby returns ports within radiusNM of (lat, lon), ascending by distance,
// capped at limit. It pre-filters candidates with a bounding-box R-tree
// query sized generously for the query radius, then refines with an exact
// great-circle distance (spec §4.3/§4.2).
func (idx *Index) Nearby(lat, lon, radiusNM float64, limit int) []PortDistance {
	if limit <= 0 {
		limit = len(idx.ports)
	}

	latMargin := radiusNM*degreesPerNM*1.15 + pointEpsilon
	// A degree of longitude spans cos(lat) of a degree of latitude, so the
	// longitude margin widens with latitude.
	lonMargin := 180.0
	if c := math.Cos(lat * math.Pi / 180); c > latMargin/180 {
		lonMargin = latMargin / c
	}
	rect, err := rtreego.NewRect(
		rtreego.Point{lon - lonMargin, lat - latMargin},
		[]float64{2 * lonMargin, 2 * latMargin},
	)
	if err != nil {
		return nil
	}

	candidates := idx.tree.SearchIntersect(rect)
	origin := geo.Point{Lat: lat, Lon: lon}

	results := make([]PortDistance, 0, len(candidates))
	for _, c := range candidates {
		ip := c.(*indexedPort)
		d := geo.DistanceNM(origin, ip.p.Location)
		if d <= radiusNM {
			results = append(results, PortDistance{Port: ip.p, DistanceNM: d})
		}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].DistanceNM != results[j].DistanceNM {
			return results[i].DistanceNM < results[j].DistanceNM
		}
		return results[i].Port.Code < results[j].Port.Code
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// KNearest returns the k nearest ports to p (excluding p itself) within
// radiusNM, ascending by distance — used by the graph builder for
// nearest-neighbor edges (spec §4.4 step 2).
func (idx *Index) KNearest(p *port.Port, k int, radiusNM float64) []PortDistance {
	all := idx.Nearby(p.Location.Lat, p.Location.Lon, radiusNM, k+1)
	out := make([]PortDistance, 0, k)
	for _, r := range all {
		if r.Port.Code == p.Code {
			continue
		}
		out = append(out, r)
		if len(out) == k {
			break
		}
	}
	return out
}

// PortDistance pairs a port with its great-circle distance from a query
// point.
type PortDistance struct {
	Port       *port.Port
	DistanceNM float64
}
