package portrepo

import (
	"context"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"searoute/internal/port"
	"searoute/internal/spatialindex"
)

// MemoryRepository is an in-memory, read-mostly Repository backed by a
// spatialindex.Index. It is safe for concurrent use: Replace atomically
// swaps the underlying index so readers never observe a partially updated
// catalog, mirroring the teacher's in-process graph cache pattern.
type MemoryRepository struct {
	mu      sync.RWMutex
	idx     *spatialindex.Index
	version int64
}

// NewMemoryRepository builds a MemoryRepository from an initial catalog
// snapshot.
func NewMemoryRepository(ports []port.Port) *MemoryRepository {
	r := &MemoryRepository{idx: spatialindex.Build(ports)}
	atomic.StoreInt64(&r.version, 1)
	return r
}

// Replace swaps in a new catalog snapshot and bumps the catalog version,
// triggering a graph rebuild on the next watcher poll (spec §4.4).
func (r *MemoryRepository) Replace(ports []port.Port) {
	idx := spatialindex.Build(ports)
	r.mu.Lock()
	r.idx = idx
	r.mu.Unlock()
	atomic.AddInt64(&r.version, 1)
}

func (r *MemoryRepository) snapshot() *spatialindex.Index {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.idx
}

func (r *MemoryRepository) Get(ctx context.Context, code string) (*port.Port, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p := r.snapshot().Get(code)
	if p == nil {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *MemoryRepository) Search(ctx context.Context, query string, opts SearchOptions) ([]SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(query) < 2 {
		return nil, ErrInvalid
	}
	limit := opts.Limit
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	q := strings.ToUpper(strings.TrimSpace(query))
	idx := r.snapshot()

	var results []SearchResult
	for _, p := range idx.All() {
		if !opts.IncludeInactive && !p.Status.Operable() {
			continue
		}
		if opts.Country != "" && p.Country != opts.Country {
			continue
		}
		if opts.VesselTypeCompatible != "" && p.Type != opts.VesselTypeCompatible {
			continue
		}
		score, ok := matchScore(q, p)
		if !ok {
			continue
		}
		results = append(results, SearchResult{Port: *p, Relevance: score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Relevance != results[j].Relevance {
			return results[i].Relevance > results[j].Relevance
		}
		if results[i].Port.BerthCount != results[j].Port.BerthCount {
			return results[i].Port.BerthCount > results[j].Port.BerthCount
		}
		return results[i].Port.Name < results[j].Port.Name
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// matchScore ranks p against the upper-cased query q: exact UN/LOCODE match
// scores highest, then name prefix, then substring, then a coarse trigram
// overlap, per spec §4.2.
func matchScore(q string, p *port.Port) (float64, bool) {
	name := strings.ToUpper(p.Name)
	switch {
	case p.Code == q:
		return 1000, true
	case strings.HasPrefix(name, q):
		return 500, true
	case strings.Contains(name, q):
		return 250, true
	}
	sim := trigramSimilarity(q, name)
	if sim < 0.2 {
		return 0, false
	}
	return 100 * sim, true
}

// trigramSimilarity returns the Jaccard overlap of a's and b's character
// trigrams, a cheap stand-in for Postgres's pg_trgm similarity() used by the
// Postgres-backed repository.
func trigramSimilarity(a, b string) float64 {
	ta, tb := trigrams(a), trigrams(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	inter := 0
	for t := range ta {
		if tb[t] {
			inter++
		}
	}
	union := len(ta) + len(tb) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func trigrams(s string) map[string]bool {
	padded := "  " + s + "  "
	out := make(map[string]bool)
	for i := 0; i+3 <= len(padded); i++ {
		out[padded[i:i+3]] = true
	}
	return out
}

func (r *MemoryRepository) Nearby(ctx context.Context, lat, lon, radiusNM float64, limit int) ([]SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	idx := r.snapshot()
	near := idx.Nearby(lat, lon, radiusNM, limit)
	out := make([]SearchResult, 0, len(near))
	for _, n := range near {
		out = append(out, SearchResult{Port: *n.Port, Relevance: n.DistanceNM})
	}
	return out, nil
}

func (r *MemoryRepository) CatalogVersion(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return atomic.LoadInt64(&r.version), nil
}

func (r *MemoryRepository) All(ctx context.Context) ([]port.Port, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	idx := r.snapshot()
	all := idx.All()
	out := make([]port.Port, len(all))
	for i, p := range all {
		out[i] = *p
	}
	return out, nil
}

var _ Repository = (*MemoryRepository)(nil)
