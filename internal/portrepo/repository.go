// Package portrepo defines the narrow repository interface the route-
// planning core uses to read the port catalog, plus an in-memory and a
// Postgres-backed implementation.
//
// The core never touches a database or an in-memory index directly — it
// always goes through Repository, per spec §9's "replace ORM-style entity
// objects ... with a narrow repository interface".
package portrepo

import (
	"context"
	"errors"

	"searoute/internal/port"
)

// Error kinds returned by repository operations, per spec §4.2.
var (
	ErrNotFound    = errors.New("portrepo: not found")
	ErrUnavailable = errors.New("portrepo: backend unavailable")
	ErrInvalid     = errors.New("portrepo: invalid argument")
)

// SearchOptions narrows a text search.
type SearchOptions struct {
	Limit                  int
	Country                string
	VesselTypeCompatible   port.Type
	IncludeInactive        bool
}

// SearchResult pairs a port with its relevance score for ranking.
type SearchResult struct {
	Port      port.Port
	Relevance float64
}

// Repository is the read-only port catalog contract. Implementations must be
// safe for concurrent use.
type Repository interface {
	// Get returns the port with the given UN/LOCODE.
	Get(ctx context.Context, code string) (*port.Port, error)

	// Search ranks ports against a free-text query: exact UN/LOCODE match
	// first, then name prefix, then substring, then trigram similarity;
	// ties break on larger berth count then alphabetic name. Query must be
	// at least two characters; Limit is clamped to 100.
	Search(ctx context.Context, query string, opts SearchOptions) ([]SearchResult, error)

	// Nearby returns ports within radiusNM of (lat, lon), ascending by
	// distance, capped at limit results.
	Nearby(ctx context.Context, lat, lon, radiusNM float64, limit int) ([]SearchResult, error)

	// CatalogVersion returns a monotonically increasing version tag. The
	// graph builder watches this to decide when to rebuild (spec §4.4).
	CatalogVersion(ctx context.Context) (int64, error)

	// All returns every port in the catalog, active or not — used once at
	// startup (and on catalog-version bump) to build the port graph.
	All(ctx context.Context) ([]port.Port, error)
}
