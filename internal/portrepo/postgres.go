package portrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"searoute/internal/port"
	"searoute/pkg/database"
	"searoute/pkg/telemetry"
)

// PostgresRepository is a pgx-backed Repository. Text search uses
// pg_trgm similarity, radius search uses a bounding-box pre-filter refined
// with an exact great-circle distance computed in SQL, and catalog-version
// tracking rides on a single monotonic counter row maintained by triggers
// (see migrations/).
type PostgresRepository struct {
	db database.DB
}

// NewPostgresRepository wraps an open database handle.
func NewPostgresRepository(db database.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, code string) (*port.Port, error) {
	ctx, span := telemetry.StartSpan(ctx, "PostgresRepository.Get")
	defer span.End()

	query := `
		SELECT code, name, country, lat, lon, type, status,
		       max_length_m, max_beam_m, max_draft_m, berth_count,
		       congestion_factor, avg_stay_hours, services, canal_connectivity
		FROM ports
		WHERE code = $1
	`

	p := &port.Port{}
	var services, canals []string
	err := r.db.QueryRow(ctx, query, code).Scan(
		&p.Code, &p.Name, &p.Country, &p.Location.Lat, &p.Location.Lon,
		&p.Type, &p.Status, &p.MaxLengthM, &p.MaxBeamM, &p.MaxDraftM,
		&p.BerthCount, &p.CongestionFactor, &p.AvgStayHours, &services, &canals,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("portrepo: get %s: %w: %v", code, ErrUnavailable, err)
	}
	p.Services = services
	p.CanalConnectivity = toCanals(canals)
	return p, nil
}

func (r *PostgresRepository) Search(ctx context.Context, query string, opts SearchOptions) ([]SearchResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "PostgresRepository.Search")
	defer span.End()

	if len(query) < 2 {
		return nil, ErrInvalid
	}
	limit := opts.Limit
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	sql := `
		SELECT code, name, country, lat, lon, type, status,
		       max_length_m, max_beam_m, max_draft_m, berth_count,
		       congestion_factor, avg_stay_hours, services, canal_connectivity,
		       CASE
		         WHEN code = upper($1) THEN 1000
		         WHEN name ILIKE $1 || '%' THEN 500
		         WHEN name ILIKE '%' || $1 || '%' THEN 250
		         ELSE 100 * similarity(name, $1)
		       END AS relevance
		FROM ports
		WHERE ($4 OR status IN ('active', 'restricted'))
		  AND ($2 = '' OR country = $2)
		  AND ($3 = '' OR type = $3)
		  AND (code = upper($1) OR name ILIKE '%' || $1 || '%' OR similarity(name, $1) > 0.2)
		ORDER BY relevance DESC, berth_count DESC, name ASC
		LIMIT $5
	`

	rows, err := r.db.Query(ctx, sql, query, opts.Country, string(opts.VesselTypeCompatible), opts.IncludeInactive, limit)
	if err != nil {
		return nil, fmt.Errorf("portrepo: search: %w: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	return scanSearchResults(rows)
}

func (r *PostgresRepository) Nearby(ctx context.Context, lat, lon, radiusNM float64, limit int) ([]SearchResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "PostgresRepository.Nearby")
	defer span.End()

	if limit <= 0 {
		limit = 50
	}

	// 2 * asin(...) * earth radius in NM is the haversine distance; the
	// bounding-box clause on lat/lon lets Postgres use the btree index on
	// those columns before paying for the trig.
	sql := `
		SELECT code, name, country, lat, lon, type, status,
		       max_length_m, max_beam_m, max_draft_m, berth_count,
		       congestion_factor, avg_stay_hours, services, canal_connectivity,
		       3440.065 * 2 * asin(sqrt(
		         sin(radians(lat - $1) / 2)^2 +
		         cos(radians($1)) * cos(radians(lat)) *
		         sin(radians(lon - $2) / 2)^2
		       )) AS distance_nm
		FROM ports
		WHERE lat BETWEEN $1 - ($3 / 60.0) AND $1 + ($3 / 60.0)
		  AND lon BETWEEN $2 - ($3 / 60.0) AND $2 + ($3 / 60.0)
		HAVING 3440.065 * 2 * asin(sqrt(
		         sin(radians(lat - $1) / 2)^2 +
		         cos(radians($1)) * cos(radians(lat)) *
		         sin(radians(lon - $2) / 2)^2
		       )) <= $3
		ORDER BY distance_nm ASC
		LIMIT $4
	`

	rows, err := r.db.Query(ctx, sql, lat, lon, radiusNM, limit)
	if err != nil {
		return nil, fmt.Errorf("portrepo: nearby: %w: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	return scanSearchResults(rows)
}

func (r *PostgresRepository) CatalogVersion(ctx context.Context) (int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "PostgresRepository.CatalogVersion")
	defer span.End()

	var version int64
	err := r.db.QueryRow(ctx, `SELECT version FROM port_catalog_version WHERE id = 1`).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("portrepo: catalog version: %w: %v", ErrUnavailable, err)
	}
	return version, nil
}

func (r *PostgresRepository) All(ctx context.Context) ([]port.Port, error) {
	ctx, span := telemetry.StartSpan(ctx, "PostgresRepository.All")
	defer span.End()

	sql := `
		SELECT code, name, country, lat, lon, type, status,
		       max_length_m, max_beam_m, max_draft_m, berth_count,
		       congestion_factor, avg_stay_hours, services, canal_connectivity
		FROM ports
	`
	rows, err := r.db.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("portrepo: all: %w: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	var out []port.Port
	for rows.Next() {
		p := port.Port{}
		var services, canals []string
		if err := rows.Scan(
			&p.Code, &p.Name, &p.Country, &p.Location.Lat, &p.Location.Lon,
			&p.Type, &p.Status, &p.MaxLengthM, &p.MaxBeamM, &p.MaxDraftM,
			&p.BerthCount, &p.CongestionFactor, &p.AvgStayHours, &services, &canals,
		); err != nil {
			return nil, fmt.Errorf("portrepo: all: scan: %w", err)
		}
		p.Services = services
		p.CanalConnectivity = toCanals(canals)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("portrepo: all: %w: %v", ErrUnavailable, err)
	}
	return out, nil
}

func scanSearchResults(rows pgx.Rows) ([]SearchResult, error) {
	var out []SearchResult
	for rows.Next() {
		p := port.Port{}
		var services, canals []string
		var relevance float64
		if err := rows.Scan(
			&p.Code, &p.Name, &p.Country, &p.Location.Lat, &p.Location.Lon,
			&p.Type, &p.Status, &p.MaxLengthM, &p.MaxBeamM, &p.MaxDraftM,
			&p.BerthCount, &p.CongestionFactor, &p.AvgStayHours, &services, &canals,
			&relevance,
		); err != nil {
			return nil, fmt.Errorf("portrepo: scan: %w", err)
		}
		p.Services = services
		p.CanalConnectivity = toCanals(canals)
		out = append(out, SearchResult{Port: p, Relevance: relevance})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("portrepo: %w: %v", ErrUnavailable, err)
	}
	return out, nil
}

func toCanals(names []string) []port.Canal {
	if len(names) == 0 {
		return nil
	}
	out := make([]port.Canal, len(names))
	for i, n := range names {
		out[i] = port.Canal(strings.ToLower(n))
	}
	return out
}

var _ Repository = (*PostgresRepository)(nil)
