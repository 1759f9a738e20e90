// Package analytics emits fire-and-forget observability events from the
// request coordinator (spec §4.8 step 7, §7: "analytics logging (fire-and-
// forget sink)"). Emission must never block or fail the request it
// describes — the coordinator is the only caller, and it does not check
// for errors.
package analytics

import (
	"context"
	"time"

	"searoute/internal/port"
)

// EventType names the kind of event being recorded.
type EventType string

const (
	// EventRouteCalculated fires once per completed (non-cached) compute
	// phase.
	EventRouteCalculated EventType = "route_calculated"
	// EventCacheHit fires when a request is served entirely from cache.
	EventCacheHit EventType = "cache_hit"
	// EventOverloaded fires when a request is rejected by the concurrency
	// ceiling (spec §4.8 step 6).
	EventOverloaded EventType = "overloaded"
	// EventNoRoute fires when the feasible subgraph disconnects origin
	// from destination.
	EventNoRoute EventType = "no_route"
)

// Event is a single analytics record.
type Event struct {
	Type                EventType
	RequestID           string
	Origin              string
	Destination         string
	Criterion           port.Criterion
	Duration            time.Duration
	CandidatesEvaluated int
	AlternativesFound   int
	CacheHit            bool
}

// Sink accepts analytics events. Emit must never block the caller for long
// and must never return an error the caller is expected to act on —
// callers are expected to ignore Emit's return value entirely, matching
// the fire-and-forget contract of spec §7.
type Sink interface {
	Emit(ctx context.Context, event Event)
	Close() error
}
