package analytics

import (
	"context"

	"searoute/pkg/logger"
)

// LogSink emits each event as a structured log line via the package-level
// logger. It never fails — there is nothing for the caller to retry.
type LogSink struct{}

// NewLogSink returns a Sink that writes events to the process log.
func NewLogSink() *LogSink { return &LogSink{} }

func (s *LogSink) Emit(_ context.Context, e Event) {
	logger.Info("analytics event",
		"event_type", e.Type,
		"request_id", e.RequestID,
		"origin", e.Origin,
		"destination", e.Destination,
		"criterion", e.Criterion,
		"duration_ms", e.Duration.Milliseconds(),
		"candidates_evaluated", e.CandidatesEvaluated,
		"alternatives_found", e.AlternativesFound,
		"cache_hit", e.CacheHit,
	)
}

// Close is a no-op: LogSink owns no resources.
func (s *LogSink) Close() error { return nil }
