// Package coordinator implements the request orchestration described in
// spec §4.8: validate, fingerprint, de-duplicate concurrent identical
// requests, run the pathfinder and assembler under a concurrency ceiling,
// cache the result, and emit an analytics event — all under a single
// request deadline.
package coordinator

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"searoute/internal/assembler"
	"searoute/internal/costmodel"
	"searoute/internal/pathfinder"
	"searoute/internal/port"
	"searoute/internal/portgraph"
	"searoute/pkg/analytics"
	"searoute/pkg/apperror"
	"searoute/pkg/cache"
	"searoute/pkg/logger"
	"searoute/pkg/metrics"
	"searoute/pkg/telemetry"
)

// Config tunes the coordinator's admission control and timing, mirroring
// pkg/config.CoordinatorConfig (spec §6's enumerated configuration table).
type Config struct {
	MaxConcurrentComputations int
	AdmissionWaitBudget       time.Duration
	DefaultRequestTimeout     time.Duration
	RouteCacheTTL             time.Duration
	PathfinderOptions         pathfinder.Options
}

// DefaultConfig returns the spec's stated defaults.
func DefaultConfig() Config {
	return Config{
		MaxConcurrentComputations: 64,
		AdmissionWaitBudget:       2 * time.Second,
		DefaultRequestTimeout:     30 * time.Second,
		RouteCacheTTL:             30 * time.Minute,
	}
}

// Coordinator is the single entry point the HTTP layer calls to turn a
// Request into a RouteResponse.
type Coordinator struct {
	graphs  *portgraph.Manager
	cache   *cache.RouteCache
	sink    analytics.Sink
	metrics *metrics.Metrics
	cfg     Config

	group singleflight.Group
	sem   chan struct{} // compute-phase semaphore (spec §4.8 step 6)
}

// New builds a Coordinator. graphs must already have a graph loaded
// (Manager.Refresh called at least once) before the first Calculate call.
func New(graphs *portgraph.Manager, routeCache *cache.RouteCache, sink analytics.Sink, cfg Config) *Coordinator {
	if cfg.MaxConcurrentComputations <= 0 {
		cfg.MaxConcurrentComputations = 64
	}
	if cfg.AdmissionWaitBudget <= 0 {
		cfg.AdmissionWaitBudget = 2 * time.Second
	}
	if cfg.DefaultRequestTimeout <= 0 {
		cfg.DefaultRequestTimeout = 30 * time.Second
	}
	if cfg.PathfinderOptions.Tables == nil {
		cfg.PathfinderOptions.Tables = costmodel.DefaultTables()
	}
	return &Coordinator{
		graphs:  graphs,
		cache:   routeCache,
		sink:    sink,
		metrics: metrics.Get(),
		cfg:     cfg,
		sem:     make(chan struct{}, cfg.MaxConcurrentComputations),
	}
}

// requestDeadline returns a context bounded by min(request.Timeout, 30s)
// per spec §4.8's "single deadline" rule.
func (c *Coordinator) requestDeadline(ctx context.Context, req *port.Request) (context.Context, context.CancelFunc) {
	timeout := req.Timeout
	if timeout <= 0 || timeout > c.cfg.DefaultRequestTimeout {
		timeout = c.cfg.DefaultRequestTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

// Validate runs step 1 of spec §4.8 only, for POST /routes/validate.
func (c *Coordinator) Validate(ctx context.Context, req *port.Request) error {
	return validateRequest(c.graphs.Graph(), req)
}

// Calculate runs the full coordinator pipeline of spec §4.8 and returns the
// assembled RouteResponse, or a NoRouteFound response (not an error) when
// the feasible subgraph disconnects origin from destination.
func (c *Coordinator) Calculate(ctx context.Context, req *port.Request) (*port.RouteResponse, error) {
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}

	ctx, cancel := c.requestDeadline(ctx, req)
	defer cancel()

	ctx, span := telemetry.StartSpan(ctx, "Coordinator.Calculate",
		telemetry.WithAttributes(
			attribute.String("origin", req.Origin),
			attribute.String("destination", req.Destination),
			attribute.String("criterion", string(req.Criterion)),
		),
	)
	defer span.End()

	graph := c.graphs.Graph()
	if err := validateRequest(graph, req); err != nil {
		telemetry.SetError(ctx, err)
		return nil, err
	}

	if resp, hit, err := c.cache.Get(ctx, req); err != nil {
		logger.Warn("route cache get failed, degrading to compute", "error", err)
	} else if hit {
		span.SetAttributes(attribute.Bool("cache_hit", true))
		c.metrics.RecordCacheOutcome("hit")
		c.emit(ctx, analytics.EventCacheHit, req, resp, 0)
		return resp, nil
	}
	c.metrics.RecordCacheOutcome("miss")

	resp, err := c.computeSingleFlighted(ctx, graph, req, span)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// computeSingleFlighted attaches to (or starts) the in-flight computation
// for req's fingerprint, per spec §4.8 step 3: concurrent identical
// requests share exactly one pathfinder execution.
func (c *Coordinator) computeSingleFlighted(ctx context.Context, graph *port.Graph, req *port.Request, span trace.Span) (*port.RouteResponse, error) {
	key := cache.Fingerprint(req)

	v, err, shared := c.group.Do(key, func() (any, error) {
		return c.computeAndStore(ctx, graph, req)
	})
	if err != nil {
		telemetry.SetError(ctx, err)
		return nil, err
	}
	computed := v.(*port.RouteResponse)
	span.SetAttributes(attribute.Bool("single_flight_shared", shared))

	// Every waiter gets its own copy stamped with its own request ID, so
	// concurrent callers never share a mutable response and each sees the
	// ID it submitted, even though only one computation ran.
	resp := *computed
	resp.RequestID = req.RequestID
	return &resp, nil
}

// computeAndStore runs steps 4-7 of spec §4.8: admission, pathfinder,
// assembly, cache write, and analytics emission.
func (c *Coordinator) computeAndStore(ctx context.Context, graph *port.Graph, req *port.Request) (*port.RouteResponse, error) {
	if err := c.acquire(ctx); err != nil {
		c.metrics.RecordOverloaded()
		c.emit(ctx, analytics.EventOverloaded, req, nil, 0)
		return nil, err
	}
	defer c.release()

	start := time.Now()

	opts := c.cfg.PathfinderOptions
	opts.Vessel = req.Vessel
	opts.Criterion = req.Criterion
	opts.MaxAlternativeRoutes = req.MaxAlternativeRoutes
	opts.MaxConnectingPorts = req.MaxConnectingPorts

	result, err := pathfinder.FindRoutes(ctx, graph, req.Origin, req.Destination, opts)
	if err != nil {
		if err == pathfinder.ErrCanceled {
			c.metrics.RecordRouteCalculation(string(req.Criterion), "deadline_exceeded", time.Since(start), 0)
			return nil, apperror.Wrap(err, apperror.CodeDeadlineExceeded, "route computation exceeded its deadline")
		}
		if appErr, ok := err.(*apperror.Error); ok && appErr.Code == apperror.CodeNoRouteFound {
			elapsed := time.Since(start)
			c.metrics.RecordRouteCalculation(string(req.Criterion), "no_route", elapsed, 0)
			resp := &port.RouteResponse{
				RequestID:           req.RequestID,
				CalculatedAt:        start,
				CalculationDuration: elapsed,
				Criterion:           req.Criterion,
				Algorithm:           "dijkstra+yen",
				Diagnostics:         []string{"no feasible route connects origin and destination"},
			}
			c.emit(ctx, analytics.EventNoRoute, req, resp, elapsed)
			return resp, nil
		}
		c.metrics.RecordRouteCalculation(string(req.Criterion), "error", time.Since(start), 0)
		return nil, err
	}

	primary, err := assembler.Assemble(graph, result.Primary.Ports, &req.Vessel, req.Criterion, c.cfg.PathfinderOptions.Tables)
	if err != nil {
		return nil, err
	}
	alternatives := make([]port.DetailedRoute, 0, len(result.Alternatives))
	for _, alt := range result.Alternatives {
		detailed, err := assembler.Assemble(graph, alt.Ports, &req.Vessel, req.Criterion, c.cfg.PathfinderOptions.Tables)
		if err != nil {
			logger.Warn("dropping alternative route that failed assembly", "error", err)
			continue
		}
		alternatives = append(alternatives, *detailed)
	}

	elapsed := time.Since(start)
	resp := &port.RouteResponse{
		RequestID:           req.RequestID,
		CalculatedAt:        start,
		CalculationDuration: elapsed,
		PrimaryRoute:        primary,
		Alternatives:        alternatives,
		Algorithm:           pathfinderAlgorithmName(opts.Criterion),
		Criterion:           req.Criterion,
		CandidatesEvaluated: result.CandidatesEvaluated,
	}

	c.metrics.RecordRouteCalculation(string(req.Criterion), "success", elapsed, result.CandidatesEvaluated)

	if err := c.cache.Set(ctx, req, resp, c.cfg.RouteCacheTTL); err != nil {
		logger.Warn("route cache set failed", "error", err)
	}

	c.emit(ctx, analytics.EventRouteCalculated, req, resp, elapsed)
	return resp, nil
}

func pathfinderAlgorithmName(criterion port.Criterion) string {
	if criterion == port.CriterionBalanced {
		return "astar+yen"
	}
	return "dijkstra+yen"
}

// acquire blocks for a compute slot up to AdmissionWaitBudget, returning
// apperror CodeOverloaded if none frees up in time (spec §4.8 step 6).
func (c *Coordinator) acquire(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, c.cfg.AdmissionWaitBudget)
	defer cancel()

	select {
	case c.sem <- struct{}{}:
		return nil
	case <-waitCtx.Done():
		return apperror.New(apperror.CodeOverloaded, "no compute slot available within admission wait budget")
	}
}

func (c *Coordinator) release() {
	<-c.sem
}

func (c *Coordinator) emit(ctx context.Context, eventType analytics.EventType, req *port.Request, resp *port.RouteResponse, duration time.Duration) {
	if c.sink == nil {
		return
	}
	event := analytics.Event{
		Type:        eventType,
		RequestID:   req.RequestID,
		Origin:      req.Origin,
		Destination: req.Destination,
		Criterion:   req.Criterion,
		Duration:    duration,
	}
	if resp != nil {
		event.CandidatesEvaluated = resp.CandidatesEvaluated
		event.AlternativesFound = len(resp.Alternatives)
		event.CacheHit = resp.CacheHit
	}
	c.sink.Emit(ctx, event)
}
