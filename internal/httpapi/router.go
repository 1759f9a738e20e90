// Package httpapi exposes the route-planning core over the JSON/HTTP
// surface of spec §6: POST /routes/calculate, POST /routes/validate,
// GET /ports/search, GET /ports/{code}, GET /health, the Prometheus
// /metrics endpoint, and a /swagger UI for the contract above.
package httpapi

import (
	"net/http"

	"searoute/gen/openapi"
	"searoute/internal/coordinator"
	"searoute/internal/portgraph"
	"searoute/internal/portrepo"
	"searoute/pkg/config"
	"searoute/pkg/metrics"
	"searoute/pkg/ratelimit"
	"searoute/pkg/swagger"
)

// NewRouter builds the top-level handler: every route wrapped in logging,
// metrics, and CORS middleware (spec §6, ambient stack per the teacher
// gateway's interceptor chain), plus an optional ingress rate limiter.
func NewRouter(coord *coordinator.Coordinator, repo portrepo.Repository, graphs *portgraph.Manager, m *metrics.Metrics, cors config.CORSConfig, limiter ratelimit.Limiter) http.Handler {
	h := NewHandlers(coord, repo, graphs)
	mux := http.NewServeMux()

	route := func(pattern, label string, handler http.HandlerFunc) {
		mux.Handle(pattern, chain(handler, Metrics(m, label)))
	}

	route("POST /routes/calculate", "routes_calculate", h.CalculateRoutes)
	route("POST /routes/validate", "routes_validate", h.ValidateRoute)
	route("GET /ports/search", "ports_search", h.SearchPorts)
	route("GET /ports/{code}", "ports_get", h.GetPort)
	route("GET /health", "health", h.Health)
	mux.Handle("GET /metrics", metrics.Handler())
	if spec, err := openapi.GetSpec(); err == nil {
		swagger.RegisterRoutes(mux, swagger.DefaultConfig(), spec)
	}

	return chain(mux, Logging, RateLimit(limiter), CORS(cors))
}
