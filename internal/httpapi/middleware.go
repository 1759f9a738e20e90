package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"searoute/pkg/apperror"
	"searoute/pkg/config"
	"searoute/pkg/logger"
	"searoute/pkg/metrics"
	"searoute/pkg/ratelimit"
)

// statusRecorder captures the status code a handler wrote, since
// http.ResponseWriter doesn't expose it after the fact.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Logging logs each request's route, status, and duration, mirroring the
// teacher gateway's LoggingInterceptor shape adapted to net/http.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		fields := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", duration.Milliseconds(),
		}
		if rec.status >= 500 {
			logger.Error("request failed", fields...)
		} else {
			logger.Info("request completed", fields...)
		}
	})
}

// Metrics records request counts and latency under the given route label,
// mirroring the teacher gateway's MetricsInterceptor shape. The label is
// supplied at registration time rather than read off the request, since the
// stdlib ServeMux doesn't expose the matched pattern back to handlers.
func Metrics(m *metrics.Metrics, routeLabel string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			m.RecordHTTPRequest(routeLabel, fmt.Sprintf("%d", rec.status), time.Since(start))
		})
	}
}

// CORS applies the configured cross-origin policy, adapted from the
// teacher gateway's CORS middleware (same allow-list/preflight shape,
// minus the gRPC-Web-specific headers this JSON API never sends).
func CORS(cfg config.CORSConfig) func(http.Handler) http.Handler {
	if !cfg.Enabled {
		return func(next http.Handler) http.Handler { return next }
	}

	allowedHeaders := strings.Join(cfg.AllowedHeaders, ", ")
	allowedMethods := strings.Join(cfg.AllowedMethods, ", ")
	maxAge := fmt.Sprintf("%d", cfg.MaxAge)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			allowedOrigin := ""
			for _, o := range cfg.AllowedOrigins {
				if o == "*" || o == origin {
					allowedOrigin = o
					break
				}
			}
			if allowedOrigin != "" {
				w.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
			}
			w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
			w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)
			if cfg.AllowCredentials {
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			}

			if r.Method == http.MethodOptions {
				w.Header().Set("Access-Control-Max-Age", maxAge)
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientKey extracts the rate-limit bucket key from a request, preferring
// a forwarded-for header (behind a load balancer) over RemoteAddr.
func clientKey(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return strings.TrimSpace(strings.Split(ip, ",")[0])
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

// RateLimit throttles requests per client IP ahead of the coordinator's
// own admission control, mirroring the teacher's per-method rate-limit
// interceptor keyed by client instead of by gRPC method.
func RateLimit(limiter ratelimit.Limiter) func(http.Handler) http.Handler {
	if limiter == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, err := limiter.Allow(r.Context(), clientKey(r))
			if err != nil {
				logger.Error("rate limiter error, allowing request", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				writeError(w, "", apperror.New(apperror.CodeOverloaded, "rate limit exceeded"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// chain applies middlewares in the order given, first wraps outermost.
func chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
