package portgraph

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/singleflight"

	"searoute/internal/port"
	"searoute/internal/portrepo"
	"searoute/pkg/apperror"
	"searoute/pkg/config"
	"searoute/pkg/logger"
)

// Manager owns the live PortGraph: it builds the graph once at startup,
// then watches the repository's catalog version and rebuilds on change.
// Rebuilds are single-flighted so a version bump observed by both the poll
// loop and a concurrent caller only triggers one Build (spec §4.4: "rebuild
// is single-flighted").
type Manager struct {
	repo    portrepo.Repository
	cfg     Config
	retry   config.RetryConfig
	group   singleflight.Group
	graph   atomic.Pointer[port.Graph]
	version atomic.Int64
}

// NewManager creates a Manager that has not yet built a graph; call
// Refresh once before serving traffic.
func NewManager(repo portrepo.Repository, cfg Config, retryCfg config.RetryConfig) *Manager {
	return &Manager{repo: repo, cfg: cfg, retry: retryCfg}
}

// Graph returns the current graph snapshot, or nil if Refresh has never
// succeeded.
func (m *Manager) Graph() *port.Graph {
	return m.graph.Load()
}

// Refresh rebuilds the graph from the repository's current catalog,
// regardless of version, single-flighted against concurrent callers.
// Transient repository errors (ErrUnavailable) are retried with backoff per
// RetryConfig; a disconnected-graph failure from Build is fatal and
// returned immediately without retry.
func (m *Manager) Refresh(ctx context.Context) error {
	_, err, _ := m.group.Do("refresh", func() (any, error) {
		var ports []port.Port
		var version int64

		backoff := retryBackoff(m.retry)
		attempt := 0
		loadErr := retry.Do(ctx, backoff, func(ctx context.Context) error {
			attempt++
			all, err := m.repo.All(ctx)
			if err != nil {
				if err == portrepo.ErrUnavailable {
					return retry.RetryableError(err)
				}
				return err
			}
			v, err := m.repo.CatalogVersion(ctx)
			if err != nil {
				if err == portrepo.ErrUnavailable {
					return retry.RetryableError(err)
				}
				return err
			}
			ports, version = all, v
			return nil
		})
		if loadErr != nil {
			return nil, apperror.Wrap(loadErr, apperror.CodeBackendUnavailable, "port graph refresh: catalog unreachable")
		}

		g, err := Build(ports, m.cfg)
		if err != nil {
			return nil, err
		}

		m.graph.Store(g)
		m.version.Store(version)
		logger.Info("port graph rebuilt",
			"nodes", len(g.Nodes), "edges", g.EdgeCount(),
			"catalog_version", version, "attempts", attempt)
		return g, nil
	})
	return err
}

// Watch polls the repository's catalog version every interval and calls
// Refresh whenever it advances past the last-built version. Runs until ctx
// is canceled; intended to be started as a dedicated background goroutine
// at startup (spec §5: "Long-running background tasks ... run on a
// dedicated worker").
func (m *Manager) Watch(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			v, err := m.repo.CatalogVersion(ctx)
			if err != nil {
				logger.Warn("catalog version check failed", "error", err)
				continue
			}
			if v > m.version.Load() {
				if err := m.Refresh(ctx); err != nil {
					logger.Error("port graph rebuild failed", "error", err)
				}
			}
		}
	}
}

func retryBackoff(cfg config.RetryConfig) retry.Backoff {
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	initial := cfg.InitialBackoff
	if initial <= 0 {
		initial = 100 * time.Millisecond
	}
	maxBackoff := cfg.MaxBackoff
	if maxBackoff <= 0 {
		maxBackoff = 5 * time.Second
	}

	b, err := retry.NewExponential(initial)
	if err != nil {
		// Only occurs when initial <= 0, guarded above; NewConstant never
		// fails.
		b = retry.NewConstant(initial)
	}
	b = retry.WithCappedDuration(maxBackoff, b)
	b = retry.WithMaxRetries(uint64(maxAttempts), b)
	return b
}
