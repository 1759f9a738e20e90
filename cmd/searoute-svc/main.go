// Command searoute-svc serves the maritime route-planning API: it loads
// the port catalog, builds the port graph, and exposes POST
// /routes/calculate, POST /routes/validate, GET /ports/search, GET
// /ports/{code}, and GET /health over JSON (spec §6).
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"searoute/internal/coordinator"
	"searoute/internal/costmodel"
	"searoute/internal/httpapi"
	"searoute/internal/pathfinder"
	"searoute/internal/port"
	"searoute/internal/portgraph"
	"searoute/internal/portrepo"
	"searoute/migrations"
	"searoute/pkg/analytics"
	"searoute/pkg/cache"
	"searoute/pkg/config"
	"searoute/pkg/database"
	"searoute/pkg/logger"
	"searoute/pkg/metrics"
	"searoute/pkg/ratelimit"
	"searoute/pkg/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger.InitWithConfig(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		FilePath:   cfg.Log.FilePath,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	})

	ctx := context.Background()

	if cfg.Tracing.Enabled {
		tp, err := telemetry.Init(ctx, telemetry.Config{
			Enabled:     cfg.Tracing.Enabled,
			Endpoint:    cfg.Tracing.Endpoint,
			ServiceName: cfg.App.Name,
			Version:     cfg.App.Version,
			Environment: cfg.App.Environment,
			SampleRate:  cfg.Tracing.SampleRate,
		})
		if err != nil {
			logger.Warn("failed to init telemetry", "error", err)
		} else {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := tp.Shutdown(shutdownCtx); err != nil {
					logger.Warn("failed to shutdown telemetry", "error", err)
				}
			}()
		}
	}

	m := metrics.InitMetrics(cfg.Metrics.Namespace, cfg.Metrics.Subsystem)
	m.SetServiceInfo(cfg.App.Version, cfg.App.Environment)
	if cfg.Metrics.Enabled {
		go func() {
			if err := metrics.StartMetricsServer(cfg.Metrics.Port); err != nil {
				logger.Error("metrics server failed", "error", err)
			}
		}()
	}

	repo, closeRepo, err := buildRepository(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to build port repository", "error", err)
	}
	defer closeRepo()

	graphs := portgraph.NewManager(repo, portgraph.Config{
		KNearest:         cfg.Graph.KNearest,
		KNearestRadiusNM: cfg.Graph.KNearestRadiusNM,
		HubCount:         cfg.Graph.HubCount,
		HubRadiusNM:      cfg.Graph.HubRadiusNM,
		RiskTables:       buildRiskTables(cfg.Graph.RiskTables),
	}, cfg.Retry)
	if err := graphs.Refresh(ctx); err != nil {
		logger.Fatal("failed to build initial port graph", "error", err)
	}
	watchCtx, cancelWatch := context.WithCancel(ctx)
	defer cancelWatch()
	go graphs.Watch(watchCtx, cfg.Graph.RebuildPollInterval)

	routeCache := buildRouteCache(cfg)
	sink := buildAnalyticsSink()
	defer sink.Close()

	coord := coordinator.New(graphs, routeCache, sink, coordinator.Config{
		MaxConcurrentComputations: cfg.Coordinator.MaxConcurrentComputations,
		AdmissionWaitBudget:       cfg.Coordinator.AdmissionWaitBudget,
		DefaultRequestTimeout:     cfg.Coordinator.DefaultRequestTimeout,
		RouteCacheTTL:             cfg.Cache.DefaultTTL,
		PathfinderOptions: pathfinder.Options{
			MaxConnectingPorts:   cfg.Pathfinder.MaxConnectingPorts,
			MaxAlternativeRoutes: cfg.Pathfinder.MaxAlternativeRoutes,
			CheckInterval:        cfg.Pathfinder.ExpansionCheckEvery,
			Tables:               buildCostTables(cfg.CostModel),
		},
	})

	limiter := buildRateLimiter(cfg)
	if limiter != nil {
		defer limiter.Close()
	}

	router := httpapi.NewRouter(coord, repo, graphs, m, cfg.HTTP.CORS, limiter)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting searoute-svc",
			"port", cfg.HTTP.Port,
			"environment", cfg.App.Environment,
			"version", cfg.App.Version,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	waitForShutdown(srv, cfg.HTTP.ShutdownTimeout, errCh)
}

// buildRepository wires the port catalog backend: Postgres when configured,
// otherwise an in-memory snapshot seeded from nothing (development mode,
// expects ports to arrive via a future Replace call). Returns a cleanup
// func the caller always defers.
func buildRepository(ctx context.Context, cfg *config.Config) (portrepo.Repository, func(), error) {
	if !cfg.Database.AutoMigrate && cfg.Database.Host == "" {
		logger.Warn("no database configured, starting with an empty in-memory port catalog")
		return portrepo.NewMemoryRepository(nil), func() {}, nil
	}

	db, err := database.NewPostgresDB(ctx, &cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}

	if cfg.Database.AutoMigrate {
		if err := database.RunMigrations(ctx, db.Pool(), &cfg.Database, migrations.FS, "."); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("run migrations: %w", err)
		}
	}

	return portrepo.NewPostgresRepository(db), db.Close, nil
}

// buildRiskTables converts the loaded configuration's weather/risk tables
// into the portgraph types the builder consumes, so an operator can
// recalibrate either table without a binary rebuild.
func buildRiskTables(cfg config.RiskTableConfig) portgraph.RiskTables {
	bands := make([]portgraph.WeatherBand, len(cfg.WeatherBands))
	for i, b := range cfg.WeatherBands {
		bands[i] = portgraph.WeatherBand{MaxAbsLat: b.MaxAbsLat, Factor: b.Factor}
	}
	countryRisk := make(map[string]portgraph.CountryRisk, len(cfg.CountryRisk))
	for code, r := range cfg.CountryRisk {
		countryRisk[code] = portgraph.CountryRisk{Piracy: r.Piracy, Political: r.Political}
	}
	return portgraph.RiskTables{
		WeatherBands:      bands,
		CountryRisk:       countryRisk,
		BaselinePiracy:    cfg.BaselinePiracy,
		BaselinePolitical: cfg.BaselinePolitical,
	}
}

// buildCostTables converts the loaded configuration's fuel/canal/speed-cap
// tables into the costmodel types the cost evaluator consumes.
func buildCostTables(cfg config.CostModelConfig) *costmodel.Tables {
	baseFuelRate := make(map[port.Type]float64, len(cfg.FuelBaseRatePerDay))
	for k, v := range cfg.FuelBaseRatePerDay {
		baseFuelRate[port.Type(k)] = v
	}
	fuelPrice := make(map[port.FuelType]float64, len(cfg.FuelPricePerTon))
	for k, v := range cfg.FuelPricePerTon {
		fuelPrice[port.FuelType(k)] = v
	}
	canalFeeRate := make(map[port.Canal]float64, len(cfg.CanalFeeRatePerKiloTon))
	for k, v := range cfg.CanalFeeRatePerKiloTon {
		canalFeeRate[port.Canal(k)] = v
	}
	edgeSpeedCap := make(map[port.EdgeKind]float64, len(cfg.EdgeSpeedCapKn))
	for k, v := range cfg.EdgeSpeedCapKn {
		edgeSpeedCap[port.EdgeKind(k)] = v
	}
	return &costmodel.Tables{
		BaseFuelRate:        baseFuelRate,
		DefaultBaseFuelRate: cfg.DefaultFuelBaseRate,
		FuelPrice:           fuelPrice,
		DefaultFuelPrice:    cfg.DefaultFuelPrice,
		CanalFeeRate:        canalFeeRate,
		EdgeSpeedCapKn:      edgeSpeedCap,
	}
}

func buildRouteCache(cfg *config.Config) *cache.RouteCache {
	if !cfg.Cache.Enabled {
		return cache.NewRouteCache(cache.NewMemoryCache(cache.DefaultOptions()), cfg.Cache.DefaultTTL)
	}
	backend, err := cache.New(cache.FromConfig(&cfg.Cache))
	if err != nil {
		logger.Warn("failed to create cache backend, falling back to memory", "error", err)
		backend = cache.NewMemoryCache(cache.DefaultOptions())
	}
	return cache.NewRouteCache(backend, cfg.Cache.DefaultTTL)
}

func buildAnalyticsSink() *analytics.ChannelSink {
	return analytics.NewChannelSink(analytics.NewLogSink(), 1024)
}

func buildRateLimiter(cfg *config.Config) ratelimit.Limiter {
	if !cfg.RateLimit.Enabled {
		return nil
	}
	limiter, err := ratelimit.New(&ratelimit.Config{
		Requests:        cfg.RateLimit.Requests,
		Window:          cfg.RateLimit.Window,
		Strategy:        cfg.RateLimit.Strategy,
		Backend:         cfg.RateLimit.Backend,
		BurstSize:       cfg.RateLimit.BurstSize,
		CleanupInterval: cfg.RateLimit.CleanupInterval,
		RedisAddr:       cfg.RateLimit.RedisAddr,
		RedisPassword:   cfg.RateLimit.RedisPassword,
		RedisDB:         cfg.RateLimit.RedisDB,
	})
	if err != nil {
		logger.Warn("failed to create rate limiter, continuing without it", "error", err)
		return nil
	}
	return limiter
}

func waitForShutdown(srv *http.Server, timeout time.Duration, errCh chan error) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		logger.Fatal("server failed", "error", err)
	case sig := <-quit:
		logger.Info("received shutdown signal", "signal", sig.String())
	}

	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	logger.Info("searoute-svc stopped")
}
