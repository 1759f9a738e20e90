// pkg/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the top-level configuration tree for the route-planning
// service.
type Config struct {
	App         AppConfig         `koanf:"app"`
	HTTP        HTTPConfig        `koanf:"http"`
	Log         LogConfig         `koanf:"log"`
	Metrics     MetricsConfig     `koanf:"metrics"`
	Tracing     TracingConfig     `koanf:"tracing"`
	Database    DatabaseConfig    `koanf:"database"`
	Cache       CacheConfig       `koanf:"cache"`
	Graph       GraphConfig       `koanf:"graph"`
	CostModel   CostModelConfig   `koanf:"cost_model"`
	Pathfinder  PathfinderConfig  `koanf:"pathfinder"`
	Coordinator CoordinatorConfig `koanf:"coordinator"`
	Retry       RetryConfig       `koanf:"retry"`
	RateLimit   RateLimitConfig   `koanf:"rate_limit"`
}

// AppConfig holds process-wide identity settings.
type AppConfig struct {
	Name        string `koanf:"name"`
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"` // development, staging, production
	Debug       bool   `koanf:"debug"`
}

// HTTPConfig configures the public JSON API server.
type HTTPConfig struct {
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	CORS            CORSConfig    `koanf:"cors"`
}

// CORSConfig configures cross-origin access to the HTTP API.
type CORSConfig struct {
	Enabled          bool     `koanf:"enabled"`
	AllowedOrigins   []string `koanf:"allowed_origins"`
	AllowedMethods   []string `koanf:"allowed_methods"`
	AllowedHeaders   []string `koanf:"allowed_headers"`
	AllowCredentials bool     `koanf:"allow_credentials"`
	MaxAge           int      `koanf:"max_age"`
}

// LogConfig configures structured logging and rotation.
type LogConfig struct {
	Level      string `koanf:"level"`       // debug, info, warn, error
	Format     string `koanf:"format"`      // json, text
	Output     string `koanf:"output"`      // stdout, stderr, file
	FilePath   string `koanf:"file_path"`   // used when output = file
	MaxSize    int    `koanf:"max_size"`    // MB
	MaxBackups int    `koanf:"max_backups"` // retained rotated files
	MaxAge     int    `koanf:"max_age"`     // days
	Compress   bool   `koanf:"compress"`
}

// MetricsConfig configures the Prometheus exposition endpoint.
type MetricsConfig struct {
	Enabled   bool   `koanf:"enabled"`
	Port      int    `koanf:"port"`
	Path      string `koanf:"path"`
	Namespace string `koanf:"namespace"`
	Subsystem string `koanf:"subsystem"`
}

// TracingConfig configures the OpenTelemetry tracer provider.
type TracingConfig struct {
	Enabled     bool    `koanf:"enabled"`
	Endpoint    string  `koanf:"endpoint"`
	ServiceName string  `koanf:"service_name"`
	SampleRate  float64 `koanf:"sample_rate"`
}

// DatabaseConfig configures the Postgres port-catalog connection.
type DatabaseConfig struct {
	Driver          string        `koanf:"driver"` // postgres only, kept for symmetry with the teacher's config
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Database        string        `koanf:"database"`
	Username        string        `koanf:"username"`
	Password        string        `koanf:"password"`
	SSLMode         string        `koanf:"ssl_mode"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time"`
	MigrationsPath  string        `koanf:"migrations_path"`
	AutoMigrate     bool          `koanf:"auto_migrate"`
	ListenChannel   string        `koanf:"listen_channel"` // not subscribed to; catalog changes are found by polling the catalog version
}

// DSN returns a libpq-style connection string built from these fields.
// Nothing in the service calls it; pgx uses its own pgxpool.ParseConfig
// path built from the same fields in pkg/database.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.Username, d.Password, d.Database, d.SSLMode,
	)
}

// CacheConfig configures the route-response cache backend.
type CacheConfig struct {
	Enabled    bool          `koanf:"enabled"`
	Driver     string        `koanf:"driver"` // redis, memory
	Host       string        `koanf:"host"`
	Port       int           `koanf:"port"`
	Password   string        `koanf:"password"`
	DB         int           `koanf:"db"`
	DefaultTTL time.Duration `koanf:"default_ttl"`
	MaxEntries int           `koanf:"max_entries"` // memory backend only
}

// Address returns the cache backend's host:port.
func (c CacheConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// GraphConfig tunes port-graph construction (spec §4.4).
type GraphConfig struct {
	KNearest           int           `koanf:"k_nearest"`
	KNearestRadiusNM   float64       `koanf:"k_nearest_radius_nm"`
	HubCount           int           `koanf:"hub_count"`
	HubRadiusNM        float64       `koanf:"hub_radius_nm"`
	RebuildPollInterval time.Duration `koanf:"rebuild_poll_interval"`
	RiskTables         RiskTableConfig `koanf:"risk_tables"`
}

// RiskTableConfig carries the weather-zone and country-risk tables the
// graph builder stamps onto every edge (spec §4.4, §9): configuration
// inputs rather than compiled-in constants, so an operator can
// recalibrate them without a rebuild.
type RiskTableConfig struct {
	WeatherBands      []WeatherBandConfig          `koanf:"weather_bands"`
	CountryRisk       map[string]CountryRiskConfig `koanf:"country_risk"`
	BaselinePiracy    float64                      `koanf:"baseline_piracy"`
	BaselinePolitical float64                      `koanf:"baseline_political"`
}

// WeatherBandConfig is one band of the latitude-banded weather-zone
// lookup: legs whose midpoint absolute latitude is below MaxAbsLat take
// Factor as their time multiplier. Bands must be supplied in ascending
// MaxAbsLat order; the last configured band is the catch-all and its
// MaxAbsLat is ignored.
type WeatherBandConfig struct {
	MaxAbsLat float64 `koanf:"max_abs_lat"`
	Factor    float64 `koanf:"factor"`
}

// CountryRiskConfig is a single country's elevated piracy/political risk
// score ([0,100]); a country absent from the map carries
// RiskTableConfig's baseline instead.
type CountryRiskConfig struct {
	Piracy    float64 `koanf:"piracy"`
	Political float64 `koanf:"political"`
}

// CostModelConfig carries the fuel, canal-toll, and edge-speed-cap tables
// internal/costmodel evaluates every edge against (spec §4.5, §9):
// configuration inputs, not compiled-in constants.
type CostModelConfig struct {
	FuelBaseRatePerDay    map[string]float64 `koanf:"fuel_base_rate_per_day"`     // tons/day at reference speed, by vessel type
	DefaultFuelBaseRate   float64            `koanf:"default_fuel_base_rate"`
	FuelPricePerTon       map[string]float64 `koanf:"fuel_price_per_ton"`         // $/ton, by fuel type
	DefaultFuelPrice      float64            `koanf:"default_fuel_price"`
	CanalFeeRatePerKiloTon map[string]float64 `koanf:"canal_fee_rate_per_kilo_ton"` // $ per 1,000 DWT, by canal
	EdgeSpeedCapKn        map[string]float64 `koanf:"edge_speed_cap_kn"`          // knots, by edge kind; absent/<=0 = uncapped
}

// PathfinderConfig tunes search behavior (spec §4.6).
type PathfinderConfig struct {
	MaxConnectingPorts  int     `koanf:"max_connecting_ports"`
	MaxAlternativeRoutes int    `koanf:"max_alternative_routes"`
	AlternativeCostRatio float64 `koanf:"alternative_cost_ratio"`
	ExpansionCheckEvery  int    `koanf:"expansion_check_every"`
}

// CoordinatorConfig tunes request de-duplication and admission control
// (spec §4.8).
type CoordinatorConfig struct {
	MaxConcurrentComputations int           `koanf:"max_concurrent_computations"`
	AdmissionWaitBudget       time.Duration `koanf:"admission_wait_budget"`
	RepositoryTimeout         time.Duration `koanf:"repository_timeout"`
	CacheTimeout              time.Duration `koanf:"cache_timeout"`
	DefaultRequestTimeout     time.Duration `koanf:"default_request_timeout"`
}

// RetryConfig configures bounded retry of backend calls.
type RetryConfig struct {
	MaxAttempts       int           `koanf:"max_attempts"`
	InitialBackoff    time.Duration `koanf:"initial_backoff"`
	MaxBackoff        time.Duration `koanf:"max_backoff"`
	BackoffMultiplier float64       `koanf:"backoff_multiplier"`
}

// RateLimitConfig throttles inbound requests by client IP ahead of the
// coordinator's admission control (spec §5's concurrency ceiling guards
// compute, this guards ingress).
type RateLimitConfig struct {
	Enabled         bool          `koanf:"enabled"`
	Requests        int           `koanf:"requests"`
	Window          time.Duration `koanf:"window"`
	Strategy        string        `koanf:"strategy"` // sliding_window, token_bucket; other values use sliding_window
	Backend         string        `koanf:"backend"`  // memory, redis
	BurstSize       int           `koanf:"burst_size"`
	CleanupInterval time.Duration `koanf:"cleanup_interval"`
	RedisAddr       string        `koanf:"redis_addr"`
	RedisPassword   string        `koanf:"redis_password"`
	RedisDB         int           `koanf:"redis_db"`
}

// Validate checks cross-field invariants before the service starts.
func (c *Config) Validate() error {
	var errs []string

	if c.App.Name == "" {
		errs = append(errs, "app.name is required")
	}

	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		errs = append(errs, fmt.Sprintf("http.port must be between 1 and 65535, got %d", c.HTTP.Port))
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, fmt.Sprintf("log.level must be one of: debug, info, warn, error, got %s", c.Log.Level))
	}

	if c.Graph.KNearest <= 0 {
		errs = append(errs, "graph.k_nearest must be > 0")
	}
	if c.Pathfinder.AlternativeCostRatio < 1.0 {
		errs = append(errs, "pathfinder.alternative_cost_ratio must be >= 1.0")
	}
	if c.Coordinator.MaxConcurrentComputations <= 0 {
		errs = append(errs, "coordinator.max_concurrent_computations must be > 0")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// IsDevelopment reports whether the app is running in a development
// environment.
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development" || c.App.Environment == "dev"
}

// IsProduction reports whether the app is running in production.
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production" || c.App.Environment == "prod"
}
