// pkg/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix    = "SEAROUTE_"
	configEnvVar = "CONFIG_PATH"
)

// Loader assembles a Config from defaults, an optional YAML file, and
// environment overrides.
type Loader struct {
	k           *koanf.Koanf
	configPaths []string
	envPrefix   string
}

// NewLoader creates a Loader with the default search paths.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		k: koanf.New("."),
		configPaths: []string{
			"config.yaml",
			"config/config.yaml",
			"/etc/searoute/config.yaml",
		},
		envPrefix: envPrefix,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// LoaderOption customizes a Loader.
type LoaderOption func(*Loader)

// WithConfigPaths overrides the config file search paths.
func WithConfigPaths(paths ...string) LoaderOption {
	return func(l *Loader) {
		l.configPaths = paths
	}
}

// WithEnvPrefix overrides the environment variable prefix.
func WithEnvPrefix(prefix string) LoaderOption {
	return func(l *Loader) {
		l.envPrefix = prefix
	}
}

// Load builds a Config with priority, lowest to highest:
//  1. built-in defaults
//  2. YAML config file
//  3. environment variables
func (l *Loader) Load() (*Config, error) {
	if err := l.loadDefaults(); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if err := l.loadConfigFile(); err != nil {
		fmt.Printf("Warning: %v\n", err)
	}

	if err := l.loadEnv(); err != nil {
		return nil, fmt.Errorf("failed to load env: %w", err)
	}

	var cfg Config
	if err := l.k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (l *Loader) loadDefaults() error {
	defaults := map[string]any{
		"app.name":        "searoute-svc",
		"app.version":     "1.0.0",
		"app.environment": "development",
		"app.debug":       false,

		"http.port":                   8080,
		"http.read_timeout":           30 * time.Second,
		"http.write_timeout":          30 * time.Second,
		"http.shutdown_timeout":       10 * time.Second,
		"http.cors.enabled":           true,
		"http.cors.allowed_origins":   []string{"*"},
		"http.cors.allowed_methods":   []string{"GET", "POST", "OPTIONS"},
		"http.cors.allowed_headers":   []string{"*"},
		"http.cors.allow_credentials": false,
		"http.cors.max_age":           86400,

		"log.level":       "info",
		"log.format":      "json",
		"log.output":      "stdout",
		"log.max_size":    100,
		"log.max_backups": 3,
		"log.max_age":     7,
		"log.compress":    true,

		"metrics.enabled":   true,
		"metrics.port":      9090,
		"metrics.path":      "/metrics",
		"metrics.namespace": "searoute",
		"metrics.subsystem": "",

		"tracing.enabled":      false,
		"tracing.endpoint":     "localhost:4317",
		"tracing.service_name": "searoute-svc",
		"tracing.sample_rate":  0.1,

		"database.driver":             "postgres",
		"database.host":               "localhost",
		"database.port":               5432,
		"database.database":           "searoute",
		"database.username":           "postgres",
		"database.password":           "",
		"database.ssl_mode":           "disable",
		"database.max_open_conns":     25,
		"database.max_idle_conns":     5,
		"database.conn_max_lifetime":  5 * time.Minute,
		"database.conn_max_idle_time": 5 * time.Minute,
		"database.auto_migrate":       true,
		"database.migrations_path":    "migrations",
		"database.listen_channel":     "searoute_catalog_version",

		"cache.enabled":     true,
		"cache.driver":      "memory",
		"cache.host":        "localhost",
		"cache.port":        6379,
		"cache.db":          0,
		"cache.default_ttl": 15 * time.Minute,
		"cache.max_entries": 50000,

		"graph.k_nearest":             8,
		"graph.k_nearest_radius_nm":   1500.0,
		"graph.hub_count":             40,
		"graph.hub_radius_nm":         6000.0,
		"graph.rebuild_poll_interval": 30 * time.Second,

		"graph.risk_tables.weather_bands": []WeatherBandConfig{
			{MaxAbsLat: 10, Factor: 1.10}, // doldrums / ITCZ squalls
			{MaxAbsLat: 35, Factor: 1.00}, // temperate trade lanes
			{MaxAbsLat: 55, Factor: 1.15}, // roaring-forties adjacent
			{Factor: 1.35},                // high-latitude storm tracks (catch-all)
		},
		"graph.risk_tables.country_risk": map[string]CountryRiskConfig{
			"SO": {Piracy: 70, Political: 55}, // Gulf of Aden / Somali basin approaches
			"NG": {Piracy: 60, Political: 35}, // Gulf of Guinea
			"YE": {Piracy: 45, Political: 65},
			"MM": {Piracy: 20, Political: 40},
			"VE": {Piracy: 10, Political: 50},
			"LY": {Piracy: 15, Political: 60},
		},
		"graph.risk_tables.baseline_piracy":    3.0,
		"graph.risk_tables.baseline_political": 5.0,

		"cost_model.fuel_base_rate_per_day": map[string]float64{
			"container":     150,
			"tanker":        80,
			"bulk":          45,
			"general_cargo": 25,
		},
		"cost_model.default_fuel_base_rate": 50.0,
		"cost_model.fuel_price_per_ton": map[string]float64{
			"vlsfo": 650,
			"mgo":   850,
			"lng":   550,
			"hfo":   500,
		},
		"cost_model.default_fuel_price": 650.0,
		// Suez was 4.5 * dwt/1000 * 12; Panama was 3.8 * dwt/1000 * 11 —
		// collapsed into a single $/kilo-ton rate. Kiel and Bosphorus
		// carry no separate toll.
		"cost_model.canal_fee_rate_per_kilo_ton": map[string]float64{
			"suez":   4.5 * 12,
			"panama": 3.8 * 11,
		},
		"cost_model.edge_speed_cap_kn": map[string]float64{
			"coastal":      16,
			"canal-suez":   8,
			"canal-panama": 10,
		},

		"pathfinder.max_connecting_ports":   6,
		"pathfinder.max_alternative_routes": 3,
		"pathfinder.alternative_cost_ratio": 1.5,
		"pathfinder.expansion_check_every":  4096,

		"coordinator.max_concurrent_computations": 64,
		"coordinator.admission_wait_budget":       2 * time.Second,
		"coordinator.repository_timeout":          200 * time.Millisecond,
		"coordinator.cache_timeout":               50 * time.Millisecond,
		"coordinator.default_request_timeout":     10 * time.Second,

		"retry.max_attempts":       3,
		"retry.initial_backoff":    100 * time.Millisecond,
		"retry.max_backoff":        2 * time.Second,
		"retry.backoff_multiplier": 2.0,

		"rate_limit.enabled":          true,
		"rate_limit.requests":         120,
		"rate_limit.window":           time.Minute,
		"rate_limit.strategy":         "sliding_window",
		"rate_limit.backend":          "memory",
		"rate_limit.burst_size":       20,
		"rate_limit.cleanup_interval": 5 * time.Minute,
		"rate_limit.redis_addr":       "localhost:6379",
	}

	return l.k.Load(confmap.Provider(defaults, "."), nil)
}

func (l *Loader) loadConfigFile() error {
	if configPath := os.Getenv(configEnvVar); configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return l.k.Load(file.Provider(configPath), yaml.Parser())
		}
	}

	for _, path := range l.configPaths {
		absPath, err := filepath.Abs(path)
		if err != nil {
			continue
		}

		if _, err := os.Stat(absPath); err == nil {
			return l.k.Load(file.Provider(absPath), yaml.Parser())
		}
	}

	return fmt.Errorf("config file not found in paths: %v", l.configPaths)
}

func (l *Loader) loadEnv() error {
	return l.k.Load(env.Provider(l.envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(
			strings.ToLower(
				strings.TrimPrefix(s, l.envPrefix),
			),
			"_", ".",
		)
	}), nil)
}

// MustLoad loads the configuration or panics.
func MustLoad(opts ...LoaderOption) *Config {
	cfg, err := NewLoader(opts...).Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

// Load loads the configuration with default options.
func Load() (*Config, error) {
	return NewLoader().Load()
}
