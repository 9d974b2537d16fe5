package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/Mohd-ismail0/paper-deckle-matcher/internal/storage"
)

const (
	defaultPort           = "8080"
	defaultRateLimitRPS   = 25.0
	defaultRateLimitBurst = 50
	defaultMaxUploadBytes = 10 << 20
	defaultPlanHistory    = 50
	defaultLogLevel       = "info"
)

// Config aggregates runtime configuration resolved from multiple sources.
// Precedence: CLI flags > YAML config > Environment variables > Defaults
type Config struct {
	Port                 string
	Capacity             decimal.Decimal
	MaxUploadBytes       int64
	Concurrency          int
	LogLevel             string
	PlanStoreDriver      string
	PlanStorePath        string
	PlanHistory          int
	ShutdownGracePeriod  time.Duration
	ReadHeaderTimeout    time.Duration
	WriteTimeout         time.Duration
	IdleTimeout          time.Duration
	EnableRequestLogging bool
	RateLimitRPS         float64
	RateLimitBurst       int
}

// yamlConfig represents the YAML configuration file structure.
type yamlConfig struct {
	Port                 string        `yaml:"port"`
	Capacity             string        `yaml:"capacity"`
	MaxUploadBytes       int64         `yaml:"max_upload_bytes"`
	Concurrency          int           `yaml:"concurrency"`
	LogLevel             string        `yaml:"log_level"`
	PlanStore            yamlPlanStore `yaml:"plan_store"`
	ShutdownGracePeriod  string        `yaml:"shutdown_grace_period"`
	ReadHeaderTimeout    string        `yaml:"read_header_timeout"`
	WriteTimeout         string        `yaml:"write_timeout"`
	IdleTimeout          string        `yaml:"idle_timeout"`
	EnableRequestLogging *bool         `yaml:"enable_request_logging"`
	RateLimit            yamlRateLimit `yaml:"rate_limit"`
}

// yamlPlanStore represents the plan history section in YAML.
type yamlPlanStore struct {
	Driver  string `yaml:"driver"`
	Path    string `yaml:"path"`
	History int    `yaml:"history"`
}

// yamlRateLimit represents the rate limit section in YAML.
type yamlRateLimit struct {
	RPS   *float64 `yaml:"rps"`
	Burst *int     `yaml:"burst"`
}

// CLIOverrides holds command-line flag overrides.
type CLIOverrides struct {
	ConfigFile     string
	Port           *string
	Capacity       *string
	LogLevel       *string
	PlanStore      *string
	PlanStorePath  *string
	RateLimitRPS   *float64
	RateLimitBurst *int
}

// Load extracts configuration from multiple sources with precedence:
// CLI flags > YAML config > Environment variables > Defaults
func Load(overrides *CLIOverrides) (Config, error) {
	cfg := defaultConfig()

	// Apply environment variables
	applyEnvConfig(&cfg)

	// Load from YAML file if specified (overrides env)
	if overrides != nil && overrides.ConfigFile != "" {
		yamlCfg, err := loadFromFile(overrides.ConfigFile)
		if err != nil {
			return Config{}, fmt.Errorf("load YAML config: %w", err)
		}
		if err := applyYAMLConfig(&cfg, yamlCfg); err != nil {
			return Config{}, fmt.Errorf("apply YAML config: %w", err)
		}
	}

	// Apply CLI overrides (highest precedence)
	if overrides != nil {
		if err := applyCLIOverrides(&cfg, overrides); err != nil {
			return Config{}, err
		}
	}

	// Validate final configuration
	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// defaultConfig returns a Config with default values.
func defaultConfig() Config {
	return Config{
		Port:                 defaultPort,
		Capacity:             storage.DefaultCapacity(),
		MaxUploadBytes:       defaultMaxUploadBytes,
		Concurrency:          0,
		LogLevel:             defaultLogLevel,
		PlanStoreDriver:      storage.DriverMemory,
		PlanHistory:          defaultPlanHistory,
		ShutdownGracePeriod:  10 * time.Second,
		ReadHeaderTimeout:    5 * time.Second,
		WriteTimeout:         30 * time.Second,
		IdleTimeout:          60 * time.Second,
		EnableRequestLogging: true,
		RateLimitRPS:         defaultRateLimitRPS,
		RateLimitBurst:       defaultRateLimitBurst,
	}
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(path string) (*yamlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	return &yamlCfg, nil
}

// applyYAMLConfig applies YAML configuration to the Config struct.
func applyYAMLConfig(cfg *Config, yamlCfg *yamlConfig) error {
	if yamlCfg.Port != "" {
		cfg.Port = yamlCfg.Port
	}

	if yamlCfg.Capacity != "" {
		capacity, err := parseCapacity(yamlCfg.Capacity)
		if err != nil {
			return err
		}
		cfg.Capacity = capacity
	}

	if yamlCfg.MaxUploadBytes > 0 {
		cfg.MaxUploadBytes = yamlCfg.MaxUploadBytes
	}

	if yamlCfg.Concurrency > 0 {
		cfg.Concurrency = yamlCfg.Concurrency
	}

	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}

	if yamlCfg.PlanStore.Driver != "" {
		cfg.PlanStoreDriver = yamlCfg.PlanStore.Driver
	}
	if yamlCfg.PlanStore.Path != "" {
		cfg.PlanStorePath = yamlCfg.PlanStore.Path
	}
	if yamlCfg.PlanStore.History > 0 {
		cfg.PlanHistory = yamlCfg.PlanStore.History
	}

	durations := []struct {
		raw    string
		target *time.Duration
		name   string
	}{
		{yamlCfg.ShutdownGracePeriod, &cfg.ShutdownGracePeriod, "shutdown_grace_period"},
		{yamlCfg.ReadHeaderTimeout, &cfg.ReadHeaderTimeout, "read_header_timeout"},
		{yamlCfg.WriteTimeout, &cfg.WriteTimeout, "write_timeout"},
		{yamlCfg.IdleTimeout, &cfg.IdleTimeout, "idle_timeout"},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		value, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("%s: %w", d.name, err)
		}
		*d.target = value
	}

	if yamlCfg.EnableRequestLogging != nil {
		cfg.EnableRequestLogging = *yamlCfg.EnableRequestLogging
	}

	if yamlCfg.RateLimit.RPS != nil && *yamlCfg.RateLimit.RPS >= 0 {
		cfg.RateLimitRPS = *yamlCfg.RateLimit.RPS
	}

	if yamlCfg.RateLimit.Burst != nil && *yamlCfg.RateLimit.Burst >= 0 {
		cfg.RateLimitBurst = *yamlCfg.RateLimit.Burst
	}

	return nil
}

// applyEnvConfig applies environment variable configuration.
func applyEnvConfig(cfg *Config) {
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		cfg.Port = port
	}

	if raw := strings.TrimSpace(os.Getenv("DECKLE_CAPACITY")); raw != "" {
		if capacity, err := parseCapacity(raw); err == nil {
			cfg.Capacity = capacity
		}
	}

	if raw := strings.TrimSpace(os.Getenv("MAX_UPLOAD_BYTES")); raw != "" {
		if value, err := strconv.ParseInt(raw, 10, 64); err == nil && value > 0 {
			cfg.MaxUploadBytes = value
		}
	}

	if level := strings.TrimSpace(os.Getenv("LOG_LEVEL")); level != "" {
		cfg.LogLevel = level
	}

	if driver := strings.TrimSpace(os.Getenv("PLAN_STORE_DRIVER")); driver != "" {
		cfg.PlanStoreDriver = driver
	}

	if path := strings.TrimSpace(os.Getenv("PLAN_STORE_PATH")); path != "" {
		cfg.PlanStorePath = path
	}

	if rps := strings.TrimSpace(os.Getenv("RATE_LIMIT_RPS")); rps != "" {
		if value, err := strconv.ParseFloat(rps, 64); err == nil && value >= 0 {
			cfg.RateLimitRPS = value
		}
	}

	if burst := strings.TrimSpace(os.Getenv("RATE_LIMIT_BURST")); burst != "" {
		if value, err := strconv.Atoi(burst); err == nil && value >= 0 {
			cfg.RateLimitBurst = value
		}
	}
}

// applyCLIOverrides applies command-line flag overrides.
func applyCLIOverrides(cfg *Config, overrides *CLIOverrides) error {
	if overrides.Port != nil && *overrides.Port != "" {
		cfg.Port = *overrides.Port
	}

	if overrides.Capacity != nil && *overrides.Capacity != "" {
		capacity, err := parseCapacity(*overrides.Capacity)
		if err != nil {
			return fmt.Errorf("parse capacity: %w", err)
		}
		cfg.Capacity = capacity
	}

	if overrides.LogLevel != nil && *overrides.LogLevel != "" {
		cfg.LogLevel = *overrides.LogLevel
	}

	if overrides.PlanStore != nil && *overrides.PlanStore != "" {
		cfg.PlanStoreDriver = *overrides.PlanStore
	}

	if overrides.PlanStorePath != nil && *overrides.PlanStorePath != "" {
		cfg.PlanStorePath = *overrides.PlanStorePath
	}

	if overrides.RateLimitRPS != nil && *overrides.RateLimitRPS >= 0 {
		cfg.RateLimitRPS = *overrides.RateLimitRPS
	}

	if overrides.RateLimitBurst != nil && *overrides.RateLimitBurst >= 0 {
		cfg.RateLimitBurst = *overrides.RateLimitBurst
	}

	return nil
}

// validateConfig validates the final configuration.
func validateConfig(cfg Config) error {
	if cfg.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be >= 0")
	}
	if cfg.RateLimitBurst < 0 {
		return fmt.Errorf("RATE_LIMIT_BURST must be >= 0")
	}
	if !cfg.Capacity.IsPositive() {
		return fmt.Errorf("capacity must be positive, got %s", cfg.Capacity)
	}
	if cfg.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload bytes must be positive")
	}
	switch cfg.PlanStoreDriver {
	case storage.DriverMemory:
	case storage.DriverSQLite:
		if cfg.PlanStorePath == "" {
			return fmt.Errorf("plan store path is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("unknown plan store driver %q", cfg.PlanStoreDriver)
	}
	return nil
}

// parseCapacity parses a positive decimal width such as "3500" or "3500.5".
func parseCapacity(raw string) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid capacity %q", raw)
	}
	if !value.IsPositive() {
		return decimal.Decimal{}, fmt.Errorf("capacity must be positive, got %s", value)
	}
	return value, nil
}
