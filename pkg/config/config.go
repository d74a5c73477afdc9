package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// DefaultConfigPath is read when no explicit path is given.
const DefaultConfigPath = "config.yaml"

// Config holds all configuration for rental-insights.
// Configuration can come from a YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (passwords) must only come from environment variables.
type Config struct {
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Database configuration (the rental store being reported on)
	Database DatabaseConfig `yaml:"database"`

	// Report defaults; CLI flags override these
	Reports ReportsConfig `yaml:"reports"`

	// Optional Redis snapshot cache
	Cache CacheConfig `yaml:"cache"`
}

// DatabaseConfig holds connection settings for the rental store.
type DatabaseConfig struct {
	Type           string `yaml:"type" env:"PGTYPE" env-default:"postgres"` // "postgres" or "mssql"
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"postgres"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"dvdrental"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"4"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
}

// ReportsConfig holds the report tunables.
type ReportsConfig struct {
	// AsOf is the reference time used in place of "now". Empty means the
	// latest activity timestamp found in the snapshot.
	AsOf                string  `yaml:"as_of" env:"REPORTS_AS_OF" env-default:""`
	RetentionWindowDays int     `yaml:"retention_window_days" env:"REPORTS_RETENTION_WINDOW_DAYS" env-default:"30"`
	LateFeeMultiplier   float64 `yaml:"late_fee_multiplier" env:"REPORTS_LATE_FEE_MULTIPLIER" env-default:"0.5"`
	TopFilmsLimit       int     `yaml:"top_films_limit" env:"REPORTS_TOP_FILMS_LIMIT" env-default:"20"`
	PeakHoursLimit      int     `yaml:"peak_hours_limit" env:"REPORTS_PEAK_HOURS_LIMIT" env-default:"20"`
	TopActorsLimit      int     `yaml:"top_actors_limit" env:"REPORTS_TOP_ACTORS_LIMIT" env-default:"10"`
	Format              string  `yaml:"format" env:"REPORTS_FORMAT" env-default:"table"`
	Parallel            bool    `yaml:"parallel" env:"REPORTS_PARALLEL" env-default:"false"`
}

// CacheConfig holds the Redis connection used to cache loaded snapshots between runs.
// Caching is disabled when Host is empty.
type CacheConfig struct {
	Host     string        `yaml:"host" env:"REDIS_HOST" env-default:""`
	Port     int           `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Password string        `yaml:"-" env:"REDIS_PASSWORD"` // Secret - not in YAML
	DB       int           `yaml:"db" env:"REDIS_DB" env-default:"0"`
	TTL      time.Duration `yaml:"ttl" env:"CACHE_TTL" env-default:"10m"`
	Prefix   string        `yaml:"prefix" env:"CACHE_PREFIX" env-default:"rental-insights"`
}

// Enabled reports whether a cache host is configured.
func (c *CacheConfig) Enabled() bool {
	return c.Host != ""
}

var supportedDatabaseTypes = []string{"postgres", "mssql"}

// Load reads configuration from the YAML file at path with environment variable overrides.
// A missing file is not an error: configuration then comes from the environment alone.
// The version parameter is injected at build time and set on the returned Config.
func Load(path, version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if path == "" {
		path = DefaultConfigPath
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	} else if errors.Is(err, os.ErrNotExist) {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	} else {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	c.Database.Type = strings.ToLower(strings.TrimSpace(c.Database.Type))
	known := false
	for _, t := range supportedDatabaseTypes {
		if c.Database.Type == t {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("database.type must be one of %s, got %q", strings.Join(supportedDatabaseTypes, ", "), c.Database.Type)
	}

	if c.Reports.RetentionWindowDays <= 0 {
		return fmt.Errorf("reports.retention_window_days must be positive")
	}
	if c.Reports.LateFeeMultiplier < 0 {
		return fmt.Errorf("reports.late_fee_multiplier must not be negative")
	}
	if c.Reports.TopFilmsLimit <= 0 || c.Reports.PeakHoursLimit <= 0 || c.Reports.TopActorsLimit <= 0 {
		return fmt.Errorf("report limits must be positive")
	}

	if c.Cache.Enabled() && c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive")
	}

	if c.Reports.AsOf != "" {
		if _, err := ParseReferenceTime(c.Reports.AsOf); err != nil {
			return fmt.Errorf("reports.as_of: %w", err)
		}
	}

	return nil
}

// ParseReferenceTime accepts a date (2006-01-02), a date-time
// (2006-01-02 15:04:05) or an RFC3339 timestamp. Values without a zone are UTC.
func ParseReferenceTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised time %q (want YYYY-MM-DD, YYYY-MM-DD HH:MM:SS or RFC3339)", value)
}

// ConnectionMap returns the database settings in the generic form the
// datasource adapters accept.
func (c *DatabaseConfig) ConnectionMap() map[string]any {
	return map[string]any{
		"host":            c.Host,
		"port":            c.Port,
		"user":            c.User,
		"password":        c.Password,
		"database":        c.Database,
		"ssl_mode":        c.SSLMode,
		"max_connections": int(c.MaxConnections),
	}
}
