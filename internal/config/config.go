package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"bondcalc/internal/application/service/pricing"
	"bondcalc/internal/domain/entity/bond"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

const envProduction = "production"

// Config keeps the runtime configuration for the service.
type Config struct {
	Env     string        `envconfig:"APP_ENV" default:"development"`
	HTTP    HTTPConfig    `envconfig:"HTTP"`
	Redis   RedisConfig   `envconfig:"REDIS"`
	Cache   CacheConfig   `envconfig:"CACHE"`
	Batch   BatchConfig   `envconfig:"BATCH"`
	Limits  LimitsConfig  `envconfig:"LIMITS"`
	Pricing PricingConfig `envconfig:"PRICING"`
	Log     LogConfig     `envconfig:"LOG"`
}

// HTTPConfig holds HTTP server related settings.
type HTTPConfig struct {
	Host            string        `envconfig:"HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"PORT" default:"3001"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	CORSOrigins     []string      `envconfig:"CORS_ORIGINS" default:"*"`
}

// Addr renders the listen address in host:port form.
func (h HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", h.Host, h.Port)
}

// RedisConfig stores Redis connection parameters. An empty Addr disables caching.
type RedisConfig struct {
	Addr     string `envconfig:"ADDR"`
	Password string `envconfig:"PASSWORD"`
	DB       int    `envconfig:"DB" default:"0"`
}

// CacheConfig stores cache behavior.
type CacheConfig struct {
	TTL time.Duration `envconfig:"TTL" default:"5m"`
}

type BatchConfig struct {
	MaxItems int `envconfig:"MAX_ITEMS" default:"100"`
	Workers  int `envconfig:"WORKERS" default:"8"`
}

// LimitsConfig bounds accepted bond inputs.
type LimitsConfig struct {
	MinFaceValue        float64 `envconfig:"MIN_FACE_VALUE" default:"0.01"`
	MinRate             float64 `envconfig:"MIN_RATE" default:"0"`
	MaxRate             float64 `envconfig:"MAX_RATE" default:"100"`
	MinYears            float64 `envconfig:"MIN_YEARS" default:"0.1"`
	MinFrequency        int     `envconfig:"MIN_FREQUENCY" default:"1"`
	RejectUnknownFields bool    `envconfig:"REJECT_UNKNOWN_FIELDS" default:"false"`
}

// Bond converts the settings into domain limits.
func (l LimitsConfig) Bond() bond.Limits {
	return bond.Limits{
		MinFaceValue:        l.MinFaceValue,
		MinRate:             l.MinRate,
		MaxRate:             l.MaxRate,
		MinYears:            l.MinYears,
		MinFrequency:        l.MinFrequency,
		RejectUnknownFields: l.RejectUnknownFields,
	}
}

type PricingConfig struct {
	ZeroRatePolicy string `envconfig:"ZERO_RATE_POLICY" default:"limit"`
}

// Policy parses ZeroRatePolicy; Validate guarantees it succeeds.
func (p PricingConfig) Policy() pricing.ZeroRatePolicy {
	policy, err := pricing.ParseZeroRatePolicy(p.ZeroRatePolicy)
	if err != nil {
		return pricing.ZeroRateLimit
	}
	return policy
}

// IsProduction reports whether the service runs with APP_ENV=production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, envProduction)
}

// Load reads an optional .env file and builds Config from environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be in 1..65535, got %d", c.HTTP.Port)
	}
	if c.HTTP.ShutdownTimeout <= 0 {
		return errors.New("HTTP_SHUTDOWN_TIMEOUT must be positive")
	}
	for _, origin := range c.HTTP.CORSOrigins {
		if origin != "*" && !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return fmt.Errorf("HTTP_CORS_ORIGINS entry %q must be * or an http(s) origin", origin)
		}
	}
	if c.Batch.MaxItems <= 0 {
		return fmt.Errorf("BATCH_MAX_ITEMS must be positive, got %d", c.Batch.MaxItems)
	}
	if c.Batch.Workers <= 0 {
		return fmt.Errorf("BATCH_WORKERS must be positive, got %d", c.Batch.Workers)
	}
	if c.Limits.MinFaceValue <= 0 {
		return fmt.Errorf("LIMITS_MIN_FACE_VALUE must be positive, got %v", c.Limits.MinFaceValue)
	}
	if c.Limits.MinRate < 0 || c.Limits.MinRate > c.Limits.MaxRate {
		return fmt.Errorf("LIMITS_MIN_RATE %v and LIMITS_MAX_RATE %v are inconsistent", c.Limits.MinRate, c.Limits.MaxRate)
	}
	if c.Limits.MinYears <= 0 {
		return fmt.Errorf("LIMITS_MIN_YEARS must be positive, got %v", c.Limits.MinYears)
	}
	if c.Limits.MinFrequency < 1 {
		return fmt.Errorf("LIMITS_MIN_FREQUENCY must be at least 1, got %d", c.Limits.MinFrequency)
	}
	if _, err := pricing.ParseZeroRatePolicy(c.Pricing.ZeroRatePolicy); err != nil {
		return fmt.Errorf("PRICING_ZERO_RATE_POLICY: %w", err)
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	switch strings.ToLower(c.Log.Format) {
	case logFormatJSON, logFormatText:
	default:
		return fmt.Errorf("LOG_FORMAT must be %q or %q, got %q", logFormatJSON, logFormatText, c.Log.Format)
	}
	return nil
}
