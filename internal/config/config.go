package config

import (
	"fmt"
	"slices"
	"time"

	pkgconfig "github.com/MuzammilBaloch-22/Cakelora/pkg/config"
	"github.com/MuzammilBaloch-22/Cakelora/pkg/middleware"
)

// Storage backends for cart snapshots.
const (
	BackendBadger   = "badger"
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

var backends = []string{BackendBadger, BackendMemory, BackendRedis, BackendPostgres}

// Config holds all configuration for the storefront service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"HTTP_PORT" envDefault:"8080"`

	// Cart snapshot storage
	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"badger"`
	BadgerDir      string `env:"BADGER_DIR" envDefault:"./data/cart"`

	// Redis
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Cart TTL in hours for the redis backend (default: 7 days)
	CartTTL int `env:"CART_TTL_HOURS" envDefault:"168"`

	// Postgres
	PostgresDSN string `env:"POSTGRES_DSN" envDefault:""`

	// Storage operations slower than this are logged. Zero disables it.
	SlowQueryThresholdMs int `env:"SLOW_QUERY_THRESHOLD_MS" envDefault:"200"`

	// Carts untouched for this long are dropped from memory. Zero keeps them.
	SessionIdleMinutes int `env:"CART_SESSION_IDLE_MINUTES" envDefault:"30"`

	// Kafka. Events are not published when no brokers are set.
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`

	// Custom order submissions allowed per client IP
	CustomOrderPerMinute int `env:"CUSTOM_ORDER_RATE_PER_MINUTE" envDefault:"5"`
	CustomOrderBurst     int `env:"CUSTOM_ORDER_RATE_BURST" envDefault:"3"`

	// Proxies whose forwarding headers identify the client, as CIDRs or
	// addresses. Empty means the peer address is the client.
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:5173" envSeparator:","`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from environment variables, after merging any
// of the given .env files.
func Load(dotenv ...string) (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.LoadDotenv(cfg, dotenv...); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// CartTTLDuration returns the redis snapshot TTL.
func (c *Config) CartTTLDuration() time.Duration {
	return time.Duration(c.CartTTL) * time.Hour
}

// SessionIdle returns how long an untouched cart stays in memory.
func (c *Config) SessionIdle() time.Duration {
	return time.Duration(c.SessionIdleMinutes) * time.Minute
}

// KafkaEnabled reports whether domain events should be published.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if !slices.Contains(backends, c.StorageBackend) {
		return fmt.Errorf("STORAGE_BACKEND must be one of %v, got %q", backends, c.StorageBackend)
	}
	if c.StorageBackend == BackendBadger && c.BadgerDir == "" {
		return fmt.Errorf("BADGER_DIR is required for the badger backend")
	}
	if c.StorageBackend == BackendPostgres && c.PostgresDSN == "" {
		return fmt.Errorf("POSTGRES_DSN is required for the postgres backend")
	}
	if c.CartTTL < 0 {
		return fmt.Errorf("CART_TTL_HOURS must not be negative, got %d", c.CartTTL)
	}
	if c.SessionIdleMinutes < 0 {
		return fmt.Errorf("CART_SESSION_IDLE_MINUTES must not be negative, got %d", c.SessionIdleMinutes)
	}
	if c.CustomOrderPerMinute < 0 {
		return fmt.Errorf("CUSTOM_ORDER_RATE_PER_MINUTE must not be negative, got %d", c.CustomOrderPerMinute)
	}
	if _, err := middleware.ParseTrustedProxies(c.TrustedProxies); err != nil {
		return fmt.Errorf("TRUSTED_PROXIES: %w", err)
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %v", c.OTELSampleRate)
	}
	return nil
}
