package config

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/caarlos0/env/v10"
)

// DefaultAPIBasePath is the fallback base path for the HTTP API.
const DefaultAPIBasePath = "/api"

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"text", "json"}
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// Redis configuration
	Redis RedisConfig

	// Application configuration
	App AppConfig

	// Token and password configuration
	Auth AuthConfig

	// Sentry configuration
	Sentry SentryConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Port         int           `env:"SERVER_PORT" envDefault:"3003"`
	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"10s"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"60s"`
}

// Address returns the server address in host:port format
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host            string        `env:"POSTGRES_HOST" envDefault:"localhost"`
	Port            int           `env:"POSTGRES_PORT" envDefault:"5432"`
	User            string        `env:"POSTGRES_USER" envDefault:"bloglist"`
	Password        string        `env:"POSTGRES_PASSWORD" envDefault:"bloglist"`
	Database        string        `env:"POSTGRES_DB" envDefault:"bloglist"`
	SSLMode         string        `env:"POSTGRES_SSLMODE" envDefault:"disable"`
	MaxConns        int32         `env:"POSTGRES_MAX_CONNS" envDefault:"10"`
	MinConns        int32         `env:"POSTGRES_MIN_CONNS" envDefault:"2"`
	MaxConnLifetime time.Duration `env:"POSTGRES_MAX_CONN_LIFETIME" envDefault:"1h"`
	MaxConnIdleTime time.Duration `env:"POSTGRES_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	ConnectTimeout  time.Duration `env:"POSTGRES_CONNECT_TIMEOUT" envDefault:"10s"`
}

// ConnectionString returns the PostgreSQL connection string in URL format
func (d DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgresql://%s:%s@%s:%d/%s?sslmode=%s&connect_timeout=%d",
		d.User, d.Password, d.Host, d.Port, d.Database, d.SSLMode,
		int(d.ConnectTimeout.Seconds()),
	)
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host         string        `env:"REDIS_HOST" envDefault:"localhost"`
	Port         int           `env:"REDIS_PORT" envDefault:"6379"`
	Password     string        `env:"REDIS_PASSWORD" envDefault:""`
	DB           int           `env:"REDIS_DB" envDefault:"0"`
	MaxRetries   int           `env:"REDIS_MAX_RETRIES" envDefault:"3"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
}

// Address returns the Redis address in host:port format
func (r RedisConfig) Address() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// AppConfig holds application-specific configuration
type AppConfig struct {
	LogLevel        string        `env:"APP_LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"APP_LOG_FORMAT" envDefault:"text"` // text or json
	CacheEnabled    bool          `env:"APP_CACHE_ENABLED" envDefault:"true"`
	CacheTTL        time.Duration `env:"APP_CACHE_TTL" envDefault:"5m"`
	EnableMetrics   bool          `env:"APP_ENABLE_METRICS" envDefault:"true"`
	APIBasePath     string        `env:"APP_API_BASE_PATH" envDefault:"/api"`
	AutoMigrate     bool          `env:"APP_AUTO_MIGRATE" envDefault:"false"`
	// MigrationsPath overrides the embedded schema, e.g. "file://migrations".
	MigrationsPath  string        `env:"APP_MIGRATIONS_PATH"`
	AllowedOrigins  []string      `env:"APP_CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	SessionsEnabled bool          `env:"APP_SESSIONS_ENABLED" envDefault:"true"`
}

// AuthConfig holds bearer token and password hashing settings.
type AuthConfig struct {
	JWTSecret  string        `env:"AUTH_JWT_SECRET" envDefault:""`
	TokenTTL   time.Duration `env:"AUTH_TOKEN_TTL" envDefault:"1h"`
	Issuer     string        `env:"AUTH_ISSUER" envDefault:"bloglist"`
	BcryptCost int           `env:"AUTH_BCRYPT_COST" envDefault:"10"`
}

// SentryConfig holds Sentry configuration
type SentryConfig struct {
	DSN         string `env:"SENTRY_DSN" envDefault:""`
	Environment string `env:"SENTRY_ENVIRONMENT" envDefault:""`
	Release     string `env:"SENTRY_RELEASE" envDefault:""`
}

// Parse reads environment variables without validating them. Tools that only
// touch the database use it so they do not need auth settings.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg, err := Parse()
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	return errors.Join(
		c.Server.validate(),
		c.Database.validate(),
		c.Redis.validate(),
		c.App.validate(),
		c.Auth.validate(),
	)
}

func (s ServerConfig) validate() error {
	if s.Port < 1 || s.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", s.Port)
	}
	return nil
}

func (d DatabaseConfig) validate() error {
	var errs []error
	for name, v := range map[string]string{"host": d.Host, "user": d.User, "name": d.Database} {
		if v == "" {
			errs = append(errs, fmt.Errorf("database %s is required", name))
		}
	}
	if d.MaxConns < d.MinConns {
		errs = append(errs, fmt.Errorf("database max connections (%d) must be >= min connections (%d)", d.MaxConns, d.MinConns))
	}
	return errors.Join(errs...)
}

func (r RedisConfig) validate() error {
	if r.Host == "" {
		return errors.New("redis host is required")
	}
	if r.DB < 0 || r.DB > 15 {
		return fmt.Errorf("invalid redis database: %d (must be 0-15)", r.DB)
	}
	return nil
}

func (a AppConfig) validate() error {
	var errs []error
	if !slices.Contains(logLevels, a.LogLevel) {
		errs = append(errs, fmt.Errorf("invalid log level %q (want one of %v)", a.LogLevel, logLevels))
	}
	if !slices.Contains(logFormats, a.LogFormat) {
		errs = append(errs, fmt.Errorf("invalid log format %q (want one of %v)", a.LogFormat, logFormats))
	}
	if a.CacheEnabled && a.CacheTTL <= 0 {
		errs = append(errs, errors.New("cache ttl must be positive when cache is enabled"))
	}
	return errors.Join(errs...)
}

func (a AuthConfig) validate() error {
	var errs []error
	if a.JWTSecret == "" {
		errs = append(errs, errors.New("auth jwt secret is required"))
	}
	if a.TokenTTL <= 0 {
		errs = append(errs, errors.New("auth token ttl must be positive"))
	}
	// bcrypt.MinCost..bcrypt.MaxCost
	if a.BcryptCost < 4 || a.BcryptCost > 31 {
		errs = append(errs, fmt.Errorf("invalid bcrypt cost: %d (must be 4-31)", a.BcryptCost))
	}
	return errors.Join(errs...)
}
