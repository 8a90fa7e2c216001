// Package config loads the process configuration once at startup.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	defaultSecret = "change-me-in-production"
)

// Config is the full application configuration.
type Config struct {
	Env      string
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Cache    CacheConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr string
}

// DatabaseConfig selects the credential store backend.
type DatabaseConfig struct {
	Driver string
	DSN    string
}

// AuthConfig holds hashing and token signing settings.
type AuthConfig struct {
	Secret     string
	Issuer     string
	TokenTTL   time.Duration
	BcryptCost int
}

// CacheConfig enables the Redis user cache when RedisAddr is set.
type CacheConfig struct {
	RedisAddr string
	TTL       time.Duration
}

// Default returns a configuration suitable for local development.
func Default() Config {
	return Config{
		Env: EnvDevelopment,
		Server: ServerConfig{
			Addr: ":3000",
		},
		Database: DatabaseConfig{
			Driver: DriverSQLite,
			DSN:    "nexon_fitness.db",
		},
		Auth: AuthConfig{
			Secret:     defaultSecret,
			Issuer:     "nexon-fitness",
			TokenTTL:   7 * 24 * time.Hour,
			BcryptCost: 12,
		},
		Cache: CacheConfig{
			TTL: 5 * time.Minute,
		},
	}
}

// IsDevelopment reports whether internal error details may be exposed.
func (c Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

// Load reads an optional .env file and overlays environment variables on
// top of Default.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Default()

	if v := getenv("APP_ENV"); v != "" {
		cfg.Env = strings.ToLower(v)
	}
	if v := getenv("PORT"); v != "" {
		if strings.HasPrefix(v, ":") {
			cfg.Server.Addr = v
		} else {
			cfg.Server.Addr = ":" + v
		}
	}
	if v := getenv("DB_DRIVER"); v != "" {
		cfg.Database.Driver = strings.ToLower(v)
	}
	if v := getenv("DB_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := getenv("JWT_SECRET"); v != "" {
		cfg.Auth.Secret = v
	}
	if v := getenv("JWT_ISSUER"); v != "" {
		cfg.Auth.Issuer = v
	}
	if v := getenv("JWT_EXPIRE"); v != "" {
		ttl, err := ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid JWT_EXPIRE: %w", err)
		}
		cfg.Auth.TokenTTL = ttl
	}
	if v := getenv("BCRYPT_COST"); v != "" {
		cost, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid BCRYPT_COST: %w", err)
		}
		cfg.Auth.BcryptCost = cost
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		cfg.Cache.RedisAddr = v
	}
	if v := getenv("CACHE_TTL"); v != "" {
		ttl, err := ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid CACHE_TTL: %w", err)
		}
		cfg.Cache.TTL = ttl
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the application cannot run with.
func (c Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if c.Auth.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Env == EnvProduction && c.Auth.Secret == defaultSecret {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("JWT_EXPIRE must be positive")
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31")
	}
	return nil
}

// ParseDuration accepts Go durations ("15m", "24h") and day counts ("7d").
func ParseDuration(s string) (time.Duration, error) {
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, fmt.Errorf("invalid day count %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}
