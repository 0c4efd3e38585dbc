package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store drivers
const (
	StoreDriverSQLite   = "sqlite"
	StoreDriverPostgres = "postgres"
	StoreDriverFile     = "file"
)

const defaultJWTSecret = "change-this-in-production"

// Config holds all configuration values
type Config struct {
	Server   ServerConfig
	Store    StoreConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Security SecurityConfig
	Throttle ThrottleConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Env  string
	// AllowedOrigins restricts CORS. Empty allows any origin.
	AllowedOrigins []string
}

// StoreConfig selects and locates the record store
type StoreConfig struct {
	Driver       string
	SQLitePath   string
	FilePath     string
	ApiKeyPrefix string
}

// DatabaseConfig holds postgres configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN returns the postgres connection string
func (c DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:     "/" + c.DBName,
		RawQuery: url.Values{"sslmode": {c.SSLMode}}.Encode(),
	}
	return u.String()
}

// RedisConfig holds Redis configuration. An empty URL disables throttling.
type RedisConfig struct {
	URL      string
	Password string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret       string
	AccessExpiry time.Duration
}

// SecurityConfig holds the admin allow-list and the trusted proxy secret
type SecurityConfig struct {
	AdminExternalIDs    []string
	InternalProxySecret string
}

// ThrottleConfig limits requests to the public key validation endpoint
type ThrottleConfig struct {
	RateLimit  int
	RateWindow time.Duration
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           getEnv("SERVER_PORT", "8080"),
			Env:            getEnv("SERVER_ENV", "development"),
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS"),
		},
		Store: StoreConfig{
			Driver:       strings.ToLower(getEnv("STORE_DRIVER", StoreDriverSQLite)),
			SQLitePath:   getEnv("SQLITE_PATH", "data/aeroapi.db"),
			FilePath:     getEnv("FILE_STORE_PATH", "data/aeroapi.json"),
			ApiKeyPrefix: getEnv("API_KEY_PREFIX", "AeroAPI-"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "aeroapi"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		JWT: JWTConfig{
			Secret:       getEnv("JWT_SECRET", defaultJWTSecret),
			AccessExpiry: getEnvAsDuration("JWT_ACCESS_EXPIRY", 24*time.Hour),
		},
		Security: SecurityConfig{
			AdminExternalIDs:    getEnvAsList("ADMIN_EXTERNAL_IDS"),
			InternalProxySecret: getEnv("INTERNAL_PROXY_SECRET", ""),
		},
		Throttle: ThrottleConfig{
			RateLimit:  getEnvAsInt("VALIDATE_RATE_LIMIT", 60),
			RateWindow: getEnvAsDuration("VALIDATE_RATE_WINDOW", time.Minute),
		},
	}
}

// Validate rejects configurations the server cannot run with
func (c *Config) Validate() error {
	var errs []error

	switch c.Store.Driver {
	case StoreDriverSQLite, StoreDriverPostgres, StoreDriverFile:
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver))
	}
	if c.Store.ApiKeyPrefix == "" {
		errs = append(errs, errors.New("API_KEY_PREFIX must not be empty"))
	}
	if c.Server.Env == "production" && c.JWT.Secret == defaultJWTSecret {
		errs = append(errs, errors.New("JWT_SECRET must be set in production"))
	}
	if c.Throttle.RateLimit <= 0 || c.Throttle.RateWindow <= 0 {
		errs = append(errs, errors.New("VALIDATE_RATE_LIMIT and VALIDATE_RATE_WINDOW must be positive"))
	}

	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	var items []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	return items
}
