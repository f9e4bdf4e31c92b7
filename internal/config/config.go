package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port        string
	Environment string
	DatabaseURL string // postgres://... uses pgx; anything else is a SQLite path/DSN
	TablePrefix string
	CORSOrigins string
	JWKSURL     string // Empty disables JWT auth (dev only; tenant comes from X-Tenant-ID)

	// Cache
	RedisURL        string // Empty selects the in-process LRU cache
	CacheMaxEntries int
	SearchCacheTTL  time.Duration
	LookupCacheTTL  time.Duration

	// Timeouts for collaborators of the search core
	RepositoryTimeout time.Duration
	CacheTimeout      time.Duration

	// Logging
	LogDir      string
	LogMaxFiles int
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: env,
		DatabaseURL: getEnv("DATABASE_URL", "archive.db"),
		TablePrefix: getTablePrefix(env),
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),
		JWKSURL:     getEnv("AUTH_JWKS_URL", ""),

		RedisURL:        getEnv("REDIS_URL", ""),
		CacheMaxEntries: getEnvInt("CACHE_MAX_ENTRIES", 10000),
		SearchCacheTTL:  getEnvDuration("SEARCH_CACHE_TTL", 10*time.Minute),
		LookupCacheTTL:  getEnvDuration("LOOKUP_CACHE_TTL", 5*time.Minute),

		RepositoryTimeout: getEnvDuration("SEARCH_REPOSITORY_TIMEOUT", 5*time.Second),
		CacheTimeout:      getEnvDuration("SEARCH_CACHE_TIMEOUT", 500*time.Millisecond),

		LogDir:      getEnv("LOG_DIR", ""),
		LogMaxFiles: getEnvInt("LOG_MAX_FILES", 10),
	}
}

// IsPostgres reports whether DatabaseURL points at PostgreSQL
func (c *Config) IsPostgres() bool {
	return strings.HasPrefix(c.DatabaseURL, "postgres://") ||
		strings.HasPrefix(c.DatabaseURL, "postgresql://")
}

// Validate rejects settings the server cannot start with
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Environment == "prod" && c.JWKSURL == "" {
		return fmt.Errorf("AUTH_JWKS_URL is required in production")
	}
	if c.SearchCacheTTL <= 0 || c.LookupCacheTTL <= 0 {
		return fmt.Errorf("cache TTLs must be positive")
	}
	if c.RepositoryTimeout <= 0 || c.CacheTimeout <= 0 {
		return fmt.Errorf("timeouts must be positive")
	}
	return nil
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: invalid %s=%q, using %d\n", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: invalid %s=%q, using %s\n", key, value, defaultValue)
		return defaultValue
	}
	return d
}
