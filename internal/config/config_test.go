package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "ENVIRONMENT", "DATABASE_URL", "TABLE_PREFIX", "AUTH_JWKS_URL",
		"REDIS_URL", "CACHE_MAX_ENTRIES", "SEARCH_CACHE_TTL", "LOOKUP_CACHE_TTL",
		"SEARCH_REPOSITORY_TIMEOUT", "SEARCH_CACHE_TIMEOUT", "LOG_DIR",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "dev", cfg.Environment)
	assert.Equal(t, "dev_", cfg.TablePrefix)
	assert.Equal(t, "archive.db", cfg.DatabaseURL)
	assert.Equal(t, 10*time.Minute, cfg.SearchCacheTTL)
	assert.Equal(t, 5*time.Minute, cfg.LookupCacheTTL)
	assert.Equal(t, 10000, cfg.CacheMaxEntries)
	assert.False(t, cfg.IsPostgres())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("DATABASE_URL", "postgres://localhost/archive")
	t.Setenv("SEARCH_CACHE_TTL", "30s")
	t.Setenv("CACHE_MAX_ENTRIES", "not-a-number")

	cfg := Load()
	assert.Equal(t, "test_", cfg.TablePrefix)
	assert.True(t, cfg.IsPostgres())
	assert.Equal(t, 30*time.Second, cfg.SearchCacheTTL)
	assert.Equal(t, 10000, cfg.CacheMaxEntries)

	t.Setenv("TABLE_PREFIX", "custom_")
	assert.Equal(t, "custom_", Load().TablePrefix)
}

func TestValidate(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "no database", mutate: func(c *Config) { c.DatabaseURL = "" }},
		{name: "prod without auth", mutate: func(c *Config) { c.Environment = "prod" }},
		{name: "zero ttl", mutate: func(c *Config) { c.SearchCacheTTL = 0 }},
		{name: "negative timeout", mutate: func(c *Config) { c.RepositoryTimeout = -time.Second }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Load()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestSetupLogFile_KeepsNewest(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"server-2024-01-01T00-00-00.log", "server-2024-01-02T00-00-00.log"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o600))
	}

	f, err := SetupLogFile(dir, "server", 2)
	require.NoError(t, err)
	defer f.Close()

	files, err := filepath.Glob(filepath.Join(dir, "server-*.log"))
	require.NoError(t, err)
	assert.Len(t, files, 2)
	assert.NotContains(t, files, filepath.Join(dir, "server-2024-01-01T00-00-00.log"))
}
