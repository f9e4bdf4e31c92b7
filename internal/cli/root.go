// Package cli implements archivectl, the operator command line for the code
// archive: schema setup, fixture loading and ad-hoc searches against the
// same store and cache the server uses.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"codearchive/internal/cache"
	"codearchive/internal/config"
	"codearchive/internal/domain/services"
	archiveSvc "codearchive/internal/domain/services/archive"
	"codearchive/internal/repository"
	serviceArchive "codearchive/internal/service/archive"
)

var (
	tenantID     string
	outputJSON   bool
	databaseURL  string
	logErrOutput io.Writer = os.Stderr
)

var rootCmd = &cobra.Command{
	Use:   "archivectl",
	Short: "Manage and search the code archive",
	Long: `archivectl works directly against the archive database.
Searches pick the smallest set of documents that together contain
the pasted codes, newest documents first on ties.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&tenantID, "tenant", "t", os.Getenv("ARCHIVE_TENANT"), "tenant to operate on (default $ARCHIVE_TENANT)")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "output results as JSON")
	rootCmd.PersistentFlags().StringVar(&databaseURL, "database", "", "database URL or SQLite path (overrides $DATABASE_URL)")
}

// Execute runs the root command with stdout as the result stream.
func Execute() error {
	rootCmd.SetOut(os.Stdout)
	return rootCmd.Execute()
}

// app holds the services one command invocation works with
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *repository.Store
	cache  services.Cache
	search archiveSvc.CodeSearchService
	index  archiveSvc.IndexService
	close  []func()
}

func (a *app) Close() {
	for i := len(a.close) - 1; i >= 0; i-- {
		a.close[i]()
	}
}

func loadConfig() (*config.Config, error) {
	cfg := config.Load()
	if databaseURL != "" {
		cfg.DatabaseURL = databaseURL
	}
	if cfg.DatabaseURL == "" {
		return nil, errors.New("no database configured")
	}
	return cfg, nil
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(logErrOutput, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

// openApp connects to the store and the result cache. Redis is used when
// REDIS_URL is set so that writes from the CLI clear the cache the server
// reads from.
func openApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger := newLogger()

	store, err := repository.Open(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	a := &app{cfg: cfg, logger: logger, store: store, close: []func(){store.Close}}

	if cfg.RedisURL != "" {
		redisCache, err := cache.NewRedisCache(ctx, cfg.RedisURL, logger)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		a.close = append(a.close, func() { _ = redisCache.Close() })
		a.cache = redisCache
	} else {
		memoryCache, err := cache.NewMemoryCache(cfg.CacheMaxEntries, logger)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.cache = memoryCache
	}

	search := serviceArchive.NewCodeSearchService(store.Documents, a.cache, serviceArchive.SearchOptionsFromConfig(cfg), logger)
	a.search = search
	a.index = serviceArchive.NewIndexService(store.Documents, search, logger)
	return a, nil
}

func requireTenant() (string, error) {
	if tenantID == "" {
		return "", errors.New("tenant is required (use --tenant or $ARCHIVE_TENANT)")
	}
	return tenantID, nil
}
