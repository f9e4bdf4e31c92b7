// Package repository selects and opens the document store backend.
package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"codearchive/internal/config"
	archiveRepo "codearchive/internal/domain/repositories/archive"
	"codearchive/internal/repository/postgres"
	postgresArchive "codearchive/internal/repository/postgres/archive"
	"codearchive/internal/repository/sqlite"
)

// Backend names
const (
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// Store is an opened document store and the handle that owns it
type Store struct {
	Documents archiveRepo.DocumentStore
	Backend   string
	close     func()
}

// Close releases the underlying pool or database handle
func (s *Store) Close() {
	if s.close != nil {
		s.close()
	}
}

// Open connects to the backend named by cfg.DatabaseURL. SQLite databases
// get their schema on open; PostgreSQL is migrated with Migrate.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Store, error) {
	if cfg.IsPostgres() {
		pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return nil, err
		}
		repoConfig := &postgres.RepositoryConfig{
			Pool:   pool,
			Tables: postgres.NewTableNames(cfg.TablePrefix),
			Logger: logger,
		}
		return &Store{
			Documents: postgresArchive.NewDocumentRepository(repoConfig),
			Backend:   BackendPostgres,
			close:     pool.Close,
		}, nil
	}

	db, err := sqlite.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	logger.Info("database opened", "backend", BackendSQLite, "path", cfg.DatabaseURL)
	return &Store{
		Documents: sqlite.NewDocumentRepository(db, logger),
		Backend:   BackendSQLite,
		close:     func() { _ = db.Close() },
	}, nil
}

// MigrateOptions controls Migrate
type MigrateOptions struct {
	// Drop removes existing archive tables, and all documents, first
	Drop bool
}

// Migrate creates the tables and indexes for the configured backend.
// Dropping tables is refused in the prod environment.
func Migrate(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts MigrateOptions) error {
	if opts.Drop && cfg.Environment == "prod" {
		return errors.New("refusing to drop tables in production")
	}

	if !cfg.IsPostgres() {
		db, err := sqlite.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()
		if opts.Drop {
			if err := sqlite.Reset(ctx, db); err != nil {
				return err
			}
			logger.Warn("archive tables dropped", "backend", BackendSQLite, "path", cfg.DatabaseURL)
		}
		return nil
	}

	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	if opts.Drop {
		if err := postgres.DropSchema(ctx, pool, cfg.TablePrefix); err != nil {
			return err
		}
		logger.Warn("archive tables dropped", "backend", BackendPostgres, "table_prefix", cfg.TablePrefix)
	}
	if err := postgres.ApplySchema(ctx, pool, cfg.TablePrefix); err != nil {
		return fmt.Errorf("migrate postgres: %w", err)
	}
	logger.Info("schema applied", "backend", BackendPostgres, "table_prefix", cfg.TablePrefix)
	return nil
}
