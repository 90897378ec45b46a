// Package storage opens the configured backend and hands out its repositories.
package storage

import (
	"context"
	"fmt"
	"log/slog"

	"meshwork/internal/config"
	"meshwork/internal/domain/repositories"
	canvasRepo "meshwork/internal/domain/repositories/canvas"
	wsRepo "meshwork/internal/domain/repositories/workspace"
	"meshwork/internal/repository/memory"
	"meshwork/internal/repository/postgres"
	pgCanvas "meshwork/internal/repository/postgres/canvas"
	pgWorkspace "meshwork/internal/repository/postgres/workspace"
	"meshwork/internal/repository/sqlite"
)

// Repositories bundles every repository of one backend with its
// transaction manager
type Repositories struct {
	Backend     string
	Canvas      canvasRepo.CanvasRepository
	Workspaces  wsRepo.WorkspaceRepository
	Collections wsRepo.CollectionRepository
	Tx          repositories.TransactionManager

	close func() error
}

// Close releases the backend's connections
func (r *Repositories) Close() error {
	if r.close == nil {
		return nil
	}
	return r.close()
}

// Open connects to cfg.StorageBackend, applying migrations first when
// cfg.AutoMigrate is set
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Repositories, error) {
	switch cfg.StorageBackend {
	case config.BackendPostgres:
		return openPostgres(ctx, cfg, logger)
	case config.BackendSQLite:
		return openSQLite(ctx, cfg, logger)
	case config.BackendMemory:
		logger.Warn("using in-memory storage; data is lost on restart and not shared between instances")
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

// NewMemory returns repositories over a fresh in-memory store
func NewMemory() *Repositories {
	store := memory.NewStore()
	return &Repositories{
		Backend:     config.BackendMemory,
		Canvas:      memory.NewCanvasRepository(store),
		Workspaces:  memory.NewWorkspaceRepository(store),
		Collections: memory.NewCollectionRepository(store),
		Tx:          memory.NewTransactionManager(store),
	}
}

func openPostgres(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Repositories, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required for the postgres backend")
	}

	if cfg.AutoMigrate {
		if err := postgres.RunMigrations(ctx, cfg.DatabaseURL, cfg.DatabaseSchema); err != nil {
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
		logger.Info("migrations applied", "backend", config.BackendPostgres, "schema", cfg.DatabaseSchema)
	}

	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: postgres.NewTableNames(cfg.DatabaseSchema),
		Logger: logger,
	}

	logger.Info("database connected", "backend", config.BackendPostgres, "schema", cfg.DatabaseSchema)

	return &Repositories{
		Backend:     config.BackendPostgres,
		Canvas:      pgCanvas.NewCanvasRepository(repoConfig),
		Workspaces:  pgWorkspace.NewWorkspaceRepository(repoConfig),
		Collections: pgWorkspace.NewCollectionRepository(repoConfig),
		Tx:          postgres.NewTransactionManager(pool, logger),
		close: func() error {
			pool.Close()
			return nil
		},
	}, nil
}

func openSQLite(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Repositories, error) {
	store, err := sqlite.Open(ctx, cfg.SQLitePath, logger)
	if err != nil {
		return nil, err
	}

	if cfg.AutoMigrate {
		if err := sqlite.RunMigrations(store); err != nil {
			store.Close()
			return nil, fmt.Errorf("migrate sqlite: %w", err)
		}
		logger.Info("migrations applied", "backend", config.BackendSQLite, "path", cfg.SQLitePath)
	}

	logger.Info("database connected", "backend", config.BackendSQLite, "path", cfg.SQLitePath)

	return &Repositories{
		Backend:     config.BackendSQLite,
		Canvas:      sqlite.NewCanvasRepository(store),
		Workspaces:  sqlite.NewWorkspaceRepository(store),
		Collections: sqlite.NewCollectionRepository(store),
		Tx:          sqlite.NewTransactionManager(store),
		close:       store.Close,
	}, nil
}
