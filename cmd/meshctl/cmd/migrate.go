package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"meshwork/internal/config"
	"meshwork/internal/repository/postgres"
	"meshwork/internal/repository/sqlite"
)

// migrator is implemented by the postgres and sqlite migrators
type migrator interface {
	Up() error
	Down() error
	Version() (uint, bool, error)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
	Long: `Apply or roll back the embedded schema migrations of the
configured SQL backend. The memory backend has no schema.`,
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(cmd.Context(), func(m migrator) error {
			if err := m.Up(); err != nil {
				return err
			}
			return printVersion(cmd, m)
		})
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back every migration (drops all data)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Environment == "prod" {
			return fmt.Errorf("refusing to roll back migrations in the prod environment")
		}
		return withMigrator(cmd.Context(), func(m migrator) error {
			if err := m.Down(); err != nil {
				return err
			}
			return printVersion(cmd, m)
		})
	},
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the applied schema version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(cmd.Context(), func(m migrator) error {
			return printVersion(cmd, m)
		})
	},
}

func printVersion(cmd *cobra.Command, m migrator) error {
	version, dirty, err := m.Version()
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "backend=%s version=%d dirty=%t\n", cfg.StorageBackend, version, dirty)
	return nil
}

// withMigrator opens a migrator for the configured backend and runs fn with it
func withMigrator(ctx context.Context, fn func(migrator) error) error {
	if ctx == nil {
		ctx = context.Background()
	}

	switch cfg.StorageBackend {
	case config.BackendPostgres:
		if cfg.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
		m, err := postgres.NewMigrator(ctx, cfg.DatabaseURL, cfg.DatabaseSchema)
		if err != nil {
			return err
		}
		defer m.Close()
		return fn(m)

	case config.BackendSQLite:
		store, err := sqlite.Open(ctx, cfg.SQLitePath, logger)
		if err != nil {
			return err
		}
		defer store.Close()

		m, err := sqlite.NewMigrator(store)
		if err != nil {
			return err
		}
		return fn(m)

	default:
		return fmt.Errorf("backend %q has no schema to migrate", cfg.StorageBackend)
	}
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateVersionCmd)
}
