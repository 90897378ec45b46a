package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryConfig holds configuration for repository implementations
type RepositoryConfig struct {
	Pool   *pgxpool.Pool
	Tables *TableNames
	Logger *slog.Logger
}

// TableNames holds schema-qualified, quoted table names
type TableNames struct {
	Schema      string
	Collections string
	Workspaces  string
	Nodes       string
	Edges       string
}

// NewTableNames creates table names inside the given schema.
// Each environment (dev, test, prod) gets its own schema.
func NewTableNames(schema string) *TableNames {
	qualify := func(table string) string {
		return pgx.Identifier{schema, table}.Sanitize()
	}
	return &TableNames{
		Schema:      schema,
		Collections: qualify("collections"),
		Workspaces:  qualify("workspaces"),
		Nodes:       qualify("nodes"),
		Edges:       qualify("edges"),
	}
}

// Identifier returns the pgx identifier of an unqualified table, for CopyFrom
func (t *TableNames) Identifier(table string) pgx.Identifier {
	return pgx.Identifier{t.Schema, table}
}

// CreateConnectionPool creates a new pgx connection pool with automatic PgBouncer compatibility.
//
// Port 6543 is Supabase's transaction pooler, which does not support prepared
// statements. When it is detected and the connection string does not pick a
// mode itself (?default_query_exec_mode=...), QueryExecModeCacheDescribe is
// used: extended protocol with cached descriptions instead of prepared
// statements. Direct connections (5432) keep the default statement cache.
//
// Schema-qualified table names are interpolated before the SQL is sent, so
// each environment gets its own cached statements.
func CreateConnectionPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 5

	if config.ConnConfig.Port == 6543 && config.ConnConfig.DefaultQueryExecMode == pgx.QueryExecModeCacheStatement {
		config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheDescribe
		slog.Debug("auto-configured cache_describe mode for PgBouncer compatibility", "port", 6543)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// GetExecutor returns the appropriate query executor for the context.
// If a transaction is present in the context, it returns the transaction.
// Otherwise, it returns the provided pool.
func GetExecutor(ctx context.Context, pool *pgxpool.Pool) DBTX {
	if tx := GetTx(ctx); tx != nil {
		return tx
	}
	return pool
}
