package canvas

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"meshwork/internal/domain"
	models "meshwork/internal/domain/models/canvas"
	canvasRepo "meshwork/internal/domain/repositories/canvas"
	"meshwork/internal/repository/postgres"
)

var (
	nodeColumns = []string{"workspace_id", "id", "type", "position_x", "position_y", "data", "parent_id", "extent"}
	edgeColumns = []string{"workspace_id", "id", "source", "target", "source_handle", "target_handle", "type", "data", "animated"}
)

// PostgresCanvasRepository implements the CanvasRepository interface
type PostgresCanvasRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewCanvasRepository creates a new canvas repository
func NewCanvasRepository(config *postgres.RepositoryConfig) canvasRepo.CanvasRepository {
	return &PostgresCanvasRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// GetNodes returns every node of the workspace
func (r *PostgresCanvasRepository) GetNodes(ctx context.Context, workspaceID int64) ([]models.Node, error) {
	query := fmt.Sprintf(`
		SELECT workspace_id, id, type, position_x, position_y, data, parent_id, extent
		FROM %s
		WHERE workspace_id = $1
	`, r.tables.Nodes)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("query nodes: %w", err)
	}
	defer rows.Close()

	nodes := make([]models.Node, 0)
	for rows.Next() {
		var n models.Node
		var data []byte
		if err := rows.Scan(
			&n.WorkspaceID,
			&n.ID,
			&n.Type,
			&n.Position.X,
			&n.Position.Y,
			&data,
			&n.ParentID,
			&n.Extent,
		); err != nil {
			return nil, fmt.Errorf("scan node: %w", err)
		}
		n.Data = data
		nodes = append(nodes, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate nodes: %w", err)
	}

	return nodes, nil
}

// GetEdges returns every edge of the workspace
func (r *PostgresCanvasRepository) GetEdges(ctx context.Context, workspaceID int64) ([]models.Edge, error) {
	query := fmt.Sprintf(`
		SELECT workspace_id, id, source, target, source_handle, target_handle, type, data, animated
		FROM %s
		WHERE workspace_id = $1
	`, r.tables.Edges)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("query edges: %w", err)
	}
	defer rows.Close()

	edges := make([]models.Edge, 0)
	for rows.Next() {
		var e models.Edge
		var data []byte
		if err := rows.Scan(
			&e.WorkspaceID,
			&e.ID,
			&e.Source,
			&e.Target,
			&e.SourceHandle,
			&e.TargetHandle,
			&e.Type,
			&data,
			&e.Animated,
		); err != nil {
			return nil, fmt.Errorf("scan edge: %w", err)
		}
		e.Data = data
		edges = append(edges, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate edges: %w", err)
	}

	return edges, nil
}

// ReplaceGraph deletes edges, then nodes, then copies the new nodes and
// edges in. Without a transaction in ctx it opens its own.
func (r *PostgresCanvasRepository) ReplaceGraph(ctx context.Context, workspaceID int64, nodes []models.Node, edges []models.Edge) error {
	if postgres.GetTx(ctx) == nil {
		return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
			return r.ReplaceGraph(postgres.SetTx(ctx, tx), workspaceID, nodes, edges)
		})
	}

	executor := postgres.GetExecutor(ctx, r.pool)

	if err := r.lockWorkspace(ctx, executor, workspaceID); err != nil {
		return err
	}
	if err := r.deleteGraph(ctx, executor, workspaceID); err != nil {
		return err
	}

	if len(nodes) > 0 {
		_, err := executor.CopyFrom(ctx, r.tables.Identifier("nodes"), nodeColumns,
			pgx.CopyFromSlice(len(nodes), func(i int) ([]any, error) {
				n := nodes[i]
				return []any{workspaceID, n.ID, n.Type, n.Position.X, n.Position.Y, jsonArg(n.Data), n.ParentID, n.Extent}, nil
			}))
		if err != nil {
			return r.mapWriteError(err, workspaceID, "insert nodes")
		}
	}

	if len(edges) > 0 {
		_, err := executor.CopyFrom(ctx, r.tables.Identifier("edges"), edgeColumns,
			pgx.CopyFromSlice(len(edges), func(i int) ([]any, error) {
				e := edges[i]
				return []any{workspaceID, e.ID, e.Source, e.Target, e.SourceHandle, e.TargetHandle, e.Type, jsonArg(e.Data), e.Animated}, nil
			}))
		if err != nil {
			return r.mapWriteError(err, workspaceID, "insert edges")
		}
	}

	r.logger.Debug("graph replaced",
		"workspace_id", workspaceID,
		"nodes", len(nodes),
		"edges", len(edges),
	)

	return nil
}

// DuplicateGraph copies nodes then edges of fromID into toID with INSERT ... SELECT
func (r *PostgresCanvasRepository) DuplicateGraph(ctx context.Context, fromID, toID int64) error {
	executor := postgres.GetExecutor(ctx, r.pool)

	if err := r.lockWorkspace(ctx, executor, toID); err != nil {
		return err
	}

	nodesQuery := fmt.Sprintf(`
		INSERT INTO %s (workspace_id, id, type, position_x, position_y, data, parent_id, extent)
		SELECT $2, id, type, position_x, position_y, data, parent_id, extent
		FROM %s
		WHERE workspace_id = $1
	`, r.tables.Nodes, r.tables.Nodes)

	if _, err := executor.Exec(ctx, nodesQuery, fromID, toID); err != nil {
		return r.mapWriteError(err, toID, "duplicate nodes")
	}

	edgesQuery := fmt.Sprintf(`
		INSERT INTO %s (workspace_id, id, source, target, source_handle, target_handle, type, data, animated)
		SELECT $2, id, source, target, source_handle, target_handle, type, data, animated
		FROM %s
		WHERE workspace_id = $1
	`, r.tables.Edges, r.tables.Edges)

	if _, err := executor.Exec(ctx, edgesQuery, fromID, toID); err != nil {
		return r.mapWriteError(err, toID, "duplicate edges")
	}

	return nil
}

// DeleteGraph removes every edge and node of the workspace
func (r *PostgresCanvasRepository) DeleteGraph(ctx context.Context, workspaceID int64) error {
	return r.deleteGraph(ctx, postgres.GetExecutor(ctx, r.pool), workspaceID)
}

// CountGraph counts stored nodes and edges in one round trip
func (r *PostgresCanvasRepository) CountGraph(ctx context.Context, workspaceID int64) (*models.GraphStats, error) {
	query := fmt.Sprintf(`
		SELECT
			(SELECT COUNT(*) FROM %s WHERE workspace_id = $1),
			(SELECT COUNT(*) FROM %s WHERE workspace_id = $1)
	`, r.tables.Nodes, r.tables.Edges)

	var stats models.GraphStats
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, workspaceID).Scan(&stats.Nodes, &stats.Edges); err != nil {
		return nil, fmt.Errorf("count graph: %w", err)
	}

	return &stats, nil
}

func (r *PostgresCanvasRepository) deleteGraph(ctx context.Context, executor postgres.DBTX, workspaceID int64) error {
	// Edges first so an enforced edge->node reference never dangles mid-transaction
	if _, err := executor.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE workspace_id = $1`, r.tables.Edges), workspaceID); err != nil {
		return fmt.Errorf("delete edges: %w", err)
	}
	if _, err := executor.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE workspace_id = $1`, r.tables.Nodes), workspaceID); err != nil {
		return fmt.Errorf("delete nodes: %w", err)
	}
	return nil
}

// lockWorkspace serializes graph writers of one workspace until the
// surrounding transaction ends
func (r *PostgresCanvasRepository) lockWorkspace(ctx context.Context, executor postgres.DBTX, workspaceID int64) error {
	key := fmt.Sprintf("%s.canvas:%d", r.tables.Schema, workspaceID)
	if _, err := executor.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, key); err != nil {
		return fmt.Errorf("lock workspace graph: %w", err)
	}
	return nil
}

func (r *PostgresCanvasRepository) mapWriteError(err error, workspaceID int64, op string) error {
	switch {
	case postgres.IsPgDuplicateError(err):
		element := "element"
		switch {
		case strings.HasPrefix(postgres.ConstraintName(err), "nodes_"):
			element = "node"
		case strings.HasPrefix(postgres.ConstraintName(err), "edges_"):
			element = "edge"
		}
		return &domain.ConflictError{
			Message:      fmt.Sprintf("graph of workspace %d already contains a %s with the same id", workspaceID, element),
			ResourceType: "graph",
			ResourceID:   fmt.Sprint(workspaceID),
		}
	case postgres.IsPgForeignKeyError(err):
		return fmt.Errorf("workspace %d: %w", workspaceID, domain.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// jsonArg passes opaque JSON through as text; nil stays SQL NULL
func jsonArg(raw []byte) any {
	if raw == nil {
		return nil
	}
	return string(raw)
}
