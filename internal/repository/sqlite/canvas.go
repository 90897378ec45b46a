package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"meshwork/internal/domain"
	models "meshwork/internal/domain/models/canvas"
	canvasRepo "meshwork/internal/domain/repositories/canvas"
)

// CanvasRepository implements the CanvasRepository interface
type CanvasRepository struct {
	store *Store
}

// NewCanvasRepository creates a canvas repository on s
func NewCanvasRepository(s *Store) canvasRepo.CanvasRepository {
	return &CanvasRepository{store: s}
}

// GetNodes returns every node of the workspace
func (r *CanvasRepository) GetNodes(ctx context.Context, workspaceID int64) ([]models.Node, error) {
	rows, err := r.store.executor(ctx).QueryContext(ctx, `
		SELECT workspace_id, id, type, position_x, position_y, data, parent_id, extent
		FROM nodes
		WHERE workspace_id = ?
	`, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("query nodes: %w", err)
	}
	defer rows.Close()

	nodes := make([]models.Node, 0)
	for rows.Next() {
		var n models.Node
		var data, parentID, extent sql.NullString
		if err := rows.Scan(&n.WorkspaceID, &n.ID, &n.Type, &n.Position.X, &n.Position.Y, &data, &parentID, &extent); err != nil {
			return nil, fmt.Errorf("scan node: %w", err)
		}
		n.Data = jsonValue(data)
		n.ParentID = stringPtr(parentID)
		n.Extent = stringPtr(extent)
		nodes = append(nodes, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate nodes: %w", err)
	}

	return nodes, nil
}

// GetEdges returns every edge of the workspace
func (r *CanvasRepository) GetEdges(ctx context.Context, workspaceID int64) ([]models.Edge, error) {
	rows, err := r.store.executor(ctx).QueryContext(ctx, `
		SELECT workspace_id, id, source, target, source_handle, target_handle, type, data, animated
		FROM edges
		WHERE workspace_id = ?
	`, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("query edges: %w", err)
	}
	defer rows.Close()

	edges := make([]models.Edge, 0)
	for rows.Next() {
		var e models.Edge
		var sourceHandle, targetHandle, data sql.NullString
		if err := rows.Scan(&e.WorkspaceID, &e.ID, &e.Source, &e.Target, &sourceHandle, &targetHandle, &e.Type, &data, &e.Animated); err != nil {
			return nil, fmt.Errorf("scan edge: %w", err)
		}
		e.SourceHandle = stringPtr(sourceHandle)
		e.TargetHandle = stringPtr(targetHandle)
		e.Data = jsonValue(data)
		edges = append(edges, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate edges: %w", err)
	}

	return edges, nil
}

// ReplaceGraph deletes edges, then nodes, then inserts the new nodes and
// edges. Without a transaction in ctx it opens its own.
func (r *CanvasRepository) ReplaceGraph(ctx context.Context, workspaceID int64, nodes []models.Node, edges []models.Edge) error {
	if getTx(ctx) == nil {
		return r.store.inTx(ctx, func(ctx context.Context) error {
			return r.ReplaceGraph(ctx, workspaceID, nodes, edges)
		})
	}

	executor := r.store.executor(ctx)
	if err := deleteGraph(ctx, executor, workspaceID); err != nil {
		return err
	}

	if len(nodes) > 0 {
		stmt, err := executor.PrepareContext(ctx, `
			INSERT INTO nodes (workspace_id, id, type, position_x, position_y, data, parent_id, extent)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("prepare node insert: %w", err)
		}
		defer stmt.Close()

		for _, n := range nodes {
			if _, err := stmt.ExecContext(ctx, workspaceID, n.ID, n.Type, n.Position.X, n.Position.Y,
				jsonArg(n.Data), nullString(n.ParentID), nullString(n.Extent)); err != nil {
				return mapGraphWriteError(err, workspaceID, "insert node")
			}
		}
	}

	if len(edges) > 0 {
		stmt, err := executor.PrepareContext(ctx, `
			INSERT INTO edges (workspace_id, id, source, target, source_handle, target_handle, type, data, animated)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("prepare edge insert: %w", err)
		}
		defer stmt.Close()

		for _, e := range edges {
			if _, err := stmt.ExecContext(ctx, workspaceID, e.ID, e.Source, e.Target,
				nullString(e.SourceHandle), nullString(e.TargetHandle), e.Type, jsonArg(e.Data), e.Animated); err != nil {
				return mapGraphWriteError(err, workspaceID, "insert edge")
			}
		}
	}

	return nil
}

// DuplicateGraph copies nodes then edges of fromID into toID
func (r *CanvasRepository) DuplicateGraph(ctx context.Context, fromID, toID int64) error {
	executor := r.store.executor(ctx)

	if _, err := executor.ExecContext(ctx, `
		INSERT INTO nodes (workspace_id, id, type, position_x, position_y, data, parent_id, extent)
		SELECT ?, id, type, position_x, position_y, data, parent_id, extent
		FROM nodes
		WHERE workspace_id = ?
	`, toID, fromID); err != nil {
		return mapGraphWriteError(err, toID, "duplicate nodes")
	}

	if _, err := executor.ExecContext(ctx, `
		INSERT INTO edges (workspace_id, id, source, target, source_handle, target_handle, type, data, animated)
		SELECT ?, id, source, target, source_handle, target_handle, type, data, animated
		FROM edges
		WHERE workspace_id = ?
	`, toID, fromID); err != nil {
		return mapGraphWriteError(err, toID, "duplicate edges")
	}

	return nil
}

// DeleteGraph removes every edge and node of the workspace
func (r *CanvasRepository) DeleteGraph(ctx context.Context, workspaceID int64) error {
	return deleteGraph(ctx, r.store.executor(ctx), workspaceID)
}

// CountGraph counts stored nodes and edges
func (r *CanvasRepository) CountGraph(ctx context.Context, workspaceID int64) (*models.GraphStats, error) {
	var stats models.GraphStats
	err := r.store.executor(ctx).QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM nodes WHERE workspace_id = ?),
			(SELECT COUNT(*) FROM edges WHERE workspace_id = ?)
	`, workspaceID, workspaceID).Scan(&stats.Nodes, &stats.Edges)
	if err != nil {
		return nil, fmt.Errorf("count graph: %w", err)
	}
	return &stats, nil
}

func deleteGraph(ctx context.Context, executor DBTX, workspaceID int64) error {
	if _, err := executor.ExecContext(ctx, `DELETE FROM edges WHERE workspace_id = ?`, workspaceID); err != nil {
		return fmt.Errorf("delete edges: %w", err)
	}
	if _, err := executor.ExecContext(ctx, `DELETE FROM nodes WHERE workspace_id = ?`, workspaceID); err != nil {
		return fmt.Errorf("delete nodes: %w", err)
	}
	return nil
}

func mapGraphWriteError(err error, workspaceID int64, op string) error {
	switch {
	case isDuplicateError(err):
		return &domain.ConflictError{
			Message:      fmt.Sprintf("graph of workspace %d already contains an element with the same id", workspaceID),
			ResourceType: "graph",
			ResourceID:   fmt.Sprint(workspaceID),
		}
	case isForeignKeyError(err):
		return fmt.Errorf("workspace %d: %w", workspaceID, domain.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}
