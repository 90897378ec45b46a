package canvas

import (
	"context"

	models "meshwork/internal/domain/models/canvas"
)

// CanvasRepository defines data access operations for a workspace's node/edge graph
type CanvasRepository interface {
	// GetNodes returns every node of the workspace (no ordering guarantee)
	GetNodes(ctx context.Context, workspaceID int64) ([]models.Node, error)

	// GetEdges returns every edge of the workspace (no ordering guarantee)
	GetEdges(ctx context.Context, workspaceID int64) ([]models.Edge, error)

	// ReplaceGraph deletes the stored graph and inserts the given one.
	// Must run inside TransactionManager.ExecTx; concurrent replaces of the
	// same workspace are serialized.
	ReplaceGraph(ctx context.Context, workspaceID int64, nodes []models.Node, edges []models.Edge) error

	// DuplicateGraph copies all nodes and edges of fromID into toID, keeping their ids
	DuplicateGraph(ctx context.Context, fromID, toID int64) error

	// DeleteGraph removes every node and edge of the workspace
	DeleteGraph(ctx context.Context, workspaceID int64) error

	// CountGraph returns the number of stored nodes and edges
	CountGraph(ctx context.Context, workspaceID int64) (*models.GraphStats, error)
}
