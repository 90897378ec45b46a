package canvas

import (
	"context"

	models "meshwork/internal/domain/models/canvas"
)

// CanvasService handles reading and saving workspace graphs
type CanvasService interface {
	// GetCanvas returns the full graph of a workspace from one consistent snapshot
	GetCanvas(ctx context.Context, userID string, workspaceID int64) (*models.Canvas, error)

	// GetNodes returns the nodes of a workspace
	GetNodes(ctx context.Context, userID string, workspaceID int64) ([]models.Node, error)

	// GetEdges returns the edges of a workspace
	GetEdges(ctx context.Context, userID string, workspaceID int64) ([]models.Edge, error)

	// SyncCanvas atomically replaces the stored graph with the request's graph
	SyncCanvas(ctx context.Context, userID string, workspaceID int64, req *SyncCanvasRequest) (*SyncResult, error)

	// DuplicateCanvas copies the graph of one workspace into another, atomically
	DuplicateCanvas(ctx context.Context, userID string, fromID, toID int64) error
}

// SyncCanvasRequest is a full snapshot of the client's graph
type SyncCanvasRequest struct {
	Nodes []models.Node `json:"nodes"`
	Edges []models.Edge `json:"edges"`
}

// SyncResult reports what was stored
type SyncResult struct {
	Success bool `json:"success"`
	Nodes   int  `json:"nodes"`
	Edges   int  `json:"edges"`
}

// DuplicateCanvasRequest names the workspace receiving the copy
type DuplicateCanvasRequest struct {
	ToWorkspaceID int64 `json:"toWorkspaceId"`
}
