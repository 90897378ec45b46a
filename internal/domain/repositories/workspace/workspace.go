package workspace

import (
	"context"

	models "meshwork/internal/domain/models/workspace"
)

// WorkspaceRepository defines data access operations for workspace metadata.
// No ownership checks happen here; callers compare Workspace.UserID.
type WorkspaceRepository interface {
	// Create inserts a workspace and fills in ID and CreatedAt
	Create(ctx context.Context, ws *models.Workspace) error

	// GetByID retrieves a workspace by ID
	GetByID(ctx context.Context, id int64) (*models.Workspace, error)

	// ListByUser lists a user's workspaces filed under collectionID, newest first.
	// A nil collectionID lists root-level workspaces only.
	ListByUser(ctx context.Context, userID string, collectionID *int64) ([]models.Workspace, error)

	// ListAllByUser lists every workspace of a user regardless of collection
	ListAllByUser(ctx context.Context, userID string) ([]models.Workspace, error)

	// Update persists title, type, icon and collection
	Update(ctx context.Context, ws *models.Workspace) error

	// Delete removes the workspace row
	Delete(ctx context.Context, id int64) error

	// Duplicate inserts a metadata copy of workspace id with the given title.
	// The graph is not copied.
	Duplicate(ctx context.Context, id int64, title string) (*models.Workspace, error)
}
