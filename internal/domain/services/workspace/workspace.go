package workspace

import (
	"context"

	models "meshwork/internal/domain/models/workspace"
	"meshwork/internal/httputil"
)

// WorkspaceService handles workspace business logic
type WorkspaceService interface {
	// ListWorkspaces lists a user's workspaces in a collection (nil = root level only)
	ListWorkspaces(ctx context.Context, userID string, collectionID *int64) ([]models.Workspace, error)

	// GetWorkspace retrieves a workspace owned by the user
	GetWorkspace(ctx context.Context, userID string, id int64) (*models.Workspace, error)

	// CreateWorkspace creates a workspace, seeding its starter graph if the type has one
	CreateWorkspace(ctx context.Context, req *CreateWorkspaceRequest) (*models.Workspace, error)

	// UpdateWorkspace renames, re-icons, re-types or re-files a workspace
	UpdateWorkspace(ctx context.Context, userID string, id int64, req *UpdateWorkspaceRequest) (*models.Workspace, error)

	// DeleteWorkspace deletes a workspace together with its graph
	DeleteWorkspace(ctx context.Context, userID string, id int64) error

	// DuplicateWorkspace copies a workspace and its graph in one transaction
	DuplicateWorkspace(ctx context.Context, userID string, id int64, req *DuplicateWorkspaceRequest) (*models.Workspace, error)
}

// CreateWorkspaceRequest represents a workspace creation request
type CreateWorkspaceRequest struct {
	UserID       string `json:"-"`
	Title        string `json:"title"`
	Type         string `json:"type,omitempty"` // Defaults to the catalog default type
	Icon         string `json:"icon,omitempty"` // Defaults to the catalog default icon
	CollectionID *int64 `json:"collectionId,omitempty"`
}

// UpdateWorkspaceRequest represents a partial workspace update
type UpdateWorkspaceRequest struct {
	Title        *string                `json:"title,omitempty"`
	Type         *string                `json:"type,omitempty"`
	Icon         *string                `json:"icon,omitempty"`
	CollectionID httputil.OptionalInt64 `json:"collectionId"` // null = move to root
}

// DuplicateWorkspaceRequest optionally names the copy
type DuplicateWorkspaceRequest struct {
	Title *string `json:"title,omitempty"`
}
