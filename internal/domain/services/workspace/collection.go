package workspace

import (
	"context"

	models "meshwork/internal/domain/models/workspace"
	"meshwork/internal/httputil"
)

// CollectionService handles collection tree business logic
type CollectionService interface {
	// ListCollections lists the immediate children of parentID (nil = root level)
	ListCollections(ctx context.Context, userID string, parentID *int64) ([]models.Collection, error)

	// GetCollection retrieves a collection owned by the user
	GetCollection(ctx context.Context, userID string, id int64) (*models.Collection, error)

	// CreateCollection creates a collection
	CreateCollection(ctx context.Context, req *CreateCollectionRequest) (*models.Collection, error)

	// UpdateCollection renames or moves a collection
	UpdateCollection(ctx context.Context, userID string, id int64, req *UpdateCollectionRequest) (*models.Collection, error)

	// DeleteCollection deletes a collection and its sub-collections.
	// Workspaces inside are kept and moved to the root listing.
	DeleteCollection(ctx context.Context, userID string, id int64) error
}

// CreateCollectionRequest represents a collection creation request
type CreateCollectionRequest struct {
	UserID      string  `json:"-"`
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	ParentID    *int64  `json:"parentId,omitempty"` // null for root
}

// UpdateCollectionRequest represents a partial collection update
type UpdateCollectionRequest struct {
	Title       *string                 `json:"title,omitempty"`
	Description httputil.OptionalString `json:"description"` // null = clear
	ParentID    httputil.OptionalInt64  `json:"parentId"`    // null = move to root
}
