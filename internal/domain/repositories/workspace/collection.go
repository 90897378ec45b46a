package workspace

import (
	"context"

	models "meshwork/internal/domain/models/workspace"
)

// CollectionRepository defines data access operations for collections
type CollectionRepository interface {
	// Create inserts a collection and fills in ID and CreatedAt
	Create(ctx context.Context, collection *models.Collection) error

	// GetByID retrieves a collection by ID
	GetByID(ctx context.Context, id int64) (*models.Collection, error)

	// ListChildren lists the immediate children of parentID owned by userID.
	// A nil parentID lists root-level collections.
	ListChildren(ctx context.Context, userID string, parentID *int64) ([]models.Collection, error)

	// ListAllByUser retrieves all collections of a user (flat list)
	ListAllByUser(ctx context.Context, userID string) ([]models.Collection, error)

	// LockTree serializes structural changes to userID's tree until the
	// transaction in ctx ends. Call it before reading ancestors for a move.
	LockTree(ctx context.Context, userID string) error

	// Update persists title, description and parent
	Update(ctx context.Context, collection *models.Collection) error

	// Delete removes a collection. Descendant collections are deleted and
	// workspaces filed anywhere below it are moved to the root listing.
	Delete(ctx context.Context, id int64) error
}
