package workspace

import (
	"context"

	models "meshwork/internal/domain/models/workspace"
)

// TreeService defines operations for building collection trees
type TreeService interface {
	// GetTree builds the nested collection/workspace tree of a user
	GetTree(ctx context.Context, userID string) (*models.Tree, error)
}
