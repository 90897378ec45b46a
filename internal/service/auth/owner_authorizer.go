package auth

import (
	"context"
	"fmt"

	"meshwork/internal/domain"
	wsRepo "meshwork/internal/domain/repositories/workspace"
	"meshwork/internal/domain/services"
)

// OwnerBasedAuthorizer implements ResourceAuthorizer using ownership checks.
// A user can access a workspace or collection only if they own it.
//
// Existence is checked first: a missing resource is ErrNotFound, someone
// else's resource is ErrUnauthorized.
type OwnerBasedAuthorizer struct {
	workspaceRepo  wsRepo.WorkspaceRepository
	collectionRepo wsRepo.CollectionRepository
}

var _ services.ResourceAuthorizer = (*OwnerBasedAuthorizer)(nil)

// NewOwnerBasedAuthorizer creates a new ownership-based authorizer
func NewOwnerBasedAuthorizer(
	workspaceRepo wsRepo.WorkspaceRepository,
	collectionRepo wsRepo.CollectionRepository,
) *OwnerBasedAuthorizer {
	return &OwnerBasedAuthorizer{
		workspaceRepo:  workspaceRepo,
		collectionRepo: collectionRepo,
	}
}

// CanAccessWorkspace checks if user owns the workspace
func (a *OwnerBasedAuthorizer) CanAccessWorkspace(ctx context.Context, userID string, workspaceID int64) error {
	ws, err := a.workspaceRepo.GetByID(ctx, workspaceID)
	if err != nil {
		return err
	}
	if ws.UserID != userID {
		return fmt.Errorf("workspace %d: %w", workspaceID, domain.ErrUnauthorized)
	}
	return nil
}

// CanAccessCollection checks if user owns the collection
func (a *OwnerBasedAuthorizer) CanAccessCollection(ctx context.Context, userID string, collectionID int64) error {
	c, err := a.collectionRepo.GetByID(ctx, collectionID)
	if err != nil {
		return err
	}
	if c.UserID != userID {
		return fmt.Errorf("collection %d: %w", collectionID, domain.ErrUnauthorized)
	}
	return nil
}
