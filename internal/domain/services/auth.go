package services

import "context"

// ResourceAuthorizer checks if a user can access resources.
// Current implementation: ownership-based (user owns the workspace or collection).
//
// Missing resources return domain.ErrNotFound before ownership is checked;
// a resource owned by someone else returns domain.ErrUnauthorized.
type ResourceAuthorizer interface {
	// CanAccessWorkspace checks if user owns the workspace
	CanAccessWorkspace(ctx context.Context, userID string, workspaceID int64) error

	// CanAccessCollection checks if user owns the collection
	CanAccessCollection(ctx context.Context, userID string, collectionID int64) error
}
