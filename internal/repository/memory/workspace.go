package memory

import (
	"context"
	"fmt"
	"slices"

	"meshwork/internal/domain"
	models "meshwork/internal/domain/models/workspace"
	repo "meshwork/internal/domain/repositories/workspace"
)

// WorkspaceRepository implements repo.WorkspaceRepository on a Store
type WorkspaceRepository struct {
	store *Store
}

// NewWorkspaceRepository creates a workspace repository backed by s
func NewWorkspaceRepository(s *Store) repo.WorkspaceRepository {
	return &WorkspaceRepository{store: s}
}

// Create inserts ws and assigns its ID and CreatedAt
func (r *WorkspaceRepository) Create(ctx context.Context, ws *models.Workspace) error {
	return r.store.write(ctx, func(st *state) error {
		if err := checkCollectionRef(st, ws.CollectionID); err != nil {
			return err
		}
		st.nextWorkspaceID++
		ws.ID = st.nextWorkspaceID
		ws.CreatedAt = r.store.now()
		st.workspaces[ws.ID] = cloneWorkspace(*ws)
		return nil
	})
}

// GetByID retrieves a workspace by ID
func (r *WorkspaceRepository) GetByID(ctx context.Context, id int64) (*models.Workspace, error) {
	var ws models.Workspace
	err := r.store.read(ctx, func(st *state) error {
		found, ok := st.workspaces[id]
		if !ok {
			return fmt.Errorf("workspace %d: %w", id, domain.ErrNotFound)
		}
		ws = cloneWorkspace(found)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ws, nil
}

// ListByUser lists the user's workspaces filed directly under collectionID
func (r *WorkspaceRepository) ListByUser(ctx context.Context, userID string, collectionID *int64) ([]models.Workspace, error) {
	return r.list(ctx, func(ws models.Workspace) bool {
		if ws.UserID != userID {
			return false
		}
		if collectionID == nil {
			return ws.CollectionID == nil
		}
		return ws.CollectionID != nil && *ws.CollectionID == *collectionID
	})
}

// ListAllByUser lists every workspace of the user
func (r *WorkspaceRepository) ListAllByUser(ctx context.Context, userID string) ([]models.Workspace, error) {
	return r.list(ctx, func(ws models.Workspace) bool {
		return ws.UserID == userID
	})
}

func (r *WorkspaceRepository) list(ctx context.Context, match func(models.Workspace) bool) ([]models.Workspace, error) {
	out := make([]models.Workspace, 0)
	err := r.store.read(ctx, func(st *state) error {
		for _, ws := range st.workspaces {
			if match(ws) {
				out = append(out, cloneWorkspace(ws))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(out, newestFirst)
	return out, nil
}

// newestFirst orders by created_at DESC, id DESC
func newestFirst(a, b models.Workspace) int {
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	switch {
	case a.ID > b.ID:
		return -1
	case a.ID < b.ID:
		return 1
	}
	return 0
}

// Update persists title, type, icon and collection
func (r *WorkspaceRepository) Update(ctx context.Context, ws *models.Workspace) error {
	return r.store.write(ctx, func(st *state) error {
		existing, ok := st.workspaces[ws.ID]
		if !ok {
			return fmt.Errorf("workspace %d: %w", ws.ID, domain.ErrNotFound)
		}
		if err := checkCollectionRef(st, ws.CollectionID); err != nil {
			return err
		}

		existing.Title = ws.Title
		existing.Type = ws.Type
		existing.Icon = ws.Icon
		existing.CollectionID = cloneInt64(ws.CollectionID)
		st.workspaces[ws.ID] = existing
		return nil
	})
}

// Delete removes the workspace and, like the SQL foreign keys, its graph
func (r *WorkspaceRepository) Delete(ctx context.Context, id int64) error {
	return r.store.write(ctx, func(st *state) error {
		if _, ok := st.workspaces[id]; !ok {
			return fmt.Errorf("workspace %d: %w", id, domain.ErrNotFound)
		}
		delete(st.workspaces, id)
		delete(st.edges, id)
		delete(st.nodes, id)
		return nil
	})
}

// Duplicate inserts a metadata copy of workspace id
func (r *WorkspaceRepository) Duplicate(ctx context.Context, id int64, title string) (*models.Workspace, error) {
	var dup models.Workspace
	err := r.store.write(ctx, func(st *state) error {
		src, ok := st.workspaces[id]
		if !ok {
			return fmt.Errorf("workspace %d: %w", id, domain.ErrNotFound)
		}

		dup = cloneWorkspace(src)
		st.nextWorkspaceID++
		dup.ID = st.nextWorkspaceID
		dup.Title = title
		dup.CreatedAt = r.store.now()
		st.workspaces[dup.ID] = cloneWorkspace(dup)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &dup, nil
}

func checkCollectionRef(st *state, collectionID *int64) error {
	if collectionID == nil {
		return nil
	}
	if _, ok := st.collections[*collectionID]; !ok {
		return fmt.Errorf("collection %d: %w", *collectionID, domain.ErrNotFound)
	}
	return nil
}
