package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"meshwork/internal/domain"
	models "meshwork/internal/domain/models/workspace"
	repo "meshwork/internal/domain/repositories/workspace"
)

// CollectionRepository implements repo.CollectionRepository on a Store
type CollectionRepository struct {
	store *Store
}

// NewCollectionRepository creates a collection repository backed by s
func NewCollectionRepository(s *Store) repo.CollectionRepository {
	return &CollectionRepository{store: s}
}

// Create inserts c and assigns its ID and CreatedAt
func (r *CollectionRepository) Create(ctx context.Context, c *models.Collection) error {
	return r.store.write(ctx, func(st *state) error {
		if err := checkCollectionRef(st, c.ParentID); err != nil {
			return err
		}
		st.nextCollectionID++
		c.ID = st.nextCollectionID
		c.CreatedAt = r.store.now()
		st.collections[c.ID] = cloneCollection(*c)
		return nil
	})
}

// GetByID retrieves a collection by ID
func (r *CollectionRepository) GetByID(ctx context.Context, id int64) (*models.Collection, error) {
	var c models.Collection
	err := r.store.read(ctx, func(st *state) error {
		found, ok := st.collections[id]
		if !ok {
			return fmt.Errorf("collection %d: %w", id, domain.ErrNotFound)
		}
		c = cloneCollection(found)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListChildren lists the user's collections directly under parentID
func (r *CollectionRepository) ListChildren(ctx context.Context, userID string, parentID *int64) ([]models.Collection, error) {
	return r.list(ctx, func(c models.Collection) bool {
		if c.UserID != userID {
			return false
		}
		if parentID == nil {
			return c.ParentID == nil
		}
		return c.ParentID != nil && *c.ParentID == *parentID
	})
}

// ListAllByUser lists every collection of the user
func (r *CollectionRepository) ListAllByUser(ctx context.Context, userID string) ([]models.Collection, error) {
	return r.list(ctx, func(c models.Collection) bool {
		return c.UserID == userID
	})
}

func (r *CollectionRepository) list(ctx context.Context, match func(models.Collection) bool) ([]models.Collection, error) {
	out := make([]models.Collection, 0)
	err := r.store.read(ctx, func(st *state) error {
		for _, c := range st.collections {
			if match(c) {
				out = append(out, cloneCollection(c))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(out, func(a, b models.Collection) int {
		if c := cmp.Compare(a.Title, b.Title); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

// Update persists title, description and parent
func (r *CollectionRepository) Update(ctx context.Context, c *models.Collection) error {
	return r.store.write(ctx, func(st *state) error {
		existing, ok := st.collections[c.ID]
		if !ok {
			return fmt.Errorf("collection %d: %w", c.ID, domain.ErrNotFound)
		}
		if err := checkCollectionRef(st, c.ParentID); err != nil {
			return err
		}

		existing.Title = c.Title
		existing.Description = cloneString(c.Description)
		existing.ParentID = cloneInt64(c.ParentID)
		st.collections[c.ID] = existing
		return nil
	})
}

// LockTree requires a write transaction, which holds the store lock
func (r *CollectionRepository) LockTree(ctx context.Context, userID string) error {
	return r.store.write(ctx, func(*state) error { return nil })
}

// Delete removes the collection and its descendants. Workspaces filed in
// any removed collection move to the root listing.
func (r *CollectionRepository) Delete(ctx context.Context, id int64) error {
	return r.store.write(ctx, func(st *state) error {
		if _, ok := st.collections[id]; !ok {
			return fmt.Errorf("collection %d: %w", id, domain.ErrNotFound)
		}

		doomed := map[int64]bool{id: true}
		queue := []int64{id}
		for len(queue) > 0 {
			parent := queue[0]
			queue = queue[1:]
			for cid, c := range st.collections {
				if c.ParentID != nil && *c.ParentID == parent && !doomed[cid] {
					doomed[cid] = true
					queue = append(queue, cid)
				}
			}
		}

		for cid := range doomed {
			delete(st.collections, cid)
		}
		for wid, ws := range st.workspaces {
			if ws.CollectionID != nil && doomed[*ws.CollectionID] {
				ws.CollectionID = nil
				st.workspaces[wid] = ws
			}
		}
		return nil
	})
}
