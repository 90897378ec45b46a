package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"meshwork/internal/domain"
	models "meshwork/internal/domain/models/workspace"
	wsRepo "meshwork/internal/domain/repositories/workspace"
)

const collectionColumns = "id, title, description, user_id, parent_id, created_at"

// CollectionRepository implements the CollectionRepository interface
type CollectionRepository struct {
	store *Store
}

// NewCollectionRepository creates a collection repository on s
func NewCollectionRepository(s *Store) wsRepo.CollectionRepository {
	return &CollectionRepository{store: s}
}

// Create inserts a collection
func (r *CollectionRepository) Create(ctx context.Context, c *models.Collection) error {
	createdAt := r.store.now()
	result, err := r.store.executor(ctx).ExecContext(ctx, `
		INSERT INTO collections (title, description, user_id, parent_id, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, c.Title, nullString(c.Description), c.UserID, nullInt64(c.ParentID), formatTime(createdAt))
	if err != nil {
		if isForeignKeyError(err) {
			return fmt.Errorf("parent collection: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("create collection: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("read collection id: %w", err)
	}

	c.ID = id
	c.CreatedAt = createdAt
	return nil
}

// GetByID retrieves a collection by ID
func (r *CollectionRepository) GetByID(ctx context.Context, id int64) (*models.Collection, error) {
	row := r.store.executor(ctx).QueryRowContext(ctx,
		`SELECT `+collectionColumns+` FROM collections WHERE id = ?`, id)

	c, err := scanCollection(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("collection %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get collection: %w", err)
	}
	return c, nil
}

// ListChildren lists one level of the user's tree
func (r *CollectionRepository) ListChildren(ctx context.Context, userID string, parentID *int64) ([]models.Collection, error) {
	if parentID == nil {
		return r.list(ctx, `
			SELECT `+collectionColumns+` FROM collections
			WHERE user_id = ? AND parent_id IS NULL
			ORDER BY title ASC, id ASC
		`, userID)
	}
	return r.list(ctx, `
		SELECT `+collectionColumns+` FROM collections
		WHERE user_id = ? AND parent_id = ?
		ORDER BY title ASC, id ASC
	`, userID, *parentID)
}

// ListAllByUser lists every collection of the user
func (r *CollectionRepository) ListAllByUser(ctx context.Context, userID string) ([]models.Collection, error) {
	return r.list(ctx, `
		SELECT `+collectionColumns+` FROM collections
		WHERE user_id = ?
		ORDER BY title ASC, id ASC
	`, userID)
}

func (r *CollectionRepository) list(ctx context.Context, query string, args ...any) ([]models.Collection, error) {
	rows, err := r.store.executor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	defer rows.Close()

	collections := make([]models.Collection, 0)
	for rows.Next() {
		c, err := scanCollection(rows)
		if err != nil {
			return nil, fmt.Errorf("scan collection: %w", err)
		}
		collections = append(collections, *c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate collections: %w", err)
	}
	return collections, nil
}

// Update persists title, description and parent
func (r *CollectionRepository) Update(ctx context.Context, c *models.Collection) error {
	result, err := r.store.executor(ctx).ExecContext(ctx, `
		UPDATE collections
		SET title = ?, description = ?, parent_id = ?
		WHERE id = ?
	`, c.Title, nullString(c.Description), nullInt64(c.ParentID), c.ID)
	if err != nil {
		if isForeignKeyError(err) {
			return fmt.Errorf("parent collection: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("update collection: %w", err)
	}
	return requireRow(result, fmt.Sprintf("collection %d", c.ID))
}

// LockTree is satisfied by the IMMEDIATE transaction in ctx, which already
// holds the database write lock
func (r *CollectionRepository) LockTree(ctx context.Context, userID string) error {
	if getTx(ctx) == nil {
		return fmt.Errorf("lock collection tree of %s: no transaction in context", userID)
	}
	return nil
}

// Delete removes a collection. Foreign keys cascade to child collections
// and clear collection_id on filed workspaces.
func (r *CollectionRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.store.executor(ctx).ExecContext(ctx, `DELETE FROM collections WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete collection: %w", err)
	}
	return requireRow(result, fmt.Sprintf("collection %d", id))
}

func scanCollection(row scanner) (*models.Collection, error) {
	var c models.Collection
	var description sql.NullString
	var parentID sql.NullInt64
	var createdAt string
	if err := row.Scan(&c.ID, &c.Title, &description, &c.UserID, &parentID, &createdAt); err != nil {
		return nil, err
	}

	t, err := parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	c.Description = stringPtr(description)
	c.ParentID = int64Ptr(parentID)
	c.CreatedAt = t
	return &c, nil
}
