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

const workspaceColumns = "id, title, type, icon, user_id, collection_id, created_at"

// WorkspaceRepository implements the WorkspaceRepository interface
type WorkspaceRepository struct {
	store *Store
}

// NewWorkspaceRepository creates a workspace repository on s
func NewWorkspaceRepository(s *Store) wsRepo.WorkspaceRepository {
	return &WorkspaceRepository{store: s}
}

// Create inserts a workspace
func (r *WorkspaceRepository) Create(ctx context.Context, ws *models.Workspace) error {
	createdAt := r.store.now()
	result, err := r.store.executor(ctx).ExecContext(ctx, `
		INSERT INTO workspaces (title, type, icon, user_id, collection_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, ws.Title, ws.Type, ws.Icon, ws.UserID, nullInt64(ws.CollectionID), formatTime(createdAt))
	if err != nil {
		if isForeignKeyError(err) {
			return fmt.Errorf("collection: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("create workspace: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("read workspace id: %w", err)
	}

	ws.ID = id
	ws.CreatedAt = createdAt
	return nil
}

// GetByID retrieves a workspace by ID
func (r *WorkspaceRepository) GetByID(ctx context.Context, id int64) (*models.Workspace, error) {
	row := r.store.executor(ctx).QueryRowContext(ctx,
		`SELECT `+workspaceColumns+` FROM workspaces WHERE id = ?`, id)

	ws, err := scanWorkspace(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("workspace %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get workspace: %w", err)
	}
	return ws, nil
}

// ListByUser lists workspaces filed directly under collectionID, newest first
func (r *WorkspaceRepository) ListByUser(ctx context.Context, userID string, collectionID *int64) ([]models.Workspace, error) {
	if collectionID == nil {
		return r.list(ctx, `
			SELECT `+workspaceColumns+` FROM workspaces
			WHERE user_id = ? AND collection_id IS NULL
			ORDER BY created_at DESC, id DESC
		`, userID)
	}
	return r.list(ctx, `
		SELECT `+workspaceColumns+` FROM workspaces
		WHERE user_id = ? AND collection_id = ?
		ORDER BY created_at DESC, id DESC
	`, userID, *collectionID)
}

// ListAllByUser lists every workspace of the user, newest first
func (r *WorkspaceRepository) ListAllByUser(ctx context.Context, userID string) ([]models.Workspace, error) {
	return r.list(ctx, `
		SELECT `+workspaceColumns+` FROM workspaces
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
	`, userID)
}

func (r *WorkspaceRepository) list(ctx context.Context, query string, args ...any) ([]models.Workspace, error) {
	rows, err := r.store.executor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list workspaces: %w", err)
	}
	defer rows.Close()

	workspaces := make([]models.Workspace, 0)
	for rows.Next() {
		ws, err := scanWorkspace(rows)
		if err != nil {
			return nil, fmt.Errorf("scan workspace: %w", err)
		}
		workspaces = append(workspaces, *ws)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate workspaces: %w", err)
	}
	return workspaces, nil
}

// Update persists title, type, icon and collection
func (r *WorkspaceRepository) Update(ctx context.Context, ws *models.Workspace) error {
	result, err := r.store.executor(ctx).ExecContext(ctx, `
		UPDATE workspaces
		SET title = ?, type = ?, icon = ?, collection_id = ?
		WHERE id = ?
	`, ws.Title, ws.Type, ws.Icon, nullInt64(ws.CollectionID), ws.ID)
	if err != nil {
		if isForeignKeyError(err) {
			return fmt.Errorf("collection: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("update workspace: %w", err)
	}
	return requireRow(result, fmt.Sprintf("workspace %d", ws.ID))
}

// Delete removes the workspace row; nodes and edges go with it by cascade
func (r *WorkspaceRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.store.executor(ctx).ExecContext(ctx, `DELETE FROM workspaces WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete workspace: %w", err)
	}
	return requireRow(result, fmt.Sprintf("workspace %d", id))
}

// Duplicate copies the metadata row of id under a new title
func (r *WorkspaceRepository) Duplicate(ctx context.Context, id int64, title string) (*models.Workspace, error) {
	row := r.store.executor(ctx).QueryRowContext(ctx, `
		INSERT INTO workspaces (title, type, icon, user_id, collection_id, created_at)
		SELECT ?, type, icon, user_id, collection_id, ?
		FROM workspaces
		WHERE id = ?
		RETURNING `+workspaceColumns,
		title, formatTime(r.store.now()), id)

	ws, err := scanWorkspace(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("workspace %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("duplicate workspace: %w", err)
	}
	return ws, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanWorkspace(row scanner) (*models.Workspace, error) {
	var ws models.Workspace
	var collectionID sql.NullInt64
	var createdAt string
	if err := row.Scan(&ws.ID, &ws.Title, &ws.Type, &ws.Icon, &ws.UserID, &collectionID, &createdAt); err != nil {
		return nil, err
	}

	t, err := parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	ws.CollectionID = int64Ptr(collectionID)
	ws.CreatedAt = t
	return &ws, nil
}

func requireRow(result sql.Result, what string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, domain.ErrNotFound)
	}
	return nil
}
