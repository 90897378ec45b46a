package workspace

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"meshwork/internal/domain"
	models "meshwork/internal/domain/models/workspace"
	wsRepo "meshwork/internal/domain/repositories/workspace"
	"meshwork/internal/repository/postgres"
)

const workspaceColumns = "id, title, type, icon, user_id, collection_id, created_at"

// PostgresWorkspaceRepository implements the WorkspaceRepository interface
type PostgresWorkspaceRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewWorkspaceRepository creates a new workspace repository
func NewWorkspaceRepository(config *postgres.RepositoryConfig) wsRepo.WorkspaceRepository {
	return &PostgresWorkspaceRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create inserts a workspace
func (r *PostgresWorkspaceRepository) Create(ctx context.Context, ws *models.Workspace) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (title, type, icon, user_id, collection_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, r.tables.Workspaces)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		ws.Title,
		ws.Type,
		ws.Icon,
		ws.UserID,
		ws.CollectionID,
	).Scan(&ws.ID, &ws.CreatedAt)

	if err != nil {
		return postgres.WrapReferenceError(err, "create workspace", "collection", ws.CollectionID)
	}

	return nil
}

// GetByID retrieves a workspace by ID
func (r *PostgresWorkspaceRepository) GetByID(ctx context.Context, id int64) (*models.Workspace, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, workspaceColumns, r.tables.Workspaces)

	executor := postgres.GetExecutor(ctx, r.pool)
	ws, err := scanWorkspace(executor.QueryRow(ctx, query, id))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("workspace %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get workspace: %w", err)
	}

	return ws, nil
}

// ListByUser lists workspaces filed directly under collectionID, newest first.
// A nil collectionID selects the root listing.
func (r *PostgresWorkspaceRepository) ListByUser(ctx context.Context, userID string, collectionID *int64) ([]models.Workspace, error) {
	var query string
	args := []any{userID}
	if collectionID == nil {
		query = fmt.Sprintf(`
			SELECT %s FROM %s
			WHERE user_id = $1 AND collection_id IS NULL
			ORDER BY created_at DESC, id DESC
		`, workspaceColumns, r.tables.Workspaces)
	} else {
		query = fmt.Sprintf(`
			SELECT %s FROM %s
			WHERE user_id = $1 AND collection_id = $2
			ORDER BY created_at DESC, id DESC
		`, workspaceColumns, r.tables.Workspaces)
		args = append(args, *collectionID)
	}

	return r.list(ctx, query, args...)
}

// ListAllByUser lists every workspace of the user, newest first
func (r *PostgresWorkspaceRepository) ListAllByUser(ctx context.Context, userID string) ([]models.Workspace, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`, workspaceColumns, r.tables.Workspaces)

	return r.list(ctx, query, userID)
}

func (r *PostgresWorkspaceRepository) list(ctx context.Context, query string, args ...any) ([]models.Workspace, error) {
	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
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
func (r *PostgresWorkspaceRepository) Update(ctx context.Context, ws *models.Workspace) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET title = $1, type = $2, icon = $3, collection_id = $4
		WHERE id = $5
	`, r.tables.Workspaces)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, ws.Title, ws.Type, ws.Icon, ws.CollectionID, ws.ID)
	if err != nil {
		return postgres.WrapReferenceError(err, "update workspace", "collection", ws.CollectionID)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("workspace %d: %w", ws.ID, domain.ErrNotFound)
	}

	return nil
}

// Delete removes the workspace row; nodes and edges go with it by cascade
func (r *PostgresWorkspaceRepository) Delete(ctx context.Context, id int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Workspaces)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete workspace: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("workspace %d: %w", id, domain.ErrNotFound)
	}

	return nil
}

// Duplicate copies the metadata row of id under a new title
func (r *PostgresWorkspaceRepository) Duplicate(ctx context.Context, id int64, title string) (*models.Workspace, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (title, type, icon, user_id, collection_id)
		SELECT $2, type, icon, user_id, collection_id
		FROM %s
		WHERE id = $1
		RETURNING %s
	`, r.tables.Workspaces, r.tables.Workspaces, workspaceColumns)

	executor := postgres.GetExecutor(ctx, r.pool)
	ws, err := scanWorkspace(executor.QueryRow(ctx, query, id, title))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("workspace %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("duplicate workspace: %w", err)
	}

	return ws, nil
}

func scanWorkspace(row pgx.Row) (*models.Workspace, error) {
	var ws models.Workspace
	err := row.Scan(
		&ws.ID,
		&ws.Title,
		&ws.Type,
		&ws.Icon,
		&ws.UserID,
		&ws.CollectionID,
		&ws.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &ws, nil
}
