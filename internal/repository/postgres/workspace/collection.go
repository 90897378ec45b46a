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

const collectionColumns = "id, title, description, user_id, parent_id, created_at"

// PostgresCollectionRepository implements the CollectionRepository interface
type PostgresCollectionRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewCollectionRepository creates a new collection repository
func NewCollectionRepository(config *postgres.RepositoryConfig) wsRepo.CollectionRepository {
	return &PostgresCollectionRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create inserts a collection
func (r *PostgresCollectionRepository) Create(ctx context.Context, c *models.Collection) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (title, description, user_id, parent_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, r.tables.Collections)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, c.Title, c.Description, c.UserID, c.ParentID).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return postgres.WrapReferenceError(err, "create collection", "parent collection", c.ParentID)
	}

	return nil
}

// GetByID retrieves a collection by ID
func (r *PostgresCollectionRepository) GetByID(ctx context.Context, id int64) (*models.Collection, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, collectionColumns, r.tables.Collections)

	executor := postgres.GetExecutor(ctx, r.pool)
	c, err := scanCollection(executor.QueryRow(ctx, query, id))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("collection %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get collection: %w", err)
	}

	return c, nil
}

// ListChildren lists one level of the user's tree
func (r *PostgresCollectionRepository) ListChildren(ctx context.Context, userID string, parentID *int64) ([]models.Collection, error) {
	var query string
	args := []any{userID}
	if parentID == nil {
		query = fmt.Sprintf(`
			SELECT %s FROM %s
			WHERE user_id = $1 AND parent_id IS NULL
			ORDER BY title ASC, id ASC
		`, collectionColumns, r.tables.Collections)
	} else {
		query = fmt.Sprintf(`
			SELECT %s FROM %s
			WHERE user_id = $1 AND parent_id = $2
			ORDER BY title ASC, id ASC
		`, collectionColumns, r.tables.Collections)
		args = append(args, *parentID)
	}

	return r.list(ctx, query, args...)
}

// ListAllByUser lists every collection of the user
func (r *PostgresCollectionRepository) ListAllByUser(ctx context.Context, userID string) ([]models.Collection, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE user_id = $1
		ORDER BY title ASC, id ASC
	`, collectionColumns, r.tables.Collections)

	return r.list(ctx, query, userID)
}

func (r *PostgresCollectionRepository) list(ctx context.Context, query string, args ...any) ([]models.Collection, error) {
	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
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

// LockTree takes a transaction-scoped advisory lock on the user's tree
func (r *PostgresCollectionRepository) LockTree(ctx context.Context, userID string) error {
	key := fmt.Sprintf("%s.collections:%s", r.tables.Schema, userID)
	executor := postgres.GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, key); err != nil {
		return fmt.Errorf("lock collection tree: %w", err)
	}
	return nil
}

// Update persists title, description and parent
func (r *PostgresCollectionRepository) Update(ctx context.Context, c *models.Collection) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET title = $1, description = $2, parent_id = $3
		WHERE id = $4
	`, r.tables.Collections)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, c.Title, c.Description, c.ParentID, c.ID)
	if err != nil {
		return postgres.WrapReferenceError(err, "update collection", "parent collection", c.ParentID)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("collection %d: %w", c.ID, domain.ErrNotFound)
	}

	return nil
}

// Delete removes a collection. The foreign keys cascade to child
// collections and clear collection_id on filed workspaces.
func (r *PostgresCollectionRepository) Delete(ctx context.Context, id int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Collections)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete collection: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("collection %d: %w", id, domain.ErrNotFound)
	}

	return nil
}

func scanCollection(row pgx.Row) (*models.Collection, error) {
	var c models.Collection
	err := row.Scan(
		&c.ID,
		&c.Title,
		&c.Description,
		&c.UserID,
		&c.ParentID,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
