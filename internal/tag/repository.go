// AngelaMos | 2026
// repository.go

package tag

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/angelamos/researchhub/internal/core"
)

type Repository interface {
	Create(ctx context.Context, t *Tag) error
	GetByID(ctx context.Context, id string) (*Tag, error)
	List(ctx context.Context, status string) ([]Tag, error)
	Approve(ctx context.Context, id string) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, t *Tag) error {
	query := `
		INSERT INTO tags (id, name, category, type, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	err := r.db.GetContext(ctx, t, query,
		t.ID, t.Name, t.Category, t.Type, t.Status,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("create tag: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create tag: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Tag, error) {
	query := `
		SELECT id, name, category, type, status, created_at
		FROM tags
		WHERE id = $1`

	var t Tag
	if err := r.db.GetContext(ctx, &t, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("get tag: %w", core.ErrNotFound)
		}
		return nil, fmt.Errorf("get tag: %w", err)
	}

	return &t, nil
}

func (r *repository) List(ctx context.Context, status string) ([]Tag, error) {
	query := `
		SELECT id, name, category, type, status, created_at
		FROM tags`
	args := []any{}

	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY name ASC`

	tags := []Tag{}
	if err := r.db.SelectContext(ctx, &tags, query, args...); err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}

	return tags, nil
}

func (r *repository) Approve(ctx context.Context, id string) error {
	query := `
		UPDATE tags
		SET status = $2
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, StatusApproved)
	if err != nil {
		return fmt.Errorf("approve tag: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("approve tag: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("approve tag: %w", core.ErrNotFound)
	}

	return nil
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
