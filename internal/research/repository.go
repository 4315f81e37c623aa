// AngelaMos | 2026
// repository.go

package research

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/angelamos/researchhub/internal/core"
)

const submissionColumns = `
	id, user_id, title, abstract, supervisor, year, file_url, status,
	created_at, updated_at`

type Repository interface {
	CreateSubmission(ctx context.Context, sub *Submission) error
	AttachTags(ctx context.Context, submissionID string, tagIDs []string) error
	GetByID(ctx context.Context, id string) (*Submission, error)
	ListPending(
		ctx context.Context,
		params ListPendingParams,
	) ([]Submission, int, error)
	ListByUser(ctx context.Context, userID string) ([]Submission, error)
	ListReviews(ctx context.Context, submissionID string) ([]Review, error)
	Resubmit(ctx context.Context, sub *Submission) error

	// WithTx returns a repository bound to the given transaction; the
	// review append and status update run through it.
	WithTx(tx core.DBTX) Repository
	AppendReview(ctx context.Context, rev *Review) error
	UpdateStatus(ctx context.Context, submissionID, status string) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx core.DBTX) Repository {
	return &repository{db: tx}
}

func (r *repository) CreateSubmission(
	ctx context.Context,
	sub *Submission,
) error {
	query := `
		INSERT INTO research_submissions (
			id, user_id, title, abstract, supervisor, year, file_url, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, sub, query,
		sub.ID,
		sub.UserID,
		sub.Title,
		sub.Abstract,
		sub.Supervisor,
		sub.Year,
		sub.FileURL,
		sub.Status,
	)
	if err != nil {
		return fmt.Errorf("create submission: %w", err)
	}

	return nil
}

func (r *repository) AttachTags(
	ctx context.Context,
	submissionID string,
	tagIDs []string,
) error {
	query := `
		INSERT INTO submission_tags (submission_id, tag_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`

	for _, tagID := range tagIDs {
		if _, err := r.db.ExecContext(ctx, query, submissionID, tagID); err != nil {
			return fmt.Errorf("attach tag: %w", err)
		}
	}

	return nil
}

func (r *repository) GetByID(
	ctx context.Context,
	id string,
) (*Submission, error) {
	query := `
		SELECT ` + submissionColumns + `
		FROM research_submissions
		WHERE id = $1`

	var sub Submission
	if err := r.db.GetContext(ctx, &sub, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("get submission: %w", core.ErrNotFound)
		}
		return nil, fmt.Errorf("get submission: %w", err)
	}

	return &sub, nil
}

// ListPending pages through pending submissions in arrival order. The id
// tiebreak keeps pagination stable when rows share a created_at.
func (r *repository) ListPending(
	ctx context.Context,
	params ListPendingParams,
) ([]Submission, int, error) {
	countQuery := `
		SELECT COUNT(*)
		FROM research_submissions
		WHERE status = $1`

	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, StatusPending); err != nil {
		return nil, 0, fmt.Errorf("count pending: %w", err)
	}

	query := `
		SELECT ` + submissionColumns + `
		FROM research_submissions
		WHERE status = $1
		ORDER BY created_at ASC, id ASC
		LIMIT $2 OFFSET $3`

	subs := []Submission{}
	err := r.db.SelectContext(
		ctx, &subs, query, StatusPending, params.PageSize, params.Offset(),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list pending: %w", err)
	}

	return subs, total, nil
}

func (r *repository) ListByUser(
	ctx context.Context,
	userID string,
) ([]Submission, error) {
	query := `
		SELECT ` + submissionColumns + `
		FROM research_submissions
		WHERE user_id = $1
		ORDER BY created_at DESC`

	subs := []Submission{}
	if err := r.db.SelectContext(ctx, &subs, query, userID); err != nil {
		return nil, fmt.Errorf("list by user: %w", err)
	}

	return subs, nil
}

// ListReviews returns the full audit trail in insertion order.
func (r *repository) ListReviews(
	ctx context.Context,
	submissionID string,
) ([]Review, error) {
	query := `
		SELECT
			rv.id, rv.submission_id, rv.reviewer_id, rv.action, rv.comments,
			rv.created_at, u.name AS reviewer_name
		FROM reviews rv
		JOIN users u ON u.id = rv.reviewer_id
		WHERE rv.submission_id = $1
		ORDER BY rv.created_at ASC, rv.id ASC`

	reviews := []Review{}
	if err := r.db.SelectContext(ctx, &reviews, query, submissionID); err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	return reviews, nil
}

func (r *repository) AppendReview(ctx context.Context, rev *Review) error {
	query := `
		INSERT INTO reviews (id, submission_id, reviewer_id, action, comments)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	err := r.db.GetContext(ctx, rev, query,
		rev.ID,
		rev.SubmissionID,
		rev.ReviewerID,
		rev.Action,
		rev.Comments,
	)
	if err != nil {
		return fmt.Errorf("append review: %w", err)
	}

	return nil
}

func (r *repository) UpdateStatus(
	ctx context.Context,
	submissionID, status string,
) error {
	query := `
		UPDATE research_submissions
		SET status = $2, updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, submissionID, status)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("update status: %w", core.ErrNotFound)
	}

	return nil
}

// Resubmit re-enters a revision_requested submission into the pending queue.
// The WHERE clause enforces both ownership and current status so a stale or
// hostile caller cannot flip an approved record back.
func (r *repository) Resubmit(ctx context.Context, sub *Submission) error {
	query := `
		UPDATE research_submissions
		SET abstract = $3, file_url = $4, status = $5, updated_at = NOW()
		WHERE id = $1 AND user_id = $2 AND status = $6
		RETURNING updated_at`

	err := r.db.GetContext(ctx, sub, query,
		sub.ID,
		sub.UserID,
		sub.Abstract,
		sub.FileURL,
		StatusPending,
		StatusRevisionRequested,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("resubmit: %w", core.ErrNotFound)
		}
		return fmt.Errorf("resubmit: %w", err)
	}

	sub.Status = StatusPending
	return nil
}
