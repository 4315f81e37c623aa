// AngelaMos | 2026
// repository.go

package admin

import (
	"context"
	"fmt"

	"github.com/angelamos/researchhub/internal/core"
)

type statusCount struct {
	Status string `db:"status"`
	Count  int    `db:"count"`
}

type roleCount struct {
	Role  string `db:"role"`
	Count int    `db:"count"`
}

// StatsRepository aggregates the counters shown on the admin dashboard.
type StatsRepository interface {
	UsersByRole(ctx context.Context) (map[string]int, error)
	SubmissionsByStatus(ctx context.Context) (map[string]int, error)
	TotalReviews(ctx context.Context) (int, error)
}

type statsRepository struct {
	db core.DBTX
}

func NewStatsRepository(db core.DBTX) StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) UsersByRole(
	ctx context.Context,
) (map[string]int, error) {
	query := `
		SELECT role, COUNT(*) AS count
		FROM users
		GROUP BY role`

	rows := []roleCount{}
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("users by role: %w", err)
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Role] = row.Count
	}
	return counts, nil
}

func (r *statsRepository) SubmissionsByStatus(
	ctx context.Context,
) (map[string]int, error) {
	query := `
		SELECT status, COUNT(*) AS count
		FROM research_submissions
		GROUP BY status`

	rows := []statusCount{}
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("submissions by status: %w", err)
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *statsRepository) TotalReviews(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM reviews`)
	if err != nil {
		return 0, fmt.Errorf("total reviews: %w", err)
	}
	return count, nil
}
