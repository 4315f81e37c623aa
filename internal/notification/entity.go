// AngelaMos | 2026
// entity.go

package notification

import "time"

const (
	TypeReviewOutcome = "review_outcome"
)

type Notification struct {
	ID         string    `db:"id"`
	UserID     string    `db:"user_id"`
	Type       string    `db:"type"`
	Message    string    `db:"message"`
	ResourceID *string   `db:"resource_id"`
	IsRead     bool      `db:"is_read"`
	CreatedAt  time.Time `db:"created_at"`
}
