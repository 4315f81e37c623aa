// AngelaMos | 2026
// entity.go

package tag

import "time"

const (
	TypeCore      = "core"
	TypeSuggested = "suggested"
)

const (
	StatusApproved = "approved"
	StatusPending  = "pending"
)

type Tag struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Category  string    `db:"category"`
	Type      string    `db:"type"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
}
