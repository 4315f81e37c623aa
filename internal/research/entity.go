// AngelaMos | 2026
// entity.go

package research

import "time"

const (
	StatusPending           = "pending"
	StatusApproved          = "approved"
	StatusRejected          = "rejected"
	StatusRevisionRequested = "revision_requested"
)

const (
	ActionApprove  = "approve"
	ActionReject   = "reject"
	ActionRevision = "revision"
)

// statusForAction maps a review action onto the submission status it
// produces. Every valid action has exactly one resulting status.
var statusForAction = map[string]string{
	ActionApprove:  StatusApproved,
	ActionReject:   StatusRejected,
	ActionRevision: StatusRevisionRequested,
}

// ValidAction reports whether the action string is one of the three review
// verbs. Anything else is rejected at the boundary.
func ValidAction(action string) bool {
	_, ok := statusForAction[action]
	return ok
}

// StatusForAction returns the submission status a given action produces.
// Callers must check ValidAction first.
func StatusForAction(action string) string {
	return statusForAction[action]
}

type Submission struct {
	ID         string     `db:"id"`
	UserID     string     `db:"user_id"`
	Title      string     `db:"title"`
	Abstract   string     `db:"abstract"`
	Supervisor *string    `db:"supervisor"`
	Year       int        `db:"year"`
	FileURL    string     `db:"file_url"`
	Status     string     `db:"status"`
	CreatedAt  time.Time  `db:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at"`
}

// Review is an append-only audit record. There are no update or delete
// paths anywhere in the codebase.
type Review struct {
	ID           string    `db:"id"`
	SubmissionID string    `db:"submission_id"`
	ReviewerID   string    `db:"reviewer_id"`
	Action       string    `db:"action"`
	Comments     string    `db:"comments"`
	CreatedAt    time.Time `db:"created_at"`

	// ReviewerName is joined in for display, never written.
	ReviewerName string `db:"reviewer_name"`
}
