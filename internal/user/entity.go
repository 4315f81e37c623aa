// AngelaMos | 2026
// entity.go

package user

import (
	"time"

	"github.com/angelamos/researchhub/internal/policy"
)

const (
	StatusPendingVerification = "pending_verification"
	StatusActive              = "active"
	StatusSuspended           = "suspended"
)

type User struct {
	ID                      string     `db:"id"`
	Name                    string     `db:"name"`
	Email                   string     `db:"email"`
	MatricOrFacultyID       *string    `db:"matric_or_faculty_id"`
	Department              *string    `db:"department"`
	PasswordHash            string     `db:"password_hash"`
	IsActive                bool       `db:"is_active"`
	IsVerified              bool       `db:"is_verified"`
	AccountStatus           string     `db:"account_status"`
	Role                    string     `db:"role"`
	TokenVersion            int        `db:"token_version"`
	VerificationToken       *string    `db:"verification_token"`
	VerificationTokenExpiry *time.Time `db:"verification_token_expiry"`
	PasswordResetCode       *string    `db:"password_reset_code"`
	PasswordResetCodeExpiry *time.Time `db:"password_reset_code_expiry"`
	FirstLogin              *time.Time `db:"first_login"`
	LastLogin               *time.Time `db:"last_login"`
	CreatedAt               time.Time  `db:"created_at"`
	UpdatedAt               time.Time  `db:"updated_at"`
}

// CanAuthenticate holds the account-state invariant checked on every
// protected request: active flag, verified flag, and account status must all
// agree.
func (u *User) CanAuthenticate() bool {
	return u.IsActive && u.IsVerified && u.AccountStatus == StatusActive
}

func (u *User) IsAdmin() bool {
	return u.Role == policy.RoleAdmin
}

func (u *User) VerificationTokenValid(now time.Time) bool {
	return u.VerificationToken != nil &&
		u.VerificationTokenExpiry != nil &&
		now.Before(*u.VerificationTokenExpiry)
}

func (u *User) ResetCodeValid(now time.Time) bool {
	return u.PasswordResetCode != nil &&
		u.PasswordResetCodeExpiry != nil &&
		now.Before(*u.PasswordResetCodeExpiry)
}
