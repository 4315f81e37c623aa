// AngelaMos | 2026
// repository.go

package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/angelamos/researchhub/internal/core"
)

const userColumns = `
	id, name, email, matric_or_faculty_id, department, password_hash,
	is_active, is_verified, account_status, role, token_version,
	verification_token, verification_token_expiry,
	password_reset_code, password_reset_code_expiry,
	first_login, last_login, created_at, updated_at`

type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByMatricOrFacultyID(ctx context.Context, matricID string) (*User, error)
	GetByVerificationToken(ctx context.Context, token string) (*User, error)
	GetByResetCode(ctx context.Context, code string) (*User, error)
	UpdateProfile(ctx context.Context, user *User) error
	UpdateRole(ctx context.Context, id, role string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	IncrementTokenVersion(ctx context.Context, id string) error
	MarkVerified(ctx context.Context, id string) error
	SetPasswordResetCode(
		ctx context.Context,
		id, code string,
		expiry time.Time,
	) error
	SetVerificationToken(
		ctx context.Context,
		id, token string,
		expiry time.Time,
	) error
	ResetPassword(ctx context.Context, id, passwordHash string) error
	RecordLogin(ctx context.Context, id string) error
	Suspend(ctx context.Context, id string) error
	List(ctx context.Context, params ListUsersParams) ([]User, int, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (
			id, name, email, matric_or_faculty_id, department, password_hash,
			is_active, is_verified, account_status, role,
			verification_token, verification_token_expiry
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
		)
		RETURNING created_at, updated_at, token_version`

	err := r.db.GetContext(ctx, user, query,
		user.ID,
		user.Name,
		user.Email,
		user.MatricOrFacultyID,
		user.Department,
		user.PasswordHash,
		user.IsActive,
		user.IsVerified,
		user.AccountStatus,
		user.Role,
		user.VerificationToken,
		user.VerificationTokenExpiry,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*User, error) {
	return r.getOne(ctx, "id = $1", id)
}

func (r *repository) GetByEmail(
	ctx context.Context,
	email string,
) (*User, error) {
	return r.getOne(ctx, "email = $1", email)
}

func (r *repository) GetByMatricOrFacultyID(
	ctx context.Context,
	matricID string,
) (*User, error) {
	return r.getOne(ctx, "matric_or_faculty_id = $1", matricID)
}

func (r *repository) GetByVerificationToken(
	ctx context.Context,
	token string,
) (*User, error) {
	return r.getOne(ctx, "verification_token = $1", token)
}

func (r *repository) GetByResetCode(
	ctx context.Context,
	code string,
) (*User, error) {
	return r.getOne(ctx, "password_reset_code = $1", code)
}

func (r *repository) getOne(
	ctx context.Context,
	where string,
	arg any,
) (*User, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM users WHERE %s",
		userColumns,
		where,
	)

	var user User
	err := r.db.GetContext(ctx, &user, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &user, nil
}

func (r *repository) UpdateProfile(ctx context.Context, user *User) error {
	query := `
		UPDATE users
		SET name = $2, department = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &user.UpdatedAt, query,
		user.ID,
		user.Name,
		user.Department,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update user: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	return nil
}

// UpdateRole changes the role and bumps token_version in the same statement,
// so tokens carrying the old role die immediately.
func (r *repository) UpdateRole(ctx context.Context, id, role string) error {
	query := `
		UPDATE users
		SET role = $2, token_version = token_version + 1, updated_at = NOW()
		WHERE id = $1`

	return r.execOne(ctx, "update role", query, id, role)
}

func (r *repository) UpdatePassword(
	ctx context.Context,
	id, passwordHash string,
) error {
	query := `
		UPDATE users
		SET password_hash = $2, updated_at = NOW()
		WHERE id = $1`

	return r.execOne(ctx, "update password", query, id, passwordHash)
}

func (r *repository) IncrementTokenVersion(
	ctx context.Context,
	id string,
) error {
	query := `
		UPDATE users
		SET token_version = token_version + 1, updated_at = NOW()
		WHERE id = $1`

	return r.execOne(ctx, "increment token version", query, id)
}

// MarkVerified consumes the verification token: the WHERE clause guarantees
// one-time use even under concurrent requests.
func (r *repository) MarkVerified(ctx context.Context, id string) error {
	query := `
		UPDATE users
		SET is_verified = true,
		    account_status = $2,
		    verification_token = NULL,
		    verification_token_expiry = NULL,
		    updated_at = NOW()
		WHERE id = $1 AND is_verified = false`

	return r.execOne(ctx, "mark verified", query, id, StatusActive)
}

func (r *repository) SetVerificationToken(
	ctx context.Context,
	id, token string,
	expiry time.Time,
) error {
	query := `
		UPDATE users
		SET verification_token = $2,
		    verification_token_expiry = $3,
		    updated_at = NOW()
		WHERE id = $1`

	return r.execOne(ctx, "set verification token", query, id, token, expiry)
}

func (r *repository) SetPasswordResetCode(
	ctx context.Context,
	id, code string,
	expiry time.Time,
) error {
	query := `
		UPDATE users
		SET password_reset_code = $2,
		    password_reset_code_expiry = $3,
		    updated_at = NOW()
		WHERE id = $1`

	return r.execOne(ctx, "set reset code", query, id, code, expiry)
}

// ResetPassword clears the reset code and bumps token_version in one
// statement: a successful reset revokes every outstanding token.
func (r *repository) ResetPassword(
	ctx context.Context,
	id, passwordHash string,
) error {
	query := `
		UPDATE users
		SET password_hash = $2,
		    password_reset_code = NULL,
		    password_reset_code_expiry = NULL,
		    token_version = token_version + 1,
		    updated_at = NOW()
		WHERE id = $1`

	return r.execOne(ctx, "reset password", query, id, passwordHash)
}

func (r *repository) RecordLogin(ctx context.Context, id string) error {
	query := `
		UPDATE users
		SET first_login = COALESCE(first_login, NOW()),
		    last_login = NOW(),
		    updated_at = NOW()
		WHERE id = $1`

	return r.execOne(ctx, "record login", query, id)
}

func (r *repository) Suspend(ctx context.Context, id string) error {
	query := `
		UPDATE users
		SET account_status = $2,
		    token_version = token_version + 1,
		    updated_at = NOW()
		WHERE id = $1`

	return r.execOne(ctx, "suspend user", query, id, StatusSuspended)
}

func (r *repository) List(
	ctx context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	params.Normalize()

	var conditions []string
	var args []any
	argIdx := 1

	conditions = append(conditions, "TRUE")

	if params.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(email ILIKE $%d OR name ILIKE $%d)", argIdx, argIdx))
		args = append(args, "%"+escapeLike(params.Search)+"%")
		argIdx++
	}

	if params.Role != "" {
		conditions = append(conditions, fmt.Sprintf("role = $%d", argIdx))
		args = append(args, params.Role)
		argIdx++
	}

	if params.Status != "" {
		conditions = append(
			conditions,
			fmt.Sprintf("account_status = $%d", argIdx),
		)
		args = append(args, params.Status)
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf(
		"SELECT COUNT(*) FROM users WHERE %s",
		whereClause,
	)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM users
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		userColumns, whereClause, argIdx, argIdx+1)

	args = append(args, params.PageSize, params.Offset())

	var users []User
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	return users, total, nil
}

func (r *repository) ExistsByEmail(
	ctx context.Context,
	email string,
) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, email); err != nil {
		return false, fmt.Errorf("check email exists: %w", err)
	}

	return exists, nil
}

func (r *repository) execOne(
	ctx context.Context,
	op, query string,
	args ...any,
) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if rows == 0 {
		return fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}

	return nil
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}
