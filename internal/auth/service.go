// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/angelamos/researchhub/internal/config"
	"github.com/angelamos/researchhub/internal/core"
	"github.com/angelamos/researchhub/internal/middleware"
	"github.com/angelamos/researchhub/internal/policy"
	"github.com/angelamos/researchhub/internal/user"
)

// UserStore is the slice of the user repository the auth service depends on.
type UserStore interface {
	Create(ctx context.Context, u *user.User) error
	GetByID(ctx context.Context, id string) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	GetByVerificationToken(ctx context.Context, token string) (*user.User, error)
	GetByResetCode(ctx context.Context, code string) (*user.User, error)
	MarkVerified(ctx context.Context, id string) error
	SetVerificationToken(ctx context.Context, id, token string, expiry time.Time) error
	SetPasswordResetCode(ctx context.Context, id, code string, expiry time.Time) error
	ResetPassword(ctx context.Context, id, passwordHash string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	IncrementTokenVersion(ctx context.Context, id string) error
	RecordLogin(ctx context.Context, id string) error
}

type Service struct {
	users      UserStore
	jwtManager *JWTManager
	limiter    *LoginLimiter
	mailer     Mailer
	appCfg     config.AppConfig
	jwtCfg     config.JWTConfig
	mailCfg    config.MailConfig
	logger     *slog.Logger
}

func NewService(
	users UserStore,
	jwtManager *JWTManager,
	limiter *LoginLimiter,
	mailer Mailer,
	appCfg config.AppConfig,
	jwtCfg config.JWTConfig,
	mailCfg config.MailConfig,
	logger *slog.Logger,
) *Service {
	return &Service{
		users:      users,
		jwtManager: jwtManager,
		limiter:    limiter,
		mailer:     mailer,
		appCfg:     appCfg,
		jwtCfg:     jwtCfg,
		mailCfg:    mailCfg,
		logger:     logger,
	}
}

// AuthenticateRequest is the full gate behind every protected route. The
// token is verified cryptographically, then the live user record decides:
// the token version embedded at issue time must still match, and the account
// must still be in an authenticatable state. Any version bump since issue
// invalidates every outstanding token at once.
func (s *Service) AuthenticateRequest(
	ctx context.Context,
	rawToken string,
) (*middleware.AuthUser, error) {
	claims, err := s.jwtManager.VerifyAccessToken(rawToken)
	if err != nil {
		if errors.Is(err, core.ErrTokenExpired) {
			return nil, core.TokenExpiredError()
		}
		return nil, core.TokenInvalidError()
	}

	u, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		// The middleware collapses a missing user into a generic invalid
		// token on the wire; callers inside the process still see the
		// distinct not-found failure.
		return nil, fmt.Errorf("authenticate request: %w", err)
	}

	if !u.CanAuthenticate() {
		return nil, core.AccountInactiveError(u.AccountStatus)
	}

	if claims.TokenVersion != u.TokenVersion {
		return nil, core.TokenRevokedError()
	}

	return &middleware.AuthUser{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Role:         u.Role,
		TokenVersion: u.TokenVersion,
	}, nil
}

// Login verifies credentials behind a per-IP rate limit. The password check
// runs against a dummy hash when the email is unknown so the response time
// does not reveal which emails exist.
func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
	clientIP string,
) (*TokenResponse, error) {
	allowed, retryAfter, err := s.limiter.Allow(ctx, clientIP)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if !allowed {
		return nil, core.RateLimitedError(fmt.Sprintf(
			"too many login attempts, retry in %d seconds",
			int(retryAfter.Seconds()),
		))
	}

	u, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, core.ErrNotFound) {
		return nil, fmt.Errorf("login: %w", err)
	}

	var storedHash *string
	if u != nil {
		storedHash = &u.PasswordHash
	}

	valid, newHash, err := core.VerifyPasswordTimingSafe(
		req.Password,
		storedHash,
	)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	if u == nil || !valid {
		return nil, core.UnauthorizedError("invalid email or password")
	}

	if !u.CanAuthenticate() {
		if !u.IsVerified {
			return nil, core.UnauthorizedError("email not verified")
		}
		return nil, core.AccountInactiveError(u.AccountStatus)
	}

	if newHash != "" {
		if updateErr := s.users.UpdatePassword(ctx, u.ID, newHash); updateErr != nil {
			s.logger.WarnContext(ctx, "password rehash failed",
				slog.String("user_id", u.ID),
				slog.String("error", updateErr.Error()),
			)
		}
	}

	if recordErr := s.users.RecordLogin(ctx, u.ID); recordErr != nil {
		s.logger.WarnContext(ctx, "record login failed",
			slog.String("user_id", u.ID),
			slog.String("error", recordErr.Error()),
		)
	}

	if resetErr := s.limiter.Reset(ctx, clientIP); resetErr != nil {
		s.logger.WarnContext(ctx, "rate limit reset failed",
			slog.String("error", resetErr.Error()),
		)
	}

	return s.issueToken(u)
}

// Register creates a pending account and sends the verification email. The
// account cannot log in until the email is verified.
func (s *Service) Register(
	ctx context.Context,
	req RegisterRequest,
) (*user.UserResponse, error) {
	hash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	token, err := core.GenerateVerificationToken()
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	expiry := time.Now().Add(s.mailCfg.VerificationTokenTTL)

	u := &user.User{
		ID:                      uuid.New().String(),
		Name:                    req.Name,
		Email:                   req.Email,
		PasswordHash:            hash,
		IsActive:                true,
		IsVerified:              false,
		AccountStatus:           user.StatusPendingVerification,
		Role:                    policy.RoleStudent,
		VerificationToken:       &token,
		VerificationTokenExpiry: &expiry,
	}
	if req.MatricOrFacultyID != "" {
		u.MatricOrFacultyID = &req.MatricOrFacultyID
	}
	if req.Department != "" {
		u.Department = &req.Department
	}

	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, core.DuplicateError("email or ID")
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	verifyURL := fmt.Sprintf(
		"%s/verify-email?token=%s",
		s.appCfg.BaseURL,
		url.QueryEscape(token),
	)
	if mailErr := s.mailer.SendVerificationEmail(ctx, u.Email, verifyURL); mailErr != nil {
		s.logger.ErrorContext(ctx, "verification email failed",
			slog.String("user_id", u.ID),
			slog.String("error", mailErr.Error()),
		)
	}

	resp := user.ToUserResponse(u)
	return &resp, nil
}

// VerifyEmail consumes a verification token. Consumption is one-shot at the
// storage layer, so a replayed token fails even in a race.
func (s *Service) VerifyEmail(ctx context.Context, token string) error {
	u, err := s.users.GetByVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.UnauthorizedError("invalid or expired verification token")
		}
		return fmt.Errorf("verify email: %w", err)
	}

	if !u.VerificationTokenValid(time.Now()) {
		return core.UnauthorizedError("invalid or expired verification token")
	}

	if err := s.users.MarkVerified(ctx, u.ID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.UnauthorizedError("invalid or expired verification token")
		}
		return fmt.Errorf("verify email: %w", err)
	}

	return nil
}

// ForgotPassword issues a reset code. The response is identical whether or
// not the email exists.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("forgot password: %w", err)
	}

	code, err := core.GenerateResetCode()
	if err != nil {
		return fmt.Errorf("forgot password: %w", err)
	}

	expiry := time.Now().Add(s.mailCfg.PasswordResetCodeTTL)
	if err := s.users.SetPasswordResetCode(ctx, u.ID, code, expiry); err != nil {
		return fmt.Errorf("forgot password: %w", err)
	}

	if mailErr := s.mailer.SendPasswordResetEmail(ctx, u.Email, code); mailErr != nil {
		s.logger.ErrorContext(ctx, "reset email failed",
			slog.String("user_id", u.ID),
			slog.String("error", mailErr.Error()),
		)
	}

	return nil
}

// ResetPassword exchanges a valid reset code for a new password. The
// storage-layer update clears the code and bumps the token version in the
// same statement, so every previously issued token dies with the old
// password.
func (s *Service) ResetPassword(
	ctx context.Context,
	req ResetPasswordRequest,
) error {
	u, err := s.users.GetByResetCode(ctx, req.Code)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.UnauthorizedError("invalid or expired reset code")
		}
		return fmt.Errorf("reset password: %w", err)
	}

	if u.Email != req.Email || !u.ResetCodeValid(time.Now()) {
		return core.UnauthorizedError("invalid or expired reset code")
	}

	hash, err := core.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("reset password: %w", err)
	}

	if err := s.users.ResetPassword(ctx, u.ID, hash); err != nil {
		return fmt.Errorf("reset password: %w", err)
	}

	return nil
}

// ChangePassword requires the current password and revokes all outstanding
// tokens on success. The caller receives a fresh token from a new login.
func (s *Service) ChangePassword(
	ctx context.Context,
	userID string,
	req ChangePasswordRequest,
) error {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}

	valid, err := core.VerifyPassword(req.CurrentPassword, u.PasswordHash)
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	if !valid {
		return core.UnauthorizedError("current password is incorrect")
	}

	hash, err := core.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}

	if err := s.users.ResetPassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("change password: %w", err)
	}

	return nil
}

// RevokeAllTokens bumps the user's token version. Every token issued before
// the bump fails its next version check.
func (s *Service) RevokeAllTokens(ctx context.Context, userID string) error {
	if err := s.users.IncrementTokenVersion(ctx, userID); err != nil {
		return fmt.Errorf("revoke tokens: %w", err)
	}
	return nil
}

func (s *Service) issueToken(u *user.User) (*TokenResponse, error) {
	token, err := s.jwtManager.CreateAccessToken(Claims{
		UserID:       u.ID,
		Role:         u.Role,
		TokenVersion: u.TokenVersion,
	}, 0)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.jwtCfg.AccessTokenExpire.Seconds()),
		User:        user.ToUserResponse(u),
	}, nil
}
