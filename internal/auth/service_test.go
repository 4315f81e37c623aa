// AngelaMos | 2026
// service_test.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelamos/researchhub/internal/config"
	"github.com/angelamos/researchhub/internal/core"
	"github.com/angelamos/researchhub/internal/policy"
	"github.com/angelamos/researchhub/internal/user"
)

type fakeUserStore struct {
	byID map[string]*user.User

	getErr error
}

var _ UserStore = (*fakeUserStore)(nil)

func newFakeUserStore(users ...*user.User) *fakeUserStore {
	store := &fakeUserStore{byID: map[string]*user.User{}}
	for _, u := range users {
		cpy := *u
		store.byID[u.ID] = &cpy
	}
	return store
}

func (f *fakeUserStore) Create(_ context.Context, u *user.User) error {
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return core.ErrDuplicateKey
		}
	}
	cpy := *u
	f.byID[u.ID] = &cpy
	return nil
}

func (f *fakeUserStore) GetByID(_ context.Context, id string) (*user.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	cpy := *u
	return &cpy, nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (*user.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			cpy := *u
			return &cpy, nil
		}
	}
	return nil, core.ErrNotFound
}

func (f *fakeUserStore) GetByVerificationToken(_ context.Context, token string) (*user.User, error) {
	for _, u := range f.byID {
		if u.VerificationToken != nil && *u.VerificationToken == token {
			cpy := *u
			return &cpy, nil
		}
	}
	return nil, core.ErrNotFound
}

func (f *fakeUserStore) GetByResetCode(_ context.Context, code string) (*user.User, error) {
	for _, u := range f.byID {
		if u.PasswordResetCode != nil && *u.PasswordResetCode == code {
			cpy := *u
			return &cpy, nil
		}
	}
	return nil, core.ErrNotFound
}

func (f *fakeUserStore) MarkVerified(_ context.Context, id string) error {
	u, ok := f.byID[id]
	if !ok || u.IsVerified {
		return core.ErrNotFound
	}
	u.IsVerified = true
	u.AccountStatus = user.StatusActive
	u.VerificationToken = nil
	u.VerificationTokenExpiry = nil
	return nil
}

func (f *fakeUserStore) SetVerificationToken(_ context.Context, id, token string, expiry time.Time) error {
	u, ok := f.byID[id]
	if !ok {
		return core.ErrNotFound
	}
	u.VerificationToken = &token
	u.VerificationTokenExpiry = &expiry
	return nil
}

func (f *fakeUserStore) SetPasswordResetCode(_ context.Context, id, code string, expiry time.Time) error {
	u, ok := f.byID[id]
	if !ok {
		return core.ErrNotFound
	}
	u.PasswordResetCode = &code
	u.PasswordResetCodeExpiry = &expiry
	return nil
}

func (f *fakeUserStore) ResetPassword(_ context.Context, id, passwordHash string) error {
	u, ok := f.byID[id]
	if !ok {
		return core.ErrNotFound
	}
	u.PasswordHash = passwordHash
	u.PasswordResetCode = nil
	u.PasswordResetCodeExpiry = nil
	u.TokenVersion++
	return nil
}

func (f *fakeUserStore) UpdatePassword(_ context.Context, id, passwordHash string) error {
	u, ok := f.byID[id]
	if !ok {
		return core.ErrNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (f *fakeUserStore) IncrementTokenVersion(_ context.Context, id string) error {
	u, ok := f.byID[id]
	if !ok {
		return core.ErrNotFound
	}
	u.TokenVersion++
	return nil
}

func (f *fakeUserStore) RecordLogin(_ context.Context, id string) error {
	u, ok := f.byID[id]
	if !ok {
		return core.ErrNotFound
	}
	now := time.Now()
	if u.FirstLogin == nil {
		u.FirstLogin = &now
	}
	u.LastLogin = &now
	return nil
}

type fakeMailer struct {
	verificationSent int
	resetSent        int
}

var _ Mailer = (*fakeMailer)(nil)

func (m *fakeMailer) SendVerificationEmail(context.Context, string, string) error {
	m.verificationSent++
	return nil
}

func (m *fakeMailer) SendPasswordResetEmail(context.Context, string, string) error {
	m.resetSent++
	return nil
}

const testPassword = "correct horse battery"

func activeUser(t *testing.T, id string) *user.User {
	t.Helper()

	hash, err := core.HashPassword(testPassword)
	require.NoError(t, err)

	return &user.User{
		ID:            id,
		Name:          "Ada Test",
		Email:         fmt.Sprintf("%s@example.edu", id),
		PasswordHash:  hash,
		IsActive:      true,
		IsVerified:    true,
		AccountStatus: user.StatusActive,
		Role:          policy.RoleStudent,
		TokenVersion:  0,
	}
}

func newTestService(
	t *testing.T,
	store *fakeUserStore,
	loginAttempts int,
) (*Service, *fakeMailer) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	mailer := &fakeMailer{}
	manager := newTestJWTManager(t)

	svc := NewService(
		store,
		manager,
		NewLoginLimiter(client, loginAttempts, time.Minute),
		mailer,
		config.AppConfig{BaseURL: "https://hub.example.edu"},
		config.JWTConfig{AccessTokenExpire: 15 * time.Minute},
		config.MailConfig{
			VerificationTokenTTL: 24 * time.Hour,
			PasswordResetCodeTTL: 10 * time.Minute,
		},
		slog.New(slog.DiscardHandler),
	)

	return svc, mailer
}

func TestAuthenticateRequest(t *testing.T) {
	ctx := context.Background()
	store := newFakeUserStore(activeUser(t, "u1"))
	svc, _ := newTestService(t, store, 5)

	token, err := svc.jwtManager.CreateAccessToken(Claims{
		UserID:       "u1",
		Role:         policy.RoleStudent,
		TokenVersion: 0,
	}, 0)
	require.NoError(t, err)

	authUser, err := svc.AuthenticateRequest(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "u1", authUser.ID)
	assert.Equal(t, policy.RoleStudent, authUser.Role)
}

func TestAuthenticateRequestRejectsStaleVersion(t *testing.T) {
	ctx := context.Background()
	store := newFakeUserStore(activeUser(t, "u1"))
	svc, _ := newTestService(t, store, 5)

	token, err := svc.jwtManager.CreateAccessToken(Claims{
		UserID:       "u1",
		Role:         policy.RoleStudent,
		TokenVersion: 0,
	}, 0)
	require.NoError(t, err)

	// Token works before revocation.
	_, err = svc.AuthenticateRequest(ctx, token)
	require.NoError(t, err)

	require.NoError(t, svc.RevokeAllTokens(ctx, "u1"))

	_, err = svc.AuthenticateRequest(ctx, token)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrTokenRevoked))
}

func TestAuthenticateRequestAfterPasswordReset(t *testing.T) {
	ctx := context.Background()
	u := activeUser(t, "u1")
	code := "123456"
	expiry := time.Now().Add(10 * time.Minute)
	u.PasswordResetCode = &code
	u.PasswordResetCodeExpiry = &expiry

	store := newFakeUserStore(u)
	svc, _ := newTestService(t, store, 5)

	token, err := svc.jwtManager.CreateAccessToken(Claims{
		UserID:       "u1",
		Role:         policy.RoleStudent,
		TokenVersion: 0,
	}, 0)
	require.NoError(t, err)

	err = svc.ResetPassword(ctx, ResetPasswordRequest{
		Email:       u.Email,
		Code:        code,
		NewPassword: "an entirely new secret",
	})
	require.NoError(t, err)

	_, err = svc.AuthenticateRequest(ctx, token)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrTokenRevoked))
}

func TestAuthenticateRequestSuspendedAccount(t *testing.T) {
	ctx := context.Background()
	u := activeUser(t, "u1")
	store := newFakeUserStore(u)
	svc, _ := newTestService(t, store, 5)

	token, err := svc.jwtManager.CreateAccessToken(Claims{
		UserID:       "u1",
		Role:         policy.RoleStudent,
		TokenVersion: 0,
	}, 0)
	require.NoError(t, err)

	store.byID["u1"].AccountStatus = user.StatusSuspended

	_, err = svc.AuthenticateRequest(ctx, token)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrAccountInactive))
}

func TestAuthenticateRequestUnknownUser(t *testing.T) {
	ctx := context.Background()
	store := newFakeUserStore()
	svc, _ := newTestService(t, store, 5)

	token, err := svc.jwtManager.CreateAccessToken(Claims{
		UserID:       "ghost",
		Role:         policy.RoleStudent,
		TokenVersion: 0,
	}, 0)
	require.NoError(t, err)

	_, err = svc.AuthenticateRequest(ctx, token)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrNotFound))
}

func TestLoginSuccess(t *testing.T) {
	ctx := context.Background()
	store := newFakeUserStore(activeUser(t, "u1"))
	svc, _ := newTestService(t, store, 5)

	resp, err := svc.Login(ctx, LoginRequest{
		Email:    "u1@example.edu",
		Password: testPassword,
	}, "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.NotEmpty(t, resp.AccessToken)

	// The issued token passes the full gate.
	_, err = svc.AuthenticateRequest(ctx, resp.AccessToken)
	require.NoError(t, err)

	assert.NotNil(t, store.byID["u1"].FirstLogin)
}

func TestLoginWrongPassword(t *testing.T) {
	ctx := context.Background()
	store := newFakeUserStore(activeUser(t, "u1"))
	svc, _ := newTestService(t, store, 5)

	_, err := svc.Login(ctx, LoginRequest{
		Email:    "u1@example.edu",
		Password: "wrong",
	}, "10.0.0.1")
	require.Error(t, err)

	appErr, ok := core.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "UNAUTHENTICATED", appErr.Code)
}

func TestLoginUnknownEmailSameError(t *testing.T) {
	ctx := context.Background()
	store := newFakeUserStore()
	svc, _ := newTestService(t, store, 5)

	_, err := svc.Login(ctx, LoginRequest{
		Email:    "nobody@example.edu",
		Password: "whatever",
	}, "10.0.0.1")
	require.Error(t, err)

	appErr, ok := core.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "UNAUTHENTICATED", appErr.Code)
}

func TestLoginRateLimitDistinctFromCredentialFailure(t *testing.T) {
	ctx := context.Background()
	store := newFakeUserStore(activeUser(t, "u1"))
	svc, _ := newTestService(t, store, 2)

	req := LoginRequest{Email: "u1@example.edu", Password: "wrong"}

	for i := 0; i < 2; i++ {
		_, err := svc.Login(ctx, req, "10.0.0.9")
		appErr, ok := core.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, "UNAUTHENTICATED", appErr.Code)
	}

	_, err := svc.Login(ctx, req, "10.0.0.9")
	require.Error(t, err)
	appErr, ok := core.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "RATE_LIMITED", appErr.Code)
	assert.True(t, errors.Is(err, core.ErrRateLimited))
}

func TestLoginResetsLimiterOnSuccess(t *testing.T) {
	ctx := context.Background()
	store := newFakeUserStore(activeUser(t, "u1"))
	svc, _ := newTestService(t, store, 3)

	for i := 0; i < 2; i++ {
		_, err := svc.Login(ctx, LoginRequest{
			Email:    "u1@example.edu",
			Password: "wrong",
		}, "10.0.0.1")
		require.Error(t, err)
	}

	_, err := svc.Login(ctx, LoginRequest{
		Email:    "u1@example.edu",
		Password: testPassword,
	}, "10.0.0.1")
	require.NoError(t, err)

	// Full budget is available again after the successful login.
	for i := 0; i < 3; i++ {
		_, err := svc.Login(ctx, LoginRequest{
			Email:    "u1@example.edu",
			Password: "wrong",
		}, "10.0.0.1")
		appErr, ok := core.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, "UNAUTHENTICATED", appErr.Code)
	}
}

func TestLoginUnverifiedAccount(t *testing.T) {
	ctx := context.Background()
	u := activeUser(t, "u1")
	u.IsVerified = false
	u.AccountStatus = user.StatusPendingVerification

	store := newFakeUserStore(u)
	svc, _ := newTestService(t, store, 5)

	_, err := svc.Login(ctx, LoginRequest{
		Email:    "u1@example.edu",
		Password: testPassword,
	}, "10.0.0.1")
	require.Error(t, err)

	appErr, ok := core.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "UNAUTHENTICATED", appErr.Code)
}

func TestRegisterAndVerifyEmail(t *testing.T) {
	ctx := context.Background()
	store := newFakeUserStore()
	svc, mailer := newTestService(t, store, 5)

	resp, err := svc.Register(ctx, RegisterRequest{
		Name:     "New Student",
		Email:    "new@example.edu",
		Password: "a strong password",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, mailer.verificationSent)

	created := store.byID[resp.ID]
	require.NotNil(t, created)
	assert.False(t, created.IsVerified)
	require.NotNil(t, created.VerificationToken)

	require.NoError(t, svc.VerifyEmail(ctx, *created.VerificationToken))
	assert.True(t, store.byID[resp.ID].IsVerified)
	assert.Nil(t, store.byID[resp.ID].VerificationToken)
}

func TestVerifyEmailTokenIsSingleUse(t *testing.T) {
	ctx := context.Background()
	store := newFakeUserStore()
	svc, _ := newTestService(t, store, 5)

	resp, err := svc.Register(ctx, RegisterRequest{
		Name:     "New Student",
		Email:    "new@example.edu",
		Password: "a strong password",
	})
	require.NoError(t, err)

	token := *store.byID[resp.ID].VerificationToken

	require.NoError(t, svc.VerifyEmail(ctx, token))

	err = svc.VerifyEmail(ctx, token)
	require.Error(t, err)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	store := newFakeUserStore(activeUser(t, "u1"))
	svc, _ := newTestService(t, store, 5)

	_, err := svc.Register(ctx, RegisterRequest{
		Name:     "Copycat",
		Email:    "u1@example.edu",
		Password: "a strong password",
	})
	require.Error(t, err)

	appErr, ok := core.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "CONFLICT", appErr.Code)
}

func TestForgotPasswordUnknownEmailIsSilent(t *testing.T) {
	ctx := context.Background()
	store := newFakeUserStore()
	svc, mailer := newTestService(t, store, 5)

	require.NoError(t, svc.ForgotPassword(ctx, "nobody@example.edu"))
	assert.Zero(t, mailer.resetSent)
}

func TestForgotPasswordSetsCode(t *testing.T) {
	ctx := context.Background()
	store := newFakeUserStore(activeUser(t, "u1"))
	svc, mailer := newTestService(t, store, 5)

	require.NoError(t, svc.ForgotPassword(ctx, "u1@example.edu"))
	assert.Equal(t, 1, mailer.resetSent)

	u := store.byID["u1"]
	require.NotNil(t, u.PasswordResetCode)
	assert.Len(t, *u.PasswordResetCode, 6)
}

func TestResetPasswordWrongEmailForCode(t *testing.T) {
	ctx := context.Background()
	u := activeUser(t, "u1")
	code := "654321"
	expiry := time.Now().Add(10 * time.Minute)
	u.PasswordResetCode = &code
	u.PasswordResetCodeExpiry = &expiry

	store := newFakeUserStore(u)
	svc, _ := newTestService(t, store, 5)

	err := svc.ResetPassword(ctx, ResetPasswordRequest{
		Email:       "other@example.edu",
		Code:        code,
		NewPassword: "an entirely new secret",
	})
	require.Error(t, err)
	assert.Equal(t, 0, store.byID["u1"].TokenVersion)
}

func TestChangePasswordRevokesTokens(t *testing.T) {
	ctx := context.Background()
	store := newFakeUserStore(activeUser(t, "u1"))
	svc, _ := newTestService(t, store, 5)

	err := svc.ChangePassword(ctx, "u1", ChangePasswordRequest{
		CurrentPassword: testPassword,
		NewPassword:     "an entirely new secret",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, store.byID["u1"].TokenVersion)
}

func TestChangePasswordWrongCurrent(t *testing.T) {
	ctx := context.Background()
	store := newFakeUserStore(activeUser(t, "u1"))
	svc, _ := newTestService(t, store, 5)

	err := svc.ChangePassword(ctx, "u1", ChangePasswordRequest{
		CurrentPassword: "wrong",
		NewPassword:     "an entirely new secret",
	})
	require.Error(t, err)
	assert.Equal(t, 0, store.byID["u1"].TokenVersion)
}
