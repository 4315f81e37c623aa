// AngelaMos | 2026
// jwt_test.go

package auth

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelamos/researchhub/internal/config"
	"github.com/angelamos/researchhub/internal/core"
)

func newTestJWTManager(t *testing.T) *JWTManager {
	t.Helper()

	dir := t.TempDir()
	privatePath := filepath.Join(dir, "private.pem")
	publicPath := filepath.Join(dir, "public.pem")

	require.NoError(t, GenerateKeyPair(privatePath, publicPath))

	manager, err := NewJWTManager(config.JWTConfig{
		PrivateKeyPath:    privatePath,
		PublicKeyPath:     publicPath,
		Issuer:            "researchhub-test",
		Audience:          "researchhub-api",
		AccessTokenExpire: 15 * time.Minute,
	})
	require.NoError(t, err)

	return manager
}

func TestCreateAndVerifyAccessToken(t *testing.T) {
	manager := newTestJWTManager(t)

	in := Claims{
		UserID:       "user-123",
		Role:         "contributor",
		TokenVersion: 4,
	}

	token, err := manager.CreateAccessToken(in, 0)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	out, err := manager.VerifyAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, in.UserID, out.UserID)
	assert.Equal(t, in.Role, out.Role)
	assert.Equal(t, in.TokenVersion, out.TokenVersion)
}

func TestVerifyAccessTokenIsRepeatable(t *testing.T) {
	manager := newTestJWTManager(t)

	token, err := manager.CreateAccessToken(Claims{
		UserID:       "user-123",
		Role:         "student",
		TokenVersion: 0,
	}, 0)
	require.NoError(t, err)

	first, err := manager.VerifyAccessToken(token)
	require.NoError(t, err)

	second, err := manager.VerifyAccessToken(token)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestVerifyExpiredToken(t *testing.T) {
	manager := newTestJWTManager(t)

	token, err := manager.CreateAccessToken(Claims{
		UserID:       "user-123",
		Role:         "student",
		TokenVersion: 0,
	}, time.Nanosecond)
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	_, err = manager.VerifyAccessToken(token)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrTokenExpired))
}

func TestVerifyTokenFromDifferentKey(t *testing.T) {
	manager := newTestJWTManager(t)
	other := newTestJWTManager(t)

	token, err := other.CreateAccessToken(Claims{
		UserID:       "user-123",
		Role:         "student",
		TokenVersion: 0,
	}, 0)
	require.NoError(t, err)

	_, err = manager.VerifyAccessToken(token)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrTokenInvalid))
}

func TestVerifyGarbageToken(t *testing.T) {
	manager := newTestJWTManager(t)

	_, err := manager.VerifyAccessToken("not.a.token")
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrTokenInvalid))
}
