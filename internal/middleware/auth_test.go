// AngelaMos | 2026
// auth_test.go

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelamos/researchhub/internal/core"
	"github.com/angelamos/researchhub/internal/policy"
)

type stubAuthenticator struct {
	user *AuthUser
	err  error
}

func (s *stubAuthenticator) AuthenticateRequest(
	_ context.Context,
	_ string,
) (*AuthUser, error) {
	return s.user, s.err
}

func TestExtractToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"bearer token", "Bearer abc.def.ghi", "abc.def.ghi"},
		{"missing header", "", ""},
		{"wrong scheme", "Basic dXNlcjpwYXNz", ""},
		{"bearer only", "Bearer", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			assert.Equal(t, tt.want, ExtractToken(r))
		})
	}
}

func TestAuthenticatorPutsUserInContext(t *testing.T) {
	authn := &stubAuthenticator{
		user: &AuthUser{ID: "u1", Role: policy.RoleContributor},
	}

	var gotID string
	handler := Authenticator(authn)(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			gotID = GetUserID(r.Context())
		},
	))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer some-token")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", gotID)
}

func TestAuthenticatorMissingToken(t *testing.T) {
	authn := &stubAuthenticator{user: &AuthUser{ID: "u1"}}

	called := false
	handler := Authenticator(authn)(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) { called = true },
	))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, called)
}

func TestAuthenticatorRevokedToken(t *testing.T) {
	authn := &stubAuthenticator{err: core.TokenRevokedError()}

	handler := Authenticator(authn)(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler should not run")
		},
	))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer stale-token")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireCapability(t *testing.T) {
	tests := []struct {
		name     string
		role     string
		cap      policy.Capability
		wantCode int
	}{
		{"contributor reviews", policy.RoleContributor, policy.CapReviewSubmissions, http.StatusOK},
		{"student blocked from review", policy.RoleStudent, policy.CapReviewSubmissions, http.StatusForbidden},
		{"admin manages users", policy.RoleAdmin, policy.CapManageUsers, http.StatusOK},
		{"contributor blocked from users", policy.RoleContributor, policy.CapManageUsers, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := RequireCapability(tt.cap)(http.HandlerFunc(
				func(w http.ResponseWriter, r *http.Request) {},
			))

			r := httptest.NewRequest(http.MethodGet, "/", nil)
			ctx := WithUser(r.Context(), &AuthUser{ID: "u1", Role: tt.role})
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, r.WithContext(ctx))

			require.Equal(t, tt.wantCode, w.Code)
		})
	}
}

func TestRequireCapabilityWithoutUser(t *testing.T) {
	handler := RequireCapability(policy.CapReviewSubmissions)(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {},
	))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
