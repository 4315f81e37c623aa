// AngelaMos | 2026
// context.go

package middleware

import (
	"context"
)

type contextKey string

const (
	userKey      contextKey = "auth_user"
	requestIDKey contextKey = "request_id"
)

// AuthUser is the authenticated identity placed on the request context after
// the full authentication gate has passed.
type AuthUser struct {
	ID           string
	Name         string
	Email        string
	Role         string
	TokenVersion int
}

func WithUser(ctx context.Context, user *AuthUser) context.Context {
	return context.WithValue(ctx, userKey, user)
}

func GetUser(ctx context.Context) *AuthUser {
	if user, ok := ctx.Value(userKey).(*AuthUser); ok {
		return user
	}
	return nil
}

func GetUserID(ctx context.Context) string {
	if user := GetUser(ctx); user != nil {
		return user.ID
	}
	return ""
}

func GetUserRole(ctx context.Context) string {
	if user := GetUser(ctx); user != nil {
		return user.Role
	}
	return ""
}

func IsAuthenticated(ctx context.Context) bool {
	return GetUser(ctx) != nil
}

func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}
