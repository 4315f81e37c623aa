// AngelaMos | 2026
// entity_test.go

package user

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanAuthenticate(t *testing.T) {
	tests := []struct {
		name string
		user User
		want bool
	}{
		{
			"active verified user",
			User{IsActive: true, IsVerified: true, AccountStatus: StatusActive},
			true,
		},
		{
			"unverified user",
			User{IsActive: true, IsVerified: false, AccountStatus: StatusPendingVerification},
			false,
		},
		{
			"suspended user",
			User{IsActive: true, IsVerified: true, AccountStatus: StatusSuspended},
			false,
		},
		{
			"deactivated user",
			User{IsActive: false, IsVerified: true, AccountStatus: StatusActive},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.user.CanAuthenticate())
		})
	}
}

func TestVerificationTokenValid(t *testing.T) {
	now := time.Now()
	token := "tok"
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	assert.True(t, (&User{
		VerificationToken:       &token,
		VerificationTokenExpiry: &future,
	}).VerificationTokenValid(now))

	assert.False(t, (&User{
		VerificationToken:       &token,
		VerificationTokenExpiry: &past,
	}).VerificationTokenValid(now))

	assert.False(t, (&User{}).VerificationTokenValid(now))
}

func TestListUsersParamsNormalize(t *testing.T) {
	p := ListUsersParams{Page: 0, PageSize: 500}
	p.Normalize()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 100, p.PageSize)
	assert.Equal(t, 0, p.Offset())

	p = ListUsersParams{Page: 3, PageSize: 10}
	p.Normalize()
	assert.Equal(t, 20, p.Offset())
}
