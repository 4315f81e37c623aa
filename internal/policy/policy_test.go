// AngelaMos | 2026
// policy_test.go

package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllows(t *testing.T) {
	tests := []struct {
		name string
		role string
		cap  Capability
		want bool
	}{
		{"student can submit", RoleStudent, CapSubmitResearch, true},
		{"student cannot review", RoleStudent, CapReviewSubmissions, false},
		{"student cannot manage tags", RoleStudent, CapManageTags, false},
		{"contributor can review", RoleContributor, CapReviewSubmissions, true},
		{"contributor can manage tags", RoleContributor, CapManageTags, true},
		{"contributor cannot manage users", RoleContributor, CapManageUsers, false},
		{"admin can manage users", RoleAdmin, CapManageUsers, true},
		{"admin can review", RoleAdmin, CapReviewSubmissions, true},
		{"admin can view stats", RoleAdmin, CapViewAdminStats, true},
		{"unknown role has nothing", "ghost", CapSubmitResearch, false},
		{"empty role has nothing", "", CapSubmitResearch, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Allows(tt.role, tt.cap))
		})
	}
}

func TestValidRole(t *testing.T) {
	for _, role := range Roles() {
		assert.True(t, ValidRole(role), role)
	}

	assert.False(t, ValidRole("superuser"))
	assert.False(t, ValidRole(""))
}
