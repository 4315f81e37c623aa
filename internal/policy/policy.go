// AngelaMos | 2026
// policy.go

// Package policy maps roles to explicit capabilities. Authorization checks go
// through Allows instead of comparing role strings at call sites.
package policy

const (
	RoleStudent     = "student"
	RoleContributor = "contributor"
	RoleAdmin       = "admin"
)

type Capability string

const (
	CapSubmitResearch    Capability = "submit_research"
	CapReviewSubmissions Capability = "review_submissions"
	CapManageTags        Capability = "manage_tags"
	CapManageUsers       Capability = "manage_users"
	CapViewAdminStats    Capability = "view_admin_stats"
)

var rolePolicy = map[string]map[Capability]struct{}{
	RoleStudent: capSet(
		CapSubmitResearch,
	),
	RoleContributor: capSet(
		CapSubmitResearch,
		CapReviewSubmissions,
		CapManageTags,
	),
	RoleAdmin: capSet(
		CapSubmitResearch,
		CapReviewSubmissions,
		CapManageTags,
		CapManageUsers,
		CapViewAdminStats,
	),
}

func capSet(caps ...Capability) map[Capability]struct{} {
	set := make(map[Capability]struct{}, len(caps))
	for _, c := range caps {
		set[c] = struct{}{}
	}
	return set
}

// Allows reports whether the role grants the capability. Unknown roles grant
// nothing.
func Allows(role string, cap Capability) bool {
	caps, ok := rolePolicy[role]
	if !ok {
		return false
	}
	_, ok = caps[cap]
	return ok
}

func ValidRole(role string) bool {
	_, ok := rolePolicy[role]
	return ok
}

// Roles returns all known roles. Useful for validation messages.
func Roles() []string {
	return []string{RoleStudent, RoleContributor, RoleAdmin}
}
