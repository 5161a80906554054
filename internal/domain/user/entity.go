package user

type Role string

const (
	RoleOwner    Role = "owner"    // Company owner - full access
	RoleManager  Role = "manager"  // Can review and correct attendance
	RoleEmployee Role = "employee" // Regular employee
	RolePending  Role = "pending"  // Still in onboarding
)

// CanReview checks if the role may open attendance review sessions
func (r Role) CanReview() bool {
	return r == RoleManager || r == RoleOwner
}
