package session

// Role is the server-issued access tier of an identity. The three known
// roles form a total order used for every authorization comparison:
// employee < admin < super_admin.
type Role string

const (
	// RoleEmployee is the lowest tier and the fail-safe fallback.
	RoleEmployee Role = "employee"
	// RoleAdmin may manage employees, attendance, and camera feeds.
	RoleAdmin Role = "admin"
	// RoleSuperAdmin may additionally control the detection pipeline.
	RoleSuperAdmin Role = "super_admin"

	// RoleNone marks the absence of a role requirement.
	RoleNone Role = ""
)

const (
	rankEmployee   = 1
	rankAdmin      = 2
	rankSuperAdmin = 3
)

// Rank returns the position of r in the role order. Unrecognized or empty
// roles rank as employee: the server owns the role vocabulary, and an
// unknown value must degrade to the lowest privilege rather than fail.
func (r Role) Rank() int {
	switch r {
	case RoleSuperAdmin:
		return rankSuperAdmin
	case RoleAdmin:
		return rankAdmin
	default:
		return rankEmployee
	}
}

// Known reports whether r is one of the three server-issued roles.
func (r Role) Known() bool {
	switch r {
	case RoleEmployee, RoleAdmin, RoleSuperAdmin:
		return true
	default:
		return false
	}
}

// Identity is the authenticated user's profile as reported by the remote
// API. JSON field names match the wire format of /auth/me.
type Identity struct {
	ID         int64  `json:"id"`
	Username   string `json:"username"`
	Role       Role   `json:"role"`
	EmployeeID string `json:"employee_id,omitempty"`
	Active     bool   `json:"is_active"`
}

// Snapshot is a read-only projection of the current session handed to
// consumers. Authenticated is true iff both the identity and the credential
// are present; any partial state is treated as logged out.
type Snapshot struct {
	Identity      Identity
	Credential    string
	Authenticated bool
}
