package user

type Role string

const (
	RoleAdmin         Role = "admin"          // Full access
	RoleManager       Role = "manager"        // Manages clients, projects and reports
	RoleProjectLeader Role = "project_leader" // Leads projects, reads team data
	RoleEmployee      Role = "employee"       // Tracks own time
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleProjectLeader, RoleEmployee:
		return true
	}
	return false
}

// IsManager checks if the role manages other people's data
func (r Role) IsManager() bool {
	return r == RoleAdmin || r == RoleManager
}

// Caller is the authenticated employee behind a request.
type Caller struct {
	EmployeeID string
	Email      string
	Role       Role
}
