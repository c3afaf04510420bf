package rbac

// Role names. Keep these stable; they are part of auth/RBAC contracts.
const (
	RoleAgent      = "agent"
	RoleSupervisor = "supervisor"
	RoleAdmin      = "admin"
	RoleSystem     = "system" // queue workers, AMI listener, CLI triggers
)

func IsAdmin(role string) bool { return role == RoleAdmin }

func IsSystemRole(role string) bool { return role == RoleSystem }
