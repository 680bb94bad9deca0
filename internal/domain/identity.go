package domain

import "github.com/google/uuid"

// Role enumerates the actor roles known to the system.
type Role string

const (
	RoleCitizen         Role = "CITIZEN"
	RolePharmacist      Role = "PHARMACIST"
	RoleRegulatoryAgent Role = "REGULATORY_AGENT"
	RoleHealthFacility  Role = "HEALTH_FACILITY"
	RoleAdmin           Role = "ADMIN"
)

// AllRoles lists every valid role, in registration order.
func AllRoles() []Role {
	return []Role{RoleCitizen, RolePharmacist, RoleRegulatoryAgent, RoleHealthFacility, RoleAdmin}
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleCitizen, RolePharmacist, RoleRegulatoryAgent, RoleHealthFacility, RoleAdmin:
		return true
	}
	return false
}

// Actor identifies who invokes an operation. The identity layer supplies it;
// domain services trust it and perform no credential verification themselves.
type Actor struct {
	ID   uuid.UUID
	Role Role
}
