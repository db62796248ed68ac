package workflow

import "fmt"

// Role identifies the acting user's role. The set is closed: adding a role
// means updating PermissionsFor, which the exhaustiveness test enforces.
type Role string

const (
	RoleDirecteur  Role = "directeur"
	RoleAgentParc  Role = "agent_parc"
	RoleExploitant Role = "exploitant"
)

// Roles lists every known role.
var Roles = []Role{RoleDirecteur, RoleAgentParc, RoleExploitant}

// Capabilities is the permission set attached to a role.
type Capabilities struct {
	CanValidateDevis        bool `json:"can_validate_devis"`
	CanPlanRdv              bool `json:"can_plan_rdv"`
	CanCompleteIntervention bool `json:"can_complete_intervention"`
	CanEditVehicle          bool `json:"can_edit_vehicle"`
}

// ParseRole converts an opaque role string from the session layer into a Role.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleDirecteur, RoleAgentParc, RoleExploitant:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// PermissionsFor returns the capability set for a role.
// The mapping is static; an unknown role carries no capabilities.
func PermissionsFor(role Role) Capabilities {
	switch role {
	case RoleDirecteur:
		return Capabilities{
			CanValidateDevis: true,
			CanEditVehicle:   true,
		}
	case RoleAgentParc:
		return Capabilities{
			CanPlanRdv:              true,
			CanCompleteIntervention: true,
			CanEditVehicle:          true,
		}
	case RoleExploitant:
		return Capabilities{}
	default:
		return Capabilities{}
	}
}
