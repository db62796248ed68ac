package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPermissionsTable(t *testing.T) {
	tests := []struct {
		role Role
		want Capabilities
	}{
		{RoleDirecteur, Capabilities{CanValidateDevis: true, CanEditVehicle: true}},
		{RoleAgentParc, Capabilities{CanPlanRdv: true, CanCompleteIntervention: true, CanEditVehicle: true}},
		{RoleExploitant, Capabilities{}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, PermissionsFor(tt.role), "role %s", tt.role)
	}
}

func TestPermissionsForCoversEveryRole(t *testing.T) {
	// A role with no capability at all is only acceptable for exploitant;
	// this catches a role added to Roles but forgotten in PermissionsFor.
	for _, role := range Roles {
		if role == RoleExploitant {
			continue
		}
		assert.NotEqual(t, Capabilities{}, PermissionsFor(role), "role %s has no capabilities", role)
	}
}

func TestParseRole(t *testing.T) {
	for _, role := range Roles {
		parsed, err := ParseRole(string(role))
		require.NoError(t, err)
		assert.Equal(t, role, parsed)
	}

	_, err := ParseRole("admin")
	assert.Error(t, err)
	_, err = ParseRole("")
	assert.Error(t, err)
}

func TestUnknownRoleHasNoCapabilities(t *testing.T) {
	assert.Equal(t, Capabilities{}, PermissionsFor(Role("intern")))
}
