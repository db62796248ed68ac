package workflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPayload() *PlanRdvPayload {
	return &PlanRdvPayload{Date: "2026-01-30", Time: "09:00", Location: "Garage X"}
}

// startingState returns a state sitting in the "from" status of the action so
// that only payload and permission checks can fail.
func startingState(action Action) State {
	switch action {
	case ActionApprove, ActionReject:
		return State{Status: StatusPending}
	case ActionPlanRdv:
		return State{Status: StatusApprovedWaitingRdv}
	case ActionComplete:
		return State{Status: StatusPlanned}
	}
	return State{}
}

func TestPermissionMatrix(t *testing.T) {
	granted := map[Role]map[Action]bool{
		RoleDirecteur:  {ActionApprove: true, ActionReject: true},
		RoleAgentParc:  {ActionPlanRdv: true, ActionComplete: true},
		RoleExploitant: {},
	}

	for _, role := range Roles {
		for _, action := range Actions {
			_, err := AttemptTransition(startingState(action), action, role, validPayload())
			if granted[role][action] {
				assert.NoError(t, err, "role %s action %s", role, action)
			} else {
				var permErr *PermissionError
				require.ErrorAs(t, err, &permErr, "role %s action %s", role, action)
				assert.Equal(t, role, permErr.Role)
				assert.Equal(t, action, permErr.Action)
			}
		}
	}
}

func TestStateCompatibility(t *testing.T) {
	// Every (status, action) pair where the status is not the action's "from"
	// state must fail with InvalidStateError, using a role that holds the
	// capability so the permission check cannot mask the state check.
	roleFor := map[Action]Role{
		ActionApprove:  RoleDirecteur,
		ActionReject:   RoleDirecteur,
		ActionPlanRdv:  RoleAgentParc,
		ActionComplete: RoleAgentParc,
	}
	statuses := []Status{StatusPending, StatusApprovedWaitingRdv, StatusPlanned, StatusCompleted, StatusRejected}

	for _, action := range Actions {
		for _, status := range statuses {
			if status == startingState(action).Status {
				continue
			}
			_, err := AttemptTransition(State{Status: status}, action, roleFor[action], validPayload())
			var stateErr *InvalidStateError
			require.ErrorAs(t, err, &stateErr, "action %s from %s", action, status)
			assert.Equal(t, status, stateErr.Status)
		}
	}
}

func TestPlanRdvPayloadValidation(t *testing.T) {
	tests := []struct {
		name    string
		payload *PlanRdvPayload
	}{
		{"nil payload", nil},
		{"missing date", &PlanRdvPayload{Time: "09:00", Location: "Garage X"}},
		{"missing time", &PlanRdvPayload{Date: "2026-01-30", Location: "Garage X"}},
		{"missing location", &PlanRdvPayload{Date: "2026-01-30", Time: "09:00"}},
		{"blank fields", &PlanRdvPayload{Date: "  ", Time: " ", Location: " "}},
		{"malformed date", &PlanRdvPayload{Date: "30/01/2026", Time: "09:00", Location: "Garage X"}},
		{"malformed time", &PlanRdvPayload{Date: "2026-01-30", Time: "9am", Location: "Garage X"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Payload shape is checked before permissions, so even a role
			// without CanPlanRdv must see the ValidationError.
			for _, role := range Roles {
				_, err := AttemptTransition(State{Status: StatusApprovedWaitingRdv}, ActionPlanRdv, role, tt.payload)
				var valErr *ValidationError
				assert.ErrorAs(t, err, &valErr, "role %s", role)
			}
		})
	}
}

func TestApproveByDirecteur(t *testing.T) {
	next, err := AttemptTransition(State{Status: StatusPending}, ActionApprove, RoleDirecteur, nil)
	require.NoError(t, err)
	assert.Equal(t, StatusApprovedWaitingRdv, next.Status)
	assert.Nil(t, next.RdvDate)
	assert.Nil(t, next.RdvLieu)
}

func TestRejectIsTerminal(t *testing.T) {
	next, err := AttemptTransition(State{Status: StatusPending}, ActionReject, RoleDirecteur, nil)
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, next.Status)

	// No action leads out of rejected.
	for _, action := range Actions {
		for _, role := range Roles {
			_, err := AttemptTransition(next, action, role, validPayload())
			assert.Error(t, err)
		}
	}
}

func TestPlanRdvSetsAppointment(t *testing.T) {
	next, err := AttemptTransition(
		State{Status: StatusApprovedWaitingRdv},
		ActionPlanRdv, RoleAgentParc,
		&PlanRdvPayload{Date: "2026-01-30", Time: "09:00", Location: "Garage X"},
	)
	require.NoError(t, err)
	assert.Equal(t, StatusPlanned, next.Status)
	require.NotNil(t, next.RdvDate)
	assert.Equal(t, time.Date(2026, 1, 30, 9, 0, 0, 0, time.UTC), *next.RdvDate)
	require.NotNil(t, next.RdvLieu)
	assert.Equal(t, "Garage X", *next.RdvLieu)
}

func TestCompleteKeepsAppointment(t *testing.T) {
	rdv := time.Date(2026, 1, 30, 9, 0, 0, 0, time.UTC)
	lieu := "Garage X"
	next, err := AttemptTransition(State{Status: StatusPlanned, RdvDate: &rdv, RdvLieu: &lieu}, ActionComplete, RoleAgentParc, nil)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, next.Status)
	assert.Equal(t, &rdv, next.RdvDate)
	assert.Equal(t, &lieu, next.RdvLieu)
}

func TestDirecteurCannotComplete(t *testing.T) {
	_, err := AttemptTransition(State{Status: StatusPlanned}, ActionComplete, RoleDirecteur, nil)
	var permErr *PermissionError
	require.ErrorAs(t, err, &permErr)
}

func TestTransitionIsReferentiallyTransparent(t *testing.T) {
	state := State{Status: StatusApprovedWaitingRdv}
	payload := validPayload()

	first, err1 := AttemptTransition(state, ActionPlanRdv, RoleAgentParc, payload)
	second, err2 := AttemptTransition(state, ActionPlanRdv, RoleAgentParc, payload)
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, *first.RdvDate, *second.RdvDate)
	assert.Equal(t, *first.RdvLieu, *second.RdvLieu)

	// The input state is never mutated.
	assert.Equal(t, StatusApprovedWaitingRdv, state.Status)
	assert.Nil(t, state.RdvDate)
}

func TestUnknownActionFailsValidation(t *testing.T) {
	_, err := AttemptTransition(State{Status: StatusPending}, Action("escalate"), RoleDirecteur, nil)
	var valErr *ValidationError
	assert.ErrorAs(t, err, &valErr)
}

func TestValidStatus(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusApprovedWaitingRdv, StatusPlanned, StatusCompleted, StatusRejected} {
		assert.True(t, ValidStatus(s))
	}
	assert.False(t, ValidStatus(Status("archived")))
	assert.False(t, ValidStatus(Status("")))
}

func TestErrorMessagesAreHumanReadable(t *testing.T) {
	_, err := AttemptTransition(State{Status: StatusPending}, ActionComplete, RoleAgentParc, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pending")

	_, err = AttemptTransition(State{Status: StatusPlanned}, ActionComplete, RoleExploitant, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exploitant")
}
