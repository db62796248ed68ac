package workflow

import (
	"strings"
	"time"
)

// Status is the intervention workflow state.
type Status string

const (
	StatusPending            Status = "pending"
	StatusApprovedWaitingRdv Status = "approved_waiting_rdv"
	StatusPlanned            Status = "planned"
	StatusCompleted          Status = "completed"

	// StatusRejected is terminal and reachable only from pending. Rejected
	// records stay in storage for audit; listing endpoints filter them out
	// of active views.
	StatusRejected Status = "rejected"
)

// ValidStatus reports whether s is one of the defined workflow states.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusApprovedWaitingRdv, StatusPlanned, StatusCompleted, StatusRejected:
		return true
	}
	return false
}

// Action is a workflow transition request.
type Action string

const (
	ActionApprove  Action = "approve"
	ActionReject   Action = "reject"
	ActionPlanRdv  Action = "plan_rdv"
	ActionComplete Action = "complete"
)

// Actions lists every known action.
var Actions = []Action{ActionApprove, ActionReject, ActionPlanRdv, ActionComplete}

// PlanRdvPayload carries the appointment inputs for ActionPlanRdv.
// Date is "2006-01-02", Time is "15:04"; both are caller-supplied so the
// resulting timestamp never depends on a server clock.
type PlanRdvPayload struct {
	Date     string `json:"date"`
	Time     string `json:"time"`
	Location string `json:"location"`
}

// State is the workflow-relevant slice of an intervention record. Transitions
// are value transformations over it: the engine never touches storage.
type State struct {
	Status  Status
	RdvDate *time.Time
	RdvLieu *string
}

// transition rows: which action moves which state where, and which capability
// unlocks it.
var transitions = map[Action]struct {
	from    Status
	to      Status
	allowed func(Capabilities) bool
}{
	ActionApprove:  {StatusPending, StatusApprovedWaitingRdv, func(c Capabilities) bool { return c.CanValidateDevis }},
	ActionReject:   {StatusPending, StatusRejected, func(c Capabilities) bool { return c.CanValidateDevis }},
	ActionPlanRdv:  {StatusApprovedWaitingRdv, StatusPlanned, func(c Capabilities) bool { return c.CanPlanRdv }},
	ActionComplete: {StatusPlanned, StatusCompleted, func(c Capabilities) bool { return c.CanCompleteIntervention }},
}

// AttemptTransition validates and applies a workflow action to a state value.
//
// Checks run in a fixed order: payload shape, then permission, then
// current-state compatibility. On success it returns a copy of state with only
// the documented fields changed (status always; rdv_date/rdv_lieu only for
// plan_rdv). The input is never mutated and no I/O happens here; persisting
// the result is the caller's job.
func AttemptTransition(state State, action Action, role Role, payload *PlanRdvPayload) (State, error) {
	rule, ok := transitions[action]
	if !ok {
		return state, &ValidationError{Reason: "unknown action " + string(action)}
	}

	var rdv time.Time
	if action == ActionPlanRdv {
		parsed, err := parseRdvPayload(payload)
		if err != nil {
			return state, err
		}
		rdv = parsed
	}

	if !rule.allowed(PermissionsFor(role)) {
		return state, &PermissionError{Role: role, Action: action}
	}

	if state.Status != rule.from {
		return state, &InvalidStateError{Action: action, Status: state.Status}
	}

	next := state
	next.Status = rule.to
	if action == ActionPlanRdv {
		next.RdvDate = &rdv
		lieu := strings.TrimSpace(payload.Location)
		next.RdvLieu = &lieu
	}
	return next, nil
}

// parseRdvPayload checks the plan_rdv inputs and combines date and time into a
// single timestamp with a zero second component.
func parseRdvPayload(payload *PlanRdvPayload) (time.Time, error) {
	if payload == nil {
		return time.Time{}, &ValidationError{Reason: "date, time and location are required"}
	}

	date := strings.TrimSpace(payload.Date)
	hour := strings.TrimSpace(payload.Time)
	location := strings.TrimSpace(payload.Location)
	if date == "" || hour == "" || location == "" {
		return time.Time{}, &ValidationError{Reason: "date, time and location are required"}
	}

	rdv, err := time.ParseInLocation("2006-01-02 15:04", date+" "+hour, time.UTC)
	if err != nil {
		return time.Time{}, &ValidationError{Reason: "date must be YYYY-MM-DD and time HH:MM"}
	}
	return rdv, nil
}
