package eventbus

import "time"

// Subjects for fleet maintenance events.
const (
	SubjectInterventionCreated    = "interventions.created"
	SubjectInterventionApproved   = "interventions.approved"
	SubjectInterventionRejected   = "interventions.rejected"
	SubjectInterventionRdvPlanned = "interventions.rdv_planned"
	SubjectInterventionCompleted  = "interventions.completed"

	SubjectVehicleCreated = "vehicles.created"
	SubjectVehicleUpdated = "vehicles.updated"
)

// InterventionEventData is the payload carried by intervention lifecycle
// events. Optional fields are only set for the transitions that produce them.
type InterventionEventData struct {
	InterventionID string     `json:"intervention_id"`
	VehicleImmat   string     `json:"vehicle_immat"`
	VehicleLabel   string     `json:"vehicle_label,omitempty"`
	Description    string     `json:"description,omitempty"`
	Garage         string     `json:"garage,omitempty"`
	MontantDevis   *float64   `json:"montant_devis,omitempty"`
	Status         string     `json:"status"`
	RdvDate        *time.Time `json:"rdv_date,omitempty"`
	RdvLieu        string     `json:"rdv_lieu,omitempty"`
	ActorRole      string     `json:"actor_role"`
}

// VehicleEventData is the payload carried by vehicle events.
type VehicleEventData struct {
	VehicleID string `json:"vehicle_id"`
	Immat     string `json:"immat"`
	Type      string `json:"type"`
}
