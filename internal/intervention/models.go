package intervention

import (
	"time"

	"github.com/google/uuid"

	"github.com/fleetops/fleet-manager/internal/workflow"
)

// Intervention represents a maintenance request moving through the
// validation workflow. The vehicle link is weak: requests reference a
// plate typed by hand, and VehicleID is only set when the plate matches
// a registered vehicle at creation time.
type Intervention struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	VehicleID *uuid.UUID `json:"vehicle_id,omitempty" db:"vehicle_id"`

	Vehicule     string   `json:"vehicule" db:"vehicule"`
	Immat        string   `json:"immat" db:"immat"`
	Description  string   `json:"description" db:"description"`
	Garage       string   `json:"garage" db:"garage"`
	MontantDevis *float64 `json:"montant_devis,omitempty" db:"montant_devis"`

	Status  workflow.Status `json:"status" db:"status"`
	RdvDate *time.Time      `json:"rdv_date,omitempty" db:"rdv_date"`
	RdvLieu *string         `json:"rdv_lieu,omitempty" db:"rdv_lieu"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// State projects the intervention onto its workflow state
func (i *Intervention) State() workflow.State {
	return workflow.State{
		Status:  i.Status,
		RdvDate: i.RdvDate,
		RdvLieu: i.RdvLieu,
	}
}

// ========================================
// REQUEST/RESPONSE TYPES
// ========================================

// CreateInterventionRequest opens a new maintenance request
type CreateInterventionRequest struct {
	Vehicule     string   `json:"vehicule" binding:"required" validate:"required,min=1,max=200"`
	Immat        string   `json:"immat" binding:"required" validate:"required,min=1,max=20"`
	Description  string   `json:"description" binding:"required" validate:"required,min=1,max=2000"`
	Garage       string   `json:"garage" validate:"omitempty,max=200"`
	MontantDevis *float64 `json:"montant_devis,omitempty" validate:"omitempty,gte=0"`
}

// PlanRdvRequest carries the appointment details for the plan_rdv action
type PlanRdvRequest struct {
	Date     string `json:"date" binding:"required"`
	Time     string `json:"time" binding:"required"`
	Location string `json:"location" binding:"required"`
}

// ListFilter narrows intervention listings
type ListFilter struct {
	Status          workflow.Status
	VehicleID       *uuid.UUID
	Immat           string
	IncludeRejected bool
}

// InterventionListResponse returns a list of interventions
type InterventionListResponse struct {
	Interventions []Intervention `json:"interventions"`
	Count         int            `json:"count"`
}

// InterventionStats counts interventions per workflow status
type InterventionStats struct {
	Total              int `json:"total"`
	Pending            int `json:"pending"`
	ApprovedWaitingRdv int `json:"approved_waiting_rdv"`
	Planned            int `json:"planned"`
	Completed          int `json:"completed"`
	Rejected           int `json:"rejected"`
}
