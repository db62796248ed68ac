package fleet

import (
	"time"

	"github.com/google/uuid"

	"github.com/fleetops/fleet-manager/internal/deadline"
)

// VehicleStatus represents the operational status of a vehicle
type VehicleStatus string

const (
	VehicleStatusActif       VehicleStatus = "actif"
	VehicleStatusMaintenance VehicleStatus = "maintenance"
	VehicleStatusGarage      VehicleStatus = "garage"
)

// ValidVehicleStatus reports whether s belongs to the closed status set
func ValidVehicleStatus(s VehicleStatus) bool {
	switch s {
	case VehicleStatusActif, VehicleStatusMaintenance, VehicleStatusGarage:
		return true
	}
	return false
}

// Vehicle represents a fleet vehicle with its regulatory inspection dates
type Vehicle struct {
	ID     uuid.UUID            `json:"id" db:"id"`
	Immat  string               `json:"immat" db:"immat"`
	Marque string               `json:"marque" db:"marque"`
	Type   deadline.VehicleType `json:"type" db:"type"`
	Status VehicleStatus        `json:"status" db:"status"`

	// Inspection deadlines. Absent means never recorded.
	DateCT    *time.Time `json:"date_ct,omitempty" db:"date_ct"`
	DateTachy *time.Time `json:"date_tachy,omitempty" db:"date_tachy"`
	DateATP   *time.Time `json:"date_atp,omitempty" db:"date_atp"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ControlReport classifies each control required for the vehicle type.
// Controls the type does not require are left nil.
type ControlReport struct {
	CT    *deadline.Classification `json:"ct,omitempty"`
	Tachy *deadline.Classification `json:"tachy,omitempty"`
	ATP   *deadline.Classification `json:"atp,omitempty"`
}

// VehicleView is a vehicle enriched with its deadline classifications
type VehicleView struct {
	Vehicle
	Controls ControlReport `json:"controls"`
	Critical bool          `json:"critical"`
}

// ========================================
// REQUEST/RESPONSE TYPES
// ========================================

// CreateVehicleRequest registers a new vehicle in the fleet
type CreateVehicleRequest struct {
	Immat     string     `json:"immat" binding:"required" validate:"required,immat"`
	Marque    string     `json:"marque" binding:"required" validate:"required,min=1,max=100"`
	Type      string     `json:"type" binding:"required" validate:"required,vehicle_type"`
	Status    string     `json:"status" validate:"omitempty,vehicle_status"`
	DateCT    *time.Time `json:"date_ct,omitempty"`
	DateTachy *time.Time `json:"date_tachy,omitempty"`
	DateATP   *time.Time `json:"date_atp,omitempty"`
}

// UpdateVehicleRequest updates vehicle details. Nil fields are left untouched.
type UpdateVehicleRequest struct {
	Marque    *string    `json:"marque,omitempty" validate:"omitempty,min=1,max=100"`
	Type      *string    `json:"type,omitempty" validate:"omitempty,vehicle_type"`
	Status    *string    `json:"status,omitempty" validate:"omitempty,vehicle_status"`
	DateCT    *time.Time `json:"date_ct,omitempty"`
	DateTachy *time.Time `json:"date_tachy,omitempty"`
	DateATP   *time.Time `json:"date_atp,omitempty"`
}

// VehicleListResponse returns a list of vehicle views
type VehicleListResponse struct {
	Vehicles []VehicleView `json:"vehicles"`
	Count    int           `json:"count"`
}

// FleetStats represents fleet-wide statistics. Bucket counts classify each
// vehicle by the most severe of its required controls.
type FleetStats struct {
	TotalVehicles       int `json:"total_vehicles"`
	ActiveVehicles      int `json:"active_vehicles"`
	MaintenanceVehicles int `json:"maintenance_vehicles"`
	GarageVehicles      int `json:"garage_vehicles"`
	CriticalVehicles    int `json:"critical_vehicles"`
	ExpiredVehicles     int `json:"expired_vehicles"`
	UrgentVehicles      int `json:"urgent_vehicles"`
	WarningVehicles     int `json:"warning_vehicles"`
}
