package intervention

import (
	"context"

	"github.com/google/uuid"

	"github.com/fleetops/fleet-manager/internal/fleet"
	"github.com/fleetops/fleet-manager/pkg/eventbus"
)

// RepositoryInterface defines the contract for intervention repository operations
type RepositoryInterface interface {
	CreateIntervention(ctx context.Context, i *Intervention) error
	GetInterventionByID(ctx context.Context, id uuid.UUID) (*Intervention, error)
	ListInterventions(ctx context.Context, filter *ListFilter) ([]Intervention, error)
	UpdateInterventionState(ctx context.Context, i *Intervention) error
	GetInterventionStats(ctx context.Context) (*InterventionStats, error)
}

// VehicleResolver matches a hand-typed plate against the registered fleet.
// Satisfied by the fleet repository.
type VehicleResolver interface {
	GetVehicleByImmat(ctx context.Context, immat string) (*fleet.Vehicle, error)
}

// Publisher sends workflow events to the bus. Satisfied by eventbus.Bus.
type Publisher interface {
	Publish(ctx context.Context, subject string, event *eventbus.Event) error
}
