package fleet

import (
	"context"

	"github.com/google/uuid"

	"github.com/fleetops/fleet-manager/pkg/eventbus"
)

// RepositoryInterface defines the contract for fleet repository operations
type RepositoryInterface interface {
	CreateVehicle(ctx context.Context, v *Vehicle) error
	GetVehicleByID(ctx context.Context, id uuid.UUID) (*Vehicle, error)
	GetVehicleByImmat(ctx context.Context, immat string) (*Vehicle, error)
	ListVehicles(ctx context.Context) ([]Vehicle, error)
	UpdateVehicle(ctx context.Context, v *Vehicle) error
	CountByStatus(ctx context.Context) (map[VehicleStatus]int, error)
}

// Publisher sends fleet events to the bus. Satisfied by eventbus.Bus.
type Publisher interface {
	Publish(ctx context.Context, subject string, event *eventbus.Event) error
}
