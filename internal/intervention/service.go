package intervention

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/fleetops/fleet-manager/internal/fleet"
	"github.com/fleetops/fleet-manager/internal/workflow"
	"github.com/fleetops/fleet-manager/pkg/common"
	"github.com/fleetops/fleet-manager/pkg/eventbus"
	"github.com/fleetops/fleet-manager/pkg/logger"
	"github.com/fleetops/fleet-manager/pkg/validation"
)

const eventSource = "fleet-api"

// Service handles intervention business logic
type Service struct {
	repo     RepositoryInterface
	vehicles VehicleResolver
	bus      Publisher // optional, nil disables events
	now      func() time.Time
}

// NewService creates a new intervention service
func NewService(repo RepositoryInterface, vehicles VehicleResolver, bus Publisher) *Service {
	return &Service{
		repo:     repo,
		vehicles: vehicles,
		bus:      bus,
		now:      time.Now,
	}
}

// CreateIntervention opens a new maintenance request. The plate is matched
// against the registered fleet ignoring case; no match leaves the vehicle
// link empty rather than failing the request.
func (s *Service) CreateIntervention(ctx context.Context, req *CreateInterventionRequest) (*Intervention, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, common.NewBadRequestError(err.Error(), err)
	}

	var vehicleID *uuid.UUID
	if s.vehicles != nil {
		vehicle, err := s.vehicles.GetVehicleByImmat(ctx, req.Immat)
		switch {
		case err == nil:
			vehicleID = &vehicle.ID
		case errors.Is(err, pgx.ErrNoRows):
			logger.InfoContext(ctx, "intervention references unregistered plate",
				zap.String("immat", req.Immat))
		default:
			return nil, err
		}
	}

	now := s.now()
	intervention := &Intervention{
		ID:           uuid.New(),
		VehicleID:    vehicleID,
		Vehicule:     req.Vehicule,
		Immat:        fleet.NormalizeImmat(req.Immat),
		Description:  req.Description,
		Garage:       req.Garage,
		MontantDevis: req.MontantDevis,
		Status:       workflow.StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.CreateIntervention(ctx, intervention); err != nil {
		return nil, fmt.Errorf("create intervention: %w", err)
	}

	s.publish(ctx, eventbus.SubjectInterventionCreated, intervention, "")

	return intervention, nil
}

// GetIntervention returns an intervention by ID
func (s *Service) GetIntervention(ctx context.Context, id uuid.UUID) (*Intervention, error) {
	intervention, err := s.repo.GetInterventionByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewNotFoundError("intervention not found", nil)
		}
		return nil, err
	}
	return intervention, nil
}

// ListInterventions returns interventions matching the filter
func (s *Service) ListInterventions(ctx context.Context, filter *ListFilter) (*InterventionListResponse, error) {
	interventions, err := s.repo.ListInterventions(ctx, filter)
	if err != nil {
		return nil, err
	}
	if interventions == nil {
		interventions = []Intervention{}
	}
	return &InterventionListResponse{
		Interventions: interventions,
		Count:         len(interventions),
	}, nil
}

// Transition applies a workflow action to an intervention on behalf of a
// role. Rule failures come back as typed HTTP errors: malformed payloads
// are 400, missing permissions 403, wrong source states 409.
func (s *Service) Transition(ctx context.Context, id uuid.UUID, action workflow.Action, role workflow.Role, payload *workflow.PlanRdvPayload) (*Intervention, error) {
	intervention, err := s.repo.GetInterventionByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewNotFoundError("intervention not found", nil)
		}
		return nil, err
	}

	next, err := workflow.AttemptTransition(intervention.State(), action, role, payload)
	if err != nil {
		return nil, mapWorkflowError(err)
	}

	intervention.Status = next.Status
	intervention.RdvDate = next.RdvDate
	intervention.RdvLieu = next.RdvLieu
	intervention.UpdatedAt = s.now()

	if err := s.repo.UpdateInterventionState(ctx, intervention); err != nil {
		return nil, fmt.Errorf("persist transition %s: %w", action, err)
	}

	s.publish(ctx, subjectFor(action), intervention, string(role))

	return intervention, nil
}

// GetInterventionStats counts interventions per workflow status
func (s *Service) GetInterventionStats(ctx context.Context) (*InterventionStats, error) {
	return s.repo.GetInterventionStats(ctx)
}

func mapWorkflowError(err error) error {
	var validationErr *workflow.ValidationError
	var permissionErr *workflow.PermissionError
	var stateErr *workflow.InvalidStateError

	switch {
	case errors.As(err, &validationErr):
		return common.NewBadRequestError(validationErr.Error(), err)
	case errors.As(err, &permissionErr):
		return common.NewForbiddenError(permissionErr.Error())
	case errors.As(err, &stateErr):
		return common.NewConflictError(stateErr.Error())
	default:
		return err
	}
}

func subjectFor(action workflow.Action) string {
	switch action {
	case workflow.ActionApprove:
		return eventbus.SubjectInterventionApproved
	case workflow.ActionReject:
		return eventbus.SubjectInterventionRejected
	case workflow.ActionPlanRdv:
		return eventbus.SubjectInterventionRdvPlanned
	case workflow.ActionComplete:
		return eventbus.SubjectInterventionCompleted
	default:
		return ""
	}
}

// publish sends a workflow event. Delivery is best effort: a bus outage
// must not fail the request that already committed.
func (s *Service) publish(ctx context.Context, subject string, i *Intervention, actorRole string) {
	if s.bus == nil || subject == "" {
		return
	}

	data := eventbus.InterventionEventData{
		InterventionID: i.ID.String(),
		VehicleImmat:   i.Immat,
		VehicleLabel:   i.Vehicule,
		Description:    i.Description,
		Garage:         i.Garage,
		MontantDevis:   i.MontantDevis,
		Status:         string(i.Status),
		RdvDate:        i.RdvDate,
		ActorRole:      actorRole,
	}
	if i.RdvLieu != nil {
		data.RdvLieu = *i.RdvLieu
	}

	event, err := eventbus.NewEvent(subject, eventSource, data)
	if err != nil {
		logger.WarnContext(ctx, "failed to build intervention event",
			zap.String("subject", subject), zap.Error(err))
		return
	}

	if err := s.bus.Publish(ctx, subject, event); err != nil {
		logger.WarnContext(ctx, "failed to publish intervention event",
			zap.String("subject", subject),
			zap.String("intervention_id", i.ID.String()),
			zap.Error(err))
	}
}
