package fleet

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/fleetops/fleet-manager/internal/deadline"
	"github.com/fleetops/fleet-manager/internal/workflow"
	"github.com/fleetops/fleet-manager/pkg/cache"
	"github.com/fleetops/fleet-manager/pkg/common"
	"github.com/fleetops/fleet-manager/pkg/eventbus"
	"github.com/fleetops/fleet-manager/pkg/logger"
	"github.com/fleetops/fleet-manager/pkg/validation"
)

// Service handles fleet business logic
type Service struct {
	repo  RepositoryInterface
	cache *cache.Manager // optional, nil disables caching
	bus   Publisher      // optional, nil disables events
	now   func() time.Time
}

// NewService creates a new fleet service
func NewService(repo RepositoryInterface, cacheManager *cache.Manager) *Service {
	return &Service{
		repo:  repo,
		cache: cacheManager,
		now:   time.Now,
	}
}

// SetEventPublisher enables vehicle event publishing
func (s *Service) SetEventPublisher(bus Publisher) {
	s.bus = bus
}

// report classifies every control required for the vehicle type
func (s *Service) report(v *Vehicle, asOf time.Time) ControlReport {
	controls := deadline.ControlsFor(v.Type)
	rep := ControlReport{}
	if controls.CT {
		c := deadline.Classify(v.DateCT, asOf)
		rep.CT = &c
	}
	if controls.Tachy {
		c := deadline.Classify(v.DateTachy, asOf)
		rep.Tachy = &c
	}
	if controls.ATP {
		c := deadline.Classify(v.DateATP, asOf)
		rep.ATP = &c
	}
	return rep
}

func (s *Service) view(v *Vehicle, asOf time.Time) VehicleView {
	return VehicleView{
		Vehicle:  *v,
		Controls: s.report(v, asOf),
		Critical: deadline.IsCritical(v.Type, v.DateCT, v.DateTachy, v.DateATP, asOf),
	}
}

// NormalizeImmat canonicalizes a registration plate for storage and matching
func NormalizeImmat(immat string) string {
	return strings.ToUpper(strings.TrimSpace(immat))
}

// CreateVehicle registers a new vehicle in the fleet
func (s *Service) CreateVehicle(ctx context.Context, req *CreateVehicleRequest) (*VehicleView, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, common.NewBadRequestError(err.Error(), err)
	}

	immat := NormalizeImmat(req.Immat)

	// Plates are unique across the fleet regardless of case
	if _, err := s.repo.GetVehicleByImmat(ctx, immat); err == nil {
		return nil, common.NewConflictError(fmt.Sprintf("vehicle %s already registered", immat))
	} else if err != pgx.ErrNoRows {
		return nil, err
	}

	status := VehicleStatus(req.Status)
	if req.Status == "" {
		status = VehicleStatusActif
	}

	now := s.now()
	vehicle := &Vehicle{
		ID:        uuid.New(),
		Immat:     immat,
		Marque:    req.Marque,
		Type:      deadline.VehicleType(req.Type),
		Status:    status,
		DateCT:    req.DateCT,
		DateTachy: req.DateTachy,
		DateATP:   req.DateATP,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.CreateVehicle(ctx, vehicle); err != nil {
		return nil, fmt.Errorf("create vehicle: %w", err)
	}

	s.invalidateFleetCaches(ctx)
	s.publishVehicleEvent(ctx, eventbus.SubjectVehicleCreated, vehicle)

	view := s.view(vehicle, now)
	return &view, nil
}

// GetVehicle returns a vehicle with its deadline classifications
func (s *Service) GetVehicle(ctx context.Context, id uuid.UUID) (*VehicleView, error) {
	vehicle, err := s.repo.GetVehicleByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, common.NewNotFoundError("vehicle not found", nil)
		}
		return nil, err
	}

	view := s.view(vehicle, s.now())
	return &view, nil
}

// GetVehicleByImmat returns a vehicle matched by plate, ignoring case
func (s *Service) GetVehicleByImmat(ctx context.Context, immat string) (*VehicleView, error) {
	vehicle, err := s.repo.GetVehicleByImmat(ctx, immat)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, common.NewNotFoundError("vehicle not found", nil)
		}
		return nil, err
	}

	view := s.view(vehicle, s.now())
	return &view, nil
}

// ListVehicles returns the fleet with per-vehicle control classifications.
// An empty status lists everything.
func (s *Service) ListVehicles(ctx context.Context, status VehicleStatus) (*VehicleListResponse, error) {
	if status != "" && !ValidVehicleStatus(status) {
		return nil, common.NewBadRequestError(fmt.Sprintf("unknown vehicle status %s", status), nil)
	}

	vehicles, err := s.repo.ListVehicles(ctx)
	if err != nil {
		return nil, err
	}

	asOf := s.now()
	views := make([]VehicleView, 0, len(vehicles))
	for i := range vehicles {
		if status != "" && vehicles[i].Status != status {
			continue
		}
		views = append(views, s.view(&vehicles[i], asOf))
	}

	return &VehicleListResponse{Vehicles: views, Count: len(views)}, nil
}

// CriticalVehicles returns vehicles with an expired or urgent required control.
// The view is cached briefly since it backs the alert dashboard.
func (s *Service) CriticalVehicles(ctx context.Context) ([]VehicleView, error) {
	if s.cache != nil {
		var cached []VehicleView
		err := s.cache.GetOrSet(ctx, cache.Keys.CriticalVehicles(), cache.TTL.Short(), &cached, func() (interface{}, error) {
			return s.criticalVehicles(ctx)
		})
		if err != nil {
			return nil, err
		}
		return cached, nil
	}
	return s.criticalVehicles(ctx)
}

func (s *Service) criticalVehicles(ctx context.Context) ([]VehicleView, error) {
	vehicles, err := s.repo.ListVehicles(ctx)
	if err != nil {
		return nil, err
	}

	asOf := s.now()
	critical := []VehicleView{}
	for i := range vehicles {
		view := s.view(&vehicles[i], asOf)
		if view.Critical {
			critical = append(critical, view)
		}
	}
	return critical, nil
}

// UpdateVehicle updates vehicle details. Only roles allowed to edit vehicles
// may call it.
func (s *Service) UpdateVehicle(ctx context.Context, id uuid.UUID, role workflow.Role, req *UpdateVehicleRequest) (*VehicleView, error) {
	if !workflow.PermissionsFor(role).CanEditVehicle {
		return nil, common.NewForbiddenError(fmt.Sprintf("role %s cannot edit vehicles", role))
	}

	if err := validation.ValidateStruct(req); err != nil {
		return nil, common.NewBadRequestError(err.Error(), err)
	}

	vehicle, err := s.repo.GetVehicleByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, common.NewNotFoundError("vehicle not found", nil)
		}
		return nil, err
	}

	if req.Marque != nil {
		vehicle.Marque = *req.Marque
	}
	if req.Type != nil {
		vehicle.Type = deadline.VehicleType(*req.Type)
	}
	if req.Status != nil {
		vehicle.Status = VehicleStatus(*req.Status)
	}
	if req.DateCT != nil {
		vehicle.DateCT = req.DateCT
	}
	if req.DateTachy != nil {
		vehicle.DateTachy = req.DateTachy
	}
	if req.DateATP != nil {
		vehicle.DateATP = req.DateATP
	}
	vehicle.UpdatedAt = s.now()

	if err := s.repo.UpdateVehicle(ctx, vehicle); err != nil {
		return nil, fmt.Errorf("update vehicle: %w", err)
	}

	s.invalidateFleetCaches(ctx)
	s.publishVehicleEvent(ctx, eventbus.SubjectVehicleUpdated, vehicle)

	view := s.view(vehicle, s.now())
	return &view, nil
}

// GetFleetStats returns fleet-wide statistics
func (s *Service) GetFleetStats(ctx context.Context) (*FleetStats, error) {
	if s.cache != nil {
		stats := &FleetStats{}
		err := s.cache.GetOrSet(ctx, cache.Keys.FleetStats(), cache.TTL.Short(), stats, func() (interface{}, error) {
			return s.fleetStats(ctx)
		})
		if err != nil {
			return nil, err
		}
		return stats, nil
	}
	return s.fleetStats(ctx)
}

func (s *Service) fleetStats(ctx context.Context) (*FleetStats, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	vehicles, err := s.repo.ListVehicles(ctx)
	if err != nil {
		return nil, err
	}

	stats := &FleetStats{
		ActiveVehicles:      counts[VehicleStatusActif],
		MaintenanceVehicles: counts[VehicleStatusMaintenance],
		GarageVehicles:      counts[VehicleStatusGarage],
	}
	for _, n := range counts {
		stats.TotalVehicles += n
	}

	asOf := s.now()
	for i := range vehicles {
		view := s.view(&vehicles[i], asOf)
		if view.Critical {
			stats.CriticalVehicles++
		}
		switch worstBucket(view.Controls) {
		case deadline.BucketExpired:
			stats.ExpiredVehicles++
		case deadline.BucketUrgent:
			stats.UrgentVehicles++
		case deadline.BucketWarning:
			stats.WarningVehicles++
		}
	}
	return stats, nil
}

// bucketSeverity orders buckets from healthy to overdue.
var bucketSeverity = map[deadline.Bucket]int{
	deadline.BucketUndefined: 0,
	deadline.BucketOK:        1,
	deadline.BucketWarning:   2,
	deadline.BucketUrgent:    3,
	deadline.BucketExpired:   4,
}

// worstBucket returns the most severe bucket among the required controls.
func worstBucket(rep ControlReport) deadline.Bucket {
	worst := deadline.BucketUndefined
	for _, c := range []*deadline.Classification{rep.CT, rep.Tachy, rep.ATP} {
		if c != nil && bucketSeverity[c.Bucket] > bucketSeverity[worst] {
			worst = c.Bucket
		}
	}
	return worst
}

func (s *Service) invalidateFleetCaches(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cache.Keys.CriticalVehicles(), cache.Keys.FleetStats()); err != nil {
		logger.Warn("failed to invalidate fleet caches", zap.Error(err))
	}
}

// publishVehicleEvent sends a fleet event, best effort.
func (s *Service) publishVehicleEvent(ctx context.Context, subject string, v *Vehicle) {
	if s.bus == nil {
		return
	}

	event, err := eventbus.NewEvent(subject, "fleet-api", eventbus.VehicleEventData{
		VehicleID: v.ID.String(),
		Immat:     v.Immat,
		Type:      string(v.Type),
	})
	if err != nil {
		logger.WarnContext(ctx, "failed to build vehicle event", zap.Error(err))
		return
	}

	if err := s.bus.Publish(ctx, subject, event); err != nil {
		logger.WarnContext(ctx, "failed to publish vehicle event",
			zap.String("subject", subject),
			zap.String("vehicle_id", v.ID.String()),
			zap.Error(err))
	}
}
