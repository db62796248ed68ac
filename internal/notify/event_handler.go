package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/fleetops/fleet-manager/pkg/eventbus"
	"github.com/fleetops/fleet-manager/pkg/logger"
)

// EventHandler processes intervention events from the bus and triggers emails.
type EventHandler struct {
	service *Service
}

// NewEventHandler creates an event handler backed by the notification service.
func NewEventHandler(service *Service) *EventHandler {
	return &EventHandler{service: service}
}

// RegisterSubscriptions subscribes to intervention lifecycle events on the bus.
func (h *EventHandler) RegisterSubscriptions(ctx context.Context, bus *eventbus.Bus) error {
	if err := bus.Subscribe(ctx, "interventions.>", "notifier-interventions", h.HandleInterventionEvent); err != nil {
		return fmt.Errorf("subscribe to intervention events: %w", err)
	}
	logger.Info("notifier: subscribed to intervention lifecycle events")
	return nil
}

// HandleInterventionEvent dispatches on the event type. Only the rdv_planned
// event produces an email; the rest of the lifecycle is visible in the app
// itself and does not warrant interrupting anyone.
func (h *EventHandler) HandleInterventionEvent(ctx context.Context, event *eventbus.Event) error {
	switch event.Type {
	case eventbus.SubjectInterventionRdvPlanned:
		return h.onRdvPlanned(ctx, event)
	case eventbus.SubjectInterventionCreated,
		eventbus.SubjectInterventionApproved,
		eventbus.SubjectInterventionRejected,
		eventbus.SubjectInterventionCompleted:
		return nil
	default:
		logger.Debug("notifier: ignoring unknown event type", zap.String("type", event.Type))
		return nil
	}
}

func (h *EventHandler) onRdvPlanned(ctx context.Context, event *eventbus.Event) error {
	var data eventbus.InterventionEventData
	if err := json.Unmarshal(event.Data, &data); err != nil {
		return fmt.Errorf("unmarshal rdv planned: %w", err)
	}

	if err := h.service.SendRdvPlanned(ctx, &data); err != nil {
		logger.Warn("failed to send rdv planned notification",
			zap.String("intervention_id", data.InterventionID),
			zap.Error(err),
		)
		return err
	}
	return nil
}
