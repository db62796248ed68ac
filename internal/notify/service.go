package notify

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/fleetops/fleet-manager/pkg/config"
	"github.com/fleetops/fleet-manager/pkg/eventbus"
	"github.com/fleetops/fleet-manager/pkg/logger"
)

// Service sends workflow notification emails to the fixed distribution list.
// Recipients are role mailboxes configured at deploy time; there is no per-user
// subscription model.
type Service struct {
	email      EmailSender
	recipients []string
}

// NewService creates a new notification service
func NewService(email EmailSender, notifyCfg *config.NotifyConfig) *Service {
	return &Service{
		email:      email,
		recipients: notifyCfg.Recipients(),
	}
}

// SendRdvPlanned emails the distribution list when a garage appointment
// has been scheduled.
func (s *Service) SendRdvPlanned(ctx context.Context, data *eventbus.InterventionEventData) error {
	subject := fmt.Sprintf("[Fleet] RDV Maintenance planifie - %s", data.VehicleImmat)
	body := renderRdvBody(data)

	if err := s.email.SendEmail(s.recipients, subject, body); err != nil {
		return fmt.Errorf("send rdv planned email: %w", err)
	}

	logger.InfoContext(ctx, "rdv notification sent",
		zap.String("intervention_id", data.InterventionID),
		zap.String("immat", data.VehicleImmat),
		zap.Int("recipients", len(s.recipients)),
	)
	return nil
}

func renderRdvBody(data *eventbus.InterventionEventData) string {
	var b strings.Builder

	b.WriteString("Un rendez-vous de maintenance a ete planifie.\n\n")
	fmt.Fprintf(&b, "Vehicule : %s\n", data.VehicleLabel)
	fmt.Fprintf(&b, "Immatriculation : %s\n", data.VehicleImmat)
	fmt.Fprintf(&b, "Intervention : %s\n", data.Description)
	if data.Garage != "" {
		fmt.Fprintf(&b, "Garage : %s\n", data.Garage)
	}
	if data.MontantDevis != nil {
		fmt.Fprintf(&b, "Montant du devis : %.2f EUR\n", *data.MontantDevis)
	}
	if data.RdvDate != nil {
		fmt.Fprintf(&b, "Date du RDV : %s\n", data.RdvDate.Format("02/01/2006 15:04"))
	}
	if data.RdvLieu != "" {
		fmt.Fprintf(&b, "Lieu : %s\n", data.RdvLieu)
	}

	return b.String()
}
