package notify

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fleetops/fleet-manager/pkg/config"
	"github.com/fleetops/fleet-manager/pkg/eventbus"
)

type mockEmailSender struct {
	mock.Mock
}

func (m *mockEmailSender) SendEmail(to []string, subject, body string) error {
	args := m.Called(to, subject, body)
	return args.Error(0)
}

func testNotifyConfig() *config.NotifyConfig {
	return &config.NotifyConfig{
		DirecteurEmail:    "directeur@fleet.local",
		ExploitationEmail: "exploitation@fleet.local",
		ParcEmail:         "parc@fleet.local",
	}
}

func floatPtr(f float64) *float64 {
	return &f
}

func testEventData() *eventbus.InterventionEventData {
	rdv := time.Date(2026, 2, 10, 9, 30, 0, 0, time.UTC)
	return &eventbus.InterventionEventData{
		InterventionID: "5f1c2c1e-0000-4000-8000-000000000001",
		VehicleImmat:   "AB-123-CD",
		VehicleLabel:   "Porteur 19T",
		Description:    "Remplacement plaquettes de frein",
		Garage:         "Garage Central",
		MontantDevis:   floatPtr(850),
		Status:         "planned",
		RdvDate:        &rdv,
		RdvLieu:        "Garage Central",
	}
}

func TestSendRdvPlanned(t *testing.T) {
	email := new(mockEmailSender)
	service := NewService(email, testNotifyConfig())

	email.On("SendEmail",
		[]string{"directeur@fleet.local", "exploitation@fleet.local", "parc@fleet.local"},
		"[Fleet] RDV Maintenance planifie - AB-123-CD",
		mock.MatchedBy(func(body string) bool {
			return strings.Contains(body, "Porteur 19T") &&
				strings.Contains(body, "AB-123-CD") &&
				strings.Contains(body, "Remplacement plaquettes de frein") &&
				strings.Contains(body, "850.00 EUR") &&
				strings.Contains(body, "10/02/2026 09:30") &&
				strings.Contains(body, "Garage Central")
		}),
	).Return(nil)

	err := service.SendRdvPlanned(context.Background(), testEventData())

	require.NoError(t, err)
	email.AssertExpectations(t)
}

func TestSendRdvPlanned_OmitsMissingOptionalFields(t *testing.T) {
	email := new(mockEmailSender)
	service := NewService(email, testNotifyConfig())

	data := testEventData()
	data.Garage = ""
	data.MontantDevis = nil
	data.RdvLieu = ""

	email.On("SendEmail", mock.Anything, mock.Anything, mock.MatchedBy(func(body string) bool {
		return !strings.Contains(body, "Garage :") &&
			!strings.Contains(body, "Montant du devis") &&
			!strings.Contains(body, "Lieu :")
	})).Return(nil)

	err := service.SendRdvPlanned(context.Background(), data)

	require.NoError(t, err)
	email.AssertExpectations(t)
}

func TestSendRdvPlanned_SMTPFailure(t *testing.T) {
	email := new(mockEmailSender)
	service := NewService(email, testNotifyConfig())

	email.On("SendEmail", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("dial tcp: connection refused"))

	err := service.SendRdvPlanned(context.Background(), testEventData())

	require.Error(t, err)
}

func TestHandleInterventionEvent_RdvPlannedSendsEmail(t *testing.T) {
	email := new(mockEmailSender)
	handler := NewEventHandler(NewService(email, testNotifyConfig()))

	email.On("SendEmail", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	event, err := eventbus.NewEvent(eventbus.SubjectInterventionRdvPlanned, "fleet-api", testEventData())
	require.NoError(t, err)

	err = handler.HandleInterventionEvent(context.Background(), event)

	require.NoError(t, err)
	email.AssertExpectations(t)
}

func TestHandleInterventionEvent_OtherLifecycleEventsAreIgnored(t *testing.T) {
	email := new(mockEmailSender)
	handler := NewEventHandler(NewService(email, testNotifyConfig()))

	for _, subject := range []string{
		eventbus.SubjectInterventionCreated,
		eventbus.SubjectInterventionApproved,
		eventbus.SubjectInterventionRejected,
		eventbus.SubjectInterventionCompleted,
	} {
		event, err := eventbus.NewEvent(subject, "fleet-api", testEventData())
		require.NoError(t, err)

		err = handler.HandleInterventionEvent(context.Background(), event)
		require.NoError(t, err)
	}

	email.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleInterventionEvent_MalformedPayload(t *testing.T) {
	email := new(mockEmailSender)
	handler := NewEventHandler(NewService(email, testNotifyConfig()))

	event := &eventbus.Event{
		ID:   "bad",
		Type: eventbus.SubjectInterventionRdvPlanned,
		Data: json.RawMessage(`{not json`),
	}

	err := handler.HandleInterventionEvent(context.Background(), event)

	require.Error(t, err)
	email.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything, mock.Anything)
}
