package notify

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/fleetops/fleet-manager/pkg/config"
)

// EmailSender sends an email to a list of recipients. Satisfied by EmailClient.
type EmailSender interface {
	SendEmail(to []string, subject, body string) error
}

// EmailClient handles outbound SMTP email
type EmailClient struct {
	smtpHost     string
	smtpPort     string
	smtpUsername string
	smtpPassword string
	fromEmail    string
	fromName     string
}

// NewEmailClient creates a new email client
func NewEmailClient(cfg *config.SMTPConfig) *EmailClient {
	return &EmailClient{
		smtpHost:     cfg.Host,
		smtpPort:     cfg.Port,
		smtpUsername: cfg.Username,
		smtpPassword: cfg.Password,
		fromEmail:    cfg.FromEmail,
		fromName:     cfg.FromName,
	}
}

// SendEmail sends a plain text email to all recipients in one message
func (e *EmailClient) SendEmail(to []string, subject, body string) error {
	from := fmt.Sprintf("%s <%s>", e.fromName, e.fromEmail)

	msg := []byte(fmt.Sprintf("From: %s\r\n"+
		"To: %s\r\n"+
		"Subject: %s\r\n"+
		"Content-Type: text/plain; charset=UTF-8\r\n"+
		"\r\n"+
		"%s\r\n", from, strings.Join(to, ", "), subject, body))

	auth := smtp.PlainAuth("", e.smtpUsername, e.smtpPassword, e.smtpHost)
	addr := fmt.Sprintf("%s:%s", e.smtpHost, e.smtpPort)

	if err := smtp.SendMail(addr, auth, e.fromEmail, to, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
