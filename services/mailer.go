package services

import (
	"fmt"

	"github.com/Bilal-pasha/ArabiaIslamia-hub-sub001/config"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/sirupsen/logrus"
)

// Mailer sends applicant-facing email through SendGrid. When no API key is
// configured it degrades to logging the message, which keeps development
// environments working without external credentials.
type Mailer struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
}

func NewMailer() *Mailer {
	m := &Mailer{
		fromEmail: config.AppConfig.NotifyFromEmail,
		fromName:  config.AppConfig.NotifyFromName,
	}
	if config.AppConfig.SendGridAPIKey != "" {
		m.client = sendgrid.NewSendClient(config.AppConfig.SendGridAPIKey)
	}
	return m
}

func (m *Mailer) Send(toEmail, toName, subject, body string) error {
	if m.client == nil {
		logrus.WithFields(logrus.Fields{
			"to":      toEmail,
			"subject": subject,
		}).Info("[mailer] SendGrid not configured, skipping send")
		return nil
	}

	from := mail.NewEmail(m.fromName, m.fromEmail)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, body, "<p>"+body+"</p>")

	resp, err := m.client.Send(message)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid send: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}
