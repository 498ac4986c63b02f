package mailer

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gopkg.in/gomail.v2"
)

// SMTPProvider is a fallback transport for environments without a Resend
// API key (local development, self-hosted relays). SMTP exposes neither
// tracking controls nor a domain-verification API, so tracking flags are
// ignored and every domain is reported verified, which keeps the
// dispatcher on the configured from address instead of the sandbox.
type SMTPProvider struct {
	Host     string
	Port     int
	Username string
	Password string
}

func NewSMTPProvider(host string, port int, username, password string) *SMTPProvider {
	return &SMTPProvider{
		Host:     host,
		Port:     port,
		Username: username,
		Password: password,
	}
}

func (p *SMTPProvider) Send(_ context.Context, msg *Message) (string, error) {
	m := gomail.NewMessage()
	m.SetHeader("From", fmt.Sprintf("%s <%s>", msg.FromName, msg.FromEmail))
	m.SetHeader("To", msg.To)
	if msg.ReplyTo != "" {
		m.SetHeader("Reply-To", msg.ReplyTo)
	}
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Text)
	m.AddAlternative("text/html", msg.HTML)

	d := gomail.NewDialer(p.Host, p.Port, p.Username, p.Password)
	if err := d.DialAndSend(m); err != nil {
		return "", fmt.Errorf("smtp send: %w", err)
	}

	// SMTP has no provider message id; synthesize one for the event log.
	return "smtp-" + uuid.NewString(), nil
}

func (p *SMTPProvider) DomainVerified(_ context.Context, _ string) (bool, error) {
	return true, nil
}
