// internal/pkg/email/smtp.go
package email

import (
	"context"
	"fmt"

	"github.com/your-org/storefront-backend/internal/config"
	"gopkg.in/mail.v2"
)

const implicitTLSPort = 465

type smtpTransport struct {
	cfg    config.EmailConfig
	dialer *mail.Dialer
}

func newSMTPTransport(cfg config.EmailConfig) *smtpTransport {
	d := mail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)
	d.Timeout = cfg.SMTPTimeout
	if cfg.SMTPPort == implicitTLSPort {
		d.SSL = true
	} else {
		d.StartTLSPolicy = mail.MandatoryStartTLS
	}
	return &smtpTransport{cfg: cfg, dialer: d}
}

func (t *smtpTransport) Send(ctx context.Context, email *Email) error {
	if t.cfg.SMTPHost == "" || t.cfg.SMTPUsername == "" {
		return fmt.Errorf("SMTP configuration incomplete: missing host or username")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := t.dialer.DialAndSend(t.buildMessage(email)); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func (t *smtpTransport) buildMessage(email *Email) *mail.Message {
	m := mail.NewMessage()
	m.SetAddressHeader("From", t.cfg.FromEmail, t.cfg.FromName)
	m.SetHeader("To", email.To...)
	m.SetHeader("Subject", email.Subject)
	m.SetBody("text/plain", email.TextContent)
	if email.HTMLContent != "" {
		m.AddAlternative("text/html", email.HTMLContent)
	}
	return m
}
