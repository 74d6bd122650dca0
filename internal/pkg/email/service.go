// internal/pkg/email/service.go
package email

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
)

// Transport delivers a fully rendered message.
type Transport interface {
	Send(ctx context.Context, email *Email) error
}

// EmailService renders and sends account emails
type EmailService struct {
	fromName  string
	transport Transport
	logger    *logrus.Logger
}

var (
	activationTemplate = template.Must(template.New("activation").Parse(
		`Hello {{.Username}},

Thanks for signing up at {{.StorefrontName}}. Please confirm your email address by opening the link below:

{{.ActivationURL}}

The link expires in {{.ExpiryText}}. If you did not create an account you can ignore this message.
`))

	passwordChangedTemplate = template.Must(template.New("password_changed").Parse(
		`Hello {{.Username}},

The password of your {{.StorefrontName}} account was changed on {{.ChangedAt.Format "2006-01-02 15:04 MST"}}.
All active sessions were signed out.
`))
)

// NewEmailService creates an email service for the configured provider.
func NewEmailService(cfg *config.Config, logger *logrus.Logger) (*EmailService, error) {
	var transport Transport
	switch cfg.External.Email.Provider {
	case "smtp":
		transport = newSMTPTransport(cfg.External.Email)
	case "log":
		transport = &logTransport{logger: logger}
	default:
		return nil, fmt.Errorf("unsupported email provider: %s", cfg.External.Email.Provider)
	}
	return NewEmailServiceWithTransport(cfg.External.Email.FromName, transport, logger), nil
}

// NewEmailServiceWithTransport wires an explicit transport.
func NewEmailServiceWithTransport(fromName string, transport Transport, logger *logrus.Logger) *EmailService {
	return &EmailService{
		fromName:  fromName,
		transport: transport,
		logger:    logger,
	}
}

// SendEmail sends an email using the configured provider
func (s *EmailService) SendEmail(ctx context.Context, email *Email) error {
	if len(email.To) == 0 {
		return errors.New("email has no recipients")
	}
	for _, to := range email.To {
		if strings.TrimSpace(to) == "" {
			return errors.New("email has an empty recipient")
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.transport.Send(ctx, email); err != nil {
		s.logger.WithFields(logrus.Fields{
			"type": email.Type,
			"to":   email.To,
		}).WithError(err).Error("email delivery failed")
		return fmt.Errorf("failed to send %s email: %w", email.Type, err)
	}

	s.logger.WithFields(logrus.Fields{
		"type": email.Type,
		"to":   email.To,
	}).Info("email sent")
	return nil
}

// SendActivationEmail sends the plain-text account activation link.
func (s *EmailService) SendActivationEmail(ctx context.Context, data ActivationEmailData) error {
	if data.StorefrontName == "" {
		data.StorefrontName = s.fromName
	}
	body, err := render(activationTemplate, data)
	if err != nil {
		return fmt.Errorf("failed to render activation email: %w", err)
	}

	return s.SendEmail(ctx, &Email{
		To:          []string{data.Email},
		Subject:     fmt.Sprintf("Activate your %s account", data.StorefrontName),
		TextContent: body,
		Type:        EmailTypeEmailVerification,
	})
}

// SendPasswordChangedEmail notifies the owner that their password changed.
func (s *EmailService) SendPasswordChangedEmail(ctx context.Context, data PasswordChangedData) error {
	if data.StorefrontName == "" {
		data.StorefrontName = s.fromName
	}
	body, err := render(passwordChangedTemplate, data)
	if err != nil {
		return fmt.Errorf("failed to render password changed email: %w", err)
	}

	return s.SendEmail(ctx, &Email{
		To:          []string{data.Email},
		Subject:     "Your password was changed",
		TextContent: body,
		Type:        EmailTypePasswordChanged,
	})
}

func render(tmpl *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// logTransport writes messages to the log instead of delivering them.
type logTransport struct {
	logger *logrus.Logger
}

func (t *logTransport) Send(_ context.Context, email *Email) error {
	t.logger.WithFields(logrus.Fields{
		"to":      email.To,
		"subject": email.Subject,
		"type":    email.Type,
	}).Info(email.TextContent)
	return nil
}
