// internal/pkg/email/types.go
package email

import (
	"fmt"
	"time"
)

// EmailType represents the type of email being sent
type EmailType string

const (
	EmailTypeEmailVerification EmailType = "email_verification"
	EmailTypePasswordChanged   EmailType = "password_changed"
)

// Email represents an email message
type Email struct {
	To          []string  `json:"to"`
	Subject     string    `json:"subject"`
	TextContent string    `json:"text_content"`
	HTMLContent string    `json:"html_content,omitempty"`
	Type        EmailType `json:"type"`
}

// ActivationEmailData is what the activation email is rendered from.
type ActivationEmailData struct {
	Username       string
	Email          string
	ActivationURL  string
	ExpiresIn      time.Duration
	StorefrontName string
}

// ExpiryText renders ExpiresIn for humans.
func (d ActivationEmailData) ExpiryText() string {
	hours := int(d.ExpiresIn / time.Hour)
	switch {
	case hours == 1:
		return "1 hour"
	case hours > 1:
		return fmt.Sprintf("%d hours", hours)
	}
	return d.ExpiresIn.String()
}

// PasswordChangedData is rendered into the password-changed notice.
type PasswordChangedData struct {
	Username       string
	Email          string
	ChangedAt      time.Time
	StorefrontName string
}
