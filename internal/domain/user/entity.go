// internal/domain/user/entity.go
package user

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a storefront account. It stays inactive until the emailed
// verification token is redeemed.
type User struct {
	ID                      uint       `gorm:"primaryKey" json:"id"`
	Username                string     `gorm:"uniqueIndex;not null;size:150" json:"username"`
	Email                   string     `gorm:"uniqueIndex;not null;size:255" json:"email"`
	Password                string     `gorm:"not null;size:255" json:"-"`
	IsActive                bool       `gorm:"not null;default:false" json:"is_active"`
	EmailVerificationToken  *uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"-"`
	EmailVerificationSentAt *time.Time `json:"-"`
	NewsletterSubscription  bool       `gorm:"not null;default:false" json:"newsletter_subscription"`
	LastLoginAt             *time.Time `json:"last_login_at,omitempty"`
	CreatedAt               time.Time  `json:"created_at"`
	UpdatedAt               time.Time  `json:"updated_at"`
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}

// BeforeCreate normalizes the email before insert.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	u.Email = normalizeEmail(u.Email)
	u.Username = strings.TrimSpace(u.Username)
	return nil
}

// ToPublic returns the projection safe to show other users.
func (u *User) ToPublic() PublicUser {
	return PublicUser{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
	}
}

// TokenExpired reports whether the verification token was issued more than ttl before now.
// A token without an issue time is treated as expired.
func (u *User) TokenExpired(now time.Time, ttl time.Duration) bool {
	if u.EmailVerificationSentAt == nil {
		return true
	}
	return now.Sub(*u.EmailVerificationSentAt) > ttl
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ActivationResult distinguishes a fresh activation from a repeated one.
type ActivationResult string

const (
	ActivationActivated     ActivationResult = "activated"
	ActivationAlreadyActive ActivationResult = "already_active"
)
