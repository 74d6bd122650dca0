// internal/domain/user/service.go
package user

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/pkg/apperror"
	"github.com/your-org/storefront-backend/internal/pkg/auth"
	"github.com/your-org/storefront-backend/internal/pkg/dbutil"
	"github.com/your-org/storefront-backend/internal/pkg/email"
	"github.com/your-org/storefront-backend/internal/pkg/metrics"
	"gorm.io/gorm"
)

// Mailer sends the account emails the lifecycle depends on.
type Mailer interface {
	SendActivationEmail(ctx context.Context, data email.ActivationEmailData) error
	SendPasswordChangedEmail(ctx context.Context, data email.PasswordChangedData) error
}

// Service handles user business logic
type Service struct {
	db              *gorm.DB
	config          *config.Config
	passwordManager *auth.PasswordManager
	sessions        *auth.SessionManager
	mailer          Mailer
	validate        *validator.Validate
	logger          *logrus.Logger
	metrics         *metrics.Metrics
	now             func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source used for token issue and expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger sets the logger.
func WithLogger(logger *logrus.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithMetrics records account lifecycle outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService creates a new user service
func NewService(db *gorm.DB, cfg *config.Config, sessions *auth.SessionManager, mailer Mailer, opts ...Option) *Service {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return strings.ToLower(fld.Name)
		}
		return name
	})

	s := &Service{
		db:              db,
		config:          cfg,
		passwordManager: auth.NewPasswordManager(cfg),
		sessions:        sessions,
		mailer:          mailer,
		validate:        validate,
		logger:          logrus.StandardLogger(),
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates an inactive account and emails its activation link.
// If the email cannot be sent the account is not kept.
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*RegisterResponse, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = normalizeEmail(req.Email)

	if err := s.validateStruct(req); err != nil {
		s.metrics.AccountEvent("register", "invalid")
		return nil, err
	}

	taken, err := s.UsernameExists(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if taken {
		s.metrics.AccountEvent("register", "duplicate")
		return nil, apperror.Duplicate(apperror.KindDuplicateUsername, "username %q is already taken", req.Username)
	}
	taken, err = s.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		s.metrics.AccountEvent("register", "duplicate")
		return nil, apperror.Duplicate(apperror.KindDuplicateEmail, "email %q is already registered", req.Email)
	}

	hashedPassword, err := s.passwordManager.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	token := uuid.New()
	issuedAt := s.now().UTC()
	user := User{
		Username:                req.Username,
		Email:                   req.Email,
		Password:                hashedPassword,
		IsActive:                false,
		EmailVerificationToken:  &token,
		EmailVerificationSentAt: &issuedAt,
		NewsletterSubscription:  req.NewsletterSubscription,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		return s.sendActivation(ctx, &user, token)
	})
	if err != nil {
		switch {
		case apperror.CodeOf(err) == apperror.CodeDeliveryFailed:
			s.metrics.AccountEvent("register", "delivery_failed")
			return nil, err
		case dbutil.IsUniqueViolation(err):
			s.metrics.AccountEvent("register", "duplicate")
			return nil, duplicateFromViolation(err)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.metrics.AccountEvent("register", "success")
	s.logger.WithFields(logrus.Fields{"user_id": user.ID, "username": user.Username}).Info("user registered")

	return &RegisterResponse{User: user.ToPublic()}, nil
}

// Activate redeems an email verification token.
func (s *Service) Activate(ctx context.Context, token string) (ActivationResult, error) {
	id, err := uuid.Parse(strings.TrimSpace(token))
	if err != nil {
		s.metrics.AccountEvent("activate", "not_found")
		return "", apperror.NotFound("activation token not found")
	}

	var user User
	if err := s.db.WithContext(ctx).Where("email_verification_token = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.metrics.AccountEvent("activate", "not_found")
			return "", apperror.NotFound("activation token not found")
		}
		return "", fmt.Errorf("failed to look up activation token: %w", err)
	}

	if user.TokenExpired(s.now(), s.config.Security.ActivationTokenTTL) {
		if err := s.db.WithContext(ctx).Model(&User{}).
			Where("id = ?", user.ID).
			Update("email_verification_token", nil).Error; err != nil {
			return "", fmt.Errorf("failed to clear expired token: %w", err)
		}
		s.metrics.AccountEvent("activate", "expired")
		return "", apperror.New(apperror.CodeExpired, "activation token has expired, request a new one")
	}

	if user.IsActive {
		s.metrics.AccountEvent("activate", "already_active")
		return ActivationAlreadyActive, nil
	}

	if err := s.db.WithContext(ctx).Model(&User{}).
		Where("id = ?", user.ID).
		Updates(map[string]interface{}{
			"is_active":                  true,
			"email_verification_token":   nil,
			"email_verification_sent_at": nil,
		}).Error; err != nil {
		return "", fmt.Errorf("failed to activate user: %w", err)
	}

	s.metrics.AccountEvent("activate", "activated")
	s.logger.WithField("user_id", user.ID).Info("user activated")
	return ActivationActivated, nil
}

// ResendActivation issues a new token for an inactive account and emails it.
// sent is false when the account is already active.
func (s *Service) ResendActivation(ctx context.Context, req *ResendActivationRequest) (sent bool, err error) {
	user, err := s.findByEmail(ctx, req.Email)
	if err != nil {
		return false, err
	}
	if user.IsActive {
		return false, nil
	}

	token := uuid.New()
	issuedAt := s.now().UTC()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&User{}).
			Where("id = ?", user.ID).
			Updates(map[string]interface{}{
				"email_verification_token":   token,
				"email_verification_sent_at": issuedAt,
			}).Error; err != nil {
			return err
		}
		return s.sendActivation(ctx, user, token)
	})
	if err != nil {
		if apperror.CodeOf(err) == apperror.CodeDeliveryFailed {
			s.metrics.AccountEvent("resend_activation", "delivery_failed")
			return false, err
		}
		return false, fmt.Errorf("failed to reissue activation token: %w", err)
	}

	s.metrics.AccountEvent("resend_activation", "success")
	return true, nil
}

// Login checks credentials and returns a bearer credential, reusing the
// caller's live one when it exists.
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	var user User
	err := s.db.WithContext(ctx).Where("username = ?", strings.TrimSpace(req.Username)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.metrics.AccountEvent("login", "failure")
			return nil, apperror.New(apperror.CodeInvalidCredentials, "invalid username or password")
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := s.passwordManager.VerifyPassword(req.Password, user.Password); err != nil {
		s.metrics.AccountEvent("login", "failure")
		return nil, apperror.New(apperror.CodeInvalidCredentials, "invalid username or password")
	}
	if !user.IsActive {
		s.metrics.AccountEvent("login", "inactive")
		return nil, apperror.New(apperror.CodeInvalidCredentials, "account is not activated").
			WithKind(apperror.KindInactiveAccount)
	}

	token, reused, err := s.sessions.Issue(ctx, user.ID, user.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to issue credential: %w", err)
	}

	now := s.now().UTC()
	if err := s.db.WithContext(ctx).Model(&User{}).Where("id = ?", user.ID).Update("last_login_at", now).Error; err != nil {
		s.logger.WithError(err).WithField("user_id", user.ID).Warn("failed to record last login")
	}
	user.LastLoginAt = &now

	s.metrics.AccountEvent("login", "success")
	return &AuthResponse{
		User:        &user,
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.config.JWT.AccessTokenExpiry.Seconds()),
		Reused:      reused,
	}, nil
}

// Logout invalidates the credential.
func (s *Service) Logout(ctx context.Context, token string) error {
	claims, err := s.sessions.Revoke(ctx, token)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredential) {
			s.metrics.AccountEvent("logout", "invalid")
			return apperror.New(apperror.CodeInvalidCredentials, "invalid token")
		}
		return fmt.Errorf("failed to revoke credential: %w", err)
	}

	s.metrics.AccountEvent("logout", "success")
	s.logger.WithField("user_id", claims.UserID).Info("user logged out")
	return nil
}

// ResetPassword replaces the password of the account owning req.Email and
// signs out its sessions.
func (s *Service) ResetPassword(ctx context.Context, req *ResetPasswordRequest) error {
	if utf8.RuneCountInString(req.NewPassword) < auth.MinPasswordLength {
		return apperror.Validation(apperror.KindTooShort, "password must be at least %d characters", auth.MinPasswordLength)
	}

	user, err := s.findByEmail(ctx, req.Email)
	if err != nil {
		return err
	}

	hashedPassword, err := s.passwordManager.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Model(&User{}).Where("id = ?", user.ID).Update("password", hashedPassword).Error; err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	if err := s.sessions.RevokeUser(ctx, user.ID); err != nil {
		s.logger.WithError(err).WithField("user_id", user.ID).Warn("failed to revoke sessions after password reset")
	}
	if err := s.mailer.SendPasswordChangedEmail(ctx, email.PasswordChangedData{
		Username:  user.Username,
		Email:     user.Email,
		ChangedAt: s.now().UTC(),
	}); err != nil {
		s.logger.WithError(err).WithField("user_id", user.ID).Warn("failed to send password changed notice")
	}

	s.metrics.AccountEvent("reset_password", "success")
	return nil
}

// UsernameExists reports whether the username is taken.
func (s *Service) UsernameExists(ctx context.Context, username string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&User{}).Where("username = ?", strings.TrimSpace(username)).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check username: %w", err)
	}
	return count > 0, nil
}

// EmailExists reports whether the email is registered.
func (s *Service) EmailExists(ctx context.Context, address string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&User{}).Where("email = ?", normalizeEmail(address)).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return count > 0, nil
}

// GetUser returns the public projection of a user.
func (s *Service) GetUser(ctx context.Context, id uint) (*PublicUser, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	public := user.ToPublic()
	return &public, nil
}

// GetByID returns the full user row.
func (s *Service) GetByID(ctx context.Context, id uint) (*User, error) {
	var user User
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user %d not found", id)
		}
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	return &user, nil
}

func (s *Service) findByEmail(ctx context.Context, address string) (*User, error) {
	var user User
	if err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(address)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("no account for email %q", normalizeEmail(address))
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	return &user, nil
}

func (s *Service) sendActivation(ctx context.Context, user *User, token uuid.UUID) error {
	err := s.mailer.SendActivationEmail(ctx, email.ActivationEmailData{
		Username:      user.Username,
		Email:         user.Email,
		ActivationURL: s.activationURL(token),
		ExpiresIn:     s.config.Security.ActivationTokenTTL,
	})
	if err != nil {
		return apperror.Wrap(apperror.CodeDeliveryFailed, err, "could not send activation email")
	}
	return nil
}

func (s *Service) activationURL(token uuid.UUID) string {
	return fmt.Sprintf("%sactivate?token=%s", s.config.App.FrontendBaseURL, token)
}

func (s *Service) validateStruct(v interface{}) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperror.Wrap(apperror.CodeValidation, err, "invalid request")
	}

	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return apperror.Validation(apperror.KindRequired, "%s is required", fe.Field())
	case "min":
		return apperror.Validation(apperror.KindTooShort, "%s must be at least %s characters", fe.Field(), fe.Param())
	case "email":
		return apperror.Validation(apperror.KindInvalidEmail, "%s is not a valid email address", fe.Field())
	default:
		return apperror.Validation(apperror.KindOutOfRange, "%s is invalid", fe.Field())
	}
}

func duplicateFromViolation(err error) error {
	switch dbutil.ViolatedColumn(err, "username", "email") {
	case "username":
		return apperror.Duplicate(apperror.KindDuplicateUsername, "username is already taken")
	case "email":
		return apperror.Duplicate(apperror.KindDuplicateEmail, "email is already registered")
	}
	return apperror.Wrap(apperror.CodeDuplicateEntity, err, "account already exists")
}
