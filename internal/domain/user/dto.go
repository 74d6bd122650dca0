// internal/domain/user/dto.go
package user

// RegisterRequest represents user registration data
type RegisterRequest struct {
	Username               string `json:"username" binding:"required" validate:"required,min=3,max=150"`
	Email                  string `json:"email" binding:"required" validate:"required,email,max=255"`
	Password               string `json:"password" binding:"required" validate:"required,min=6,max=128"`
	NewsletterSubscription bool   `json:"newsletter_subscription"`
}

// LoginRequest represents user login data
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ActivateRequest carries the emailed verification token.
type ActivateRequest struct {
	Token string `json:"token" form:"token" binding:"required"`
}

// ResendActivationRequest asks for a fresh activation email.
type ResendActivationRequest struct {
	Email string `json:"email" binding:"required"`
}

// ResetPasswordRequest sets a new password for the account owning Email.
type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// UsernameExistsRequest checks whether a username is taken.
type UsernameExistsRequest struct {
	Username string `json:"username" binding:"required"`
}

// EmailExistsRequest checks whether an email is registered.
type EmailExistsRequest struct {
	Email string `json:"email" binding:"required"`
}

// PublicUser is the projection of a user shown to anyone.
type PublicUser struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	User        *User  `json:"user"`
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	Reused      bool   `json:"reused"`
}

// RegisterResponse describes the freshly created, still inactive account.
type RegisterResponse struct {
	User PublicUser `json:"user"`
}

// ActivationResponse reports how an activation resolved.
type ActivationResponse struct {
	Result ActivationResult `json:"result"`
}
