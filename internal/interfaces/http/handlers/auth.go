// internal/interfaces/http/handlers/auth.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/domain/user"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
)

// AuthHandler handles account lifecycle endpoints
type AuthHandler struct {
	userService *user.Service
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(userService *user.Service) *AuthHandler {
	return &AuthHandler{userService: userService}
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req user.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	response, err := h.userService.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, "Registration successful, check your email to activate the account", response)
}

// Activate handles GET /auth/activate?token= and POST /auth/activate
func (h *AuthHandler) Activate(c *gin.Context) {
	var req user.ActivateRequest
	var err error
	if c.Request.Method == http.MethodGet {
		err = c.ShouldBindQuery(&req)
	} else {
		err = c.ShouldBindJSON(&req)
	}
	if err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.userService.Activate(c.Request.Context(), req.Token)
	if err != nil {
		respondError(c, err)
		return
	}

	message := "Account activated"
	if result == user.ActivationAlreadyActive {
		message = "Account is already active"
	}
	respondOK(c, http.StatusOK, message, user.ActivationResponse{Result: result})
}

// ResendActivation handles POST /auth/resend-activation
func (h *AuthHandler) ResendActivation(c *gin.Context) {
	var req user.ResendActivationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	sent, err := h.userService.ResendActivation(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	if !sent {
		respondOK(c, http.StatusOK, "Account is already active", gin.H{"sent": false})
		return
	}
	respondOK(c, http.StatusOK, "Activation email sent", gin.H{"sent": true})
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req user.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	response, err := h.userService.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Login successful", response)
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.userService.Logout(c.Request.Context(), middleware.GetTokenFromContext(c)); err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Logout successful", nil)
}

// ResetPassword handles POST /auth/reset-password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req user.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.userService.ResetPassword(c.Request.Context(), &req); err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Password has been reset", nil)
}

// UsernameExists handles POST /auth/username-exists
func (h *AuthHandler) UsernameExists(c *gin.Context) {
	var req user.UsernameExistsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	exists, err := h.userService.UsernameExists(c.Request.Context(), req.Username)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"exists": exists})
}

// EmailExists handles POST /auth/email-exists
func (h *AuthHandler) EmailExists(c *gin.Context) {
	var req user.EmailExistsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	exists, err := h.userService.EmailExists(c.Request.Context(), req.Email)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"exists": exists})
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	profile, err := h.userService.GetByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Profile retrieved successfully", profile)
}
