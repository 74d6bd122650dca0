package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/domain/cart"
)

// LegacyCartHandler serves the older cart endpoints that name the user in
// the request instead of authenticating them. Routes are mounted only when
// LEGACY_ROUTES_ENABLED is set.
type LegacyCartHandler struct {
	cartService *cart.Service
}

// NewLegacyCartHandler creates a new legacy cart handler
func NewLegacyCartHandler(cartService *cart.Service) *LegacyCartHandler {
	return &LegacyCartHandler{cartService: cartService}
}

type legacyAddRequest struct {
	UserID uint `json:"user_id" binding:"required,min=1"`
	cart.AddToCartRequest
}

type legacyUpdateRequest struct {
	UserID uint `json:"user_id" binding:"required,min=1"`
	cart.UpdateCartItemRequest
}

type legacyRemoveRequest struct {
	UserID uint `json:"user_id" binding:"required,min=1"`
	cart.LineKey
}

// GetCart handles GET /legacy/cart/:user_id
func (h *LegacyCartHandler) GetCart(c *gin.Context) {
	userID, ok := parseIDParam(c, "user_id")
	if !ok {
		return
	}

	cartResponse, err := h.cartService.GetCart(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Cart retrieved successfully", cartResponse)
}

// AddToCart handles POST /legacy/cart/add
func (h *LegacyCartHandler) AddToCart(c *gin.Context) {
	var req legacyAddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	line, err := h.cartService.AddToCart(c.Request.Context(), req.UserID, &req.AddToCartRequest)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Item added to cart successfully", line)
}

// UpdateCart handles POST /legacy/cart/update
func (h *LegacyCartHandler) UpdateCart(c *gin.Context) {
	var req legacyUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	line, err := h.cartService.UpdateCart(c.Request.Context(), req.UserID, &req.UpdateCartItemRequest)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Cart item updated successfully", line)
}

// RemoveFromCart handles POST /legacy/cart/remove
func (h *LegacyCartHandler) RemoveFromCart(c *gin.Context) {
	var req legacyRemoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.cartService.RemoveFromCart(c.Request.Context(), req.UserID, req.LineKey); err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Item removed from cart successfully", nil)
}

// EmptyCart handles GET /legacy/cart/:user_id/empty
func (h *LegacyCartHandler) EmptyCart(c *gin.Context) {
	userID, ok := parseIDParam(c, "user_id")
	if !ok {
		return
	}

	removed, err := h.cartService.EmptyCart(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Cart emptied successfully", gin.H{"removed": removed})
}
