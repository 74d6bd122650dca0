// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
	"github.com/your-org/storefront-backend/internal/pkg/apperror"
	"github.com/your-org/storefront-backend/internal/pkg/pdf"
)

// CartHandler handles cart endpoints for the authenticated caller
type CartHandler struct {
	cartService *cart.Service
	pdfService  *pdf.Service
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cartService *cart.Service, pdfService *pdf.Service) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		pdfService:  pdfService,
	}
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	cartResponse, err := h.cartService.GetCart(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Cart retrieved successfully", cartResponse)
}

// GetCartCount handles GET /cart/count
func (h *CartHandler) GetCartCount(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	count, err := h.cartService.GetCartItemCount(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Cart count retrieved successfully", gin.H{"count": count})
}

// AddToCart handles POST /cart/items
func (h *CartHandler) AddToCart(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	var req cart.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	line, err := h.cartService.AddToCart(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Item added to cart successfully", line)
}

// UpdateCart handles PUT /cart/items
func (h *CartHandler) UpdateCart(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	var req cart.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	line, err := h.cartService.UpdateCart(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Cart item updated successfully", line)
}

// RemoveFromCart handles DELETE /cart/items?variant_id=&size_id=
func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	var key cart.LineKey
	if err := c.ShouldBindQuery(&key); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.cartService.RemoveFromCart(c.Request.Context(), userID, key); err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Item removed from cart successfully", nil)
}

// EmptyCart handles DELETE /cart
func (h *CartHandler) EmptyCart(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	removed, err := h.cartService.EmptyCart(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Cart emptied successfully", gin.H{"removed": removed})
}

// GetQuote handles GET /cart/quote.pdf
func (h *CartHandler) GetQuote(c *gin.Context) {
	if h.pdfService == nil || !h.pdfService.Enabled() {
		respondError(c, apperror.NotFound("quote export is not available"))
		return
	}
	userID, _ := middleware.GetUserIDFromContext(c)

	cartResponse, err := h.cartService.GetCart(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	buf, err := h.pdfService.GenerateCartQuote(middleware.GetUsernameFromContext(c), cartResponse)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="cart-quote-%d.pdf"`, userID))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
