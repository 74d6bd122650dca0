// internal/interfaces/http/handlers/wishlist.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/domain/wishlist"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
)

// WishlistHandler handles wishlist endpoints
type WishlistHandler struct {
	wishlistService *wishlist.Service
}

// NewWishlistHandler creates a new wishlist handler
func NewWishlistHandler(wishlistService *wishlist.Service) *WishlistHandler {
	return &WishlistHandler{wishlistService: wishlistService}
}

// GetWishlist handles GET /wishlist
func (h *WishlistHandler) GetWishlist(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	response, err := h.wishlistService.GetWishlist(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Wishlist retrieved successfully", response)
}

// AddToWishlist handles POST /wishlist/items
func (h *WishlistHandler) AddToWishlist(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	var key wishlist.ItemKey
	if err := c.ShouldBindJSON(&key); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.wishlistService.AddToWishlist(c.Request.Context(), userID, key)
	if err != nil {
		respondError(c, err)
		return
	}

	status, message := http.StatusOK, "Wishlist item refreshed"
	if result.Created {
		status, message = http.StatusCreated, "Item added to wishlist successfully"
	}
	respondOK(c, status, message, result)
}

// CheckWishlist handles GET /wishlist/check?variant_id=&size_id=
func (h *WishlistHandler) CheckWishlist(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	var key wishlist.ItemKey
	if err := c.ShouldBindQuery(&key); err != nil {
		respondBindError(c, err)
		return
	}

	inWishlist, err := h.wishlistService.AlreadyInWishlist(c.Request.Context(), userID, key)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"in_wishlist": inWishlist})
}

// RemoveFromWishlist handles DELETE /wishlist/items?variant_id=&size_id=
func (h *WishlistHandler) RemoveFromWishlist(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	var key wishlist.ItemKey
	if err := c.ShouldBindQuery(&key); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.wishlistService.RemoveFromWishlist(c.Request.Context(), userID, key); err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Item removed from wishlist successfully", nil)
}

// EmptyWishlist handles DELETE /wishlist
func (h *WishlistHandler) EmptyWishlist(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	removed, err := h.wishlistService.EmptyWishlist(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Wishlist emptied successfully", gin.H{"removed": removed})
}

// MoveToCart handles POST /wishlist/move-to-cart
func (h *WishlistHandler) MoveToCart(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	var req wishlist.MoveToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	line, err := h.wishlistService.MoveToCart(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Item moved to cart successfully", line)
}
