package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
)

// RatingHandler handles product rating endpoints
type RatingHandler struct {
	ratingService *product.RatingService
}

// NewRatingHandler creates a new rating handler
func NewRatingHandler(ratingService *product.RatingService) *RatingHandler {
	return &RatingHandler{ratingService: ratingService}
}

// GetRatings handles GET /products/:id/ratings
func (h *RatingHandler) GetRatings(c *gin.Context) {
	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	ratings, err := h.ratingService.GetRatings(c.Request.Context(), productID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Ratings retrieved successfully", ratings)
}

// CreateRating handles POST /products/:id/ratings
func (h *RatingHandler) CreateRating(c *gin.Context) {
	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, _ := middleware.GetUserIDFromContext(c)

	var req product.CreateRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	rating, err := h.ratingService.CreateRating(c.Request.Context(), userID, productID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, "Rating submitted successfully", rating)
}
