// internal/domain/product/rating_dto.go
package product

import "time"

// CreateRatingRequest represents the request to rate a product
type CreateRatingRequest struct {
	Stars   int    `json:"stars" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"max=2000"`
}

// RatingResponse is a rating with its author's public name.
type RatingResponse struct {
	ID        uint      `json:"id"`
	ProductID uint      `json:"product_id"`
	UserID    uint      `json:"user_id"`
	Username  string    `json:"username"`
	Stars     int       `json:"stars"`
	Comment   *string   `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RatingSummary provides rating statistics
type RatingSummary struct {
	TotalRatings   int            `json:"total_ratings"`
	AverageStars   float64        `json:"average_stars"`
	StarsBreakdown map[string]int `json:"stars_breakdown"` // "5": 10, "4": 5, etc.
}

// RatingListResponse is every rating of a product plus its summary.
type RatingListResponse struct {
	Ratings []RatingResponse `json:"ratings"`
	Summary RatingSummary    `json:"summary"`
}
