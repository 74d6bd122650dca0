// internal/domain/product/rating_service.go
package product

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/your-org/storefront-backend/internal/domain/user"
	"github.com/your-org/storefront-backend/internal/pkg/apperror"
	"gorm.io/gorm"
)

// RatingService handles product ratings. Ratings are append-only.
type RatingService struct {
	db *gorm.DB
}

// NewRatingService creates a new rating service
func NewRatingService(db *gorm.DB) *RatingService {
	return &RatingService{db: db}
}

// GetRatings lists the ratings of a product, newest first.
func (s *RatingService) GetRatings(ctx context.Context, productID uint) (*RatingListResponse, error) {
	if err := s.ensureProduct(ctx, productID); err != nil {
		return nil, err
	}

	var ratings []Rating
	if err := s.db.WithContext(ctx).
		Preload("User").
		Where("product_id = ?", productID).
		Order("created_at DESC, id DESC").
		Find(&ratings).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve ratings: %w", err)
	}

	responses := make([]RatingResponse, 0, len(ratings))
	for i := range ratings {
		responses = append(responses, buildRatingResponse(&ratings[i]))
	}

	summary, err := s.GetSummary(ctx, productID)
	if err != nil {
		return nil, err
	}

	return &RatingListResponse{Ratings: responses, Summary: *summary}, nil
}

// CreateRating stores a new rating for productID by userID.
func (s *RatingService) CreateRating(ctx context.Context, userID, productID uint, req *CreateRatingRequest) (*RatingResponse, error) {
	if req.Stars < 1 || req.Stars > 5 {
		return nil, apperror.Validation(apperror.KindOutOfRange, "stars must be between 1 and 5")
	}

	var author user.User
	if err := s.db.WithContext(ctx).Where("id = ?", userID).First(&author).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user %d not found", userID)
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if err := s.ensureProduct(ctx, productID); err != nil {
		return nil, err
	}

	rating := Rating{
		ProductID: productID,
		UserID:    userID,
		Stars:     req.Stars,
	}
	if comment := strings.TrimSpace(req.Comment); comment != "" {
		rating.Comment = &comment
	}

	if err := s.db.WithContext(ctx).Create(&rating).Error; err != nil {
		return nil, fmt.Errorf("failed to create rating: %w", err)
	}

	rating.User = &author
	response := buildRatingResponse(&rating)
	return &response, nil
}

// GetSummary returns count, mean and per-star breakdown for a product.
func (s *RatingService) GetSummary(ctx context.Context, productID uint) (*RatingSummary, error) {
	var rows []struct {
		Stars int
		Count int
	}
	if err := s.db.WithContext(ctx).
		Model(&Rating{}).
		Select("stars, COUNT(*) AS count").
		Where("product_id = ?", productID).
		Group("stars").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to summarize ratings: %w", err)
	}

	summary := &RatingSummary{StarsBreakdown: make(map[string]int, 5)}
	for i := 1; i <= 5; i++ {
		summary.StarsBreakdown[strconv.Itoa(i)] = 0
	}

	sum := 0
	for _, row := range rows {
		summary.StarsBreakdown[strconv.Itoa(row.Stars)] = row.Count
		summary.TotalRatings += row.Count
		sum += row.Stars * row.Count
	}
	if summary.TotalRatings > 0 {
		avg := float64(sum) / float64(summary.TotalRatings)
		summary.AverageStars = math.Round(avg*100) / 100
	}

	return summary, nil
}

func (s *RatingService) ensureProduct(ctx context.Context, productID uint) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&Product{}).Where("id = ?", productID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to look up product: %w", err)
	}
	if count == 0 {
		return apperror.NotFound("product %d not found", productID)
	}
	return nil
}

func buildRatingResponse(r *Rating) RatingResponse {
	resp := RatingResponse{
		ID:        r.ID,
		ProductID: r.ProductID,
		UserID:    r.UserID,
		Stars:     r.Stars,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.User != nil {
		resp.Username = r.User.Username
	}
	return resp
}
