// internal/domain/product/category_service.go
package product

import (
	"context"
	"errors"
	"fmt"

	"github.com/your-org/storefront-backend/internal/pkg/apperror"
	"gorm.io/gorm"
)

// CategoryService handles category business logic
type CategoryService struct {
	db *gorm.DB
}

// NewCategoryService creates a new category service
func NewCategoryService(db *gorm.DB) *CategoryService {
	return &CategoryService{db: db}
}

// GetCategories retrieves all categories with their subcategories.
func (s *CategoryService) GetCategories(ctx context.Context) ([]Category, error) {
	var categories []Category
	err := s.db.WithContext(ctx).
		Preload("SubCategories", func(db *gorm.DB) *gorm.DB {
			return db.Order("title ASC")
		}).
		Order("title ASC").
		Find(&categories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve categories: %w", err)
	}
	return categories, nil
}

// GetCategory retrieves a single category by ID
func (s *CategoryService) GetCategory(ctx context.Context, id uint) (*Category, error) {
	var category Category
	err := s.db.WithContext(ctx).
		Preload("SubCategories", func(db *gorm.DB) *gorm.DB {
			return db.Order("title ASC")
		}).
		Where("id = ?", id).
		First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("category %d not found", id)
		}
		return nil, fmt.Errorf("failed to retrieve category: %w", err)
	}
	return &category, nil
}

// GetSubCategories lists the subcategories of a category.
func (s *CategoryService) GetSubCategories(ctx context.Context, categoryID uint) ([]SubCategory, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&Category{}).Where("id = ?", categoryID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to look up category: %w", err)
	}
	if count == 0 {
		return nil, apperror.NotFound("category %d not found", categoryID)
	}

	var subs []SubCategory
	if err := s.db.WithContext(ctx).
		Where("category_id = ?", categoryID).
		Order("title ASC").
		Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve subcategories: %w", err)
	}
	return subs, nil
}
