// internal/domain/product/service.go
package product

import (
	"context"
	"fmt"

	"github.com/your-org/storefront-backend/internal/pkg/apperror"
	"github.com/your-org/storefront-backend/internal/pkg/dbutil"
	"gorm.io/gorm"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// Service handles catalog reads for products, variants and sizes.
type Service struct {
	db *gorm.DB
}

// NewService creates a new product service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// ProductListRequest filters and pages a product listing.
type ProductListRequest struct {
	CategoryID    uint   `form:"category_id"`
	SubCategoryID uint   `form:"subcategory_id"`
	Gender        Gender `form:"gender"`
	Page          int    `form:"page"`
	Limit         int    `form:"limit"`
}

// Normalize clamps paging values into range.
func (r *ProductListRequest) Normalize() {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.Limit < 1 {
		r.Limit = defaultPageLimit
	}
	if r.Limit > maxPageLimit {
		r.Limit = maxPageLimit
	}
}

// ProductResponse is one page of products.
type ProductResponse struct {
	Products   []Product  `json:"products"`
	Pagination Pagination `json:"pagination"`
}

// Pagination describes the page that was returned.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

func withCatalogTree(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("main_image DESC, id ASC")
		}).
		Preload("Variants", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Preload("Variants.Sizes", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Preload("Variants.Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("main_image DESC, id ASC")
		})
}

// GetProducts lists products with their variants, images and sizes.
func (s *Service) GetProducts(ctx context.Context, req *ProductListRequest) (*ProductResponse, error) {
	req.Normalize()

	query := s.db.WithContext(ctx).Model(&Product{})
	if req.CategoryID > 0 {
		query = query.Where("category_id = ?", req.CategoryID)
	}
	if req.SubCategoryID > 0 {
		query = query.Where("sub_category_id = ?", req.SubCategoryID)
	}
	if req.Gender != "" {
		if !req.Gender.Valid() {
			return nil, apperror.Validation(apperror.KindOutOfRange, "gender must be one of m, f, b")
		}
		query = query.Where("gender = ?", req.Gender)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	var products []Product
	offset := (req.Page - 1) * req.Limit
	if err := withCatalogTree(query).Order("id ASC").Offset(offset).Limit(req.Limit).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve products: %w", err)
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	return &ProductResponse{
		Products: products,
		Pagination: Pagination{
			Page:       req.Page,
			Limit:      req.Limit,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    req.Page < totalPages,
			HasPrev:    req.Page > 1,
		},
	}, nil
}

// GetProduct retrieves a single product by ID
func (s *Service) GetProduct(ctx context.Context, id uint) (*Product, error) {
	var product Product
	err := withCatalogTree(s.db.WithContext(ctx)).
		Preload("Category").
		Preload("SubCategory").
		Where("id = ?", id).
		First(&product).Error
	if err != nil {
		if dbutil.IsNotFound(err) {
			return nil, apperror.NotFound("product %d not found", id)
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", err)
	}
	return &product, nil
}

// GetProductsByCategory lists every product of a category.
func (s *Service) GetProductsByCategory(ctx context.Context, categoryID uint) ([]Product, error) {
	if err := s.ensureExists(ctx, &Category{}, categoryID, "category"); err != nil {
		return nil, err
	}

	var products []Product
	if err := withCatalogTree(s.db.WithContext(ctx)).
		Where("category_id = ?", categoryID).
		Order("id ASC").
		Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve products: %w", err)
	}
	return products, nil
}

// GetProductsBySubCategory lists every product of a subcategory.
func (s *Service) GetProductsBySubCategory(ctx context.Context, subCategoryID uint) ([]Product, error) {
	if err := s.ensureExists(ctx, &SubCategory{}, subCategoryID, "subcategory"); err != nil {
		return nil, err
	}

	var products []Product
	if err := withCatalogTree(s.db.WithContext(ctx)).
		Where("sub_category_id = ?", subCategoryID).
		Order("id ASC").
		Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve products: %w", err)
	}
	return products, nil
}

// GetVariant returns a variant with its sizes, images and parent product.
func (s *Service) GetVariant(ctx context.Context, id uint) (*ProductVariant, error) {
	var variant ProductVariant
	err := s.db.WithContext(ctx).
		Preload("Sizes").
		Preload("Images").
		Preload("Product").
		Preload("Product.Images").
		Where("id = ?", id).
		First(&variant).Error
	if err != nil {
		if dbutil.IsNotFound(err) {
			return nil, apperror.NotFound("variant %d not found", id)
		}
		return nil, fmt.Errorf("failed to retrieve variant: %w", err)
	}
	return &variant, nil
}

// GetSize returns a single size row.
func (s *Service) GetSize(ctx context.Context, id uint) (*ProductVariantSize, error) {
	var size ProductVariantSize
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&size).Error; err != nil {
		if dbutil.IsNotFound(err) {
			return nil, apperror.NotFound("size %d not found", id)
		}
		return nil, fmt.Errorf("failed to retrieve size: %w", err)
	}
	return &size, nil
}

func (s *Service) ensureExists(ctx context.Context, model interface{}, id uint, name string) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to look up %s: %w", name, err)
	}
	if count == 0 {
		return apperror.NotFound("%s %d not found", name, id)
	}
	return nil
}
