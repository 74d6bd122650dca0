package wishlist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/domain/user"
	"github.com/your-org/storefront-backend/internal/pkg/apperror"
	"github.com/your-org/storefront-backend/internal/pkg/dbutil"
	"github.com/your-org/storefront-backend/internal/pkg/metrics"
	"gorm.io/gorm"
)

// Service handles wishlist business logic
type Service struct {
	db          *gorm.DB
	cartService *cart.Service
	now         func() time.Time
	metrics     *metrics.Metrics
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source used for item timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithMetrics records upsert outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService creates a new wishlist service
func NewService(db *gorm.DB, cartService *cart.Service, opts ...Option) *Service {
	s := &Service{db: db, cartService: cartService, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func itemScope(db *gorm.DB, userID, variantID uint, sizeID *uint) *gorm.DB {
	q := db.Where("user_id = ? AND variant_id = ?", userID, variantID)
	if sizeID == nil {
		return q.Where("size_id IS NULL")
	}
	return q.Where("size_id = ?", *sizeID)
}

// GetWishlist returns the user's wishlist, most recently touched first.
func (s *Service) GetWishlist(ctx context.Context, userID uint) (*WishlistResponse, error) {
	var items []WishlistItem
	if err := s.db.WithContext(ctx).
		Preload("Variant").
		Preload("Variant.Product").
		Preload("Size").
		Where("user_id = ?", userID).
		Order("updated_at DESC, id DESC").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve wishlist items: %w", err)
	}

	return &WishlistResponse{Items: items, Count: len(items)}, nil
}

// AddToWishlist stores the key, or refreshes UpdatedAt if it is already present.
func (s *Service) AddToWishlist(ctx context.Context, userID uint, key ItemKey) (*AddToWishlistResult, error) {
	if err := s.checkReferences(ctx, userID, key.VariantID, key.SizeID); err != nil {
		return nil, err
	}

	itemID, created, err := s.upsertItem(ctx, userID, key)
	if dbutil.IsUniqueViolation(err) {
		// Lost an insert race; the retry touches the winner's row.
		s.metrics.Upsert("wishlist", "retried")
		itemID, created, err = s.upsertItem(ctx, userID, key)
	}
	if err != nil {
		if dbutil.IsUniqueViolation(err) {
			s.metrics.Upsert("wishlist", "conflict")
			return nil, apperror.Wrap(apperror.CodeConflict, err, "wishlist item was modified concurrently")
		}
		return nil, fmt.Errorf("failed to add to wishlist: %w", err)
	}
	if created {
		s.metrics.Upsert("wishlist", "created")
	} else {
		s.metrics.Upsert("wishlist", "touched")
	}

	var item WishlistItem
	if err := s.db.WithContext(ctx).
		Preload("Variant").
		Preload("Size").
		Where("id = ?", itemID).
		First(&item).Error; err != nil {
		return nil, fmt.Errorf("failed to load wishlist item: %w", err)
	}

	return &AddToWishlistResult{Item: &item, Created: created}, nil
}

func (s *Service) upsertItem(ctx context.Context, userID uint, key ItemKey) (uint, bool, error) {
	var (
		itemID  uint
		created bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item WishlistItem
		err := itemScope(tx, userID, key.VariantID, key.SizeID).First(&item).Error
		switch {
		case err == nil:
			itemID = item.ID
			return tx.Model(&WishlistItem{}).
				Where("id = ?", item.ID).
				Update("updated_at", s.now()).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			now := s.now()
			item = WishlistItem{
				UserID:    userID,
				VariantID: key.VariantID,
				SizeID:    key.SizeID,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
			itemID, created = item.ID, true
			return nil
		default:
			return err
		}
	})
	return itemID, created, err
}

// AlreadyInWishlist reports whether the exact key is present.
func (s *Service) AlreadyInWishlist(ctx context.Context, userID uint, key ItemKey) (bool, error) {
	var count int64
	if err := itemScope(s.db.WithContext(ctx).Model(&WishlistItem{}), userID, key.VariantID, key.SizeID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check wishlist: %w", err)
	}
	return count > 0, nil
}

// RemoveFromWishlist deletes the single matching entry.
func (s *Service) RemoveFromWishlist(ctx context.Context, userID uint, key ItemKey) error {
	result := itemScope(s.db.WithContext(ctx), userID, key.VariantID, key.SizeID).Delete(&WishlistItem{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove from wishlist: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("item not found in wishlist")
	}
	return nil
}

// EmptyWishlist deletes every entry of the user's wishlist.
func (s *Service) EmptyWishlist(ctx context.Context, userID uint) (int64, error) {
	result := s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&WishlistItem{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to clear wishlist: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// MoveToCart adds the entry to the cart and drops it from the wishlist in
// one transaction.
func (s *Service) MoveToCart(ctx context.Context, userID uint, req *MoveToCartRequest) (*cart.CartItem, error) {
	key := ItemKey{VariantID: req.VariantID, SizeID: req.SizeID}

	var line *cart.CartItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := itemScope(tx.Model(&WishlistItem{}), userID, key.VariantID, key.SizeID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check wishlist: %w", err)
		}
		if count == 0 {
			return apperror.NotFound("item not found in wishlist")
		}

		var err error
		line, err = s.cartService.WithTx(tx).AddToCart(ctx, userID, &cart.AddToCartRequest{
			VariantID: req.VariantID,
			SizeID:    req.SizeID,
			Quantity:  req.Quantity,
		})
		if err != nil {
			return err
		}

		if err := itemScope(tx, userID, key.VariantID, key.SizeID).Delete(&WishlistItem{}).Error; err != nil {
			return fmt.Errorf("failed to remove from wishlist: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return line, nil
}

func (s *Service) checkReferences(ctx context.Context, userID, variantID uint, sizeID *uint) error {
	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&user.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to look up user: %w", err)
	}
	if count == 0 {
		return apperror.NotFound("user %d not found", userID)
	}

	if err := db.Model(&product.ProductVariant{}).Where("id = ?", variantID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to look up variant: %w", err)
	}
	if count == 0 {
		return apperror.NotFound("variant %d not found", variantID)
	}

	if sizeID == nil {
		return nil
	}
	var size product.ProductVariantSize
	if err := db.Where("id = ?", *sizeID).First(&size).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("size %d not found", *sizeID)
		}
		return fmt.Errorf("failed to look up size: %w", err)
	}
	if size.VariantID != nil && *size.VariantID != variantID {
		return apperror.Validation(apperror.KindSizeMismatch, "size %d does not belong to variant %d", *sizeID, variantID)
	}
	return nil
}
