// internal/domain/cart/service.go
package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/domain/user"
	"github.com/your-org/storefront-backend/internal/pkg/apperror"
	"github.com/your-org/storefront-backend/internal/pkg/dbutil"
	"github.com/your-org/storefront-backend/internal/pkg/metrics"
	"gorm.io/gorm"
)

// Service handles cart business logic
type Service struct {
	db      *gorm.DB
	now     func() time.Time
	metrics *metrics.Metrics
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source used for line timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithMetrics records upsert outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService creates a new cart service
func NewService(db *gorm.DB, opts ...Option) *Service {
	s := &Service{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WithTx returns a copy of the service that runs on tx.
func (s *Service) WithTx(tx *gorm.DB) *Service {
	clone := *s
	clone.db = tx
	return &clone
}

// lineScope matches exactly one (user, variant, size) key. A nil size only
// matches lines without a size.
func lineScope(db *gorm.DB, userID, variantID uint, sizeID *uint) *gorm.DB {
	q := db.Where("user_id = ? AND variant_id = ?", userID, variantID)
	if sizeID == nil {
		return q.Where("size_id IS NULL")
	}
	return q.Where("size_id = ?", *sizeID)
}

// GetCart returns every line of the user's cart with variant and size attached.
func (s *Service) GetCart(ctx context.Context, userID uint) (*CartResponse, error) {
	var items []CartItem
	if err := s.db.WithContext(ctx).
		Preload("Variant").
		Preload("Size").
		Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve cart: %w", err)
	}

	return &CartResponse{
		Items:  items,
		Totals: calculateTotals(items),
	}, nil
}

// AddToCart adds units to the matching line, creating it if needed.
func (s *Service) AddToCart(ctx context.Context, userID uint, req *AddToCartRequest) (*CartItem, error) {
	quantity := req.Units()
	if quantity < 1 {
		return nil, apperror.Validation(apperror.KindOutOfRange, "quantity must be at least 1")
	}
	if err := s.checkReferences(ctx, userID, req.VariantID, req.SizeID); err != nil {
		return nil, err
	}

	lineID, created, err := s.upsertLine(ctx, userID, req.VariantID, req.SizeID, quantity)
	if dbutil.IsUniqueViolation(err) {
		// A concurrent insert won; the second pass increments its row.
		s.metrics.Upsert("cart", "retried")
		lineID, created, err = s.upsertLine(ctx, userID, req.VariantID, req.SizeID, quantity)
	}
	if err != nil {
		if dbutil.IsUniqueViolation(err) {
			s.metrics.Upsert("cart", "conflict")
			return nil, apperror.Wrap(apperror.CodeConflict, err, "cart line was modified concurrently")
		}
		return nil, fmt.Errorf("failed to add to cart: %w", err)
	}
	if created {
		s.metrics.Upsert("cart", "created")
	} else {
		s.metrics.Upsert("cart", "incremented")
	}

	return s.getLine(ctx, lineID)
}

func (s *Service) upsertLine(ctx context.Context, userID, variantID uint, sizeID *uint, quantity int) (uint, bool, error) {
	var (
		lineID  uint
		created bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var line CartItem
		err := lineScope(tx, userID, variantID, sizeID).First(&line).Error
		switch {
		case err == nil:
			lineID = line.ID
			return tx.Model(&CartItem{}).
				Where("id = ?", line.ID).
				Updates(map[string]interface{}{
					"quantity":   gorm.Expr("quantity + ?", quantity),
					"updated_at": s.now(),
				}).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			now := s.now()
			line = CartItem{
				UserID:    userID,
				VariantID: variantID,
				SizeID:    sizeID,
				Quantity:  quantity,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := tx.Create(&line).Error; err != nil {
				return err
			}
			lineID, created = line.ID, true
			return nil
		default:
			return err
		}
	})
	return lineID, created, err
}

// UpdateCart sets the quantity of an existing line. It never creates one.
func (s *Service) UpdateCart(ctx context.Context, userID uint, req *UpdateCartItemRequest) (*CartItem, error) {
	if req.Quantity < 1 {
		return nil, apperror.Validation(apperror.KindOutOfRange, "quantity must be at least 1")
	}
	if err := s.checkReferences(ctx, userID, req.VariantID, req.SizeID); err != nil {
		return nil, err
	}

	var line CartItem
	if err := lineScope(s.db.WithContext(ctx), userID, req.VariantID, req.SizeID).First(&line).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("cart item not found")
		}
		return nil, fmt.Errorf("failed to look up cart item: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(&CartItem{}).
		Where("id = ?", line.ID).
		Updates(map[string]interface{}{
			"quantity":   req.Quantity,
			"updated_at": s.now(),
		}).Error; err != nil {
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}

	return s.getLine(ctx, line.ID)
}

// RemoveFromCart deletes the single matching line.
func (s *Service) RemoveFromCart(ctx context.Context, userID uint, key LineKey) error {
	result := lineScope(s.db.WithContext(ctx), userID, key.VariantID, key.SizeID).Delete(&CartItem{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove cart item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("cart item not found")
	}
	return nil
}

// EmptyCart deletes every line of the user's cart and reports how many went.
func (s *Service) EmptyCart(ctx context.Context, userID uint) (int64, error) {
	result := s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&CartItem{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to clear cart: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// GetCartItemCount returns the sum of quantities in the cart.
func (s *Service) GetCartItemCount(ctx context.Context, userID uint) (int, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&CartItem{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count cart items: %w", err)
	}
	return int(total), nil
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

func (s *Service) getLine(ctx context.Context, id uint) (*CartItem, error) {
	var line CartItem
	if err := s.db.WithContext(ctx).
		Preload("Variant").
		Preload("Size").
		Where("id = ?", id).
		First(&line).Error; err != nil {
		return nil, fmt.Errorf("failed to load cart item: %w", err)
	}
	return &line, nil
}

func calculateTotals(items []CartItem) CartTotals {
	totals := CartTotals{
		ItemCount: len(items),
		SubTotal:  decimal.Zero,
	}
	for i := range items {
		totals.TotalQuantity += items[i].Quantity
		totals.SubTotal = totals.SubTotal.Add(items[i].LineTotal())
	}
	return totals
}
