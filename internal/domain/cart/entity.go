// internal/domain/cart/entity.go
package cart

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/domain/user"
)

// CartItem is one line of a user's cart. (user, variant, size) is unique,
// with a missing size counted as its own value.
type CartItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	VariantID uint      `gorm:"not null;index" json:"variant_id"`
	SizeID    *uint     `gorm:"index" json:"size_id"`
	Quantity  int       `gorm:"not null;default:1" json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User    *user.User                  `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Variant *product.ProductVariant     `gorm:"foreignKey:VariantID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"variant,omitempty"`
	Size    *product.ProductVariantSize `gorm:"foreignKey:SizeID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"size,omitempty"`
}

// TableName overrides the table name
func (CartItem) TableName() string {
	return "cart_items"
}

// LineTotal is the discounted unit price times quantity. Zero when the
// variant was not loaded.
func (c *CartItem) LineTotal() decimal.Decimal {
	if c.Variant == nil {
		return decimal.Zero
	}
	return c.Variant.DiscountedPrice().Mul(decimal.NewFromInt(int64(c.Quantity)))
}

// CartTotals represents calculated cart totals
type CartTotals struct {
	ItemCount     int             `json:"item_count"`     // Number of lines
	TotalQuantity int             `json:"total_quantity"` // Sum of all quantities
	SubTotal      decimal.Decimal `json:"sub_total"`
}

// CartResponse is the caller's cart with totals.
type CartResponse struct {
	Items  []CartItem `json:"items"`
	Totals CartTotals `json:"totals"`
}

// AddToCartRequest adds quantity units of a variant, optionally in a size.
// A missing quantity means one unit.
type AddToCartRequest struct {
	VariantID uint  `json:"variant_id" binding:"required,min=1"`
	SizeID    *uint `json:"size_id"`
	Quantity  *int  `json:"quantity"`
}

// Units resolves the requested quantity.
func (r *AddToCartRequest) Units() int {
	if r.Quantity == nil {
		return 1
	}
	return *r.Quantity
}

// UpdateCartItemRequest sets the quantity of an existing line.
type UpdateCartItemRequest struct {
	VariantID uint  `json:"variant_id" binding:"required,min=1"`
	SizeID    *uint `json:"size_id"`
	Quantity  int   `json:"quantity" binding:"required,min=1"`
}

// LineKey identifies a cart line for removal.
type LineKey struct {
	VariantID uint  `form:"variant_id" json:"variant_id" binding:"required,min=1"`
	SizeID    *uint `form:"size_id" json:"size_id"`
}
