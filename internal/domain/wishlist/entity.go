package wishlist

import (
	"time"

	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/domain/user"
)

// WishlistItem marks a (user, variant, size) as wanted. Adding it again
// only refreshes UpdatedAt.
type WishlistItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	VariantID uint      `gorm:"not null;index" json:"variant_id"`
	SizeID    *uint     `gorm:"index" json:"size_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User    *user.User                  `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Variant *product.ProductVariant     `gorm:"foreignKey:VariantID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"variant,omitempty"`
	Size    *product.ProductVariantSize `gorm:"foreignKey:SizeID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"size,omitempty"`
}

// TableName overrides the table name
func (WishlistItem) TableName() string {
	return "wishlist_items"
}

// ItemKey identifies a wishlist entry.
type ItemKey struct {
	VariantID uint  `form:"variant_id" json:"variant_id" binding:"required,min=1"`
	SizeID    *uint `form:"size_id" json:"size_id"`
}

// AddToWishlistResult reports the stored item and whether it was new.
type AddToWishlistResult struct {
	Item    *WishlistItem `json:"item"`
	Created bool          `json:"created"`
}

// MoveToCartRequest moves a wishlist entry into the cart.
type MoveToCartRequest struct {
	VariantID uint  `json:"variant_id" binding:"required,min=1"`
	SizeID    *uint `json:"size_id"`
	Quantity  *int  `json:"quantity"`
}

// WishlistResponse is the caller's wishlist.
type WishlistResponse struct {
	Items []WishlistItem `json:"items"`
	Count int            `json:"count"`
}
