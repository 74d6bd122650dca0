// internal/domain/product/entity.go
package product

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/storefront-backend/internal/domain/user"
	"gorm.io/gorm"
)

// Gender tags who a product is cut for.
type Gender string

const (
	GenderMale   Gender = "m"
	GenderFemale Gender = "f"
	GenderBoth   Gender = "b"
)

// Valid reports whether g is one of the known tags.
func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderBoth:
		return true
	}
	return false
}

// Category represents product categories
type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"not null;size:255" json:"title"`
	Image     string    `gorm:"size:500" json:"img"`
	Slug      string    `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	ShortDesc string    `gorm:"size:500" json:"short_desc"`
	LongDesc  string    `gorm:"type:text" json:"long_desc"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	SubCategories []SubCategory `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"subcategories,omitempty"`
}

// SubCategory belongs to exactly one Category.
type SubCategory struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Title      string    `gorm:"not null;size:255" json:"title"`
	ShortDesc  string    `gorm:"size:500" json:"short_desc"`
	LongDesc   string    `gorm:"type:text" json:"long_desc"`
	CategoryID uint      `gorm:"not null;index" json:"category_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Product represents the product entity
type Product struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Title         string    `gorm:"not null;size:255" json:"title"`
	ShortDesc     string    `gorm:"size:500" json:"short_desc"`
	LongDesc      string    `gorm:"type:text" json:"long_desc"`
	CategoryID    uint      `gorm:"not null;index" json:"category_id"`
	SubCategoryID *uint     `gorm:"index" json:"subcategory_id"`
	Gender        Gender    `gorm:"not null;size:1;default:'b'" json:"gender"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// Relationships
	Category    *Category        `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"category,omitempty"`
	SubCategory *SubCategory     `gorm:"foreignKey:SubCategoryID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"subcategory,omitempty"`
	Variants    []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"variants,omitempty"`
	Images      []ProductImage   `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"images,omitempty"`
	Ratings     []Rating         `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

// BeforeSave rejects unknown gender tags.
func (p *Product) BeforeSave(tx *gorm.DB) error {
	if p.Gender == "" {
		p.Gender = GenderBoth
	}
	if !p.Gender.Valid() {
		return fmt.Errorf("invalid gender %q", p.Gender)
	}
	return nil
}

// ProductVariant is one sellable color of a product.
type ProductVariant struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	ProductID uint            `gorm:"not null;index" json:"product_id"`
	Color     string          `gorm:"size:100" json:"color"`
	Price     decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	Stock     int             `gorm:"not null;default:0" json:"stock"`
	Discount  int             `gorm:"not null;default:0" json:"discount"` // percent
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`

	Product *Product             `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Sizes   []ProductVariantSize `gorm:"foreignKey:VariantID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"sizes,omitempty"`
	Images  []ProductImage       `gorm:"foreignKey:VariantID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"images,omitempty"`
}

// DiscountedPrice applies the discount percentage, rounded to cents.
func (v *ProductVariant) DiscountedPrice() decimal.Decimal {
	discount := v.Discount
	if discount <= 0 {
		return v.Price.Round(2)
	}
	if discount > 100 {
		discount = 100
	}
	return v.Price.
		Mul(decimal.NewFromInt(int64(100 - discount))).
		Div(decimal.NewFromInt(100)).
		Round(2)
}

// InStock reports whether any units are left.
func (v *ProductVariant) InStock() bool {
	return v.Stock > 0
}

// ProductVariantSize is a size label, optionally tied to a variant.
type ProductVariantSize struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	VariantID *uint     `gorm:"index" json:"variant_id"`
	Size      string    `gorm:"not null;size:50" json:"size"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProductImage belongs to a product and optionally to one of its variants.
type ProductImage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProductID uint      `gorm:"not null;index" json:"product_id"`
	VariantID *uint     `gorm:"index" json:"variant_id"`
	Color     string    `gorm:"size:100" json:"color"`
	MainImage bool      `gorm:"not null;default:false" json:"main_image"`
	Image     string    `gorm:"not null;size:500" json:"image"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Rating is an append-only product review.
type Rating struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProductID uint      `gorm:"not null;index" json:"product_id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Stars     int       `gorm:"not null" json:"stars"`
	Comment   *string   `gorm:"type:text" json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User *user.User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

func (Category) TableName() string           { return "categories" }
func (SubCategory) TableName() string        { return "sub_categories" }
func (Product) TableName() string            { return "products" }
func (ProductVariant) TableName() string     { return "product_variants" }
func (ProductVariantSize) TableName() string { return "product_variant_sizes" }
func (ProductImage) TableName() string       { return "product_images" }
func (Rating) TableName() string             { return "ratings" }
