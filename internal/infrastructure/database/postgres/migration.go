// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/domain/user"
	"github.com/your-org/storefront-backend/internal/domain/wishlist"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB, logger *logrus.Logger) *Migration {
	return &Migration{
		db:     db,
		logger: logger,
	}
}

// Models lists every persisted model in dependency order.
func Models() []interface{} {
	return []interface{}{
		// Accounts
		&user.User{},

		// Catalog
		&product.Category{},
		&product.SubCategory{},
		&product.Product{},
		&product.ProductVariant{},
		&product.ProductVariantSize{},
		&product.ProductImage{},
		&product.Rating{},

		// Per-user collections
		&cart.CartItem{},
		&wishlist.WishlistItem{},
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	m.logger.Info("running database auto-migrations")

	for _, model := range Models() {
		m.logger.Debugf("migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	m.logger.Info("database auto-migrations completed")
	return nil
}

// identityIndexes enforce one row per (user, variant, size) with a missing
// size counted as its own value. The collections depend on them.
var identityIndexes = []string{
	"CREATE UNIQUE INDEX IF NOT EXISTS idx_cart_items_identity ON cart_items (user_id, variant_id, COALESCE(size_id, 0))",
	"CREATE UNIQUE INDEX IF NOT EXISTS idx_wishlist_items_identity ON wishlist_items (user_id, variant_id, COALESCE(size_id, 0))",
}

var lookupIndexes = []string{
	// Users
	"CREATE INDEX IF NOT EXISTS idx_users_active ON users (is_active)",
	"CREATE INDEX IF NOT EXISTS idx_users_created_at ON users (created_at DESC)",

	// Catalog
	"CREATE INDEX IF NOT EXISTS idx_products_category_gender ON products (category_id, gender)",
	"CREATE INDEX IF NOT EXISTS idx_products_created_at ON products (created_at DESC)",
	"CREATE INDEX IF NOT EXISTS idx_product_images_product_main ON product_images (product_id, main_image)",
	"CREATE INDEX IF NOT EXISTS idx_ratings_product_created ON ratings (product_id, created_at DESC)",

	// Collections
	"CREATE INDEX IF NOT EXISTS idx_cart_items_user_created ON cart_items (user_id, created_at)",
	"CREATE INDEX IF NOT EXISTS idx_wishlist_items_user_updated ON wishlist_items (user_id, updated_at DESC)",
}

// CreateIndexes creates the identity indexes, then best-effort lookup indexes.
func (m *Migration) CreateIndexes() error {
	m.logger.Info("creating database indexes")

	for _, stmt := range identityIndexes {
		if err := m.db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to create identity index: %w", err)
		}
	}

	created, failed := 0, 0
	for _, stmt := range lookupIndexes {
		if err := m.db.Exec(stmt).Error; err != nil {
			m.logger.WithError(err).Warn("failed to create index")
			failed++
			continue
		}
		created++
	}

	m.logger.WithFields(logrus.Fields{
		"created": created + len(identityIndexes),
		"failed":  failed,
	}).Info("database indexes ready")
	return nil
}

// SeedInitialData inserts a small demo catalog and an active demo account.
// Each step is skipped when its rows already exist.
func (m *Migration) SeedInitialData() error {
	m.logger.Info("seeding initial data")

	if err := m.seedCatalog(); err != nil {
		return fmt.Errorf("failed to seed catalog: %w", err)
	}
	if err := m.seedDemoUser(); err != nil {
		return fmt.Errorf("failed to seed demo user: %w", err)
	}

	m.logger.Info("initial data seeded")
	return nil
}

func (m *Migration) seedCatalog() error {
	var existing int64
	if err := m.db.Model(&product.Category{}).Count(&existing).Error; err != nil {
		return err
	}
	if existing > 0 {
		m.logger.Debug("catalog already seeded")
		return nil
	}

	return m.db.Transaction(func(tx *gorm.DB) error {
		apparel := product.Category{
			Title:     "Apparel",
			Slug:      "apparel",
			ShortDesc: "Shirts, hoodies and everything in between",
			SubCategories: []product.SubCategory{
				{Title: "T-Shirts", ShortDesc: "Everyday cotton tees"},
				{Title: "Hoodies", ShortDesc: "Warm layers"},
			},
		}
		accessories := product.Category{
			Title:     "Accessories",
			Slug:      "accessories",
			ShortDesc: "Caps, bags and small goods",
		}
		for _, c := range []*product.Category{&apparel, &accessories} {
			if err := tx.Create(c).Error; err != nil {
				return err
			}
		}

		tees := apparel.SubCategories[0].ID
		products := []product.Product{
			{
				Title:         "Classic Tee",
				ShortDesc:     "Heavyweight cotton tee",
				CategoryID:    apparel.ID,
				SubCategoryID: &tees,
				Gender:        product.GenderBoth,
				Variants: []product.ProductVariant{
					{
						Color: "black",
						Price: decimal.RequireFromString("25.00"),
						Stock: 40,
						Sizes: []product.ProductVariantSize{{Size: "S"}, {Size: "M"}, {Size: "L"}},
					},
					{
						Color:    "white",
						Price:    decimal.RequireFromString("25.00"),
						Stock:    25,
						Discount: 10,
						Sizes:    []product.ProductVariantSize{{Size: "M"}, {Size: "L"}},
					},
				},
			},
			{
				Title:      "Canvas Cap",
				ShortDesc:  "One size fits most",
				CategoryID: accessories.ID,
				Gender:     product.GenderBoth,
				Variants: []product.ProductVariant{
					{Color: "olive", Price: decimal.RequireFromString("18.50"), Stock: 60},
				},
			},
		}
		for i := range products {
			if err := tx.Create(&products[i]).Error; err != nil {
				return err
			}
			for _, v := range products[i].Variants {
				variantID := v.ID
				img := product.ProductImage{
					ProductID: products[i].ID,
					VariantID: &variantID,
					Color:     v.Color,
					MainImage: true,
					Image:     fmt.Sprintf("/media/products/%d/%s.jpg", products[i].ID, v.Color),
				}
				if err := tx.Create(&img).Error; err != nil {
					return err
				}
			}
		}

		m.logger.WithField("products", len(products)).Info("seeded demo catalog")
		return nil
	})
}

func (m *Migration) seedDemoUser() error {
	var existing user.User
	err := m.db.Where("username = ?", "demo").First(&existing).Error
	if err == nil {
		m.logger.WithField("user_id", existing.ID).Debug("demo user already exists")
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("demo123"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	demo := user.User{
		Username: "demo",
		Email:    "demo@example.com",
		Password: string(hashed),
		IsActive: true,
	}
	if err := m.db.Create(&demo).Error; err != nil {
		return err
	}

	m.logger.WithField("user_id", demo.ID).Info("created demo user demo/demo123")
	return nil
}

// GetTableInfo logs the row count of every table.
func (m *Migration) GetTableInfo() error {
	tables, err := m.db.Migrator().GetTables()
	if err != nil {
		return err
	}

	var total int64
	for _, table := range tables {
		var count int64
		if err := m.db.Table(table).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to count %s: %w", table, err)
		}
		total += count
		m.logger.WithFields(logrus.Fields{"table": table, "rows": count}).Debug("table info")
	}

	m.logger.WithFields(logrus.Fields{"tables": len(tables), "rows": total}).Info("database table summary")
	return nil
}
