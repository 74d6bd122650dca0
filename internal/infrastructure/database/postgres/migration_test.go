package postgres

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/domain/user"
	"github.com/your-org/storefront-backend/internal/domain/wishlist"
	"github.com/your-org/storefront-backend/internal/pkg/dbutil"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newMigratedDB(t *testing.T) (*gorm.DB, *Migration) {
	t.Helper()

	dsn := "file:migration_" + uuid.NewString() + "?mode=memory&cache=shared&_foreign_keys=on"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	logger, _ := test.NewNullLogger()
	m := NewMigration(db, logger)
	require.NoError(t, m.RunAutoMigrations())
	require.NoError(t, m.CreateIndexes())
	return db, m
}

func TestMigrationCreatesAllTables(t *testing.T) {
	db, _ := newMigratedDB(t)

	for _, table := range []string{
		"users", "categories", "sub_categories", "products", "product_variants",
		"product_variant_sizes", "product_images", "ratings", "cart_items", "wishlist_items",
	} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}

func TestIdentityIndexesTreatMissingSizeAsValue(t *testing.T) {
	db, _ := newMigratedDB(t)

	u := user.User{Username: "ann", Email: "ann@example.com", Password: "x"}
	require.NoError(t, db.Create(&u).Error)
	p := product.Product{Title: "Tee", Category: &product.Category{Title: "Apparel", Slug: "apparel"}}
	require.NoError(t, db.Create(&p).Error)
	v := product.ProductVariant{ProductID: p.ID, Color: "red", Price: decimal.NewFromInt(10)}
	require.NoError(t, db.Create(&v).Error)
	size := product.ProductVariantSize{VariantID: &v.ID, Size: "M"}
	require.NoError(t, db.Create(&size).Error)

	require.NoError(t, db.Create(&cart.CartItem{UserID: u.ID, VariantID: v.ID, Quantity: 1}).Error)
	require.NoError(t, db.Create(&cart.CartItem{UserID: u.ID, VariantID: v.ID, SizeID: &size.ID, Quantity: 1}).Error)

	err := db.Create(&cart.CartItem{UserID: u.ID, VariantID: v.ID, Quantity: 3}).Error
	require.Error(t, err)
	assert.True(t, dbutil.IsUniqueViolation(err))

	require.NoError(t, db.Create(&wishlist.WishlistItem{UserID: u.ID, VariantID: v.ID}).Error)
	err = db.Create(&wishlist.WishlistItem{UserID: u.ID, VariantID: v.ID}).Error
	assert.True(t, dbutil.IsUniqueViolation(err))
}

func TestSeedInitialDataIsIdempotent(t *testing.T) {
	db, m := newMigratedDB(t)

	require.NoError(t, m.SeedInitialData())
	require.NoError(t, m.SeedInitialData())

	var categories, users, variants int64
	require.NoError(t, db.Model(&product.Category{}).Count(&categories).Error)
	require.NoError(t, db.Model(&user.User{}).Count(&users).Error)
	require.NoError(t, db.Model(&product.ProductVariant{}).Count(&variants).Error)
	assert.Equal(t, int64(2), categories)
	assert.Equal(t, int64(1), users)
	assert.Equal(t, int64(3), variants)

	var demo user.User
	require.NoError(t, db.Where("username = ?", "demo").First(&demo).Error)
	assert.True(t, demo.IsActive)

	assert.NoError(t, m.GetTableInfo())
}

func TestDeletingProductCascadesToCartAndWishlist(t *testing.T) {
	db, _ := newMigratedDB(t)

	u := user.User{Username: "bob", Email: "bob@example.com", Password: "x"}
	require.NoError(t, db.Create(&u).Error)
	p := product.Product{Title: "Hoodie", Category: &product.Category{Title: "Apparel", Slug: "apparel"}}
	require.NoError(t, db.Create(&p).Error)
	v := product.ProductVariant{ProductID: p.ID, Color: "grey", Price: decimal.NewFromInt(40)}
	require.NoError(t, db.Create(&v).Error)
	size := product.ProductVariantSize{VariantID: &v.ID, Size: "L"}
	require.NoError(t, db.Create(&size).Error)

	require.NoError(t, db.Create(&cart.CartItem{UserID: u.ID, VariantID: v.ID, Quantity: 1}).Error)
	require.NoError(t, db.Create(&cart.CartItem{UserID: u.ID, VariantID: v.ID, SizeID: &size.ID, Quantity: 2}).Error)
	require.NoError(t, db.Create(&wishlist.WishlistItem{UserID: u.ID, VariantID: v.ID, SizeID: &size.ID}).Error)

	require.NoError(t, db.Delete(&product.Product{}, p.ID).Error)

	counts := map[string]interface{}{
		"variants":       &product.ProductVariant{},
		"sizes":          &product.ProductVariantSize{},
		"cart items":     &cart.CartItem{},
		"wishlist items": &wishlist.WishlistItem{},
	}
	for name, model := range counts {
		var n int64
		require.NoError(t, db.Model(model).Count(&n).Error)
		assert.Zero(t, n, name)
	}

	var users int64
	require.NoError(t, db.Model(&user.User{}).Count(&users).Error)
	assert.Equal(t, int64(1), users)
}
