package cart_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/pkg/apperror"
	"github.com/your-org/storefront-backend/internal/testutil"
	"gorm.io/gorm"
)

func intPtr(v int) *int { return &v }

func newCart(t *testing.T) (*cart.Service, *gorm.DB, *testutil.Catalog, uint) {
	t.Helper()
	db := testutil.NewDB(t)
	catalog := testutil.SeedCatalog(t, db)
	u := testutil.SeedUser(t, db, "shopper", true)
	return cart.NewService(db), db, catalog, u.ID
}

func TestAddToCartMergesSameKey(t *testing.T) {
	svc, db, catalog, userID := newCart(t)
	ctx := context.Background()

	first, err := svc.AddToCart(ctx, userID, &cart.AddToCartRequest{VariantID: catalog.Variant.ID, SizeID: &catalog.Small.ID, Quantity: intPtr(2)})
	require.NoError(t, err)
	assert.Equal(t, 2, first.Quantity)

	second, err := svc.AddToCart(ctx, userID, &cart.AddToCartRequest{VariantID: catalog.Variant.ID, SizeID: &catalog.Small.ID, Quantity: intPtr(3)})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 5, second.Quantity)

	var lines int64
	require.NoError(t, db.Model(&cart.CartItem{}).Where("user_id = ?", userID).Count(&lines).Error)
	assert.Equal(t, int64(1), lines)
}

func TestAddToCartDefaultsToOneUnit(t *testing.T) {
	svc, _, catalog, userID := newCart(t)

	line, err := svc.AddToCart(context.Background(), userID, &cart.AddToCartRequest{VariantID: catalog.Variant.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, line.Quantity)
	assert.Nil(t, line.SizeID)
}

func TestAddToCartKeepsSizelessLineSeparate(t *testing.T) {
	svc, _, catalog, userID := newCart(t)
	ctx := context.Background()

	_, err := svc.AddToCart(ctx, userID, &cart.AddToCartRequest{VariantID: catalog.Variant.ID})
	require.NoError(t, err)
	_, err = svc.AddToCart(ctx, userID, &cart.AddToCartRequest{VariantID: catalog.Variant.ID, SizeID: &catalog.Small.ID})
	require.NoError(t, err)
	_, err = svc.AddToCart(ctx, userID, &cart.AddToCartRequest{VariantID: catalog.Variant.ID, SizeID: &catalog.Large.ID})
	require.NoError(t, err)
	_, err = svc.AddToCart(ctx, userID, &cart.AddToCartRequest{VariantID: catalog.Variant.ID, Quantity: intPtr(4)})
	require.NoError(t, err)

	resp, err := svc.GetCart(ctx, userID)
	require.NoError(t, err)
	require.Len(t, resp.Items, 3)
	assert.Nil(t, resp.Items[0].SizeID)
	assert.Equal(t, 5, resp.Items[0].Quantity)
	assert.Equal(t, 7, resp.Totals.TotalQuantity)
}

func TestAddToCartRejectsBadInput(t *testing.T) {
	svc, _, catalog, userID := newCart(t)
	ctx := context.Background()

	_, err := svc.AddToCart(ctx, userID, &cart.AddToCartRequest{VariantID: catalog.Variant.ID, Quantity: intPtr(0)})
	assert.Equal(t, apperror.CodeValidation, apperror.CodeOf(err))

	_, err = svc.AddToCart(ctx, userID, &cart.AddToCartRequest{VariantID: 9999})
	assert.Equal(t, apperror.CodeNotFound, apperror.CodeOf(err))

	missing := uint(9999)
	_, err = svc.AddToCart(ctx, userID, &cart.AddToCartRequest{VariantID: catalog.Variant.ID, SizeID: &missing})
	assert.Equal(t, apperror.CodeNotFound, apperror.CodeOf(err))

	_, err = svc.AddToCart(ctx, userID+50, &cart.AddToCartRequest{VariantID: catalog.Variant.ID})
	assert.Equal(t, apperror.CodeNotFound, apperror.CodeOf(err))

	_, err = svc.AddToCart(ctx, userID, &cart.AddToCartRequest{VariantID: catalog.Variant.ID, SizeID: &catalog.Other.ID})
	assert.Equal(t, apperror.CodeValidation, apperror.CodeOf(err))
	assert.Equal(t, apperror.KindSizeMismatch, apperror.KindOf(err))
}

func TestUpdateCartSetsQuantityOfExistingLineOnly(t *testing.T) {
	svc, _, catalog, userID := newCart(t)
	ctx := context.Background()

	_, err := svc.UpdateCart(ctx, userID, &cart.UpdateCartItemRequest{VariantID: catalog.Variant.ID, Quantity: 3})
	assert.Equal(t, apperror.CodeNotFound, apperror.CodeOf(err))

	resp, err := svc.GetCart(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, resp.Items)

	_, err = svc.AddToCart(ctx, userID, &cart.AddToCartRequest{VariantID: catalog.Variant.ID, Quantity: intPtr(5)})
	require.NoError(t, err)

	line, err := svc.UpdateCart(ctx, userID, &cart.UpdateCartItemRequest{VariantID: catalog.Variant.ID, Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, line.Quantity)

	_, err = svc.UpdateCart(ctx, userID, &cart.UpdateCartItemRequest{VariantID: catalog.Variant.ID, Quantity: 0})
	assert.Equal(t, apperror.CodeValidation, apperror.CodeOf(err))
}

func TestRemoveAndEmptyCart(t *testing.T) {
	svc, _, catalog, userID := newCart(t)
	ctx := context.Background()

	err := svc.RemoveFromCart(ctx, userID, cart.LineKey{VariantID: catalog.Variant.ID})
	assert.Equal(t, apperror.CodeNotFound, apperror.CodeOf(err))

	_, err = svc.AddToCart(ctx, userID, &cart.AddToCartRequest{VariantID: catalog.Variant.ID})
	require.NoError(t, err)
	_, err = svc.AddToCart(ctx, userID, &cart.AddToCartRequest{VariantID: catalog.Variant.ID, SizeID: &catalog.Large.ID})
	require.NoError(t, err)
	_, err = svc.AddToCart(ctx, userID, &cart.AddToCartRequest{VariantID: catalog.Discounted.ID})
	require.NoError(t, err)

	// Removing the sizeless line leaves the sized one alone.
	require.NoError(t, svc.RemoveFromCart(ctx, userID, cart.LineKey{VariantID: catalog.Variant.ID}))
	count, err := svc.GetCartItemCount(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	removed, err := svc.EmptyCart(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	removed, err = svc.EmptyCart(ctx, userID)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestGetCartTotalsApplyDiscount(t *testing.T) {
	svc, _, catalog, userID := newCart(t)
	ctx := context.Background()

	_, err := svc.AddToCart(ctx, userID, &cart.AddToCartRequest{VariantID: catalog.Variant.ID, Quantity: intPtr(2)})
	require.NoError(t, err)
	_, err = svc.AddToCart(ctx, userID, &cart.AddToCartRequest{VariantID: catalog.Discounted.ID, SizeID: &catalog.Other.ID})
	require.NoError(t, err)

	resp, err := svc.GetCart(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Totals.ItemCount)
	assert.Equal(t, 3, resp.Totals.TotalQuantity)
	// 2 x 20.00 + 1 x 45.00
	assert.True(t, decimal.RequireFromString("85.00").Equal(resp.Totals.SubTotal), resp.Totals.SubTotal.String())
}

func TestAddToCartTouchesUpdatedAt(t *testing.T) {
	db := testutil.NewDB(t)
	catalog := testutil.SeedCatalog(t, db)
	u := testutil.SeedUser(t, db, "clock", true)

	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	svc := cart.NewService(db, cart.WithClock(func() time.Time { return now }))
	ctx := context.Background()

	first, err := svc.AddToCart(ctx, u.ID, &cart.AddToCartRequest{VariantID: catalog.Variant.ID})
	require.NoError(t, err)

	now = now.Add(time.Hour)
	second, err := svc.AddToCart(ctx, u.ID, &cart.AddToCartRequest{VariantID: catalog.Variant.ID})
	require.NoError(t, err)

	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))
	assert.True(t, second.CreatedAt.Equal(first.CreatedAt))
}

func TestAddToCartRetriesAfterLosingInsertRace(t *testing.T) {
	svc, db, catalog, userID := newCart(t)
	ctx := context.Background()

	testutil.FailInserts(t, db, "cart_items", 1, func(db *gorm.DB) error {
		return db.Create(&cart.CartItem{
			UserID:    userID,
			VariantID: catalog.Variant.ID,
			SizeID:    &catalog.Small.ID,
			Quantity:  4,
		}).Error
	})

	line, err := svc.AddToCart(ctx, userID, &cart.AddToCartRequest{VariantID: catalog.Variant.ID, SizeID: &catalog.Small.ID, Quantity: intPtr(2)})
	require.NoError(t, err)
	assert.Equal(t, 6, line.Quantity)

	var lines int64
	require.NoError(t, db.Model(&cart.CartItem{}).Where("user_id = ?", userID).Count(&lines).Error)
	assert.Equal(t, int64(1), lines)
}

func TestAddToCartReportsConflictWhenRetryAlsoCollides(t *testing.T) {
	svc, db, catalog, userID := newCart(t)

	testutil.FailInserts(t, db, "cart_items", 2, nil)

	_, err := svc.AddToCart(context.Background(), userID, &cart.AddToCartRequest{VariantID: catalog.Variant.ID})
	require.Error(t, err)
	assert.Equal(t, apperror.CodeConflict, apperror.CodeOf(err))

	var lines int64
	require.NoError(t, db.Model(&cart.CartItem{}).Where("user_id = ?", userID).Count(&lines).Error)
	assert.Zero(t, lines)
}
