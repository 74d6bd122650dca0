package wishlist_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/wishlist"
	"github.com/your-org/storefront-backend/internal/pkg/apperror"
	"github.com/your-org/storefront-backend/internal/testutil"
	"gorm.io/gorm"
)

type fixture struct {
	db      *gorm.DB
	svc     *wishlist.Service
	cart    *cart.Service
	catalog *testutil.Catalog
	userID  uint
	now     time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	f := &fixture{
		db:      db,
		catalog: testutil.SeedCatalog(t, db),
		userID:  testutil.SeedUser(t, db, "wisher", true).ID,
		now:     time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return f.now }
	f.cart = cart.NewService(db, cart.WithClock(clock))
	f.svc = wishlist.NewService(db, f.cart, wishlist.WithClock(clock))
	return f
}

func TestAddToWishlistTouchesExistingEntry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	key := wishlist.ItemKey{VariantID: f.catalog.Variant.ID, SizeID: &f.catalog.Small.ID}

	first, err := f.svc.AddToWishlist(ctx, f.userID, key)
	require.NoError(t, err)
	assert.True(t, first.Created)

	f.now = f.now.Add(2 * time.Hour)
	second, err := f.svc.AddToWishlist(ctx, f.userID, key)
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, first.Item.ID, second.Item.ID)
	assert.True(t, second.Item.UpdatedAt.After(first.Item.UpdatedAt))

	resp, err := f.svc.GetWishlist(ctx, f.userID)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Count)
}

func TestGetWishlistOrdersByMostRecentTouch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	older := wishlist.ItemKey{VariantID: f.catalog.Variant.ID}
	newer := wishlist.ItemKey{VariantID: f.catalog.Discounted.ID}

	_, err := f.svc.AddToWishlist(ctx, f.userID, older)
	require.NoError(t, err)
	f.now = f.now.Add(time.Minute)
	_, err = f.svc.AddToWishlist(ctx, f.userID, newer)
	require.NoError(t, err)

	resp, err := f.svc.GetWishlist(ctx, f.userID)
	require.NoError(t, err)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, f.catalog.Discounted.ID, resp.Items[0].VariantID)

	f.now = f.now.Add(time.Minute)
	_, err = f.svc.AddToWishlist(ctx, f.userID, older)
	require.NoError(t, err)

	resp, err = f.svc.GetWishlist(ctx, f.userID)
	require.NoError(t, err)
	assert.Equal(t, f.catalog.Variant.ID, resp.Items[0].VariantID)
	require.NotNil(t, resp.Items[0].Variant)
	require.NotNil(t, resp.Items[0].Variant.Product)
	assert.Equal(t, "Classic Tee", resp.Items[0].Variant.Product.Title)
}

func TestAlreadyInWishlistMatchesExactKey(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.AddToWishlist(ctx, f.userID, wishlist.ItemKey{VariantID: f.catalog.Variant.ID})
	require.NoError(t, err)

	in, err := f.svc.AlreadyInWishlist(ctx, f.userID, wishlist.ItemKey{VariantID: f.catalog.Variant.ID})
	require.NoError(t, err)
	assert.True(t, in)

	in, err = f.svc.AlreadyInWishlist(ctx, f.userID, wishlist.ItemKey{VariantID: f.catalog.Variant.ID, SizeID: &f.catalog.Large.ID})
	require.NoError(t, err)
	assert.False(t, in)
}

func TestRemoveAndEmptyWishlist(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	key := wishlist.ItemKey{VariantID: f.catalog.Variant.ID}

	err := f.svc.RemoveFromWishlist(ctx, f.userID, key)
	assert.Equal(t, apperror.CodeNotFound, apperror.CodeOf(err))

	_, err = f.svc.AddToWishlist(ctx, f.userID, key)
	require.NoError(t, err)
	_, err = f.svc.AddToWishlist(ctx, f.userID, wishlist.ItemKey{VariantID: f.catalog.Discounted.ID})
	require.NoError(t, err)

	require.NoError(t, f.svc.RemoveFromWishlist(ctx, f.userID, key))

	removed, err := f.svc.EmptyWishlist(ctx, f.userID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
}

func TestAddToWishlistRejectsUnknownReferences(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.AddToWishlist(ctx, f.userID, wishlist.ItemKey{VariantID: 4242})
	assert.Equal(t, apperror.CodeNotFound, apperror.CodeOf(err))

	_, err = f.svc.AddToWishlist(ctx, f.userID+7, wishlist.ItemKey{VariantID: f.catalog.Variant.ID})
	assert.Equal(t, apperror.CodeNotFound, apperror.CodeOf(err))

	missing := uint(4242)
	_, err = f.svc.AddToWishlist(ctx, f.userID, wishlist.ItemKey{VariantID: f.catalog.Variant.ID, SizeID: &missing})
	assert.Equal(t, apperror.CodeNotFound, apperror.CodeOf(err))
}

func TestAddToWishlistRejectsSizeOfOtherVariant(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.AddToWishlist(context.Background(), f.userID, wishlist.ItemKey{VariantID: f.catalog.Variant.ID, SizeID: &f.catalog.Other.ID})
	require.Error(t, err)
	assert.Equal(t, apperror.CodeValidation, apperror.CodeOf(err))
	assert.Equal(t, apperror.KindSizeMismatch, apperror.KindOf(err))

	var items int64
	require.NoError(t, f.db.Model(&wishlist.WishlistItem{}).Where("user_id = ?", f.userID).Count(&items).Error)
	assert.Zero(t, items)
}

func TestAddToWishlistRetriesAfterLosingInsertRace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	key := wishlist.ItemKey{VariantID: f.catalog.Variant.ID}
	earlier := f.now.Add(-time.Hour)

	testutil.FailInserts(t, f.db, "wishlist_items", 1, func(db *gorm.DB) error {
		return db.Create(&wishlist.WishlistItem{
			UserID:    f.userID,
			VariantID: key.VariantID,
			CreatedAt: earlier,
			UpdatedAt: earlier,
		}).Error
	})

	res, err := f.svc.AddToWishlist(ctx, f.userID, key)
	require.NoError(t, err)
	assert.False(t, res.Created)
	assert.True(t, res.Item.UpdatedAt.Equal(f.now), res.Item.UpdatedAt.String())

	resp, err := f.svc.GetWishlist(ctx, f.userID)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Count)
}

func TestAddToWishlistReportsConflictWhenRetryAlsoCollides(t *testing.T) {
	f := newFixture(t)

	testutil.FailInserts(t, f.db, "wishlist_items", 2, nil)

	_, err := f.svc.AddToWishlist(context.Background(), f.userID, wishlist.ItemKey{VariantID: f.catalog.Variant.ID})
	require.Error(t, err)
	assert.Equal(t, apperror.CodeConflict, apperror.CodeOf(err))

	resp, err := f.svc.GetWishlist(context.Background(), f.userID)
	require.NoError(t, err)
	assert.Zero(t, resp.Count)
}

func TestMoveToCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	key := wishlist.ItemKey{VariantID: f.catalog.Variant.ID, SizeID: &f.catalog.Large.ID}

	_, err := f.svc.MoveToCart(ctx, f.userID, &wishlist.MoveToCartRequest{VariantID: key.VariantID, SizeID: key.SizeID})
	assert.Equal(t, apperror.CodeNotFound, apperror.CodeOf(err))

	_, err = f.svc.AddToWishlist(ctx, f.userID, key)
	require.NoError(t, err)

	qty := 2
	line, err := f.svc.MoveToCart(ctx, f.userID, &wishlist.MoveToCartRequest{VariantID: key.VariantID, SizeID: key.SizeID, Quantity: &qty})
	require.NoError(t, err)
	assert.Equal(t, 2, line.Quantity)

	in, err := f.svc.AlreadyInWishlist(ctx, f.userID, key)
	require.NoError(t, err)
	assert.False(t, in)

	count, err := f.cart.GetCartItemCount(ctx, f.userID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestMoveToCartRollsBackWhenRemovalFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	key := wishlist.ItemKey{VariantID: f.catalog.Variant.ID, SizeID: &f.catalog.Small.ID}

	_, err := f.svc.AddToWishlist(ctx, f.userID, key)
	require.NoError(t, err)

	removalErr := errors.New("disk full")
	require.NoError(t, f.db.Callback().Delete().Before("gorm:delete").Register("test:fail_wishlist_delete", func(tx *gorm.DB) {
		if tx.Statement.Table == "wishlist_items" {
			_ = tx.AddError(removalErr)
		}
	}))

	_, err = f.svc.MoveToCart(ctx, f.userID, &wishlist.MoveToCartRequest{VariantID: key.VariantID, SizeID: key.SizeID})
	require.ErrorIs(t, err, removalErr)

	count, err := f.cart.GetCartItemCount(ctx, f.userID)
	require.NoError(t, err)
	assert.Zero(t, count)

	in, err := f.svc.AlreadyInWishlist(ctx, f.userID, key)
	require.NoError(t, err)
	assert.True(t, in)
}

func TestMoveToCartRejectsInvalidQuantityWithoutSideEffects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	key := wishlist.ItemKey{VariantID: f.catalog.Variant.ID}

	_, err := f.svc.AddToWishlist(ctx, f.userID, key)
	require.NoError(t, err)

	zero := 0
	_, err = f.svc.MoveToCart(ctx, f.userID, &wishlist.MoveToCartRequest{VariantID: key.VariantID, Quantity: &zero})
	assert.Equal(t, apperror.CodeValidation, apperror.CodeOf(err))

	in, err := f.svc.AlreadyInWishlist(ctx, f.userID, key)
	require.NoError(t, err)
	assert.True(t, in)
}
