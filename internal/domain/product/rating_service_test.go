package product_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/pkg/apperror"
	"github.com/your-org/storefront-backend/internal/testutil"
)

func TestCreateRatingAndList(t *testing.T) {
	db := testutil.NewDB(t)
	catalog := testutil.SeedCatalog(t, db)
	ann := testutil.SeedUser(t, db, "ann", true)
	ben := testutil.SeedUser(t, db, "ben", true)
	svc := product.NewRatingService(db)
	ctx := context.Background()

	created, err := svc.CreateRating(ctx, ann.ID, catalog.Product.ID, &product.CreateRatingRequest{Stars: 5, Comment: "  great fit "})
	require.NoError(t, err)
	assert.Equal(t, "ann", created.Username)
	require.NotNil(t, created.Comment)
	assert.Equal(t, "great fit", *created.Comment)

	blank, err := svc.CreateRating(ctx, ben.ID, catalog.Product.ID, &product.CreateRatingRequest{Stars: 2, Comment: "   "})
	require.NoError(t, err)
	assert.Nil(t, blank.Comment)

	// Ratings are append-only; a second one from the same user is kept.
	_, err = svc.CreateRating(ctx, ann.ID, catalog.Product.ID, &product.CreateRatingRequest{Stars: 4})
	require.NoError(t, err)

	list, err := svc.GetRatings(ctx, catalog.Product.ID)
	require.NoError(t, err)
	assert.Len(t, list.Ratings, 3)
	assert.Equal(t, 3, list.Summary.TotalRatings)
	assert.Equal(t, 3.67, list.Summary.AverageStars)
	assert.Equal(t, 1, list.Summary.StarsBreakdown["5"])
	assert.Equal(t, 0, list.Summary.StarsBreakdown["1"])
}

func TestCreateRatingValidation(t *testing.T) {
	db := testutil.NewDB(t)
	catalog := testutil.SeedCatalog(t, db)
	u := testutil.SeedUser(t, db, "cat", true)
	svc := product.NewRatingService(db)
	ctx := context.Background()

	for _, stars := range []int{0, 6} {
		_, err := svc.CreateRating(ctx, u.ID, catalog.Product.ID, &product.CreateRatingRequest{Stars: stars})
		assert.Equal(t, apperror.KindOutOfRange, apperror.KindOf(err))
	}

	_, err := svc.CreateRating(ctx, u.ID, 999, &product.CreateRatingRequest{Stars: 3})
	assert.Equal(t, apperror.CodeNotFound, apperror.CodeOf(err))

	_, err = svc.CreateRating(ctx, u.ID+10, catalog.Product.ID, &product.CreateRatingRequest{Stars: 3})
	assert.Equal(t, apperror.CodeNotFound, apperror.CodeOf(err))

	_, err = svc.GetRatings(ctx, 999)
	assert.Equal(t, apperror.CodeNotFound, apperror.CodeOf(err))
}

func TestGetSummaryWithoutRatings(t *testing.T) {
	db := testutil.NewDB(t)
	catalog := testutil.SeedCatalog(t, db)

	summary, err := product.NewRatingService(db).GetSummary(context.Background(), catalog.Product.ID)
	require.NoError(t, err)
	assert.Zero(t, summary.TotalRatings)
	assert.Zero(t, summary.AverageStars)
	assert.Len(t, summary.StarsBreakdown, 5)
}
