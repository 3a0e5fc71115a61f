//go:build integration

package lifecycle_test

import (
	"context"
	"testing"
	"time"

	"github.com/safar/artstore/internal/cart"
	"github.com/safar/artstore/internal/checkout"
	"github.com/safar/artstore/internal/lifecycle"
	"github.com/safar/artstore/internal/models"
	"github.com/safar/artstore/internal/store"
	"github.com/safar/artstore/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPostgresOrderCompletesAfterDeliveryDate(t *testing.T) {
	db := testutil.SetupPostgres(t)
	ctx := context.Background()

	user, err := store.CreateUser(ctx, db, "collector", "collector@example.com")
	require.NoError(t, err)
	art, err := store.CreateArtwork(ctx, db, store.NewArtwork{Title: "Dawn", Price: decimal.NewFromInt(100), AvailableQty: 1})
	require.NoError(t, err)

	placedOn := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)
	svc := checkout.NewService(checkout.NewPostgresStore(db), store.NewCatalog(db), zap.NewNop(),
		checkout.WithClock(func() time.Time { return placedOn }),
		checkout.WithLocation(time.UTC),
	)

	c := cart.New()
	require.NoError(t, c.Add(art.ID, 1))
	receipt, err := svc.Checkout(ctx, c, checkout.Request{
		UserID:       user.ID,
		Address:      "1 Main St",
		DeliveryDate: placedOn,
		PaymentMode:  "cod",
	})
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusPending, receipt.Status)

	nextDay := placedOn.AddDate(0, 0, 1)
	resolver := lifecycle.NewResolver(lifecycle.NewPostgresRepository(db), zap.NewNop(),
		lifecycle.WithClock(func() time.Time { return nextDay }),
		lifecycle.WithLocation(time.UTC),
	)

	page, err := resolver.ListOrders(ctx, user.ID, "", 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, models.OrderStatusCompleted, page.Items[0].Status)
	require.Len(t, page.Items[0].Items, 1)

	stored, err := store.GetOrder(ctx, db, receipt.OrderID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCompleted, stored.Status)
	firstWrite := stored.UpdatedAt

	changed, err := resolver.Apply(ctx, stored)
	require.NoError(t, err)
	assert.False(t, changed)

	again, err := store.GetOrder(ctx, db, receipt.OrderID)
	require.NoError(t, err)
	assert.True(t, firstWrite.Equal(again.UpdatedAt), "second evaluation must not write")
}
