//go:build integration

package store_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/safar/artstore/internal/database"
	"github.com/safar/artstore/internal/models"
	"github.com/safar/artstore/internal/store"
	"github.com/safar/artstore/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecrementStockIsGuarded(t *testing.T) {
	db := testutil.SetupPostgres(t)
	ctx := context.Background()

	art, err := store.CreateArtwork(ctx, db, store.NewArtwork{Title: "Dawn", Price: decimal.NewFromInt(100), AvailableQty: 3})
	require.NoError(t, err)
	assert.Equal(t, models.ArtworkStatusAvailable, art.Status)

	remaining, err := store.DecrementStock(ctx, db, art.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, remaining)

	_, err = store.DecrementStock(ctx, db, art.ID, 2)
	assert.ErrorIs(t, err, database.ErrInsufficientStock)

	remaining, err = store.DecrementStock(ctx, db, art.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, remaining)

	after, err := store.GetArtwork(ctx, db, art.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, after.AvailableQty)
	assert.Equal(t, models.ArtworkStatusSold, after.Status)

	_, err = store.DecrementStock(ctx, db, 424242, 1)
	assert.ErrorIs(t, err, database.ErrInsufficientStock)
}

func TestSetArtworkQuantityMovesStatus(t *testing.T) {
	db := testutil.SetupPostgres(t)
	ctx := context.Background()

	art, err := store.CreateArtwork(ctx, db, store.NewArtwork{Title: "Dawn", Price: decimal.NewFromInt(100), AvailableQty: 0})
	require.NoError(t, err)
	assert.Equal(t, models.ArtworkStatusSold, art.Status)

	restocked, err := store.SetArtworkQuantity(ctx, db, art.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, restocked.AvailableQty)
	assert.Equal(t, models.ArtworkStatusAvailable, restocked.Status)

	emptied, err := store.SetArtworkQuantity(ctx, db, art.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, models.ArtworkStatusSold, emptied.Status)

	_, err = store.SetArtworkQuantity(ctx, db, 424242, 1)
	assert.ErrorIs(t, err, database.ErrArtworkNotFound)
}

func TestGetArtworksOmitsUnknownIDs(t *testing.T) {
	db := testutil.SetupPostgres(t)
	ctx := context.Background()

	a, err := store.CreateArtwork(ctx, db, store.NewArtwork{Title: "A", Price: decimal.NewFromInt(1), AvailableQty: 1})
	require.NoError(t, err)
	b, err := store.CreateArtwork(ctx, db, store.NewArtwork{Title: "B", Price: decimal.NewFromInt(2), AvailableQty: 1})
	require.NoError(t, err)

	got, err := store.GetArtworks(ctx, db, []int64{a.ID, b.ID, 999})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.True(t, got[b.ID].Price.Equal(decimal.NewFromInt(2)))

	empty, err := store.GetArtworks(ctx, db, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestListArtworks(t *testing.T) {
	db := testutil.SetupPostgres(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := store.CreateArtwork(ctx, db, store.NewArtwork{Title: "Print", Price: decimal.NewFromInt(10), AvailableQty: 1})
		require.NoError(t, err)
	}

	page, err := store.ListArtworks(ctx, db, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), page.Total)
	assert.Equal(t, 3, page.TotalPages)
	assert.Len(t, page.Items, 2)
}

func insertOrder(t *testing.T, db *sql.DB, userID int64, delivery time.Time) *models.Order {
	t.Helper()
	order := &models.Order{
		OrderNumber:  "ORD-" + uuid.NewString(),
		UserID:       userID,
		Subtotal:     decimal.NewFromInt(100),
		TotalAmount:  decimal.NewFromInt(100),
		Address:      "1 Main St",
		DeliveryDate: delivery,
		PaymentMode:  "card",
		Status:       models.OrderStatusPending,
	}
	require.NoError(t, store.InsertOrder(context.Background(), db, order))
	return order
}

func TestListOrdersCursor(t *testing.T) {
	db := testutil.SetupPostgres(t)
	ctx := context.Background()

	user, err := store.CreateUser(ctx, db, "pager", "pager@example.com")
	require.NoError(t, err)

	for i := 0; i < 15; i++ {
		insertOrder(t, db, user.ID, time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC))
	}

	page1, err := store.ListOrdersCursor(ctx, db, user.ID, "", 10)
	require.NoError(t, err)
	assert.True(t, page1.HasMore)
	assert.NotEmpty(t, page1.NextCursor)
	assert.Len(t, page1.Items, 10)

	page2, err := store.ListOrdersCursor(ctx, db, user.ID, page1.NextCursor, 10)
	require.NoError(t, err)
	assert.False(t, page2.HasMore)
	assert.Len(t, page2.Items, 5)
}

func TestUpdateOrderStatusOnlyWritesChanges(t *testing.T) {
	db := testutil.SetupPostgres(t)
	ctx := context.Background()

	user, err := store.CreateUser(ctx, db, "status", "status@example.com")
	require.NoError(t, err)
	order := insertOrder(t, db, user.ID, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))

	changed, err := store.UpdateOrderStatus(ctx, db, order.ID, models.OrderStatusCompleted)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = store.UpdateOrderStatus(ctx, db, order.ID, models.OrderStatusCompleted)
	require.NoError(t, err)
	assert.False(t, changed)

	got, err := store.GetOrder(ctx, db, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCompleted, got.Status)
	assert.Equal(t, 2020, got.DeliveryDate.Year())

	_, err = store.GetOrder(ctx, db, 424242)
	assert.ErrorIs(t, err, database.ErrOrderNotFound)
}

func TestGetUser(t *testing.T) {
	db := testutil.SetupPostgres(t)
	ctx := context.Background()

	user, err := store.CreateUser(ctx, db, "someone", "someone@example.com")
	require.NoError(t, err)

	got, err := store.GetUser(ctx, db, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "someone", got.Username)

	exists, err := store.UserExists(ctx, db, user.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = store.GetUser(ctx, db, 424242)
	assert.ErrorIs(t, err, database.ErrUserNotFound)
}

func TestDeleteArtworkKeepsOrderedArtworks(t *testing.T) {
	db := testutil.SetupPostgres(t)
	ctx := context.Background()

	user, err := store.CreateUser(ctx, db, "collector", "collector@example.com")
	require.NoError(t, err)
	ordered, err := store.CreateArtwork(ctx, db, store.NewArtwork{Title: "Dawn", Price: decimal.NewFromInt(100), AvailableQty: 2})
	require.NoError(t, err)
	spare, err := store.CreateArtwork(ctx, db, store.NewArtwork{Title: "Dusk", Price: decimal.NewFromInt(100), AvailableQty: 1})
	require.NoError(t, err)

	order := insertOrder(t, db, user.ID, time.Now())
	require.NoError(t, store.InsertOrderItem(ctx, db, &models.OrderItem{
		OrderID:   order.ID,
		ArtworkID: ordered.ID,
		Quantity:  1,
		UnitPrice: ordered.Price,
	}))

	err = store.DeleteArtwork(ctx, db, ordered.ID)
	assert.ErrorIs(t, err, database.ErrArtworkInUse)
	_, err = store.GetArtwork(ctx, db, ordered.ID)
	assert.NoError(t, err)

	require.NoError(t, store.DeleteArtwork(ctx, db, spare.ID))
	_, err = store.GetArtwork(ctx, db, spare.ID)
	assert.ErrorIs(t, err, database.ErrArtworkNotFound)

	assert.ErrorIs(t, store.DeleteArtwork(ctx, db, spare.ID), database.ErrArtworkNotFound)
}
