package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/safar/artstore/internal/database"
	"github.com/safar/artstore/internal/models"
	"github.com/safar/artstore/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRepo struct {
	orders    map[int64]*models.Order
	writes    int
	updateErr error
}

func newFakeRepo(orders ...models.Order) *fakeRepo {
	r := &fakeRepo{orders: make(map[int64]*models.Order)}
	for i := range orders {
		o := orders[i]
		r.orders[o.ID] = &o
	}
	return r
}

func (r *fakeRepo) GetOrder(_ context.Context, orderID int64) (*models.Order, error) {
	o, ok := r.orders[orderID]
	if !ok {
		return nil, database.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *fakeRepo) ListOrders(_ context.Context, userID int64, _ string, _ int) (*store.CursorPage[models.Order], error) {
	page := &store.CursorPage[models.Order]{}
	for _, o := range r.orders {
		if o.UserID == userID {
			page.Items = append(page.Items, *o)
		}
	}
	return page, nil
}

func (r *fakeRepo) UpdateStatus(_ context.Context, orderID int64, status string) (bool, error) {
	if r.updateErr != nil {
		return false, r.updateErr
	}
	o := r.orders[orderID]
	if o.Status == status {
		return false, nil
	}
	r.writes++
	o.Status = status
	return true, nil
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func fixedClock(t time.Time) Option {
	return WithClock(func() time.Time { return t })
}

func TestResolve(t *testing.T) {
	today := date(2025, 6, 15)

	assert.Equal(t, models.OrderStatusCompleted, Resolve(date(2025, 6, 14), today))
	assert.Equal(t, models.OrderStatusCompleted, Resolve(date(2024, 12, 31), today))
	assert.Equal(t, models.OrderStatusPending, Resolve(date(2025, 6, 15), today))
	assert.Equal(t, models.OrderStatusPending, Resolve(date(2025, 6, 16), today))
}

func TestResolveIgnoresTimeOfDay(t *testing.T) {
	delivery := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	lateToday := time.Date(2025, 6, 15, 23, 59, 59, 0, time.UTC)

	assert.Equal(t, models.OrderStatusPending, Resolve(delivery, lateToday))
}

func TestTodayUsesLocation(t *testing.T) {
	kolkata := time.FixedZone("IST", 5*3600+1800)
	now := time.Date(2025, 6, 14, 20, 0, 0, 0, time.UTC)

	assert.Equal(t, date(2025, 6, 15), Today(now, kolkata))
	assert.Equal(t, date(2025, 6, 14), Today(now, time.UTC))
}

func TestApplyCompletesPastDelivery(t *testing.T) {
	repo := newFakeRepo(models.Order{ID: 1, UserID: 9, DeliveryDate: date(2025, 6, 14), Status: models.OrderStatusPending})
	r := NewResolver(repo, zap.NewNop(), fixedClock(time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)), WithLocation(time.UTC))

	order := *repo.orders[1]
	changed, err := r.Apply(context.Background(), &order)
	require.NoError(t, err)

	assert.True(t, changed)
	assert.Equal(t, models.OrderStatusCompleted, order.Status)
	assert.Equal(t, models.OrderStatusCompleted, repo.orders[1].Status)
	assert.Equal(t, 1, repo.writes)
}

func TestApplyReopensFutureDelivery(t *testing.T) {
	repo := newFakeRepo(models.Order{ID: 1, UserID: 9, DeliveryDate: date(2025, 6, 20), Status: models.OrderStatusCompleted})
	r := NewResolver(repo, zap.NewNop(), fixedClock(date(2025, 6, 15)), WithLocation(time.UTC))

	order := *repo.orders[1]
	changed, err := r.Apply(context.Background(), &order)
	require.NoError(t, err)

	assert.True(t, changed)
	assert.Equal(t, models.OrderStatusPending, order.Status)
}

func TestListOrdersIsIdempotent(t *testing.T) {
	repo := newFakeRepo(
		models.Order{ID: 1, UserID: 9, DeliveryDate: date(2025, 6, 14), Status: models.OrderStatusPending},
		models.Order{ID: 2, UserID: 9, DeliveryDate: date(2025, 6, 15), Status: models.OrderStatusPending},
		models.Order{ID: 3, UserID: 8, DeliveryDate: date(2025, 6, 1), Status: models.OrderStatusPending},
	)
	r := NewResolver(repo, zap.NewNop(), fixedClock(date(2025, 6, 15)), WithLocation(time.UTC))
	ctx := context.Background()

	first, err := r.ListOrders(ctx, 9, "", 20)
	require.NoError(t, err)
	require.Len(t, first.Items, 2)
	assert.Equal(t, 1, repo.writes)

	second, err := r.ListOrders(ctx, 9, "", 20)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.writes)

	statuses := map[int64]string{}
	for _, o := range second.Items {
		statuses[o.ID] = o.Status
	}
	assert.Equal(t, models.OrderStatusCompleted, statuses[1])
	assert.Equal(t, models.OrderStatusPending, statuses[2])
	assert.Equal(t, models.OrderStatusPending, repo.orders[3].Status)
}

func TestListOrdersSurfacesWriteFailure(t *testing.T) {
	repo := newFakeRepo(models.Order{ID: 1, UserID: 9, DeliveryDate: date(2025, 6, 1), Status: models.OrderStatusPending})
	repo.updateErr = errors.New("connection reset")
	r := NewResolver(repo, zap.NewNop(), fixedClock(date(2025, 6, 15)), WithLocation(time.UTC))

	_, err := r.ListOrders(context.Background(), 9, "", 20)
	assert.ErrorIs(t, err, repo.updateErr)
}

func TestGetOrderChecksOwnerAndResolves(t *testing.T) {
	repo := newFakeRepo(models.Order{ID: 1, UserID: 5, DeliveryDate: date(2025, 6, 10), Status: models.OrderStatusPending})
	r := NewResolver(repo, zap.NewNop(), fixedClock(date(2025, 6, 15)))

	_, err := r.GetOrder(context.Background(), 6, 1)
	assert.ErrorIs(t, err, database.ErrOrderNotFound)
	assert.Zero(t, repo.writes)

	_, err = r.GetOrder(context.Background(), 5, 2)
	assert.ErrorIs(t, err, database.ErrOrderNotFound)

	order, err := r.GetOrder(context.Background(), 5, 1)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCompleted, order.Status)
	assert.Equal(t, 1, repo.writes)
}
