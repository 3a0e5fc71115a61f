// Package lifecycle derives an order's status from its delivery date.
//
// The status is pulled, not pushed: nothing runs in the background. Every time
// orders are read for display the transition is evaluated, and an order whose
// stored status has drifted is corrected in storage before it is returned.
//
//	delivery_date <  today  -> Completed
//	delivery_date >= today  -> Pending
package lifecycle

import (
	"context"
	"fmt"
	"time"

	"github.com/safar/artstore/internal/database"
	"github.com/safar/artstore/internal/models"
	"github.com/safar/artstore/internal/store"
	"go.uber.org/zap"
)

// Resolve returns the status an order with deliveryDate must have on today.
// Only the calendar date of each argument is compared.
func Resolve(deliveryDate, today time.Time) string {
	if dateOf(deliveryDate).Before(dateOf(today)) {
		return models.OrderStatusCompleted
	}
	return models.OrderStatusPending
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today is the current calendar date in loc.
func Today(now time.Time, loc *time.Location) time.Time {
	return dateOf(now.In(loc))
}

type Repository interface {
	GetOrder(ctx context.Context, orderID int64) (*models.Order, error)
	ListOrders(ctx context.Context, userID int64, cursor string, limit int) (*store.CursorPage[models.Order], error)
	UpdateStatus(ctx context.Context, orderID int64, status string) (bool, error)
}

type Resolver struct {
	repo     Repository
	now      func() time.Time
	location *time.Location
	logger   *zap.Logger
}

type Option func(*Resolver)

func WithClock(now func() time.Time) Option {
	return func(r *Resolver) { r.now = now }
}

func WithLocation(loc *time.Location) Option {
	return func(r *Resolver) { r.location = loc }
}

func NewResolver(repo Repository, logger *zap.Logger, opts ...Option) *Resolver {
	r := &Resolver{
		repo:     repo,
		now:      time.Now,
		location: time.Local,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Resolver) Today() time.Time {
	return Today(r.now(), r.location)
}

// Apply moves order to the status its delivery date implies, persisting the
// change when the stored value differs. It reports whether a write was made.
func (r *Resolver) Apply(ctx context.Context, order *models.Order) (bool, error) {
	want := Resolve(order.DeliveryDate, r.Today())
	if order.Status == want {
		return false, nil
	}

	changed, err := r.repo.UpdateStatus(ctx, order.ID, want)
	if err != nil {
		return false, fmt.Errorf("update status of order %d: %w", order.ID, err)
	}

	r.logger.Info("order status corrected",
		zap.Int64("order_id", order.ID),
		zap.String("from", order.Status),
		zap.String("to", want),
	)
	order.Status = want
	return changed, nil
}

// ListOrders returns a page of a user's orders with every status brought up to
// date.
func (r *Resolver) ListOrders(ctx context.Context, userID int64, cursor string, limit int) (*store.CursorPage[models.Order], error) {
	page, err := r.repo.ListOrders(ctx, userID, cursor, limit)
	if err != nil {
		return nil, err
	}

	for i := range page.Items {
		if _, err := r.Apply(ctx, &page.Items[i]); err != nil {
			return nil, err
		}
	}

	return page, nil
}

// GetOrder returns one of userID's orders with its status brought up to date.
// Orders belonging to someone else are reported as not found.
func (r *Resolver) GetOrder(ctx context.Context, userID, orderID int64) (*models.Order, error) {
	order, err := r.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, database.ErrOrderNotFound
	}

	if _, err := r.Apply(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}
