// Package checkout converts a session cart into a persisted order.
//
// A checkout is one transaction: the cart's artworks are re-read under row
// locks, priced at their current price, written as an order with its items,
// and their stock is taken with a guarded decrement. Any failure rolls all of
// it back and leaves the cart as it was.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/safar/artstore/internal/cart"
	"github.com/safar/artstore/internal/database"
	"github.com/safar/artstore/internal/lifecycle"
	"github.com/safar/artstore/internal/models"
	"github.com/safar/artstore/internal/pricing"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Tx is the storage seen by a checkout while its transaction is open.
type Tx interface {
	UserExists(ctx context.Context, userID int64) (bool, error)
	LockArtworks(ctx context.Context, ids []int64) (map[int64]models.Artwork, error)
	InsertOrder(ctx context.Context, order *models.Order) error
	InsertOrderItem(ctx context.Context, item *models.OrderItem) error
	// DecrementStock fails with ErrInsufficientStock when fewer than quantity
	// units remain, and otherwise returns the units left.
	DecrementStock(ctx context.Context, artworkID int64, quantity int) (int, error)
}

// Store runs fn in a transaction, committing only if fn returns nil.
type Store interface {
	InTx(ctx context.Context, fn func(Tx) error) error
}

// Catalog is the read-only artwork lookup used for quotes outside a checkout.
type Catalog interface {
	GetArtworks(ctx context.Context, ids []int64) (map[int64]models.Artwork, error)
}

type Request struct {
	UserID       int64
	Address      string
	DeliveryDate time.Time
	PaymentMode  string
}

// Column widths of the order fields taken verbatim from the request.
const (
	MaxAddressLength     = 500
	MaxPaymentModeLength = 50
)

func (r Request) oversizedFields() []string {
	var long []string
	if utf8.RuneCountInString(strings.TrimSpace(r.Address)) > MaxAddressLength {
		long = append(long, "address")
	}
	if utf8.RuneCountInString(strings.TrimSpace(r.PaymentMode)) > MaxPaymentModeLength {
		long = append(long, "payment_mode")
	}
	return long
}

func (r Request) missingFields() []string {
	var missing []string
	if strings.TrimSpace(r.Address) == "" {
		missing = append(missing, "address")
	}
	if r.DeliveryDate.IsZero() {
		missing = append(missing, "delivery_date")
	}
	if strings.TrimSpace(r.PaymentMode) == "" {
		missing = append(missing, "payment_mode")
	}
	return missing
}

type Receipt struct {
	OrderID      int64              `json:"order_id"`
	OrderNumber  string             `json:"order_number"`
	Subtotal     decimal.Decimal    `json:"subtotal"`
	DiscountPct  int                `json:"discount_pct"`
	Discount     decimal.Decimal    `json:"discount"`
	Total        decimal.Decimal    `json:"total"`
	Status       string             `json:"status"`
	DeliveryDate time.Time          `json:"delivery_date"`
	Items        []models.OrderItem `json:"items"`
}

func (r *Receipt) Message() string {
	if r.DiscountPct > 0 {
		return fmt.Sprintf("Congrats! You got a %d%% discount.", r.DiscountPct)
	}
	return "Order placed successfully!"
}

type Service struct {
	store          Store
	catalog        Catalog
	logger         *zap.Logger
	now            func() time.Time
	location       *time.Location
	newOrderNumber func() string
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.location = loc }
}

func WithOrderNumbers(next func() string) Option {
	return func(s *Service) { s.newOrderNumber = next }
}

func NewService(store Store, catalog Catalog, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		store:          store,
		catalog:        catalog,
		logger:         logger,
		now:            time.Now,
		location:       time.Local,
		newOrderNumber: generateOrderNumber,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func generateOrderNumber() string {
	return "ORD-" + strings.ToUpper(uuid.NewString())
}

// Checkout places an order for everything in c on behalf of req.UserID. On
// success the cart is emptied; on any error it is left untouched.
func (s *Service) Checkout(ctx context.Context, c *cart.Cart, req Request) (*Receipt, error) {
	if req.UserID <= 0 {
		return nil, ErrUnauthenticated
	}
	if c == nil || c.IsEmpty() {
		return nil, ErrEmptyCart
	}
	if missing := req.missingFields(); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingFields, strings.Join(missing, ", "))
	}
	if long := req.oversizedFields(); len(long) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrFieldTooLong, strings.Join(long, ", "))
	}

	lines := c.Snapshot()
	if err := validateLines(lines); err != nil {
		return nil, err
	}
	ids := c.ArtworkIDs()
	y, m, d := req.DeliveryDate.Date()
	deliveryDate := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	today := lifecycle.Today(s.now(), s.location)

	var receipt *Receipt
	err := s.store.InTx(ctx, func(tx Tx) error {
		exists, err := tx.UserExists(ctx, req.UserID)
		if err != nil {
			return err
		}
		if !exists {
			return ErrUnknownUser
		}

		artworks, err := tx.LockArtworks(ctx, ids)
		if err != nil {
			return err
		}

		priced, shortages := priceLines(lines, artworks)
		if len(shortages) > 0 {
			return &InsufficientStockError{Shortages: shortages}
		}

		quote := pricing.Calculate(priced)

		order := &models.Order{
			OrderNumber:  s.newOrderNumber(),
			UserID:       req.UserID,
			Subtotal:     quote.Subtotal,
			DiscountPct:  quote.DiscountPct,
			TotalAmount:  quote.Total,
			Address:      strings.TrimSpace(req.Address),
			DeliveryDate: deliveryDate,
			PaymentMode:  strings.TrimSpace(req.PaymentMode),
			Status:       lifecycle.Resolve(deliveryDate, today),
		}
		if err := tx.InsertOrder(ctx, order); err != nil {
			return err
		}

		for _, line := range priced {
			item := models.OrderItem{
				OrderID:   order.ID,
				ArtworkID: line.ArtworkID,
				Title:     artworks[line.ArtworkID].Title,
				Quantity:  line.Quantity,
				UnitPrice: line.UnitPrice,
			}
			if err := tx.InsertOrderItem(ctx, &item); err != nil {
				return err
			}

			if _, err := tx.DecrementStock(ctx, line.ArtworkID, line.Quantity); err != nil {
				if errors.Is(err, ErrInsufficientStock) {
					art := artworks[line.ArtworkID]
					return &InsufficientStockError{Shortages: []Shortage{{
						ArtworkID: art.ID,
						Title:     art.Title,
						Requested: line.Quantity,
						Available: art.AvailableQty,
					}}}
				}
				return err
			}
			order.Items = append(order.Items, item)
		}

		receipt = &Receipt{
			OrderID:      order.ID,
			OrderNumber:  order.OrderNumber,
			Subtotal:     quote.Subtotal,
			DiscountPct:  quote.DiscountPct,
			Discount:     quote.Discount,
			Total:        quote.Total,
			Status:       order.Status,
			DeliveryDate: order.DeliveryDate,
			Items:        order.Items,
		}
		return nil
	})
	if err != nil {
		return nil, s.checkoutError(req, err)
	}

	c.Clear()

	s.logger.Info("order placed",
		zap.Int64("order_id", receipt.OrderID),
		zap.String("order_number", receipt.OrderNumber),
		zap.Int64("user_id", req.UserID),
		zap.String("total", receipt.Total.StringFixed(2)),
		zap.Int("discount_pct", receipt.DiscountPct),
		zap.Int("lines", len(receipt.Items)),
	)

	return receipt, nil
}

func (s *Service) checkoutError(req Request, err error) error {
	switch {
	case errors.Is(err, ErrValidation):
		return err
	case errors.Is(err, ErrInsufficientStock):
		s.logger.Info("checkout rejected", zap.Int64("user_id", req.UserID), zap.Error(err))
		return err
	}

	perr := &PersistenceError{Op: "checkout", Err: err}
	s.logger.Error("checkout failed",
		zap.Int64("user_id", req.UserID),
		zap.Stringer("class", perr.Class()),
		zap.Bool("transient", database.IsRetryable(err)),
		zap.Error(err),
	)
	return perr
}

func validateLines(lines []cart.Line) error {
	for _, line := range lines {
		if line.Quantity <= 0 || line.Quantity > cart.MaxQuantity {
			return fmt.Errorf("%w: artwork %d quantity %d", ErrInvalidLine, line.ArtworkID, line.Quantity)
		}
	}
	return nil
}

// priceLines pairs each cart line with its artwork. Lines whose artwork is
// gone or short of stock are returned as shortages instead.
func priceLines(lines []cart.Line, artworks map[int64]models.Artwork) ([]pricing.Line, []Shortage) {
	priced := make([]pricing.Line, 0, len(lines))
	var shortages []Shortage

	for _, line := range lines {
		art, ok := artworks[line.ArtworkID]
		if !ok {
			shortages = append(shortages, Shortage{
				ArtworkID: line.ArtworkID,
				Requested: line.Quantity,
				Missing:   true,
			})
			continue
		}
		if line.Quantity > art.AvailableQty {
			shortages = append(shortages, Shortage{
				ArtworkID: art.ID,
				Title:     art.Title,
				Requested: line.Quantity,
				Available: art.AvailableQty,
			})
			continue
		}
		priced = append(priced, pricing.Line{
			ArtworkID: art.ID,
			UnitPrice: art.Price,
			Quantity:  line.Quantity,
		})
	}

	return priced, shortages
}
