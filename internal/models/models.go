package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type Artwork struct {
	ID           int64           `json:"id"`
	Title        string          `json:"title"`
	Description  string          `json:"description,omitempty"`
	ArtistName   string          `json:"artist_name,omitempty"`
	Price        decimal.Decimal `json:"price"`
	AvailableQty int             `json:"available_qty"`
	Status       string          `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

type Order struct {
	ID           int64           `json:"id"`
	OrderNumber  string          `json:"order_number"`
	UserID       int64           `json:"user_id"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	DiscountPct  int             `json:"discount_pct"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	Address      string          `json:"address"`
	DeliveryDate time.Time       `json:"delivery_date"`
	PaymentMode  string          `json:"payment_mode"`
	Status       string          `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	Items        []OrderItem     `json:"items,omitempty"`
}

type OrderItem struct {
	ID        int64           `json:"id"`
	OrderID   int64           `json:"order_id"`
	ArtworkID int64           `json:"artwork_id"`
	Title     string          `json:"title,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// Subtotal is the line amount at the price captured on purchase.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

const (
	ArtworkStatusAvailable = "Available"
	ArtworkStatusSold      = "Sold"
)

const (
	OrderStatusPending   = "Pending"
	OrderStatusCompleted = "Completed"
)

// ArtworkStatusFor is the only way an artwork status is derived: an artwork is
// sold exactly when no units remain.
func ArtworkStatusFor(availableQty int) string {
	if availableQty <= 0 {
		return ArtworkStatusSold
	}
	return ArtworkStatusAvailable
}
