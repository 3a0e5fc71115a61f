package api

import (
	"encoding/json"

	"github.com/safar/artstore/internal/checkout"
	"github.com/safar/artstore/internal/models"
	"github.com/shopspring/decimal"
)

type AddToCartRequest struct {
	ArtworkID int64       `json:"artwork_id"`
	Quantity  json.Number `json:"quantity"`
}

type CheckoutRequest struct {
	Address      string `json:"address"`
	DeliveryDate string `json:"delivery_date"`
	PaymentMode  string `json:"payment_mode"`
}

type CheckoutResponse struct {
	*checkout.Receipt
	Message string `json:"message"`
}

type CreateArtworkRequest struct {
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	ArtistName   string          `json:"artist_name"`
	Price        decimal.Decimal `json:"price"`
	AvailableQty *int            `json:"available_qty"`
}

type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity"`
}

type OrdersResponse struct {
	Orders     []models.Order `json:"orders"`
	NextCursor string         `json:"next_cursor,omitempty"`
	HasMore    bool           `json:"has_more"`
}
