package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/safar/artstore/internal/cart"
	"github.com/safar/artstore/internal/checkout"
	"github.com/safar/artstore/internal/database"
	"github.com/safar/artstore/internal/lifecycle"
	"github.com/safar/artstore/internal/models"
	"github.com/safar/artstore/internal/store"
	"go.uber.org/zap"
)

type Catalog interface {
	GetArtwork(ctx context.Context, id int64) (*models.Artwork, error)
	ListArtworks(ctx context.Context, page, pageSize int) (*store.OffsetPage[models.Artwork], error)
	CreateArtwork(ctx context.Context, in store.NewArtwork) (*models.Artwork, error)
	SetArtworkQuantity(ctx context.Context, id int64, quantity int) (*models.Artwork, error)
	DeleteArtwork(ctx context.Context, id int64) error
}

type Users interface {
	GetUser(ctx context.Context, id int64) (*models.User, error)
}

type Pinger interface {
	PingContext(ctx context.Context) error
}

type Handler struct {
	catalog  Catalog
	users    Users
	carts    cart.Store
	checkout *checkout.Service
	orders   *lifecycle.Resolver
	db       Pinger
	logger   *zap.Logger
}

func NewHandler(catalog Catalog, users Users, carts cart.Store, svc *checkout.Service, orders *lifecycle.Resolver, db Pinger, logger *zap.Logger) *Handler {
	return &Handler{
		catalog:  catalog,
		users:    users,
		carts:    carts,
		checkout: svc,
		orders:   orders,
		db:       db,
		logger:   logger,
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		h.logger.Warn("health check failed", zap.Error(err))
		respondError(w, http.StatusServiceUnavailable, "unavailable", "database unreachable")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) ListArtworks(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	result, err := h.catalog.ListArtworks(r.Context(), page, pageSize)
	if err != nil {
		h.internalError(w, "list artworks", err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *Handler) GetArtwork(w http.ResponseWriter, r *http.Request) {
	id, ok := artworkIDParam(w, r)
	if !ok {
		return
	}

	artwork, err := h.catalog.GetArtwork(r.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrArtworkNotFound) {
			respondError(w, http.StatusNotFound, "not_found", err.Error())
			return
		}
		h.internalError(w, "get artwork", err)
		return
	}
	respondJSON(w, http.StatusOK, artwork)
}

func (h *Handler) CreateArtwork(w http.ResponseWriter, r *http.Request) {
	var req CreateArtworkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_json", "Invalid request body")
		return
	}

	qty := 1
	if req.AvailableQty != nil {
		qty = *req.AvailableQty
	}
	if strings.TrimSpace(req.Title) == "" || req.Price.IsNegative() || qty < 0 {
		respondError(w, http.StatusBadRequest, "invalid_artwork", "title is required; price and quantity must not be negative")
		return
	}

	artwork, err := h.catalog.CreateArtwork(r.Context(), store.NewArtwork{
		Title:        strings.TrimSpace(req.Title),
		Description:  req.Description,
		ArtistName:   req.ArtistName,
		Price:        req.Price,
		AvailableQty: qty,
	})
	if err != nil {
		h.internalError(w, "create artwork", err)
		return
	}

	h.logger.Info("artwork created", zap.Int64("artwork_id", artwork.ID), zap.Int("available_qty", artwork.AvailableQty))
	respondJSON(w, http.StatusCreated, artwork)
}

func (h *Handler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	id, ok := artworkIDParam(w, r)
	if !ok {
		return
	}

	var req UpdateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Quantity == nil || *req.Quantity < 0 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be a non-negative integer")
		return
	}

	artwork, err := h.catalog.SetArtworkQuantity(r.Context(), id, *req.Quantity)
	if err != nil {
		if errors.Is(err, database.ErrArtworkNotFound) {
			respondError(w, http.StatusNotFound, "not_found", err.Error())
			return
		}
		h.internalError(w, "update quantity", err)
		return
	}
	respondJSON(w, http.StatusOK, artwork)
}

func (h *Handler) DeleteArtwork(w http.ResponseWriter, r *http.Request) {
	id, ok := artworkIDParam(w, r)
	if !ok {
		return
	}

	if err := h.catalog.DeleteArtwork(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, database.ErrArtworkNotFound):
			respondError(w, http.StatusNotFound, "not_found", err.Error())
		case errors.Is(err, database.ErrArtworkInUse):
			respondError(w, http.StatusConflict, "artwork_in_use", "artwork appears on orders; set its quantity to 0 instead")
		default:
			h.internalError(w, "delete artwork", err)
		}
		return
	}

	h.logger.Info("artwork deleted", zap.Int64("artwork_id", id))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req AddToCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_json", "Invalid request body")
		return
	}

	qty, err := cart.ParseQuantity(req.Quantity.String())
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_quantity", err.Error())
		return
	}

	if _, err := h.catalog.GetArtwork(ctx, req.ArtworkID); err != nil {
		if errors.Is(err, database.ErrArtworkNotFound) {
			respondError(w, http.StatusNotFound, "not_found", err.Error())
			return
		}
		h.internalError(w, "add to cart", err)
		return
	}

	sid := SessionID(ctx)
	c, err := h.carts.Load(ctx, sid)
	if err != nil {
		h.internalError(w, "load cart", err)
		return
	}
	if err := c.Add(req.ArtworkID, qty); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_item", err.Error())
		return
	}
	if err := h.carts.Save(ctx, sid, c); err != nil {
		h.internalError(w, "save cart", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"items": c.Snapshot()})
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	c, err := h.carts.Load(ctx, SessionID(ctx))
	if err != nil {
		h.internalError(w, "load cart", err)
		return
	}

	quote, err := h.checkout.Quote(ctx, c)
	if err != nil {
		h.writeCheckoutError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, quote)
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.carts.Delete(ctx, SessionID(ctx)); err != nil {
		h.internalError(w, "clear cart", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, _ := UserID(ctx)

	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_json", "Invalid request body")
		return
	}

	var deliveryDate time.Time
	if raw := strings.TrimSpace(req.DeliveryDate); raw != "" {
		parsed, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_delivery_date", "delivery_date must be YYYY-MM-DD")
			return
		}
		deliveryDate = parsed
	}

	sid := SessionID(ctx)
	c, err := h.carts.Load(ctx, sid)
	if err != nil {
		h.internalError(w, "load cart", err)
		return
	}

	receipt, err := h.checkout.Checkout(ctx, c, checkout.Request{
		UserID:       userID,
		Address:      req.Address,
		DeliveryDate: deliveryDate,
		PaymentMode:  req.PaymentMode,
	})
	if err != nil {
		h.writeCheckoutError(w, err)
		return
	}

	if err := h.carts.Delete(ctx, sid); err != nil {
		h.logger.Warn("order placed but cart not cleared",
			zap.Int64("order_id", receipt.OrderID),
			zap.String("session", sid),
			zap.Error(err),
		)
	}

	respondJSON(w, http.StatusCreated, CheckoutResponse{Receipt: receipt, Message: receipt.Message()})
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, _ := UserID(ctx)

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 20
	}

	page, err := h.orders.ListOrders(ctx, userID, r.URL.Query().Get("cursor"), limit)
	if err != nil {
		if errors.Is(err, store.ErrInvalidCursor) {
			respondError(w, http.StatusBadRequest, "invalid_cursor", "cursor is not one this server issued")
			return
		}
		h.internalError(w, "list orders", err)
		return
	}

	respondJSON(w, http.StatusOK, OrdersResponse{
		Orders:     page.Items,
		NextCursor: page.NextCursor,
		HasMore:    page.HasMore,
	})
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, _ := UserID(ctx)

	orderID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || orderID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_id", "Invalid order ID")
		return
	}

	order, err := h.orders.GetOrder(ctx, userID, orderID)
	if err != nil {
		if errors.Is(err, database.ErrOrderNotFound) {
			respondError(w, http.StatusNotFound, "not_found", err.Error())
			return
		}
		h.internalError(w, "get order", err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, _ := UserID(ctx)

	user, err := h.users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			respondError(w, http.StatusNotFound, "not_found", err.Error())
			return
		}
		h.internalError(w, "get profile", err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (h *Handler) writeCheckoutError(w http.ResponseWriter, err error) {
	var stockErr *checkout.InsufficientStockError
	var persistErr *checkout.PersistenceError

	switch {
	case errors.Is(err, checkout.ErrUnauthenticated):
		respondError(w, http.StatusUnauthorized, "unauthenticated", err.Error())
	case errors.Is(err, checkout.ErrValidation):
		respondError(w, http.StatusBadRequest, "validation_failed", err.Error())
	case errors.As(err, &stockErr):
		respondJSON(w, http.StatusConflict, ErrorResponse{
			Error:   "insufficient_stock",
			Message: "some items are no longer available in the requested quantity",
			Details: stockErr.Shortages,
		})
	case errors.As(err, &persistErr) && persistErr.Retryable():
		respondJSON(w, http.StatusServiceUnavailable, ErrorResponse{
			Error:     "unavailable",
			Message:   "the order could not be saved; your cart is unchanged, please try again",
			Retryable: true,
		})
	default:
		h.internalError(w, "checkout", err)
	}
}

func (h *Handler) internalError(w http.ResponseWriter, op string, err error) {
	h.logger.Error(op+" failed", zap.Error(err))
	respondError(w, http.StatusInternalServerError, "internal", "internal error")
}

func artworkIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_id", "Invalid artwork ID")
		return 0, false
	}
	return id, true
}
