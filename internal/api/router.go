package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type RouterConfig struct {
	SessionCookie string
	SessionTTL    time.Duration
	AdminToken    string
}

func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(h.logger))
	r.Use(middleware.Recoverer)
	r.Use(Identity)

	r.Get("/healthz", h.Health)

	r.Route("/artworks", func(r chi.Router) {
		r.Get("/", h.ListArtworks)
		r.Get("/{id}", h.GetArtwork)

		r.Group(func(r chi.Router) {
			r.Use(requireAdmin(cfg.AdminToken))
			r.Post("/", h.CreateArtwork)
			r.Put("/{id}/quantity", h.UpdateQuantity)
			r.Delete("/{id}", h.DeleteArtwork)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(Sessions(cfg.SessionCookie, cfg.SessionTTL))

		r.Post("/cart/items", h.AddToCart)
		r.Get("/cart", h.GetCart)
		r.Delete("/cart", h.ClearCart)
		r.Post("/checkout", h.Checkout)
	})

	r.Route("/profile", func(r chi.Router) {
		r.Use(requireUser)
		r.Get("/", h.Profile)
		r.Get("/orders", h.ListOrders)
		r.Get("/orders/{id}", h.GetOrder)
	})

	return r
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("request",
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
