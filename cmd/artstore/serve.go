package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/safar/artstore/internal/api"
	"github.com/safar/artstore/internal/cart"
	"github.com/safar/artstore/internal/checkout"
	"github.com/safar/artstore/internal/config"
	"github.com/safar/artstore/internal/database"
	"github.com/safar/artstore/internal/lifecycle"
	"github.com/safar/artstore/internal/logging"
	"github.com/safar/artstore/internal/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewConnection(ctx, &cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()
	logger.Info("connected to database")

	carts, closeCarts, err := newCartStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeCarts()
	logger.Info("cart store ready", zap.String("backend", cfg.Cart.Backend))

	handler := newHandler(db, carts, cfg, logger)
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      api.NewRouter(handler, api.RouterConfig{SessionCookie: cfg.Cart.CookieName, SessionTTL: cfg.Cart.SessionTTL, AdminToken: cfg.Store.AdminToken}),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server starting", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func newHandler(db *sql.DB, carts cart.Store, cfg *config.Config, logger *zap.Logger) *api.Handler {
	catalog := store.NewCatalog(db)

	svc := checkout.NewService(
		checkout.NewPostgresStore(db),
		catalog,
		logger.Named("checkout"),
		checkout.WithLocation(cfg.Store.Location),
	)
	resolver := lifecycle.NewResolver(
		lifecycle.NewPostgresRepository(db),
		logger.Named("lifecycle"),
		lifecycle.WithLocation(cfg.Store.Location),
	)

	return api.NewHandler(catalog, store.NewUsers(db), carts, svc, resolver, db, logger.Named("api"))
}

func newCartStore(ctx context.Context, cfg *config.Config) (cart.Store, func(), error) {
	if cfg.Cart.Backend != config.CartBackendRedis {
		return cart.NewMemoryStore(), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("connect to redis: %w", err)
	}
	return cart.NewRedisStore(client, cfg.Cart.SessionTTL), func() { client.Close() }, nil
}
