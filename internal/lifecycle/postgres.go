package lifecycle

import (
	"context"
	"database/sql"

	"github.com/safar/artstore/internal/models"
	"github.com/safar/artstore/internal/store"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (p *PostgresRepository) GetOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	return store.GetOrder(ctx, p.db, orderID)
}

func (p *PostgresRepository) ListOrders(ctx context.Context, userID int64, cursor string, limit int) (*store.CursorPage[models.Order], error) {
	return store.ListOrdersCursor(ctx, p.db, userID, cursor, limit)
}

func (p *PostgresRepository) UpdateStatus(ctx context.Context, orderID int64, status string) (bool, error) {
	return store.UpdateOrderStatus(ctx, p.db, orderID, status)
}
