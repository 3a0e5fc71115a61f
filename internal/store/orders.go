package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/safar/artstore/internal/database"
	"github.com/safar/artstore/internal/models"
)

const orderColumns = `order_id, order_number, user_id, subtotal, discount_pct, total_amount,
	address, delivery_date, payment_mode, status, created_at, updated_at`

func scanOrder(row scanner, order *models.Order) error {
	return row.Scan(
		&order.ID,
		&order.OrderNumber,
		&order.UserID,
		&order.Subtotal,
		&order.DiscountPct,
		&order.TotalAmount,
		&order.Address,
		&order.DeliveryDate,
		&order.PaymentMode,
		&order.Status,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
}

// InsertOrder writes the order header and fills in its generated id and
// timestamps. Items are inserted separately.
func InsertOrder(ctx context.Context, q Querier, order *models.Order) error {
	err := q.QueryRowContext(ctx,
		`INSERT INTO orders (order_number, user_id, subtotal, discount_pct, total_amount,
		                     address, delivery_date, payment_mode, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		 RETURNING order_id, created_at, updated_at`,
		order.OrderNumber, order.UserID, order.Subtotal, order.DiscountPct, order.TotalAmount,
		order.Address, order.DeliveryDate.Format("2006-01-02"), order.PaymentMode, order.Status,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

func InsertOrderItem(ctx context.Context, q Querier, item *models.OrderItem) error {
	err := q.QueryRowContext(ctx,
		`INSERT INTO order_items (order_id, artwork_id, quantity, unit_price)
		 VALUES ($1, $2, $3, $4)
		 RETURNING order_item_id`,
		item.OrderID, item.ArtworkID, item.Quantity, item.UnitPrice,
	).Scan(&item.ID)
	if err != nil {
		return fmt.Errorf("create order item: %w", err)
	}
	return nil
}

func GetOrder(ctx context.Context, q Querier, id int64) (*models.Order, error) {
	order := &models.Order{}

	query := `SELECT ` + orderColumns + ` FROM orders WHERE order_id = $1`

	if err := scanOrder(q.QueryRowContext(ctx, query, id), order); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	items, err := orderItems(ctx, q, []int64{id})
	if err != nil {
		return nil, err
	}
	order.Items = items[id]

	return order, nil
}

// ListOrdersCursor pages through a user's orders newest first, with their
// items attached.
func ListOrdersCursor(ctx context.Context, q Querier, userID int64, cursor string, limit int) (*CursorPage[models.Order], error) {
	cursorData, err := DecodeCursor(cursor)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}

	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE user_id = $1
		  AND (created_at, order_id) < ($2, $3)
		ORDER BY created_at DESC, order_id DESC
		LIMIT $4`

	rows, err := q.QueryContext(ctx, query, userID, cursorData.CreatedAt, cursorData.ID, limit+1)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		var order models.Order
		if err := scanOrder(rows, &order); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	hasMore := len(orders) > limit
	if hasMore {
		orders = orders[:limit]
	}

	ids := make([]int64, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
	}
	items, err := orderItems(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
	}

	var nextCursor string
	if hasMore && len(orders) > 0 {
		lastOrder := orders[len(orders)-1]
		nextCursor = EncodeCursor(OrderCursor{
			CreatedAt: lastOrder.CreatedAt,
			ID:        lastOrder.ID,
		})
	}

	return &CursorPage[models.Order]{
		Items:      orders,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}

func orderItems(ctx context.Context, q Querier, orderIDs []int64) (map[int64][]models.OrderItem, error) {
	items := make(map[int64][]models.OrderItem, len(orderIDs))
	if len(orderIDs) == 0 {
		return items, nil
	}

	rows, err := q.QueryContext(ctx,
		`SELECT oi.order_item_id, oi.order_id, oi.artwork_id, a.title, oi.quantity, oi.unit_price
		 FROM order_items oi
		 JOIN artworks a ON a.artwork_id = oi.artwork_id
		 WHERE oi.order_id = ANY($1)
		 ORDER BY oi.order_id, oi.order_item_id`,
		pq.Array(orderIDs))
	if err != nil {
		return nil, fmt.Errorf("get order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.OrderItem
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ArtworkID,
			&item.Title,
			&item.Quantity,
			&item.UnitPrice,
		)
		if err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items[item.OrderID] = append(items[item.OrderID], item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return items, nil
}

// UpdateOrderStatus stores status for an order and reports whether the row
// actually changed. Writing the status an order already has is a no-op.
func UpdateOrderStatus(ctx context.Context, q Querier, orderID int64, status string) (bool, error) {
	result, err := q.ExecContext(ctx,
		`UPDATE orders
		 SET status = $1, updated_at = NOW()
		 WHERE order_id = $2
		   AND status <> $1`,
		status, orderID)
	if err != nil {
		return false, fmt.Errorf("update order status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}
