package checkout

import (
	"context"
	"database/sql"

	"github.com/safar/artstore/internal/database"
	"github.com/safar/artstore/internal/models"
	"github.com/safar/artstore/internal/store"
)

// PostgresStore runs checkouts as read-committed transactions. Row locks from
// LockArtworks plus the guarded decrement keep concurrent checkouts of the same
// artwork from overselling it.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (p *PostgresStore) InTx(ctx context.Context, fn func(Tx) error) error {
	return database.WithTransaction(ctx, p.db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		return fn(&postgresTx{tx: tx})
	})
}

type postgresTx struct {
	tx *sql.Tx
}

func (t *postgresTx) UserExists(ctx context.Context, userID int64) (bool, error) {
	return store.UserExists(ctx, t.tx, userID)
}

func (t *postgresTx) LockArtworks(ctx context.Context, ids []int64) (map[int64]models.Artwork, error) {
	return store.LockArtworks(ctx, t.tx, ids)
}

func (t *postgresTx) InsertOrder(ctx context.Context, order *models.Order) error {
	return store.InsertOrder(ctx, t.tx, order)
}

func (t *postgresTx) InsertOrderItem(ctx context.Context, item *models.OrderItem) error {
	return store.InsertOrderItem(ctx, t.tx, item)
}

func (t *postgresTx) DecrementStock(ctx context.Context, artworkID int64, quantity int) (int, error) {
	return store.DecrementStock(ctx, t.tx, artworkID, quantity)
}
