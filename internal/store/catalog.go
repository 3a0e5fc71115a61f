package store

import (
	"context"
	"database/sql"

	"github.com/safar/artstore/internal/models"
)

// Catalog binds the artwork functions to a connection pool.
type Catalog struct {
	db *sql.DB
}

func NewCatalog(db *sql.DB) *Catalog {
	return &Catalog{db: db}
}

func (c *Catalog) GetArtwork(ctx context.Context, id int64) (*models.Artwork, error) {
	return GetArtwork(ctx, c.db, id)
}

func (c *Catalog) GetArtworks(ctx context.Context, ids []int64) (map[int64]models.Artwork, error) {
	return GetArtworks(ctx, c.db, ids)
}

func (c *Catalog) ListArtworks(ctx context.Context, page, pageSize int) (*OffsetPage[models.Artwork], error) {
	return ListArtworks(ctx, c.db, page, pageSize)
}

func (c *Catalog) CreateArtwork(ctx context.Context, in NewArtwork) (*models.Artwork, error) {
	return CreateArtwork(ctx, c.db, in)
}

func (c *Catalog) SetArtworkQuantity(ctx context.Context, id int64, quantity int) (*models.Artwork, error) {
	return SetArtworkQuantity(ctx, c.db, id, quantity)
}

func (c *Catalog) DeleteArtwork(ctx context.Context, id int64) error {
	return DeleteArtwork(ctx, c.db, id)
}
