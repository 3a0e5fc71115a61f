package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/safar/artstore/internal/database"
	"github.com/safar/artstore/internal/models"
	"github.com/shopspring/decimal"
)

const artworkColumns = `artwork_id, title, description, artist_name, price, available_qty, status, created_at, updated_at`

func scanArtwork(row scanner, artwork *models.Artwork) error {
	return row.Scan(
		&artwork.ID,
		&artwork.Title,
		&artwork.Description,
		&artwork.ArtistName,
		&artwork.Price,
		&artwork.AvailableQty,
		&artwork.Status,
		&artwork.CreatedAt,
		&artwork.UpdatedAt,
	)
}

type NewArtwork struct {
	Title        string
	Description  string
	ArtistName   string
	Price        decimal.Decimal
	AvailableQty int
}

func CreateArtwork(ctx context.Context, q Querier, in NewArtwork) (*models.Artwork, error) {
	if in.Price.IsNegative() {
		return nil, fmt.Errorf("create artwork: negative price %s", in.Price)
	}
	if in.AvailableQty < 0 {
		return nil, fmt.Errorf("create artwork: negative quantity %d", in.AvailableQty)
	}

	artwork := &models.Artwork{}

	query := `
		INSERT INTO artworks (title, description, artist_name, price, available_qty, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING ` + artworkColumns

	err := scanArtwork(q.QueryRowContext(ctx, query,
		in.Title, in.Description, in.ArtistName, in.Price, in.AvailableQty,
		models.ArtworkStatusFor(in.AvailableQty),
	), artwork)
	if err != nil {
		return nil, fmt.Errorf("create artwork: %w", err)
	}

	return artwork, nil
}

func GetArtwork(ctx context.Context, q Querier, id int64) (*models.Artwork, error) {
	artwork := &models.Artwork{}

	query := `SELECT ` + artworkColumns + ` FROM artworks WHERE artwork_id = $1`

	if err := scanArtwork(q.QueryRowContext(ctx, query, id), artwork); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrArtworkNotFound
		}
		return nil, fmt.Errorf("get artwork: %w", err)
	}

	return artwork, nil
}

// GetArtworks returns the artworks that exist among ids. Unknown ids are
// omitted; callers compare the result against what they asked for.
func GetArtworks(ctx context.Context, q Querier, ids []int64) (map[int64]models.Artwork, error) {
	query := `SELECT ` + artworkColumns + ` FROM artworks WHERE artwork_id = ANY($1)`
	return queryArtworkSet(ctx, q, query, ids)
}

// LockArtworks is GetArtworks with row locks held until tx ends. Rows are
// locked in id order so concurrent checkouts over overlapping carts cannot
// deadlock each other.
func LockArtworks(ctx context.Context, tx *sql.Tx, ids []int64) (map[int64]models.Artwork, error) {
	query := `
		SELECT ` + artworkColumns + `
		FROM artworks
		WHERE artwork_id = ANY($1)
		ORDER BY artwork_id
		FOR UPDATE`
	return queryArtworkSet(ctx, tx, query, ids)
}

func queryArtworkSet(ctx context.Context, q Querier, query string, ids []int64) (map[int64]models.Artwork, error) {
	artworks := make(map[int64]models.Artwork, len(ids))
	if len(ids) == 0 {
		return artworks, nil
	}

	rows, err := q.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("query artworks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var artwork models.Artwork
		if err := scanArtwork(rows, &artwork); err != nil {
			return nil, fmt.Errorf("scan artwork: %w", err)
		}
		artworks[artwork.ID] = artwork
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return artworks, nil
}

// DecrementStock takes quantity units of an artwork only if that many remain,
// and moves the status in the same statement. It returns the units left.
func DecrementStock(ctx context.Context, q Querier, artworkID int64, quantity int) (int, error) {
	if quantity <= 0 {
		return 0, fmt.Errorf("decrement stock: non-positive quantity %d", quantity)
	}

	var remaining int
	err := q.QueryRowContext(ctx,
		`UPDATE artworks
		 SET available_qty = available_qty - $1,
		     status = CASE WHEN available_qty - $1 = 0 THEN $3 ELSE $4 END,
		     updated_at = NOW()
		 WHERE artwork_id = $2
		   AND available_qty >= $1
		 RETURNING available_qty`,
		quantity, artworkID, models.ArtworkStatusSold, models.ArtworkStatusAvailable).Scan(&remaining)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, database.ErrInsufficientStock
		}
		return 0, fmt.Errorf("decrement stock: %w", err)
	}

	return remaining, nil
}

// SetArtworkQuantity restocks an artwork. Quantity and status are always
// written together.
func SetArtworkQuantity(ctx context.Context, q Querier, artworkID int64, quantity int) (*models.Artwork, error) {
	if quantity < 0 {
		return nil, fmt.Errorf("set artwork quantity: negative quantity %d", quantity)
	}

	artwork := &models.Artwork{}

	query := `
		UPDATE artworks
		SET available_qty = $1, status = $2, updated_at = NOW()
		WHERE artwork_id = $3
		RETURNING ` + artworkColumns

	err := scanArtwork(q.QueryRowContext(ctx, query,
		quantity, models.ArtworkStatusFor(quantity), artworkID), artwork)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrArtworkNotFound
		}
		return nil, fmt.Errorf("set artwork quantity: %w", err)
	}

	return artwork, nil
}

// DeleteArtwork removes an artwork from the catalog. Artworks that appear on an
// order are kept and reported with database.ErrArtworkInUse.
func DeleteArtwork(ctx context.Context, q Querier, artworkID int64) error {
	result, err := q.ExecContext(ctx, `DELETE FROM artworks WHERE artwork_id = $1`, artworkID)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return database.ErrArtworkInUse
		}
		return fmt.Errorf("delete artwork: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return database.ErrArtworkNotFound
	}
	return nil
}

func ListArtworks(ctx context.Context, q Querier, page, pageSize int) (*OffsetPage[models.Artwork], error) {
	var total int64
	err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM artworks`).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count artworks: %w", err)
	}

	offset := (page - 1) * pageSize
	query := `
		SELECT ` + artworkColumns + `
		FROM artworks
		ORDER BY created_at DESC, artwork_id DESC
		LIMIT $1 OFFSET $2`

	rows, err := q.QueryContext(ctx, query, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("list artworks: %w", err)
	}
	defer rows.Close()

	artworks := []models.Artwork{}
	for rows.Next() {
		var artwork models.Artwork
		if err := scanArtwork(rows, &artwork); err != nil {
			return nil, fmt.Errorf("scan artwork: %w", err)
		}
		artworks = append(artworks, artwork)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return &OffsetPage[models.Artwork]{
		Items:      artworks,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages(total, pageSize),
	}, nil
}
