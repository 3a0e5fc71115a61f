package checkout

import (
	"context"

	"github.com/safar/artstore/internal/cart"
	"github.com/safar/artstore/internal/pricing"
	"github.com/shopspring/decimal"
)

type QuotedLine struct {
	ArtworkID int64           `json:"artwork_id"`
	Title     string          `json:"title"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Amount    decimal.Decimal `json:"amount"`
}

// CartQuote is what the cart page shows: the lines that can be bought, what
// they cost after the discount tier, and the lines that currently cannot.
type CartQuote struct {
	Lines       []QuotedLine  `json:"lines"`
	Quote       pricing.Quote `json:"quote"`
	Unavailable []Shortage    `json:"unavailable,omitempty"`
}

// Quote prices c against the catalog without taking locks or writing. The
// numbers match what Checkout charges as long as prices and stock do not
// change in between.
func (s *Service) Quote(ctx context.Context, c *cart.Cart) (*CartQuote, error) {
	out := &CartQuote{Lines: []QuotedLine{}, Quote: pricing.Calculate(nil)}
	if c.IsEmpty() {
		return out, nil
	}

	lines := c.Snapshot()
	if err := validateLines(lines); err != nil {
		return nil, err
	}

	artworks, err := s.catalog.GetArtworks(ctx, c.ArtworkIDs())
	if err != nil {
		return nil, &PersistenceError{Op: "quote", Err: err}
	}

	priced, shortages := priceLines(lines, artworks)
	for _, line := range priced {
		out.Lines = append(out.Lines, QuotedLine{
			ArtworkID: line.ArtworkID,
			Title:     artworks[line.ArtworkID].Title,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			Amount:    line.Amount(),
		})
	}
	out.Quote = pricing.Calculate(priced)
	out.Unavailable = shortages

	return out, nil
}
