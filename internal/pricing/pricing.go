// Package pricing turns priced cart lines into a quote: subtotal, discount
// tier and payable total.
package pricing

import (
	"github.com/shopspring/decimal"
)

// Tier thresholds apply to the pre-discount subtotal, inclusive.
var (
	GoldThreshold   = decimal.NewFromInt(10000)
	SilverThreshold = decimal.NewFromInt(5000)
)

const (
	GoldPercent   = 15
	SilverPercent = 10
)

var hundred = decimal.NewFromInt(100)

type Line struct {
	ArtworkID int64
	UnitPrice decimal.Decimal
	Quantity  int
}

func (l Line) Amount() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Quote struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	DiscountPct int             `json:"discount_pct"`
	Discount    decimal.Decimal `json:"discount"`
	Total       decimal.Decimal `json:"total"`
}

// DiscountPercent returns the tier for a pre-discount subtotal.
func DiscountPercent(subtotal decimal.Decimal) int {
	switch {
	case subtotal.GreaterThanOrEqual(GoldThreshold):
		return GoldPercent
	case subtotal.GreaterThanOrEqual(SilverThreshold):
		return SilverPercent
	default:
		return 0
	}
}

// ForSubtotal prices an already summed subtotal. The discount is rounded to
// cents so the total can be stored exactly.
func ForSubtotal(subtotal decimal.Decimal) Quote {
	pct := DiscountPercent(subtotal)
	discount := subtotal.Mul(decimal.NewFromInt(int64(pct))).Div(hundred).Round(2)

	return Quote{
		Subtotal:    subtotal,
		DiscountPct: pct,
		Discount:    discount,
		Total:       subtotal.Sub(discount),
	}
}

func Calculate(lines []Line) Quote {
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.Amount())
	}
	return ForSubtotal(subtotal)
}
