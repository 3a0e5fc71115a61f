// Package cart holds the per-session shopping cart and the stores that keep a
// session's cart between requests.
package cart

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// MaxQuantity bounds a single cart line. It matches the INTEGER columns the
// quantity is eventually stored in.
const MaxQuantity = math.MaxInt32

var (
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
	ErrInvalidArtwork  = errors.New("artwork id must be positive")
)

// Line is one requested artwork and how many units of it.
type Line struct {
	ArtworkID int64 `json:"artwork_id"`
	Quantity  int   `json:"quantity"`
}

// Cart maps artwork ids to requested quantities. A Cart belongs to a single
// session and is not safe for concurrent use.
type Cart struct {
	items map[int64]int
}

func New() *Cart {
	return &Cart{items: make(map[int64]int)}
}

// FromLines rebuilds a cart from stored lines, merging duplicates.
func FromLines(lines []Line) (*Cart, error) {
	c := New()
	for _, line := range lines {
		if err := c.Add(line.ArtworkID, line.Quantity); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Add merges quantity units of an artwork into the cart. A line may never
// exceed MaxQuantity; an Add that would push it over is rejected and the cart
// is left as it was.
func (c *Cart) Add(artworkID int64, quantity int) error {
	if artworkID <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidArtwork, artworkID)
	}
	if quantity <= 0 || quantity > MaxQuantity {
		return fmt.Errorf("%w: %d", ErrInvalidQuantity, quantity)
	}
	if cur := c.items[artworkID]; quantity > MaxQuantity-cur {
		return fmt.Errorf("%w: %d more than the %d already in the cart", ErrInvalidQuantity, quantity, cur)
	}
	if c.items == nil {
		c.items = make(map[int64]int)
	}
	c.items[artworkID] += quantity
	return nil
}

// Snapshot returns the lines ordered by artwork id. The slice is a copy.
func (c *Cart) Snapshot() []Line {
	lines := make([]Line, 0, len(c.items))
	for id, qty := range c.items {
		lines = append(lines, Line{ArtworkID: id, Quantity: qty})
	}
	sort.Slice(lines, func(i, j int) bool {
		return lines[i].ArtworkID < lines[j].ArtworkID
	})
	return lines
}

// ArtworkIDs returns the distinct artwork ids in ascending order.
func (c *Cart) ArtworkIDs() []int64 {
	lines := c.Snapshot()
	ids := make([]int64, len(lines))
	for i, line := range lines {
		ids[i] = line.ArtworkID
	}
	return ids
}

func (c *Cart) Quantity(artworkID int64) int {
	return c.items[artworkID]
}

func (c *Cart) Len() int {
	return len(c.items)
}

func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

func (c *Cart) Clear() {
	clear(c.items)
}

func (c *Cart) clone() *Cart {
	out := New()
	for id, qty := range c.items {
		out.items[id] = qty
	}
	return out
}

// ParseQuantity reads a quantity from user input. A missing value means one
// unit; anything present must be a positive integer.
func ParseQuantity(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 1, nil
	}
	qty, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidQuantity, raw)
	}
	if qty <= 0 || qty > MaxQuantity {
		return 0, fmt.Errorf("%w: %d", ErrInvalidQuantity, qty)
	}
	return qty, nil
}
