// Package checkouttest provides an in-memory checkout.Store for tests.
package checkouttest

import (
	"context"
	"database/sql/driver"
	"fmt"
	"sync"

	"github.com/safar/artstore/internal/checkout"
	"github.com/safar/artstore/internal/models"
	"github.com/shopspring/decimal"
)

// Store keeps users, artworks, orders and items in memory. Transactions run
// one at a time against a private copy of the data, which replaces the shared
// data only when the transaction commits.
type Store struct {
	mu sync.Mutex
	st state

	// FailAt names a Tx method ("InsertOrder", "DecrementStock", ...) or
	// "Commit"; when set, that step returns FailErr.
	FailAt  string
	FailErr error
	// OnLock may rewrite what LockArtworks returns, e.g. to simulate a read
	// that is stale by the time the decrement runs.
	OnLock func(map[int64]models.Artwork)

	Commits   int
	Rollbacks int
}

type state struct {
	users       map[int64]bool
	artworks    map[int64]models.Artwork
	orders      []models.Order
	items       []models.OrderItem
	nextArtwork int64
	nextOrder   int64
	nextItem    int64
}

func (s state) clone() state {
	out := s
	out.users = make(map[int64]bool, len(s.users))
	for k, v := range s.users {
		out.users[k] = v
	}
	out.artworks = make(map[int64]models.Artwork, len(s.artworks))
	for k, v := range s.artworks {
		out.artworks[k] = v
	}
	out.orders = append([]models.Order(nil), s.orders...)
	out.items = append([]models.OrderItem(nil), s.items...)
	return out
}

// ErrInjected is the default failure. It reads as a dropped connection, so
// the checkout reports it as retryable.
var ErrInjected = fmt.Errorf("injected failure: %w", driver.ErrBadConn)

func New() *Store {
	return &Store{st: state{
		users:    make(map[int64]bool),
		artworks: make(map[int64]models.Artwork),
	}}
}

func (s *Store) AddUser(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.users[id] = true
}

// AddArtwork stores a and returns it with its id and status filled in.
func (s *Store) AddArtwork(a models.Artwork) models.Artwork {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.nextArtwork++
	a.ID = s.st.nextArtwork
	a.Status = models.ArtworkStatusFor(a.AvailableQty)
	s.st.artworks[a.ID] = a
	return a
}

func (s *Store) RemoveArtwork(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.st.artworks, id)
}

func (s *Store) SetPrice(id int64, price decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.st.artworks[id]
	cur.Price = price
	s.st.artworks[id] = cur
}

func (s *Store) Artwork(id int64) models.Artwork {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.artworks[id]
}

func (s *Store) Orders() []models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Order(nil), s.st.orders...)
}

func (s *Store) Items() []models.OrderItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.OrderItem(nil), s.st.items...)
}

func (s *Store) GetArtworks(_ context.Context, ids []int64) (map[int64]models.Artwork, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailAt == "GetArtworks" {
		return nil, s.FailErr
	}
	out := make(map[int64]models.Artwork, len(ids))
	for _, id := range ids {
		if a, ok := s.st.artworks[id]; ok {
			out[id] = a
		}
	}
	return out, nil
}

func (s *Store) InTx(_ context.Context, fn func(checkout.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{store: s, st: s.st.clone()}
	if err := fn(tx); err != nil {
		s.Rollbacks++
		return err
	}
	if err := s.fail("Commit"); err != nil {
		s.Rollbacks++
		return err
	}

	s.st = tx.st
	s.Commits++
	return nil
}

func (s *Store) fail(op string) error {
	if s.FailAt == op {
		if s.FailErr != nil {
			return s.FailErr
		}
		return ErrInjected
	}
	return nil
}

type memTx struct {
	store *Store
	st    state
}

func (t *memTx) UserExists(_ context.Context, userID int64) (bool, error) {
	if err := t.store.fail("UserExists"); err != nil {
		return false, err
	}
	return t.st.users[userID], nil
}

func (t *memTx) LockArtworks(_ context.Context, ids []int64) (map[int64]models.Artwork, error) {
	if err := t.store.fail("LockArtworks"); err != nil {
		return nil, err
	}
	out := make(map[int64]models.Artwork, len(ids))
	for _, id := range ids {
		if a, ok := t.st.artworks[id]; ok {
			out[id] = a
		}
	}
	if t.store.OnLock != nil {
		t.store.OnLock(out)
	}
	return out, nil
}

func (t *memTx) InsertOrder(_ context.Context, order *models.Order) error {
	if err := t.store.fail("InsertOrder"); err != nil {
		return err
	}
	t.st.nextOrder++
	order.ID = t.st.nextOrder
	t.st.orders = append(t.st.orders, *order)
	return nil
}

func (t *memTx) InsertOrderItem(_ context.Context, item *models.OrderItem) error {
	if err := t.store.fail("InsertOrderItem"); err != nil {
		return err
	}
	t.st.nextItem++
	item.ID = t.st.nextItem
	t.st.items = append(t.st.items, *item)
	return nil
}

func (t *memTx) DecrementStock(_ context.Context, artworkID int64, quantity int) (int, error) {
	if err := t.store.fail("DecrementStock"); err != nil {
		return 0, err
	}
	a, ok := t.st.artworks[artworkID]
	if !ok || a.AvailableQty < quantity {
		return 0, checkout.ErrInsufficientStock
	}
	a.AvailableQty -= quantity
	a.Status = models.ArtworkStatusFor(a.AvailableQty)
	t.st.artworks[artworkID] = a
	return a.AvailableQty, nil
}
