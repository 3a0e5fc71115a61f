package checkout

import (
	"errors"
	"fmt"
	"strings"

	"github.com/safar/artstore/internal/database"
)

// ErrValidation matches every ValidationError. Validation failures change no
// state; the user fixes the input and tries again.
var ErrValidation = errors.New("invalid checkout")

type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

var (
	ErrUnauthenticated = &ValidationError{Reason: "login required to checkout"}
	ErrUnknownUser     = &ValidationError{Reason: "user does not exist"}
	ErrEmptyCart       = &ValidationError{Reason: "cart is empty"}
	ErrMissingFields   = &ValidationError{Reason: "missing checkout fields"}
	ErrFieldTooLong    = &ValidationError{Reason: "checkout fields too long"}
	ErrInvalidLine     = &ValidationError{Reason: "cart line has an invalid quantity"}
)

// ErrInsufficientStock matches InsufficientStockError and the store's guarded
// decrement failure.
var ErrInsufficientStock = database.ErrInsufficientStock

// Shortage describes one cart line that cannot be filled. An artwork that no
// longer exists is reported with Missing set and nothing available.
type Shortage struct {
	ArtworkID int64  `json:"artwork_id"`
	Title     string `json:"title,omitempty"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
	Missing   bool   `json:"missing,omitempty"`
}

type InsufficientStockError struct {
	Shortages []Shortage
}

func (e *InsufficientStockError) Error() string {
	parts := make([]string, len(e.Shortages))
	for i, s := range e.Shortages {
		if s.Missing {
			parts[i] = fmt.Sprintf("artwork %d no longer exists", s.ArtworkID)
			continue
		}
		parts[i] = fmt.Sprintf("artwork %d: requested %d, available %d", s.ArtworkID, s.Requested, s.Available)
	}
	return "insufficient stock: " + strings.Join(parts, "; ")
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// ErrPersistence matches every PersistenceError.
var ErrPersistence = errors.New("persistence failure")

// PersistenceError means storage could not complete the checkout. Nothing was
// written and the cart is intact. Whether sending the same request again can
// succeed depends on the class of the underlying failure.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

// Retryable reports whether storage was unavailable rather than refusing the
// data, that is whether an unchanged retry may succeed.
func (e *PersistenceError) Retryable() bool {
	return database.IsRetryable(e.Err)
}

// Class is the database classification of the underlying failure.
func (e *PersistenceError) Class() database.ErrorClass {
	return database.ClassifyError(e.Err)
}
