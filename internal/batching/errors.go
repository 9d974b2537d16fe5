package batching

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCapacity is returned when the capacity is zero or negative.
	ErrInvalidCapacity = errors.New("capacity must be a positive width")
	// ErrInvalidDeckle is returned when an order's deckle is zero or negative.
	ErrInvalidDeckle = errors.New("deckle must be a positive width")
	// ErrInvalidQuantity is returned when a reel or stock quantity is negative.
	ErrInvalidQuantity = errors.New("reel quantities must be non-negative")
)

// ValidateCapacity reports whether capacity is usable by Allocate.
func ValidateCapacity(capacity Width) error {
	if !capacity.IsPositive() {
		return fmt.Errorf("%w, got %s", ErrInvalidCapacity, capacity)
	}
	return nil
}

// ValidateOrder checks the numeric preconditions Allocate relies on.
// Callers run it at the input boundary; Allocate never does.
func ValidateOrder(o Order) error {
	if !o.Deckle.IsPositive() {
		return fmt.Errorf("%w, got %s", ErrInvalidDeckle, o.Deckle)
	}
	if o.ReelQty.IsNegative() {
		return fmt.Errorf("%w: reel qty %s", ErrInvalidQuantity, o.ReelQty)
	}
	if o.StockReal.IsNegative() {
		return fmt.Errorf("%w: stock %s", ErrInvalidQuantity, o.StockReal)
	}
	return nil
}
