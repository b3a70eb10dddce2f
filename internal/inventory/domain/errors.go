package domain

import (
	"errors"
	"fmt"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrProductInactive  = errors.New("product is not active")
	ErrInvalidQuantity  = errors.New("quantity must be greater than 0")
	ErrMovementNotFound = errors.New("stock movement not found")

	// Only the most recent movement of a product may be deleted, and doing
	// so rewinds the product stock to the recorded previous value.
	ErrMovementNotLatest = errors.New("only the most recent stock movement can be deleted")
)

// InsufficientStockError is returned when an OUT movement would drive the
// stock level below zero. It carries the quantities so callers can surface
// an actionable message.
type InsufficientStockError struct {
	ProductID int
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock: available: %d, requested: %d", e.Available, e.Requested)
}

// IsInsufficientStock reports whether err is an insufficient stock failure
func IsInsufficientStock(err error) bool {
	var target *InsufficientStockError
	return errors.As(err, &target)
}
