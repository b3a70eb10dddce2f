package domain

import "errors"

var (
	ErrSaleNotFound    = errors.New("sale not found")
	ErrItemNotFound    = errors.New("sale item not found")
	ErrPaymentNotFound = errors.New("sale payment not found")

	ErrNoItems          = errors.New("sale must have at least one item")
	ErrInvalidUnitPrice = errors.New("unit price must be greater than or equal to 0")
	ErrInvalidAmount    = errors.New("payment amount must be greater than 0")

	// State transition conflicts
	ErrSaleCancelled    = errors.New("sale is cancelled")
	ErrAlreadyCancelled = errors.New("sale is already cancelled")
	ErrLastItem         = errors.New("cannot remove the last item of a sale")

	// Payment reconciliation failures
	ErrPaymentExceedsTotal   = errors.New("payment exceeds remaining sale balance")
	ErrPaymentTotalMismatch  = errors.New("payments supplied at creation must equal the sale total")
	ErrDuplicateSaleNumber   = errors.New("sale number already exists")
	ErrManagerOverrideNeeded = errors.New("manager authorization required")
)
