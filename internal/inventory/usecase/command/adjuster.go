package command

import (
	"context"

	"github.com/quintaldo/pos-engine/internal/inventory/domain"
)

// Adjuster translates a requested stock change into a ledger entry. Sale
// creation and cancellation go through it rather than calling the ledger
// directly.
type Adjuster struct {
	products domain.ProductRepository
	ledger   *ApplyMovementHandler
}

// NewAdjuster creates a new inventory adjuster
func NewAdjuster(products domain.ProductRepository, ledger *ApplyMovementHandler) *Adjuster {
	return &Adjuster{products: products, ledger: ledger}
}

// DecrementForSale records an OUT movement for a sale line. The snapshot
// pre-check yields a descriptive error early; the ledger re-checks under the
// row lock and remains the authoritative guard against races.
func (a *Adjuster) DecrementForSale(ctx context.Context, orgID, productID uint, quantity int, userID uint, saleRef string) (*domain.StockMovement, error) {
	if quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}

	product, err := a.products.FindByID(ctx, orgID, productID)
	if err != nil {
		return nil, err
	}
	if !product.IsSellable() {
		return nil, domain.ErrProductInactive
	}
	if product.CurrentStock < quantity {
		return nil, &domain.InsufficientStockError{
			ProductID: int(product.ID),
			Available: product.CurrentStock,
			Requested: quantity,
		}
	}

	return a.ledger.Handle(ctx, ApplyMovementCommand{
		OrganizationID: orgID,
		ProductID:      productID,
		Type:           domain.MovementOut,
		Quantity:       quantity,
		UserID:         userID,
		Reason:         "sale",
		Reference:      saleRef,
	})
}

// RestoreForSale records an IN movement reversing a sale line's stock effect
func (a *Adjuster) RestoreForSale(ctx context.Context, orgID, productID uint, quantity int, userID uint, saleRef, reason string) (*domain.StockMovement, error) {
	if quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	if reason == "" {
		reason = "sale reversal"
	}

	return a.ledger.Handle(ctx, ApplyMovementCommand{
		OrganizationID: orgID,
		ProductID:      productID,
		Type:           domain.MovementIn,
		Quantity:       quantity,
		UserID:         userID,
		Reason:         reason,
		Reference:      saleRef,
	})
}

// SetExact records an ADJUSTMENT movement setting the stock level directly,
// used for manual corrections such as stock counts.
func (a *Adjuster) SetExact(ctx context.Context, orgID, productID uint, quantity int, userID uint, reason string) (*domain.StockMovement, error) {
	if quantity < 0 {
		return nil, domain.ErrInvalidQuantity
	}
	if reason == "" {
		reason = "manual adjustment"
	}

	return a.ledger.Handle(ctx, ApplyMovementCommand{
		OrganizationID: orgID,
		ProductID:      productID,
		Type:           domain.MovementAdjustment,
		Quantity:       quantity,
		UserID:         userID,
		Reason:         reason,
	})
}
