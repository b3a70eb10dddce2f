package command

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/quintaldo/pos-engine/internal/inventory/domain"
)

// ApplyMovementCommand represents the command to append one stock movement
type ApplyMovementCommand struct {
	OrganizationID uint
	ProductID      uint
	Type           domain.MovementType
	Quantity       int
	UserID         uint
	Reason         string
	Reference      string
}

// ApplyMovementHandler is the stock ledger: the only code path that changes
// Product.CurrentStock. It reads the locked product row, appends the
// movement and writes the new stock projection inside one atomic unit.
type ApplyMovementHandler struct {
	products  domain.ProductRepository
	movements domain.MovementRepository
	tx        domain.TxManager
}

// NewApplyMovementHandler creates a new apply movement handler
func NewApplyMovementHandler(products domain.ProductRepository, movements domain.MovementRepository, tx domain.TxManager) *ApplyMovementHandler {
	return &ApplyMovementHandler{products: products, movements: movements, tx: tx}
}

// Handle executes the apply movement command
func (h *ApplyMovementHandler) Handle(ctx context.Context, cmd ApplyMovementCommand) (*domain.StockMovement, error) {
	if !cmd.Type.Valid() {
		return nil, fmt.Errorf("unknown movement type %q: %w", cmd.Type, domain.ErrInvalidQuantity)
	}
	if cmd.Quantity <= 0 && cmd.Type != domain.MovementAdjustment {
		return nil, domain.ErrInvalidQuantity
	}
	if cmd.Type == domain.MovementAdjustment && cmd.Quantity < 0 {
		return nil, domain.ErrInvalidQuantity
	}

	var movement *domain.StockMovement

	err := h.tx.Do(ctx, func(ctx context.Context) error {
		product, err := h.products.FindForUpdate(ctx, cmd.OrganizationID, cmd.ProductID)
		if err != nil {
			return err
		}

		newStock := product.CurrentStock
		switch cmd.Type {
		case domain.MovementIn:
			newStock += cmd.Quantity
		case domain.MovementOut:
			newStock -= cmd.Quantity
		case domain.MovementAdjustment:
			newStock = cmd.Quantity
		}

		if newStock < 0 {
			return &domain.InsufficientStockError{
				ProductID: int(product.ID),
				Available: product.CurrentStock,
				Requested: cmd.Quantity,
			}
		}

		movement = &domain.StockMovement{
			OrganizationID: cmd.OrganizationID,
			ProductID:      product.ID,
			Type:           cmd.Type,
			Quantity:       cmd.Quantity,
			PreviousStock:  product.CurrentStock,
			NewStock:       newStock,
			Reason:         cmd.Reason,
			Reference:      cmd.Reference,
			UserID:         cmd.UserID,
			CorrelationID:  uuid.NewString(),
		}

		if err := h.movements.Create(ctx, movement); err != nil {
			return fmt.Errorf("failed to record stock movement: %w", err)
		}

		return h.products.UpdateStock(ctx, product.ID, newStock)
	})
	if err != nil {
		return nil, err
	}

	return movement, nil
}
