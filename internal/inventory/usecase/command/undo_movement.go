package command

import (
	"context"

	"github.com/quintaldo/pos-engine/internal/inventory/domain"
)

// UndoMovementCommand represents the command to undo one stock movement
type UndoMovementCommand struct {
	OrganizationID uint
	MovementID     uint
	UserID         uint
}

// UndoMovementHandler deletes the single most recent movement of a product,
// rewinding the product stock to the movement's recorded previous value.
// Used to undo an erroneous manual adjustment; older movements are
// immutable.
type UndoMovementHandler struct {
	products  domain.ProductRepository
	movements domain.MovementRepository
	tx        domain.TxManager
}

// NewUndoMovementHandler creates a new undo movement handler
func NewUndoMovementHandler(products domain.ProductRepository, movements domain.MovementRepository, tx domain.TxManager) *UndoMovementHandler {
	return &UndoMovementHandler{products: products, movements: movements, tx: tx}
}

// Handle executes the undo movement command
func (h *UndoMovementHandler) Handle(ctx context.Context, cmd UndoMovementCommand) error {
	return h.tx.Do(ctx, func(ctx context.Context) error {
		movement, err := h.movements.FindByID(ctx, cmd.OrganizationID, cmd.MovementID)
		if err != nil {
			return err
		}

		// Lock the product row first so a concurrent movement cannot slip
		// in between the latest-check and the rewind.
		if _, err := h.products.FindForUpdate(ctx, cmd.OrganizationID, movement.ProductID); err != nil {
			return err
		}

		latest, err := h.movements.LatestForProduct(ctx, movement.ProductID)
		if err != nil {
			return err
		}
		if latest.ID != movement.ID {
			return domain.ErrMovementNotLatest
		}

		if err := h.movements.Delete(ctx, movement.ID); err != nil {
			return err
		}

		return h.products.UpdateStock(ctx, movement.ProductID, movement.PreviousStock)
	})
}
