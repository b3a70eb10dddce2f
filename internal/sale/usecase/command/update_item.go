package command

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	invdomain "github.com/quintaldo/pos-engine/internal/inventory/domain"
	invcommand "github.com/quintaldo/pos-engine/internal/inventory/usecase/command"
	"github.com/quintaldo/pos-engine/internal/sale/domain"
)

// UpdateItemCommand represents the command to change a sale line's quantity
// or unit price
type UpdateItemCommand struct {
	OrganizationID uint
	ItemID         uint
	Quantity       *int
	UnitPrice      *decimal.Decimal
	UserID         uint
}

// UpdateItemHandler re-derives the stock delta from a quantity change and
// writes the compensating ledger entry in the same atomic unit as the item
// update.
type UpdateItemHandler struct {
	sales    domain.SaleRepository
	adjuster *invcommand.Adjuster
	tx       domain.TxManager
}

// NewUpdateItemHandler creates a new update item handler
func NewUpdateItemHandler(sales domain.SaleRepository, adjuster *invcommand.Adjuster, tx domain.TxManager) *UpdateItemHandler {
	return &UpdateItemHandler{sales: sales, adjuster: adjuster, tx: tx}
}

// Handle executes the update item command
func (h *UpdateItemHandler) Handle(ctx context.Context, cmd UpdateItemCommand) (*domain.Sale, error) {
	if cmd.Quantity != nil && *cmd.Quantity <= 0 {
		return nil, invdomain.ErrInvalidQuantity
	}
	if cmd.UnitPrice != nil && cmd.UnitPrice.IsNegative() {
		return nil, domain.ErrInvalidUnitPrice
	}

	var saleID uint

	err := h.tx.Do(ctx, func(ctx context.Context) error {
		item, err := h.sales.FindItem(ctx, cmd.OrganizationID, cmd.ItemID)
		if err != nil {
			return err
		}

		sale, err := h.sales.FindByID(ctx, cmd.OrganizationID, item.SaleID)
		if err != nil {
			return err
		}
		if sale.IsCancelled() {
			return domain.ErrSaleCancelled
		}
		saleID = sale.ID

		if cmd.Quantity != nil && *cmd.Quantity != item.Quantity {
			delta := *cmd.Quantity - item.Quantity
			if delta > 0 {
				if _, err := h.adjuster.DecrementForSale(ctx, cmd.OrganizationID, item.ProductID, delta, cmd.UserID, sale.SaleNumber); err != nil {
					return err
				}
			} else {
				if _, err := h.adjuster.RestoreForSale(ctx, cmd.OrganizationID, item.ProductID, -delta, cmd.UserID, sale.SaleNumber, "sale item update"); err != nil {
					return err
				}
			}
			item.Quantity = *cmd.Quantity
		}

		if cmd.UnitPrice != nil {
			item.UnitPrice = *cmd.UnitPrice
		}
		item.ComputeSubtotal()

		if err := h.sales.UpdateItem(ctx, item); err != nil {
			return fmt.Errorf("failed to update sale item: %w", err)
		}

		return recomputeAndReconcile(ctx, h.sales, sale)
	})
	if err != nil {
		return nil, err
	}

	return h.sales.FindByID(ctx, cmd.OrganizationID, saleID)
}
