package command

import (
	"context"
	"fmt"

	invcommand "github.com/quintaldo/pos-engine/internal/inventory/usecase/command"
	"github.com/quintaldo/pos-engine/internal/sale/domain"
)

// RemoveItemCommand represents the command to remove a line from a sale
type RemoveItemCommand struct {
	OrganizationID uint
	ItemID         uint
	UserID         uint
}

// RemoveItemHandler soft-deletes a sale line and restores its stock. A sale
// must retain at least one live item.
type RemoveItemHandler struct {
	sales    domain.SaleRepository
	adjuster *invcommand.Adjuster
	tx       domain.TxManager
}

// NewRemoveItemHandler creates a new remove item handler
func NewRemoveItemHandler(sales domain.SaleRepository, adjuster *invcommand.Adjuster, tx domain.TxManager) *RemoveItemHandler {
	return &RemoveItemHandler{sales: sales, adjuster: adjuster, tx: tx}
}

// Handle executes the remove item command
func (h *RemoveItemHandler) Handle(ctx context.Context, cmd RemoveItemCommand) (*domain.Sale, error) {
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

		items, err := h.sales.LiveItems(ctx, sale.ID)
		if err != nil {
			return err
		}
		if len(items) <= 1 {
			return domain.ErrLastItem
		}

		if err := h.sales.DeleteItem(ctx, item.ID); err != nil {
			return fmt.Errorf("failed to delete sale item: %w", err)
		}

		if _, err := h.adjuster.RestoreForSale(ctx, cmd.OrganizationID, item.ProductID, item.Quantity, cmd.UserID, sale.SaleNumber, "sale item removed"); err != nil {
			return err
		}

		return recomputeAndReconcile(ctx, h.sales, sale)
	})
	if err != nil {
		return nil, err
	}

	return h.sales.FindByID(ctx, cmd.OrganizationID, saleID)
}
