package command

import (
	"context"
	"fmt"

	catalogdomain "github.com/quintaldo/pos-engine/internal/catalog/domain"
	invcommand "github.com/quintaldo/pos-engine/internal/inventory/usecase/command"
	"github.com/quintaldo/pos-engine/internal/sale/domain"
	"github.com/quintaldo/pos-engine/kafka"
	"github.com/quintaldo/pos-engine/pkg/auth"
	"github.com/quintaldo/pos-engine/pkg/logger"
)

// CancelSaleCommand represents the command to cancel a sale. Actors without
// elevated privileges must supply the store's manager override PIN.
type CancelSaleCommand struct {
	OrganizationID uint
	SaleID         uint
	UserID         uint
	Reason         string
	Privileged     bool
	OverridePIN    string
}

// CancelSaleHandler moves a sale to its terminal CANCELLED state and
// restores the stock of every live item through the ledger, all within one
// atomic unit. Cancelling twice is rejected.
type CancelSaleHandler struct {
	sales     domain.SaleRepository
	stores    catalogdomain.StoreDirectory
	adjuster  *invcommand.Adjuster
	tx        domain.TxManager
	publisher EventPublisher
}

// NewCancelSaleHandler creates a new cancel sale handler
func NewCancelSaleHandler(sales domain.SaleRepository, stores catalogdomain.StoreDirectory, adjuster *invcommand.Adjuster, tx domain.TxManager, publisher EventPublisher) *CancelSaleHandler {
	return &CancelSaleHandler{sales: sales, stores: stores, adjuster: adjuster, tx: tx, publisher: publisher}
}

// Handle executes the cancel sale command
func (h *CancelSaleHandler) Handle(ctx context.Context, cmd CancelSaleCommand) (*domain.Sale, error) {
	var sale *domain.Sale

	err := h.tx.Do(ctx, func(ctx context.Context) error {
		var err error
		sale, err = h.sales.FindByID(ctx, cmd.OrganizationID, cmd.SaleID)
		if err != nil {
			return err
		}
		if sale.IsCancelled() {
			return domain.ErrAlreadyCancelled
		}

		if !cmd.Privileged {
			store, err := h.stores.FindByID(ctx, cmd.OrganizationID, sale.StoreID)
			if err != nil {
				return err
			}
			if store.ManagerPINHash == "" || !auth.VerifyPIN(store.ManagerPINHash, cmd.OverridePIN) {
				return domain.ErrManagerOverrideNeeded
			}
		}

		items, err := h.sales.LiveItems(ctx, sale.ID)
		if err != nil {
			return err
		}
		for _, item := range items {
			if _, err := h.adjuster.RestoreForSale(ctx, cmd.OrganizationID, item.ProductID, item.Quantity, cmd.UserID, sale.SaleNumber, "sale cancelled"); err != nil {
				return err
			}
		}

		sale.Status = domain.StatusCancelled
		if cmd.Reason != "" {
			if sale.Notes != "" {
				sale.Notes += "\n"
			}
			sale.Notes += fmt.Sprintf("Cancelled: %s", cmd.Reason)
		}

		return h.sales.Update(ctx, sale)
	})
	if err != nil {
		return nil, err
	}

	if h.publisher != nil {
		if err := h.publisher.PublishSaleCancelled(ctx, kafka.SaleCancelledEvent{
			SaleID:         sale.ID,
			SaleNumber:     sale.SaleNumber,
			OrganizationID: sale.OrganizationID,
			Reason:         cmd.Reason,
			UserID:         cmd.UserID,
		}); err != nil {
			logger.Warn(ctx).Err(err).Uint("sale_id", sale.ID).Msg("Failed to publish sale cancelled event")
		}
	}

	return h.sales.FindByID(ctx, cmd.OrganizationID, sale.ID)
}
