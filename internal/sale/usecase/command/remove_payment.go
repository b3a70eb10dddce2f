package command

import (
	"context"
	"fmt"

	"github.com/quintaldo/pos-engine/internal/sale/domain"
)

// RemovePaymentCommand represents the command to remove a payment from a sale
type RemovePaymentCommand struct {
	OrganizationID uint
	SaleID         uint
	PaymentID      uint
	UserID         uint
}

// RemovePaymentHandler removes a payment and downgrades the sale back to
// pending when the remaining payments no longer cover the total.
type RemovePaymentHandler struct {
	sales domain.SaleRepository
	tx    domain.TxManager
}

// NewRemovePaymentHandler creates a new remove payment handler
func NewRemovePaymentHandler(sales domain.SaleRepository, tx domain.TxManager) *RemovePaymentHandler {
	return &RemovePaymentHandler{sales: sales, tx: tx}
}

// Handle executes the remove payment command
func (h *RemovePaymentHandler) Handle(ctx context.Context, cmd RemovePaymentCommand) (*domain.Sale, error) {
	var saleID uint

	err := h.tx.Do(ctx, func(ctx context.Context) error {
		sale, err := h.sales.FindByID(ctx, cmd.OrganizationID, cmd.SaleID)
		if err != nil {
			return err
		}
		if sale.IsCancelled() {
			return domain.ErrSaleCancelled
		}
		saleID = sale.ID

		payment, err := h.sales.FindPayment(ctx, cmd.OrganizationID, cmd.PaymentID)
		if err != nil {
			return err
		}
		if payment.SaleID != sale.ID {
			return domain.ErrPaymentNotFound
		}

		if err := h.sales.DeletePayment(ctx, payment.ID); err != nil {
			return fmt.Errorf("failed to delete sale payment: %w", err)
		}

		payments, err := h.sales.LivePayments(ctx, sale.ID)
		if err != nil {
			return err
		}
		paid := domain.SumPayments(payments)

		if sale.Status == domain.StatusPaid && !sale.CoveredBy(paid) {
			sale.Status = domain.StatusPending
			sale.PaidDate = nil
			return h.sales.Update(ctx, sale)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return h.sales.FindByID(ctx, cmd.OrganizationID, saleID)
}
