package command

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	catalogdomain "github.com/quintaldo/pos-engine/internal/catalog/domain"
	"github.com/quintaldo/pos-engine/internal/sale/domain"
)

// AddPaymentCommand represents the command to apply a payment to a sale
type AddPaymentCommand struct {
	OrganizationID  uint
	SaleID          uint
	PaymentMethodID uint
	Amount          decimal.Decimal
	UserID          uint
}

// AddPaymentHandler applies a payment and reconciles the sale status. The
// cumulative live payment sum never exceeds the sale total.
type AddPaymentHandler struct {
	sales   domain.SaleRepository
	methods catalogdomain.PaymentMethods
	tx      domain.TxManager
}

// NewAddPaymentHandler creates a new add payment handler
func NewAddPaymentHandler(sales domain.SaleRepository, methods catalogdomain.PaymentMethods, tx domain.TxManager) *AddPaymentHandler {
	return &AddPaymentHandler{sales: sales, methods: methods, tx: tx}
}

// Handle executes the add payment command
func (h *AddPaymentHandler) Handle(ctx context.Context, cmd AddPaymentCommand) (*domain.Sale, error) {
	if cmd.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}

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

		active, err := h.methods.IsActive(ctx, cmd.OrganizationID, cmd.PaymentMethodID)
		if err != nil {
			return err
		}
		if !active {
			return catalogdomain.ErrPaymentMethodNotFound
		}

		payments, err := h.sales.LivePayments(ctx, sale.ID)
		if err != nil {
			return err
		}
		paid := domain.SumPayments(payments)

		remaining := sale.Total.Sub(paid)
		if cmd.Amount.Sub(remaining).GreaterThan(domain.PaymentTolerance) {
			return fmt.Errorf("%w: remaining %s, got %s", domain.ErrPaymentExceedsTotal, remaining.StringFixed(2), cmd.Amount.StringFixed(2))
		}

		payment := domain.SalePayment{
			SaleID:          sale.ID,
			PaymentMethodID: cmd.PaymentMethodID,
			Amount:          cmd.Amount,
			PaymentDate:     nowFunc(),
		}
		if err := h.sales.CreatePayment(ctx, &payment); err != nil {
			return fmt.Errorf("failed to create sale payment: %w", err)
		}

		if sale.Status == domain.StatusPending && sale.CoveredBy(paid.Add(cmd.Amount)) {
			now := nowFunc()
			sale.Status = domain.StatusPaid
			sale.PaidDate = &now
			return h.sales.Update(ctx, sale)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return h.sales.FindByID(ctx, cmd.OrganizationID, saleID)
}
