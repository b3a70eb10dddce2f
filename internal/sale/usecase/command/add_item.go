package command

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	invdomain "github.com/quintaldo/pos-engine/internal/inventory/domain"
	invcommand "github.com/quintaldo/pos-engine/internal/inventory/usecase/command"
	"github.com/quintaldo/pos-engine/internal/sale/domain"
)

// nowFunc is swapped by tests that assert on timestamps
var nowFunc = time.Now

// AddItemCommand represents the command to add a line to an existing sale
type AddItemCommand struct {
	OrganizationID uint
	SaleID         uint
	ProductID      uint
	Quantity       int
	UnitPrice      *decimal.Decimal
	UserID         uint
}

// AddItemHandler adds a sale line, decrements stock and recomputes the sale
// totals within one atomic unit.
type AddItemHandler struct {
	sales    domain.SaleRepository
	products invdomain.ProductRepository
	adjuster *invcommand.Adjuster
	tx       domain.TxManager
}

// NewAddItemHandler creates a new add item handler
func NewAddItemHandler(sales domain.SaleRepository, products invdomain.ProductRepository, adjuster *invcommand.Adjuster, tx domain.TxManager) *AddItemHandler {
	return &AddItemHandler{sales: sales, products: products, adjuster: adjuster, tx: tx}
}

// Handle executes the add item command
func (h *AddItemHandler) Handle(ctx context.Context, cmd AddItemCommand) (*domain.Sale, error) {
	if cmd.Quantity <= 0 {
		return nil, invdomain.ErrInvalidQuantity
	}
	if cmd.UnitPrice != nil && cmd.UnitPrice.IsNegative() {
		return nil, domain.ErrInvalidUnitPrice
	}

	var sale *domain.Sale

	err := h.tx.Do(ctx, func(ctx context.Context) error {
		var err error
		sale, err = h.sales.FindByID(ctx, cmd.OrganizationID, cmd.SaleID)
		if err != nil {
			return err
		}
		if sale.IsCancelled() {
			return domain.ErrSaleCancelled
		}

		product, err := h.products.FindByID(ctx, cmd.OrganizationID, cmd.ProductID)
		if err != nil {
			return err
		}
		if !product.IsSellable() {
			return invdomain.ErrProductInactive
		}

		unitPrice := product.SalePrice
		if cmd.UnitPrice != nil {
			unitPrice = *cmd.UnitPrice
		}

		item := domain.SaleItem{
			SaleID:    sale.ID,
			ProductID: product.ID,
			Quantity:  cmd.Quantity,
			UnitPrice: unitPrice,
		}
		item.ComputeSubtotal()

		if err := h.sales.CreateItem(ctx, &item); err != nil {
			return fmt.Errorf("failed to create sale item: %w", err)
		}

		if _, err := h.adjuster.DecrementForSale(ctx, cmd.OrganizationID, product.ID, cmd.Quantity, cmd.UserID, sale.SaleNumber); err != nil {
			return err
		}

		return recomputeAndReconcile(ctx, h.sales, sale)
	})
	if err != nil {
		return nil, err
	}

	return h.sales.FindByID(ctx, cmd.OrganizationID, sale.ID)
}

// recomputeAndReconcile re-derives the sale totals from the live item set
// and re-evaluates the paid status against the live payment sum. Must run
// inside the caller's transaction.
func recomputeAndReconcile(ctx context.Context, sales domain.SaleRepository, sale *domain.Sale) error {
	items, err := sales.LiveItems(ctx, sale.ID)
	if err != nil {
		return err
	}
	sale.RecomputeTotals(items)

	payments, err := sales.LivePayments(ctx, sale.ID)
	if err != nil {
		return err
	}
	paid := domain.SumPayments(payments)

	switch {
	case sale.Status == domain.StatusPaid && !sale.CoveredBy(paid):
		sale.Status = domain.StatusPending
		sale.PaidDate = nil
	case sale.Status == domain.StatusPending && paid.GreaterThan(decimal.Zero) && sale.CoveredBy(paid):
		now := nowFunc()
		sale.Status = domain.StatusPaid
		sale.PaidDate = &now
	}

	return sales.Update(ctx, sale)
}
