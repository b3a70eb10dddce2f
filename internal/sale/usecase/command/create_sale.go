package command

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	catalogdomain "github.com/quintaldo/pos-engine/internal/catalog/domain"
	invdomain "github.com/quintaldo/pos-engine/internal/inventory/domain"
	invcommand "github.com/quintaldo/pos-engine/internal/inventory/usecase/command"
	"github.com/quintaldo/pos-engine/internal/sale/domain"
	"github.com/quintaldo/pos-engine/kafka"
	"github.com/quintaldo/pos-engine/pkg/logger"
)

// EventPublisher publishes domain events after a transaction commits
type EventPublisher interface {
	PublishSaleCreated(ctx context.Context, event kafka.SaleCreatedEvent) error
	PublishSaleCancelled(ctx context.Context, event kafka.SaleCancelledEvent) error
}

// SaleItemInput is one requested line on a new sale. UnitPrice overrides the
// catalog price when set.
type SaleItemInput struct {
	ProductID uint
	Quantity  int
	UnitPrice *decimal.Decimal
}

// PaymentInput is one payment supplied with a new sale
type PaymentInput struct {
	PaymentMethodID uint
	Amount          decimal.Decimal
}

// CreateSaleCommand represents the command to create a sale
type CreateSaleCommand struct {
	OrganizationID uint
	StoreID        uint
	UserID         uint
	CustomerID     *uint
	DueDate        *time.Time
	Notes          string
	Items          []SaleItemInput
	Payments       []PaymentInput
}

// CreateSaleHandler creates a sale with its items and optional payments as
// one atomic unit: sale row, items, stock decrements and payments all commit
// together or not at all.
type CreateSaleHandler struct {
	sales     domain.SaleRepository
	stores    catalogdomain.StoreDirectory
	methods   catalogdomain.PaymentMethods
	products  invdomain.ProductRepository
	adjuster  *invcommand.Adjuster
	tx        domain.TxManager
	publisher EventPublisher
}

// NewCreateSaleHandler creates a new create sale handler
func NewCreateSaleHandler(
	sales domain.SaleRepository,
	stores catalogdomain.StoreDirectory,
	methods catalogdomain.PaymentMethods,
	products invdomain.ProductRepository,
	adjuster *invcommand.Adjuster,
	tx domain.TxManager,
	publisher EventPublisher,
) *CreateSaleHandler {
	return &CreateSaleHandler{
		sales:     sales,
		stores:    stores,
		methods:   methods,
		products:  products,
		adjuster:  adjuster,
		tx:        tx,
		publisher: publisher,
	}
}

// Handle executes the create sale command
func (h *CreateSaleHandler) Handle(ctx context.Context, cmd CreateSaleCommand) (*domain.Sale, error) {
	if len(cmd.Items) == 0 {
		return nil, domain.ErrNoItems
	}
	for _, item := range cmd.Items {
		if item.Quantity <= 0 {
			return nil, invdomain.ErrInvalidQuantity
		}
		if item.UnitPrice != nil && item.UnitPrice.IsNegative() {
			return nil, domain.ErrInvalidUnitPrice
		}
	}
	for _, payment := range cmd.Payments {
		if payment.Amount.LessThanOrEqual(decimal.Zero) {
			return nil, domain.ErrInvalidAmount
		}
	}

	var sale *domain.Sale

	err := h.tx.Do(ctx, func(ctx context.Context) error {
		store, err := h.stores.FindByID(ctx, cmd.OrganizationID, cmd.StoreID)
		if err != nil {
			return err
		}

		// Resolve products, prices and subtotals before writing anything.
		items := make([]domain.SaleItem, 0, len(cmd.Items))
		subtotal := decimal.Zero
		for _, input := range cmd.Items {
			product, err := h.products.FindByID(ctx, cmd.OrganizationID, input.ProductID)
			if err != nil {
				return err
			}
			if !product.IsSellable() {
				return invdomain.ErrProductInactive
			}
			if product.CurrentStock < input.Quantity {
				return &invdomain.InsufficientStockError{
					ProductID: int(product.ID),
					Available: product.CurrentStock,
					Requested: input.Quantity,
				}
			}

			unitPrice := product.SalePrice
			if input.UnitPrice != nil {
				unitPrice = *input.UnitPrice
			}

			item := domain.SaleItem{
				ProductID: product.ID,
				Quantity:  input.Quantity,
				UnitPrice: unitPrice,
			}
			item.ComputeSubtotal()
			subtotal = subtotal.Add(item.Subtotal)
			items = append(items, item)
		}

		total := subtotal

		// Payments supplied at creation must settle the full total.
		if len(cmd.Payments) > 0 {
			paid := decimal.Zero
			for _, payment := range cmd.Payments {
				active, err := h.methods.IsActive(ctx, cmd.OrganizationID, payment.PaymentMethodID)
				if err != nil {
					return err
				}
				if !active {
					return catalogdomain.ErrPaymentMethodNotFound
				}
				paid = paid.Add(payment.Amount)
			}
			if paid.Sub(total).Abs().GreaterThan(domain.PaymentTolerance) {
				return domain.ErrPaymentTotalMismatch
			}
		}

		saleNumber, err := h.stores.ReserveSaleNumber(ctx, cmd.OrganizationID, store.ID)
		if err != nil {
			return err
		}

		sale = &domain.Sale{
			OrganizationID: cmd.OrganizationID,
			StoreID:        store.ID,
			CustomerID:     cmd.CustomerID,
			SaleNumber:     saleNumber,
			Status:         domain.StatusPending,
			Subtotal:       subtotal,
			TaxTotal:       decimal.Zero,
			DiscountTotal:  decimal.Zero,
			Total:          total,
			Notes:          cmd.Notes,
			DueDate:        cmd.DueDate,
			UserID:         cmd.UserID,
		}
		if len(cmd.Payments) > 0 {
			now := time.Now()
			sale.Status = domain.StatusPaid
			sale.PaidDate = &now
		}

		if err := h.sales.Create(ctx, sale); err != nil {
			return fmt.Errorf("failed to create sale: %w", err)
		}

		for i := range items {
			items[i].SaleID = sale.ID
			if err := h.sales.CreateItem(ctx, &items[i]); err != nil {
				return fmt.Errorf("failed to create sale item: %w", err)
			}
			if _, err := h.adjuster.DecrementForSale(ctx, cmd.OrganizationID, items[i].ProductID, items[i].Quantity, cmd.UserID, saleNumber); err != nil {
				return err
			}
		}

		for _, input := range cmd.Payments {
			payment := domain.SalePayment{
				SaleID:          sale.ID,
				PaymentMethodID: input.PaymentMethodID,
				Amount:          input.Amount,
				PaymentDate:     time.Now(),
			}
			if err := h.sales.CreatePayment(ctx, &payment); err != nil {
				return fmt.Errorf("failed to create sale payment: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	loaded, err := h.sales.FindByID(ctx, cmd.OrganizationID, sale.ID)
	if err != nil {
		return nil, err
	}

	if h.publisher != nil {
		if err := h.publisher.PublishSaleCreated(ctx, kafka.SaleCreatedEvent{
			SaleID:         loaded.ID,
			SaleNumber:     loaded.SaleNumber,
			OrganizationID: loaded.OrganizationID,
			StoreID:        loaded.StoreID,
			Status:         string(loaded.Status),
			Total:          loaded.Total.String(),
			ItemCount:      len(loaded.Items),
			UserID:         cmd.UserID,
		}); err != nil {
			logger.Warn(ctx).Err(err).Uint("sale_id", loaded.ID).Msg("Failed to publish sale created event")
		}
	}

	return loaded, nil
}
