package command

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/quintaldo/pos-engine/internal/inventory/domain"
	"github.com/quintaldo/pos-engine/internal/storage/memory"
)

func newLedger(t *testing.T, initialStock int) (*memory.Store, *ApplyMovementHandler, uint) {
	t.Helper()

	store := memory.New()
	productID := store.SeedProduct(domain.Product{
		OrganizationID: 1,
		Name:           "Espresso Beans 1kg",
		SKU:            "BEAN-001",
		SalePrice:      decimal.NewFromInt(25),
		CostPrice:      decimal.NewFromInt(14),
		CurrentStock:   initialStock,
		MinStock:       5,
		IsActive:       true,
	})

	handler := NewApplyMovementHandler(store.Products(), store.Movements(), memory.NewTxManager(store))
	return store, handler, productID
}

func TestApplyMovementIn(t *testing.T) {
	store, handler, productID := newLedger(t, 10)

	movement, err := handler.Handle(context.Background(), ApplyMovementCommand{
		OrganizationID: 1,
		ProductID:      productID,
		Type:           domain.MovementIn,
		Quantity:       15,
		UserID:         7,
		Reason:         "restock",
	})
	if err != nil {
		t.Fatalf("apply IN failed: %v", err)
	}
	if movement.PreviousStock != 10 || movement.NewStock != 25 {
		t.Fatalf("expected 10 -> 25, got %d -> %d", movement.PreviousStock, movement.NewStock)
	}
	if movement.CorrelationID == "" {
		t.Fatalf("expected a correlation id on the movement")
	}

	product, err := store.Products().FindByID(context.Background(), 1, productID)
	if err != nil {
		t.Fatalf("find product failed: %v", err)
	}
	if product.CurrentStock != 25 {
		t.Fatalf("expected projected stock 25, got %d", product.CurrentStock)
	}
}

func TestApplyMovementOut(t *testing.T) {
	store, handler, productID := newLedger(t, 10)

	movement, err := handler.Handle(context.Background(), ApplyMovementCommand{
		OrganizationID: 1,
		ProductID:      productID,
		Type:           domain.MovementOut,
		Quantity:       4,
		UserID:         7,
		Reason:         "sale",
		Reference:      "S-000001",
	})
	if err != nil {
		t.Fatalf("apply OUT failed: %v", err)
	}
	if movement.NewStock != movement.PreviousStock-movement.Quantity {
		t.Fatalf("ledger conservation broken: %d -> %d with quantity %d",
			movement.PreviousStock, movement.NewStock, movement.Quantity)
	}

	product, _ := store.Products().FindByID(context.Background(), 1, productID)
	if product.CurrentStock != 6 {
		t.Fatalf("expected projected stock 6, got %d", product.CurrentStock)
	}
}

func TestApplyMovementAdjustmentSetsAbsoluteLevel(t *testing.T) {
	store, handler, productID := newLedger(t, 10)

	movement, err := handler.Handle(context.Background(), ApplyMovementCommand{
		OrganizationID: 1,
		ProductID:      productID,
		Type:           domain.MovementAdjustment,
		Quantity:       3,
		UserID:         7,
		Reason:         "stock count",
	})
	if err != nil {
		t.Fatalf("apply ADJUSTMENT failed: %v", err)
	}
	if movement.PreviousStock != 10 || movement.NewStock != 3 {
		t.Fatalf("expected 10 -> 3, got %d -> %d", movement.PreviousStock, movement.NewStock)
	}

	// Zero is a valid absolute level.
	if _, err := handler.Handle(context.Background(), ApplyMovementCommand{
		OrganizationID: 1,
		ProductID:      productID,
		Type:           domain.MovementAdjustment,
		Quantity:       0,
		UserID:         7,
	}); err != nil {
		t.Fatalf("adjustment to zero failed: %v", err)
	}

	product, _ := store.Products().FindByID(context.Background(), 1, productID)
	if product.CurrentStock != 0 {
		t.Fatalf("expected projected stock 0, got %d", product.CurrentStock)
	}
}

func TestApplyMovementRejectsNegativeStock(t *testing.T) {
	store, handler, productID := newLedger(t, 5)

	_, err := handler.Handle(context.Background(), ApplyMovementCommand{
		OrganizationID: 1,
		ProductID:      productID,
		Type:           domain.MovementOut,
		Quantity:       6,
		UserID:         7,
	})
	if !domain.IsInsufficientStock(err) {
		t.Fatalf("expected insufficient stock error, got %v", err)
	}

	var stockErr *domain.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected typed insufficient stock error")
	}
	if stockErr.Available != 5 || stockErr.Requested != 6 {
		t.Fatalf("expected available 5 requested 6, got %+v", stockErr)
	}

	// The failed attempt must leave no trace in the ledger.
	movements, _ := store.Movements().FindByProduct(context.Background(), 1, productID, 10, 0)
	if len(movements) != 0 {
		t.Fatalf("expected empty ledger after rejected movement, got %d entries", len(movements))
	}
	product, _ := store.Products().FindByID(context.Background(), 1, productID)
	if product.CurrentStock != 5 {
		t.Fatalf("expected stock unchanged at 5, got %d", product.CurrentStock)
	}
}

func TestApplyMovementValidation(t *testing.T) {
	_, handler, productID := newLedger(t, 5)

	cases := []struct {
		name string
		cmd  ApplyMovementCommand
	}{
		{"unknown type", ApplyMovementCommand{OrganizationID: 1, ProductID: productID, Type: "TRANSFER", Quantity: 1}},
		{"zero quantity in", ApplyMovementCommand{OrganizationID: 1, ProductID: productID, Type: domain.MovementIn, Quantity: 0}},
		{"negative quantity out", ApplyMovementCommand{OrganizationID: 1, ProductID: productID, Type: domain.MovementOut, Quantity: -2}},
		{"negative adjustment", ApplyMovementCommand{OrganizationID: 1, ProductID: productID, Type: domain.MovementAdjustment, Quantity: -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := handler.Handle(context.Background(), tc.cmd); !errors.Is(err, domain.ErrInvalidQuantity) {
				t.Fatalf("expected invalid quantity error, got %v", err)
			}
		})
	}
}

func TestApplyMovementUnknownProduct(t *testing.T) {
	_, handler, _ := newLedger(t, 5)

	_, err := handler.Handle(context.Background(), ApplyMovementCommand{
		OrganizationID: 1,
		ProductID:      999,
		Type:           domain.MovementIn,
		Quantity:       1,
	})
	if !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected product not found, got %v", err)
	}
}

func TestApplyMovementOtherOrganization(t *testing.T) {
	_, handler, productID := newLedger(t, 5)

	_, err := handler.Handle(context.Background(), ApplyMovementCommand{
		OrganizationID: 2,
		ProductID:      productID,
		Type:           domain.MovementIn,
		Quantity:       1,
	})
	if !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected product not found across organizations, got %v", err)
	}
}
