package command

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/quintaldo/pos-engine/internal/inventory/domain"
	"github.com/quintaldo/pos-engine/internal/storage/memory"
)

func newAdjuster(t *testing.T, initialStock int) (*memory.Store, *Adjuster, uint) {
	t.Helper()

	store, apply, productID := newLedger(t, initialStock)
	return store, NewAdjuster(store.Products(), apply), productID
}

func TestAdjusterDecrementForSale(t *testing.T) {
	store, adjuster, productID := newAdjuster(t, 10)
	ctx := context.Background()

	movement, err := adjuster.DecrementForSale(ctx, 1, productID, 4, 7, "S-000001")
	if err != nil {
		t.Fatalf("decrement failed: %v", err)
	}
	if movement.Type != domain.MovementOut {
		t.Fatalf("expected OUT movement, got %s", movement.Type)
	}
	if movement.Reference != "S-000001" || movement.Reason != "sale" {
		t.Fatalf("expected sale reference on movement, got %q / %q", movement.Reference, movement.Reason)
	}

	product, _ := store.Products().FindByID(ctx, 1, productID)
	if product.CurrentStock != 6 {
		t.Fatalf("expected stock 6, got %d", product.CurrentStock)
	}
}

func TestAdjusterDecrementInsufficientStock(t *testing.T) {
	_, adjuster, productID := newAdjuster(t, 2)

	_, err := adjuster.DecrementForSale(context.Background(), 1, productID, 3, 7, "S-000001")
	if !domain.IsInsufficientStock(err) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
}

func TestAdjusterDecrementInactiveProduct(t *testing.T) {
	store, _, _ := newAdjuster(t, 10)
	inactiveID := store.SeedProduct(domain.Product{
		OrganizationID: 1,
		Name:           "Discontinued Grinder",
		SKU:            "GRIND-OLD",
		SalePrice:      decimal.NewFromInt(80),
		CurrentStock:   10,
		IsActive:       false,
	})
	adjuster := NewAdjuster(store.Products(), NewApplyMovementHandler(store.Products(), store.Movements(), memory.NewTxManager(store)))

	_, err := adjuster.DecrementForSale(context.Background(), 1, inactiveID, 1, 7, "S-000001")
	if !errors.Is(err, domain.ErrProductInactive) {
		t.Fatalf("expected inactive product rejection, got %v", err)
	}
}

func TestAdjusterRestoreForSale(t *testing.T) {
	store, adjuster, productID := newAdjuster(t, 10)
	ctx := context.Background()

	movement, err := adjuster.RestoreForSale(ctx, 1, productID, 3, 7, "S-000001", "")
	if err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if movement.Type != domain.MovementIn {
		t.Fatalf("expected IN movement, got %s", movement.Type)
	}
	if movement.Reason != "sale reversal" {
		t.Fatalf("expected default reversal reason, got %q", movement.Reason)
	}

	product, _ := store.Products().FindByID(ctx, 1, productID)
	if product.CurrentStock != 13 {
		t.Fatalf("expected stock 13, got %d", product.CurrentStock)
	}
}

func TestAdjusterSetExact(t *testing.T) {
	store, adjuster, productID := newAdjuster(t, 10)
	ctx := context.Background()

	movement, err := adjuster.SetExact(ctx, 1, productID, 42, 7, "annual stock count")
	if err != nil {
		t.Fatalf("set exact failed: %v", err)
	}
	if movement.Type != domain.MovementAdjustment {
		t.Fatalf("expected ADJUSTMENT movement, got %s", movement.Type)
	}

	product, _ := store.Products().FindByID(ctx, 1, productID)
	if product.CurrentStock != 42 {
		t.Fatalf("expected stock 42, got %d", product.CurrentStock)
	}

	if _, err := adjuster.SetExact(ctx, 1, productID, -1, 7, ""); !errors.Is(err, domain.ErrInvalidQuantity) {
		t.Fatalf("expected invalid quantity for negative level, got %v", err)
	}
}
