package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	invdomain "github.com/quintaldo/pos-engine/internal/inventory/domain"
)

func seedProduct(s *Store) uint {
	return s.SeedProduct(invdomain.Product{
		OrganizationID: 1,
		Name:           "Test Product",
		SKU:            "TP-01",
		SalePrice:      decimal.NewFromInt(10),
		CurrentStock:   8,
		IsActive:       true,
	})
}

func TestTxManagerRollsBackOnError(t *testing.T) {
	store := New()
	productID := seedProduct(store)
	tx := NewTxManager(store)
	ctx := context.Background()

	boom := errors.New("boom")
	err := tx.Do(ctx, func(ctx context.Context) error {
		if err := store.Products().UpdateStock(ctx, productID, 0); err != nil {
			return err
		}
		if err := store.Movements().Create(ctx, &invdomain.StockMovement{
			OrganizationID: 1, ProductID: productID, Type: invdomain.MovementOut,
			Quantity: 8, PreviousStock: 8, NewStock: 0,
		}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected fn error surfaced, got %v", err)
	}

	product, err := store.Products().FindByID(ctx, 1, productID)
	if err != nil {
		t.Fatalf("find product failed: %v", err)
	}
	if product.CurrentStock != 8 {
		t.Fatalf("expected stock rolled back to 8, got %d", product.CurrentStock)
	}
	if _, err := store.Movements().LatestForProduct(ctx, productID); !errors.Is(err, invdomain.ErrMovementNotFound) {
		t.Fatalf("expected movement rolled back, got %v", err)
	}
}

func TestTxManagerCommitsOnSuccess(t *testing.T) {
	store := New()
	productID := seedProduct(store)
	tx := NewTxManager(store)
	ctx := context.Background()

	err := tx.Do(ctx, func(ctx context.Context) error {
		return store.Products().UpdateStock(ctx, productID, 3)
	})
	if err != nil {
		t.Fatalf("do failed: %v", err)
	}

	product, _ := store.Products().FindByID(ctx, 1, productID)
	if product.CurrentStock != 3 {
		t.Fatalf("expected stock 3, got %d", product.CurrentStock)
	}
}

func TestTxManagerNestedCallJoinsEnclosingUnit(t *testing.T) {
	store := New()
	productID := seedProduct(store)
	tx := NewTxManager(store)

	boom := errors.New("boom")
	err := tx.Do(context.Background(), func(ctx context.Context) error {
		// The inner unit must not deadlock and must not commit on its own.
		if err := tx.Do(ctx, func(ctx context.Context) error {
			return store.Products().UpdateStock(ctx, productID, 1)
		}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected outer error, got %v", err)
	}

	product, _ := store.Products().FindByID(context.Background(), 1, productID)
	if product.CurrentStock != 8 {
		t.Fatalf("expected nested write rolled back with outer unit, got %d", product.CurrentStock)
	}
}
