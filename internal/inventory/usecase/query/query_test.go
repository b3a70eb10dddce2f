package query

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/quintaldo/pos-engine/internal/inventory/domain"
	invcommand "github.com/quintaldo/pos-engine/internal/inventory/usecase/command"
	"github.com/quintaldo/pos-engine/internal/storage/memory"
)

func TestListMovementsNewestFirst(t *testing.T) {
	store := memory.New()
	productID := store.SeedProduct(domain.Product{
		OrganizationID: 1, Name: "Filter Paper", SKU: "FILT-01",
		SalePrice: decimal.NewFromInt(5), CurrentStock: 0, IsActive: true,
	})

	apply := invcommand.NewApplyMovementHandler(store.Products(), store.Movements(), memory.NewTxManager(store))
	ctx := context.Background()
	for _, qty := range []int{10, 20, 30} {
		if _, err := apply.Handle(ctx, invcommand.ApplyMovementCommand{
			OrganizationID: 1, ProductID: productID, Type: domain.MovementIn, Quantity: qty, UserID: 1,
		}); err != nil {
			t.Fatalf("apply failed: %v", err)
		}
	}

	handler := NewListMovementsHandler(store.Movements())
	movements, err := handler.Handle(ctx, ListMovementsQuery{OrganizationID: 1, ProductID: productID})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(movements) != 3 {
		t.Fatalf("expected 3 movements, got %d", len(movements))
	}
	if movements[0].Quantity != 30 || movements[2].Quantity != 10 {
		t.Fatalf("expected newest first ordering, got %d .. %d", movements[0].Quantity, movements[2].Quantity)
	}

	limited, err := handler.Handle(ctx, ListMovementsQuery{OrganizationID: 1, ProductID: productID, Limit: 2})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("expected limit of 2, got %d", len(limited))
	}
}

func TestLowStockReportsAtOrBelowMinimum(t *testing.T) {
	store := memory.New()
	store.SeedProduct(domain.Product{
		OrganizationID: 1, Name: "Well Stocked", SKU: "OK-01",
		SalePrice: decimal.NewFromInt(5), CurrentStock: 50, MinStock: 10, IsActive: true,
	})
	store.SeedProduct(domain.Product{
		OrganizationID: 1, Name: "Running Low", SKU: "LOW-01",
		SalePrice: decimal.NewFromInt(5), CurrentStock: 3, MinStock: 10, IsActive: true,
	})
	store.SeedProduct(domain.Product{
		OrganizationID: 1, Name: "At Threshold", SKU: "EDGE-01",
		SalePrice: decimal.NewFromInt(5), CurrentStock: 10, MinStock: 10, IsActive: true,
	})
	store.SeedProduct(domain.Product{
		OrganizationID: 1, Name: "Retired", SKU: "GONE-01",
		SalePrice: decimal.NewFromInt(5), CurrentStock: 0, MinStock: 10, IsActive: false,
	})

	handler := NewLowStockHandler(store.Products())
	products, err := handler.Handle(context.Background(), 1)
	if err != nil {
		t.Fatalf("low stock failed: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("expected 2 low stock products, got %d", len(products))
	}
	// Sorted by how low they are.
	if products[0].SKU != "LOW-01" || products[1].SKU != "EDGE-01" {
		t.Fatalf("unexpected ordering: %s, %s", products[0].SKU, products[1].SKU)
	}
}
