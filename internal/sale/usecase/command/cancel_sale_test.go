package command

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/quintaldo/pos-engine/internal/sale/domain"
)

func TestCancelSaleRestoresStock(t *testing.T) {
	f := newFixture(t)
	sale := f.newSale(t)

	cancelled, err := f.cancel.Handle(context.Background(), CancelSaleCommand{
		OrganizationID: testOrg,
		SaleID:         sale.ID,
		UserID:         testUser,
		Reason:         "customer walked out",
		Privileged:     true,
	})
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if cancelled.Status != domain.StatusCancelled {
		t.Fatalf("expected CANCELLED, got %s", cancelled.Status)
	}
	if !strings.Contains(cancelled.Notes, "customer walked out") {
		t.Fatalf("expected reason recorded in notes, got %q", cancelled.Notes)
	}

	if got := f.stockOf(t, f.coffeeID); got != coffeeStock {
		t.Fatalf("expected coffee stock restored to %d, got %d", coffeeStock, got)
	}
	if got := f.stockOf(t, f.mugID); got != mugStock {
		t.Fatalf("expected mug stock restored to %d, got %d", mugStock, got)
	}
}

func TestCancelSaleIsTerminal(t *testing.T) {
	f := newFixture(t)
	sale := f.newSale(t)
	ctx := context.Background()

	if _, err := f.cancel.Handle(ctx, CancelSaleCommand{
		OrganizationID: testOrg, SaleID: sale.ID, UserID: testUser, Privileged: true,
	}); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	_, err := f.cancel.Handle(ctx, CancelSaleCommand{
		OrganizationID: testOrg, SaleID: sale.ID, UserID: testUser, Privileged: true,
	})
	if !errors.Is(err, domain.ErrAlreadyCancelled) {
		t.Fatalf("expected double-cancel rejection, got %v", err)
	}

	// Stock was not restored twice.
	if got := f.stockOf(t, f.coffeeID); got != coffeeStock {
		t.Fatalf("expected coffee stock %d, got %d", coffeeStock, got)
	}
}

func TestCancelSaleRequiresManagerOverride(t *testing.T) {
	f := newFixture(t)
	sale := f.newSale(t)
	ctx := context.Background()

	_, err := f.cancel.Handle(ctx, CancelSaleCommand{
		OrganizationID: testOrg, SaleID: sale.ID, UserID: testUser,
	})
	if !errors.Is(err, domain.ErrManagerOverrideNeeded) {
		t.Fatalf("expected override rejection without PIN, got %v", err)
	}

	_, err = f.cancel.Handle(ctx, CancelSaleCommand{
		OrganizationID: testOrg, SaleID: sale.ID, UserID: testUser, OverridePIN: "0000",
	})
	if !errors.Is(err, domain.ErrManagerOverrideNeeded) {
		t.Fatalf("expected override rejection with wrong PIN, got %v", err)
	}

	// Sale untouched by the rejected attempts.
	if got := f.stockOf(t, f.coffeeID); got != coffeeStock-2 {
		t.Fatalf("expected stock still decremented, got %d", got)
	}

	cancelled, err := f.cancel.Handle(ctx, CancelSaleCommand{
		OrganizationID: testOrg, SaleID: sale.ID, UserID: testUser, OverridePIN: managerPIN,
	})
	if err != nil {
		t.Fatalf("cancel with valid PIN failed: %v", err)
	}
	if cancelled.Status != domain.StatusCancelled {
		t.Fatalf("expected CANCELLED, got %s", cancelled.Status)
	}
}

func TestCancelUnknownSale(t *testing.T) {
	f := newFixture(t)

	_, err := f.cancel.Handle(context.Background(), CancelSaleCommand{
		OrganizationID: testOrg, SaleID: 99, UserID: testUser, Privileged: true,
	})
	if !errors.Is(err, domain.ErrSaleNotFound) {
		t.Fatalf("expected sale not found, got %v", err)
	}
}
