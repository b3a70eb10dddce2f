package command

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	catalogdomain "github.com/quintaldo/pos-engine/internal/catalog/domain"
	invdomain "github.com/quintaldo/pos-engine/internal/inventory/domain"
	"github.com/quintaldo/pos-engine/internal/sale/domain"
)

func TestCreateSaleDecrementsStockPerLine(t *testing.T) {
	f := newFixture(t)

	sale := f.newSale(t)

	if sale.Status != domain.StatusPending {
		t.Fatalf("expected PENDING, got %s", sale.Status)
	}
	if len(sale.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(sale.Items))
	}
	// 2 x 10.00 + 1 x 7.50
	mustEqual(t, sale.Subtotal, "27.5")
	mustEqual(t, sale.Total, "27.5")

	if got := f.stockOf(t, f.coffeeID); got != coffeeStock-2 {
		t.Fatalf("expected coffee stock %d, got %d", coffeeStock-2, got)
	}
	if got := f.stockOf(t, f.mugID); got != mugStock-1 {
		t.Fatalf("expected mug stock %d, got %d", mugStock-1, got)
	}

	// Each line produced one OUT movement referencing the sale number.
	movements, err := f.store.Movements().FindByProduct(context.Background(), testOrg, f.coffeeID, 10, 0)
	if err != nil {
		t.Fatalf("list movements failed: %v", err)
	}
	if len(movements) != 1 || movements[0].Type != invdomain.MovementOut {
		t.Fatalf("expected one OUT movement, got %+v", movements)
	}
	if movements[0].Reference != sale.SaleNumber {
		t.Fatalf("expected movement reference %s, got %s", sale.SaleNumber, movements[0].Reference)
	}
}

func TestCreateSaleNumberSequence(t *testing.T) {
	f := newFixture(t)

	first := f.newSale(t)
	second := f.newSale(t)

	if !strings.HasPrefix(first.SaleNumber, "DT-") {
		t.Fatalf("expected store prefix on sale number, got %s", first.SaleNumber)
	}
	if first.SaleNumber == second.SaleNumber {
		t.Fatalf("expected distinct sale numbers, both %s", first.SaleNumber)
	}
	if first.SaleNumber != "DT-000001" || second.SaleNumber != "DT-000002" {
		t.Fatalf("expected sequential numbers, got %s then %s", first.SaleNumber, second.SaleNumber)
	}
}

func TestCreateSaleInsufficientStockRollsBackEverything(t *testing.T) {
	f := newFixture(t)

	// Both lines pass the snapshot pre-check individually, but after the
	// first decrement the second exceeds what is left. The failure surfaces
	// mid-transaction and must take the sale row, the first item and its
	// ledger entry down with it.
	_, err := f.create.Handle(context.Background(), CreateSaleCommand{
		OrganizationID: testOrg,
		StoreID:        f.storeID,
		UserID:         testUser,
		Items: []SaleItemInput{
			{ProductID: f.coffeeID, Quantity: 15},
			{ProductID: f.coffeeID, Quantity: 15},
		},
	})
	if !invdomain.IsInsufficientStock(err) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}

	if got := f.stockOf(t, f.coffeeID); got != coffeeStock {
		t.Fatalf("expected coffee stock restored to %d, got %d", coffeeStock, got)
	}
	movements, err := f.store.Movements().FindByProduct(context.Background(), testOrg, f.coffeeID, 10, 0)
	if err != nil {
		t.Fatalf("list movements failed: %v", err)
	}
	if len(movements) != 0 {
		t.Fatalf("expected empty ledger after rollback, got %d entries", len(movements))
	}
	sales, err := f.store.Sales().List(context.Background(), testOrg, domain.ListFilter{})
	if err != nil {
		t.Fatalf("list sales failed: %v", err)
	}
	if len(sales) != 0 {
		t.Fatalf("expected no sale persisted, got %d", len(sales))
	}

	// The store sale counter was rolled back with the rest of the unit.
	sale := f.newSale(t)
	if sale.SaleNumber != "DT-000001" {
		t.Fatalf("expected counter rollback, got %s", sale.SaleNumber)
	}
}

func TestCreateSaleRequiresItems(t *testing.T) {
	f := newFixture(t)

	_, err := f.create.Handle(context.Background(), CreateSaleCommand{
		OrganizationID: testOrg,
		StoreID:        f.storeID,
		UserID:         testUser,
	})
	if !errors.Is(err, domain.ErrNoItems) {
		t.Fatalf("expected no-items rejection, got %v", err)
	}
}

func TestCreateSaleValidation(t *testing.T) {
	f := newFixture(t)
	negative := decimal.NewFromInt(-1)

	cases := []struct {
		name string
		cmd  CreateSaleCommand
		want error
	}{
		{
			"zero quantity",
			CreateSaleCommand{OrganizationID: testOrg, StoreID: f.storeID, Items: []SaleItemInput{{ProductID: f.coffeeID, Quantity: 0}}},
			invdomain.ErrInvalidQuantity,
		},
		{
			"negative unit price",
			CreateSaleCommand{OrganizationID: testOrg, StoreID: f.storeID, Items: []SaleItemInput{{ProductID: f.coffeeID, Quantity: 1, UnitPrice: &negative}}},
			domain.ErrInvalidUnitPrice,
		},
		{
			"non-positive payment",
			CreateSaleCommand{
				OrganizationID: testOrg, StoreID: f.storeID,
				Items:    []SaleItemInput{{ProductID: f.coffeeID, Quantity: 1}},
				Payments: []PaymentInput{{PaymentMethodID: f.cashID, Amount: decimal.Zero}},
			},
			domain.ErrInvalidAmount,
		},
		{
			"unknown store",
			CreateSaleCommand{OrganizationID: testOrg, StoreID: 99, Items: []SaleItemInput{{ProductID: f.coffeeID, Quantity: 1}}},
			catalogdomain.ErrStoreNotFound,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.create.Handle(context.Background(), tc.cmd); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestCreateSaleWithFullPaymentIsPaid(t *testing.T) {
	f := newFixture(t)

	sale, err := f.create.Handle(context.Background(), CreateSaleCommand{
		OrganizationID: testOrg,
		StoreID:        f.storeID,
		UserID:         testUser,
		Items:          []SaleItemInput{{ProductID: f.coffeeID, Quantity: 2}},
		Payments:       []PaymentInput{{PaymentMethodID: f.cashID, Amount: decimal.NewFromInt(20)}},
	})
	if err != nil {
		t.Fatalf("create sale failed: %v", err)
	}
	if sale.Status != domain.StatusPaid {
		t.Fatalf("expected PAID, got %s", sale.Status)
	}
	if sale.PaidDate == nil {
		t.Fatalf("expected paid date to be set")
	}
	if len(sale.Payments) != 1 {
		t.Fatalf("expected 1 payment, got %d", len(sale.Payments))
	}
}

func TestCreateSalePaymentTotalMismatch(t *testing.T) {
	f := newFixture(t)

	_, err := f.create.Handle(context.Background(), CreateSaleCommand{
		OrganizationID: testOrg,
		StoreID:        f.storeID,
		UserID:         testUser,
		Items:          []SaleItemInput{{ProductID: f.coffeeID, Quantity: 2}},
		Payments:       []PaymentInput{{PaymentMethodID: f.cashID, Amount: decimal.NewFromInt(15)}},
	})
	if !errors.Is(err, domain.ErrPaymentTotalMismatch) {
		t.Fatalf("expected payment total mismatch, got %v", err)
	}

	// Stock untouched by the rejected sale.
	if got := f.stockOf(t, f.coffeeID); got != coffeeStock {
		t.Fatalf("expected coffee stock %d, got %d", coffeeStock, got)
	}
}

func TestCreateSaleInactivePaymentMethod(t *testing.T) {
	f := newFixture(t)
	disabledID := f.store.SeedPaymentMethod(catalogdomain.PaymentMethod{
		OrganizationID: testOrg,
		Name:           "Legacy Voucher",
		Code:           "VOUCHER",
		IsActive:       false,
	})

	_, err := f.create.Handle(context.Background(), CreateSaleCommand{
		OrganizationID: testOrg,
		StoreID:        f.storeID,
		UserID:         testUser,
		Items:          []SaleItemInput{{ProductID: f.coffeeID, Quantity: 2}},
		Payments:       []PaymentInput{{PaymentMethodID: disabledID, Amount: decimal.NewFromInt(20)}},
	})
	if !errors.Is(err, catalogdomain.ErrPaymentMethodNotFound) {
		t.Fatalf("expected inactive method rejection, got %v", err)
	}

	// Nothing persisted by the rejected sale.
	if got := f.stockOf(t, f.coffeeID); got != coffeeStock {
		t.Fatalf("expected coffee stock %d, got %d", coffeeStock, got)
	}
	if sales, _ := f.store.Sales().List(context.Background(), testOrg, domain.ListFilter{}); len(sales) != 0 {
		t.Fatalf("expected no sales, got %d", len(sales))
	}
}

func TestCreateSaleHonorsPriceOverride(t *testing.T) {
	f := newFixture(t)
	override := decimal.NewFromFloat(8.25)

	sale, err := f.create.Handle(context.Background(), CreateSaleCommand{
		OrganizationID: testOrg,
		StoreID:        f.storeID,
		UserID:         testUser,
		Items:          []SaleItemInput{{ProductID: f.coffeeID, Quantity: 2, UnitPrice: &override}},
	})
	if err != nil {
		t.Fatalf("create sale failed: %v", err)
	}
	mustEqual(t, sale.Total, "16.5")
	mustEqual(t, sale.Items[0].UnitPrice, "8.25")
}
