package command

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	catalogdomain "github.com/quintaldo/pos-engine/internal/catalog/domain"
	invdomain "github.com/quintaldo/pos-engine/internal/inventory/domain"
	invcommand "github.com/quintaldo/pos-engine/internal/inventory/usecase/command"
	"github.com/quintaldo/pos-engine/internal/sale/domain"
	"github.com/quintaldo/pos-engine/internal/storage/memory"
	"github.com/quintaldo/pos-engine/pkg/auth"
)

const (
	testOrg     uint = 1
	testUser    uint = 7
	managerPIN       = "4321"
	coffeeStock      = 20
	mugStock         = 5
)

// fixture wires the full sale command surface against the in-memory store
type fixture struct {
	store *memory.Store

	create  *CreateSaleHandler
	addItem *AddItemHandler
	updItem *UpdateItemHandler
	delItem *RemoveItemHandler
	addPay  *AddPaymentHandler
	delPay  *RemovePaymentHandler
	cancel  *CancelSaleHandler

	storeID  uint
	cashID   uint
	coffeeID uint
	mugID    uint
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.New()

	pinHash, err := auth.HashPIN(managerPIN)
	if err != nil {
		t.Fatalf("hash pin failed: %v", err)
	}
	storeID := store.SeedStore(catalogdomain.Store{
		OrganizationID:   testOrg,
		Name:             "Downtown",
		SaleNumberPrefix: "DT",
		ManagerPINHash:   pinHash,
		IsActive:         true,
	})
	cashID := store.SeedPaymentMethod(catalogdomain.PaymentMethod{
		OrganizationID: testOrg,
		Name:           "Cash",
		Code:           "CASH",
		IsActive:       true,
	})
	coffeeID := store.SeedProduct(invdomain.Product{
		OrganizationID: testOrg,
		Name:           "Coffee 250g",
		SKU:            "COF-250",
		SalePrice:      decimal.NewFromInt(10),
		CostPrice:      decimal.NewFromInt(6),
		CurrentStock:   coffeeStock,
		MinStock:       2,
		IsActive:       true,
	})
	mugID := store.SeedProduct(invdomain.Product{
		OrganizationID: testOrg,
		Name:           "Mug",
		SKU:            "MUG-01",
		SalePrice:      decimal.NewFromFloat(7.5),
		CostPrice:      decimal.NewFromInt(3),
		CurrentStock:   mugStock,
		MinStock:       1,
		IsActive:       true,
	})

	tx := memory.NewTxManager(store)
	ledger := invcommand.NewApplyMovementHandler(store.Products(), store.Movements(), tx)
	adjuster := invcommand.NewAdjuster(store.Products(), ledger)

	return &fixture{
		store:    store,
		create:   NewCreateSaleHandler(store.Sales(), store.Stores(), store.PaymentMethods(), store.Products(), adjuster, tx, nil),
		addItem:  NewAddItemHandler(store.Sales(), store.Products(), adjuster, tx),
		updItem:  NewUpdateItemHandler(store.Sales(), adjuster, tx),
		delItem:  NewRemoveItemHandler(store.Sales(), adjuster, tx),
		addPay:   NewAddPaymentHandler(store.Sales(), store.PaymentMethods(), tx),
		delPay:   NewRemovePaymentHandler(store.Sales(), tx),
		cancel:   NewCancelSaleHandler(store.Sales(), store.Stores(), adjuster, tx, nil),
		storeID:  storeID,
		cashID:   cashID,
		coffeeID: coffeeID,
		mugID:    mugID,
	}
}

// newSale creates a pending two-line sale: 2x coffee and 1x mug
func (f *fixture) newSale(t *testing.T) *domain.Sale {
	t.Helper()

	sale, err := f.create.Handle(context.Background(), CreateSaleCommand{
		OrganizationID: testOrg,
		StoreID:        f.storeID,
		UserID:         testUser,
		Items: []SaleItemInput{
			{ProductID: f.coffeeID, Quantity: 2},
			{ProductID: f.mugID, Quantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("create sale failed: %v", err)
	}
	return sale
}

func (f *fixture) stockOf(t *testing.T, productID uint) int {
	t.Helper()

	product, err := f.store.Products().FindByID(context.Background(), testOrg, productID)
	if err != nil {
		t.Fatalf("find product failed: %v", err)
	}
	return product.CurrentStock
}

func mustEqual(t *testing.T, got decimal.Decimal, want string) {
	t.Helper()

	if !got.Equal(decimal.RequireFromString(want)) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}
