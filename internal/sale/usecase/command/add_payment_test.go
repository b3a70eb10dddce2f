package command

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	catalogdomain "github.com/quintaldo/pos-engine/internal/catalog/domain"
	"github.com/quintaldo/pos-engine/internal/sale/domain"
)

func TestAddPaymentPartialThenSettled(t *testing.T) {
	f := newFixture(t)
	sale := f.newSale(t) // total 27.50
	ctx := context.Background()

	partial, err := f.addPay.Handle(ctx, AddPaymentCommand{
		OrganizationID: testOrg, SaleID: sale.ID, PaymentMethodID: f.cashID,
		Amount: decimal.NewFromInt(20), UserID: testUser,
	})
	if err != nil {
		t.Fatalf("partial payment failed: %v", err)
	}
	if partial.Status != domain.StatusPending {
		t.Fatalf("expected PENDING after partial payment, got %s", partial.Status)
	}
	if len(partial.Payments) != 1 {
		t.Fatalf("expected 1 payment, got %d", len(partial.Payments))
	}

	settled, err := f.addPay.Handle(ctx, AddPaymentCommand{
		OrganizationID: testOrg, SaleID: sale.ID, PaymentMethodID: f.cashID,
		Amount: decimal.RequireFromString("7.5"), UserID: testUser,
	})
	if err != nil {
		t.Fatalf("settling payment failed: %v", err)
	}
	if settled.Status != domain.StatusPaid {
		t.Fatalf("expected PAID after full settlement, got %s", settled.Status)
	}
	if settled.PaidDate == nil {
		t.Fatalf("expected paid date set")
	}
}

func TestAddPaymentWithinTolerance(t *testing.T) {
	f := newFixture(t)
	sale := f.newSale(t)

	// One cent short still settles the sale.
	settled, err := f.addPay.Handle(context.Background(), AddPaymentCommand{
		OrganizationID: testOrg, SaleID: sale.ID, PaymentMethodID: f.cashID,
		Amount: decimal.RequireFromString("27.49"), UserID: testUser,
	})
	if err != nil {
		t.Fatalf("payment failed: %v", err)
	}
	if settled.Status != domain.StatusPaid {
		t.Fatalf("expected PAID within tolerance, got %s", settled.Status)
	}
}

func TestAddPaymentExceedsRemainingBalance(t *testing.T) {
	f := newFixture(t)
	sale := f.newSale(t)
	ctx := context.Background()

	if _, err := f.addPay.Handle(ctx, AddPaymentCommand{
		OrganizationID: testOrg, SaleID: sale.ID, PaymentMethodID: f.cashID,
		Amount: decimal.NewFromInt(20), UserID: testUser,
	}); err != nil {
		t.Fatalf("payment failed: %v", err)
	}

	_, err := f.addPay.Handle(ctx, AddPaymentCommand{
		OrganizationID: testOrg, SaleID: sale.ID, PaymentMethodID: f.cashID,
		Amount: decimal.NewFromInt(10), UserID: testUser,
	})
	if !errors.Is(err, domain.ErrPaymentExceedsTotal) {
		t.Fatalf("expected exceeds-balance rejection, got %v", err)
	}

	reloaded, _ := f.store.Sales().FindByID(ctx, testOrg, sale.ID)
	if len(reloaded.Payments) != 1 {
		t.Fatalf("expected rejected payment not persisted, got %d payments", len(reloaded.Payments))
	}
}

func TestAddPaymentValidation(t *testing.T) {
	f := newFixture(t)
	sale := f.newSale(t)
	ctx := context.Background()

	if _, err := f.addPay.Handle(ctx, AddPaymentCommand{
		OrganizationID: testOrg, SaleID: sale.ID, PaymentMethodID: f.cashID,
		Amount: decimal.Zero, UserID: testUser,
	}); !errors.Is(err, domain.ErrInvalidAmount) {
		t.Fatalf("expected invalid amount, got %v", err)
	}

	if _, err := f.addPay.Handle(ctx, AddPaymentCommand{
		OrganizationID: testOrg, SaleID: sale.ID, PaymentMethodID: 99,
		Amount: decimal.NewFromInt(5), UserID: testUser,
	}); !errors.Is(err, catalogdomain.ErrPaymentMethodNotFound) {
		t.Fatalf("expected unknown payment method, got %v", err)
	}

	if _, err := f.addPay.Handle(ctx, AddPaymentCommand{
		OrganizationID: testOrg, SaleID: 99, PaymentMethodID: f.cashID,
		Amount: decimal.NewFromInt(5), UserID: testUser,
	}); !errors.Is(err, domain.ErrSaleNotFound) {
		t.Fatalf("expected sale not found, got %v", err)
	}
}

func TestAddPaymentInactiveMethod(t *testing.T) {
	f := newFixture(t)
	sale := f.newSale(t)
	disabledID := f.store.SeedPaymentMethod(catalogdomain.PaymentMethod{
		OrganizationID: testOrg,
		Name:           "Legacy Voucher",
		Code:           "VOUCHER",
		IsActive:       false,
	})

	_, err := f.addPay.Handle(context.Background(), AddPaymentCommand{
		OrganizationID: testOrg, SaleID: sale.ID, PaymentMethodID: disabledID,
		Amount: decimal.NewFromInt(5), UserID: testUser,
	})
	if !errors.Is(err, catalogdomain.ErrPaymentMethodNotFound) {
		t.Fatalf("expected inactive method rejection, got %v", err)
	}
}

func TestRemovePaymentDowngradesPaidSale(t *testing.T) {
	f := newFixture(t)
	sale := f.newSale(t)
	ctx := context.Background()

	paid, err := f.addPay.Handle(ctx, AddPaymentCommand{
		OrganizationID: testOrg, SaleID: sale.ID, PaymentMethodID: f.cashID,
		Amount: decimal.RequireFromString("27.5"), UserID: testUser,
	})
	if err != nil {
		t.Fatalf("payment failed: %v", err)
	}
	if paid.Status != domain.StatusPaid {
		t.Fatalf("expected PAID, got %s", paid.Status)
	}

	downgraded, err := f.delPay.Handle(ctx, RemovePaymentCommand{
		OrganizationID: testOrg, SaleID: sale.ID, PaymentID: paid.Payments[0].ID, UserID: testUser,
	})
	if err != nil {
		t.Fatalf("remove payment failed: %v", err)
	}
	if downgraded.Status != domain.StatusPending {
		t.Fatalf("expected PENDING after payment removal, got %s", downgraded.Status)
	}
	if downgraded.PaidDate != nil {
		t.Fatalf("expected paid date cleared")
	}
	if len(downgraded.Payments) != 0 {
		t.Fatalf("expected no live payments, got %d", len(downgraded.Payments))
	}
}

func TestRemovePaymentFromOtherSale(t *testing.T) {
	f := newFixture(t)
	first := f.newSale(t)
	second := f.newSale(t)
	ctx := context.Background()

	paid, err := f.addPay.Handle(ctx, AddPaymentCommand{
		OrganizationID: testOrg, SaleID: first.ID, PaymentMethodID: f.cashID,
		Amount: decimal.NewFromInt(10), UserID: testUser,
	})
	if err != nil {
		t.Fatalf("payment failed: %v", err)
	}

	_, err = f.delPay.Handle(ctx, RemovePaymentCommand{
		OrganizationID: testOrg, SaleID: second.ID, PaymentID: paid.Payments[0].ID, UserID: testUser,
	})
	if !errors.Is(err, domain.ErrPaymentNotFound) {
		t.Fatalf("expected cross-sale payment rejection, got %v", err)
	}
}
