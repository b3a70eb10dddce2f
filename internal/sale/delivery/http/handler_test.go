package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	catalogdomain "github.com/quintaldo/pos-engine/internal/catalog/domain"
	invdomain "github.com/quintaldo/pos-engine/internal/inventory/domain"
	invcommand "github.com/quintaldo/pos-engine/internal/inventory/usecase/command"
	"github.com/quintaldo/pos-engine/internal/sale/domain"
	"github.com/quintaldo/pos-engine/internal/sale/usecase/command"
	"github.com/quintaldo/pos-engine/internal/sale/usecase/query"
	"github.com/quintaldo/pos-engine/internal/storage/memory"
	"github.com/quintaldo/pos-engine/pkg/auth"
)

// The handler registers its Prometheus collectors against the default
// registry, so the test server is built once and shared.
var (
	setupOnce  sync.Once
	testRouter *mux.Router
	testStore  *memory.Store

	storeID  uint
	cashID   uint
	coffeeID uint
)

func setup(t *testing.T) {
	t.Helper()

	setupOnce.Do(func() {
		testStore = memory.New()
		storeID = testStore.SeedStore(catalogdomain.Store{
			OrganizationID: 1, Name: "Main", SaleNumberPrefix: "M", IsActive: true,
		})
		cashID = testStore.SeedPaymentMethod(catalogdomain.PaymentMethod{
			OrganizationID: 1, Name: "Cash", Code: "CASH", IsActive: true,
		})
		coffeeID = testStore.SeedProduct(invdomain.Product{
			OrganizationID: 1, Name: "Coffee 250g", SKU: "COF-250",
			SalePrice: decimal.NewFromInt(10), CurrentStock: 1000, IsActive: true,
		})

		tx := memory.NewTxManager(testStore)
		adjuster := invcommand.NewAdjuster(testStore.Products(),
			invcommand.NewApplyMovementHandler(testStore.Products(), testStore.Movements(), tx))

		handler := NewSaleHandler(
			command.NewCreateSaleHandler(testStore.Sales(), testStore.Stores(), testStore.PaymentMethods(), testStore.Products(), adjuster, tx, nil),
			command.NewAddItemHandler(testStore.Sales(), testStore.Products(), adjuster, tx),
			command.NewUpdateItemHandler(testStore.Sales(), adjuster, tx),
			command.NewRemoveItemHandler(testStore.Sales(), adjuster, tx),
			command.NewAddPaymentHandler(testStore.Sales(), testStore.PaymentMethods(), tx),
			command.NewRemovePaymentHandler(testStore.Sales(), tx),
			command.NewCancelSaleHandler(testStore.Sales(), testStore.Stores(), adjuster, tx, nil),
			query.NewGetSaleHandler(testStore.Sales()),
			query.NewListSalesHandler(testStore.Sales()),
		)

		testRouter = mux.NewRouter()
		handler.RegisterRoutes(testRouter)
	})
}

func bearerToken(t *testing.T, role string) string {
	t.Helper()

	token, err := auth.GenerateToken(7, "cashier-a", role, 1, time.Hour)
	if err != nil {
		t.Fatalf("generate token failed: %v", err)
	}
	return "Bearer " + token
}

func doRequest(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, Response) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body failed: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	rec := httptest.NewRecorder()
	testRouter.ServeHTTP(rec, req)

	var resp Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode envelope failed: %v (%s)", err, rec.Body.String())
	}
	return rec, resp
}

func createSale(t *testing.T, token string) uint {
	t.Helper()

	rec, resp := doRequest(t, http.MethodPost, "/api/sales", token, map[string]interface{}{
		"store_id": storeID,
		"items":    []map[string]interface{}{{"product_id": coffeeID, "quantity": 2}},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	data := resp.Data.(map[string]interface{})
	return uint(data["id"].(float64))
}

func TestCreateSaleEndpoint(t *testing.T) {
	setup(t)
	token := bearerToken(t, "cashier")

	rec, resp := doRequest(t, http.MethodPost, "/api/sales", token, map[string]interface{}{
		"store_id": storeID,
		"items":    []map[string]interface{}{{"product_id": coffeeID, "quantity": 3}},
	})
	if rec.Code != http.StatusCreated || resp.Status != http.StatusCreated {
		t.Fatalf("expected 201 envelope, got %d / %d", rec.Code, resp.Status)
	}

	data := resp.Data.(map[string]interface{})
	if data["status"] != string(domain.StatusPending) {
		t.Fatalf("expected PENDING sale, got %v", data["status"])
	}
	if data["sale_number"] == "" {
		t.Fatalf("expected a sale number")
	}
}

func TestCreateSaleRejectsEmptyItems(t *testing.T) {
	setup(t)
	token := bearerToken(t, "cashier")

	rec, resp := doRequest(t, http.MethodPost, "/api/sales", token, map[string]interface{}{
		"store_id": storeID,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if resp.Message != domain.ErrNoItems.Error() {
		t.Fatalf("unexpected message %q", resp.Message)
	}
}

func TestEndpointsRequireAuthentication(t *testing.T) {
	setup(t)

	rec, _ := doRequest(t, http.MethodGet, "/api/sales", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	rec, _ = doRequest(t, http.MethodGet, "/api/sales", "Bearer not-a-token", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with invalid token, got %d", rec.Code)
	}
}

func TestGetSaleNotFound(t *testing.T) {
	setup(t)
	token := bearerToken(t, "cashier")

	rec, resp := doRequest(t, http.MethodGet, "/api/sales/999999", token, nil)
	if rec.Code != http.StatusNotFound || resp.Status != http.StatusNotFound {
		t.Fatalf("expected 404 envelope, got %d / %d", rec.Code, resp.Status)
	}
}

func TestCancelSaleByRole(t *testing.T) {
	setup(t)
	cashier := bearerToken(t, "cashier")
	manager := bearerToken(t, "manager")

	saleID := createSale(t, cashier)
	path := "/api/sales/" + itoa(saleID) + "/cancel"

	// A cashier without the override PIN is refused.
	rec, _ := doRequest(t, http.MethodPost, path, cashier, map[string]interface{}{"reason": "test"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for cashier, got %d", rec.Code)
	}

	// A manager cancels directly.
	rec, resp := doRequest(t, http.MethodPost, path, manager, map[string]interface{}{"reason": "test"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for manager, got %d: %s", rec.Code, rec.Body.String())
	}
	data := resp.Data.(map[string]interface{})
	if data["status"] != string(domain.StatusCancelled) {
		t.Fatalf("expected CANCELLED, got %v", data["status"])
	}

	// Cancelling again conflicts.
	rec, _ = doRequest(t, http.MethodPost, path, manager, map[string]interface{}{"reason": "again"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 on double cancel, got %d", rec.Code)
	}
}

func TestPaymentEndpointsLifecycle(t *testing.T) {
	setup(t)
	token := bearerToken(t, "cashier")

	saleID := createSale(t, token) // total 20.00
	payPath := "/api/sales/" + itoa(saleID) + "/payments"

	rec, resp := doRequest(t, http.MethodPost, payPath, token, map[string]interface{}{
		"payment_method_id": cashID,
		"amount":            "20",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	data := resp.Data.(map[string]interface{})
	if data["status"] != string(domain.StatusPaid) {
		t.Fatalf("expected PAID, got %v", data["status"])
	}

	// Overpaying a settled sale conflicts.
	rec, _ = doRequest(t, http.MethodPost, payPath, token, map[string]interface{}{
		"payment_method_id": cashID,
		"amount":            "5",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for excess payment, got %d", rec.Code)
	}
}

func TestStatusForMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{domain.ErrNoItems, http.StatusBadRequest},
		{domain.ErrInvalidUnitPrice, http.StatusBadRequest},
		{domain.ErrInvalidAmount, http.StatusBadRequest},
		{domain.ErrPaymentTotalMismatch, http.StatusBadRequest},
		{invdomain.ErrInvalidQuantity, http.StatusBadRequest},
		{domain.ErrManagerOverrideNeeded, http.StatusForbidden},
		{domain.ErrSaleNotFound, http.StatusNotFound},
		{domain.ErrItemNotFound, http.StatusNotFound},
		{domain.ErrPaymentNotFound, http.StatusNotFound},
		{invdomain.ErrProductNotFound, http.StatusNotFound},
		{catalogdomain.ErrStoreNotFound, http.StatusNotFound},
		{catalogdomain.ErrPaymentMethodNotFound, http.StatusNotFound},
		{domain.ErrSaleCancelled, http.StatusConflict},
		{domain.ErrAlreadyCancelled, http.StatusConflict},
		{domain.ErrLastItem, http.StatusConflict},
		{domain.ErrPaymentExceedsTotal, http.StatusConflict},
		{domain.ErrDuplicateSaleNumber, http.StatusConflict},
		{invdomain.ErrProductInactive, http.StatusConflict},
		{&invdomain.InsufficientStockError{Available: 1, Requested: 2}, http.StatusBadRequest},
		{errors.New("db connection lost"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := statusFor(tc.err); got != tc.want {
			t.Errorf("statusFor(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}

	// Wrapped errors keep their mapping.
	wrapped := errors.Join(errors.New("context"), domain.ErrLastItem)
	if got := statusFor(wrapped); got != http.StatusConflict {
		t.Errorf("statusFor(wrapped) = %d, want 409", got)
	}
}

func itoa(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}
