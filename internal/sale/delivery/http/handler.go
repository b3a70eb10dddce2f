package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	catalogdomain "github.com/quintaldo/pos-engine/internal/catalog/domain"
	invdomain "github.com/quintaldo/pos-engine/internal/inventory/domain"
	"github.com/quintaldo/pos-engine/internal/sale/domain"
	"github.com/quintaldo/pos-engine/internal/sale/usecase/command"
	"github.com/quintaldo/pos-engine/internal/sale/usecase/query"
	"github.com/quintaldo/pos-engine/pkg/auth"
	"github.com/quintaldo/pos-engine/pkg/logger"
	"github.com/quintaldo/pos-engine/pkg/middleware"
)

// Response is the uniform envelope returned by every endpoint
type Response struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// SaleHandler handles HTTP requests for sales
type SaleHandler struct {
	// Command handlers
	createHandler        *command.CreateSaleHandler
	addItemHandler       *command.AddItemHandler
	updateItemHandler    *command.UpdateItemHandler
	removeItemHandler    *command.RemoveItemHandler
	addPaymentHandler    *command.AddPaymentHandler
	removePaymentHandler *command.RemovePaymentHandler
	cancelHandler        *command.CancelSaleHandler

	// Query handlers
	getHandler  *query.GetSaleHandler
	listHandler *query.ListSalesHandler

	requestCounter *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	salesCreated   prometheus.Counter
	salesCancelled prometheus.Counter
}

// NewSaleHandler creates a new sale handler
func NewSaleHandler(
	createHandler *command.CreateSaleHandler,
	addItemHandler *command.AddItemHandler,
	updateItemHandler *command.UpdateItemHandler,
	removeItemHandler *command.RemoveItemHandler,
	addPaymentHandler *command.AddPaymentHandler,
	removePaymentHandler *command.RemovePaymentHandler,
	cancelHandler *command.CancelSaleHandler,
	getHandler *query.GetSaleHandler,
	listHandler *query.ListSalesHandler,
) *SaleHandler {
	requestCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sale_service_requests_total",
			Help: "Total number of requests to sale service",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sale_service_request_duration_seconds",
			Help:    "Duration of sale service requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	salesCreated := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sale_service_sales_created_total",
			Help: "Total number of sales created",
		},
	)

	salesCancelled := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sale_service_sales_cancelled_total",
			Help: "Total number of sales cancelled",
		},
	)

	prometheus.MustRegister(requestCounter)
	prometheus.MustRegister(requestLatency)
	prometheus.MustRegister(salesCreated)
	prometheus.MustRegister(salesCancelled)

	return &SaleHandler{
		createHandler:        createHandler,
		addItemHandler:       addItemHandler,
		updateItemHandler:    updateItemHandler,
		removeItemHandler:    removeItemHandler,
		addPaymentHandler:    addPaymentHandler,
		removePaymentHandler: removePaymentHandler,
		cancelHandler:        cancelHandler,
		getHandler:           getHandler,
		listHandler:          listHandler,
		requestCounter:       requestCounter,
		requestLatency:       requestLatency,
		salesCreated:         salesCreated,
		salesCancelled:       salesCancelled,
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// metricsMiddleware wraps handlers with Prometheus metrics
func (h *SaleHandler) metricsMiddleware(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		h.requestLatency.WithLabelValues(r.Method, endpoint).Observe(duration)
		h.requestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(rw.statusCode)).Inc()
	}
}

type itemRequest struct {
	ProductID uint             `json:"product_id"`
	Quantity  int              `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
}

type paymentRequest struct {
	PaymentMethodID uint            `json:"payment_method_id"`
	Amount          decimal.Decimal `json:"amount"`
}

// CreateSale handles POST /api/sales
func (h *SaleHandler) CreateSale(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, Response{Status: http.StatusUnauthorized, Message: "Authentication required"})
		return
	}

	var req struct {
		StoreID    uint             `json:"store_id"`
		CustomerID *uint            `json:"customer_id,omitempty"`
		DueDate    *time.Time       `json:"due_date,omitempty"`
		Notes      string           `json:"notes"`
		Items      []itemRequest    `json:"items"`
		Payments   []paymentRequest `json:"payments"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Status: http.StatusBadRequest, Message: "Invalid request body"})
		return
	}

	cmd := command.CreateSaleCommand{
		OrganizationID: claims.OrganizationID,
		StoreID:        req.StoreID,
		UserID:         claims.UserID,
		CustomerID:     req.CustomerID,
		DueDate:        req.DueDate,
		Notes:          req.Notes,
	}
	for _, item := range req.Items {
		cmd.Items = append(cmd.Items, command.SaleItemInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	for _, payment := range req.Payments {
		cmd.Payments = append(cmd.Payments, command.PaymentInput{
			PaymentMethodID: payment.PaymentMethodID,
			Amount:          payment.Amount,
		})
	}

	sale, err := h.createHandler.Handle(r.Context(), cmd)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.salesCreated.Inc()
	respondJSON(w, http.StatusCreated, Response{
		Status:  http.StatusCreated,
		Message: "Sale created successfully",
		Data:    sale,
	})
}

// GetSale handles GET /api/sales/{id}
func (h *SaleHandler) GetSale(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, Response{Status: http.StatusUnauthorized, Message: "Authentication required"})
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Status: http.StatusBadRequest, Message: "Invalid sale ID"})
		return
	}

	sale, err := h.getHandler.Handle(r.Context(), query.GetSaleQuery{
		OrganizationID: claims.OrganizationID,
		SaleID:         id,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{Status: http.StatusOK, Message: "OK", Data: sale})
}

// ListSales handles GET /api/sales
func (h *SaleHandler) ListSales(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, Response{Status: http.StatusUnauthorized, Message: "Authentication required"})
		return
	}

	storeID, _ := strconv.ParseUint(r.URL.Query().Get("store_id"), 10, 32)
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	sales, err := h.listHandler.Handle(r.Context(), query.ListSalesQuery{
		OrganizationID: claims.OrganizationID,
		StoreID:        uint(storeID),
		Status:         domain.SaleStatus(r.URL.Query().Get("status")),
		Limit:          limit,
		Offset:         offset,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{Status: http.StatusOK, Message: "OK", Data: sales})
}

// AddItem handles POST /api/sales/{id}/items
func (h *SaleHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, Response{Status: http.StatusUnauthorized, Message: "Authentication required"})
		return
	}

	saleID, err := pathID(r, "id")
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Status: http.StatusBadRequest, Message: "Invalid sale ID"})
		return
	}

	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Status: http.StatusBadRequest, Message: "Invalid request body"})
		return
	}

	sale, err := h.addItemHandler.Handle(r.Context(), command.AddItemCommand{
		OrganizationID: claims.OrganizationID,
		SaleID:         saleID,
		ProductID:      req.ProductID,
		Quantity:       req.Quantity,
		UnitPrice:      req.UnitPrice,
		UserID:         claims.UserID,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{Status: http.StatusOK, Message: "Item added successfully", Data: sale})
}

// UpdateItem handles PATCH /api/sales/items/{id}
func (h *SaleHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, Response{Status: http.StatusUnauthorized, Message: "Authentication required"})
		return
	}

	itemID, err := pathID(r, "id")
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Status: http.StatusBadRequest, Message: "Invalid item ID"})
		return
	}

	var req struct {
		Quantity  *int             `json:"quantity,omitempty"`
		UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Status: http.StatusBadRequest, Message: "Invalid request body"})
		return
	}

	sale, err := h.updateItemHandler.Handle(r.Context(), command.UpdateItemCommand{
		OrganizationID: claims.OrganizationID,
		ItemID:         itemID,
		Quantity:       req.Quantity,
		UnitPrice:      req.UnitPrice,
		UserID:         claims.UserID,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{Status: http.StatusOK, Message: "Item updated successfully", Data: sale})
}

// RemoveItem handles DELETE /api/sales/items/{id}
func (h *SaleHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, Response{Status: http.StatusUnauthorized, Message: "Authentication required"})
		return
	}

	itemID, err := pathID(r, "id")
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Status: http.StatusBadRequest, Message: "Invalid item ID"})
		return
	}

	sale, err := h.removeItemHandler.Handle(r.Context(), command.RemoveItemCommand{
		OrganizationID: claims.OrganizationID,
		ItemID:         itemID,
		UserID:         claims.UserID,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{Status: http.StatusOK, Message: "Item removed successfully", Data: sale})
}

// AddPayment handles POST /api/sales/{id}/payments
func (h *SaleHandler) AddPayment(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, Response{Status: http.StatusUnauthorized, Message: "Authentication required"})
		return
	}

	saleID, err := pathID(r, "id")
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Status: http.StatusBadRequest, Message: "Invalid sale ID"})
		return
	}

	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Status: http.StatusBadRequest, Message: "Invalid request body"})
		return
	}

	sale, err := h.addPaymentHandler.Handle(r.Context(), command.AddPaymentCommand{
		OrganizationID:  claims.OrganizationID,
		SaleID:          saleID,
		PaymentMethodID: req.PaymentMethodID,
		Amount:          req.Amount,
		UserID:          claims.UserID,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{Status: http.StatusOK, Message: "Payment recorded successfully", Data: sale})
}

// RemovePayment handles DELETE /api/sales/{id}/payments/{payment_id}
func (h *SaleHandler) RemovePayment(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, Response{Status: http.StatusUnauthorized, Message: "Authentication required"})
		return
	}

	saleID, err := pathID(r, "id")
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Status: http.StatusBadRequest, Message: "Invalid sale ID"})
		return
	}
	paymentID, err := pathID(r, "payment_id")
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Status: http.StatusBadRequest, Message: "Invalid payment ID"})
		return
	}

	sale, err := h.removePaymentHandler.Handle(r.Context(), command.RemovePaymentCommand{
		OrganizationID: claims.OrganizationID,
		SaleID:         saleID,
		PaymentID:      paymentID,
		UserID:         claims.UserID,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{Status: http.StatusOK, Message: "Payment removed successfully", Data: sale})
}

// CancelSale handles POST /api/sales/{id}/cancel
func (h *SaleHandler) CancelSale(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, Response{Status: http.StatusUnauthorized, Message: "Authentication required"})
		return
	}

	saleID, err := pathID(r, "id")
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Status: http.StatusBadRequest, Message: "Invalid sale ID"})
		return
	}

	var req struct {
		Reason      string `json:"reason"`
		OverridePIN string `json:"override_pin,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Status: http.StatusBadRequest, Message: "Invalid request body"})
		return
	}

	sale, err := h.cancelHandler.Handle(r.Context(), command.CancelSaleCommand{
		OrganizationID: claims.OrganizationID,
		SaleID:         saleID,
		UserID:         claims.UserID,
		Reason:         req.Reason,
		Privileged:     auth.IsPrivilegedActor(claims.Role),
		OverridePIN:    req.OverridePIN,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.salesCancelled.Inc()
	respondJSON(w, http.StatusOK, Response{Status: http.StatusOK, Message: "Sale cancelled successfully", Data: sale})
}

// RegisterRoutes registers all sale routes
func (h *SaleHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/sales",
		h.metricsMiddleware("/api/sales", middleware.AuthMiddleware(h.CreateSale))).Methods("POST")
	router.HandleFunc("/api/sales",
		h.metricsMiddleware("/api/sales", middleware.AuthMiddleware(h.ListSales))).Methods("GET")
	router.HandleFunc("/api/sales/{id:[0-9]+}",
		h.metricsMiddleware("/api/sales/{id}", middleware.AuthMiddleware(h.GetSale))).Methods("GET")
	router.HandleFunc("/api/sales/{id:[0-9]+}/items",
		h.metricsMiddleware("/api/sales/{id}/items", middleware.AuthMiddleware(h.AddItem))).Methods("POST")
	router.HandleFunc("/api/sales/items/{id:[0-9]+}",
		h.metricsMiddleware("/api/sales/items/{id}", middleware.AuthMiddleware(h.UpdateItem))).Methods("PATCH")
	router.HandleFunc("/api/sales/items/{id:[0-9]+}",
		h.metricsMiddleware("/api/sales/items/{id}", middleware.AuthMiddleware(h.RemoveItem))).Methods("DELETE")
	router.HandleFunc("/api/sales/{id:[0-9]+}/payments",
		h.metricsMiddleware("/api/sales/{id}/payments", middleware.AuthMiddleware(h.AddPayment))).Methods("POST")
	router.HandleFunc("/api/sales/{id:[0-9]+}/payments/{payment_id:[0-9]+}",
		h.metricsMiddleware("/api/sales/{id}/payments/{payment_id}", middleware.AuthMiddleware(h.RemovePayment))).Methods("DELETE")
	router.HandleFunc("/api/sales/{id:[0-9]+}/cancel",
		h.metricsMiddleware("/api/sales/{id}/cancel", middleware.AuthMiddleware(h.CancelSale))).Methods("POST")
}

func (h *SaleHandler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error(r.Context()).Err(err).Str("path", r.URL.Path).Msg("Request failed")
		respondJSON(w, status, Response{Status: status, Message: "Internal server error"})
		return
	}
	respondJSON(w, status, Response{Status: status, Message: err.Error()})
}

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNoItems),
		errors.Is(err, domain.ErrInvalidUnitPrice),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrPaymentTotalMismatch),
		errors.Is(err, invdomain.ErrInvalidQuantity),
		invdomain.IsInsufficientStock(err):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrManagerOverrideNeeded):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrSaleNotFound),
		errors.Is(err, domain.ErrItemNotFound),
		errors.Is(err, domain.ErrPaymentNotFound),
		errors.Is(err, invdomain.ErrProductNotFound),
		errors.Is(err, catalogdomain.ErrStoreNotFound),
		errors.Is(err, catalogdomain.ErrPaymentMethodNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrSaleCancelled),
		errors.Is(err, domain.ErrAlreadyCancelled),
		errors.Is(err, domain.ErrLastItem),
		errors.Is(err, domain.ErrPaymentExceedsTotal),
		errors.Is(err, domain.ErrDuplicateSaleNumber),
		errors.Is(err, invdomain.ErrProductInactive):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func pathID(r *http.Request, key string) (uint, error) {
	id, err := strconv.ParseUint(mux.Vars(r)[key], 10, 32)
	return uint(id), err
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
