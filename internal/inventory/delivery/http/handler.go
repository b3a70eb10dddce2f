package http

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/quintaldo/pos-engine/internal/inventory/domain"
	"github.com/quintaldo/pos-engine/internal/inventory/repository"
	"github.com/quintaldo/pos-engine/internal/inventory/usecase/command"
	"github.com/quintaldo/pos-engine/internal/inventory/usecase/query"
	"github.com/quintaldo/pos-engine/kafka"
	"github.com/quintaldo/pos-engine/pkg/logger"
	"github.com/quintaldo/pos-engine/pkg/middleware"
)

// MovementPublisher publishes stock movement events after they are recorded
type MovementPublisher interface {
	PublishStockMovement(ctx context.Context, event kafka.StockMovementEvent) error
}

// Response is the uniform envelope returned by every endpoint
type Response struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// StockHandler handles HTTP requests for stock movements
type StockHandler struct {
	applyHandler *command.ApplyMovementHandler
	undoHandler  *command.UndoMovementHandler

	listHandler     *query.ListMovementsHandler
	lowStockHandler *query.LowStockHandler
	replayReporter  *repository.ReplayReporter
	publisher       MovementPublisher

	movementCounter *prometheus.CounterVec
	requestLatency  *prometheus.HistogramVec
}

// NewStockHandler creates a new stock handler
func NewStockHandler(
	applyHandler *command.ApplyMovementHandler,
	undoHandler *command.UndoMovementHandler,
	listHandler *query.ListMovementsHandler,
	lowStockHandler *query.LowStockHandler,
	replayReporter *repository.ReplayReporter,
	publisher MovementPublisher,
) *StockHandler {
	movementCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stock_service_movements_total",
			Help: "Total number of stock movements recorded",
		},
		[]string{"type"},
	)

	requestLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stock_service_request_duration_seconds",
			Help:    "Duration of stock service requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	prometheus.MustRegister(movementCounter)
	prometheus.MustRegister(requestLatency)

	return &StockHandler{
		applyHandler:    applyHandler,
		undoHandler:     undoHandler,
		listHandler:     listHandler,
		lowStockHandler: lowStockHandler,
		replayReporter:  replayReporter,
		publisher:       publisher,
		movementCounter: movementCounter,
		requestLatency:  requestLatency,
	}
}

// metricsMiddleware wraps handlers with Prometheus metrics
func (h *StockHandler) metricsMiddleware(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		h.requestLatency.WithLabelValues(r.Method, endpoint).Observe(time.Since(start).Seconds())
	}
}

// ApplyMovement handles POST /api/stock/movements
func (h *StockHandler) ApplyMovement(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, Response{Status: http.StatusUnauthorized, Message: "Authentication required"})
		return
	}

	var req struct {
		ProductID uint   `json:"product_id"`
		Type      string `json:"type"`
		Quantity  int    `json:"quantity"`
		Reason    string `json:"reason"`
		Reference string `json:"reference"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Status: http.StatusBadRequest, Message: "Invalid request body"})
		return
	}

	movement, err := h.applyHandler.Handle(r.Context(), command.ApplyMovementCommand{
		OrganizationID: claims.OrganizationID,
		ProductID:      req.ProductID,
		Type:           domain.MovementType(req.Type),
		Quantity:       req.Quantity,
		UserID:         claims.UserID,
		Reason:         req.Reason,
		Reference:      req.Reference,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.movementCounter.WithLabelValues(string(movement.Type)).Inc()

	if h.publisher != nil {
		event := kafka.StockMovementEvent{
			MovementID:     movement.ID,
			OrganizationID: movement.OrganizationID,
			ProductID:      movement.ProductID,
			Type:           string(movement.Type),
			Quantity:       movement.Quantity,
			PreviousStock:  movement.PreviousStock,
			NewStock:       movement.NewStock,
			Reference:      movement.Reference,
		}
		if err := h.publisher.PublishStockMovement(r.Context(), event); err != nil {
			logger.Warn(r.Context()).Err(err).Uint("movement_id", movement.ID).Msg("Failed to publish stock movement event")
		}
	}

	respondJSON(w, http.StatusCreated, Response{
		Status:  http.StatusCreated,
		Message: "Stock movement recorded successfully",
		Data:    movement,
	})
}

// UndoMovement handles DELETE /api/stock/movements/{id}
func (h *StockHandler) UndoMovement(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, Response{Status: http.StatusUnauthorized, Message: "Authentication required"})
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Status: http.StatusBadRequest, Message: "Invalid movement ID"})
		return
	}

	if err := h.undoHandler.Handle(r.Context(), command.UndoMovementCommand{
		OrganizationID: claims.OrganizationID,
		MovementID:     id,
		UserID:         claims.UserID,
	}); err != nil {
		h.respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{Status: http.StatusOK, Message: "Stock movement undone successfully"})
}

// ListMovements handles GET /api/stock/movements/{product_id}
func (h *StockHandler) ListMovements(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, Response{Status: http.StatusUnauthorized, Message: "Authentication required"})
		return
	}

	productID, err := pathID(r, "product_id")
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Status: http.StatusBadRequest, Message: "Invalid product ID"})
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	movements, err := h.listHandler.Handle(r.Context(), query.ListMovementsQuery{
		OrganizationID: claims.OrganizationID,
		ProductID:      productID,
		Limit:          limit,
		Offset:         offset,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{Status: http.StatusOK, Message: "OK", Data: movements})
}

// LowStock handles GET /api/stock/low
func (h *StockHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, Response{Status: http.StatusUnauthorized, Message: "Authentication required"})
		return
	}

	products, err := h.lowStockHandler.Handle(r.Context(), claims.OrganizationID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{Status: http.StatusOK, Message: "OK", Data: products})
}

// ReplayProduct handles GET /api/stock/replay/{product_id}
func (h *StockHandler) ReplayProduct(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, Response{Status: http.StatusUnauthorized, Message: "Authentication required"})
		return
	}

	productID, err := pathID(r, "product_id")
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Status: http.StatusBadRequest, Message: "Invalid product ID"})
		return
	}

	if h.replayReporter == nil {
		respondJSON(w, http.StatusServiceUnavailable, Response{Status: http.StatusServiceUnavailable, Message: "Replay reporting unavailable"})
		return
	}

	report, err := h.replayReporter.Replay(r.Context(), claims.OrganizationID, productID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{Status: http.StatusOK, Message: "OK", Data: report})
}

// RegisterRoutes registers all stock routes
func (h *StockHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/stock/movements",
		h.metricsMiddleware("/api/stock/movements", middleware.PrivilegedMiddleware(h.ApplyMovement))).Methods("POST")
	router.HandleFunc("/api/stock/movements/{id:[0-9]+}",
		h.metricsMiddleware("/api/stock/movements/{id}", middleware.PrivilegedMiddleware(h.UndoMovement))).Methods("DELETE")
	router.HandleFunc("/api/stock/movements/{product_id:[0-9]+}",
		h.metricsMiddleware("/api/stock/movements/{product_id}", middleware.AuthMiddleware(h.ListMovements))).Methods("GET")
	router.HandleFunc("/api/stock/low",
		h.metricsMiddleware("/api/stock/low", middleware.AuthMiddleware(h.LowStock))).Methods("GET")
	router.HandleFunc("/api/stock/replay/{product_id:[0-9]+}",
		h.metricsMiddleware("/api/stock/replay/{product_id}", middleware.PrivilegedMiddleware(h.ReplayProduct))).Methods("GET")
}

// RegisterHealthCheck registers health check endpoint
func (h *StockHandler) RegisterHealthCheck(router *mux.Router, db *sql.DB) {
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(); err != nil {
			respondJSON(w, http.StatusServiceUnavailable, Response{
				Status:  http.StatusServiceUnavailable,
				Message: "Database unavailable",
			})
			return
		}

		respondJSON(w, http.StatusOK, Response{Status: http.StatusOK, Message: "Service is healthy"})
	}).Methods("GET")
}

func (h *StockHandler) respondError(w http.ResponseWriter, r *http.Request, err error) {
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
	case errors.Is(err, domain.ErrInvalidQuantity),
		domain.IsInsufficientStock(err):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrMovementNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrProductInactive),
		errors.Is(err, domain.ErrMovementNotLatest):
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
