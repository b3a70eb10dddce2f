package http

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterSwaggerDocs registers Swagger documentation routes
// @Summary Swagger documentation
// @Description Swagger API documentation for the stock ledger
// @Tags Swagger
// @Success 200 {string} string "Swagger UI"
// @Router /swagger/ [get]
func RegisterSwaggerDocs(router *mux.Router, swaggerHandler http.Handler) {
	router.PathPrefix("/swagger/").Handler(swaggerHandler)
}

// ApplyMovement godoc
// @Summary Record a stock movement
// @Description Record an IN, OUT or ADJUSTMENT movement for a product (Manager only)
// @Tags Stock
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{product_id=int,type=string,quantity=int,reason=string,reference=string} true "Movement data"
// @Success 201 {object} object{status=int,message=string,data=object}
// @Failure 400 {object} object{status=int,message=string}
// @Failure 409 {object} object{status=int,message=string}
// @Router /api/stock/movements [post]
func (h *StockHandler) ApplyMovementDoc() {}

// ListMovements godoc
// @Summary List stock movements
// @Description List the movement history of a product, newest first
// @Tags Stock
// @Security BearerAuth
// @Produce json
// @Param product_id path int true "Product ID"
// @Param limit query int false "Limit"
// @Param offset query int false "Offset"
// @Success 200 {object} object{status=int,message=string,data=array}
// @Router /api/stock/movements/{product_id} [get]
func (h *StockHandler) ListMovementsDoc() {}

// UndoMovement godoc
// @Summary Undo the latest stock movement
// @Description Delete a product's most recent movement and rewind its stock (Manager only)
// @Tags Stock
// @Security BearerAuth
// @Produce json
// @Param id path int true "Movement ID"
// @Success 200 {object} object{status=int,message=string}
// @Failure 409 {object} object{status=int,message=string}
// @Router /api/stock/movements/{id} [delete]
func (h *StockHandler) UndoMovementDoc() {}

// LowStock godoc
// @Summary List low stock products
// @Description List active products at or below their minimum stock level
// @Tags Stock
// @Security BearerAuth
// @Produce json
// @Success 200 {object} object{status=int,message=string,data=array}
// @Router /api/stock/low [get]
func (h *StockHandler) LowStockDoc() {}

// ReplayProduct godoc
// @Summary Replay a product's movement history
// @Description Recompute stock from the movement ledger and compare with the recorded value (Manager only)
// @Tags Stock
// @Security BearerAuth
// @Produce json
// @Param product_id path int true "Product ID"
// @Success 200 {object} object{status=int,message=string,data=object}
// @Router /api/stock/replay/{product_id} [get]
func (h *StockHandler) ReplayProductDoc() {}
