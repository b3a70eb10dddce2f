package http

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterSwaggerDocs registers Swagger documentation routes
// @Summary Swagger documentation
// @Description Swagger API documentation for the sale engine
// @Tags Swagger
// @Success 200 {string} string "Swagger UI"
// @Router /swagger/ [get]
func RegisterSwaggerDocs(router *mux.Router, swaggerHandler http.Handler) {
	router.PathPrefix("/swagger/").Handler(swaggerHandler)
}

// CreateSale godoc
// @Summary Create a sale
// @Description Create a sale with its items and optional payments in one unit
// @Tags Sales
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{store_id=int,notes=string,items=array,payments=array} true "Sale data"
// @Success 201 {object} object{status=int,message=string,data=object}
// @Failure 400 {object} object{status=int,message=string}
// @Failure 409 {object} object{status=int,message=string}
// @Router /api/sales [post]
func (h *SaleHandler) CreateSaleDoc() {}

// ListSales godoc
// @Summary List sales
// @Description List sales with optional store and status filters
// @Tags Sales
// @Security BearerAuth
// @Produce json
// @Param store_id query int false "Store ID"
// @Param status query string false "Sale status"
// @Param limit query int false "Limit"
// @Param offset query int false "Offset"
// @Success 200 {object} object{status=int,message=string,data=array}
// @Router /api/sales [get]
func (h *SaleHandler) ListSalesDoc() {}

// GetSale godoc
// @Summary Get sale by ID
// @Description Get a sale with its live items and payments
// @Tags Sales
// @Security BearerAuth
// @Produce json
// @Param id path int true "Sale ID"
// @Success 200 {object} object{status=int,message=string,data=object}
// @Failure 404 {object} object{status=int,message=string}
// @Router /api/sales/{id} [get]
func (h *SaleHandler) GetSaleDoc() {}

// AddItem godoc
// @Summary Add an item to a sale
// @Description Add a sale line, decrementing product stock
// @Tags Sales
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Sale ID"
// @Param request body object{product_id=int,quantity=int,unit_price=number} true "Item data"
// @Success 200 {object} object{status=int,message=string,data=object}
// @Failure 409 {object} object{status=int,message=string}
// @Router /api/sales/{id}/items [post]
func (h *SaleHandler) AddItemDoc() {}

// CancelSale godoc
// @Summary Cancel a sale
// @Description Cancel a sale and restore the stock of all live items
// @Tags Sales
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Sale ID"
// @Param request body object{reason=string,override_pin=string} true "Cancellation data"
// @Success 200 {object} object{status=int,message=string,data=object}
// @Failure 403 {object} object{status=int,message=string}
// @Failure 409 {object} object{status=int,message=string}
// @Router /api/sales/{id}/cancel [post]
func (h *SaleHandler) CancelSaleDoc() {}
