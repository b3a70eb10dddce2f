package query

import (
	"context"

	"github.com/quintaldo/pos-engine/internal/sale/domain"
)

// GetSaleQuery represents the query to fetch a single sale
type GetSaleQuery struct {
	OrganizationID uint
	SaleID         uint
}

// GetSaleHandler handles single sale queries
type GetSaleHandler struct {
	sales domain.SaleRepository
}

// NewGetSaleHandler creates a new get sale handler
func NewGetSaleHandler(sales domain.SaleRepository) *GetSaleHandler {
	return &GetSaleHandler{sales: sales}
}

// Handle executes the get sale query
func (h *GetSaleHandler) Handle(ctx context.Context, q GetSaleQuery) (*domain.Sale, error) {
	return h.sales.FindByID(ctx, q.OrganizationID, q.SaleID)
}
