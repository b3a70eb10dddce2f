package query

import (
	"context"

	"github.com/quintaldo/pos-engine/internal/sale/domain"
)

// ListSalesQuery represents the query to list sales with optional filters
type ListSalesQuery struct {
	OrganizationID uint
	StoreID        uint
	Status         domain.SaleStatus
	Limit          int
	Offset         int
}

// ListSalesHandler handles sale listing queries
type ListSalesHandler struct {
	sales domain.SaleRepository
}

// NewListSalesHandler creates a new list sales handler
func NewListSalesHandler(sales domain.SaleRepository) *ListSalesHandler {
	return &ListSalesHandler{sales: sales}
}

// Handle executes the list sales query
func (h *ListSalesHandler) Handle(ctx context.Context, q ListSalesQuery) ([]domain.Sale, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	filter := domain.ListFilter{
		StoreID: q.StoreID,
		Status:  q.Status,
		Limit:   limit,
		Offset:  offset,
	}
	return h.sales.List(ctx, q.OrganizationID, filter)
}
