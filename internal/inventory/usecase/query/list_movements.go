package query

import (
	"context"

	"github.com/quintaldo/pos-engine/internal/inventory/domain"
)

// ListMovementsQuery represents the query to list a product's movements
type ListMovementsQuery struct {
	OrganizationID uint
	ProductID      uint
	Limit          int
	Offset         int
}

// ListMovementsHandler handles list movements query
type ListMovementsHandler struct {
	movements domain.MovementRepository
}

// NewListMovementsHandler creates a new list movements handler
func NewListMovementsHandler(movements domain.MovementRepository) *ListMovementsHandler {
	return &ListMovementsHandler{movements: movements}
}

// Handle executes the list movements query
func (h *ListMovementsHandler) Handle(ctx context.Context, q ListMovementsQuery) ([]domain.StockMovement, error) {
	if q.Limit <= 0 {
		q.Limit = 20
	}
	if q.Limit > 100 {
		q.Limit = 100
	}

	return h.movements.FindByProduct(ctx, q.OrganizationID, q.ProductID, q.Limit, q.Offset)
}
