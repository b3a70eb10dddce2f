package query

import (
	"context"

	"github.com/quintaldo/pos-engine/internal/inventory/domain"
)

// LowStockHandler lists products at or below their reorder threshold
type LowStockHandler struct {
	products domain.ProductRepository
}

// NewLowStockHandler creates a new low stock handler
func NewLowStockHandler(products domain.ProductRepository) *LowStockHandler {
	return &LowStockHandler{products: products}
}

// Handle executes the low stock query
func (h *LowStockHandler) Handle(ctx context.Context, orgID uint) ([]domain.Product, error) {
	return h.products.LowStock(ctx, orgID)
}
