package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product represents a catalog item scoped to one organization. CurrentStock
// is a cached projection of the stock movement ledger and is mutated only
// through the ledger, never directly.
type Product struct {
	ID             uint            `json:"id" gorm:"primaryKey"`
	OrganizationID uint            `json:"organization_id" gorm:"not null;index"`
	Name           string          `json:"name" gorm:"not null"`
	SKU            string          `json:"sku" gorm:"uniqueIndex"`
	SalePrice      decimal.Decimal `json:"sale_price" gorm:"type:decimal(20,4);not null"`
	CostPrice      decimal.Decimal `json:"cost_price" gorm:"type:decimal(20,4);not null"`
	CurrentStock   int             `json:"current_stock" gorm:"not null;default:0"`
	MinStock       int             `json:"min_stock" gorm:"not null;default:0"`
	IsActive       bool            `json:"is_active" gorm:"default:true"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	DeletedAt      gorm.DeletedAt  `json:"-" gorm:"index"`
}

// TableName specifies the table name
func (Product) TableName() string {
	return "products"
}

// IsSellable checks if the product can appear on a new sale line
func (p *Product) IsSellable() bool {
	return p.IsActive
}

// ProductRepository defines the contract for product data access. Soft
// deleted rows are filtered by every read.
type ProductRepository interface {
	FindByID(ctx context.Context, orgID, id uint) (*Product, error)
	// FindForUpdate reads the product row under a write lock so that the
	// stock value used for a decision cannot change before the dependent
	// write commits. Must be called inside a transaction scope.
	FindForUpdate(ctx context.Context, orgID, id uint) (*Product, error)
	FindAll(ctx context.Context, orgID uint, limit, offset int) ([]Product, error)
	// UpdateStock writes the denormalized stock projection. Only the stock
	// ledger may call this.
	UpdateStock(ctx context.Context, id uint, stock int) error
	LowStock(ctx context.Context, orgID uint) ([]Product, error)
}

// TxManager runs a function inside one atomic unit of work. All repository
// calls made with the context it passes to fn share that unit.
type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}
