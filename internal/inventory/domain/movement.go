package domain

import (
	"context"
	"time"
)

// MovementType classifies a stock movement
type MovementType string

const (
	MovementIn         MovementType = "IN"
	MovementOut        MovementType = "OUT"
	MovementAdjustment MovementType = "ADJUSTMENT"
)

// Valid reports whether the type is one of the known movement types
func (t MovementType) Valid() bool {
	switch t {
	case MovementIn, MovementOut, MovementAdjustment:
		return true
	}
	return false
}

// StockMovement is one immutable entry of the append-only stock ledger.
// NewStock minus PreviousStock equals +Quantity for IN and -Quantity for OUT;
// ADJUSTMENT sets the stock level to Quantity directly. The most recent
// movement of a product always carries the product's current stock in
// NewStock.
type StockMovement struct {
	ID             uint         `json:"id" gorm:"primaryKey"`
	OrganizationID uint         `json:"organization_id" gorm:"not null;index"`
	ProductID      uint         `json:"product_id" gorm:"not null;index"`
	Type           MovementType `json:"type" gorm:"type:varchar(12);not null"`
	Quantity       int          `json:"quantity" gorm:"not null"`
	PreviousStock  int          `json:"previous_stock" gorm:"not null"`
	NewStock       int          `json:"new_stock" gorm:"not null"`
	Reason         string       `json:"reason"`
	Reference      string       `json:"reference,omitempty" gorm:"index"`
	UserID         uint         `json:"user_id" gorm:"not null"`
	CorrelationID  string       `json:"correlation_id" gorm:"size:36;index"`
	CreatedAt      time.Time    `json:"created_at"`
}

// TableName specifies the table name
func (StockMovement) TableName() string {
	return "stock_movements"
}

// MovementRepository defines the contract for ledger access. Movements are
// never updated; Delete exists solely for undoing the most recent movement
// of a product.
type MovementRepository interface {
	Create(ctx context.Context, movement *StockMovement) error
	FindByID(ctx context.Context, orgID, id uint) (*StockMovement, error)
	LatestForProduct(ctx context.Context, productID uint) (*StockMovement, error)
	FindByProduct(ctx context.Context, orgID, productID uint, limit, offset int) ([]StockMovement, error)
	Delete(ctx context.Context, id uint) error
}
