package domain

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrStoreNotFound         = errors.New("store not found")
	ErrPaymentMethodNotFound = errors.New("payment method not found")
	ErrDuplicateStoreName    = errors.New("store name already exists")
)

// Store is one physical or virtual outlet of an organization. LastSaleNumber
// is a store-scoped monotonically increasing counter advanced atomically
// when a sale is created.
type Store struct {
	ID               uint           `json:"id" gorm:"primaryKey"`
	OrganizationID   uint           `json:"organization_id" gorm:"not null;uniqueIndex:idx_store_org_name,priority:1"`
	Name             string         `json:"name" gorm:"not null;uniqueIndex:idx_store_org_name,priority:2"`
	SaleNumberPrefix string         `json:"sale_number_prefix" gorm:"size:12;default:'S'"`
	LastSaleNumber   int64          `json:"last_sale_number" gorm:"not null;default:0"`
	ManagerPINHash   string         `json:"-"`
	IsActive         bool           `json:"is_active" gorm:"default:true"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName specifies the table name
func (Store) TableName() string {
	return "stores"
}

// PaymentMethod is an organization-scoped way to settle a sale
type PaymentMethod struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	OrganizationID uint           `json:"organization_id" gorm:"not null;index"`
	Name           string         `json:"name" gorm:"not null"`
	Code           string         `json:"code" gorm:"size:24"`
	IsActive       bool           `json:"is_active" gorm:"default:true"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName specifies the table name
func (PaymentMethod) TableName() string {
	return "payment_methods"
}

// StoreDirectory is the store lookup collaborator consumed by the sale
// engine.
type StoreDirectory interface {
	FindByID(ctx context.Context, orgID, id uint) (*Store, error)
	// ReserveSaleNumber atomically advances the store's counter and returns
	// the formatted sale number. Must be called inside the sale creation
	// transaction.
	ReserveSaleNumber(ctx context.Context, orgID, storeID uint) (string, error)
}

// PaymentMethods is the payment method lookup collaborator
type PaymentMethods interface {
	IsActive(ctx context.Context, orgID, id uint) (bool, error)
}
