package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SaleStatus is the lifecycle state of a sale
type SaleStatus string

const (
	StatusPending   SaleStatus = "PENDING"
	StatusPaid      SaleStatus = "PAID"
	StatusCancelled SaleStatus = "CANCELLED"
)

// PaymentTolerance absorbs rounding noise when comparing payment sums
// against the sale total.
var PaymentTolerance = decimal.NewFromFloat(0.01)

// Sale represents one commercial transaction against a store. Total always
// equals the sum of live item subtotals plus tax minus discount; CANCELLED
// is terminal.
type Sale struct {
	ID             uint            `json:"id" gorm:"primaryKey"`
	OrganizationID uint            `json:"organization_id" gorm:"not null;index"`
	StoreID        uint            `json:"store_id" gorm:"not null;index"`
	CustomerID     *uint           `json:"customer_id,omitempty" gorm:"index"`
	SaleNumber     string          `json:"sale_number" gorm:"uniqueIndex;not null"`
	Status         SaleStatus      `json:"status" gorm:"type:varchar(12);default:'PENDING'"`
	Subtotal       decimal.Decimal `json:"subtotal" gorm:"type:decimal(20,4);not null"`
	TaxTotal       decimal.Decimal `json:"tax_total" gorm:"type:decimal(20,4);not null"`
	DiscountTotal  decimal.Decimal `json:"discount_total" gorm:"type:decimal(20,4);not null"`
	Total          decimal.Decimal `json:"total" gorm:"type:decimal(20,4);not null"`
	Notes          string          `json:"notes"`
	DueDate        *time.Time      `json:"due_date,omitempty"`
	PaidDate       *time.Time      `json:"paid_date,omitempty"`
	UserID         uint            `json:"user_id" gorm:"not null"`
	Items          []SaleItem      `json:"items,omitempty" gorm:"foreignKey:SaleID"`
	Payments       []SalePayment   `json:"payments,omitempty" gorm:"foreignKey:SaleID"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	DeletedAt      gorm.DeletedAt  `json:"-" gorm:"index"`
}

// TableName specifies the table name
func (Sale) TableName() string {
	return "sales"
}

// IsCancelled reports whether the sale has reached its terminal state
func (s *Sale) IsCancelled() bool {
	return s.Status == StatusCancelled
}

// RecomputeTotals re-derives Subtotal and Total from the given live item
// set. Tax and discount are carried as pass-through terms.
func (s *Sale) RecomputeTotals(items []SaleItem) {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Subtotal)
	}
	s.Subtotal = subtotal
	s.Total = subtotal.Add(s.TaxTotal).Sub(s.DiscountTotal)
}

// CoveredBy reports whether the given payment sum settles the total within
// tolerance.
func (s *Sale) CoveredBy(paid decimal.Decimal) bool {
	return s.Total.Sub(paid).Abs().LessThanOrEqual(PaymentTolerance) || paid.GreaterThan(s.Total)
}

// SaleItem is one product line on a sale. Subtotal is always quantity times
// unit price.
type SaleItem struct {
	ID        uint            `json:"id" gorm:"primaryKey"`
	SaleID    uint            `json:"sale_id" gorm:"not null;index"`
	ProductID uint            `json:"product_id" gorm:"not null;index"`
	Quantity  int             `json:"quantity" gorm:"not null"`
	UnitPrice decimal.Decimal `json:"unit_price" gorm:"type:decimal(20,4);not null"`
	Subtotal  decimal.Decimal `json:"subtotal" gorm:"type:decimal(20,4);not null"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	DeletedAt gorm.DeletedAt  `json:"-" gorm:"index"`
}

// TableName specifies the table name
func (SaleItem) TableName() string {
	return "sale_items"
}

// ComputeSubtotal sets Subtotal from Quantity and UnitPrice
func (i *SaleItem) ComputeSubtotal() {
	i.Subtotal = i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// SalePayment is one payment applied to a sale
type SalePayment struct {
	ID              uint            `json:"id" gorm:"primaryKey"`
	SaleID          uint            `json:"sale_id" gorm:"not null;index"`
	PaymentMethodID uint            `json:"payment_method_id" gorm:"not null"`
	Amount          decimal.Decimal `json:"amount" gorm:"type:decimal(20,4);not null"`
	PaymentDate     time.Time       `json:"payment_date"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	DeletedAt       gorm.DeletedAt  `json:"-" gorm:"index"`
}

// TableName specifies the table name
func (SalePayment) TableName() string {
	return "sale_payments"
}

// SumPayments totals a live payment set
func SumPayments(payments []SalePayment) decimal.Decimal {
	sum := decimal.Zero
	for _, p := range payments {
		sum = sum.Add(p.Amount)
	}
	return sum
}

// ListFilter narrows sale listings
type ListFilter struct {
	StoreID uint
	Status  SaleStatus
	Limit   int
	Offset  int
}

// SaleRepository defines the contract for sale aggregate data access. Reads
// return only live (non soft-deleted) rows.
type SaleRepository interface {
	Create(ctx context.Context, sale *Sale) error
	FindByID(ctx context.Context, orgID, id uint) (*Sale, error)
	Update(ctx context.Context, sale *Sale) error
	List(ctx context.Context, orgID uint, filter ListFilter) ([]Sale, error)

	CreateItem(ctx context.Context, item *SaleItem) error
	FindItem(ctx context.Context, orgID, itemID uint) (*SaleItem, error)
	UpdateItem(ctx context.Context, item *SaleItem) error
	DeleteItem(ctx context.Context, itemID uint) error
	LiveItems(ctx context.Context, saleID uint) ([]SaleItem, error)

	CreatePayment(ctx context.Context, payment *SalePayment) error
	FindPayment(ctx context.Context, orgID, paymentID uint) (*SalePayment, error)
	DeletePayment(ctx context.Context, paymentID uint) error
	LivePayments(ctx context.Context, saleID uint) ([]SalePayment, error)
}

// TxManager runs a function inside one atomic unit of work
type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}
