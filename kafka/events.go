package kafka

import "time"

// SaleCreatedEvent is published after a sale creation transaction commits
type SaleCreatedEvent struct {
	EventID        string    `json:"event_id"`
	EventType      string    `json:"event_type"`
	SaleID         uint      `json:"sale_id"`
	SaleNumber     string    `json:"sale_number"`
	OrganizationID uint      `json:"organization_id"`
	StoreID        uint      `json:"store_id"`
	Status         string    `json:"status"`
	Total          string    `json:"total"`
	ItemCount      int       `json:"item_count"`
	UserID         uint      `json:"user_id"`
	Timestamp      time.Time `json:"timestamp"`
}

// SaleCancelledEvent is published after a cancellation commits
type SaleCancelledEvent struct {
	EventID        string    `json:"event_id"`
	EventType      string    `json:"event_type"`
	SaleID         uint      `json:"sale_id"`
	SaleNumber     string    `json:"sale_number"`
	OrganizationID uint      `json:"organization_id"`
	Reason         string    `json:"reason,omitempty"`
	UserID         uint      `json:"user_id"`
	Timestamp      time.Time `json:"timestamp"`
}

// StockMovementEvent is published for every committed ledger entry
type StockMovementEvent struct {
	EventID        string    `json:"event_id"`
	EventType      string    `json:"event_type"`
	MovementID     uint      `json:"movement_id"`
	OrganizationID uint      `json:"organization_id"`
	ProductID      uint      `json:"product_id"`
	Type           string    `json:"type"`
	Quantity       int       `json:"quantity"`
	PreviousStock  int       `json:"previous_stock"`
	NewStock       int       `json:"new_stock"`
	Reference      string    `json:"reference,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

// Event types
const (
	EventTypeSaleCreated   = "sale.created"
	EventTypeSaleCancelled = "sale.cancelled"
	EventTypeStockMovement = "stock.movement"
)

// Kafka topics
const (
	TopicSaleCreated    = "sale-created"
	TopicSaleCancelled  = "sale-cancelled"
	TopicStockMovements = "stock-movements"
)
