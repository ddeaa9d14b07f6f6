package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Order is an immutable record converted from a cart. It is only ever
// mutated through status transitions; its lines are never edited and the
// row is never deleted. Cancellation is the terminal "undo" and restores
// the stock its lines consumed.
type Order struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID          uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	User            User            `gorm:"foreignKey:UserID" json:"user,omitempty"`
	OrderNumber     string          `gorm:"uniqueIndex;not null" json:"order_number"`
	Status          OrderStatus     `gorm:"default:pending" json:"status"`
	Total           decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total"`
	ShippingAddress string          `gorm:"type:text;not null" json:"shipping_address"`
	ContactPhone    string          `gorm:"size:20;not null" json:"contact_phone"`
	Notes           string          `gorm:"type:text" json:"notes"`
	PaidAt          *time.Time      `json:"paid_at,omitempty"`
	ShippedAt       *time.Time      `json:"shipped_at,omitempty"`
	DeliveredAt     *time.Time      `json:"delivered_at,omitempty"`
	Items           []OrderItem     `gorm:"foreignKey:OrderID" json:"items"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// OrderItem is one line of an order. UnitPrice is the price in effect at
// order creation and Subtotal is stored denormalized for audit, so history
// survives later price changes. The product reference is RESTRICT on
// delete: a product that appears on any order cannot be removed.
type OrderItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	Order     Order           `gorm:"foreignKey:OrderID" json:"-"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	Product   Product         `gorm:"foreignKey:ProductID;constraint:OnDelete:RESTRICT" json:"product"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	Subtotal  decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"subtotal"`
	CreatedAt time.Time       `json:"created_at"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.OrderNumber == "" {
		o.OrderNumber = "ORD" + time.Now().Format("20060102150405") + o.ID.String()[:8]
	}
	return nil
}

func (oi *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if oi.ID == uuid.Nil {
		oi.ID = uuid.New()
	}
	return nil
}

// Valid reports whether s is one of the known order statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// AllowedTransitions defines the valid order status state machine.
// Forward path: pending -> paid -> shipped -> delivered.
// Cancellation is reachable from pending and paid only; shipped and
// delivered orders can no longer be cancelled.
var AllowedTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusPaid, OrderStatusCancelled},
	OrderStatusPaid:      {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:   {OrderStatusDelivered},
	OrderStatusDelivered: {},
	OrderStatusCancelled: {},
}

// IsValidTransition checks if a status transition is allowed.
func IsValidTransition(from, to OrderStatus) bool {
	allowed, exists := AllowedTransitions[from]
	if !exists {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// IsCancellable reports whether the order can still be cancelled.
func (o *Order) IsCancellable() bool {
	return o.Status == OrderStatusPending || o.Status == OrderStatusPaid
}

// MarkStatus moves the order into the given status and stamps the matching
// timestamp. Timestamps are set exactly once: re-entering a status never
// re-stamps it.
func (o *Order) MarkStatus(status OrderStatus, now time.Time) {
	o.Status = status
	switch status {
	case OrderStatusPaid:
		if o.PaidAt == nil {
			o.PaidAt = &now
		}
	case OrderStatusShipped:
		if o.ShippedAt == nil {
			o.ShippedAt = &now
		}
	case OrderStatusDelivered:
		if o.DeliveredAt == nil {
			o.DeliveredAt = &now
		}
	}
}
