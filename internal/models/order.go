package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order statuses. Transitions are intentionally unrestricted: the counter staff
// regularly re-open delivered orders to fix mistakes, so no transition table is
// enforced here.
const (
	OrderStatusPending    = "pending"
	OrderStatusInProgress = "in_progress"
	OrderStatusCompleted  = "completed"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// Order priorities.
const (
	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// Payment statuses, derived from total_amount vs advance_paid.
const (
	PaymentPending = "pending"
	PaymentPartial = "partial"
	PaymentPaid    = "paid"
)

// Order is a customer order together with its derived billing fields. The
// monetary columns are always written as one consistent set computed by the
// billing calculator; nothing mutates them piecemeal.
//
// RemainingAmount is stored signed: an overpaid order goes negative and the
// display layer clamps it to zero. Keeping the raw difference preserves the
// audit trail.
type Order struct {
	BaseModel
	OrderNumber        string          `gorm:"uniqueIndex" json:"order_number"`
	CustomerID         uint            `gorm:"index" json:"customer_id"`
	Customer           *Customer       `json:"customer,omitempty"`
	DueDate            *time.Time      `gorm:"type:date" json:"due_date"`
	DueTime            string          `json:"due_time"`
	PickupDate         *time.Time      `gorm:"type:date" json:"pickup_date"`
	DeliveryDate       *time.Time      `gorm:"type:date" json:"delivery_date"`
	Status             string          `gorm:"default:pending;index" json:"status"`
	Priority           string          `gorm:"default:normal" json:"priority"`
	TotalQuantity      int             `json:"total_quantity"`
	Subtotal           decimal.Decimal `gorm:"type:decimal(12,2)" json:"subtotal"`
	DiscountPercentage decimal.Decimal `gorm:"type:decimal(5,2)" json:"discount_percentage"`
	DiscountAmount     decimal.Decimal `gorm:"type:decimal(12,2)" json:"discount_amount"`
	TaxPercentage      decimal.Decimal `gorm:"type:decimal(5,2)" json:"tax_percentage"`
	TaxAmount          decimal.Decimal `gorm:"type:decimal(12,2)" json:"tax_amount"`
	TotalAmount        decimal.Decimal `gorm:"type:decimal(12,2)" json:"total_amount"`
	AdvancePaid        decimal.Decimal `gorm:"type:decimal(12,2)" json:"advance_paid"`
	RemainingAmount    decimal.Decimal `gorm:"type:decimal(12,2)" json:"remaining_amount"`
	PaymentStatus      string          `gorm:"default:pending" json:"payment_status"`
	Notes              string          `json:"notes"`
	CreatedBy          uint            `json:"created_by"`
	Items              []OrderItem     `json:"items,omitempty"`
}

// OrderItem is one service line on an order. ServiceName is a snapshot taken at
// write time: renaming a catalog service must not alter historical orders.
// Items are only ever replaced as a whole batch, never patched individually.
type OrderItem struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	OrderID     uint            `gorm:"index" json:"order_id"`
	ServiceID   uint            `json:"service_id"`
	ServiceName string          `json:"service_name"`
	Quantity    int             `json:"quantity"`
	Rate        decimal.Decimal `gorm:"type:decimal(12,2)" json:"rate"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2)" json:"amount"`
	Notes       string          `json:"notes"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Invoice references are only consulted as a delete precondition here; invoice
// generation lives elsewhere.
type Invoice struct {
	BaseModel
	InvoiceNumber string          `gorm:"uniqueIndex" json:"invoice_number"`
	OrderID       uint            `gorm:"index" json:"order_id"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2)" json:"amount"`
}
