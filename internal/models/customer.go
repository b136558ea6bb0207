package models

import "github.com/shopspring/decimal"

// Customer is a shop customer. TotalOrders and TotalSpent are cached aggregates
// derived from the orders table; they are written only by the statistics
// synchronizer and must never be edited directly.
type Customer struct {
	BaseModel
	Name         string          `json:"name"`
	Mobile       string          `gorm:"uniqueIndex" json:"mobile"`
	Email        string          `json:"email"`
	AddressLine1 string          `json:"address_line1"`
	AddressLine2 string          `json:"address_line2"`
	City         string          `json:"city"`
	State        string          `json:"state"`
	Pincode      string          `json:"pincode"`
	CustomerType string          `gorm:"default:regular" json:"customer_type"`
	IsActive     bool            `gorm:"default:true" json:"is_active"`
	TotalOrders  int             `json:"total_orders"`
	TotalSpent   decimal.Decimal `gorm:"type:decimal(14,2)" json:"total_spent"`
	Orders       []Order         `json:"orders,omitempty"`
}
