package models

import "github.com/shopspring/decimal"

// Category groups services on the price list.
type Category struct {
	BaseModel
	CatID       string    `gorm:"uniqueIndex" json:"catid"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`
	CreatedBy   *uint     `json:"created_by"`
	Services    []Service `json:"services,omitempty"`
}

// Service is a priced catalog entry (wash, dry clean, iron, ...). Rate tiers
// correspond to the customer types the shop bills at different prices.
type Service struct {
	BaseModel
	SNo         string          `gorm:"uniqueIndex" json:"sno"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	CategoryID  *uint           `gorm:"index" json:"category_id"`
	Category    *Category       `json:"category,omitempty"`
	Rate1       decimal.Decimal `gorm:"type:decimal(12,2)" json:"rate1"`
	Rate2       decimal.Decimal `gorm:"type:decimal(12,2)" json:"rate2"`
	Rate3       decimal.Decimal `gorm:"type:decimal(12,2)" json:"rate3"`
	Rate4       decimal.Decimal `gorm:"type:decimal(12,2)" json:"rate4"`
	Rate5       decimal.Decimal `gorm:"type:decimal(12,2)" json:"rate5"`
	ServiceType string          `gorm:"default:laundry" json:"service_type"`
	IsActive    bool            `gorm:"default:true" json:"is_active"`
}
