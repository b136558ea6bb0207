package models

// User represents a staff account operating the shop.
type User struct {
	BaseModel
	Name         string `json:"name"`
	Email        string `gorm:"uniqueIndex" json:"email"`
	PasswordHash string `json:"-"`
	Role         string `gorm:"default:staff" json:"role"`
	IsActive     bool   `gorm:"default:true" json:"is_active"`
}
