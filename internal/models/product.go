package models

// Product is the products table.
type Product struct {
	Base
	Name        string  `gorm:"not null" json:"name"`
	Description *string `json:"description"`
	Image       *string `json:"image"` // path relative to the images root, e.g. "<uuid>.png"
	IsActive    bool    `gorm:"not null" json:"is_active"`
	CategoryID  uint    `gorm:"index;not null" json:"category_id"`
}
