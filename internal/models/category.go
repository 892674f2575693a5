package models

// Category is the categories table.
type Category struct {
	Base
	Name        string  `gorm:"not null" json:"name"`
	Description *string `json:"description"`
}
