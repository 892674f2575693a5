package models

// File is the files table: a document attached to a product.
type File struct {
	Base
	Name      string `gorm:"not null" json:"name"`
	Path      string `gorm:"not null" json:"path"` // relative to the files root, e.g. "Drill/<uuid>.pdf"
	ProductID uint   `gorm:"index;not null" json:"product_id"`
}
