package models

import "github.com/google/uuid"

// Subcategory (Môn học) là nhóm nhỏ thuộc về một Category.
type Subcategory struct {
	CatalogBase

	CategoryID uuid.UUID `gorm:"type:uuid;not null;index" json:"category_id"`
	Category   *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`

	Files []File `gorm:"foreignKey:SubcategoryID;constraint:OnDelete:RESTRICT" json:"files,omitempty"`
}
