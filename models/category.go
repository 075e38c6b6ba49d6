package models

// Category là nhóm lớn nhất của taxonomy (ví dụ: Khoa/Ngành).
// Không xóa được khi vẫn còn Subcategory tham chiếu tới (RESTRICT).
type Category struct {
	CatalogBase

	Subcategories []Subcategory `gorm:"foreignKey:CategoryID;constraint:OnDelete:RESTRICT" json:"subcategories,omitempty"`
}
