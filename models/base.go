package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CatalogBase gom các field dùng chung của Category và Subcategory
// để tránh lặp lại code (embedded by value).
type CatalogBase struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string     `gorm:"size:255;not null;unique" json:"name"`
	Slug         string     `gorm:"size:255;uniqueIndex" json:"slug"` // slug cho URL thân thiện
	IsActive     bool       `gorm:"default:true;not null" json:"is_active"`
	Description  *string    `gorm:"type:text" json:"description"`
	CoverImage   *string    `gorm:"size:255" json:"cover_image"`
	CreatedByID  uuid.UUID  `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	ModifiedByID *uuid.UUID `gorm:"type:uuid;default:null" json:"modified_by"`
	LastModified *time.Time `json:"last_modified"` // chỉ set khi update, không dùng autoUpdateTime
}

// BeforeCreate sinh UUID trong app thay vì dựa vào default của Postgres,
// nhờ vậy schema chạy được trên cả sqlite khi test.
func (b *CatalogBase) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
