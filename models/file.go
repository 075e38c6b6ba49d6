package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FileType string

const (
	FileTypeLesson   FileType = "lesson"
	FileTypeExercise FileType = "exercise"
	FileTypeBook     FileType = "book"
	FileTypePractice FileType = "practice"
)

// Label trả về nhãn hiển thị cho người dùng.
func (t FileType) Label() string {
	switch t {
	case FileTypeLesson:
		return "Lesson"
	case FileTypeExercise:
		return "Exercise"
	case FileTypeBook:
		return "Book"
	case FileTypePractice:
		return "Practice"
	}
	return string(t)
}

func (t FileType) Valid() bool {
	switch t {
	case FileTypeLesson, FileTypeExercise, FileTypeBook, FileTypePractice:
		return true
	}
	return false
}

type FileLanguage string

const (
	FileLanguageEnglish    FileLanguage = "en"
	FileLanguageVietnamese FileLanguage = "vi"
)

func (l FileLanguage) Label() string {
	switch l {
	case FileLanguageEnglish:
		return "English"
	case FileLanguageVietnamese:
		return "Vietnamese"
	}
	return string(l)
}

func (l FileLanguage) Valid() bool {
	return l == FileLanguageEnglish || l == FileLanguageVietnamese
}

// File là tài liệu (PDF, docx, pptx, ...) thuộc về một Subcategory.
// Hẹp hơn CatalogBase: không có is_active, description, cover_image.
type File struct {
	ID            uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string       `gorm:"size:255;not null;unique" json:"name"`
	Slug          string       `gorm:"size:255;uniqueIndex" json:"slug"`
	SubcategoryID uuid.UUID    `gorm:"type:uuid;not null;index" json:"subcategory_id"`
	Subcategory   *Subcategory `gorm:"foreignKey:SubcategoryID" json:"subcategory,omitempty"`
	FileType      FileType     `gorm:"type:varchar(20);not null;default:'lesson'" json:"file_type"`
	FileLanguage  FileLanguage `gorm:"type:varchar(20);not null;default:'en'" json:"file_language"`
	UploadedFile  string       `gorm:"size:255;not null" json:"uploaded_file"` // public URL trên storage
	CreatedByID   uuid.UUID    `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt     time.Time    `gorm:"autoCreateTime" json:"created_at"`
	ModifiedByID  *uuid.UUID   `gorm:"type:uuid;default:null" json:"modified_by"`
	LastModified  *time.Time   `json:"last_modified"`
}

func (f *File) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
