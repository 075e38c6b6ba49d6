package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProcessStatus string

const (
	ProcessNotStarted ProcessStatus = "not-started"
	ProcessInProgress ProcessStatus = "in-progress"
	ProcessCompleted  ProcessStatus = "completed"
)

func (s ProcessStatus) Valid() bool {
	return s == ProcessNotStarted || s == ProcessInProgress || s == ProcessCompleted
}

// Feedback là tin nhắn liên hệ do khách gửi (ẩn danh, không gắn với User).
// Sau khi gửi, khách không sửa được; admin chỉ được điền phản hồi và trạng thái.
type Feedback struct {
	ID             uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	FullName       string        `gorm:"size:200;not null" json:"full_name"`
	Email          string        `gorm:"size:150;not null" json:"email"`
	Phone          *string       `gorm:"size:20" json:"phone"`
	Message        string        `gorm:"type:text;not null" json:"message"`
	SentAt         time.Time     `gorm:"autoCreateTime" json:"sent_at"`
	ResponseFromUs *string       `gorm:"type:text" json:"response_from_us"`
	ProcessStatus  ProcessStatus `gorm:"type:varchar(15);not null;default:'not-started'" json:"process_status"`
}

func (f *Feedback) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
