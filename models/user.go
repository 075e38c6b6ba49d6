package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserGender string

const (
	GenderMale   UserGender = "male"
	GenderFemale UserGender = "female"
	GenderOther  UserGender = "other"
)

func (g UserGender) Label() string {
	switch g {
	case GenderMale:
		return "Male"
	case GenderFemale:
		return "Female"
	case GenderOther:
		return "Other"
	}
	return string(g)
}

func (g UserGender) Valid() bool {
	return g == GenderMale || g == GenderFemale || g == GenderOther
}

type User struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Username    string     `gorm:"size:150;uniqueIndex;not null" json:"username"`
	Email       string     `gorm:"size:150;uniqueIndex;not null" json:"email"`
	Password    string     `gorm:"type:text;not null" json:"-"`
	IsActive    bool       `gorm:"default:true;not null" json:"is_active"`
	IsStaff     bool       `gorm:"default:false;not null" json:"is_staff"`
	IsSuperuser bool       `gorm:"default:false;not null" json:"is_superuser"`
	LastLogin   *time.Time `json:"last_login"`
	DateJoined  time.Time  `gorm:"autoCreateTime" json:"date_joined"`

	// Mỗi User luôn có đúng một Profile, tạo cùng transaction khi đăng ký.
	Profile *Profile `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"profile,omitempty"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// FullName trả về tên hiển thị, fallback về username khi profile trống.
func (u *User) FullName() string {
	if u.Profile != nil && u.Profile.FullName != "" {
		return u.Profile.FullName
	}
	return u.Username
}

// Profile chứa thông tin cá nhân của một User.
type Profile struct {
	UserID    uuid.UUID  `gorm:"type:uuid;primaryKey" json:"user_id"`
	FullName  string     `gorm:"size:255" json:"full_name"`
	Birthdate *time.Time `json:"birthdate"`
	Gender    UserGender `gorm:"type:varchar(8);not null;default:'male'" json:"gender"`
	Avatar    *string    `gorm:"size:150" json:"avatar"` // public URL trên storage
}
