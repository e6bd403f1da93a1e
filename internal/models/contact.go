package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Contact columns, used to describe which fields a save touched.
const (
	ContactFieldName     = "name"
	ContactFieldEmail    = "email"
	ContactFieldPhone    = "phone"
	ContactFieldInitials = "initials"
	ContactFieldAvatar   = "avatar"

	ContactFieldUserID          = "user_id"
	ContactFieldIsAccountLinked = "is_account_linked"
)

type Contact struct {
	ID              string    `gorm:"type:varchar(36);primarykey" json:"id"`
	Name            string    `gorm:"type:varchar(255);not null" json:"name"`
	Email           string    `gorm:"type:varchar(254);uniqueIndex;not null" json:"email"`
	Phone           *string   `gorm:"type:varchar(30)" json:"phone"`
	Initials        *string   `gorm:"type:varchar(3)" json:"initials"`
	Avatar          *string   `gorm:"type:text" json:"avatar"`
	IsAccountLinked bool      `gorm:"not null;default:false" json:"is_account_linked"`
	UserID          *uint64   `gorm:"uniqueIndex" json:"-"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// BeforeCreate assigns a random UUID when none was set.
func (c *Contact) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// StringValue dereferences an optional column, returning "" for nil.
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
