package models

import (
	"strings"
	"time"

	"github.com/yukikurage/taskboard-api/internal/constants"
)

type User struct {
	ID           uint64    `gorm:"primarykey" json:"id"`
	Username     string    `gorm:"type:varchar(150);uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"type:varchar(254);index" json:"email"`
	FirstName    string    `gorm:"type:varchar(150)" json:"first_name"`
	LastName     string    `gorm:"type:varchar(150)" json:"last_name"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	IsActive     bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Relations
	Contact *Contact `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"-"`
	Tokens  []Token  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// FullName returns "first last" with surrounding whitespace removed.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// IsGuest reports whether u is the shared guest identity.
func (u User) IsGuest() bool {
	return u.Username == constants.GuestUsername
}
