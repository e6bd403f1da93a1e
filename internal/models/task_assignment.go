package models

import "time"

// TaskAssignment links a task to an assigned contact.
type TaskAssignment struct {
	TaskID    string    `gorm:"type:varchar(36);primarykey" json:"task_id"`
	ContactID string    `gorm:"type:varchar(36);primarykey" json:"contact_id"`
	Position  int       `gorm:"not null;default:0" json:"-"`
	CreatedAt time.Time `json:"created_at"`

	// Relations
	Contact Contact `gorm:"foreignKey:ContactID" json:"contact,omitempty"`
}
