package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SubtaskStatus string

const (
	SubtaskChecked   SubtaskStatus = "checked"
	SubtaskUnchecked SubtaskStatus = "unchecked"
)

func (s SubtaskStatus) Valid() bool {
	return s == SubtaskChecked || s == SubtaskUnchecked
}

type Subtask struct {
	ID       string        `gorm:"type:varchar(36);primarykey" json:"id"`
	TaskID   string        `gorm:"type:varchar(36);not null;index" json:"task_id"`
	Text     string        `gorm:"type:text;not null" json:"text"`
	Status   SubtaskStatus `gorm:"type:varchar(10);not null;default:'unchecked'" json:"status"`
	Position int           `gorm:"not null;default:0" json:"-"`
}

// BeforeCreate assigns a random UUID when none was set.
func (s *Subtask) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
