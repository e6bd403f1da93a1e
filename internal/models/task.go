package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TaskCategory string

const (
	CategoryUserStory     TaskCategory = "User Story"
	CategoryTechnicalTask TaskCategory = "Technical Task"
)

func (c TaskCategory) Valid() bool {
	switch c {
	case CategoryUserStory, CategoryTechnicalTask:
		return true
	}
	return false
}

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityUrgent TaskPriority = "urgent"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityUrgent:
		return true
	}
	return false
}

// Display returns the human readable label of the priority.
func (p TaskPriority) Display() string {
	switch p {
	case PriorityLow:
		return "Low"
	case PriorityMedium:
		return "Medium"
	case PriorityUrgent:
		return "Urgent"
	}
	return string(p)
}

type TaskStatus string

const (
	TaskStatusToDo          TaskStatus = "toDo"
	TaskStatusInProgress    TaskStatus = "inProgress"
	TaskStatusAwaitFeedback TaskStatus = "awaitFeedback"
	TaskStatusDone          TaskStatus = "done"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusToDo, TaskStatusInProgress, TaskStatusAwaitFeedback, TaskStatusDone:
		return true
	}
	return false
}

// Display returns the human readable label of the status.
func (s TaskStatus) Display() string {
	switch s {
	case TaskStatusToDo:
		return "To Do"
	case TaskStatusInProgress:
		return "In Progress"
	case TaskStatusAwaitFeedback:
		return "Await Feedback"
	case TaskStatusDone:
		return "Done"
	}
	return string(s)
}

type Task struct {
	ID          string       `gorm:"type:varchar(36);primarykey" json:"id"`
	Title       string       `gorm:"type:varchar(255);not null" json:"title"`
	Description *string      `gorm:"type:text" json:"description"`
	Category    TaskCategory `gorm:"type:varchar(32);not null" json:"category"`
	Date        time.Time    `gorm:"type:date;not null" json:"date"`
	Priority    TaskPriority `gorm:"type:varchar(10);not null;default:'medium'" json:"prio"`
	Status      TaskStatus   `gorm:"type:varchar(20);not null;default:'toDo'" json:"status"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`

	// Relations
	Subtasks    []Subtask        `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"subtasks,omitempty"`
	Assignments []TaskAssignment `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"assignments,omitempty"`
}

// BeforeCreate assigns a random UUID when none was set.
func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
