package models

import "time"

// Token is an opaque API key issued to a user; one per user.
type Token struct {
	Key       string    `gorm:"type:varchar(40);primarykey" json:"key"`
	UserID    uint64    `gorm:"uniqueIndex;not null" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
