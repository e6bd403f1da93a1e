package database

import (
	"gorm.io/gorm"
)

// Paginate applies 1-based page/pageSize pagination to a GORM query. A
// non-positive value leaves the query unbounded.
func Paginate(page, pageSize int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if page <= 0 || pageSize <= 0 {
			return db
		}
		return db.Offset((page - 1) * pageSize).Limit(pageSize)
	}
}
