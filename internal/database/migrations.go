package database

import (
	"fmt"

	"github.com/yukikurage/taskboard-api/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AddIndexes adds the lookup indexes that are not declared on the models
func AddIndexes(db *gorm.DB, log *zap.Logger) error {
	indexes := []struct {
		model   any
		name    string
		columns string
	}{
		// Task list ordering and summary filters
		{&models.Task{}, "idx_tasks_date", "date"},
		{&models.Task{}, "idx_tasks_status", "status"},
		{&models.Task{}, "idx_tasks_priority", "priority"},

		// Subtask ordering within a task
		{&models.Subtask{}, "idx_subtasks_task_position", "task_id, position"},

		// Reverse lookup of assignments when a contact is deleted
		{&models.TaskAssignment{}, "idx_task_assignments_contact_id", "contact_id"},

		// Contact list ordering
		{&models.Contact{}, "idx_contacts_name", "name"},
	}

	migrator := db.Migrator()
	for _, idx := range indexes {
		if migrator.HasIndex(idx.model, idx.name) {
			log.Debug("index already exists, skipping", zap.String("index", idx.name))
			continue
		}

		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(idx.model); err != nil {
			return fmt.Errorf("failed to parse model for index %s: %w", idx.name, err)
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, stmt.Schema.Table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Info("created index", zap.String("index", idx.name), zap.String("table", stmt.Schema.Table))
	}

	return nil
}
