package repository

import (
	"context"

	"github.com/yukikurage/taskboard-api/internal/database"
	"github.com/yukikurage/taskboard-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task row
func (r *GormTaskRepository) Create(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(task).Error
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(ctx context.Context, id string, preload ...string) (*models.Task, error) {
	var task models.Task
	query := withPreloads(r.db.WithContext(ctx), preload)

	if err := query.Where("id = ?", id).First(&task).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// withPreloads applies preloads, keeping child collections in position order
func withPreloads(query *gorm.DB, preload []string) *gorm.DB {
	for _, p := range preload {
		switch p {
		case "Subtasks":
			query = query.Preload(p, func(db *gorm.DB) *gorm.DB {
				return db.Order("subtasks.position ASC")
			})
		case "Assignments":
			query = query.Preload(p, func(db *gorm.DB) *gorm.DB {
				return db.Order("task_assignments.position ASC")
			})
		default:
			query = query.Preload(p)
		}
	}
	return query
}

// List retrieves tasks with filtering and pagination
func (r *GormTaskRepository) List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error) {
	var tasks []models.Task

	query := r.db.WithContext(ctx).Model(&models.Task{})

	if filter.Status != nil {
		query = query.Where("tasks.status = ?", *filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("tasks.date DESC").Order("tasks.created_at DESC").
		Scopes(database.Paginate(filter.Page, filter.PageSize))

	if err := withPreloads(listQuery, TaskDetailPreloads).Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// Update saves the task row
func (r *GormTaskRepository) Update(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(task).Error
}

// Delete removes a task and its children
func (r *GormTaskRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&models.TaskAssignment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", id).Delete(&models.Subtask{}).Error; err != nil {
			return err
		}

		result := tx.Where("id = ?", id).Delete(&models.Task{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// ListSubtasks returns a task's subtasks in position order
func (r *GormTaskRepository) ListSubtasks(ctx context.Context, taskID string) ([]models.Subtask, error) {
	var subtasks []models.Subtask
	if err := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("position ASC").
		Find(&subtasks).Error; err != nil {
		return nil, err
	}
	return subtasks, nil
}

// CreateSubtask creates a subtask
func (r *GormTaskRepository) CreateSubtask(ctx context.Context, subtask *models.Subtask) error {
	return r.db.WithContext(ctx).Create(subtask).Error
}

// UpdateSubtask saves a subtask
func (r *GormTaskRepository) UpdateSubtask(ctx context.Context, subtask *models.Subtask) error {
	return r.db.WithContext(ctx).Save(subtask).Error
}

// DeleteSubtasks removes the given subtasks of a task
func (r *GormTaskRepository) DeleteSubtasks(ctx context.Context, taskID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("task_id = ? AND id IN ?", taskID, ids).
		Delete(&models.Subtask{}).Error
}

// ReplaceAssignments clears the task's assignments and assigns contactIDs in
// order, ignoring duplicates
func (r *GormTaskRepository) ReplaceAssignments(ctx context.Context, taskID string, contactIDs []string) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("task_id = ?", taskID).Delete(&models.TaskAssignment{}).Error; err != nil {
		return err
	}

	seen := make(map[string]struct{}, len(contactIDs))
	assignments := make([]models.TaskAssignment, 0, len(contactIDs))
	for _, contactID := range contactIDs {
		if _, ok := seen[contactID]; ok {
			continue
		}
		seen[contactID] = struct{}{}
		assignments = append(assignments, models.TaskAssignment{
			TaskID:    taskID,
			ContactID: contactID,
			Position:  len(assignments),
		})
	}

	if len(assignments) == 0 {
		return nil
	}
	return db.Omit(clause.Associations).Create(&assignments).Error
}

// Summary aggregates status counts, urgent count and the earliest task date
func (r *GormTaskRepository) Summary(ctx context.Context) (*TaskSummary, error) {
	db := r.db.WithContext(ctx)

	var rows []struct {
		Status models.TaskStatus
		Count  int64
	}
	if err := db.Model(&models.Task{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	summary := &TaskSummary{ByStatus: make(map[models.TaskStatus]int64, len(rows))}
	for _, row := range rows {
		summary.ByStatus[row.Status] = row.Count
		summary.Total += row.Count
	}

	if err := db.Model(&models.Task{}).
		Where("priority = ?", models.PriorityUrgent).
		Count(&summary.Urgent).Error; err != nil {
		return nil, err
	}

	var earliest []models.Task
	if err := db.Select("date").Order("date ASC").Limit(1).Find(&earliest).Error; err != nil {
		return nil, err
	}
	if len(earliest) > 0 {
		date := earliest[0].Date
		summary.EarliestDate = &date
	}

	return summary, nil
}
