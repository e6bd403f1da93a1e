package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/taskboard-api/internal/constants"
	"github.com/yukikurage/taskboard-api/internal/models"
	"github.com/yukikurage/taskboard-api/internal/repository"
	"github.com/yukikurage/taskboard-api/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TaskService handles task business logic
type TaskService struct {
	store     repository.Store
	generator TaskDraftGenerator
	log       *zap.Logger
	now       func() time.Time
}

// NewTaskService creates a new TaskService. generator may be nil when AI
// drafting is not configured.
func NewTaskService(store repository.Store, generator TaskDraftGenerator, log *zap.Logger) *TaskService {
	return &TaskService{
		store:     store,
		generator: generator,
		log:       log,
		now:       time.Now,
	}
}

// SubtaskInput describes a desired subtask. Entries without an ID are created.
type SubtaskInput struct {
	ID     *string
	Text   *string
	Status *string
}

// ContactRef references an existing contact by ID.
type ContactRef struct {
	ID *string
}

// TaskInput represents the writable task attributes. Nil fields are absent
// from the request. Absent collections are treated as empty by full writes
// and left untouched by partial ones.
type TaskInput struct {
	Title       *string
	Description *string
	Category    *string
	Date        *string
	Priority    *string
	Status      *string
	Subtasks    *[]SubtaskInput
	AssignedTo  *[]ContactRef
}

type writeMode int

const (
	modeCreate writeMode = iota
	modeReplace
	modePatch
)

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	Status   *models.TaskStatus
	Page     int
	PageSize int
}

// ListTasks returns tasks with their subtasks and assignees, latest date first
func (s *TaskService) ListTasks(ctx context.Context, input ListTasksInput) ([]models.Task, int64, error) {
	tasks, total, err := s.store.Tasks().List(ctx, repository.TaskFilter{
		Status:   input.Status,
		Page:     input.Page,
		PageSize: input.PageSize,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, total, nil
}

// GetTask returns a task with related data
func (s *TaskService) GetTask(ctx context.Context, id string) (*models.Task, error) {
	return s.findTask(ctx, s.store, id, repository.TaskDetailPreloads...)
}

// CreateTask creates a task together with its subtasks and assignees
func (s *TaskService) CreateTask(ctx context.Context, input TaskInput) (*models.Task, error) {
	return s.save(ctx, "", input, modeCreate)
}

// ReplaceTask overwrites a task. Absent subtasks and assignees are cleared.
func (s *TaskService) ReplaceTask(ctx context.Context, id string, input TaskInput) (*models.Task, error) {
	return s.save(ctx, id, input, modeReplace)
}

// PatchTask updates the fields present in input
func (s *TaskService) PatchTask(ctx context.Context, id string, input TaskInput) (*models.Task, error) {
	return s.save(ctx, id, input, modePatch)
}

// DeleteTask deletes a task with its subtasks and assignments
func (s *TaskService) DeleteTask(ctx context.Context, id string) error {
	if err := s.store.Tasks().Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// save runs validation and reconciliation in a single transaction. Nothing is
// written when validation fails.
func (s *TaskService) save(ctx context.Context, id string, input TaskInput, mode writeMode) (*models.Task, error) {
	var saved *models.Task
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		task := &models.Task{}
		var existing []models.Subtask
		if mode != modeCreate {
			found, err := s.findTask(ctx, tx, id)
			if err != nil {
				return err
			}
			task = found

			existing, err = tx.Tasks().ListSubtasks(ctx, task.ID)
			if err != nil {
				return fmt.Errorf("failed to load subtasks: %w", err)
			}
		}

		scalars, err := s.validate(ctx, tx, input, mode, existing)
		if err != nil {
			return err
		}

		scalars.applyTo(task)

		if mode == modeCreate {
			if err := tx.Tasks().Create(ctx, task); err != nil {
				return fmt.Errorf("failed to create task: %w", err)
			}
		}

		if input.Subtasks != nil || mode != modePatch {
			if err := reconcileSubtasks(ctx, tx, task.ID, existing, derefSlice(input.Subtasks)); err != nil {
				return err
			}
		}

		if input.AssignedTo != nil || mode != modePatch {
			ids := make([]string, 0)
			for _, ref := range derefSlice(input.AssignedTo) {
				ids = append(ids, *ref.ID)
			}
			if err := tx.Tasks().ReplaceAssignments(ctx, task.ID, ids); err != nil {
				return fmt.Errorf("failed to assign contacts: %w", err)
			}
		}

		// The task row is written after its children.
		if err := tx.Tasks().Update(ctx, task); err != nil {
			return fmt.Errorf("failed to save task: %w", err)
		}

		saved, err = s.findTask(ctx, tx, task.ID, repository.TaskDetailPreloads...)
		return err
	})
	if err != nil {
		return nil, err
	}

	return saved, nil
}

// taskScalars holds validated scalar values; nil means unchanged.
type taskScalars struct {
	title       *string
	description **string
	category    *models.TaskCategory
	date        *time.Time
	priority    *models.TaskPriority
	status      *models.TaskStatus
}

func (v taskScalars) applyTo(task *models.Task) {
	if v.title != nil {
		task.Title = *v.title
	}
	if v.description != nil {
		task.Description = *v.description
	}
	if v.category != nil {
		task.Category = *v.category
	}
	if v.date != nil {
		task.Date = *v.date
	}
	if v.priority != nil {
		task.Priority = *v.priority
	}
	if v.status != nil {
		task.Status = *v.status
	}
}

func (s *TaskService) validate(ctx context.Context, tx repository.Store, input TaskInput, mode writeMode, existing []models.Subtask) (taskScalars, error) {
	verr := &ValidationError{}
	full := mode != modePatch
	var out taskScalars

	if input.Title != nil {
		title := utils.StripTags(*input.Title)
		if title == "" {
			verr.Add("title", msgBlank)
		} else {
			checkLength(verr, "title", title, maxTitleLength)
		}
		out.title = &title
	} else if full {
		verr.Add("title", msgRequired)
	}

	if input.Description != nil {
		description := utils.StripTags(*input.Description)
		var value *string
		if description != "" {
			value = &description
		}
		out.description = &value
	}

	if input.Category != nil {
		category := models.TaskCategory(*input.Category)
		if !category.Valid() {
			verr.Add("category", invalidChoice(*input.Category))
		}
		out.category = &category
	} else if full {
		verr.Add("category", msgRequired)
	}

	if input.Date != nil {
		date, err := time.Parse(constants.DateLayout, strings.TrimSpace(*input.Date))
		if err != nil {
			verr.Add("date", "Date has wrong format. Use one of these formats instead: YYYY-MM-DD.")
		}
		out.date = &date
	} else if full {
		verr.Add("date", msgRequired)
	}

	if input.Priority != nil {
		priority := models.TaskPriority(*input.Priority)
		if !priority.Valid() {
			verr.Add("prio", invalidChoice(*input.Priority))
		}
		out.priority = &priority
	} else if mode == modeCreate {
		out.priority = ptr(models.PriorityMedium)
	}

	if input.Status != nil {
		status := models.TaskStatus(*input.Status)
		if !status.Valid() {
			verr.Add("status", invalidChoice(*input.Status))
		}
		out.status = &status
	} else if mode == modeCreate {
		out.status = ptr(models.TaskStatusToDo)
	}

	if input.Subtasks != nil {
		validateSubtasks(*input.Subtasks, existing, verr)
	}

	if input.AssignedTo != nil {
		if err := validateAssignees(ctx, tx, *input.AssignedTo, verr); err != nil {
			return out, err
		}
	}

	return out, verr.OrNil()
}

func validateSubtasks(subtasks []SubtaskInput, existing []models.Subtask, verr *ValidationError) {
	owned := make(map[string]struct{}, len(existing))
	for _, sub := range existing {
		owned[sub.ID] = struct{}{}
	}

	seen := make(map[string]struct{}, len(subtasks))
	for i, sub := range subtasks {
		prefix := fmt.Sprintf("subtasks[%d]", i)

		if sub.Text == nil {
			verr.Add(prefix+".text", msgRequired)
		} else if utils.StripTags(*sub.Text) == "" {
			verr.Add(prefix+".text", msgBlank)
		}

		if sub.Status != nil && !models.SubtaskStatus(*sub.Status).Valid() {
			verr.Add(prefix+".status", invalidChoice(*sub.Status))
		}

		if sub.ID != nil && *sub.ID != "" {
			if _, ok := owned[*sub.ID]; !ok {
				verr.Add(prefix+".id", fmt.Sprintf("Subtask with id %s does not belong to this task.", *sub.ID))
			}
			if _, dup := seen[*sub.ID]; dup {
				verr.Add(prefix+".id", "Duplicate subtask id.")
			}
			seen[*sub.ID] = struct{}{}
		}
	}
}

func validateAssignees(ctx context.Context, tx repository.Store, refs []ContactRef, verr *ValidationError) error {
	ids := make([]string, 0, len(refs))
	for i, ref := range refs {
		if ref.ID == nil || strings.TrimSpace(*ref.ID) == "" {
			verr.Add(fmt.Sprintf("assigned_to[%d].id", i), "Each contact must include an 'id' field.")
			continue
		}
		ids = append(ids, *ref.ID)
	}
	if len(ids) == 0 {
		return nil
	}

	found, err := tx.Contacts().ExistingIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to verify contacts: %w", err)
	}
	exists := make(map[string]struct{}, len(found))
	for _, id := range found {
		exists[id] = struct{}{}
	}

	for i, ref := range refs {
		if ref.ID == nil || strings.TrimSpace(*ref.ID) == "" {
			continue
		}
		if _, ok := exists[*ref.ID]; !ok {
			verr.Add(fmt.Sprintf("assigned_to[%d].id", i), fmt.Sprintf("Contact with id %s does not exist.", *ref.ID))
		}
	}
	return nil
}

// reconcileSubtasks updates listed subtasks, creates new ones and deletes the
// rest, keeping the order of desired.
func reconcileSubtasks(ctx context.Context, tx repository.Store, taskID string, existing []models.Subtask, desired []SubtaskInput) error {
	byID := make(map[string]models.Subtask, len(existing))
	for _, sub := range existing {
		byID[sub.ID] = sub
	}

	keep := make(map[string]struct{}, len(desired))
	for i, in := range desired {
		status := models.SubtaskUnchecked
		if in.Status != nil {
			status = models.SubtaskStatus(*in.Status)
		}
		text := utils.StripTags(stringOrEmpty(in.Text))

		if in.ID != nil && *in.ID != "" {
			sub := byID[*in.ID]
			sub.Text = text
			if in.Status != nil {
				sub.Status = status
			}
			sub.Position = i
			if err := tx.Tasks().UpdateSubtask(ctx, &sub); err != nil {
				return fmt.Errorf("failed to update subtask: %w", err)
			}
			keep[sub.ID] = struct{}{}
			continue
		}

		sub := &models.Subtask{TaskID: taskID, Text: text, Status: status, Position: i}
		if err := tx.Tasks().CreateSubtask(ctx, sub); err != nil {
			return fmt.Errorf("failed to create subtask: %w", err)
		}
		keep[sub.ID] = struct{}{}
	}

	var stale []string
	for _, sub := range existing {
		if _, ok := keep[sub.ID]; !ok {
			stale = append(stale, sub.ID)
		}
	}
	if err := tx.Tasks().DeleteSubtasks(ctx, taskID, stale); err != nil {
		return fmt.Errorf("failed to delete subtasks: %w", err)
	}
	return nil
}

// TaskSummary holds board statistics
type TaskSummary struct {
	ToDo          int64
	InProgress    int64
	AwaitFeedback int64
	Done          int64
	Total         int64
	Urgent        int64
	// NextUrgentDue is the earliest date across all tasks, whatever their
	// priority.
	NextUrgentDue *time.Time
}

// Summary aggregates task counts over the whole board
func (s *TaskService) Summary(ctx context.Context) (*TaskSummary, error) {
	agg, err := s.store.Tasks().Summary(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize tasks: %w", err)
	}

	return &TaskSummary{
		ToDo:          agg.ByStatus[models.TaskStatusToDo],
		InProgress:    agg.ByStatus[models.TaskStatusInProgress],
		AwaitFeedback: agg.ByStatus[models.TaskStatusAwaitFeedback],
		Done:          agg.ByStatus[models.TaskStatusDone],
		Total:         agg.Total,
		Urgent:        agg.Urgent,
		NextUrgentDue: agg.EarliestDate,
	}, nil
}

// GenerateDrafts uses AI to turn free text into task drafts. Drafts are not
// saved.
func (s *TaskService) GenerateDrafts(ctx context.Context, text string) ([]TaskDraft, error) {
	if s.generator == nil {
		return nil, ErrAIServiceNotConfigured
	}

	drafts, err := s.generator.GenerateTaskDrafts(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tasks: %w", err)
	}

	if len(drafts) == 0 {
		return nil, ErrAINoTasksGenerated
	}
	if len(drafts) > constants.MaxAIGeneratedTasks {
		return nil, fmt.Errorf("AI generated too many tasks (max %d)", constants.MaxAIGeneratedTasks)
	}

	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	valid := make([]TaskDraft, 0, len(drafts))
	for _, draft := range drafts {
		draft.Title = utils.StripTags(draft.Title)
		if draft.Title == "" {
			continue
		}
		draft.Description = utils.StripTags(draft.Description)

		if !models.TaskCategory(draft.Category).Valid() {
			draft.Category = string(models.CategoryTechnicalTask)
		}
		if !models.TaskPriority(draft.Priority).Valid() {
			draft.Priority = string(models.PriorityMedium)
		}

		if draft.Date != "" {
			date, err := time.Parse(constants.DateLayout, draft.Date)
			if err != nil || date.Before(today) {
				draft.Date = ""
			}
		}

		subtasks := make([]string, 0, len(draft.Subtasks))
		for _, sub := range draft.Subtasks {
			if sub = utils.StripTags(sub); sub != "" {
				subtasks = append(subtasks, sub)
			}
		}
		draft.Subtasks = subtasks

		valid = append(valid, draft)
	}

	if len(valid) == 0 {
		return nil, ErrAINoValidTasks
	}

	return valid, nil
}

func (s *TaskService) findTask(ctx context.Context, store repository.Store, id string, preload ...string) (*models.Task, error) {
	task, err := store.Tasks().FindByID(ctx, id, preload...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

func invalidChoice(value string) string {
	return fmt.Sprintf("%q is not a valid choice.", value)
}

func derefSlice[T any](s *[]T) []T {
	if s == nil {
		return nil
	}
	return *s
}
