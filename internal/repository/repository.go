package repository

import (
	"context"
	"time"

	"github.com/yukikurage/taskboard-api/internal/models"
)

// Store groups the repositories bound to one database handle. Inside
// Transaction every repository shares the same transaction; nested calls run
// in a savepoint so a failed inner step can be rolled back on its own.
type Store interface {
	Users() UserRepository
	Tokens() TokenRepository
	Contacts() ContactRepository
	Tasks() TaskRepository

	// Transaction runs fn atomically with a Store bound to the transaction
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

// UserRepository defines the interface for account data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uint64) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(ctx context.Context, username string) (*models.User, error)

	// FindByUsernameForUpdate finds a user by username and locks the row
	// until the surrounding transaction ends
	FindByUsernameForUpdate(ctx context.Context, username string) (*models.User, error)

	// EmailTaken reports whether another user already uses email
	EmailTaken(ctx context.Context, email string, excludeID uint64) (bool, error)

	// Update saves all user columns
	Update(ctx context.Context, user *models.User) error

	// UpdateColumns writes the given columns without hooks or timestamps
	UpdateColumns(ctx context.Context, id uint64, values map[string]any) (int64, error)

	// Delete removes a user and its tokens
	Delete(ctx context.Context, id uint64) error
}

// TokenRepository defines the interface for API token data access
type TokenRepository interface {
	// GetOrCreate returns the user's token, creating it when missing
	GetOrCreate(ctx context.Context, userID uint64) (*models.Token, bool, error)

	// FindByKey finds a token by its key
	FindByKey(ctx context.Context, key string) (*models.Token, error)

	// DeleteByUserID removes the user's token
	DeleteByUserID(ctx context.Context, userID uint64) error
}

// ContactRepository defines the interface for contact data access
type ContactRepository interface {
	// Create creates a new contact
	Create(ctx context.Context, contact *models.Contact) error

	// FindByID finds a contact by ID
	FindByID(ctx context.Context, id string) (*models.Contact, error)

	// FindVisibleByID finds a contact by ID unless it is linked to one of the
	// excluded usernames
	FindVisibleByID(ctx context.Context, id string, excludeUsernames []string) (*models.Contact, error)

	// FindByEmail finds a contact by email, ignoring case
	FindByEmail(ctx context.Context, email string) (*models.Contact, error)

	// FindByUserID finds the contact linked to a user
	FindByUserID(ctx context.Context, userID uint64) (*models.Contact, error)

	// List retrieves contacts with filtering and pagination
	List(ctx context.Context, filter ContactFilter) ([]models.Contact, int64, error)

	// EmailTaken reports whether another contact already uses email
	EmailTaken(ctx context.Context, email string, excludeID string) (bool, error)

	// ExistingIDs returns the subset of ids that belong to existing contacts
	ExistingIDs(ctx context.Context, ids []string) ([]string, error)

	// Update writes the named fields of contact
	Update(ctx context.Context, contact *models.Contact, fields []string) error

	// UpdateColumns writes the given columns without hooks and returns the
	// number of affected rows
	UpdateColumns(ctx context.Context, id string, values map[string]any) (int64, error)

	// Delete removes a contact and its task assignments
	Delete(ctx context.Context, id string) error
}

// ContactFilter holds filtering options for listing contacts
type ContactFilter struct {
	ExcludeUsernames []string
	Page             int
	PageSize         int
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task row without touching its children
	Create(ctx context.Context, task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(ctx context.Context, id string, preload ...string) (*models.Task, error)

	// List retrieves tasks with pagination, newest date first
	List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error)

	// Update saves the task row without touching its children
	Update(ctx context.Context, task *models.Task) error

	// Delete removes a task with its subtasks and assignments
	Delete(ctx context.Context, id string) error

	// ListSubtasks returns the task's subtasks in position order
	ListSubtasks(ctx context.Context, taskID string) ([]models.Subtask, error)

	// CreateSubtask creates a subtask
	CreateSubtask(ctx context.Context, subtask *models.Subtask) error

	// UpdateSubtask saves a subtask
	UpdateSubtask(ctx context.Context, subtask *models.Subtask) error

	// DeleteSubtasks removes the given subtasks of a task
	DeleteSubtasks(ctx context.Context, taskID string, ids []string) error

	// ReplaceAssignments sets the task's assigned contacts to exactly contactIDs
	ReplaceAssignments(ctx context.Context, taskID string, contactIDs []string) error

	// Summary aggregates counts over all tasks
	Summary(ctx context.Context) (*TaskSummary, error)
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	Status   *models.TaskStatus
	Page     int
	PageSize int
}

// TaskSummary holds aggregate task counts
type TaskSummary struct {
	ByStatus     map[models.TaskStatus]int64
	Total        int64
	Urgent       int64
	EarliestDate *time.Time
}

// TaskDetailPreloads loads everything a task response needs
var TaskDetailPreloads = []string{"Subtasks", "Assignments", "Assignments.Contact"}
