// Package seed loads the demo contacts and tasks.
package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/yukikurage/taskboard-api/internal/constants"
	"github.com/yukikurage/taskboard-api/internal/repository"
	"github.com/yukikurage/taskboard-api/internal/services"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

//go:embed demo.yaml
var demoData []byte

// Dataset is the seed file layout
type Dataset struct {
	Contacts []ContactSeed `yaml:"contacts"`
	Tasks    []TaskSeed    `yaml:"tasks"`
}

type ContactSeed struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
	Phone string `yaml:"phone"`
}

// TaskSeed describes a task. Dates are DaysAgo days before the seeding day
// and assignees are referenced by contact email.
type TaskSeed struct {
	Title       string        `yaml:"title"`
	Description string        `yaml:"description"`
	Category    string        `yaml:"category"`
	Priority    string        `yaml:"prio"`
	Status      string        `yaml:"status"`
	DaysAgo     int           `yaml:"days_ago"`
	Assigned    []string      `yaml:"assigned"`
	Subtasks    []SubtaskSeed `yaml:"subtasks"`
}

type SubtaskSeed struct {
	Text   string `yaml:"text"`
	Status string `yaml:"status"`
}

// Demo returns the embedded demo dataset
func Demo() (*Dataset, error) {
	return Parse(demoData)
}

// Parse decodes a YAML dataset
func Parse(data []byte) (*Dataset, error) {
	var ds Dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("failed to parse seed data: %w", err)
	}
	return &ds, nil
}

// Result counts what a run wrote
type Result struct {
	ContactsCreated int
	ContactsReused  int
	TasksCreated    int
}

// Seeder writes datasets through the services so initials, avatars and task
// validation apply as for API requests.
type Seeder struct {
	store    repository.Store
	contacts *services.ContactService
	tasks    *services.TaskService
	log      *zap.Logger
	now      func() time.Time
}

func New(store repository.Store, contacts *services.ContactService, tasks *services.TaskService, log *zap.Logger) *Seeder {
	return &Seeder{store: store, contacts: contacts, tasks: tasks, log: log, now: time.Now}
}

// Run seeds ds. Contacts are matched by email and reused; tasks are always
// created.
func (s *Seeder) Run(ctx context.Context, ds *Dataset) (Result, error) {
	var result Result
	ids := make(map[string]string, len(ds.Contacts))

	for _, c := range ds.Contacts {
		existing, err := s.store.Contacts().FindByEmail(ctx, c.Email)
		switch {
		case err == nil:
			ids[c.Email] = existing.ID
			result.ContactsReused++
			continue
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return result, fmt.Errorf("failed to look up contact %s: %w", c.Email, err)
		}

		name, email, phone := c.Name, c.Email, c.Phone
		created, err := s.contacts.CreateContact(ctx, services.ContactInput{
			Name:  &name,
			Email: &email,
			Phone: &phone,
		})
		if err != nil {
			return result, fmt.Errorf("failed to create contact %s: %w", c.Email, err)
		}
		ids[c.Email] = created.ID
		result.ContactsCreated++
	}

	today := s.now()
	for _, t := range ds.Tasks {
		input, err := taskInput(t, ids, today)
		if err != nil {
			return result, err
		}
		if _, err := s.tasks.CreateTask(ctx, input); err != nil {
			return result, fmt.Errorf("failed to create task %q: %w", t.Title, err)
		}
		result.TasksCreated++
	}

	s.log.Info("seed data loaded",
		zap.Int("contacts_created", result.ContactsCreated),
		zap.Int("contacts_reused", result.ContactsReused),
		zap.Int("tasks_created", result.TasksCreated),
	)
	return result, nil
}

func taskInput(t TaskSeed, ids map[string]string, today time.Time) (services.TaskInput, error) {
	date := today.AddDate(0, 0, -t.DaysAgo).Format(constants.DateLayout)
	title, description, category := t.Title, t.Description, t.Category

	input := services.TaskInput{
		Title:       &title,
		Description: &description,
		Category:    &category,
		Date:        &date,
	}
	if t.Priority != "" {
		input.Priority = &t.Priority
	}
	if t.Status != "" {
		input.Status = &t.Status
	}

	subtasks := make([]services.SubtaskInput, len(t.Subtasks))
	for i, sub := range t.Subtasks {
		subtasks[i] = services.SubtaskInput{Text: &sub.Text, Status: &sub.Status}
	}
	input.Subtasks = &subtasks

	refs := make([]services.ContactRef, 0, len(t.Assigned))
	for _, email := range t.Assigned {
		id, ok := ids[email]
		if !ok {
			return input, fmt.Errorf("task %q assigns unknown contact %s", t.Title, email)
		}
		refs = append(refs, services.ContactRef{ID: &id})
	}
	input.AssignedTo = &refs

	return input, nil
}
