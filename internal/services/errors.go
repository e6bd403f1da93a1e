package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrInvalidCredentials     = errors.New("unable to log in with provided credentials")
	ErrInvalidToken           = errors.New("invalid token")
	ErrUserNotFound           = errors.New("user not found")
	ErrContactNotFound        = errors.New("contact not found")
	ErrTaskNotFound           = errors.New("task not found")
	ErrFailedToHashPassword   = errors.New("failed to hash password")
	ErrAIServiceNotConfigured = errors.New("AI service is not configured")
	ErrAINoTasksGenerated     = errors.New("AI did not generate any tasks")
	ErrAINoValidTasks         = errors.New("no valid tasks could be created from AI output")
)

// NonFieldErrors is the ValidationError key for errors not tied to one field.
const NonFieldErrors = "non_field_errors"

// Validation messages shared by several services.
const (
	msgRequired      = "This field is required."
	msgBlank         = "This field may not be blank."
	msgInvalidEmail  = "Enter a valid email address."
	msgEmailExists   = "Email already exists."
	msgContactExists = "contact with this email already exists."
)

// ValidationError collects field level input errors. Nothing is written when
// a service returns one.
type ValidationError struct {
	Fields map[string][]string
}

// NewValidationError creates a ValidationError holding a single message.
func NewValidationError(field, message string) *ValidationError {
	v := &ValidationError{}
	v.Add(field, message)
	return v
}

// Add records message against field.
func (v *ValidationError) Add(field, message string) {
	if v.Fields == nil {
		v.Fields = make(map[string][]string)
	}
	v.Fields[field] = append(v.Fields[field], message)
}

// HasErrors reports whether any message was recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.Fields) > 0
}

// OrNil returns v as an error, or nil when it holds no messages.
func (v *ValidationError) OrNil() error {
	if !v.HasErrors() {
		return nil
	}
	return v
}

// Message returns the first message, preferring non-field errors and then
// fields in alphabetical order.
func (v *ValidationError) Message() string {
	if msgs := v.Fields[NonFieldErrors]; len(msgs) > 0 {
		return msgs[0]
	}
	for _, field := range v.sortedFields() {
		if msgs := v.Fields[field]; len(msgs) > 0 {
			return msgs[0]
		}
	}
	return "Invalid input."
}

func (v *ValidationError) Error() string {
	parts := make([]string, 0, len(v.Fields))
	for _, field := range v.sortedFields() {
		parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(v.Fields[field], " ")))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (v *ValidationError) sortedFields() []string {
	fields := make([]string, 0, len(v.Fields))
	for field := range v.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}
