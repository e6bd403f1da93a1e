package services

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Column widths of the string fields clients write.
const (
	maxNameLength       = 255
	maxEmailLength      = 254
	maxPhoneLength      = 30
	maxInitialsLength   = 3
	maxTitleLength      = 255
	maxPersonNameLength = 150
	maxUsernameLength   = 150
)

// checkLength records a field error when value has more than limit
// characters. It reports whether value fits.
func checkLength(verr *ValidationError, field, value string, limit int) bool {
	if utf8.RuneCountInString(value) <= limit {
		return true
	}
	verr.Add(field, fmt.Sprintf("Ensure this field has no more than %d characters.", limit))
	return false
}

// validEmail reports whether email is a syntactically valid address.
func validEmail(email string) bool {
	return validate.Var(email, "required,email") == nil
}

// normalizeEmail trims surrounding whitespace.
func normalizeEmail(email string) string {
	return strings.TrimSpace(email)
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func ptr[T any](v T) *T {
	return &v
}
