package services

import (
	"strings"
	"unicode"

	"github.com/yukikurage/taskboard-api/internal/constants"
)

type passwordRule struct {
	message string
	ok      func(password string) bool
}

// passwordRules are checked in this order; the first failure is the one
// reported as the error message.
var passwordRules = []passwordRule{
	{
		message: "Password must be at least 8 characters long.",
		ok: func(p string) bool {
			return len([]rune(p)) >= constants.MinPasswordLength
		},
	},
	{
		message: "Password must contain at least one digit.",
		ok:      containsRune(unicode.IsDigit),
	},
	{
		message: "Password must contain at least one letter.",
		ok:      containsRune(unicode.IsLetter),
	},
	{
		message: "Password must contain at least one uppercase letter.",
		ok:      containsRune(unicode.IsUpper),
	},
	{
		message: "Password must contain at least one lowercase letter.",
		ok:      containsRune(unicode.IsLower),
	},
	{
		message: "Password must contain at least one special character.",
		ok: func(p string) bool {
			return strings.ContainsAny(p, constants.PasswordSpecialCharacters)
		},
	},
}

func containsRune(pred func(rune) bool) func(string) bool {
	return func(s string) bool {
		return strings.IndexFunc(s, pred) >= 0
	}
}

// ValidatePassword returns the message of every password rule that password
// violates, in rule order. It returns nil for an acceptable password.
func ValidatePassword(password string) []string {
	var failures []string
	for _, rule := range passwordRules {
		if !rule.ok(password) {
			failures = append(failures, rule.message)
		}
	}
	return failures
}
