package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		first    string
		count    int
	}{
		{"valid", "Test@1234", "", 0},
		{"too short", "Te@1", "Password must be at least 8 characters long.", 1},
		{"no digit", "Testing@x", "Password must contain at least one digit.", 1},
		{"no letter", "12345678@", "Password must contain at least one letter.", 3},
		{"no uppercase or special", "password1", "Password must contain at least one uppercase letter.", 2},
		{"no lowercase", "TEST@1234", "Password must contain at least one lowercase letter.", 1},
		{"no special", "Test12345", "Password must contain at least one special character.", 1},
		{"empty", "", "Password must be at least 8 characters long.", 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			failures := ValidatePassword(tt.password)
			assert.Len(t, failures, tt.count)
			if tt.first != "" {
				assert.Equal(t, tt.first, failures[0])
			}
		})
	}
}
