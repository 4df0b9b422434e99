package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name       string
		password   string
		violations []string
	}{
		{name: "valid", password: "Secur3!pass"},
		{name: "too short", password: "Ab1!", violations: []string{"Password must be at least 8 characters long."}},
		{name: "no upper", password: "secur3!pass", violations: []string{"Password must contain at least one uppercase letter."}},
		{name: "no digit or special", password: "SecurePass", violations: []string{
			"Password must contain at least one number.",
			"Password must contain at least one special character.",
		}},
		{name: "empty reports everything", password: "", violations: []string{
			"Password must be at least 8 characters long.",
			"Password must contain at least one uppercase letter.",
			"Password must contain at least one lowercase letter.",
			"Password must contain at least one number.",
			"Password must contain at least one special character.",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.violations == nil {
				assert.NoError(t, err)
				return
			}
			var policyErr *PasswordPolicyError
			require.True(t, errors.As(err, &policyErr))
			assert.Equal(t, tt.violations, policyErr.Violations)
		})
	}
}
