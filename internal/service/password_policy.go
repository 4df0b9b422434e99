package service

import (
	"strings"
	"unicode"
)

const (
	minPasswordLength = 8
	passwordSpecials  = `!@#$%^&*(),.?":{}|<>`
)

// PasswordPolicyError lists every rule the password broke.
type PasswordPolicyError struct {
	Violations []string
}

func (e *PasswordPolicyError) Error() string {
	return strings.Join(e.Violations, " ")
}

func ValidatePassword(password string) error {
	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		}
	}

	var violations []string
	if len([]rune(password)) < minPasswordLength {
		violations = append(violations, "Password must be at least 8 characters long.")
	}
	if !upper {
		violations = append(violations, "Password must contain at least one uppercase letter.")
	}
	if !lower {
		violations = append(violations, "Password must contain at least one lowercase letter.")
	}
	if !digit {
		violations = append(violations, "Password must contain at least one number.")
	}
	if !special {
		violations = append(violations, "Password must contain at least one special character.")
	}
	if len(violations) > 0 {
		return &PasswordPolicyError{Violations: violations}
	}
	return nil
}
