// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package auth

import (
	"fmt"
	"unicode/utf8"

	"codeberg.org/oliverandrich/school-auth/internal/apperror"
	"codeberg.org/oliverandrich/school-auth/internal/services/password"
)

// DefaultMinPasswordLength is the minimum password length in characters.
const DefaultMinPasswordLength = 6

// PasswordValidator enforces the length bounds of new passwords. MinLength
// counts characters, MaxBytes counts bytes since bcrypt ignores anything
// past 72 bytes.
type PasswordValidator struct {
	MinLength int
	MaxBytes  int
}

// DefaultPasswordValidator returns the policy used when none is configured.
func DefaultPasswordValidator() *PasswordValidator {
	return &PasswordValidator{
		MinLength: DefaultMinPasswordLength,
		MaxBytes:  password.MaxLength,
	}
}

// ValidationError is a single violated password rule.
type ValidationError struct {
	Code    string
	Message string
}

func (e ValidationError) Error() string {
	return e.Message
}

// ValidationResult collects the violated rules of one password.
type ValidationResult struct {
	Valid  bool
	Errors []ValidationError
}

// Err converts an invalid result into a validation error on field.
func (r ValidationResult) Err(field string) error {
	if r.Valid {
		return nil
	}
	fields := make([]apperror.FieldError, 0, len(r.Errors))
	for _, e := range r.Errors {
		fields = append(fields, apperror.FieldError{Field: field, Message: e.Message})
	}
	return apperror.Validation(fields...)
}

// Validate checks plaintext against the configured bounds.
func (v *PasswordValidator) Validate(plaintext string) ValidationResult {
	var violations []ValidationError

	if n := utf8.RuneCountInString(plaintext); n < v.MinLength {
		violations = append(violations, ValidationError{
			Code:    "min_length",
			Message: fmt.Sprintf("Password must be at least %d characters long.", v.MinLength),
		})
	}
	if v.MaxBytes > 0 && len(plaintext) > v.MaxBytes {
		violations = append(violations, ValidationError{
			Code:    "max_bytes",
			Message: fmt.Sprintf("Password must be at most %d bytes long.", v.MaxBytes),
		})
	}

	return ValidationResult{Valid: len(violations) == 0, Errors: violations}
}
