// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package auth

import (
	"strings"
	"testing"

	"codeberg.org/oliverandrich/school-auth/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func codes(r ValidationResult) []string {
	out := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		out = append(out, e.Code)
	}
	return out
}

func TestDefaultPasswordValidator(t *testing.T) {
	v := DefaultPasswordValidator()

	tests := []struct {
		name     string
		password string
		want     []string
	}{
		{"valid", "secret1", nil},
		{"exactly minimum", "abcdef", nil},
		{"too short", "abc", []string{"min_length"}},
		{"multibyte counts runes", "äöüäöü", nil},
		{"numeric allowed by default", "123456", nil},
		{"too many bytes", strings.Repeat("a", 73), []string{"max_bytes"}},
		{"72 bytes", strings.Repeat("a", 72), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := v.Validate(tt.password)
			assert.Equal(t, len(tt.want) == 0, result.Valid)
			if len(tt.want) > 0 {
				assert.Equal(t, tt.want, codes(result))
			}
		})
	}
}

func TestPasswordValidator_CustomMinLength(t *testing.T) {
	v := &PasswordValidator{MinLength: 10, MaxBytes: 72}

	result := v.Validate("secret1")
	assert.False(t, result.Valid)
	assert.Equal(t, []string{"min_length"}, codes(result))
	assert.Equal(t, "Password must be at least 10 characters long.", result.Errors[0].Message)

	assert.True(t, v.Validate("correct horse").Valid)
}

func TestPasswordValidator_NoByteLimit(t *testing.T) {
	v := &PasswordValidator{MinLength: 1}

	assert.True(t, v.Validate(strings.Repeat("a", 100)).Valid)
}

func TestValidationResult_Err(t *testing.T) {
	assert.NoError(t, ValidationResult{Valid: true}.Err("password"))

	err := DefaultPasswordValidator().Validate("abc").Err("password")
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.KindValidation, appErr.Kind)
	assert.Equal(t, []apperror.FieldError{
		{Field: "password", Message: "Password must be at least 6 characters long."},
	}, appErr.Fields)
}
