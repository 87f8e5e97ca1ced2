package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelErrors_AreDistinct(t *testing.T) {
	sentinels := []error{
		ErrValidation,
		ErrFormat,
		ErrPersistence,
		ErrUnavailable,
	}

	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j {
				assert.NotErrorIs(t, a, b,
					"sentinels should be distinct: %v vs %v", a, b)
			}
		}
	}
}

func TestValidationError(t *testing.T) {
	tests := []struct {
		name        string
		field       string
		message     string
		expectedMsg string
	}{
		{
			name:        "with field",
			field:       "text",
			message:     "must not be empty",
			expectedMsg: "validation failed for text: must not be empty",
		},
		{
			name:        "without field",
			field:       "",
			message:     "general validation error",
			expectedMsg: "validation failed: general validation error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewValidationError(tt.field, tt.message)

			assert.Equal(t, tt.expectedMsg, err.Error())
			require.ErrorIs(t, err, ErrValidation)

			var validation *ValidationError
			require.ErrorAs(t, err, &validation)
			assert.Equal(t, tt.field, validation.Field)
			assert.Equal(t, tt.message, validation.Message)
		})
	}
}

func TestFormatError(t *testing.T) {
	cause := errors.New("unexpected token")

	tests := []struct {
		name        string
		reason      string
		cause       error
		expectedMsg string
	}{
		{
			name:        "with cause",
			reason:      "not valid JSON",
			cause:       cause,
			expectedMsg: "invalid document format: not valid JSON: unexpected token",
		},
		{
			name:        "without cause",
			reason:      "top-level value must be an array",
			expectedMsg: "invalid document format: top-level value must be an array",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewFormatError(tt.reason, tt.cause)

			assert.Equal(t, tt.expectedMsg, err.Error())
			require.ErrorIs(t, err, ErrFormat)

			if tt.cause != nil {
				require.ErrorIs(t, err, tt.cause)
			}

			var formatErr *FormatError
			require.ErrorAs(t, err, &formatErr)
			assert.Equal(t, tt.reason, formatErr.Reason)
		})
	}
}

func TestPersistenceError(t *testing.T) {
	cause := errors.New("disk full")
	err := NewPersistenceError("set", "quotes", cause)

	assert.Equal(t, `persistence set "quotes" failed: disk full`, err.Error())
	require.ErrorIs(t, err, ErrPersistence)
	require.ErrorIs(t, err, cause)

	var persistErr *PersistenceError
	require.ErrorAs(t, err, &persistErr)
	assert.Equal(t, "set", persistErr.Op)
	assert.Equal(t, "quotes", persistErr.Key)

	assert.Equal(t, `persistence get "quotes" failed`, NewPersistenceError("get", "quotes", nil).Error())
}

func TestUnavailableError(t *testing.T) {
	tests := []struct {
		name        string
		service     string
		reason      string
		expectedMsg string
	}{
		{
			name:        "with reason",
			service:     "remote-quotes",
			reason:      "connection timeout",
			expectedMsg: `service "remote-quotes" unavailable: connection timeout`,
		},
		{
			name:        "without reason",
			service:     "remote-quotes",
			reason:      "",
			expectedMsg: `service "remote-quotes" unavailable`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewUnavailableError(tt.service, tt.reason)

			assert.Equal(t, tt.expectedMsg, err.Error())
			require.ErrorIs(t, err, ErrUnavailable)

			var unavailable *UnavailableError
			require.ErrorAs(t, err, &unavailable)
			assert.Equal(t, tt.service, unavailable.Service)
			assert.Equal(t, tt.reason, unavailable.Reason)
		})
	}
}

func TestIsHelpers(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		isFunc   func(error) bool
		expected bool
	}{
		{"IsValidation with ValidationError", NewValidationError("text", "empty"), IsValidation, true},
		{"IsValidation with wrapped", fmt.Errorf("wrapped: %w", ErrValidation), IsValidation, true},
		{"IsValidation with other error", ErrFormat, IsValidation, false},
		{"IsValidation with nil", nil, IsValidation, false},

		{"IsFormat with FormatError", NewFormatError("not an array", nil), IsFormat, true},
		{"IsFormat with wrapped", fmt.Errorf("importing: %w", NewFormatError("bad", nil)), IsFormat, true},
		{"IsFormat with other error", ErrPersistence, IsFormat, false},

		{"IsPersistence with PersistenceError", NewPersistenceError("set", "k", nil), IsPersistence, true},
		{"IsPersistence with wrapped", fmt.Errorf("saving: %w", ErrPersistence), IsPersistence, true},
		{"IsPersistence with other error", ErrUnavailable, IsPersistence, false},

		{"IsUnavailable with UnavailableError", NewUnavailableError("remote", "timeout"), IsUnavailable, true},
		{"IsUnavailable with sentinel", ErrUnavailable, IsUnavailable, true},
		{"IsUnavailable with other error", ErrValidation, IsUnavailable, false},
		{"IsUnavailable with nil", nil, IsUnavailable, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.isFunc(tt.err))
		})
	}
}
