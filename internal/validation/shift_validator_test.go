package validation

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShiftValidator_ValidateID(t *testing.T) {
	sv := NewShiftValidator()

	tests := []struct {
		name      string
		id        string
		errorType ValidationErrorType
	}{
		{"valid", "abc-123", ""},
		{"valid with padding", "  abc-123  ", ""},
		{"empty", "", ErrorTypeRequired},
		{"blank", "   ", ErrorTypeRequired},
		{"bad characters", "abc 123", ErrorTypeInvalidCharacter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := sv.ValidateID(tt.id)
			if tt.errorType == "" {
				assert.NoError(t, err)
				return
			}
			ve, ok := AsValidationError(err)
			require.True(t, ok)
			require.Len(t, ve.Errors, 1)
			assert.Equal(t, tt.errorType, ve.Errors[0].Type)
		})
	}
}

func TestShiftValidator_ValidatePayRate(t *testing.T) {
	sv := NewShiftValidator()

	assert.NoError(t, sv.ValidatePayRate(0))
	assert.NoError(t, sv.ValidatePayRate(21.25))
	assert.Error(t, sv.ValidatePayRate(-5))
	assert.Error(t, sv.ValidatePayRate(math.NaN()))
}

func TestShiftValidator_ValidateTimes(t *testing.T) {
	sv := NewShiftValidator()
	start := time.Date(2024, 5, 1, 22, 0, 0, 0, time.UTC)

	assert.NoError(t, sv.ValidateTimes(start, start.Add(8*time.Hour)))
	assert.NoError(t, sv.ValidateTimes(start, start), "zero-length shifts are allowed")

	err := sv.ValidateTimes(start, start.Add(-time.Minute))
	ve, ok := AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "endTime", ve.Errors[0].Field)
	assert.Equal(t, ErrorTypeInvalidRange, ve.Errors[0].Type)

	err = sv.ValidateTimes(time.Time{}, time.Time{})
	ve, ok = AsValidationError(err)
	require.True(t, ok)
	assert.Len(t, ve.Errors, 2)
}

func TestShiftValidator_ValidateShift_CollectsAllErrors(t *testing.T) {
	sv := NewShiftValidator()
	start := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	err := sv.ValidateShift("bad id", -1, start, start.Add(-time.Hour))
	ve, ok := AsValidationError(err)
	require.True(t, ok)
	assert.Len(t, ve.GetFieldErrors("id"), 1)
	assert.Len(t, ve.GetFieldErrors("payRate"), 1)
	assert.Len(t, ve.GetFieldErrors("endTime"), 1)

	assert.NoError(t, sv.ValidateShift("ok", 0, start, start.Add(time.Hour)))
}

func TestShiftValidator_ValidateDurationParts(t *testing.T) {
	sv := NewShiftValidator()

	assert.NoError(t, sv.ValidateDurationParts(0, 0))
	assert.NoError(t, sv.ValidateDurationParts(3, 75))

	err := sv.ValidateDurationParts(-1, -2)
	ve, ok := AsValidationError(err)
	require.True(t, ok)
	assert.Len(t, ve.Errors, 2)
}

func TestShiftValidator_ValidateSearchRange(t *testing.T) {
	sv := NewShiftValidator()
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	assert.NoError(t, sv.ValidateSearchRange(&from, &to))
	assert.NoError(t, sv.ValidateSearchRange(nil, &to))
	assert.Error(t, sv.ValidateSearchRange(&to, &from))
}

func TestShiftValidator_ValidateTimeShorthand(t *testing.T) {
	sv := NewShiftValidator()

	assert.NoError(t, sv.ValidateTimeShorthand("1w"))
	assert.Error(t, sv.ValidateTimeShorthand("week"))
}
