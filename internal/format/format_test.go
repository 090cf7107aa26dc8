package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shiftpay/internal/domain"
	"shiftpay/internal/errors"
)

func TestDuration(t *testing.T) {
	tests := []struct {
		name     string
		duration domain.Duration
		expected string
	}{
		{"zero", domain.ZeroDuration, "0h"},
		{"hours only", domain.MustDuration(8, 0), "8h"},
		{"minutes only", domain.MustDuration(0, 45), "45m"},
		{"both", domain.MustDuration(7, 5), "7h 5m"},
		{"normalized", domain.MustDuration(1, 90), "2h 30m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Duration(tt.duration))
		})
	}
}

func TestMoney(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		locale   string
		amount   float64
		expected string
	}{
		{"euro in english", "EUR", "en", 12.5, "EUR 12.50"},
		{"lowercase code", "aud", "en", 3, "AUD 3.00"},
		{"german decimal separator", "EUR", "de", 12.5, "EUR 12,50"},
		{"yen has no minor unit", "JPY", "en", 500, "JPY 500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMoney(tt.code, tt.locale)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, m.Format(tt.amount))
		})
	}
}

func TestNewMoneyErrors(t *testing.T) {
	_, err := NewMoney("XX", "en")
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeInvalidInput))

	_, err = NewMoney("EUR", "not a locale!")
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeInvalidInput))

	assert.Panics(t, func() { MustMoney("??", "en") })
	assert.Equal(t, "EUR", MustMoney("eur", "en").Code())
}
