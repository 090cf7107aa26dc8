package validation

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"shiftpay/internal/config"
)

// Validator provides common validation utilities
type Validator struct {
	idRegex            *regexp.Regexp
	timeShorthandRegex *regexp.Regexp
	config             *config.Config
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return NewValidatorWithConfig(nil)
}

// NewValidatorWithConfig creates a new validator instance with configuration
func NewValidatorWithConfig(cfg *config.Config) *Validator {
	return &Validator{
		idRegex:            regexp.MustCompile(`^[a-zA-Z0-9_-]+$`),
		timeShorthandRegex: regexp.MustCompile(`^(\d+)(m|h|d|w|mo|y)$`),
		config:             cfg,
	}
}

// IsNonEmptyString checks if a string is not empty after trimming whitespace
func (v *Validator) IsNonEmptyString(s string) bool {
	return strings.TrimSpace(s) != ""
}

// IsValidID checks that an identifier only uses letters, digits, '_' and '-'
func (v *Validator) IsValidID(id string) bool {
	return v.idRegex.MatchString(id)
}

// IsValidPayRate checks that a pay rate is a real, non-negative number
func (v *Validator) IsValidPayRate(rate float64) bool {
	return !math.IsNaN(rate) && !math.IsInf(rate, 0) && rate >= 0
}

// IsValidTimeRange checks that end does not precede start. Equal instants are allowed.
func (v *Validator) IsValidTimeRange(start, end time.Time) bool {
	return !end.Before(start)
}

// IsValidDateRange checks an optional range; open ends are always valid
func (v *Validator) IsValidDateRange(start, end *time.Time) bool {
	if start == nil || end == nil {
		return true
	}
	return v.IsValidTimeRange(*start, *end)
}

// IsValidWorkplaceLength checks a workplace name against the configured limit
func (v *Validator) IsValidWorkplaceLength(workplace string) bool {
	return len(strings.TrimSpace(workplace)) <= v.getWorkplaceMaxLength()
}

// IsValidTimeShorthand checks if a time shorthand format is valid
func (v *Validator) IsValidTimeShorthand(shorthand string) bool {
	matches := v.timeShorthandRegex.FindStringSubmatch(shorthand)
	if matches == nil {
		return false
	}
	value, err := strconv.Atoi(matches[1])
	return err == nil && value > 0
}

// TrimAndValidateString trims whitespace and returns the cleaned string
func (v *Validator) TrimAndValidateString(s string) string {
	return strings.TrimSpace(s)
}

func (v *Validator) getWorkplaceMaxLength() int {
	if v.config != nil && v.config.Validation.WorkplaceMaxLength > 0 {
		return v.config.Validation.WorkplaceMaxLength
	}
	return 255
}
