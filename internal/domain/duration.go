package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"shiftpay/internal/validation"
)

const minutesPerHour = 60

// maxTotalMinutes bounds a Duration so that its minute total always fits in an int.
const maxTotalMinutes = math.MaxInt32

// Duration is an immutable, non-negative span of whole hours and minutes.
// Minutes are always normalized into [0, 59].
type Duration struct {
	hours   int
	minutes int
}

// ZeroDuration is 0:0.
var ZeroDuration = Duration{}

// NewDuration builds a Duration, carrying overflowing minutes into hours.
// Negative components are rejected.
func NewDuration(hours, minutes int) (Duration, error) {
	if err := validation.NewShiftValidator().ValidateDurationParts(hours, minutes); err != nil {
		return Duration{}, err
	}
	if hours > (maxTotalMinutes-minutes)/minutesPerHour {
		ve := validation.NewValidationError()
		ve.AddInvalidRangeError("duration", fmt.Sprintf("%d:%d", hours, minutes), "too large")
		return Duration{}, ve
	}
	return durationFromMinutes(hours*minutesPerHour + minutes), nil
}

// MustDuration is NewDuration for constant inputs; it panics on invalid components.
func MustDuration(hours, minutes int) Duration {
	d, err := NewDuration(hours, minutes)
	if err != nil {
		panic(err)
	}
	return d
}

// DurationFromMinutes builds a Duration from a minute total.
func DurationFromMinutes(total int) (Duration, error) {
	return NewDuration(0, total)
}

// ParseDuration reads the "H:M" text form. Tokens are whitespace-trimmed and
// anything after the second ':' is ignored.
func ParseDuration(text string) (Duration, error) {
	parts := strings.Split(text, ":")
	if len(parts) < 2 {
		ve := validation.NewValidationError()
		ve.AddInvalidFormatError("duration", text, "H:M")
		return Duration{}, ve
	}

	hours, errH := strconv.Atoi(strings.TrimSpace(parts[0]))
	minutes, errM := strconv.Atoi(strings.TrimSpace(parts[1]))
	if errH != nil || errM != nil {
		ve := validation.NewValidationError()
		ve.AddInvalidFormatError("duration", text, "H:M with integer hours and minutes")
		return Duration{}, ve
	}

	return NewDuration(hours, minutes)
}

// DurationBetween returns the whole minutes elapsed from start to end,
// rounded down. An end before start fails like any negative component.
func DurationBetween(start, end time.Time) (Duration, error) {
	return DurationFromMinutes(floorMinutes(end.Sub(start)))
}

func floorMinutes(d time.Duration) int {
	m := d / time.Minute
	if d%time.Minute < 0 {
		m--
	}
	return int(m)
}

func durationFromMinutes(total int) Duration {
	return Duration{hours: total / minutesPerHour, minutes: total % minutesPerHour}
}

// Hours returns the whole-hours component.
func (d Duration) Hours() int { return d.hours }

// Minutes returns the minutes component, always in [0, 59].
func (d Duration) Minutes() int { return d.minutes }

// TotalMinutes returns hours*60 + minutes.
func (d Duration) TotalMinutes() int {
	return d.hours*minutesPerHour + d.minutes
}

// InHours returns the duration as fractional hours, e.g. 1:30 is 1.5.
func (d Duration) InHours() float64 {
	return float64(d.hours) + float64(d.minutes)/minutesPerHour
}

// IsZero reports whether d is 0:0.
func (d Duration) IsZero() bool {
	return d.hours == 0 && d.minutes == 0
}

// Add returns the normalized sum of d and other. Neither operand changes.
// The result saturates at the largest representable Duration.
func (d Duration) Add(other Duration) Duration {
	total := d.TotalMinutes()
	if total > maxTotalMinutes-other.TotalMinutes() {
		return durationFromMinutes(maxTotalMinutes)
	}
	return durationFromMinutes(total + other.TotalMinutes())
}

// Std converts d to a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d.TotalMinutes()) * time.Minute
}

// String returns the canonical "H:M" form without zero padding, e.g. "1:5".
func (d Duration) String() string {
	return strconv.Itoa(d.hours) + ":" + strconv.Itoa(d.minutes)
}

// MarshalText implements encoding.TextMarshaler using the canonical form.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler via ParseDuration.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// SumDurations folds Add over ds starting from 0:0.
func SumDurations(ds []Duration) Duration {
	total := ZeroDuration
	for _, d := range ds {
		total = total.Add(d)
	}
	return total
}
