package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"shiftpay/internal/validation"
)

// ShiftParams carries the inputs for NewShift. An empty ID is replaced by a
// generated UUID; a whitespace-only ID is rejected.
type ShiftParams struct {
	ID           string
	Workplace    string
	PayRate      float64
	StartTime    time.Time
	EndTime      time.Time
	UnpaidBreaks []Duration
}

// Shift is one worked period at a workplace, paid at PayRate per hour.
// Fields are only reachable through validating setters, so a Shift always
// has a well-formed id, a non-negative pay rate and EndTime >= StartTime.
type Shift struct {
	id           string
	workplace    string
	payRate      float64
	startTime    time.Time
	endTime      time.Time
	unpaidBreaks []Duration
}

// NewShift validates params and builds a Shift. All field problems are
// reported together in one *validation.ValidationError.
func NewShift(params ShiftParams) (*Shift, error) {
	id := params.ID
	if id == "" {
		id = uuid.New().String()
	}

	if err := validation.NewShiftValidator().ValidateShift(id, params.PayRate, params.StartTime, params.EndTime); err != nil {
		return nil, err
	}

	return &Shift{
		id:           strings.TrimSpace(id),
		workplace:    params.Workplace,
		payRate:      params.PayRate,
		startTime:    params.StartTime,
		endTime:      params.EndTime,
		unpaidBreaks: copyBreaks(params.UnpaidBreaks),
	}, nil
}

// MustShift is NewShift for fixtures; it panics on invalid params.
func MustShift(params ShiftParams) *Shift {
	s, err := NewShift(params)
	if err != nil {
		panic(err)
	}
	return s
}

func copyBreaks(breaks []Duration) []Duration {
	if len(breaks) == 0 {
		return nil
	}
	out := make([]Duration, len(breaks))
	copy(out, breaks)
	return out
}

func (s *Shift) ID() string           { return s.id }
func (s *Shift) Workplace() string    { return s.workplace }
func (s *Shift) PayRate() float64     { return s.payRate }
func (s *Shift) StartTime() time.Time { return s.startTime }
func (s *Shift) EndTime() time.Time   { return s.endTime }

// UnpaidBreaks returns a copy of the breaks; nil when there are none.
func (s *Shift) UnpaidBreaks() []Duration {
	return copyBreaks(s.unpaidBreaks)
}

// Params returns the shift's fields as ShiftParams, e.g. to derive a modified copy.
func (s *Shift) Params() ShiftParams {
	return ShiftParams{
		ID:           s.id,
		Workplace:    s.workplace,
		PayRate:      s.payRate,
		StartTime:    s.startTime,
		EndTime:      s.endTime,
		UnpaidBreaks: s.UnpaidBreaks(),
	}
}

// Clone returns an independent copy of s.
func (s *Shift) Clone() *Shift {
	c := *s
	c.unpaidBreaks = copyBreaks(s.unpaidBreaks)
	return &c
}

// SetID replaces the id after trimming surrounding whitespace.
func (s *Shift) SetID(id string) error {
	if err := validation.NewShiftValidator().ValidateID(id); err != nil {
		return err
	}
	s.id = strings.TrimSpace(id)
	return nil
}

func (s *Shift) SetWorkplace(workplace string) {
	s.workplace = workplace
}

func (s *Shift) SetPayRate(rate float64) error {
	if err := validation.NewShiftValidator().ValidatePayRate(rate); err != nil {
		return err
	}
	s.payRate = rate
	return nil
}

// SetStartTime fails when start would fall after the current end time.
func (s *Shift) SetStartTime(start time.Time) error {
	return s.SetTimes(start, s.endTime)
}

// SetEndTime fails when end would fall before the current start time.
func (s *Shift) SetEndTime(end time.Time) error {
	return s.SetTimes(s.startTime, end)
}

// SetTimes replaces both instants at once, which allows moving a shift
// to a window that does not overlap its current one.
func (s *Shift) SetTimes(start, end time.Time) error {
	if err := validation.NewShiftValidator().ValidateTimes(start, end); err != nil {
		return err
	}
	s.startTime = start
	s.endTime = end
	return nil
}

// SetUnpaidBreaks stores a copy of breaks.
func (s *Shift) SetUnpaidBreaks(breaks []Duration) {
	s.unpaidBreaks = copyBreaks(breaks)
}

// Duration is the whole minutes between start and end.
func (s *Shift) Duration() Duration {
	return span(s.startTime, s.endTime)
}

// TotalBreakDuration is the normalized sum of the unpaid breaks.
func (s *Shift) TotalBreakDuration() Duration {
	return SumDurations(s.unpaidBreaks)
}

// BillableMinutes is worked minutes minus break minutes. It is negative when
// breaks exceed the worked time.
func (s *Shift) BillableMinutes() int {
	return s.Duration().TotalMinutes() - s.TotalBreakDuration().TotalMinutes()
}

// BillableDuration is the worked time minus breaks, clamped at 0:0.
func (s *Shift) BillableDuration() Duration {
	d, _ := s.Billable(BillableClamp)
	return d
}

// Billable computes the billable duration under policy.
func (s *Shift) Billable(policy BillablePolicy) (Duration, error) {
	minutes := s.BillableMinutes()
	if minutes >= 0 {
		return durationFromMinutes(minutes), nil
	}
	if policy == BillableReject {
		ve := validation.NewValidationError()
		ve.AddInvalidRangeError("unpaidBreaks", s.TotalBreakDuration().String(),
			fmt.Sprintf("breaks exceed the worked time of %s", s.Duration()))
		return ZeroDuration, ve
	}
	return ZeroDuration, nil
}

// Income is PayRate times the billable hours.
func (s *Shift) Income() float64 {
	return s.payRate * s.BillableDuration().InHours()
}

// IncomeWith is Income under an explicit billable policy.
func (s *Shift) IncomeWith(policy BillablePolicy) (float64, error) {
	billable, err := s.Billable(policy)
	if err != nil {
		return 0, err
	}
	return s.payRate * billable.InHours(), nil
}

// LimitedDuration is the part of the shift inside [from, to]. Nil bounds are
// open. A window that misses the shift yields 0:0.
func (s *Shift) LimitedDuration(from, to *time.Time) Duration {
	start := s.startTime
	if from != nil && start.Before(*from) {
		start = *from
	}
	end := s.endTime
	if to != nil && end.After(*to) {
		end = *to
	}
	return span(start, end)
}

// Overlaps reports whether the shift intersects the open window (start, end).
func (s *Shift) Overlaps(start, end time.Time) bool {
	return s.startTime.Before(end) && s.endTime.After(start)
}

// span converts end-start to a Duration, clamping into the representable range.
func span(start, end time.Time) Duration {
	minutes := floorMinutes(end.Sub(start))
	switch {
	case minutes < 0:
		return ZeroDuration
	case minutes > maxTotalMinutes:
		return durationFromMinutes(maxTotalMinutes)
	}
	return durationFromMinutes(minutes)
}

// BillablePolicy decides what happens when unpaid breaks exceed worked time.
type BillablePolicy string

const (
	// BillableClamp treats the billable time as 0:0.
	BillableClamp BillablePolicy = "clamp"
	// BillableReject reports a validation error.
	BillableReject BillablePolicy = "reject"
)

// Check applies the policy to s; it only fails for BillableReject.
func (p BillablePolicy) Check(s *Shift) error {
	_, err := s.Billable(p)
	return err
}
