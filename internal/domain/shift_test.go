package domain

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shiftpay/internal/validation"
)

var baseStart = time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

func testParams() ShiftParams {
	return ShiftParams{
		ID:        "shift-1",
		Workplace: "Cafe",
		PayRate:   10,
		StartTime: baseStart,
		EndTime:   baseStart.Add(8*time.Hour + 30*time.Minute),
		UnpaidBreaks: []Duration{
			MustDuration(0, 30),
			MustDuration(0, 15),
		},
	}
}

func TestNewShift(t *testing.T) {
	s, err := NewShift(testParams())
	require.NoError(t, err)

	assert.Equal(t, "shift-1", s.ID())
	assert.Equal(t, "Cafe", s.Workplace())
	assert.Equal(t, 10.0, s.PayRate())
	assert.Equal(t, baseStart, s.StartTime())
	assert.Len(t, s.UnpaidBreaks(), 2)
}

func TestNewShift_GeneratesID(t *testing.T) {
	p := testParams()
	p.ID = ""

	s, err := NewShift(p)
	require.NoError(t, err)
	_, err = uuid.Parse(s.ID())
	assert.NoError(t, err)
}

func TestNewShift_TrimsID(t *testing.T) {
	p := testParams()
	p.ID = "  abc_1-2  "

	s, err := NewShift(p)
	require.NoError(t, err)
	assert.Equal(t, "abc_1-2", s.ID())
}

func TestNewShift_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*ShiftParams)
		field  string
	}{
		{"blank id", func(p *ShiftParams) { p.ID = "   " }, "id"},
		{"bad id characters", func(p *ShiftParams) { p.ID = "a b" }, "id"},
		{"negative pay rate", func(p *ShiftParams) { p.PayRate = -1 }, "payRate"},
		{"NaN pay rate", func(p *ShiftParams) { p.PayRate = math.NaN() }, "payRate"},
		{"end before start", func(p *ShiftParams) { p.EndTime = p.StartTime.Add(-time.Minute) }, "endTime"},
		{"missing start", func(p *ShiftParams) { p.StartTime = time.Time{} }, "startTime"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testParams()
			tt.modify(&p)

			_, err := NewShift(p)
			require.Error(t, err)
			ve, ok := validation.AsValidationError(err)
			require.True(t, ok)
			assert.NotEmpty(t, ve.GetFieldErrors(tt.field))
		})
	}
}

func TestNewShift_CollectsAllErrors(t *testing.T) {
	p := testParams()
	p.ID = "bad id"
	p.PayRate = -5

	_, err := NewShift(p)
	ve, ok := validation.AsValidationError(err)
	require.True(t, ok)
	assert.Len(t, ve.Errors, 2)
}

func TestNewShift_EdgeValues(t *testing.T) {
	p := testParams()
	p.PayRate = 0
	p.EndTime = p.StartTime

	s, err := NewShift(p)
	require.NoError(t, err)
	assert.True(t, s.Duration().IsZero())
	assert.Equal(t, 0.0, s.Income())
}

func TestShift_DerivedMetrics(t *testing.T) {
	s := MustShift(testParams())

	assert.Equal(t, "8:30", s.Duration().String())
	assert.Equal(t, "0:45", s.TotalBreakDuration().String())
	assert.Equal(t, "7:45", s.BillableDuration().String())
	assert.Equal(t, 465, s.BillableMinutes())
	assert.InDelta(t, 77.5, s.Income(), 1e-9)
}

func TestShift_DurationFloorsSeconds(t *testing.T) {
	p := testParams()
	p.EndTime = p.StartTime.Add(time.Hour + 59*time.Second)

	assert.Equal(t, "1:0", MustShift(p).Duration().String())
}

func TestShift_BreaksExceedWorkedTime(t *testing.T) {
	p := testParams()
	p.EndTime = p.StartTime.Add(time.Hour)
	p.UnpaidBreaks = []Duration{MustDuration(2, 0)}
	s := MustShift(p)

	assert.Equal(t, -60, s.BillableMinutes())
	assert.True(t, s.BillableDuration().IsZero())
	assert.Equal(t, 0.0, s.Income())

	_, err := s.Billable(BillableReject)
	require.Error(t, err)
	assert.True(t, validation.IsValidationError(err))
	assert.Error(t, BillableReject.Check(s))
	assert.NoError(t, BillableClamp.Check(s))

	_, err = s.IncomeWith(BillableReject)
	assert.Error(t, err)
	income, err := s.IncomeWith(BillableClamp)
	require.NoError(t, err)
	assert.Equal(t, 0.0, income)
}

func TestShift_LimitedDuration(t *testing.T) {
	p := testParams()
	p.EndTime = p.StartTime.Add(8 * time.Hour)
	s := MustShift(p)

	at := func(h int) *time.Time {
		v := baseStart.Add(time.Duration(h) * time.Hour)
		return &v
	}

	tests := []struct {
		name string
		from *time.Time
		to   *time.Time
		want string
	}{
		{"unbounded", nil, nil, "8:0"},
		{"from inside", at(2), nil, "6:0"},
		{"to inside", nil, at(4), "4:0"},
		{"both inside", at(1), at(3), "2:0"},
		{"window covers shift", at(-2), at(10), "8:0"},
		{"window after shift", at(9), at(10), "0:0"},
		{"window before shift", at(-3), at(-1), "0:0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.LimitedDuration(tt.from, tt.to).String())
		})
	}
}

func TestShift_Overlaps(t *testing.T) {
	s := MustShift(testParams())
	end := s.EndTime()

	assert.True(t, s.Overlaps(baseStart.Add(-time.Hour), baseStart.Add(time.Hour)))
	assert.False(t, s.Overlaps(baseStart.Add(-time.Hour), baseStart))
	assert.False(t, s.Overlaps(end, end.Add(time.Hour)))
	assert.True(t, s.Overlaps(end.Add(-time.Minute), end.Add(time.Hour)))
}

func TestShift_Setters(t *testing.T) {
	s := MustShift(testParams())

	require.NoError(t, s.SetID(" next "))
	assert.Equal(t, "next", s.ID())
	assert.Error(t, s.SetID("no good"))
	assert.Equal(t, "next", s.ID())

	require.NoError(t, s.SetPayRate(20))
	assert.Error(t, s.SetPayRate(-1))
	assert.Equal(t, 20.0, s.PayRate())

	err := s.SetStartTime(s.EndTime().Add(time.Minute))
	assert.Error(t, err)
	assert.Equal(t, baseStart, s.StartTime())

	assert.Error(t, s.SetEndTime(baseStart.Add(-time.Minute)))

	later := baseStart.Add(48 * time.Hour)
	require.NoError(t, s.SetTimes(later, later.Add(time.Hour)))
	assert.Equal(t, later, s.StartTime())

	s.SetWorkplace("Shop")
	assert.Equal(t, "Shop", s.Workplace())

	s.SetUnpaidBreaks(nil)
	assert.Nil(t, s.UnpaidBreaks())
}

func TestShift_UnpaidBreaksIsCopy(t *testing.T) {
	s := MustShift(testParams())

	breaks := s.UnpaidBreaks()
	breaks[0] = MustDuration(5, 0)

	assert.Equal(t, "0:30", s.UnpaidBreaks()[0].String())
}

func TestShift_Clone(t *testing.T) {
	s := MustShift(testParams())
	c := s.Clone()

	require.NoError(t, c.SetPayRate(99))
	c.SetUnpaidBreaks(nil)

	assert.Equal(t, 10.0, s.PayRate())
	assert.Len(t, s.UnpaidBreaks(), 2)
	assert.Equal(t, s.ID(), c.ID())
}

func TestShift_Params(t *testing.T) {
	s := MustShift(testParams())

	again, err := NewShift(s.Params())
	require.NoError(t, err)
	assert.Equal(t, s, again)
}

func TestMustShift_Panics(t *testing.T) {
	p := testParams()
	p.PayRate = -1
	assert.Panics(t, func() { MustShift(p) })
}
