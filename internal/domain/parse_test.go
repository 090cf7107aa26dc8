package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shiftpay/internal/errors"
	"shiftpay/internal/validation"
)

func validRecord() map[string]any {
	return map[string]any{
		"id":           "abc",
		"workplace":    "Cafe",
		"payRate":      12.5,
		"startTime":    "2024-03-01T08:00:00.000Z",
		"endTime":      "2024-03-01T12:00:00.000Z",
		"unpaidBreaks": []any{"0:30"},
	}
}

func TestParse_CanonicalRecord(t *testing.T) {
	s, err := Parse(validRecord())
	require.NoError(t, err)

	assert.Equal(t, "abc", s.ID())
	assert.Equal(t, "Cafe", s.Workplace())
	assert.Equal(t, 12.5, s.PayRate())
	assert.True(t, s.StartTime().Equal(time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)))
	assert.Equal(t, []Duration{MustDuration(0, 30)}, s.UnpaidBreaks())
}

func TestParse_Aliases(t *testing.T) {
	record := map[string]any{
		"_id":        "legacy",
		"_workplace": "Shop",
		"_payRate":   "9.75",
		"from":       "2024-03-01T08:00:00Z",
		"_to":        "2024-03-01T10:00:00Z",
		"_unpaidBreaks": []any{
			map[string]any{"_hours": 0, "_minutes": 15},
		},
	}

	s, err := Parse(record)
	require.NoError(t, err)
	assert.Equal(t, "legacy", s.ID())
	assert.Equal(t, "Shop", s.Workplace())
	assert.Equal(t, 9.75, s.PayRate())
	assert.Equal(t, "2:0", s.Duration().String())
	assert.Equal(t, "0:15", s.TotalBreakDuration().String())
}

func TestParse_NumericID(t *testing.T) {
	record := validRecord()
	record["id"] = float64(42)

	s, err := Parse(record)
	require.NoError(t, err)
	assert.Equal(t, "42", s.ID())
}

func TestParse_BreakShapes(t *testing.T) {
	tests := []struct {
		name   string
		breaks any
		want   string
	}{
		{"strings", []any{"0:30", "0:15"}, "0:45"},
		{"objects", []any{map[string]any{"hours": 1, "minutes": 0}}, "1:0"},
		{"typed objects", []map[string]any{{"hours": 0, "minutes": 20}, {"_hours": 1}}, "1:20"},
		{"hours wins over _hours", []any{map[string]any{"hours": 1, "_hours": 5}}, "1:0"},
		{"zero entries dropped", []any{"0:0", map[string]any{}}, "0:0"},
		{"not a list", "0:30", "0:0"},
		{"absent", nil, "0:0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := validRecord()
			if tt.breaks == nil {
				delete(record, "unpaidBreaks")
			} else {
				record["unpaidBreaks"] = tt.breaks
			}

			s, err := Parse(record)
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.TotalBreakDuration().String())
		})
	}
}

func TestParse_ZeroBreaksAreDropped(t *testing.T) {
	record := validRecord()
	record["unpaidBreaks"] = []any{"0:0", "0:10"}

	s, err := Parse(record)
	require.NoError(t, err)
	assert.Len(t, s.UnpaidBreaks(), 1)
}

func TestParse_MissingFields(t *testing.T) {
	record := validRecord()
	delete(record, "workplace")
	delete(record, "endTime")

	_, err := Parse(record)
	require.Error(t, err)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeMissingField))

	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	fields, _ := appErr.GetContext("fields")
	assert.Equal(t, []string{"workplace", "endTime"}, fields)
}

func TestParse_NullCountsAsMissing(t *testing.T) {
	record := validRecord()
	record["payRate"] = nil

	_, err := Parse(record)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeMissingField))
}

func TestParse_MalformedValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value any
		field string
	}{
		{"bad pay rate", "payRate", "lots", "payRate"},
		{"negative pay rate", "payRate", -1.0, "payRate"},
		{"bad start", "startTime", "tomorrow-ish", "startTime"},
		{"id with spaces", "id", "a b", "id"},
		{"empty id", "id", "", "id"},
		{"blank id", "id", "   ", "id"},
		{"id of wrong type", "id", true, "id"},
		{"end before start", "endTime", "2024-03-01T07:00:00Z", "endTime"},
		{"bad break", "unpaidBreaks", []any{"half an hour"}, "duration"},
		{"negative break", "unpaidBreaks", []any{map[string]any{"hours": -1}}, "hours"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := validRecord()
			record[tt.key] = tt.value

			_, err := Parse(record)
			require.Error(t, err)
			ve, ok := validation.AsValidationError(err)
			require.True(t, ok, "expected validation error, got %v", err)
			assert.NotEmpty(t, ve.GetFieldErrors(tt.field))
		})
	}
}

func TestParse_Inputs(t *testing.T) {
	s := MustShift(testParams())

	clone, err := Parse(s)
	require.NoError(t, err)
	assert.Equal(t, s, clone)
	assert.NotSame(t, s, clone)

	fromRecord, err := Parse(s.ToRecord())
	require.NoError(t, err)
	assert.Equal(t, s.ID(), fromRecord.ID())
	assert.True(t, s.StartTime().Equal(fromRecord.StartTime()))

	rec := s.ToRecord()
	fromPtr, err := Parse(&rec)
	require.NoError(t, err)
	assert.Equal(t, s.ID(), fromPtr.ID())

	fromJSON, err := Parse(json.RawMessage(`{"id":"j","workplace":"W","payRate":1,"startTime":"2024-01-01T00:00:00Z","endTime":"2024-01-01T01:00:00Z"}`))
	require.NoError(t, err)
	assert.Equal(t, "j", fromJSON.ID())
}

func TestParse_RejectsNonRecords(t *testing.T) {
	for _, raw := range []any{nil, 42, "shift", []byte("[1,2]"), (*Shift)(nil)} {
		_, err := Parse(raw)
		require.Error(t, err)
		assert.True(t, errors.IsErrorType(err, errors.ErrorTypeInvalidInput), "%T", raw)
	}
}

func TestParse_RecordWithoutIDIsMissing(t *testing.T) {
	rec := MustShift(testParams()).ToRecord()
	rec.ID = ""

	_, err := Parse(rec)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeMissingField))
}

func TestParseAll(t *testing.T) {
	bad := validRecord()
	delete(bad, "id")

	result := ParseAll([]any{validRecord(), bad, validRecord()})
	assert.False(t, result.Success)
	assert.Len(t, result.Shifts, 2)

	result = ParseAll([]map[string]any{validRecord()})
	assert.True(t, result.Success)
	assert.Len(t, result.Shifts, 1)

	result = ParseAll([]any{})
	assert.True(t, result.Success)
	assert.Empty(t, result.Shifts)
}

func TestParseAll_NonList(t *testing.T) {
	for _, raw := range []any{nil, validRecord(), "[]", 3} {
		result := ParseAll(raw)
		assert.False(t, result.Success)
		assert.NotNil(t, result.Shifts)
		assert.Empty(t, result.Shifts)
	}
}

func TestParseAll_RawJSON(t *testing.T) {
	result := ParseAll(json.RawMessage(`[{"id":"a","workplace":"W","payRate":1,"startTime":"2024-01-01T00:00:00Z","endTime":"2024-01-01T01:00:00Z"},{"id":"b"}]`))
	assert.False(t, result.Success)
	require.Len(t, result.Shifts, 1)
	assert.Equal(t, "a", result.Shifts[0].ID())

	result = ParseAll(json.RawMessage(`not json`))
	assert.False(t, result.Success)
}

func TestParseInstant(t *testing.T) {
	want := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		input string
		ok    bool
	}{
		{"2024-03-01T08:00:00.000Z", true},
		{"2024-03-01T09:00:00+01:00", true},
		{"Fri Mar 01 2024 09:00:00 GMT+0100 (Central European Standard Time)", true},
		{"Fri, 01 Mar 2024 08:00:00 +0000", true},
		{"  2024-03-01T08:00:00Z  ", true},
		{"yesterday", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseInstant(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, want.Equal(got), "got %v", got)
			}
		})
	}
}

func TestParse_EpochMilliseconds(t *testing.T) {
	record := validRecord()
	start := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	record["startTime"] = float64(start.UnixMilli())
	record["endTime"] = float64(start.Add(time.Hour).UnixMilli())

	s, err := Parse(record)
	require.NoError(t, err)
	assert.True(t, start.Equal(s.StartTime()))
}
