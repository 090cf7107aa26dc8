package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"shiftpay/internal/errors"
	"shiftpay/internal/validation"
)

// Accepted spellings for each shift field, in lookup order. The underscored
// forms come from serialized private fields; from/to are older names.
var fieldAliases = []struct {
	field   string
	aliases []string
}{
	{"id", []string{"id", "_id"}},
	{"workplace", []string{"workplace", "_workplace"}},
	{"payRate", []string{"payRate", "_payRate"}},
	{"startTime", []string{"startTime", "_startTime", "from", "_from"}},
	{"endTime", []string{"endTime", "_endTime", "to", "_to"}},
}

// ParseResult is the outcome of ParseAll. Success is false when any record,
// or the input as a whole, could not be parsed.
type ParseResult struct {
	Shifts  []*Shift
	Success bool
}

// Parse builds a Shift from a loosely shaped record such as decoded JSON.
// Records may be map[string]any, Record, *Shift or raw JSON bytes.
// A record lacking any required field fails with a missing_field AppError;
// present but malformed values fail with a *validation.ValidationError.
func Parse(raw any) (*Shift, error) {
	record, err := asRecordMap(raw)
	if err != nil {
		return nil, err
	}
	if s, ok := raw.(*Shift); ok {
		return s.Clone(), nil
	}

	values := make(map[string]any, len(fieldAliases))
	var missing []string
	for _, f := range fieldAliases {
		v := lookup(record, f.aliases...)
		if v == nil {
			missing = append(missing, f.field)
			continue
		}
		values[f.field] = v
	}
	if len(missing) > 0 {
		return nil, errors.NewMissingFieldError(missing, raw)
	}

	ve := validation.NewValidationError()

	id, ok := looseID(values["id"])
	switch {
	case !ok:
		ve.AddInvalidValueError("id", values["id"], "must be a string or number")
	case strings.TrimSpace(id) == "":
		// NewShift would generate an id; a stored record must bring its own
		ve.AddRequiredError("id")
	}
	payRate, ok := looseNumber(values["payRate"])
	if !ok {
		ve.AddInvalidValueError("payRate", values["payRate"], "should be a number")
	}
	start, ok := looseTime(values["startTime"])
	if !ok {
		ve.AddInvalidFormatError("startTime", values["startTime"], "ISO-8601 date-time")
	}
	end, ok := looseTime(values["endTime"])
	if !ok {
		ve.AddInvalidFormatError("endTime", values["endTime"], "ISO-8601 date-time")
	}
	breaks, err := looseBreaks(record)
	ve.Merge("unpaidBreaks", err)

	if ve.HasErrors() {
		return nil, ve
	}

	return NewShift(ShiftParams{
		ID:           id,
		Workplace:    looseString(values["workplace"]),
		PayRate:      payRate,
		StartTime:    start,
		EndTime:      end,
		UnpaidBreaks: breaks,
	})
}

// ParseAll parses every element of a sequence, skipping and logging the ones
// that fail. Input that is not a sequence yields no shifts and Success false.
func ParseAll(raw any) ParseResult {
	result := ParseResult{Shifts: []*Shift{}, Success: true}

	if b, ok := raw.(json.RawMessage); ok {
		var decoded any
		if err := json.Unmarshal(b, &decoded); err != nil {
			log.Warn().Err(err).Msg("failed to decode shift list")
			result.Success = false
			return result
		}
		raw = decoded
	}

	rv := reflect.ValueOf(raw)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		log.Warn().Interface("input", raw).Msg("error parsing multiple shifts: input is not a list")
		result.Success = false
		return result
	}

	for i := 0; i < rv.Len(); i++ {
		item := rv.Index(i).Interface()
		s, err := Parse(item)
		if err != nil {
			log.Warn().Err(err).Int("index", i).Interface("record", item).Msg("failed to parse shift from source")
			result.Success = false
			continue
		}
		result.Shifts = append(result.Shifts, s)
	}

	return result
}

func asRecordMap(raw any) (map[string]any, error) {
	switch v := raw.(type) {
	case nil:
		return nil, errors.NewInvalidInputError("shift", nil, "record is empty")
	case map[string]any:
		if v == nil {
			return nil, errors.NewInvalidInputError("shift", nil, "record is empty")
		}
		return v, nil
	case *Shift:
		if v == nil {
			return nil, errors.NewInvalidInputError("shift", nil, "record is empty")
		}
		return map[string]any{}, nil
	case Record:
		return v.toMap(), nil
	case *Record:
		if v == nil {
			return nil, errors.NewInvalidInputError("shift", nil, "record is empty")
		}
		return v.toMap(), nil
	case json.RawMessage:
		return decodeRecord(v)
	case []byte:
		return decodeRecord(v)
	default:
		return nil, errors.NewInvalidInputError("shift", raw, fmt.Sprintf("unsupported record type %T", raw))
	}
}

func decodeRecord(b []byte) (map[string]any, error) {
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil || m == nil {
		return nil, errors.NewInvalidInputError("shift", string(b), "not a JSON object")
	}
	return m, nil
}

// lookup returns the first alias whose value is present and not null.
func lookup(m map[string]any, aliases ...string) any {
	for _, key := range aliases {
		if v, ok := m[key]; ok && v != nil {
			return v
		}
	}
	return nil
}

func looseString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func looseID(v any) (string, bool) {
	switch id := v.(type) {
	case string:
		return id, true
	case float64, float32, int, int64, int32, json.Number:
		f, ok := looseNumber(id)
		if !ok {
			return "", false
		}
		return strconv.FormatFloat(f, 'f', -1, 64), true
	default:
		return "", false
	}
}

func looseNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// Layouts tried, in order, for textual instants. Values without a zone are
// read in local time, except bare dates which are UTC.
var instantLayouts = []struct {
	layout string
	local  bool
}{
	{time.RFC3339Nano, false},
	{"2006-01-02T15:04:05.999999999", true},
	{"2006-01-02T15:04", true},
	{"2006-01-02 15:04:05.999999999Z07:00", false},
	{"2006-01-02 15:04:05.999999999", true},
	{"2006-01-02 15:04", true},
	{"Mon Jan 02 2006 15:04:05 GMT-0700", false},
	{time.RFC1123Z, false},
	{time.RFC1123, false},
	{"2006-01-02", false},
}

// ParseInstant reads a textual instant in any of the accepted layouts.
func ParseInstant(text string) (time.Time, bool) {
	text = strings.TrimSpace(text)
	// Date.prototype.toString appends a parenthesized zone name.
	if i := strings.Index(text, " ("); i > 0 && strings.HasSuffix(text, ")") {
		text = text[:i]
	}
	for _, l := range instantLayouts {
		var t time.Time
		var err error
		if l.local {
			t, err = time.ParseInLocation(l.layout, text, time.Local)
		} else {
			t, err = time.Parse(l.layout, text)
		}
		if err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func looseTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, !t.IsZero()
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, !t.IsZero()
	case string:
		return ParseInstant(t)
	default:
		// Numbers are epoch milliseconds.
		ms, ok := looseNumber(v)
		if !ok || math.IsNaN(ms) || math.IsInf(ms, 0) {
			return time.Time{}, false
		}
		return time.UnixMilli(int64(ms)), true
	}
}

// looseBreaks reads unpaidBreaks (or _unpaidBreaks) when it is a list and
// drops zero-length entries. A record without breaks yields nil.
func looseBreaks(record map[string]any) ([]Duration, error) {
	var items []any
	for _, key := range []string{"unpaidBreaks", "_unpaidBreaks"} {
		if list, ok := asList(record[key]); ok {
			items = list
			break
		}
	}

	var breaks []Duration
	for i, item := range items {
		d, err := looseDuration(item)
		if err != nil {
			return nil, fmt.Errorf("break #%d: %w", i+1, err)
		}
		if !d.IsZero() {
			breaks = append(breaks, d)
		}
	}
	return breaks, nil
}

func asList(v any) ([]any, bool) {
	switch l := v.(type) {
	case []any:
		return l, true
	case []map[string]any:
		out := make([]any, len(l))
		for i, m := range l {
			out[i] = m
		}
		return out, true
	case []string:
		out := make([]any, len(l))
		for i, s := range l {
			out[i] = s
		}
		return out, true
	case []Duration:
		out := make([]any, len(l))
		for i, d := range l {
			out[i] = d
		}
		return out, true
	default:
		return nil, false
	}
}

func looseDuration(v any) (Duration, error) {
	switch d := v.(type) {
	case Duration:
		return d, nil
	case string:
		return ParseDuration(d)
	case map[string]any:
		hours, err := looseComponent("hours", lookup(d, "hours", "_hours"))
		if err != nil {
			return Duration{}, err
		}
		minutes, err := looseComponent("minutes", lookup(d, "minutes", "_minutes"))
		if err != nil {
			return Duration{}, err
		}
		return NewDuration(hours, minutes)
	default:
		ve := validation.NewValidationError()
		ve.AddInvalidFormatError("duration", v, `"H:M" or {hours, minutes}`)
		return Duration{}, ve
	}
}

func looseComponent(field string, v any) (int, error) {
	if v == nil {
		return 0, nil
	}
	f, ok := looseNumber(v)
	if !ok || f != math.Trunc(f) || math.IsInf(f, 0) {
		ve := validation.NewValidationError()
		ve.AddInvalidValueError(field, v, "should be an integer")
		return 0, ve
	}
	if f < 0 {
		ve := validation.NewValidationError()
		ve.AddInvalidValueError(field, v, "cannot be negative")
		return 0, ve
	}
	if f > maxTotalMinutes {
		ve := validation.NewValidationError()
		ve.AddInvalidRangeError(field, v, "too large")
		return 0, ve
	}
	return int(f), nil
}
