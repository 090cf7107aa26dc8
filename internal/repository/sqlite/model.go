package sqlite

import "time"

// Shift is a row of the shifts table. UnpaidBreaks holds "H:M" texts.
type Shift struct {
	ID           string
	Workplace    string
	PayRate      float64
	StartTime    time.Time
	EndTime      time.Time
	UnpaidBreaks []string
}

// WorkInfoRate is one (workplace, pay rate) pair of the work info catalog.
type WorkInfoRate struct {
	Workplace string
	PayRate   float64
}

// ShiftTemplate is a named shift kept for reuse.
type ShiftTemplate struct {
	Name  string
	Shift Shift
}

// Setting is a key/value row used for small pieces of session state.
type Setting struct {
	Key   string
	Value string
}
