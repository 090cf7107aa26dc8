package domain

import "time"

// InstantLayout renders instants as UTC ISO-8601 with millisecond precision.
const InstantLayout = "2006-01-02T15:04:05.000Z"

// FormatInstant renders t in InstantLayout.
func FormatInstant(t time.Time) string {
	return t.UTC().Format(InstantLayout)
}

// ShiftDTO is the shape sent to the remote API. The server owns ids, so none is sent.
type ShiftDTO struct {
	Workplace    string   `json:"workplace" yaml:"workplace"`
	PayRate      float64  `json:"payRate" yaml:"payRate"`
	StartTime    string   `json:"startTime" yaml:"startTime"`
	EndTime      string   `json:"endTime" yaml:"endTime"`
	UnpaidBreaks []string `json:"unpaidBreaks" yaml:"unpaidBreaks"`
}

// Record is a ShiftDTO plus id; it is what local storage and exports hold.
type Record struct {
	ID       string `json:"id" yaml:"id"`
	ShiftDTO `yaml:",inline"`
}

// ToDTO converts s to its wire shape. UnpaidBreaks is never nil.
func (s *Shift) ToDTO() ShiftDTO {
	breaks := make([]string, 0, len(s.unpaidBreaks))
	for _, b := range s.unpaidBreaks {
		breaks = append(breaks, b.String())
	}
	return ShiftDTO{
		Workplace:    s.workplace,
		PayRate:      s.payRate,
		StartTime:    FormatInstant(s.startTime),
		EndTime:      FormatInstant(s.endTime),
		UnpaidBreaks: breaks,
	}
}

// ToRecord converts s to its persisted shape.
func (s *Shift) ToRecord() Record {
	return Record{ID: s.id, ShiftDTO: s.ToDTO()}
}

// ToDTOs converts shifts in order.
func ToDTOs(shifts []*Shift) []ShiftDTO {
	out := make([]ShiftDTO, len(shifts))
	for i, s := range shifts {
		out[i] = s.ToDTO()
	}
	return out
}

// ToRecords converts shifts in order.
func ToRecords(shifts []*Shift) []Record {
	out := make([]Record, len(shifts))
	for i, s := range shifts {
		out[i] = s.ToRecord()
	}
	return out
}

func (r Record) toMap() map[string]any {
	breaks := make([]any, len(r.UnpaidBreaks))
	for i, b := range r.UnpaidBreaks {
		breaks[i] = b
	}
	m := map[string]any{
		"workplace":    r.Workplace,
		"payRate":      r.PayRate,
		"unpaidBreaks": breaks,
	}
	// Empty strings count as absent so missing fields are reported as such.
	if r.ID != "" {
		m["id"] = r.ID
	}
	if r.StartTime != "" {
		m["startTime"] = r.StartTime
	}
	if r.EndTime != "" {
		m["endTime"] = r.EndTime
	}
	return m
}
