package domain

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"shiftpay/internal/repository/sqlite"
	"shiftpay/internal/validation"
)

// ShiftMapper handles conversion between domain and database Shift models.
type ShiftMapper struct{}

// NewShiftMapper creates a new ShiftMapper instance.
func NewShiftMapper() *ShiftMapper {
	return &ShiftMapper{}
}

// ToDatabase converts a domain Shift to a database Shift.
func (m *ShiftMapper) ToDatabase(s *Shift) sqlite.Shift {
	var breaks []string
	for _, b := range s.unpaidBreaks {
		breaks = append(breaks, b.String())
	}
	return sqlite.Shift{
		ID:           s.id,
		Workplace:    s.workplace,
		PayRate:      s.payRate,
		StartTime:    s.startTime,
		EndTime:      s.endTime,
		UnpaidBreaks: breaks,
	}
}

// FromDatabase converts a database Shift to a domain Shift, validating it on the way.
func (m *ShiftMapper) FromDatabase(row sqlite.Shift) (*Shift, error) {
	ve := validation.NewValidationError()
	var breaks []Duration
	for i, text := range row.UnpaidBreaks {
		d, err := ParseDuration(text)
		if err != nil {
			ve.Merge(fmt.Sprintf("unpaidBreaks[%d]", i), err)
			continue
		}
		if !d.IsZero() {
			breaks = append(breaks, d)
		}
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	return NewShift(ShiftParams{
		ID:           row.ID,
		Workplace:    row.Workplace,
		PayRate:      row.PayRate,
		StartTime:    row.StartTime,
		EndTime:      row.EndTime,
		UnpaidBreaks: breaks,
	})
}

// ToDatabaseSlice converts a slice of domain Shifts to database Shifts.
func (m *ShiftMapper) ToDatabaseSlice(shifts []*Shift) []*sqlite.Shift {
	rows := make([]*sqlite.Shift, len(shifts))
	for i, s := range shifts {
		row := m.ToDatabase(s)
		rows[i] = &row
	}
	return rows
}

// FromDatabaseSlice converts rows like ParseAll does: rows that fail
// validation are logged and skipped, and Success reports whether any were.
func (m *ShiftMapper) FromDatabaseSlice(rows []*sqlite.Shift) ParseResult {
	result := ParseResult{Shifts: make([]*Shift, 0, len(rows)), Success: true}
	for _, row := range rows {
		s, err := m.FromDatabase(*row)
		if err != nil {
			log.Warn().Err(err).Str("id", row.ID).Msg("failed to parse shift from source")
			result.Success = false
			continue
		}
		result.Shifts = append(result.Shifts, s)
	}
	return result
}

// WorkInfoMapper handles conversion between WorkInfos and pay rate rows.
type WorkInfoMapper struct{}

// NewWorkInfoMapper creates a new WorkInfoMapper instance.
func NewWorkInfoMapper() *WorkInfoMapper {
	return &WorkInfoMapper{}
}

// ToDatabase flattens the catalog into one row per (workplace, rate).
func (m *WorkInfoMapper) ToDatabase(infos WorkInfos) []*sqlite.WorkInfoRate {
	var rows []*sqlite.WorkInfoRate
	for _, entry := range infos.Entries() {
		for _, rate := range entry.PayRates {
			rows = append(rows, &sqlite.WorkInfoRate{Workplace: entry.Workplace, PayRate: rate})
		}
	}
	return rows
}

// FromDatabase groups rows by workplace.
func (m *WorkInfoMapper) FromDatabase(rows []*sqlite.WorkInfoRate) WorkInfos {
	var infos WorkInfos
	for _, row := range rows {
		infos.Add(row.Workplace, row.PayRate)
	}
	return infos
}

// TemplateMapper handles conversion between domain and database templates.
type TemplateMapper struct {
	shifts *ShiftMapper
}

// NewTemplateMapper creates a new TemplateMapper instance.
func NewTemplateMapper() *TemplateMapper {
	return &TemplateMapper{shifts: NewShiftMapper()}
}

// ToDatabase converts a domain Template to a database ShiftTemplate.
func (m *TemplateMapper) ToDatabase(t *Template) *sqlite.ShiftTemplate {
	return &sqlite.ShiftTemplate{Name: t.Name, Shift: m.shifts.ToDatabase(t.Shift)}
}

// FromDatabaseSlice converts rows, skipping and logging the invalid ones.
func (m *TemplateMapper) FromDatabaseSlice(rows []*sqlite.ShiftTemplate) []*Template {
	templates := make([]*Template, 0, len(rows))
	for _, row := range rows {
		s, err := m.shifts.FromDatabase(row.Shift)
		if err != nil {
			log.Warn().Err(err).Str("template", row.Name).Msg("skipping invalid shift template")
			continue
		}
		templates = append(templates, &Template{Name: row.Name, Shift: s})
	}
	return templates
}
