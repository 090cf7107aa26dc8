package services

import (
	"time"

	"shiftpay/internal/domain"
)

// reportingServiceImpl implements the ReportingService interface
type reportingServiceImpl struct {
	shifts ShiftService
}

// NewReportingService creates a new ReportingService over the shifts store
func NewReportingService(shifts ShiftService) ReportingService {
	return &reportingServiceImpl{shifts: shifts}
}

// Range returns the shifts intersecting the open window (start, end).
func (r *reportingServiceImpl) Range(start, end time.Time) []*domain.Shift {
	inRange := []*domain.Shift{}
	for _, shift := range r.shifts.Shifts() {
		if shift.Overlaps(start, end) {
			inRange = append(inRange, shift)
		}
	}
	return inRange
}

// Day returns the shifts touching the calendar day of date, in date's location.
func (r *reportingServiceImpl) Day(date time.Time) []*domain.Shift {
	if date.IsZero() {
		return []*domain.Shift{}
	}
	start, end := DayBounds(date)
	return r.Range(start, end)
}

// Stats sums the shifts of the range that have ended by end. Worked also
// counts the in-range part of shifts still running past end.
func (r *reportingServiceImpl) Stats(start, end time.Time) Stats {
	var stats Stats
	for _, shift := range r.Range(start, end) {
		stats.Worked = stats.Worked.Add(shift.LimitedDuration(&start, &end))

		if shift.EndTime().After(end) {
			continue
		}
		stats.Count++
		stats.Income += shift.Income()
		stats.Total = stats.Total.Add(shift.Duration())
		stats.Billable = stats.Billable.Add(shift.BillableDuration())
		stats.Breaks = stats.Breaks.Add(shift.TotalBreakDuration())
	}
	return stats
}

// DayBounds returns local midnight of date's day and the following midnight.
func DayBounds(date time.Time) (time.Time, time.Time) {
	y, m, d := date.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, date.Location())
	return start, start.AddDate(0, 0, 1)
}
