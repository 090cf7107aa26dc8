package sqlite

import (
	"fmt"
)

// Scanner interface defines the common scanning behavior for both sql.Row and sql.Rows
type Scanner interface {
	Scan(dest ...interface{}) error
}

// Rows interface defines the common behavior for sql.Rows
type Rows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

// ScanShift scans id, workplace, pay_rate, start_time, end_time, unpaid_breaks
func ScanShift(scanner Scanner) (*Shift, error) {
	shift := &Shift{}
	var start, end, breaks string

	if err := scanner.Scan(&shift.ID, &shift.Workplace, &shift.PayRate, &start, &end, &breaks); err != nil {
		return nil, err
	}
	if err := fillShiftTimes(shift, start, end); err != nil {
		return nil, err
	}
	shift.UnpaidBreaks = ParseBreaksFromDB(breaks)
	return shift, nil
}

// ScanShifts scans multiple shifts from database rows
func ScanShifts(rows Rows) ([]*Shift, error) {
	return scanAll(rows, ScanShift)
}

// ScanShiftTemplate scans name followed by the shift columns
func ScanShiftTemplate(scanner Scanner) (*ShiftTemplate, error) {
	tpl := &ShiftTemplate{}
	var start, end, breaks string

	err := scanner.Scan(&tpl.Name, &tpl.Shift.ID, &tpl.Shift.Workplace, &tpl.Shift.PayRate, &start, &end, &breaks)
	if err != nil {
		return nil, err
	}
	if err := fillShiftTimes(&tpl.Shift, start, end); err != nil {
		return nil, err
	}
	tpl.Shift.UnpaidBreaks = ParseBreaksFromDB(breaks)
	return tpl, nil
}

// ScanShiftTemplates scans multiple templates from database rows
func ScanShiftTemplates(rows Rows) ([]*ShiftTemplate, error) {
	return scanAll(rows, ScanShiftTemplate)
}

// ScanWorkInfoRate scans workplace, pay_rate
func ScanWorkInfoRate(scanner Scanner) (*WorkInfoRate, error) {
	rate := &WorkInfoRate{}
	if err := scanner.Scan(&rate.Workplace, &rate.PayRate); err != nil {
		return nil, err
	}
	return rate, nil
}

// ScanWorkInfoRates scans multiple work info rates from database rows
func ScanWorkInfoRates(rows Rows) ([]*WorkInfoRate, error) {
	return scanAll(rows, ScanWorkInfoRate)
}

// ScanSetting scans key, value
func ScanSetting(scanner Scanner) (*Setting, error) {
	setting := &Setting{}
	if err := scanner.Scan(&setting.Key, &setting.Value); err != nil {
		return nil, err
	}
	return setting, nil
}

func scanAll[T any](rows Rows, scan func(Scanner) (*T, error)) ([]*T, error) {
	var items []*T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func fillShiftTimes(shift *Shift, start, end string) error {
	var err error
	if shift.StartTime, err = ParseTimeFromDB(start); err != nil {
		return fmt.Errorf("shift %s start_time: %w", shift.ID, err)
	}
	if shift.EndTime, err = ParseTimeFromDB(end); err != nil {
		return fmt.Errorf("shift %s end_time: %w", shift.ID, err)
	}
	return nil
}
