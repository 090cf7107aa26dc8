package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"shiftpay/internal/domain"
	"shiftpay/internal/format"
)

// ListOptions select which shifts to list and how
type ListOptions struct {
	PeriodOptions
	Workplace string
	JSON      bool
}

// ListCommand handles the list command
type ListCommand struct {
	app *App
}

// NewListCommand creates a new list command handler
func NewListCommand(app *App) *ListCommand {
	return &ListCommand{app: app}
}

// Execute runs the list command
func (c *ListCommand) Execute(ctx context.Context, opts ListOptions) error {
	shifts, err := c.selectShifts(opts)
	if err != nil {
		return err
	}

	if opts.JSON {
		encoded, err := json.MarshalIndent(domain.ToRecords(shifts), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode shifts: %w", err)
		}
		c.app.printf("%s\n", encoded)
		return nil
	}

	return c.printShifts(shifts)
}

func (c *ListCommand) selectShifts(opts ListOptions) ([]*domain.Shift, error) {
	var shifts []*domain.Shift
	if opts.isSet() {
		start, end, err := opts.resolve(nil)
		if err != nil {
			return nil, err
		}
		shifts = c.app.services.ReportingService.Range(start, end)
	} else {
		shifts = c.app.services.ShiftService.Shifts()
	}

	if opts.Workplace != "" {
		filtered := shifts[:0]
		for _, s := range shifts {
			if strings.Contains(strings.ToLower(s.Workplace()), strings.ToLower(opts.Workplace)) {
				filtered = append(filtered, s)
			}
		}
		shifts = filtered
	}

	sortByStart(shifts)
	return shifts, nil
}

// printShifts prints one row per shift, oldest first
func (c *ListCommand) printShifts(shifts []*domain.Shift) error {
	if len(shifts) == 0 {
		c.app.printf("No shifts found\n")
		return nil
	}

	table := NewTable(c.app.styles,
		TableColumn{Name: "ID"},
		TableColumn{Name: "Date"},
		TableColumn{Name: "Time"},
		TableColumn{Name: "Workplace"},
		TableColumn{Name: "Rate", Align: AlignRight},
		TableColumn{Name: "Breaks", Align: AlignRight},
		TableColumn{Name: "Billable", Align: AlignRight},
		TableColumn{Name: "Income", Align: AlignRight},
	)

	var income float64
	billable := domain.ZeroDuration
	for _, s := range shifts {
		table.AddRow(
			shortID(s.ID()),
			c.app.formatDate(s.StartTime()),
			c.clockRange(s),
			s.Workplace(),
			strconv.FormatFloat(s.PayRate(), 'f', -1, 64),
			format.Duration(s.TotalBreakDuration()),
			format.Duration(s.BillableDuration()),
			c.app.money.Format(s.Income()),
		)
		income += s.Income()
		billable = billable.Add(s.BillableDuration())
	}
	table.Render(c.app.out)

	c.app.printf("%s\n", c.app.styles.Muted.Render(fmt.Sprintf("%d shifts, %s billable, %s",
		len(shifts), format.Duration(billable), c.app.money.Format(income))))
	return nil
}

// clockRange renders "09:00-17:00", marking ends on a later day with "+N".
func (c *ListCommand) clockRange(s *domain.Shift) string {
	start := s.StartTime().In(time.Local)
	end := s.EndTime().In(time.Local)
	text := c.app.formatClock(start) + "-" + c.app.formatClock(end)

	sy, sm, sd := start.Date()
	ey, em, ed := end.Date()
	startDay := time.Date(sy, sm, sd, 0, 0, 0, 0, time.UTC)
	endDay := time.Date(ey, em, ed, 0, 0, 0, 0, time.UTC)
	if days := int(endDay.Sub(startDay).Hours() / 24); days > 0 {
		text += "+" + strconv.Itoa(days)
	}
	return text
}
