package cli

import (
	"context"
	"time"

	"shiftpay/internal/domain"
	"shiftpay/internal/errors"
	"shiftpay/internal/format"
)

// EditOptions carry the fields to change; nil or empty fields are kept.
type EditOptions struct {
	ID        string
	Workplace *string
	PayRate   *float64
	Date      string
	Start     string
	End       string
	Breaks    []string
	NoBreaks  bool
}

// EditCommand handles the edit command
type EditCommand struct {
	app *App
}

// NewEditCommand creates a new edit command handler
func NewEditCommand(app *App) *EditCommand {
	return &EditCommand{app: app}
}

// Execute runs the edit command
func (c *EditCommand) Execute(ctx context.Context, opts EditOptions) error {
	current, err := c.app.findShift(opts.ID)
	if err != nil {
		return err
	}

	params, changed, err := c.apply(current, opts)
	if err != nil {
		return err
	}
	if !changed {
		return errors.NewInvalidInputError("edit", opts.ID, "nothing to change")
	}
	edited, err := domain.NewShift(params)
	if err != nil {
		return err
	}

	updated, err := c.app.services.ShiftService.Update(ctx, current.ID(), edited)
	if err != nil {
		return err
	}
	c.app.rememberWorkInfo(ctx, updated)
	c.app.success("Updated shift %s at %s: %s to %s, billable %s, %s",
		shortID(updated.ID()), updated.Workplace(),
		c.app.formatTime(updated.StartTime()), c.app.formatTime(updated.EndTime()),
		format.Duration(updated.BillableDuration()), c.app.money.Format(updated.Income()))
	return nil
}

func (c *EditCommand) apply(current *domain.Shift, opts EditOptions) (domain.ShiftParams, bool, error) {
	params := current.Params()
	changed := false

	if opts.Workplace != nil {
		params.Workplace = *opts.Workplace
		changed = true
	}
	if opts.PayRate != nil {
		params.PayRate = *opts.PayRate
		changed = true
	}

	if opts.Date != "" || opts.Start != "" || opts.End != "" {
		day := current.StartTime().In(time.Local)
		if opts.Date != "" {
			var err error
			if day, err = parseDay(opts.Date); err != nil {
				return params, false, err
			}
		}
		startText := opts.Start
		if startText == "" {
			startText = c.app.formatClock(current.StartTime())
		}
		endText := opts.End
		if endText == "" {
			endText = c.app.formatClock(current.EndTime())
		}
		start, end, err := parseShiftTimes(startText, endText, day)
		if err != nil {
			return params, false, err
		}
		params.StartTime, params.EndTime = start, end
		changed = true
	}

	switch {
	case opts.NoBreaks:
		params.UnpaidBreaks = nil
		changed = true
	case len(opts.Breaks) > 0:
		breaks, err := parseBreaks(opts.Breaks)
		if err != nil {
			return params, false, err
		}
		params.UnpaidBreaks = breaks
		changed = true
	}

	return params, changed, nil
}
