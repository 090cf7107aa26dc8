package cli

import (
	"context"
	"time"

	"shiftpay/internal/domain"
	"shiftpay/internal/errors"
	"shiftpay/internal/format"
	"shiftpay/internal/validation"
)

// AddOptions describe a shift to record. With a template, unset fields are
// taken from the template and its times are moved onto Date.
type AddOptions struct {
	Workplace string
	PayRate   *float64
	Date      string
	Start     string
	End       string
	Breaks    []string
	Template  string
}

// AddCommand handles the add command
type AddCommand struct {
	app *App
}

// NewAddCommand creates a new add command handler
func NewAddCommand(app *App) *AddCommand {
	return &AddCommand{app: app}
}

// Execute runs the add command
func (c *AddCommand) Execute(ctx context.Context, opts AddOptions) error {
	params, err := c.buildParams(opts)
	if err != nil {
		return err
	}
	shift, err := domain.NewShift(params)
	if err != nil {
		return err
	}

	added, err := c.app.services.ShiftService.Add(ctx, shift)
	if err != nil {
		return err
	}
	for _, s := range added {
		c.app.rememberWorkInfo(ctx, s)
		c.app.success("Added shift %s at %s: %s to %s, billable %s, %s",
			shortID(s.ID()), s.Workplace(),
			c.app.formatTime(s.StartTime()), c.app.formatTime(s.EndTime()),
			format.Duration(s.BillableDuration()), c.app.money.Format(s.Income()))
	}
	return nil
}

func (c *AddCommand) buildParams(opts AddOptions) (domain.ShiftParams, error) {
	day, err := parseDay(opts.Date)
	if err != nil {
		return domain.ShiftParams{}, err
	}

	var params domain.ShiftParams
	if opts.Template != "" {
		tpl, err := c.app.services.TemplateService.Get(opts.Template)
		if err != nil {
			return domain.ShiftParams{}, err
		}
		params = templateParams(tpl, day)
	} else {
		ve := validation.NewValidationError()
		if opts.Workplace == "" {
			ve.AddRequiredError("workplace")
		}
		if opts.PayRate == nil {
			ve.AddRequiredError("rate")
		}
		if opts.Start == "" {
			ve.AddRequiredError("start")
		}
		if opts.End == "" {
			ve.AddRequiredError("end")
		}
		if err := ve.OrNil(); err != nil {
			return domain.ShiftParams{}, err
		}
	}

	if opts.Workplace != "" {
		params.Workplace = opts.Workplace
	}
	if opts.PayRate != nil {
		params.PayRate = *opts.PayRate
	}
	if opts.Start != "" || opts.End != "" {
		startText, endText := opts.Start, opts.End
		if startText == "" {
			startText = params.StartTime.Format(time.RFC3339)
		}
		if endText == "" {
			endText = params.EndTime.Format(time.RFC3339)
		}
		params.StartTime, params.EndTime, err = parseShiftTimes(startText, endText, day)
		if err != nil {
			return domain.ShiftParams{}, err
		}
	}
	if len(opts.Breaks) > 0 {
		if params.UnpaidBreaks, err = parseBreaks(opts.Breaks); err != nil {
			return domain.ShiftParams{}, err
		}
	}
	return params, nil
}

// templateParams copies the template onto day, keeping its local start
// clock and its length. The copy gets a fresh id.
func templateParams(tpl *domain.Template, day time.Time) domain.ShiftParams {
	params := tpl.Shift.Params()
	params.ID = ""

	start := params.StartTime.In(time.Local)
	y, m, d := day.Date()
	moved := time.Date(y, m, d, start.Hour(), start.Minute(), 0, 0, time.Local)
	params.EndTime = moved.Add(params.EndTime.Sub(params.StartTime))
	params.StartTime = moved
	return params
}

func requireArg(args []string, name string) (string, error) {
	if len(args) == 0 || args[0] == "" {
		return "", errors.NewInvalidInputError(name, "", name+" is required")
	}
	return args[0], nil
}
