package cli

import (
	"context"
	"fmt"
	"time"

	"shiftpay/internal/domain"
	"shiftpay/internal/format"
	"shiftpay/internal/services"
	"shiftpay/internal/validation"
)

// CheckOutOptions describe the shift recorded at check-out
type CheckOutOptions struct {
	Workplace string
	PayRate   *float64
	Breaks    []string
	End       string
}

// SessionCommand handles checkin, checkout and status
type SessionCommand struct {
	app *App
}

// NewSessionCommand creates a new session command handler
func NewSessionCommand(app *App) *SessionCommand {
	return &SessionCommand{app: app}
}

// CheckIn starts a session now, or at the given clock time today
func (c *SessionCommand) CheckIn(ctx context.Context, at string) error {
	var start time.Time
	if at != "" {
		day, err := parseDay("")
		if err != nil {
			return err
		}
		if start, _, err = parseClock(at, day); err != nil {
			return err
		}
	}

	if c.app.services.SessionService.IsCheckedIn() {
		c.app.warn("Replacing the session started at %s", c.app.formatTime(*c.app.services.SessionService.CheckInTime()))
	}
	if err := c.app.services.SessionService.CheckIn(ctx, start); err != nil {
		return err
	}
	c.app.success("Checked in at %s", c.app.formatTime(*c.app.services.SessionService.CheckInTime()))
	return nil
}

// CheckOut ends the session and records it as a shift
func (c *SessionCommand) CheckOut(ctx context.Context, opts CheckOutOptions) error {
	ve := validation.NewValidationError()
	if opts.Workplace == "" {
		ve.AddRequiredError("workplace")
	}
	if opts.PayRate == nil {
		ve.AddRequiredError("rate")
	}
	if err := ve.OrNil(); err != nil {
		return err
	}

	breaks, err := parseBreaks(opts.Breaks)
	if err != nil {
		return err
	}
	out := services.CheckOut{
		Workplace:    opts.Workplace,
		PayRate:      *opts.PayRate,
		UnpaidBreaks: breaks,
	}
	if opts.End != "" {
		since := c.app.services.SessionService.CheckInTime()
		day := timeNow()
		if since != nil {
			day = since.In(time.Local)
		}
		end, isClock, err := parseClock(opts.End, day)
		if err != nil {
			return err
		}
		if isClock && since != nil && end.Before(*since) {
			end = end.AddDate(0, 0, 1)
		}
		out.EndTime = end
	}

	shift, err := c.app.services.SessionService.CheckOut(ctx, out)
	if err != nil {
		return err
	}
	c.app.rememberWorkInfo(ctx, shift)
	c.app.success("Checked out: %s at %s, billable %s, %s",
		shortID(shift.ID()), shift.Workplace(),
		format.Duration(shift.BillableDuration()), c.app.money.Format(shift.Income()))
	return nil
}

// Status prints whether a session is running and for how long
func (c *SessionCommand) Status(ctx context.Context) error {
	since := c.app.services.SessionService.CheckInTime()
	if since == nil {
		c.app.printf("Not checked in\n")
		return nil
	}

	elapsed := domain.ZeroDuration
	if now := timeNow(); now.After(*since) {
		if d, err := domain.DurationBetween(*since, now); err == nil {
			elapsed = d
		}
	}
	c.app.printf("%s\n", c.app.styles.Title.Render(fmt.Sprintf("Checked in since %s", c.app.formatTime(*since))))
	c.app.printf("%s\n", c.app.styles.Muted.Render("Elapsed: "+format.Duration(elapsed)))
	return nil
}
