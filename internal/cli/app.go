package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"shiftpay/internal/config"
	"shiftpay/internal/domain"
	"shiftpay/internal/errors"
	"shiftpay/internal/format"
	"shiftpay/internal/services"
	"shiftpay/internal/validation"
)

// timeNow is a variable that can be replaced in tests
var timeNow = time.Now

// IOStreams are the terminal streams commands read from and write to
type IOStreams struct {
	In     io.Reader
	Out    io.Writer
	ErrOut io.Writer
}

// App represents the main CLI application
type App struct {
	services *services.ServiceContainer
	config   *config.Config
	in       io.Reader
	out      io.Writer
	errOut   io.Writer
	styles   Styles
	money    *format.Money
	closer   io.Closer
}

// NewApp creates a new CLI application over a service container. closer,
// when set, releases the storage behind the services.
func NewApp(container *services.ServiceContainer, cfg *config.Config, streams IOStreams, closer io.Closer) (*App, error) {
	money, err := format.NewMoney(cfg.Shifts.Currency, cfg.Shifts.Locale)
	if err != nil {
		return nil, err
	}
	return &App{
		services: container,
		config:   cfg,
		in:       streams.In,
		out:      streams.Out,
		errOut:   streams.ErrOut,
		styles:   NewStyles(cfg.Display.Color),
		money:    money,
		closer:   closer,
	}, nil
}

// Load fetches every store and warns when stored shifts had to be skipped.
func (a *App) Load(ctx context.Context) error {
	result, err := a.services.FetchAll(ctx)
	if err != nil {
		return err
	}
	if !result.Success {
		a.warn("Some shifts could not be loaded")
	}
	return nil
}

// Close releases the storage
func (a *App) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

func (a *App) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(a.out, format, args...)
}

func (a *App) success(format string, args ...interface{}) {
	_, _ = fmt.Fprintln(a.out, a.styles.Success.Render(fmt.Sprintf(format, args...)))
}

func (a *App) warn(format string, args ...interface{}) {
	_, _ = fmt.Fprintln(a.errOut, a.styles.Warning.Render("warning: "+fmt.Sprintf(format, args...)))
}

// confirm asks a yes/no question on the input stream; anything but y/yes is no.
func (a *App) confirm(question string) bool {
	a.printf("%s [y/N]: ", question)
	if a.in == nil {
		return false
	}
	answer, err := bufio.NewReader(a.in).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

func (a *App) formatTime(t time.Time) string {
	return t.In(time.Local).Format(a.config.Display.TimeFormat)
}

func (a *App) formatDate(t time.Time) string {
	return t.In(time.Local).Format(a.config.Display.DateFormat)
}

func (a *App) formatClock(t time.Time) string {
	return t.In(time.Local).Format("15:04")
}

// rememberWorkInfo adds the shift's workplace and rate to the catalog.
// A failure only warns since the shift itself is already stored.
func (a *App) rememberWorkInfo(ctx context.Context, shift *domain.Shift) {
	if strings.TrimSpace(shift.Workplace()) == "" {
		return
	}
	infos := a.services.WorkInfoService.WorkInfos()
	for _, rate := range infos.Rates(strings.TrimSpace(shift.Workplace())) {
		if rate == shift.PayRate() {
			return
		}
	}
	if err := a.services.WorkInfoService.Add(ctx, shift.Workplace(), shift.PayRate()); err != nil {
		log.Warn().Err(err).Str("workplace", shift.Workplace()).Msg("failed to remember work info")
	}
}

// parseTimeShorthand parses time shorthand like "30m", "2h", "1d", etc.
func parseTimeShorthand(shorthand string) (time.Duration, error) {
	re := regexp.MustCompile(`^(\d+)(m|h|d|w|mo|y)$`)
	matches := re.FindStringSubmatch(shorthand)
	if matches == nil {
		return 0, fmt.Errorf("invalid time format: %s", shorthand)
	}

	value, err := strconv.Atoi(matches[1])
	if err != nil {
		return 0, fmt.Errorf("invalid number in time format: %s", shorthand)
	}

	unit := matches[2]
	var duration time.Duration

	switch unit {
	case "m":
		duration = time.Duration(value) * time.Minute
	case "h":
		duration = time.Duration(value) * time.Hour
	case "d":
		duration = time.Duration(value) * 24 * time.Hour
	case "w":
		duration = time.Duration(value) * 7 * 24 * time.Hour
	case "mo":
		duration = time.Duration(value) * 30 * 24 * time.Hour
	case "y":
		duration = time.Duration(value) * 365 * 24 * time.Hour
	default:
		return 0, fmt.Errorf("invalid time unit: %s", unit)
	}

	return duration, nil
}

var clockPattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)

// parseDay reads a calendar day; empty means today.
func parseDay(text string) (time.Time, error) {
	now := timeNow()
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "", "today":
		return now, nil
	case "yesterday":
		return now.AddDate(0, 0, -1), nil
	}
	day, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(text), time.Local)
	if err != nil {
		return time.Time{}, errors.NewInvalidInputError("date", text, "expected YYYY-MM-DD, today or yesterday")
	}
	return day, nil
}

// parseClock reads "HH:MM" on day, or any full date-time the shift parser accepts.
func parseClock(text string, day time.Time) (time.Time, bool, error) {
	text = strings.TrimSpace(text)
	if m := clockPattern.FindStringSubmatch(text); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		if hour > 23 || minute > 59 {
			return time.Time{}, false, errors.NewInvalidInputError("time", text, "not a valid time of day")
		}
		y, mo, d := day.Date()
		return time.Date(y, mo, d, hour, minute, 0, 0, time.Local), true, nil
	}
	if t, ok := domain.ParseInstant(text); ok {
		return t, false, nil
	}
	return time.Time{}, false, errors.NewInvalidInputError("time", text, "expected HH:MM or a date-time such as 2006-01-02 15:04")
}

// parseShiftTimes resolves start and end. An end clock earlier than the
// start clock is taken to be on the next day.
func parseShiftTimes(startText, endText string, day time.Time) (time.Time, time.Time, error) {
	start, _, err := parseClock(startText, day)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, endIsClock, err := parseClock(endText, start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if endIsClock && end.Before(start) {
		end = end.AddDate(0, 0, 1)
	}
	return start, end, nil
}

func parseBreaks(texts []string) ([]domain.Duration, error) {
	var breaks []domain.Duration
	for _, text := range texts {
		for _, part := range strings.Split(text, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			d, err := domain.ParseDuration(part)
			if err != nil {
				return nil, err
			}
			if !d.IsZero() {
				breaks = append(breaks, d)
			}
		}
	}
	return breaks, nil
}

func parseRate(text string) (float64, error) {
	rate, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return 0, errors.NewInvalidInputError("payRate", text, "should be a number")
	}
	return rate, nil
}

// PeriodOptions select a time range. Day wins over From/To, which win over
// a shorthand Period such as "1w".
type PeriodOptions struct {
	Period string
	From   string
	To     string
	Day    string
}

func (p PeriodOptions) isSet() bool {
	return p.Period != "" || p.From != "" || p.To != "" || p.Day != ""
}

// resolve returns the selected range, or fallback when nothing is selected.
func (p PeriodOptions) resolve(fallback func(now time.Time) (time.Time, time.Time)) (time.Time, time.Time, error) {
	now := timeNow()
	switch {
	case p.Day != "":
		day, err := parseDay(p.Day)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		start, end := services.DayBounds(day)
		return start, end, nil
	case p.From != "" || p.To != "":
		start, end := time.Time{}, now
		if p.From != "" {
			from, err := parseBound(p.From)
			if err != nil {
				return time.Time{}, time.Time{}, err
			}
			start = from
		}
		if p.To != "" {
			to, err := parseBound(p.To)
			if err != nil {
				return time.Time{}, time.Time{}, err
			}
			end = to
		}
		if err := validation.NewShiftValidator().ValidateSearchRange(&start, &end); err != nil {
			return time.Time{}, time.Time{}, err
		}
		return start, end, nil
	case p.Period != "":
		if err := validation.NewShiftValidator().ValidateTimeShorthand(p.Period); err != nil {
			return time.Time{}, time.Time{}, err
		}
		d, err := parseTimeShorthand(p.Period)
		if err != nil {
			return time.Time{}, time.Time{}, errors.NewInvalidInputError("period", p.Period, "use 30m, 2h, 1d, 2w, 3mo or 1y")
		}
		return now.Add(-d), now, nil
	}
	start, end := fallback(now)
	return start, end, nil
}

// parseBound reads a date (its midnight) or a full date-time.
func parseBound(text string) (time.Time, error) {
	if day, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(text), time.Local); err == nil {
		return day, nil
	}
	if t, ok := domain.ParseInstant(text); ok {
		return t, nil
	}
	return time.Time{}, errors.NewInvalidInputError("date", text, "expected YYYY-MM-DD or a date-time")
}

func currentMonth(now time.Time) (time.Time, time.Time) {
	y, m, _ := now.Date()
	start := time.Date(y, m, 1, 0, 0, 0, 0, now.Location())
	return start, start.AddDate(0, 1, 0)
}

func sortByStart(shifts []*domain.Shift) {
	sort.SliceStable(shifts, func(i, j int) bool {
		return shifts[i].StartTime().Before(shifts[j].StartTime())
	})
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// findShift accepts a full id or a unique prefix as shown by list.
func (a *App) findShift(id string) (*domain.Shift, error) {
	if shift, err := a.services.ShiftService.Get(id); err == nil {
		return shift, nil
	}
	var match *domain.Shift
	for _, shift := range a.services.ShiftService.Shifts() {
		if id != "" && strings.HasPrefix(shift.ID(), id) {
			if match != nil {
				return nil, errors.NewInvalidInputError("id", id, "prefix matches more than one shift")
			}
			match = shift
		}
	}
	if match == nil {
		return nil, errors.NewNotFoundError("shift", id)
	}
	return match, nil
}
