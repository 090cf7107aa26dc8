package cli

import (
	"context"
	"strconv"
	"strings"
)

// WorkInfoCommand handles the workinfo subcommands
type WorkInfoCommand struct {
	app *App
}

// NewWorkInfoCommand creates a new workinfo command handler
func NewWorkInfoCommand(app *App) *WorkInfoCommand {
	return &WorkInfoCommand{app: app}
}

// List prints each workplace with its known pay rates
func (c *WorkInfoCommand) List(ctx context.Context) error {
	infos := c.app.services.WorkInfoService.WorkInfos()
	if infos.Len() == 0 {
		c.app.printf("No workplaces recorded\n")
		return nil
	}

	table := NewTable(c.app.styles, TableColumn{Name: "Workplace"}, TableColumn{Name: "Pay rates", Align: AlignRight})
	for _, entry := range infos.Entries() {
		rates := make([]string, 0, len(entry.PayRates))
		for _, rate := range entry.PayRates {
			rates = append(rates, c.app.money.Format(rate))
		}
		table.AddRow(entry.Workplace, strings.Join(rates, ", "))
	}
	table.Render(c.app.out)
	return nil
}

// Add records a workplace and rate: args are workplace then rate
func (c *WorkInfoCommand) Add(ctx context.Context, args []string) error {
	workplace, err := requireArg(args, "workplace")
	if err != nil {
		return err
	}
	rateText, err := requireArg(args[1:], "rate")
	if err != nil {
		return err
	}
	rate, err := parseRate(rateText)
	if err != nil {
		return err
	}

	if err := c.app.services.WorkInfoService.Add(ctx, workplace, rate); err != nil {
		return err
	}
	c.app.success("Added %s at %s", strings.TrimSpace(workplace), c.app.money.Format(rate))
	return nil
}

// Delete removes one rate of a workplace, or the workplace when no rate is given
func (c *WorkInfoCommand) Delete(ctx context.Context, args []string) error {
	workplace, err := requireArg(args, "workplace")
	if err != nil {
		return err
	}

	var rate *float64
	if len(args) > 1 {
		parsed, err := parseRate(args[1])
		if err != nil {
			return err
		}
		rate = &parsed
	}

	if err := c.app.services.WorkInfoService.Delete(ctx, workplace, rate); err != nil {
		return err
	}
	if rate == nil {
		c.app.success("Deleted workplace %s", strings.TrimSpace(workplace))
		return nil
	}
	c.app.success("Deleted rate %s from %s", strconv.FormatFloat(*rate, 'f', -1, 64), strings.TrimSpace(workplace))
	return nil
}
