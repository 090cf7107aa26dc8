package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"shiftpay/internal/format"
	"shiftpay/internal/services"
)

// StatsOptions select the range to summarize; the current month by default
type StatsOptions struct {
	PeriodOptions
	JSON bool
}

// StatsCommand handles the stats command
type StatsCommand struct {
	app *App
}

// NewStatsCommand creates a new stats command handler
func NewStatsCommand(app *App) *StatsCommand {
	return &StatsCommand{app: app}
}

type statsReport struct {
	From  time.Time      `json:"from"`
	To    time.Time      `json:"to"`
	Stats services.Stats `json:"stats"`
	// Currency of Stats.Income
	Currency string `json:"currency"`
}

// Execute runs the stats command
func (c *StatsCommand) Execute(ctx context.Context, opts StatsOptions) error {
	start, end, err := opts.resolve(currentMonth)
	if err != nil {
		return err
	}
	stats := c.app.services.ReportingService.Stats(start, end)

	if opts.JSON {
		encoded, err := json.MarshalIndent(statsReport{From: start, To: end, Stats: stats, Currency: c.app.money.Code()}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode stats: %w", err)
		}
		c.app.printf("%s\n", encoded)
		return nil
	}

	c.app.printf("%s\n", c.app.styles.Title.Render(fmt.Sprintf("Shifts from %s to %s", c.app.formatTime(start), c.app.formatTime(end))))

	table := NewTable(c.app.styles, TableColumn{Name: "Metric"}, TableColumn{Name: "Value", Align: AlignRight})
	table.AddRow("Shifts", strconv.Itoa(stats.Count))
	table.AddRow("Total time", format.Duration(stats.Total))
	table.AddRow("Unpaid breaks", format.Duration(stats.Breaks))
	table.AddRow("Billable time", format.Duration(stats.Billable))
	table.AddRow("Worked in range", format.Duration(stats.Worked))
	table.AddRow("Income before tax", c.app.money.Format(stats.Income))
	table.Render(c.app.out)
	return nil
}
