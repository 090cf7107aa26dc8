package cli

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"shiftpay/internal/domain"
	"shiftpay/internal/errors"
)

// ExportOptions select the shifts, the encoding and the destination
type ExportOptions struct {
	PeriodOptions
	Format string
	// Output is a file path; empty writes to the terminal.
	Output string
}

// ExportCommand handles the export command
type ExportCommand struct {
	app *App
}

// NewExportCommand creates a new export command handler
func NewExportCommand(app *App) *ExportCommand {
	return &ExportCommand{app: app}
}

// Execute runs the export command
func (c *ExportCommand) Execute(ctx context.Context, opts ExportOptions) error {
	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = "json"
	}
	encode, ok := exporters[format]
	if !ok {
		return errors.NewInvalidInputError("format", opts.Format, "supported formats are json, csv and yaml")
	}

	shifts := c.app.services.ShiftService.Shifts()
	if opts.isSet() {
		start, end, err := opts.resolve(nil)
		if err != nil {
			return err
		}
		shifts = c.app.services.ReportingService.Range(start, end)
	}
	sortByStart(shifts)

	if opts.Output == "" {
		return encode(c.app.out, shifts)
	}

	file, err := os.Create(opts.Output)
	if err != nil {
		return errors.NewInvalidInputError("output", opts.Output, err.Error())
	}
	if err := encode(file, shifts); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", opts.Output, err)
	}
	c.app.success("Exported %d shifts to %s", len(shifts), opts.Output)
	return nil
}

type exporter func(w io.Writer, shifts []*domain.Shift) error

var exporters = map[string]exporter{
	"json": exportJSON,
	"csv":  exportCSV,
	"yaml": exportYAML,
	"yml":  exportYAML,
}

func exportJSON(w io.Writer, shifts []*domain.Shift) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(domain.ToRecords(shifts)); err != nil {
		return fmt.Errorf("failed to encode shifts: %w", err)
	}
	return nil
}

func exportYAML(w io.Writer, shifts []*domain.Shift) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(domain.ToRecords(shifts)); err != nil {
		return fmt.Errorf("failed to encode shifts: %w", err)
	}
	return enc.Close()
}

var csvHeader = []string{"id", "workplace", "payRate", "startTime", "endTime", "unpaidBreaks", "billable", "income"}

func exportCSV(w io.Writer, shifts []*domain.Shift) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, s := range shifts {
		record := s.ToRecord()
		row := []string{
			record.ID,
			record.Workplace,
			strconv.FormatFloat(record.PayRate, 'f', -1, 64),
			record.StartTime,
			record.EndTime,
			strings.Join(record.UnpaidBreaks, ";"),
			s.BillableDuration().String(),
			strconv.FormatFloat(s.Income(), 'f', 2, 64),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}
