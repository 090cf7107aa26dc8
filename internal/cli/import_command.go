package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"shiftpay/internal/domain"
	"shiftpay/internal/errors"
)

// ImportCommand handles the import command
type ImportCommand struct {
	app *App
}

// NewImportCommand creates a new import command handler
func NewImportCommand(app *App) *ImportCommand {
	return &ImportCommand{app: app}
}

// Execute imports shifts from a JSON file. Shifts whose id is already
// stored or appeared earlier in the file are skipped, as are records that
// cannot be parsed.
func (c *ImportCommand) Execute(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.NewInvalidInputError("file", path, err.Error())
	}
	records, err := decodeShiftList(data)
	if err != nil {
		return err
	}

	result := domain.ParseAll(records)
	unreadable := len(records) - len(result.Shifts)

	fresh := make([]*domain.Shift, 0, len(result.Shifts))
	seen := make(map[string]bool, len(result.Shifts))
	duplicates := 0
	for _, shift := range result.Shifts {
		_, err := c.app.services.ShiftService.Get(shift.ID())
		if err == nil || seen[shift.ID()] {
			duplicates++
			continue
		}
		seen[shift.ID()] = true
		fresh = append(fresh, shift)
	}

	added, err := c.app.services.ShiftService.Add(ctx, fresh...)
	if err != nil {
		return err
	}
	for _, shift := range added {
		c.app.rememberWorkInfo(ctx, shift)
	}

	c.app.success("Imported %d shifts", len(added))
	if duplicates > 0 {
		c.app.warn("Skipped %d shifts whose id was already stored or repeated", duplicates)
	}
	if unreadable > 0 {
		c.app.warn("Skipped %d records that could not be read", unreadable)
	}
	return nil
}

// decodeShiftList accepts a JSON array of shifts, or an object holding one
// under "shifts" or "entries". The list may itself be a JSON-encoded string,
// which is how older exports stored it.
func decodeShiftList(data []byte) ([]any, error) {
	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, errors.NewInvalidInputError("file", "", fmt.Sprintf("not valid JSON: %v", err))
	}

	if obj, ok := decoded.(map[string]any); ok {
		decoded = nil
		for _, key := range []string{"shifts", "entries"} {
			if v, found := obj[key]; found {
				decoded = v
				break
			}
		}
	}
	if text, ok := decoded.(string); ok {
		if err := json.Unmarshal([]byte(text), &decoded); err != nil {
			return nil, errors.NewInvalidInputError("file", "", "embedded shift list is not valid JSON")
		}
	}

	list, ok := decoded.([]any)
	if !ok {
		return nil, errors.NewInvalidInputError("file", "", "expected a list of shifts")
	}
	return list, nil
}
