package cli

import (
	"context"
	"fmt"

	"shiftpay/internal/errors"
)

// DeleteOptions select shifts by id or prefix, or every shift with All
type DeleteOptions struct {
	IDs []string
	All bool
	// Yes skips the confirmation for All
	Yes bool
}

// DeleteCommand handles the delete command
type DeleteCommand struct {
	app *App
}

// NewDeleteCommand creates a new delete command handler
func NewDeleteCommand(app *App) *DeleteCommand {
	return &DeleteCommand{app: app}
}

// Execute runs the delete command
func (c *DeleteCommand) Execute(ctx context.Context, opts DeleteOptions) error {
	if opts.All {
		return c.deleteAll(ctx, opts.Yes)
	}
	if len(opts.IDs) == 0 {
		return errors.NewInvalidInputError("id", "", "give at least one shift id, or --all")
	}

	ids := make([]string, 0, len(opts.IDs))
	seen := make(map[string]bool, len(opts.IDs))
	for _, id := range opts.IDs {
		shift, err := c.app.findShift(id)
		if err != nil {
			return err
		}
		if !seen[shift.ID()] {
			seen[shift.ID()] = true
			ids = append(ids, shift.ID())
		}
	}

	if len(ids) == 1 {
		if err := c.app.services.ShiftService.Delete(ctx, ids[0]); err != nil {
			return fmt.Errorf("failed to delete shift: %w", err)
		}
		c.app.success("Deleted shift %s", shortID(ids[0]))
		return nil
	}

	if err := c.app.services.ShiftService.DeleteMany(ctx, ids); err != nil {
		return fmt.Errorf("failed to delete shifts: %w", err)
	}
	c.app.success("Deleted %d shifts", len(ids))
	return nil
}

func (c *DeleteCommand) deleteAll(ctx context.Context, yes bool) error {
	count := len(c.app.services.ShiftService.Shifts())
	if count == 0 {
		c.app.printf("No shifts to delete.\n")
		return nil
	}
	if !yes && !c.app.confirm(fmt.Sprintf("Delete all %d shifts?", count)) {
		c.app.printf("Delete cancelled.\n")
		return nil
	}
	if err := c.app.services.ShiftService.Clear(ctx); err != nil {
		return fmt.Errorf("failed to delete shifts: %w", err)
	}
	c.app.success("Deleted %d shifts", count)
	return nil
}
