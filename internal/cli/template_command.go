package cli

import (
	"context"
	"strings"

	"shiftpay/internal/domain"
	"shiftpay/internal/format"
)

// TemplateAddOptions name a template and describe its shift, either through
// the same fields as add or by copying an existing shift.
type TemplateAddOptions struct {
	Name      string
	FromShift string
	Shift     AddOptions
}

// TemplateCommand handles the template subcommands
type TemplateCommand struct {
	app *App
}

// NewTemplateCommand creates a new template command handler
func NewTemplateCommand(app *App) *TemplateCommand {
	return &TemplateCommand{app: app}
}

// List prints the stored templates by name
func (c *TemplateCommand) List(ctx context.Context) error {
	templates := c.app.services.TemplateService.Templates()
	if len(templates) == 0 {
		c.app.printf("No templates saved\n")
		return nil
	}

	table := NewTable(c.app.styles,
		TableColumn{Name: "Name"},
		TableColumn{Name: "Workplace"},
		TableColumn{Name: "Time"},
		TableColumn{Name: "Breaks", Align: AlignRight},
		TableColumn{Name: "Rate", Align: AlignRight},
	)
	for _, tpl := range templates {
		table.AddRow(
			tpl.Name,
			tpl.Shift.Workplace(),
			c.app.formatClock(tpl.Shift.StartTime())+"-"+c.app.formatClock(tpl.Shift.EndTime()),
			format.Duration(tpl.Shift.TotalBreakDuration()),
			c.app.money.Format(tpl.Shift.PayRate()),
		)
	}
	table.Render(c.app.out)
	return nil
}

// Add stores a template, replacing one with the same name
func (c *TemplateCommand) Add(ctx context.Context, opts TemplateAddOptions) error {
	var shift *domain.Shift
	if opts.FromShift != "" {
		found, err := c.app.findShift(opts.FromShift)
		if err != nil {
			return err
		}
		shift = found
	} else {
		opts.Shift.Template = ""
		params, err := NewAddCommand(c.app).buildParams(opts.Shift)
		if err != nil {
			return err
		}
		if shift, err = domain.NewShift(params); err != nil {
			return err
		}
	}

	tpl, err := c.app.services.TemplateService.Add(ctx, opts.Name, shift)
	if err != nil {
		return err
	}
	c.app.success("Saved template %s: %s, %s-%s", tpl.Name, tpl.Shift.Workplace(),
		c.app.formatClock(tpl.Shift.StartTime()), c.app.formatClock(tpl.Shift.EndTime()))
	return nil
}

// Delete removes a template by name
func (c *TemplateCommand) Delete(ctx context.Context, args []string) error {
	name, err := requireArg(args, "name")
	if err != nil {
		return err
	}
	if err := c.app.services.TemplateService.Delete(ctx, name); err != nil {
		return err
	}
	c.app.success("Deleted template %s", strings.TrimSpace(name))
	return nil
}
