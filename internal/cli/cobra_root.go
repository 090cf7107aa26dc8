package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"shiftpay/internal/config"
	"shiftpay/internal/logging"
)

// AppFactory builds the application for a loaded configuration
type AppFactory func(ctx context.Context, cfg *config.Config, streams IOStreams) (*App, error)

// ConfigLoader loads the configuration from an optional file plus flag overrides
type ConfigLoader func(configFile string, overrides *config.ConfigOverrides) (*config.Config, error)

// RootOptions wire the root command to its environment
type RootOptions struct {
	NewApp     AppFactory
	LoadConfig ConfigLoader
	Streams    IOStreams
}

// RootCommand represents the base command when called without any subcommands
type RootCommand struct {
	cmd        *cobra.Command
	newApp     AppFactory
	loadConfig ConfigLoader
	streams    IOStreams
	errors     *ErrorHandler

	config *config.Config
	app    *App
}

// LoadConfig is the default ConfigLoader: defaults, then the YAML file,
// then SHIFTPAY_* variables, then flags.
func LoadConfig(configFile string, overrides *config.ConfigOverrides) (*config.Config, error) {
	loader := config.NewLoader()
	if configFile != "" {
		loader = loader.WithConfigFile(configFile)
	}
	return loader.LoadWithOverrides(overrides)
}

// NewRootCommand creates the root cobra command with global flags
func NewRootCommand(opts RootOptions) *RootCommand {
	root := &RootCommand{
		newApp:     opts.NewApp,
		loadConfig: opts.LoadConfig,
		streams:    opts.Streams,
		errors:     NewErrorHandler(),
	}
	if root.loadConfig == nil {
		root.loadConfig = LoadConfig
	}
	if root.streams.In == nil {
		root.streams.In = os.Stdin
	}
	if root.streams.Out == nil {
		root.streams.Out = os.Stdout
	}
	if root.streams.ErrOut == nil {
		root.streams.ErrOut = os.Stderr
	}

	root.cmd = &cobra.Command{
		Use:   "shiftpay",
		Short: "Record work shifts and see what they pay",
		Long: `ShiftPay records work shifts with their unpaid breaks and pay rate, and
reports billable time and income before tax.

FEATURES:
  • Add, edit and delete shifts, or check in and out as you work
  • Per-day, per-range and per-month statistics
  • Remembered workplaces and pay rates, and reusable shift templates
  • Local storage in SQLite, BoltDB or Redis, optionally synced to a remote API
  • Import and export as JSON, CSV or YAML

EXAMPLES:
  shiftpay add -w Cafe -r 12.5 -s 09:00 -e 17:00 -b 0:30   # Record today's shift
  shiftpay add -t morning -d yesterday                     # Record a shift from a template
  shiftpay list 1w                                         # Shifts from the last week
  shiftpay stats --from 2024-03-01 --to 2024-04-01         # Totals for March
  shiftpay checkin                                         # Start a session now
  shiftpay checkout -w Cafe -r 12.5 -b 0:15                # End it and record the shift
  shiftpay export --format csv -o shifts.csv               # Export every shift

CONFIGURATION:
  Configuration follows this priority order: flags > environment > config file > defaults.
  The config file defaults to ~/.shiftpay/config.yaml; .env files are read too.

    SHIFTPAY_STORAGE_DRIVER                sqlite, bolt, redis or memory (default: sqlite)
    SHIFTPAY_STORAGE_DIR                   Data directory (default: ~/.shiftpay)
    SHIFTPAY_STORAGE_REDIS_URL             Redis URL for the redis driver
    SHIFTPAY_REMOTE_BASE_URL               Remote API; shifts sync when a token is set too
    SHIFTPAY_REMOTE_TOKEN                  Remote API bearer token
    SHIFTPAY_SHIFTS_BILLABLE_POLICY        clamp or reject (default: clamp)
    SHIFTPAY_SHIFTS_CURRENCY               ISO currency code (default: EUR)
    SHIFTPAY_LOGGING_LEVEL                 Log level (default: warn)
    SHIFTPAY_ENV                           development, testing or production

TIME FORMATS:
  Periods use shorthand: 30m, 2h, 1d, 2w, 3mo, 1y
  Times are HH:MM on the chosen --date, or full date-times such as 2024-03-04 09:00.
  Breaks are H:MM, comma separated or repeated.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !needsApp(cmd) {
				return nil
			}
			return root.setup(cmd)
		},
	}
	root.cmd.SetIn(root.streams.In)
	root.cmd.SetOut(root.streams.Out)
	root.cmd.SetErr(root.streams.ErrOut)

	root.addGlobalFlags()
	root.addSubcommands()

	return root
}

// Command exposes the cobra command, mainly for tests and completion
func (r *RootCommand) Command() *cobra.Command {
	return r.cmd
}

// SetArgs replaces the command line arguments
func (r *RootCommand) SetArgs(args []string) {
	r.cmd.SetArgs(args)
}

// Execute runs the root command and releases the storage afterwards
func (r *RootCommand) Execute() error {
	return r.ExecuteContext(context.Background())
}

// ExecuteContext is Execute with a parent context
func (r *RootCommand) ExecuteContext(ctx context.Context) error {
	err := r.cmd.ExecuteContext(ctx)
	if r.app != nil {
		if closeErr := r.app.Close(); closeErr != nil && err == nil {
			err = r.errors.Handle("close storage", closeErr)
		}
	}
	_ = logging.Close()
	return err
}

// addGlobalFlags adds global configuration flags
func (r *RootCommand) addGlobalFlags() {
	flags := r.cmd.PersistentFlags()

	flags.String("config", "", "Config file (default ~/.shiftpay/config.yaml)")

	// Storage configuration
	flags.String("driver", "", "Storage driver: sqlite, bolt, redis or memory (overrides SHIFTPAY_STORAGE_DRIVER)")
	flags.String("storage-dir", "", "Data directory (overrides SHIFTPAY_STORAGE_DIR)")
	flags.String("redis-url", "", "Redis URL (overrides SHIFTPAY_STORAGE_REDIS_URL)")

	// Remote configuration
	flags.String("remote-url", "", "Remote API base URL (overrides SHIFTPAY_REMOTE_BASE_URL)")
	flags.String("remote-token", "", "Remote API token (overrides SHIFTPAY_REMOTE_TOKEN)")

	// Shift configuration
	flags.String("billable-policy", "", "clamp or reject breaks longer than a shift (overrides SHIFTPAY_SHIFTS_BILLABLE_POLICY)")
	flags.String("currency", "", "ISO currency code (overrides SHIFTPAY_SHIFTS_CURRENCY)")

	// Display configuration
	flags.Bool("no-color", false, "Disable colored output")

	// Logging configuration
	flags.String("log-level", "", "Log level (overrides SHIFTPAY_LOGGING_LEVEL)")
	flags.String("log-file", "", "Also write logs to this rotating file (overrides SHIFTPAY_LOGGING_FILE)")

	// Application configuration
	flags.Duration("timeout", 0, "Command timeout (overrides SHIFTPAY_APPLICATION_TIMEOUT)")
	flags.BoolP("verbose", "v", false, "Enable debug logging (overrides SHIFTPAY_APPLICATION_VERBOSE)")
}

// getOverridesFromFlags collects the global flags the user actually set
func (r *RootCommand) getOverridesFromFlags(cmd *cobra.Command) *config.ConfigOverrides {
	flags := cmd.Flags()
	overrides := &config.ConfigOverrides{}

	str := func(name string) *string {
		if !flags.Changed(name) {
			return nil
		}
		v, _ := flags.GetString(name)
		return &v
	}
	boolean := func(name string) *bool {
		if !flags.Changed(name) {
			return nil
		}
		v, _ := flags.GetBool(name)
		return &v
	}

	overrides.Driver = str("driver")
	overrides.StorageDir = str("storage-dir")
	overrides.RedisURL = str("redis-url")
	overrides.RemoteURL = str("remote-url")
	overrides.RemoteToken = str("remote-token")
	overrides.BillablePolicy = str("billable-policy")
	overrides.Currency = str("currency")
	overrides.NoColor = boolean("no-color")
	overrides.LogLevel = str("log-level")
	overrides.LogFile = str("log-file")
	overrides.Verbose = boolean("verbose")
	if flags.Changed("timeout") {
		timeout, _ := flags.GetDuration("timeout")
		overrides.Timeout = &timeout
	}

	return overrides
}

// setup loads the configuration, starts logging and builds the app
func (r *RootCommand) setup(cmd *cobra.Command) error {
	if r.newApp == nil {
		return fmt.Errorf("application not initialized")
	}

	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := r.loadConfig(configFile, r.getOverridesFromFlags(cmd))
	if err != nil {
		return r.errors.Handle("load configuration", err)
	}
	r.config = cfg

	logging.Init(cfg.Logging, cfg.Application.Verbose)
	logging.Debugf("configuration loaded: file=%q driver=%s remote=%t", configFile, cfg.Storage.Driver, cfg.IsRemoteEnabled())

	ctx, cancel := context.WithTimeout(cmd.Context(), r.getAppTimeout())
	defer cancel()

	app, err := r.newApp(ctx, cfg, r.streams)
	if err != nil {
		return r.errors.Handle("open storage", err)
	}
	r.app = app

	if err := app.Load(ctx); err != nil {
		return r.errors.Handle("load data", err)
	}
	return nil
}

// getAppTimeout returns the configured application timeout
func (r *RootCommand) getAppTimeout() time.Duration {
	if r.config != nil && r.config.Application.Timeout > 0 {
		return r.config.Application.Timeout
	}
	return 60 * time.Second
}

// run adapts a handler to cobra, bounding it by the app timeout and turning
// its error into a user message for operation.
func (r *RootCommand) run(operation string, fn func(ctx context.Context, app *App, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), r.getAppTimeout())
		defer cancel()
		return r.errors.Handle(operation, fn(ctx, r.app, args))
	}
}

// needsApp is false for commands that never touch stored data
func needsApp(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "help", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd, "completion":
			return false
		}
	}
	return true
}

// addSubcommands adds all CLI subcommands to the root command
func (r *RootCommand) addSubcommands() {
	r.cmd.AddCommand(
		r.newAddCmd(),
		r.newListCmd(),
		r.newStatsCmd(),
		r.newEditCmd(),
		r.newDeleteCmd(),
		r.newCheckInCmd(),
		r.newCheckOutCmd(),
		r.newStatusCmd(),
		r.newWorkInfoCmd(),
		r.newTemplateCmd(),
		r.newImportCmd(),
		r.newExportCmd(),
	)
}

func (r *RootCommand) newAddCmd() *cobra.Command {
	var opts AddOptions
	var rate float64
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a shift",
		Long: `Record a shift from its workplace, pay rate, start and end.

An end earlier than the start is taken to be on the next day. With --template
the template's times are moved onto --date and any other flag overrides it.

Examples:
  shiftpay add -w Cafe -r 12.5 -s 09:00 -e 17:00 -b 0:30
  shiftpay add -w Bar -r 14 -s 20:00 -e 02:00 -d 2024-03-04
  shiftpay add -t morning -d yesterday`,
		Args: cobra.NoArgs,
		RunE: r.run("add shift", func(ctx context.Context, app *App, args []string) error {
			return NewAddCommand(app).Execute(ctx, opts)
		}),
	}
	flags := cmd.Flags()
	flags.StringVarP(&opts.Workplace, "workplace", "w", "", "Workplace")
	flags.Float64VarP(&rate, "rate", "r", 0, "Pay rate per hour")
	flags.StringVarP(&opts.Date, "date", "d", "", "Day of the shift: YYYY-MM-DD, today or yesterday")
	flags.StringVarP(&opts.Start, "start", "s", "", "Start time, HH:MM")
	flags.StringVarP(&opts.End, "end", "e", "", "End time, HH:MM")
	flags.StringSliceVarP(&opts.Breaks, "break", "b", nil, "Unpaid break, H:MM (repeatable)")
	flags.StringVarP(&opts.Template, "template", "t", "", "Start from a saved template")
	cmd.PreRun = func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("rate") {
			opts.PayRate = &rate
		}
	}
	return cmd
}

func (r *RootCommand) newListCmd() *cobra.Command {
	var opts ListOptions
	cmd := &cobra.Command{
		Use:   "list [period]",
		Short: "List shifts",
		Long: `List shifts, oldest first, optionally limited to a period.

Examples:
  shiftpay list                 # All shifts
  shiftpay list 2w              # Shifts from the last two weeks
  shiftpay list --day today     # Today's shifts
  shiftpay list -w cafe --json  # Shifts at matching workplaces as JSON`,
		Args: cobra.MaximumNArgs(1),
		RunE: r.run("list shifts", func(ctx context.Context, app *App, args []string) error {
			if len(args) == 1 {
				opts.Period = args[0]
			}
			return NewListCommand(app).Execute(ctx, opts)
		}),
	}
	addPeriodFlags(cmd, &opts.PeriodOptions)
	cmd.Flags().StringVarP(&opts.Workplace, "workplace", "w", "", "Only workplaces containing this text")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Print JSON")
	return cmd
}

func (r *RootCommand) newStatsCmd() *cobra.Command {
	var opts StatsOptions
	cmd := &cobra.Command{
		Use:   "stats [period]",
		Short: "Show totals for a period",
		Long: `Show shift count, time, breaks and income for a period; the current month by default.

Examples:
  shiftpay stats
  shiftpay stats 1w
  shiftpay stats --from 2024-03-01 --to 2024-04-01 --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: r.run("compute statistics", func(ctx context.Context, app *App, args []string) error {
			if len(args) == 1 {
				opts.Period = args[0]
			}
			return NewStatsCommand(app).Execute(ctx, opts)
		}),
	}
	addPeriodFlags(cmd, &opts.PeriodOptions)
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Print JSON")
	return cmd
}

func (r *RootCommand) newEditCmd() *cobra.Command {
	var opts EditOptions
	var workplace string
	var rate float64
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a shift",
		Long: `Change fields of a shift. The id may be the short id shown by list.

Examples:
  shiftpay edit 1a2b3c4d -e 18:00
  shiftpay edit 1a2b3c4d --no-breaks -r 13`,
		Args: cobra.ExactArgs(1),
		RunE: r.run("edit shift", func(ctx context.Context, app *App, args []string) error {
			opts.ID = args[0]
			return NewEditCommand(app).Execute(ctx, opts)
		}),
	}
	flags := cmd.Flags()
	flags.StringVarP(&workplace, "workplace", "w", "", "Workplace")
	flags.Float64VarP(&rate, "rate", "r", 0, "Pay rate per hour")
	flags.StringVarP(&opts.Date, "date", "d", "", "Move the shift to this day")
	flags.StringVarP(&opts.Start, "start", "s", "", "Start time, HH:MM")
	flags.StringVarP(&opts.End, "end", "e", "", "End time, HH:MM")
	flags.StringSliceVarP(&opts.Breaks, "break", "b", nil, "Replace the unpaid breaks, H:MM (repeatable)")
	flags.BoolVar(&opts.NoBreaks, "no-breaks", false, "Remove all unpaid breaks")
	cmd.PreRun = func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("workplace") {
			opts.Workplace = &workplace
		}
		if cmd.Flags().Changed("rate") {
			opts.PayRate = &rate
		}
	}
	return cmd
}

func (r *RootCommand) newDeleteCmd() *cobra.Command {
	var opts DeleteOptions
	cmd := &cobra.Command{
		Use:   "delete [id...]",
		Short: "Delete shifts",
		Long: `Delete shifts by id or short id. This operation cannot be undone.

With --all every shift is deleted after confirmation.`,
		RunE: r.run("delete shifts", func(ctx context.Context, app *App, args []string) error {
			opts.IDs = args
			return NewDeleteCommand(app).Execute(ctx, opts)
		}),
	}
	cmd.Flags().BoolVar(&opts.All, "all", false, "Delete every shift")
	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func (r *RootCommand) newCheckInCmd() *cobra.Command {
	var at string
	cmd := &cobra.Command{
		Use:   "checkin",
		Short: "Start a work session",
		Long:  "Start a work session now, or at --at today. A running session is replaced.",
		Args:  cobra.NoArgs,
		RunE: r.run("check in", func(ctx context.Context, app *App, args []string) error {
			return NewSessionCommand(app).CheckIn(ctx, at)
		}),
	}
	cmd.Flags().StringVar(&at, "at", "", "Start time, HH:MM")
	return cmd
}

func (r *RootCommand) newCheckOutCmd() *cobra.Command {
	var opts CheckOutOptions
	var rate float64
	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "End the work session and record it as a shift",
		Args:  cobra.NoArgs,
		RunE: r.run("check out", func(ctx context.Context, app *App, args []string) error {
			return NewSessionCommand(app).CheckOut(ctx, opts)
		}),
	}
	flags := cmd.Flags()
	flags.StringVarP(&opts.Workplace, "workplace", "w", "", "Workplace")
	flags.Float64VarP(&rate, "rate", "r", 0, "Pay rate per hour")
	flags.StringSliceVarP(&opts.Breaks, "break", "b", nil, "Unpaid break, H:MM (repeatable)")
	flags.StringVarP(&opts.End, "end", "e", "", "End time, HH:MM; now by default")
	cmd.PreRun = func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("rate") {
			opts.PayRate = &rate
		}
	}
	return cmd
}

func (r *RootCommand) newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the running work session",
		Args:  cobra.NoArgs,
		RunE: r.run("show status", func(ctx context.Context, app *App, args []string) error {
			return NewSessionCommand(app).Status(ctx)
		}),
	}
}

func (r *RootCommand) newWorkInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "workinfo",
		Aliases: []string{"wi"},
		Short:   "Manage remembered workplaces and pay rates",
		Args:    cobra.NoArgs,
		RunE: r.run("list work infos", func(ctx context.Context, app *App, args []string) error {
			return NewWorkInfoCommand(app).List(ctx)
		}),
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List workplaces and their pay rates",
			Args:  cobra.NoArgs,
			RunE: r.run("list work infos", func(ctx context.Context, app *App, args []string) error {
				return NewWorkInfoCommand(app).List(ctx)
			}),
		},
		&cobra.Command{
			Use:   "add <workplace> <rate>",
			Short: "Remember a pay rate for a workplace",
			Args:  cobra.ExactArgs(2),
			RunE: r.run("add work info", func(ctx context.Context, app *App, args []string) error {
				return NewWorkInfoCommand(app).Add(ctx, args)
			}),
		},
		&cobra.Command{
			Use:   "delete <workplace> [rate]",
			Short: "Forget a pay rate, or the whole workplace",
			Args:  cobra.RangeArgs(1, 2),
			RunE: r.run("delete work info", func(ctx context.Context, app *App, args []string) error {
				return NewWorkInfoCommand(app).Delete(ctx, args)
			}),
		},
	)
	return cmd
}

func (r *RootCommand) newTemplateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "template",
		Aliases: []string{"tpl"},
		Short:   "Manage shift templates",
		Args:    cobra.NoArgs,
		RunE: r.run("list templates", func(ctx context.Context, app *App, args []string) error {
			return NewTemplateCommand(app).List(ctx)
		}),
	}

	var opts TemplateAddOptions
	var rate float64
	addCmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Save a template from flags or from an existing shift",
		Long: `Save a template from the same flags as add, or copy an existing shift.

Examples:
  shiftpay template add morning -w Cafe -r 12.5 -s 07:00 -e 15:00 -b 0:30
  shiftpay template add late --from-shift 1a2b3c4d`,
		Args: cobra.ExactArgs(1),
		RunE: r.run("save template", func(ctx context.Context, app *App, args []string) error {
			opts.Name = args[0]
			return NewTemplateCommand(app).Add(ctx, opts)
		}),
	}
	flags := addCmd.Flags()
	flags.StringVar(&opts.FromShift, "from-shift", "", "Copy this shift")
	flags.StringVarP(&opts.Shift.Workplace, "workplace", "w", "", "Workplace")
	flags.Float64VarP(&rate, "rate", "r", 0, "Pay rate per hour")
	flags.StringVarP(&opts.Shift.Start, "start", "s", "", "Start time, HH:MM")
	flags.StringVarP(&opts.Shift.End, "end", "e", "", "End time, HH:MM")
	flags.StringSliceVarP(&opts.Shift.Breaks, "break", "b", nil, "Unpaid break, H:MM (repeatable)")
	addCmd.PreRun = func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("rate") {
			opts.Shift.PayRate = &rate
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List templates",
			Args:  cobra.NoArgs,
			RunE: r.run("list templates", func(ctx context.Context, app *App, args []string) error {
				return NewTemplateCommand(app).List(ctx)
			}),
		},
		addCmd,
		&cobra.Command{
			Use:   "delete <name>",
			Short: "Delete a template",
			Args:  cobra.ExactArgs(1),
			RunE: r.run("delete template", func(ctx context.Context, app *App, args []string) error {
				return NewTemplateCommand(app).Delete(ctx, args)
			}),
		},
	)
	return cmd
}

func (r *RootCommand) newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import shifts from a JSON file",
		Long: `Import shifts from a JSON file holding a list of shifts, or an object with
the list under "shifts" or "entries". Shifts already stored are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: r.run("import shifts", func(ctx context.Context, app *App, args []string) error {
			return NewImportCommand(app).Execute(ctx, args[0])
		}),
	}
}

func (r *RootCommand) newExportCmd() *cobra.Command {
	var opts ExportOptions
	cmd := &cobra.Command{
		Use:   "export [period]",
		Short: "Export shifts as JSON, CSV or YAML",
		Long: `Export shifts in the specified format.

Supported formats:
  json - the same records import reads (default)
  csv  - one row per shift with billable time and income
  yaml - the json records as YAML

Examples:
  shiftpay export > shifts.json
  shiftpay export 1mo --format csv -o march.csv`,
		Args: cobra.MaximumNArgs(1),
		RunE: r.run("export shifts", func(ctx context.Context, app *App, args []string) error {
			if len(args) == 1 {
				opts.Period = args[0]
			}
			return NewExportCommand(app).Execute(ctx, opts)
		}),
	}
	addPeriodFlags(cmd, &opts.PeriodOptions)
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "json", "json, csv or yaml")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "Write to this file instead of the terminal")
	return cmd
}

func addPeriodFlags(cmd *cobra.Command, opts *PeriodOptions) {
	cmd.Flags().StringVar(&opts.From, "from", "", "Start of the range: YYYY-MM-DD or a date-time")
	cmd.Flags().StringVar(&opts.To, "to", "", "End of the range: YYYY-MM-DD or a date-time")
	cmd.Flags().StringVar(&opts.Day, "day", "", "A single day: YYYY-MM-DD, today or yesterday")
}
