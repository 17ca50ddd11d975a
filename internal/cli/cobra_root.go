package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"task-tracker/internal/config"
)

// RootOptions injects the collaborators of the command tree.
type RootOptions struct {
	// Bootstrap builds the runtime; DefaultBootstrap when nil.
	Bootstrap Bootstrap
	// Loader resolves configuration; config.NewLoader() when nil.
	Loader *config.Loader
	Out    io.Writer
	Err    io.Writer
}

// RootCommand represents the base command when called without any subcommands
type RootCommand struct {
	cmd    *cobra.Command
	opts   RootOptions
	config *config.Config
	rt     *Runtime
	app    *App
}

// NewRootCommand creates the root cobra command with global flags
func NewRootCommand(opts RootOptions) *RootCommand {
	if opts.Bootstrap == nil {
		opts.Bootstrap = DefaultBootstrap
	}
	if opts.Loader == nil {
		opts.Loader = config.NewLoader()
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}

	root := &RootCommand{opts: opts}
	root.cmd = &cobra.Command{
		Use:   "tt",
		Short: "A command-line time tracking application",
		Long: `Time Tracker (tt) tracks time spent on tasks.

Timers run per task (and per user in multi-user setups). Changing a task's
status to in_progress starts its timer, moving it away stops it.

EXAMPLES:
  tt task add "Write report"               # Create a task
  tt start 1 "first draft"                 # Start a timer on task 1
  tt current                               # Show running timers
  tt watch 1                               # Live elapsed time with break reminders
  tt stop 1                                # Stop the timer on task 1
  tt add 1 45 --date 2024-03-14            # Record 45 minutes of past work
  tt list --since 1d --format json         # Entries from the last day
  tt task status 1 done                    # Change status, stopping the timer
  tt serve --addr :8080                    # Run the HTTP API

CONFIGURATION:
  Configuration follows this priority order:
  command-line flags > environment variables > config file > defaults

  The config file is TT_CONFIG or ~/.tt/config.yaml.

  TT_DB_DRIVER, TT_DB_DIR, TT_DB_FILENAME, TT_DB_DSN    Storage
  TT_TRACKING_POLICY (per_scope|per_user), TT_USER      Tracking
  TT_BREAK_INTERVAL, TT_TICK_INTERVAL                   Realtime view
  TT_SERVER_ADDR, TT_SERVER_SHUTDOWN_TIMEOUT            HTTP server
  TT_LOG_LEVEL, TT_LOG_FORMAT, TT_DEBUG                 Logging

TIME FORMATS:
  30m, 2h, 1d, 2w, 3mo, 1y                 # Minutes, hours, days, weeks, months, years`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return root.loadConfig(cmd)
		},
	}
	root.cmd.SetOut(opts.Out)
	root.cmd.SetErr(opts.Err)

	root.addGlobalFlags()
	root.addSubcommands()

	return root
}

// Command exposes the cobra command, for tests and completion.
func (r *RootCommand) Command() *cobra.Command {
	return r.cmd
}

// Execute runs the command line and releases the runtime afterwards.
func (r *RootCommand) Execute(ctx context.Context, args []string) error {
	r.cmd.SetArgs(args)
	err := r.cmd.ExecuteContext(ctx)
	if r.rt != nil && r.rt.Close != nil {
		if closeErr := r.rt.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		r.rt = nil
	}
	return err
}

// addGlobalFlags adds global configuration flags
func (r *RootCommand) addGlobalFlags() {
	flags := r.cmd.PersistentFlags()

	flags.String("config", "", "Config file (overrides TT_CONFIG)")
	flags.String("user", "", "Acting user (overrides TT_USER)")

	// Database configuration
	flags.String("db-driver", "", "Storage driver: sqlite or mysql (overrides TT_DB_DRIVER)")
	flags.String("db-dir", "", "Database directory (overrides TT_DB_DIR)")
	flags.String("db-filename", "", "Database filename (overrides TT_DB_FILENAME)")
	flags.String("db-dsn", "", "MySQL DSN (overrides TT_DB_DSN)")
	flags.Duration("db-query-timeout", 0, "Database query timeout (overrides TT_DB_QUERY_TIMEOUT)")

	// Tracking configuration
	flags.String("policy", "", "Timer policy: per_scope or per_user (overrides TT_TRACKING_POLICY)")
	flags.Duration("break-interval", 0, "Break reminder interval (overrides TT_BREAK_INTERVAL)")

	// Logging and application configuration
	flags.String("log-level", "", "Log level (overrides TT_LOG_LEVEL)")
	flags.String("log-format", "", "Log format: text or json (overrides TT_LOG_FORMAT)")
	flags.Duration("app-timeout", 0, "Application timeout (overrides TT_APP_TIMEOUT)")
	flags.Bool("verbose", false, "Enable debug logging (overrides TT_APP_VERBOSE)")
}

// addSubcommands adds all CLI subcommands to the root command
func (r *RootCommand) addSubcommands() {
	startCmd := &cobra.Command{
		Use:   "start <task-id> [description]",
		Short: "Start a timer on a task",
		Long:  "Start tracking time on a task. Fails if a timer is already running for the task.",
		Args:  cobra.MinimumNArgs(1),
		RunE: r.run(true, func(ctx context.Context, app *App, args []string) error {
			return NewStartCommand(app).Execute(ctx, args)
		}),
	}

	stopCmd := &cobra.Command{
		Use:   "stop <task-id>",
		Short: "Stop the timer on a task",
		Args:  cobra.ExactArgs(1),
		RunE: r.run(true, func(ctx context.Context, app *App, args []string) error {
			return NewStopCommand(app).Execute(ctx, args)
		}),
	}

	currentCmd := &cobra.Command{
		Use:   "current",
		Short: "Show running timers",
		Args:  cobra.NoArgs,
		RunE: r.run(true, func(ctx context.Context, app *App, args []string) error {
			return NewCurrentCommand(app).Execute(ctx, args)
		}),
	}

	var addDate, addDescription string
	addCmd := &cobra.Command{
		Use:   "add <task-id> <minutes>",
		Short: "Record past work as a closed time entry",
		Long: `Record work that was not timed. The entry ends at --date (default now)
and starts <minutes> earlier. Minutes must be between 1 and 1440.`,
		Args: cobra.ExactArgs(2),
		RunE: r.run(true, func(ctx context.Context, app *App, args []string) error {
			return NewAddCommand(app, addDate, addDescription).Execute(ctx, args)
		}),
	}
	addCmd.Flags().StringVar(&addDate, "date", "", "When the work ended: RFC3339 or YYYY-MM-DD")
	addCmd.Flags().StringVar(&addDescription, "description", "", "Entry description")

	var listOpts ListOptions
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List time entries",
		Long: `List time entries, newest first.

Examples:
  tt list                        # All of your entries
  tt list --since 2h             # Entries started in the last two hours
  tt list --task 3 --active      # The running entry of task 3
  tt list --format csv > out.csv # Export`,
		Args: cobra.NoArgs,
		RunE: r.run(true, func(ctx context.Context, app *App, args []string) error {
			return NewListCommand(app, listOpts).Execute(ctx, args)
		}),
	}
	listCmd.Flags().Int64Var(&listOpts.TaskID, "task", 0, "Only entries of this task")
	listCmd.Flags().BoolVar(&listOpts.Active, "active", false, "Only running entries")
	listCmd.Flags().StringVar(&listOpts.Since, "since", "", "Only entries started within this window (30m, 2h, 1d, ...)")
	listCmd.Flags().IntVar(&listOpts.Limit, "limit", 0, "Maximum number of entries")
	listCmd.Flags().StringVar(&listOpts.Format, "format", "", "Output format: table, json, yaml or csv")
	listCmd.Flags().BoolVar(&listOpts.AllUsers, "all-users", false, "Include every user's entries")

	var description, start, end string
	var duration int
	var updateCmd *cobra.Command
	updateCmd = &cobra.Command{
		Use:   "update <entry-id>",
		Short: "Edit a time entry",
		Long: `Edit a time entry. Start and end must be given together; the duration
is then recomputed from them. A running entry only accepts a description.`,
		Args: cobra.ExactArgs(1),
		RunE: r.run(true, func(ctx context.Context, app *App, args []string) error {
			var opts UpdateOptions
			changed := updateCmd.Flags().Changed
			if changed("description") {
				opts.Description = &description
			}
			if changed("duration") {
				opts.Duration = &duration
			}
			if changed("start") {
				opts.Start = &start
			}
			if changed("end") {
				opts.End = &end
			}
			return NewUpdateCommand(app, opts).Execute(ctx, args)
		}),
	}
	updateCmd.Flags().StringVar(&description, "description", "", "New description")
	updateCmd.Flags().IntVar(&duration, "duration", 0, "New duration in minutes")
	updateCmd.Flags().StringVar(&start, "start", "", "New start time (RFC3339)")
	updateCmd.Flags().StringVar(&end, "end", "", "New end time (RFC3339)")

	deleteCmd := &cobra.Command{
		Use:   "delete <entry-id>",
		Short: "Delete a time entry",
		Long:  "Delete one time entry. Deleting a running entry stops its timer. This cannot be undone.",
		Args:  cobra.ExactArgs(1),
		RunE: r.run(true, func(ctx context.Context, app *App, args []string) error {
			return NewDeleteCommand(app).Execute(ctx, args)
		}),
	}

	watchCmd := &cobra.Command{
		Use:   "watch <task-id>",
		Short: "Show a live timer with break reminders",
		Args:  cobra.ExactArgs(1),
		RunE: r.run(false, func(ctx context.Context, app *App, args []string) error {
			return NewWatchCommand(app).Execute(ctx, args)
		}),
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: r.run(false, func(ctx context.Context, app *App, args []string) error {
			return NewServeCommand(app).Execute(ctx, args)
		}),
	}
	serveCmd.Flags().String("addr", "", "Listen address (overrides TT_SERVER_ADDR)")

	r.cmd.AddCommand(
		startCmd,
		stopCmd,
		currentCmd,
		addCmd,
		listCmd,
		updateCmd,
		deleteCmd,
		r.taskCommand(),
		r.userCommand(),
		watchCmd,
		serveCmd,
	)
}

func (r *RootCommand) taskCommand() *cobra.Command {
	taskCmd := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks",
	}

	taskCmd.AddCommand(
		&cobra.Command{
			Use:   "add <name>",
			Short: "Create a task",
			Args:  cobra.MinimumNArgs(1),
			RunE: r.run(true, func(ctx context.Context, app *App, args []string) error {
				return NewTaskCommand(app).Add(ctx, args)
			}),
		},
		&cobra.Command{
			Use:   "list",
			Short: "List tasks",
			Args:  cobra.NoArgs,
			RunE: r.run(true, func(ctx context.Context, app *App, args []string) error {
				return NewTaskCommand(app).List(ctx, args)
			}),
		},
		&cobra.Command{
			Use:   "status <task-id> <to_do|in_progress|on_hold|done>",
			Short: "Change a task's status",
			Long:  "Change a task's status. Entering in_progress starts its timer, leaving it stops the timer.",
			Args:  cobra.ExactArgs(2),
			RunE: r.run(true, func(ctx context.Context, app *App, args []string) error {
				return NewTaskCommand(app).Status(ctx, args)
			}),
		},
		&cobra.Command{
			Use:   "history <task-id>",
			Short: "Show a task's activity log",
			Args:  cobra.ExactArgs(1),
			RunE: r.run(true, func(ctx context.Context, app *App, args []string) error {
				return NewTaskCommand(app).History(ctx, args)
			}),
		},
	)
	return taskCmd
}

func (r *RootCommand) userCommand() *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Manage tracking users",
	}

	var displayName string
	addCmd := &cobra.Command{
		Use:   "add <id>",
		Short: "Register a user",
		Args:  cobra.ExactArgs(1),
		RunE: r.run(true, func(ctx context.Context, app *App, args []string) error {
			return NewUserCommand(app, displayName).Add(ctx, args)
		}),
	}
	addCmd.Flags().StringVar(&displayName, "name", "", "Display name (defaults to the id)")

	userCmd.AddCommand(addCmd)
	return userCmd
}

type commandFunc func(ctx context.Context, app *App, args []string) error

// run wraps a handler with lazy runtime creation and, when bounded, the
// configured application timeout.
func (r *RootCommand) run(bounded bool, fn commandFunc) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		app, err := r.ensureApp(ctx)
		if err != nil {
			return err
		}

		if bounded {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, r.getAppTimeout())
			defer cancel()
		}
		return fn(ctx, app, args)
	}
}

func (r *RootCommand) ensureApp(ctx context.Context) (*App, error) {
	if r.app != nil {
		return r.app, nil
	}
	rt, err := r.opts.Bootstrap(ctx, r.config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize: %w", err)
	}
	r.rt = rt
	r.app = NewApp(rt, r.config, r.opts.Out)
	return r.app, nil
}

// getAppTimeout returns the configured application timeout
func (r *RootCommand) getAppTimeout() time.Duration {
	if r.config != nil && r.config.Application.Timeout > 0 {
		return r.config.Application.Timeout
	}
	return 60 * time.Second
}

// loadConfig resolves file, environment and flag configuration
func (r *RootCommand) loadConfig(cmd *cobra.Command) error {
	loader := r.opts.Loader
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loader = loader.WithFile(path)
	}

	cfg, err := loader.LoadWithOverrides(overridesFromFlags(cmd.Flags()))
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	r.config = cfg
	return nil
}

// overridesFromFlags collects only the flags the user set.
func overridesFromFlags(flags *pflag.FlagSet) *config.ConfigOverrides {
	o := &config.ConfigOverrides{}
	str := func(name string) *string {
		if f := flags.Lookup(name); f != nil && f.Changed {
			v := f.Value.String()
			return &v
		}
		return nil
	}
	dur := func(name string) *time.Duration {
		if f := flags.Lookup(name); f != nil && f.Changed {
			if v, err := flags.GetDuration(name); err == nil {
				return &v
			}
		}
		return nil
	}

	o.DBDriver = str("db-driver")
	o.DBDir = str("db-dir")
	o.DBFilename = str("db-filename")
	o.DBDSN = str("db-dsn")
	o.DBQueryTimeout = dur("db-query-timeout")
	o.Policy = str("policy")
	o.User = str("user")
	o.BreakInterval = dur("break-interval")
	o.ServerAddr = str("addr")
	o.LogLevel = str("log-level")
	o.LogFormat = str("log-format")
	o.Timeout = dur("app-timeout")

	if f := flags.Lookup("verbose"); f != nil && f.Changed {
		verbose, _ := flags.GetBool("verbose")
		o.Verbose = &verbose
		if verbose && o.LogLevel == nil {
			debug := "debug"
			o.LogLevel = &debug
		}
	}
	return o
}
