package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bashhack/linklock/internal/common"
	"github.com/bashhack/linklock/internal/config"
	"github.com/bashhack/linklock/internal/constants"
	"github.com/bashhack/linklock/internal/demo"
	internalErrors "github.com/bashhack/linklock/internal/errors"
	"github.com/bashhack/linklock/internal/lock"
	"github.com/bashhack/linklock/internal/logger"
	"github.com/bashhack/linklock/internal/owner"
)

// Logger alias to common.Logger
type Logger = common.Logger

// AppOptions contains app configuration and dependencies
type AppOptions struct {
	// Required
	Config *config.Config

	// Optional components
	Logger Logger

	// I/O dependencies
	Stdout io.Writer
	Stderr io.Writer

	// System dependencies
	Exit        func(code int)
	Inspect     func(path string) (lock.Holder, error)
	BreakLock   func(path string) (lock.Holder, error)
	BreakHolder func(expected lock.Holder) (lock.Holder, error)
	Alive       func(id owner.ID) (alive, known bool)
}

// App is the linklock command line application
type App struct {
	Config *config.Config
	Logger Logger

	// I/O streams
	Stdout io.Writer
	Stderr io.Writer

	// System dependencies
	exit        func(code int)
	inspect     func(path string) (lock.Holder, error)
	breakLock   func(path string) (lock.Holder, error)
	breakHolder func(expected lock.Holder) (lock.Holder, error)
	alive       func(id owner.ID) (alive, known bool)

	// Demo pauses, overridable in tests
	writerHold  demo.Delay
	writerPause demo.Delay
	readerPause demo.Delay
}

// NewDefaultApp creates an App with standard dependencies
func NewDefaultApp(versionInfo config.VersionInfo) *App {
	cfg := config.New()
	cfg.VersionInfo = versionInfo
	cfg.LoadFromEnvironment()

	return NewApp(AppOptions{
		Config: cfg,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Exit:   os.Exit,
	})
}

// NewApp creates an App with custom dependencies
func NewApp(opts AppOptions) *App {
	if opts.Config == nil {
		panic("Config is required in AppOptions")
	}

	app := &App{
		Config:      opts.Config,
		Logger:      opts.Logger,
		Stdout:      opts.Stdout,
		Stderr:      opts.Stderr,
		exit:        opts.Exit,
		inspect:     opts.Inspect,
		breakLock:   opts.BreakLock,
		breakHolder: opts.BreakHolder,
		alive:       opts.Alive,
	}

	// Set defaults for nil dependencies
	if app.Stdout == nil {
		app.Stdout = os.Stdout
	}
	if app.Stderr == nil {
		app.Stderr = os.Stderr
	}
	if app.exit == nil {
		app.exit = os.Exit
	}
	if app.inspect == nil {
		app.inspect = lock.Inspect
	}
	if app.breakLock == nil {
		app.breakLock = lock.Break
	}
	if app.breakHolder == nil {
		app.breakHolder = lock.BreakHolder
	}
	if app.alive == nil {
		app.alive = owner.Alive
	}

	return app
}

// Initialize finalizes the configuration and sets up the logger
func (a *App) Initialize() error {
	if err := a.Config.Finalize(); err != nil {
		// Config.Finalize() already returns a properly wrapped error
		if internalErrors.Is(err, internalErrors.ErrInvalidConfiguration) {
			return err
		}
		return internalErrors.Wrap(internalErrors.ErrInvalidConfiguration, err.Error())
	}

	if a.Logger == nil {
		l := logger.NewWithOutput(a.Config.Debug, a.Config.LogFile, a.Config.Verbose, a.Stdout, a.Stderr)
		l.SetOwner(a.Config.Owner)
		a.Logger = l
	}

	return nil
}

// RootCommand builds the command tree. Flags are bound to a.Config, so
// values already loaded from the environment act as flag defaults.
func (a *App) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "linklock",
		Short: "Exclusive locking between processes with hard links",
		Long: "linklock takes an exclusive lock on a path by hard-linking a per-owner marker\n" +
			"file to it. The reader and writer commands run a demonstration that shares a\n" +
			"JSON file under the lock; start one of each in separate terminals.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.Initialize()
		},
	}
	a.Config.BindFlags(root.PersistentFlags())

	root.AddCommand(
		&cobra.Command{
			Use:   "writer",
			Short: "Write 1..n to the content file, one value per lock round",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.RunWriter(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "reader",
			Short: "Read the content file under the lock until it reaches n",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.RunReader(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show who holds the lock",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.Status()
			},
		},
		a.breakCommand(),
		&cobra.Command{
			Use:   "version",
			Short: "Show version information",
			Args:  cobra.NoArgs,
			// Overrides the root hook; printing the version needs no config
			PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
				return nil
			},
			Run: func(cmd *cobra.Command, args []string) {
				a.ShowLogo()
				a.ShowVersion()
			},
		},
	)

	return root
}

func (a *App) breakCommand() *cobra.Command {
	var staleOnly bool
	cmd := &cobra.Command{
		Use:   "break",
		Short: "Force-clear the lock",
		Long: "Removes the lock link and the holder's marker. Breaking a lock whose holder\n" +
			"is still running lets a second process in; use --stale-only to refuse unless\n" +
			"the holder is a process on this host that has exited.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.Break(staleOnly)
		},
	}
	cmd.Flags().BoolVar(&staleOnly, "stale-only", false, "Only break when the holder is a dead local process")
	return cmd
}

func (a *App) demoOptions() demo.Options {
	return demo.Options{
		LockPath:    a.Config.LockPath,
		ContentPath: a.Config.ContentPath,
		Count:       a.Config.Count,
		Owner:       a.Config.Owner,
		Logger:      a.Logger,
		Retry:       lock.DefaultRetryPolicy,
		Watch:       true,
		Timeout:     a.Config.Timeout,
	}
}

// RunWriter runs the demo writer
func (a *App) RunWriter(ctx context.Context) error {
	w := demo.NewWriter(a.demoOptions())
	if a.writerHold != nil {
		w.Hold = a.writerHold
	}
	if a.writerPause != nil {
		w.Pause = a.writerPause
	}
	a.Logger.Info("Starting writer as %s", a.Config.Owner)
	return w.Run(ctx)
}

// RunReader runs the demo reader
func (a *App) RunReader(ctx context.Context) error {
	r := demo.NewReader(a.demoOptions())
	if a.readerPause != nil {
		r.Pause = a.readerPause
	}
	a.Logger.Info("Starting reader as %s", a.Config.Owner)
	_, err := r.Run(ctx)
	return err
}

// Status prints the current holder of the lock
func (a *App) Status() error {
	h, err := a.inspect(a.Config.LockPath)
	if internalErrors.Is(err, internalErrors.ErrNotHeld) {
		_, _ = fmt.Fprintf(a.Stdout, "🔓 %s is free\n", a.Config.LockPath)
		return nil
	}
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(a.Stdout, "🔒 %s is held\n", h.Path)
	if h.Orphaned() {
		_, _ = fmt.Fprintln(a.Stdout, "   owner:   unknown (no marker shares the lock's inode)")
		return nil
	}
	_, _ = fmt.Fprintf(a.Stdout, "   owner:   %s\n", h.Owner)
	_, _ = fmt.Fprintf(a.Stdout, "   marker:  %s\n", h.Marker)
	_, _ = fmt.Fprintf(a.Stdout, "   process: %s\n", a.describeHolder(h))
	return nil
}

func (a *App) describeHolder(h lock.Holder) string {
	id, err := owner.Parse(h.Owner)
	if err != nil {
		return "unknown (owner id has no pid)"
	}
	alive, known := a.alive(id)
	switch {
	case !known:
		return fmt.Sprintf("pid %d on %s (cannot check from this host)", id.PID, id.Host)
	case alive:
		return fmt.Sprintf("pid %d running", id.PID)
	default:
		return fmt.Sprintf("pid %d exited, the lock is stale", id.PID)
	}
}

// Break force-clears the lock. With staleOnly it refuses unless the holder
// is known to be a dead local process, and leaves the lock alone if a
// different owner holds it by the time it is removed.
func (a *App) Break(staleOnly bool) error {
	var h lock.Holder
	var err error
	if staleOnly {
		h, err = a.inspect(a.Config.LockPath)
		if internalErrors.Is(err, internalErrors.ErrNotHeld) {
			a.Logger.InfoToUser("%s is not held, nothing to break", a.Config.LockPath)
			return nil
		}
		if err != nil {
			return err
		}
		if !a.isStale(h) {
			return internalErrors.NewLockError(a.Config.LockPath, h.Owner,
				internalErrors.Wrap(internalErrors.ErrLockHeld, "holder is not known to be dead, refusing to break"))
		}
		// Only the holder judged stale above may be removed
		h, err = a.breakHolder(h)
	} else {
		h, err = a.breakLock(a.Config.LockPath)
	}
	if internalErrors.Is(err, internalErrors.ErrNotHeld) {
		a.Logger.InfoToUser("%s is not held, nothing to break", a.Config.LockPath)
		return nil
	}
	if err != nil {
		return err
	}

	if h.Orphaned() {
		a.Logger.Success("Removed orphaned lock %s", h.Path)
	} else {
		a.Logger.Success("Broke lock %s held by %s", h.Path, h.Owner)
	}
	return nil
}

func (a *App) isStale(h lock.Holder) bool {
	if h.Orphaned() {
		// A link with no marker cannot be released by anyone
		return true
	}
	id, err := owner.Parse(h.Owner)
	if err != nil {
		return false
	}
	alive, known := a.alive(id)
	return known && !alive
}

// ShowVersion displays version information
func (a *App) ShowVersion() {
	_, _ = fmt.Fprintf(a.Stdout, "linklock %s (%s) built on %s\n",
		a.Config.VersionInfo.Version,
		a.Config.VersionInfo.Commit,
		a.Config.VersionInfo.Date)
}

// ShowLogo displays ASCII art logo
func (a *App) ShowLogo() {
	_, _ = fmt.Fprintln(a.Stdout, constants.Logo)
	_, _ = fmt.Fprintln(a.Stdout, "")

	asciiArtWidth := 36
	padding := max((asciiArtWidth-len(constants.Tagline))/2, 0)
	_, _ = fmt.Fprintf(a.Stdout, "%s%s\n\n", strings.Repeat(" ", padding), constants.Tagline)
}

// Close releases resources held by the App
func (a *App) Close() error {
	if a.Logger == nil {
		return nil
	}
	if l, ok := a.Logger.(logger.Logger); ok && l != nil {
		if err := l.Close(); err != nil {
			_, _ = fmt.Fprintf(a.Stderr, "❌ Failed to close logger: %v\n", err)
			return err
		}
	}
	return nil
}

// Execute runs the command line and returns the process exit code
func (a *App) Execute(ctx context.Context, args []string) int {
	root := a.RootCommand()
	root.SetArgs(args)
	root.SetOut(a.Stdout)
	root.SetErr(a.Stderr)

	err := root.ExecuteContext(ctx)
	closeErr := a.Close()

	switch {
	case err == nil && closeErr == nil:
		return 0
	case err == nil:
		return 1
	case errors.Is(err, context.Canceled):
		// Interrupted by a signal; the lock has already been released
		_, _ = fmt.Fprintln(a.Stderr, "Interrupted")
		return 130
	default:
		_, _ = fmt.Fprintf(a.Stderr, "❌ Error: %v\n", err)
		return 1
	}
}
