package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"taskmate/internal/api"
	"taskmate/internal/config"
	"taskmate/internal/logging"
	"taskmate/internal/session"
	"taskmate/internal/storage"
	"taskmate/internal/theme"
)

// app is the dependency graph shared by subcommands.
type app struct {
	cfg     config.Config
	logger  *log.Logger
	store   storage.Store
	client  *api.Client
	sess    *session.Session
	prompt  Prompter
	closers []io.Closer
}

func (a *app) styles() theme.Styles { return theme.NewStyles(a.sess.Palette()) }

// close releases what wire opened. Calling it again is a no-op.
func (a *app) close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i].Close())
	}
	a.closers = nil
	return errors.Join(errs...)
}

// closeOnFailure wraps every RunE below cmd so a failing command still
// releases storage and log files; cobra skips post-run hooks on error.
func (a *app) closeOnFailure(cmd *cobra.Command) {
	for _, sub := range cmd.Commands() {
		a.closeOnFailure(sub)
	}
	run := cmd.RunE
	if run == nil {
		return
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		err := run(cmd, args)
		if err != nil {
			if cerr := a.close(); cerr != nil && a.logger != nil {
				a.logger.Warn("close after failure", "err", cerr)
			}
		}
		return err
	}
}

// Options lets tests replace the terminal-facing parts.
type Options struct {
	Prompter Prompter
	Out, Err io.Writer
}

type flags struct {
	configPath string
	apiURL     string
	storage    string
	dataDir    string
	logLevel   string
}

// Execute runs the CLI against the process terminal and prints the error,
// if any, once.
func Execute() error {
	err := NewRootCommand(Options{}).Execute()
	if err != nil && !errors.Is(err, ErrAborted) {
		fmt.Fprintln(os.Stderr, err)
	}
	return err
}

// NewRootCommand builds the command tree.
func NewRootCommand(opts Options) *cobra.Command {
	root, _ := newRootCommand(opts)
	return root
}

func newRootCommand(opts Options) (*cobra.Command, *app) {
	if opts.Prompter == nil {
		opts.Prompter = surveyPrompter{}
	}
	var (
		f flags
		a = &app{prompt: opts.Prompter}
	)

	root := &cobra.Command{
		Use:           "taskmate",
		Short:         "Task manager for the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.wire(cmd, f)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}
	if opts.Out != nil {
		root.SetOut(opts.Out)
	}
	if opts.Err != nil {
		root.SetErr(opts.Err)
	}

	pf := root.PersistentFlags()
	pf.StringVar(&f.configPath, "config", os.Getenv("TASKMATE_CONFIG"), "YAML config file")
	pf.StringVar(&f.apiURL, "api", "", "API base URL (e.g. http://127.0.0.1:8000/api)")
	pf.StringVar(&f.storage, "storage", "", "storage backend: file, sqlite or memory")
	pf.StringVar(&f.dataDir, "data-dir", "", "directory for local data (default ~/.taskmate)")
	pf.StringVar(&f.logLevel, "log-level", "", "debug, info, warn or error")

	root.AddCommand(
		registerCmd(a), loginCmd(a), logoutCmd(a),
		tasksCmd(a), profileCmd(a), themeCmd(a),
		tuiCmd(a), serveCmd(a),
	)
	a.closeOnFailure(root)

	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w\nRun '%s --help' for usage.", err, cmd.CommandPath())
	})
	return root, a
}

func (a *app) wire(cmd *cobra.Command, f flags) (err error) {
	defer func() {
		if err != nil {
			_ = a.close()
		}
	}()
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return err
	}
	if f.apiURL != "" {
		cfg.APIURL = f.apiURL
	}
	if f.storage != "" {
		cfg.Storage = f.storage
	}
	if f.dataDir != "" {
		cfg.DataDir = f.dataDir
	}
	if f.logLevel != "" {
		cfg.LogLevel = f.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	// The TUI owns the terminal, so its logs go to a file.
	if cmd.Name() == "tui" {
		logger, closer, err := logging.NewFile(filepath.Join(cfg.DataDir, "taskmate.log"), cfg.LogLevel)
		if err != nil {
			return err
		}
		a.logger = logger
		a.closers = append(a.closers, closer)
	} else {
		logger, err := logging.New(cmd.ErrOrStderr(), cfg.LogLevel)
		if err != nil {
			return err
		}
		a.logger = logger
	}

	if cfg.Storage != config.StorageMemory {
		if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}
	}
	store, err := storage.Open(cfg)
	if err != nil {
		return err
	}
	a.store = store
	a.closers = append(a.closers, store)

	a.client = api.New(cfg.APIURL, api.WithTimeout(cfg.APITimeout), api.WithLogger(a.logger))
	a.sess = session.New(store, a.client, session.WithLogger(a.logger))
	if _, _, err := a.sess.Load(); err != nil {
		a.logger.Warn("stored user unreadable", "err", err)
		fmt.Fprintln(cmd.ErrOrStderr(), "Failed to load user data.")
	}
	a.logger.Debug("wired", "api", cfg.APIURL, "storage", cfg.Storage, "data_dir", cfg.DataDir)
	return nil
}

// failure turns err into the line shown to the user, keeping err wrapped.
func failure(err error, fallback string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrAborted) {
		return err
	}
	if errors.Is(err, session.ErrNotLoggedIn) {
		return &cliError{msg: "You are not logged in. Run 'taskmate login' first.", err: err}
	}
	if fields := session.FieldErrors(err); fields != nil {
		lines := make([]string, 0, len(fields))
		for _, k := range fields.Fields() {
			lines = append(lines, fields[k])
		}
		return &cliError{msg: strings.Join(lines, "\n"), err: err}
	}
	if api.IsValidation(err) {
		var apiErr *api.Error
		if errors.As(err, &apiErr) {
			if msgs := apiErr.Messages(); len(msgs) > 0 {
				return &cliError{msg: strings.Join(msgs, "\n"), err: err}
			}
		}
	}
	return &cliError{msg: api.Alert(err, fallback), err: err}
}

type cliError struct {
	msg string
	err error
}

func (e *cliError) Error() string { return e.msg }
func (e *cliError) Unwrap() error { return e.err }

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(arg, "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task id %q", arg)
	}
	return id, nil
}
