package main

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/hpungsan/delgists/internal/api"
	"github.com/hpungsan/delgists/internal/browse"
	"github.com/hpungsan/delgists/internal/config"
	"github.com/hpungsan/delgists/internal/console"
	"github.com/hpungsan/delgists/internal/db"
	"github.com/hpungsan/delgists/internal/errors"
)

// newCLIApp creates the CLI application with all commands.
// Browsing is the default action when no command is given.
func newCLIApp(in io.Reader, out, errOut io.Writer) *cli.App {
	app := &cli.App{
		Name:      "delgists",
		Usage:     "Browse your GitHub gists page by page and delete them in batches",
		Version:   Version,
		Reader:    in,
		Writer:    out,
		ErrWriter: errOut,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "home", Value: defaultHome(), Usage: "Directory holding config.json, .env and the journal"},
			&cli.StringFlag{Name: "api-root", Usage: "Base URL of the gists API (default https://api.github.com)"},
			&cli.IntFlag{Name: "page-size", Aliases: []string{"s"}, Usage: "Gists shown per page (default 20)"},
			&cli.BoolFlag{Name: "no-journal", Usage: "Do not record deleted gists locally"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"V"}, Usage: "Log API exchanges to stderr"},
		},
		Action: browseAction,
		Commands: []*cli.Command{
			browseCmd(),
			historyCmd(),
			loginCmd(),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// env is what every command resolves from flags, files and environment.
type env struct {
	baseDir string
	cfg     *config.Config
	logger  *logrus.Logger
	console *console.Console
}

// setup resolves configuration with the precedence flags > environment >
// config file > defaults, and builds the logger and console.
func setup(c *cli.Context) (*env, error) {
	baseDir := c.String("home")

	cfg, err := config.Resolve(baseDir)
	if err != nil {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("failed to load config: %v", err))
	}
	cfg = config.Merge(cfg, &config.Config{
		APIRoot:        c.String("api-root"),
		PageSize:       c.Int("page-size"),
		DisableJournal: c.Bool("no-journal"),
	})
	if cfg.PageSize < 1 {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("page size must be at least 1, got %d", cfg.PageSize))
	}

	logger, err := newLogger(c.App.ErrWriter, cfg.LogLevel, c.Bool("verbose"))
	if err != nil {
		return nil, err
	}

	return &env{
		baseDir: baseDir,
		cfg:     cfg,
		logger:  logger,
		console: console.New(c.App.Reader, c.App.Writer),
	}, nil
}

// newLogger builds a text logger writing to w. verbose forces debug level.
func newLogger(w io.Writer, level string, verbose bool) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: time.TimeOnly})

	if level == "" {
		level = "warn"
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("invalid log level %q", level))
	}
	if verbose {
		lvl = logrus.DebugLevel
	}
	logger.SetLevel(lvl)
	return logger, nil
}

// promptAndSave asks for credentials, stores them in the config file and
// applies them to rt.cfg.
func (rt *env) promptAndSave(ctx context.Context) error {
	creds, err := rt.console.PromptCredentials(ctx)
	if err != nil {
		if stderrors.Is(err, io.EOF) {
			return errors.NewInvalidRequest("no credentials entered")
		}
		return err
	}

	// Only the file's own values are persisted, not environment overrides.
	fileCfg, err := config.Load(rt.baseDir)
	if err != nil {
		return errors.NewInvalidRequest(fmt.Sprintf("failed to load config: %v", err))
	}
	fileCfg.User = creds.User
	fileCfg.Token = creds.Secret
	if err := config.Save(rt.baseDir, fileCfg); err != nil {
		return errors.NewInternal(err)
	}
	rt.logger.WithField("user", creds.User).Info("credentials saved")

	rt.cfg.User = creds.User
	rt.cfg.Token = creds.Secret
	return nil
}

// browseCmd creates the browse command.
func browseCmd() *cli.Command {
	return &cli.Command{
		Name:   "browse",
		Usage:  "Page through your gists and delete selected ones (default)",
		Action: browseAction,
	}
}

func browseAction(c *cli.Context) error {
	rt, err := setup(c)
	if err != nil {
		return outputError(err)
	}
	ctx := c.Context

	rt.console.Banner("Welcome to DelGists")
	defer rt.console.Banner("GoodBye!")

	if !rt.cfg.Credentials().Valid() {
		if err := rt.promptAndSave(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return outputError(err)
		}
	}

	client, err := api.New(api.Options{
		APIRoot:     rt.cfg.APIRoot,
		Credentials: rt.cfg.Credentials(),
		UserAgent:   "delgists/" + Version,
		Timeout:     rt.cfg.Timeout(),
		Logger:      rt.logger,
	})
	if err != nil {
		return outputError(err)
	}

	journal, closeJournal := rt.openJournal()
	defer closeJournal()

	session := browse.NewSession(browse.Options{
		Client:   client,
		Console:  rt.console,
		Logger:   rt.logger,
		PageSize: rt.cfg.PageSize,
		Journal:  journal,
		APIRoot:  rt.cfg.APIRoot,
	})
	if err := session.Run(ctx); err != nil {
		return outputError(err)
	}
	return nil
}

// openJournal opens the deletion journal unless it is disabled. A journal
// that cannot be opened is logged and skipped.
func (rt *env) openJournal() (*sql.DB, func()) {
	if rt.cfg.DisableJournal {
		return nil, func() {}
	}
	database, err := db.Init(rt.baseDir)
	if err != nil {
		rt.logger.WithError(err).Warn("deletion journal unavailable")
		return nil, func() {}
	}
	return database, func() { database.Close() }
}

// historyCmd creates the history command.
func historyCmd() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List gists deleted from this machine, newest first",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: 20, Usage: "Maximum entries to show"},
			&cli.IntFlag{Name: "offset", Value: 0, Usage: "Entries to skip"},
			&cli.BoolFlag{Name: "json", Usage: "Print entries as JSON"},
		},
		Action: func(c *cli.Context) error {
			limit, offset := c.Int("limit"), c.Int("offset")
			if limit < 1 || offset < 0 {
				return outputError(errors.NewInvalidRequest("limit must be positive and offset non-negative"))
			}

			database, err := db.Init(c.String("home"))
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			defer database.Close()

			entries, err := db.ListDeletions(c.Context, database, limit, offset)
			if err != nil {
				return outputError(err)
			}

			if c.Bool("json") {
				return outputJSON(c.App.Writer, entries)
			}
			if len(entries) == 0 {
				fmt.Fprintln(c.App.Writer, "No deletions recorded")
				return nil
			}
			for _, e := range entries {
				fmt.Fprintln(c.App.Writer, formatDeletion(e))
			}
			return nil
		},
	}
}

// formatDeletion renders one journal entry as a single line.
func formatDeletion(e db.Deletion) string {
	at := time.Unix(e.DeletedAt, 0).Format("2006-01-02 15:04")
	return fmt.Sprintf("%s  %s  %s", at, e.GistID, e.Label)
}

// loginCmd creates the login command.
func loginCmd() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Prompt for GitHub credentials and store them in the config file",
		Action: func(c *cli.Context) error {
			rt, err := setup(c)
			if err != nil {
				return outputError(err)
			}
			if err := rt.promptAndSave(c.Context); err != nil {
				if c.Context.Err() != nil {
					return nil
				}
				return outputError(err)
			}
			rt.console.Println("Credentials saved to " + filepath.Join(rt.baseDir, "config.json"))
			return nil
		},
	}
}

// Helper functions

// outputJSON marshals result to w as JSON.
func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if gErr, ok := errors.As(err); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", gErr.Code, gErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}
