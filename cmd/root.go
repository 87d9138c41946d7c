package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/Tiliavir/workday-tracker/internal/config"
	"github.com/Tiliavir/workday-tracker/internal/logging"
	"github.com/Tiliavir/workday-tracker/internal/settings"
	"github.com/Tiliavir/workday-tracker/internal/storage"
	"github.com/Tiliavir/workday-tracker/internal/tracker"
)

var (
	flagBackend   string
	flagDir       string
	flagVerbose   bool
	flagEphemeral bool
)

// Replaced in tests.
var (
	nowFunc       = time.Now
	isInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}
)

// sqliteFile is the database name inside the data directory.
const sqliteFile = "wdt.db"

var rootCmd = &cobra.Command{
	Use:   "wdt",
	Short: "Workday Tracker – clock in, track jobs, share your day",
	Long: `wdt records when your working day starts and ends and the jobs you work
on in between. Data is stored in ~/.wdt/ (or $WDT_HOME) as JSON files or a
SQLite database.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: openApp,
}

// Execute is the entry point called from main.
func Execute() {
	ctx := context.Background()
	err := rootCmd.ExecuteContext(ctx)
	if closeErr := closeApp(ctx); err == nil {
		err = closeErr
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagBackend, "backend", "", `Storage backend: "file" or "sqlite" (default from config)`)
	pf.StringVar(&flagDir, "dir", "", "Data directory (default from config)")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "Log debug output to stderr")
	pf.BoolVar(&flagEphemeral, "ephemeral", false, "Keep data in memory only; nothing is read or written")

	rootCmd.AddCommand(inCmd)
	rootCmd.AddCommand(outCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(endCmd)
	rootCmd.AddCommand(jobCmd)
	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(settingsCmd)
}

// app holds everything a command needs. It is opened once per invocation.
type app struct {
	cfg      config.Config
	logger   *slog.Logger
	closer   io.Closer
	store    *tracker.Store
	settings *settings.Settings
}

var current *app

func openApp(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	path, err := config.DefaultPath()
	if err != nil {
		return storageError(err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return userError(err)
	}
	if flagBackend != "" {
		cfg.Storage.Backend = flagBackend
	}
	if flagDir != "" {
		cfg.Storage.Dir = flagDir
	}
	if flagVerbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return userError(err)
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return userError(err)
	}
	logger := logging.New(cmd.ErrOrStderr(), level, cfg.Log.Format)
	ctx = logging.ContextWithLogger(ctx, logger)
	cmd.SetContext(ctx)

	a := &app{cfg: cfg, logger: logger}
	var gw storage.Gateway
	switch {
	case flagEphemeral:
		gw = storage.NewMemoryGateway()
	case cfg.Storage.Backend == config.BackendSQLite:
		db, err := storage.OpenSQLite(filepath.Join(cfg.Storage.Dir, sqliteFile))
		if err != nil {
			return storageError(err)
		}
		gw, a.closer = db, db
	default:
		gw = storage.NewFileGateway(cfg.Storage.Dir)
	}
	logger.Debug("opening store", "backend", cfg.Storage.Backend, "dir", cfg.Storage.Dir, "ephemeral", flagEphemeral)

	a.store = tracker.Open(ctx, gw, tracker.WithClock(nowFunc), tracker.WithLogger(logger))
	a.settings = settings.Open(ctx, gw,
		settings.WithDefault(cfg.ExpectedWorkHours),
		settings.WithLogger(logger),
	)
	current = a
	return nil
}

// closeApp drains pending writes. It is a no-op when no command opened the app.
func closeApp(ctx context.Context) error {
	a := current
	current = nil
	if a == nil {
		return nil
	}
	var errs []error
	if err := a.store.Close(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := a.settings.Close(ctx); err != nil {
		errs = append(errs, err)
	}
	if a.closer != nil {
		if err := a.closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return storageError(err)
	}
	return nil
}
