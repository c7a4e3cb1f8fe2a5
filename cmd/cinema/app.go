package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-cinema/internal/config"
	"github.com/vovakirdan/tui-cinema/internal/logging"
	"github.com/vovakirdan/tui-cinema/internal/platform/tui"
	"github.com/vovakirdan/tui-cinema/internal/probe"
	"github.com/vovakirdan/tui-cinema/internal/registry"
	"github.com/vovakirdan/tui-cinema/internal/storage"
)

// app bundles what every command resolves first.
type app struct {
	cfg    config.Config
	logger *log.Logger
	logs   *logging.HoldWriter
}

// loadApp loads the configuration and applies the global flag overrides.
func loadApp() app {
	cfg, err := config.Load(flagConfigPath)
	if err != nil {
		fail("Error loading config: %v", err)
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
	if flagDBPath != "" {
		cfg.Storage.DB = flagDBPath
	}

	logs := logging.NewHoldWriter(os.Stderr)
	return app{
		cfg:    cfg,
		logger: logging.New(logs, "cinema", cfg.Log.Level),
		logs:   logs,
	}
}

// openStore opens the history database. History is optional: failures are
// logged and nil is returned.
func (a app) openStore() *storage.Store {
	if a.cfg.Storage.DB == "" {
		return nil
	}
	store, err := storage.Open(a.cfg.Storage.DB)
	if err != nil {
		a.logger.Warn("could not open history database", "error", err)
		return nil
	}
	return store
}

// record saves a session when a store is available.
func (a app) record(store *storage.Store, sess storage.Session) {
	if store == nil {
		return
	}
	if _, err := store.RecordSession(sess); err != nil {
		a.logger.Warn("could not record session", "error", err)
	}
}

// detect resolves the optional backends once for this process.
func (a app) detect(wantAudio, wantColor bool) probe.Selection {
	sel := probe.Detect(probe.System(), probe.Wants{
		Audio:    wantAudio,
		Colorize: wantColor,
		FFmpeg:   a.cfg.Tools.FFmpeg,
	})
	for _, note := range sel.Notes {
		a.logger.Info(note)
	}
	return sel
}

// lookupCharset resolves a charset name, exiting on unknown names.
func lookupCharset(name string) registry.Charset {
	cs, err := registry.Lookup(name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fail("Run 'cinema charsets' to see available charsets.")
	}
	return cs
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// runWithProgress runs work behind the progress bar, or behind periodic log
// lines when stdout is not a terminal.
func (a app) runWithProgress(ctx context.Context, sel probe.Selection, title string, work tui.Work) error {
	if sel.Progress == probe.ProgressBar && sel.StdinTTY {
		return tui.RunProgress(ctx, title, os.Stdin, os.Stdout, work)
	}
	return work(ctx, tui.LogProgress(a.logger, title, 250))
}

// capped clamps a progress total to the frames that will actually be read.
func capped(report func(done, total int), limit int) func(done, total int) {
	return func(done, total int) {
		if total <= 0 || total > limit {
			total = limit
		}
		report(done, total)
	}
}

// fail prints an error line and exits with status 1.
func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
