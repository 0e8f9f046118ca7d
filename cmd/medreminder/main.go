package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/tartampluch/go-medreminder/internal/applog"
	"github.com/tartampluch/go-medreminder/internal/config"
	"github.com/tartampluch/go-medreminder/internal/engine"
	"github.com/tartampluch/go-medreminder/internal/notify"
	"github.com/tartampluch/go-medreminder/internal/server"
	"github.com/tartampluch/go-medreminder/internal/storage"
	"github.com/tartampluch/go-medreminder/internal/ui"
)

// main delegates to runMain so deferred calls run before os.Exit.
func main() {
	os.Exit(runMain())
}

// runMain manages the application lifecycle, argument parsing, and exit codes.
func runMain() int {
	// -------------------------------------------------------------------------
	// 1. CLI Argument Parsing
	// -------------------------------------------------------------------------
	showVersion := flag.Bool(config.FlagVersion, false, config.FlagDescVersion)
	debugMode := flag.Bool(config.FlagDebug, false, config.FlagDescDebug)
	configPath := flag.String(config.FlagConfig, defaultConfigPath(), config.FlagDescConfig)
	flag.Parse()

	if *showVersion {
		applog.PrintVersion(os.Stdout)
		return config.ExitCodeSuccess
	}

	// -------------------------------------------------------------------------
	// 2. Configuration & Logging
	// -------------------------------------------------------------------------
	rt, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return config.ExitCodeError
	}
	level, _ := rt.Level()

	if logCloser := applog.Setup(os.Stdout, config.LogFileName, level, *debugMode); logCloser != nil {
		defer func() {
			_ = logCloser.Close()
		}()
	}

	// -------------------------------------------------------------------------
	// 3. Context & Signal Handling
	// -------------------------------------------------------------------------
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	applog.LogStartupInfo(config.CompMain)

	// -------------------------------------------------------------------------
	// 4. Application Logic
	// -------------------------------------------------------------------------
	if err := run(ctx, rt); err != nil {
		slog.Error(config.ErrAppFailed,
			config.LogKeyComponent, config.CompMain,
			config.LogKeyError, err,
		)
		return config.ExitCodeError
	}

	slog.Info(config.MsgAppStop, config.LogKeyComponent, config.CompMain)
	return config.ExitCodeSuccess
}

// run wires storage, the dispatcher, the feed server and the tray UI, then blocks in the UI loop.
func run(ctx context.Context, rt *config.Runtime) error {
	a := app.NewWithID(config.AppID)
	a.Preferences().SetString(config.PrefLastRun, config.Version)

	kv, closer, err := openKV(rt, a)
	if err != nil {
		return err
	}
	if closer != nil {
		defer func() {
			_ = closer.Close()
		}()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	dispatcher, err := notify.NewDispatcher(kv, ui.Notifier{App: a}, engine.RealClock{}, rt.DispatchInterval, notify.NewMetrics(registry))
	if err != nil {
		return err
	}
	dispatcher.Records = engine.NewBlobRepository(kv)
	feed := server.NewFeedServer(rt.Port, registry)

	gui := ui.NewMedReminderApp(a, ctx, kv, dispatcher, feed)
	gui.RefreshInterval = rt.RefreshInterval

	// Quit the UI when the root context is cancelled.
	go func() {
		<-ctx.Done()
		slog.Info(config.MsgCtxCancel, config.LogKeyComponent, config.CompMain)
		fyne.Do(a.Quit)
	}()

	gui.Run()
	return nil
}

// openKV selects the storage backend named by the runtime configuration.
// The closer is nil for backends without resources to release.
func openKV(rt *config.Runtime, a fyne.App) (engine.KV, io.Closer, error) {
	switch rt.Storage {
	case config.StoragePreferences:
		return storage.NewPreferences(a.Preferences()), nil, nil
	case config.StorageMemory:
		slog.Warn(config.MsgEphemeral, config.LogKeyComponent, config.CompMain)
		return storage.NewMemory(), nil, nil
	default:
		dir, err := rt.ResolveDataDir()
		if err != nil {
			return nil, nil, err
		}
		db, err := storage.OpenBolt(filepath.Join(dir, config.DBFileName))
		if err != nil {
			return nil, nil, err
		}
		slog.Info(config.MsgStorageOpened,
			config.LogKeyComponent, config.CompMain,
			config.LogKeyStorage, rt.Storage,
			config.LogKeyPath, db.Path())
		return db, db, nil
	}
}

// defaultConfigPath is config.yaml in the per-user config directory, or "" when that is unknown.
func defaultConfigPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, config.AppID, config.ConfigFileName)
}
