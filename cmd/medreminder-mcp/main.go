// Command medreminder-mcp serves the medicine reminder tools over stdio (MCP).
//
// It shares the reminder database with the tray app. Triggers registered here
// are persisted and fired by the tray app's dispatcher. bbolt allows a single
// process per database file, so point data_dir elsewhere or close the tray app
// while an assistant holds the database.
//
// Usage:
//
//	medreminder-mcp [--config path] [--ephemeral] [--debug]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/mark3labs/mcp-go/server"
	"github.com/tartampluch/go-medreminder/internal/applog"
	"github.com/tartampluch/go-medreminder/internal/config"
	"github.com/tartampluch/go-medreminder/internal/engine"
	"github.com/tartampluch/go-medreminder/internal/notify"
	"github.com/tartampluch/go-medreminder/internal/storage"
	"github.com/tartampluch/go-medreminder/internal/tools"
)

func main() {
	os.Exit(runMain())
}

func runMain() int {
	showVersion := flag.Bool(config.FlagVersion, false, config.FlagDescVersion)
	debugMode := flag.Bool(config.FlagDebug, false, config.FlagDescDebug)
	ephemeral := flag.Bool(config.FlagEphemeral, false, config.FlagDescEphem)
	configPath := flag.String(config.FlagConfig, defaultConfigPath(), config.FlagDescConfig)
	flag.Parse()

	if *showVersion {
		applog.PrintVersion(os.Stdout)
		return config.ExitCodeSuccess
	}

	rt, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return config.ExitCodeError
	}
	level, _ := rt.Level()

	// Stdout carries the protocol; logs go to stderr.
	if logCloser := applog.Setup(os.Stderr, config.MCPLogFileName, level, *debugMode); logCloser != nil {
		defer func() {
			_ = logCloser.Close()
		}()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	applog.LogStartupInfo(config.CompTools)

	if err := run(ctx, rt, *ephemeral); err != nil {
		slog.Error(config.ErrAppFailed,
			config.LogKeyComponent, config.CompTools,
			config.LogKeyError, err,
		)
		return config.ExitCodeError
	}
	return config.ExitCodeSuccess
}

func run(ctx context.Context, rt *config.Runtime, ephemeral bool) error {
	var kv engine.KV
	if ephemeral || rt.Storage == config.StorageMemory {
		slog.Warn(config.MsgEphemeral, config.LogKeyComponent, config.CompTools)
		kv = storage.NewMemory()
	} else {
		dir, err := rt.ResolveDataDir()
		if err != nil {
			return err
		}
		db, err := storage.OpenBolt(filepath.Join(dir, config.DBFileName))
		if err != nil {
			return err
		}
		defer func() {
			_ = db.Close()
		}()
		slog.Info(config.MsgStorageOpened,
			config.LogKeyComponent, config.CompTools,
			config.LogKeyPath, db.Path())
		kv = db
	}

	// The dispatcher only persists triggers here; the tray app fires them.
	dispatcher, err := notify.NewDispatcher(kv, nil, engine.RealClock{}, rt.DispatchInterval, nil)
	if err != nil {
		return err
	}

	settings, err := engine.LoadSettings(ctx, kv)
	if err != nil {
		slog.Warn(config.ErrDecodeSettings, config.LogKeyComponent, config.CompTools, config.LogKeyError, err)
	}

	store := engine.NewStore(engine.NewBlobRepository(kv))
	srv := tools.NewServer(store, &engine.Compiler{Tone: settings.Tone}, dispatcher, engine.RealClock{})

	slog.Info(config.MsgToolServing, config.LogKeyComponent, config.CompTools)
	return server.ServeStdio(srv.MCPServer())
}

func defaultConfigPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, config.AppID, config.ConfigFileName)
}
