// Package main provides a desktop avatar application for radio studios that
// switches between an idle and a talking image based on microphone activity.
//
// Usage:
//
//	avatar [-config path/to/config.json]
//
// If -config is not specified, the application looks for config.json in the
// same directory as the binary.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/oszuidwest/zwfm-avatar/internal/audio"
	"github.com/oszuidwest/zwfm-avatar/internal/avatar"
	"github.com/oszuidwest/zwfm-avatar/internal/bridge"
	"github.com/oszuidwest/zwfm-avatar/internal/capture"
	"github.com/oszuidwest/zwfm-avatar/internal/config"
	"github.com/oszuidwest/zwfm-avatar/internal/eventlog"
	"github.com/oszuidwest/zwfm-avatar/internal/util"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (default: config.json next to binary)")
	showVersion := flag.Bool("version", false, "Print version information and exit")
	flag.Parse()

	if *showVersion {
		slog.Info("version info", "version", Version, "commit", Commit, "build_time", BuildTime)
		return
	}

	if *configPath == "" {
		execPath, err := os.Executable()
		if err != nil {
			slog.Error("failed to get executable path", "error", err)
			os.Exit(1)
		}
		*configPath = filepath.Join(filepath.Dir(execPath), "config.json")
	}

	slog.Info("using config file", "path", *configPath)

	cfg := config.New(*configPath)
	if err := cfg.Load(); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Both pose images are required; refusing to start beats showing a
	// broken avatar on air.
	assets, err := avatar.LoadAssets(cfg.AssetsDir())
	if err != nil {
		slog.Error("failed to load avatar images", "dir", cfg.AssetsDir(), "error", err)
		os.Exit(1)
	}

	// A missing capture backend means the avatar can never react to the
	// microphone, so refuse to start rather than serve a frozen pose.
	ffmpegPath := util.ResolveFFmpegPath(cfg.GetFFmpegPath())
	if !audio.BackendAvailable(ffmpegPath) {
		slog.Error("no audio capture backend found (install ffmpeg, or alsa-utils on Linux)",
			"configured_ffmpeg", cfg.GetFFmpegPath())
		os.Exit(1)
	}

	eventLog, err := eventlog.NewLogger(eventlog.DefaultLogPath(cfg.Snapshot().WebPort))
	if err != nil {
		slog.Warn("event log unavailable", "error", err)
		eventLog = nil
	}

	br := bridge.New()
	engine := capture.New(cfg, ffmpegPath, br, eventLog)

	controller := avatar.NewController(assets, cfg)
	go controller.Run(br)

	srv := NewServer(cfg, engine, controller)

	slog.Info("starting microphone capture")
	if err := engine.Start(); err != nil {
		slog.Error("failed to start capture", "error", err)
		os.Exit(1)
	}

	// Start web server.
	httpServer := srv.Start()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, util.ShutdownSignals()...)
	<-sigChan

	slog.Info("shutting down")

	// Stop version checker goroutine
	srv.version.Stop()

	// Shut down HTTP server.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	if err := engine.Stop(); err != nil {
		slog.Error("error stopping capture", "error", err)
	}

	// Closing the bridge ends the controller goroutine.
	br.Close()

	if eventLog != nil {
		if err := eventLog.Close(); err != nil {
			slog.Debug("event log close error", "error", err)
		}
	}

	slog.Info("shutdown complete")
}
