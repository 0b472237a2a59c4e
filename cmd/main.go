package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"eyerest/internal/api"
	"eyerest/internal/app"
	"eyerest/internal/platform"
	"eyerest/internal/scheduler"
	"eyerest/internal/storage"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (default: <config dir>/eyerest/config.yaml)")
	dataDirFlag := flag.String("data-dir", "", "Data directory for the database")
	debug := flag.Bool("debug", false, "Enable debug logging")
	logJSON := flag.Bool("log-json", false, "Write logs as JSON instead of console output")
	flag.Parse()

	if !*logJSON {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	dataDir := *dataDirFlag
	if dataDir == "" {
		dir, err := platform.DataDir()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to resolve data directory")
		}
		dataDir = dir
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Fatal().Err(err).Str("dir", dataDir).Msg("Failed to create data directory")
	}

	if *configPath == "" {
		dir, err := platform.ConfigDir()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to resolve config directory")
		}
		*configPath = filepath.Join(dir, storage.ConfigFileName)
	}

	cfg, err := storage.LoadConfig(*configPath, dataDir)
	if err != nil {
		log.Fatal().Err(err).Str("path", *configPath).Msg("Failed to load config")
	}
	if _, statErr := os.Stat(*configPath); errors.Is(statErr, os.ErrNotExist) {
		if err := storage.SaveConfig(*configPath, cfg); err != nil {
			log.Warn().Err(err).Str("path", *configPath).Msg("Failed to write default config")
		}
	}

	applyLogLevel(cfg, *debug)

	location, err := cfg.TimeLocation()
	if err != nil {
		log.Fatal().Err(err).Str("location", cfg.Location).Msg("Invalid time zone")
	}

	lock, err := platform.AcquireInstanceLock(cfg.DatabasePath)
	if err != nil {
		if errors.Is(err, platform.ErrAlreadyRunning) {
			log.Warn().Err(err).Msg("Another instance is already running")
			return
		}
		log.Fatal().Err(err).Msg("Failed to acquire instance lock")
	}
	defer func() {
		_ = lock.Release()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	appConfig := app.Config{
		DatabasePath:   cfg.DatabasePath,
		Location:       location,
		IdleCheckTicks: cfg.IdleCheckTicks,
		IdleSource:     platform.NewIdleSource(),
	}
	if loginItem, err := platform.NewLoginItem(); err != nil {
		log.Warn().Err(err).Msg("Launch at login unavailable")
	} else {
		appConfig.LoginItem = loginItem
	}

	application, err := app.New(ctx, appConfig)
	if err != nil {
		log.Fatal().Err(err).Str("database", cfg.DatabasePath).Msg("Failed to start application")
	}
	defer func() {
		if err := application.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close application")
		}
	}()

	log.Info().
		Str("version", Version).
		Str("database", cfg.DatabasePath).
		Str("config", *configPath).
		Str("lock", lock.Address()).
		Msg("Starting eyerest")

	jobs := scheduler.New(application.Timer(), application.Analytics(), scheduler.Options{Location: location})
	server := api.NewServer(application, application.Timer())

	watcher, err := storage.NewConfigWatcher(*configPath, dataDir, func(updated storage.Config) {
		applyLogLevel(updated, *debug)
		if updated.HTTPAddr != cfg.HTTPAddr || updated.DatabasePath != cfg.DatabasePath {
			log.Warn().Msg("Config change to http_addr or database_path takes effect after restart")
		}
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create config watcher")
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error { return jobs.Run(groupCtx) })
	group.Go(func() error { return server.Run(groupCtx, cfg.HTTPAddr) })
	group.Go(func() error { return watcher.Run(groupCtx) })
	group.Go(func() error { return application.Run(groupCtx) })

	if err := group.Wait(); err != nil {
		log.Error().Err(err).Msg("Stopped with error")
		return
	}
	log.Info().Msg("Shutdown complete")
}

func applyLogLevel(cfg storage.Config, debug bool) {
	level := cfg.Level()
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
}
