package main

import (
	"fmt"
	"log/slog"

	"github.com/innovatorved/tts-app/internal/config"
	"github.com/innovatorved/tts-app/internal/home"
	"github.com/innovatorved/tts-app/internal/jobs"
	"github.com/innovatorved/tts-app/internal/store"
)

// app bundles the wired-up components shared by every command.
type app struct {
	home    *home.Dir
	config  *config.Manager
	store   *store.Store
	manager *jobs.Manager
	logger  *slog.Logger
}

// cfg returns the current configuration, reflecting any hot reload.
func (a *app) cfg() *config.Config {
	return a.config.Get()
}

// newApp resolves the home directory and config, opens the job store, and
// builds the job manager.
func newApp() (*app, error) {
	dir, err := home.New(homeDir)
	if err != nil {
		return nil, err
	}
	if err := dir.EnsureExists(); err != nil {
		return nil, err
	}

	// First run scaffolds a commented default config in the home directory.
	if !dir.ConfigExists() {
		if err := config.WriteDefault(dir.ConfigPath()); err != nil {
			return nil, fmt.Errorf("failed to write default config: %w", err)
		}
	}

	cfgPath := cfgFile
	if cfgPath == "" {
		cfgPath = dir.ConfigPath()
	}
	cm, err := config.NewManager(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg := cm.Get()

	logger := slog.Default()
	cm.OnChange(func(*config.Config) {
		logger.Info("configuration reloaded", "path", cfgPath)
	})
	cm.WatchConfig()

	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = dir.DBPath()
	}

	st, err := store.Open(dbPath, logger)
	if err != nil {
		return nil, err
	}

	return &app{
		home:   dir,
		config: cm,
		store:  st,
		manager: jobs.NewManager(jobs.ManagerConfig{
			Store:  st,
			Logger: logger,
		}),
		logger: logger,
	}, nil
}

// Close releases the app's resources.
func (a *app) Close() error {
	return a.store.Close()
}

// outputDir returns the configured default output directory.
func (a *app) outputDir() string {
	if dir := a.cfg().OutputDir; dir != "" {
		return dir
	}
	return a.home.OutputDir()
}
