package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"bilitui/internal/bili"
	"bilitui/internal/config"
	"bilitui/internal/credential"
	"bilitui/internal/logging"
	"bilitui/internal/player"
	"bilitui/internal/prefs"
	"bilitui/internal/state"
	"bilitui/internal/ui"
)

// Options configure the bilitui application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/bilitui/prefs.toml
	PollEvery  int    // seconds; zero uses the configured or default interval
}

// Run boots the bilitui TUI until the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.LogFile)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	userPrefs, err := prefs.Load(opts.PrefsPath)
	if err != nil {
		logger.Warn("load prefs failed, using defaults", zap.Error(err))
	}

	credStore, err := credential.NewStore(cfg.ConfigDir)
	if err != nil {
		return fmt.Errorf("init credential store: %w", err)
	}

	client := bili.New()
	store := &state.Store{}

	// A stored identity is optional. A missing file means first run; a
	// corrupt file is logged and treated the same, never a hard failure.
	creds, err := credStore.Load()
	switch {
	case err == nil:
		store.SetCredentials(creds)
		client.SetCredentials(creds)
		logger.Info("restored saved credentials", zap.String("user_id", creds.DedeUserID))
	case errors.Is(err, credential.ErrNotFound):
		logger.Info("no saved credentials, starting logged out")
	case errors.Is(err, credential.ErrCorrupt):
		logger.Warn("credential file unreadable, starting logged out", zap.Error(err))
	default:
		return fmt.Errorf("load credentials: %w", err)
	}

	interval := time.Duration(cfg.PollSeconds) * time.Second
	if opts.PollEvery > 0 {
		interval = time.Duration(opts.PollEvery) * time.Second
	}

	launcher := player.New(cfg.MpvPath, credStore, logger)

	uiOpts := ui.Options{
		Context:     ctx,
		Client:      client,
		Store:       store,
		Credentials: credStore,
		Player:      launcher,
		Logger:      logger,
		PollTick:    interval,
		ThemeName:   userPrefs.Theme,
		PrefsPath:   opts.PrefsPath,
	}
	return ui.Run(uiOpts)
}
