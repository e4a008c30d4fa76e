package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/clubdesk/clubdesk/internal/api"
	"github.com/clubdesk/clubdesk/internal/cache"
	"github.com/clubdesk/clubdesk/internal/config"
	"github.com/clubdesk/clubdesk/internal/form"
	"github.com/clubdesk/clubdesk/internal/prefs"
	"github.com/clubdesk/clubdesk/internal/prompt"
	"github.com/clubdesk/clubdesk/internal/ui"
)

// Options configure the ClubDesk application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/clubdesk/prefs.toml
	PollEvery  int    // seconds; zero uses default
	Plain      bool   // line prompts instead of the full-screen UI
	Debug      bool
	Args       []string // optional target: "new" or "edit ID"
}

// Run boots ClubDesk until the user exits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	target, err := ParseTarget(opts.Args)
	if err != nil {
		return err
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}
	userPrefs, prefsErr := prefs.Load(prefsPath)

	logger, closeLog, err := openLogger(cfg.LogFile, opts.Debug)
	if err != nil {
		return err
	}
	defer closeLog()
	if prefsErr != nil {
		logger.Warn("prefs unreadable, using defaults", "path", prefsPath, "error", prefsErr)
	}

	client, err := api.NewClient(cfg.APIBase, cfg.Resource,
		api.WithTimeout(cfg.RequestTimeout),
		api.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("init api client: %w", err)
	}

	store := cache.NewStore(cfg.Resource)
	reader := newCachedClient(client, store)
	resource := form.Resource{
		Name:     cfg.Resource,
		Label:    cfg.ResourceLabel,
		ListPath: cfg.ListPath(),
	}
	logger.Info("starting", "api", cfg.APIBase, "resource", cfg.Resource, "plain", opts.Plain)

	if opts.Plain {
		return prompt.Run(ctx, prompt.Options{
			Mode:     target.Mode,
			Resource: resource,
			Client:   reader,
			Cache:    store,
			Driver:   prompt.NewSurveyDriver(os.Stdin, os.Stdout, os.Stderr),
			Logger:   logger,
		})
	}

	interval := defaultPollInterval
	if opts.PollEvery > 0 {
		interval = time.Duration(opts.PollEvery) * time.Second
	}
	StartPoller(ctx, store, client, interval, logger)

	startPath := ""
	if target.Set {
		startPath = target.Path(resource.ListPath)
	}
	return ui.Run(ctx, ui.Options{
		Client:    reader,
		Store:     store,
		Resource:  resource,
		StartPath: startPath,
		ThemeName: userPrefs.Theme,
		User:      userPrefs.User,
		PrefsPath: prefsPath,
		Logger:    logger,
	})
}

// openLogger writes structured logs to path. The terminal belongs to the UI,
// so nothing is logged to stderr.
func openLogger(path string, debug bool) (*slog.Logger, func(), error) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	if path == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
	return logger, func() { _ = f.Close() }, nil
}
