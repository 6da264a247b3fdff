package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/fsops/cmd/fsops/opts"
	"github.com/walteh/fsops/cmd/fsops/ui"
	"github.com/walteh/fsops/pkg/clipboard"
	"github.com/walteh/fsops/pkg/config"
	"github.com/walteh/fsops/pkg/drop"
	"github.com/walteh/fsops/pkg/engine"
	"github.com/walteh/fsops/pkg/history"
	"github.com/walteh/fsops/pkg/naming"
	"gitlab.com/tozd/go/errors"
)

var (
	// Flags
	configFile string
	debug      bool
)

// newRootOpts creates a new rootOpts with initialized dependencies
func newRootOpts(ctx context.Context) (*opts.RootOpts, error) {
	// Create user logger
	userLogger := ui.NewUserLogger(ctx)

	// Load config; a missing default config file just means defaults
	cfg, err := loadConfig(ctx)
	if err != nil {
		return nil, errors.Errorf("loading config: %w", err)
	}

	// Create numbering service, seeded from the persisted counters
	namingSvc := naming.NewService(cfg.Naming)
	if cfg.Naming.CountersFile != "" {
		if err := namingSvc.LoadCounters(cfg.Naming.CountersFile); err != nil {
			return nil, errors.Errorf("loading numbering counters: %w", err)
		}
	}

	// Create history manager, restored from the last snapshot
	historyMgr := history.NewManager(cfg.History.MaxSize, cfg.MergeWindow())
	if cfg.History.SnapshotFile != "" {
		if err := historyMgr.Load(cfg.History.SnapshotFile); err != nil {
			return nil, errors.Errorf("loading history snapshot: %w", err)
		}
	}

	// Create trash
	trash, err := engine.NewTrash(trashDir(cfg))
	if err != nil {
		return nil, errors.Errorf("creating trash: %w", err)
	}

	// Create engine
	eng, err := engine.New(engine.Options{
		Config:    cfg,
		Naming:    namingSvc,
		History:   historyMgr,
		Clipboard: clipboard.New(),
		Trash:     trash,
	})
	if err != nil {
		return nil, errors.Errorf("creating engine: %w", err)
	}
	eng.Notifier().Subscribe(userLogger.Observe())

	// Create drop resolver
	resolver, err := drop.NewResolver(eng)
	if err != nil {
		return nil, errors.Errorf("creating drop resolver: %w", err)
	}

	return &opts.RootOpts{
		Config:     cfg,
		Engine:     eng,
		Resolver:   resolver,
		Naming:     namingSvc,
		UserLogger: userLogger,
	}, nil
}

func loadConfig(ctx context.Context) (*config.Config, error) {
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		zerolog.Ctx(ctx).Debug().Str("path", configFile).Msg("no config file, using defaults")
		return config.Default(), nil
	}
	return config.Load(ctx, configFile)
}

// trashDir resolves the trash root: the configured directory, or a per-user
// cache location.
func trashDir(cfg *config.Config) string {
	if cfg.Trash.Dir != "" {
		return cfg.Trash.Dir
	}
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "fsops", "trash")
	}
	return filepath.Join(cacheDir, "fsops", "trash")
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", ".fsops.yaml", "config file path")
	cmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")
}

// setupLogging configures zerolog based on flags
func setupLogging() {
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	log := zerolog.New(os.Stderr).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &log
}
