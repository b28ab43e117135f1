// Package cli implements the metryx command line interface.
package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/metryx-io/metryx/internal/adapters/driven/config/file"
	"github.com/metryx-io/metryx/internal/adapters/driven/secrets"
	"github.com/metryx-io/metryx/internal/adapters/driven/storage/sqlite"
	"github.com/metryx-io/metryx/internal/core/services"
	"github.com/metryx-io/metryx/internal/integrations"
	"github.com/metryx-io/metryx/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	flagVerbose bool
	flagConfig  string
)

var rootCmd = &cobra.Command{
	Use:   "metryx",
	Short: "Marketing metrics extraction pipeline",
	Long: `metryx extracts campaign metrics from marketing platforms,
normalizes them into a canonical record shape and stores them
deduplicated by content fingerprint.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(flagVerbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default ~/.metryx/config.toml)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// app bundles everything a command needs, wired from configuration.
type app struct {
	cfg         file.Config
	store       *sqlite.Store
	registry    *services.PlatformRegistry
	extraction  *services.ExtractionService
	credentials *services.CredentialService
	scheduler   *services.Scheduler
}

// newApp opens the store and wires the services. Callers must Close.
func newApp() (*app, error) {
	configPath := flagConfig
	if configPath == "" {
		dir, err := file.DefaultDir()
		if err != nil {
			return nil, err
		}
		configPath = filepath.Join(dir, "config.toml")
	}

	cfg, err := file.Load(configPath)
	if err != nil {
		return nil, err
	}
	if cfg.Logging.Verbose {
		logger.SetVerbose(true)
	}

	store, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	cipher, err := secrets.LoadOrCreate(cfg.Secrets.KeyPath)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("loading encryption key: %w", err)
	}

	registry := services.NewPlatformRegistry(integrations.NewFactory())
	extraction := services.NewExtractionService(
		store.Projects(), store.Sources(), store.Credentials(),
		store.Jobs(), store.Data(), cipher, registry)

	return &app{
		cfg:         cfg,
		store:       store,
		registry:    registry,
		extraction:  extraction,
		credentials: services.NewCredentialService(store.Credentials(), cipher, registry),
		scheduler: services.NewScheduler(store.Sources(), extraction,
			services.WithPollInterval(cfg.Scheduler.PollInterval()),
			services.WithLookback(cfg.Scheduler.Lookback())),
	}, nil
}

// Close releases the app's resources.
func (a *app) Close() {
	a.store.Close()
}
