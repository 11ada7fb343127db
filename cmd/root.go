package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/philocompass/compass/internal/config"
	"github.com/philocompass/compass/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "compass",
	Short: "Sixteen-question philosophical compass",
	Long:  "Compass asks sixteen questions, places your answers among everyone else's, and names the philosopher closest to you.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
	SilenceUsage: true,
}

// Execute runs the command tree. Cancelling ctx stops the TUI.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", config.DefaultConfigPath(), "Path to YAML config file")
	flags.String("api", "", "Backend base URL (overrides COMPASS_API_URL)")
	flags.String("store", "", "Session store backend: sqlite, redis or memory")
	flags.String("state", "", "Path to SQLite state file (overrides COMPASS_DB env var)")
	flags.String("log", "", "Path to log file")
	flags.Bool("verbose", false, "Log at debug level")

	rootCmd.AddCommand(pingCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig layers command-line flags over the file and environment.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}

	if v, _ := cmd.Flags().GetString("api"); v != "" {
		cfg.API.BaseURL = v
	}
	if v, _ := cmd.Flags().GetString("store"); v != "" {
		cfg.Store.Backend = v
	}
	if v, _ := cmd.Flags().GetString("state"); v != "" {
		cfg.Store.Path = v
	}
	if v, _ := cmd.Flags().GetString("log"); v != "" {
		cfg.Log.Path = v
	}
	if v, _ := cmd.Flags().GetBool("verbose"); v {
		cfg.Verbose = true
	}

	if cfg.Log.Path == "" {
		p, err := config.DefaultLogPath()
		if err != nil {
			return cfg, fmt.Errorf("resolve log path: %w", err)
		}
		cfg.Log.Path = p
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// resolveDBPath returns the configured state file (highest priority), then
// COMPASS_DB, then the default XDG path.
func resolveDBPath(cfg config.Config) (string, error) {
	if cfg.Store.Path != "" {
		return cfg.Store.Path, store.EnsureDir(cfg.Store.Path)
	}
	return store.DefaultDBPath()
}
