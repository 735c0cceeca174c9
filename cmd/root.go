package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"photomigrate/internal/config"
)

var (
	cfgPath string
	dbPath  string
	workers int
	verbose bool

	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "photomigrate",
	Short: "Sort camera dumps into a chronological archive",
	Long: `photomigrate evaluates a batch of raw photos and videos against an
existing archive, drops duplicates, and renames the rest into
day-stamped folders (YYYYMMDD/YYYYMMDD_NNN.ext).

Duplicates are detected byte-for-byte and perceptually: a small JPEG
exported shortly after a large original counts as a copy of it.

Example usage:
  photomigrate evaluate             # Build a plan (read-only)
  photomigrate list                 # Inspect the latest plan
  photomigrate process --dry-run    # Preview copies and conversions
  photomigrate process              # Execute the plan`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	homeDir, _ := os.UserHomeDir()
	defaultDB := filepath.Join(homeDir, ".photomigrate", "photomigrate.db")

	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Path to config file (default: photomigrate.toml in the user config dir or cwd)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", defaultDB, "Path to SQLite database")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 0, "Number of parallel workers (0 = from config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// loadConfig loads the configuration and applies flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if workers > 0 {
		cfg.Workers = workers
	}
	return cfg, nil
}
