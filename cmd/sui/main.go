// Command sui runs browser automation scripts and keeps their history.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/hairizuanbinnoorazman/uiscript/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	// Version is the application version (set during build).
	Version = "dev"

	// Commit is the git commit hash (set during build).
	Commit = "unknown"

	// BuildDate is the build date (set during build).
	BuildDate = "unknown"
)

// app carries what every subcommand loads before it runs.
type app struct {
	configFile string
	logLevel   string

	cfg    *Config
	logger logger.Logger
}

func (a *app) load() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	cfg, err := LoadConfig(a.configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}

	a.cfg = cfg
	a.logger = logger.NewLogrusLoggerWithOptions(logger.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	return nil
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "sui",
		Short:         "Run browser automation scripts",
		Long:          "sui runs plain-language browser scripts, recovers from failed steps and records every run.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.configFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "sui %s (commit: %s, built: %s)\n", Version, Commit, BuildDate)
		},
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(newRunCmd(a))
	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newHistoryCmd(a))
	rootCmd.AddCommand(newMigrateCmd(a))
	rootCmd.AddCommand(newServeCmd(a))

	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
