// Package main provides the taskdeck binary entry point. Taskdeck is a
// terminal client for the todo REST service: it keeps a logged-in
// session on disk and offers task CRUD, filtering, search, and
// statistics from the command line.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/c360studio/taskdeck/commands"
	"github.com/c360studio/taskdeck/config"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "taskdeck"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		configPath string
		apiURL     string
		timeout    time.Duration
		logLevel   string
	)

	cmdCtx := &commands.Context{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Terminal client for the todo API",
		Long: `Taskdeck is a terminal client for the todo REST service.

It stores your session under ~/.config/taskdeck and talks to the
backend over HTTP: list, add, edit, complete, and delete tasks, filter
and search the cached collection, and view completion statistics.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(logLevel)
			slog.SetDefault(logger)

			cfg, err := loadConfig(configPath, logger)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if apiURL != "" {
				cfg.API.BaseURL = apiURL
			}
			if timeout != 0 {
				cfg.API.Timeout = timeout
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			*cmdCtx = *commands.NewContext(cfg, logger)
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "API base URL (overrides config)")
	cmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Request timeout (overrides config)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	commands.AddCommands(cmd, cmdCtx)

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	})

	return cmd
}

// loadConfig resolves configuration: an explicit file wins outright,
// otherwise the layered loader applies.
func loadConfig(configPath string, logger *slog.Logger) (*config.Config, error) {
	if configPath != "" {
		cfg, err := config.LoadFromFile(configPath)
		if err != nil {
			return nil, err
		}
		merged := config.DefaultConfig()
		merged.Merge(cfg)
		return merged, nil
	}
	return config.NewLoader(logger).Load()
}

func newLogger(logLevel string) *slog.Logger {
	level := slog.LevelWarn
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
