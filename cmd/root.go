package cmd

import (
	"fmt"
	"os"

	"eventhall-backend/config"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var version = "1.0.0"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "eventhall",
	Short: "Events hall booking backend",
	Long: `eventhall runs the booking backend of an events hall: events, payments,
staff, expenses, tasks and reminders, with the financial rollup kept current
on every change.

Configuration is read from config.yaml (optional) and EVENTHALL_* environment
variables. A .env file in the working directory is loaded first.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a config file (default: ./config.yaml)")
}

// bootstrap loads the configuration and builds the process logger.
func bootstrap() (*config.Config, *zap.Logger, error) {
	var paths []string
	if configPath != "" {
		paths = append(paths, configPath)
	}
	cfg, err := config.Load(paths...)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	log, err := config.NewLogger(cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("build logger: %w", err)
	}
	return cfg, log.With(zap.String("app", cfg.App.Name)), nil
}
