// Package cmd implements the CLI commands for ReportGate using Cobra.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/reportgate/config"
	"github.com/gaurav-prasanna/reportgate/logger"
)

// Persistent flag variables.
var (
	flagConfig   string
	flagLogLevel string
	flagLogJSON  bool
)

var rootCmd = &cobra.Command{
	Use:   "reportgate",
	Short: "ReportGate: local report gateway for the report designer",
	Long: `ReportGate accepts a report definition and data from the report designer,
resolves rich-text elements to plain text plus style attributes, renders the
report to PDF or XLSX, and caches PDFs under a key for later retrieval.

Usage:
  reportgate serve [flags]
  reportgate render <payload.json> [flags]
  reportgate normalize <payload.json>`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&flagLogJSON, "log-json", false, "Log as JSON")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the configuration, letting explicitly set flags win.
func loadConfig(cmd *cobra.Command, overrides map[string]any) (*config.Config, error) {
	if overrides == nil {
		overrides = make(map[string]any)
	}
	if cmd.Flags().Changed("log-level") {
		overrides["log.level"] = flagLogLevel
	}
	if cmd.Flags().Changed("log-json") {
		overrides["log.json"] = flagLogJSON
	}
	return config.Load(config.Options{File: flagConfig, Overrides: overrides})
}

func newLogger(cfg *config.Config) logger.Logger {
	lc := logger.DefaultConfig()
	lc.Level = logger.LogLevel(cfg.Log.Level)
	lc.JSON = cfg.Log.JSON
	return logger.New(lc)
}
