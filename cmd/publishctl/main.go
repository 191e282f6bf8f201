// Package main implements publishctl, the command-line front end for the
// publish-orchestration core. Each subcommand's implementation lives in
// its own file.
//
// Commands:
//   - publish.go        - publishCmd, runPublish(), renderResult()
//   - config_validate.go - configValidateCmd, runConfigValidate()
//   - serve_metrics.go  - serveMetricsCmd, runServeMetrics()
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kingofalbert/publish-orchestrator/internal/zaplog"
)

var (
	verbose       bool
	settingsPath  string
	selectorsPath string
	instructions  string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "publishctl",
	Short: "publishctl drives the publishing orchestration core",
	Long: `publishctl runs one article through the publish state machine:
login, fill content, process images, set SEO/taxonomy, run the safety
gate, and execute the terminal action (save draft, publish, or schedule).

It supports two back ends: a deterministic selector-driven provider and a
vision/tool-calling fallback, with automatic one-shot failover between
them.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := "info"
		if verbose {
			level = "debug"
		}
		l, err := zaplog.New(level)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&settingsPath, "settings", "settings.yaml", "path to Settings YAML")
	rootCmd.PersistentFlags().StringVar(&selectorsPath, "selectors", "selectors.yaml", "path to the selector bundle YAML")
	rootCmd.PersistentFlags().StringVar(&instructions, "instructions", "instructions.yaml", "path to the instruction bundle YAML")

	rootCmd.AddCommand(publishCmd)
	rootCmd.AddCommand(configValidateCmd)
	rootCmd.AddCommand(serveMetricsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
