package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kingofalbert/publish-orchestrator/internal/model"
)

var (
	requestPath string
	runTimeout  time.Duration
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Run one publish_article request through the orchestration core",
	RunE:  runPublish,
}

func init() {
	publishCmd.Flags().StringVarP(&requestPath, "request", "r", "", "path to a PublishRequest YAML (or JSON) file")
	publishCmd.Flags().DurationVar(&runTimeout, "timeout", 0, "override the configured run timeout")
	_ = publishCmd.MarkFlagRequired("request")
}

func runPublish(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(requestPath)
	if err != nil {
		return fmt.Errorf("read request file: %w", err)
	}
	var req model.PublishRequest
	if err := yaml.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("parse request file: %w", err)
	}

	lc, err := loadConfig()
	if err != nil {
		return err
	}
	if runTimeout > 0 {
		lc.settings.RunTimeout = runTimeout
	}

	o, cleanup, err := buildOrchestrator(lc, req.TargetCMS.Kind, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(cmd.Context(), lc.settings.RunTimeout+30*time.Second)
	defer cancel()

	result, err := o.Publish(ctx, req)
	if err != nil {
		return fmt.Errorf("publish: %w", err)
	}

	fmt.Println(renderResult(result))
	if !result.Success {
		return fmt.Errorf("publish failed: %s", result.Error.Message)
	}
	return nil
}

var (
	resultOK   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8BC34A"))
	resultFail = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#e53935"))
	resultWarn = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFC107"))
	resultDim  = lipgloss.NewStyle().Foreground(lipgloss.Color("#9aa0a6"))
)

func renderResult(r model.PublishResult) string {
	header := resultFail.Render("PUBLISH FAILED")
	if r.Success {
		header = resultOK.Render("PUBLISH OK")
	}

	lines := []string{
		header,
		fmt.Sprintf("task_id:      %s", r.TaskID),
		fmt.Sprintf("provider:     %s", r.ProviderUsed),
		fmt.Sprintf("fallback:     %v", r.FallbackTriggered),
		fmt.Sprintf("retries:      %d", r.RetryCount),
		fmt.Sprintf("duration:     %.1fs", r.DurationSeconds),
		fmt.Sprintf("cost_est_usd: $%.4f", r.CostUSD),
	}
	if r.URL != "" {
		lines = append(lines, fmt.Sprintf("url:          %s", r.URL))
	}
	if r.Error != nil {
		lines = append(lines, resultFail.Render(fmt.Sprintf("error:        [%s] %s", r.Error.Kind, r.Error.Message)))
	}
	for _, w := range r.Warnings {
		lines = append(lines, resultWarn.Render("warning:      "+w))
	}
	lines = append(lines, resultDim.Render(fmt.Sprintf("phases completed: %d", len(r.Phases))))
	return strings.Join(lines, "\n")
}
