package main

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	"github.com/kingofalbert/publish-orchestrator/internal/metrics"
)

var serveMetricsCmd = &cobra.Command{
	Use:   "serve-metrics",
	Short: "Expose the process-wide metrics sink over the pull endpoint",
	RunE:  runServeMetrics,
}

func runServeMetrics(cmd *cobra.Command, args []string) error {
	lc, err := loadConfig()
	if err != nil {
		return err
	}

	sink := metrics.NewSink()
	e := echo.New()
	e.HideBanner = true
	e.GET(lc.settings.MetricsPath, echo.WrapHandler(sink.Handler()))

	logger.Sugar().Infof("serving metrics on %s%s", lc.settings.MetricsAddr, lc.settings.MetricsPath)
	if err := e.Start(lc.settings.MetricsAddr); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}
