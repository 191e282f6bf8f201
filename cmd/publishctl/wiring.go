package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/kingofalbert/publish-orchestrator/internal/audit"
	"github.com/kingofalbert/publish-orchestrator/internal/cache"
	"github.com/kingofalbert/publish-orchestrator/internal/config"
	"github.com/kingofalbert/publish-orchestrator/internal/metrics"
	"github.com/kingofalbert/publish-orchestrator/internal/orchestrator"
	"github.com/kingofalbert/publish-orchestrator/internal/provider"
	"github.com/kingofalbert/publish-orchestrator/internal/provider/dom"
	"github.com/kingofalbert/publish-orchestrator/internal/provider/llm"
	"github.com/kingofalbert/publish-orchestrator/internal/recovery"
	"github.com/kingofalbert/publish-orchestrator/internal/safety"
)

// loadedConfig bundles the three opaque configuration surfaces (§4.9) read
// from disk, shared by publish and config-validate.
type loadedConfig struct {
	settings     config.Settings
	selectors    *config.SelectorBundle
	instructions *config.InstructionBundle
}

func loadConfig() (loadedConfig, error) {
	settings, err := config.LoadSettings(settingsPath)
	if err != nil {
		return loadedConfig{}, fmt.Errorf("load settings: %w", err)
	}
	selectors, err := config.LoadSelectorBundle(selectorsPath)
	if err != nil {
		return loadedConfig{}, fmt.Errorf("load selector bundle: %w", err)
	}
	instr, err := config.LoadInstructionBundle(instructions)
	if err != nil {
		return loadedConfig{}, fmt.Errorf("load instruction bundle: %w", err)
	}
	return loadedConfig{settings: settings, selectors: selectors, instructions: instr}, nil
}

// buildOrchestrator wires one Orchestrator for a single request's target
// CMS kind. The provider factories are closures over the loaded config;
// the orchestrator itself builds a fresh provider instance per run (§5).
func buildOrchestrator(lc loadedConfig, cmsKind string, log *zap.Logger) (*orchestrator.Orchestrator, func(), error) {
	selCache := cache.NewSelectorCache(lc.settings.SelectorCacheTTL)
	perf := cache.NewPerfTracker()
	sink := metrics.NewSink()

	shots := audit.NewScreenshotStore(lc.settings.ScreenshotDir)
	auditLog := audit.NewLog(lc.settings.AuditDir)

	newPostPath := lc.settings.NewPostPaths[cmsKind]

	domFactory := func() provider.Provider {
		return dom.New(dom.Config{
			CMSKind:            cmsKind,
			Headless:           lc.settings.Headless,
			ElementTimeout:     lc.settings.ElementTimeout,
			NavigationDeadline: lc.settings.NavigationTimeout,
			NewPostPath:        newPostPath,
			Selectors:          lc.selectors,
			Cache:              selCache,
			Perf:               perf,
		})
	}

	llmFactory := func() provider.Provider {
		apiKey := ""
		if lc.settings.LLMAPIKeyEnv != "" {
			apiKey = os.Getenv(lc.settings.LLMAPIKeyEnv)
		}
		return llm.New(llm.Config{
			Headless:           lc.settings.Headless,
			ElementTimeout:     lc.settings.ElementTimeout,
			NavigationDeadline: lc.settings.NavigationTimeout,
			NewPostPath:        newPostPath,
			APIKey:             apiKey,
			Model:              lc.settings.LLMModel,
			MaxIterations:      lc.settings.LLMIterationCap,
			Instructions:       lc.instructions,
		})
	}

	o := &orchestrator.Orchestrator{
		Settings:     lc.settings,
		Selectors:    lc.selectors,
		Instructions: lc.instructions,
		Providers: map[string]orchestrator.ProviderFactory{
			"dom": domFactory,
			"llm": llmFactory,
		},
		CostEstimators: map[string]metrics.CostEstimator{
			"dom": metrics.DOMProviderCost,
			"llm": metrics.LLMProviderCost,
		},
		Safety:   safety.New(),
		Recovery: recovery.New(log, shots),
		Metrics:  sink,
		Cache:    selCache,
		Perf:     perf,
		Audit:    auditLog,
		Shots:    shots,
		Log:      log,
	}

	// Per-task audit file handles are closed by Orchestrator.Publish itself
	// (one file per task_id); there is no process-wide handle to release.
	cleanup := func() {}
	return o, cleanup, nil
}
