// Package config implements the three opaque configuration surfaces the
// core consumes (spec.md §4.9): typed Settings, the selector bundle, and
// the instruction bundle. It loads and validates them at startup and
// exposes typed accessors — providers never see raw selectors except
// through this package.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kingofalbert/publish-orchestrator/internal/model"
)

// Settings is the typed key-value bag of tunables named in §4.9.
type Settings struct {
	ElementTimeout     time.Duration `yaml:"element_timeout"`
	NavigationTimeout  time.Duration `yaml:"navigation_timeout"`
	RunTimeout         time.Duration `yaml:"run_timeout"`
	MaxRetries         int           `yaml:"max_retries"`
	RetryBaseDelay     time.Duration `yaml:"retry_base_delay"`
	SelectorCacheTTL   time.Duration `yaml:"selector_cache_ttl"`
	Headless           bool          `yaml:"headless"`
	SafetyChecksEnabled bool         `yaml:"safety_checks_enabled"`
	DefaultProvider    string        `yaml:"default_provider"`
	FallbackEnabled    bool          `yaml:"fallback_enabled"`
	FallbackProvider   string        `yaml:"fallback_provider"`
	ScreenshotDir      string        `yaml:"screenshot_dir"`
	AuditDir           string        `yaml:"audit_dir"`
	MetricsPath        string        `yaml:"metrics_path"`
	MetricsAddr        string        `yaml:"metrics_addr"`
	LogLevel           string        `yaml:"log_level"`
	LLMIterationCap    int           `yaml:"llm_iteration_cap"`
	LLMCostBudgetUSD   float64       `yaml:"llm_cost_budget_usd"`
	LLMModel           string        `yaml:"llm_model"`
	// PostPublishVerify enables the optional re-fetch-and-assert-200 check
	// after a successful PUBLISH_NOW/SCHEDULE terminal call (§4.2
	// "Post-publish verification"). Failure is recorded as a warning, never
	// a run failure — the publish already happened.
	PostPublishVerify bool `yaml:"post_publish_verify"`
	// LLMAPIKeyEnv names the environment variable holding the genai API key
	// (never the key itself — credentials are opaque at the core, §9).
	LLMAPIKeyEnv string `yaml:"llm_api_key_env"`
	// NewPostPaths maps cms_kind to the CMS-relative "create post" path,
	// keyed the same way the C9 selector bundle keys candidates.
	NewPostPaths map[string]string `yaml:"new_post_paths"`
}

// DefaultSettings mirrors spec.md's stated defaults (§4.7 retries/backoff,
// §4.4 cache TTL, §5 timeouts).
func DefaultSettings() Settings {
	return Settings{
		ElementTimeout:      25 * time.Second,
		NavigationTimeout:   60 * time.Second,
		RunTimeout:          600 * time.Second,
		MaxRetries:          3,
		RetryBaseDelay:      2 * time.Second,
		SelectorCacheTTL:    5 * time.Minute,
		Headless:            true,
		SafetyChecksEnabled: true,
		DefaultProvider:     "dom",
		FallbackEnabled:     true,
		FallbackProvider:    "llm",
		ScreenshotDir:       "./screenshots",
		AuditDir:            "./audit",
		MetricsPath:         "/metrics",
		MetricsAddr:         ":9110",
		LogLevel:            "info",
		LLMIterationCap:     40,
		LLMCostBudgetUSD:    5.0,
		LLMModel:            "gemini-3-flash-preview",
		PostPublishVerify:   true,
		LLMAPIKeyEnv:        "PUBLISHORC_LLM_API_KEY",
		NewPostPaths:        map[string]string{"wordpress": "/wp-admin/post-new.php"},
	}
}

func (s Settings) Validate() error {
	if s.MaxRetries < 0 {
		return model.NewPhaseError(model.ErrConfigInvalid, "max_retries must be >= 0", nil)
	}
	if s.ElementTimeout <= 0 || s.NavigationTimeout <= 0 || s.RunTimeout <= 0 {
		return model.NewPhaseError(model.ErrConfigInvalid, "timeouts must be positive", nil)
	}
	if s.DefaultProvider == "" {
		return model.NewPhaseError(model.ErrConfigInvalid, "default_provider is required", nil)
	}
	if s.FallbackEnabled && s.FallbackProvider == "" {
		return model.NewPhaseError(model.ErrConfigInvalid, "fallback_provider required when fallback_enabled", nil)
	}
	return nil
}

// applyEnvOverrides overrides endpoint/credential-adjacent fields only,
// never business settings — mirrors internal/config.applyEnvOverrides's
// priority-ordered os.Getenv checks.
func (s *Settings) applyEnvOverrides() {
	if v := os.Getenv("PUBLISHORC_SCREENSHOT_DIR"); v != "" {
		s.ScreenshotDir = v
	}
	if v := os.Getenv("PUBLISHORC_AUDIT_DIR"); v != "" {
		s.AuditDir = v
	}
	if v := os.Getenv("PUBLISHORC_METRICS_ADDR"); v != "" {
		s.MetricsAddr = v
	}
	if v := os.Getenv("PUBLISHORC_LOG_LEVEL"); v != "" {
		s.LogLevel = v
	}
}

// LoadSettings reads and validates Settings from a YAML file at path.
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings()
	data, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("read settings: %w", err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parse settings: %w", err)
	}
	s.applyEnvOverrides()
	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}
