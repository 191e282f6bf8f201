package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kingofalbert/publish-orchestrator/internal/config"
)

func writeFixtureConfig(t *testing.T) (settings, selectors, instr string) {
	t.Helper()
	dir := t.TempDir()

	settings = filepath.Join(dir, "settings.yaml")
	require.NoError(t, os.WriteFile(settings, []byte("log_level: debug\n"), 0o644))

	var selBody string
	for _, name := range config.RequiredSelectorNames {
		selBody += "  " + name + ":\n    - \"#" + name + "\"\n"
	}
	selectors = filepath.Join(dir, "selectors.yaml")
	require.NoError(t, os.WriteFile(selectors, []byte("wordpress:\n"+selBody), 0o644))

	var instrBody string
	for _, action := range config.RequiredInstructionActions {
		instrBody += action + ": \"do the " + action + " step\"\n"
	}
	instr = filepath.Join(dir, "instructions.yaml")
	require.NoError(t, os.WriteFile(instr, []byte(instrBody), 0o644))

	return settings, selectors, instr
}

func TestLoadConfig_ReadsAllThreeSurfaces(t *testing.T) {
	s, sel, in := writeFixtureConfig(t)
	settingsPath, selectorsPath, instructions = s, sel, in

	lc, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "debug", lc.settings.LogLevel)
	assert.NotNil(t, lc.selectors)
	assert.NotNil(t, lc.instructions)
}

func TestLoadConfig_MissingSettingsFileErrors(t *testing.T) {
	_, sel, in := writeFixtureConfig(t)
	settingsPath, selectorsPath, instructions = filepath.Join(t.TempDir(), "missing.yaml"), sel, in

	_, err := loadConfig()
	assert.Error(t, err)
}

func TestBuildOrchestrator_WiresBothProviderFactories(t *testing.T) {
	s, sel, in := writeFixtureConfig(t)
	settingsPath, selectorsPath, instructions = s, sel, in

	lc, err := loadConfig()
	require.NoError(t, err)

	o, cleanup, err := buildOrchestrator(lc, "wordpress", zap.NewNop())
	require.NoError(t, err)
	defer cleanup()

	require.Contains(t, o.Providers, "dom")
	require.Contains(t, o.Providers, "llm")
	assert.NotNil(t, o.Providers["dom"]())
	assert.NotNil(t, o.Providers["llm"]())
	require.Contains(t, o.CostEstimators, "dom")
	require.Contains(t, o.CostEstimators, "llm")
}
