package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSelectorBundle(t *testing.T) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("wordpress:\n")
	for _, name := range RequiredSelectorNames {
		fmt.Fprintf(&b, "  %s:\n    - \"#%s\"\n    - \".%s-fallback\"\n", name, name, name)
	}
	path := filepath.Join(t.TempDir(), "selectors.yaml")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func writeInstructionBundle(t *testing.T) string {
	t.Helper()
	var b strings.Builder
	for _, action := range RequiredInstructionActions {
		fmt.Fprintf(&b, "%s: \"Do the %s step for {{field}}.\"\n", action, action)
	}
	path := filepath.Join(t.TempDir(), "instructions.yaml")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func TestLoadSelectorBundle_ValidAndCandidates(t *testing.T) {
	path := writeSelectorBundle(t)
	b, err := LoadSelectorBundle(path)
	require.NoError(t, err)

	candidates := b.Candidates("wordpress", "new_post_title")
	assert.Equal(t, []string{"#new_post_title", ".new_post_title-fallback"}, candidates)

	assert.Nil(t, b.Candidates("wordpress", "nonexistent_element"))
	assert.Nil(t, b.Candidates("ghost", "new_post_title"))
}

func TestLoadSelectorBundle_MissingRequiredName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "selectors.yaml")
	require.NoError(t, os.WriteFile(path, []byte("wordpress:\n  new_post_title:\n    - \"#title\"\n"), 0o644))

	_, err := LoadSelectorBundle(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "missing required entries")
}

func TestLoadInstructionBundle_ValidAndGet(t *testing.T) {
	path := writeInstructionBundle(t)
	ib, err := LoadInstructionBundle(path)
	require.NoError(t, err)

	rendered, placeholders, err := ib.Get("set_title", map[string]string{"field": "headline"})
	require.NoError(t, err)
	assert.Equal(t, []string{"field"}, placeholders)
	assert.Equal(t, "Do the set_title step for headline.", rendered)
}

func TestInstructionBundle_Get_MissingVar(t *testing.T) {
	path := writeInstructionBundle(t)
	ib, err := LoadInstructionBundle(path)
	require.NoError(t, err)

	_, _, err = ib.Get("set_title", nil)
	assert.Error(t, err)
}

func TestInstructionBundle_Get_UnknownAction(t *testing.T) {
	path := writeInstructionBundle(t)
	ib, err := LoadInstructionBundle(path)
	require.NoError(t, err)

	_, _, err = ib.Get("nonexistent_action", nil)
	assert.Error(t, err)
}

func TestLoadInstructionBundle_MissingRequiredAction(t *testing.T) {
	path := filepath.Join(t.TempDir(), "instructions.yaml")
	require.NoError(t, os.WriteFile(path, []byte("login: \"Log in.\"\n"), 0o644))

	_, err := LoadInstructionBundle(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "missing required actions")
}
