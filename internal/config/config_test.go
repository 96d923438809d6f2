package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFillsDefaults(t *testing.T) {
	path := writeConfig(t, `
[oracle]
provider = "claude"
api_key = "sk-test"

[pipeline]
similarity_threshold = 0.85
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "claude", cfg.Oracle.Provider)
	assert.Equal(t, "sk-test", cfg.Oracle.APIKey)
	assert.Equal(t, "gpt-4o-mini", cfg.Oracle.Model, "unset fields fall back to defaults")
	assert.Equal(t, 30*time.Second, cfg.Oracle.Timeout())
	assert.Equal(t, time.Second, cfg.Oracle.BaseDelay())
	assert.Equal(t, 3, cfg.Oracle.MaxAttempts)
	assert.Equal(t, 0.85, cfg.Pipeline.SimilarityThreshold)
	assert.Equal(t, 0.7, cfg.Pipeline.ConfidenceThreshold)
	assert.Equal(t, "bolt://localhost:7687", cfg.Memgraph.URI)
}

func TestLoadPromptOverrides(t *testing.T) {
	path := writeConfig(t, `
[prompts]
characters = "List every character in the following text:\n\n%s"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Contains(t, cfg.Prompts.Characters, "every character")
	assert.Empty(t, cfg.Prompts.Locations)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
[oracle]
provider = "openai"
api_key = "from-file"
timeout_seconds = 10
`)
	t.Setenv("ORACLE_API_KEY", "from-env")
	t.Setenv("ORACLE_TIMEOUT_SECONDS", "45")
	t.Setenv("MEMGRAPH_URI", "bolt://memgraph:7687")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Oracle.APIKey)
	assert.Equal(t, 45, cfg.Oracle.TimeoutSeconds)
	assert.Equal(t, "bolt://memgraph:7687", cfg.Memgraph.URI)
	assert.Equal(t, "openai", cfg.Oracle.Provider, "file values survive when no env override is set")
}

func TestEnvIgnoresInvalidInts(t *testing.T) {
	t.Setenv("ORACLE_TIMEOUT_SECONDS", "not-a-number")
	t.Setenv("ORACLE_MAX_ATTEMPTS", "-2")

	cfg := FromEnv()
	assert.Equal(t, 30, cfg.Oracle.TimeoutSeconds)
	assert.Equal(t, 3, cfg.Oracle.MaxAttempts)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestLoadRejectsBadTOML(t *testing.T) {
	path := writeConfig(t, `[oracle` + "\n" + `provider = `)
	_, err := Load(path)
	assert.Error(t, err)
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}
