package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaskAPIKey(t *testing.T) {
	assert.Equal(t, "(not set)", MaskAPIKey(""))
	assert.Equal(t, "****", MaskAPIKey("short"))
	assert.Equal(t, "sk-a...wxyz", MaskAPIKey("sk-abcdefghijklmnopqrstuvwxyz"))
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.True(t, cfg.AI.Enabled)
	assert.Equal(t, "none", cfg.AI.Provider)
	assert.Equal(t, 1, cfg.Analysis.AIGateBoundaries)
	assert.Equal(t, 8, cfg.Analysis.AIGateFiles)
	assert.Equal(t, "sqlite", cfg.History.Backend)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DIFFSCOPE_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("DIFFSCOPE_NO_AI", "true")
	t.Setenv("DIFFSCOPE_POSTGRES_DSN", "postgres://localhost/dscope")

	cfg := Default()
	applyEnvOverrides(cfg)

	assert.Equal(t, "openai", cfg.AI.Provider)
	assert.Equal(t, "sk-test", cfg.AI.OpenAIKey)
	assert.False(t, cfg.AI.Enabled)
	assert.Equal(t, "postgres", cfg.History.Backend)
	assert.Equal(t, "postgres://localhost/dscope", cfg.History.PostgresDSN)
}

func TestSaveStripsKeychainKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	cfg := Default()
	cfg.AI.UseKeychain = true
	cfg.AI.OpenAIKey = "sk-secret"

	require.NoError(t, cfg.Save(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "sk-secret")
}

func TestSaveKeepsKeysWithoutKeychain(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	cfg := Default()
	cfg.AI.UseKeychain = false
	cfg.AI.OpenAIKey = "sk-plaintext"

	require.NoError(t, cfg.Save(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "sk-plaintext")
}

func TestLoadMissingConfigUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		// Viper reports a missing explicit file as an error on some
		// platforms; either behavior is acceptable as long as no partial
		// config escapes.
		assert.Nil(t, cfg)
		return
	}
	assert.Equal(t, Default().Analysis, cfg.Analysis)
}
