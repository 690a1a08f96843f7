package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "data/filtered_texts.csv", cfg.Extract.InputCSV)
	assert.Equal(t, "prompt.txt", cfg.Extract.PromptFile)
	assert.Equal(t, "data", cfg.Extract.OutputDir)
	assert.Equal(t, 15, cfg.Extract.Concurrency)
	assert.Equal(t, 0, cfg.Extract.SampleSize)

	require.Len(t, cfg.Providers, 5)

	openai := cfg.Providers["openai"]
	assert.Equal(t, "gpt-4o-mini", openai.ModelName)
	assert.Equal(t, "openai", openai.ClientType)
	assert.Equal(t, 16384, openai.MaxTokens)
	assert.True(t, openai.Enabled)

	claude := cfg.Providers["claude"]
	assert.Equal(t, "anthropic", claude.ClientType)
	assert.False(t, claude.Enabled)

	llama := cfg.Providers["llama"]
	assert.Equal(t, "meta-llama/Llama-3.3-70B-Instruct", llama.ModelName)
	assert.Equal(t, "llama", llama.ClientType)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
log:
  level: debug
  format: console
extract:
  input_csv: other/texts.csv
  concurrency: 4
providers:
  gemini:
    model_name: gemini-2.5-flash-lite
    enabled: true
    client_type: google
    max_tokens: 8192
    rps: 2.5
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "other/texts.csv", cfg.Extract.InputCSV)
	assert.Equal(t, 4, cfg.Extract.Concurrency)

	gemini := cfg.Providers["gemini"]
	assert.True(t, gemini.Enabled)
	assert.Equal(t, "google", gemini.ClientType)
	assert.Equal(t, 8192, gemini.MaxTokens)
	assert.InDelta(t, 2.5, gemini.RPS, 0.001)
}

func TestInitLoggerBadLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "shouting", Format: "json"})
	assert.Error(t, err)
}
