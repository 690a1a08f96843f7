package extract

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appelson/litigation-extract/internal/config"
)

func TestRegistryBuild(t *testing.T) {
	r := NewRegistry(config.KeysConfig{
		OpenAI:      "sk-test",
		Anthropic:   "sk-ant-test",
		Google:      "goog-test",
		HuggingFace: "hf-test",
	})

	for _, clientType := range []string{"openai", "anthropic", "google", "llama", "deepseek"} {
		adapter, err := r.Build(config.ProviderConfig{
			ModelName:  "some/model",
			ClientType: clientType,
			MaxTokens:  100,
		})
		require.NoError(t, err, clientType)
		require.NotNil(t, adapter, clientType)
		if closer, ok := adapter.(interface{ Close() }); ok {
			closer.Close()
		}
	}
}

func TestRegistryBuild_UnknownClientType(t *testing.T) {
	r := NewRegistry(config.KeysConfig{})

	adapter, err := r.Build(config.ProviderConfig{ClientType: "mistral"})
	assert.Nil(t, adapter)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownProvider))
	assert.Contains(t, err.Error(), "mistral")
}

func TestRegistryRegister_Overrides(t *testing.T) {
	r := NewRegistry(config.KeysConfig{})

	stub := &stubAdapter{}
	r.Register("openai", func(config.ProviderConfig) (Adapter, error) {
		return stub, nil
	})

	adapter, err := r.Build(config.ProviderConfig{ClientType: "openai"})
	require.NoError(t, err)
	assert.Same(t, stub, adapter)
}

func TestLoadPrompt(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prompt.txt")
	require.NoError(t, os.WriteFile(path, []byte("Extract from: {complaint_text}"), 0o644))

	tmpl, err := LoadPrompt(path)
	require.NoError(t, err)
	assert.Equal(t, "Extract from: {complaint_text}", tmpl)

	_, err = LoadPrompt(filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)
}

func TestRenderPrompt(t *testing.T) {
	out := RenderPrompt("Before {complaint_text} after {complaint_text}.", "THE TEXT")
	assert.Equal(t, "Before THE TEXT after THE TEXT.", out)

	// Templates without the placeholder pass through untouched.
	assert.Equal(t, "static", RenderPrompt("static", "ignored"))
}
