package extract

import (
	"github.com/rotisserie/eris"

	"github.com/appelson/litigation-extract/internal/config"
	"github.com/appelson/litigation-extract/pkg/anthropic"
	"github.com/appelson/litigation-extract/pkg/gemini"
	"github.com/appelson/litigation-extract/pkg/openai"
)

// ErrUnknownProvider indicates a client_type with no registered constructor.
var ErrUnknownProvider = eris.New("extract: unknown provider client type")

// Builder constructs an Adapter from one provider's configuration.
type Builder func(cfg config.ProviderConfig) (Adapter, error)

// Registry maps a client_type to its adapter constructor. Adapters are built
// on demand so that disabled providers never acquire clients or pools.
type Registry struct {
	builders map[string]Builder
}

// NewRegistry creates a registry with the standard client types wired to the
// configured API keys.
func NewRegistry(keys config.KeysConfig) *Registry {
	r := &Registry{builders: make(map[string]Builder)}

	r.Register("openai", func(cfg config.ProviderConfig) (Adapter, error) {
		client := openai.NewClient(keys.OpenAI)
		return newOpenAIAdapter(client, cfg.ModelName, cfg.MaxTokens), nil
	})
	r.Register("anthropic", func(cfg config.ProviderConfig) (Adapter, error) {
		client := anthropic.NewClient(keys.Anthropic)
		return newAnthropicAdapter(client, cfg.ModelName, cfg.MaxTokens), nil
	})
	r.Register("google", func(cfg config.ProviderConfig) (Adapter, error) {
		client, err := gemini.NewClient(keys.Google)
		if err != nil {
			return nil, err
		}
		return newGeminiAdapter(client, cfg.ModelName, cfg.MaxTokens), nil
	})

	// LLaMa and DeepSeek are OpenAI-compatible behind the HuggingFace router.
	hfBuilder := func(cfg config.ProviderConfig) (Adapter, error) {
		client := openai.NewClient(keys.HuggingFace, openai.WithBaseURL(openai.HuggingFaceBaseURL))
		return newOpenAIAdapter(client, cfg.ModelName, cfg.MaxTokens), nil
	}
	r.Register("llama", hfBuilder)
	r.Register("deepseek", hfBuilder)

	return r
}

// Register adds or replaces a builder for a client type.
func (r *Registry) Register(clientType string, b Builder) {
	r.builders[clientType] = b
}

// Build constructs the adapter for one provider configuration.
func (r *Registry) Build(cfg config.ProviderConfig) (Adapter, error) {
	b, ok := r.builders[cfg.ClientType]
	if !ok {
		return nil, eris.Wrapf(ErrUnknownProvider, "client_type %q", cfg.ClientType)
	}
	return b(cfg)
}
