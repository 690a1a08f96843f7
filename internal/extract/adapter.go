package extract

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/appelson/litigation-extract/pkg/anthropic"
	"github.com/appelson/litigation-extract/pkg/gemini"
	"github.com/appelson/litigation-extract/pkg/openai"
)

// systemInstruction is injected ahead of every extraction prompt.
const systemInstruction = "You are a legal data extraction system. Respond ONLY with valid JSON."

// Result is a provider's answer for one prompt. Tokens is nil when the
// provider did not report usage.
type Result struct {
	Content string
	Tokens  *int64
}

// Adapter is the uniform capability interface over one provider. Adapters
// set temperature to zero, apply their token ceiling, and never retry;
// retry-by-rerun is the scheduler's idempotency check.
type Adapter interface {
	Process(ctx context.Context, prompt string) (*Result, error)
}

// anthropicAdapter wraps the Anthropic messages API.
type anthropicAdapter struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

func newAnthropicAdapter(client anthropic.Client, model string, maxTokens int) Adapter {
	return &anthropicAdapter{client: client, model: model, maxTokens: int64(maxTokens)}
}

func (a *anthropicAdapter) Process(ctx context.Context, prompt string) (*Result, error) {
	temp := 0.0
	resp, err := a.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       a.model,
		MaxTokens:   a.maxTokens,
		System:      systemInstruction,
		Temperature: &temp,
		Messages: []anthropic.Message{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return nil, eris.Wrap(err, "extract: anthropic process")
	}

	var content string
	for _, b := range resp.Content {
		if b.Type == "" || b.Type == "text" {
			content += b.Text
		}
	}

	tokens := resp.Usage.InputTokens + resp.Usage.OutputTokens
	return &Result{Content: content, Tokens: &tokens}, nil
}

// openAIAdapter wraps any OpenAI-compatible chat endpoint (OpenAI itself,
// plus LLaMa and DeepSeek through the HuggingFace router).
type openAIAdapter struct {
	client    openai.Client
	model     string
	maxTokens int
}

func newOpenAIAdapter(client openai.Client, model string, maxTokens int) Adapter {
	return &openAIAdapter{client: client, model: model, maxTokens: maxTokens}
}

func (a *openAIAdapter) Process(ctx context.Context, prompt string) (*Result, error) {
	temp := 0.0
	resp, err := a.client.ChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       a.model,
		Temperature: &temp,
		MaxTokens:   &a.maxTokens,
		Messages: []openai.Message{
			{Role: "system", Content: systemInstruction},
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return nil, eris.Wrap(err, "extract: openai process")
	}

	var tokens *int64
	if resp.Usage != nil {
		t := resp.Usage.TotalTokens
		tokens = &t
	}

	return &Result{Content: resp.Choices[0].Message.Content, Tokens: tokens}, nil
}

// geminiAdapter wraps the Gemini API. Gemini has no system role on this
// endpoint, so the instruction is prepended to the prompt.
type geminiAdapter struct {
	client    gemini.Client
	model     string
	maxTokens int
}

func newGeminiAdapter(client gemini.Client, model string, maxTokens int) Adapter {
	return &geminiAdapter{client: client, model: model, maxTokens: maxTokens}
}

func (a *geminiAdapter) Process(ctx context.Context, prompt string) (*Result, error) {
	resp, err := a.client.GenerateContent(ctx, gemini.GenerateRequest{
		Model:           a.model,
		Prompt:          systemInstruction + "\n\n" + prompt,
		Temperature:     0,
		MaxOutputTokens: a.maxTokens,
	})
	if err != nil {
		return nil, eris.Wrap(err, "extract: gemini process")
	}

	var tokens *int64
	if resp.Usage != nil {
		t := resp.Usage.PromptTokenCount + resp.Usage.CandidatesTokenCount
		tokens = &t
	}

	return &Result{Content: resp.Text, Tokens: tokens}, nil
}

// Close releases the underlying worker pool.
func (a *geminiAdapter) Close() {
	a.client.Close()
}
