// Package gemini is a REST client for the Google Generative Language API.
//
// Calls are dispatched through a bounded worker pool: the upstream client
// library is effectively synchronous, so capping in-flight generations here
// keeps a slow Gemini call from tying up the caller's scheduler permits.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/rotisserie/eris"
)

const (
	defaultBaseURL     = "https://generativelanguage.googleapis.com/v1beta"
	defaultWorkerCount = 4
)

// Client generates content against the Gemini API.
type Client interface {
	GenerateContent(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)
	Close()
}

// GenerateRequest describes a single content-generation call.
type GenerateRequest struct {
	Model           string
	Prompt          string
	Temperature     float64
	MaxOutputTokens int
}

// GenerateResponse carries the generated text and token usage, when reported.
type GenerateResponse struct {
	Text  string
	Usage *UsageMetadata
}

// UsageMetadata reports token consumption for one generation.
type UsageMetadata struct {
	PromptTokenCount     int64 `json:"promptTokenCount"`
	CandidatesTokenCount int64 `json:"candidatesTokenCount"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithWorkers overrides the worker pool size.
func WithWorkers(n int) Option {
	return func(c *httpClient) {
		c.workers = n
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	workers int
	pool    *ants.Pool
}

// NewClient creates a Gemini API client with its own worker pool.
func NewClient(apiKey string, opts ...Option) (Client, error) {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		workers: defaultWorkerCount,
		http: &http.Client{
			Timeout: 120 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, o := range opts {
		o(c)
	}

	pool, err := ants.NewPool(c.workers)
	if err != nil {
		return nil, eris.Wrap(err, "gemini: create worker pool")
	}
	c.pool = pool

	return c, nil
}

// Close releases the worker pool.
func (c *httpClient) Close() {
	c.pool.Release()
}

// generateResult pairs a response with its error for channel delivery.
type generateResult struct {
	resp *GenerateResponse
	err  error
}

func (c *httpClient) GenerateContent(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	done := make(chan generateResult, 1)

	submitErr := c.pool.Submit(func() {
		resp, err := c.generate(ctx, req)
		done <- generateResult{resp: resp, err: err}
	})
	if submitErr != nil {
		return nil, eris.Wrap(submitErr, "gemini: submit to worker pool")
	}

	select {
	case res := <-done:
		return res.resp, res.err
	case <-ctx.Done():
		return nil, eris.Wrap(ctx.Err(), "gemini: generate content")
	}
}

// apiRequest mirrors the generateContent wire format.
type apiRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
	SafetySettings   []safetySetting  `json:"safetySettings"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"topP"`
	TopK            int     `json:"topK"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type safetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type apiResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	UsageMetadata *UsageMetadata `json:"usageMetadata"`
}

// blockNoneSafetySettings disables content blocking: complaint documents
// routinely describe violence and the extraction must still run.
var blockNoneSafetySettings = []safetySetting{
	{Category: "HARM_CATEGORY_HARASSMENT", Threshold: "BLOCK_NONE"},
	{Category: "HARM_CATEGORY_HATE_SPEECH", Threshold: "BLOCK_NONE"},
	{Category: "HARM_CATEGORY_SEXUALLY_EXPLICIT", Threshold: "BLOCK_NONE"},
	{Category: "HARM_CATEGORY_DANGEROUS_CONTENT", Threshold: "BLOCK_NONE"},
}

func (c *httpClient) generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	body, err := json.Marshal(apiRequest{
		Contents: []content{{Parts: []part{{Text: req.Prompt}}}},
		GenerationConfig: generationConfig{
			Temperature:     req.Temperature,
			TopP:            1,
			TopK:            1,
			MaxOutputTokens: req.MaxOutputTokens,
		},
		SafetySettings: blockNoneSafetySettings,
	})
	if err != nil {
		return nil, eris.Wrap(err, "gemini: marshal request")
	}

	url := c.baseURL + "/models/" + req.Model + ":generateContent"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "gemini: create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, eris.Wrap(err, "gemini: send request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "gemini: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("gemini: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var result apiResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "gemini: unmarshal response")
	}

	if len(result.Candidates) == 0 {
		return nil, eris.New("gemini: response contained no candidates")
	}

	var sb strings.Builder
	for _, p := range result.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}

	return &GenerateResponse{
		Text:  sb.String(),
		Usage: result.UsageMetadata,
	}, nil
}
