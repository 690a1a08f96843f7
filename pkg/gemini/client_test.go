package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const okBody = `{
	"candidates": [{"content": {"parts": [{"text": "[{\"incident_id\": \"I1\"}]"}]}}],
	"usageMetadata": {"promptTokenCount": 90, "candidatesTokenCount": 30}
}`

func newTestClient(t *testing.T, srvURL string, opts ...Option) Client {
	t.Helper()
	opts = append([]Option{WithBaseURL(srvURL)}, opts...)
	c, err := NewClient("test-key", opts...)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func TestGenerateContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/models/gemini-1.5-flash:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))

		var req apiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 1)
		require.Len(t, req.Contents[0].Parts, 1)
		assert.Equal(t, "extract this", req.Contents[0].Parts[0].Text)
		assert.Zero(t, req.GenerationConfig.Temperature)
		assert.Equal(t, 2048, req.GenerationConfig.MaxOutputTokens)
		// All four harm categories unblocked.
		require.Len(t, req.SafetySettings, 4)
		for _, s := range req.SafetySettings {
			assert.Equal(t, "BLOCK_NONE", s.Threshold)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(okBody))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	resp, err := c.GenerateContent(context.Background(), GenerateRequest{
		Model:           "gemini-1.5-flash",
		Prompt:          "extract this",
		MaxOutputTokens: 2048,
	})
	require.NoError(t, err)
	assert.Equal(t, `[{"incident_id": "I1"}]`, resp.Text)
	require.NotNil(t, resp.Usage)
	assert.Equal(t, int64(90), resp.Usage.PromptTokenCount)
	assert.Equal(t, int64(30), resp.Usage.CandidatesTokenCount)
}

func TestGenerateContent_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"server_error", http.StatusInternalServerError, `{"error": "internal"} `, "unexpected status 500"},
		{"rate_limit", http.StatusTooManyRequests, `{"error": "quota"}`, "unexpected status 429"},
		{"malformed", http.StatusOK, `{invalid`, "unmarshal response"},
		{"no_candidates", http.StatusOK, `{"candidates": []}`, "no candidates"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := newTestClient(t, srv.URL)
			_, err := c.GenerateContent(context.Background(), GenerateRequest{Model: "gemini-1.5-flash", Prompt: "x"})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGenerateContent_MultiPartText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates": [{"content": {"parts": [{"text": "part one "}, {"text": "part two"}]}}]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	resp, err := c.GenerateContent(context.Background(), GenerateRequest{Model: "m", Prompt: "x"})
	require.NoError(t, err)
	assert.Equal(t, "part one part two", resp.Text)
	assert.Nil(t, resp.Usage)
}

func TestGenerateContent_BoundedWorkers(t *testing.T) {
	var (
		mu       sync.Mutex
		inflight int
		peak     int
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		inflight++
		if inflight > peak {
			peak = inflight
		}
		mu.Unlock()

		time.Sleep(30 * time.Millisecond)

		mu.Lock()
		inflight--
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(okBody))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, WithWorkers(2))

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.GenerateContent(context.Background(), GenerateRequest{Model: "m", Prompt: "x"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.LessOrEqual(t, peak, 2)
}

func TestGenerateContent_ContextCancellation(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		close(started)
		<-release
		_, _ = w.Write([]byte(okBody))
	}))
	defer srv.Close()
	defer close(release)

	c := newTestClient(t, srv.URL)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	_, err := c.GenerateContent(ctx, GenerateRequest{Model: "m", Prompt: "x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewClient_Defaults(t *testing.T) {
	t.Parallel()
	c, err := NewClient("my-key")
	require.NoError(t, err)
	defer c.Close()

	hc := c.(*httpClient)
	assert.Equal(t, "my-key", hc.apiKey)
	assert.Equal(t, defaultBaseURL, hc.baseURL)
	assert.Equal(t, defaultWorkerCount, hc.workers)
	assert.NotNil(t, hc.pool)
}
