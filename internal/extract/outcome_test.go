package extract

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	tokens := func(n int64) *int64 { return &n }

	outcomes := []Outcome{
		{Status: StatusSuccess, FileID: "a", Seconds: 2.0, Tokens: tokens(100)},
		{Status: StatusSuccess, FileID: "b", Seconds: 4.0, Tokens: nil},
		{Status: StatusSuccess, FileID: "c", Seconds: 6.0, Tokens: tokens(50)},
		{Status: StatusError, FileID: "d", Seconds: 1.0, Error: "boom"},
		{Status: StatusSkipped, FileID: "e", Reason: ReasonEmptyText},
		{Status: StatusSkipped, FileID: "f", Reason: ReasonAlreadySaved},
	}

	s := summarize("openai", "gpt-test", "20260830", outcomes, 10*time.Second)

	assert.Equal(t, 3, s.SuccessCount)
	assert.Equal(t, 1, s.ErrorCount)
	assert.Equal(t, 2, s.SkippedCount)
	// Average covers successes only; the error's latency is excluded.
	assert.InDelta(t, 4.0, s.AvgTime, 1e-9)
	// Missing token counts sum as zero.
	assert.Equal(t, int64(150), s.TotalTokens)
	assert.InDelta(t, 10.0, s.TotalRuntime, 1e-9)
	assert.Len(t, s.Results, 6)
}

func TestSummarize_NoSuccesses(t *testing.T) {
	s := summarize("openai", "gpt-test", "20260830", []Outcome{
		{Status: StatusError, FileID: "a", Seconds: 3.0, Error: "boom"},
	}, time.Second)

	assert.Zero(t, s.AvgTime)
	assert.Zero(t, s.TotalTokens)
	assert.Equal(t, 1, s.ErrorCount)
}

func TestSummaryJSONShape(t *testing.T) {
	tokens := int64(7)
	s := summarize("claude", "claude-test", "20260830", []Outcome{
		{Status: StatusSuccess, FileID: "a", Provider: "claude", Model: "claude-test", Seconds: 1.5, Tokens: &tokens},
		{Status: StatusSkipped, FileID: "b", Provider: "claude", Reason: ReasonAlreadySaved},
	}, 2*time.Second)

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	for _, key := range []string{
		"llm_type", "model_name", "timestamp", "total_runtime",
		"success_count", "error_count", "skipped_count",
		"avg_time_per_request", "total_tokens", "results",
	} {
		assert.Contains(t, doc, key)
	}

	results := doc["results"].([]any)
	require.Len(t, results, 2)

	skipped := results[1].(map[string]any)
	assert.Equal(t, "already_saved", skipped["reason"])
	// Omitted fields stay out of the skipped entry.
	assert.NotContains(t, skipped, "time")
	assert.NotContains(t, skipped, "tokens")
	assert.NotContains(t, skipped, "error")
}
