// Package extract fans complaint records out to text-generation providers,
// persists raw extraction files, and aggregates per-provider run summaries.
package extract

import "time"

// Status classifies the result of one (record, provider) attempt.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
	StatusSkipped Status = "skipped"
)

// Skip reasons.
const (
	ReasonAlreadySaved = "already_saved"
	ReasonEmptyText    = "empty_text"
)

// Outcome is the settled result of attempting one record against one
// provider. Created once per attempt, never mutated.
type Outcome struct {
	Status   Status  `json:"status"`
	FileID   string  `json:"file_id"`
	Provider string  `json:"llm_type"`
	Model    string  `json:"model,omitempty"`
	Seconds  float64 `json:"time,omitempty"`
	Tokens   *int64  `json:"tokens,omitempty"`
	Reason   string  `json:"reason,omitempty"`
	Error    string  `json:"error,omitempty"`
}

// Summary aggregates all outcomes for one provider's run.
type Summary struct {
	Provider     string    `json:"llm_type"`
	ModelName    string    `json:"model_name"`
	Timestamp    string    `json:"timestamp"`
	TotalRuntime float64   `json:"total_runtime"`
	SuccessCount int       `json:"success_count"`
	ErrorCount   int       `json:"error_count"`
	SkippedCount int       `json:"skipped_count"`
	AvgTime      float64   `json:"avg_time_per_request"`
	TotalTokens  int64     `json:"total_tokens"`
	Results      []Outcome `json:"results"`
}

// CombinedSummary maps provider name to its run summary.
type CombinedSummary map[string]*Summary

// summarize folds settled outcomes into a Summary. Average latency covers
// successes only; missing token counts sum as zero.
func summarize(provider, model, timestamp string, outcomes []Outcome, wall time.Duration) *Summary {
	s := &Summary{
		Provider:     provider,
		ModelName:    model,
		Timestamp:    timestamp,
		TotalRuntime: wall.Seconds(),
		Results:      outcomes,
	}

	var successSeconds float64
	for _, o := range outcomes {
		switch o.Status {
		case StatusSuccess:
			s.SuccessCount++
			successSeconds += o.Seconds
			if o.Tokens != nil {
				s.TotalTokens += *o.Tokens
			}
		case StatusError:
			s.ErrorCount++
		case StatusSkipped:
			s.SkippedCount++
		}
	}

	if s.SuccessCount > 0 {
		s.AvgTime = successSeconds / float64(s.SuccessCount)
	}

	return s
}
