package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/appelson/litigation-extract/internal/config"
	"github.com/appelson/litigation-extract/internal/records"
)

// DefaultConcurrency is the per-provider in-flight request cap.
const DefaultConcurrency = 15

// Scheduler drives one provider's extraction batch: idempotency scan, bounded
// fan-out, per-record outcome capture, raw-output persistence, and the
// end-of-run summary write.
type Scheduler struct {
	provider    string
	cfg         config.ProviderConfig
	adapter     Adapter
	outDir      string
	concurrency int
	limiter     *rate.Limiter
	timestamp   string
}

// NewScheduler creates a scheduler writing to <baseDir>/<provider>_extracted_text.
func NewScheduler(provider string, cfg config.ProviderConfig, adapter Adapter, baseDir string, concurrency int, timestamp string) *Scheduler {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	var limiter *rate.Limiter
	if cfg.RPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RPS), 1)
	}

	return &Scheduler{
		provider:    provider,
		cfg:         cfg,
		adapter:     adapter,
		outDir:      filepath.Join(baseDir, provider+"_extracted_text"),
		concurrency: concurrency,
		limiter:     limiter,
		timestamp:   timestamp,
	}
}

// OutputDir returns the provider's persisted-output location.
func (s *Scheduler) OutputDir() string {
	return s.outDir
}

// Run processes all records, waits for the full batch to settle, then writes
// and returns the provider summary. Per-record failures become Error
// outcomes; they never abort the batch.
func (s *Scheduler) Run(ctx context.Context, recs []records.Record, promptTemplate string) (*Summary, error) {
	log := zap.L().With(zap.String("provider", s.provider), zap.String("model", s.cfg.ModelName))

	if err := os.MkdirAll(s.outDir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "extract: create output dir %s", s.outDir)
	}

	existing, err := s.existingFileIDs()
	if err != nil {
		return nil, err
	}

	log.Info("starting extraction batch",
		zap.Int("records", len(recs)),
		zap.Int("already_persisted", len(existing)),
		zap.Int("concurrency", s.concurrency),
	)

	start := time.Now()

	var (
		mu       sync.Mutex
		outcomes []Outcome
	)
	collect := func(o Outcome) {
		mu.Lock()
		outcomes = append(outcomes, o)
		mu.Unlock()
	}

	var g errgroup.Group
	g.SetLimit(s.concurrency)

	for _, rec := range recs {
		// Skips settle synchronously; only live requests take a permit.
		if existing[rec.FileID] {
			collect(Outcome{Status: StatusSkipped, FileID: rec.FileID, Provider: s.provider, Reason: ReasonAlreadySaved})
			continue
		}
		if rec.Content == "" {
			collect(Outcome{Status: StatusSkipped, FileID: rec.FileID, Provider: s.provider, Reason: ReasonEmptyText})
			continue
		}

		g.Go(func() error {
			collect(s.processRecord(ctx, rec, promptTemplate, log))
			return nil // task isolation: outcomes carry the failures
		})
	}

	// Barrier: the summary reflects every outcome, so it waits on all of them.
	_ = g.Wait()

	summary := summarize(s.provider, s.cfg.ModelName, s.timestamp, outcomes, time.Since(start))

	log.Info("extraction batch complete",
		zap.Duration("runtime", time.Since(start)),
		zap.Int("success", summary.SuccessCount),
		zap.Int("errors", summary.ErrorCount),
		zap.Int("skipped", summary.SkippedCount),
		zap.Float64("avg_time_per_request", summary.AvgTime),
		zap.Int64("total_tokens", summary.TotalTokens),
	)

	if err := s.writeSummary(summary); err != nil {
		return nil, err
	}

	return summary, nil
}

// processRecord issues one provider call and settles it into an Outcome.
func (s *Scheduler) processRecord(ctx context.Context, rec records.Record, promptTemplate string, log *zap.Logger) Outcome {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return Outcome{
				Status: StatusError, FileID: rec.FileID, Provider: s.provider,
				Model: s.cfg.ModelName, Error: err.Error(),
			}
		}
	}

	prompt := RenderPrompt(promptTemplate, rec.Content)

	start := time.Now()
	result, err := s.adapter.Process(ctx, prompt)
	elapsed := time.Since(start)

	if err != nil {
		log.Warn("record failed", zap.String("file_id", rec.FileID), zap.Error(err))
		return Outcome{
			Status: StatusError, FileID: rec.FileID, Provider: s.provider,
			Model: s.cfg.ModelName, Seconds: elapsed.Seconds(), Error: err.Error(),
		}
	}

	if err := os.WriteFile(s.outputPath(rec.FileID), []byte(result.Content), 0o644); err != nil {
		log.Warn("persist failed", zap.String("file_id", rec.FileID), zap.Error(err))
		return Outcome{
			Status: StatusError, FileID: rec.FileID, Provider: s.provider,
			Model: s.cfg.ModelName, Seconds: elapsed.Seconds(), Error: err.Error(),
		}
	}

	if result.Tokens == nil {
		log.Debug("provider reported no token usage", zap.String("file_id", rec.FileID))
	}
	log.Info("record complete",
		zap.String("file_id", rec.FileID),
		zap.Duration("elapsed", elapsed),
	)

	return Outcome{
		Status: StatusSuccess, FileID: rec.FileID, Provider: s.provider,
		Model: s.cfg.ModelName, Seconds: elapsed.Seconds(), Tokens: result.Tokens,
	}
}

// outputPath derives the idempotency-keyed file name:
// <file_id>_<model with "/" → "-">_<timestamp>.txt
func (s *Scheduler) outputPath(fileID string) string {
	model := strings.ReplaceAll(s.cfg.ModelName, "/", "-")
	return filepath.Join(s.outDir, fmt.Sprintf("%s_%s_%s.txt", fileID, model, s.timestamp))
}

// existingFileIDs scans the output dir for already-persisted record ids (the
// text before the first underscore of each .txt file name).
func (s *Scheduler) existingFileIDs() (map[string]bool, error) {
	entries, err := os.ReadDir(s.outDir)
	if err != nil {
		return nil, eris.Wrapf(err, "extract: scan output dir %s", s.outDir)
	}

	existing := make(map[string]bool)
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".txt") {
			continue
		}
		if id, _, ok := strings.Cut(name, "_"); ok && id != "" {
			existing[id] = true
		}
	}
	return existing, nil
}

// writeSummary persists exactly one summary document for the run.
func (s *Scheduler) writeSummary(summary *Summary) error {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return eris.Wrap(err, "extract: marshal summary")
	}

	path := filepath.Join(s.outDir, fmt.Sprintf("summary_%s.json", s.timestamp))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "extract: write summary %s", path)
	}
	return nil
}
