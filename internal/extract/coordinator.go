package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/appelson/litigation-extract/internal/config"
	"github.com/appelson/litigation-extract/internal/records"
)

// Coordinator runs one Scheduler per enabled provider, all concurrently, and
// folds their summaries into one combined document.
type Coordinator struct {
	cfg       *config.Config
	registry  *Registry
	timestamp string
}

// NewCoordinator creates a coordinator for one run. The timestamp is fixed
// for the run's lifetime; it is the date half of the idempotency key.
func NewCoordinator(cfg *config.Config, registry *Registry) *Coordinator {
	return &Coordinator{
		cfg:       cfg,
		registry:  registry,
		timestamp: time.Now().Format("20060102"),
	}
}

// Timestamp returns the run timestamp (YYYYMMDD).
func (c *Coordinator) Timestamp() string {
	return c.timestamp
}

// Run executes all enabled providers and writes the combined summary. A
// provider whose scheduler fails is logged and omitted; siblings keep
// running. Zero successes across the board is not an error.
func (c *Coordinator) Run(ctx context.Context, recs []records.Record, promptTemplate string) (CombinedSummary, error) {
	enabled := c.enabledProviders()

	zap.L().Info("multi-provider extraction run",
		zap.Int("records", len(recs)),
		zap.Strings("providers", enabled),
		zap.Int("concurrency_per_provider", c.cfg.Extract.Concurrency),
		zap.String("timestamp", c.timestamp),
	)

	if err := os.MkdirAll(c.cfg.Extract.OutputDir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "extract: create output dir %s", c.cfg.Extract.OutputDir)
	}

	overallStart := time.Now()

	var (
		mu       sync.Mutex
		combined = make(CombinedSummary)
	)

	// Provider-to-provider parallelism is unconstrained; each scheduler
	// enforces its own permit cap.
	var g errgroup.Group
	for _, name := range enabled {
		g.Go(func() error {
			summary, err := c.runProvider(ctx, name, recs, promptTemplate)
			if err != nil {
				zap.L().Error("provider run failed",
					zap.String("provider", name),
					zap.Error(err),
				)
				return nil // sibling providers keep going
			}
			mu.Lock()
			combined[name] = summary
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	c.logReport(combined, time.Since(overallStart))

	if err := c.writeCombined(combined); err != nil {
		return nil, err
	}
	return combined, nil
}

// runProvider builds the adapter and runs its scheduler.
func (c *Coordinator) runProvider(ctx context.Context, name string, recs []records.Record, promptTemplate string) (*Summary, error) {
	pcfg := c.cfg.Providers[name]

	adapter, err := c.registry.Build(pcfg)
	if err != nil {
		return nil, eris.Wrapf(err, "provider %s", name)
	}
	if closer, ok := adapter.(interface{ Close() }); ok {
		defer closer.Close()
	}

	sched := NewScheduler(name, pcfg, adapter, c.cfg.Extract.OutputDir, c.cfg.Extract.Concurrency, c.timestamp)
	return sched.Run(ctx, recs, promptTemplate)
}

// enabledProviders returns enabled provider names in stable order.
func (c *Coordinator) enabledProviders() []string {
	var names []string
	for name, pcfg := range c.cfg.Providers {
		if pcfg.Enabled {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// logReport emits the human-readable end-of-run report.
func (c *Coordinator) logReport(combined CombinedSummary, wall time.Duration) {
	zap.L().Info("overall run complete",
		zap.Duration("total_runtime", wall),
		zap.Int("providers_completed", len(combined)),
	)
	for name, s := range combined {
		zap.L().Info("provider result",
			zap.String("provider", name),
			zap.String("model", s.ModelName),
			zap.Int("success", s.SuccessCount),
			zap.Int("errors", s.ErrorCount),
			zap.Int("skipped", s.SkippedCount),
			zap.Float64("runtime_secs", s.TotalRuntime),
			zap.Int64("total_tokens", s.TotalTokens),
		)
	}
}

// writeCombined persists the combined summary keyed by provider name.
func (c *Coordinator) writeCombined(combined CombinedSummary) error {
	data, err := json.MarshalIndent(combined, "", "  ")
	if err != nil {
		return eris.Wrap(err, "extract: marshal combined summary")
	}

	path := filepath.Join(c.cfg.Extract.OutputDir, fmt.Sprintf("combined_summary_%s.json", c.timestamp))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "extract: write combined summary %s", path)
	}

	zap.L().Info("combined summary saved", zap.String("path", path))
	return nil
}
