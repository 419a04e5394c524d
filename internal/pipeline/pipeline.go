package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/quake-sample-builder/internal/domain"
	"github.com/couchcryptid/quake-sample-builder/internal/observability"
	"github.com/couchcryptid/storm-data-shared/retry"
	"golang.org/x/sync/errgroup"
)

// Transformer extracts the sample for one target event of a catalog.
type Transformer interface {
	Transform(ctx context.Context, c *domain.Catalog, targetID string) (domain.Sample, error)
}

// BatchLoader writes multiple output events to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, events []domain.OutputEvent) error
}

// Options controls a run.
type Options struct {
	Params             domain.Params
	TargetMinMagnitude float64
	TargetSampleSize   int
	TargetSeed         uint64
	RemoveAftershocks  bool
	Workers            int
	BatchSize          int
	LoadMaxAttempts    int
}

// Report summarises a completed run.
type Report struct {
	CatalogEvents      int
	AftershocksRemoved int
	Targets            int
	Built              int
	Loaded             int
	Skipped            map[string]int // by reason
	Results            []Result
}

// Pipeline turns a catalog into samples and loads them into a sink.
type Pipeline struct {
	transformer Transformer
	loader      BatchLoader
	logger      *slog.Logger
	metrics     *observability.Metrics
	ready       atomic.Bool
	opts        Options
}

// New creates a Pipeline with the given stages and observability.
func New(t Transformer, l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, opts Options) *Pipeline {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.BatchSize < 1 {
		opts.BatchSize = 1
	}
	if opts.LoadMaxAttempts < 1 {
		opts.LoadMaxAttempts = 1
	}
	return &Pipeline{
		transformer: t,
		loader:      l,
		logger:      logger,
		metrics:     metrics,
		opts:        opts,
	}
}

// CheckReadiness returns nil once the pipeline has loaded its first batch,
// or an error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not loaded any samples yet")
	}
	return nil
}

// Run prepares the catalog, builds a sample for every selected target and
// loads the successful ones in batches. Per-target failures are reported and
// skipped; only sink failures and cancellation abort the run.
func (p *Pipeline) Run(ctx context.Context, catalog *domain.Catalog) (Report, error) {
	p.logger.Info("pipeline started",
		"catalog_events", catalog.Len(),
		"workers", p.opts.Workers,
		"batch_size", p.opts.BatchSize,
	)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	report := Report{Skipped: map[string]int{}}

	if p.opts.RemoveAftershocks {
		cleaned, ar, err := domain.RemoveAftershocksParallel(ctx, catalog,
			p.opts.Params.RadiusKm, p.opts.Params.BigEqMinMagnitude, p.opts.Workers)
		if err != nil {
			return report, err
		}
		p.logger.Info("aftershocks removed", "triggers", ar.Triggers, "removed", ar.Removed)
		p.metrics.AftershocksRemoved.Add(float64(ar.Removed))
		report.AftershocksRemoved = ar.Removed
		catalog = cleaned
	}
	report.CatalogEvents = catalog.Len()
	p.metrics.CatalogEvents.Set(float64(catalog.Len()))

	targets := SelectTargets(catalog, p.opts.TargetMinMagnitude, p.opts.TargetSampleSize, p.opts.TargetSeed)
	report.Targets = len(targets)
	p.metrics.TargetsSelected.Add(float64(len(targets)))

	results, err := p.Build(ctx, catalog, targets)
	if err != nil {
		return report, err
	}
	report.Results = results

	outBatch := make([]domain.OutputEvent, 0, p.opts.BatchSize)
	for _, r := range results {
		if !r.OK() {
			p.skip(&report, r.TargetID, domain.SkipReason(r.Err), r.Err)
			continue
		}
		out, err := domain.SerializeSample(r.Sample)
		if err != nil {
			p.skip(&report, r.TargetID, "serialize", err)
			continue
		}
		report.Built++
		p.metrics.SamplesBuilt.Inc()

		outBatch = append(outBatch, out)
		if len(outBatch) == p.opts.BatchSize {
			if err := p.loadWithRetry(ctx, outBatch); err != nil {
				return report, err
			}
			report.Loaded += len(outBatch)
			outBatch = outBatch[:0]
		}
	}
	if len(outBatch) > 0 {
		if err := p.loadWithRetry(ctx, outBatch); err != nil {
			return report, err
		}
		report.Loaded += len(outBatch)
	}

	p.ready.Store(true)
	p.logger.Info("pipeline finished",
		"targets", report.Targets,
		"built", report.Built,
		"loaded", report.Loaded,
		"skipped", report.Targets-report.Built,
	)
	return report, nil
}

// Build extracts samples for targets using up to Options.Workers goroutines
// over the shared read-only catalog. Results are in target order. The error
// is non-nil only when ctx is cancelled.
func (p *Pipeline) Build(ctx context.Context, catalog *domain.Catalog, targets []string) ([]Result, error) {
	results := make([]Result, len(targets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Workers)
	for i, id := range targets {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			sample, err := p.transformer.Transform(gctx, catalog, id)
			p.metrics.BuildDuration.Observe(time.Since(start).Seconds())
			results[i] = Result{TargetID: id, Sample: sample, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("build samples: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("build samples: %w", err)
	}
	return results, nil
}

func (p *Pipeline) skip(report *Report, id, reason string, err error) {
	p.logger.Warn("sample skipped", "event_id", id, "reason", reason, "error", err)
	p.metrics.SamplesSkipped.WithLabelValues(reason).Inc()
	report.Skipped[reason]++
}

// loadWithRetry writes one batch, retrying with exponential backoff up to
// LoadMaxAttempts times.
func (p *Pipeline) loadWithRetry(ctx context.Context, batch []domain.OutputEvent) error {
	// Exponential backoff: start at 200ms, double each retry, cap at 5s.
	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second

	p.metrics.BatchSize.Observe(float64(len(batch)))
	var err error
	for attempt := 1; attempt <= p.opts.LoadMaxAttempts; attempt++ {
		start := time.Now()
		if err = p.loader.LoadBatch(ctx, batch); err == nil {
			p.metrics.BatchLoadDuration.Observe(time.Since(start).Seconds())
			p.metrics.SamplesLoaded.Add(float64(len(batch)))
			p.ready.Store(true)
			return nil
		}
		p.metrics.LoadErrors.Inc()
		p.logger.Error("load batch failed", "error", err, "batch_size", len(batch), "attempt", attempt)

		if attempt == p.opts.LoadMaxAttempts || !p.backoffOrStop(ctx, &backoff, maxBackoff) {
			break
		}
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("load batch: %w", ctxErr)
	}
	return fmt.Errorf("load batch after %d attempts: %w", p.opts.LoadMaxAttempts, err)
}

// backoffOrStop checks for context cancellation, sleeps with the current backoff,
// and advances the backoff. Returns false if the pipeline should stop.
func (p *Pipeline) backoffOrStop(ctx context.Context, backoff *time.Duration, maxBackoff time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}
	if !retry.SleepWithContext(ctx, *backoff) {
		return false
	}
	*backoff = retry.NextBackoff(*backoff, maxBackoff)
	return true
}
