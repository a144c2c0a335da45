package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/active-fire-etl/internal/domain"
	"github.com/couchcryptid/active-fire-etl/internal/observability"
)

// Extractor fetches and decodes every placemark of the feed.
type Extractor interface {
	Extract(ctx context.Context) ([]domain.Placemark, error)
}

// Transformer converts a placemark into an output row.
type Transformer interface {
	Transform(ctx context.Context, pm domain.Placemark) (domain.Detection, error)
}

// Loader writes all detections of a run to a destination.
type Loader interface {
	Load(ctx context.Context, detections []domain.Detection) error
}

// Summary describes one completed or failed run.
type Summary struct {
	StartedAt       time.Time `json:"started_at"`
	DurationSeconds float64   `json:"duration_seconds"`
	Placemarks      int       `json:"placemarks"`
	Rows            int       `json:"rows"`
	Skipped         int       `json:"skipped"`
	Unpaired        int       `json:"unpaired"`
	Error           string    `json:"error,omitempty"`
}

// Pipeline orchestrates the extract-transform-load run.
type Pipeline struct {
	extractor   Extractor
	transformer Transformer
	loader      Loader
	logger      *slog.Logger
	metrics     *observability.Metrics
	clock       clockwork.Clock
	ready       atomic.Bool
	last        atomic.Pointer[Summary]
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithClock replaces the real clock, for deterministic scheduling in tests.
func WithClock(c clockwork.Clock) Option {
	return func(p *Pipeline) { p.clock = c }
}

// New creates a Pipeline with the given stages and observability.
func New(e Extractor, t Transformer, l Loader, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Pipeline {
	p := &Pipeline{
		extractor:   e,
		transformer: t,
		loader:      l,
		logger:      logger,
		metrics:     metrics,
		clock:       clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CheckReadiness returns nil once a run has succeeded, or an error describing
// why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not completed a successful run yet")
	}
	return nil
}

// LastRun returns the summary of the most recent run, if any.
func (p *Pipeline) LastRun() (Summary, bool) {
	s := p.last.Load()
	if s == nil {
		return Summary{}, false
	}
	return *s, true
}

// Run converts the feed immediately and then once per interval until the
// context is cancelled. A failed run is logged and the schedule continues.
func (p *Pipeline) Run(ctx context.Context, interval time.Duration) error {
	p.logger.Info("pipeline started", "interval", interval)

	ticker := p.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := p.RunOnce(ctx); err != nil && ctx.Err() == nil {
			p.logger.Error("run failed", "error", err)
		}

		select {
		case <-ctx.Done():
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
		}
	}
}

// RunOnce performs one fetch, transforms every placemark, and hands the
// resulting detections to the loader. Extraction and load errors fail the run;
// malformed placemarks are logged and skipped.
func (p *Pipeline) RunOnce(ctx context.Context) (Summary, error) {
	start := p.clock.Now()
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	summary, err := p.run(ctx)
	summary.StartedAt = start
	summary.DurationSeconds = p.clock.Since(start).Seconds()
	p.metrics.RunDuration.Observe(summary.DurationSeconds)

	if err != nil {
		summary.Error = err.Error()
		p.metrics.Runs.WithLabelValues("error").Inc()
		p.last.Store(&summary)
		return summary, err
	}

	p.metrics.Runs.WithLabelValues("success").Inc()
	p.metrics.LastSuccessSeconds.Set(float64(p.clock.Now().Unix()))
	p.last.Store(&summary)
	p.ready.Store(true)

	p.logger.Info("run complete",
		"placemarks", summary.Placemarks,
		"rows", summary.Rows,
		"skipped", summary.Skipped,
		"unpaired", summary.Unpaired,
		"duration", p.clock.Since(start),
	)
	return summary, nil
}

func (p *Pipeline) run(ctx context.Context) (Summary, error) {
	var summary Summary

	placemarks, err := p.extractor.Extract(ctx)
	if err != nil {
		return summary, fmt.Errorf("extract: %w", err)
	}
	summary.Placemarks = len(placemarks)
	p.metrics.PlacemarksParsed.Add(float64(len(placemarks)))

	detections := make([]domain.Detection, 0, len(placemarks))
	for i, pm := range placemarks {
		d, err := p.transformer.Transform(ctx, pm)
		keep, unpaired := domain.Classify(err)
		switch {
		case !keep:
			p.logger.Warn("placemark skipped",
				"index", i,
				"coordinates", pm.Coordinates,
				"error", err,
			)
			p.metrics.PlacemarksSkipped.WithLabelValues(skipReason(err)).Inc()
			summary.Skipped++
			continue
		case unpaired:
			p.logger.Warn("unpaired description cell dropped",
				"index", i,
				"coordinates", pm.Coordinates,
				"error", err,
			)
			p.metrics.UnpairedCells.Inc()
			summary.Unpaired++
		}
		detections = append(detections, d)
	}

	if err := ctx.Err(); err != nil {
		return summary, err
	}

	if err := p.loader.Load(ctx, detections); err != nil {
		return summary, fmt.Errorf("load: %w", err)
	}
	summary.Rows = len(detections)
	return summary, nil
}

func skipReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrMissingCoordinates), errors.Is(err, domain.ErrCoordinateFormat):
		return "coordinates"
	case errors.Is(err, domain.ErrMissingDescription):
		return "description"
	default:
		return "other"
	}
}
