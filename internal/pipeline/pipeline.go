package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/ionoscope/storm-eval-service/internal/domain"
	"github.com/ionoscope/storm-eval-service/internal/observability"
)

// BatchExtractor reads up to batchSize raw measurement messages from the source.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawMeasurement, error)
}

// EventPublisher writes closed storm events to the destination.
type EventPublisher interface {
	PublishBatch(ctx context.Context, events []domain.StormEvent) error
}

// MeasurementSink is where validated measurements accumulate. The pipeline
// re-runs event extraction over the sink's contents after every batch.
type MeasurementSink interface {
	Insert(m domain.Measurement)
	All() []domain.Measurement
}

// Pipeline orchestrates the ingest-extract-publish loop: raw measurements
// in, validated measurements into the sink, closed storm events out.
type Pipeline struct {
	extractor BatchExtractor
	sink      MeasurementSink
	publisher EventPublisher
	extCfg    domain.ExtractionConfig
	logger    *slog.Logger
	metrics   *observability.Metrics
	ready     atomic.Bool
	batchSize int

	// published tracks event IDs already written to the sink topic, so an
	// event is only published once, after it can no longer grow.
	published map[string]bool
}

// New creates a Pipeline with the given stages and observability.
func New(e BatchExtractor, sink MeasurementSink, p EventPublisher, extCfg domain.ExtractionConfig,
	logger *slog.Logger, metrics *observability.Metrics, batchSize int) *Pipeline {
	return &Pipeline{
		extractor: e,
		sink:      sink,
		publisher: p,
		extCfg:    extCfg,
		logger:    logger,
		metrics:   metrics,
		batchSize: batchSize,
		published: make(map[string]bool),
	}
}

// CheckReadiness returns nil if the pipeline has processed at least one
// batch, or an error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not processed any measurements yet")
	}
	return nil
}

// Run executes the batch loop until the context is cancelled.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "batch_size", p.batchSize,
		"kp_threshold", p.extCfg.KpThreshold, "min_gap_hours", p.extCfg.MinGapHours)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	// Exponential backoff: start at 200ms, double each retry, cap at 5s.
	// Keeps retry storms short while avoiding tight loops during Kafka outages.
	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		default:
		}

		if !p.processBatch(ctx, &backoff, maxBackoff) {
			return nil
		}
	}
}

// processBatch runs one ingest-extract-publish cycle. Returns false if the
// pipeline should stop.
func (p *Pipeline) processBatch(ctx context.Context, backoff *time.Duration, maxBackoff time.Duration) bool {
	start := time.Now()

	rawBatch, err := p.extractor.ExtractBatch(ctx, p.batchSize)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		p.logger.Error("extract batch failed", "error", err)
		return p.backoffOrStop(ctx, backoff, maxBackoff)
	}

	if len(rawBatch) == 0 {
		return ctx.Err() == nil
	}

	p.metrics.MeasurementsConsumed.Add(float64(len(rawBatch)))
	p.metrics.BatchSize.Observe(float64(len(rawBatch)))
	*backoff = 200 * time.Millisecond

	ingested := p.ingest(ctx, rawBatch)
	if ingested == 0 {
		return true
	}

	published, keepRunning := p.publishClosedEvents(ctx, backoff, maxBackoff)
	if !keepRunning {
		return false
	}
	if !published {
		// Publish failed; the next cycle re-extracts and retries. The
		// service must not report ready on a batch whose events never
		// reached the sink topic.
		return true
	}

	p.metrics.BatchProcessingDuration.Observe(time.Since(start).Seconds())
	p.ready.Store(true)
	return true
}

// ingest parses and stores each raw message, committing offsets as it goes.
// Malformed messages are skipped with a warning; validation failures must
// not wedge the partition.
func (p *Pipeline) ingest(ctx context.Context, rawBatch []domain.RawMeasurement) int {
	ingested := 0
	for _, raw := range rawBatch {
		m, err := domain.ParseRawMeasurement(raw)
		if err != nil {
			p.logger.Warn("measurement rejected, skipping message",
				"error", err,
				"topic", raw.Topic,
				"partition", raw.Partition,
				"offset", raw.Offset,
			)
			p.metrics.ParseErrors.Inc()
			p.commitOffset(ctx, raw)
			continue
		}
		p.sink.Insert(m)
		ingested++
		p.commitOffset(ctx, raw)
	}
	return ingested
}

// publishClosedEvents re-extracts storm events over the accumulated series
// and publishes the ones that are closed and not yet published. An event is
// closed once the series extends at least MinGapHours past its end, so the
// event can no longer absorb a dip and grow. The first return value reports
// whether publication succeeded, the second whether the pipeline should
// keep running.
func (p *Pipeline) publishClosedEvents(ctx context.Context, backoff *time.Duration, maxBackoff time.Duration) (bool, bool) {
	series := p.sink.All()
	if len(series) == 0 {
		return true, true
	}

	events, err := domain.ExtractEvents(series, p.extCfg)
	if err != nil {
		// Extraction failures over store contents mean a bad insert slipped
		// through validation; log loudly but keep consuming.
		p.logger.Error("event extraction failed", "error", err)
		return true, true
	}

	latest := series[len(series)-1].Timestamp
	var toPublish []domain.StormEvent
	for _, e := range events {
		if p.published[e.ID] {
			continue
		}
		gap := time.Duration(p.extCfg.MinGapHours * float64(time.Hour))
		if !latest.After(e.EndTime.Add(gap)) {
			continue // still growing
		}
		toPublish = append(toPublish, e)
	}

	if len(toPublish) == 0 {
		return true, true
	}
	p.metrics.EventsExtracted.Add(float64(len(toPublish)))

	if err := p.publisher.PublishBatch(ctx, toPublish); err != nil {
		p.logger.Error("publish events failed", "error", err, "events", len(toPublish))
		return false, p.backoffOrStop(ctx, backoff, maxBackoff)
	}

	for _, e := range toPublish {
		p.published[e.ID] = true
		p.logger.Info("storm event published",
			"id", e.ID,
			"g_scale", e.GScale,
			"peak_kp", e.PeakKp,
			"duration_hours", e.DurationHours,
		)
	}
	p.metrics.EventsPublished.Add(float64(len(toPublish)))
	return true, true
}

// backoffOrStop checks for context cancellation, sleeps with the current backoff,
// and advances the backoff. Returns false if the pipeline should stop.
func (p *Pipeline) backoffOrStop(ctx context.Context, backoff *time.Duration, maxBackoff time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}
	if !sleepWithContext(ctx, *backoff) {
		return false
	}
	*backoff = nextBackoff(*backoff, maxBackoff)
	return true
}

// commitOffset commits the message offset if a commit function is available.
func (p *Pipeline) commitOffset(ctx context.Context, raw domain.RawMeasurement) {
	if raw.Commit == nil {
		return
	}
	if err := raw.Commit(ctx); err != nil {
		p.logger.Warn("commit offset failed", "error", err,
			"topic", raw.Topic, "partition", raw.Partition, "offset", raw.Offset)
	}
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
