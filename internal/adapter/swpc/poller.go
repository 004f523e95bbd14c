package swpc

import (
	"context"
	"log/slog"
	"time"

	"github.com/ionoscope/storm-eval-service/internal/domain"
)

// Sink receives measurements assembled from feed rows.
type Sink interface {
	Insert(m domain.Measurement)
}

// Poller periodically pulls the SWPC feeds and merges them into the
// measurement store, so event extraction keeps working when the Kafka
// source lags behind real time. Feed rows carry no model prediction;
// PredictedProbability stays zero and backtests should be windowed to
// Kafka-sourced data.
type Poller struct {
	client   FeedClient
	sink     Sink
	interval time.Duration
	logger   *slog.Logger
}

// NewPoller creates a Poller that polls at the given interval.
func NewPoller(client FeedClient, sink Sink, interval time.Duration, logger *slog.Logger) *Poller {
	return &Poller{client: client, sink: sink, interval: interval, logger: logger}
}

// Run polls until the context is cancelled. The first poll happens
// immediately.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	kpRows, err := p.client.FetchKpIndex(ctx)
	if err != nil {
		p.logger.Warn("swpc kp poll failed", "error", err)
		return
	}
	windRows, err := p.client.FetchSolarWind(ctx)
	if err != nil {
		p.logger.Warn("swpc solar wind poll failed", "error", err)
		windRows = nil // kp rows are still usable without plasma data
	}

	inserted := 0
	for _, row := range kpRows {
		if row.Kp < 0 || row.Kp > 9 {
			continue // fill or sensor glitch
		}
		m := domain.Measurement{
			Timestamp:        row.TimeTag,
			KpIndex:          row.Kp,
			SolarWindSpeed:   nearestSpeed(windRows, row.TimeTag),
			StormProbability: domain.StormIntensity(row.Kp) * 100,
		}
		p.sink.Insert(m)
		inserted++
	}
	p.logger.Debug("swpc poll complete", "kp_rows", len(kpRows), "inserted", inserted)
}

// nearestSpeed returns the solar wind speed closest in time to ts, or 0 when
// no plasma row lies within an hour.
func nearestSpeed(rows []SolarWindReading, ts time.Time) float64 {
	best := time.Hour
	speed := 0.0
	for _, r := range rows {
		d := r.TimeTag.Sub(ts)
		if d < 0 {
			d = -d
		}
		if d < best {
			best = d
			speed = r.Speed
		}
	}
	return speed
}
