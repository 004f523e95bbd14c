package domain

import (
	"fmt"
	"time"
)

// ExtractionConfig controls how a measurement series is segmented into
// storm events.
type ExtractionConfig struct {
	// KpThreshold is the activity level that opens an event. 5.0 equals a
	// NOAA G1 minor storm. This is a Kp-scale (0-9) knob, independent of the
	// probability-scale (0-100) threshold used by backtesting.
	KpThreshold float64

	// MinGapHours merges two threshold-crossing intervals separated by a
	// sub-threshold dip shorter than this gap into a single event. A dip of
	// exactly MinGapHours splits the event.
	MinGapHours float64

	// MinDurationHours drops closed events shorter than this span. Zero
	// keeps everything, including single-sample events.
	MinDurationHours float64
}

// DefaultExtractionConfig matches the operational catalog settings: G1
// onset, 3-hour dip bridging, no minimum duration.
func DefaultExtractionConfig() ExtractionConfig {
	return ExtractionConfig{KpThreshold: 5.0, MinGapHours: 3.0}
}

// Validate checks the config bounds. Callers building a config from
// request parameters should validate before extraction so bad input is
// reported as such rather than as an extraction failure.
func (c ExtractionConfig) Validate() error {
	if c.KpThreshold < 0 || c.KpThreshold > 9 {
		return fmt.Errorf("kp_threshold %g outside [0, 9]", c.KpThreshold)
	}
	if c.MinGapHours < 0 {
		return fmt.Errorf("min_gap_hours %g is negative", c.MinGapHours)
	}
	if c.MinDurationHours < 0 {
		return fmt.Errorf("min_duration_hours %g is negative", c.MinDurationHours)
	}
	return nil
}

// eventBuilder accumulates running state for the event currently being
// extracted. Dip samples are buffered separately: they join the event only
// if activity resumes before the gap elapses, and are discarded if the gap
// closes the event.
type eventBuilder struct {
	start     time.Time
	lastAbove time.Time
	peakKp    float64
	peakTime  time.Time
	kpSum     float64
	tecSum    float64
	maxTEC    float64
	count     int
	dip       []Measurement
	dipStart  time.Time
}

func newEventBuilder(m Measurement) *eventBuilder {
	b := &eventBuilder{start: m.Timestamp, maxTEC: -1}
	b.add(m)
	return b
}

func (b *eventBuilder) add(m Measurement) {
	if b.count == 0 || m.KpIndex > b.peakKp {
		b.peakKp = m.KpIndex
		b.peakTime = m.Timestamp
	}
	b.kpSum += m.KpIndex
	b.tecSum += m.TECMean
	if m.TECMean > b.maxTEC {
		b.maxTEC = m.TECMean
	}
	b.count++
	b.lastAbove = m.Timestamp
}

// absorbDip folds buffered sub-threshold samples into the event once
// activity has resumed. The dip cannot move the peak: every dip sample is
// below the threshold the event's samples meet.
func (b *eventBuilder) absorbDip() {
	for _, m := range b.dip {
		b.kpSum += m.KpIndex
		b.tecSum += m.TECMean
		if m.TECMean > b.maxTEC {
			b.maxTEC = m.TECMean
		}
		b.count++
	}
	b.dip = b.dip[:0]
	b.dipStart = time.Time{}
}

// dipExceedsGap reports whether the sub-threshold run that started at
// dipStart has lasted at least minGapHours by the time of sample at ts.
// The boundary is inclusive: a dip of exactly minGapHours splits the event.
func (b *eventBuilder) dipExceedsGap(ts time.Time, minGapHours float64) bool {
	if b.dipStart.IsZero() {
		return minGapHours == 0
	}
	return ts.Sub(b.dipStart).Hours() >= minGapHours
}

// build closes the event at the last above-threshold sample.
func (b *eventBuilder) build() StormEvent {
	sev := ClassifySeverity(b.peakKp)
	return StormEvent{
		ID:            "storm_" + b.start.UTC().Format("20060102_1504"),
		StartTime:     b.start,
		EndTime:       b.lastAbove,
		PeakTime:      b.peakTime,
		PeakKp:        b.peakKp,
		AvgKp:         b.kpSum / float64(b.count),
		AvgTEC:        b.tecSum / float64(b.count),
		MaxTEC:        b.maxTEC,
		DurationHours: b.lastAbove.Sub(b.start).Hours(),
		GScale:        sev.GScale,
		SeverityName:  sev.Name,
		SeverityLevel: sev.Level,
		SampleCount:   b.count,
		ExtractedAt:   clock.Now().UTC(),
	}
}

// ExtractEvents segments a time-ordered measurement series into discrete
// storm events. A series with no threshold crossing yields an empty slice;
// a series that ends while still in-event closes the event at the last
// sample. Malformed input (unsorted timestamps, non-finite or fill-value
// Kp) fails fast, since gap merging depends on time ordering.
func ExtractEvents(measurements []Measurement, cfg ExtractionConfig) ([]StormEvent, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("extraction config: %w", err)
	}
	if err := ValidateSeries(measurements); err != nil {
		return nil, fmt.Errorf("extract events: %w", err)
	}

	events := []StormEvent{}
	var current *eventBuilder

	for _, m := range measurements {
		switch {
		case m.KpIndex >= cfg.KpThreshold && current == nil:
			current = newEventBuilder(m)

		case m.KpIndex >= cfg.KpThreshold:
			// Activity resumed. If the dip already spans the gap the
			// previous event is closed and this sample opens a new one;
			// otherwise the dip is absorbed into the running event.
			if len(current.dip) > 0 && current.dipExceedsGap(m.Timestamp, cfg.MinGapHours) {
				events = appendIfLongEnough(events, current.build(), cfg)
				current = newEventBuilder(m)
			} else {
				current.absorbDip()
				current.add(m)
			}

		case current != nil:
			// Sub-threshold while in-event. The dip splits the event once
			// it spans MinGapHours; until then its samples are buffered in
			// case the index rises again.
			if current.dipStart.IsZero() {
				current.dipStart = m.Timestamp
			}
			if current.dipExceedsGap(m.Timestamp, cfg.MinGapHours) {
				events = appendIfLongEnough(events, current.build(), cfg)
				current = nil
			} else {
				current.dip = append(current.dip, m)
			}
		}
	}

	if current != nil {
		events = appendIfLongEnough(events, current.build(), cfg)
	}
	return events, nil
}

func appendIfLongEnough(events []StormEvent, e StormEvent, cfg ExtractionConfig) []StormEvent {
	if e.DurationHours < cfg.MinDurationHours {
		return events
	}
	return append(events, e)
}
