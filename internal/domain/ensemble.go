package domain

import (
	"fmt"
	"math"
	"time"
)

// SeriesPoint is one instant of a forecast series.
type SeriesPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// Blend combines a climatology baseline and a model forecast pointwise:
//
//	value[i] = weight*baseline[i] + (1-weight)*model[i]
//
// Both series must be the same length and time-aligned 1:1; misalignment is
// a validation error rather than a cue to interpolate, since interpolation
// policy belongs to the upstream forecaster. Blend is pure and stateless.
func Blend(baseline, model []SeriesPoint, climatologyWeight float64) ([]SeriesPoint, error) {
	if climatologyWeight < 0 || climatologyWeight > 1 {
		return nil, fmt.Errorf("climatology_weight %g outside [0, 1]", climatologyWeight)
	}
	if len(baseline) != len(model) {
		return nil, fmt.Errorf("series length mismatch: baseline has %d points, model has %d",
			len(baseline), len(model))
	}

	blended := make([]SeriesPoint, len(baseline))
	for i := range baseline {
		if !baseline[i].Timestamp.Equal(model[i].Timestamp) {
			return nil, fmt.Errorf("series misaligned at index %d: baseline %s vs model %s",
				i, baseline[i].Timestamp.Format(time.RFC3339), model[i].Timestamp.Format(time.RFC3339))
		}
		blended[i] = SeriesPoint{
			Timestamp: baseline[i].Timestamp,
			Value:     climatologyWeight*baseline[i].Value + (1-climatologyWeight)*model[i].Value,
		}
	}
	return blended, nil
}

// ScaleProbabilities applies a per-region multiplicative adjustment factor
// to a blended probability series, clamping each result to [0, 1].
func ScaleProbabilities(series []SeriesPoint, factor float64) ([]SeriesPoint, error) {
	if factor < 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return nil, fmt.Errorf("adjustment factor %g must be finite and non-negative", factor)
	}
	scaled := make([]SeriesPoint, len(series))
	for i, p := range series {
		scaled[i] = SeriesPoint{Timestamp: p.Timestamp, Value: min(max(p.Value*factor, 0), 1)}
	}
	return scaled, nil
}

// ScaleMagnitudes applies a per-region multiplicative adjustment factor to a
// blended magnitude series (TEC and the like), clamping only at zero.
func ScaleMagnitudes(series []SeriesPoint, factor float64) ([]SeriesPoint, error) {
	if factor < 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return nil, fmt.Errorf("adjustment factor %g must be finite and non-negative", factor)
	}
	scaled := make([]SeriesPoint, len(series))
	for i, p := range series {
		scaled[i] = SeriesPoint{Timestamp: p.Timestamp, Value: max(p.Value*factor, 0)}
	}
	return scaled, nil
}
