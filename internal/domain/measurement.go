package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// Fill values used by NASA OMNI for missing hours. Validation rejects
// anything at or above these so a gap in the source data can never be
// mistaken for storm activity.
const (
	KpFillValue  = 99.0
	TECFillValue = 999.0
)

// Measurement is one sampling instant of observed space-weather conditions.
// Series are ordered ascending by timestamp and immutable once recorded.
// StormProbability is the observed storm probability (0-100) derived by the
// ingestion collaborator; PredictedProbability is the forecaster's 24h-ahead
// prediction for the same instant, merged upstream. The pair is what
// backtesting scores.
type Measurement struct {
	Timestamp            time.Time `json:"timestamp"`
	KpIndex              float64   `json:"kp_index"`
	TECMean              float64   `json:"tec_mean"`
	SolarWindSpeed       float64   `json:"solar_wind_speed"`
	IMFBz                float64   `json:"imf_bz"`
	StormProbability     float64   `json:"storm_probability"`
	PredictedProbability float64   `json:"predicted_probability"`
}

// RawMeasurement represents an unprocessed message from the source topic.
type RawMeasurement struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// ParseRawMeasurement deserializes a raw message value into a Measurement
// and checks the single-record bounds the collector contract guarantees.
func ParseRawMeasurement(raw RawMeasurement) (Measurement, error) {
	var m Measurement
	if err := json.Unmarshal(raw.Value, &m); err != nil {
		return Measurement{}, fmt.Errorf("parse raw measurement: %w", err)
	}
	if m.Timestamp.IsZero() {
		return Measurement{}, fmt.Errorf("parse raw measurement: missing timestamp")
	}
	if err := validateMeasurement(0, m); err != nil {
		return Measurement{}, fmt.Errorf("parse raw measurement: %w", err)
	}
	return m, nil
}

// ValidateSeries checks that a measurement series is usable for event
// extraction: strictly ascending timestamps, finite in-range Kp, and
// non-negative TEC. Gap merging depends on time ordering, so a malformed
// series fails fast instead of being silently skipped.
func ValidateSeries(measurements []Measurement) error {
	for i, m := range measurements {
		if err := validateMeasurement(i, m); err != nil {
			return err
		}
		if i > 0 && !measurements[i-1].Timestamp.Before(m.Timestamp) {
			return fmt.Errorf("measurement %d: timestamp %s not after previous %s",
				i, m.Timestamp.Format(time.RFC3339), measurements[i-1].Timestamp.Format(time.RFC3339))
		}
	}
	return nil
}

func validateMeasurement(i int, m Measurement) error {
	if math.IsNaN(m.KpIndex) || math.IsInf(m.KpIndex, 0) {
		return fmt.Errorf("measurement %d: kp_index is not finite", i)
	}
	if m.KpIndex >= KpFillValue {
		return fmt.Errorf("measurement %d: kp_index %g is an OMNI fill value (>= %g)", i, m.KpIndex, KpFillValue)
	}
	if m.KpIndex < 0 || m.KpIndex > 9 {
		return fmt.Errorf("measurement %d: kp_index %g outside [0, 9]", i, m.KpIndex)
	}
	if math.IsNaN(m.TECMean) || math.IsInf(m.TECMean, 0) {
		return fmt.Errorf("measurement %d: tec_mean is not finite", i)
	}
	if m.TECMean < 0 || m.TECMean >= TECFillValue {
		return fmt.Errorf("measurement %d: tec_mean %g outside [0, %g)", i, m.TECMean, TECFillValue)
	}
	return nil
}
