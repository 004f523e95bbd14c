// Command genmock generates synthetic measurement and prediction-sample
// fixtures for the test suites and the offline backtest runner. It uses the
// actual domain package for severity and probability derivation so fixtures
// match real pipeline behavior.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -measurements-out data/mock/measurements_30d.json \
//	  -samples-out data/mock/samples_30d.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/ionoscope/storm-eval-service/internal/backtest"
	"github.com/ionoscope/storm-eval-service/internal/domain"
)

var baseDate = time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)

// stormWindow injects an elevated-Kp episode into the quiet background.
type stormWindow struct {
	startHour int
	length    int
	peakKp    float64
}

// Two storms: a long G3-class event and a short G4-class spike, spaced so
// the default 3h merge gap keeps them separate.
var storms = []stormWindow{
	{startHour: 5 * 24, length: 18, peakKp: 7.3},
	{startHour: 19*24 + 6, length: 7, peakKp: 8.7},
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	measurementsOut := flag.String("measurements-out", "", "output path for the measurement series fixture")
	samplesOut := flag.String("samples-out", "", "output path for the prediction sample fixture")
	days := flag.Int("days", 30, "days of hourly samples to generate")
	seed := flag.Int64("seed", 42, "noise seed, fixed for reproducible fixtures")
	flag.Parse()

	if *measurementsOut == "" || *samplesOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -measurements-out, -samples-out")
	}

	// Fixed clock for reproducible ExtractedAt stamps in derived fixtures.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2024, time.June, 1, 6, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	rng := rand.New(rand.NewSource(*seed))
	measurements := generate(*days*24, rng)

	samples := make([]backtest.Sample, len(measurements))
	for i, m := range measurements {
		samples[i] = backtest.Sample{
			Timestamp:            m.Timestamp,
			PredictedProbability: m.PredictedProbability,
			ActualProbability:    m.StormProbability,
		}
	}

	if err := writeFixture(*measurementsOut, measurements); err != nil {
		return err
	}
	if err := writeFixture(*samplesOut, samples); err != nil {
		return err
	}

	events, err := domain.ExtractEvents(measurements, domain.DefaultExtractionConfig())
	if err != nil {
		return fmt.Errorf("extracting events from generated series: %w", err)
	}
	log.Printf("generated %d measurements, %d samples, %d storm events",
		len(measurements), len(samples), len(events))
	for _, e := range events {
		log.Printf("  %s: peak kp %.1f (%s), %.0fh", e.ID, e.PeakKp, e.GScale, e.DurationHours)
	}
	return nil
}

// generate builds an hourly series: quiet diurnal background plus the storm
// windows, with a model prediction that tracks the truth imperfectly so
// backtests produce non-trivial confusion matrices.
func generate(hours int, rng *rand.Rand) []domain.Measurement {
	ms := make([]domain.Measurement, 0, hours)
	for h := 0; h < hours; h++ {
		ts := baseDate.Add(time.Duration(h) * time.Hour)

		kp := 2.0 + 1.2*math.Sin(2*math.Pi*float64(h)/24) + 0.4*rng.Float64()
		solarWind := 380 + 40*math.Sin(2*math.Pi*float64(h)/72) + 20*rng.Float64()
		for _, s := range storms {
			kp = math.Max(kp, s.kpAt(h))
			if s.kpAt(h) > 4 {
				solarWind += 250 + 30*rng.Float64()
			}
		}
		kp = clamp(kp, 0, 9)

		// TEC tracks geomagnetic activity with a lag-free linear response,
		// enough structure for decimation and extraction tests.
		tec := 18 + 6*kp + 2*rng.Float64()

		actual := domain.StormIntensity(kp) * 100
		// The model runs slightly cold and noisy: misses some marginal
		// storms, raises the occasional false alarm.
		predicted := clamp(actual*0.85+8*rng.NormFloat64(), 0, 100)

		ms = append(ms, domain.Measurement{
			Timestamp:            ts,
			KpIndex:              round1(kp),
			TECMean:              round1(tec),
			SolarWindSpeed:       round1(solarWind),
			IMFBz:                round1(-2 * (kp - 2)),
			StormProbability:     round1(actual),
			PredictedProbability: round1(predicted),
		})
	}
	return ms
}

// kpAt returns the storm's Kp contribution at hour h: a triangular ramp up
// to the peak and back down.
func (s stormWindow) kpAt(h int) float64 {
	offset := h - s.startHour
	if offset < 0 || offset >= s.length {
		return 0
	}
	half := float64(s.length) / 2
	distance := math.Abs(float64(offset) - half)
	return s.peakKp * (1 - distance/half)
}

func writeFixture(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return err
	}
	log.Printf("wrote %s", path)
	return nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
