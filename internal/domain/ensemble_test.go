package domain

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func points(start time.Time, values ...float64) []SeriesPoint {
	ps := make([]SeriesPoint, len(values))
	for i, v := range values {
		ps[i] = SeriesPoint{Timestamp: start.Add(time.Duration(i) * time.Hour), Value: v}
	}
	return ps
}

func TestBlend(t *testing.T) {
	start := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)

	t.Run("weighted combination", func(t *testing.T) {
		baseline := points(start, 0.2, 0.4, 0.6)
		model := points(start, 0.8, 0.4, 0.0)

		blended, err := Blend(baseline, model, 0.7)

		require.NoError(t, err)
		require.Len(t, blended, 3)
		assert.InDelta(t, 0.7*0.2+0.3*0.8, blended[0].Value, 1e-12)
		assert.InDelta(t, 0.4, blended[1].Value, 1e-12)
		assert.InDelta(t, 0.42, blended[2].Value, 1e-12)
		assert.Equal(t, start, blended[0].Timestamp)
	})

	t.Run("weight one returns baseline exactly", func(t *testing.T) {
		baseline := points(start, 0.11, 0.52, 0.93)
		model := points(start, 0.99, 0.01, 0.5)

		blended, err := Blend(baseline, model, 1)

		require.NoError(t, err)
		assert.Empty(t, cmp.Diff(baseline, blended))
	})

	t.Run("weight zero returns model exactly", func(t *testing.T) {
		baseline := points(start, 0.11, 0.52)
		model := points(start, 0.99, 0.01)

		blended, err := Blend(baseline, model, 0)

		require.NoError(t, err)
		assert.Empty(t, cmp.Diff(model, blended))
	})

	t.Run("weight outside range", func(t *testing.T) {
		_, err := Blend(points(start, 1), points(start, 1), 1.1)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "climatology_weight")
	})

	t.Run("length mismatch", func(t *testing.T) {
		_, err := Blend(points(start, 1, 2), points(start, 1), 0.5)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "length mismatch")
	})

	t.Run("timestamp misalignment", func(t *testing.T) {
		baseline := points(start, 1, 2)
		model := points(start.Add(time.Minute), 1, 2)

		_, err := Blend(baseline, model, 0.5)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "misaligned at index 0")
	})

	t.Run("empty series", func(t *testing.T) {
		blended, err := Blend(nil, nil, 0.7)

		require.NoError(t, err)
		assert.Empty(t, blended)
	})
}

func TestScaleProbabilities(t *testing.T) {
	start := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)

	t.Run("scales and clamps to unit interval", func(t *testing.T) {
		scaled, err := ScaleProbabilities(points(start, 0.4, 0.9), 1.45)

		require.NoError(t, err)
		assert.InDelta(t, 0.58, scaled[0].Value, 1e-12)
		assert.Equal(t, 1.0, scaled[1].Value)
	})

	t.Run("negative factor rejected", func(t *testing.T) {
		_, err := ScaleProbabilities(points(start, 0.4), -0.5)
		require.Error(t, err)
	})
}

func TestScaleMagnitudes(t *testing.T) {
	start := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)

	t.Run("no upper clamp", func(t *testing.T) {
		scaled, err := ScaleMagnitudes(points(start, 30), 1.65)

		require.NoError(t, err)
		assert.InDelta(t, 49.5, scaled[0].Value, 1e-12)
	})

	t.Run("factor zero yields zeros", func(t *testing.T) {
		scaled, err := ScaleMagnitudes(points(start, 30, 40), 0)

		require.NoError(t, err)
		assert.Equal(t, 0.0, scaled[0].Value)
		assert.Equal(t, 0.0, scaled[1].Value)
	})
}
