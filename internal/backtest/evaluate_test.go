package backtest

import (
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var evalStart = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

// pairs builds an hourly sample series from (predicted, actual) percent
// pairs.
func pairs(vals ...[2]float64) []Sample {
	samples := make([]Sample, len(vals))
	for i, v := range vals {
		samples[i] = Sample{
			Timestamp:            evalStart.Add(time.Duration(i) * time.Hour),
			PredictedProbability: v[0],
			ActualProbability:    v[1],
		}
	}
	return samples
}

func TestEvaluate(t *testing.T) {
	// One hit, one miss, one false alarm, two quiet hours, one marginal hit.
	mixed := pairs(
		[2]float64{85, 90},
		[2]float64{30, 20},
		[2]float64{70, 25},
		[2]float64{20, 80},
		[2]float64{45, 40},
		[2]float64{55, 60},
	)

	t.Run("confusion matrix at threshold 50", func(t *testing.T) {
		result, err := Evaluate(mixed, 50)

		require.NoError(t, err)
		m := result.Metrics
		assert.Equal(t, 2, m.TruePositives)
		assert.Equal(t, 1, m.FalsePositives)
		assert.Equal(t, 2, m.TrueNegatives)
		assert.Equal(t, 1, m.FalseNegatives)
		assert.Equal(t, len(mixed), m.Total())
		assert.Equal(t, len(mixed), m.TotalPredictions)
		assert.Equal(t, 3, m.TotalStormsActual)
		assert.Equal(t, 3, m.TotalStormsPredicted)
		assert.Empty(t, m.Notes)
	})

	t.Run("classification ratios", func(t *testing.T) {
		result, err := Evaluate(mixed, 50)

		require.NoError(t, err)
		m := result.Metrics
		assert.InDelta(t, 4.0/6.0, m.Accuracy, 1e-12)
		assert.InDelta(t, 2.0/3.0, m.Precision, 1e-12)
		assert.InDelta(t, 2.0/3.0, m.Recall, 1e-12)
		assert.InDelta(t, 2.0/3.0, m.F1Score, 1e-12)
		assert.Equal(t, m.Recall, m.HitRate)
		assert.InDelta(t, 1.0/3.0, m.FalseAlarmRate, 1e-12)
		assert.InDelta(t, 2.0/3.0, m.Specificity, 1e-12)
	})

	t.Run("regression errors", func(t *testing.T) {
		result, err := Evaluate(mixed, 50)

		require.NoError(t, err)
		m := result.Metrics
		assert.InDelta(t, 5800.0/6.0, m.MSE, 1e-9)
		assert.InDelta(t, math.Sqrt(5800.0/6.0), m.RMSE, 1e-9)
		assert.InDelta(t, 130.0/6.0, m.MAE, 1e-9)
		assert.InDelta(t, 1-5800.0/4187.5, m.RSquared, 1e-9)
	})

	t.Run("analysis lists", func(t *testing.T) {
		result, err := Evaluate(mixed, 50)

		require.NoError(t, err)
		a := result.Analysis
		require.Len(t, a.MissedStorms, 1)
		assert.Equal(t, 20.0, a.MissedStorms[0].PredictedProbability)
		require.Len(t, a.FalseAlarms, 1)
		assert.Equal(t, 70.0, a.FalseAlarms[0].PredictedProbability)
		assert.Equal(t, 4, a.CorrectPredictionsCount)

		// Equal absolute errors break ties by timestamp.
		require.NotEmpty(t, a.BestPredictions)
		assert.Equal(t, evalStart, a.BestPredictions[0].Timestamp)
		assert.Equal(t, 5.0, a.BestPredictions[0].AbsoluteError)
		require.NotEmpty(t, a.WorstPredictions)
		assert.Equal(t, 60.0, a.WorstPredictions[0].AbsoluteError)
	})

	t.Run("summary and metadata", func(t *testing.T) {
		result, err := Evaluate(mixed, 50)

		require.NoError(t, err)
		assert.Equal(t, evalStart, result.Metadata.StartDate)
		assert.Equal(t, evalStart.Add(5*time.Hour), result.Metadata.EndDate)
		assert.Equal(t, 50.0, result.Metadata.StormThreshold)
		assert.InDelta(t, 130.0/6.0, result.Summary.AverageAbsoluteError, 1e-9)
		assert.Equal(t, 60.0, result.Summary.MaxError)
		assert.Equal(t, 5.0, result.Summary.MinError)
		assert.InDelta(t, 2.0/3.0*100, result.Summary.StormDetectionRate, 1e-9)
	})

	t.Run("perfect predictions", func(t *testing.T) {
		result, err := Evaluate(pairs(
			[2]float64{90, 90},
			[2]float64{10, 10},
			[2]float64{30, 30},
		), 50)

		require.NoError(t, err)
		m := result.Metrics
		assert.Equal(t, 1, m.TruePositives)
		assert.Equal(t, 2, m.TrueNegatives)
		assert.Equal(t, 1.0, m.Accuracy)
		assert.Equal(t, 1.0, m.Precision)
		assert.Equal(t, 1.0, m.Recall)
		assert.Equal(t, 1.0, m.F1Score)
		assert.Equal(t, 0.0, m.RMSE)
		assert.Equal(t, 1.0, m.RSquared)
	})

	t.Run("deterministic for identical input", func(t *testing.T) {
		first, err := Evaluate(mixed, 50)
		require.NoError(t, err)
		second, err := Evaluate(mixed, 50)
		require.NoError(t, err)

		assert.Empty(t, cmp.Diff(first, second))
	})
}

func TestEvaluateDegenerateWindows(t *testing.T) {
	t.Run("empty sample set", func(t *testing.T) {
		result, err := Evaluate(nil, 50)

		require.NoError(t, err)
		assert.Equal(t, []string{NoteNoSamples}, result.Metrics.Notes)
		assert.Zero(t, result.Metrics.Accuracy)
		assert.Empty(t, result.Predictions)
	})

	t.Run("no actual storms", func(t *testing.T) {
		result, err := Evaluate(pairs(
			[2]float64{10, 20},
			[2]float64{60, 30},
		), 50)

		require.NoError(t, err)
		m := result.Metrics
		assert.Contains(t, m.Notes, NoteNoActualStorms)
		assert.Equal(t, 0.0, m.Recall)
		assert.InDelta(t, 0.5, m.FalseAlarmRate, 1e-12)
	})

	t.Run("all quiet with no false positives pins false alarm rate at zero", func(t *testing.T) {
		result, err := Evaluate(pairs(
			[2]float64{10, 20},
			[2]float64{30, 40},
		), 50)

		require.NoError(t, err)
		m := result.Metrics
		assert.Contains(t, m.Notes, NoteNoActualStorms)
		assert.Equal(t, 0, m.FalsePositives)
		assert.Equal(t, 2, m.TrueNegatives)
		assert.Equal(t, 0.0, m.FalseAlarmRate)
	})

	t.Run("all quiet with every prediction crossing pins false alarm rate at one", func(t *testing.T) {
		result, err := Evaluate(pairs(
			[2]float64{80, 20},
			[2]float64{90, 40},
		), 50)

		require.NoError(t, err)
		m := result.Metrics
		assert.Contains(t, m.Notes, NoteNoActualStorms)
		assert.Equal(t, 2, m.FalsePositives)
		assert.Equal(t, 0, m.TrueNegatives)
		assert.Equal(t, 1.0, m.FalseAlarmRate)
	})

	t.Run("no predicted storms", func(t *testing.T) {
		result, err := Evaluate(pairs(
			[2]float64{10, 80},
			[2]float64{20, 30},
		), 50)

		require.NoError(t, err)
		m := result.Metrics
		assert.Contains(t, m.Notes, NoteNoPredictedStorms)
		assert.Equal(t, 0.0, m.Precision)
	})

	t.Run("no quiet samples", func(t *testing.T) {
		result, err := Evaluate(pairs(
			[2]float64{90, 80},
			[2]float64{70, 95},
		), 50)

		require.NoError(t, err)
		m := result.Metrics
		assert.Contains(t, m.Notes, NoteNoQuietSamples)
		assert.Equal(t, 0.0, m.FalseAlarmRate)
		assert.Equal(t, 0.0, m.Specificity)
	})

	t.Run("constant actuals define r squared as zero", func(t *testing.T) {
		result, err := Evaluate(pairs(
			[2]float64{40, 30},
			[2]float64{20, 30},
		), 50)

		require.NoError(t, err)
		assert.Equal(t, 0.0, result.Metrics.RSquared)
	})
}

func TestEvaluateValidation(t *testing.T) {
	t.Run("threshold out of range", func(t *testing.T) {
		_, err := Evaluate(pairs([2]float64{50, 50}), 101)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "storm_threshold")
	})

	t.Run("probability out of range", func(t *testing.T) {
		_, err := Evaluate(pairs([2]float64{120, 50}), 50)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "predicted_probability")
	})

	t.Run("nan probability", func(t *testing.T) {
		_, err := Evaluate(pairs([2]float64{50, math.NaN()}), 50)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "not finite")
	})
}
