// Package backtest scores a forecasting model against observed outcomes:
// confusion-matrix classification statistics at a probability threshold,
// continuous-error regression statistics, and a threshold sweep that picks
// an operating point under a chosen objective.
//
// Probabilities here live on the 0-100 scale the dashboard exposes. The
// storm threshold is independent of the Kp-scale extraction threshold in
// the domain package; the two are never converted into each other.
package backtest

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Sample pairs one predicted probability with the observed outcome at the
// same instant. Probabilities are percentages in [0, 100].
type Sample struct {
	Timestamp            time.Time `json:"timestamp"`
	PredictedProbability float64   `json:"predicted_probability"`
	ActualProbability    float64   `json:"actual_probability"`
}

// PredictionSample is a scored sample. The classification fields are
// threshold-relative: they are recomputed per evaluation and never stored
// as ground truth.
type PredictionSample struct {
	Timestamp             time.Time `json:"timestamp"`
	PredictedProbability  float64   `json:"predicted_probability"`
	ActualProbability     float64   `json:"actual_probability"`
	Error                 float64   `json:"error"`
	AbsoluteError         float64   `json:"absolute_error"`
	PredictedStorm        bool      `json:"predicted_storm"`
	ActualStorm           bool      `json:"actual_storm"`
	CorrectClassification bool      `json:"correct_classification"`
}

// ConfusionMatrix counts classification outcomes at one threshold, where
// "positive" means actual_probability >= threshold.
type ConfusionMatrix struct {
	TruePositives  int `json:"true_positives"`
	FalsePositives int `json:"false_positives"`
	TrueNegatives  int `json:"true_negatives"`
	FalseNegatives int `json:"false_negatives"`
}

// Total returns the number of samples the matrix was built from.
func (c ConfusionMatrix) Total() int {
	return c.TruePositives + c.FalsePositives + c.TrueNegatives + c.FalseNegatives
}

// Degeneracy flags attached to Metrics.Notes. They mark zero-denominator
// conditions that are well-defined zeros, not errors, so callers can render
// "this window had no storms" instead of a misleading 0% or 100% figure.
const (
	NoteNoSamples         = "no_samples"
	NoteNoActualStorms    = "no_actual_storms"
	NoteNoPredictedStorms = "no_predicted_storms"
	NoteNoQuietSamples    = "no_quiet_samples"
)

// Metrics aggregates classification and regression statistics for one
// evaluation. Every ratio with a zero denominator is reported as 0 and
// flagged in Notes.
type Metrics struct {
	MSE      float64 `json:"mse"`
	RMSE     float64 `json:"rmse"`
	MAE      float64 `json:"mae"`
	RSquared float64 `json:"r_squared"`

	Accuracy       float64 `json:"accuracy"`
	Precision      float64 `json:"precision"`
	Recall         float64 `json:"recall"`
	F1Score        float64 `json:"f1_score"`
	HitRate        float64 `json:"hit_rate"`
	FalseAlarmRate float64 `json:"false_alarm_rate"`
	Specificity    float64 `json:"specificity"`

	ConfusionMatrix

	TotalPredictions     int `json:"total_predictions"`
	TotalStormsActual    int `json:"total_storms_actual"`
	TotalStormsPredicted int `json:"total_storms_predicted"`

	Notes []string `json:"notes,omitempty"`
}

// Metadata describes the evaluated window.
type Metadata struct {
	StartDate           time.Time `json:"start_date"`
	EndDate             time.Time `json:"end_date"`
	DurationDays        int       `json:"duration_days"`
	StormThreshold      float64   `json:"storm_threshold"`
	SampleIntervalHours float64   `json:"sample_interval_hours"`
	TotalPredictions    int       `json:"total_predictions"`
}

// Analysis holds the categorized example lists the dashboard renders.
type Analysis struct {
	BestPredictions         []PredictionSample `json:"best_predictions"`
	WorstPredictions        []PredictionSample `json:"worst_predictions"`
	MissedStorms            []PredictionSample `json:"missed_storms"`
	FalseAlarms             []PredictionSample `json:"false_alarms"`
	CorrectPredictionsCount int                `json:"correct_predictions_count"`
}

// Summary condenses an evaluation into the headline numbers.
type Summary struct {
	AverageError         float64 `json:"average_error"`
	AverageAbsoluteError float64 `json:"average_absolute_error"`
	MaxError             float64 `json:"max_error"`
	MinError             float64 `json:"min_error"`
	StormDetectionRate   float64 `json:"storm_detection_rate"`
	FalseAlarmRate       float64 `json:"false_alarm_rate"`
}

// Result is a full backtest evaluation. It is derived data with no
// independent identity: recomputed whenever the threshold or window changes.
type Result struct {
	Metadata    Metadata           `json:"metadata"`
	Metrics     Metrics            `json:"metrics"`
	Predictions []PredictionSample `json:"predictions"`
	Analysis    Analysis           `json:"analysis"`
	Summary     Summary            `json:"summary"`
}

// analysisListLimit caps the best/worst example lists.
const analysisListLimit = 10

// Evaluate scores the sample set at one classification threshold. It is
// purely functional: same samples and threshold, same result. An empty
// sample set yields an empty result with the no_samples note, not an error.
func Evaluate(samples []Sample, threshold float64) (Result, error) {
	if threshold < 0 || threshold > 100 {
		return Result{}, fmt.Errorf("storm_threshold %g outside [0, 100]", threshold)
	}
	for i, s := range samples {
		if err := validateSample(i, s); err != nil {
			return Result{}, err
		}
	}

	scored := make([]PredictionSample, len(samples))
	for i, s := range samples {
		predicted := s.PredictedProbability >= threshold
		actual := s.ActualProbability >= threshold
		scored[i] = PredictionSample{
			Timestamp:             s.Timestamp,
			PredictedProbability:  s.PredictedProbability,
			ActualProbability:     s.ActualProbability,
			Error:                 s.PredictedProbability - s.ActualProbability,
			AbsoluteError:         math.Abs(s.PredictedProbability - s.ActualProbability),
			PredictedStorm:        predicted,
			ActualStorm:           actual,
			CorrectClassification: predicted == actual,
		}
	}

	metrics := computeMetrics(scored, threshold)

	return Result{
		Metadata:    buildMetadata(scored, threshold),
		Metrics:     metrics,
		Predictions: scored,
		Analysis:    buildAnalysis(scored),
		Summary:     buildSummary(scored, metrics),
	}, nil
}

func validateSample(i int, s Sample) error {
	for _, v := range []struct {
		field string
		value float64
	}{
		{"predicted_probability", s.PredictedProbability},
		{"actual_probability", s.ActualProbability},
	} {
		if math.IsNaN(v.value) || math.IsInf(v.value, 0) {
			return fmt.Errorf("sample %d: %s is not finite", i, v.field)
		}
		if v.value < 0 || v.value > 100 {
			return fmt.Errorf("sample %d: %s %g outside [0, 100]", i, v.field, v.value)
		}
	}
	return nil
}

func computeMetrics(scored []PredictionSample, threshold float64) Metrics {
	var m Metrics
	m.TotalPredictions = len(scored)

	if len(scored) == 0 {
		m.Notes = []string{NoteNoSamples}
		return m
	}

	var sqSum, absSum, actualSum float64
	for _, s := range scored {
		sqSum += s.Error * s.Error
		absSum += s.AbsoluteError
		actualSum += s.ActualProbability

		switch {
		case s.PredictedStorm && s.ActualStorm:
			m.TruePositives++
		case s.PredictedStorm && !s.ActualStorm:
			m.FalsePositives++
		case !s.PredictedStorm && s.ActualStorm:
			m.FalseNegatives++
		default:
			m.TrueNegatives++
		}
	}

	n := float64(len(scored))
	m.MSE = sqSum / n
	m.RMSE = math.Sqrt(m.MSE)
	m.MAE = absSum / n
	m.RSquared = rSquared(scored, actualSum/n)

	m.Accuracy = float64(m.TruePositives+m.TrueNegatives) / n
	m.Precision = safeRatio(m.TruePositives, m.TruePositives+m.FalsePositives)
	m.Recall = safeRatio(m.TruePositives, m.TruePositives+m.FalseNegatives)
	if m.Precision+m.Recall > 0 {
		m.F1Score = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}
	m.HitRate = m.Recall
	m.FalseAlarmRate = safeRatio(m.FalsePositives, m.FalsePositives+m.TrueNegatives)
	m.Specificity = safeRatio(m.TrueNegatives, m.TrueNegatives+m.FalsePositives)

	m.TotalStormsActual = m.TruePositives + m.FalseNegatives
	m.TotalStormsPredicted = m.TruePositives + m.FalsePositives

	if m.TotalStormsActual == 0 {
		m.Notes = append(m.Notes, NoteNoActualStorms)
	}
	if m.TotalStormsPredicted == 0 {
		m.Notes = append(m.Notes, NoteNoPredictedStorms)
	}
	if m.FalsePositives+m.TrueNegatives == 0 {
		m.Notes = append(m.Notes, NoteNoQuietSamples)
	}
	return m
}

// safeRatio returns numerator/denominator, defined as 0 when the
// denominator is 0.
func safeRatio(numerator, denominator int) float64 {
	if denominator == 0 {
		return 0
	}
	return float64(numerator) / float64(denominator)
}

// rSquared is the standard coefficient of determination against the mean of
// the actual values. A constant actual series has no variance to explain,
// so the result is defined as 0.
func rSquared(scored []PredictionSample, actualMean float64) float64 {
	var ssRes, ssTot float64
	for _, s := range scored {
		ssRes += s.Error * s.Error
		d := s.ActualProbability - actualMean
		ssTot += d * d
	}
	if ssTot == 0 {
		return 0
	}
	return 1 - ssRes/ssTot
}

func buildMetadata(scored []PredictionSample, threshold float64) Metadata {
	md := Metadata{StormThreshold: threshold, TotalPredictions: len(scored)}
	if len(scored) > 0 {
		md.StartDate = scored[0].Timestamp
		md.EndDate = scored[len(scored)-1].Timestamp
		md.DurationDays = int(md.EndDate.Sub(md.StartDate).Hours() / 24)
	}
	return md
}

func buildAnalysis(scored []PredictionSample) Analysis {
	a := Analysis{
		BestPredictions:  []PredictionSample{},
		WorstPredictions: []PredictionSample{},
		MissedStorms:     []PredictionSample{},
		FalseAlarms:      []PredictionSample{},
	}
	for _, s := range scored {
		if s.ActualStorm && !s.PredictedStorm {
			a.MissedStorms = append(a.MissedStorms, s)
		}
		if s.PredictedStorm && !s.ActualStorm {
			a.FalseAlarms = append(a.FalseAlarms, s)
		}
		if s.CorrectClassification {
			a.CorrectPredictionsCount++
		}
	}

	// Ties on absolute error break by timestamp so repeated runs produce
	// identical lists.
	byError := make([]PredictionSample, len(scored))
	copy(byError, scored)
	sort.SliceStable(byError, func(i, j int) bool {
		if byError[i].AbsoluteError != byError[j].AbsoluteError {
			return byError[i].AbsoluteError < byError[j].AbsoluteError
		}
		return byError[i].Timestamp.Before(byError[j].Timestamp)
	})

	a.BestPredictions = append(a.BestPredictions, byError[:min(analysisListLimit, len(byError))]...)
	for i := len(byError) - 1; i >= 0 && len(a.WorstPredictions) < analysisListLimit; i-- {
		a.WorstPredictions = append(a.WorstPredictions, byError[i])
	}
	return a
}

func buildSummary(scored []PredictionSample, metrics Metrics) Summary {
	s := Summary{
		StormDetectionRate: metrics.Recall * 100,
		FalseAlarmRate:     metrics.FalseAlarmRate * 100,
	}
	if len(scored) == 0 {
		return s
	}

	var errSum, absSum float64
	s.MinError = scored[0].AbsoluteError
	for _, p := range scored {
		errSum += p.Error
		absSum += p.AbsoluteError
		s.MaxError = max(s.MaxError, p.AbsoluteError)
		s.MinError = min(s.MinError, p.AbsoluteError)
	}
	s.AverageError = errSum / float64(len(scored))
	s.AverageAbsoluteError = absSum / float64(len(scored))
	return s
}
