package backtest

import (
	"fmt"
	"math"
	"runtime"
	"sync"
)

// Method selects the objective the threshold sweep maximizes.
type Method string

const (
	// MethodF1 maximizes the F1 score at each threshold.
	MethodF1 Method = "f1"
	// MethodYouden maximizes Youden's J: recall + specificity - 1.
	MethodYouden Method = "youden"
	// MethodCost minimizes the weighted misclassification cost
	// cost_false_alarm*FP + cost_missed_storm*FN.
	MethodCost Method = "cost"
)

// ThresholdRange is an inclusive [Low, High] sweep with the given step.
type ThresholdRange struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
	Step float64 `json:"step"`
}

// DefaultThresholdRange mirrors the dashboard's sweep: 10% to 90% in 5%
// steps.
func DefaultThresholdRange() ThresholdRange {
	return ThresholdRange{Low: 10, High: 90, Step: 5}
}

// DefaultCostRatio makes a missed storm five times as expensive as a false
// alarm, reflecting that warning fatigue is cheaper than an unwarned storm.
const (
	DefaultCostFalseAlarm  = 1.0
	DefaultCostMissedStorm = 5.0
)

// OptimizeConfig parameterizes a threshold sweep.
type OptimizeConfig struct {
	Range           ThresholdRange `json:"threshold_range"`
	Method          Method         `json:"optimization_method"`
	CostFalseAlarm  float64        `json:"cost_false_alarm"`
	CostMissedStorm float64        `json:"cost_missed_storm"`
}

// SweepPoint records the metrics observed at one swept threshold.
type SweepPoint struct {
	Threshold      float64 `json:"threshold"`
	F1Score        float64 `json:"f1_score"`
	Precision      float64 `json:"precision"`
	Recall         float64 `json:"recall"`
	Accuracy       float64 `json:"accuracy"`
	FalseAlarmRate float64 `json:"false_alarm_rate"`
	YoudenJ        float64 `json:"youden_j"`
	Cost           float64 `json:"cost"`
	Score          float64 `json:"score"`
}

// SweepResult is the immutable output of one optimization run: the full
// per-threshold sweep for plotting plus the selected operating point.
type SweepResult struct {
	OptimalThreshold   float64      `json:"optimal_threshold"`
	OptimizationMethod Method       `json:"optimization_method"`
	BestScore          float64      `json:"best_score"`
	ThresholdSweep     []SweepPoint `json:"threshold_sweep"`
	OptimalMetrics     Metrics      `json:"optimal_metrics"`
}

func (c OptimizeConfig) validate() error {
	switch c.Method {
	case MethodF1, MethodYouden, MethodCost:
	default:
		return fmt.Errorf("optimization_method %q is not one of f1, youden, cost", c.Method)
	}
	r := c.Range
	if r.Step <= 0 {
		return fmt.Errorf("threshold step %g must be positive", r.Step)
	}
	if r.Low > r.High {
		return fmt.Errorf("threshold range low %g above high %g", r.Low, r.High)
	}
	if r.Low < 0 || r.High > 100 {
		return fmt.Errorf("threshold range [%g, %g] outside [0, 100]", r.Low, r.High)
	}
	if c.CostFalseAlarm < 0 || c.CostMissedStorm < 0 {
		return fmt.Errorf("cost weights must be non-negative, got false_alarm=%g missed_storm=%g",
			c.CostFalseAlarm, c.CostMissedStorm)
	}
	return nil
}

// thresholds expands the range into the swept values. The upper bound is
// inclusive. Values are generated by index rather than accumulated, and
// anything within epsilon of High snaps to High exactly, so fractional
// steps still sweep High itself.
func (r ThresholdRange) thresholds() []float64 {
	const eps = 1e-9
	var out []float64
	for i := 0; ; i++ {
		t := r.Low + float64(i)*r.Step
		if t > r.High+eps {
			break
		}
		if math.Abs(r.High-t) <= eps {
			t = r.High
		}
		out = append(out, t)
	}
	return out
}

// Optimize sweeps thresholds over the range, evaluates each, and selects
// the value maximizing the chosen objective. Evaluations are independent
// and run on a bounded worker pool; the output sweep is ordered by
// threshold value, not completion order. Ties prefer the lower threshold:
// the more sensitive operating point, on the assumption that a missed storm
// is costlier than a false alarm. That tie-break is an inferred policy
// awaiting product confirmation.
func Optimize(samples []Sample, cfg OptimizeConfig) (SweepResult, error) {
	if err := cfg.validate(); err != nil {
		return SweepResult{}, fmt.Errorf("optimize config: %w", err)
	}

	thresholds := cfg.Range.thresholds()
	points := make([]SweepPoint, len(thresholds))
	errs := make([]error, len(thresholds))

	workers := min(runtime.GOMAXPROCS(0), len(thresholds))
	jobs := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			for i := range jobs {
				points[i], errs[i] = sweepOne(samples, thresholds[i], cfg)
			}
		}()
	}
	for i := range thresholds {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return SweepResult{}, err
		}
	}

	// Strict > with an ascending sweep makes the lowest tied threshold win.
	best := 0
	for i, p := range points {
		if p.Score > points[best].Score {
			best = i
		}
	}

	optimal, err := Evaluate(samples, points[best].Threshold)
	if err != nil {
		return SweepResult{}, err
	}

	return SweepResult{
		OptimalThreshold:   points[best].Threshold,
		OptimizationMethod: cfg.Method,
		BestScore:          points[best].Score,
		ThresholdSweep:     points,
		OptimalMetrics:     optimal.Metrics,
	}, nil
}

func sweepOne(samples []Sample, threshold float64, cfg OptimizeConfig) (SweepPoint, error) {
	result, err := Evaluate(samples, threshold)
	if err != nil {
		return SweepPoint{}, err
	}
	m := result.Metrics

	cost := cfg.CostFalseAlarm*float64(m.FalsePositives) + cfg.CostMissedStorm*float64(m.FalseNegatives)
	p := SweepPoint{
		Threshold:      threshold,
		F1Score:        m.F1Score,
		Precision:      m.Precision,
		Recall:         m.Recall,
		Accuracy:       m.Accuracy,
		FalseAlarmRate: m.FalseAlarmRate,
		YoudenJ:        m.Recall + m.Specificity - 1,
		Cost:           cost,
	}

	switch cfg.Method {
	case MethodF1:
		p.Score = p.F1Score
	case MethodYouden:
		p.Score = p.YoudenJ
	case MethodCost:
		// Negated so every method maximizes its score.
		p.Score = -cost
	}
	if math.IsNaN(p.Score) {
		return SweepPoint{}, fmt.Errorf("threshold %g produced NaN score", threshold)
	}
	return p, nil
}
