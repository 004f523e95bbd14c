// Command backtest evaluates prediction accuracy offline against a JSON
// fixture of prediction samples, without a running service. It can score a
// single threshold or sweep a range to find the optimal operating point.
//
// Usage:
//
//	go run ./cmd/backtest -input data/mock/samples_2024.json -threshold 50
//	go run ./cmd/backtest -input data/mock/samples_2024.json \
//	  -optimize -method cost -cost-missed-storm 10
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/ionoscope/storm-eval-service/internal/backtest"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "backtest:", err)
		os.Exit(1)
	}
}

func run() error {
	input := flag.String("input", "", "path to JSON array of prediction samples")
	threshold := flag.Float64("threshold", 50, "storm probability threshold (0-100)")
	optimize := flag.Bool("optimize", false, "sweep thresholds instead of scoring one")
	method := flag.String("method", "f1", "optimization method: f1, youden, cost")
	low := flag.Float64("low", 10, "sweep lower bound")
	high := flag.Float64("high", 90, "sweep upper bound")
	step := flag.Float64("step", 5, "sweep step")
	costFA := flag.Float64("cost-false-alarm", backtest.DefaultCostFalseAlarm, "false alarm cost weight")
	costMS := flag.Float64("cost-missed-storm", backtest.DefaultCostMissedStorm, "missed storm cost weight")
	asJSON := flag.Bool("json", false, "emit the full result as JSON")
	flag.Parse()

	if *input == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -input")
	}

	samples, err := loadSamples(*input)
	if err != nil {
		return err
	}

	if *optimize {
		cfg := backtest.OptimizeConfig{
			Range:           backtest.ThresholdRange{Low: *low, High: *high, Step: *step},
			Method:          backtest.Method(*method),
			CostFalseAlarm:  *costFA,
			CostMissedStorm: *costMS,
		}
		result, err := backtest.Optimize(samples, cfg)
		if err != nil {
			return err
		}
		if *asJSON {
			return emitJSON(result)
		}
		printSweep(result, len(samples))
		return nil
	}

	result, err := backtest.Evaluate(samples, *threshold)
	if err != nil {
		return err
	}
	if *asJSON {
		return emitJSON(result)
	}
	printBacktest(result)
	return nil
}

func loadSamples(path string) ([]backtest.Sample, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var samples []backtest.Sample
	if err := json.Unmarshal(data, &samples); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return samples, nil
}

func emitJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printBacktest(r backtest.Result) {
	m := r.Metrics
	fmt.Printf("samples:    %d (threshold %.1f%%)\n", m.TotalPredictions, r.Metadata.StormThreshold)
	fmt.Printf("accuracy:   %.4f   rmse: %.3f   mae: %.3f   r2: %.4f\n",
		m.Accuracy, m.RMSE, m.MAE, m.RSquared)
	fmt.Printf("precision:  %.4f   recall: %.4f   f1: %.4f\n", m.Precision, m.Recall, m.F1Score)
	fmt.Printf("hit rate:   %.4f   false alarms: %.4f   specificity: %.4f\n",
		m.HitRate, m.FalseAlarmRate, m.Specificity)
	fmt.Printf("confusion:  tp=%d fp=%d tn=%d fn=%d\n",
		m.TruePositives, m.FalsePositives, m.TrueNegatives, m.FalseNegatives)
	for _, note := range m.Notes {
		fmt.Printf("note:       %s\n", note)
	}
}

func printSweep(r backtest.SweepResult, samples int) {
	fmt.Printf("swept %d thresholds over %d samples (%s)\n",
		len(r.ThresholdSweep), samples, r.OptimizationMethod)
	fmt.Printf("optimal threshold: %.1f%% (score %.4f)\n", r.OptimalThreshold, r.BestScore)
	fmt.Println()
	fmt.Println("threshold      f1  precision   recall  far      cost")
	for _, pt := range r.ThresholdSweep {
		marker := "  "
		if pt.Threshold == r.OptimalThreshold {
			marker = "* "
		}
		fmt.Printf("%s%7.1f  %7.4f  %9.4f  %7.4f  %7.4f  %8.2f\n",
			marker, pt.Threshold, pt.F1Score, pt.Precision, pt.Recall, pt.FalseAlarmRate, pt.Cost)
	}
}
