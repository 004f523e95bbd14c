package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ionoscope/storm-eval-service/internal/backtest"
	"github.com/ionoscope/storm-eval-service/internal/catalog"
	"github.com/ionoscope/storm-eval-service/internal/domain"
	"github.com/ionoscope/storm-eval-service/internal/store"
)

// backtestRequest selects the prediction samples for a run. Samples come
// either inline or from the measurement store over [start_date, end_date],
// optionally decimated to one sample per sample_interval_hours.
type backtestRequest struct {
	StartDate     time.Time          `json:"start_date"`
	EndDate       time.Time          `json:"end_date"`
	IntervalHours float64            `json:"sample_interval_hours"`
	Threshold     *float64           `json:"storm_threshold"`
	Samples       []backtest.Sample  `json:"samples"`
}

type optimizeRequest struct {
	backtestRequest
	Method          string                   `json:"optimization_method"`
	Range           *backtest.ThresholdRange `json:"threshold_range"`
	CostFalseAlarm  *float64                 `json:"cost_false_alarm"`
	CostMissedStorm *float64                 `json:"cost_missed_storm"`
}

func (s *Server) handleBacktestRun(w http.ResponseWriter, r *http.Request) {
	var req backtestRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Threshold == nil {
		writeError(w, http.StatusBadRequest, "storm_threshold is required")
		return
	}

	samples, err := s.resolveSamples(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	start := time.Now()
	result, err := backtest.Evaluate(samples, *req.Threshold)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.metrics.BacktestsRun.Inc()
	s.metrics.BacktestDuration.Observe(time.Since(start).Seconds())
	s.metrics.EvaluationSamples.Observe(float64(len(samples)))

	s.logger.Info("backtest served", "samples", len(samples),
		"threshold", *req.Threshold, "accuracy", result.Metrics.Accuracy)
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleBacktestOptimize(w http.ResponseWriter, r *http.Request) {
	var req optimizeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cfg := backtest.OptimizeConfig{
		Range:           backtest.DefaultThresholdRange(),
		Method:          backtest.MethodF1,
		CostFalseAlarm:  backtest.DefaultCostFalseAlarm,
		CostMissedStorm: backtest.DefaultCostMissedStorm,
	}
	if req.Method != "" {
		cfg.Method = backtest.Method(req.Method)
	}
	if req.Range != nil {
		cfg.Range = *req.Range
	}
	if req.CostFalseAlarm != nil {
		cfg.CostFalseAlarm = *req.CostFalseAlarm
	}
	if req.CostMissedStorm != nil {
		cfg.CostMissedStorm = *req.CostMissedStorm
	}

	samples, err := s.resolveSamples(req.backtestRequest)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(samples) == 0 {
		writeError(w, http.StatusBadRequest, "no samples in the requested window")
		return
	}

	start := time.Now()
	result, err := backtest.Optimize(samples, cfg)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.metrics.SweepsRun.Inc()
	s.metrics.SweepDuration.Observe(time.Since(start).Seconds())
	s.metrics.EvaluationSamples.Observe(float64(len(samples)))

	s.logger.Info("threshold sweep served", "samples", len(samples),
		"method", cfg.Method, "optimal_threshold", result.OptimalThreshold)
	writeJSON(w, http.StatusOK, result)
}

// resolveSamples returns the inline samples when given, otherwise pairs the
// stored predicted and actual probabilities over the requested window.
func (s *Server) resolveSamples(req backtestRequest) ([]backtest.Sample, error) {
	if len(req.Samples) > 0 {
		return req.Samples, nil
	}

	var ms []domain.Measurement
	if req.StartDate.IsZero() && req.EndDate.IsZero() {
		ms = s.source.All()
	} else {
		if !req.EndDate.IsZero() && !req.StartDate.IsZero() && req.EndDate.Before(req.StartDate) {
			return nil, errors.New("end_date is before start_date")
		}
		end := req.EndDate
		if end.IsZero() {
			end = time.Now().UTC()
		}
		ms = s.source.Range(req.StartDate, end)
	}
	if req.IntervalHours > 0 {
		ms = store.Decimate(ms, req.IntervalHours)
	}

	samples := make([]backtest.Sample, 0, len(ms))
	for _, m := range ms {
		samples = append(samples, backtest.Sample{
			Timestamp:            m.Timestamp,
			PredictedProbability: m.PredictedProbability,
			ActualProbability:    m.StormProbability,
		})
	}
	return samples, nil
}

func (s *Server) handleStormEvents(w http.ResponseWriter, r *http.Request) {
	cfg := s.extCfg
	q := r.URL.Query()

	var err error
	if cfg.KpThreshold, err = queryFloat(q.Get("kp_threshold"), cfg.KpThreshold); err != nil {
		writeError(w, http.StatusBadRequest, "kp_threshold: "+err.Error())
		return
	}
	if cfg.MinGapHours, err = queryFloat(q.Get("min_gap_hours"), cfg.MinGapHours); err != nil {
		writeError(w, http.StatusBadRequest, "min_gap_hours: "+err.Error())
		return
	}
	if cfg.MinDurationHours, err = queryFloat(q.Get("min_duration_hours"), cfg.MinDurationHours); err != nil {
		writeError(w, http.StatusBadRequest, "min_duration_hours: "+err.Error())
		return
	}
	if err := cfg.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	series, err := s.querySeries(q.Get("start"), q.Get("end"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	events, err := domain.ExtractEvents(series, cfg)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":  len(events),
		"events": events,
	})
}

func (s *Server) querySeries(startParam, endParam string) ([]domain.Measurement, error) {
	if startParam == "" && endParam == "" {
		return s.source.All(), nil
	}
	start, err := queryTime(startParam, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("start: %w", err)
	}
	end, err := queryTime(endParam, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("end: %w", err)
	}
	return s.source.Range(start, end), nil
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	storms := catalog.MajorStorms
	if sev := q.Get("min_severity"); sev != "" {
		storms = catalog.BySeverity(sev)
	}
	if cat := q.Get("category"); cat != "" {
		filtered := storms[:0:0]
		for _, st := range storms {
			if st.Category == cat {
				filtered = append(filtered, st)
			}
		}
		storms = filtered
	}
	if q.Get("notable") == "true" {
		filtered := storms[:0:0]
		for _, st := range storms {
			if st.Notable {
				filtered = append(filtered, st)
			}
		}
		storms = filtered
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"count":  len(storms),
		"storms": storms,
	})
}

// regionView is a Region plus the storm response computed for the optional
// kp/solar_wind_speed query parameters.
type regionView struct {
	domain.Region
	EnhancementFactor *float64 `json:"enhancement_factor,omitempty"`
}

func (s *Server) handleRegions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	kp, err := queryFloat(q.Get("kp"), -1)
	if err != nil {
		writeError(w, http.StatusBadRequest, "kp: "+err.Error())
		return
	}
	solarWind, err := queryFloat(q.Get("solar_wind_speed"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "solar_wind_speed: "+err.Error())
		return
	}

	views := make([]regionView, 0, len(domain.Regions))
	for _, region := range domain.Regions {
		view := regionView{Region: region}
		if kp >= 0 {
			f := region.StormEnhancementFactor(kp, solarWind)
			view.EnhancementFactor = &f
		}
		views = append(views, view)
	}

	resp := map[string]any{"regions": views}
	if kp >= 0 {
		resp["storm_intensity"] = domain.StormIntensity(kp)
	}
	writeJSON(w, http.StatusOK, resp)
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

func queryFloat(raw string, def float64) (float64, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.ParseFloat(raw, 64)
}

func queryTime(raw string, def time.Time) (time.Time, error) {
	if raw == "" {
		return def, nil
	}
	return time.Parse(time.RFC3339, raw)
}
