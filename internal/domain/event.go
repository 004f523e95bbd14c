package domain

import "time"

// StormEvent is a closed window of storm-level geomagnetic activity derived
// from a measurement series. Events are never mutated after creation; they
// are destroyed only by re-running extraction over a new window.
type StormEvent struct {
	ID            string    `json:"id"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	PeakTime      time.Time `json:"peak_time"`
	PeakKp        float64   `json:"peak_kp"`
	AvgKp         float64   `json:"avg_kp"`
	AvgTEC        float64   `json:"avg_tec"`
	MaxTEC        float64   `json:"max_tec"`
	DurationHours float64   `json:"duration_hours"`
	GScale        string    `json:"g_scale"`
	SeverityName  string    `json:"severity_name"`
	SeverityLevel int       `json:"severity_level"`
	SampleCount   int       `json:"sample_count"`
	ExtractedAt   time.Time `json:"extracted_at"`
}
