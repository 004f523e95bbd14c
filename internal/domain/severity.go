package domain

// Severity is a NOAA G-scale classification derived from peak Kp.
type Severity struct {
	Level  int    `json:"level"`   // 0 (no storm) through 5 (extreme)
	Name   string `json:"name"`    // "Minor", "Moderate", ...
	GScale string `json:"g_scale"` // "G0" through "G5"
}

// ClassifySeverity maps a Kp value onto the NOAA G-scale. Values are
// clamped at the extremes: anything >= 9 is G5, anything below 5 is G0.
func ClassifySeverity(kp float64) Severity {
	switch {
	case kp >= 9:
		return Severity{Level: 5, Name: "Extreme", GScale: "G5"}
	case kp >= 8:
		return Severity{Level: 4, Name: "Severe", GScale: "G4"}
	case kp >= 7:
		return Severity{Level: 3, Name: "Strong", GScale: "G3"}
	case kp >= 6:
		return Severity{Level: 2, Name: "Moderate", GScale: "G2"}
	case kp >= 5:
		return Severity{Level: 1, Name: "Minor", GScale: "G1"}
	default:
		return Severity{Level: 0, Name: "No Storm", GScale: "G0"}
	}
}
