package domain

import "fmt"

// Region is a latitude band with climatology-derived adjustment factors.
// BaselineFactor scales a global TEC value to the band's quiet-time normal;
// VariabilityFactor scales storm-time excess; StormResponse is how strongly
// the band's TEC reacts during storm conditions (auroral zones react most).
type Region struct {
	Code              string     `json:"code"`
	Name              string     `json:"name"`
	LatRange          [2]float64 `json:"lat_range"`
	Description       string     `json:"description"`
	BaselineFactor    float64    `json:"baseline_factor"`
	VariabilityFactor float64    `json:"variability_factor"`
	StormResponse     float64    `json:"storm_response"`

	// RiskThresholds are the TEC (TECU) boundaries for low, moderate, high,
	// and extreme risk. Bands have different baselines, so the boundaries
	// differ per region.
	RiskThresholds [4]float64 `json:"risk_thresholds"`
}

// Regions lists the five geographic bands, ordered equator to pole with the
// global reference last. Factors come from latitude-band climatology normals
// validated in a 90-day regional backtest.
var Regions = []Region{
	{
		Code: "equatorial", Name: "Equatorial", LatRange: [2]float64{-20, 20},
		Description:    "Equatorial anomaly zone with a high quiet-time TEC baseline",
		BaselineFactor: 1.45, VariabilityFactor: 0.80, StormResponse: 1.15,
		RiskThresholds: [4]float64{18, 25, 35, 45},
	},
	{
		Code: "mid_latitude", Name: "Mid-Latitude", LatRange: [2]float64{20, 55},
		Description:    "Reference band covering most populated regions",
		BaselineFactor: 1.00, VariabilityFactor: 1.00, StormResponse: 1.35,
		RiskThresholds: [4]float64{12, 18, 25, 35},
	},
	{
		Code: "auroral", Name: "Auroral", LatRange: [2]float64{55, 75},
		Description:    "Auroral oval, lower baseline but strong storm-time particle precipitation",
		BaselineFactor: 0.75, VariabilityFactor: 1.60, StormResponse: 1.65,
		RiskThresholds: [4]float64{10, 15, 22, 30},
	},
	{
		Code: "polar", Name: "Polar", LatRange: [2]float64{75, 90},
		Description:    "Polar cap, lowest baseline with cusp-driven variability",
		BaselineFactor: 0.55, VariabilityFactor: 1.30, StormResponse: 1.45,
		RiskThresholds: [4]float64{8, 12, 18, 25},
	},
	{
		Code: "global", Name: "Global", LatRange: [2]float64{-90, 90},
		Description:    "Global average reference",
		BaselineFactor: 1.00, VariabilityFactor: 1.00, StormResponse: 1.30,
		RiskThresholds: [4]float64{12, 18, 25, 35},
	},
}

// RegionByCode returns the region for a band code.
func RegionByCode(code string) (Region, error) {
	for _, r := range Regions {
		if r.Code == code {
			return r, nil
		}
	}
	return Region{}, fmt.Errorf("unknown region code %q", code)
}

// StormIntensity maps Kp to the fractional storm-time TEC enhancement for
// the mid-latitude reference band: none below G1, rising to 100% at G5.
func StormIntensity(kp float64) float64 {
	switch {
	case kp < 5:
		return 0
	case kp < 6:
		return 0.20
	case kp < 7:
		return 0.35
	case kp < 8:
		return 0.55
	case kp < 9:
		return 0.75
	default:
		return 1.00
	}
}

// StormEnhancementFactor combines the Kp-driven storm intensity with the
// region's storm response, plus an extra boost of up to 20% when the solar
// wind exceeds 600 km/s (strong driving).
func (r Region) StormEnhancementFactor(kp, solarWindSpeed float64) float64 {
	factor := 1.0 + StormIntensity(kp)*(r.StormResponse-1.0)
	if solarWindSpeed > 600 {
		factor += min((solarWindSpeed-600)/400, 0.2)
	}
	return factor
}

// RiskLevel is a qualitative TEC risk assessment for one region.
type RiskLevel struct {
	Level       string  `json:"level"`
	Severity    int     `json:"severity"`
	Description string  `json:"description"`
	TEC         float64 `json:"tec"`
}

// AssessRisk classifies a TEC value against the region's thresholds.
func (r Region) AssessRisk(tec float64) RiskLevel {
	t := r.RiskThresholds
	switch {
	case tec < t[0]:
		return RiskLevel{Level: "LOW", Severity: 1, TEC: tec,
			Description: "Minimal ionospheric disturbance. Normal GPS and communication conditions."}
	case tec < t[1]:
		return RiskLevel{Level: "MODERATE", Severity: 2, TEC: tec,
			Description: "Moderate ionospheric activity. Minor GPS and HF radio impacts possible."}
	case tec < t[2]:
		return RiskLevel{Level: "HIGH", Severity: 3, TEC: tec,
			Description: "Elevated ionospheric disturbance. GPS errors of 3-5m, HF radio disruption likely."}
	case tec < t[3]:
		return RiskLevel{Level: "SEVERE", Severity: 4, TEC: tec,
			Description: "Severe ionospheric storm. Significant GPS degradation, satellite communication issues."}
	default:
		return RiskLevel{Level: "EXTREME", Severity: 5, TEC: tec,
			Description: "Extreme ionospheric storm. Major GPS outages possible, widespread communication disruption."}
	}
}
