// Package catalog holds the curated record of major geomagnetic storms from
// 2015-2025, with context and real-world impacts. Entries are matched to
// actual events in the NASA OMNI historical dataset and rendered by the
// dashboard's storm timeline.
package catalog

import "time"

// Category distinguishes the solar driver behind a storm.
const (
	CategorySolarStorm = "solar_storm" // CME-driven
	CategorySolarWind  = "solar_wind"  // coronal-hole high-speed stream
)

// MajorStorm is one curated historical storm record.
type MajorStorm struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	DateStart         string    `json:"date_start"`
	DateEnd           string    `json:"date_end"`
	Severity          string    `json:"severity"`
	MaxKp             float64   `json:"max_kp"`
	Description       string    `json:"description"`
	Impacts           []string  `json:"impacts"`
	ScientificContext string    `json:"scientific_context"`
	NOAAReportURL     string    `json:"noaa_report_url,omitempty"`
	PeakTimestamp     time.Time `json:"peak_timestamp"`
	Category          string    `json:"category"`
	Notable           bool      `json:"notable,omitempty"`
}

// MajorStorms lists the catalog in chronological order.
var MajorStorms = []MajorStorm{
	{
		ID:        "st_patricks_day_2015",
		Name:      "St. Patrick's Day Storm",
		DateStart: "2015-03-17",
		DateEnd:   "2015-03-18",
		Severity:  "G4 - Severe",
		MaxKp:     8.0,
		Description: "One of the strongest storms of Solar Cycle 24. Two coronal mass ejections " +
			"(CMEs) hit Earth's magnetosphere in quick succession.",
		Impacts: []string{
			"Widespread aurora visible as far south as the northern United States",
			"GPS navigation errors reported",
			"Radio communication disruptions",
			"Power grid fluctuations in high-latitude regions",
		},
		ScientificContext: "This storm was caused by two CMEs that erupted on March 15, combining to " +
			"create a particularly powerful geomagnetic storm. The sudden storm commencement occurred " +
			"at 04:45 UTC on March 17.",
		NOAAReportURL: "https://www.swpc.noaa.gov/news/g4-severe-geomagnetic-storm-watch-17-march-2015",
		PeakTimestamp: time.Date(2015, 3, 17, 22, 47, 0, 0, time.UTC),
		Category:      CategorySolarStorm,
	},
	{
		ID:        "halloween_storm_2015",
		Name:      "Halloween Storm 2015",
		DateStart: "2015-10-07",
		DateEnd:   "2015-10-08",
		Severity:  "G3 - Strong",
		MaxKp:     7.0,
		Description: "A high-speed solar wind stream triggered auroral displays across northern " +
			"regions just before Halloween.",
		Impacts: []string{
			"Aurora visible in northern Europe and Canada",
			"Minor impacts to satellite operations",
			"HF radio absorption at high latitudes",
		},
		ScientificContext: "This storm was caused by a coronal hole high-speed stream (CH HSS) rather " +
			"than a CME, demonstrating that not all geomagnetic storms come from solar eruptions.",
		PeakTimestamp: time.Date(2015, 10, 7, 12, 0, 0, 0, time.UTC),
		Category:      CategorySolarWind,
	},
	{
		ID:        "december_storm_2015",
		Name:      "December 2015 Storm",
		DateStart: "2015-12-19",
		DateEnd:   "2015-12-20",
		Severity:  "G3 - Strong",
		MaxKp:     7.0,
		Description: "End-of-year geomagnetic storm that provided spectacular aurora displays as a " +
			"holiday gift to northern observers.",
		Impacts: []string{
			"Bright aurora displays across Scandinavia",
			"Minor satellite anomalies reported",
			"Increased radiation exposure on polar flights",
		},
		ScientificContext: "This storm resulted from a moderate CME impact combined with favorable " +
			"IMF orientation (sustained southward Bz component).",
		PeakTimestamp: time.Date(2015, 12, 20, 0, 0, 0, 0, time.UTC),
		Category:      CategorySolarStorm,
	},
	{
		ID:        "september_storm_2017",
		Name:      "September 2017 Storm Series",
		DateStart: "2017-09-06",
		DateEnd:   "2017-09-08",
		Severity:  "G4 - Severe",
		MaxKp:     8.0,
		Description: "One of the most significant solar events of the decade. Multiple X-class solar " +
			"flares and CMEs created a multi-day storm period.",
		Impacts: []string{
			"Emergency responders switched to alternative communication systems",
			"Airlines rerouted polar flights",
			"Power grid operators placed systems on alert",
			"Aurora visible as far south as Arkansas and Southern California",
		},
		ScientificContext: "Active region AR2673 produced an X9.3 flare (strongest of Solar Cycle 24) " +
			"on September 6, followed by Earth-directed CMEs. This was part of a two-week period of " +
			"intense solar activity.",
		NOAAReportURL: "https://www.swpc.noaa.gov/news/g4-severe-geomagnetic-storm-watch-08-september-2017",
		PeakTimestamp: time.Date(2017, 9, 8, 1, 0, 0, 0, time.UTC),
		Category:      CategorySolarStorm,
	},
	{
		ID:          "august_storm_2018",
		Name:        "August 2018 Storm",
		DateStart:   "2018-08-25",
		DateEnd:     "2018-08-26",
		Severity:    "G3 - Strong",
		MaxKp:       7.0,
		Description: "Late summer geomagnetic storm during the declining phase of Solar Cycle 24.",
		Impacts: []string{
			"Aurora visible in northern tier US states",
			"Minor power grid fluctuations",
			"Temporary GPS accuracy degradation",
		},
		ScientificContext: "Despite occurring during solar minimum approach, this storm demonstrated " +
			"that significant events can occur even during quiet solar periods.",
		PeakTimestamp: time.Date(2018, 8, 26, 6, 0, 0, 0, time.UTC),
		Category:      CategorySolarWind,
	},
	{
		ID:        "mothers_day_storm_2024",
		Name:      "Mother's Day Storm 2024",
		DateStart: "2024-05-10",
		DateEnd:   "2024-05-13",
		Severity:  "G5 - Extreme",
		MaxKp:     9.0,
		Description: "The first G5 (Extreme) geomagnetic storm since 2003. Active region AR3664 " +
			"produced numerous X-class flares and multiple Earth-directed CMEs.",
		Impacts: []string{
			"Aurora visible as far south as Mexico and North Africa",
			"Widespread GPS disruptions affecting precision agriculture",
			"Starlink satellites reported degraded service",
			"Multiple power grid voltage control issues",
			"John Deere tractors experienced GPS outages during planting season",
		},
		ScientificContext: "This storm marked the strongest geomagnetic activity in over 20 years. " +
			"Multiple CMEs arrived in rapid succession, creating a rare G5 event during Solar Cycle " +
			"25's rise to maximum.",
		NOAAReportURL: "https://www.swpc.noaa.gov/news/g5-extreme-geomagnetic-storm-observed-10-may-2024",
		PeakTimestamp: time.Date(2024, 5, 11, 2, 0, 0, 0, time.UTC),
		Category:      CategorySolarStorm,
		Notable:       true,
	},
}

var severityOrder = map[string]int{"G1": 1, "G2": 2, "G3": 3, "G4": 4, "G5": 5}

// ByID returns the storm with the given ID, or false if absent.
func ByID(id string) (MajorStorm, bool) {
	for _, s := range MajorStorms {
		if s.ID == id {
			return s, true
		}
	}
	return MajorStorm{}, false
}

// BySeverity returns storms at or above the given minimum G-scale level.
// The argument may be a bare scale ("G3") or a full severity label
// ("G3 - Strong"); unrecognized values default to G3.
func BySeverity(minSeverity string) []MajorStorm {
	minLevel, ok := severityOrder[gPrefix(minSeverity)]
	if !ok {
		minLevel = 3
	}

	var out []MajorStorm
	for _, s := range MajorStorms {
		if severityOrder[gPrefix(s.Severity)] >= minLevel {
			out = append(out, s)
		}
	}
	return out
}

// ByCategory returns storms with the given driver category.
func ByCategory(category string) []MajorStorm {
	var out []MajorStorm
	for _, s := range MajorStorms {
		if s.Category == category {
			out = append(out, s)
		}
	}
	return out
}

// Notable returns storms marked as notable.
func Notable() []MajorStorm {
	var out []MajorStorm
	for _, s := range MajorStorms {
		if s.Notable {
			out = append(out, s)
		}
	}
	return out
}

func gPrefix(severity string) string {
	if len(severity) < 2 {
		return severity
	}
	return severity[:2]
}
