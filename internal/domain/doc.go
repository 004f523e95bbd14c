// Package domain models geomagnetic activity measurements and the storm
// events derived from them.
//
// # Data Source
//
// Measurements originate from the NASA OMNI hourly dataset and the NOAA SWPC
// real-time feeds. The upstream collector publishes one JSON record per
// sampling instant to the Kafka source topic, carrying the planetary Kp
// index, ionospheric Total Electron Content (TEC), solar wind speed, and the
// north-south component of the interplanetary magnetic field (IMF Bz).
//
// # Conventions
//
// Kp index:
//
//	0.0–9.0 planetary geomagnetic activity index. NASA OMNI encodes missing
//	hours with fill values ≥ 99; series validation rejects them so the
//	gap-merging logic never treats a fill value as storm activity.
//
// TEC:
//
//	Total Electron Content in TEC units (1 TECU = 10^16 electrons/m²),
//	always ≥ 0. The OMNI-style fill value is 999.
//
// Storm severity (NOAA G-scale):
//
//	Derived from the peak Kp reached during an event:
//
//	  Kp 5 → G1 Minor | Kp 6 → G2 Moderate | Kp 7 → G3 Strong
//	  Kp 8 → G4 Severe | Kp ≥ 9 → G5 Extreme
//
//	Sub-storm activity (Kp < 5) maps to G0 "No Storm". See [ClassifySeverity].
//
// # Event Extraction
//
// [ExtractEvents] scans a time-ordered measurement series and segments it
// into discrete storm events: an event opens when Kp crosses the configured
// threshold and closes when activity stays below the threshold for at least
// the configured gap. Shorter sub-threshold dips are absorbed into the same
// event, because real storms rarely have clean single-peaked profiles. The
// 2017-09 storm series, for example, dipped below G1 twice between its two
// Kp 8 peaks.
//
// # ID Generation
//
// Event IDs are deterministic: "storm_" plus the start time in
// YYYYMMDD_HHMM form. Re-running extraction over the same window therefore
// reproduces the same IDs, which keeps downstream catalogs idempotent under
// replay.
package domain
