package signal

import "github.com/mbastide/calendis/internal/truth"

// #region impact

// Impact is the tri-state judgement of one dimension for a focus date.
type Impact string

const (
	ImpactNeutral  Impact = "neutral"
	ImpactRisk     Impact = "risk"
	ImpactBlocking Impact = "blocking"
)

// #endregion impact

// #region driver

// DriverKind names one concrete driver behind a signal's impact.
type DriverKind string

const (
	DriverAlert               DriverKind = "weather_alert"
	DriverRain                DriverKind = "rain"
	DriverWind                DriverKind = "wind"
	DriverLocalCompetition    DriverKind = "local_competition"
	DriverRegionalCompetition DriverKind = "regional_competition"
	DriverWeekend             DriverKind = "weekend"
	DriverPublicHoliday       DriverKind = "public_holiday"
	DriverSchoolHoliday       DriverKind = "school_holiday"
	DriverCommercialEvent     DriverKind = "commercial_event"
)

// #endregion driver

// #region decision-signal

// DecisionSignal is one dimension's derived judgement. Applicable is false
// when no relevant raw field exists on the row: a tri-state, not a
// default-zero.
type DecisionSignal struct {
	Applicable     bool           `json:"applicable"`
	PrimaryDrivers []DriverKind   `json:"primary_drivers,omitempty"`
	Impact         Impact         `json:"impact,omitempty"`
	Facts          map[string]any `json:"facts,omitempty"`
	Explanation    string         `json:"explanation,omitempty"`
}

// #endregion decision-signal

// #region exposure

// Exposure is the venue's inferred weather exposure.
type Exposure string

const (
	ExposureIndoor  Exposure = "indoor"
	ExposureOutdoor Exposure = "outdoor"
	ExposureUnknown Exposure = "unknown"
)

// ExposureInference carries the inferred exposure and the evidence it rests on.
// Basis is empty only when Exposure is unknown.
type ExposureInference struct {
	Exposure Exposure
	Basis    string
}

// #endregion exposure

// #region defaults

// DefaultDimensions is the fixed dimension set for planning intents when the
// query names none.
func DefaultDimensions() []truth.Dimension {
	return []truth.Dimension{truth.DimensionWeather, truth.DimensionCompetition, truth.DimensionCalendar}
}

// #endregion defaults
