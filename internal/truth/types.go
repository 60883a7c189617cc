package truth

import "time"

// #region regime

// Regime is the precomputed A/B/C opportunity classification of a truth row.
type Regime string

const (
	RegimeA Regime = "A"
	RegimeB Regime = "B"
	RegimeC Regime = "C"
)

// badnessRank orders regimes from best to worst for ranking tie-breaks.
var badnessRank = map[Regime]int{RegimeA: 0, RegimeB: 1, RegimeC: 2}

// BadnessRank returns the comparator rank of a regime (A=0, B=1, C=2).
// Unknown regimes rank between B and C.
func (r Regime) BadnessRank() int {
	if rank, ok := badnessRank[r]; ok {
		return rank
	}
	return 1
}

// #endregion regime

// #region dimension

// Dimension names one judgement axis over a truth row.
type Dimension string

const (
	DimensionWeather     Dimension = "weather"
	DimensionCompetition Dimension = "competition"
	DimensionCalendar    Dimension = "calendar"
	DimensionTourism     Dimension = "tourism"
	DimensionMobility    Dimension = "mobility"
)

// #endregion dimension

// #region truth-row

// TruthRow is one (location, date) record from the analytical store.
// Pointer fields distinguish "absent" from "present and zero"; the signal
// deriver depends on that distinction.
type TruthRow struct {
	Location string
	Date     time.Time

	Score  *float64
	Regime Regime

	// Weather
	AlertLevel *int
	PrecipProb *float64 // probability 0-100
	WindSpeed  *float64 // km/h

	// Competition event counts by radius
	EventsWithin5Km  *int
	EventsWithin10Km *int
	EventsWithin50Km *int

	// Calendar flags
	Weekend         *bool
	PublicHoliday   *bool
	SchoolHoliday   *bool
	CommercialEvent *bool
}

// DateKey returns the row date as YYYY-MM-DD.
func (r TruthRow) DateKey() string {
	return r.Date.Format("2006-01-02")
}

// ScoreOr returns the row score or def when absent.
func (r TruthRow) ScoreOr(def float64) float64 {
	if r.Score == nil {
		return def
	}
	return *r.Score
}

// AlertLevelOr returns the alert level or def when absent.
func (r TruthRow) AlertLevelOr(def int) int {
	if r.AlertLevel == nil {
		return def
	}
	return *r.AlertLevel
}

// #endregion truth-row

// #region business-profile

// BusinessProfile describes the venue the questions are about.
// Free-text fields feed exposure inference; Attributes feeds policy lookup.
type BusinessProfile struct {
	Location    string
	Name        string
	Category    string
	Segment     string
	Description string
}

// Attributes returns the keyed attributes used for policy rule lookup.
func (p BusinessProfile) Attributes() map[string]string {
	return map[string]string{
		"category": p.Category,
		"segment":  p.Segment,
	}
}

// #endregion business-profile

// #region policy-rule

// PolicyRule is one row of the keyed policy rule table.
type PolicyRule struct {
	RuleKey            string
	RuleValue          string
	PriorityDimensions []Dimension
	AutoConstraints    []string
}

// #endregion policy-rule

// #region bool-rank

// BoolRank maps a nullable calendar flag to its comparator rank:
// false(0) < unknown(1) < true(2).
func BoolRank(b *bool) int {
	switch {
	case b == nil:
		return 1
	case *b:
		return 2
	default:
		return 0
	}
}

// #endregion bool-rank
