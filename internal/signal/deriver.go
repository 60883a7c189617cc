package signal

import (
	"fmt"
	"strings"

	"github.com/mbastide/calendis/internal/truth"
)

// #region exposure-inference

var outdoorTokens = []string{
	"plein air", "extérieur", "exterieur", "terrasse", "jardin", "parc",
	"outdoor", "plage", "guinguette", "marché", "marche couvert",
}

var indoorTokens = []string{
	"intérieur", "interieur", "couvert", "salle", "indoor", "musée", "musee",
	"cinéma", "cinema", "théâtre", "theatre", "galerie",
}

// InferExposure reads the profile's free-text fields once and returns the
// venue exposure with the token that justified it. No token, no assertion.
func InferExposure(profile truth.BusinessProfile) ExposureInference {
	haystack := strings.ToLower(profile.Category + " " + profile.Segment + " " + profile.Description)
	// "marche couvert" style strings can hit both lists; indoor tokens win
	// because a covered venue is sheltered regardless of the rest.
	for _, tok := range indoorTokens {
		if strings.Contains(haystack, tok) {
			return ExposureInference{Exposure: ExposureIndoor, Basis: tok}
		}
	}
	for _, tok := range outdoorTokens {
		if strings.Contains(haystack, tok) {
			return ExposureInference{Exposure: ExposureOutdoor, Basis: tok}
		}
	}
	return ExposureInference{Exposure: ExposureUnknown}
}

// #endregion exposure-inference

// #region derive

// Derive computes one DecisionSignal per requested dimension from a single
// truth row. Explanations only state facts the row actually carries.
func Derive(row truth.TruthRow, profile truth.BusinessProfile, dims []truth.Dimension) map[truth.Dimension]DecisionSignal {
	if len(dims) == 0 {
		dims = DefaultDimensions()
	}
	exposure := InferExposure(profile)

	out := make(map[truth.Dimension]DecisionSignal, len(dims))
	for _, d := range dims {
		switch d {
		case truth.DimensionWeather:
			out[d] = weatherSignal(row, exposure)
		case truth.DimensionCompetition:
			out[d] = competitionSignal(row)
		case truth.DimensionCalendar:
			out[d] = calendarSignal(row)
		default:
			// tourism / mobility: no raw fields in the store schema
			out[d] = DecisionSignal{Applicable: false}
		}
	}
	return out
}

// #endregion derive

// #region weather

// weatherSignal applies the v1 weather rule: alert >= 3 blocks outright,
// exposed venues take risk from any rain or wind, sheltered ones only from an
// active alert.
func weatherSignal(row truth.TruthRow, exposure ExposureInference) DecisionSignal {
	if row.AlertLevel == nil && row.PrecipProb == nil && row.WindSpeed == nil {
		return DecisionSignal{Applicable: false}
	}

	sig := DecisionSignal{
		Applicable: true,
		Impact:     ImpactNeutral,
		Facts:      map[string]any{},
	}
	var parts []string

	if row.AlertLevel != nil {
		sig.Facts["alert_level"] = *row.AlertLevel
		parts = append(parts, fmt.Sprintf("vigilance niveau %d", *row.AlertLevel))
	} else {
		sig.Facts["alert_level"] = nil
	}
	if row.PrecipProb != nil {
		sig.Facts["precip_prob"] = *row.PrecipProb
		parts = append(parts, fmt.Sprintf("probabilité de pluie %.0f%%", *row.PrecipProb))
	} else {
		sig.Facts["precip_prob"] = nil
	}
	if row.WindSpeed != nil {
		sig.Facts["wind_speed"] = *row.WindSpeed
		parts = append(parts, fmt.Sprintf("vent %.0f km/h", *row.WindSpeed))
	} else {
		sig.Facts["wind_speed"] = nil
	}
	if exposure.Basis != "" {
		sig.Facts["exposure"] = string(exposure.Exposure)
		sig.Facts["exposure_basis"] = exposure.Basis
	}

	alert := row.AlertLevelOr(0)
	rain := row.PrecipProb != nil && *row.PrecipProb > 0
	wind := row.WindSpeed != nil && *row.WindSpeed > 0

	switch {
	case alert >= 3:
		sig.Impact = ImpactBlocking
		sig.PrimaryDrivers = append(sig.PrimaryDrivers, DriverAlert)
	case exposure.Exposure != ExposureIndoor && (rain || wind):
		sig.Impact = ImpactRisk
		if rain {
			sig.PrimaryDrivers = append(sig.PrimaryDrivers, DriverRain)
		}
		if wind {
			sig.PrimaryDrivers = append(sig.PrimaryDrivers, DriverWind)
		}
	case exposure.Exposure == ExposureIndoor && alert >= 1:
		sig.Impact = ImpactRisk
		sig.PrimaryDrivers = append(sig.PrimaryDrivers, DriverAlert)
	}

	sig.Explanation = strings.Join(parts, ", ")
	return sig
}

// #endregion weather

// #region competition

// competitionSignal scopes competition to local (<=5/10 km) before regional
// (<=50 km). Any present, nonzero count is a risk.
func competitionSignal(row truth.TruthRow) DecisionSignal {
	if row.EventsWithin5Km == nil && row.EventsWithin10Km == nil && row.EventsWithin50Km == nil {
		return DecisionSignal{Applicable: false}
	}

	sig := DecisionSignal{
		Applicable: true,
		Impact:     ImpactNeutral,
		Facts:      map[string]any{},
	}
	var parts []string

	counts := []struct {
		name  string
		label string
		v     *int
	}{
		{"events_within_5km", "à 5 km", row.EventsWithin5Km},
		{"events_within_10km", "à 10 km", row.EventsWithin10Km},
		{"events_within_50km", "à 50 km", row.EventsWithin50Km},
	}
	for _, c := range counts {
		if c.v != nil {
			sig.Facts[c.name] = *c.v
			if *c.v > 0 {
				parts = append(parts, fmt.Sprintf("%d événement(s) %s", *c.v, c.label))
			}
		} else {
			sig.Facts[c.name] = nil
		}
	}

	local := (row.EventsWithin5Km != nil && *row.EventsWithin5Km > 0) ||
		(row.EventsWithin10Km != nil && *row.EventsWithin10Km > 0)
	regional := row.EventsWithin50Km != nil && *row.EventsWithin50Km > 0

	switch {
	case local:
		sig.Facts["scope"] = "local"
		sig.Impact = ImpactRisk
		sig.PrimaryDrivers = append(sig.PrimaryDrivers, DriverLocalCompetition)
	case regional:
		sig.Facts["scope"] = "regional"
		sig.Impact = ImpactRisk
		sig.PrimaryDrivers = append(sig.PrimaryDrivers, DriverRegionalCompetition)
	default:
		sig.Facts["scope"] = "none"
	}

	if len(parts) == 0 {
		sig.Explanation = "aucun événement concurrent recensé"
	} else {
		sig.Explanation = strings.Join(parts, ", ")
	}
	return sig
}

// #endregion competition

// #region calendar

// calendarSignal flags risk on any explicitly true calendar flag, neutral
// when all present flags are false, inapplicable when everything is unknown.
func calendarSignal(row truth.TruthRow) DecisionSignal {
	flags := []struct {
		name   string
		label  string
		driver DriverKind
		v      *bool
	}{
		{"weekend", "week-end", DriverWeekend, row.Weekend},
		{"public_holiday", "jour férié", DriverPublicHoliday, row.PublicHoliday},
		{"school_holiday", "vacances scolaires", DriverSchoolHoliday, row.SchoolHoliday},
		{"commercial_event", "événement commercial", DriverCommercialEvent, row.CommercialEvent},
	}

	anyPresent := false
	for _, f := range flags {
		if f.v != nil {
			anyPresent = true
		}
	}
	if !anyPresent {
		return DecisionSignal{Applicable: false}
	}

	sig := DecisionSignal{
		Applicable: true,
		Impact:     ImpactNeutral,
		Facts:      map[string]any{},
	}
	var active []string
	for _, f := range flags {
		if f.v == nil {
			sig.Facts[f.name] = nil
			continue
		}
		sig.Facts[f.name] = *f.v
		if *f.v {
			sig.Impact = ImpactRisk
			sig.PrimaryDrivers = append(sig.PrimaryDrivers, f.driver)
			active = append(active, f.label)
		}
	}

	if len(active) == 0 {
		sig.Explanation = "journée ordinaire au calendrier"
	} else {
		sig.Explanation = strings.Join(active, ", ")
	}
	return sig
}

// #endregion calendar
