package narrate

import (
	"github.com/mbastide/calendis/internal/truth"
)

// #region allow-list

// BuildPayload projects rows onto the fixed allow-listed field set. Nothing
// outside these names is ever transmitted to the generative service.
func BuildPayload(in Input) map[string]any {
	payload := map[string]any{
		"mode":    string(in.Mode),
		"submode": string(in.Submode),
	}
	if in.Focus != nil {
		payload["focus"] = rowFields(*in.Focus)
	}
	if len(in.Window) > 0 {
		rows := make([]map[string]any, 0, len(in.Window))
		for _, r := range in.Window {
			rows = append(rows, rowFields(r))
		}
		payload["rows"] = rows
	}
	if len(in.Signals) > 0 {
		signals := map[string]any{}
		for dim, sig := range in.Signals {
			if !sig.Applicable {
				continue
			}
			signals[string(dim)] = map[string]any{
				"impact":      string(sig.Impact),
				"explanation": sig.Explanation,
			}
		}
		payload["signals"] = signals
	}
	return payload
}

// rowFields is the per-row allow-list: the auditable, closed set of field
// names a generative prompt may see.
func rowFields(r truth.TruthRow) map[string]any {
	m := map[string]any{
		"date": r.DateKey(),
	}
	if r.Score != nil {
		m["score"] = *r.Score
	}
	if r.Regime != "" {
		m["regime"] = string(r.Regime)
	}
	if r.AlertLevel != nil {
		m["alert_level"] = *r.AlertLevel
	}
	if r.PrecipProb != nil {
		m["precip_prob"] = *r.PrecipProb
	}
	if r.WindSpeed != nil {
		m["wind_speed"] = *r.WindSpeed
	}
	if r.EventsWithin5Km != nil {
		m["events_within_5km"] = *r.EventsWithin5Km
	}
	if r.EventsWithin10Km != nil {
		m["events_within_10km"] = *r.EventsWithin10Km
	}
	if r.EventsWithin50Km != nil {
		m["events_within_50km"] = *r.EventsWithin50Km
	}
	if r.Weekend != nil {
		m["weekend"] = *r.Weekend
	}
	if r.PublicHoliday != nil {
		m["public_holiday"] = *r.PublicHoliday
	}
	if r.SchoolHoliday != nil {
		m["school_holiday"] = *r.SchoolHoliday
	}
	if r.CommercialEvent != nil {
		m["commercial_event"] = *r.CommercialEvent
	}
	return m
}

// #endregion allow-list
