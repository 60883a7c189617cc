// Package policy resolves the active ranking policy from the keyed rule table
// and the venue's profile attributes.
package policy

import (
	"github.com/mbastide/calendis/internal/truth"
)

// #region constraint-tokens

// Auto-constraint tokens understood by the ranking engine.
const (
	ConstraintExcludePublicHolidays   = "exclude_public_holidays"
	ConstraintWeekendOnly             = "weekend_only"
	ConstraintExcludeAlertDays        = "exclude_alert_days"
	ConstraintExcludeCommercialEvents = "exclude_commercial_events"
)

// #endregion constraint-tokens

// #region policy

// Policy drives the ranking comparator and its hard pre-filters.
type Policy struct {
	PriorityDimensions []truth.Dimension
	AutoConstraints    map[string]bool
}

// Default returns the baseline policy when no rule matches the profile.
func Default() Policy {
	return Policy{
		PriorityDimensions: []truth.Dimension{
			truth.DimensionWeather,
			truth.DimensionCompetition,
			truth.DimensionCalendar,
		},
		AutoConstraints: map[string]bool{},
	}
}

// ConstraintList returns the active constraint tokens in a fixed order.
func (p Policy) ConstraintList() []string {
	ordered := []string{
		ConstraintExcludePublicHolidays,
		ConstraintWeekendOnly,
		ConstraintExcludeAlertDays,
		ConstraintExcludeCommercialEvents,
	}
	var out []string
	for _, c := range ordered {
		if p.AutoConstraints[c] {
			out = append(out, c)
		}
	}
	return out
}

// #endregion policy

// #region resolve

// ruleKeyOrder fixes the match order across rule keys so resolution stays
// deterministic when several rules could apply. First match wins.
var ruleKeyOrder = []string{"category", "segment"}

// Resolve matches (rule_key, rule_value) pairs against the profile attributes
// and returns the first matching rule as a Policy, or the default.
func Resolve(rules []truth.PolicyRule, profile truth.BusinessProfile) Policy {
	attrs := profile.Attributes()
	for _, key := range ruleKeyOrder {
		val, ok := attrs[key]
		if !ok || val == "" {
			continue
		}
		for _, r := range rules {
			if r.RuleKey != key || r.RuleValue != val {
				continue
			}
			p := Policy{AutoConstraints: map[string]bool{}}
			p.PriorityDimensions = append(p.PriorityDimensions, r.PriorityDimensions...)
			if len(p.PriorityDimensions) == 0 {
				p.PriorityDimensions = Default().PriorityDimensions
			}
			for _, c := range r.AutoConstraints {
				p.AutoConstraints[c] = true
			}
			return p
		}
	}
	return Default()
}

// #endregion resolve
