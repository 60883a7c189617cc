// Package ranking orders candidate truth rows under the active policy.
// Ordering is fully deterministic: same rows, same policy, same output bytes.
package ranking

import (
	"fmt"
	"sort"

	"github.com/mbastide/calendis/internal/policy"
	"github.com/mbastide/calendis/internal/truth"
)

// #region types

// Direction selects shortlist (best-first) or worstlist (worst-first) mode.
type Direction string

const (
	Shortlist Direction = "shortlist"
	Worstlist Direction = "worstlist"
)

// RankedRow pairs a candidate with the policy-scoped reasons for its position.
type RankedRow struct {
	Row     truth.TruthRow
	Reasons []string
}

// Result is the ranked output plus the relaxation flag: RelaxedConstraints is
// non-empty when the hard pre-filter starved the pool below k and ranking fell
// back to the unfiltered candidates.
type Result struct {
	Rows               []RankedRow
	RelaxedConstraints []string
}

// MaxK caps shortlist/worstlist size regardless of the requested k.
const MaxK = 7

// DefaultK is used when the query names no count.
const DefaultK = 3

// #endregion types

// #region rank

// Rank orders candidates and returns at most min(k, 7) rows. Shortlist mode
// hard-excludes regime C and alert >= 3 rows; worstlist keeps them, since
// those are exactly the days it exists to surface.
func Rank(candidates []truth.TruthRow, p policy.Policy, k int, dir Direction) Result {
	if k <= 0 {
		k = DefaultK
	}
	if k > MaxK {
		k = MaxK
	}

	pool := candidates
	var relaxed []string
	if dir == Shortlist {
		// Constraints and the blocked-row exclusion only shape recommendations;
		// a worstlist exists to surface exactly those days.
		if filtered := applyConstraints(candidates, p); len(filtered) < len(candidates) {
			if len(filtered) >= k {
				pool = filtered
			} else {
				// Fallback to the unfiltered pool rather than starving the
				// result; the caller surfaces the relaxation as a caveat.
				relaxed = p.ConstraintList()
			}
		}
		pool = excludeBlocked(pool)
	}

	ordered := make([]truth.TruthRow, len(pool))
	copy(ordered, pool)
	sort.SliceStable(ordered, func(i, j int) bool {
		c := compareBadness(ordered[i], ordered[j], p.PriorityDimensions)
		if c == 0 {
			// final tie-break by date, ascending in both modes
			return ordered[i].Date.Before(ordered[j].Date)
		}
		if dir == Worstlist {
			return c > 0
		}
		return c < 0
	})

	if len(ordered) > k {
		ordered = ordered[:k]
	}

	out := Result{RelaxedConstraints: relaxed}
	for _, row := range ordered {
		out.Rows = append(out.Rows, RankedRow{Row: row, Reasons: reasonsFor(row, p)})
	}
	return out
}

// #endregion rank

// #region less

// Less reports whether a is less bad than b under the policy comparator,
// with the same date tie-break as Rank. Used for pairwise comparisons.
func Less(a, b truth.TruthRow, p policy.Policy) bool {
	if c := compareBadness(a, b, p.PriorityDimensions); c != 0 {
		return c < 0
	}
	return a.Date.Before(b.Date)
}

// #endregion less

// #region constraints

// applyConstraints drops rows failing any active auto-constraint.
func applyConstraints(rows []truth.TruthRow, p policy.Policy) []truth.TruthRow {
	if len(p.AutoConstraints) == 0 {
		return rows
	}
	var out []truth.TruthRow
	for _, r := range rows {
		if violatesConstraint(r, p) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func violatesConstraint(r truth.TruthRow, p policy.Policy) bool {
	if p.AutoConstraints[policy.ConstraintExcludePublicHolidays] &&
		r.PublicHoliday != nil && *r.PublicHoliday {
		return true
	}
	if p.AutoConstraints[policy.ConstraintWeekendOnly] &&
		(r.Weekend == nil || !*r.Weekend) {
		return true
	}
	if p.AutoConstraints[policy.ConstraintExcludeAlertDays] &&
		r.AlertLevelOr(0) >= 1 {
		return true
	}
	if p.AutoConstraints[policy.ConstraintExcludeCommercialEvents] &&
		r.CommercialEvent != nil && *r.CommercialEvent {
		return true
	}
	return false
}

// excludeBlocked removes regime C and alert >= 3 rows (shortlist mode only).
func excludeBlocked(rows []truth.TruthRow) []truth.TruthRow {
	var out []truth.TruthRow
	for _, r := range rows {
		if r.Regime == truth.RegimeC || r.AlertLevelOr(0) >= 3 {
			continue
		}
		out = append(out, r)
	}
	return out
}

// #endregion constraints

// #region comparator

// compareBadness orders two rows lexicographically over the policy's priority
// dimensions, then raw score/regime, returning <0 when a is less bad than b.
// Missing numeric fields contribute zero badness; calendar flags use the
// false < unknown < true rank.
func compareBadness(a, b truth.TruthRow, dims []truth.Dimension) int {
	for _, d := range dims {
		if c := compareDimension(a, b, d); c != 0 {
			return c
		}
	}
	// Higher score is less bad.
	if c := compareFloat(b.ScoreOr(0), a.ScoreOr(0)); c != 0 {
		return c
	}
	if c := a.Regime.BadnessRank() - b.Regime.BadnessRank(); c != 0 {
		return c
	}
	return 0
}

func compareDimension(a, b truth.TruthRow, d truth.Dimension) int {
	switch d {
	case truth.DimensionWeather:
		if c := intOr(a.AlertLevel) - intOr(b.AlertLevel); c != 0 {
			return c
		}
		if c := compareFloat(floatOr(a.PrecipProb), floatOr(b.PrecipProb)); c != 0 {
			return c
		}
		return compareFloat(floatOr(a.WindSpeed), floatOr(b.WindSpeed))
	case truth.DimensionCompetition:
		if c := intOr(a.EventsWithin5Km) - intOr(b.EventsWithin5Km); c != 0 {
			return c
		}
		if c := intOr(a.EventsWithin10Km) - intOr(b.EventsWithin10Km); c != 0 {
			return c
		}
		return intOr(a.EventsWithin50Km) - intOr(b.EventsWithin50Km)
	case truth.DimensionCalendar:
		flags := [][2]*bool{
			{a.Weekend, b.Weekend},
			{a.PublicHoliday, b.PublicHoliday},
			{a.SchoolHoliday, b.SchoolHoliday},
			{a.CommercialEvent, b.CommercialEvent},
		}
		for _, f := range flags {
			if c := truth.BoolRank(f[0]) - truth.BoolRank(f[1]); c != 0 {
				return c
			}
		}
		return 0
	default:
		// tourism/mobility carry no comparable raw fields
		return 0
	}
}

// #endregion comparator

// #region reasons

// reasonsFor lists the non-neutral facts of a row, limited to the dimensions
// present in the active policy.
func reasonsFor(r truth.TruthRow, p policy.Policy) []string {
	var reasons []string
	for _, d := range p.PriorityDimensions {
		switch d {
		case truth.DimensionWeather:
			if a := r.AlertLevelOr(0); a >= 1 {
				reasons = append(reasons, fmt.Sprintf("vigilance météo niveau %d", a))
			} else if r.PrecipProb != nil && *r.PrecipProb > 0 {
				reasons = append(reasons, fmt.Sprintf("pluie possible (%.0f%%)", *r.PrecipProb))
			} else if r.AlertLevel != nil || r.PrecipProb != nil || r.WindSpeed != nil {
				reasons = append(reasons, "météo favorable")
			}
		case truth.DimensionCompetition:
			if n := intOr(r.EventsWithin5Km) + intOr(r.EventsWithin10Km); n > 0 {
				reasons = append(reasons, fmt.Sprintf("%d événement(s) concurrent(s) à proximité", n))
			} else if n := intOr(r.EventsWithin50Km); n > 0 {
				reasons = append(reasons, fmt.Sprintf("%d événement(s) dans la région", n))
			} else if r.EventsWithin5Km != nil || r.EventsWithin10Km != nil || r.EventsWithin50Km != nil {
				reasons = append(reasons, "pas de concurrence recensée")
			}
		case truth.DimensionCalendar:
			if r.PublicHoliday != nil && *r.PublicHoliday {
				reasons = append(reasons, "jour férié")
			} else if r.Weekend != nil && *r.Weekend {
				reasons = append(reasons, "week-end")
			}
		}
	}
	return reasons
}

// #endregion reasons

// #region helpers

func intOr(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func floatOr(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// #endregion helpers
