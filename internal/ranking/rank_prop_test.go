package ranking

import (
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/mbastide/calendis/internal/policy"
	"github.com/mbastide/calendis/internal/truth"
)

func genRows(t *rapid.T) []truth.TruthRow {
	n := rapid.IntRange(0, 40).Draw(t, "n")
	rows := make([]truth.TruthRow, 0, n)
	for i := 0; i < n; i++ {
		row := truth.TruthRow{
			Location: "loc-1",
			Date:     time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i),
		}
		if rapid.Bool().Draw(t, "has_score") {
			s := rapid.Float64Range(0, 100).Draw(t, "score")
			row.Score = &s
		}
		switch rapid.IntRange(0, 3).Draw(t, "regime") {
		case 0:
			row.Regime = truth.RegimeA
		case 1:
			row.Regime = truth.RegimeB
		case 2:
			row.Regime = truth.RegimeC
		}
		if rapid.Bool().Draw(t, "has_alert") {
			a := rapid.IntRange(0, 4).Draw(t, "alert")
			row.AlertLevel = &a
		}
		if rapid.Bool().Draw(t, "has_precip") {
			p := rapid.Float64Range(0, 100).Draw(t, "precip")
			row.PrecipProb = &p
		}
		if rapid.Bool().Draw(t, "has_weekend") {
			w := rapid.Bool().Draw(t, "weekend")
			row.Weekend = &w
		}
		rows = append(rows, row)
	}
	return rows
}

func TestRankLengthBound(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		rows := genRows(t)
		k := rapid.IntRange(-2, 12).Draw(t, "k")
		res := Rank(rows, policy.Default(), k, Shortlist)
		bound := k
		if bound <= 0 {
			bound = DefaultK
		}
		if bound > MaxK {
			bound = MaxK
		}
		if len(res.Rows) > bound {
			t.Fatalf("rows: got %d, bound %d", len(res.Rows), bound)
		}
	})
}

func TestRankShortlistNeverBlocked(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		rows := genRows(t)
		k := rapid.IntRange(1, 7).Draw(t, "k")
		res := Rank(rows, policy.Default(), k, Shortlist)
		for _, rr := range res.Rows {
			if rr.Row.Regime == truth.RegimeC {
				t.Fatalf("regime C row %s in shortlist", rr.Row.DateKey())
			}
			if rr.Row.AlertLevelOr(0) >= 3 {
				t.Fatalf("alert>=3 row %s in shortlist", rr.Row.DateKey())
			}
		}
	})
}

func TestRankDeterministic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		rows := genRows(t)
		k := rapid.IntRange(1, 7).Draw(t, "k")
		a := Rank(rows, policy.Default(), k, Shortlist)
		b := Rank(rows, policy.Default(), k, Shortlist)
		if len(a.Rows) != len(b.Rows) {
			t.Fatalf("lengths differ: %d vs %d", len(a.Rows), len(b.Rows))
		}
		for i := range a.Rows {
			if a.Rows[i].Row.DateKey() != b.Rows[i].Row.DateKey() {
				t.Fatalf("position %d differs: %s vs %s", i, a.Rows[i].Row.DateKey(), b.Rows[i].Row.DateKey())
			}
		}
	})
}
