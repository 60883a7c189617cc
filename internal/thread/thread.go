// Package thread resolves follow-up questions against caller-supplied context.
// The server keeps nothing: the context is an opaque echo-back value, read
// once and regenerated once per turn.
package thread

import (
	"strings"
	"time"

	"github.com/mbastide/calendis/internal/interpret"
)

// #region types

// TopDate is one shortlist entry from the previous turn.
type TopDate struct {
	Date   string  `json:"date"`
	Regime string  `json:"regime,omitempty"`
	Score  float64 `json:"score,omitempty"`
}

// LastTurn snapshots the previous turn's resolution.
type LastTurn struct {
	Horizon      string    `json:"horizon"`
	Intent       string    `json:"intent"`
	UsedDates    []string  `json:"used_dates,omitempty"`
	TopDates     []TopDate `json:"top_dates,omitempty"`
	SelectedDate string    `json:"selected_date,omitempty"`
}

// Context is the caller-persisted conversation state.
type Context struct {
	Turn int      `json:"turn"`
	Last LastTurn `json:"last"`
}

// Override is a resolved anchor for a date-less follow-up.
type Override struct {
	Dates  []time.Time
	Intent interpret.Intent // empty = keep the interpreter's intent
}

// #endregion types

// #region resolve

// phraseResolver maps one closed referential phrase to its resolution.
// Anything outside this set stays unresolved, no guessing.
type phraseResolver struct {
	phrases []string
	resolve func(tc *Context) *Override
}

var resolvers = []phraseResolver{
	{
		phrases: []string{"le premier", "la première", "la premiere"},
		resolve: func(tc *Context) *Override { return pickTop(tc, 0) },
	},
	{
		phrases: []string{"le deuxième", "le deuxieme", "le second", "la seconde"},
		resolve: func(tc *Context) *Override { return pickTop(tc, 1) },
	},
	{
		phrases: []string{"le troisième", "le troisieme"},
		resolve: func(tc *Context) *Override { return pickTop(tc, 2) },
	},
	{
		phrases: []string{"les deux meilleurs", "les deux meilleures", "les deux premiers"},
		resolve: func(tc *Context) *Override {
			first := pickTop(tc, 0)
			second := pickTop(tc, 1)
			if first == nil || second == nil {
				return nil
			}
			return &Override{
				Dates:  append(first.Dates, second.Dates...),
				Intent: interpret.IntentCompareDates,
			}
		},
	},
	{
		phrases: []string{"le lendemain", "le jour d'après", "le jour d'apres"},
		resolve: func(tc *Context) *Override { return shiftSelected(tc, 1) },
	},
	{
		phrases: []string{"la veille", "le jour d'avant"},
		resolve: func(tc *Context) *Override { return shiftSelected(tc, -1) },
	},
	{
		phrases: []string{"ce jour-là", "ce jour la", "celui-là", "celui la"},
		resolve: func(tc *Context) *Override { return selectedOnly(tc) },
	},
}

// Resolve matches the query against the closed referential phrase set. Only
// called when the interpreter found zero parseable dates. Returns nil when
// nothing in the context answers the phrase.
func Resolve(text string, tc *Context) *Override {
	if tc == nil {
		return nil
	}
	lower := strings.ToLower(text)
	for _, r := range resolvers {
		for _, p := range r.phrases {
			if strings.Contains(lower, p) {
				return r.resolve(tc)
			}
		}
	}
	return nil
}

// #endregion resolve

// #region resolution-helpers

func pickTop(tc *Context, idx int) *Override {
	if idx >= len(tc.Last.TopDates) {
		return nil
	}
	d, err := time.Parse("2006-01-02", tc.Last.TopDates[idx].Date)
	if err != nil {
		return nil
	}
	return &Override{Dates: []time.Time{d}, Intent: interpret.IntentDayWhy}
}

func shiftSelected(tc *Context, days int) *Override {
	base := tc.Last.SelectedDate
	if base == "" && len(tc.Last.TopDates) > 0 {
		base = tc.Last.TopDates[0].Date
	}
	if base == "" {
		return nil
	}
	d, err := time.Parse("2006-01-02", base)
	if err != nil {
		return nil
	}
	shifted := d.AddDate(0, 0, days)
	return &Override{Dates: []time.Time{shifted}, Intent: interpret.IntentDayWhy}
}

func selectedOnly(tc *Context) *Override {
	if tc.Last.SelectedDate == "" {
		return nil
	}
	d, err := time.Parse("2006-01-02", tc.Last.SelectedDate)
	if err != nil {
		return nil
	}
	return &Override{Dates: []time.Time{d}, Intent: interpret.IntentDayWhy}
}

// #endregion resolution-helpers

// #region advance

// Advance builds the next-turn context from this turn's resolution. usedDates
// is the answer's own date list, which covers window answers where the
// question named no date at all.
func Advance(prev *Context, res interpret.Result, usedDates []string, topDates []TopDate) Context {
	next := Context{Turn: 1}
	if prev != nil {
		next.Turn = prev.Turn + 1
	}
	next.Last = LastTurn{
		Horizon:   string(res.Horizon),
		Intent:    string(res.Intent),
		UsedDates: usedDates,
		TopDates:  topDates,
	}
	if res.SelectedDate != nil {
		next.Last.SelectedDate = res.SelectedDate.Format("2006-01-02")
	}
	return next
}

// #endregion advance
