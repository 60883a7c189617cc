package engine

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mbastide/calendis/internal/ground"
	"github.com/mbastide/calendis/internal/interpret"
	"github.com/mbastide/calendis/internal/narrate"
	"github.com/mbastide/calendis/internal/policy"
	"github.com/mbastide/calendis/internal/ranking"
	"github.com/mbastide/calendis/internal/signal"
	"github.com/mbastide/calendis/internal/thread"
	"github.com/mbastide/calendis/internal/truth"
)

// #region plan

// plan is one intent's fully grounded answer material before rendering.
type plan struct {
	facts map[string]ground.Fact
	items []ground.LineItem

	mode    narrate.Mode
	submode narrate.Submode

	focus   *truth.TruthRow
	window  []truth.TruthRow
	signals map[truth.Dimension]signal.DecisionSignal

	used    []time.Time
	top     []thread.TopDate
	reasons []string
	actions Actions
}

func newPlan(mode narrate.Mode, submode narrate.Submode) *plan {
	return &plan{
		facts:   map[string]ground.Fact{},
		mode:    mode,
		submode: submode,
	}
}

func (p *plan) addFact(f ground.Fact) string {
	p.facts[f.ID] = f
	return f.ID
}

func (p *plan) addItem(item ground.LineItem) {
	p.items = append(p.items, item)
}

// #endregion plan

// #region labels

var dimLabels = map[truth.Dimension]string{
	truth.DimensionWeather:     "météo",
	truth.DimensionCompetition: "concurrence",
	truth.DimensionCalendar:    "calendrier",
	truth.DimensionTourism:     "tourisme",
	truth.DimensionMobility:    "mobilité",
}

var frenchMonthNames = [...]string{"", "janvier", "février", "mars", "avril", "mai", "juin",
	"juillet", "août", "septembre", "octobre", "novembre", "décembre"}

func frenchDate(t time.Time) string {
	return fmt.Sprintf("%d %s %d", t.Day(), frenchMonthNames[int(t.Month())], t.Year())
}

func frenchDateList(dates []time.Time) string {
	parts := make([]string, 0, len(dates))
	for _, d := range dates {
		parts = append(parts, frenchDate(d))
	}
	return strings.Join(parts, ", ")
}

// #endregion labels

// #region fact-helpers

// signalOrder fixes the emission order of per-dimension facts.
var signalOrder = []truth.Dimension{
	truth.DimensionWeather,
	truth.DimensionCompetition,
	truth.DimensionCalendar,
	truth.DimensionTourism,
	truth.DimensionMobility,
}

// signalFacts adds one fact per applicable signal of a row and returns the
// fact ids in fixed dimension order.
func (p *plan) signalFacts(row truth.TruthRow, sigs map[truth.Dimension]signal.DecisionSignal) []string {
	var ids []string
	for _, dim := range signalOrder {
		sig, ok := sigs[dim]
		if !ok || !sig.Applicable {
			continue
		}
		fields := make([]string, 0, len(sig.Facts))
		for k := range sig.Facts {
			fields = append(fields, k)
		}
		sort.Strings(fields)
		id := p.addFact(ground.Fact{
			ID:           ground.FactID(dim, row.Date, ""),
			Date:         row.Date,
			Dimension:    dim,
			Label:        dimLabels[dim] + " : " + sig.Explanation,
			SourceFields: fields,
		})
		ids = append(ids, id)
	}
	return ids
}

// scoreFact adds the score/regime fact of a row when present.
func (p *plan) scoreFact(row truth.TruthRow) (string, bool) {
	if row.Score == nil && row.Regime == "" {
		return "", false
	}
	var label string
	switch {
	case row.Score != nil && row.Regime != "":
		label = fmt.Sprintf("score %.0f, régime %s", *row.Score, row.Regime)
	case row.Score != nil:
		label = fmt.Sprintf("score %.0f", *row.Score)
	default:
		label = fmt.Sprintf("régime %s", row.Regime)
	}
	id := p.addFact(ground.Fact{
		ID:           "score:" + row.DateKey(),
		Date:         row.Date,
		Label:        label,
		SourceFields: []string{"score", "regime"},
	})
	return id, true
}

// dayFactLine emits one key-fact line for a row, traceable to that row only.
func (p *plan) dayFactLine(row truth.TruthRow, sigs map[truth.Dimension]signal.DecisionSignal) {
	ids := p.signalFacts(row, sigs)
	if id, ok := p.scoreFact(row); ok {
		ids = append([]string{id}, ids...)
	}
	if len(ids) == 0 {
		return
	}
	p.addItem(ground.LineItem{
		Kind:       ground.LineFact,
		TemplateID: ground.TplFactDate,
		FactIDs:    ids,
		Params:     map[string]string{"date": frenchDate(row.Date)},
	})
}

// relaxationCaveat surfaces a constraint fallback as a grounded caveat.
func (p *plan) relaxationCaveat(relaxed []string, window string) {
	if len(relaxed) == 0 {
		return
	}
	id := p.addFact(ground.Fact{
		ID:           "constraints:" + window,
		Label:        "contraintes assouplies : " + strings.Join(relaxed, ", "),
		SourceFields: relaxed,
	})
	p.addItem(ground.LineItem{
		Kind:       ground.LineCaveat,
		TemplateID: ground.TplCaveatRelaxed,
		FactIDs:    []string{id},
		Params:     map[string]string{"constraints": strings.Join(relaxed, ", ")},
	})
}

// #endregion fact-helpers

// #region window-intents

// buildWindow covers the planning intents sharing the rank-then-list shape:
// best days, worst days, filter, tradeoff.
func buildWindow(res interpret.Result, b truth.Bundle, pol policy.Policy) (*plan, error) {
	if len(b.Rows) == 0 {
		return nil, &TruthError{Stage: "window", Err: fmt.Errorf("no truth rows in window")}
	}

	dir := ranking.Shortlist
	submode := narrate.SubBestDays
	switch res.Intent {
	case interpret.IntentWorstDays:
		dir = ranking.Worstlist
		submode = narrate.SubWorstDays
	case interpret.IntentFilterDays:
		submode = narrate.SubFilter
	case interpret.IntentCombinedTradeoff:
		submode = narrate.SubTradeoff
	}

	p := newPlan(narrate.ModeScoring, submode)
	windowKey := b.Rows[0].DateKey()

	candidates := b.Rows
	if res.Intent == interpret.IntentFilterDays {
		candidates = filterByDimensions(candidates, b.Profile, res.Dimensions)
		if len(candidates) == 0 {
			return nil, &InputError{Msg: "aucun jour ne passe ce filtre sur la période ; élargissez la période ou le filtre"}
		}
	}

	rankPolicy := pol
	if res.Intent == interpret.IntentCombinedTradeoff && len(res.Dimensions) >= 2 {
		rankPolicy.PriorityDimensions = res.Dimensions
	}

	result := ranking.Rank(candidates, rankPolicy, res.K, dir)
	p.relaxationCaveat(result.RelaxedConstraints, windowKey)

	if len(result.Rows) == 0 {
		// Every candidate is regime C or under strong alert: say so, grounded.
		id := p.addFact(ground.Fact{
			ID:           "window:" + windowKey,
			Date:         b.Rows[0].Date,
			Label:        "aucun jour éligible : régime défavorable ou vigilance forte partout",
			SourceFields: []string{"regime", "alert_level"},
		})
		p.addItem(ground.LineItem{
			Kind:       ground.LineHeadline,
			TemplateID: ground.TplCaveatEmptyPool,
			FactIDs:    []string{id},
			Params:     map[string]string{"window": frenchDate(b.Rows[0].Date) + " – " + frenchDate(b.Rows[len(b.Rows)-1].Date)},
		})
		return p, nil
	}

	var dates []time.Time
	for _, rr := range result.Rows {
		dates = append(dates, rr.Row.Date)
	}

	headlineTpl := ground.TplHeadlineBestDays
	if dir == ranking.Worstlist {
		headlineTpl = ground.TplHeadlineWorstDays
	}
	headlineFacts := make([]string, 0, len(result.Rows))
	for _, rr := range result.Rows {
		sigs := signal.Derive(rr.Row, b.Profile, res.Dimensions)
		ids := p.signalFacts(rr.Row, sigs)
		if id, ok := p.scoreFact(rr.Row); ok {
			ids = append([]string{id}, ids...)
		}
		headlineFacts = append(headlineFacts, ids...)
		if len(ids) > 0 {
			p.addItem(ground.LineItem{
				Kind:       ground.LineFact,
				TemplateID: ground.TplFactDate,
				FactIDs:    ids,
				Params:     map[string]string{"date": frenchDate(rr.Row.Date)},
			})
		}
		for _, reason := range rr.Reasons {
			p.reasons = append(p.reasons, frenchDate(rr.Row.Date)+" : "+reason)
		}
	}

	if len(headlineFacts) == 0 {
		// Null-heavy rows still ground the headline on their presence.
		id := p.addFact(ground.Fact{
			ID:           "window:" + windowKey,
			Date:         result.Rows[0].Row.Date,
			Label:        "jours retenus : " + frenchDateList(dates),
			SourceFields: []string{"date"},
		})
		headlineFacts = []string{id}
	}
	headline := ground.LineItem{
		Kind:       ground.LineHeadline,
		TemplateID: headlineTpl,
		FactIDs:    headlineFacts,
		Params: map[string]string{
			"count": fmt.Sprintf("%d", len(result.Rows)),
			"dates": frenchDateList(dates),
		},
	}
	// headline first
	p.items = append([]ground.LineItem{headline}, p.items...)

	p.used = dates
	p.focus = &result.Rows[0].Row
	p.signals = signal.Derive(*p.focus, b.Profile, res.Dimensions)
	p.window = rowsOf(result.Rows)

	if dir == ranking.Shortlist {
		for i, rr := range result.Rows {
			if i == 3 {
				break
			}
			p.top = append(p.top, thread.TopDate{
				Date:   rr.Row.DateKey(),
				Regime: string(rr.Row.Regime),
				Score:  rr.Row.ScoreOr(0),
			})
		}
		p.actions = Actions{
			Primary:   "Comparer les deux premières dates",
			Secondary: []string{"Voir les jours à éviter", "Expliquer la première date"},
		}
	} else {
		p.actions = Actions{
			Primary:   "Voir les meilleurs jours de la période",
			Secondary: []string{"Expliquer la première date à éviter"},
		}
	}
	return p, nil
}

// filterByDimensions keeps rows whose requested-dimension signals are all
// free of risk.
func filterByDimensions(rows []truth.TruthRow, profile truth.BusinessProfile, dims []truth.Dimension) []truth.TruthRow {
	var out []truth.TruthRow
	for _, r := range rows {
		sigs := signal.Derive(r, profile, dims)
		ok := true
		for _, sig := range sigs {
			if sig.Applicable && sig.Impact != signal.ImpactNeutral {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, r)
		}
	}
	return out
}

func rowsOf(ranked []ranking.RankedRow) []truth.TruthRow {
	out := make([]truth.TruthRow, 0, len(ranked))
	for _, rr := range ranked {
		out = append(out, rr.Row)
	}
	return out
}

// #endregion window-intents

// #region patterns

// buildPatterns surfaces runs of consecutive favorable days.
func buildPatterns(res interpret.Result, b truth.Bundle, pol policy.Policy) (*plan, error) {
	if len(b.Rows) == 0 {
		return nil, &TruthError{Stage: "window", Err: fmt.Errorf("no truth rows in window")}
	}
	p := newPlan(narrate.ModeScoring, narrate.SubPatterns)

	type run struct {
		start, end time.Time
		length     int
	}
	var runs []run
	var cur *run
	for _, r := range b.Rows {
		favorable := r.Regime != truth.RegimeC && r.AlertLevelOr(0) < 3
		if favorable {
			if cur != nil && r.Date.Sub(cur.end) == 24*time.Hour {
				cur.end = r.Date
				cur.length++
			} else {
				runs = append(runs, run{start: r.Date, end: r.Date, length: 1})
				cur = &runs[len(runs)-1]
			}
		} else {
			cur = nil
		}
	}

	var factIDs []string
	count := 0
	for _, rn := range runs {
		if rn.length < 2 {
			continue
		}
		count++
		id := p.addFact(ground.Fact{
			ID:           "pattern:" + rn.start.Format("2006-01-02"),
			Date:         rn.start,
			Label:        fmt.Sprintf("du %s au %s : %d jours favorables d'affilée", frenchDate(rn.start), frenchDate(rn.end), rn.length),
			SourceFields: []string{"regime", "alert_level", "date"},
		})
		factIDs = append(factIDs, id)
		p.addItem(ground.LineItem{
			Kind:       ground.LineFact,
			TemplateID: ground.TplFactSignal,
			FactIDs:    []string{id},
		})
		p.used = append(p.used, rn.start)
	}

	if count == 0 {
		id := p.addFact(ground.Fact{
			ID:           "pattern:none",
			Date:         b.Rows[0].Date,
			Label:        "aucune série d'au moins deux jours favorables consécutifs",
			SourceFields: []string{"regime", "alert_level", "date"},
		})
		factIDs = []string{id}
		p.addItem(ground.LineItem{
			Kind:       ground.LineFact,
			TemplateID: ground.TplFactSignal,
			FactIDs:    []string{id},
		})
	}

	headline := ground.LineItem{
		Kind:       ground.LineHeadline,
		TemplateID: ground.TplHeadlinePatterns,
		FactIDs:    factIDs,
		Params:     map[string]string{"summary": fmt.Sprintf("%d série(s)", count)},
	}
	p.items = append([]ground.LineItem{headline}, p.items...)

	p.window = b.Rows
	p.focus = &b.Rows[0]
	p.signals = signal.Derive(b.Rows[0], b.Profile, res.Dimensions)
	p.actions = Actions{Primary: "Voir les meilleurs jours de la période"}
	return p, nil
}

// #endregion patterns

// #region driver

// buildDriver tallies risky signals per dimension over the window and names
// the dominant one.
func buildDriver(res interpret.Result, b truth.Bundle, pol policy.Policy) (*plan, error) {
	if len(b.Rows) == 0 {
		return nil, &TruthError{Stage: "window", Err: fmt.Errorf("no truth rows in window")}
	}
	p := newPlan(narrate.ModeScoring, narrate.SubDriver)

	dims := res.Dimensions
	if len(dims) == 0 {
		dims = signal.DefaultDimensions()
	}

	tally := map[truth.Dimension]int{}
	for _, r := range b.Rows {
		sigs := signal.Derive(r, b.Profile, dims)
		for dim, sig := range sigs {
			if sig.Applicable && sig.Impact != signal.ImpactNeutral {
				tally[dim]++
			}
		}
	}

	// Dominant dimension; ties resolve in policy priority order.
	primary := truth.Dimension("")
	best := -1
	for _, dim := range pol.PriorityDimensions {
		if tally[dim] > best {
			best = tally[dim]
			primary = dim
		}
	}
	for _, dim := range dims {
		if tally[dim] > best {
			best = tally[dim]
			primary = dim
		}
	}
	if primary == "" {
		primary = dims[0]
	}

	var factIDs []string
	for _, dim := range signalOrder {
		n, ok := tally[dim]
		if !ok {
			continue
		}
		id := p.addFact(ground.Fact{
			ID:           "driver:" + string(dim),
			Date:         b.Rows[0].Date,
			Dimension:    dim,
			Label:        fmt.Sprintf("%s défavorable sur %d jour(s) sur %d", dimLabels[dim], n, len(b.Rows)),
			SourceFields: []string{"signals"},
		})
		factIDs = append(factIDs, id)
		p.addItem(ground.LineItem{
			Kind:       ground.LineFact,
			TemplateID: ground.TplFactSignal,
			FactIDs:    []string{id},
		})
	}

	headline := ground.LineItem{
		Kind:       ground.LineHeadline,
		TemplateID: ground.TplHeadlineDriver,
		FactIDs:    factIDs,
		Params:     map[string]string{"dimension": dimLabels[primary]},
	}
	p.items = append([]ground.LineItem{headline}, p.items...)

	p.window = b.Rows
	p.focus = &b.Rows[0]
	p.signals = signal.Derive(b.Rows[0], b.Profile, dims)
	p.used = []time.Time{b.Rows[0].Date}
	p.actions = Actions{Primary: "Voir les jours à éviter à cause de " + dimLabels[primary]}
	return p, nil
}

// #endregion driver

// #region compare

// buildCompare emits one key-fact line per compared date, each traceable to
// that date's row, then a grounded preference.
func buildCompare(res interpret.Result, b truth.Bundle, pol policy.Policy) (*plan, error) {
	if len(res.Dates) < 2 {
		return nil, &InputError{Msg: "il faut au moins 2 dates à comparer"}
	}
	if len(b.Rows) == 0 {
		return nil, &TruthError{Stage: "selected_days", Err: fmt.Errorf("no truth rows for the requested dates")}
	}

	p := newPlan(narrate.ModeScoring, narrate.SubCompare)

	present := map[string]bool{}
	for _, r := range b.Rows {
		present[r.DateKey()] = true
	}
	for _, d := range res.Dates {
		if !present[d.Format("2006-01-02")] {
			id := p.addFact(ground.Fact{
				ID:           "missing:" + d.Format("2006-01-02"),
				Date:         d,
				Label:        "aucune donnée pour le " + frenchDate(d),
				SourceFields: []string{"truth_rows"},
			})
			p.addItem(ground.LineItem{
				Kind:       ground.LineCaveat,
				TemplateID: ground.TplCaveatMissing,
				FactIDs:    []string{id},
				Params:     map[string]string{"date": frenchDate(d), "dimension": "ligne de vérité"},
			})
		}
	}

	var headlineFacts []string
	winner := b.Rows[0]
	for _, r := range b.Rows {
		sigs := signal.Derive(r, b.Profile, res.Dimensions)
		ids := p.signalFacts(r, sigs)
		if id, ok := p.scoreFact(r); ok {
			ids = append([]string{id}, ids...)
		}
		headlineFacts = append(headlineFacts, ids...)
		if len(ids) > 0 {
			p.addItem(ground.LineItem{
				Kind:       ground.LineFact,
				TemplateID: ground.TplFactDate,
				FactIDs:    ids,
				Params:     map[string]string{"date": frenchDate(r.Date)},
			})
		}
		if ranking.Less(r, winner, pol) {
			winner = r
		}
		p.used = append(p.used, r.Date)
	}

	if id, ok := p.scoreFact(winner); ok {
		p.addItem(ground.LineItem{
			Kind:       ground.LineImplication,
			TemplateID: ground.TplImplicationAdvice,
			FactIDs:    []string{id},
			Params:     map[string]string{"advice": "Préférez le " + frenchDate(winner.Date)},
		})
	}

	if len(headlineFacts) == 0 {
		id := p.addFact(ground.Fact{
			ID:           "window:" + b.Rows[0].DateKey(),
			Date:         b.Rows[0].Date,
			Label:        "dates comparées : " + frenchDateList(res.Dates),
			SourceFields: []string{"date"},
		})
		headlineFacts = []string{id}
	}
	headline := ground.LineItem{
		Kind:       ground.LineHeadline,
		TemplateID: ground.TplHeadlineCompare,
		FactIDs:    headlineFacts,
		Params:     map[string]string{"dates": frenchDateList(res.Dates)},
	}
	p.items = append([]ground.LineItem{headline}, p.items...)

	p.window = b.Rows
	p.focus = &winner
	p.signals = signal.Derive(winner, b.Profile, res.Dimensions)
	p.actions = Actions{
		Primary:   "Expliquer la date préférée",
		Secondary: []string{"Élargir au mois"},
	}
	return p, nil
}

// #endregion compare

// #region day

// buildDay covers DAY_WHY, DAY_DIMENSION_DETAIL and EVENT_LOOKUP: everything
// rooted in a single focus row.
func buildDay(res interpret.Result, b truth.Bundle) (*plan, error) {
	if res.SelectedDate == nil {
		return nil, &InputError{Msg: "précisez la date concernée"}
	}
	var focus *truth.TruthRow
	for i := range b.Rows {
		if b.Rows[i].DateKey() == res.SelectedDate.Format("2006-01-02") {
			focus = &b.Rows[i]
			break
		}
	}
	if focus == nil {
		return nil, &TruthError{Stage: "day", Err: fmt.Errorf("no truth row for %s", res.SelectedDate.Format("2006-01-02"))}
	}

	mode, submode := narrate.ModeScoring, narrate.SubDayWhy
	headlineTpl := ground.TplHeadlineDayWhy
	dims := res.Dimensions
	switch res.Intent {
	case interpret.IntentDayDimension:
		submode = narrate.SubDayDimension
	case interpret.IntentEventLookup:
		mode, submode = narrate.ModeLookup, narrate.SubEvent
		headlineTpl = ground.TplHeadlineLookup
		dims = []truth.Dimension{truth.DimensionCompetition, truth.DimensionCalendar}
	}

	p := newPlan(mode, submode)
	sigs := signal.Derive(*focus, b.Profile, dims)

	ids := p.signalFacts(*focus, sigs)
	if res.Intent != interpret.IntentEventLookup {
		if id, ok := p.scoreFact(*focus); ok {
			ids = append([]string{id}, ids...)
		}
	}
	if len(ids) == 0 {
		return nil, &TruthError{Stage: "day", Err: fmt.Errorf("row for %s carries no usable field", focus.DateKey())}
	}

	p.addItem(ground.LineItem{
		Kind:       ground.LineHeadline,
		TemplateID: headlineTpl,
		FactIDs:    ids,
		Params:     map[string]string{"date": frenchDate(focus.Date)},
	})
	for _, id := range ids {
		p.addItem(ground.LineItem{
			Kind:       ground.LineFact,
			TemplateID: ground.TplFactSignal,
			FactIDs:    []string{id},
		})
	}

	// Requested dimensions with nothing behind them become explicit caveats.
	for _, dim := range signalOrder {
		sig, ok := sigs[dim]
		if !ok || sig.Applicable {
			continue
		}
		id := p.addFact(ground.Fact{
			ID:           ground.FactID(dim, focus.Date, "absent"),
			Date:         focus.Date,
			Dimension:    dim,
			Label:        "aucune donnée " + dimLabels[dim] + " pour le " + frenchDate(focus.Date),
			SourceFields: []string{"truth_rows"},
		})
		p.addItem(ground.LineItem{
			Kind:       ground.LineCaveat,
			TemplateID: ground.TplCaveatMissing,
			FactIDs:    []string{id},
			Params:     map[string]string{"date": frenchDate(focus.Date), "dimension": dimLabels[dim]},
		})
	}

	p.focus = focus
	p.signals = sigs
	p.window = []truth.TruthRow{*focus}
	p.used = []time.Time{focus.Date}
	for _, sig := range sigs {
		if sig.Applicable && sig.Explanation != "" {
			p.reasons = append(p.reasons, sig.Explanation)
		}
	}
	sort.Strings(p.reasons)
	p.actions = Actions{
		Primary:   "Comparer avec un autre jour",
		Secondary: []string{"Voir les meilleurs jours du mois"},
	}
	return p, nil
}

// #endregion day
