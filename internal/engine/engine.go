// Package engine wires the full answer pipeline: interpret, fetch, derive,
// rank, ground, narrate. One call, one auditable response.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mbastide/calendis/internal/ground"
	"github.com/mbastide/calendis/internal/interpret"
	"github.com/mbastide/calendis/internal/narrate"
	"github.com/mbastide/calendis/internal/policy"
	"github.com/mbastide/calendis/internal/thread"
	"github.com/mbastide/calendis/internal/truth"
)

// #region config

// Config controls per-request behavior.
type Config struct {
	// QueryTimeout bounds each individual store query.
	QueryTimeout time.Duration
	// MonthSpanDays is the rolling window length for the "month" horizon.
	MonthSpanDays int
}

// DefaultConfig reads overrides from the environment.
func DefaultConfig() Config {
	cfg := Config{
		QueryTimeout:  3 * time.Second,
		MonthSpanDays: 30,
	}
	if v := os.Getenv("CALENDIS_QUERY_TIMEOUT_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			cfg.QueryTimeout = time.Duration(ms) * time.Millisecond
		}
	}
	if v := os.Getenv("CALENDIS_MONTH_SPAN_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MonthSpanDays = n
		}
	}
	return cfg
}

// #endregion config

// #region engine

// Engine answers venue-calendar questions against a truth store.
type Engine struct {
	store    *truth.Store
	narrator *narrate.Orchestrator
	cfg      Config
}

// New assembles an engine. narrator may use a nil generator: every answer
// then takes the deterministic path.
func New(store *truth.Store, narrator *narrate.Orchestrator, cfg Config) *Engine {
	return &Engine{store: store, narrator: narrator, cfg: cfg}
}

// #endregion engine

// #region answer

// Answer runs the full pipeline for one query.
func (e *Engine) Answer(ctx context.Context, q Query) (*Response, error) {
	if strings.TrimSpace(q.Text) == "" {
		return nil, &InputError{Msg: "la question est vide"}
	}
	if strings.TrimSpace(q.Location) == "" {
		return nil, &InputError{Msg: "le lieu est requis"}
	}
	anchor := q.Anchor
	if anchor.IsZero() {
		anchor = time.Now()
	}
	requestID := uuid.NewString()

	res, err := interpret.Interpret(q.Text, anchor)
	if err != nil {
		var ue *interpret.UnparseableDateError
		if errors.As(err, &ue) {
			return nil, &InputError{Msg: "date illisible : " + strings.Join(ue.Tokens, ", ") + " ; reformulez-la (ex. 14 juin 2026)"}
		}
		return nil, err
	}

	// Date-less follow-ups resolve against the caller-echoed thread context.
	if len(res.Dates) == 0 && res.SelectedDate == nil && q.Thread != nil {
		if ov := thread.Resolve(q.Text, q.Thread); ov != nil {
			res = applyOverride(res, ov)
		}
	}

	window, err := e.window(res, anchor)
	if err != nil {
		return nil, err
	}

	bundle, err := truth.FetchBundle(ctx, e.store, q.Location, window, e.cfg.QueryTimeout)
	if err != nil {
		return nil, &TruthError{Stage: "fetch", Err: err}
	}
	pol := policy.Resolve(bundle.Rules, bundle.Profile)

	p, err := e.build(res, bundle, pol)
	if err != nil {
		return nil, err
	}

	lines, err := ground.Render(p.facts, p.items)
	if err != nil {
		// A violation means the answer cannot be trusted; refuse it whole.
		log.Printf("[ENGINE] grounding contract violation: %v", err)
		return nil, err
	}

	headline, answer, keyFacts, caveats := splitLines(lines)

	nres := e.narrator.Narrate(ctx, narrate.Input{
		Mode:             p.mode,
		Submode:          p.submode,
		Focus:            p.focus,
		Window:           p.window,
		Signals:          p.signals,
		FallbackHeadline: headline,
		FallbackAnswer:   answer,
		FallbackReasons:  p.reasons,
	})

	usedDates := make([]string, 0, len(p.used))
	for _, d := range p.used {
		usedDates = append(usedDates, d.Format("2006-01-02"))
	}

	resp := &Response{
		Headline: nres.Headline,
		Answer:   nres.Answer,
		Reasons:  nres.Reasons,
		KeyFacts: keyFacts,
		Actions:  p.actions,
		Caveats:  caveats,
		Meta: Meta{
			Horizon:   res.Horizon,
			Intent:    res.Intent,
			UsedDates: usedDates,
		},
		DecisionPayload: DecisionPayload{
			Kind:      string(p.mode),
			Horizon:   res.Horizon,
			Intent:    res.Intent,
			UsedDates: usedDates,
			Signals:   p.signals,
		},
		Thread:       thread.Advance(q.Thread, res, usedDates, p.top),
		AnswerSource: nres.Source,
	}

	e.logDecision(ctx, requestID, q, res, resp, len(caveats))
	return resp, nil
}

// applyOverride rewrites the interpretation with a resolved follow-up.
func applyOverride(res interpret.Result, ov *thread.Override) interpret.Result {
	res.Dates = ov.Dates
	if ov.Intent != "" {
		res.Intent = ov.Intent
	}
	switch {
	case len(ov.Dates) >= 2:
		res.Horizon = interpret.HorizonSelectedDays
		res.SelectedDate = nil
	case len(ov.Dates) == 1:
		d := ov.Dates[0]
		res.Horizon = interpret.HorizonDay
		res.SelectedDate = &d
		if res.Intent == interpret.IntentTopDays {
			res.Intent = interpret.IntentDayWhy
		}
	}
	return res
}

// window translates a horizon into a fetchable date range or set.
func (e *Engine) window(res interpret.Result, anchor time.Time) (truth.Window, error) {
	day := func(t time.Time) time.Time {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}
	switch res.Horizon {
	case interpret.HorizonDay, interpret.HorizonLookupEvent:
		if res.SelectedDate == nil {
			return truth.Window{}, &InputError{Msg: "précisez la date concernée"}
		}
		d := day(*res.SelectedDate)
		return truth.Window{From: d, To: d}, nil
	case interpret.HorizonSelectedDays:
		if len(res.Dates) == 0 {
			return truth.Window{}, &InputError{Msg: "précisez les dates à examiner"}
		}
		dates := make([]time.Time, 0, len(res.Dates))
		for _, d := range res.Dates {
			dates = append(dates, day(d))
		}
		return truth.Window{Dates: dates}, nil
	case interpret.HorizonCalendarMonth:
		first := time.Date(res.CalendarYear, res.CalendarMonth, 1, 0, 0, 0, 0, time.UTC)
		last := first.AddDate(0, 1, -1)
		return truth.Window{From: first, To: last}, nil
	case interpret.HorizonMonth:
		from := day(anchor)
		return truth.Window{From: from, To: from.AddDate(0, 0, e.cfg.MonthSpanDays-1)}, nil
	default:
		return truth.Window{}, fmt.Errorf("unhandled horizon %q", res.Horizon)
	}
}

// build dispatches to the intent's plan builder.
func (e *Engine) build(res interpret.Result, b truth.Bundle, pol policy.Policy) (*plan, error) {
	switch res.Intent {
	case interpret.IntentTopDays, interpret.IntentWorstDays,
		interpret.IntentFilterDays, interpret.IntentCombinedTradeoff:
		return buildWindow(res, b, pol)
	case interpret.IntentPatterns:
		return buildPatterns(res, b, pol)
	case interpret.IntentDriverPrimary:
		return buildDriver(res, b, pol)
	case interpret.IntentCompareDates:
		return buildCompare(res, b, pol)
	case interpret.IntentDayWhy, interpret.IntentDayDimension, interpret.IntentEventLookup:
		return buildDay(res, b)
	default:
		return nil, fmt.Errorf("unhandled intent %q", res.Intent)
	}
}

// splitLines sorts rendered lines into the response surfaces.
func splitLines(lines []ground.RenderLine) (headline, answer string, keyFacts, caveats []string) {
	var body []string
	for _, l := range lines {
		switch l.Kind {
		case ground.LineHeadline:
			if headline == "" {
				headline = l.Text
			} else {
				body = append(body, l.Text)
			}
		case ground.LineFact:
			keyFacts = append(keyFacts, l.Text)
			body = append(body, l.Text)
		case ground.LineImplication:
			body = append(body, l.Text)
		case ground.LineCaveat:
			caveats = append(caveats, l.Text)
		}
	}
	answer = strings.Join(body, " ")
	if answer == "" {
		answer = headline
	}
	return headline, answer, keyFacts, caveats
}

// logDecision records the turn for audit. Failure to log never fails the
// request.
func (e *Engine) logDecision(ctx context.Context, requestID string, q Query, res interpret.Result, resp *Response, caveats int) {
	payload, err := json.Marshal(resp.DecisionPayload)
	if err != nil {
		log.Printf("[ENGINE] decision payload marshal: %v", err)
		return
	}
	entry := truth.DecisionEntry{
		RequestID:    requestID,
		Location:     q.Location,
		Horizon:      string(res.Horizon),
		Intent:       string(res.Intent),
		UsedDates:    strings.Join(resp.Meta.UsedDates, ","),
		PayloadJSON:  string(payload),
		AnswerSource: resp.AnswerSource,
		CaveatCount:  caveats,
		CreatedAt:    time.Now().UTC(),
	}
	if err := e.store.LogDecision(ctx, entry); err != nil {
		log.Printf("[ENGINE] decision log: %v", err)
	}
}

// #endregion answer
