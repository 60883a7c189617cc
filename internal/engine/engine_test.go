package engine

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mbastide/calendis/internal/narrate"
	"github.com/mbastide/calendis/internal/truth"
)

var testAnchor = time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)

func f(v float64) *float64 { return &v }
func ip(v int) *int        { return &v }
func bp(v bool) *bool      { return &v }

// seedStore writes ten June days: a clear best pair (5, 6), a blocked storm
// day (7), and ordinary days elsewhere.
func seedStore(t *testing.T) *truth.Store {
	t.Helper()
	store, err := truth.NewStore(filepath.Join(t.TempDir(), "engine.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	ctx := context.Background()

	if err := store.InsertProfile(ctx, truth.BusinessProfile{
		Location: "loc-1", Name: "Le Bistrot", Category: "restaurant", Segment: "bistrot",
		Description: "bistrot avec terrasse",
	}); err != nil {
		t.Fatal(err)
	}
	if err := store.InsertRule(ctx, truth.PolicyRule{
		RuleKey: "category", RuleValue: "restaurant",
		PriorityDimensions: []truth.Dimension{truth.DimensionWeather, truth.DimensionCompetition, truth.DimensionCalendar},
		AutoConstraints:    []string{"exclude_alert_days"},
	}); err != nil {
		t.Fatal(err)
	}

	for day := 1; day <= 10; day++ {
		date := time.Date(2026, time.June, day, 0, 0, 0, 0, time.UTC)
		weekday := date.Weekday()
		row := truth.TruthRow{
			Location:         "loc-1",
			Date:             date,
			Score:            f(float64(60 + day)),
			Regime:           truth.RegimeB,
			AlertLevel:       ip(0),
			PrecipProb:       f(20),
			EventsWithin5Km:  ip(0),
			EventsWithin10Km: ip(0),
			EventsWithin50Km: ip(0),
			Weekend:          bp(weekday == time.Saturday || weekday == time.Sunday),
			PublicHoliday:    bp(false),
			SchoolHoliday:    bp(false),
			CommercialEvent:  bp(false),
		}
		switch day {
		case 5:
			row.Regime = truth.RegimeA
			row.Score = f(90)
			row.PrecipProb = f(5)
		case 6:
			row.Regime = truth.RegimeA
			row.Score = f(91)
			row.PrecipProb = f(5)
		case 7:
			row.Regime = truth.RegimeC
			row.Score = f(20)
			row.AlertLevel = ip(3)
			row.PrecipProb = f(90)
		}
		if err := store.InsertRow(ctx, row); err != nil {
			t.Fatal(err)
		}
	}
	return store
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	return New(seedStore(t), narrate.New(nil), Config{
		QueryTimeout:  2 * time.Second,
		MonthSpanDays: 30,
	})
}

func ask(t *testing.T, eng *Engine, text string, tc *Response) *Response {
	t.Helper()
	q := Query{Text: text, Location: "loc-1", Anchor: testAnchor}
	if tc != nil {
		thread := tc.Thread
		q.Thread = &thread
	}
	resp, err := eng.Answer(context.Background(), q)
	if err != nil {
		t.Fatalf("answer %q: %v", text, err)
	}
	return resp
}

func TestAnswerBestDays(t *testing.T) {
	eng := newTestEngine(t)
	resp := ask(t, eng, "Quels sont les 2 meilleurs jours en juin ?", nil)

	if resp.AnswerSource != "deterministic" {
		t.Errorf("source: got %q", resp.AnswerSource)
	}
	want := []string{"2026-06-05", "2026-06-06"}
	if len(resp.Meta.UsedDates) != 2 {
		t.Fatalf("used dates: got %v", resp.Meta.UsedDates)
	}
	for i := range want {
		if resp.Meta.UsedDates[i] != want[i] {
			t.Errorf("used date %d: got %s, want %s", i, resp.Meta.UsedDates[i], want[i])
		}
	}
	if resp.DecisionPayload.Kind != "scoring" {
		t.Errorf("payload kind: got %q", resp.DecisionPayload.Kind)
	}
	if resp.Headline == "" || resp.Answer == "" {
		t.Error("headline and answer must not be empty")
	}
	if resp.Thread.Turn != 1 || len(resp.Thread.Last.TopDates) == 0 {
		t.Errorf("thread: got %+v", resp.Thread)
	}
	if resp.Thread.Last.TopDates[0].Date != "2026-06-05" {
		t.Errorf("first top date: got %s", resp.Thread.Last.TopDates[0].Date)
	}
	// The echoed context carries the answer's dates even though the
	// question itself named none.
	if len(resp.Thread.Last.UsedDates) != len(resp.Meta.UsedDates) {
		t.Fatalf("thread used dates: got %v, want %v", resp.Thread.Last.UsedDates, resp.Meta.UsedDates)
	}
	for i := range resp.Meta.UsedDates {
		if resp.Thread.Last.UsedDates[i] != resp.Meta.UsedDates[i] {
			t.Errorf("thread used date %d: got %s, want %s", i, resp.Thread.Last.UsedDates[i], resp.Meta.UsedDates[i])
		}
	}
}

func TestAnswerBestDaysNeverIncludesBlockedDay(t *testing.T) {
	eng := newTestEngine(t)
	resp := ask(t, eng, "Quels sont les 7 meilleurs jours en juin ?", nil)
	for _, d := range resp.Meta.UsedDates {
		if d == "2026-06-07" {
			t.Error("storm day leaked into the shortlist")
		}
	}
}

func TestAnswerWorstDays(t *testing.T) {
	eng := newTestEngine(t)
	resp := ask(t, eng, "Quels jours éviter en juin ?", nil)
	if resp.Meta.Intent != "WINDOW_WORST_DAYS" {
		t.Fatalf("intent: got %q", resp.Meta.Intent)
	}
	if len(resp.Meta.UsedDates) == 0 || resp.Meta.UsedDates[0] != "2026-06-07" {
		t.Errorf("worst first: got %v", resp.Meta.UsedDates)
	}
}

func TestAnswerDayWhy(t *testing.T) {
	eng := newTestEngine(t)
	resp := ask(t, eng, "Pourquoi le 5 juin ?", nil)
	if resp.Meta.Intent != "DAY_WHY" {
		t.Fatalf("intent: got %q", resp.Meta.Intent)
	}
	if len(resp.Meta.UsedDates) != 1 || resp.Meta.UsedDates[0] != "2026-06-05" {
		t.Errorf("used dates: got %v", resp.Meta.UsedDates)
	}
	if len(resp.KeyFacts) == 0 {
		t.Error("expected key facts for the focus day")
	}
}

func TestAnswerCompare(t *testing.T) {
	eng := newTestEngine(t)
	resp := ask(t, eng, "Compare le 5 et le 7 juin", nil)
	if resp.Meta.Intent != "COMPARE_DATES" {
		t.Fatalf("intent: got %q", resp.Meta.Intent)
	}
	if len(resp.Meta.UsedDates) != 2 {
		t.Fatalf("used dates: got %v", resp.Meta.UsedDates)
	}
	if !strings.Contains(resp.Answer, "Préférez le 5 juin 2026") {
		t.Errorf("answer should prefer the calm day, got %q", resp.Answer)
	}
}

func TestAnswerEventLookup(t *testing.T) {
	eng := newTestEngine(t)
	resp := ask(t, eng, "Y a-t-il un événement le 6 juin ?", nil)
	if resp.Meta.Intent != "EVENT_LOOKUP" {
		t.Fatalf("intent: got %q", resp.Meta.Intent)
	}
	if resp.DecisionPayload.Kind != "lookup" {
		t.Errorf("payload kind: got %q", resp.DecisionPayload.Kind)
	}
}

func TestAnswerFollowUpOrdinal(t *testing.T) {
	eng := newTestEngine(t)
	first := ask(t, eng, "Quels sont les 2 meilleurs jours en juin ?", nil)
	followUp := ask(t, eng, "Pourquoi le premier ?", first)

	if followUp.Meta.Intent != "DAY_WHY" {
		t.Fatalf("intent: got %q", followUp.Meta.Intent)
	}
	if len(followUp.Meta.UsedDates) != 1 || followUp.Meta.UsedDates[0] != "2026-06-05" {
		t.Errorf("used dates: got %v, want the previous top date", followUp.Meta.UsedDates)
	}
	if followUp.Thread.Turn != 2 {
		t.Errorf("turn: got %d, want 2", followUp.Thread.Turn)
	}
}

func TestAnswerUnparseableDate(t *testing.T) {
	eng := newTestEngine(t)
	_, err := eng.Answer(context.Background(), Query{
		Text: "Pourquoi le 32 juin ?", Location: "loc-1", Anchor: testAnchor,
	})
	var ie *InputError
	if !errors.As(err, &ie) {
		t.Fatalf("expected InputError, got %v", err)
	}
}

func TestAnswerMissingDayRow(t *testing.T) {
	eng := newTestEngine(t)
	_, err := eng.Answer(context.Background(), Query{
		Text: "Pourquoi le 25 juin ?", Location: "loc-1", Anchor: testAnchor,
	})
	var te *TruthError
	if !errors.As(err, &te) {
		t.Fatalf("expected TruthError, got %v", err)
	}
}

func TestAnswerEmptyInput(t *testing.T) {
	eng := newTestEngine(t)
	var ie *InputError
	if _, err := eng.Answer(context.Background(), Query{Text: "  ", Location: "loc-1"}); !errors.As(err, &ie) {
		t.Errorf("empty text: expected InputError, got %v", err)
	}
	if _, err := eng.Answer(context.Background(), Query{Text: "demain ?", Location: ""}); !errors.As(err, &ie) {
		t.Errorf("empty location: expected InputError, got %v", err)
	}
}

// okGen returns a fixed well-formed narration.
type okGen struct{}

func (okGen) Available() bool { return true }
func (okGen) Generate(ctx context.Context, instruction string, payload map[string]any) (string, error) {
	return `{"headline":"Deux belles dates en vue","answer":"Les 5 et 6 juin 2026 sont favorables.","reasons":["score 90"]}`, nil
}

func TestAnswerGeneratedNarration(t *testing.T) {
	eng := New(seedStore(t), narrate.New(okGen{}), Config{
		QueryTimeout:  2 * time.Second,
		MonthSpanDays: 30,
	})
	resp := ask(t, eng, "Quels sont les 2 meilleurs jours en juin ?", nil)
	if resp.AnswerSource != "generated" {
		t.Fatalf("source: got %q", resp.AnswerSource)
	}
	if resp.Headline != "Deux belles dates en vue" {
		t.Errorf("headline: got %q", resp.Headline)
	}
	// grounded facts still travel alongside the generated prose
	if len(resp.KeyFacts) == 0 {
		t.Error("key facts must come from the deterministic render")
	}
}

// liarGen invents a number the rows cannot verify.
type liarGen struct{}

func (liarGen) Available() bool { return true }
func (liarGen) Generate(ctx context.Context, instruction string, payload map[string]any) (string, error) {
	return `{"headline":"Records en vue","answer":"Attendez-vous à 97% de remplissage."}`, nil
}

func TestAnswerRejectsUnverifiableGeneration(t *testing.T) {
	eng := New(seedStore(t), narrate.New(liarGen{}), Config{
		QueryTimeout:  2 * time.Second,
		MonthSpanDays: 30,
	})
	resp := ask(t, eng, "Quels sont les 2 meilleurs jours en juin ?", nil)
	if resp.AnswerSource != "deterministic" {
		t.Fatalf("source: got %q, unverifiable output must fall back", resp.AnswerSource)
	}
}
