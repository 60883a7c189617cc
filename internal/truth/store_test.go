package truth

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func f(v float64) *float64 { return &v }
func ip(v int) *int        { return &v }
func bp(v bool) *bool      { return &v }

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seedRows(t *testing.T, s *Store, location string, days ...int) {
	t.Helper()
	ctx := context.Background()
	for _, day := range days {
		err := s.InsertRow(ctx, TruthRow{
			Location:   location,
			Date:       time.Date(2026, time.June, day, 0, 0, 0, 0, time.UTC),
			Score:      f(float64(50 + day)),
			Regime:     RegimeB,
			AlertLevel: ip(0),
			PrecipProb: f(float64(day)),
			Weekend:    bp(false),
		})
		if err != nil {
			t.Fatalf("insert row: %v", err)
		}
	}
}

func TestStoreDayRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	in := TruthRow{
		Location:         "loc-1",
		Date:             time.Date(2026, time.June, 14, 0, 0, 0, 0, time.UTC),
		Score:            f(82),
		Regime:           RegimeA,
		AlertLevel:       ip(1),
		PrecipProb:       f(40),
		EventsWithin5Km:  ip(2),
		EventsWithin50Km: ip(9),
		Weekend:          bp(true),
		PublicHoliday:    bp(false),
	}
	if err := s.InsertRow(ctx, in); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := s.Day(ctx, "loc-1", in.Date)
	if err != nil {
		t.Fatalf("day: %v", err)
	}
	if got.DateKey() != "2026-06-14" {
		t.Errorf("date: got %s", got.DateKey())
	}
	if got.Score == nil || *got.Score != 82 {
		t.Errorf("score: got %v", got.Score)
	}
	if got.Regime != RegimeA {
		t.Errorf("regime: got %q", got.Regime)
	}
	// null columns stay nil, they do not collapse to zero values
	if got.WindSpeed != nil {
		t.Errorf("wind: got %v, want nil", got.WindSpeed)
	}
	if got.EventsWithin10Km != nil {
		t.Errorf("events 10km: got %v, want nil", got.EventsWithin10Km)
	}
	if got.SchoolHoliday != nil {
		t.Errorf("school holiday: got %v, want nil", got.SchoolHoliday)
	}
	if got.Weekend == nil || !*got.Weekend {
		t.Errorf("weekend: got %v, want true", got.Weekend)
	}
}

func TestStoreDayAbsent(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Day(context.Background(), "loc-1", time.Date(2026, time.June, 14, 0, 0, 0, 0, time.UTC))
	if !errors.Is(err, ErrNoRow) {
		t.Errorf("expected ErrNoRow, got %v", err)
	}
}

func TestStoreRangeOrdered(t *testing.T) {
	s := openTestStore(t)
	seedRows(t, s, "loc-1", 14, 3, 9)
	seedRows(t, s, "loc-2", 5)

	rows, err := s.Range(context.Background(), "loc-1",
		time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.June, 30, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows: got %d, want 3", len(rows))
	}
	want := []string{"2026-06-03", "2026-06-09", "2026-06-14"}
	for i := range want {
		if rows[i].DateKey() != want[i] {
			t.Errorf("position %d: got %s, want %s", i, rows[i].DateKey(), want[i])
		}
	}
}

func TestStoreSelectedDays(t *testing.T) {
	s := openTestStore(t)
	seedRows(t, s, "loc-1", 3, 9, 14)

	dates := []time.Time{
		time.Date(2026, time.June, 14, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.June, 3, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.June, 28, 0, 0, 0, 0, time.UTC), // no row
	}
	rows, err := s.SelectedDays(context.Background(), "loc-1", dates)
	if err != nil {
		t.Fatalf("selected days: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows: got %d, want 2 (absent dates are skipped)", len(rows))
	}
	if rows[0].DateKey() != "2026-06-03" || rows[1].DateKey() != "2026-06-14" {
		t.Errorf("order: got %s, %s", rows[0].DateKey(), rows[1].DateKey())
	}
}

func TestStoreProfileAndRules(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.InsertProfile(ctx, BusinessProfile{
		Location: "loc-1", Name: "Le Bistrot", Category: "restaurant", Segment: "bistrot",
	}); err != nil {
		t.Fatalf("insert profile: %v", err)
	}
	if err := s.InsertRule(ctx, PolicyRule{
		RuleKey: "category", RuleValue: "restaurant",
		PriorityDimensions: []Dimension{DimensionWeather, DimensionCalendar},
		AutoConstraints:    []string{"exclude_alert_days"},
	}); err != nil {
		t.Fatalf("insert rule: %v", err)
	}

	p, err := s.Profile(ctx, "loc-1")
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if p.Name != "Le Bistrot" || p.Category != "restaurant" {
		t.Errorf("profile: got %+v", p)
	}

	rules, err := s.Rules(ctx)
	if err != nil {
		t.Fatalf("rules: %v", err)
	}
	if len(rules) != 1 {
		t.Fatalf("rules: got %d, want 1", len(rules))
	}
	r := rules[0]
	if len(r.PriorityDimensions) != 2 || r.PriorityDimensions[0] != DimensionWeather {
		t.Errorf("dimensions: got %v", r.PriorityDimensions)
	}
	if len(r.AutoConstraints) != 1 || r.AutoConstraints[0] != "exclude_alert_days" {
		t.Errorf("constraints: got %v", r.AutoConstraints)
	}
}

func TestFetchBundle(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	seedRows(t, s, "loc-1", 3, 9)
	if err := s.InsertProfile(ctx, BusinessProfile{Location: "loc-1", Name: "Le Bistrot"}); err != nil {
		t.Fatal(err)
	}

	b, err := FetchBundle(ctx, s, "loc-1", Window{
		From: time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2026, time.June, 30, 0, 0, 0, 0, time.UTC),
	}, 2*time.Second)
	if err != nil {
		t.Fatalf("fetch bundle: %v", err)
	}
	if len(b.Rows) != 2 {
		t.Errorf("rows: got %d, want 2", len(b.Rows))
	}
	if b.Profile.Name != "Le Bistrot" {
		t.Errorf("profile: got %+v", b.Profile)
	}
}

func TestFetchBundleMissingProfileFails(t *testing.T) {
	s := openTestStore(t)
	seedRows(t, s, "loc-1", 3)

	_, err := FetchBundle(context.Background(), s, "loc-1", Window{
		From: time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2026, time.June, 30, 0, 0, 0, 0, time.UTC),
	}, 2*time.Second)
	if !errors.Is(err, ErrNoRow) {
		t.Errorf("expected ErrNoRow, got %v", err)
	}
}

func TestLogDecision(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	err := s.LogDecision(ctx, DecisionEntry{
		RequestID:    "req-1",
		Location:     "loc-1",
		Horizon:      "calendar_month",
		Intent:       "WINDOW_TOP_DAYS",
		UsedDates:    "2026-06-03,2026-06-09",
		PayloadJSON:  `{"kind":"scoring"}`,
		AnswerSource: "deterministic",
		CaveatCount:  1,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("log decision: %v", err)
	}

	var count int
	if err := s.DB().QueryRow(`SELECT COUNT(*) FROM decision_log WHERE request_id = 'req-1'`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("entries: got %d, want 1", count)
	}
}

func TestBoolRank(t *testing.T) {
	tr, fa := true, false
	if BoolRank(&fa) != 0 || BoolRank(nil) != 1 || BoolRank(&tr) != 2 {
		t.Errorf("rank order must be false < unknown < true, got %d/%d/%d",
			BoolRank(&fa), BoolRank(nil), BoolRank(&tr))
	}
}
