package ground

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mbastide/calendis/internal/truth"
)

func makeFacts() map[string]Fact {
	date := time.Date(2026, time.June, 14, 0, 0, 0, 0, time.UTC)
	return map[string]Fact{
		"weather:2026-06-14": {
			ID:           "weather:2026-06-14",
			Date:         date,
			Dimension:    truth.DimensionWeather,
			Label:        "probabilité de pluie 40%",
			SourceFields: []string{"precip_prob"},
		},
		"score:2026-06-14": {
			ID:           "score:2026-06-14",
			Date:         date,
			Label:        "score 82, régime A",
			SourceFields: []string{"score", "regime"},
		},
	}
}

func TestFactID(t *testing.T) {
	date := time.Date(2026, time.June, 14, 0, 0, 0, 0, time.UTC)
	if got := FactID(truth.DimensionWeather, date, ""); got != "weather:2026-06-14" {
		t.Errorf("got %q", got)
	}
	if got := FactID(truth.DimensionCalendar, date, "absent"); got != "calendar:2026-06-14:absent" {
		t.Errorf("got %q", got)
	}
}

func TestAssertGroundedRejectsEmptyFactIDs(t *testing.T) {
	items := []LineItem{{Kind: LineFact, TemplateID: TplFactSignal}}
	err := AssertGrounded(makeFacts(), items)
	if err == nil {
		t.Fatal("expected a contract violation for a line without facts")
	}
	var cv *ContractViolation
	if !errors.As(err, &cv) {
		t.Fatalf("expected ContractViolation, got %T", err)
	}
}

func TestAssertGroundedRejectsUnknownFact(t *testing.T) {
	items := []LineItem{{
		Kind:       LineFact,
		TemplateID: TplFactSignal,
		FactIDs:    []string{"weather:2026-06-14", "weather:2026-06-15"},
	}}
	if err := AssertGrounded(makeFacts(), items); err == nil {
		t.Fatal("expected a contract violation for an unknown fact id")
	}
}

func TestRender(t *testing.T) {
	facts := makeFacts()
	items := []LineItem{
		{
			Kind:       LineHeadline,
			TemplateID: TplHeadlineDayWhy,
			FactIDs:    []string{"score:2026-06-14"},
			Params:     map[string]string{"date": "14 juin 2026"},
		},
		{
			Kind:       LineFact,
			TemplateID: TplFactSignal,
			FactIDs:    []string{"weather:2026-06-14"},
		},
	}
	lines, err := Render(facts, items)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("lines: got %d, want 2", len(lines))
	}
	if !strings.Contains(lines[0].Text, "14 juin 2026") {
		t.Errorf("headline: got %q", lines[0].Text)
	}
	if lines[1].Text != "probabilité de pluie 40%" {
		t.Errorf("fact line: got %q", lines[1].Text)
	}
	if lines[1].FactIDs[0] != "weather:2026-06-14" {
		t.Errorf("fact ids must survive rendering, got %v", lines[1].FactIDs)
	}
}

func TestRenderRejectsUnknownTemplate(t *testing.T) {
	items := []LineItem{{
		Kind:       LineFact,
		TemplateID: "fact.free_form",
		FactIDs:    []string{"weather:2026-06-14"},
	}}
	if _, err := Render(makeFacts(), items); err == nil {
		t.Fatal("expected a contract violation for an unregistered template")
	}
}
