package signal

import (
	"testing"
	"time"

	"github.com/mbastide/calendis/internal/truth"
)

func f(v float64) *float64 { return &v }
func ip(v int) *int        { return &v }
func bp(v bool) *bool      { return &v }

func makeRow() truth.TruthRow {
	return truth.TruthRow{
		Location: "loc-1",
		Date:     time.Date(2026, time.June, 14, 0, 0, 0, 0, time.UTC),
	}
}

var outdoorProfile = truth.BusinessProfile{
	Location: "loc-1", Category: "restaurant", Segment: "bistrot",
	Description: "bistrot avec terrasse",
}

var indoorProfile = truth.BusinessProfile{
	Location: "loc-2", Category: "culture", Segment: "cinema",
	Description: "salle de projection",
}

func TestInferExposure(t *testing.T) {
	tests := []struct {
		name    string
		profile truth.BusinessProfile
		want    Exposure
	}{
		{"terrasse-outdoor", outdoorProfile, ExposureOutdoor},
		{"salle-indoor", indoorProfile, ExposureIndoor},
		{"indoor-token-wins", truth.BusinessProfile{Description: "marché couvert"}, ExposureIndoor},
		{"no-token", truth.BusinessProfile{Category: "commerce"}, ExposureUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InferExposure(tt.profile)
			if got.Exposure != tt.want {
				t.Errorf("exposure: got %q, want %q", got.Exposure, tt.want)
			}
			if tt.want != ExposureUnknown && got.Basis == "" {
				t.Error("expected a basis token for an asserted exposure")
			}
		})
	}
}

func TestWeatherSignal(t *testing.T) {
	t.Run("all-nil-is-inapplicable", func(t *testing.T) {
		row := makeRow()
		sig := Derive(row, outdoorProfile, []truth.Dimension{truth.DimensionWeather})[truth.DimensionWeather]
		if sig.Applicable {
			t.Error("expected inapplicable signal when every weather field is null")
		}
	})

	t.Run("alert-3-blocks", func(t *testing.T) {
		row := makeRow()
		row.AlertLevel = ip(3)
		sig := Derive(row, indoorProfile, []truth.Dimension{truth.DimensionWeather})[truth.DimensionWeather]
		if sig.Impact != ImpactBlocking {
			t.Errorf("impact: got %q, want blocking", sig.Impact)
		}
	})

	t.Run("outdoor-rain-is-risk", func(t *testing.T) {
		row := makeRow()
		row.AlertLevel = ip(0)
		row.PrecipProb = f(40)
		sig := Derive(row, outdoorProfile, []truth.Dimension{truth.DimensionWeather})[truth.DimensionWeather]
		if sig.Impact != ImpactRisk {
			t.Errorf("impact: got %q, want risk", sig.Impact)
		}
	})

	t.Run("indoor-rain-is-neutral", func(t *testing.T) {
		row := makeRow()
		row.AlertLevel = ip(0)
		row.PrecipProb = f(40)
		sig := Derive(row, indoorProfile, []truth.Dimension{truth.DimensionWeather})[truth.DimensionWeather]
		if sig.Impact != ImpactNeutral {
			t.Errorf("impact: got %q, want neutral", sig.Impact)
		}
	})

	t.Run("indoor-alert-1-is-risk", func(t *testing.T) {
		row := makeRow()
		row.AlertLevel = ip(1)
		sig := Derive(row, indoorProfile, []truth.Dimension{truth.DimensionWeather})[truth.DimensionWeather]
		if sig.Impact != ImpactRisk {
			t.Errorf("impact: got %q, want risk", sig.Impact)
		}
	})

	t.Run("explanation-only-from-present-fields", func(t *testing.T) {
		row := makeRow()
		row.PrecipProb = f(40)
		sig := Derive(row, outdoorProfile, []truth.Dimension{truth.DimensionWeather})[truth.DimensionWeather]
		if sig.Explanation != "probabilité de pluie 40%" {
			t.Errorf("explanation: got %q", sig.Explanation)
		}
		if v, ok := sig.Facts["alert_level"]; !ok || v != nil {
			t.Errorf("alert_level fact: got %v, want explicit nil", v)
		}
	})
}

func TestCompetitionSignal(t *testing.T) {
	t.Run("all-nil-is-inapplicable", func(t *testing.T) {
		row := makeRow()
		sig := Derive(row, outdoorProfile, []truth.Dimension{truth.DimensionCompetition})[truth.DimensionCompetition]
		if sig.Applicable {
			t.Error("expected inapplicable signal")
		}
	})

	t.Run("local-events-are-risk", func(t *testing.T) {
		row := makeRow()
		row.EventsWithin5Km = ip(2)
		sig := Derive(row, outdoorProfile, []truth.Dimension{truth.DimensionCompetition})[truth.DimensionCompetition]
		if sig.Impact != ImpactRisk {
			t.Errorf("impact: got %q, want risk", sig.Impact)
		}
		if sig.Facts["scope"] != "local" {
			t.Errorf("scope: got %v, want local", sig.Facts["scope"])
		}
	})

	t.Run("regional-only", func(t *testing.T) {
		row := makeRow()
		row.EventsWithin5Km = ip(0)
		row.EventsWithin10Km = ip(0)
		row.EventsWithin50Km = ip(3)
		sig := Derive(row, outdoorProfile, []truth.Dimension{truth.DimensionCompetition})[truth.DimensionCompetition]
		if sig.Facts["scope"] != "regional" {
			t.Errorf("scope: got %v, want regional", sig.Facts["scope"])
		}
	})

	t.Run("all-zero-is-neutral", func(t *testing.T) {
		row := makeRow()
		row.EventsWithin5Km = ip(0)
		row.EventsWithin10Km = ip(0)
		row.EventsWithin50Km = ip(0)
		sig := Derive(row, outdoorProfile, []truth.Dimension{truth.DimensionCompetition})[truth.DimensionCompetition]
		if sig.Impact != ImpactNeutral {
			t.Errorf("impact: got %q, want neutral", sig.Impact)
		}
		if sig.Explanation != "aucun événement concurrent recensé" {
			t.Errorf("explanation: got %q", sig.Explanation)
		}
	})
}

func TestCalendarSignal(t *testing.T) {
	t.Run("all-nil-is-inapplicable", func(t *testing.T) {
		row := makeRow()
		sig := Derive(row, outdoorProfile, []truth.Dimension{truth.DimensionCalendar})[truth.DimensionCalendar]
		if sig.Applicable {
			t.Error("expected inapplicable signal")
		}
	})

	t.Run("weekend-is-risk", func(t *testing.T) {
		row := makeRow()
		row.Weekend = bp(true)
		row.PublicHoliday = bp(false)
		sig := Derive(row, outdoorProfile, []truth.Dimension{truth.DimensionCalendar})[truth.DimensionCalendar]
		if sig.Impact != ImpactRisk {
			t.Errorf("impact: got %q, want risk", sig.Impact)
		}
		if len(sig.PrimaryDrivers) != 1 || sig.PrimaryDrivers[0] != DriverWeekend {
			t.Errorf("drivers: got %v, want [weekend]", sig.PrimaryDrivers)
		}
	})

	t.Run("all-false-is-neutral", func(t *testing.T) {
		row := makeRow()
		row.Weekend = bp(false)
		row.PublicHoliday = bp(false)
		row.SchoolHoliday = bp(false)
		row.CommercialEvent = bp(false)
		sig := Derive(row, outdoorProfile, []truth.Dimension{truth.DimensionCalendar})[truth.DimensionCalendar]
		if sig.Impact != ImpactNeutral {
			t.Errorf("impact: got %q, want neutral", sig.Impact)
		}
	})
}

func TestDeriveUnsupportedDimensions(t *testing.T) {
	row := makeRow()
	row.AlertLevel = ip(0)
	sigs := Derive(row, outdoorProfile, []truth.Dimension{truth.DimensionTourism, truth.DimensionMobility})
	for dim, sig := range sigs {
		if sig.Applicable {
			t.Errorf("%s: expected inapplicable, store carries no raw fields for it", dim)
		}
	}
}

func TestDeriveDefaultDimensions(t *testing.T) {
	row := makeRow()
	row.AlertLevel = ip(0)
	sigs := Derive(row, outdoorProfile, nil)
	if len(sigs) != 3 {
		t.Fatalf("signals: got %d, want 3 defaults", len(sigs))
	}
	for _, dim := range DefaultDimensions() {
		if _, ok := sigs[dim]; !ok {
			t.Errorf("missing default dimension %s", dim)
		}
	}
}
