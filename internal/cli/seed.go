package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mbastide/calendis/internal/config"
	"github.com/mbastide/calendis/internal/truth"
)

// #region seed

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Charge un jeu de données de démonstration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			return runSeed(cfg)
		},
	}
}

func runSeed(cfg config.Config) error {
	store, err := truthStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	const location = "lyon-bistrot-01"

	if err := store.InsertProfile(ctx, truth.BusinessProfile{
		Location:    location,
		Name:        "Le Bistrot des Pentes",
		Category:    "restaurant",
		Segment:     "bistrot",
		Description: "bistrot avec grande terrasse ombragée en pente de la Croix-Rousse",
	}); err != nil {
		return err
	}

	rules := []truth.PolicyRule{
		{
			RuleKey:            "category",
			RuleValue:          "restaurant",
			PriorityDimensions: []truth.Dimension{truth.DimensionWeather, truth.DimensionCalendar, truth.DimensionCompetition},
			AutoConstraints:    []string{"exclude_alert_days"},
		},
		{
			RuleKey:            "segment",
			RuleValue:          "bistrot",
			PriorityDimensions: []truth.Dimension{truth.DimensionWeather, truth.DimensionCompetition, truth.DimensionCalendar},
			AutoConstraints:    []string{"exclude_alert_days", "exclude_commercial_events"},
		},
	}
	for _, r := range rules {
		if err := store.InsertRule(ctx, r); err != nil {
			return err
		}
	}

	n, err := seedJune2026(ctx, store, location)
	if err != nil {
		return err
	}
	fmt.Printf("seed: %d lignes de vérité écrites pour %s\n", n, location)
	return nil
}

// seedJune2026 writes one month of plausible rows: clear favorable stretches,
// a storm mid-month, a fair weekend, and a few null-heavy days.
func seedJune2026(ctx context.Context, store *truth.Store, location string) (int, error) {
	f := func(v float64) *float64 { return &v }
	i := func(v int) *int { return &v }
	b := func(v bool) *bool { return &v }

	count := 0
	for day := 1; day <= 30; day++ {
		date := time.Date(2026, time.June, day, 0, 0, 0, 0, time.UTC)
		weekday := date.Weekday()
		weekend := weekday == time.Saturday || weekday == time.Sunday

		row := truth.TruthRow{
			Location:   location,
			Date:       date,
			Score:      f(60 + float64((day*7)%35)),
			Regime:     truth.RegimeB,
			AlertLevel: i(0),
			PrecipProb: f(float64((day * 13) % 40)),
			WindSpeed:  f(float64(10 + (day*3)%20)),

			EventsWithin5Km:  i(0),
			EventsWithin10Km: i((day % 9) / 4),
			EventsWithin50Km: i(day % 3),

			Weekend:         b(weekend),
			PublicHoliday:   b(false),
			SchoolHoliday:   b(false),
			CommercialEvent: b(false),
		}

		switch {
		case day >= 5 && day <= 8:
			// favorable run
			row.Regime = truth.RegimeA
			row.Score = f(88 + float64(day-5))
			row.PrecipProb = f(5)
			row.WindSpeed = f(8)
		case day >= 15 && day <= 16:
			// storm, strong alert
			row.Regime = truth.RegimeC
			row.Score = f(22)
			row.AlertLevel = i(3)
			row.PrecipProb = f(90)
			row.WindSpeed = f(70)
		case day == 21:
			// fête de la musique: commercial event, heavy competition
			row.CommercialEvent = b(true)
			row.EventsWithin5Km = i(4)
			row.EventsWithin10Km = i(11)
			row.EventsWithin50Km = i(30)
		case day == 27 || day == 28:
			// gaps in the ingest: tri-state unknowns
			row.Score = nil
			row.Regime = ""
			row.PrecipProb = nil
			row.WindSpeed = nil
			row.Weekend = nil
			row.PublicHoliday = nil
		}

		if err := store.InsertRow(ctx, row); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// #endregion seed
