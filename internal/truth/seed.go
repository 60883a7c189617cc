package truth

import (
	"context"
	"fmt"
)

// #region insert-row

// InsertRow writes a truth row. Used by the seed command and tests only;
// the query pipeline never calls it.
func (s *Store) InsertRow(ctx context.Context, r TruthRow) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO truth_rows (`+rowColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Location, r.Date.Format("2006-01-02"),
		nilable(r.Score), nilableRegime(r.Regime), nilable(r.AlertLevel),
		nilable(r.PrecipProb), nilable(r.WindSpeed),
		nilable(r.EventsWithin5Km), nilable(r.EventsWithin10Km), nilable(r.EventsWithin50Km),
		nilable(r.Weekend), nilable(r.PublicHoliday), nilable(r.SchoolHoliday), nilable(r.CommercialEvent),
	)
	if err != nil {
		return fmt.Errorf("insert row %s/%s: %w", r.Location, r.DateKey(), err)
	}
	return nil
}

// #endregion insert-row

// #region insert-profile

// InsertProfile writes a business profile.
func (s *Store) InsertProfile(ctx context.Context, p BusinessProfile) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO business_profiles (location, name, category, segment, description)
		 VALUES (?, ?, ?, ?, ?)`,
		p.Location, p.Name, p.Category, p.Segment, p.Description,
	)
	if err != nil {
		return fmt.Errorf("insert profile %s: %w", p.Location, err)
	}
	return nil
}

// #endregion insert-profile

// #region insert-rule

// InsertRule writes a policy rule.
func (s *Store) InsertRule(ctx context.Context, r PolicyRule) error {
	dims := ""
	for i, d := range r.PriorityDimensions {
		if i > 0 {
			dims += ","
		}
		dims += string(d)
	}
	constraints := ""
	for i, c := range r.AutoConstraints {
		if i > 0 {
			constraints += ","
		}
		constraints += c
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO policy_rules (rule_key, rule_value, priority_dimensions, auto_constraints)
		 VALUES (?, ?, ?, ?)`,
		r.RuleKey, r.RuleValue, dims, constraints,
	)
	if err != nil {
		return fmt.Errorf("insert rule %s=%s: %w", r.RuleKey, r.RuleValue, err)
	}
	return nil
}

// #endregion insert-rule

// #region helpers

// nilable converts a typed pointer to a driver-friendly value, nil staying nil.
func nilable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func nilableRegime(r Regime) any {
	if r == "" {
		return nil
	}
	return string(r)
}

// #endregion helpers
