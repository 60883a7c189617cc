package truth

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS truth_rows (
	location           TEXT NOT NULL,
	date               TEXT NOT NULL,
	score              REAL,
	regime             TEXT,
	alert_level        INTEGER,
	precip_prob        REAL,
	wind_speed         REAL,
	events_within_5km  INTEGER,
	events_within_10km INTEGER,
	events_within_50km INTEGER,
	weekend            INTEGER,
	public_holiday     INTEGER,
	school_holiday     INTEGER,
	commercial_event   INTEGER,
	PRIMARY KEY (location, date)
);

CREATE TABLE IF NOT EXISTS business_profiles (
	location    TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	category    TEXT,
	segment     TEXT,
	description TEXT
);

CREATE TABLE IF NOT EXISTS policy_rules (
	rule_key            TEXT NOT NULL,
	rule_value          TEXT NOT NULL,
	priority_dimensions TEXT NOT NULL,
	auto_constraints    TEXT,
	PRIMARY KEY (rule_key, rule_value)
);

CREATE TABLE IF NOT EXISTS decision_log (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	request_id    TEXT NOT NULL,
	location      TEXT NOT NULL,
	horizon       TEXT NOT NULL,
	intent        TEXT NOT NULL,
	used_dates    TEXT,
	payload_json  TEXT,
	answer_source TEXT,
	caveat_count  INTEGER,
	created_at    TEXT NOT NULL
);
`

// #endregion schema

// #region store

// Store is the read-only view over the analytical SQLite database, plus the
// append-only decision log. The engine never mutates truth rows.
type Store struct {
	db *sql.DB
}

// NewStore opens the analytical database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB.
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion store

// #region day

// ErrNoRow reports an absent truth row or profile.
var ErrNoRow = sql.ErrNoRows

const rowColumns = `location, date, score, regime, alert_level, precip_prob, wind_speed,
	events_within_5km, events_within_10km, events_within_50km,
	weekend, public_holiday, school_holiday, commercial_event`

// Day fetches the truth row for a single (location, date).
func (s *Store) Day(ctx context.Context, location string, date time.Time) (TruthRow, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+rowColumns+` FROM truth_rows WHERE location = ? AND date = ?`,
		location, date.Format("2006-01-02"),
	)
	rec, err := scanRow(row)
	if err != nil {
		return TruthRow{}, fmt.Errorf("day %s/%s: %w", location, date.Format("2006-01-02"), err)
	}
	return rec, nil
}

// #endregion day

// #region range

// Range fetches truth rows for [from, to] inclusive, ordered by date.
func (s *Store) Range(ctx context.Context, location string, from, to time.Time) ([]TruthRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+rowColumns+` FROM truth_rows
		 WHERE location = ? AND date >= ? AND date <= ?
		 ORDER BY date ASC`,
		location, from.Format("2006-01-02"), to.Format("2006-01-02"),
	)
	if err != nil {
		return nil, fmt.Errorf("range query: %w", err)
	}
	defer rows.Close()
	return scanRows(rows)
}

// SelectedDays fetches the truth rows for an explicit date set, ordered by date.
// Dates with no row are simply absent from the result.
func (s *Store) SelectedDays(ctx context.Context, location string, dates []time.Time) ([]TruthRow, error) {
	if len(dates) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(dates)), ",")
	args := make([]any, 0, len(dates)+1)
	args = append(args, location)
	for _, d := range dates {
		args = append(args, d.Format("2006-01-02"))
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+rowColumns+` FROM truth_rows
		 WHERE location = ? AND date IN (`+placeholders+`)
		 ORDER BY date ASC`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("selected days query: %w", err)
	}
	defer rows.Close()
	return scanRows(rows)
}

// #endregion range

// #region profile

// Profile fetches the business profile for a location.
func (s *Store) Profile(ctx context.Context, location string) (BusinessProfile, error) {
	var p BusinessProfile
	var category, segment, description sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT location, name, category, segment, description
		 FROM business_profiles WHERE location = ?`, location,
	).Scan(&p.Location, &p.Name, &category, &segment, &description)
	if err != nil {
		return BusinessProfile{}, fmt.Errorf("profile %s: %w", location, err)
	}
	p.Category = category.String
	p.Segment = segment.String
	p.Description = description.String
	return p, nil
}

// #endregion profile

// #region rules

// Rules fetches all policy rules, ordered for deterministic matching.
func (s *Store) Rules(ctx context.Context) ([]PolicyRule, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT rule_key, rule_value, priority_dimensions, auto_constraints
		 FROM policy_rules ORDER BY rule_key ASC, rule_value ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("rules query: %w", err)
	}
	defer rows.Close()

	var out []PolicyRule
	for rows.Next() {
		var r PolicyRule
		var dims string
		var constraints sql.NullString
		if err := rows.Scan(&r.RuleKey, &r.RuleValue, &dims, &constraints); err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		for _, d := range strings.Split(dims, ",") {
			if d = strings.TrimSpace(d); d != "" {
				r.PriorityDimensions = append(r.PriorityDimensions, Dimension(d))
			}
		}
		if constraints.Valid {
			for _, c := range strings.Split(constraints.String, ",") {
				if c = strings.TrimSpace(c); c != "" {
					r.AutoConstraints = append(r.AutoConstraints, c)
				}
			}
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// #endregion rules

// #region scan-helpers

type scannable interface {
	Scan(dest ...any) error
}

func scanRow(row scannable) (TruthRow, error) {
	var rec TruthRow
	var dateStr string
	var regime sql.NullString
	var score, precip, wind sql.NullFloat64
	var alert, c5, c10, c50 sql.NullInt64
	var weekend, holiday, school, commercial sql.NullBool

	err := row.Scan(
		&rec.Location, &dateStr, &score, &regime, &alert, &precip, &wind,
		&c5, &c10, &c50, &weekend, &holiday, &school, &commercial,
	)
	if err != nil {
		return TruthRow{}, err
	}

	rec.Date, err = time.Parse("2006-01-02", dateStr)
	if err != nil {
		return TruthRow{}, fmt.Errorf("parse date %q: %w", dateStr, err)
	}
	if score.Valid {
		rec.Score = &score.Float64
	}
	if regime.Valid {
		rec.Regime = Regime(regime.String)
	}
	if alert.Valid {
		v := int(alert.Int64)
		rec.AlertLevel = &v
	}
	if precip.Valid {
		rec.PrecipProb = &precip.Float64
	}
	if wind.Valid {
		rec.WindSpeed = &wind.Float64
	}
	if c5.Valid {
		v := int(c5.Int64)
		rec.EventsWithin5Km = &v
	}
	if c10.Valid {
		v := int(c10.Int64)
		rec.EventsWithin10Km = &v
	}
	if c50.Valid {
		v := int(c50.Int64)
		rec.EventsWithin50Km = &v
	}
	if weekend.Valid {
		rec.Weekend = &weekend.Bool
	}
	if holiday.Valid {
		rec.PublicHoliday = &holiday.Bool
	}
	if school.Valid {
		rec.SchoolHoliday = &school.Bool
	}
	if commercial.Valid {
		rec.CommercialEvent = &commercial.Bool
	}
	return rec, nil
}

func scanRows(rows *sql.Rows) ([]TruthRow, error) {
	var out []TruthRow
	for rows.Next() {
		rec, err := scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// #endregion scan-helpers
