package truth

import (
	"context"
	"fmt"
	"time"
)

// #region decision-entry

// DecisionEntry is one row of the decision_log table: the auditable record of
// what a request decided and how the answer was produced.
type DecisionEntry struct {
	RequestID    string
	Location     string
	Horizon      string
	Intent       string
	UsedDates    string // comma-joined YYYY-MM-DD
	PayloadJSON  string
	AnswerSource string // "deterministic" | "generated"
	CaveatCount  int
	CreatedAt    time.Time
}

// #endregion decision-entry

// #region log-decision

// LogDecision appends a decision entry. Best-effort from the caller's side:
// the engine logs failures but never fails a request over them.
func (s *Store) LogDecision(ctx context.Context, e DecisionEntry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO decision_log (request_id, location, horizon, intent, used_dates, payload_json, answer_source, caveat_count, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.RequestID, e.Location, e.Horizon, e.Intent,
		nullIfEmpty(e.UsedDates), nullIfEmpty(e.PayloadJSON),
		e.AnswerSource, e.CaveatCount,
		e.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log decision: %w", err)
	}
	return nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// #endregion log-decision
