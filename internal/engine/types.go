package engine

import (
	"time"

	"github.com/mbastide/calendis/internal/interpret"
	"github.com/mbastide/calendis/internal/signal"
	"github.com/mbastide/calendis/internal/thread"
	"github.com/mbastide/calendis/internal/truth"
)

// #region query

// Query is one caller request. Immutable and request-scoped.
type Query struct {
	Text     string          `json:"text"`
	Location string          `json:"location"`
	Anchor   time.Time       `json:"anchor,omitempty"` // zero = now
	Thread   *thread.Context `json:"thread_context,omitempty"`
}

// #endregion query

// #region decision-payload

// DecisionPayload is the canonical, auditable record of what was decided and
// why. Downstream consumers read it; nobody re-derives it.
type DecisionPayload struct {
	Kind      string                                    `json:"kind"` // "scoring" | "lookup"
	Horizon   interpret.Horizon                         `json:"horizon"`
	Intent    interpret.Intent                          `json:"intent"`
	UsedDates []string                                  `json:"used_dates"`
	Signals   map[truth.Dimension]signal.DecisionSignal `json:"signals,omitempty"`
}

// #endregion decision-payload

// #region response

// Actions are deterministic follow-up suggestions, never generated text.
type Actions struct {
	Primary   string   `json:"primary,omitempty"`
	Secondary []string `json:"secondary,omitempty"`
}

// Meta echoes the request's resolution.
type Meta struct {
	Horizon   interpret.Horizon `json:"horizon"`
	Intent    interpret.Intent  `json:"intent"`
	UsedDates []string          `json:"used_dates"`
}

// Response is the caller-facing answer shape.
type Response struct {
	Headline string   `json:"headline"`
	Answer   string   `json:"answer"`
	Reasons  []string `json:"reasons,omitempty"`
	KeyFacts []string `json:"key_facts,omitempty"`
	Actions  Actions  `json:"actions"`
	Caveats  []string `json:"caveats,omitempty"`
	Meta     Meta     `json:"meta"`

	DecisionPayload DecisionPayload `json:"decision_payload"`
	Thread          thread.Context  `json:"thread_context"`

	// AnswerSource is "generated" or "deterministic"; surfaced for audit.
	AnswerSource string `json:"answer_source"`
}

// #endregion response
