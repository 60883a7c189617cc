package narrate

import (
	"github.com/mbastide/calendis/internal/signal"
	"github.com/mbastide/calendis/internal/truth"
)

// #region mode

// Mode mirrors the decision payload kind.
type Mode string

const (
	ModeScoring Mode = "scoring"
	ModeLookup  Mode = "lookup"
)

// Submode selects the narration shape within a mode.
type Submode string

const (
	SubBestDays     Submode = "best_days"
	SubWorstDays    Submode = "worst_days"
	SubCompare      Submode = "compare"
	SubDayWhy       Submode = "day_why"
	SubDayDimension Submode = "day_dimension"
	SubPatterns     Submode = "patterns"
	SubTradeoff     Submode = "tradeoff"
	SubFilter       Submode = "filter"
	SubDriver       Submode = "driver"
	SubEvent        Submode = "event"
)

// #endregion mode

// #region narration

// Narration is the structured object the generative service must return.
type Narration struct {
	Headline string   `json:"headline"`
	Answer   string   `json:"answer"`
	Reasons  []string `json:"reasons,omitempty"`
	Caveats  []string `json:"caveats,omitempty"`
}

// #endregion narration

// #region input-result

// Input bundles everything one narration needs. FallbackHeadline and
// FallbackAnswer come from the deterministic render and are what the caller
// gets whenever the generative path is unavailable or untrustworthy.
type Input struct {
	Mode    Mode
	Submode Submode

	Focus   *truth.TruthRow
	Window  []truth.TruthRow
	Signals map[truth.Dimension]signal.DecisionSignal

	FallbackHeadline string
	FallbackAnswer   string
	FallbackReasons  []string
}

// Result is the narration outcome. OK is true on the fallback path too:
// generation trouble is never an error for the request.
type Result struct {
	OK       bool
	Source   string // "generated" | "deterministic"
	Headline string
	Answer   string
	Reasons  []string
	Errors   []string
	Warnings []string
}

// #endregion input-result
