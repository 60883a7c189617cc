package interpret

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mbastide/calendis/internal/truth"
)

// #region errors

// UnparseableDateError reports a date-like token that could not be read while
// the query was clearly about a specific day. The interpreter fails closed
// instead of substituting an unrelated anchor date.
type UnparseableDateError struct {
	Tokens []string
}

func (e *UnparseableDateError) Error() string {
	return fmt.Sprintf("date illisible: %s", strings.Join(e.Tokens, ", "))
}

// #endregion errors

// #region interpret

// Interpret resolves a free-text French query into horizon, intent, dates and
// shortlist size. anchor is "today" for relative and year-less dates.
func Interpret(text string, anchor time.Time) (Result, error) {
	lower := strings.ToLower(strings.TrimSpace(text))
	ex := ExtractDates(text, anchor)

	if len(ex.Dates) == 0 && len(ex.Bad) > 0 {
		return Result{}, &UnparseableDateError{Tokens: ex.Bad}
	}

	res := Result{
		K:          extractCount(lower),
		Dimensions: extractDimensions(lower),
	}

	res.Intent = classifyIntent(lower, ex, res.Dimensions)
	res.Horizon = resolveHorizon(lower, ex, res.Intent)

	switch res.Horizon {
	case HorizonSelectedDays:
		res.Dates = ex.Dates
	case HorizonDay, HorizonLookupEvent:
		switch {
		case len(ex.Dates) > 0:
			res.Dates = ex.Dates[:1]
			res.SelectedDate = &ex.Dates[0]
		case ex.Relative != nil:
			res.Dates = []time.Time{*ex.Relative}
			res.SelectedDate = ex.Relative
		}
	case HorizonCalendarMonth:
		res.CalendarMonth = ex.MonthMention
		res.CalendarYear = ex.MonthYear
	}

	return res, nil
}

// #endregion interpret

// #region horizon

// resolveHorizon applies the precedence ladder: multi-date/comparison, then
// single day, then named month, then rolling month.
func resolveHorizon(lower string, ex Extraction, intent Intent) Horizon {
	if intent == IntentEventLookup {
		return HorizonLookupEvent
	}
	if len(ex.Dates) >= 2 || containsAny(lower, comparisonKeywords) {
		return HorizonSelectedDays
	}
	if len(ex.Dates) == 1 || ex.Relative != nil || containsAny(lower, dayWhyKeywords) {
		return HorizonDay
	}
	if ex.MonthMention != 0 {
		return HorizonCalendarMonth
	}
	return HorizonMonth
}

// #endregion horizon

// #region intent

// classifyIntent is a deterministic ordered keyword classifier. The ladder
// order is load-bearing: earlier rules win.
func classifyIntent(lower string, ex Extraction, dims []truth.Dimension) Intent {
	hasDay := len(ex.Dates) == 1 || ex.Relative != nil

	switch {
	case containsAny(lower, eventLookupKeywords):
		return IntentEventLookup
	case containsAny(lower, comparisonKeywords):
		return IntentCompareDates
	case containsAny(lower, dimensionDetailKeywords) && len(dims) >= 1 && (hasDay || containsAny(lower, dayWhyKeywords)):
		return IntentDayDimension
	case containsAny(lower, dayWhyKeywords):
		return IntentDayWhy
	case containsAny(lower, driverKeywords):
		return IntentDriverPrimary
	case containsAny(lower, patternKeywords):
		return IntentPatterns
	case containsAny(lower, tradeoffKeywords):
		return IntentCombinedTradeoff
	case containsAny(lower, worstKeywords):
		return IntentWorstDays
	case containsAny(lower, filterVerbs) && len(dims) > 0:
		return IntentFilterDays
	case len(ex.Dates) >= 2:
		return IntentCompareDates
	case hasDay:
		return IntentDayWhy
	default:
		return IntentTopDays
	}
}

// #endregion intent

// #region count

var (
	digitCountRe = regexp.MustCompile(`\b(?:les\s+|top\s*)(\d)\b`)
	bestCountRe  = regexp.MustCompile(`\b(\d)\s+(?:meilleur|pire|bon|mauvais)`)
	wordCountRe  = regexp.MustCompile(`\bles\s+(un|une|deux|trois|quatre|cinq|six|sept)\s+(?:meilleur|pire)`)
)

// extractCount reads an explicit shortlist size ("les 2 meilleurs", "top 3").
// Returns 0 when unspecified; clamping to [1,7] is the ranking engine's job.
func extractCount(lower string) int {
	if m := wordCountRe.FindStringSubmatch(lower); m != nil {
		return frenchCounts[m[1]]
	}
	if m := bestCountRe.FindStringSubmatch(lower); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n
	}
	if m := digitCountRe.FindStringSubmatch(lower); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n
	}
	return 0
}

// #endregion count

// #region dimensions

// extractDimensions collects explicitly named dimensions in mention order.
func extractDimensions(lower string) []truth.Dimension {
	type hit struct {
		pos int
		dim truth.Dimension
	}
	var hits []hit
	found := map[truth.Dimension]bool{}
	for _, kw := range dimensionKeywords {
		pos := strings.Index(lower, kw.token)
		if pos < 0 || found[kw.dim] {
			continue
		}
		found[kw.dim] = true
		hits = append(hits, hit{pos: pos, dim: kw.dim})
	}
	for i := 0; i < len(hits); i++ {
		for j := i + 1; j < len(hits); j++ {
			if hits[j].pos < hits[i].pos {
				hits[i], hits[j] = hits[j], hits[i]
			}
		}
	}
	dims := make([]truth.Dimension, 0, len(hits))
	for _, h := range hits {
		dims = append(dims, h.dim)
	}
	return dims
}

// #endregion dimensions

// #region helpers

func containsAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// #endregion helpers
