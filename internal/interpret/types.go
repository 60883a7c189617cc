package interpret

import (
	"time"

	"github.com/mbastide/calendis/internal/truth"
)

// #region horizon

// Horizon is the time scope a query resolves to.
type Horizon string

const (
	HorizonDay           Horizon = "day"
	HorizonMonth         Horizon = "month"
	HorizonCalendarMonth Horizon = "calendar_month"
	HorizonSelectedDays  Horizon = "selected_days"
	HorizonLookupEvent   Horizon = "lookup_event"
)

// #endregion horizon

// #region intent

// Intent is the closed category of what the user wants.
type Intent string

const (
	IntentTopDays          Intent = "WINDOW_TOP_DAYS"
	IntentWorstDays        Intent = "WINDOW_WORST_DAYS"
	IntentFilterDays       Intent = "WINDOW_FILTER_DAYS"
	IntentPatterns         Intent = "WINDOW_PATTERNS"
	IntentCombinedTradeoff Intent = "WINDOW_COMBINED_TRADEOFF"
	IntentDayWhy           Intent = "DAY_WHY"
	IntentDayDimension     Intent = "DAY_DIMENSION_DETAIL"
	IntentCompareDates     Intent = "COMPARE_DATES"
	IntentDriverPrimary    Intent = "DRIVER_PRIMARY"
	IntentEventLookup      Intent = "EVENT_LOOKUP"
)

// #endregion intent

// #region result

// Result is the structured reading of one query.
type Result struct {
	Horizon      Horizon
	Intent       Intent
	Dates        []time.Time
	SelectedDate *time.Time

	// K is the requested shortlist size; 0 means "not specified".
	K int

	// Dimensions are the explicitly named dimensions, in mention order.
	Dimensions []truth.Dimension

	// CalendarMonth/CalendarYear are set when Horizon is calendar_month.
	CalendarMonth time.Month
	CalendarYear  int
}

// #endregion result
