package interpret

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// #region month-lexicon

var frenchMonths = map[string]time.Month{
	"janvier": time.January, "février": time.February, "fevrier": time.February,
	"mars": time.March, "avril": time.April, "mai": time.May,
	"juin": time.June, "juillet": time.July, "août": time.August, "aout": time.August,
	"septembre": time.September, "octobre": time.October,
	"novembre": time.November, "décembre": time.December, "decembre": time.December,
}

const monthAlternation = `janvier|février|fevrier|mars|avril|mai|juin|juillet|août|aout|septembre|octobre|novembre|décembre|decembre`

var frenchWeekdays = map[string]time.Weekday{
	"lundi": time.Monday, "mardi": time.Tuesday, "mercredi": time.Wednesday,
	"jeudi": time.Thursday, "vendredi": time.Friday,
	"samedi": time.Saturday, "dimanche": time.Sunday,
}

// #endregion month-lexicon

// #region regexes

var (
	isoRe = regexp.MustCompile(`\b(\d{4})-(\d{1,2})-(\d{1,2})\b`)

	// 12/06, 12/06/26, 12/06/2026 and the dotted variants
	numericSlashRe = regexp.MustCompile(`\b(\d{1,2})[/.](\d{1,2})(?:[/.](\d{4}|\d{2}))?\b`)

	// 12-06-2026 (dash form needs a year so it cannot shadow ISO)
	numericDashRe = regexp.MustCompile(`\b(\d{1,2})-(\d{1,2})-(\d{4}|\d{2})\b`)

	// "12 juin", "1er juin 2026", "12, 14 et 18 juin"
	frenchDateRe = regexp.MustCompile(
		`\b((?:\d{1,2}(?:er)?)(?:\s*(?:,|et)\s*(?:le\s+)?(?:\d{1,2}(?:er)?))*)\s+(` + monthAlternation + `)(?:\s+(\d{4}))?\b`)

	monthOnlyRe = regexp.MustCompile(`\b(` + monthAlternation + `)(?:\s+(\d{4}))?\b`)

	dayListSplitRe = regexp.MustCompile(`\s*(?:,|\bet\b)\s*`)

	weekdayRe = regexp.MustCompile(`\b(lundi|mardi|mercredi|jeudi|vendredi|samedi|dimanche)(\s+prochain)?\b`)
)

// #endregion regexes

// #region extraction

// Extraction is the raw date reading of a query text.
type Extraction struct {
	Dates []time.Time
	Bad   []string // date-like tokens that failed to parse

	// MonthMention is set when a month name appears without a day number.
	MonthMention time.Month
	MonthYear    int

	// Relative is set for "demain", "samedi prochain" and similar phrases.
	Relative *time.Time
}

// ExtractDates pulls every date expression out of text. Year-less dates are
// anchored: if the named month already passed relative to anchor, the date
// rolls to the same month next year.
func ExtractDates(text string, anchor time.Time) Extraction {
	lower := strings.ToLower(text)
	consumed := make([]bool, len(lower))
	var ex Extraction
	seen := map[string]bool{}

	add := func(t time.Time) {
		key := t.Format("2006-01-02")
		if !seen[key] {
			seen[key] = true
			ex.Dates = append(ex.Dates, t)
		}
	}
	mark := func(lo, hi int) {
		for i := lo; i < hi && i < len(consumed); i++ {
			consumed[i] = true
		}
	}

	// ISO first: unambiguous, and the dash-numeric form must not re-read it.
	for _, m := range isoRe.FindAllStringSubmatchIndex(lower, -1) {
		y, _ := strconv.Atoi(lower[m[2]:m[3]])
		mo, _ := strconv.Atoi(lower[m[4]:m[5]])
		d, _ := strconv.Atoi(lower[m[6]:m[7]])
		mark(m[0], m[1])
		if t, ok := makeDate(y, time.Month(mo), d); ok {
			add(t)
		} else {
			ex.Bad = append(ex.Bad, lower[m[0]:m[1]])
		}
	}

	// French natural-language forms, including day lists before the month.
	for _, m := range frenchDateRe.FindAllStringSubmatchIndex(lower, -1) {
		if overlaps(consumed, m[0], m[1]) {
			continue
		}
		dayList := lower[m[2]:m[3]]
		month := frenchMonths[lower[m[4]:m[5]]]
		year := 0
		if m[6] >= 0 {
			year, _ = strconv.Atoi(lower[m[6]:m[7]])
		}
		mark(m[0], m[1])
		for _, tok := range dayListSplitRe.Split(dayList, -1) {
			tok = strings.TrimSpace(strings.TrimPrefix(tok, "le "))
			tok = strings.TrimSuffix(tok, "er")
			if tok == "" {
				continue
			}
			d, err := strconv.Atoi(tok)
			if err != nil {
				continue
			}
			y := year
			if y == 0 {
				y = inferYear(month, anchor)
			}
			if t, ok := makeDate(y, month, d); ok {
				add(t)
			} else {
				ex.Bad = append(ex.Bad, tok+" "+lower[m[4]:m[5]])
			}
		}
	}

	// Numeric forms.
	for _, m := range numericSlashRe.FindAllStringSubmatchIndex(lower, -1) {
		if overlaps(consumed, m[0], m[1]) {
			continue
		}
		d, _ := strconv.Atoi(lower[m[2]:m[3]])
		mo, _ := strconv.Atoi(lower[m[4]:m[5]])
		year := 0
		if m[6] >= 0 {
			year, _ = strconv.Atoi(lower[m[6]:m[7]])
			if year < 100 {
				year += 2000
			}
		}
		mark(m[0], m[1])
		addNumeric(&ex, add, d, mo, year, anchor, lower[m[0]:m[1]])
	}
	for _, m := range numericDashRe.FindAllStringSubmatchIndex(lower, -1) {
		if overlaps(consumed, m[0], m[1]) {
			continue
		}
		d, _ := strconv.Atoi(lower[m[2]:m[3]])
		mo, _ := strconv.Atoi(lower[m[4]:m[5]])
		year, _ := strconv.Atoi(lower[m[6]:m[7]])
		if year < 100 {
			year += 2000
		}
		mark(m[0], m[1])
		addNumeric(&ex, add, d, mo, year, anchor, lower[m[0]:m[1]])
	}

	// Month mention without a day, e.g. "en juin": calendar-month constraint.
	for _, m := range monthOnlyRe.FindAllStringSubmatchIndex(lower, -1) {
		if overlaps(consumed, m[0], m[1]) {
			continue
		}
		month := frenchMonths[lower[m[2]:m[3]]]
		ex.MonthMention = month
		if m[4] >= 0 {
			ex.MonthYear, _ = strconv.Atoi(lower[m[4]:m[5]])
		} else {
			ex.MonthYear = inferYear(month, anchor)
		}
		mark(m[0], m[1])
		break
	}

	// Relative phrases resolve against the anchor.
	if t, ok := resolveRelative(lower, anchor); ok {
		ex.Relative = &t
	}

	sort.Slice(ex.Dates, func(i, j int) bool { return ex.Dates[i].Before(ex.Dates[j]) })
	return ex
}

// #endregion extraction

// #region helpers

func addNumeric(ex *Extraction, add func(time.Time), d, mo, year int, anchor time.Time, raw string) {
	if mo < 1 || mo > 12 {
		ex.Bad = append(ex.Bad, raw)
		return
	}
	y := year
	if y == 0 {
		y = inferYear(time.Month(mo), anchor)
	}
	if t, ok := makeDate(y, time.Month(mo), d); ok {
		add(t)
	} else {
		ex.Bad = append(ex.Bad, raw)
	}
}

// makeDate builds a date and rejects impossible day/month combinations
// (time.Date would silently normalize "32 juin" into July).
func makeDate(y int, m time.Month, d int) (time.Time, bool) {
	if d < 1 || d > 31 || m < time.January || m > time.December || y < 2000 || y > 2100 {
		return time.Time{}, false
	}
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	if t.Day() != d || t.Month() != m {
		return time.Time{}, false
	}
	return t, true
}

// inferYear anchors a year-less month: roll to next year once the month has
// passed relative to the anchor.
func inferYear(m time.Month, anchor time.Time) int {
	if m < anchor.Month() {
		return anchor.Year() + 1
	}
	return anchor.Year()
}

func overlaps(consumed []bool, lo, hi int) bool {
	for i := lo; i < hi && i < len(consumed); i++ {
		if consumed[i] {
			return true
		}
	}
	return false
}

// resolveRelative handles "demain", "après-demain" and weekday phrases.
func resolveRelative(lower string, anchor time.Time) (time.Time, bool) {
	day := anchor.Truncate(24 * time.Hour)
	if strings.Contains(lower, "après-demain") || strings.Contains(lower, "apres-demain") ||
		strings.Contains(lower, "après demain") || strings.Contains(lower, "apres demain") {
		return day.AddDate(0, 0, 2), true
	}
	if strings.Contains(lower, "demain") {
		return day.AddDate(0, 0, 1), true
	}
	if m := weekdayRe.FindStringSubmatch(lower); m != nil {
		target := frenchWeekdays[m[1]]
		ahead := (int(target) - int(day.Weekday()) + 7) % 7
		if ahead == 0 {
			ahead = 7
		}
		return day.AddDate(0, 0, ahead), true
	}
	return time.Time{}, false
}

// #endregion helpers
