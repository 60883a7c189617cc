package narrate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// #region fence

// StripFence removes one optional markdown code fence around the raw text.
// After stripping, a valid response starts with "{" and ends with "}";
// anything else is rejected outright, with no partial-JSON recovery.
func StripFence(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
		s = strings.TrimSpace(s)
	}
	if !strings.HasPrefix(s, "{") || !strings.HasSuffix(s, "}") {
		return "", false
	}
	return s, true
}

// #endregion fence

// #region denylist

// deniedPhrases are known-bad boilerplate the generative service produces
// under pressure. Any hit forces the deterministic fallback.
var deniedPhrases = []string{
	"en tant qu'ia",
	"en tant qu'assistant",
	"je ne peux pas",
	"je n'ai pas accès",
	"je n'ai pas acces",
	"mes données d'entraînement",
	"mes donnees d'entrainement",
	"d'après mes connaissances",
	"d'apres mes connaissances",
	"il fait toujours beau",
	"comme chacun sait",
	"n'hésitez pas à me demander",
	"n'hesitez pas a me demander",
}

func hitDenylist(n Narration) string {
	text := strings.ToLower(n.Headline + " " + n.Answer + " " + strings.Join(n.Reasons, " "))
	for _, p := range deniedPhrases {
		if strings.Contains(text, p) {
			return p
		}
	}
	return ""
}

// #endregion denylist

// #region numeric-reconciliation

var numberRe = regexp.MustCompile(`\d+`)

// Reconcile re-derives the countable facts from the rows and rejects any
// numeric claim in the narration that matches none of them. Digits from
// dates (day numbers, years) are permitted too, as are tiny ordinals.
func Reconcile(n Narration, in Input) error {
	permitted := map[int]bool{0: true, 1: true, 2: true, 3: true}

	rows := in.Window
	if in.Focus != nil {
		rows = append(rows, *in.Focus)
	}
	for _, r := range rows {
		permitted[r.Date.Day()] = true
		permitted[r.Date.Year()] = true
		permitted[int(r.Date.Month())] = true
		if r.Score != nil {
			permitted[int(*r.Score)] = true
			permitted[int(*r.Score+0.5)] = true
		}
		if r.AlertLevel != nil {
			permitted[*r.AlertLevel] = true
		}
		if r.PrecipProb != nil {
			permitted[int(*r.PrecipProb)] = true
			permitted[int(*r.PrecipProb+0.5)] = true
		}
		if r.WindSpeed != nil {
			permitted[int(*r.WindSpeed)] = true
			permitted[int(*r.WindSpeed+0.5)] = true
		}
		for _, c := range []*int{r.EventsWithin5Km, r.EventsWithin10Km, r.EventsWithin50Km} {
			if c != nil {
				permitted[*c] = true
			}
		}
	}
	// Radii named in the data model may legitimately appear in prose.
	permitted[5] = true
	permitted[10] = true
	permitted[50] = true

	text := n.Headline + " " + n.Answer + " " + strings.Join(n.Reasons, " ")
	for _, tok := range numberRe.FindAllString(text, -1) {
		v, err := strconv.Atoi(tok)
		if err != nil {
			continue
		}
		if !permitted[v] {
			return fmt.Errorf("chiffre non vérifiable dans la narration: %d", v)
		}
	}
	return nil
}

// #endregion numeric-reconciliation

// #region date-helpers

var isoInTextRe = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)

func isoDatesIn(text string) []string {
	return isoInTextRe.FindAllString(text, -1)
}

var frenchMonthNames = [...]string{"", "janvier", "février", "mars", "avril", "mai", "juin",
	"juillet", "août", "septembre", "octobre", "novembre", "décembre"}

// frenchDay renders an ISO date key as its French prose form ("2 juin 2026").
func frenchDay(isoKey string) string {
	t, err := time.Parse("2006-01-02", isoKey)
	if err != nil {
		return isoKey
	}
	return fmt.Sprintf("%d %s %d", t.Day(), frenchMonthNames[int(t.Month())], t.Year())
}

// #endregion date-helpers
