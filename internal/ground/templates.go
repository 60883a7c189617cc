package ground

import (
	"fmt"
	"strings"
)

// #region registry

// templateFn renders one line from its params and the labels of the facts it
// references. Pure: no clock, no randomness, no state.
type templateFn func(params map[string]string, labels []string) string

// Template ids. New answer shapes add an id here and a fixed function below;
// nothing else in the system may produce user-facing text.
const (
	TplHeadlineBestDays  = "headline.best_days"
	TplHeadlineWorstDays = "headline.worst_days"
	TplHeadlineDayWhy    = "headline.day_why"
	TplHeadlineCompare   = "headline.compare"
	TplHeadlineLookup    = "headline.lookup"
	TplHeadlinePatterns  = "headline.patterns"
	TplHeadlineDriver    = "headline.driver"
	TplFactDate          = "fact.date"
	TplFactSignal        = "fact.signal"
	TplImplicationAdvice = "implication.advice"
	TplCaveatRelaxed     = "caveat.constraint_relaxed"
	TplCaveatMissing     = "caveat.missing_data"
	TplCaveatEmptyPool   = "caveat.empty_pool"
)

var templates = map[string]templateFn{
	TplHeadlineBestDays: func(p map[string]string, _ []string) string {
		return fmt.Sprintf("Les %s meilleurs jours sur la période : %s", p["count"], p["dates"])
	},
	TplHeadlineWorstDays: func(p map[string]string, _ []string) string {
		return fmt.Sprintf("Jours à éviter sur la période : %s", p["dates"])
	},
	TplHeadlineDayWhy: func(p map[string]string, _ []string) string {
		return fmt.Sprintf("Le %s en un coup d'œil", p["date"])
	},
	TplHeadlineCompare: func(p map[string]string, _ []string) string {
		return fmt.Sprintf("Comparaison : %s", p["dates"])
	},
	TplHeadlineLookup: func(p map[string]string, _ []string) string {
		return fmt.Sprintf("Ce qui est recensé le %s", p["date"])
	},
	TplHeadlinePatterns: func(p map[string]string, _ []string) string {
		return fmt.Sprintf("Séries repérées sur la période : %s", p["summary"])
	},
	TplHeadlineDriver: func(p map[string]string, _ []string) string {
		return fmt.Sprintf("Facteur dominant sur la période : %s", p["dimension"])
	},
	TplFactDate: func(p map[string]string, labels []string) string {
		return fmt.Sprintf("%s — %s", p["date"], strings.Join(labels, " ; "))
	},
	TplFactSignal: func(_ map[string]string, labels []string) string {
		return strings.Join(labels, " ; ")
	},
	TplImplicationAdvice: func(p map[string]string, _ []string) string {
		return p["advice"]
	},
	TplCaveatRelaxed: func(p map[string]string, _ []string) string {
		return fmt.Sprintf("Contrainte assouplie pour ne pas vider la liste : %s", p["constraints"])
	},
	TplCaveatMissing: func(p map[string]string, _ []string) string {
		return fmt.Sprintf("Donnée indisponible pour %s : %s", p["date"], p["dimension"])
	},
	TplCaveatEmptyPool: func(p map[string]string, _ []string) string {
		return fmt.Sprintf("Aucun jour éligible sur la période %s : tous sont en régime défavorable ou sous vigilance forte", p["window"])
	},
}

// #endregion registry
