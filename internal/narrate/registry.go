package narrate

import (
	"fmt"
	"strings"
)

// #region registry

// narrationSpec fixes the instruction text and the validator for one
// (mode, submode) pair. The registry is exhaustive: an unknown pair never
// reaches the generative service.
type narrationSpec struct {
	Instruction string
	Validate    func(n Narration, in Input) (ok bool, errors []string, warnings []string)
}

const instructionPreamble = "Tu rédiges en français une réponse courte pour un exploitant de lieu. " +
	"N'utilise QUE les champs du payload structuré fourni ; n'invente aucun chiffre, aucune date, aucune cause. " +
	"Réponds avec UN SEUL objet JSON {\"headline\", \"answer\", \"reasons\", \"caveats\"} et rien d'autre. "

var registry = map[Mode]map[Submode]narrationSpec{
	ModeScoring: {
		SubBestDays: {
			Instruction: instructionPreamble + "Présente les meilleurs jours listés dans rows, dans cet ordre, avec leur raison principale.",
			Validate:    validateWindow,
		},
		SubWorstDays: {
			Instruction: instructionPreamble + "Présente les jours à éviter listés dans rows, dans cet ordre, en citant le facteur défavorable.",
			Validate:    validateWindow,
		},
		SubCompare: {
			Instruction: instructionPreamble + "Compare les dates de rows entre elles, une phrase par date, puis conclus laquelle est préférable.",
			Validate:    validateCompare,
		},
		SubDayWhy: {
			Instruction: instructionPreamble + "Explique ce que disent les données pour la date de focus, signal par signal.",
			Validate:    validateDay,
		},
		SubDayDimension: {
			Instruction: instructionPreamble + "Détaille uniquement la dimension demandée pour la date de focus.",
			Validate:    validateDay,
		},
		SubPatterns: {
			Instruction: instructionPreamble + "Décris les régularités visibles dans rows (séries de jours comparables), sans extrapoler au-delà des dates fournies.",
			Validate:    validateWindow,
		},
		SubTradeoff: {
			Instruction: instructionPreamble + "Présente le compromis entre les dimensions demandées pour les jours de rows.",
			Validate:    validateWindow,
		},
		SubFilter: {
			Instruction: instructionPreamble + "Présente les jours de rows qui passent le filtre demandé.",
			Validate:    validateWindow,
		},
		SubDriver: {
			Instruction: instructionPreamble + "Nomme le facteur qui pèse le plus sur la période, en citant les signaux fournis.",
			Validate:    validateWindow,
		},
	},
	ModeLookup: {
		SubEvent: {
			Instruction: instructionPreamble + "Liste ce qui est recensé pour la date de focus (événements, drapeaux calendaire), sans interprétation.",
			Validate:    validateDay,
		},
	},
}

// Lookup returns the spec for a (mode, submode) pair.
func Lookup(mode Mode, submode Submode) (narrationSpec, error) {
	subs, ok := registry[mode]
	if !ok {
		return narrationSpec{}, fmt.Errorf("unknown narration mode %q", mode)
	}
	spec, ok := subs[submode]
	if !ok {
		return narrationSpec{}, fmt.Errorf("unknown narration submode %q for mode %q", submode, mode)
	}
	return spec, nil
}

// #endregion registry

// #region validators

func validateCommon(n Narration) []string {
	var errs []string
	if strings.TrimSpace(n.Headline) == "" {
		errs = append(errs, "headline vide")
	}
	if strings.TrimSpace(n.Answer) == "" {
		errs = append(errs, "answer vide")
	}
	if len(n.Answer) > 1200 {
		errs = append(errs, "answer trop longue")
	}
	return errs
}

// validateWindow requires each answer date to come from the window rows.
func validateWindow(n Narration, in Input) (bool, []string, []string) {
	errs := validateCommon(n)
	var warns []string
	known := map[string]bool{}
	for _, r := range in.Window {
		known[r.DateKey()] = true
	}
	for _, d := range isoDatesIn(n.Headline + " " + n.Answer + " " + strings.Join(n.Reasons, " ")) {
		if !known[d] {
			errs = append(errs, fmt.Sprintf("date hors fenêtre: %s", d))
		}
	}
	if len(in.Window) > 0 && len(n.Reasons) == 0 {
		warns = append(warns, "aucune raison fournie")
	}
	return len(errs) == 0, errs, warns
}

// validateCompare additionally requires every window date to be mentioned.
func validateCompare(n Narration, in Input) (bool, []string, []string) {
	ok, errs, warns := validateWindow(n, in)
	text := n.Headline + " " + n.Answer
	for _, r := range in.Window {
		if !strings.Contains(text, r.DateKey()) && !strings.Contains(text, frenchDay(r.DateKey())) {
			errs = append(errs, fmt.Sprintf("date non traitée: %s", r.DateKey()))
			ok = false
		}
	}
	return ok, errs, warns
}

// validateDay requires the focus date to be named and no other date claimed.
func validateDay(n Narration, in Input) (bool, []string, []string) {
	errs := validateCommon(n)
	var warns []string
	if in.Focus == nil {
		return false, append(errs, "focus manquant"), warns
	}
	focus := in.Focus.DateKey()
	text := n.Headline + " " + n.Answer
	if !strings.Contains(text, focus) && !strings.Contains(text, frenchDay(focus)) {
		errs = append(errs, "la date de focus n'est pas nommée")
	}
	for _, d := range isoDatesIn(text) {
		if d != focus {
			errs = append(errs, fmt.Sprintf("date étrangère: %s", d))
		}
	}
	return len(errs) == 0, errs, warns
}

// #endregion validators
