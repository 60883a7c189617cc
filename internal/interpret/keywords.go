package interpret

import "github.com/mbastide/calendis/internal/truth"

// The lexicons below are the whole of the language understanding: a closed,
// auditable keyword classifier, not a model. Accented and unaccented spellings
// are both listed because user input is unreliable about accents.

// #region intent-lexicons

var eventLookupKeywords = []string{
	"quel événement", "quel evenement", "quels événements", "quels evenements",
	"c'est quoi ce jour", "qu'est-ce qui se passe", "qu'est ce qui se passe",
	"qu'y a-t-il", "que se passe-t-il", "y a-t-il un événement", "y a-t-il un evenement",
}

var comparisonKeywords = []string{
	"compare", "comparer", "comparaison", "versus", " vs ", "plutôt que", "plutot que",
	"ou bien le", "lequel de", "laquelle de", "entre le",
}

var dayWhyKeywords = []string{
	"pourquoi", "qu'est-ce qui rend", "qu'est ce qui rend",
	"ce jour-là", "ce jour la", "cette date", "expliquer ce jour", "explique ce jour",
}

var dimensionDetailKeywords = []string{
	"détail", "detail", "en détail", "en detail", "précisément", "precisement",
	"que dit la", "que disent les",
}

var driverKeywords = []string{
	"facteur principal", "facteur dominant", "qu'est-ce qui pèse", "qu'est ce qui pese",
	"qu'est-ce qui joue", "qu'est ce qui joue", "principal moteur", "ce qui compte le plus",
	"levier principal",
}

var patternKeywords = []string{
	"série", "serie", "séries", "series", "consécutif", "consecutif", "consécutifs", "consecutifs",
	"d'affilée", "d'affilee", "enchaînement", "enchainement", "tendance", "récurrent", "recurrent",
	"tous les week-ends", "tous les weekends", "motif",
}

var tradeoffKeywords = []string{
	"compromis", "arbitrage", "malgré", "malgre", "même si", "meme si",
	"quitte à", "quitte a", "tant pis pour", "au détriment", "au detriment",
}

var worstKeywords = []string{
	"éviter", "eviter", "à éviter", "a eviter", "pire", "pires",
	"mauvais jours", "mauvaises dates", "déconseillé", "deconseille", "déconseillés", "deconseilles",
	"les moins bons", "les moins bonnes",
}

var filterVerbs = []string{
	"filtre", "filtrer", "uniquement", "seulement", "sans ", "hors ",
	"exclure", "en excluant", "garde que", "ne garder que",
}

// #endregion intent-lexicons

// #region dimension-lexicon

// dimensionKeywords maps mention tokens to dimensions. Order of mention in the
// query is preserved when collecting.
var dimensionKeywords = []struct {
	token string
	dim   truth.Dimension
}{
	{"météo", truth.DimensionWeather},
	{"meteo", truth.DimensionWeather},
	{"pluie", truth.DimensionWeather},
	{"pleuvoir", truth.DimensionWeather},
	{"vent", truth.DimensionWeather},
	{"orage", truth.DimensionWeather},
	{"vigilance", truth.DimensionWeather},
	{"concurrence", truth.DimensionCompetition},
	{"concurrent", truth.DimensionCompetition},
	{"événements autour", truth.DimensionCompetition},
	{"evenements autour", truth.DimensionCompetition},
	{"calendrier", truth.DimensionCalendar},
	{"férié", truth.DimensionCalendar},
	{"ferie", truth.DimensionCalendar},
	{"vacances", truth.DimensionCalendar},
	{"week-end", truth.DimensionCalendar},
	{"weekend", truth.DimensionCalendar},
	{"tourisme", truth.DimensionTourism},
	{"touriste", truth.DimensionTourism},
	{"affluence touristique", truth.DimensionTourism},
	{"mobilité", truth.DimensionMobility},
	{"mobilite", truth.DimensionMobility},
	{"transport", truth.DimensionMobility},
	{"grève", truth.DimensionMobility},
	{"greve", truth.DimensionMobility},
}

// #endregion dimension-lexicon

// #region count-words

// frenchCounts maps spelled-out counts accepted in "les deux meilleurs".
var frenchCounts = map[string]int{
	"un": 1, "une": 1, "deux": 2, "trois": 3, "quatre": 4,
	"cinq": 5, "six": 6, "sept": 7,
}

// #endregion count-words
