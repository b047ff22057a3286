// Package categorize assigns each question to one of the ordered delivery
// categories. Categorization is a pure function over the question text and
// flags; it holds no state and is idempotent.
package categorize

import (
	"strings"

	"voiceki.app/catalog/internal/model"
)

// Delivery categories in ascending presentation order. The identification
// block opens the call; additional information closes it. The info category
// is reserved for knowledge-base material and never assigned here.
const (
	CategoryIdentifikation       = "identifikation"
	CategoryKontaktinformationen = "kontaktinformationen"
	CategoryStandardQuali        = "standardqualifikationen"
	CategoryInfo                 = "info"
	CategoryStandort             = "standort"
	CategoryEinsatzbereiche      = "einsatzbereiche"
	CategoryRahmenbedingungen    = "rahmenbedingungen"
	CategoryPraeferenzen         = "praeferenzen"
	CategoryZusaetzlich          = "zusaetzliche_informationen"
)

// CategoryOrder maps every category to its delivery position.
var CategoryOrder = map[string]int{
	CategoryIdentifikation:       1,
	CategoryKontaktinformationen: 2,
	CategoryStandardQuali:        3,
	CategoryInfo:                 4,
	CategoryStandort:             5,
	CategoryEinsatzbereiche:      6,
	CategoryRahmenbedingungen:    7,
	CategoryPraeferenzen:         8,
	CategoryZusaetzlich:          9,
}

var (
	mandatoryVocab = []string{
		"pflicht", "zwingend", "voraussetzung", "erforderlich", "examen",
		"ausbildung", "studium", "abschluss", "qualifikation", "zertifikat",
		"approbation", "nachweis",
	}
	contactVocab = []string{
		"adresse", "anschrift", "telefon", "e-mail", "email",
		"kontaktdaten", "rückruf", "erreichen wir sie",
	}
	locationVocab = []string{
		"standort", "stadt", "region", "umkreis", "wohnort",
	}
	departmentVocab = []string{
		"abteilung", "station", "bereich", "einsatz", "fachabteilung",
	}
	workTimeVocab = []string{
		"arbeitszeit", "vollzeit", "teilzeit", "schicht", "dienst",
		"gehalt", "vergütung", "tarif", "stunden pro",
	}
	preferenceVocab = []string{
		"interesse", "interessier", "bevorzug", "präferenz",
		"wunsch", "wünsch", "am liebsten",
	}
)

// rule pairs a predicate with the category it implies. Rules are evaluated
// top to bottom; the first match wins.
type rule struct {
	match    func(q model.Question, lower string) bool
	category string
}

var rules = []rule{
	{
		// Required questions about mandatory qualifications.
		match: func(q model.Question, lower string) bool {
			return q.Required && containsAny(lower, mandatoryVocab)
		},
		category: CategoryStandardQuali,
	},
	{
		// Identity confirmation phrasing.
		match: func(q model.Question, lower string) bool {
			if strings.Contains(lower, "spreche ich mit") {
				return true
			}
			return strings.Contains(lower, "adresse") &&
				(strings.Contains(lower, "korrekt") || strings.Contains(lower, "richtig"))
		},
		category: CategoryIdentifikation,
	},
	{
		match: func(q model.Question, lower string) bool {
			return containsAny(lower, contactVocab)
		},
		category: CategoryKontaktinformationen,
	},
	{
		match: func(q model.Question, lower string) bool {
			return containsAny(lower, locationVocab)
		},
		category: CategoryStandort,
	},
	{
		match: func(q model.Question, lower string) bool {
			return containsAny(lower, departmentVocab)
		},
		category: CategoryEinsatzbereiche,
	},
	{
		match: func(q model.Question, lower string) bool {
			return containsAny(lower, workTimeVocab)
		},
		category: CategoryRahmenbedingungen,
	},
	{
		match: func(q model.Question, lower string) bool {
			return containsAny(lower, preferenceVocab)
		},
		category: CategoryPraeferenzen,
	},
}

// Categorize returns the delivery category and its order for one question.
func Categorize(q model.Question) (string, int) {
	lower := strings.ToLower(q.Question + " " + q.Preamble)
	for _, r := range rules {
		if r.match(q, lower) {
			return r.category, CategoryOrder[r.category]
		}
	}
	return CategoryZusaetzlich, CategoryOrder[CategoryZusaetzlich]
}

// Apply categorizes every question in place and returns the list.
func Apply(questions []model.Question) []model.Question {
	for i := range questions {
		category, order := Categorize(questions[i])
		questions[i].Category = category
		questions[i].CategoryOrder = order
	}
	return questions
}

func containsAny(lower string, vocab []string) bool {
	for _, v := range vocab {
		if strings.Contains(lower, v) {
			return true
		}
	}
	return false
}
