package structure

import (
	"strings"

	"voiceki.app/catalog/internal/model"
)

// Vocabularies for group inference and topic detection. Matching is done on
// lower-cased text; umlauts appear literally because the protocols are German.

var qualificationVocab = []string{
	"ausbildung", "studium", "abschluss", "examen", "zertifikat",
	"weiterbildung", "qualifikation", "fachkraft", "approbation",
}

var departmentVocab = []string{
	"abteilung", "bereich", "station", "fachabteilung", "einsatz",
}

var workTimeVocab = []string{
	"arbeitszeit", "vollzeit", "teilzeit", "schicht", "dienst",
	"nachtdienst", "wochenende", "stunden",
}

var locationVocab = []string{
	"standort", "stadt", "ort", "adresse", "region", "umkreis",
}

// departmentAliases are additionally marked covered when a tier-1 question
// concerns departments, so tier 3 does not generate a second one.
var departmentAliases = []string{"abteilung", "bereich", "station", "fachabteilung"}

var healthcareVocab = []string{
	"station", "intensiv", "op", "ambulanz", "pflege", "chirurgie",
	"innere", "geriatrie", "palliativ", "notaufnahme", "anästhesie",
	"onkologie", "kardiologie", "dialyse",
}

var nameAddressPatterns = []string{
	"wie heißen sie", "ihr name", "ihren namen", "ihre adresse",
	"ihre anschrift", "telefonnummer", "e-mail", "email", "wohnort",
	"geburtsdatum",
}

// booleanLeads, choiceLeads and dateLeads pattern-match the opening words
// of a question to infer the expected answer format.
var (
	booleanLeads = []string{"haben sie", "sind sie", "besitzen sie", "verfügen sie", "möchten sie", "wären sie"}
	choiceLeads  = []string{"welche", "welcher", "welches", "in welchem", "in welcher"}
	dateLeads    = []string{"ab wann", "wann können sie", "zu wann"}
)

func containsAny(lower string, vocab []string) bool {
	for _, v := range vocab {
		if strings.Contains(lower, v) {
			return true
		}
	}
	return false
}

func containsQualificationVocab(text string) bool {
	return containsAny(strings.ToLower(text), qualificationVocab)
}

func isNameOrAddress(text string) bool {
	return containsAny(strings.ToLower(text), nameAddressPatterns)
}

func isDepartmentTopic(text string) bool {
	return containsAny(strings.ToLower(text), departmentVocab)
}

// inferType resolves the answer format from an extractor hint, else from
// the question's lead phrase. Ambiguity always defaults to string.
func inferType(text, hint string, optionCount int) model.QuestionType {
	switch hint {
	case "boolean":
		return model.TypeBoolean
	case "choice":
		return model.TypeChoice
	case "multi_choice":
		return model.TypeMultiChoice
	case "date":
		return model.TypeDate
	case "string":
		return model.TypeString
	}

	if optionCount > 0 {
		return model.TypeChoice
	}

	lower := strings.ToLower(strings.TrimSpace(text))
	for _, lead := range dateLeads {
		if strings.HasPrefix(lower, lead) {
			return model.TypeDate
		}
	}
	for _, lead := range booleanLeads {
		if strings.HasPrefix(lower, lead) {
			return model.TypeBoolean
		}
	}
	for _, lead := range choiceLeads {
		if strings.HasPrefix(lower, lead) {
			return model.TypeChoice
		}
	}
	return model.TypeString
}

// groupRule pairs a vocabulary with the group it implies; rules are
// evaluated in order, first match wins.
type groupRule struct {
	vocab []string
	group string
}

var groupRules = []groupRule{
	{qualificationVocab, "qualifikation"},
	{departmentVocab, "einsatzbereich"},
	{workTimeVocab, "arbeitszeit"},
	{locationVocab, "standort"},
}

func inferGroup(text, hint string) string {
	if hint != "" {
		return hint
	}
	lower := strings.ToLower(text)
	for _, rule := range groupRules {
		if containsAny(lower, rule.vocab) {
			return rule.group
		}
	}
	return "allgemein"
}

// grammarRewrites fix known awkward phrasings produced by verbatim
// extraction. Ordered; the first matching prefix is applied.
var grammarRewrites = []struct {
	prefix  string
	rewrite string
}{
	{"Interesse am Bereich", "Interessieren Sie sich für den Bereich"},
	{"Interesse an der Station", "Interessieren Sie sich für die Station"},
	{"Interesse an", "Interessieren Sie sich für"},
	{"Wunsch nach", "Wünschen Sie sich"},
}

func refineGrammar(text string) string {
	trimmed := strings.TrimSpace(text)
	for _, r := range grammarRewrites {
		if strings.HasPrefix(trimmed, r.prefix) {
			rest := strings.TrimSuffix(strings.TrimPrefix(trimmed, r.prefix), "?")
			rest = strings.TrimRight(rest, ".! ")
			return r.rewrite + rest + "?"
		}
	}
	return trimmed
}

// departmentTerminology picks the wording used in generated department
// questions: care protocols talk about "Stationen", everything else about
// "Fachabteilungen". Detected from the fraction of department names
// containing healthcare vocabulary.
func departmentTerminology(departments []string) string {
	if len(departments) == 0 {
		return "Fachabteilungen"
	}
	matches := 0
	for _, d := range departments {
		if containsAny(strings.ToLower(d), healthcareVocab) {
			matches++
		}
	}
	if float64(matches)/float64(len(departments)) > 0.30 {
		return "Stationen"
	}
	return "Fachabteilungen"
}

// joinAnd renders a German enumeration: "A, B und C".
func joinAnd(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " und " + items[len(items)-1]
	}
}
