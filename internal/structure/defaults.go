package structure

import (
	"context"
	"fmt"

	"voiceki.app/catalog/internal/model"
)

// tier3 fills the structurally mandatory topics absent from tiers 1–2.
func (e *Engine) tier3(ctx context.Context, ex *model.ExtractResult, topics TopicSet, consolidated bool) []model.Question {
	var out []model.Question

	if q := siteQuestion(ex.Sites, topics); q != nil {
		out = append(out, *q)
	}
	if q := departmentQuestion(ex.AllDepartments, topics); q != nil {
		out = append(out, *q)
	}
	if consolidated {
		if q := consolidatedQualificationQuestion(ex, topics); q != nil {
			out = append(out, *q)
		}
	} else {
		out = append(out, qualificationGateChain(ctx, ex, topics)...)
	}
	out = append(out, priorityInterestQuestions(ex.Priorities, topics)...)
	if q := workTimeQuestion(ex.Constraints.WorkTime, topics); q != nil {
		out = append(out, *q)
	}

	return out
}

// siteQuestion covers location selection: a free-text ask when no sites
// were extracted, a confirmation for exactly one, a choice for several.
func siteQuestion(sites []model.Site, topics TopicSet) *model.Question {
	if topics.Covered("standort") {
		return nil
	}
	topics.Mark("standort")

	switch len(sites) {
	case 0:
		return &model.Question{
			ID:       "standort_frage",
			Question: "In welcher Stadt oder Region möchten Sie arbeiten?",
			Type:     model.TypeString,
			Required: false,
			Priority: 2,
			Group:    "standort",
		}
	case 1:
		return &model.Question{
			ID:       "standort_bestaetigung",
			Question: fmt.Sprintf("Unser Standort ist %s. Passt das für Sie?", sites[0].Label),
			Type:     model.TypeBoolean,
			Required: true,
			Priority: 2,
			Group:    "standort",
		}
	default:
		labels := make([]string, len(sites))
		for i, s := range sites {
			labels[i] = s.Label
		}
		examples := labels
		if len(examples) > 3 {
			examples = examples[:3]
		}
		return &model.Question{
			ID:       "standort_auswahl",
			Question: "An welchem Standort möchten Sie am liebsten arbeiten?",
			Preamble: fmt.Sprintf("Wir haben %d Standorte, darunter %s.", len(labels), joinAnd(examples)),
			Type:     model.TypeChoice,
			Options:  labels,
			Required: true,
			Priority: 2,
			Group:    "standort",
		}
	}
}

// departmentQuestion offers the extracted departments as a choice, with
// terminology auto-detected from the department names.
func departmentQuestion(departments []string, topics TopicSet) *model.Question {
	if len(departments) == 0 {
		return nil
	}
	for _, alias := range departmentAliases {
		if topics.Covered(alias) {
			return nil
		}
	}
	for _, alias := range departmentAliases {
		topics.Mark(alias)
	}

	term := departmentTerminology(departments)
	return &model.Question{
		ID:       "einsatzbereich_auswahl",
		Question: fmt.Sprintf("Welche unserer %s interessiert Sie am meisten?", term),
		Preamble: fmt.Sprintf("Wir suchen aktuell Verstärkung in mehreren %s.", term),
		Type:     model.TypeChoice,
		Options:  departments,
		Required: false,
		Priority: 2,
		Group:    "einsatzbereich",
	}
}

// priorityInterestQuestions ask about the employer's currently most needed
// areas, one question per area, unless a tier-1 question already covers
// the label. Coverage is keyed by the label, not the shared question
// template. The extracted urgency level becomes the question priority and
// the extraction reason travels along as help text.
func priorityInterestQuestions(priorities []model.Priority, topics TopicSet) []model.Question {
	var out []model.Question
	for _, p := range priorities {
		if p.Label == "" || topics.CoveredText(p.Label) {
			continue
		}
		topics.MarkText(p.Label)

		priority := p.Level
		if priority < 1 || priority > 3 {
			priority = 2
		}

		out = append(out, model.Question{
			ID:       "interesse_" + TopicKey(p.Label),
			Question: fmt.Sprintf("Haben Sie besonderes Interesse am Bereich %s?", p.Label),
			Type:     model.TypeBoolean,
			Required: false,
			Priority: priority,
			HelpText: p.Reason,
			Group:    "praeferenz",
		})
	}
	return out
}

// workTimeQuestion asks for the preferred model when both full and part
// time are offered, otherwise confirms the single offered model.
func workTimeQuestion(wt model.WorkTime, topics TopicSet) *model.Question {
	if topics.Covered("arbeitszeit") {
		return nil
	}

	switch {
	case wt.FullTime && wt.PartTime:
		topics.Mark("arbeitszeit")
		return &model.Question{
			ID:       "arbeitszeit_modell",
			Question: "Möchten Sie in Vollzeit oder Teilzeit arbeiten?",
			Type:     model.TypeChoice,
			Options:  []string{"Vollzeit", "Teilzeit"},
			Required: true,
			Priority: 2,
			Group:    "arbeitszeit",
		}
	case wt.FullTime || wt.PartTime:
		modell := "Vollzeit"
		if wt.PartTime {
			modell = "Teilzeit"
		}
		topics.Mark("arbeitszeit")
		return &model.Question{
			ID:       "arbeitszeit_bestaetigung",
			Question: fmt.Sprintf("Die Stelle ist in %s. Passt das für Sie?", modell),
			Type:     model.TypeBoolean,
			Required: true,
			Priority: 2,
			Group:    "arbeitszeit",
		}
	default:
		return nil
	}
}
