package structure

import (
	"context"
	"fmt"

	"voiceki.app/catalog/internal/model"
)

// tier4 adds the fixed phase defaults that every interview gets regardless
// of protocol content: motivation, start date, career history when the
// extractor signalled it, and the callback-time question.
func (e *Engine) tier4(ctx context.Context, ex *model.ExtractResult, topics TopicSet) []model.Question {
	var out []model.Question

	motivation := []model.Question{
		{
			ID:       "motivation_bewerbung",
			Question: "Was motiviert Sie, sich bei uns zu bewerben?",
			Type:     model.TypeString,
			Required: false,
			Priority: 3,
			Group:    "motivation",
		},
		{
			ID:       "arbeitgeber_wichtig",
			Question: "Was ist Ihnen bei einem Arbeitgeber besonders wichtig?",
			Type:     model.TypeString,
			Required: false,
			Priority: 3,
			Group:    "motivation",
		},
		{
			ID:       "wechsel_grund",
			Question: "Was würde Sie an einem Wechsel besonders reizen?",
			Type:     model.TypeString,
			Required: false,
			Priority: 3,
			Group:    "motivation",
		},
	}
	for _, q := range motivation {
		if topics.CoveredText(q.Question) {
			continue
		}
		topics.MarkText(q.Question)
		out = append(out, q)
	}

	if !topics.Covered("ab_wann") && !topics.CoveredText("Ab wann könnten Sie bei uns anfangen?") {
		topics.Mark("ab_wann")
		out = append(out, model.Question{
			ID:       "startdatum",
			Question: "Ab wann könnten Sie bei uns anfangen?",
			Type:     model.TypeDate,
			Required: false,
			Priority: 2,
			Group:    "verfuegbarkeit",
		})
	}

	if ex.CareerQuestionsNeeded {
		out = append(out, careerQuestions(topics)...)
	}

	if !topics.Covered("rueckruf") {
		topics.Mark("rueckruf")
		out = append(out, model.Question{
			ID:       "rueckruf_zeit",
			Question: "Wann erreichen wir Sie am besten für einen Rückruf?",
			Type:     model.TypeChoice,
			Options:  []string{"Vormittags", "Nachmittags", "Früher Abend", "Flexibel"},
			Required: false,
			Priority: 3,
			Group:    "kontakt",
		})
	}

	return out
}

func careerQuestions(topics TopicSet) []model.Question {
	texts := []string{
		"Was war Ihre letzte berufliche Station?",
		"Was war Ihre vorletzte berufliche Station?",
		"Gibt es eine weitere Station Ihres Werdegangs, die für uns wichtig ist?",
	}

	var out []model.Question
	for i, text := range texts {
		if topics.CoveredText(text) {
			continue
		}
		topics.MarkText(text)
		out = append(out, model.Question{
			ID:       fmt.Sprintf("karriere_station_%d", i+1),
			Question: text,
			Type:     model.TypeString,
			Required: false,
			Priority: 3,
			Group:    "werdegang",
		})
	}
	return out
}
