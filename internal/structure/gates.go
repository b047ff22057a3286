package structure

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"voiceki.app/catalog/common"
	"voiceki.app/catalog/internal/model"
)

// endMessageAllNo is delivered when a gate and every alternative are unmet.
const endMessageAllNo = "Vielen Dank für Ihre Offenheit. Für diese Stelle ist leider einer der genannten Abschlüsse Voraussetzung. Wir melden uns gerne bei Ihnen, sobald eine passende Stelle frei wird."

// consolidatedQualificationQuestion collapses the qualification clauses into
// one choice question. The must-have requirement is named in the preamble;
// the options are the deduplicated alternatives plus an "other" fallback
// that triggers the terminal end message.
func consolidatedQualificationQuestion(ex *model.ExtractResult, topics TopicSet) *model.Question {
	options := dedupClauses(ex.Alternatives)
	if len(options) == 0 {
		return nil
	}
	options = append(options, "Anderer Abschluss")

	preamble := ""
	if len(ex.MustHave) > 0 {
		preamble = fmt.Sprintf("Für diese Stelle ist %s Voraussetzung. Alternativ kommen auch folgende Abschlüsse infrage.", joinAnd(ex.MustHave))
	}

	for _, clause := range ex.MustHave {
		topics.MarkText(clause)
	}
	for _, clause := range ex.Alternatives {
		topics.MarkText(clause)
	}

	return &model.Question{
		ID:       "abschluss_qualifikation",
		Question: "Welchen dieser Abschlüsse haben Sie?",
		Preamble: preamble,
		Type:     model.TypeChoice,
		Options:  options,
		Required: true,
		Priority: 1,
		Group:    "qualifikation",
		GateConfig: &model.GateConfig{
			IsGate:            true,
			HasAlternatives:   true,
			EndMessageIfAllNo: endMessageAllNo,
		},
	}
}

// qualificationGateChain emits the non-consolidated form: one boolean gate
// per uncovered must-have, with the alternatives chained onto the first
// gate. Each alternative is asked only when its predecessor was answered
// negatively; the last one is terminal and carries the end message.
func qualificationGateChain(ctx context.Context, ex *model.ExtractResult, topics TopicSet) []model.Question {
	var out []model.Question
	var firstGateID string

	for _, clause := range ex.MustHave {
		if strings.TrimSpace(clause) == "" || topics.CoveredText(clause) {
			continue
		}
		id, err := common.Slugify(clause, "")
		if err != nil {
			slog.WarnContext(ctx, "skipping must-have clause without usable id", "clause", clause)
			continue
		}
		topics.MarkText(clause)

		q := model.Question{
			ID:       id,
			Question: fmt.Sprintf("Haben Sie %s?", clause),
			Type:     model.TypeBoolean,
			Required: true,
			Priority: 1,
			Group:    "qualifikation",
			GateConfig: &model.GateConfig{
				IsGate:          true,
				HasAlternatives: len(ex.Alternatives) > 0 && firstGateID == "",
			},
		}
		if firstGateID == "" {
			firstGateID = id
		}
		out = append(out, q)
	}

	prevID := firstGateID
	var alternatives []model.Question
	for _, clause := range ex.Alternatives {
		if strings.TrimSpace(clause) == "" || topics.CoveredText(clause) {
			continue
		}
		id, err := common.Slugify(clause, "")
		if err != nil {
			continue
		}
		topics.MarkText(clause)

		q := model.Question{
			ID:       id,
			Question: fmt.Sprintf("Haben Sie alternativ %s?", clause),
			Type:     model.TypeBoolean,
			Required: false,
			Priority: 2,
			Group:    "qualifikation",
		}
		if firstGateID != "" {
			q.GateConfig = &model.GateConfig{
				IsAlternative:  true,
				AlternativeFor: firstGateID,
				CanSatisfyGate: firstGateID,
			}
			q.Conditions = []model.Condition{
				{
					When: model.When{Field: prevID, Op: "eq", Value: false},
					Then: model.Then{Action: "ask"},
				},
			}
			prevID = id
		}
		alternatives = append(alternatives, q)
	}

	// The last alternative in the chain is terminal: if it is also unmet,
	// the agent delivers the end message.
	if firstGateID != "" && len(alternatives) > 0 {
		last := &alternatives[len(alternatives)-1]
		last.GateConfig.FinalAlternative = true
		last.GateConfig.EndMessageIfAllNo = endMessageAllNo
	}

	return append(out, alternatives...)
}

func dedupClauses(clauses []string) []string {
	seen := make(map[string]struct{}, len(clauses))
	var out []string
	for _, c := range clauses {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		key := strings.ToLower(c)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}
