package extract

import (
	"sort"
	"strings"

	"voiceki.app/catalog/internal/model"
	"voiceki.app/catalog/internal/protocol"
)

// merge combines the three payloads into one ExtractResult. Departments are
// sorted and deduplicated; protocol questions are deduplicated by normalized
// text across payloads (the three calls overlap on purpose).
func merge(proto *protocol.Protocol, quals QualificationsPayload, work WorkConditionsPayload, org OrganizationalPayload) *model.ExtractResult {
	result := &model.ExtractResult{
		Preferred:              quals.Preferred,
		MustHave:               quals.MustHave,
		Alternatives:           quals.Alternatives,
		OptionalQualifications: quals.Optional,
		Roles:                  org.Roles,
		CultureNotes:           org.CultureNotes,
		InternalNotes:          org.InternalNotes,
		Constraints: model.Constraints{
			WorkTime: model.WorkTime{
				FullTime: work.Arbeitszeit.Vollzeit,
				PartTime: work.Arbeitszeit.Teilzeit,
				Details:  work.Arbeitszeit.Details,
			},
			Pay:      work.Gehalt,
			Benefits: work.Benefits,
		},
	}

	for _, s := range org.Sites {
		result.Sites = append(result.Sites, model.Site{
			Label:    s.Label,
			Address:  s.Address,
			Stations: s.Stations,
		})
	}
	for _, p := range org.Priorities {
		result.Priorities = append(result.Priorities, model.Priority(p))
	}

	result.AllDepartments = dedupSorted(org.AllDepartments)
	result.ProtocolQuestions = dedupQuestions(quals.ProtocolQuestions, work.ProtocolQuestions, org.ProtocolQuestions)
	result.VerbatimCandidates = verbatimCandidates(proto)
	result.CareerQuestionsNeeded = careerQuestionsNeeded(proto, org.Roles)

	return result
}

func dedupSorted(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	var out []string
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		key := strings.ToLower(item)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	sort.Strings(out)
	return out
}

func dedupQuestions(payloads ...[]ProtocolQuestionPayload) []model.ProtocolQuestion {
	seen := make(map[string]struct{})
	var out []model.ProtocolQuestion
	for _, payload := range payloads {
		for _, pq := range payload {
			key := normalizeText(pq.Text)
			if key == "" {
				continue
			}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, model.ProtocolQuestion{
				ID:           pq.ID,
				Text:         pq.Text,
				TypeHint:     pq.TypeHint,
				CategoryHint: pq.CategoryHint,
				Options:      pq.Options,
				Required:     pq.Required,
				IsGate:       pq.IsGate,
				Source: model.Source{
					PageID:   pq.PageID,
					PromptID: pq.PromptID,
				},
			})
		}
	}
	return out
}

// verbatimCandidates scans the protocol prompts directly. These are the
// lower-confidence fallbacks the structuring engine consults when a topic
// was not picked up by any extraction call.
func verbatimCandidates(proto *protocol.Protocol) []model.VerbatimCandidate {
	var out []model.VerbatimCandidate
	for _, page := range proto.Pages {
		for _, prompt := range page.Prompts {
			text := strings.TrimSpace(prompt.Question)
			if text == "" {
				continue
			}
			out = append(out, model.VerbatimCandidate{
				Text:           text,
				IsRealQuestion: looksLikeQuestion(text),
				Source: model.Source{
					PageID:   page.ID,
					PromptID: prompt.ID,
					Verbatim: true,
				},
			})
		}
	}
	return out
}

var questionLeads = []string{
	"haben sie", "sind sie", "können sie", "möchten sie", "wären sie",
	"welche", "welcher", "welches", "was ", "wie ", "wann ", "wo ",
	"ab wann", "in welchem", "warum", "wieso",
}

func looksLikeQuestion(text string) bool {
	if strings.HasSuffix(text, "?") {
		return true
	}
	lower := strings.ToLower(text)
	for _, lead := range questionLeads {
		if strings.HasPrefix(lower, lead) {
			return true
		}
	}
	return false
}

var careerKeywords = []string{"werdegang", "karriere", "berufserfahrung", "lebenslauf", "stationen ihrer"}

func careerQuestionsNeeded(proto *protocol.Protocol, roles []string) bool {
	if len(roles) > 0 {
		return true
	}
	lower := strings.ToLower(proto.Render())
	for _, kw := range careerKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func normalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(s))), " ")
}
