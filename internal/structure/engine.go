package structure

import (
	"context"
	"log/slog"
	"strings"

	"voiceki.app/catalog/common"
	"voiceki.app/catalog/common/logger"
	"voiceki.app/catalog/internal/model"
)

// consolidatedTopic marks that individual qualification clauses are slated
// for one consolidated choice question instead of per-clause gates.
const consolidatedTopic = "qualification_consolidated"

// Engine synthesizes the maximal, non-redundant question set from an
// ExtractResult in four descending-priority tiers. A TopicSet threaded
// through the tiers prevents duplicate coverage.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// Build runs the tiers strictly in order 1→4. Later tiers re-check the
// topic set before emitting anything.
func (e *Engine) Build(ctx context.Context, ex *model.ExtractResult) []model.Question {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Stage: logger.Ptr("structure")})

	topics := NewTopicSet()
	consolidated := prescanConsolidation(ex, topics)

	var questions []model.Question
	questions = append(questions, e.tier1(ctx, ex, topics, consolidated)...)
	tier1Count := len(questions)
	questions = append(questions, e.tier2(ctx, ex, topics)...)
	tier2Count := len(questions) - tier1Count
	questions = append(questions, e.tier3(ctx, ex, topics, consolidated)...)
	tier3Count := len(questions) - tier1Count - tier2Count
	questions = append(questions, e.tier4(ctx, ex, topics)...)

	slog.InfoContext(ctx, "structuring complete",
		"tier1", tier1Count,
		"tier2", tier2Count,
		"tier3", tier3Count,
		"tier4", len(questions)-tier1Count-tier2Count-tier3Count,
		"total", len(questions))

	return questions
}

// prescanConsolidation checks whether the qualification clauses should be
// collapsed into one consolidated choice question. It marks the topic
// before any tier runs so tiers 1 and 3 skip the individual clauses.
func prescanConsolidation(ex *model.ExtractResult, topics TopicSet) bool {
	if len(ex.Alternatives) < 2 {
		return false
	}
	combined := strings.Join(ex.MustHave, " ") + " " + strings.Join(ex.Alternatives, " ")
	if !containsQualificationVocab(combined) {
		return false
	}
	topics.Mark(consolidatedTopic)
	return true
}

// tier1 turns extractor-recognized protocol questions into catalog
// questions. Malformed entries are logged and skipped, never fatal.
func (e *Engine) tier1(ctx context.Context, ex *model.ExtractResult, topics TopicSet, consolidated bool) []model.Question {
	var out []model.Question
	for _, pq := range ex.ProtocolQuestions {
		if strings.TrimSpace(pq.Text) == "" {
			slog.WarnContext(ctx, "skipping malformed protocol question",
				"id", pq.ID,
				"page_id", pq.Source.PageID)
			continue
		}
		if isNameOrAddress(pq.Text) {
			continue
		}
		if consolidated && matchesQualificationClause(pq.Text, ex) {
			continue
		}

		text := refineGrammar(pq.Text)
		id, err := common.Slugify(pq.ID, text)
		if err != nil {
			slog.WarnContext(ctx, "skipping protocol question without usable id", "text", pq.Text)
			continue
		}

		q := model.Question{
			ID:       id,
			Question: text,
			Type:     inferType(text, pq.TypeHint, len(pq.Options)),
			Options:  pq.Options,
			Required: pq.Required,
			Priority: 2,
			Group:    inferGroup(text, pq.CategoryHint),
			Source:   &model.Source{PageID: pq.Source.PageID, PromptID: pq.Source.PromptID},
		}
		if pq.Required {
			q.Priority = 1
		}
		if pq.IsGate {
			q.GateConfig = &model.GateConfig{IsGate: true}
		}

		topics.MarkText(text)
		topics.MarkText(pq.Text)
		markRestatedClauses(pq.Text, ex, topics)
		if isDepartmentTopic(text) {
			for _, alias := range departmentAliases {
				topics.Mark(alias)
			}
		}
		out = append(out, q)
	}
	return out
}

// matchesQualificationClause reports whether a protocol question restates
// one of the must-have or alternative clauses slated for consolidation.
func matchesQualificationClause(text string, ex *model.ExtractResult) bool {
	lower := strings.ToLower(text)
	for _, clause := range ex.MustHave {
		if clause != "" && strings.Contains(lower, strings.ToLower(clause)) {
			return true
		}
	}
	for _, clause := range ex.Alternatives {
		if clause != "" && strings.Contains(lower, strings.ToLower(clause)) {
			return true
		}
	}
	return false
}

// markRestatedClauses covers qualification clauses a protocol question
// already asks about, so tier 3 does not emit a second gate for them.
func markRestatedClauses(text string, ex *model.ExtractResult, topics TopicSet) {
	lower := strings.ToLower(text)
	for _, clause := range ex.MustHave {
		if clause != "" && strings.Contains(lower, strings.ToLower(clause)) {
			topics.MarkText(clause)
		}
	}
	for _, clause := range ex.Alternatives {
		if clause != "" && strings.Contains(lower, strings.ToLower(clause)) {
			topics.MarkText(clause)
		}
	}
}

// tier2 falls back to verbatim text spans the extractor flagged as real
// questions but did not structure.
func (e *Engine) tier2(ctx context.Context, ex *model.ExtractResult, topics TopicSet) []model.Question {
	var out []model.Question
	for _, vc := range ex.VerbatimCandidates {
		if !vc.IsRealQuestion || isNameOrAddress(vc.Text) {
			continue
		}
		if topics.CoveredText(vc.Text) {
			continue
		}

		text := refineGrammar(vc.Text)
		id, err := common.Slugify(text, "")
		if err != nil {
			continue
		}

		out = append(out, model.Question{
			ID:       id,
			Question: text,
			Type:     inferType(text, "", 0),
			Required: false,
			Priority: 2,
			Group:    inferGroup(text, ""),
			Source:   &model.Source{PageID: vc.Source.PageID, PromptID: vc.Source.PromptID, Verbatim: true},
		})
		topics.MarkText(vc.Text)
		topics.MarkText(text)
	}
	return out
}
