// Package validate applies late business rules to the otherwise complete
// question set. It never reorders or deletes questions.
package validate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"voiceki.app/catalog/internal/model"
)

// Finalize attaches cross-cutting enrichments and checks. Currently: the
// priority help text on the department question, and a warn-only duplicate
// id check. Returns the same questions, possibly enriched in place.
func Finalize(ctx context.Context, questions []model.Question, priorities []model.Priority) []model.Question {
	attachPriorityHelpText(questions, priorities)
	warnDuplicateIDs(ctx, questions)
	return questions
}

// attachPriorityHelpText tells the candidate which areas are currently
// most sought after, on the department-selection question.
func attachPriorityHelpText(questions []model.Question, priorities []model.Priority) {
	var urgent []string
	for _, p := range priorities {
		if p.Level == 1 && p.Label != "" {
			urgent = append(urgent, p.Label)
		}
	}
	if len(urgent) == 0 {
		return
	}

	for i := range questions {
		if questions[i].Group != "einsatzbereich" || questions[i].Type != model.TypeChoice {
			continue
		}
		if questions[i].HelpText != "" {
			continue
		}
		questions[i].HelpText = fmt.Sprintf("Aktuell besonders gesucht: %s", strings.Join(urgent, ", "))
	}
}

// warnDuplicateIDs logs duplicates without deduplicating or renaming.
// Downstream consumers have historically tolerated duplicates; dropping
// one silently would hide authoring mistakes.
func warnDuplicateIDs(ctx context.Context, questions []model.Question) {
	seen := make(map[string]int, len(questions))
	for i, q := range questions {
		if first, ok := seen[q.ID]; ok {
			slog.WarnContext(ctx, "duplicate question id",
				"id", q.ID,
				"first_index", first,
				"duplicate_index", i)
			continue
		}
		seen[q.ID] = i
	}
}
