// Package flow is the conversational flow refiner: an extension point that
// can decompose unwieldy choice questions into a pre-check / open question /
// clustered-options sequence. The default refiner is a pass-through.
package flow

import (
	"context"
	"log/slog"

	"voiceki.app/catalog/internal/model"
)

// DefaultOptionThreshold is the option count above which a choice question
// is considered too wide to read out loud.
const DefaultOptionThreshold = 5

// Refiner rewrites a question list for conversational delivery. When
// inactive it must preserve input order and question identity; when active
// it may expand one source question into up to three questions sharing a
// common conditions chain.
type Refiner interface {
	Refine(ctx context.Context, questions []model.Question) []model.Question
}

// Expansion is the typed contract an active refiner produces for one wide
// choice question: an optional boolean pre-check, an open free-text
// question, and a clustered-presentation fallback.
type Expansion struct {
	PreCheck  *model.Question
	Open      *model.Question
	Clustered *model.Question
}

// Questions returns the expansion's questions in delivery order.
func (e Expansion) Questions() []model.Question {
	var out []model.Question
	if e.PreCheck != nil {
		out = append(out, *e.PreCheck)
	}
	if e.Open != nil {
		out = append(out, *e.Open)
	}
	if e.Clustered != nil {
		out = append(out, *e.Clustered)
	}
	return out
}

// PassThrough is the default refiner. It only reports which questions
// would qualify for expansion; the list passes through unchanged.
type PassThrough struct {
	Threshold int
}

func NewPassThrough() *PassThrough {
	return &PassThrough{Threshold: DefaultOptionThreshold}
}

func (r *PassThrough) Refine(ctx context.Context, questions []model.Question) []model.Question {
	threshold := r.Threshold
	if threshold <= 0 {
		threshold = DefaultOptionThreshold
	}
	for _, q := range questions {
		if q.Type == model.TypeChoice && len(q.Options) > threshold {
			slog.DebugContext(ctx, "choice question exceeds option threshold, flow refinement inactive",
				"question_id", q.ID,
				"options", len(q.Options),
				"threshold", threshold)
		}
	}
	return questions
}
