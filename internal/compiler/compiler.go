// Package compiler orchestrates the full catalog compilation pipeline:
// extraction, structuring, flow refinement, validation, categorization,
// policy resolution, and assembly. Only the extraction stage talks to an
// LLM; everything after it is deterministic.
package compiler

import (
	"context"
	"fmt"
	"log/slog"

	"voiceki.app/catalog/common/id"
	"voiceki.app/catalog/common/logger"
	"voiceki.app/catalog/internal/catalog"
	"voiceki.app/catalog/internal/categorize"
	"voiceki.app/catalog/internal/extract"
	"voiceki.app/catalog/internal/flow"
	"voiceki.app/catalog/internal/knowledge"
	"voiceki.app/catalog/internal/model"
	"voiceki.app/catalog/internal/policy"
	"voiceki.app/catalog/internal/protocol"
	"voiceki.app/catalog/internal/structure"
	"voiceki.app/catalog/internal/validate"
)

// Context carries per-run compilation options.
type Context struct {
	// PolicyLevel selects which policies run: basic, standard, advanced.
	// An empty or unknown value falls back to standard.
	PolicyLevel string
}

// Output is the pair of artifacts one compilation run produces. The
// knowledge base may be empty; the catalog never is nil on success.
type Output struct {
	Catalog   *model.Catalog
	Knowledge model.KnowledgeBase
}

// Compiler wires the pipeline stages together. Construct once, reuse
// across runs; each Compile call is independent.
type Compiler struct {
	extractor *extract.Extractor
	engine    *structure.Engine
	refiner   flow.Refiner
}

// New builds a Compiler around the given extractor. A nil refiner selects
// the pass-through flow refiner.
func New(extractor *extract.Extractor, refiner flow.Refiner) *Compiler {
	if refiner == nil {
		refiner = flow.NewPassThrough()
	}
	return &Compiler{
		extractor: extractor,
		engine:    structure.NewEngine(),
		refiner:   refiner,
	}
}

// Compile runs the full pipeline over one protocol and returns the
// catalog plus the companion knowledge base.
func (c *Compiler) Compile(ctx context.Context, proto *protocol.Protocol, opts Context) (*Output, error) {
	runID := id.New()
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		ProtocolID: logger.Ptr(proto.ID),
		RunID:      logger.Ptr(runID),
		Component:  "catalog.compiler",
	})

	sc := logger.StartSpan(ctx, "compiler.compile")
	defer sc.End()
	ctx = sc.Context()

	slog.InfoContext(ctx, "compilation started",
		"protocol_name", proto.Name,
		"prompts", proto.PromptCount(),
		"policy_level", opts.PolicyLevel)

	extracted, err := c.runExtract(ctx, proto)
	if err != nil {
		sc.RecordError(err)
		return nil, fmt.Errorf("extract: %w", err)
	}

	questions := c.runStage(ctx, "structure", func(ctx context.Context) []model.Question {
		return c.engine.Build(ctx, extracted)
	})
	questions = c.runStage(ctx, "flow", func(ctx context.Context) []model.Question {
		return c.refiner.Refine(ctx, questions)
	})
	questions = c.runStage(ctx, "validate", func(ctx context.Context) []model.Question {
		return validate.Finalize(ctx, questions, extracted.Priorities)
	})
	questions = c.runStage(ctx, "categorize", func(ctx context.Context) []model.Question {
		return categorize.Apply(questions)
	})

	var policiesApplied []string
	questions = c.runStage(ctx, "policy", func(ctx context.Context) []model.Question {
		resolver := policy.NewResolver(policy.ParseLevel(opts.PolicyLevel))
		resolved, audit := resolver.Resolve(ctx, questions)
		policiesApplied = audit
		return resolved
	})

	assembleCtx := stageContext(ctx, "assemble")
	assembleSpan := logger.StartSpan(assembleCtx, "compiler.assemble")
	cat, err := catalog.Assemble(assembleSpan.Context(), questions, runID, policiesApplied)
	assembleSpan.RecordError(err)
	assembleSpan.End()
	if err != nil {
		sc.RecordError(err)
		return nil, fmt.Errorf("assemble: %w", err)
	}

	kb := knowledge.Build(stageContext(ctx, "knowledge"), extracted)

	slog.InfoContext(ctx, "compilation finished",
		"questions", len(cat.Questions),
		"policies_applied", len(policiesApplied),
		"knowledge_empty", kb.Empty())

	return &Output{Catalog: cat, Knowledge: kb}, nil
}

func (c *Compiler) runExtract(ctx context.Context, proto *protocol.Protocol) (*model.ExtractResult, error) {
	ctx = stageContext(ctx, "extract")
	sc := logger.StartSpan(ctx, "compiler.extract")
	defer sc.End()

	result, err := c.extractor.Extract(sc.Context(), proto)
	if err != nil {
		sc.RecordError(err)
		return nil, err
	}
	return result, nil
}

// runStage wraps one deterministic stage with its span and stage-scoped
// log fields.
func (c *Compiler) runStage(ctx context.Context, stage string, fn func(context.Context) []model.Question) []model.Question {
	ctx = stageContext(ctx, stage)
	sc := logger.StartSpan(ctx, "compiler."+stage)
	defer sc.End()
	return fn(sc.Context())
}

func stageContext(ctx context.Context, stage string) context.Context {
	return logger.WithLogFields(ctx, logger.LogFields{Stage: logger.Ptr(stage)})
}
