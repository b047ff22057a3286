package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"voiceki.app/catalog/common/llm"
	"voiceki.app/catalog/common/logger"
	"voiceki.app/catalog/internal/model"
	"voiceki.app/catalog/internal/protocol"
)

// ErrNoProvider is returned when neither a primary nor a secondary
// extraction provider is configured. This is the only fatal condition;
// everything else degrades to empty payloads.
var ErrNoProvider = errors.New("no extraction provider configured")

type Options struct {
	MaxTokens   int           // Per-call completion token limit (default 4096)
	CallTimeout time.Duration // Per-attempt timeout (default 60s)
	MaxParallel int           // Concurrency cap for the fan-out (default 3)
}

// Extractor runs the three specialized extraction calls against the
// configured providers and merges their payloads into one ExtractResult.
type Extractor struct {
	primary   llm.Client
	secondary llm.Client
	opts      Options
}

func New(primary, secondary llm.Client, opts Options) *Extractor {
	if opts.MaxTokens == 0 {
		opts.MaxTokens = 4096
	}
	if opts.CallTimeout == 0 {
		opts.CallTimeout = 60 * time.Second
	}
	if opts.MaxParallel == 0 {
		opts.MaxParallel = 3
	}
	return &Extractor{primary: primary, secondary: secondary, opts: opts}
}

// Extract fans out the qualifications, work-conditions and organizational
// calls concurrently. A failed call is substituted with its typed empty
// payload; only a fully unconfigured extractor fails the run.
func (e *Extractor) Extract(ctx context.Context, proto *protocol.Protocol) (*model.ExtractResult, error) {
	if e.primary == nil && e.secondary == nil {
		return nil, ErrNoProvider
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{Stage: logger.Ptr("extract")})
	rendered := proto.Render()

	var (
		quals QualificationsPayload
		work  WorkConditionsPayload
		org   OrganizationalPayload
	)

	calls := []struct {
		name       string
		schemaName string
		schema     any
		userPrompt string
		result     any
	}{
		{"qualifications", "qualifications_extraction", qualificationsSchema, qualificationsUserPrompt, &quals},
		{"work_conditions", "work_conditions_extraction", workConditionsSchema, workConditionsUserPrompt, &work},
		{"organizational", "organizational_extraction", organizationalSchema, organizationalUserPrompt, &org},
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, e.opts.MaxParallel)

	for i := range calls {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			call := calls[idx]
			start := time.Now()
			if err := e.chat(ctx, call.schemaName, call.schema, call.userPrompt+rendered, call.result); err != nil {
				// Degrade to the zero payload rather than failing the run.
				slog.WarnContext(ctx, "extraction call degraded to empty payload",
					"call", call.name,
					"error", err,
					"duration_ms", time.Since(start).Milliseconds())
				return
			}
			slog.DebugContext(ctx, "extraction call completed",
				"call", call.name,
				"duration_ms", time.Since(start).Milliseconds())
		}(i)
	}
	wg.Wait()

	result := merge(proto, quals, work, org)

	slog.InfoContext(ctx, "extraction merged",
		"protocol_id", proto.ID,
		"protocol_questions", len(result.ProtocolQuestions),
		"must_have", len(result.MustHave),
		"alternatives", len(result.Alternatives),
		"sites", len(result.Sites),
		"departments", len(result.AllDepartments))

	return result, nil
}

// chat tries the primary provider with retries, then the secondary once.
func (e *Extractor) chat(ctx context.Context, schemaName string, schema any, userPrompt string, result any) error {
	req := llm.Request{
		SystemPrompt: extractSystemPrompt,
		UserPrompt:   userPrompt,
		SchemaName:   schemaName,
		Schema:       schema,
		MaxTokens:    e.opts.MaxTokens,
		Temperature:  llm.Temp(0.1), // Low temp for consistent extraction
	}

	var err error
	if e.primary != nil {
		err = e.chatWithRetry(ctx, e.primary, req, result, 3)
		if err == nil {
			return nil
		}
	}

	if e.secondary != nil {
		if e.primary != nil {
			slog.WarnContext(ctx, "primary extraction provider failed, trying secondary",
				"schema", schemaName,
				"error", err)
		}
		if secErr := e.chatWithRetry(ctx, e.secondary, req, result, 1); secErr == nil {
			return nil
		} else if err == nil {
			err = secErr
		}
	}

	return fmt.Errorf("extraction %s: %w", schemaName, err)
}

func (e *Extractor) chatWithRetry(ctx context.Context, client llm.Client, req llm.Request, result any, attempts int) error {
	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, e.opts.CallTimeout)
		_, err = client.Chat(callCtx, req, result)
		cancel()

		if err == nil {
			return nil
		}
		if ctx.Err() != nil || !llm.IsRetryable(ctx, err) {
			return err
		}
		slog.WarnContext(ctx, "extraction call retry",
			"schema", req.SchemaName,
			"attempt", attempt+1,
			"error", err)
		time.Sleep(time.Duration(1<<attempt) * time.Second)
	}
	return err
}
