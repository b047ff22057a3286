// Package catalog assembles the final question catalog: deterministic
// ordering, run metadata, and a schema gate before anything leaves the
// pipeline.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"voiceki.app/catalog/internal/model"
)

// ErrInvalidCatalog marks a catalog that failed its own schema gate.
// Callers must not ship such a catalog to the voice agent.
var ErrInvalidCatalog = errors.New("catalog failed schema validation")

// Assemble orders the questions, attaches run metadata, and validates the
// result against the catalog schema.
func Assemble(ctx context.Context, questions []model.Question, runID int64, policiesApplied []string) (*model.Catalog, error) {
	sorted := make([]model.Question, len(questions))
	copy(sorted, questions)
	sortQuestions(sorted)

	cat := &model.Catalog{
		Meta: model.Meta{
			SchemaVersion:   model.SchemaVersion,
			GeneratedAt:     time.Now().UTC().Format(time.RFC3339),
			Generator:       model.Generator,
			RunID:           runID,
			PoliciesApplied: policiesApplied,
		},
		Questions: sorted,
	}

	if err := Validate(cat); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "catalog assembled",
		"questions", len(sorted),
		"run_id", runID,
		"policies_applied", len(policiesApplied))

	return cat, nil
}

// sortQuestions orders the catalog for delivery: category blocks first,
// required before optional within a block, then priority, then id so two
// runs over the same input produce byte-identical output.
func sortQuestions(questions []model.Question) {
	sort.SliceStable(questions, func(i, j int) bool {
		a, b := questions[i], questions[j]
		if a.CategoryOrder != b.CategoryOrder {
			return a.CategoryOrder < b.CategoryOrder
		}
		if a.Required != b.Required {
			return a.Required
		}
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		return a.ID < b.ID
	})
}

// catalogSchema is the minimal contract every emitted catalog must
// satisfy. It checks structure, not content: the downstream agent relies
// on these fields being present and well-typed.
const catalogSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["_meta", "questions"],
  "properties": {
    "_meta": {
      "type": "object",
      "required": ["schema_version", "generated_at", "generator"],
      "properties": {
        "schema_version": {"type": "string"},
        "generated_at": {"type": "string"},
        "generator": {"type": "string"}
      }
    },
    "questions": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "question", "type", "required", "priority"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "question": {"type": "string", "minLength": 1},
          "type": {
            "type": "string",
            "enum": ["string", "date", "boolean", "choice", "multi_choice", "ranked_list"]
          },
          "required": {"type": "boolean"},
          "priority": {"type": "integer", "minimum": 1},
          "category": {"type": "string"},
          "category_order": {"type": "integer", "minimum": 0},
          "options": {"type": "array", "items": {"type": "string"}}
        }
      }
    }
  }
}`

// Validate checks a catalog against the contract schema. The catalog is
// round-tripped through JSON so the check sees exactly what a consumer
// would parse.
func Validate(cat *model.Catalog) error {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("catalog.json", bytes.NewReader([]byte(catalogSchema))); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("catalog.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}

	data, err := json.Marshal(cat)
	if err != nil {
		return fmt.Errorf("marshal catalog: %w", err)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("unmarshal catalog: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	return nil
}
