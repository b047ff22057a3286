// Package policy applies composable conversation-control policies to the
// finished, categorized question list. Policies run in a fixed order
// because later ones read fields set by earlier ones; each run appends an
// audit trail of "policy: question-id" entries.
package policy

import (
	"context"
	"log/slog"
	"strings"

	"voiceki.app/catalog/internal/categorize"
	"voiceki.app/catalog/internal/model"
)

// Level controls which policies run. Basic runs the structural policies
// (consent, slots, gates); standard adds delivery tuning; advanced adds
// empathy phrasing.
type Level string

const (
	LevelBasic    Level = "basic"
	LevelStandard Level = "standard"
	LevelAdvanced Level = "advanced"
)

// ParseLevel maps a context string to a Level, defaulting to standard.
func ParseLevel(s string) Level {
	switch Level(s) {
	case LevelBasic, LevelStandard, LevelAdvanced:
		return Level(s)
	default:
		return LevelStandard
	}
}

func (l Level) rank() int {
	switch l {
	case LevelAdvanced:
		return 3
	case LevelStandard:
		return 2
	default:
		return 1
	}
}

// Resolver applies the policy chain at a given level.
type Resolver struct {
	level Level
}

func NewResolver(level Level) *Resolver {
	return &Resolver{level: level}
}

// Resolve runs the policies in order and returns the enriched questions
// plus the audit trail. Re-running on an already enriched list is
// idempotent: policies check for existing enrichment before writing
// defaults, and the forced priority/category fields converge.
func (r *Resolver) Resolve(ctx context.Context, questions []model.Question) ([]model.Question, []string) {
	var audit []string

	audit = append(audit, consentFirst(questions)...)
	audit = append(audit, slotDependency(questions)...)
	audit = append(audit, gateSequence(questions)...)

	if r.level.rank() >= LevelStandard.rank() {
		audit = append(audit, keywordTrigger(questions)...)
		audit = append(audit, diversification(questions)...)
		audit = append(audit, confidenceCheck(questions)...)
	}
	if r.level.rank() >= LevelAdvanced.rank() {
		audit = append(audit, empathyEnhancement(questions)...)
	}

	slog.InfoContext(ctx, "policies resolved",
		"level", string(r.level),
		"questions", len(questions),
		"audit_entries", len(audit))

	return questions, audit
}

// Level returns the resolver's configured level.
func (r *Resolver) Level() Level {
	return r.level
}

var consentVocab = []string{"dsgvo", "einwilligung", "consent", "datenschutz", "speicher"}

// consentFirst guarantees consent is resolved before anything else:
// category order 0 sorts ahead of every delivery category.
func consentFirst(questions []model.Question) []string {
	var audit []string
	for i := range questions {
		q := &questions[i]
		lower := strings.ToLower(q.ID + " " + q.Question)
		if !containsAny(lower, consentVocab) {
			continue
		}
		q.Priority = 1
		q.CategoryOrder = 0
		if q.SlotConfig == nil {
			q.SlotConfig = &model.SlotConfig{
				FillsSlot:           "consent_given",
				Required:            true,
				ConfidenceThreshold: 0.95,
			}
		}
		audit = append(audit, "consent_first: "+q.ID)
	}
	return audit
}

// slotRules maps slot names to the vocabulary that implies them. Ordered;
// the first matching slot wins.
var slotRules = []struct {
	slot  string
	vocab []string
}{
	{"name", []string{"heißen sie", "ihr name", "ihren namen"}},
	{"adresse", []string{"adresse", "anschrift"}},
	{"email", []string{"e-mail", "email"}},
	{"telefon", []string{"telefon", "rückruf"}},
	{"qualifikation", []string{"examen", "ausbildung", "studium", "abschluss", "qualifikation", "zertifikat"}},
	{"standort", []string{"standort", "stadt", "region"}},
	{"einsatzbereich", []string{"abteilung", "station", "bereich", "fachabteilung"}},
	{"dienstmodell", []string{"vollzeit", "teilzeit", "arbeitszeit"}},
	{"verfuegbarkeit", []string{"ab wann", "anfangen", "verfügbar", "startdatum"}},
	{"schichtmodell", []string{"schicht", "nachtdienst"}},
}

// slotDependency gives every required question without a slot a tracked
// slot when its text matches the slot vocabulary.
func slotDependency(questions []model.Question) []string {
	var audit []string
	for i := range questions {
		q := &questions[i]
		if !q.Required {
			continue
		}
		lower := strings.ToLower(q.Question)
		for _, rule := range slotRules {
			if !containsAny(lower, rule.vocab) {
				continue
			}
			if q.SlotConfig == nil {
				q.SlotConfig = &model.SlotConfig{
					FillsSlot:           rule.slot,
					Required:            true,
					ConfidenceThreshold: 0.8,
				}
			}
			if q.SlotConfig.FillsSlot == rule.slot {
				audit = append(audit, "slot_dependency: "+q.ID)
			}
			break
		}
	}
	return audit
}

// gateSequence enforces the gate invariant: no gate question may have
// lower precedence than a non-gate question. Gates are pinned to the
// qualification category at priority 1, and the slot the gate depends on
// is recorded in requires_slots.
func gateSequence(questions []model.Question) []string {
	var audit []string
	for i := range questions {
		q := &questions[i]
		if q.GateConfig == nil || !q.GateConfig.IsGate {
			continue
		}
		q.Priority = 1
		q.Category = categorize.CategoryStandardQuali
		q.CategoryOrder = categorize.CategoryOrder[categorize.CategoryStandardQuali]

		slot := "gate_" + q.ID
		if q.SlotConfig != nil {
			slot = q.SlotConfig.FillsSlot
		}
		if !contains(q.GateConfig.RequiresSlots, slot) {
			q.GateConfig.RequiresSlots = append(q.GateConfig.RequiresSlots, slot)
		}
		audit = append(audit, "gate_sequence: "+q.ID)
	}
	return audit
}

// followUpKeywords are domain topics the agent should probe further when
// the candidate mentions them.
var followUpKeywords = []string{"Intensiv", "OP", "Notaufnahme", "Palliativ", "Teilzeit", "Nachtdienst"}

func keywordTrigger(questions []model.Question) []string {
	var audit []string
	for i := range questions {
		q := &questions[i]

		var matched []string
		lower := strings.ToLower(q.Question + " " + strings.Join(q.Options, " "))
		for _, kw := range followUpKeywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				matched = append(matched, kw)
			}
		}
		if len(matched) == 0 {
			continue
		}

		if q.GateConfig == nil {
			q.GateConfig = &model.GateConfig{}
		}
		if q.GateConfig.ContextTriggers == nil {
			q.GateConfig.ContextTriggers = map[string][]string{}
		}
		if _, ok := q.GateConfig.ContextTriggers["keywords_to_follow_up"]; !ok {
			q.GateConfig.ContextTriggers["keywords_to_follow_up"] = matched
		}
		audit = append(audit, "keyword_trigger: "+q.ID)
	}
	return audit
}

// diversification hints the agent to vary question types: within one
// category-order bucket, a boolean following two consecutive booleans is
// marked so the agent switches style afterwards.
func diversification(questions []model.Question) []string {
	var audit []string
	consecutive := map[int]int{}
	for i := range questions {
		q := &questions[i]
		bucket := q.CategoryOrder

		if q.Type != model.TypeBoolean {
			consecutive[bucket] = 0
			continue
		}
		if consecutive[bucket] >= 2 {
			if q.ConversationHints == nil {
				q.ConversationHints = &model.ConversationHints{}
			}
			if q.ConversationHints.DiversifyAfter == "" {
				q.ConversationHints.DiversifyAfter = "boolean"
			}
			audit = append(audit, "diversification: "+q.ID)
		}
		consecutive[bucket]++
	}
	return audit
}

const clarificationTemplate = "Verstehe ich richtig, dass Sie {interpretation}? Bitte bestätigen Sie das kurz."

var boostPhrases = []string{"ja", "definitiv", "sicher", "korrekt", "genau", "nein", "nicht", "keineswegs"}

// confidenceCheck gives every required question without hints a default
// clarification template, plus lexical confidence cues for booleans.
func confidenceCheck(questions []model.Question) []string {
	var audit []string
	for i := range questions {
		q := &questions[i]
		if !q.Required {
			continue
		}
		if q.ConversationHints == nil {
			hints := &model.ConversationHints{OnUnclearAnswer: clarificationTemplate}
			if q.Type == model.TypeBoolean {
				hints.ConfidenceBoostPhrases = boostPhrases
			}
			q.ConversationHints = hints
		}
		if q.ConversationHints.OnUnclearAnswer == clarificationTemplate {
			audit = append(audit, "confidence_check: "+q.ID)
		}
	}
	return audit
}

const empathyDeflection = "Vielen Dank für Ihre Offenheit. Lassen Sie uns gemeinsam prüfen, ob eine Alternative für Sie infrage kommt."

// empathyEnhancement softens gate rejections at the advanced level.
func empathyEnhancement(questions []model.Question) []string {
	var audit []string
	for i := range questions {
		q := &questions[i]
		if q.GateConfig == nil || !q.GateConfig.IsGate {
			continue
		}
		if q.ConversationHints == nil {
			q.ConversationHints = &model.ConversationHints{}
		}
		if q.ConversationHints.OnNegativeAnswer == "" {
			q.ConversationHints.OnNegativeAnswer = empathyDeflection
		}
		if q.ConversationHints.OnNegativeAnswer == empathyDeflection {
			audit = append(audit, "empathy: "+q.ID)
		}
	}
	return audit
}

func containsAny(lower string, vocab []string) bool {
	for _, v := range vocab {
		if strings.Contains(lower, v) {
			return true
		}
	}
	return false
}

func contains(items []string, target string) bool {
	for _, item := range items {
		if item == target {
			return true
		}
	}
	return false
}
