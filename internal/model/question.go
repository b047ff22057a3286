package model

// QuestionType is the answer format the voice agent expects.
type QuestionType string

const (
	TypeString     QuestionType = "string"
	TypeDate       QuestionType = "date"
	TypeBoolean    QuestionType = "boolean"
	TypeChoice     QuestionType = "choice"
	TypeMultiChoice QuestionType = "multi_choice"
	TypeRankedList QuestionType = "ranked_list"
)

// Question is the unit of catalog output. Later pipeline stages only add
// enrichment blocks; they never mutate fields set by earlier stages, except
// the documented priority/category normalization in the policy resolver.
type Question struct {
	ID            string        `json:"id"`
	Question      string        `json:"question"`
	Preamble      string        `json:"preamble,omitempty"`
	Type          QuestionType  `json:"type"`
	Options       []string      `json:"options,omitempty"`
	Required      bool          `json:"required"`
	Priority      int           `json:"priority"` // 1 = must resolve first, 3 = nice to have
	Group         string        `json:"group,omitempty"`
	Category      string        `json:"category,omitempty"`
	CategoryOrder int           `json:"category_order"`
	HelpText      string        `json:"help_text,omitempty"`
	InputHint     string        `json:"input_hint,omitempty"`
	Context       string        `json:"context,omitempty"`
	Conditions    []Condition   `json:"conditions,omitempty"`
	Source        *Source       `json:"source,omitempty"`

	SlotConfig        *SlotConfig        `json:"slot_config,omitempty"`
	GateConfig        *GateConfig        `json:"gate_config,omitempty"`
	ConversationHints *ConversationHints `json:"conversation_hints,omitempty"`
}

// Source records where in the protocol a question came from.
type Source struct {
	PageID   string `json:"page_id,omitempty"`
	PromptID string `json:"prompt_id,omitempty"`
	Verbatim bool   `json:"verbatim,omitempty"`
}

// Condition gates whether a question is asked at runtime.
type Condition struct {
	When When `json:"when"`
	Then Then `json:"then"`
}

type When struct {
	Field string `json:"field"`
	Op    string `json:"op"` // eq | in | exists
	Value any    `json:"value,omitempty"`
}

type Then struct {
	Action string `json:"action"` // ask | skip | prefill | reorder
}

// GateConfig models the conditional branching contract consumed by the
// downstream agent. A gate question's negative answer terminates the
// interaction unless a satisfying alternative exists.
type GateConfig struct {
	IsGate           bool                `json:"is_gate,omitempty"`
	IsAlternative    bool                `json:"is_alternative,omitempty"`
	AlternativeFor   string              `json:"alternative_for,omitempty"`
	CanSatisfyGate   string              `json:"can_satisfy_gate,omitempty"`
	HasAlternatives  bool                `json:"has_alternatives,omitempty"`
	FinalAlternative bool                `json:"final_alternative,omitempty"`
	EndMessageIfAllNo string             `json:"end_message_if_all_no,omitempty"`
	RequiresSlots    []string            `json:"requires_slots,omitempty"`
	ContextTriggers  map[string][]string `json:"context_triggers,omitempty"`
}

// SlotConfig names the logical variable this question fills.
type SlotConfig struct {
	FillsSlot           string  `json:"fills_slot"`
	Required            bool    `json:"required"`
	ConfidenceThreshold float64 `json:"confidence_threshold"`
	Validation          string  `json:"validation,omitempty"`
}

// ConversationHints steer the delivering agent's phrasing.
type ConversationHints struct {
	OnUnclearAnswer        string   `json:"on_unclear_answer,omitempty"`
	OnNegativeAnswer       string   `json:"on_negative_answer,omitempty"`
	ConfidenceBoostPhrases []string `json:"confidence_boost_phrases,omitempty"`
	DiversifyAfter         string   `json:"diversify_after,omitempty"`
}
