package model

// ExtractResult is the merged output of the extraction fan-out.
// Immutable once produced; the structuring engine only reads it.
type ExtractResult struct {
	Sites                  []Site              `json:"sites"`
	Priorities             []Priority          `json:"priorities"`
	Preferred              []string            `json:"preferred"`
	MustHave               []string            `json:"must_have"`
	Alternatives           []string            `json:"alternatives"`
	OptionalQualifications []string            `json:"optional_qualifications"`
	Constraints            Constraints         `json:"constraints"`
	ProtocolQuestions      []ProtocolQuestion  `json:"protocol_questions"`
	VerbatimCandidates     []VerbatimCandidate `json:"verbatim_candidates"`
	AllDepartments         []string            `json:"all_departments"`
	Roles                  []string            `json:"roles"`
	CultureNotes           []string            `json:"culture_notes"`
	InternalNotes          []string            `json:"internal_notes"`
	CareerQuestionsNeeded  bool                `json:"career_questions_needed"`
}

// Site is a named work location with optional sub-stations.
type Site struct {
	Label    string   `json:"label"`
	Address  string   `json:"address,omitempty"`
	Stations []string `json:"stations,omitempty"`
}

// Priority is an area the employer currently needs most.
type Priority struct {
	Label  string `json:"label"`
	Reason string `json:"reason,omitempty"`
	Level  int    `json:"level"` // 1 = most urgent, 3 = least
}

type Constraints struct {
	WorkTime WorkTime `json:"work_time"`
	Pay      string   `json:"pay,omitempty"`
	Benefits []string `json:"benefits,omitempty"`
}

type WorkTime struct {
	FullTime bool   `json:"full_time"`
	PartTime bool   `json:"part_time"`
	Details  string `json:"details,omitempty"`
}

// ProtocolQuestion is text the extractor judged directly interview-worthy.
type ProtocolQuestion struct {
	ID           string   `json:"id"`
	Text         string   `json:"text"`
	TypeHint     string   `json:"type_hint,omitempty"`
	CategoryHint string   `json:"category_hint,omitempty"`
	Options      []string `json:"options,omitempty"`
	Required     bool     `json:"required"`
	IsGate       bool     `json:"is_gate"`
	Source       Source   `json:"source"`
}

// VerbatimCandidate is a lower-confidence fallback text span.
type VerbatimCandidate struct {
	Text           string `json:"text"`
	IsRealQuestion bool   `json:"is_real_question"`
	Source         Source `json:"source"`
}
