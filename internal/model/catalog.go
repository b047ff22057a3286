package model

// SchemaVersion is the catalog contract version the downstream agent consumes.
const SchemaVersion = "1.0"

// Generator identifies the producing pipeline in catalog metadata.
const Generator = "voiceki-go-question-compiler@1.0.0"

// Catalog is the final artifact handed to the voice agent.
type Catalog struct {
	Meta      Meta       `json:"_meta"`
	Questions []Question `json:"questions"`
}

type Meta struct {
	SchemaVersion   string   `json:"schema_version"`
	GeneratedAt     string   `json:"generated_at"`
	Generator       string   `json:"generator"`
	RunID           int64    `json:"run_id,omitempty"`
	PoliciesApplied []string `json:"policies_applied,omitempty"`
}
