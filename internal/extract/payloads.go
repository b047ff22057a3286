package extract

import "voiceki.app/catalog/common/llm"

// The extraction service is asked three specialized questions about the
// protocol instead of one monolithic one. Each payload is schema-constrained
// so the provider returns exactly the structure we merge from.

type QualificationsPayload struct {
	Preferred         []string                  `json:"preferred" jsonschema_description:"Preferred but not required qualifications"`
	MustHave          []string                  `json:"must_have" jsonschema_description:"Hard qualification requirements"`
	Alternatives      []string                  `json:"alternatives" jsonschema_description:"Qualifications that can substitute for a must-have"`
	Optional          []string                  `json:"optional" jsonschema_description:"Nice-to-have qualifications"`
	ProtocolQuestions []ProtocolQuestionPayload `json:"protocol_questions" jsonschema_description:"Questions the protocol already asks about qualifications"`
}

type WorkConditionsPayload struct {
	Arbeitszeit       WorkTimePayload           `json:"arbeitszeit" jsonschema_description:"Working-time models offered"`
	Gehalt            string                    `json:"gehalt" jsonschema_description:"Pay or tariff description, verbatim where possible"`
	Benefits          []string                  `json:"benefits" jsonschema_description:"Employer benefits"`
	ProtocolQuestions []ProtocolQuestionPayload `json:"protocol_questions" jsonschema_description:"Questions the protocol already asks about working conditions"`
}

type WorkTimePayload struct {
	Vollzeit bool   `json:"vollzeit" jsonschema_description:"Full-time offered"`
	Teilzeit bool   `json:"teilzeit" jsonschema_description:"Part-time offered"`
	Details  string `json:"details" jsonschema_description:"Free-text details such as shift models"`
}

type OrganizationalPayload struct {
	Sites             []SitePayload             `json:"sites" jsonschema_description:"Work locations named in the protocol"`
	AllDepartments    []string                  `json:"all_departments" jsonschema_description:"Every department or station mentioned"`
	Priorities        []PriorityPayload         `json:"priorities" jsonschema_description:"Areas the employer currently needs most"`
	Roles             []string                  `json:"roles" jsonschema_description:"Job roles or titles mentioned"`
	CultureNotes      []string                  `json:"culture_notes" jsonschema_description:"Statements about company culture"`
	InternalNotes     []string                  `json:"internal_notes" jsonschema_description:"Notes addressed to staff, not candidates"`
	ProtocolQuestions []ProtocolQuestionPayload `json:"protocol_questions" jsonschema_description:"Questions the protocol already asks about locations or departments"`
}

type SitePayload struct {
	Label    string   `json:"label" jsonschema_description:"Site name, usually a street name"`
	Address  string   `json:"address" jsonschema_description:"Full address if given"`
	Stations []string `json:"stations" jsonschema_description:"Sub-stations at this site"`
}

type PriorityPayload struct {
	Label  string `json:"label" jsonschema_description:"Priority area name"`
	Reason string `json:"reason" jsonschema_description:"Why this area is urgent"`
	Level  int    `json:"level" jsonschema_description:"Urgency 1 (highest) to 3"`
}

type ProtocolQuestionPayload struct {
	ID           string   `json:"id" jsonschema_description:"Stable identifier, snake_case"`
	Text         string   `json:"text" jsonschema_description:"The question text, verbatim or lightly normalized"`
	TypeHint     string   `json:"type_hint" jsonschema:"enum=string,enum=date,enum=boolean,enum=choice,enum=multi_choice,enum=" jsonschema_description:"Answer format if evident"`
	CategoryHint string   `json:"category_hint" jsonschema_description:"Topical hint such as qualifikation, standort, arbeitszeit"`
	Options      []string `json:"options" jsonschema_description:"Answer options if the protocol lists any"`
	Required     bool     `json:"required" jsonschema_description:"Whether an answer is mandatory"`
	IsGate       bool     `json:"is_gate" jsonschema_description:"Whether a negative answer disqualifies the candidate"`
	PageID       string   `json:"page_id" jsonschema_description:"Protocol page the question came from"`
	PromptID     string   `json:"prompt_id" jsonschema_description:"Protocol prompt the question came from"`
}

var (
	qualificationsSchema = llm.GenerateSchema[QualificationsPayload]()
	workConditionsSchema = llm.GenerateSchema[WorkConditionsPayload]()
	organizationalSchema = llm.GenerateSchema[OrganizationalPayload]()
)

const extractSystemPrompt = `Du analysierst Gesprächsprotokolle für Vorstellungsgespräche in der Pflege- und Gesundheitsbranche.

Das Protokoll besteht aus Seiten mit Prompts, die ein Mensch formlos verfasst hat. Extrahiere ausschließlich, was tatsächlich im Text steht. Erfinde nichts.

## Regeln

- Gib Texte möglichst wörtlich wieder, ohne Umformulierung
- Fragen, die das Protokoll bereits explizit stellt, gehören in protocol_questions
- is_gate nur setzen, wenn das Protokoll eine Anforderung als zwingend markiert
- Leere Listen sind korrekt, wenn das Protokoll nichts dazu sagt`

const qualificationsUserPrompt = `Extrahiere alle Qualifikationsanforderungen aus diesem Protokoll.

Unterscheide:
- must_have: zwingende Abschlüsse oder Nachweise
- alternatives: Abschlüsse, die eine zwingende Anforderung ersetzen können
- preferred: gewünscht, aber nicht zwingend
- optional: erwähnt, ohne Anforderungscharakter

`

const workConditionsUserPrompt = `Extrahiere die Rahmenbedingungen aus diesem Protokoll: Arbeitszeitmodelle (Vollzeit/Teilzeit, Schichten), Gehalt bzw. Tarif und Benefits.

`

const organizationalUserPrompt = `Extrahiere Organisationsinformationen aus diesem Protokoll: Standorte (mit Adressen und Stationen), alle genannten Abteilungen oder Stationen, aktuell besonders gesuchte Bereiche mit Dringlichkeit, Rollen sowie Hinweise zu Unternehmenskultur und interne Notizen.

`
