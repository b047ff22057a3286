package model

// KnowledgeBase is the optional companion artifact: category-keyed
// contextual text for the delivering agent. Entries are grounding
// material, not questions.
type KnowledgeBase struct {
	SalaryInfo         []string `json:"salary_info,omitempty"`
	WorkConditions     []string `json:"work_conditions,omitempty"`
	CompanyBenefits    []string `json:"company_benefits,omitempty"`
	Standort           []string `json:"standort,omitempty"`
	CompanyCulture     []string `json:"company_culture,omitempty"`
	LocationPriorities []string `json:"location_priorities,omitempty"`
	InternalNotes      []string `json:"internal_notes,omitempty"`
	GeneralInfo        []string `json:"general_info,omitempty"`
}

// Empty reports whether no category holds any entry.
func (kb KnowledgeBase) Empty() bool {
	return len(kb.SalaryInfo) == 0 &&
		len(kb.WorkConditions) == 0 &&
		len(kb.CompanyBenefits) == 0 &&
		len(kb.Standort) == 0 &&
		len(kb.CompanyCulture) == 0 &&
		len(kb.LocationPriorities) == 0 &&
		len(kb.InternalNotes) == 0 &&
		len(kb.GeneralInfo) == 0
}
