// Package knowledge derives the companion knowledge base from extraction
// output. Entries are contextual text the voice agent can cite when a
// candidate asks back; nothing here turns into a question.
package knowledge

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"voiceki.app/catalog/internal/model"
)

// Build maps extracted facts into knowledge-base categories. Deterministic
// over its input: no LLM call, no clock, no randomness.
func Build(ctx context.Context, result *model.ExtractResult) model.KnowledgeBase {
	var kb model.KnowledgeBase

	if pay := strings.TrimSpace(result.Constraints.Pay); pay != "" {
		kb.SalaryInfo = append(kb.SalaryInfo, pay)
	}
	if details := strings.TrimSpace(result.Constraints.WorkTime.Details); details != "" {
		kb.WorkConditions = append(kb.WorkConditions, details)
	}
	for _, benefit := range result.Constraints.Benefits {
		if benefit = strings.TrimSpace(benefit); benefit != "" {
			kb.CompanyBenefits = append(kb.CompanyBenefits, benefit)
		}
	}

	for _, site := range result.Sites {
		entry := siteEntry(site)
		if entry != "" {
			kb.Standort = append(kb.Standort, entry)
		}
	}

	for _, note := range result.CultureNotes {
		if note = strings.TrimSpace(note); note != "" {
			kb.CompanyCulture = append(kb.CompanyCulture, note)
		}
	}

	for _, p := range result.Priorities {
		if p.Level != 1 || strings.TrimSpace(p.Label) == "" {
			continue
		}
		entry := p.Label
		if reason := strings.TrimSpace(p.Reason); reason != "" {
			entry = fmt.Sprintf("%s: %s", p.Label, reason)
		}
		kb.LocationPriorities = append(kb.LocationPriorities, entry)
	}

	for _, note := range result.InternalNotes {
		if note = strings.TrimSpace(note); note != "" {
			kb.InternalNotes = append(kb.InternalNotes, note)
		}
	}

	for _, q := range result.OptionalQualifications {
		if q = strings.TrimSpace(q); q != "" {
			kb.GeneralInfo = append(kb.GeneralInfo, "Wünschenswert: "+q)
		}
	}

	slog.DebugContext(ctx, "knowledge base built",
		"empty", kb.Empty(),
		"standort_entries", len(kb.Standort),
		"general_entries", len(kb.GeneralInfo))

	return kb
}

// siteEntry renders one site as a citable sentence fragment.
func siteEntry(site model.Site) string {
	label := strings.TrimSpace(site.Label)
	if label == "" {
		return ""
	}
	parts := []string{label}
	if addr := strings.TrimSpace(site.Address); addr != "" {
		parts = append(parts, addr)
	}
	if len(site.Stations) > 0 {
		parts = append(parts, "Stationen: "+strings.Join(site.Stations, ", "))
	}
	return strings.Join(parts, ", ")
}
