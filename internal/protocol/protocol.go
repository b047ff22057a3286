package protocol

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Protocol is the semi-structured, human-authored conversation protocol:
// a hierarchical document of pages and prompts describing job-interview
// criteria, working conditions, and miscellaneous notes.
type Protocol struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Pages []Page `json:"pages"`
}

type Page struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Prompts []Prompt `json:"prompts"`
}

type Prompt struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Position int    `json:"position"`
	Notes    string `json:"notes,omitempty"`
}

// Parse decodes a protocol from JSON.
func Parse(data []byte) (*Protocol, error) {
	var p Protocol
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse protocol: %w", err)
	}
	if p.ID == "" {
		return nil, fmt.Errorf("parse protocol: missing id")
	}
	return &p, nil
}

// Render flattens the protocol into prompt-ready text, one page per
// section with its prompts in position order as authored.
func (p *Protocol) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Protokoll: %s\n", p.Name)
	for _, page := range p.Pages {
		fmt.Fprintf(&b, "\n## Seite: %s (id=%s)\n", page.Name, page.ID)
		for _, prompt := range page.Prompts {
			fmt.Fprintf(&b, "- [prompt=%s] %s\n", prompt.ID, prompt.Question)
			if prompt.Notes != "" {
				fmt.Fprintf(&b, "  Notizen: %s\n", prompt.Notes)
			}
		}
	}
	return b.String()
}

// PromptCount returns the number of prompts across all pages.
func (p *Protocol) PromptCount() int {
	n := 0
	for _, page := range p.Pages {
		n += len(page.Prompts)
	}
	return n
}
