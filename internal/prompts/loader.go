// Package prompts holds the language-model prompts used to fill templates.
// Prompts live in JSON files embedded at compile time.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

//go:embed *.json
var promptFiles embed.FS

const (
	fillFile        = "fill.json"
	fillSystemKey   = "system"
	fillTemplateKey = "fill-template"
)

// Slots every fill prompt must contain.
const (
	SlotTemplate    = "{{.Template}}"
	SlotDescription = "{{.Description}}"
	SlotVacancy     = "{{.Vacancy}}"
)

// FillPrompt is the parsed fill.json.
type FillPrompt struct {
	System   string
	Template string
}

// FillVars are the values substituted into FillPrompt.Template.
type FillVars struct {
	Template    string
	Description string
	Vacancy     string
}

var loadFill = sync.OnceValues(func() (*FillPrompt, error) {
	data, err := promptFiles.ReadFile(fillFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file %s: %w", fillFile, err)
	}
	return ParseFill(data)
})

// Fill returns the embedded fill prompt. The file is parsed once.
func Fill() (*FillPrompt, error) {
	return loadFill()
}

// ParseFill decodes a fill prompt file and checks that the user template
// carries all three slots.
func ParseFill(data []byte) (*FillPrompt, error) {
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file %s: %w", fillFile, err)
	}

	p := &FillPrompt{System: raw[fillSystemKey], Template: raw[fillTemplateKey]}
	if strings.TrimSpace(p.Template) == "" {
		return nil, fmt.Errorf("prompt key %q not found in %s", fillTemplateKey, fillFile)
	}
	for _, slot := range []string{SlotTemplate, SlotDescription, SlotVacancy} {
		if !strings.Contains(p.Template, slot) {
			return nil, fmt.Errorf("prompt %q is missing slot %s", fillTemplateKey, slot)
		}
	}
	return p, nil
}

// Render substitutes vars into the user template in a single pass, so a
// value that itself contains a slot is inserted literally.
func (p *FillPrompt) Render(vars FillVars) string {
	return strings.NewReplacer(
		SlotTemplate, vars.Template,
		SlotDescription, vars.Description,
		SlotVacancy, vars.Vacancy,
	).Replace(p.Template)
}
