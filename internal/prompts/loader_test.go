package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFill_EmbeddedPrompt(t *testing.T) {
	p, err := Fill()
	require.NoError(t, err)
	assert.NotEmpty(t, p.System)
	for _, slot := range []string{SlotTemplate, SlotDescription, SlotVacancy} {
		assert.Contains(t, p.Template, slot)
	}

	again, err := Fill()
	require.NoError(t, err)
	assert.Same(t, p, again)
}

func TestParseFill_Errors(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		errorString string
	}{
		{name: "malformed", content: `{"system": `, errorString: "failed to parse"},
		{name: "missing template", content: `{"system": "s"}`, errorString: "not found"},
		{name: "missing slot", content: `{"fill-template": "{{.Template}} {{.Vacancy}}"}`, errorString: "{{.Description}}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFill([]byte(tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorString)
		})
	}
}

func TestRender(t *testing.T) {
	p := &FillPrompt{Template: "T={{.Template}} D={{.Description}} V={{.Vacancy}}"}

	got := p.Render(FillVars{Template: "[Position]", Description: "jobs", Vacancy: "Engineer"})
	assert.Equal(t, "T=[Position] D=jobs V=Engineer", got)
}

func TestRender_ValuesAreNotReexpanded(t *testing.T) {
	p := &FillPrompt{Template: "T={{.Template}} V={{.Vacancy}}"}

	got := p.Render(FillVars{Template: "[Position] {{.Vacancy}}", Vacancy: "Engineer"})
	assert.Equal(t, "T=[Position] {{.Vacancy}} V=Engineer", got)
}
