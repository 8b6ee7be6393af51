package llm

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncateBody(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantRunes int
		truncated bool
	}{
		{name: "short", body: "bad request", wantRunes: 11},
		{name: "exact limit", body: strings.Repeat("x", maxErrorBody), wantRunes: maxErrorBody},
		{name: "cyrillic under limit", body: strings.Repeat("я", maxErrorBody), wantRunes: maxErrorBody},
		{name: "cyrillic over limit", body: strings.Repeat("ошибка ", 200), wantRunes: maxErrorBody, truncated: true},
		{name: "emoji over limit", body: strings.Repeat("🙂", maxErrorBody+1), wantRunes: maxErrorBody, truncated: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncateBody([]byte(tt.body))
			require.True(t, utf8.ValidString(got))

			kept := strings.TrimSuffix(got, "...(truncated)")
			assert.Equal(t, tt.truncated, kept != got)
			assert.Equal(t, tt.wantRunes, utf8.RuneCountInString(kept))
			assert.True(t, strings.HasPrefix(tt.body, kept))
		})
	}
}
