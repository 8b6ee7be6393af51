// Package rendering turns model output and stored text into message markup
// Telegram accepts.
package rendering

import "strings"

// EscapeHTML escapes the characters Telegram's HTML parse mode reserves:
// < > & and the double quote inside attributes.
func EscapeHTML(text string) string {
	if text == "" {
		return ""
	}

	var result strings.Builder
	result.Grow(len(text) + len(text)/8)

	for _, r := range text {
		switch r {
		case '<':
			result.WriteString("&lt;")
		case '>':
			result.WriteString("&gt;")
		case '&':
			result.WriteString("&amp;")
		case '"':
			result.WriteString("&quot;")
		default:
			result.WriteRune(r)
		}
	}

	return result.String()
}
