package filler

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	maxLabelRunes = 40
	maxLabelWords = 5
)

var (
	htmlTagRe   = regexp.MustCompile(`</?[a-zA-Z][^>]*>`)
	labelLineRe = regexp.MustCompile(`^(.+?)\s*(?::|：|\s[—–-]\s)\s*(.*)$`)
)

// labeledValue is one "Label: Value" line of the vacancy text.
type labeledValue struct {
	Key   string
	Label string
	Value string
}

// labelIndex holds labeled values in source order; the first label with a
// given key wins.
type labelIndex struct {
	ordered []labeledValue
	byKey   map[string]labeledValue
}

func (idx *labelIndex) keys() []string {
	keys := make([]string, len(idx.ordered))
	for i, lv := range idx.ordered {
		keys[i] = lv.Key
	}
	return keys
}

// parseSource extracts labeled values from free-form vacancy text. A label
// with an empty value takes the next non-label line as its value.
func parseSource(source string) *labelIndex {
	idx := &labelIndex{byKey: make(map[string]labeledValue)}
	lines := strings.Split(strings.ReplaceAll(source, "\r\n", "\n"), "\n")

	for i := 0; i < len(lines); i++ {
		label, value, ok := splitLabelLine(lines[i])
		if !ok {
			continue
		}
		if value == "" {
			for j := i + 1; j < len(lines); j++ {
				next := cleanLine(lines[j])
				if next == "" {
					continue
				}
				if _, _, isLabel := splitLabelLine(lines[j]); !isLabel {
					value = next
					i = j
				}
				break
			}
		}
		if value == "" {
			continue
		}

		lv := labeledValue{Key: normalizeKey(label), Label: label, Value: value}
		idx.ordered = append(idx.ordered, lv)
		if _, exists := idx.byKey[lv.Key]; !exists {
			idx.byKey[lv.Key] = lv
		}
	}
	return idx
}

// splitLabelLine recognizes "Label: Value", "Label — Value" and the
// fullwidth colon, after bullets and markup are removed.
func splitLabelLine(line string) (label, value string, ok bool) {
	line = cleanLine(line)
	if line == "" {
		return "", "", false
	}

	m := labelLineRe.FindStringSubmatch(line)
	if m == nil {
		return "", "", false
	}
	label = strings.TrimSpace(m[1])
	value = strings.TrimSpace(m[2])

	// "https://..." splits at the scheme colon.
	if strings.HasPrefix(value, "//") {
		return "", "", false
	}
	if utf8.RuneCountInString(label) > maxLabelRunes || len(strings.Fields(label)) > maxLabelWords {
		return "", "", false
	}
	if !strings.ContainsFunc(label, unicode.IsLetter) || normalizeKey(label) == "" {
		return "", "", false
	}
	return label, value, true
}

// cleanLine strips HTML tags, Markdown emphasis and leading bullets or
// emoji.
func cleanLine(line string) string {
	line = htmlTagRe.ReplaceAllString(line, "")
	line = strings.NewReplacer("**", "", "__", "").Replace(line)
	line = strings.TrimLeftFunc(line, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '@' && r != '+'
	})
	return strings.TrimSpace(line)
}

// normalizeKey case-folds a label and collapses whitespace so "Job  Title:"
// and "job title" compare equal.
func normalizeKey(s string) string {
	s = htmlTagRe.ReplaceAllString(s, "")
	s = strings.Map(func(r rune) rune {
		switch r {
		case '*', '_', '`':
			return -1
		case 'ё':
			return 'е'
		case 'Ё':
			return 'Е'
		}
		return r
	}, s)
	s = strings.ToLower(s)
	s = strings.Trim(s, " \t:：-–—•·#.")
	return strings.Join(strings.Fields(s), " ")
}
