package filler

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/sahilm/fuzzy"
)

// How a placeholder was resolved.
const (
	ViaExact   = "exact"
	ViaAlias   = "alias"
	ViaFuzzy   = "fuzzy"
	ViaContact = "contact"
)

// minFuzzyRunes is the shortest key, and the shortest abbreviation, that
// may be matched fuzzily. Typos are only tolerated from minTypoRunes.
const (
	minFuzzyRunes = 3
	minTypoRunes  = 4
)

var placeholderRe = regexp.MustCompile(`\[([^\[\]\n]+)\]`)

// Resolution records the outcome for one distinct placeholder.
type Resolution struct {
	Placeholder string
	Value       string
	Via         string
	Found       bool
	// Tried lists the synonym labels searched for an unresolved
	// placeholder that belongs to an alias group.
	Tried []string
}

// Deterministic fills placeholders from "Label: Value" lines of the
// vacancy text. It performs no I/O and its output depends only on its
// inputs and alias table.
type Deterministic struct {
	aliases *AliasTable
}

// NewDeterministic creates a deterministic filler. A nil table uses the
// embedded aliases.
func NewDeterministic(aliases *AliasTable) *Deterministic {
	if aliases == nil {
		aliases = DefaultAliases()
	}
	return &Deterministic{aliases: aliases}
}

// Fill fills body from source with the embedded alias table.
func Fill(body, source string) string {
	return NewDeterministic(nil).FillText(body, source)
}

// Name implements Filler.
func (d *Deterministic) Name() string { return "deterministic" }

// Markup implements Filler.
func (d *Deterministic) Markup() Markup { return MarkupPlain }

// Fill implements Filler. It never fails; the description is not used.
func (d *Deterministic) Fill(_ context.Context, req Request) (string, error) {
	return d.FillText(req.Body, req.SourceText), nil
}

// FillText replaces every placeholder that has a value in source and
// leaves the rest verbatim.
func (d *Deterministic) FillText(body, source string) string {
	labels := parseSource(source)
	resolved := make(map[string]Resolution)

	return replacePlaceholders(body, func(name string) (string, bool) {
		res, ok := resolved[name]
		if !ok {
			res = d.resolve(name, labels, source)
			resolved[name] = res
		}
		return res.Value, res.Found
	})
}

// Resolve reports how each distinct placeholder of body would be filled,
// in order of first appearance.
func (d *Deterministic) Resolve(body, source string) []Resolution {
	labels := parseSource(source)
	seen := make(map[string]bool)
	var out []Resolution

	replacePlaceholders(body, func(name string) (string, bool) {
		if !seen[name] {
			seen[name] = true
			out = append(out, d.resolve(name, labels, source))
		}
		return "", false
	})
	return out
}

// Placeholders returns the distinct placeholder names of body in order.
func Placeholders(body string) []string {
	seen := make(map[string]bool)
	var names []string
	replacePlaceholders(body, func(name string) (string, bool) {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
		return "", false
	})
	return names
}

// replacePlaceholders calls lookup for every [Name] token. Tokens directly
// followed by "(" are Markdown link text and are skipped.
func replacePlaceholders(body string, lookup func(name string) (string, bool)) string {
	matches := placeholderRe.FindAllStringSubmatchIndex(body, -1)
	if len(matches) == 0 {
		return body
	}

	var b strings.Builder
	b.Grow(len(body))
	last := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		if end < len(body) && body[end] == '(' {
			continue
		}
		name := body[m[2]:m[3]]
		value, ok := lookup(name)
		if !ok {
			continue
		}
		b.WriteString(body[last:start])
		b.WriteString(value)
		last = end
	}
	b.WriteString(body[last:])
	return b.String()
}

func (d *Deterministic) resolve(name string, labels *labelIndex, source string) Resolution {
	res := Resolution{Placeholder: name}
	key := normalizeKey(name)
	if key == "" {
		return res
	}

	if lv, ok := labels.byKey[key]; ok {
		return found(res, lv.Value, ViaExact)
	}

	group, inGroup := d.aliases.Group(key)
	if inGroup {
		for _, lv := range labels.ordered {
			if g, ok := d.aliases.Group(lv.Key); ok && g == group {
				return found(res, lv.Value, ViaAlias)
			}
		}
	}

	if value, ok := d.fuzzyMatch(key, labels); ok {
		return found(res, value, ViaFuzzy)
	}

	if !inGroup {
		group = key
	}
	if value := findContact(group, source); value != "" {
		return found(res, value, ViaContact)
	}
	res.Tried = d.aliases.Synonyms(key)
	return res
}

func found(res Resolution, value, via string) Resolution {
	res.Value = value
	res.Via = via
	res.Found = true
	return res
}

// Word-level fuzzy match scores.
const (
	scoreExact     = 3
	scoreAbbrev    = 2
	scoreTypo      = 1
	scoreQualifier = -1
)

// fuzzyMatch pairs key with a label that names the same field in other
// words: an abbreviation ("pos" for "position"), a one-rune typo
// ("positon"), or the same words plus qualifiers from the alias table
// ("salary range" for "salary"). A label with any other extra word is
// rejected, so "company size" never fills [Company]. The best score wins;
// ties go to the earlier label.
func (d *Deterministic) fuzzyMatch(key string, labels *labelIndex) (string, bool) {
	if utf8.RuneCountInString(key) < minFuzzyRunes {
		return "", false
	}
	keyWords := strings.Fields(key)

	best, bestScore := -1, 0
	for i, lv := range labels.ordered {
		score, ok := d.matchWords(keyWords, strings.Fields(lv.Key))
		if ok && (best == -1 || score > bestScore) {
			best, bestScore = i, score
		}
	}
	if best < 0 {
		return "", false
	}
	return labels.ordered[best].Value, true
}

// matchWords aligns the shorter word list against the longer one in
// order. Every word of the shorter list must match; words of the longer
// list left over must all be qualifiers.
func (d *Deterministic) matchWords(a, b []string) (int, bool) {
	short, long := a, b
	if len(short) > len(long) {
		short, long = long, short
	}

	score, j := 0, 0
	for _, w := range short {
		matched := false
		for ; j < len(long); j++ {
			if s := wordScore(w, long[j]); s > 0 {
				score += s
				j++
				matched = true
				break
			}
			if !d.aliases.IsQualifier(long[j]) {
				return 0, false
			}
			score += scoreQualifier
		}
		if !matched {
			return 0, false
		}
	}
	for ; j < len(long); j++ {
		if !d.aliases.IsQualifier(long[j]) {
			return 0, false
		}
		score += scoreQualifier
	}
	return score, true
}

// wordScore compares two normalized words. Zero means no match.
func wordScore(a, b string) int {
	if a == b {
		return scoreExact
	}
	shorter, longer := a, b
	if utf8.RuneCountInString(shorter) > utf8.RuneCountInString(longer) {
		shorter, longer = longer, shorter
	}
	ns, nl := utf8.RuneCountInString(shorter), utf8.RuneCountInString(longer)

	if ns >= minFuzzyRunes && strings.HasPrefix(longer, shorter) {
		return scoreAbbrev
	}
	if ns < minTypoRunes || nl-ns > 1 || runePrefix(shorter, 1) != runePrefix(longer, 1) {
		return 0
	}
	if ns == nl {
		if oneSubstitutionOrSwap([]rune(shorter), []rune(longer)) {
			return scoreTypo
		}
		return 0
	}
	// One rune longer: the shorter word must be a subsequence of the
	// longer, which is exactly one insertion.
	if matches := fuzzy.Find(shorter, []string{longer}); len(matches) == 1 {
		return scoreTypo
	}
	return 0
}

// oneSubstitutionOrSwap reports whether equal-length a and b differ by one
// rune or by one adjacent transposition.
func oneSubstitutionOrSwap(a, b []rune) bool {
	var diff []int
	for i := range a {
		if a[i] != b[i] {
			diff = append(diff, i)
			if len(diff) > 2 {
				return false
			}
		}
	}
	switch len(diff) {
	case 1:
		return true
	case 2:
		i, k := diff[0], diff[1]
		return k == i+1 && a[i] == b[k] && a[k] == b[i]
	}
	return false
}

func runePrefix(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
