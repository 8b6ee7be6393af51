package telegram

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxMessageLength is Telegram's limit for one text message, counted in
// UTF-16 code units.
const MaxMessageLength = 4096

// SplitMessage cuts plain text into chunks of at most limit UTF-16 code
// units, breaking on line boundaries. A single line longer than limit is
// cut between runes.
func SplitMessage(text string, limit int) []string {
	return split(text, limit, false)
}

// SplitHTML is SplitMessage for Telegram HTML. Tags and entities are never
// cut, and tags still open at a cut are closed at the end of the chunk and
// reopened at the start of the next one.
func SplitHTML(text string, limit int) []string {
	return split(text, limit, true)
}

func split(text string, limit int, html bool) []string {
	if limit <= 0 {
		limit = MaxMessageLength
	}
	if utf16Len(text) <= limit {
		return []string{text}
	}

	s := &splitter{limit: limit}
	for _, line := range strings.SplitAfter(text, "\n") {
		tokens := tokenize(line, html)
		if s.fits(tokens...) {
			s.add(tokens...)
			continue
		}
		s.flush()
		if s.fits(tokens...) {
			s.add(tokens...)
			continue
		}
		for _, t := range tokens {
			if s.hasText && !s.fits(t) {
				s.flush()
			}
			s.add(t)
		}
	}
	s.flush()
	return s.chunks
}

// token is one rune of text, an HTML entity or an HTML tag.
type token struct {
	raw   string
	units int
	// text marks visible content.
	text bool
	// startTag and endTag hold the lower-cased tag name.
	startTag string
	endTag   string
}

type splitter struct {
	limit   int
	chunks  []string
	buf     strings.Builder
	units   int
	open    []token
	hasText bool
}

func (s *splitter) fits(tokens ...token) bool {
	units := s.units
	stack := s.open
	for _, t := range tokens {
		units += t.units
		stack = applyTag(stack, t)
	}
	return units+closingLen(stack) <= s.limit
}

func (s *splitter) add(tokens ...token) {
	for _, t := range tokens {
		s.buf.WriteString(t.raw)
		s.units += t.units
		s.open = applyTag(s.open, t)
		s.hasText = s.hasText || t.text
	}
}

// flush ends the current chunk, dropping it when it has no visible text,
// and starts the next one with the tags still open.
func (s *splitter) flush() {
	if s.hasText {
		body := strings.TrimRight(s.buf.String(), "\n")
		s.chunks = append(s.chunks, body+closingTags(s.open))
	}
	s.buf.Reset()
	s.units = 0
	s.hasText = false
	for _, t := range s.open {
		s.buf.WriteString(t.raw)
		s.units += t.units
	}
}

// applyTag returns the open tag stack after t. An end tag closes the
// nearest matching start tag and any left open inside it.
func applyTag(stack []token, t token) []token {
	switch {
	case t.startTag != "":
		return append(stack[:len(stack):len(stack)], t)
	case t.endTag != "":
		for i := len(stack) - 1; i >= 0; i-- {
			if stack[i].startTag == t.endTag {
				return stack[:i:i]
			}
		}
	}
	return stack
}

func closingTags(stack []token) string {
	var b strings.Builder
	for i := len(stack) - 1; i >= 0; i-- {
		b.WriteString("</" + stack[i].startTag + ">")
	}
	return b.String()
}

func closingLen(stack []token) int {
	n := 0
	for _, t := range stack {
		n += len(t.startTag) + 3
	}
	return n
}

func tokenize(s string, html bool) []token {
	var tokens []token
	for i := 0; i < len(s); {
		if html {
			if t, ok := markup(s[i:]); ok {
				tokens = append(tokens, t)
				i += len(t.raw)
				continue
			}
		}
		r, n := utf8.DecodeRuneInString(s[i:])
		tokens = append(tokens, token{raw: s[i : i+n], units: runeUnits(r), text: !unicode.IsSpace(r)})
		i += n
	}
	return tokens
}

// markup reads a tag or an entity at the start of s.
func markup(s string) (token, bool) {
	switch s[0] {
	case '<':
		end := strings.IndexByte(s, '>')
		if end < 2 || strings.ContainsAny(s[1:end], "<\n") {
			return token{}, false
		}
		raw := s[:end+1]
		t := token{raw: raw, units: utf16Len(raw)}
		name := tagName(raw)
		switch {
		case name == "":
			return token{}, false
		case raw[1] == '/':
			t.endTag = name
		case !strings.HasSuffix(raw, "/>"):
			t.startTag = name
		}
		return t, true
	case '&':
		end := strings.IndexByte(s, ';')
		if end < 2 || end > 10 {
			return token{}, false
		}
		if strings.IndexFunc(s[1:end], func(r rune) bool {
			return r != '#' && !unicode.IsLetter(r) && !unicode.IsDigit(r)
		}) >= 0 {
			return token{}, false
		}
		return token{raw: s[:end+1], units: utf16Len(s[:end+1]), text: true}, true
	}
	return token{}, false
}

func tagName(raw string) string {
	name := strings.TrimPrefix(raw[1:len(raw)-1], "/")
	if i := strings.IndexFunc(name, func(r rune) bool { return unicode.IsSpace(r) || r == '/' }); i >= 0 {
		name = name[:i]
	}
	return strings.ToLower(name)
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += runeUnits(r)
	}
	return n
}

// runeUnits is the UTF-16 length of r: two for runes outside the Basic
// Multilingual Plane, one otherwise.
func runeUnits(r rune) int {
	if r >= 0x10000 {
		return 2
	}
	return 1
}
