package rendering

import (
	"regexp"
	"strings"
)

// LinkText is the anchor text used when a bare URL is wrapped.
const LinkText = "link"

// allowedTags are the tags Telegram's HTML parse mode understands.
var allowedTags = map[string]bool{
	"b": true, "i": true, "u": true, "s": true, "a": true,
	"ins": true, "del": true, "strike": true,
	"code": true, "pre": true, "blockquote": true, "tg-spoiler": true,
}

var (
	leadingFenceRe  = regexp.MustCompile("^`{3,}[a-zA-Z]*\\s*")
	trailingFenceRe = regexp.MustCompile("\\s*`{3,}$")
	breakRe         = regexp.MustCompile(`(?i)<br\s*/?>`)
	blockRe         = regexp.MustCompile(`(?i)</?(?:p|div)(?:\s[^>]*)?>`)
	spanRe          = regexp.MustCompile(`(?i)</?span(?:\s[^>]*)?>`)
	strongRe        = regexp.MustCompile(`(?i)<(/?)strong>`)
	emRe            = regexp.MustCompile(`(?i)<(/?)em>`)
	mdBoldRe        = regexp.MustCompile(`\*\*([^*\n]+)\*\*`)
	mdLinkRe        = regexp.MustCompile(`\[([^\[\]\n]+)\]\((https?://[^)\s]+)\)`)
	tagRe           = regexp.MustCompile(`</?([a-zA-Z][a-zA-Z0-9-]*)(?:\s[^>]*)?/?>`)
	blankLinesRe    = regexp.MustCompile(`\n{3,}`)
	serviceWordRe   = regexp.MustCompile(`(?i)^\s*(?:html|body)\s*(?:[:>\-]\s*|\n\s*)`)
	bareURLRe       = regexp.MustCompile(`https?://[^\s<>"]+`)
)

// CleanTelegramHTML normalizes model output into HTML Telegram will accept.
// Unsupported tags are dropped with their content kept, block tags become
// newlines and Markdown bold and links are converted.
func CleanTelegramHTML(text string) string {
	text = strings.TrimSpace(strings.ReplaceAll(text, "\r\n", "\n"))
	text = leadingFenceRe.ReplaceAllString(text, "")
	text = trailingFenceRe.ReplaceAllString(text, "")

	text = breakRe.ReplaceAllString(text, "\n")
	text = blockRe.ReplaceAllString(text, "\n")
	text = spanRe.ReplaceAllString(text, "")
	text = strongRe.ReplaceAllString(text, "<${1}b>")
	text = emRe.ReplaceAllString(text, "<${1}i>")

	text = mdBoldRe.ReplaceAllString(text, "<b>$1</b>")
	text = mdLinkRe.ReplaceAllString(text, `<a href="$2">$1</a>`)

	text = tagRe.ReplaceAllStringFunc(text, func(tag string) string {
		name := strings.ToLower(tagRe.FindStringSubmatch(tag)[1])
		if allowedTags[name] {
			return tag
		}
		return ""
	})

	text = FormatLinks(text)

	text = blankLinesRe.ReplaceAllString(text, "\n\n")
	text = serviceWordRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// FormatLinks wraps bare http(s) URLs in anchors. URLs already inside an
// href or an anchor's text are left alone.
func FormatLinks(text string) string {
	matches := bareURLRe.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return text
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		url := strings.TrimRight(text[start:end], ".,;:!?)")
		end = start + len(url)

		if insideAnchor(text, start) {
			continue
		}

		b.WriteString(text[last:start])
		b.WriteString(`<a href="`)
		b.WriteString(EscapeHTML(url))
		b.WriteString(`">`)
		b.WriteString(LinkText)
		b.WriteString(`</a>`)
		last = end
	}
	b.WriteString(text[last:])
	return b.String()
}

// insideAnchor reports whether pos is within an attribute value or between
// an opening <a> and its </a>.
func insideAnchor(text string, pos int) bool {
	before := strings.ToLower(text[:pos])
	if strings.HasSuffix(before, `href="`) || strings.HasSuffix(before, `href='`) {
		return true
	}
	return strings.LastIndex(before, "<a ") > strings.LastIndex(before, "</a>")
}
