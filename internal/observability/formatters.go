package observability

import (
	"fmt"
	"io"
	"strings"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxValueWidth bounds a placeholder value shown in a summary row
	maxValueWidth = 36
)

// PlaceholderLine describes how one template placeholder was resolved.
type PlaceholderLine struct {
	Name  string
	Value string
	Via   string // empty when unresolved
	// Tried lists the synonym labels searched for an unresolved placeholder.
	Tried []string
}

// FillSummary is the verbose view of one generation.
type FillSummary struct {
	RequestID    string
	Strategy     string
	Degraded     bool
	SourceChars  int
	Placeholders []PlaceholderLine
}

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		line = truncateRunes(line, boxWidth-4)
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintFillSummary outputs which strategy produced the text and how each
// placeholder was resolved by the rule-based matcher.
func (p *Printer) PrintFillSummary(summary *FillSummary) {
	if summary == nil {
		return
	}

	var sb strings.Builder
	if summary.RequestID != "" {
		sb.WriteString(fmt.Sprintf("Request:  %s\n", summary.RequestID))
	}
	sb.WriteString(fmt.Sprintf("Strategy: %s\n", summary.Strategy))
	if summary.Degraded {
		sb.WriteString("Degraded: yes (fallback used)\n")
	}
	sb.WriteString(fmt.Sprintf("Source:   %d chars\n", summary.SourceChars))

	if len(summary.Placeholders) > 0 {
		sb.WriteString("\nPlaceholders:\n")
		unresolved := 0
		for _, ph := range summary.Placeholders {
			if ph.Via == "" {
				unresolved++
				if len(ph.Tried) > 0 {
					sb.WriteString(fmt.Sprintf("  ✗ [%s] (looked for: %s)\n", ph.Name, truncateRunes(strings.Join(ph.Tried, ", "), maxValueWidth)))
					continue
				}
				sb.WriteString(fmt.Sprintf("  ✗ [%s]\n", ph.Name))
				continue
			}
			sb.WriteString(fmt.Sprintf("  ✓ [%s] = %s (%s)\n", ph.Name, truncateRunes(ph.Value, maxValueWidth), ph.Via))
		}
		if unresolved > 0 {
			sb.WriteString(fmt.Sprintf("\n%d of %d left unfilled", unresolved, len(summary.Placeholders)))
		}
	}

	p.printBox("FILL SUMMARY", strings.TrimSuffix(sb.String(), "\n"))
}

func truncateRunes(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	if limit <= 3 {
		return string(r[:limit])
	}
	return string(r[:limit-3]) + "..."
}
