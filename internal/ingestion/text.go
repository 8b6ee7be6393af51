// Package ingestion turns vacancy files and links into clean plain text.
package ingestion

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
)

var (
	spaceRunRe  = regexp.MustCompile(`[ \t\f\v\x{00a0}]+`)
	blankRunsRe = regexp.MustCompile(`\n\n\n+`)
)

// CleanText normalizes line endings and spacing while keeping the line
// structure vacancy labels depend on.
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = cleanLine(line)
	}

	result := blankRunsRe.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(result)
}

// cleanLine collapses inner spacing. Leading indentation of bullets and
// nested lines is kept.
func cleanLine(line string) string {
	line = strings.TrimRight(line, " \t ")
	trimmed := strings.TrimLeft(line, " \t ")
	if trimmed == "" {
		return ""
	}

	// Markdown headings start at column zero.
	if strings.HasPrefix(trimmed, "#") {
		return spaceRunRe.ReplaceAllString(trimmed, " ")
	}

	indent := len(line) - len(trimmed)
	content := spaceRunRe.ReplaceAllString(trimmed, " ")
	if indent > 0 {
		return strings.Repeat(" ", indent) + content
	}
	return content
}

// IngestFromFile reads a text file, cleans it, and returns cleaned text with metadata
func IngestFromFile(path string) (string, *Metadata, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil, fmt.Errorf("file not found: %w", err)
		}
		return "", nil, fmt.Errorf("failed to read file: %w", err)
	}

	cleanedText := CleanText(string(content))
	return cleanedText, NewMetadata(cleanedText, ""), nil
}
