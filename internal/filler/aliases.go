package filler

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed aliases.yaml
var defaultAliasesYAML []byte

// Synonym groups the contact heuristics key off.
const (
	GroupContact = "contact"
	GroupEmail   = "email"
	GroupPhone   = "phone"
)

type aliasFile struct {
	Groups     map[string][]string `yaml:"groups"`
	Qualifiers []string            `yaml:"qualifiers"`
}

// AliasTable maps normalized labels to synonym groups. Qualifiers are
// words a label may add to a placeholder without changing the field it
// names, as "name" in "company name".
type AliasTable struct {
	groupOf    map[string]string
	members    map[string][]string
	qualifiers map[string]bool
}

var (
	defaultAliasesOnce sync.Once
	defaultAliases     *AliasTable
)

// DefaultAliases returns the embedded alias table.
func DefaultAliases() *AliasTable {
	defaultAliasesOnce.Do(func() {
		table, err := ParseAliases(defaultAliasesYAML)
		if err != nil {
			panic(fmt.Sprintf("embedded aliases.yaml is invalid: %v", err))
		}
		defaultAliases = table
	})
	return defaultAliases
}

// LoadAliases reads an alias table from path. An empty path returns the
// embedded table. A file replaces the embedded table entirely.
func LoadAliases(path string) (*AliasTable, error) {
	if path == "" {
		return DefaultAliases(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &AliasError{Path: path, Message: "failed to read file", Cause: err}
	}

	table, err := ParseAliases(data)
	if err != nil {
		if aliasErr, ok := err.(*AliasError); ok {
			aliasErr.Path = path
			return nil, aliasErr
		}
		return nil, err
	}
	return table, nil
}

// ParseAliases parses the YAML alias format:
//
//	groups:
//	  position: [position, job title, role]
//	qualifiers: [name, range]
func ParseAliases(data []byte) (*AliasTable, error) {
	var file aliasFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, &AliasError{Message: "invalid yaml", Cause: err}
	}
	if len(file.Groups) == 0 {
		return nil, &AliasError{Message: "no groups defined"}
	}

	table := &AliasTable{
		groupOf:    make(map[string]string),
		members:    make(map[string][]string, len(file.Groups)),
		qualifiers: make(map[string]bool, len(file.Qualifiers)),
	}

	for _, raw := range file.Qualifiers {
		word := normalizeKey(raw)
		if word == "" {
			continue
		}
		if strings.ContainsRune(word, ' ') {
			return nil, &AliasError{Message: fmt.Sprintf("qualifier %q must be a single word", raw)}
		}
		table.qualifiers[word] = true
	}

	names := make([]string, 0, len(file.Groups))
	for name := range file.Groups {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, rawName := range names {
		group := normalizeKey(rawName)
		if group == "" {
			return nil, &AliasError{Message: fmt.Sprintf("group name %q is empty after normalization", rawName)}
		}
		if _, exists := table.members[group]; exists {
			return nil, &AliasError{Message: fmt.Sprintf("group %q defined twice", group)}
		}

		keys := append([]string{rawName}, file.Groups[rawName]...)
		for _, raw := range keys {
			key := normalizeKey(raw)
			if key == "" {
				continue
			}
			if owner, taken := table.groupOf[key]; taken {
				if owner == group {
					continue
				}
				return nil, &AliasError{Message: fmt.Sprintf("%q is listed in both %q and %q", key, owner, group)}
			}
			table.groupOf[key] = group
			table.members[group] = append(table.members[group], key)
		}
	}

	return table, nil
}

// Group returns the synonym group of a label.
func (t *AliasTable) Group(label string) (string, bool) {
	if t == nil {
		return "", false
	}
	group, ok := t.groupOf[normalizeKey(label)]
	return group, ok
}

// Synonyms returns every normalized label in the label's group, or nil.
func (t *AliasTable) Synonyms(label string) []string {
	group, ok := t.Group(label)
	if !ok {
		return nil
	}
	return append([]string(nil), t.members[group]...)
}

// IsQualifier reports whether a normalized word is a qualifier.
func (t *AliasTable) IsQualifier(word string) bool {
	if t == nil {
		return false
	}
	return t.qualifiers[word]
}

// Groups returns the group names in sorted order.
func (t *AliasTable) Groups() []string {
	if t == nil {
		return nil
	}
	names := make([]string, 0, len(t.members))
	for name := range t.members {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
