package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// MaxParties caps the number of names returned
	MaxParties = 5
	// partyWindow is how much of the document is searched, in runes
	partyWindow = 2000
)

var (
	betweenPattern = regexp.MustCompile(`(?i)\b(?:by and )?between\s+([^,;\n]+?)\s+(?:and|&)\s+([^,;.\n]+)`)
	companyPattern = regexp.MustCompile(`\b([A-Z][A-Za-z&]*(?:\s+[A-Z][A-Za-z&]*)*,?\s+(?:LLC|Inc|Corp|Ltd|LLP|GmbH|Corporation|Limited)\b\.?)`)
	aliasPattern   = regexp.MustCompile(`(?i)(?:referred to as|hereinafter)\s+(?:the\s+)?["'“]([^"'”]+)["'”]`)
)

// Parties returns up to MaxParties names found near the start of the
// contract, in the order they appear.
func Parties(text string) []string {
	head := text
	if utf8.RuneCountInString(head) > partyWindow {
		head = string([]rune(head)[:partyWindow])
	}

	var names []string
	seen := make(map[string]bool)
	add := func(name string) {
		name = cleanParty(name)
		key := strings.ToLower(name)
		if len(name) < 2 || seen[key] {
			return
		}
		seen[key] = true
		names = append(names, name)
	}

	if m := betweenPattern.FindStringSubmatch(head); m != nil {
		add(m[1])
		add(m[2])
	}
	for _, m := range companyPattern.FindAllStringSubmatch(head, -1) {
		add(m[1])
	}
	for _, m := range aliasPattern.FindAllStringSubmatch(head, -1) {
		add(m[1])
	}

	if len(names) > MaxParties {
		names = names[:MaxParties]
	}
	return names
}

// cleanParty strips articles, parentheticals and punctuation around a name
func cleanParty(name string) string {
	if i := strings.IndexAny(name, "(\""); i > 0 {
		name = name[:i]
	}
	name = strings.TrimSpace(whitespace.ReplaceAllString(name, " "))
	name = strings.TrimRight(name, ".,;: ")
	for _, article := range []string{"the ", "The "} {
		name = strings.TrimPrefix(name, article)
	}
	return strings.TrimSpace(name)
}
