// Package extract pulls parties, dates and obligations out of contract text.
package extract

import (
	"regexp"
	"strings"
)

// ObligationKind tells what a sentence asks of a party
type ObligationKind string

const (
	ObligationMust    ObligationKind = "must"
	ObligationMustNot ObligationKind = "must_not"
	ObligationRight   ObligationKind = "right"
)

// Obligation is one sentence that imposes a duty, a prohibition or a right
type Obligation struct {
	Kind      ObligationKind `json:"kind"`
	Text      string         `json:"text"`
	Heuristic string         `json:"heuristic"`
}

// MaxObligations caps the number of sentences returned
const MaxObligations = 10

// ObligationExtractor finds obligation sentences by modal keywords
type ObligationExtractor struct {
	prohibitions []string
	duties       []string
	rights       []string
}

// NewObligationExtractor creates a new obligation extractor
func NewObligationExtractor() *ObligationExtractor {
	return &ObligationExtractor{
		prohibitions: []string{
			"shall not", "must not", "may not", "will not", "cannot",
			"prohibited from", "forbidden to", "agrees not to",
		},
		duties: []string{
			"shall", "must", "is required to", "are required to",
			"obligated to", "agrees to", "agree to", "responsible for",
		},
		rights: []string{
			"has the right to", "have the right to", "entitled to",
			"reserves the right", "may",
		},
	}
}

// Extract returns obligation sentences in document order. Prohibitions
// are checked first so "shall not" never counts as a duty.
func (e *ObligationExtractor) Extract(text string) []Obligation {
	var out []Obligation
	for _, sentence := range splitSentences(text) {
		lower := " " + strings.ToLower(sentence) + " "
		if kind, kw, ok := e.match(lower); ok {
			out = append(out, Obligation{
				Kind:      kind,
				Text:      sentence,
				Heuristic: "keyword:" + kw,
			})
		}
	}

	out = dedupeObligations(out)
	if len(out) > MaxObligations {
		out = out[:MaxObligations]
	}
	return out
}

func (e *ObligationExtractor) match(lower string) (ObligationKind, string, bool) {
	groups := []struct {
		kind     ObligationKind
		keywords []string
	}{
		{ObligationMustNot, e.prohibitions},
		{ObligationMust, e.duties},
		{ObligationRight, e.rights},
	}
	for _, g := range groups {
		for _, kw := range g.keywords {
			if strings.Contains(lower, " "+kw+" ") {
				return g.kind, kw, true
			}
		}
	}
	return "", "", false
}

var whitespace = regexp.MustCompile(`\s+`)

// splitSentences splits text into sentences (simple heuristic)
func splitSentences(text string) []string {
	text = whitespace.ReplaceAllString(text, " ")

	var sentences []string
	var current strings.Builder

	for i, r := range text {
		current.WriteRune(r)

		if r == '.' || r == '!' || r == '?' || r == ';' {
			// Look ahead to avoid splitting on abbreviations and decimals
			if i+1 < len(text) && text[i+1] == ' ' {
				if s := strings.TrimSpace(current.String()); isSentence(s) {
					sentences = append(sentences, s)
				}
				current.Reset()
			}
		}
	}

	if s := strings.TrimSpace(current.String()); isSentence(s) {
		sentences = append(sentences, s)
	}

	return sentences
}

func isSentence(s string) bool {
	return len(s) >= 20 && len(s) <= 600
}

// dedupeObligations removes duplicate sentences
func dedupeObligations(obligations []Obligation) []Obligation {
	seen := make(map[string]bool)
	var unique []Obligation

	for _, o := range obligations {
		key := strings.ToLower(strings.TrimSpace(o.Text))
		if !seen[key] {
			seen[key] = true
			unique = append(unique, o)
		}
	}

	return unique
}
