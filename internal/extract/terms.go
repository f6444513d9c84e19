package extract

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/lexguard/internal/model"
)

// Caps on each key term list
const (
	MaxDefinedTerms  = 15
	MaxFrequentTerms = 10
	MaxAmounts       = 10
	MaxEntities      = 10
	MaxPeriods       = 10
	MaxConcepts      = 12

	definitionLength = 100
	frequentMinimum  = 3
)

var (
	definitionPattern = regexp.MustCompile(`["“]([A-Z][^"”]{0,80})["”]\s+(?:shall mean|means?|refers? to|is defined as)\s+`)
	capitalisedPhrase = regexp.MustCompile(`\b[A-Z][a-z]+(?:\s+[A-Z][a-z]+){1,3}\b`)
	amountPattern     = regexp.MustCompile(`\$\s*(\d{1,3}(?:,?\d{3})*(?:\.\d{2})?)(?:\s+(?:per|for|to|as)\s+([A-Za-z][A-Za-z ]{0,29}))?`)
	relativePattern   = regexp.MustCompile(`(?i)\b(?:within|after|before|following|prior to)\s+(?:[a-z]+(?:-[a-z]+)?\s+)?\(?\d+\)?\s*(?:business\s+|calendar\s+)?(?:day|week|month|year)s?\b`)
	durationText      = regexp.MustCompile(`(?i)\b(?:[a-z]+(?:-[a-z]+)?\s+\(\d+\)|\d+)\s*(?:business\s+|calendar\s+)?(?:day|week|month|year)s?\b`)
	frequencyPattern  = regexp.MustCompile(`(?i)\b(?:annual(?:ly)?|monthly|weekly|daily|quarterly)\b`)
)

var legalConcepts = []string{
	"confidentiality", "indemnification", "termination", "liability",
	"intellectual property", "non-compete", "non-solicitation",
	"arbitration", "jurisdiction", "force majeure", "warranties",
	"representations", "governing law", "severability", "amendment",
}

// KeyTerms extracts defined terms, monetary amounts, entities, time
// periods and legal concepts from the whole contract text
func KeyTerms(text string) model.KeyTerms {
	return model.KeyTerms{
		DefinedTerms: DefinedTerms(text),
		Amounts:      Amounts(text),
		Entities:     Entities(text),
		Periods:      Periods(text),
		Concepts:     Concepts(text),
	}
}

// DefinedTerms returns explicitly defined terms ("X" means ...) followed
// by capitalised phrases used at least three times
func DefinedTerms(text string) []model.DefinedTerm {
	terms := []model.DefinedTerm{}
	seen := make(map[string]bool)

	for _, loc := range definitionPattern.FindAllStringSubmatchIndex(text, -1) {
		term := strings.TrimSpace(text[loc[2]:loc[3]])
		if seen[term] {
			continue
		}
		seen[term] = true
		terms = append(terms, model.DefinedTerm{Term: term, Definition: definitionAt(text, loc[1])})
	}

	type phrase struct {
		text  string
		count int
		first int
	}
	counts := make(map[string]*phrase)
	for i, m := range capitalisedPhrase.FindAllString(text, -1) {
		if p, ok := counts[m]; ok {
			p.count++
			continue
		}
		counts[m] = &phrase{text: m, count: 1, first: i}
	}
	var frequent []*phrase
	for _, p := range counts {
		if p.count >= frequentMinimum && !seen[p.text] {
			frequent = append(frequent, p)
		}
	}
	sort.Slice(frequent, func(i, j int) bool {
		if frequent[i].count != frequent[j].count {
			return frequent[i].count > frequent[j].count
		}
		return frequent[i].first < frequent[j].first
	})
	if len(frequent) > MaxFrequentTerms {
		frequent = frequent[:MaxFrequentTerms]
	}
	for _, p := range frequent {
		terms = append(terms, model.DefinedTerm{Term: p.text, Definition: "Frequent term in contract", Frequent: true})
	}

	if len(terms) > MaxDefinedTerms {
		terms = terms[:MaxDefinedTerms]
	}
	return terms
}

// definitionAt returns the first sentence after offset, at most
// definitionLength runes
func definitionAt(text string, offset int) string {
	rest := text[offset:]
	if utf8.RuneCountInString(rest) > definitionLength {
		rest = string([]rune(rest)[:definitionLength])
	}
	if i := strings.IndexAny(rest, ".;\n"); i >= 0 {
		rest = rest[:i]
	}
	return strings.TrimSpace(rest)
}

// Amounts returns dollar amounts in document order with what they are "per",
// "for", "to" or "as"
func Amounts(text string) []model.Amount {
	amounts := []model.Amount{}
	seen := make(map[model.Amount]bool)
	for _, m := range amountPattern.FindAllStringSubmatch(text, -1) {
		a := model.Amount{Value: "$" + m[1], Context: strings.TrimSpace(m[2])}
		if seen[a] {
			continue
		}
		seen[a] = true
		amounts = append(amounts, a)
		if len(amounts) == MaxAmounts {
			break
		}
	}
	return amounts
}

// Entities returns company names (LLC, Inc, Corp, ...) in document order
func Entities(text string) []string {
	entities := []string{}
	seen := make(map[string]bool)
	for _, m := range companyPattern.FindAllStringSubmatch(text, -1) {
		name := cleanParty(m[1])
		key := strings.ToLower(name)
		if name == "" || seen[key] {
			continue
		}
		seen[key] = true
		entities = append(entities, name)
		if len(entities) == MaxEntities {
			break
		}
	}
	return entities
}

// Periods returns relative deadlines, then bare durations not already
// covered by one, then recurrence words
func Periods(text string) []model.Period {
	periods := []model.Period{}
	seen := make(map[string]bool)
	add := func(s string, kind model.PeriodKind) bool {
		key := string(kind) + "|" + strings.ToLower(s)
		if !seen[key] {
			seen[key] = true
			periods = append(periods, model.Period{Text: s, Kind: kind})
		}
		return len(periods) < MaxPeriods
	}

	relative := relativePattern.FindAllStringIndex(text, -1)
	for _, loc := range relative {
		if !add(text[loc[0]:loc[1]], model.PeriodRelative) {
			return periods
		}
	}

	for _, loc := range durationText.FindAllStringIndex(text, -1) {
		if within(loc, relative) {
			continue
		}
		if !add(text[loc[0]:loc[1]], model.PeriodDuration) {
			return periods
		}
	}

	for _, m := range frequencyPattern.FindAllString(text, -1) {
		if !add(strings.ToLower(m), model.PeriodFrequency) {
			return periods
		}
	}
	return periods
}

func within(loc []int, spans [][]int) bool {
	for _, s := range spans {
		if loc[0] >= s[0] && loc[1] <= s[1] {
			return true
		}
	}
	return false
}

// Concepts counts mentions of common legal concepts
func Concepts(text string) []model.Concept {
	lower := strings.ToLower(text)
	concepts := []model.Concept{}
	for _, name := range legalConcepts {
		if n := strings.Count(lower, name); n > 0 {
			concepts = append(concepts, model.Concept{Name: name, Count: n})
		}
		if len(concepts) == MaxConcepts {
			break
		}
	}
	return concepts
}
