package extract

import (
	"regexp"
	"sort"
	"strings"
	"time"
)

// DateKind labels what a date refers to
type DateKind string

const (
	DateCalendar   DateKind = "date"
	DateEffective  DateKind = "effective_date"
	DateTerm       DateKind = "term"
	DateExpiration DateKind = "expiration"
	DateRenewal    DateKind = "renewal"
	DateDeadline   DateKind = "deadline"
)

// MaxDates caps the number of dates returned
const MaxDates = 10

// Date is a date or duration mentioned in the contract
type Date struct {
	Value   string     `json:"value"`
	Kind    DateKind   `json:"kind"`
	Context string     `json:"context"`
	Time    *time.Time `json:"time,omitempty"` // Set when Value parses as a calendar date
	offset  int
}

var datePatterns = []struct {
	kind    DateKind
	pattern *regexp.Regexp
}{
	{DateCalendar, regexp.MustCompile(`\b(\d{1,2}[/-]\d{1,2}[/-]\d{2,4}|\d{4}-\d{2}-\d{2})\b`)},
	{DateCalendar, regexp.MustCompile(`(?i)\b((?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2},?\s+\d{4})\b`)},
	{DateEffective, regexp.MustCompile(`(?i)\beffective\s+(?:date|as of)\s*:?\s*([^,.;\n]{3,60})`)},
	{DateTerm, regexp.MustCompile(`(?i)\bterm of\s+(\(?\d+\)?\s+(?:day|week|month|year)s?)\b`)},
	{DateExpiration, regexp.MustCompile(`(?i)\bexpir(?:e|es|ation|y)\s+(?:date\s+|on\s+)?:?\s*([^,.;\n]{3,60})`)},
	{DateRenewal, regexp.MustCompile(`(?i)\brenew(?:al|s)?\s+(?:date\s+|on\s+)?:?\s*([^,.;\n]{3,60})`)},
	{DateDeadline, regexp.MustCompile(`(?i)\bdeadline\s+(?:of\s+|for\s+|is\s+)?:?\s*([^,.;\n]{3,60})`)},
}

var dateLayouts = []string{
	"01/02/2006", "1/2/2006", "01-02-2006", "2006-01-02",
	"January 2, 2006", "January 2 2006",
}

// Dates returns up to MaxDates dates in document order
func Dates(text string) []Date {
	var found []Date
	seen := make(map[string]bool)

	for _, p := range datePatterns {
		for _, loc := range p.pattern.FindAllStringSubmatchIndex(text, -1) {
			value := strings.TrimSpace(text[loc[2]:loc[3]])
			key := string(p.kind) + "|" + strings.ToLower(value)
			if value == "" || seen[key] {
				continue
			}
			seen[key] = true

			d := Date{
				Value:   value,
				Kind:    p.kind,
				Context: surrounding(text, loc[0], loc[1]),
				offset:  loc[0],
			}
			if t, ok := ParseDate(value); ok {
				d.Time = &t
			}
			found = append(found, d)
		}
	}

	sort.SliceStable(found, func(i, j int) bool {
		return found[i].offset < found[j].offset
	})
	if len(found) > MaxDates {
		found = found[:MaxDates]
	}
	return found
}

// ParseDate parses the calendar formats Dates recognises. Slash dates are
// read month first.
func ParseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// surrounding returns the match with some surrounding text on one line
func surrounding(text string, start, end int) string {
	from := start - 30
	if from < 0 {
		from = 0
	}
	to := end + 30
	if to > len(text) {
		to = len(text)
	}
	// Stay on rune boundaries
	for from > 0 && !isRuneStart(text[from]) {
		from--
	}
	for to < len(text) && !isRuneStart(text[to]) {
		to++
	}
	return strings.TrimSpace(whitespace.ReplaceAllString(text[from:to], " "))
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
