// Package segment splits contract text into candidate clauses.
package segment

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Options tunes the splitting cascade
type Options struct {
	// MinSegments is the number of segments a heuristic must produce to be accepted
	MinSegments int

	// MinAvgLength is the minimum average segment length (runes) for acceptance
	MinAvgLength int

	// MinClauseLength is the length below which a segment (typically a heading)
	// is merged into its neighbour
	MinClauseLength int

	// SentenceFallback adds sentence boundaries as a last heuristic. Off by
	// default: unstructured text stays one clause.
	SentenceFallback bool
}

// DefaultOptions returns the standard cascade thresholds
func DefaultOptions() Options {
	return Options{
		MinSegments:     3,
		MinAvgLength:    40,
		MinClauseLength: 50,
	}
}

// Heuristic names reported by SplitDetailed
const (
	HeuristicNumbered  = "numbered"
	HeuristicParagraph = "paragraph"
	HeuristicSentence  = "sentence"
	HeuristicWhole     = "whole_document"
)

var (
	// 1.  1.1  2.3.  a)  (a)  iv)  (iv)  Section 2:  Article IV  § 4
	numberedPattern = regexp.MustCompile(`(?im)^[ \t]*(?:(?:section|article|clause)\s+(?:\d+(?:\.\d+)*|[ivxlc]+)\b[.:)]?|§\s*\d+(?:\.\d+)*|\d+\.(?:\d+\.?)*|\(?[a-z]\)|\(?[ivx]+\))[ \t]+\S`)

	paragraphPattern = regexp.MustCompile(`\n[ \t]*\n\s*`)

	// Terminal punctuation, whitespace, then an uppercase letter or digit
	sentencePattern = regexp.MustCompile(`[.!?]["')\]]?\s+["(]?[A-Z0-9]`)
)

type span struct {
	start, end int
}

type heuristic struct {
	name string
	cuts func(text string) []int
}

// Segmenter splits cleaned contract text into clause strings
type Segmenter struct {
	opts       Options
	heuristics []heuristic
}

// New creates a segmenter; non-positive options fall back to defaults
func New(opts Options) *Segmenter {
	def := DefaultOptions()
	if opts.MinSegments <= 0 {
		opts.MinSegments = def.MinSegments
	}
	if opts.MinAvgLength <= 0 {
		opts.MinAvgLength = def.MinAvgLength
	}
	if opts.MinClauseLength < 0 {
		opts.MinClauseLength = 0
	}

	heuristics := []heuristic{
		{name: HeuristicNumbered, cuts: numberedCuts},
		{name: HeuristicParagraph, cuts: paragraphCuts},
	}
	if opts.SentenceFallback {
		heuristics = append(heuristics, heuristic{name: HeuristicSentence, cuts: sentenceCuts})
	}

	return &Segmenter{opts: opts, heuristics: heuristics}
}

// Result is a segmentation with the heuristic that produced it
type Result struct {
	Heuristic string
	Segments  []string
}

// Split returns the ordered, non-empty clause texts
func (s *Segmenter) Split(text string) []string {
	return s.SplitDetailed(text).Segments
}

// SplitDetailed runs the cascade and reports which heuristic won.
// Empty input yields no segments; unstructured input yields one.
func (s *Segmenter) SplitDetailed(text string) Result {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Result{Heuristic: HeuristicWhole}
	}

	for _, h := range s.heuristics {
		spans := s.merge(text, toSpans(text, h.cuts(text)))
		if s.accept(text, spans) {
			return Result{Heuristic: h.name, Segments: render(text, spans)}
		}
	}

	return Result{Heuristic: HeuristicWhole, Segments: []string{trimmed}}
}

func (s *Segmenter) accept(text string, spans []span) bool {
	if len(spans) < s.opts.MinSegments {
		return false
	}
	total := 0
	for _, sp := range spans {
		total += utf8.RuneCountInString(text[sp.start:sp.end])
	}
	return total/len(spans) >= s.opts.MinAvgLength
}

// merge folds segments shorter than MinClauseLength into the following
// segment, or into the previous one when they come last
func (s *Segmenter) merge(text string, spans []span) []span {
	if len(spans) == 0 {
		return spans
	}

	var out []span
	pending := -1
	for _, sp := range spans {
		if pending >= 0 {
			sp.start = pending
			pending = -1
		}
		if utf8.RuneCountInString(text[sp.start:sp.end]) < s.opts.MinClauseLength {
			pending = sp.start
			continue
		}
		out = append(out, sp)
	}

	if pending >= 0 {
		last := spans[len(spans)-1]
		if len(out) == 0 {
			out = append(out, span{start: pending, end: last.end})
		} else {
			out[len(out)-1].end = last.end
		}
	}
	return out
}

// toSpans turns cut offsets into trimmed, non-empty spans covering the text
func toSpans(text string, cuts []int) []span {
	points := append([]int{0}, cuts...)
	points = append(points, len(text))
	sort.Ints(points)

	var spans []span
	for i := 0; i+1 < len(points); i++ {
		if sp, ok := trimSpan(text, span{start: points[i], end: points[i+1]}); ok {
			spans = append(spans, sp)
		}
	}
	return spans
}

func trimSpan(text string, sp span) (span, bool) {
	for sp.start < sp.end {
		r, size := utf8.DecodeRuneInString(text[sp.start:])
		if !unicode.IsSpace(r) {
			break
		}
		sp.start += size
	}
	for sp.end > sp.start {
		r, size := utf8.DecodeLastRuneInString(text[:sp.end])
		if !unicode.IsSpace(r) {
			break
		}
		sp.end -= size
	}
	return sp, sp.end > sp.start
}

func render(text string, spans []span) []string {
	out := make([]string, len(spans))
	for i, sp := range spans {
		out[i] = text[sp.start:sp.end]
	}
	return out
}

func numberedCuts(text string) []int {
	var cuts []int
	for _, m := range numberedPattern.FindAllStringIndex(text, -1) {
		cuts = append(cuts, m[0])
	}
	return cuts
}

func paragraphCuts(text string) []int {
	var cuts []int
	for _, m := range paragraphPattern.FindAllStringIndex(text, -1) {
		cuts = append(cuts, m[1])
	}
	return cuts
}

func sentenceCuts(text string) []int {
	var cuts []int
	for _, m := range sentencePattern.FindAllStringIndex(text, -1) {
		// Cut right before the first character of the next sentence
		cuts = append(cuts, m[1]-1)
	}
	return cuts
}
