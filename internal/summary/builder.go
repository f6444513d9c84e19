// Package summary aggregates analysed clauses into a contract-level report.
package summary

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/lexguard/internal/llm"
	"github.com/ppiankov/lexguard/internal/model"
	"github.com/ppiankov/lexguard/internal/score"
)

// NoClausesMessage is the summary message for a contract without clauses
const NoClausesMessage = "No clauses were found in this contract."

// HighlightCategories get one key highlight each, in this order
var HighlightCategories = []model.Category{
	model.CategoryPayment,
	model.CategoryTermination,
	model.CategoryLiability,
}

// Options tune the summary
type Options struct {
	TopWarnings   int
	SnippetLength int
	Timeout       time.Duration
}

// DefaultOptions returns the standard summary settings
func DefaultOptions() Options {
	return Options{TopWarnings: 5, SnippetLength: 200, Timeout: 30 * time.Second}
}

// Builder produces summaries
type Builder struct {
	completer llm.Completer
	opts      Options
	logger    *zap.Logger
}

// NewBuilder creates a builder. A nil completer never adds a narrative.
func NewBuilder(completer llm.Completer, opts Options, logger *zap.Logger) *Builder {
	def := DefaultOptions()
	if opts.TopWarnings <= 0 {
		opts.TopWarnings = def.TopWarnings
	}
	if opts.SnippetLength <= 0 {
		opts.SnippetLength = def.SnippetLength
	}
	if opts.Timeout <= 0 {
		opts.Timeout = def.Timeout
	}
	if completer == nil {
		completer = llm.NullCompleter{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{completer: completer, opts: opts, logger: logger.Named("summary")}
}

// Build computes the structured summary. The structured sections never
// depend on the model; a model narrative is only added on success.
func (b *Builder) Build(ctx context.Context, clauses []model.Clause) model.Summary {
	s := model.Summary{
		TotalClauses:   len(clauses),
		CategoryCounts: make(map[model.Category]int),
		RiskCounts:     model.RiskCounts(clauses),
		Source:         model.SourceRuleBased,
		Note:           model.NoteStandard,
	}
	if len(clauses) == 0 {
		s.Message = NoClausesMessage
		return s
	}

	for _, c := range clauses {
		s.CategoryCounts[c.Category]++
	}

	ranked := byRisk(clauses)
	top := ranked
	if len(top) > b.opts.TopWarnings {
		top = top[:b.opts.TopWarnings]
	}
	for _, c := range top {
		s.Warnings = append(s.Warnings, model.Ref(c, b.opts.SnippetLength))
	}

	for _, cat := range HighlightCategories {
		for _, c := range ranked {
			if c.Category == cat {
				s.Highlights = append(s.Highlights, model.Highlight{
					Category:    cat,
					Clause:      model.Ref(c, b.opts.SnippetLength),
					Suggestions: score.Suggestions(cat, c.RiskLevel),
				})
				break
			}
		}
	}

	s.Recommendations = recommendations(s)

	if llm.Enabled(b.completer) {
		res := llm.Call(ctx, b.completer, b.opts.Timeout, llm.SummaryPrompt(s), llm.ClauseContext(top))
		if res.OK() {
			s.Narrative = res.Text
			s.Source = model.SourceLLM
			s.Note = model.NoteAIEnhanced
		} else {
			b.logger.Warn("summary model unavailable, using standard analysis", zap.Error(res.Err))
		}
	}

	return s
}

// byRisk returns a copy sorted by risk score descending, then order index
func byRisk(clauses []model.Clause) []model.Clause {
	ranked := make([]model.Clause, len(clauses))
	copy(ranked, clauses)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].RiskScore != ranked[j].RiskScore {
			return ranked[i].RiskScore > ranked[j].RiskScore
		}
		return ranked[i].Index < ranked[j].Index
	})
	return ranked
}

var missingTopics = map[model.Category]string{
	model.CategoryPayment:     "No payment clause was found; confirm how and when payment is made",
	model.CategoryTermination: "No termination clause was found; confirm how the agreement can end",
	model.CategoryLiability:   "No liability clause was found; confirm how losses and damages are allocated",
}

func recommendations(s model.Summary) []string {
	var recs []string

	if n := s.RiskCounts[model.RiskHigh]; n > 0 {
		recs = append(recs,
			fmt.Sprintf("Review %d high-risk %s before signing", n, plural(n, "clause")),
			"Consider negotiating the high-risk terms or consulting a legal professional")
	}
	if n := s.RiskCounts[model.RiskMedium]; n > 0 {
		recs = append(recs, fmt.Sprintf("Discuss %d medium-risk %s with your counterparty or advisor", n, plural(n, "clause")))
	}
	if n := s.CategoryCounts[model.CategoryRequiresReview]; n > 0 {
		recs = append(recs, fmt.Sprintf("Manually review %d %s that could not be classified", n, plural(n, "clause")))
	}

	covered := make(map[model.Category]bool, len(s.Highlights))
	for _, h := range s.Highlights {
		covered[h.Category] = true
	}
	for _, cat := range HighlightCategories {
		if !covered[cat] {
			recs = append(recs, missingTopics[cat])
		}
	}

	if s.RiskCounts[model.RiskHigh] == 0 && s.RiskCounts[model.RiskMedium] == 0 {
		recs = append(recs, "No high- or medium-risk clauses were found; still read every clause before signing")
	}
	return recs
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
