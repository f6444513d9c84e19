// Package qa answers questions about a contract from its analysed clauses.
package qa

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/lexguard/internal/extract"
	"github.com/ppiankov/lexguard/internal/llm"
	"github.com/ppiankov/lexguard/internal/model"
	"github.com/ppiankov/lexguard/internal/retrieval"
)

// NoRelevantClausesMessage is the answer when no clause could be selected
const NoRelevantClausesMessage = "I couldn't find relevant clauses to answer your question. Try rephrasing or ask about specific topics like termination, liability, or payment."

// Options tune selection and answer rendering
type Options struct {
	TopK          int
	SnippetLength int
	Timeout       time.Duration
}

// DefaultOptions returns the standard router settings
func DefaultOptions() Options {
	return Options{TopK: 5, SnippetLength: 300, Timeout: 30 * time.Second}
}

// Router answers questions by intent, with retrieval as the fallback
type Router struct {
	index       retrieval.Index
	completer   llm.Completer
	opts        Options
	obligations *extract.ObligationExtractor
	logger      *zap.Logger
}

// NewRouter creates a router. A nil index disables retrieval and a nil
// completer always answers deterministically.
func NewRouter(index retrieval.Index, completer llm.Completer, opts Options, logger *zap.Logger) *Router {
	def := DefaultOptions()
	if opts.TopK <= 0 {
		opts.TopK = def.TopK
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
	return &Router{
		index:       index,
		completer:   completer,
		opts:        opts,
		obligations: extract.NewObligationExtractor(),
		logger:      logger.Named("qa"),
	}
}

// ClassifyIntent resolves the intent of a question
func (r *Router) ClassifyIntent(question string) model.Intent {
	return ClassifyIntent(question)
}

// Answer never fails: model errors fall back to the deterministic answer
// and an empty selection yields NoRelevantClausesMessage.
func (r *Router) Answer(ctx context.Context, contractID string, clauses []model.Clause, question string) model.AnswerResult {
	intent := ClassifyIntent(question)
	selected := r.Select(ctx, contractID, clauses, question, intent)

	result := model.AnswerResult{
		Intent:          intent,
		SelectedClauses: make([]string, len(selected)),
		Source:          model.SourceRuleBased,
		Note:            model.NoteStandard,
	}
	for i, c := range selected {
		result.SelectedClauses[i] = c.ID
	}

	if len(selected) == 0 {
		result.AnswerText = NoRelevantClausesMessage
		return result
	}

	if llm.Enabled(r.completer) {
		res := llm.Call(ctx, r.completer, r.opts.Timeout, llm.QAPrompt(question), llm.ClauseContext(selected))
		if res.OK() {
			result.AnswerText = res.Text
			result.Source = model.SourceLLM
			result.Note = model.NoteAIEnhanced
			return result
		}
		r.logger.Warn("answer model unavailable, using standard analysis",
			zap.String("contract_id", contractID),
			zap.String("intent", string(intent)),
			zap.Error(res.Err))
	}

	result.AnswerText = r.render(intent, selected)
	return result
}

// Select picks up to TopK clauses for the intent, highest risk first. The
// general intent and empty category matches use the retrieval index.
func (r *Router) Select(ctx context.Context, contractID string, clauses []model.Clause, question string, intent model.Intent) []model.Clause {
	if len(clauses) == 0 {
		return nil
	}

	if cats := intentCategories[intent]; len(cats) > 0 {
		wanted := make(map[model.Category]bool, len(cats))
		for _, c := range cats {
			wanted[c] = true
		}
		var matched []model.Clause
		for _, c := range clauses {
			if wanted[c.Category] {
				matched = append(matched, c)
			}
		}
		if len(matched) > 0 {
			sort.SliceStable(matched, func(i, j int) bool {
				if matched[i].RiskScore != matched[j].RiskScore {
					return matched[i].RiskScore > matched[j].RiskScore
				}
				return matched[i].Index < matched[j].Index
			})
			if len(matched) > r.opts.TopK {
				matched = matched[:r.opts.TopK]
			}
			return matched
		}
	}

	return r.retrieve(ctx, contractID, clauses, question)
}

// retrieve queries the index, rebuilding it once from clauses when the
// contract was never indexed
func (r *Router) retrieve(ctx context.Context, contractID string, clauses []model.Clause, question string) []model.Clause {
	if r.index == nil || strings.TrimSpace(question) == "" {
		return nil
	}

	hits, err := r.index.Query(ctx, contractID, question, r.opts.TopK)
	if errors.Is(err, retrieval.ErrNotIndexed) {
		if err = r.index.Build(ctx, contractID, clauses); err == nil {
			hits, err = r.index.Query(ctx, contractID, question, r.opts.TopK)
		}
	}
	if err != nil {
		r.logger.Warn("clause retrieval failed",
			zap.String("contract_id", contractID),
			zap.Error(err))
		return nil
	}

	byID := make(map[string]model.Clause, len(clauses))
	for _, c := range clauses {
		byID[c.ID] = c
	}
	selected := make([]model.Clause, 0, len(hits))
	for _, h := range hits {
		if c, ok := byID[h.ClauseID]; ok {
			selected = append(selected, c)
		}
	}
	return selected
}

var intentHeaders = map[model.Intent]string{
	model.IntentPayment:              "Here are the payment-related clauses:",
	model.IntentTermination:          "Here are the termination-related clauses:",
	model.IntentLiability:            "Here are the liability-related clauses:",
	model.IntentIntellectualProperty: "Here are the intellectual property and confidentiality clauses:",
	model.IntentDates:                "Here are the clauses that mention dates and deadlines:",
	model.IntentObligations:          "Here are the clauses that set out obligations:",
	model.IntentGeneral:              "Here are the clauses most relevant to your question:",
}

// render builds the deterministic markdown answer in ranking order
func (r *Router) render(intent model.Intent, selected []model.Clause) string {
	var b strings.Builder
	b.WriteString(intentHeaders[intent])
	b.WriteString("\n")

	for i, c := range selected {
		fmt.Fprintf(&b, "\n**%d. %s** · %s %s (%.2f) · clause %d\n",
			i+1, c.Category.Label(), c.RiskLevel.Badge(), strings.ToUpper(string(c.RiskLevel)), c.RiskScore, c.Index+1)
		fmt.Fprintf(&b, "> %s\n", model.Snippet(c.Text, r.opts.SnippetLength))
	}

	switch intent {
	case model.IntentDates:
		r.renderDates(&b, selected)
	case model.IntentObligations:
		r.renderObligations(&b, selected)
	}

	return strings.TrimRight(b.String(), "\n")
}

func (r *Router) renderDates(b *strings.Builder, selected []model.Clause) {
	var lines []string
	for _, c := range selected {
		for _, d := range extract.Dates(c.Text) {
			lines = append(lines, fmt.Sprintf("- %s (%s, clause %d)", d.Value, strings.ReplaceAll(string(d.Kind), "_", " "), c.Index+1))
		}
	}
	if len(lines) == 0 {
		return
	}
	b.WriteString("\n**Dates mentioned:**\n")
	for _, l := range lines {
		b.WriteString(l)
		b.WriteString("\n")
	}
}

func (r *Router) renderObligations(b *strings.Builder, selected []model.Clause) {
	var lines []string
	for _, c := range selected {
		for _, o := range r.obligations.Extract(c.Text) {
			lines = append(lines, fmt.Sprintf("- [%s] %s", strings.ReplaceAll(string(o.Kind), "_", " "), model.Snippet(o.Text, r.opts.SnippetLength)))
		}
	}
	if len(lines) == 0 {
		return
	}
	if len(lines) > extract.MaxObligations {
		lines = lines[:extract.MaxObligations]
	}
	b.WriteString("\n**Obligations:**\n")
	for _, l := range lines {
		b.WriteString(l)
		b.WriteString("\n")
	}
}
