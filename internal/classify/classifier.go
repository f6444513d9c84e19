// Package classify assigns contract clauses to categories with weighted
// keyword patterns, optionally asking a language model to break close calls.
package classify

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/lexguard/internal/llm"
	"github.com/ppiankov/lexguard/internal/model"
)

type compiledRule struct {
	pattern *regexp.Regexp
	weight  float64
}

// CategoryScore is the normalized pattern score of one category
type CategoryScore struct {
	Category model.Category `json:"category"`
	Score    float64        `json:"score"`
	Matches  []string       `json:"matches,omitempty"`
}

// Classification is the outcome for a single clause
type Classification struct {
	Category  model.Category  `json:"category"`
	Scores    []CategoryScore `json:"scores"`
	Ambiguous bool            `json:"ambiguous"`
	Source    string          `json:"source"`
}

// Classifier assigns one category per clause
type Classifier struct {
	rules     map[model.Category][]compiledRule
	priority  map[model.Category]int
	completer llm.Completer
	timeout   time.Duration
	margin    float64
	logger    *zap.Logger
}

// Option configures a Classifier
type Option func(*Classifier)

// WithCompleter enables model disambiguation of close scores
func WithCompleter(c llm.Completer, timeout time.Duration) Option {
	return func(cl *Classifier) {
		cl.completer = c
		cl.timeout = timeout
	}
}

// WithAmbiguityMargin sets the relative gap between the top two scores
// at or below which a clause counts as ambiguous
func WithAmbiguityMargin(margin float64) Option {
	return func(cl *Classifier) {
		cl.margin = margin
	}
}

// WithLogger sets the logger used for fallback warnings
func WithLogger(logger *zap.Logger) Option {
	return func(cl *Classifier) {
		if logger != nil {
			cl.logger = logger
		}
	}
}

// New compiles a rule set. Unknown categories, rules on requires_review,
// invalid patterns and non-positive weights are configuration errors.
func New(rules RuleSet, opts ...Option) (*Classifier, error) {
	c := &Classifier{
		rules:     make(map[model.Category][]compiledRule, len(rules)),
		priority:  make(map[model.Category]int, len(Priority)),
		completer: llm.NullCompleter{},
		timeout:   30 * time.Second,
		margin:    0.15,
		logger:    zap.NewNop(),
	}
	for i, cat := range Priority {
		c.priority[cat] = i
	}

	for cat, catRules := range rules {
		if _, err := model.ParseCategory(string(cat)); err != nil {
			return nil, fmt.Errorf("rule table: %w", err)
		}
		if cat == model.CategoryRequiresReview {
			return nil, fmt.Errorf("rule table: %s cannot carry rules", cat)
		}
		for _, r := range catRules {
			if r.Weight <= 0 {
				return nil, fmt.Errorf("rule table: %s pattern %q: weight must be positive, got %v", cat, r.Pattern, r.Weight)
			}
			re, err := regexp.Compile("(?i)" + r.Pattern)
			if err != nil {
				return nil, fmt.Errorf("rule table: %s pattern %q: %w", cat, r.Pattern, err)
			}
			c.rules[cat] = append(c.rules[cat], compiledRule{pattern: re, weight: r.Weight})
		}
	}

	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.Named("classify")

	return c, nil
}

// Scores returns every category's score, best first. Score is the sum of
// matched pattern weights divided by the square root of the word count.
func (c *Classifier) Scores(text string) []CategoryScore {
	words := len(strings.Fields(text))
	norm := 1.0
	if words > 0 {
		norm = math.Sqrt(float64(words))
	}

	scores := make([]CategoryScore, 0, len(Priority))
	for _, cat := range Priority {
		cs := CategoryScore{Category: cat}
		sum := 0.0
		for _, r := range c.rules[cat] {
			if m := r.pattern.FindString(text); m != "" {
				sum += r.weight
				cs.Matches = append(cs.Matches, strings.ToLower(m))
			}
		}
		if words > 0 {
			cs.Score = sum / norm
		}
		scores = append(scores, cs)
	}

	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		return c.priority[scores[i].Category] < c.priority[scores[j].Category]
	})
	return scores
}

// Classify returns exactly one category. It never fails: no match yields
// requires_review and model errors keep the rule-based choice.
func (c *Classifier) Classify(ctx context.Context, text string) Classification {
	scores := c.Scores(text)
	result := Classification{
		Category: model.CategoryRequiresReview,
		Scores:   scores,
		Source:   model.SourceRuleBased,
	}

	if len(scores) == 0 || scores[0].Score == 0 {
		return result
	}
	result.Category = scores[0].Category

	if len(scores) < 2 || scores[1].Score == 0 {
		return result
	}
	top, second := scores[0].Score, scores[1].Score
	if (top-second)/top > c.margin {
		return result
	}
	result.Ambiguous = true

	if !llm.Enabled(c.completer) {
		return result
	}

	candidates := []model.Category{scores[0].Category, scores[1].Category}
	if scores[0].Category != model.CategoryMiscellaneous && scores[1].Category != model.CategoryMiscellaneous {
		candidates = append(candidates, model.CategoryMiscellaneous)
	}

	res := llm.Call(ctx, c.completer, c.timeout, llm.ClassificationPrompt(candidates), text)
	if !res.OK() {
		c.logger.Warn("classification model unavailable, keeping rule-based category",
			zap.String("category", string(result.Category)),
			zap.Error(res.Err))
		return result
	}

	chosen, ok := parseChoice(res.Text, candidates)
	if !ok {
		c.logger.Warn("classification model returned an unknown category, keeping rule-based category",
			zap.String("response", truncate(res.Text, 80)))
		return result
	}

	result.Category = chosen
	result.Source = model.SourceLLM
	return result
}

// parseChoice accepts the first candidate category named in a model reply
func parseChoice(reply string, candidates []model.Category) (model.Category, bool) {
	if cat, err := model.ParseCategory(strings.Trim(reply, " \t\n.\"'`")); err == nil {
		for _, cand := range candidates {
			if cand == cat {
				return cat, true
			}
		}
	}

	fields := strings.FieldsFunc(strings.ToLower(reply), func(r rune) bool {
		return !(r >= 'a' && r <= 'z') && r != '_' && r != '-'
	})
	for _, f := range fields {
		cat, err := model.ParseCategory(f)
		if err != nil {
			continue
		}
		for _, cand := range candidates {
			if cand == cat {
				return cat, true
			}
		}
	}
	return "", false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
