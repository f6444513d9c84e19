package score

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/lexguard/internal/llm"
	"github.com/ppiankov/lexguard/internal/model"
)

// Scorer calculates clause risk scores and generates signals
type Scorer struct {
	thresholds model.Thresholds
	completer  llm.Completer
	timeout    time.Duration
	maxDelta   float64
	logger     *zap.Logger
}

// Option configures a Scorer
type Option func(*Scorer)

// WithCompleter enables the bounded model adjustment in Score
func WithCompleter(c llm.Completer, timeout time.Duration) Option {
	return func(s *Scorer) {
		s.completer = c
		s.timeout = timeout
	}
}

// WithMaxDelta bounds how far the model may move the rule-based score
func WithMaxDelta(delta float64) Option {
	return func(s *Scorer) {
		s.maxDelta = delta
	}
}

// WithLogger sets the logger used for fallback warnings
func WithLogger(logger *zap.Logger) Option {
	return func(s *Scorer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewScorer creates a new scorer
func NewScorer(thresholds model.Thresholds, opts ...Option) *Scorer {
	s := &Scorer{
		thresholds: thresholds,
		completer:  llm.NullCompleter{},
		timeout:    30 * time.Second,
		maxDelta:   0.15,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("score")
	return s
}

// Level maps a score onto a risk level
func (s *Scorer) Level(score float64) model.RiskLevel {
	return s.thresholds.Level(score)
}

// Calculate scores a clause with the rule tables only. The result depends
// on nothing but text and category.
func (s *Scorer) Calculate(text string, category model.Category) model.RiskAssessment {
	base := BaseScore(category)
	score := base
	var signals []model.Signal
	var reasons []string

	apply := func(r rule) {
		ok, data := r.match(text)
		if !ok {
			return
		}
		if data == nil {
			data = map[string]interface{}{}
		}
		before := score
		switch r.kind {
		case model.SignalMultiplicative:
			score *= r.value
			data["formula"] = fmt.Sprintf("score * %.2f", r.value)
		default:
			score += r.value
			data["formula"] = fmt.Sprintf("score + %.2f", r.value)
		}
		data["before"] = before
		data["after"] = score

		signals = append(signals, model.Signal{
			Rule:        r.name,
			Kind:        r.kind,
			Value:       r.value,
			Description: r.description,
			Data:        data,
		})
		reasons = append(reasons, r.description)
	}

	for _, r := range categoryRules[category] {
		apply(r)
	}
	for _, g := range generalRules {
		if g.skip != "" && g.skip == category {
			continue
		}
		apply(g.rule)
	}

	score = clamp(score)
	if len(reasons) == 0 {
		reasons = []string{fmt.Sprintf("Standard %s clause", strings.ToLower(category.Label()))}
	}

	return model.RiskAssessment{
		Base:    base,
		Score:   score,
		Level:   s.thresholds.Level(score),
		Signals: signals,
		Reasons: reasons,
		Source:  model.SourceRuleBased,
	}
}

// modelRating is the JSON reply expected from the risk prompt
type modelRating struct {
	Score   *float64 `json:"score"`
	Reasons []string `json:"reasons"`
}

// Score runs Calculate and, when a completer is configured, moves the
// score toward the model's rating by at most maxDelta. Any model failure
// keeps the rule-based assessment.
func (s *Scorer) Score(ctx context.Context, text string, category model.Category) model.RiskAssessment {
	assessment := s.Calculate(text, category)
	if !llm.Enabled(s.completer) {
		return assessment
	}

	res := llm.Call(ctx, s.completer, s.timeout, llm.RiskPrompt(category, assessment.Score), text)
	if !res.OK() {
		s.logger.Warn("risk model unavailable, keeping rule-based score",
			zap.String("category", string(category)),
			zap.Error(res.Err))
		return assessment
	}

	rating, err := parseRating(res.Text)
	if err != nil {
		s.logger.Warn("risk model reply not understood, keeping rule-based score",
			zap.String("category", string(category)),
			zap.Error(err))
		return assessment
	}

	delta := *rating.Score - assessment.Score
	bounded := math.Max(-s.maxDelta, math.Min(s.maxDelta, delta))
	adjusted := clamp(assessment.Score + bounded)

	assessment.Signals = append(assessment.Signals, model.Signal{
		Rule:        "model_adjustment",
		Kind:        model.SignalModel,
		Value:       bounded,
		Description: "Language model adjustment",
		Data: map[string]interface{}{
			"model_score": *rating.Score,
			"delta":       delta,
			"max_delta":   s.maxDelta,
			"formula":     "clamp(rule + clamp(model - rule, -max_delta, max_delta), 0, 1)",
		},
	})
	for _, r := range rating.Reasons {
		if r = strings.TrimSpace(r); r != "" {
			assessment.Reasons = append(assessment.Reasons, r)
		}
	}
	assessment.Score = adjusted
	assessment.Level = s.thresholds.Level(adjusted)
	assessment.Source = model.SourceLLM
	return assessment
}

// parseRating extracts the first JSON object of the reply
func parseRating(reply string) (modelRating, error) {
	var rating modelRating
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end <= start {
		return rating, fmt.Errorf("no JSON object in reply")
	}
	if err := json.Unmarshal([]byte(reply[start:end+1]), &rating); err != nil {
		return rating, fmt.Errorf("decode rating: %w", err)
	}
	if rating.Score == nil {
		return rating, fmt.Errorf("rating has no score")
	}
	if math.IsNaN(*rating.Score) || *rating.Score < 0 || *rating.Score > 1 {
		return rating, fmt.Errorf("rating score %v out of range", *rating.Score)
	}
	return rating, nil
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
