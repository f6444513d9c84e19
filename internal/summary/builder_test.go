package summary

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ppiankov/lexguard/internal/model"
)

type fakeCompleter struct {
	response string
	err      error
	prompt   string
	input    string
}

func (f *fakeCompleter) Name() string { return "fake" }

func (f *fakeCompleter) Complete(ctx context.Context, prompt, input string) (string, error) {
	f.prompt, f.input = prompt, input
	return f.response, f.err
}

func clause(id string, index int, category model.Category, score float64, level model.RiskLevel) model.Clause {
	return model.Clause{
		ID: id, Index: index, Category: category, RiskScore: score, RiskLevel: level,
		Text: "Clause text for " + id + " covering the " + string(category) + " terms of the agreement.",
	}
}

func TestBuildCounts(t *testing.T) {
	clauses := []model.Clause{
		clause("a", 0, model.CategoryLiability, 0.9, model.RiskHigh),
		clause("b", 1, model.CategoryPayment, 0.2, model.RiskLow),
		clause("c", 2, model.CategoryPayment, 0.5, model.RiskMedium),
	}

	s := NewBuilder(nil, DefaultOptions(), nil).Build(context.Background(), clauses)

	assert.Equal(t, 3, s.TotalClauses)
	assert.Equal(t, map[model.Category]int{model.CategoryLiability: 1, model.CategoryPayment: 2}, s.CategoryCounts)
	assert.Equal(t, map[model.RiskLevel]int{model.RiskHigh: 1, model.RiskLow: 1, model.RiskMedium: 1}, s.RiskCounts)
	assert.Equal(t, model.SourceRuleBased, s.Source)
	assert.Equal(t, model.NoteStandard, s.Note)
	assert.Empty(t, s.Narrative)
	assert.Empty(t, s.Message)
}

func TestBuildNoClauses(t *testing.T) {
	s := NewBuilder(nil, DefaultOptions(), nil).Build(context.Background(), nil)

	assert.Equal(t, 0, s.TotalClauses)
	assert.Equal(t, NoClausesMessage, s.Message)
	assert.Empty(t, s.Warnings)
	assert.Empty(t, s.Highlights)
	assert.NotNil(t, s.CategoryCounts)
	assert.NotNil(t, s.RiskCounts)
	assert.Contains(t, Markdown(s), NoClausesMessage)
}

func TestBuildWarningsTopK(t *testing.T) {
	clauses := []model.Clause{
		clause("a", 0, model.CategoryMiscellaneous, 0.2, model.RiskLow),
		clause("b", 1, model.CategoryLiability, 0.9, model.RiskHigh),
		clause("c", 2, model.CategoryPayment, 0.5, model.RiskMedium),
		clause("d", 3, model.CategoryNonCompete, 0.9, model.RiskHigh),
		clause("e", 4, model.CategoryTermination, 0.7, model.RiskHigh),
	}

	s := NewBuilder(nil, Options{TopWarnings: 3}, nil).Build(context.Background(), clauses)

	require.Len(t, s.Warnings, 3)
	ids := []string{s.Warnings[0].ID, s.Warnings[1].ID, s.Warnings[2].ID}
	assert.Equal(t, []string{"b", "d", "e"}, ids, "risk descending, ties by order index")
}

func TestBuildHighlights(t *testing.T) {
	clauses := []model.Clause{
		clause("p1", 0, model.CategoryPayment, 0.3, model.RiskLow),
		clause("p2", 1, model.CategoryPayment, 0.8, model.RiskHigh),
		clause("l", 2, model.CategoryLiability, 0.5, model.RiskMedium),
		clause("x", 3, model.CategoryConfidentiality, 0.9, model.RiskHigh),
	}

	s := NewBuilder(nil, DefaultOptions(), nil).Build(context.Background(), clauses)

	require.Len(t, s.Highlights, 2)
	assert.Equal(t, model.CategoryPayment, s.Highlights[0].Category)
	assert.Equal(t, "p2", s.Highlights[0].Clause.ID)
	assert.Len(t, s.Highlights[0].Suggestions, 5)
	assert.Equal(t, model.CategoryLiability, s.Highlights[1].Category)
	assert.Len(t, s.Highlights[1].Suggestions, 3)

	assert.Contains(t, s.Recommendations, "Review 2 high-risk clauses before signing")
	assert.Contains(t, s.Recommendations, "Discuss 1 medium-risk clause with your counterparty or advisor")
	assert.Contains(t, s.Recommendations, missingTopics[model.CategoryTermination])
	assert.NotContains(t, s.Recommendations, missingTopics[model.CategoryPayment])
}

func TestBuildAllClear(t *testing.T) {
	clauses := []model.Clause{
		clause("p", 0, model.CategoryPayment, 0.2, model.RiskLow),
		clause("t", 1, model.CategoryTermination, 0.2, model.RiskLow),
		clause("l", 2, model.CategoryLiability, 0.3, model.RiskLow),
		clause("r", 3, model.CategoryRequiresReview, 0.3, model.RiskLow),
	}

	s := NewBuilder(nil, DefaultOptions(), nil).Build(context.Background(), clauses)

	assert.Equal(t, []string{
		"Manually review 1 clause that could not be classified",
		"No high- or medium-risk clauses were found; still read every clause before signing",
	}, s.Recommendations)
}

func TestBuildNarrative(t *testing.T) {
	clauses := []model.Clause{
		clause("a", 0, model.CategoryLiability, 0.9, model.RiskHigh),
		clause("b", 1, model.CategoryPayment, 0.2, model.RiskLow),
	}
	fake := &fakeCompleter{response: "This contract carries unlimited liability."}

	s := NewBuilder(fake, DefaultOptions(), nil).Build(context.Background(), clauses)

	assert.Equal(t, "This contract carries unlimited liability.", s.Narrative)
	assert.Equal(t, model.SourceLLM, s.Source)
	assert.Equal(t, model.NoteAIEnhanced, s.Note)
	assert.Contains(t, fake.prompt, "Clauses analysed: 2")
	assert.True(t, strings.HasPrefix(fake.input, "Clause 1 [Liability, high risk]"))
}

func TestBuildNarrativeFailure(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	clauses := []model.Clause{clause("a", 0, model.CategoryLiability, 0.9, model.RiskHigh)}
	fake := &fakeCompleter{err: errors.New("boom")}

	s := NewBuilder(fake, DefaultOptions(), zap.New(core)).Build(context.Background(), clauses)

	assert.Empty(t, s.Narrative)
	assert.Equal(t, model.SourceRuleBased, s.Source)
	assert.Equal(t, model.NoteStandard, s.Note)
	assert.Equal(t, 1, logs.Len())
	assert.NotEmpty(t, s.Warnings, "structured sections survive a model failure")
}

func TestMarkdown(t *testing.T) {
	clauses := []model.Clause{
		clause("a", 0, model.CategoryLiability, 0.9, model.RiskHigh),
		clause("b", 1, model.CategoryPayment, 0.2, model.RiskLow),
		clause("c", 2, model.CategoryPayment, 0.5, model.RiskMedium),
	}
	s := NewBuilder(nil, DefaultOptions(), nil).Build(context.Background(), clauses)

	md := Markdown(s)

	assert.Contains(t, md, "This contract contains 3 clauses")
	assert.Contains(t, md, "- **Payment**: 2 clauses")
	assert.Contains(t, md, "- 🔴 High risk: 1 clause")
	assert.Contains(t, md, "## Top Risks")
	assert.Contains(t, md, "### Liability")
	assert.Contains(t, md, "## Recommendations")
	assert.Less(t, strings.Index(md, "**Payment**"), strings.Index(md, "**Liability**"), "categories by count")
}
