package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/lexguard/internal/model"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "data", "lexguard.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func contract(id string, uploaded time.Time, levels ...model.RiskLevel) *model.Contract {
	c := &model.Contract{
		ID:         id,
		Filename:   id + ".txt",
		Title:      "Agreement " + id,
		UploadedAt: uploaded,
		Parties:    []string{"Acme Corp", "Beta LLC"},
	}
	for i, level := range levels {
		c.Clauses = append(c.Clauses, model.Clause{
			ID:        id + "-" + string(rune('a'+i)),
			Index:     i,
			Text:      "Clause text",
			Category:  model.CategoryPayment,
			RiskScore: 0.5,
			RiskLevel: level,
			Reasons:   []string{"Standard payment clause"},
		})
	}
	return c
}

func TestSaveAndGet(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	uploaded := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	in := contract("c1", uploaded, model.RiskHigh, model.RiskLow, model.RiskLow)
	// Stored out of order, read back in order
	in.Clauses[0], in.Clauses[2] = in.Clauses[2], in.Clauses[0]
	require.NoError(t, s.SaveContract(ctx, in))

	out, err := s.GetContract(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "c1.txt", out.Filename)
	assert.Equal(t, "Agreement c1", out.Title)
	assert.Equal(t, []string{"Acme Corp", "Beta LLC"}, out.Parties)
	assert.True(t, uploaded.Equal(out.UploadedAt))
	require.Len(t, out.Clauses, 3)
	for i, c := range out.Clauses {
		assert.Equal(t, i, c.Index)
		assert.Equal(t, "c1", c.ContractID)
		assert.Equal(t, []string{"Standard payment clause"}, c.Reasons)
	}
	assert.Equal(t, model.RiskHigh, out.Clauses[0].RiskLevel)
}

func TestSaveAndGet_KeyTerms(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	in := contract("c1", time.Now().UTC(), model.RiskLow)
	in.KeyTerms = model.KeyTerms{
		DefinedTerms: []model.DefinedTerm{{Term: "Services", Definition: "the consulting work"}},
		Amounts:      []model.Amount{{Value: "$4,000", Context: "month"}},
		Periods:      []model.Period{{Text: "within 30 days", Kind: model.PeriodRelative}},
		Concepts:     []model.Concept{{Name: "termination", Count: 2}},
	}
	require.NoError(t, s.SaveContract(ctx, in))

	out, err := s.GetContract(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, in.KeyTerms, out.KeyTerms)
}

func TestSaveReplaces(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveContract(ctx, contract("c1", time.Now(), model.RiskHigh, model.RiskLow)))
	require.NoError(t, s.SaveContract(ctx, contract("c1", time.Now(), model.RiskMedium)))

	out, err := s.GetContract(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, out.Clauses, 1)
	assert.Equal(t, model.RiskMedium, out.Clauses[0].RiskLevel)
}

func TestSaveRejectsBadOrder(t *testing.T) {
	s := newStore(t)
	c := contract("c1", time.Now(), model.RiskLow, model.RiskLow)
	c.Clauses[1].Index = 0

	assert.Error(t, s.SaveContract(context.Background(), c))
}

func TestGetNotFound(t *testing.T) {
	s := newStore(t)

	_, err := s.GetContract(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEmptyContract(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveContract(ctx, contract("empty", time.Now())))

	out, err := s.GetContract(ctx, "empty")
	require.NoError(t, err)
	assert.NotNil(t, out.Clauses)
	assert.Empty(t, out.Clauses)
}

func TestListContracts(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.SaveContract(ctx, contract("old", base, model.RiskHigh, model.RiskLow, model.RiskLow)))
	require.NoError(t, s.SaveContract(ctx, contract("new", base.Add(time.Hour), model.RiskMedium)))
	require.NoError(t, s.SaveContract(ctx, contract("none", base.Add(-time.Hour))))

	infos, err := s.ListContracts(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 3)

	assert.Equal(t, "new", infos[0].ID)
	assert.Equal(t, 1, infos[0].ClauseCount)
	assert.Equal(t, map[model.RiskLevel]int{model.RiskMedium: 1}, infos[0].RiskCounts)

	assert.Equal(t, "old", infos[1].ID)
	assert.Equal(t, 3, infos[1].ClauseCount)
	assert.Equal(t, map[model.RiskLevel]int{model.RiskHigh: 1, model.RiskLow: 2}, infos[1].RiskCounts)

	assert.Equal(t, "none", infos[2].ID)
	assert.Equal(t, 0, infos[2].ClauseCount)
}

func TestDeleteContract(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveContract(ctx, contract("c1", time.Now(), model.RiskLow)))
	require.NoError(t, s.DeleteContract(ctx, "c1"))

	_, err := s.GetContract(ctx, "c1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.DeleteContract(ctx, "c1"), ErrNotFound)

	infos, err := s.ListContracts(ctx)
	require.NoError(t, err)
	assert.Empty(t, infos)
}

func TestInMemory(t *testing.T) {
	s, err := New(":memory:")
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.SaveContract(ctx, contract("c1", time.Now(), model.RiskLow)))
	out, err := s.GetContract(ctx, "c1")
	require.NoError(t, err)
	assert.Len(t, out.Clauses, 1)
}
