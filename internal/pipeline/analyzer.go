package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ppiankov/lexguard/internal/classify"
	"github.com/ppiankov/lexguard/internal/model"
	"github.com/ppiankov/lexguard/internal/score"
	"github.com/ppiankov/lexguard/internal/segment"
)

// Analyzer turns contract text into classified, scored clauses
type Analyzer struct {
	segmenter  *segment.Segmenter
	classifier *classify.Classifier
	scorer     *score.Scorer
	maxWorkers int
	logger     *zap.Logger
}

// NewAnalyzer wires the clause stages. workers bounds how many clauses are
// classified and scored at once.
func NewAnalyzer(seg *segment.Segmenter, cls *classify.Classifier, scorer *score.Scorer, workers int, logger *zap.Logger) *Analyzer {
	if workers <= 0 {
		workers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{
		segmenter:  seg,
		classifier: cls,
		scorer:     scorer,
		maxWorkers: workers,
		logger:     logger.Named("analyzer"),
	}
}

// ClauseID derives a stable clause id from the contract id and order index
func ClauseID(contractID string, index int) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("%s:%d", contractID, index))).String()
}

// SegmentAndClassify splits text and analyses every clause concurrently.
// The result is in order index order; empty text yields an empty slice.
func (a *Analyzer) SegmentAndClassify(ctx context.Context, contractID, text string) []model.Clause {
	seg := a.segmenter.SplitDetailed(text)
	a.logger.Debug("segmented contract",
		zap.String("contract_id", contractID),
		zap.String("heuristic", seg.Heuristic),
		zap.Int("clauses", len(seg.Segments)))

	results := make([]model.Clause, len(seg.Segments))
	if len(seg.Segments) == 0 {
		return results
	}

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, a.maxWorkers)

	for i, t := range seg.Segments {
		wg.Add(1)
		go func(idx int, clauseText string) {
			defer wg.Done()

			select {
			case <-ctx.Done():
				// Cancelled: model calls fail fast, rules still apply
				results[idx] = a.analyze(ctx, contractID, idx, clauseText)
				return
			case semaphore <- struct{}{}:
			}
			defer func() { <-semaphore }()

			results[idx] = a.analyze(ctx, contractID, idx, clauseText)
		}(i, t)
	}

	wg.Wait()
	return results
}

func (a *Analyzer) analyze(ctx context.Context, contractID string, index int, text string) model.Clause {
	cls := a.classifier.Classify(ctx, text)
	risk := a.scorer.Score(ctx, text, cls.Category)

	return model.Clause{
		ID:         ClauseID(contractID, index),
		ContractID: contractID,
		Index:      index,
		Text:       text,
		Category:   cls.Category,
		RiskScore:  risk.Score,
		RiskLevel:  risk.Level,
		Reasons:    risk.Reasons,
	}
}
