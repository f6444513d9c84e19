// Package pipeline wires ingestion, analysis, storage, retrieval, question
// answering and summaries into the contract workflow.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ppiankov/lexguard/internal/cache"
	"github.com/ppiankov/lexguard/internal/classify"
	"github.com/ppiankov/lexguard/internal/extract"
	"github.com/ppiankov/lexguard/internal/ingest"
	"github.com/ppiankov/lexguard/internal/llm"
	"github.com/ppiankov/lexguard/internal/model"
	"github.com/ppiankov/lexguard/internal/qa"
	"github.com/ppiankov/lexguard/internal/retrieval"
	"github.com/ppiankov/lexguard/internal/score"
	"github.com/ppiankov/lexguard/internal/segment"
	"github.com/ppiankov/lexguard/internal/store"
	"github.com/ppiankov/lexguard/internal/summary"
)

// Store persists contracts
type Store interface {
	SaveContract(ctx context.Context, c *model.Contract) error
	GetContract(ctx context.Context, id string) (*model.Contract, error)
	ListContracts(ctx context.Context) ([]model.ContractInfo, error)
	DeleteContract(ctx context.Context, id string) error
}

// Pipeline orchestrates the complete contract workflow
type Pipeline struct {
	analyzer *Analyzer
	router   *qa.Router
	summary  *summary.Builder
	store    Store
	index    retrieval.Index
	logger   *zap.Logger
	now      func() time.Time
	closers  []func() error
}

// Components are the collaborators of a Pipeline. Index may be nil.
type Components struct {
	Analyzer *Analyzer
	Router   *qa.Router
	Summary  *summary.Builder
	Store    Store
	Index    retrieval.Index
	Logger   *zap.Logger
}

// NewPipeline assembles a pipeline from ready components
func NewPipeline(c Components) *Pipeline {
	logger := c.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		analyzer: c.Analyzer,
		router:   c.Router,
		summary:  c.Summary,
		store:    c.Store,
		index:    c.Index,
		logger:   logger.Named("pipeline"),
		now:      time.Now,
	}
}

// New builds every component from the configuration. Configuration errors
// are returned before any work starts.
func New(cfg *model.Config, logger *zap.Logger) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := cache.New(cacheConfig(cfg))
	cacheTTL := time.Duration(cfg.Cache.TTL) * time.Hour

	llmCfg := llm.ConfigFromModel(cfg.LLM)
	completer, err := llm.Build(llmCfg, c, cacheTTL)
	if err != nil {
		return nil, fmt.Errorf("create llm provider: %w", err)
	}
	timeout := llmCfg.TimeoutDuration()

	rules, err := classify.FromConfig(classify.DefaultRules(), cfg.Analysis.Rules)
	if err != nil {
		return nil, fmt.Errorf("rule table: %w", err)
	}
	classifier, err := classify.New(rules,
		classify.WithCompleter(completer, timeout),
		classify.WithAmbiguityMargin(cfg.Analysis.AmbiguityMargin),
		classify.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	scorer := score.NewScorer(cfg.Analysis.RiskThresholds,
		score.WithCompleter(completer, timeout),
		score.WithMaxDelta(cfg.Analysis.MaxLLMDelta),
		score.WithLogger(logger))

	segmenter := segment.New(segment.Options{
		MinSegments:      cfg.Analysis.MinSegments,
		MinAvgLength:     cfg.Analysis.MinAvgSegmentLength,
		MinClauseLength:  cfg.Analysis.MinClauseLength,
		SentenceFallback: cfg.Analysis.SentenceFallback,
	})

	embed, err := retrieval.NewEmbedder(cfg.Embedding)
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}
	embed = retrieval.CachedEmbedder(embed, c, retrieval.EmbedderName(cfg.Embedding), cacheTTL)

	index, err := retrieval.NewChromemIndex(cfg.Storage.Index(), embed, logger)
	if err != nil {
		return nil, err
	}

	db, err := store.New(cfg.Storage.Database())
	if err != nil {
		return nil, err
	}

	p := NewPipeline(Components{
		Analyzer: NewAnalyzer(segmenter, classifier, scorer, cfg.Concurrency.ClauseWorkers, logger),
		Router: qa.NewRouter(index, completer, qa.Options{
			TopK:          cfg.Analysis.TopKAnswers,
			SnippetLength: cfg.Analysis.SnippetLength,
			Timeout:       timeout,
		}, logger),
		Summary: summary.NewBuilder(completer, summary.Options{
			TopWarnings:   cfg.Analysis.SummaryTopWarnings,
			SnippetLength: cfg.Analysis.SnippetLength,
			Timeout:       timeout,
		}, logger),
		Store:  db,
		Index:  index,
		Logger: logger,
	})
	p.closers = append(p.closers, db.Close)

	logger.Debug("pipeline ready",
		zap.String("llm_provider", completer.Name()),
		zap.String("embedder", retrieval.EmbedderName(cfg.Embedding)),
		zap.String("database", cfg.Storage.Database()))

	return p, nil
}

// cacheConfig places the disk cache inside the data directory by default
func cacheConfig(cfg *model.Config) model.CacheConfig {
	cc := cfg.Cache
	if cc.Enabled && cc.Dir == "" && cfg.Storage.DataDir != "" {
		cc.Dir = filepath.Join(cfg.Storage.DataDir, "cache")
	}
	return cc
}

// Close releases the database
func (p *Pipeline) Close() error {
	var errs []error
	for _, c := range p.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Ingest reads, analyses, stores and indexes a contract file
func (p *Pipeline) Ingest(ctx context.Context, path string) (*model.Contract, error) {
	text, err := ingest.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read contract: %w", err)
	}
	return p.IngestText(ctx, filepath.Base(path), text)
}

// IngestText analyses, stores and indexes already extracted contract text
func (p *Pipeline) IngestText(ctx context.Context, filename, text string) (*model.Contract, error) {
	id := uuid.New().String()
	start := p.now()

	contract := &model.Contract{
		ID:         id,
		Filename:   filename,
		Title:      ingest.Title(text, filename),
		UploadedAt: start.UTC(),
		Parties:    extract.Parties(text),
		KeyTerms:   extract.KeyTerms(text),
		Clauses:    p.analyzer.SegmentAndClassify(ctx, id, text),
	}

	if err := p.store.SaveContract(ctx, contract); err != nil {
		return nil, fmt.Errorf("save contract: %w", err)
	}

	// Questions rebuild a missing index, so a failure here is not fatal
	if p.index != nil {
		if err := p.index.Build(ctx, id, contract.Clauses); err != nil {
			p.logger.Warn("indexing failed, will rebuild on first question",
				zap.String("contract_id", id),
				zap.Error(err))
		}
	}

	p.logger.Info("contract analysed",
		zap.String("contract_id", id),
		zap.String("filename", filename),
		zap.Int("clauses", len(contract.Clauses)),
		zap.Duration("took", p.now().Sub(start)))

	return contract, nil
}

// Contract loads a stored contract
func (p *Pipeline) Contract(ctx context.Context, id string) (*model.Contract, error) {
	c, err := p.store.GetContract(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load contract: %w", err)
	}
	return c, nil
}

// Ask answers a question about a stored contract
func (p *Pipeline) Ask(ctx context.Context, contractID, question string) (model.AnswerResult, error) {
	c, err := p.Contract(ctx, contractID)
	if err != nil {
		return model.AnswerResult{}, err
	}
	return p.AnswerQuestion(ctx, c.ID, c.Clauses, question), nil
}

// AnswerQuestion answers from the given clauses; it never fails
func (p *Pipeline) AnswerQuestion(ctx context.Context, contractID string, clauses []model.Clause, question string) model.AnswerResult {
	return p.router.Answer(ctx, contractID, clauses, question)
}

// Summarize builds the summary of a stored contract
func (p *Pipeline) Summarize(ctx context.Context, contractID string) (model.Summary, error) {
	c, err := p.Contract(ctx, contractID)
	if err != nil {
		return model.Summary{}, err
	}
	return p.BuildSummary(ctx, c.Clauses), nil
}

// BuildSummary summarises the given clauses; it never fails
func (p *Pipeline) BuildSummary(ctx context.Context, clauses []model.Clause) model.Summary {
	return p.summary.Build(ctx, clauses)
}

// List returns stored contracts, newest first
func (p *Pipeline) List(ctx context.Context) ([]model.ContractInfo, error) {
	infos, err := p.store.ListContracts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list contracts: %w", err)
	}
	return infos, nil
}

// Delete removes a contract and its index partition
func (p *Pipeline) Delete(ctx context.Context, contractID string) error {
	if err := p.store.DeleteContract(ctx, contractID); err != nil {
		return fmt.Errorf("delete contract: %w", err)
	}
	if p.index != nil {
		if err := p.index.Delete(ctx, contractID); err != nil {
			p.logger.Warn("index cleanup failed",
				zap.String("contract_id", contractID),
				zap.Error(err))
		}
	}
	return nil
}
