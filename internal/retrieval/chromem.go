package retrieval

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/philippgille/chromem-go"
	"go.uber.org/zap"

	"github.com/ppiankov/lexguard/internal/model"
)

// ChromemIndex keeps one chromem collection per contract
type ChromemIndex struct {
	db     *chromem.DB
	embed  chromem.EmbeddingFunc
	logger *zap.Logger
}

// NewChromemIndex opens a persistent index under dir, or an in-memory one
// when dir is empty.
func NewChromemIndex(dir string, embed chromem.EmbeddingFunc, logger *zap.Logger) (*ChromemIndex, error) {
	if embed == nil {
		return nil, fmt.Errorf("embedding function is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	var db *chromem.DB
	if dir == "" {
		db = chromem.NewDB()
	} else {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create index dir %s: %w", dir, err)
		}
		var err error
		db, err = chromem.NewPersistentDB(dir, false)
		if err != nil {
			return nil, fmt.Errorf("open index: %w", err)
		}
	}

	return &ChromemIndex{
		db:     db,
		embed:  embed,
		logger: logger.Named("retrieval"),
	}, nil
}

// Build deletes and recreates the contract's collection, so calling it
// twice with the same clauses leaves the same index.
func (ix *ChromemIndex) Build(ctx context.Context, contractID string, clauses []model.Clause) error {
	name := CollectionName(contractID)
	if err := ix.db.DeleteCollection(name); err != nil {
		return fmt.Errorf("reset collection %s: %w", name, err)
	}

	collection, err := ix.db.GetOrCreateCollection(name, map[string]string{"contract_id": contractID}, ix.embed)
	if err != nil {
		return fmt.Errorf("create collection %s: %w", name, err)
	}

	docs := make([]chromem.Document, 0, len(clauses))
	for _, c := range clauses {
		if strings.TrimSpace(c.Text) == "" {
			continue
		}
		docs = append(docs, chromem.Document{
			ID:      c.ID,
			Content: c.Text,
			Metadata: map[string]string{
				"order_index": strconv.Itoa(c.Index),
				"category":    string(c.Category),
				"risk_level":  string(c.RiskLevel),
			},
		})
	}
	if len(docs) == 0 {
		return nil
	}

	if err := collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("index clauses: %w", err)
	}

	ix.logger.Debug("indexed contract",
		zap.String("contract_id", contractID),
		zap.Int("clauses", len(docs)))
	return nil
}

// Query returns up to k clauses closest to text. k is capped at the
// number of indexed clauses.
func (ix *ChromemIndex) Query(ctx context.Context, contractID, text string, k int) ([]Hit, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyQuery
	}

	collection := ix.db.GetCollection(CollectionName(contractID), ix.embed)
	if collection == nil {
		return nil, ErrNotIndexed
	}

	// chromem requires nResults <= doc count
	count := collection.Count()
	if count == 0 || k <= 0 {
		return []Hit{}, nil
	}
	if k > count {
		k = count
	}

	results, err := collection.Query(ctx, text, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query contract %s: %w", contractID, err)
	}

	hits := make([]Hit, len(results))
	for i, r := range results {
		idx, _ := strconv.Atoi(r.Metadata["order_index"])
		hits[i] = Hit{
			ClauseID:   r.ID,
			Index:      idx,
			Similarity: r.Similarity,
		}
	}
	return hits, nil
}

// Delete drops the contract's collection
func (ix *ChromemIndex) Delete(ctx context.Context, contractID string) error {
	if err := ix.db.DeleteCollection(CollectionName(contractID)); err != nil {
		return fmt.Errorf("delete index: %w", err)
	}
	return nil
}
