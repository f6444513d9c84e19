// Package retrieval finds the clauses of a contract that are semantically
// closest to a question.
package retrieval

import (
	"context"
	"errors"

	"github.com/ppiankov/lexguard/internal/model"
)

var (
	// ErrNotIndexed is returned when a contract has no index yet
	ErrNotIndexed = errors.New("contract not indexed")
	// ErrEmptyQuery is returned for blank query text
	ErrEmptyQuery = errors.New("empty query")
)

// Hit is one retrieved clause
type Hit struct {
	ClauseID   string  `json:"clause_id"`
	Index      int     `json:"order_index"`
	Similarity float32 `json:"similarity"`
}

// Index stores clause embeddings partitioned by contract
type Index interface {
	// Build replaces the contract's index with clauses
	Build(ctx context.Context, contractID string, clauses []model.Clause) error
	// Query returns up to k hits, most similar first
	Query(ctx context.Context, contractID, text string, k int) ([]Hit, error)
	// Delete drops the contract's index. Deleting a missing index is not an error.
	Delete(ctx context.Context, contractID string) error
}

// CollectionName is the per-contract collection name
func CollectionName(contractID string) string {
	return "contract-" + contractID
}
