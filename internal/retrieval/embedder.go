package retrieval

import (
	"context"
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"time"
	"unicode"

	"github.com/philippgille/chromem-go"
	"github.com/sashabaranov/go-openai"

	"github.com/ppiankov/lexguard/internal/cache"
	"github.com/ppiankov/lexguard/internal/model"
)

// DefaultDimensions is the hash embedder's vector size
const DefaultDimensions = 256

var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "for": true, "from": true, "in": true, "is": true,
	"it": true, "of": true, "on": true, "or": true, "that": true, "the": true,
	"this": true, "to": true, "what": true, "which": true, "with": true,
	"shall": true, "will": true, "any": true, "all": true, "my": true,
}

// HashEmbedder returns a deterministic offline embedding function. Word
// unigrams and bigrams are hashed into dims signed buckets and the vector
// is L2-normalized.
func HashEmbedder(dims int) chromem.EmbeddingFunc {
	if dims <= 0 {
		dims = DefaultDimensions
	}
	return func(_ context.Context, text string) ([]float32, error) {
		return hashVector(text, dims), nil
	}
}

func hashVector(text string, dims int) []float32 {
	vec := make([]float32, dims)
	tokens := tokenize(text)

	add := func(feature string, weight float32) {
		h := fnv.New64a()
		_, _ = h.Write([]byte(feature))
		sum := h.Sum64()
		bucket := int(sum % uint64(dims))
		if sum>>63 == 1 {
			weight = -weight
		}
		vec[bucket] += weight
	}

	for i, tok := range tokens {
		add(tok, 1)
		if i > 0 {
			add(tokens[i-1]+" "+tok, 0.5)
		}
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		// chromem cannot normalize a zero vector
		vec[0] = 1
		return vec
	}
	scale := float32(1 / math.Sqrt(norm))
	for i := range vec {
		vec[i] *= scale
	}
	return vec
}

// tokenize lowercases text, splits on non-alphanumerics, drops stopwords
// and strips a plural "s"
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := fields[:0]
	for _, f := range fields {
		if stopwords[f] {
			continue
		}
		if len(f) > 3 && strings.HasSuffix(f, "s") && !strings.HasSuffix(f, "ss") {
			f = f[:len(f)-1]
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// OpenAIEmbedder embeds text with the OpenAI embeddings API
func OpenAIEmbedder(cfg model.EmbeddingConfig) (chromem.EmbeddingFunc, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required for openai embeddings")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	client := openai.NewClientWithConfig(clientConfig)

	embeddingModel := openai.EmbeddingModel(cfg.Model)
	if cfg.Model == "" {
		embeddingModel = openai.SmallEmbedding3
	}

	return func(ctx context.Context, text string) ([]float32, error) {
		resp, err := client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Model:      embeddingModel,
			Input:      []string{text},
			Dimensions: cfg.Dimensions,
		})
		if err != nil {
			return nil, fmt.Errorf("create embeddings: %w", err)
		}
		if len(resp.Data) == 0 {
			return nil, fmt.Errorf("create embeddings: empty response")
		}
		return resp.Data[0].Embedding, nil
	}, nil
}

// NewEmbedder selects the embedding function named by cfg.Provider
func NewEmbedder(cfg model.EmbeddingConfig) (chromem.EmbeddingFunc, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "hash":
		return HashEmbedder(cfg.Dimensions), nil
	case "openai":
		return OpenAIEmbedder(cfg)
	case "ollama":
		embeddingModel := cfg.Model
		if embeddingModel == "" {
			embeddingModel = "nomic-embed-text"
		}
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434/api"
		}
		return chromem.NewEmbeddingFuncOllama(embeddingModel, baseURL), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s (supported: hash, openai, ollama)", cfg.Provider)
	}
}

// CachedEmbedder serves repeated texts from c. name separates providers
// and models sharing one cache.
func CachedEmbedder(embed chromem.EmbeddingFunc, c cache.Cache, name string, ttl time.Duration) chromem.EmbeddingFunc {
	if c == nil {
		return embed
	}
	return func(ctx context.Context, text string) ([]float32, error) {
		key := cache.Key("embedding", name, text)
		if raw, found := c.Get(key); found {
			if vec, ok := decodeVector(raw); ok {
				return vec, nil
			}
		}

		vec, err := embed(ctx, text)
		if err != nil {
			return nil, err
		}
		_ = c.Set(key, encodeVector(vec), ttl)
		return vec, nil
	}
}

func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	return buf
}

func decodeVector(raw []byte) ([]float32, bool) {
	if len(raw) == 0 || len(raw)%4 != 0 {
		return nil, false
	}
	vec := make([]float32, len(raw)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[4*i:]))
	}
	return vec, true
}

// EmbedderName identifies an embedding configuration in cache keys
func EmbedderName(cfg model.EmbeddingConfig) string {
	provider := strings.ToLower(cfg.Provider)
	if provider == "" {
		provider = "hash"
	}
	return fmt.Sprintf("%s:%s:%d", provider, cfg.Model, cfg.Dimensions)
}
