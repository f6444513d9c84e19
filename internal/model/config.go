package model

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Config holds all lexguard settings
type Config struct {
	LLM         LLMConfig         `yaml:"llm" mapstructure:"llm"`
	Embedding   EmbeddingConfig   `yaml:"embedding" mapstructure:"embedding"`
	Analysis    AnalysisConfig    `yaml:"analysis" mapstructure:"analysis"`
	Storage     StorageConfig     `yaml:"storage" mapstructure:"storage"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Logging     LoggingConfig     `yaml:"logging" mapstructure:"logging"`
}

// LLMConfig configures the optional language model
type LLMConfig struct {
	Provider          string  `yaml:"provider" mapstructure:"provider"` // none, openai, anthropic, ollama
	Model             string  `yaml:"model" mapstructure:"model"`
	APIKey            string  `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL           string  `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout           int     `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens         int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature       float32 `yaml:"temperature" mapstructure:"temperature"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int     `yaml:"burst" mapstructure:"burst"`
	HTTPProxy         string  `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy        string  `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy           string  `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// Enabled reports whether any model calls should be made
func (c LLMConfig) Enabled() bool {
	p := strings.ToLower(strings.TrimSpace(c.Provider))
	return p != "" && p != "none"
}

// EmbeddingConfig selects the embedding function behind the retrieval index
type EmbeddingConfig struct {
	Provider   string `yaml:"provider" mapstructure:"provider"` // hash, openai, ollama
	Model      string `yaml:"model,omitempty" mapstructure:"model"`
	APIKey     string `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL    string `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Dimensions int    `yaml:"dimensions" mapstructure:"dimensions"` // hash embedder only
}

// RuleConfig is one classifier pattern override
type RuleConfig struct {
	Pattern string  `yaml:"pattern" mapstructure:"pattern"`
	Weight  float64 `yaml:"weight" mapstructure:"weight"`
}

// AnalysisConfig tunes segmentation, classification, scoring and answers
type AnalysisConfig struct {
	TopKAnswers         int                     `yaml:"top_k_answers" mapstructure:"top_k_answers"`
	RiskThresholds      Thresholds              `yaml:"risk_thresholds" mapstructure:"risk_thresholds"`
	SummaryTopWarnings  int                     `yaml:"summary_top_warnings" mapstructure:"summary_top_warnings"`
	MinSegments         int                     `yaml:"min_segments" mapstructure:"min_segments"`
	MinAvgSegmentLength int                     `yaml:"min_avg_segment_length" mapstructure:"min_avg_segment_length"`
	MinClauseLength     int                     `yaml:"min_clause_length" mapstructure:"min_clause_length"`
	SentenceFallback    bool                    `yaml:"sentence_fallback" mapstructure:"sentence_fallback"`
	AmbiguityMargin     float64                 `yaml:"ambiguity_margin" mapstructure:"ambiguity_margin"`
	MaxLLMDelta         float64                 `yaml:"max_llm_delta" mapstructure:"max_llm_delta"`
	SnippetLength       int                     `yaml:"snippet_length" mapstructure:"snippet_length"`
	Rules               map[string][]RuleConfig `yaml:"rules,omitempty" mapstructure:"rules"`
}

// StorageConfig locates the contract database and vector index
type StorageConfig struct {
	DataDir      string `yaml:"data_dir" mapstructure:"data_dir"`
	DatabasePath string `yaml:"database_path,omitempty" mapstructure:"database_path"`
	IndexDir     string `yaml:"index_dir,omitempty" mapstructure:"index_dir"`
}

// Database returns the SQLite path, defaulting inside DataDir
func (s StorageConfig) Database() string {
	if s.DatabasePath != "" {
		return s.DatabasePath
	}
	return filepath.Join(s.DataDir, "lexguard.db")
}

// Index returns the vector index directory, defaulting inside DataDir
func (s StorageConfig) Index() string {
	if s.IndexDir != "" {
		return s.IndexDir
	}
	return filepath.Join(s.DataDir, "index")
}

// CacheConfig controls caching of model completions and embeddings
type CacheConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Dir     string `yaml:"dir,omitempty" mapstructure:"dir"`
	TTL     int    `yaml:"ttl" mapstructure:"ttl"` // hours
}

// ConcurrencyConfig bounds parallel work
type ConcurrencyConfig struct {
	Workers       int `yaml:"workers" mapstructure:"workers"`               // contracts analysed at once
	ClauseWorkers int `yaml:"clause_workers" mapstructure:"clause_workers"` // clauses scored at once per contract
}

// LoggingConfig configures the zap logger
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // console, json
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	dataDir := ".lexguard"
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, ".lexguard")
	}

	return &Config{
		LLM: LLMConfig{
			Provider:          "none", // Disabled by default
			Timeout:           30,
			MaxTokens:         1000,
			Temperature:       0.2,
			RequestsPerSecond: 2,
			Burst:             4,
		},
		Embedding: EmbeddingConfig{
			Provider:   "hash",
			Dimensions: 256,
		},
		Analysis: AnalysisConfig{
			TopKAnswers:         5,
			RiskThresholds:      DefaultThresholds(),
			SummaryTopWarnings:  5,
			MinSegments:         3,
			MinAvgSegmentLength: 40,
			MinClauseLength:     50,
			AmbiguityMargin:     0.15,
			MaxLLMDelta:         0.15,
			SnippetLength:       300,
		},
		Storage: StorageConfig{
			DataDir: dataDir,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     24 * 7,
		},
		Concurrency: ConcurrencyConfig{
			Workers:       runtime.NumCPU(),
			ClauseWorkers: 8,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "console",
		},
	}
}

var (
	llmProviders       = []string{"none", "openai", "anthropic", "claude", "ollama"}
	embeddingProviders = []string{"hash", "openai", "ollama"}
)

// Validate rejects configurations the analysis cannot start with
func (c *Config) Validate() error {
	if !oneOf(c.LLM.Provider, llmProviders) && c.LLM.Provider != "" {
		return fmt.Errorf("unknown llm provider: %q (supported: %s)", c.LLM.Provider, strings.Join(llmProviders, ", "))
	}
	if c.LLM.Timeout <= 0 {
		return fmt.Errorf("llm timeout must be positive, got %d", c.LLM.Timeout)
	}
	if !oneOf(c.Embedding.Provider, embeddingProviders) {
		return fmt.Errorf("unknown embedding provider: %q (supported: %s)", c.Embedding.Provider, strings.Join(embeddingProviders, ", "))
	}
	if err := c.Analysis.RiskThresholds.Validate(); err != nil {
		return err
	}
	if c.Analysis.TopKAnswers <= 0 {
		return fmt.Errorf("top_k_answers must be positive, got %d", c.Analysis.TopKAnswers)
	}
	if c.Analysis.SummaryTopWarnings <= 0 {
		return fmt.Errorf("summary_top_warnings must be positive, got %d", c.Analysis.SummaryTopWarnings)
	}
	if c.Analysis.MinSegments <= 0 {
		return fmt.Errorf("min_segments must be positive, got %d", c.Analysis.MinSegments)
	}
	if c.Analysis.AmbiguityMargin < 0 || c.Analysis.AmbiguityMargin > 1 {
		return fmt.Errorf("ambiguity_margin must be within [0,1], got %.3f", c.Analysis.AmbiguityMargin)
	}
	if c.Analysis.MaxLLMDelta < 0 || c.Analysis.MaxLLMDelta > 1 {
		return fmt.Errorf("max_llm_delta must be within [0,1], got %.3f", c.Analysis.MaxLLMDelta)
	}
	for name := range c.Analysis.Rules {
		cat, err := ParseCategory(name)
		if err != nil {
			return fmt.Errorf("rule table: %w", err)
		}
		if cat == CategoryRequiresReview {
			return fmt.Errorf("rule table: %s cannot carry rules", cat)
		}
	}
	return nil
}

func oneOf(value string, allowed []string) bool {
	v := strings.ToLower(strings.TrimSpace(value))
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
