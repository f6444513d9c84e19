package model

// SignalKind describes how a risk rule adjusts the score
type SignalKind string

const (
	SignalAdditive       SignalKind = "additive"
	SignalMultiplicative SignalKind = "multiplicative"
	SignalModel          SignalKind = "model" // Bounded language-model adjustment
)

// Signal is one risk rule that fired, with its transparent scoring data
type Signal struct {
	Rule        string                 `json:"rule"`
	Kind        SignalKind             `json:"kind"`
	Value       float64                `json:"value"`
	Description string                 `json:"description"`
	Data        map[string]interface{} `json:"data,omitempty"`
}

// RiskAssessment is the scorer output for a single clause
type RiskAssessment struct {
	Base    float64   `json:"base"`
	Score   float64   `json:"score"`
	Level   RiskLevel `json:"level"`
	Signals []Signal  `json:"signals,omitempty"`
	Reasons []string  `json:"reasons"`
	Source  string    `json:"source"` // "rule_based" or "llm"
}

// Answer and summary sources
const (
	SourceLLM       = "llm"
	SourceRuleBased = "rule_based"
)

// User-facing annotations of the source
const (
	NoteAIEnhanced = "AI-enhanced"
	NoteStandard   = "using standard analysis"
)
