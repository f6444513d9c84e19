package model

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Category classifies a clause within the fixed contract taxonomy
type Category string

const (
	CategoryTermination          Category = "termination"
	CategoryLiability            Category = "liability"
	CategoryPayment              Category = "payment"
	CategoryConfidentiality      Category = "confidentiality"
	CategoryIntellectualProperty Category = "intellectual_property"
	CategoryNonCompete           Category = "non_compete"
	CategoryMiscellaneous        Category = "miscellaneous"
	CategoryRequiresReview       Category = "requires_review" // No rule matched
)

var categories = []Category{
	CategoryTermination,
	CategoryLiability,
	CategoryPayment,
	CategoryConfidentiality,
	CategoryIntellectualProperty,
	CategoryNonCompete,
	CategoryMiscellaneous,
	CategoryRequiresReview,
}

// Categories returns the taxonomy in declaration order
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// ParseCategory converts a name into a Category, rejecting unknown names
func ParseCategory(name string) (Category, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	normalized = strings.ReplaceAll(normalized, " ", "_")
	normalized = strings.ReplaceAll(normalized, "-", "_")

	switch normalized {
	case "ip":
		return CategoryIntellectualProperty, nil
	case "misc":
		return CategoryMiscellaneous, nil
	}

	for _, c := range categories {
		if string(c) == normalized {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category: %q", name)
}

// Label returns a human-readable category name
func (c Category) Label() string {
	switch c {
	case CategoryIntellectualProperty:
		return "Intellectual Property"
	case CategoryNonCompete:
		return "Non-Compete"
	case CategoryRequiresReview:
		return "Requires Review"
	case "":
		return "Unclassified"
	}
	s := string(c)
	return strings.ToUpper(s[:1]) + s[1:]
}

// RiskLevel is the discrete risk bucket derived from a risk score
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// RiskLevels returns the levels from most to least severe
func RiskLevels() []RiskLevel {
	return []RiskLevel{RiskHigh, RiskMedium, RiskLow}
}

// Badge returns the marker used in Markdown output
func (l RiskLevel) Badge() string {
	switch l {
	case RiskHigh:
		return "🔴"
	case RiskMedium:
		return "🟡"
	case RiskLow:
		return "🟢"
	default:
		return "⚪"
	}
}

// Thresholds are the cutoffs between risk levels:
// low < Medium <= medium < High <= high
type Thresholds struct {
	Medium float64 `json:"medium" yaml:"medium" mapstructure:"medium"`
	High   float64 `json:"high" yaml:"high" mapstructure:"high"`
}

// DefaultThresholds returns the standard 0.34 / 0.67 cutoffs
func DefaultThresholds() Thresholds {
	return Thresholds{Medium: 0.34, High: 0.67}
}

// Level maps a score onto a risk level
func (t Thresholds) Level(score float64) RiskLevel {
	switch {
	case score >= t.High:
		return RiskHigh
	case score >= t.Medium:
		return RiskMedium
	default:
		return RiskLow
	}
}

// Validate checks that the cutoffs are ordered and inside (0, 1]
func (t Thresholds) Validate() error {
	if t.Medium <= 0 || t.Medium >= t.High || t.High > 1 {
		return fmt.Errorf("invalid risk thresholds: need 0 < medium (%.3f) < high (%.3f) <= 1", t.Medium, t.High)
	}
	return nil
}

// Clause is one segment of a contract with its classification and risk
type Clause struct {
	ID         string    `json:"id"`
	ContractID string    `json:"contract_id,omitempty"`
	Index      int       `json:"order_index"`
	Text       string    `json:"text"`
	Category   Category  `json:"category"`
	RiskScore  float64   `json:"risk_score"`
	RiskLevel  RiskLevel `json:"risk_level"`
	Reasons    []string  `json:"reasons,omitempty"`
}

// Contract is an uploaded document and its ordered clauses
type Contract struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	Title      string    `json:"title,omitempty"`
	UploadedAt time.Time `json:"uploaded_at"`
	Parties    []string  `json:"parties,omitempty"`
	KeyTerms   KeyTerms  `json:"key_terms"`
	Clauses    []Clause  `json:"clauses"`
}

// ValidateOrder checks that clause order indexes are unique and contiguous from zero
func (c *Contract) ValidateOrder() error {
	seen := make(map[int]bool, len(c.Clauses))
	for _, clause := range c.Clauses {
		if clause.Index < 0 || clause.Index >= len(c.Clauses) {
			return fmt.Errorf("clause %s: order index %d out of range [0,%d)", clause.ID, clause.Index, len(c.Clauses))
		}
		if seen[clause.Index] {
			return fmt.Errorf("clause %s: duplicate order index %d", clause.ID, clause.Index)
		}
		seen[clause.Index] = true
	}
	return nil
}

// SortClauses orders clauses by order index
func SortClauses(clauses []Clause) {
	sort.SliceStable(clauses, func(i, j int) bool {
		return clauses[i].Index < clauses[j].Index
	})
}

// RiskCounts tallies clauses per risk level
func RiskCounts(clauses []Clause) map[RiskLevel]int {
	counts := make(map[RiskLevel]int)
	for _, c := range clauses {
		if c.RiskLevel != "" {
			counts[c.RiskLevel]++
		}
	}
	return counts
}

// ContractInfo is the list view of a stored contract
type ContractInfo struct {
	ID          string            `json:"id"`
	Filename    string            `json:"filename"`
	Title       string            `json:"title,omitempty"`
	UploadedAt  time.Time         `json:"uploaded_at"`
	ClauseCount int               `json:"clause_count"`
	RiskCounts  map[RiskLevel]int `json:"risk_counts"`
}
