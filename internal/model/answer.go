package model

import "strings"

// Intent classifies what a user question is about
type Intent string

const (
	IntentObligations          Intent = "obligations"
	IntentPayment              Intent = "payment"
	IntentTermination          Intent = "termination"
	IntentLiability            Intent = "liability"
	IntentDates                Intent = "dates"
	IntentIntellectualProperty Intent = "intellectual_property"
	IntentGeneral              Intent = "general"
)

// AnswerResult is the router's response to a question
type AnswerResult struct {
	Intent          Intent   `json:"intent"`
	SelectedClauses []string `json:"selected_clauses"` // Clause IDs in ranking order
	AnswerText      string   `json:"answer_text"`
	Source          string   `json:"source"`
	Note            string   `json:"note,omitempty"`
}

// ClauseRef points at a clause with enough context to render it
type ClauseRef struct {
	ID        string    `json:"id"`
	Index     int       `json:"order_index"`
	Category  Category  `json:"category"`
	RiskScore float64   `json:"risk_score"`
	RiskLevel RiskLevel `json:"risk_level"`
	Snippet   string    `json:"snippet"`
	Reasons   []string  `json:"reasons,omitempty"`
}

// Highlight is the highest-risk clause of a key category
type Highlight struct {
	Category    Category  `json:"category"`
	Clause      ClauseRef `json:"clause"`
	Suggestions []string  `json:"suggestions,omitempty"`
}

// Summary is the contract-level report
type Summary struct {
	TotalClauses    int               `json:"total_clauses"`
	CategoryCounts  map[Category]int  `json:"category_counts"`
	RiskCounts      map[RiskLevel]int `json:"risk_counts"`
	Warnings        []ClauseRef       `json:"warnings"`
	Highlights      []Highlight       `json:"highlights"`
	Recommendations []string          `json:"recommendations"`
	Narrative       string            `json:"narrative,omitempty"`
	Source          string            `json:"source"`
	Note            string            `json:"note,omitempty"`
	Message         string            `json:"message,omitempty"`
}

// Snippet shortens text to at most max runes, cutting at a word boundary
// when one is close, and collapses whitespace
func Snippet(text string, max int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if max <= 0 || len(runes) <= max {
		return text
	}
	cut := string(runes[:max])
	if i := strings.LastIndex(cut, " "); i > len(cut)*3/4 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,;:") + "…"
}

// Ref builds a ClauseRef with a snippet of at most snippetLength runes
func Ref(c Clause, snippetLength int) ClauseRef {
	return ClauseRef{
		ID:        c.ID,
		Index:     c.Index,
		Category:  c.Category,
		RiskScore: c.RiskScore,
		RiskLevel: c.RiskLevel,
		Snippet:   Snippet(c.Text, snippetLength),
		Reasons:   c.Reasons,
	}
}
