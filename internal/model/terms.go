package model

// KeyTerms are the notable terms found across a whole contract
type KeyTerms struct {
	DefinedTerms []DefinedTerm `json:"defined_terms"`
	Amounts      []Amount      `json:"amounts"`
	Entities     []string      `json:"entities"`
	Periods      []Period      `json:"periods"`
	Concepts     []Concept     `json:"concepts"`
}

// DefinedTerm is a term the contract defines, or one it uses often
type DefinedTerm struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
	Frequent   bool   `json:"frequent,omitempty"` // Found by repetition, not by a definition
}

// Amount is a monetary amount with the words that follow it
type Amount struct {
	Value   string `json:"value"`
	Context string `json:"context,omitempty"`
}

// PeriodKind labels a time expression
type PeriodKind string

const (
	PeriodDuration  PeriodKind = "duration"
	PeriodRelative  PeriodKind = "relative"
	PeriodFrequency PeriodKind = "frequency"
)

// Period is a duration, deadline or recurrence mentioned in the contract
type Period struct {
	Text string     `json:"text"`
	Kind PeriodKind `json:"kind"`
}

// Concept is a legal concept and how often it is mentioned
type Concept struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Empty reports whether nothing was found
func (k KeyTerms) Empty() bool {
	return len(k.DefinedTerms) == 0 && len(k.Amounts) == 0 && len(k.Entities) == 0 &&
		len(k.Periods) == 0 && len(k.Concepts) == 0
}
