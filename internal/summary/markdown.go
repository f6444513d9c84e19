package summary

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ppiankov/lexguard/internal/model"
)

// Markdown renders a summary for the terminal or a report file
func Markdown(s model.Summary) string {
	var b strings.Builder

	b.WriteString("# Contract Summary\n\n")
	if s.Message != "" {
		b.WriteString(s.Message)
		b.WriteString("\n")
		return b.String()
	}

	if s.Narrative != "" {
		b.WriteString(s.Narrative)
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "_Source: %s_\n\n", s.Note)

	fmt.Fprintf(&b, "## Overview\n\nThis contract contains %d %s:\n\n", s.TotalClauses, plural(s.TotalClauses, "clause"))
	for _, cat := range sortedCategories(s.CategoryCounts) {
		n := s.CategoryCounts[cat]
		fmt.Fprintf(&b, "- **%s**: %d %s\n", cat.Label(), n, plural(n, "clause"))
	}

	b.WriteString("\n## Risk Assessment\n\n")
	for _, level := range []model.RiskLevel{model.RiskHigh, model.RiskMedium, model.RiskLow} {
		n := s.RiskCounts[level]
		fmt.Fprintf(&b, "- %s %s risk: %d %s\n", level.Badge(), levelNames[level], n, plural(n, "clause"))
	}

	if len(s.Warnings) > 0 {
		b.WriteString("\n## Top Risks\n\n")
		for i, w := range s.Warnings {
			fmt.Fprintf(&b, "%d. %s **%s** (clause %d, %.2f): %s\n", i+1, w.RiskLevel.Badge(), w.Category.Label(), w.Index+1, w.RiskScore, w.Snippet)
			for _, r := range w.Reasons {
				fmt.Fprintf(&b, "   - %s\n", r)
			}
		}
	}

	if len(s.Highlights) > 0 {
		b.WriteString("\n## Key Highlights\n")
		for _, h := range s.Highlights {
			fmt.Fprintf(&b, "\n### %s\n\n", h.Category.Label())
			fmt.Fprintf(&b, "%s %s risk (%.2f), clause %d\n\n", h.Clause.RiskLevel.Badge(), h.Clause.RiskLevel, h.Clause.RiskScore, h.Clause.Index+1)
			fmt.Fprintf(&b, "> %s\n", h.Clause.Snippet)
			if len(h.Suggestions) > 0 {
				b.WriteString("\nNegotiation points:\n")
				for _, sug := range h.Suggestions {
					fmt.Fprintf(&b, "- %s\n", sug)
				}
			}
		}
	}

	if len(s.Recommendations) > 0 {
		b.WriteString("\n## Recommendations\n\n")
		for _, r := range s.Recommendations {
			fmt.Fprintf(&b, "- %s\n", r)
		}
	}

	return b.String()
}

// sortedCategories orders by count descending, then taxonomy order
func sortedCategories(counts map[model.Category]int) []model.Category {
	order := make(map[model.Category]int)
	for i, c := range model.Categories() {
		order[c] = i
	}
	cats := make([]model.Category, 0, len(counts))
	for c := range counts {
		cats = append(cats, c)
	}
	sort.Slice(cats, func(i, j int) bool {
		if counts[cats[i]] != counts[cats[j]] {
			return counts[cats[i]] > counts[cats[j]]
		}
		return order[cats[i]] < order[cats[j]]
	})
	return cats
}

var levelNames = map[model.RiskLevel]string{
	model.RiskHigh:   "High",
	model.RiskMedium: "Medium",
	model.RiskLow:    "Low",
}
