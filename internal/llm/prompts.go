package llm

import (
	"fmt"
	"strings"

	"github.com/ppiankov/lexguard/internal/model"
)

// SystemPrompt frames every request sent to a provider
const SystemPrompt = `You are a contract analysis assistant. You describe what contract clauses say and flag terms that commonly deserve a closer look. You do not give legal advice and you only rely on the clause text you are given.`

// joinPrompt appends the supporting material to the instruction
func joinPrompt(prompt, input string) string {
	if strings.TrimSpace(input) == "" {
		return prompt
	}
	return prompt + "\n\n" + input
}

// ClassificationPrompt asks the model to pick one of the candidate categories
func ClassificationPrompt(candidates []model.Category) string {
	names := make([]string, len(candidates))
	for i, c := range candidates {
		names[i] = string(c)
	}
	return fmt.Sprintf(`Classify the contract clause below into exactly one of these categories:
%s

Category meanings:
- termination: ending, expiry or renewal of the agreement
- liability: indemnification, damages, limitation of liability, warranties
- payment: fees, compensation, invoicing, payment schedules
- confidentiality: non-disclosure and protection of confidential information
- intellectual_property: ownership, assignment or licensing of work product and IP
- non_compete: restrictions on competing or soliciting
- miscellaneous: boilerplate such as governing law, notices, severability

Reply with the category name only.

Clause:`, strings.Join(names, ", "))
}

// RiskPrompt asks the model for a risk score of a classified clause
func RiskPrompt(category model.Category, ruleScore float64) string {
	return fmt.Sprintf(`Rate how risky the following %s clause is for the party signing it, from 0.0 (standard, balanced) to 1.0 (very one-sided or dangerous).
A rule-based analysis scored it %.2f.

Respond with JSON only, in this form:
{"score": 0.0, "reasons": ["short reason"]}

Clause:`, category.Label(), ruleScore)
}

// QAPrompt asks the model to answer a question from the selected clauses
func QAPrompt(question string) string {
	return fmt.Sprintf(`Answer the user's question using only the contract clauses provided.
Quote or cite clause numbers where helpful. If the clauses do not answer the question, say so plainly.
Keep the answer short and use Markdown.

User question: %s

Relevant clauses:`, strings.TrimSpace(question))
}

// SummaryPrompt asks for a short narrative over the structured summary
func SummaryPrompt(s model.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a 3-4 sentence plain-language overview of this contract for a non-lawyer.\n")
	fmt.Fprintf(&b, "Mention the most important risks first. Do not invent terms that are not in the clauses.\n\n")
	fmt.Fprintf(&b, "Clauses analysed: %d\n", s.TotalClauses)
	fmt.Fprintf(&b, "Risk levels: %d high, %d medium, %d low\n",
		s.RiskCounts[model.RiskHigh], s.RiskCounts[model.RiskMedium], s.RiskCounts[model.RiskLow])
	b.WriteString("\nHighest-risk clauses:")
	return b.String()
}

// ClauseContext renders clauses as numbered blocks for a prompt
func ClauseContext(clauses []model.Clause) string {
	var b strings.Builder
	for i, c := range clauses {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "Clause %d [%s, %s risk]:\n%s", c.Index+1, c.Category.Label(), c.RiskLevel, c.Text)
	}
	return b.String()
}
