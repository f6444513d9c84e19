package score

import "github.com/ppiankov/lexguard/internal/model"

var negotiationPoints = map[model.Category][]string{
	model.CategoryLiability: {
		"Request a cap on total liability (e.g. the contract value)",
		"Exclude indirect, consequential and punitive damages",
		"Make indemnification obligations mutual",
		"Clarify which events trigger indemnification",
		"Keep the right to defend claims with your own counsel",
	},
	model.CategoryTermination: {
		"Negotiate a longer notice period (30-90 days)",
		"Limit termination to defined causes",
		"Add severance or termination payment provisions",
		"Require dispute resolution before termination",
		"Clarify obligations that apply after termination",
	},
	model.CategoryNonCompete: {
		"Reduce the restriction to 6-12 months",
		"Narrow the geographic scope to specific regions",
		"Define the competing business narrowly",
		"Add exceptions for existing commitments",
		"Ask for compensation during the restricted period",
	},
	model.CategoryIntellectualProperty: {
		"Exclude pre-existing intellectual property",
		"Limit assignment to work created under this agreement",
		"Carve out personal projects",
		"Clarify ownership of derivative works",
		"Request a license back for your contributions",
	},
	model.CategoryConfidentiality: {
		"Define confidential information precisely",
		"Exclude information that is public or already known",
		"Limit how long the obligations last",
		"Allow disclosure when required by law",
		"Make the obligations mutual",
	},
	model.CategoryPayment: {
		"Specify exact amounts and a payment schedule",
		"Add interest on late payments",
		"Include expense reimbursement terms",
		"Clarify payment method and currency",
		"Add cost-of-living or performance adjustments",
	},
}

var genericPoints = []string{
	"Request clearer definitions of key terms",
	"Add specific performance criteria",
	"Include a dispute resolution procedure",
}

// Suggestions returns negotiation points for a clause. Higher risk levels
// get more points, never more than five.
func Suggestions(category model.Category, level model.RiskLevel) []string {
	points, ok := negotiationPoints[category]
	if !ok {
		points = genericPoints
	}

	n := 1
	switch level {
	case model.RiskHigh:
		n = 5
	case model.RiskMedium:
		n = 3
	}
	if n > len(points) {
		n = len(points)
	}

	out := make([]string, n)
	copy(out, points[:n])
	return out
}
