package classify

import "github.com/ppiankov/lexguard/internal/model"

// Rule is a weighted, case-insensitive pattern that votes for a category
type Rule struct {
	Pattern string
	Weight  float64
}

// RuleSet maps each category to the patterns that indicate it
type RuleSet map[model.Category][]Rule

// Priority breaks score ties, highest first
var Priority = []model.Category{
	model.CategoryLiability,
	model.CategoryNonCompete,
	model.CategoryTermination,
	model.CategoryIntellectualProperty,
	model.CategoryConfidentiality,
	model.CategoryPayment,
	model.CategoryMiscellaneous,
}

// DefaultRules returns the built-in keyword tables
func DefaultRules() RuleSet {
	return RuleSet{
		model.CategoryTermination: {
			{`\bterminat(e|es|ed|ion|ing)\b`, 3},
			{`\bexpir(e|es|ed|y|ation)\b`, 2},
			{`\bend of (this|the) (agreement|term)\b`, 2},
			{`\bnotice (of|to) terminat`, 3},
			{`\bcancell?(ation|ed|ing)?\b`, 2},
			{`\brenew(al|ed|s)?\b`, 1},
			{`\bterm of (this|the) agreement\b`, 1.5},
		},
		model.CategoryLiability: {
			{`\bliabilit(y|ies)\b`, 3},
			{`\bliable\b`, 3},
			{`\bindemnif(y|ies|ied|ication)\b`, 3},
			{`\bhold (harmless|blameless)\b`, 3},
			{`\bdamages\b`, 1.5},
			{`\blosses\b`, 1},
			{`\blimitation of liability\b`, 2},
			{`\bexculpat(e|ion|ory)\b`, 2},
			{`\bwarrant(y|ies)\b`, 1},
		},
		model.CategoryPayment: {
			{`\bpayments?\b`, 3},
			{`\bpa(y|ys|id|yable)\b`, 2},
			{`\bcompensat(e|ion)\b`, 2},
			{`\bfees?\b`, 2},
			{`\bsalary\b`, 2},
			{`\bwages?\b`, 2},
			{`\bremuneration\b`, 2},
			{`\binvoic(e|es|ed|ing)\b`, 2},
			{`\$\s?\d`, 1.5},
			{`\bamount (of|due)\b`, 1},
			{`\b(usd|eur|gbp|dollars?)\b`, 1},
		},
		model.CategoryConfidentiality: {
			{`\bconfidential(ity)?\b`, 3},
			{`\bnon-?disclosure\b`, 3},
			{`\bproprietary information\b`, 2},
			{`\btrade secrets?\b`, 2},
			{`\bdisclos(e|ed|ure)\b`, 1.5},
			{`\bsecrecy\b`, 2},
		},
		model.CategoryIntellectualProperty: {
			{`\bintellectual property\b`, 3},
			{`\bcopyrights?\b`, 2},
			{`\bpatents?\b`, 2},
			{`\btrademarks?\b`, 2},
			{`\bownership of (the )?work\b`, 2},
			{`\binventions?\b`, 2},
			{`\bwork product\b`, 2},
			{`\bwork made for hire\b`, 2},
			{`\blicen[cs]e\b`, 1},
		},
		model.CategoryNonCompete: {
			{`\bnon-?compete\b`, 4},
			{`\bcompet(e|ing|ition)\b`, 2},
			{`\b(not|never) (to )?(directly or indirectly,? )?(compete|engage in (any )?compet(ing|itive))\b`, 3},
			{`\bcompet(ing|itive) (business|products?|services?|enterprise|activit(y|ies))\b`, 2},
			{`\bcompetitors?\b`, 1.5},
			{`\brestrictive covenants?\b`, 3},
			{`\bnon-?solicit(ation)?\b`, 3},
			{`\bsolicit(ation)?\b`, 1.5},
			{`\bexclusivity\b`, 1},
		},
		model.CategoryMiscellaneous: {
			{`\bgoverning law\b`, 2},
			{`\bgoverned by\b`, 1.5},
			{`\bjurisdiction\b`, 1.5},
			{`\bnotices?\b`, 1},
			{`\bseverab(le|ility)\b`, 2},
			{`\bentire agreement\b`, 2},
			{`\bassign(ment)?\b`, 1},
			{`\bforce majeure\b`, 2},
			{`\bamend(ment|ed)?\b`, 1},
			{`\bcounterparts?\b`, 2},
			{`\bheadings\b`, 1.5},
			{`\bdispute resolution\b`, 1.5},
			{`\barbitration\b`, 1.5},
		},
	}
}

// FromConfig overlays configured rule tables onto the defaults. A configured
// category replaces the default table for that category.
func FromConfig(base RuleSet, overrides map[string][]model.RuleConfig) (RuleSet, error) {
	out := make(RuleSet, len(base))
	for cat, rules := range base {
		out[cat] = append([]Rule(nil), rules...)
	}

	for name, rules := range overrides {
		cat, err := model.ParseCategory(name)
		if err != nil {
			return nil, err
		}
		converted := make([]Rule, 0, len(rules))
		for _, r := range rules {
			converted = append(converted, Rule{Pattern: r.Pattern, Weight: r.Weight})
		}
		out[cat] = converted
	}
	return out, nil
}
