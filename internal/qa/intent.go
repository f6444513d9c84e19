package qa

import (
	"math"
	"regexp"
	"strings"

	"github.com/ppiankov/lexguard/internal/model"
)

type keyword struct {
	pattern *regexp.Regexp
	weight  float64
}

func kw(pattern string, weight float64) keyword {
	return keyword{pattern: regexp.MustCompile(`(?i)` + pattern), weight: weight}
}

// intentPriority breaks equal intent scores, first wins
var intentPriority = []model.Intent{
	model.IntentPayment,
	model.IntentTermination,
	model.IntentLiability,
	model.IntentIntellectualProperty,
	model.IntentDates,
	model.IntentObligations,
}

var intentKeywords = map[model.Intent][]keyword{
	model.IntentPayment: {
		kw(`\bpa(y|id|ys|ying|yment|yments|yable)\b`, 2),
		kw(`\bfees?\b`, 1.5),
		kw(`\binvoic`, 1.5),
		kw(`\b(compensation|salary|wages?|bonus)\b`, 1.5),
		kw(`\b(price|pricing|cost|costs|money|amount)\b`, 1),
		kw(`\brefund`, 1),
		kw(`\$\s?\d`, 1),
	},
	model.IntentTermination: {
		kw(`\bterminat`, 2),
		kw(`\bcancel`, 1.5),
		kw(`\bnotice period\b`, 1.5),
		kw(`\bend (the|this|my) (contract|agreement)\b`, 1.5),
		kw(`\b(quit|resign|exit|get out)\b`, 1),
		kw(`\b(renew|renewal)\b`, 1),
	},
	model.IntentLiability: {
		kw(`\bliab`, 2),
		kw(`\bindemni`, 2),
		kw(`\bdamages?\b`, 1.5),
		kw(`\bhold harmless\b`, 1.5),
		kw(`\b(sue|sued|lawsuit|claims?)\b`, 1),
		kw(`\bwarrant`, 1),
	},
	model.IntentIntellectualProperty: {
		kw(`\bintellectual property\b`, 2),
		kw(`\bip\b`, 2),
		kw(`\b(copyright|patent|trademark|trade secret)s?\b`, 1.5),
		kw(`\binvention`, 1.5),
		kw(`\b(own|owns|owner|ownership)\b`, 1),
		kw(`\blicen[cs]`, 1),
		kw(`\bconfidential`, 1),
	},
	model.IntentDates: {
		kw(`\bdates?\b`, 2),
		kw(`\bdeadlines?\b`, 2),
		kw(`\bwhen\b`, 1.5),
		kw(`\bhow long\b`, 1.5),
		kw(`\b(duration|expire|expires|expiry|expiration)\b`, 1.5),
		kw(`\beffective\b`, 1),
		kw(`\bstart(s|ing)?\b`, 1),
	},
	model.IntentObligations: {
		kw(`\bobligat`, 2),
		kw(`\b(must|required|requirements?)\b`, 1.5),
		kw(`\b(duty|duties|responsibilit)`, 1.5),
		kw(`\bhave to\b`, 1),
		kw(`\bshould i\b`, 1),
		kw(`\bexpected to\b`, 1),
	},
}

// intentCategories is the fixed intent to clause category mapping
var intentCategories = map[model.Intent][]model.Category{
	model.IntentPayment:              {model.CategoryPayment},
	model.IntentTermination:          {model.CategoryTermination},
	model.IntentLiability:            {model.CategoryLiability},
	model.IntentIntellectualProperty: {model.CategoryIntellectualProperty, model.CategoryConfidentiality},
	model.IntentDates:                {model.CategoryTermination, model.CategoryPayment, model.CategoryNonCompete},
	model.IntentObligations: {
		model.CategoryConfidentiality, model.CategoryNonCompete, model.CategoryPayment,
		model.CategoryLiability, model.CategoryIntellectualProperty, model.CategoryTermination,
	},
}

// Categories returns the clause categories an intent selects; general
// selects none
func Categories(intent model.Intent) []model.Category {
	cats := intentCategories[intent]
	out := make([]model.Category, len(cats))
	copy(out, cats)
	return out
}

// ClassifyIntent scores the question against each intent's keywords, the
// same way clauses are scored against categories. No match is general.
func ClassifyIntent(question string) model.Intent {
	words := len(strings.Fields(question))
	if words == 0 {
		return model.IntentGeneral
	}
	norm := math.Sqrt(float64(words))

	best := model.IntentGeneral
	bestScore := 0.0
	for _, intent := range intentPriority {
		sum := 0.0
		for _, k := range intentKeywords[intent] {
			if k.pattern.MatchString(question) {
				sum += k.weight
			}
		}
		// Strictly greater keeps the earlier intent on ties
		if score := sum / norm; score > bestScore {
			best, bestScore = intent, score
		}
	}
	return best
}
