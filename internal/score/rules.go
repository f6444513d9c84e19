package score

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ppiankov/lexguard/internal/model"
)

// baseScores is the starting risk of each category
var baseScores = map[model.Category]float64{
	model.CategoryLiability:            0.6,
	model.CategoryNonCompete:           0.5,
	model.CategoryTermination:          0.4,
	model.CategoryIntellectualProperty: 0.4,
	model.CategoryConfidentiality:      0.3,
	model.CategoryPayment:              0.2,
	model.CategoryMiscellaneous:        0.1,
	model.CategoryRequiresReview:       0.2,
}

// BaseScore returns the starting risk of a category
func BaseScore(category model.Category) float64 {
	if base, ok := baseScores[category]; ok {
		return base
	}
	return baseScores[model.CategoryRequiresReview]
}

// rule is one risk indicator. match reports whether it fires and the
// values it extracted.
type rule struct {
	name        string
	kind        model.SignalKind
	value       float64
	description string
	match       func(text string) (bool, map[string]interface{})
}

// generalRule applies to every category except skip
type generalRule struct {
	rule
	skip model.Category
}

func present(pattern string) func(string) (bool, map[string]interface{}) {
	re := regexp.MustCompile("(?i)" + pattern)
	return func(text string) (bool, map[string]interface{}) {
		m := re.FindString(text)
		if m == "" {
			return false, nil
		}
		return true, map[string]interface{}{"matched": strings.ToLower(m)}
	}
}

func absent(pattern string) func(string) (bool, map[string]interface{}) {
	re := regexp.MustCompile("(?i)" + pattern)
	return func(text string) (bool, map[string]interface{}) {
		if re.MatchString(text) {
			return false, nil
		}
		return true, map[string]interface{}{"missing": pattern}
	}
}

// both fires when every condition fires
func both(conds ...func(string) (bool, map[string]interface{})) func(string) (bool, map[string]interface{}) {
	return func(text string) (bool, map[string]interface{}) {
		data := map[string]interface{}{}
		for _, c := range conds {
			ok, d := c(text)
			if !ok {
				return false, nil
			}
			for k, v := range d {
				data[k] = v
			}
		}
		return true, data
	}
}

var (
	durationPattern   = regexp.MustCompile(`(?i)\(?(\d{1,4})\)?\s*(?:business\s+|calendar\s+)?(hours?|days?|weeks?|months?|years?)\b`)
	paymentDuePattern = regexp.MustCompile(`(?i)\bnet\s*(\d{1,3})\b|\bwithin\s+(?:[a-z]+(?:-[a-z]+)?\s+)?\(?(\d{1,3})\)?\s*(?:business\s+|calendar\s+)?days\b`)
)

type period struct {
	n    float64
	unit string
}

// periods extracts every "N unit" period in the text. Numbers that do not
// parse are skipped.
func periods(text string) []period {
	var out []period
	for _, m := range durationPattern.FindAllStringSubmatch(text, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		out = append(out, period{n: float64(n), unit: strings.TrimSuffix(strings.ToLower(m[2]), "s")})
	}
	return out
}

func (p period) days() float64 {
	switch p.unit {
	case "hour":
		return p.n / 24
	case "week":
		return p.n * 7
	case "month":
		return p.n * 30
	case "year":
		return p.n * 365
	default:
		return p.n
	}
}

func (p period) months() float64 {
	switch p.unit {
	case "hour":
		return p.n / 24 / 30
	case "day":
		return p.n / 30
	case "week":
		return p.n * 7 / 30
	case "year":
		return p.n * 12
	default:
		return p.n
	}
}

// noticeBetween fires when the shortest period lies in [minDays, maxDays)
func noticeBetween(minDays, maxDays float64) func(string) (bool, map[string]interface{}) {
	return func(text string) (bool, map[string]interface{}) {
		found := periods(text)
		if len(found) == 0 {
			return false, nil
		}
		shortest := found[0].days()
		for _, p := range found[1:] {
			if d := p.days(); d < shortest {
				shortest = d
			}
		}
		if shortest >= minDays && shortest < maxDays {
			return true, map[string]interface{}{
				"notice_days": shortest,
				"formula":     "min(extracted periods) in [" + strconv.FormatFloat(minDays, 'f', -1, 64) + ", " + strconv.FormatFloat(maxDays, 'f', -1, 64) + ") days",
			}
		}
		return false, nil
	}
}

func noPeriod(text string) (bool, map[string]interface{}) {
	if len(periods(text)) > 0 {
		return false, nil
	}
	return true, map[string]interface{}{"notice_days": nil}
}

// restrictionLongerThan fires when the longest period is in (months, upTo]
func restrictionLongerThan(months, upTo float64) func(string) (bool, map[string]interface{}) {
	return func(text string) (bool, map[string]interface{}) {
		found := periods(text)
		if len(found) == 0 {
			return false, nil
		}
		longest := found[0].months()
		for _, p := range found[1:] {
			if m := p.months(); m > longest {
				longest = m
			}
		}
		if longest > months && longest <= upTo {
			return true, map[string]interface{}{
				"duration_months": longest,
				"formula":         "max(extracted periods) in months > " + strconv.FormatFloat(months, 'f', -1, 64),
			}
		}
		return false, nil
	}
}

func paymentDueAfter(days int) func(string) (bool, map[string]interface{}) {
	return func(text string) (bool, map[string]interface{}) {
		longest := -1
		for _, m := range paymentDuePattern.FindAllStringSubmatch(text, -1) {
			for _, g := range m[1:] {
				if g == "" {
					continue
				}
				if n, err := strconv.Atoi(g); err == nil && n > longest {
					longest = n
				}
			}
		}
		if longest > days {
			return true, map[string]interface{}{"due_days": longest, "threshold": days}
		}
		return false, nil
	}
}

const unbounded = 1e9

// categoryRules are applied in order, before the general rules
var categoryRules = map[model.Category][]rule{
	model.CategoryLiability: {
		{"unlimited_liability", model.SignalAdditive, 0.20, "Unlimited liability exposure", present(`\bunlimited\b`)},
		{"indemnification", model.SignalAdditive, 0.15, "Includes indemnification obligations", present(`\bindemnif`)},
		{"hold_harmless", model.SignalAdditive, 0.10, "Contains hold harmless provision", present(`\bhold (harmless|blameless)\b`)},
		{"no_liability_cap", model.SignalAdditive, 0.10, "No liability cap or limitation specified", absent(`\blimit(s|ed|ation)?\b|\bcap(ped)?\b|\bshall not exceed\b|\bin the aggregate\b`)},
		{"mutual_liability", model.SignalMultiplicative, 0.90, "Liability allocation is mutual", present(`\bmutual(ly)?\b|\beach party\b`)},
	},
	model.CategoryTermination: {
		{"short_notice", model.SignalAdditive, 0.25, "Very short notice period (under 7 days)", noticeBetween(0, 7)},
		{"brief_notice", model.SignalAdditive, 0.10, "Short notice period (under 30 days)", noticeBetween(7, 30)},
		{"no_notice_period", model.SignalAdditive, 0.10, "No notice period specified", noPeriod},
		{"immediate_termination", model.SignalAdditive, 0.20, "Allows immediate termination", present(`\bimmediate(ly)?\b`)},
		{"without_cause", model.SignalAdditive, 0.15, "Termination without cause permitted", present(`\bwithout (cause|reason)\b|\bfor convenience\b`)},
		{"at_will", model.SignalAdditive, 0.10, "At-will termination", present(`\bat[- ]will\b`)},
		{"no_cure_period", model.SignalAdditive, 0.05, "Breach triggers termination without a cure period", both(present(`\bbreach`), absent(`\bcure\b|\bremed(y|ied)\b`))},
	},
	model.CategoryNonCompete: {
		{"long_restriction", model.SignalAdditive, 0.30, "Non-compete period exceeds 2 years", restrictionLongerThan(24, unbounded)},
		{"extended_restriction", model.SignalAdditive, 0.15, "Non-compete period exceeds 1 year", restrictionLongerThan(12, 24)},
		{"global_scope", model.SignalAdditive, 0.20, "Global or worldwide geographic scope", present(`\b(global(ly)?|worldwide|anywhere in the world)\b`)},
	},
	model.CategoryIntellectualProperty: {
		{"broad_assignment", model.SignalAdditive, 0.15, "Broad IP assignment covering all work", present(`\ball (work|inventions?|creations?|intellectual property)\b`)},
		{"no_prior_ip_carveout", model.SignalAdditive, 0.10, "No exception for pre-existing IP", absent(`\bpre-?existing\b|\bprior (work|inventions?)\b|\bbackground (ip|intellectual property)\b`)},
	},
	model.CategoryConfidentiality: {
		{"no_standard_exceptions", model.SignalAdditive, 0.10, "No standard exceptions (public, already known, required by law)", absent(`\bpublic(ly)?\b|\balready known\b|\brequired by law\b|\bindependently developed\b`)},
		{"indefinite_survival", model.SignalAdditive, 0.05, "Obligations survive indefinitely", present(`\bindefinite(ly)?\b|\bsurvive[s]? (the )?(termination|expiration)\b`)},
		{"mutual_confidentiality", model.SignalMultiplicative, 0.90, "Confidentiality obligations are mutual", present(`\bmutual(ly)?\b|\beach party\b`)},
	},
	model.CategoryPayment: {
		{"no_compensation", model.SignalAdditive, 0.40, "No compensation specified", both(present(`\bno (pay|payment|compensation|salary|fee)\b|\bwithout (pay|compensation)\b|\bon an unpaid basis\b|\bunpaid (position|internship|volunteer)\b`), absent(`\$\s?\d|\b\d[\d,.]*\s*(usd|eur|gbp|dollars?|euros?|pounds?)\b`))},
		{"late_payment_terms", model.SignalAdditive, 0.10, "Payment due more than 60 days out", paymentDueAfter(60)},
		{"non_refundable", model.SignalAdditive, 0.10, "Payments are non-refundable", present(`\bnon-?refundable\b`)},
		{"late_penalties", model.SignalAdditive, 0.05, "Late payment penalties or interest", present(`\blate (fee|charge|payment penalt)|\bpenalt(y|ies)\b|\binterest at\b`)},
	},
}

// generalRules apply after the category rules
var generalRules = []generalRule{
	{rule: rule{"irrevocable", model.SignalAdditive, 0.10, "Contains irrevocable terms", present(`\birrevocabl[ey]\b`)}},
	{rule: rule{"perpetual", model.SignalAdditive, 0.15, "Contains perpetual obligations", present(`\bperpetu(al|ity)\b`)}},
	{rule: rule{"waiver", model.SignalAdditive, 0.10, "Includes a waiver of rights", present(`\bwaive[sd]?\b|\bwaiver\b`)}},
	{rule: rule{"unbounded_language", model.SignalAdditive, 0.10, "Unbounded language outside a liability clause", present(`\bunlimited\b|\bwithout limitation\b`)}, skip: model.CategoryLiability},
	{rule: rule{"sole_discretion", model.SignalAdditive, 0.15, "One party acts at its sole discretion", present(`\b(sole|absolute|unfettered) discretion\b`)}},
}
