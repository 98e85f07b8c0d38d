// Package taxonomy holds the closed category set and the ordered
// standardization rules that map free-form feedback to canonical labels.
package taxonomy

import (
	"fmt"
	"regexp"
	"strings"
)

// Top-level categories
const (
	FoodQuality = "Food Quality"
	Service     = "Service"
	Cleanliness = "Cleanliness"
	Value       = "Value"
	Ambiance    = "Ambiance"
)

// Rule maps any line matching Pattern to the canonical Label
type Rule struct {
	Category string
	Pattern  *regexp.Regexp
	Label    string
}

// Taxonomy is the category set, rule list and cleaning configuration.
// Rules are evaluated in order and the first match wins.
type Taxonomy struct {
	Categories []string
	Rules      []Rule
	Denylist   []string // lowercase phrases that disqualify a line
	MaxPoints  int      // lines kept by the cleaner
	MinPoints  int      // fewer surviving lines triggers the raw-text fallback
}

// NewRule builds a case-insensitive rule matching "<category>:" followed
// anywhere later by one of the alternatives
func NewRule(category, alternatives, subcategory string) Rule {
	return Rule{
		Category: category,
		Pattern:  regexp.MustCompile(`(?i)` + regexp.QuoteMeta(category) + `:.*?(` + alternatives + `)`),
		Label:    category + ": " + subcategory,
	}
}

var defaultCategories = []string{FoodQuality, Service, Cleanliness, Value, Ambiance}

// Order is significant: the first matching rule wins.
var defaultRules = []Rule{
	NewRule(Service, `slow|wait|delay|took.*long|forever|responsiveness|speed`, "speed"),
	NewRule(Service, `friendly|rude|attitude|interaction`, "friendliness"),
	NewRule(Service, `attentive|attention|check`, "attentiveness"),
	NewRule(Service, `professional|accommodation|handling`, "professionalism"),

	NewRule(FoodQuality, `cold|warm|hot|temperature`, "temperature"),
	NewRule(FoodQuality, `delicious|taste|flavor|yummy`, "taste"),
	NewRule(FoodQuality, `fresh|stale`, "freshness"),
	NewRule(FoodQuality, `portion|size|amount`, "portion size"),
	NewRule(FoodQuality, `variety|options|selection`, "variety"),
	NewRule(FoodQuality, `presentation|plating|appearance`, "presentation"),

	NewRule(Value, `expensive|pricey|cheap|cost|price|pricing`, "pricing"),
	NewRule(Value, `worth|money|value`, "quality for cost"),

	NewRule(Ambiance, `loud|quiet|noise`, "noise level"),
	NewRule(Ambiance, `decor|decoration|aesthetic`, "decor"),
	NewRule(Ambiance, `comfort|cozy|space`, "comfort"),
	NewRule(Ambiance, `atmosphere|vibe|ambiance`, "atmosphere"),
	NewRule(Ambiance, `light|lighting|bright|dark`, "lighting"),

	NewRule(Cleanliness, `clean|dirty|hygiene|sanitary`, "overall hygiene"),
}

var defaultDenylist = []string{
	"not mentioned", "not explicitly", "not specified",
	"implied", "not discussed", "none", "n/a",
	"can be considered", "however", "since",
	"although", "note:", "the review",
}

// Default returns the restaurant review taxonomy. The returned slices are
// copies, so callers may modify them without affecting other users.
func Default() Taxonomy {
	return Taxonomy{
		Categories: append([]string(nil), defaultCategories...),
		Rules:      append([]Rule(nil), defaultRules...),
		Denylist:   append([]string(nil), defaultDenylist...),
		MaxPoints:  4,
		MinPoints:  2,
	}
}

// CategoryOf returns the first category that prefixes the label
func (t Taxonomy) CategoryOf(label string) (string, bool) {
	for _, c := range t.Categories {
		if strings.HasPrefix(label, c) {
			return c, true
		}
	}
	return "", false
}

// MentionsCategory reports whether a line contains any category name
// (case-sensitive)
func (t Taxonomy) MentionsCategory(line string) bool {
	for _, c := range t.Categories {
		if strings.Contains(line, c) {
			return true
		}
	}
	return false
}

// IsCanonical reports whether s equals one of the rule labels, ignoring case
func (t Taxonomy) IsCanonical(s string) (string, bool) {
	for _, r := range t.Rules {
		if strings.EqualFold(r.Label, s) {
			return r.Label, true
		}
	}
	return "", false
}

// Validate checks that every rule belongs to a known category
func (t Taxonomy) Validate() error {
	if len(t.Categories) == 0 {
		return fmt.Errorf("taxonomy has no categories")
	}
	known := make(map[string]bool, len(t.Categories))
	for _, c := range t.Categories {
		known[c] = true
	}
	for i, r := range t.Rules {
		if !known[r.Category] {
			return fmt.Errorf("rule %d (%s): unknown category %q", i, r.Label, r.Category)
		}
		if !strings.HasPrefix(r.Label, r.Category+": ") {
			return fmt.Errorf("rule %d: label %q does not start with its category", i, r.Label)
		}
		if r.Pattern == nil {
			return fmt.Errorf("rule %d (%s): missing pattern", i, r.Label)
		}
	}
	if t.MinPoints < 0 || t.MaxPoints < t.MinPoints {
		return fmt.Errorf("invalid point bounds: min=%d max=%d", t.MinPoints, t.MaxPoints)
	}
	return nil
}
