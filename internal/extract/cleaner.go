package extract

import (
	"regexp"
	"strings"

	"github.com/ppiankov/reviewinsights/internal/taxonomy"
)

var (
	ordinalPrefix = regexp.MustCompile(`^\d+\.`)
	parenthetical = regexp.MustCompile(`\(.*?\)`)
	whitespaceRun = regexp.MustCompile(`[\s\p{Zs}]+`)
)

// CleanResult is the outcome of cleaning one model response
type CleanResult struct {
	Text     string   // cleaned lines joined by newlines, or the raw input on fallback
	Kept     []string // surviving lines (empty on fallback)
	Fallback bool     // too few lines survived; Text is the unfiltered input
}

// Cleaner filters raw model output down to numbered, on-taxonomy lines
type Cleaner struct {
	tax      taxonomy.Taxonomy
	denylist []string
	inline   *regexp.Regexp
}

// NewCleaner creates a cleaner using the taxonomy's categories, denylist
// and point bounds
func NewCleaner(tax taxonomy.Taxonomy) *Cleaner {
	deny := make([]string, 0, len(tax.Denylist))
	for _, p := range tax.Denylist {
		deny = append(deny, strings.ToLower(p))
	}
	return &Cleaner{tax: tax, denylist: deny, inline: inlineOrdinals(tax.Categories)}
}

// Clean returns the cleaned text
func (c *Cleaner) Clean(raw string) string {
	return c.CleanDetailed(raw).Text
}

// CleanDetailed filters raw line by line. When fewer than MinPoints lines
// survive, the raw text is returned unchanged and Fallback is set: noisy
// output is preferred over none, but callers should count these.
func (c *Cleaner) CleanDetailed(raw string) CleanResult {
	var kept []string
	for _, line := range splitPoints(c.inline, strings.TrimSpace(raw)) {
		line = strings.TrimSpace(line)
		if line == "" || c.denied(line) {
			continue
		}
		if !ordinalPrefix.MatchString(line) {
			continue
		}
		if !c.tax.MentionsCategory(line) {
			continue
		}

		line = parenthetical.ReplaceAllString(line, "")
		line = strings.TrimSpace(whitespaceRun.ReplaceAllString(line, " "))
		kept = append(kept, line)
	}

	if c.tax.MaxPoints > 0 && len(kept) > c.tax.MaxPoints {
		kept = kept[:c.tax.MaxPoints]
	}
	if len(kept) < c.tax.MinPoints {
		return CleanResult{Text: raw, Fallback: strings.TrimSpace(raw) != ""}
	}
	return CleanResult{Text: strings.Join(kept, "\n"), Kept: kept}
}

func (c *Cleaner) denied(line string) bool {
	lower := strings.ToLower(line)
	for _, phrase := range c.denylist {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// inlineOrdinals matches an ordinal that opens a new category point in the
// middle of a line, as in "1. Food Quality: cold 2. Service: slow"
func inlineOrdinals(categories []string) *regexp.Regexp {
	if len(categories) == 0 {
		return nil
	}
	alts := make([]string, len(categories))
	for i, c := range categories {
		alts[i] = regexp.QuoteMeta(c)
	}
	return regexp.MustCompile(`\s+(\d+\.\s*(?:` + strings.Join(alts, "|") + `):)`)
}

// splitPoints breaks text into lines, starting a new line at every inline
// ordinal matched by inline
func splitPoints(inline *regexp.Regexp, text string) []string {
	if inline != nil {
		text = inline.ReplaceAllString(text, "\n$1")
	}
	return strings.Split(text, "\n")
}
