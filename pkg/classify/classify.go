// Package classify implements the deterministic answer classifier.
//
// Classification is a pure function over the answer string: it detects
// evasive answers (short refusals like "niente" or "non ricordo") and scans
// a prioritized list of emotional theme keyword sets. The same input always
// yields the same Result, which makes routing decisions reproducible in
// tests.
package classify

import (
	"strings"
	"unicode/utf8"
)

const (
	// maxEvasiveLen is the maximum normalized length for the
	// short-answer-plus-keyword evasive rule.
	maxEvasiveLen = 15

	// minThemeLen is the minimum normalized length for theme detection.
	// Shorter answers never match a theme.
	minThemeLen = 3
)

// CategoryEvasive is the branch category used for evasive answers.
const CategoryEvasive = "evasive"

// Result is the classification outcome for one answer.
// Theme is always populated when a theme keyword set matches, even for
// evasive answers; routing gives evasiveness precedence, while signal
// logging keeps both fields.
type Result struct {
	Evasive bool
	Theme   string
}

// Category returns the branch category this result routes to: "evasive"
// takes precedence over any detected theme. Empty when neither applies.
func (r Result) Category() string {
	if r.Evasive {
		return CategoryEvasive
	}
	return r.Theme
}

// ThemeRule is one keyword set with its theme identifier. Rules are matched
// in slice order: the position in the rule list is the priority.
type ThemeRule struct {
	ID          string
	DisplayName string
	Keywords    []string
}

// Classifier holds the evasive keyword set and the prioritized theme rules.
// Construct it once (per process or per test) and inject it; there is no
// package-level mutable state.
type Classifier struct {
	evasive []string
	themes  []ThemeRule
	display map[string]string
}

// New builds a classifier from an evasive keyword set and an ordered list of
// theme rules.
func New(evasive []string, themes []ThemeRule) *Classifier {
	display := map[string]string{CategoryEvasive: "Risposta evasiva"}
	for _, th := range themes {
		display[th.ID] = th.DisplayName
	}
	return &Classifier{evasive: evasive, themes: themes, display: display}
}

// Default returns the classifier with the standard Italian rule set used by
// the interview engine: evasive refusals plus the four themes in priority
// order ansia_panico > dolore_fisico > solitudine > tristezza.
func Default() *Classifier {
	return New(defaultEvasiveKeywords, defaultThemes)
}

// Classify maps an answer to its classification. Pure and total: any string
// input yields a valid Result.
func (c *Classifier) Classify(answer string) Result {
	return Result{
		Evasive: c.isEvasive(answer),
		Theme:   c.detectTheme(answer),
	}
}

// DisplayName resolves the human-readable name of a category tag for
// recording and debug output. Unknown tags are returned as-is.
func (c *Classifier) DisplayName(category string) string {
	if name, ok := c.display[category]; ok {
		return name
	}
	return category
}

// Themes returns the configured theme identifiers in priority order.
func (c *Classifier) Themes() []string {
	ids := make([]string, len(c.themes))
	for i, th := range c.themes {
		ids[i] = th.ID
	}
	return ids
}

// isEvasive applies the three evasive rules: empty answer, short answer
// containing an evasive keyword, or an answer that is exactly a keyword.
func (c *Classifier) isEvasive(answer string) bool {
	normalized := normalize(answer)

	if normalized == "" {
		return true
	}

	if utf8.RuneCountInString(normalized) <= maxEvasiveLen && containsAny(normalized, c.evasive) {
		return true
	}

	for _, kw := range c.evasive {
		if normalized == kw {
			return true
		}
	}
	return false
}

// detectTheme returns the first matching theme by priority order, or "".
func (c *Classifier) detectTheme(answer string) string {
	normalized := normalize(answer)
	if utf8.RuneCountInString(normalized) < minThemeLen {
		return ""
	}

	for _, th := range c.themes {
		if containsAny(normalized, th.Keywords) {
			return th.ID
		}
	}
	return ""
}

func normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

func containsAny(normalized string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(normalized, kw) {
			return true
		}
	}
	return false
}
