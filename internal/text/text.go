// Package text holds the Italian text utilities used to post-process
// generated replies and to adapt question wording to the respondent.
package text

import (
	"regexp"
	"strings"
)

var (
	interrogativeRe = regexp.MustCompile(`(?i)^\s*(come|cosa|quando|dove|perché|perchè|chi|quale|quanto)\b`)
	labelRe         = regexp.MustCompile(`(?im)^\s*(riflesso|validazione|valido|valida)\s*:\s*`)
	whitespaceRe    = regexp.MustCompile(`\s+`)
	sentenceSplitRe = regexp.MustCompile(`([.!?])\s+`)
)

// informalPatterns reject the informal second-person register. The engine
// addresses respondents with the formal "Lei".
var informalPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\btu\b`),
	regexp.MustCompile(`\bti\b`),
	regexp.MustCompile(`\bte\b`),
	regexp.MustCompile(`\btua\b`),
	regexp.MustCompile(`\btuo\b`),
	regexp.MustCompile(`\bstai\b`),
	regexp.MustCompile(`\bsei\b`),
	regexp.MustCompile(`\bper te\b`),
}

// StripQuestions removes lines that are clearly questions: lines starting
// with an Italian interrogative or ending in a question mark. Lines with a
// '?' in the middle of a descriptive sentence are kept.
func StripQuestions(s string) string {
	var lines []string
	for _, ln := range strings.Split(s, "\n") {
		ln = strings.TrimSpace(ln)
		if ln == "" {
			continue
		}
		if interrogativeRe.MatchString(ln) {
			continue
		}
		if strings.HasSuffix(ln, "?") {
			continue
		}
		lines = append(lines, ln)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// StripLabels removes scaffolding prefixes such as "Riflesso:" or
// "Validazione:" and collapses whitespace.
func StripLabels(s string) string {
	out := labelRe.ReplaceAllString(s, "")
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(out, " "))
}

// TrimToMaxSentences limits the text to at most max sentences.
func TrimToMaxSentences(s string, max int) string {
	if max <= 0 {
		return ""
	}
	collapsed := strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
	if collapsed == "" {
		return ""
	}

	// Re-join the split tokens so terminal punctuation is preserved.
	parts := sentenceSplitRe.Split(collapsed, -1)
	marks := sentenceSplitRe.FindAllStringSubmatch(collapsed, -1)
	if len(parts) <= max {
		return collapsed
	}

	var b strings.Builder
	for i := 0; i < max; i++ {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(parts[i])
		if i < len(marks) {
			b.WriteString(marks[i][1])
		}
	}
	return strings.TrimSpace(b.String())
}

// IsFormal reports whether the text avoids informal second-person forms.
func IsFormal(s string) bool {
	low := strings.ToLower(s)
	for _, p := range informalPatterns {
		if p.MatchString(low) {
			return false
		}
	}
	return true
}

// WordCount counts whitespace-separated tokens in the text.
func WordCount(s string) int {
	return len(strings.Fields(s))
}
