package text

import (
	"regexp"
	"strings"
)

// Gender labels produced by GenderLabel.
const (
	GenderMasculine   = "MASCHILE"
	GenderFeminine    = "FEMMINILE"
	GenderUnspecified = "NON_SPECIFICATO"
)

// GenderLabel normalizes a free-form gender field to one of the three labels.
func GenderLabel(gender string) string {
	switch strings.ToUpper(strings.TrimSpace(gender)) {
	case "M", "MALE", "UOMO", "MASCHIO", "MASCHILE":
		return GenderMasculine
	case "F", "FEMALE", "DONNA", "FEMMINA", "FEMMINILE":
		return GenderFeminine
	default:
		return GenderUnspecified
	}
}

// agreementPairs maps feminine to masculine forms for the adjectives the
// bridge replies commonly use. CoerceGender applies them in the requested
// direction.
var agreementPairs = [][2]string{
	{"preoccupata", "preoccupato"},
	{"stressata", "stressato"},
	{"determinata", "determinato"},
	{"legata", "legato"},
	{"stata", "stato"},
	{"serena", "sereno"},
	{"tranquilla", "tranquillo"},
	{"angosciata", "angosciato"},
	{"spaventata", "spaventato"},
	{"stanca", "stanco"},
}

type agreementRule struct {
	re          *regexp.Regexp
	replacement string
}

var toMasculine, toFeminine []agreementRule

func init() {
	for _, pair := range agreementPairs {
		toMasculine = append(toMasculine, agreementRule{
			re:          regexp.MustCompile(`(?i)\b` + pair[0] + `\b`),
			replacement: pair[1],
		})
		toFeminine = append(toFeminine, agreementRule{
			re:          regexp.MustCompile(`(?i)\b` + pair[1] + `\b`),
			replacement: pair[0],
		})
	}
}

// CoerceGender adapts grammatical agreement in generated text to the
// respondent's gender. Unspecified gender leaves the text untouched.
func CoerceGender(s, genderLabel string) string {
	var rules []agreementRule
	switch genderLabel {
	case GenderMasculine:
		rules = toMasculine
	case GenderFeminine:
		rules = toFeminine
	default:
		return s
	}

	out := s
	for _, rule := range rules {
		out = rule.re.ReplaceAllString(out, rule.replacement)
	}
	return out
}

// questionAgreements rewrites the masculine participles used in the default
// question set for feminine respondents. Masculine input is returned as-is:
// the stock questions are already written in the masculine form.
var questionAgreements = [][2]string{
	{"si è sentito", "si è sentita"},
	{"è riuscito", "è riuscita"},
	{"particolarmente preoccupato", "particolarmente preoccupata"},
	{"pensa di essersi sentito", "pensa di essersi sentita"},
	{"si è sentito in difficoltà", "si è sentita in difficoltà"},
}

// FormatQuestionForGender adapts a main question to the respondent's gender.
func FormatQuestionForGender(question, genderLabel string) string {
	if genderLabel != GenderFeminine {
		return question
	}
	out := question
	for _, pair := range questionAgreements {
		out = strings.ReplaceAll(out, pair[0], pair[1])
	}
	return out
}
