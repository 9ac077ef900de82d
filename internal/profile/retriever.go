package profile

import (
	"context"
	"sort"
	"strings"
	"unicode"
)

// DefaultTopK is the number of profile fields a retrieval returns at most.
const DefaultTopK = 3

// Retriever answers context queries by keyword overlap against the profile
// fields. Scoring is deterministic: fields are ranked by the number of query
// tokens they share, ties broken by field name.
type Retriever struct {
	profile *Profile
	topK    int
}

// RetrieverOption configures the Retriever.
type RetrieverOption func(*Retriever)

// WithTopK overrides how many fields a retrieval returns.
func WithTopK(k int) RetrieverOption {
	return func(r *Retriever) {
		if k > 0 {
			r.topK = k
		}
	}
}

// NewRetriever builds a context retriever over one respondent profile.
func NewRetriever(p *Profile, opts ...RetrieverOption) *Retriever {
	r := &Retriever{profile: p, topK: DefaultTopK}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Retrieve implements ports.ContextRetriever. The result is a block of
// "- field: value" lines for the best-matching fields, empty when nothing
// overlaps the query.
func (r *Retriever) Retrieve(ctx context.Context, query string) (string, error) {
	queryTokens := tokenize(query)
	if len(queryTokens) == 0 {
		return "", nil
	}

	type scored struct {
		key   string
		value string
		score int
	}
	var matches []scored
	for _, key := range r.profile.Fields() {
		value := r.profile.SafeField(key)
		if value == Unspecified {
			continue
		}
		score := overlap(queryTokens, tokenize(key+" "+value))
		if score > 0 {
			matches = append(matches, scored{key: key, value: value, score: score})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].score != matches[j].score {
			return matches[i].score > matches[j].score
		}
		return matches[i].key < matches[j].key
	})
	if len(matches) > r.topK {
		matches = matches[:r.topK]
	}

	var b strings.Builder
	for i, m := range matches {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("- ")
		b.WriteString(m.key)
		b.WriteString(": ")
		b.WriteString(m.value)
	}
	return b.String(), nil
}

// tokenize lowercases and splits on non-letter runes, keeping tokens of at
// least three runes so articles and clitics do not score.
func tokenize(s string) map[string]struct{} {
	tokens := map[string]struct{}{}
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	for _, f := range fields {
		if len([]rune(f)) >= 3 {
			tokens[f] = struct{}{}
		}
	}
	return tokens
}

func overlap(a, b map[string]struct{}) int {
	n := 0
	for t := range a {
		if _, ok := b[t]; ok {
			n++
		}
	}
	return n
}
