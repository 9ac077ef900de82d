// Package middleware provides Recorder decorators applied between the
// engine and persistence.
package middleware

import (
	"context"
	"regexp"

	"github.com/emilianodellacasa/colloquio/pkg/domain"
	"github.com/emilianodellacasa/colloquio/pkg/ports"
)

const mask = "***"

// DefaultPIIPatterns match the personal identifiers most likely to appear in
// free-form answers: phone numbers, email addresses and the Italian codice
// fiscale.
var DefaultPIIPatterns = []string{
	`(\+39[\s.]?)?\b\d{3}[\s.]?\d{6,7}\b`,
	`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`,
	`\b[A-Za-z]{6}\d{2}[A-Za-z]\d{2}[A-Za-z]\d{3}[A-Za-z]\b`,
}

type piiMiddleware struct {
	next     ports.Recorder
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks matches of the given
// patterns in everything the respondent said before it reaches persistence.
// With no patterns the defaults are used.
func NewPIIMiddleware(patternStrings ...string) Middleware {
	if len(patternStrings) == 0 {
		patternStrings = DefaultPIIPatterns
	}
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.Recorder) ports.Recorder {
		return &piiMiddleware{next: next, patterns: patterns}
	}
}

func (m *piiMiddleware) RecordTurn(ctx context.Context, turn domain.TurnRecord) error {
	turn.Answer = m.scrub(turn.Answer)
	turn.BridgeReply = m.scrub(turn.BridgeReply)
	return m.next.RecordTurn(ctx, turn)
}

func (m *piiMiddleware) RecordBranch(ctx context.Context, branch domain.BranchRecord) error {
	return m.next.RecordBranch(ctx, branch)
}

func (m *piiMiddleware) Finalize(ctx context.Context, summary domain.SessionSummary) error {
	if summary.Profile != nil {
		// The summary struct is a value; only the map needs copying to keep
		// the caller's profile untouched.
		scrubbed := make(map[string]string, len(summary.Profile))
		for k, v := range summary.Profile {
			scrubbed[k] = m.scrub(v)
		}
		summary.Profile = scrubbed
	}
	return m.next.Finalize(ctx, summary)
}

func (m *piiMiddleware) scrub(s string) string {
	for _, p := range m.patterns {
		s = p.ReplaceAllString(s, mask)
	}
	return s
}
