package ports

import (
	"context"

	"github.com/emilianodellacasa/colloquio/pkg/domain"
)

// ContextRetriever provides auxiliary respondent context for a query string.
// An empty result is valid; failures are recovered by the caller with a
// static fallback.
type ContextRetriever interface {
	Retrieve(ctx context.Context, query string) (string, error)
}

// Generator is the external text-generation capability. An empty string
// signals a generation failure; the caller owns retry and fallback policy.
type Generator interface {
	Generate(ctx context.Context, prompt domain.Prompt) (string, error)
}

// InputHandler obtains the respondent's answer for a displayed text.
// It returns domain.ErrSessionClosed when the respondent quits.
type InputHandler interface {
	Ask(ctx context.Context, display string) (string, error)
}

// Recorder receives the turn-by-turn session log. Implementations must be
// safe to call with partial data; recording failures never abort a session.
type Recorder interface {
	RecordTurn(ctx context.Context, turn domain.TurnRecord) error
	RecordBranch(ctx context.Context, branch domain.BranchRecord) error
	Finalize(ctx context.Context, summary domain.SessionSummary) error
}
