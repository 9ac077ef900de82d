// Package testutils provides scripted collaborator fakes shared by the
// engine test suites.
package testutils

import (
	"context"
	"sync"

	"github.com/emilianodellacasa/colloquio/pkg/domain"
)

// ScriptedInput replays a fixed sequence of answers, then signals quit.
type ScriptedInput struct {
	mu       sync.Mutex
	answers  []string
	Displays []string // every text presented to the respondent, in order
}

// NewScriptedInput builds an input handler that returns the given answers in
// order and domain.ErrSessionClosed once they run out.
func NewScriptedInput(answers ...string) *ScriptedInput {
	return &ScriptedInput{answers: answers}
}

// Ask implements ports.InputHandler.
func (s *ScriptedInput) Ask(ctx context.Context, display string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Displays = append(s.Displays, display)
	if len(s.answers) == 0 {
		return "", domain.ErrSessionClosed
	}
	next := s.answers[0]
	s.answers = s.answers[1:]
	return next, nil
}

// StubGenerator returns canned text for every prompt. An empty Reply models
// a failing generation capability; Err models a transport failure.
type StubGenerator struct {
	Reply   string
	Err     error
	Prompts []domain.Prompt // captured requests
}

// Generate implements ports.Generator.
func (g *StubGenerator) Generate(ctx context.Context, prompt domain.Prompt) (string, error) {
	g.Prompts = append(g.Prompts, prompt)
	if g.Err != nil {
		return "", g.Err
	}
	return g.Reply, nil
}

// SequenceGenerator returns one reply per call, in order, then empty strings.
type SequenceGenerator struct {
	Replies []string
	Calls   int
}

// Generate implements ports.Generator.
func (g *SequenceGenerator) Generate(ctx context.Context, prompt domain.Prompt) (string, error) {
	g.Calls++
	if len(g.Replies) == 0 {
		return "", nil
	}
	next := g.Replies[0]
	g.Replies = g.Replies[1:]
	return next, nil
}

// StubRetriever returns a fixed context string.
type StubRetriever struct {
	Context string
	Err     error
	Queries []string
}

// Retrieve implements ports.ContextRetriever.
func (r *StubRetriever) Retrieve(ctx context.Context, query string) (string, error) {
	r.Queries = append(r.Queries, query)
	if r.Err != nil {
		return "", r.Err
	}
	return r.Context, nil
}

// MemoryRecorder collects everything the engine reports, for assertions.
type MemoryRecorder struct {
	mu        sync.Mutex
	Turns     []domain.TurnRecord
	Branches  []domain.BranchRecord
	Summary   *domain.SessionSummary
	Finalized bool
	FailWith  error // when set, every call returns this error
}

// RecordTurn implements ports.Recorder.
func (m *MemoryRecorder) RecordTurn(ctx context.Context, turn domain.TurnRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}
	m.Turns = append(m.Turns, turn)
	return nil
}

// RecordBranch implements ports.Recorder.
func (m *MemoryRecorder) RecordBranch(ctx context.Context, branch domain.BranchRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}
	m.Branches = append(m.Branches, branch)
	return nil
}

// Finalize implements ports.Recorder.
func (m *MemoryRecorder) Finalize(ctx context.Context, summary domain.SessionSummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}
	m.Summary = &summary
	m.Finalized = true
	return nil
}
