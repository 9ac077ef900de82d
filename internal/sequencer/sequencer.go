// Package sequencer drives one interview session through its turn loop.
//
// The loop is an explicit step machine: SELECT a main question, RETRIEVE
// context, ASK, SAVE the answer, CLASSIFY it, ROUTE into or out of a
// deepening episode, BRIDGE to the next question, ADVANCE. Every external
// capability failure is recovered with a fallback; the only ways a session
// ends are exhausting the question set or a quit from the respondent.
package sequencer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/emilianodellacasa/colloquio/internal/branch"
	"github.com/emilianodellacasa/colloquio/internal/bridge"
	"github.com/emilianodellacasa/colloquio/internal/logging"
	"github.com/emilianodellacasa/colloquio/internal/text"
	"github.com/emilianodellacasa/colloquio/pkg/classify"
	"github.com/emilianodellacasa/colloquio/pkg/domain"
	"github.com/emilianodellacasa/colloquio/pkg/ports"
)

// step enumerates the states of the turn loop.
type step int

const (
	stepSelect step = iota
	stepContext
	stepAsk
	stepSave
	stepClassify
	stepRoute
	stepBridge
	stepAdvance
	stepDone
)

// Sequencer owns the session state for the duration of Run. Collaborators
// only ever receive copies of its records.
type Sequencer struct {
	questions  []domain.Question
	input      ports.InputHandler
	classifier *classify.Classifier
	branches   *branch.Controller
	bridges    *bridge.Generator

	retriever ports.ContextRetriever
	recorder  ports.Recorder
	store     ports.StateStore
	hooks     domain.LifecycleHooks

	gender          string
	routingDisabled bool
	patientID       string
	profile         map[string]string
	logger          *slog.Logger
}

// Option configures the Sequencer.
type Option func(*Sequencer)

// WithRetriever sets the respondent-context retriever used before each main
// question.
func WithRetriever(r ports.ContextRetriever) Option {
	return func(s *Sequencer) {
		s.retriever = r
	}
}

// WithRecorder sets the session recorder.
func WithRecorder(rec ports.Recorder) Option {
	return func(s *Sequencer) {
		s.recorder = rec
	}
}

// WithStore persists the session state after every advance, enabling resume.
func WithStore(store ports.StateStore) Option {
	return func(s *Sequencer) {
		s.store = store
	}
}

// WithHooks registers lifecycle callbacks.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Sequencer) {
		s.hooks = hooks
	}
}

// WithGender adapts main-question wording to the respondent's gender.
func WithGender(genderLabel string) Option {
	return func(s *Sequencer) {
		s.gender = genderLabel
	}
}

// WithRoutingDisabled keeps classification running but never opens deepening
// episodes. Used to produce baseline sessions for evaluation.
func WithRoutingDisabled() Option {
	return func(s *Sequencer) {
		s.routingDisabled = true
	}
}

// WithPatientID tags the session summary with the respondent's anonymous id.
func WithPatientID(id string) Option {
	return func(s *Sequencer) {
		s.patientID = id
	}
}

// WithProfileSummary attaches profile key/values to the session summary.
func WithProfileSummary(profile map[string]string) Option {
	return func(s *Sequencer) {
		s.profile = profile
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Sequencer) {
		s.logger = logger
	}
}

// New builds a Sequencer over the question set and its core collaborators.
func New(questions []domain.Question, input ports.InputHandler, classifier *classify.Classifier, branches *branch.Controller, bridges *bridge.Generator, opts ...Option) *Sequencer {
	s := &Sequencer{
		questions:  questions,
		input:      input,
		classifier: classifier,
		branches:   branches,
		bridges:    bridges,
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes the turn loop until the question set is exhausted or the
// respondent quits. The state is mutated in place; an already-advanced state
// resumes from its current position. Run never returns an error for
// collaborator failures, only state persistence is best-effort.
func (s *Sequencer) Run(ctx context.Context, state *domain.SessionState) error {
	startedAt := time.Now()
	recorded := len(state.QAHistory)

	var (
		carry     string // bridge reply to compose with the next main question
		asked     string // question text presented in the current turn
		askedMode domain.Mode
		result    classify.Result
		mainRes   classify.Result
		completed bool
	)

	current := stepSelect
	for current != stepDone {
		if ctx.Err() != nil {
			s.logger.Info("session cancelled", "session_id", state.SessionID)
			state.Done = true
			break
		}

		switch current {
		case stepSelect:
			if state.CurrentIndex >= len(s.questions) {
				state.Done = true
				completed = true
				current = stepDone
				break
			}
			state.CurrentQuestion = s.questions[state.CurrentIndex].Text
			current = stepContext

		case stepContext:
			state.ProfileContext = s.retrieve(ctx, state.CurrentQuestion)
			current = stepAsk

		case stepAsk:
			askedMode = state.Mode
			if askedMode == domain.ModeDeepening {
				asked = state.PendingQuestion
			} else {
				asked = text.FormatQuestionForGender(state.CurrentQuestion, s.gender)
			}

			display := asked
			if carry != "" {
				display = carry + "\n\n" + asked
				carry = ""
			}

			answer, err := s.input.Ask(ctx, display)
			if err != nil {
				if !errors.Is(err, domain.ErrSessionClosed) && ctx.Err() == nil {
					s.logger.Warn("input capability failed, ending session", "err", err)
				}
				// The in-flight turn is discarded; neither branching nor
				// bridging runs for it.
				state.Done = true
				current = stepDone
				break
			}
			state.LastAnswer = answer
			current = stepSave

		case stepSave:
			state.QAHistory = append(state.QAHistory, domain.QARecord{
				QuestionID: state.CurrentIndex + 1,
				Question:   asked,
				Answer:     state.LastAnswer,
			})
			state.PendingQuestion = ""
			state.LastAnswer = ""
			current = stepClassify

		case stepClassify:
			result = s.classifier.Classify(state.LastQA().Answer)
			if askedMode == domain.ModeMain {
				// Exactly one signal per main question, no matter how many
				// deepening turns follow.
				state.Signals = append(state.Signals, domain.Signal{
					QuestionID: state.CurrentIndex + 1,
					Evasive:    result.Evasive,
					Theme:      result.Theme,
				})
				mainRes = result
			}
			s.emitTurn(ctx, state, askedMode, result)
			current = stepRoute

		case stepRoute:
			if s.routingDisabled {
				current = stepBridge
				break
			}
			decision := s.branches.Route(ctx, state, result)
			if decision.Deepen {
				s.emitBranch(ctx, state, decision.Category)
				current = stepAsk
				break
			}
			current = stepBridge

		case stepBridge:
			reply := s.bridges.Bridge(ctx, bridge.Input{
				Question:       state.CurrentQuestion,
				Answer:         state.LastQA().Answer,
				ProfileContext: state.ProfileContext,
				Classification: mainRes,
			})
			state.LastQA().BridgeReply = reply
			recorded = s.flushTurns(ctx, state, recorded)

			if state.CurrentIndex+1 >= len(s.questions) {
				state.Done = true
				completed = true
			} else {
				carry = reply
			}
			current = stepAdvance

		case stepAdvance:
			if state.Done {
				current = stepDone
				break
			}
			state.CurrentIndex++
			state.ResetBranch()
			s.persist(ctx, state)
			current = stepSelect
		}
	}

	s.finish(ctx, state, startedAt, recorded, completed)
	return nil
}

func (s *Sequencer) retrieve(ctx context.Context, query string) string {
	if s.retriever == nil {
		return ""
	}
	out, err := s.retriever.Retrieve(ctx, query)
	if err != nil {
		s.logger.Warn("context retrieval failed, continuing without context", "err", err)
		return ""
	}
	return out
}

// flushTurns reports every history entry appended since the last flush and
// returns the new watermark. Deferred to bridge time so the owning entry
// already carries its bridge reply.
func (s *Sequencer) flushTurns(ctx context.Context, state *domain.SessionState, recorded int) int {
	if s.recorder == nil {
		return len(state.QAHistory)
	}
	for _, qa := range state.QAHistory[recorded:] {
		err := s.recorder.RecordTurn(ctx, domain.TurnRecord{
			QuestionID:  qa.QuestionID,
			Question:    qa.Question,
			Answer:      qa.Answer,
			BridgeReply: qa.BridgeReply,
		})
		if err != nil {
			s.logger.Warn("failed to record turn", "question_id", qa.QuestionID, "err", err)
		}
	}
	return len(state.QAHistory)
}

func (s *Sequencer) persist(ctx context.Context, state *domain.SessionState) {
	if s.store == nil {
		return
	}
	if err := s.store.Save(ctx, state.SessionID, state); err != nil {
		s.logger.Warn("failed to persist session state", "session_id", state.SessionID, "err", err)
	}
}

// finish flushes pending records, finalizes the recorder and emits the
// session-end hook. It runs on every termination path, quits included.
func (s *Sequencer) finish(ctx context.Context, state *domain.SessionState, startedAt time.Time, recorded int, completed bool) {
	s.flushTurns(ctx, state, recorded)
	if completed {
		// Quit and cancellation keep the last advance snapshot in the store
		// so the session can be resumed; only completion overwrites it with
		// the terminal state.
		s.persist(ctx, state)
	}

	if s.recorder != nil {
		signals := make([]domain.Signal, len(state.Signals))
		copy(signals, state.Signals)
		err := s.recorder.Finalize(ctx, domain.SessionSummary{
			SessionID: state.SessionID,
			PatientID: s.patientID,
			StartedAt: startedAt,
			EndedAt:   time.Now(),
			Questions: len(state.Signals),
			Signals:   signals,
			Profile:   s.profile,
		})
		if err != nil {
			s.logger.Warn("failed to finalize session recording", "err", err)
		}
	}

	if s.hooks.OnSessionEnd != nil {
		s.hooks.OnSessionEnd(ctx, &domain.SessionEvent{
			Timestamp: time.Now(),
			SessionID: state.SessionID,
			Questions: len(state.Signals),
			Completed: completed,
		})
	}
}

func (s *Sequencer) emitTurn(ctx context.Context, state *domain.SessionState, mode domain.Mode, res classify.Result) {
	if s.hooks.OnTurn == nil {
		return
	}
	s.hooks.OnTurn(ctx, &domain.TurnEvent{
		Timestamp:  time.Now(),
		SessionID:  state.SessionID,
		QuestionID: state.CurrentIndex + 1,
		Mode:       mode,
		Evasive:    res.Evasive,
		Theme:      res.Theme,
	})
}

func (s *Sequencer) emitBranch(ctx context.Context, state *domain.SessionState, category string) {
	if s.hooks.OnBranch == nil {
		return
	}
	s.hooks.OnBranch(ctx, &domain.BranchEvent{
		Timestamp: time.Now(),
		SessionID: state.SessionID,
		Category:  category,
		Depth:     state.BranchCount,
	})
}
